// Command ecosnap runs the EcoSnap backend or its scraping pipeline from
// the command line.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ecosnap/backend/config"
	"github.com/ecosnap/backend/internal/app"
	"github.com/ecosnap/backend/internal/domain"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func main() {
	if err := rootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:           "ecosnap",
		Short:         "Product environmental impact analysis",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path (YAML)")

	cmd.AddCommand(serveCmd(&configPath))
	cmd.AddCommand(scrapeCmd(&configPath))
	cmd.AddCommand(sourcesCmd(&configPath))
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "ecosnap version %s\n", app.Version)
		},
	})

	return cmd
}

func serveCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			logCloser := app.SetupLogging(cfg.Log)
			defer logCloser.Close()

			application, err := app.New(cfg)
			if err != nil {
				return err
			}
			defer application.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return application.Serve(ctx)
		},
	}
}

func scrapeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "scrape <product name>",
		Short: "Scrape attributes for a product name and print them as JSON",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadForScraping(*configPath)
			if err != nil {
				return err
			}
			logCloser := app.SetupLogging(cfg.Log)
			defer logCloser.Close()

			scraper, _, err := app.NewScraper(cfg)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Server.RequestTimeout)
			defer cancel()

			acc := scraper.ScrapeProductDetails(ctx, strings.Join(args, " "))
			if acc == nil {
				return fmt.Errorf("scraping failed")
			}
			if domain.NeedsFallback(acc) {
				fmt.Fprintln(cmd.ErrOrStderr(), "no ingredients found; the API would use the generative fallback")
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(acc)
		},
	}
}

func sourcesCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "sources",
		Short: "Print the effective source registry as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadForScraping(*configPath)
			if err != nil {
				return err
			}
			scraper, _, err := app.NewScraper(cfg)
			if err != nil {
				return err
			}

			enc := yaml.NewEncoder(cmd.OutOrStdout())
			defer enc.Close()
			enc.SetIndent(2)
			return enc.Encode(map[string][]domain.SourceSpec{"sources": scraper.Sources()})
		},
	}
}
