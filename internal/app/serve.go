package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"
)

// shutdownTimeout bounds how long in-flight requests get after a stop signal
const shutdownTimeout = 15 * time.Second

// Serve runs the HTTP server until ctx is cancelled, then shuts down gracefully
func (a *App) Serve(ctx context.Context) error {
	addr := fmt.Sprintf(":%s", a.Config.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Printf("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
