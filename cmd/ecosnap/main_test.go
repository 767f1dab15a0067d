package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Chdir(t.TempDir())

	var out bytes.Buffer
	cmd := rootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := runCLI(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "ecosnap version")
}

func TestSourcesCommand(t *testing.T) {
	t.Setenv("ECOSNAP_GEMINI_API_KEY", "")

	out, err := runCLI(t, "sources")
	require.NoError(t, err)

	var parsed struct {
		Sources []struct {
			ID  string `yaml:"id"`
			URL string `yaml:"url"`
		} `yaml:"sources"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(out), &parsed))
	require.Len(t, parsed.Sources, 6)
	assert.Equal(t, "amazon", parsed.Sources[0].ID)
	assert.Contains(t, parsed.Sources[0].URL, "{query}")
}

func TestScrapeCommand_RequiresName(t *testing.T) {
	_, err := runCLI(t, "scrape")
	assert.Error(t, err)
}

func TestServeCommand_RequiresAPIKey(t *testing.T) {
	t.Setenv("ECOSNAP_GEMINI_API_KEY", "")

	_, err := runCLI(t, "serve")
	assert.ErrorContains(t, err, "Gemini API key is required")
}
