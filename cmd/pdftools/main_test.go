// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/pdftools/internal/compress"
	"github.com/pdiddy/pdftools/pkg/types"
)

func TestSetDefaultsUnmarshal(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	var got types.Config
	require.NoError(t, v.Unmarshal(&got))
	assert.Equal(t, types.StrategyLocal, got.Compression.Strategy)
	assert.Equal(t, compress.DefaultMaxAttempts, got.Compression.MaxAttempts)
	assert.Equal(t, 2*time.Second, got.Compression.Remote.PollInitial)
	assert.Equal(t, 5*time.Minute, got.Compression.Remote.PollTimeout)
	assert.Equal(t, 60*time.Second, got.Compression.Remote.Timeout)
	assert.Equal(t, defaultUserAgent, got.Compression.Remote.UserAgent)
	assert.Equal(t, compress.DefaultGhostscriptImage, got.Compression.Ghostscript.Image)
	assert.True(t, got.History.Enabled)
	assert.NotEmpty(t, got.History.Dir)
	assert.Equal(t, "warn", got.Log.Level)
}

func TestConfigFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pdftools.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
compression:
  strategy: remote
  remote:
    poll_timeout: 90s
    api_key: from-file
history:
  enabled: false
`), 0o644))

	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	var got types.Config
	require.NoError(t, v.Unmarshal(&got))
	assert.Equal(t, types.StrategyRemote, got.Compression.Strategy)
	assert.Equal(t, 90*time.Second, got.Compression.Remote.PollTimeout)
	assert.Equal(t, "from-file", got.Compression.Remote.APIKey)
	assert.Equal(t, 5*time.Second, got.Compression.Remote.PollMax)
	assert.False(t, got.History.Enabled)
}

func TestParseSize(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"500KB", 500_000, false},
		{"500KiB", 500 * 1024, false},
		{"1.5 MiB", 1536 * 1024, false},
		{"2048", 2048, false},
		{" 1MB ", 1_000_000, false},
		{"0", 0, true},
		{"lots", 0, true},
	}
	for _, tt := range tests {
		got, err := parseSize(tt.in)
		if tt.wantErr {
			assert.Error(t, err, "input %q", tt.in)
			continue
		}
		require.NoError(t, err, "input %q", tt.in)
		assert.Equal(t, tt.want, got, "input %q", tt.in)
	}
}

func TestDefaultOutputPath(t *testing.T) {
	assert.Equal(t, "docs/report-compressed.pdf", defaultOutputPath("docs/report.pdf"))
	assert.Equal(t, "scan-compressed.PDF", defaultOutputPath("scan.PDF"))
	assert.Equal(t, "noext-compressed.pdf", defaultOutputPath("noext"))
}

func newFlagCmd() *cobra.Command {
	c := &cobra.Command{Use: "t"}
	c.Flags().Int("percent", 0, "")
	c.Flags().String("target", "", "")
	return c
}

func TestRequestFromFlags(t *testing.T) {
	c := newFlagCmd()
	require.NoError(t, c.Flags().Set("percent", "60"))
	req, err := requestFromFlags(c)
	require.NoError(t, err)
	assert.Equal(t, types.ModePercentage, req.Mode)
	assert.Equal(t, int64(60), req.Value)

	c = newFlagCmd()
	require.NoError(t, c.Flags().Set("target", "100KiB"))
	req, err = requestFromFlags(c)
	require.NoError(t, err)
	assert.Equal(t, types.ModeTargetSize, req.Mode)
	assert.Equal(t, int64(100*1024), req.Value)

	c = newFlagCmd()
	require.NoError(t, c.Flags().Set("percent", "99"))
	_, err = requestFromFlags(c)
	assert.Error(t, err)
}

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out", "result.pdf")

	require.NoError(t, writeFileAtomic(path, []byte("%PDF-1.7 first")))
	require.NoError(t, writeFileAtomic(path, []byte("%PDF-1.7 second")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.7 second", string(data))

	leftovers, err := filepath.Glob(filepath.Join(dir, "out", ".pdftools-*"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestNewCompressor(t *testing.T) {
	c, err := newCompressor(types.CompressionConfig{Strategy: types.StrategyLocal})
	require.NoError(t, err)
	assert.Equal(t, "local", c.Name())

	_, err = newCompressor(types.CompressionConfig{Strategy: "zip"})
	assert.ErrorContains(t, err, "unknown strategy")

	loadedSecrets = map[string]string{}
	_, err = newCompressor(types.CompressionConfig{Strategy: types.StrategyRemote})
	assert.ErrorContains(t, err, "API key")

	loadedSecrets = map[string]string{"pdfco-api-key": "k"}
	t.Cleanup(func() { loadedSecrets = nil })
	c, err = newCompressor(types.CompressionConfig{Strategy: types.StrategyRemote})
	require.NoError(t, err)
	assert.Equal(t, "remote", c.Name())
}

func TestProgressPrinter(t *testing.T) {
	assert.Nil(t, progressPrinter(&bytes.Buffer{}, true))

	var buf bytes.Buffer
	fn := progressPrinter(&buf, false)
	fn(40)
	fn(100)
	assert.Equal(t, "\rcompressing...  40%\rcompressing... 100%\n", buf.String())
}
