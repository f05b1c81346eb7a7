// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/pdiddy/pdftools/internal/compress"
	"github.com/pdiddy/pdftools/internal/pdfco"
	"github.com/pdiddy/pdftools/pkg/types"
)

const defaultUserAgent = "pdftools/0.1"

// setDefaults registers every configuration key so that environment
// variables (PDFTOOLS_COMPRESSION_STRATEGY, ...) are picked up by Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("compression.strategy", string(types.StrategyLocal))
	v.SetDefault("compression.max_attempts", compress.DefaultMaxAttempts)

	v.SetDefault("compression.remote.base_url", pdfco.DefaultBaseURL)
	v.SetDefault("compression.remote.api_key", "")
	v.SetDefault("compression.remote.timeout", 60*time.Second)
	v.SetDefault("compression.remote.user_agent", defaultUserAgent)
	v.SetDefault("compression.remote.poll_initial", 2*time.Second)
	v.SetDefault("compression.remote.poll_step", 500*time.Millisecond)
	v.SetDefault("compression.remote.poll_max", 5*time.Second)
	v.SetDefault("compression.remote.poll_timeout", 5*time.Minute)
	v.SetDefault("compression.remote.max_retries", 5)

	v.SetDefault("compression.local.max_passes", 3)
	v.SetDefault("compression.ghostscript.image", compress.DefaultGhostscriptImage)

	v.SetDefault("history.enabled", true)
	v.SetDefault("history.dir", defaultHistoryDir())

	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "console")
}

// defaultHistoryDir is ~/.local/state/pdftools, or .pdftools when the home
// directory is unknown.
func defaultHistoryDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".pdftools"
	}
	return filepath.Join(home, ".local", "state", "pdftools")
}
