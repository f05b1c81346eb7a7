// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by components that make network requests.
type HTTPConfig struct {
	// Timeout is the per-request HTTP timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "pdftools/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// Strategy selects the compression backend.
type Strategy string

const (
	StrategyLocal       Strategy = "local"
	StrategyRemote      Strategy = "remote"
	StrategyGhostscript Strategy = "ghostscript"
)

// RemoteConfig holds settings for the remote optimization API.
type RemoteConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// BaseURL is the API root (default https://api.pdf.co).
	BaseURL string `json:"base_url" yaml:"base_url" mapstructure:"base_url"`

	// APIKey is sent in the x-api-key header. When empty it is taken from
	// the pdfco-api-key secret.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// PollInitial, PollStep and PollMax shape the status polling schedule:
	// wait n = min(PollMax, PollInitial + n*PollStep).
	PollInitial time.Duration `json:"poll_initial" yaml:"poll_initial" mapstructure:"poll_initial"`
	PollStep    time.Duration `json:"poll_step" yaml:"poll_step" mapstructure:"poll_step"`
	PollMax     time.Duration `json:"poll_max" yaml:"poll_max" mapstructure:"poll_max"`

	// PollTimeout bounds the whole polling phase of one job.
	PollTimeout time.Duration `json:"poll_timeout" yaml:"poll_timeout" mapstructure:"poll_timeout"`

	// MaxRetries is the number of retries on HTTP 429/503 (default 5).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`
}

// LocalConfig holds settings for the in-process pdfcpu strategy.
type LocalConfig struct {
	// MaxPasses bounds re-serialization passes while the output exceeds
	// the size budget (default 3).
	MaxPasses int `json:"max_passes" yaml:"max_passes" mapstructure:"max_passes"`
}

// GhostscriptConfig holds settings for the containerised Ghostscript strategy.
type GhostscriptConfig struct {
	// Image is the container image providing the gs binary.
	Image string `json:"image" yaml:"image" mapstructure:"image"`
}

// CompressionConfig groups the compress tool settings.
type CompressionConfig struct {
	// Strategy selects local, remote, or ghostscript.
	Strategy Strategy `json:"strategy" yaml:"strategy" mapstructure:"strategy"`

	// MaxAttempts bounds target-size escalation (default 3).
	MaxAttempts int `json:"max_attempts" yaml:"max_attempts" mapstructure:"max_attempts"`

	Remote      RemoteConfig      `json:"remote" yaml:"remote" mapstructure:"remote"`
	Local       LocalConfig       `json:"local" yaml:"local" mapstructure:"local"`
	Ghostscript GhostscriptConfig `json:"ghostscript" yaml:"ghostscript" mapstructure:"ghostscript"`
}

// HistoryConfig holds settings for the run history database.
type HistoryConfig struct {
	// Enabled turns run recording on or off.
	Enabled bool `json:"enabled" yaml:"enabled" mapstructure:"enabled"`

	// Dir is the directory holding history.db.
	Dir string `json:"dir" yaml:"dir" mapstructure:"dir"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level" yaml:"level" mapstructure:"level"`

	// Format is "console" or "json".
	Format string `json:"format" yaml:"format" mapstructure:"format"`
}

// Config is the full pdftools configuration.
type Config struct {
	Compression CompressionConfig `json:"compression" yaml:"compression" mapstructure:"compression"`
	History     HistoryConfig     `json:"history" yaml:"history" mapstructure:"history"`
	Log         LogConfig         `json:"log" yaml:"log" mapstructure:"log"`
}
