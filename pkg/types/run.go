// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// RunStatus records how a compression run ended.
type RunStatus string

const (
	RunSucceeded RunStatus = "succeeded"
	RunFailed    RunStatus = "failed"
)

// Run is one recorded invocation of the compress tool.
type Run struct {
	// ID is a random UUID assigned when the run is recorded.
	ID string `json:"id" yaml:"id"`

	// File is the input path as given on the command line.
	File string `json:"file" yaml:"file"`

	// Strategy names the compressor that ran (local, remote, ghostscript).
	Strategy Strategy `json:"strategy" yaml:"strategy"`

	// Mode and Requested echo the CompressionRequest.
	Mode      RequestMode `json:"mode" yaml:"mode"`
	Requested int64       `json:"requested" yaml:"requested"`

	// Percentage is the final percentage used, after any target-size escalation.
	Percentage int  `json:"percentage" yaml:"percentage"`
	Tier       Tier `json:"tier" yaml:"tier"`

	OriginalSize  int64 `json:"original_size" yaml:"original_size"`
	PredictedSize int64 `json:"predicted_size" yaml:"predicted_size"`
	ResultSize    int64 `json:"result_size" yaml:"result_size"`

	// Attempts counts compressor invocations (more than one only in target mode).
	Attempts int `json:"attempts" yaml:"attempts"`

	Status RunStatus `json:"status" yaml:"status"`
	Error  string    `json:"error,omitempty" yaml:"error,omitempty"`

	StartedAt time.Time     `json:"started_at" yaml:"started_at"`
	Duration  time.Duration `json:"duration" yaml:"duration"`
}

// Saved returns the number of bytes the run removed, or 0 for failed runs.
func (r Run) Saved() int64 {
	if r.Status != RunSucceeded || r.ResultSize >= r.OriginalSize {
		return 0
	}
	return r.OriginalSize - r.ResultSize
}
