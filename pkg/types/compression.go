// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"strings"
)

// Tier is a named compression aggressiveness level. Tiers are ordered from
// least to most aggressive; see Tiers.
type Tier string

const (
	TierLow     Tier = "low"
	TierMedium  Tier = "medium"
	TierHigh    Tier = "high"
	TierExtreme Tier = "extreme"
	TierMaximum Tier = "maximum"
)

// Tiers lists every tier in ascending order of aggressiveness.
var Tiers = []Tier{TierLow, TierMedium, TierHigh, TierExtreme, TierMaximum}

// Rank returns the position of t in Tiers, or -1 for an unknown tier.
func (t Tier) Rank() int {
	for i, tt := range Tiers {
		if tt == t {
			return i
		}
	}
	return -1
}

// Next returns the next more aggressive tier. The boolean is false when t is
// already the most aggressive tier or unknown.
func (t Tier) Next() (Tier, bool) {
	r := t.Rank()
	if r < 0 || r == len(Tiers)-1 {
		return t, false
	}
	return Tiers[r+1], true
}

// AtLeast reports whether t is at least as aggressive as other.
func (t Tier) AtLeast(other Tier) bool {
	return t.Rank() >= other.Rank()
}

// ParseTier converts a case-insensitive tier name into a Tier.
func ParseTier(s string) (Tier, error) {
	t := Tier(strings.ToLower(strings.TrimSpace(s)))
	if t.Rank() < 0 {
		return "", fmt.Errorf("unknown compression tier %q", s)
	}
	return t, nil
}

// RequestMode selects how a CompressionRequest expresses the desired output.
type RequestMode string

const (
	// ModePercentage asks for a relative reduction (5-98).
	ModePercentage RequestMode = "percentage"
	// ModeTargetSize asks for an output no larger than a byte budget.
	ModeTargetSize RequestMode = "target"
)

// CompressionRequest describes one compression job before a strategy runs.
type CompressionRequest struct {
	// OriginalSize is the input document size in bytes.
	OriginalSize int64 `json:"original_size" yaml:"original_size"`

	// Mode selects whether Value is a percentage or a target byte count.
	Mode RequestMode `json:"mode" yaml:"mode"`

	// Value holds the percentage (ModePercentage) or target bytes (ModeTargetSize).
	Value int64 `json:"value" yaml:"value"`
}

// PercentageRequest builds a request for a relative reduction.
func PercentageRequest(originalSize int64, percentage int) CompressionRequest {
	return CompressionRequest{OriginalSize: originalSize, Mode: ModePercentage, Value: int64(percentage)}
}

// TargetSizeRequest builds a request for an output byte budget.
func TargetSizeRequest(originalSize, targetBytes int64) CompressionRequest {
	return CompressionRequest{OriginalSize: originalSize, Mode: ModeTargetSize, Value: targetBytes}
}

// EstimationResult is the predicted outcome of compressing at a percentage.
type EstimationResult struct {
	Percentage    int   `json:"percentage" yaml:"percentage"`
	PredictedSize int64 `json:"predicted_size" yaml:"predicted_size"`
	Tier          Tier  `json:"tier" yaml:"tier"`
}

// JobStatus is the state of an asynchronous remote compression job.
type JobStatus string

const (
	JobPending JobStatus = "pending"
	JobWorking JobStatus = "working"
	JobSuccess JobStatus = "success"
	JobError   JobStatus = "error"
)

// ParseJobStatus maps a status string reported by the remote API onto a
// JobStatus. Anything that is not recognisably in progress or successful
// ("failed", "aborted", "unknown", ...) is treated as JobError.
func ParseJobStatus(s string) JobStatus {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pending", "queued", "":
		return JobPending
	case "working", "processing", "running":
		return JobWorking
	case "success", "done", "completed":
		return JobSuccess
	default:
		return JobError
	}
}

// Terminal reports whether the job will not change status again.
func (s JobStatus) Terminal() bool {
	return s == JobSuccess || s == JobError
}
