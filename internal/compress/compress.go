// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package compress drives PDF compression. A Compressor strategy (local
// pdfcpu rewrite, remote optimization API, or containerised Ghostscript)
// does the work; the Driver resolves the request into a percentage, runs
// the strategy, and for target-size requests escalates aggressiveness until
// the output fits or the attempt budget is spent.
package compress

import (
	"context"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/pdftools/internal/estimate"
	"github.com/pdiddy/pdftools/internal/pdfinfo"
	"github.com/pdiddy/pdftools/pkg/types"
)

// DefaultMaxAttempts bounds target-size escalation when none is configured.
const DefaultMaxAttempts = 3

// Compressor shrinks one PDF at a given percentage (5-98). Implementations
// report progress from 0 to 100 and return no output on failure.
type Compressor interface {
	// Name identifies the strategy ("local", "remote", "ghostscript").
	Name() string

	// Compress returns the compressed document.
	Compress(ctx context.Context, input []byte, percentage int, onProgress ProgressFunc) ([]byte, error)
}

// Result is the outcome of a Driver run.
type Result struct {
	Data         []byte
	OriginalSize int64
	Size         int64

	// Percentage and Tier are the settings of the attempt that produced Data.
	Percentage int
	Tier       types.Tier

	// PredictedSize is the estimator's prediction for the initial percentage.
	PredictedSize int64

	// Attempts counts Compressor invocations.
	Attempts int

	// Converged is false when a target-size request ended above the target.
	Converged bool

	// Unchanged is true when every attempt grew the file and the original
	// was kept instead.
	Unchanged bool

	Strategy string
	Duration time.Duration
}

// Reduction returns the achieved size reduction in percent.
func (r *Result) Reduction() int {
	return estimate.Reduction(r.OriginalSize, r.Size)
}

// Driver runs compression requests against one strategy.
type Driver struct {
	compressor  Compressor
	maxAttempts int
	logger      *zap.Logger
}

// NewDriver creates a Driver. maxAttempts <= 0 uses DefaultMaxAttempts.
func NewDriver(c Compressor, maxAttempts int, logger *zap.Logger) *Driver {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Driver{compressor: c, maxAttempts: maxAttempts, logger: logger}
}

// Compress validates input and compresses it according to req. The request's
// OriginalSize is taken from input. Progress is reported monotonically from
// 0 to 100.
func (d *Driver) Compress(ctx context.Context, input []byte, req types.CompressionRequest, onProgress ProgressFunc) (*Result, error) {
	start := time.Now()
	name := d.compressor.Name()

	if _, err := pdfinfo.Sniff(input); err != nil {
		return nil, newError(ErrInvalidFile, name, "validate", err)
	}
	req.OriginalSize = int64(len(input))

	prog := newProgress(onProgress)
	prog.report(0)

	var (
		res *Result
		err error
	)
	switch req.Mode {
	case types.ModeTargetSize:
		res, err = d.solve(ctx, input, req.Value, prog)
	default:
		res, err = d.compressOnce(ctx, input, estimate.ClampPercentage(int(req.Value)), prog)
	}
	if err != nil {
		d.logger.Warn("compression failed", zap.String("strategy", name), zap.Error(err))
		return nil, err
	}

	res.OriginalSize = req.OriginalSize
	res.Strategy = name
	if int64(len(res.Data)) >= req.OriginalSize {
		d.logger.Info("output not smaller than input, keeping original",
			zap.Int("output_bytes", len(res.Data)), zap.Int64("input_bytes", req.OriginalSize))
		res.Data = input
		res.Unchanged = true
	}
	res.Size = int64(len(res.Data))
	res.Duration = time.Since(start)
	prog.report(100)

	d.logger.Info("compressed",
		zap.String("strategy", name),
		zap.Int("percentage", res.Percentage),
		zap.String("tier", string(res.Tier)),
		zap.Int64("original_bytes", res.OriginalSize),
		zap.Int64("result_bytes", res.Size),
		zap.Int("attempts", res.Attempts),
		zap.Duration("duration", res.Duration),
	)
	return res, nil
}

func (d *Driver) compressOnce(ctx context.Context, input []byte, percentage int, prog *progress) (*Result, error) {
	out, err := d.compressor.Compress(ctx, input, percentage, prog.span(0, 99))
	if err != nil {
		return nil, asError(err, ErrSerialize, d.compressor.Name(), "compress")
	}
	return &Result{
		Data:          out,
		Percentage:    percentage,
		Tier:          estimate.Classify(percentage),
		PredictedSize: estimate.Estimate(int64(len(input)), percentage),
		Attempts:      1,
		Converged:     true,
	}, nil
}

// Run reads the document at path and compresses it with c using default
// driver settings.
func Run(ctx context.Context, c Compressor, path string, req types.CompressionRequest, onProgress ProgressFunc) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, newError(ErrInvalidFile, c.Name(), "read", err)
	}
	return NewDriver(c, 0, nil).Compress(ctx, data, req, onProgress)
}
