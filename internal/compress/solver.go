// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package compress

import (
	"context"

	"go.uber.org/zap"

	"github.com/pdiddy/pdftools/internal/estimate"
)

// solve compresses toward a target byte count. It starts at the percentage
// the inverse mapping predicts, and while the output is still above target
// retries with a strictly more aggressive percentage, at most maxAttempts
// times. The smallest output wins even if it never reaches the target.
func (d *Driver) solve(ctx context.Context, input []byte, target int64, prog *progress) (*Result, error) {
	name := d.compressor.Name()
	original := int64(len(input))
	percentage := estimate.PercentageForTarget(original, target)

	best := &Result{
		PredictedSize: estimate.Estimate(original, percentage),
	}

	for attempt := 1; attempt <= d.maxAttempts; attempt++ {
		lo := (attempt - 1) * 99 / d.maxAttempts
		hi := attempt * 99 / d.maxAttempts

		out, err := d.compressor.Compress(ctx, input, percentage, prog.span(lo, hi))
		if err != nil {
			return nil, asError(err, ErrSerialize, name, "compress")
		}
		best.Attempts = attempt

		size := int64(len(out))
		d.logger.Debug("target attempt",
			zap.Int("attempt", attempt),
			zap.Int("percentage", percentage),
			zap.Int64("size", size),
			zap.Int64("target", target),
		)

		if best.Data == nil || size < int64(len(best.Data)) {
			best.Data = out
			best.Percentage = percentage
			best.Tier = estimate.Classify(percentage)
		}
		if size <= target {
			best.Converged = true
			return best, nil
		}

		next, ok := escalate(percentage)
		if !ok {
			break
		}
		percentage = next
	}

	d.logger.Info("target size not reached",
		zap.Int64("target", target),
		zap.Int("best_size", len(best.Data)),
		zap.Int("attempts", best.Attempts),
	)
	return best, nil
}

// escalate returns the next, strictly more aggressive percentage: the lower
// bound of the next tier, or halfway to MaxPercentage inside the top tier.
// The boolean is false once MaxPercentage has been tried.
func escalate(percentage int) (int, bool) {
	if percentage >= estimate.MaxPercentage {
		return percentage, false
	}
	if next, ok := estimate.Classify(percentage).Next(); ok {
		return max(estimate.LowerBound(next), percentage+1), true
	}
	return percentage + (estimate.MaxPercentage-percentage+1)/2, true
}
