// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package estimate predicts compressed PDF sizes and maps percentages and
// target sizes onto compression tiers. Everything here is a pure function;
// the compress package decides what to do with the numbers.
package estimate

import (
	"math"

	"github.com/dustin/go-humanize"

	"github.com/pdiddy/pdftools/pkg/types"
)

const (
	// MinPercentage and MaxPercentage bound every percentage the estimator accepts.
	MinPercentage = 5
	MaxPercentage = 98

	// MinTargetPercentage is returned by PercentageForTarget when no
	// compression is needed.
	MinTargetPercentage = 10

	// defaultPercentage is used when the original size is unknown.
	defaultPercentage = 50

	// MinimumSize is the smallest predicted output. Files already smaller
	// than this are predicted unchanged.
	MinimumSize int64 = 20 * 1024
)

// tierSpec ties a tier to the lowest percentage that selects it and the
// efficiency coefficient the estimator applies inside it. Entries are
// ordered from most to least aggressive so Classify can stop at the first
// match.
type tierSpec struct {
	tier       types.Tier
	lower      int
	efficiency float64
}

var tierTable = []tierSpec{
	{types.TierMaximum, 90, 1.06},
	{types.TierExtreme, 80, 1.05},
	{types.TierHigh, 60, 1.03},
	{types.TierMedium, 30, 1.00},
	{types.TierLow, MinPercentage, 0.96},
}

// ClampPercentage limits p to [MinPercentage, MaxPercentage].
func ClampPercentage(p int) int {
	return clamp(p, MinPercentage, MaxPercentage)
}

// Classify maps a percentage onto its tier. Lower bounds are inclusive:
// 90+ maximum, 80+ extreme, 60+ high, 30+ medium, otherwise low.
func Classify(percentage int) types.Tier {
	return specFor(ClampPercentage(percentage)).tier
}

// LowerBound returns the smallest percentage that classifies as t.
func LowerBound(t types.Tier) int {
	for _, s := range tierTable {
		if s.tier == t {
			return s.lower
		}
	}
	return MinPercentage
}

// Efficiency returns the estimator coefficient for t. Coefficients above 1
// model the extra savings the aggressive tiers get from stripping content
// and downsampling images on top of the nominal percentage.
func Efficiency(t types.Tier) float64 {
	for _, s := range tierTable {
		if s.tier == t {
			return s.efficiency
		}
	}
	return 1
}

// Estimate predicts the output size for compressing originalSize bytes at
// the given percentage. The result never exceeds originalSize and never
// drops below MinimumSize (or originalSize, if that is smaller). An empty
// original yields MinimumSize.
func Estimate(originalSize int64, percentage int) int64 {
	if originalSize <= 0 {
		return MinimumSize
	}
	p := ClampPercentage(percentage)
	reduction := float64(p) / 100 * specFor(p).efficiency

	predicted := int64(math.Round(float64(originalSize) * (1 - reduction)))

	floor := MinimumSize
	if originalSize < floor {
		floor = originalSize
	}
	if predicted < floor {
		predicted = floor
	}
	if predicted > originalSize {
		predicted = originalSize
	}
	return predicted
}

// EstimateResult bundles Estimate and Classify for one percentage.
func EstimateResult(originalSize int64, percentage int) types.EstimationResult {
	p := ClampPercentage(percentage)
	return types.EstimationResult{
		Percentage:    p,
		PredictedSize: Estimate(originalSize, p),
		Tier:          Classify(p),
	}
}

// PercentageForTarget returns the percentage expected to bring originalSize
// down to targetSize. The raw reduction is scaled up by a band correction
// (larger for more aggressive reductions) so that Estimate at the returned
// percentage lands at or just under the target. The result is clamped to
// [MinTargetPercentage, MaxPercentage].
func PercentageForTarget(originalSize, targetSize int64) int {
	if originalSize <= 0 {
		return defaultPercentage
	}
	if targetSize >= originalSize {
		return MinTargetPercentage
	}

	base := 100 - float64(targetSize)/float64(originalSize)*100
	switch {
	case base > 85:
		base *= 1.05
	case base > 60:
		base *= 1.03
	case base > 30:
		base *= 1.01
	}
	return clamp(int(math.Round(base)), MinTargetPercentage, MaxPercentage)
}

// Resolve turns a request into the percentage to compress at and the
// corresponding estimate.
func Resolve(req types.CompressionRequest) types.EstimationResult {
	var p int
	switch req.Mode {
	case types.ModeTargetSize:
		p = PercentageForTarget(req.OriginalSize, req.Value)
	default:
		p = int(req.Value)
	}
	return EstimateResult(req.OriginalSize, p)
}

// Reduction returns the achieved reduction as a rounded percentage of the
// original size. It is negative when the output grew.
func Reduction(originalSize, compressedSize int64) int {
	if originalSize <= 0 {
		return 0
	}
	return int(math.Round(100 - float64(compressedSize)/float64(originalSize)*100))
}

// FormatSize renders a byte count with binary units ("1.5 MiB").
func FormatSize(n int64) string {
	if n < 0 {
		return "-" + humanize.IBytes(uint64(-n))
	}
	return humanize.IBytes(uint64(n))
}

func specFor(p int) tierSpec {
	for _, s := range tierTable {
		if p >= s.lower {
			return s
		}
	}
	return tierTable[len(tierTable)-1]
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
