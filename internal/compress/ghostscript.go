// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package compress

import (
	"bytes"
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/pdiddy/pdftools/internal/container"
	"github.com/pdiddy/pdftools/internal/estimate"
	"github.com/pdiddy/pdftools/pkg/types"
)

// DefaultGhostscriptImage is used when no image is configured.
const DefaultGhostscriptImage = "minidocks/ghostscript:latest"

// pdfSettings maps tiers onto Ghostscript's distiller presets.
var pdfSettings = map[types.Tier]string{
	types.TierLow:     "/prepress",
	types.TierMedium:  "/printer",
	types.TierHigh:    "/ebook",
	types.TierExtreme: "/screen",
	types.TierMaximum: "/screen",
}

// GhostscriptCompressor runs gs inside a container, feeding the document on
// stdin and reading the rewritten document from stdout.
type GhostscriptCompressor struct {
	runtime container.Runtime
	image   string
	logger  *zap.Logger
}

// NewGhostscriptCompressor creates a ghostscript strategy on rt.
func NewGhostscriptCompressor(rt container.Runtime, cfg types.GhostscriptConfig, logger *zap.Logger) *GhostscriptCompressor {
	image := cfg.Image
	if image == "" {
		image = DefaultGhostscriptImage
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GhostscriptCompressor{runtime: rt, image: image, logger: logger}
}

// Name implements Compressor.
func (g *GhostscriptCompressor) Name() string { return string(types.StrategyGhostscript) }

// Compress implements Compressor.
func (g *GhostscriptCompressor) Compress(ctx context.Context, input []byte, percentage int, onProgress ProgressFunc) ([]byte, error) {
	args := gsArgs(percentage)
	g.logger.Debug("running ghostscript",
		zap.String("runtime", g.runtime.Name()),
		zap.String("image", g.image),
		zap.Strings("args", args),
	)

	report(onProgress, 10)
	var out bytes.Buffer
	if err := g.runtime.Run(ctx, g.image, args, bytes.NewReader(input), &out); err != nil {
		return nil, newError(ErrSerialize, g.Name(), "run", err)
	}
	if out.Len() == 0 {
		return nil, newError(ErrSerialize, g.Name(), "run", errors.New("ghostscript produced no output"))
	}
	report(onProgress, 100)
	return out.Bytes(), nil
}

// gsArgs builds the gs command line for percentage.
func gsArgs(percentage int) []string {
	tier := estimate.Classify(percentage)
	profile := estimate.ProfileFor(percentage)

	args := []string{
		"gs", "-q", "-dNOPAUSE", "-dBATCH", "-dSAFER",
		"-sDEVICE=pdfwrite",
		"-dCompatibilityLevel=1.5",
		"-dPDFSETTINGS=" + pdfSettings[tier],
	}
	if tier == types.TierMaximum {
		args = append(args,
			"-dDownsampleColorImages=true", "-dColorImageResolution=72",
			"-dDownsampleGrayImages=true", "-dGrayImageResolution=72",
			"-dDownsampleMonoImages=true", "-dMonoImageResolution=72",
		)
	}
	if profile.RemoveAnnotations {
		args = append(args, "-dShowAnnots=false")
	}
	return append(args, "-sOutputFile=-", "-")
}
