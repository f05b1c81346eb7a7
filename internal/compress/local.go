// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package compress

import (
	"bytes"
	"context"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"go.uber.org/zap"

	"github.com/pdiddy/pdftools/internal/estimate"
	ptypes "github.com/pdiddy/pdftools/pkg/types"
)

// defaultMaxPasses bounds re-serialization when none is configured.
const defaultMaxPasses = 3

// LocalCompressor rewrites documents in-process with pdfcpu. It strips
// metadata and auxiliary content according to the tier, writes with
// tier-dependent stream settings, and repeats the rewrite while the output
// still exceeds the estimator's budget and keeps getting smaller.
type LocalCompressor struct {
	maxPasses int
	logger    *zap.Logger
}

// NewLocalCompressor creates a local strategy from cfg.
func NewLocalCompressor(cfg ptypes.LocalConfig, logger *zap.Logger) *LocalCompressor {
	// pdfcpu otherwise creates a config directory under the user's home.
	api.DisableConfigDir()

	passes := cfg.MaxPasses
	if passes <= 0 {
		passes = defaultMaxPasses
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LocalCompressor{maxPasses: passes, logger: logger}
}

// Name implements Compressor.
func (l *LocalCompressor) Name() string { return string(ptypes.StrategyLocal) }

// Compress implements Compressor.
func (l *LocalCompressor) Compress(ctx context.Context, input []byte, percentage int, onProgress ProgressFunc) ([]byte, error) {
	tier := estimate.Classify(percentage)
	budget := estimate.Estimate(int64(len(input)), percentage)
	profile := estimate.ProfileFor(percentage)

	report(onProgress, 5)
	out, err := l.rewrite(input, tier, profile)
	if err != nil {
		return nil, err
	}
	report(onProgress, 100/(l.maxPasses+1))

	for pass := 2; pass <= l.maxPasses && int64(len(out)) > budget; pass++ {
		if err := ctx.Err(); err != nil {
			return nil, newError(ErrSerialize, l.Name(), "rewrite", err)
		}
		next, err := l.rewrite(out, tier, profile)
		if err != nil {
			return nil, err
		}
		l.logger.Debug("rewrite pass",
			zap.Int("pass", pass),
			zap.Int("before", len(out)),
			zap.Int("after", len(next)),
			zap.Int64("budget", budget),
		)
		if len(next) >= len(out) {
			break
		}
		out = next
		report(onProgress, pass*100/(l.maxPasses+1))
	}

	report(onProgress, 100)
	return out, nil
}

// rewrite performs one load-strip-optimize-write cycle.
func (l *LocalCompressor) rewrite(input []byte, tier ptypes.Tier, profile estimate.Profile) ([]byte, error) {
	conf := writeConfig(tier)

	pctx, err := api.ReadContext(bytes.NewReader(input), conf)
	if err != nil {
		return nil, newError(ErrInvalidFile, l.Name(), "load", err)
	}
	if err := api.ValidateContext(pctx); err != nil {
		return nil, newError(ErrInvalidFile, l.Name(), "validate", err)
	}

	if err := stripDocument(pctx, profile); err != nil {
		return nil, newError(ErrSerialize, l.Name(), "strip", err)
	}

	if err := api.OptimizeContext(pctx); err != nil {
		return nil, newError(ErrSerialize, l.Name(), "optimize", err)
	}

	var buf bytes.Buffer
	if err := api.WriteContext(pctx, &buf); err != nil {
		return nil, newError(ErrSerialize, l.Name(), "write", err)
	}
	return buf.Bytes(), nil
}

// writeConfig maps a tier onto pdfcpu's writer settings. Object and xref
// streams pack many small objects into compressed batches from medium up;
// duplicate content-stream elimination starts at high.
func writeConfig(tier ptypes.Tier) *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	streams := tier.AtLeast(ptypes.TierMedium)
	conf.WriteObjectStream = streams
	conf.WriteXRefStream = streams
	conf.OptimizeDuplicateContentStreams = tier.AtLeast(ptypes.TierHigh)
	return conf
}

// stripDocument removes content the profile marks for removal: the Info
// dictionary and XMP metadata, outlines, the interactive form, page
// annotations, embedded files, and document JavaScript.
func stripDocument(pctx *model.Context, profile estimate.Profile) error {
	xt := pctx.XRefTable
	if profile.RemoveMetadata {
		xt.Info = nil
		xt.RootDict.Delete("Metadata")
	}
	if profile.RemoveBookmarks {
		xt.Outlines = nil
		xt.RootDict.Delete("Outlines")
	}
	if profile.RemoveFormFields {
		xt.Form = nil
		xt.RootDict.Delete("AcroForm")
	}
	if profile.RemoveAnnotations {
		stripAnnotations(xt)
	}

	var trees []string
	if profile.RemoveEmbeddedFiles {
		trees = append(trees, "EmbeddedFiles")
		xt.RootDict.Delete("AF")
		xt.RootDict.Delete("Collection")
	}
	if profile.RemoveJavaScripts {
		trees = append(trees, "JavaScript")
	}
	return removeNameTrees(xt, trees...)
}

// removeNameTrees drops the named trees from both the catalog's name
// dictionary and pdfcpu's internal name tree cache, which the writer binds
// back into the catalog. An emptied name dictionary is removed.
func removeNameTrees(xt *model.XRefTable, trees ...string) error {
	if len(trees) == 0 {
		return nil
	}
	for _, name := range trees {
		delete(xt.Names, name)
	}

	obj, ok := xt.RootDict.Find("Names")
	if !ok {
		return nil
	}
	names, err := xt.DereferenceDict(obj)
	if err != nil {
		return fmt.Errorf("resolving name dictionary: %w", err)
	}
	for _, name := range trees {
		names.Delete(name)
	}
	if names.Len() == 0 && len(xt.Names) == 0 {
		xt.RootDict.Delete("Names")
	}
	return nil
}

// stripAnnotations drops the annotation array of every page object.
func stripAnnotations(xt *model.XRefTable) {
	for _, entry := range xt.Table {
		if entry == nil || entry.Free {
			continue
		}
		d, ok := entry.Object.(types.Dict)
		if !ok {
			continue
		}
		if t := d.Type(); t != nil && *t == "Page" {
			d.Delete("Annots")
		}
	}
}
