// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pages merges documents, splits them into page ranges, and
// extracts page selections using pdfcpu. Inputs are checked with pdfinfo first so unreadable files are
// rejected before any output is written.
package pages

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"go.uber.org/zap"

	"github.com/pdiddy/pdftools/internal/pdfinfo"
)

var (
	// ErrTooFewInputs is returned when fewer than two files are merged.
	ErrTooFewInputs = errors.New("merge needs at least two input files")

	// ErrInvalidSpan is returned for a split span below one page.
	ErrInvalidSpan = errors.New("split span must be at least 1 page")

	// ErrInvalidRange is returned for a malformed or out-of-bounds page
	// range or selection.
	ErrInvalidRange = errors.New("invalid page range")
)

// MergeResult describes a merged document.
type MergeResult struct {
	Output string `json:"output" yaml:"output"`
	Inputs int    `json:"inputs" yaml:"inputs"`
	Pages  int    `json:"pages" yaml:"pages"`
	Size   int64  `json:"size" yaml:"size"`
}

// Part is one file produced by Split.
type Part struct {
	Path  string `json:"path" yaml:"path"`
	Pages int    `json:"pages" yaml:"pages"`
}

// Merger merges and splits documents.
type Merger struct {
	logger *zap.Logger
}

// New creates a Merger.
func New(logger *zap.Logger) *Merger {
	api.DisableConfigDir()
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Merger{logger: logger}
}

// Merge concatenates inputs, in order, into output. The file is written to
// a temporary name next to output and renamed on success.
func (m *Merger) Merge(ctx context.Context, inputs []string, output string) (*MergeResult, error) {
	if len(inputs) < 2 {
		return nil, ErrTooFewInputs
	}

	total := 0
	for _, in := range inputs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		info, err := pdfinfo.InspectFile(in)
		if err != nil {
			return nil, fmt.Errorf("checking %s: %w", in, err)
		}
		total += info.Pages
	}

	dir := filepath.Dir(output)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".merge-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	if err := api.MergeCreateFile(inputs, tmpPath, false, config()); err != nil {
		return nil, fmt.Errorf("merging %d files: %w", len(inputs), err)
	}
	if err := os.Rename(tmpPath, output); err != nil {
		return nil, fmt.Errorf("renaming merged file: %w", err)
	}

	st, err := os.Stat(output)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", output, err)
	}
	m.logger.Info("merged",
		zap.Int("inputs", len(inputs)),
		zap.Int("pages", total),
		zap.String("output", output),
	)
	return &MergeResult{Output: output, Inputs: len(inputs), Pages: total, Size: st.Size()}, nil
}

// Split writes input into outDir as consecutive files of span pages each
// (the last may be shorter) and returns them in page order. Parts are
// produced in a scratch directory and then moved into outDir, replacing
// files of the same name, so earlier output in outDir is never reported.
func (m *Merger) Split(ctx context.Context, input, outDir string, span int) ([]Part, error) {
	if span < 1 {
		return nil, ErrInvalidSpan
	}
	info, err := pdfinfo.InspectFile(input)
	if err != nil {
		return nil, fmt.Errorf("checking %s: %w", input, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	scratch, err := scratchDir(outDir)
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(scratch)

	if err := api.SplitFile(input, scratch, span, config()); err != nil {
		return nil, fmt.Errorf("splitting %s: %w", input, err)
	}

	stem := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	paths, err := filepath.Glob(filepath.Join(scratch, stem+"_*.pdf"))
	if err != nil {
		return nil, fmt.Errorf("listing split output: %w", err)
	}
	sortByFirstPage(paths, stem)

	parts := make([]Part, 0, len(paths))
	for _, p := range paths {
		r, err := parsePageRange(strings.TrimSuffix(strings.TrimPrefix(filepath.Base(p), stem+"_"), ".pdf"))
		if err != nil {
			return nil, fmt.Errorf("unexpected split output %s: %w", filepath.Base(p), err)
		}
		dst := filepath.Join(outDir, filepath.Base(p))
		if err := os.Rename(p, dst); err != nil {
			return nil, fmt.Errorf("moving %s: %w", filepath.Base(p), err)
		}
		parts = append(parts, Part{Path: dst, Pages: r.Len()})
	}
	m.logger.Info("split",
		zap.String("input", input),
		zap.Int("pages", info.Pages),
		zap.Int("parts", len(parts)),
	)
	return parts, nil
}

// SplitRanges writes one file per page range in ranges (for example
// "1-5,6-10" or "2,4-6") into outDir, named after the input and the range.
// Ranges must lie within the document and are written in the order given.
func (m *Merger) SplitRanges(ctx context.Context, input, outDir, ranges string) ([]Part, error) {
	info, err := pdfinfo.InspectFile(input)
	if err != nil {
		return nil, fmt.Errorf("checking %s: %w", input, err)
	}
	rs, err := ParseRanges(ranges, info.Pages)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory %s: %w", outDir, err)
	}

	stem := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	parts := make([]Part, 0, len(rs))
	for _, r := range rs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out := filepath.Join(outDir, stem+"_"+r.String()+".pdf")
		if err := trim(input, out, []string{r.String()}); err != nil {
			return nil, err
		}
		parts = append(parts, Part{Path: out, Pages: r.Len()})
	}
	m.logger.Info("split ranges",
		zap.String("input", input),
		zap.String("ranges", ranges),
		zap.Int("parts", len(parts)),
	)
	return parts, nil
}

// Extract writes the pages chosen by selection into a single document at
// output. selection uses pdfcpu's page selection syntax: comma separated
// pages and ranges such as "1,3,5-7", with open ranges ("5-"), "even",
// "odd" and "!" negation.
func (m *Merger) Extract(ctx context.Context, input, output, selection string) (*MergeResult, error) {
	if _, err := pdfinfo.InspectFile(input); err != nil {
		return nil, fmt.Errorf("checking %s: %w", input, err)
	}
	selected, err := api.ParsePageSelection(strings.ReplaceAll(selection, " ", ""))
	if err != nil || len(selected) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRange, selection)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dir := filepath.Dir(output)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory %s: %w", dir, err)
	}
	if err := trim(input, output, selected); err != nil {
		return nil, err
	}

	info, err := pdfinfo.InspectFile(output)
	if err != nil {
		return nil, fmt.Errorf("checking %s: %w", output, err)
	}
	st, err := os.Stat(output)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", output, err)
	}
	m.logger.Info("extracted",
		zap.String("input", input),
		zap.String("selection", selection),
		zap.Int("pages", info.Pages),
		zap.String("output", output),
	)
	return &MergeResult{Output: output, Inputs: 1, Pages: info.Pages, Size: st.Size()}, nil
}

// trim writes the selected pages of input to output through a temporary
// file next to output.
func trim(input, output string, selected []string) error {
	tmp, err := os.CreateTemp(filepath.Dir(output), ".extract-*.pdf")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	if err := api.TrimFile(input, tmpPath, selected, config()); err != nil {
		return fmt.Errorf("extracting pages %s: %w", strings.Join(selected, ","), err)
	}
	// pdfcpu writes nothing when the selection matches no page.
	if st, err := os.Stat(tmpPath); err != nil || st.Size() == 0 {
		return fmt.Errorf("%w: %s selects no pages", ErrInvalidRange, strings.Join(selected, ","))
	}
	if err := os.Rename(tmpPath, output); err != nil {
		return fmt.Errorf("renaming %s: %w", filepath.Base(output), err)
	}
	return nil
}

// scratchDir creates outDir and a private working directory inside it.
func scratchDir(outDir string) (string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory %s: %w", outDir, err)
	}
	dir, err := os.MkdirTemp(outDir, ".split-*")
	if err != nil {
		return "", fmt.Errorf("creating scratch directory: %w", err)
	}
	return dir, nil
}

// sortByFirstPage orders split output names (stem_3.pdf, stem_4-6.pdf) by
// their first page number.
func sortByFirstPage(paths []string, stem string) {
	first := func(p string) int {
		r, err := parsePageRange(strings.TrimSuffix(strings.TrimPrefix(filepath.Base(p), stem+"_"), ".pdf"))
		if err != nil {
			return 0
		}
		return r.First
	}
	sort.Slice(paths, func(i, j int) bool { return first(paths[i]) < first(paths[j]) })
}

func config() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}
