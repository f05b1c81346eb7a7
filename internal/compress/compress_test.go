// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package compress

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/pdftools/internal/pdftest"
	"github.com/pdiddy/pdftools/pkg/types"
)

// fakeCompressor produces outputs whose size is a function of the
// percentage and records every call.
type fakeCompressor struct {
	size  func(n, percentage int) int
	err   error
	calls []int
}

func (f *fakeCompressor) Name() string { return "fake" }

func (f *fakeCompressor) Compress(_ context.Context, input []byte, percentage int, onProgress ProgressFunc) ([]byte, error) {
	f.calls = append(f.calls, percentage)
	if f.err != nil {
		return nil, f.err
	}
	report(onProgress, 50)
	report(onProgress, 100)
	return make([]byte, f.size(len(input), percentage)), nil
}

func samplePDF() []byte {
	return pdftest.Build(pdftest.Options{Pages: 2, Title: "Sample", Padding: 200})
}

// linear reduces by exactly percentage.
func linear(n, p int) int { return n * (100 - p) / 100 }

// weak never gets below half the input.
func weak(n, p int) int { return n * (100 - p/2) / 100 }

// nearly reduces by 0.9 * percentage.
func nearly(n, p int) int { return n * (1000 - 9*p) / 1000 }

func TestDriver_Percentage(t *testing.T) {
	input := samplePDF()
	fake := &fakeCompressor{size: linear}
	d := NewDriver(fake, 0, nil)

	res, err := d.Compress(context.Background(), input, types.PercentageRequest(0, 60), nil)
	require.NoError(t, err)

	assert.Equal(t, []int{60}, fake.calls)
	assert.Equal(t, 60, res.Percentage)
	assert.Equal(t, types.TierHigh, res.Tier)
	assert.Equal(t, 1, res.Attempts)
	assert.True(t, res.Converged)
	assert.False(t, res.Unchanged)
	assert.Equal(t, int64(len(input)), res.OriginalSize)
	assert.Equal(t, int64(linear(len(input), 60)), res.Size)
	assert.Equal(t, "fake", res.Strategy)
	assert.InDelta(t, 60, res.Reduction(), 1)
}

func TestDriver_PercentageClamped(t *testing.T) {
	for _, tt := range []struct{ in, want int }{{0, 5}, {-3, 5}, {99, 98}, {250, 98}} {
		t.Run(fmt.Sprint(tt.in), func(t *testing.T) {
			fake := &fakeCompressor{size: linear}
			_, err := NewDriver(fake, 0, nil).Compress(context.Background(), samplePDF(), types.PercentageRequest(0, tt.in), nil)
			require.NoError(t, err)
			assert.Equal(t, []int{tt.want}, fake.calls)
		})
	}
}

func TestDriver_KeepsOriginalWhenOutputGrows(t *testing.T) {
	input := samplePDF()
	fake := &fakeCompressor{size: func(n, _ int) int { return n + 100 }}

	res, err := NewDriver(fake, 0, nil).Compress(context.Background(), input, types.PercentageRequest(0, 40), nil)
	require.NoError(t, err)
	assert.True(t, res.Unchanged)
	assert.Equal(t, input, res.Data)
	assert.Equal(t, res.OriginalSize, res.Size)
	assert.Equal(t, 0, res.Reduction())
}

func TestDriver_InvalidInput(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
	}{
		{"empty", nil},
		{"not a pdf", []byte("hello, world")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeCompressor{size: linear}
			_, err := NewDriver(fake, 0, nil).Compress(context.Background(), tt.input, types.PercentageRequest(0, 50), nil)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidFile)
			assert.Empty(t, fake.calls, "strategy must not run on invalid input")

			var ce *Error
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, "fake", ce.Strategy)
		})
	}
}

func TestDriver_StrategyErrors(t *testing.T) {
	t.Run("plain error wrapped as serialize", func(t *testing.T) {
		cause := errors.New("boom")
		fake := &fakeCompressor{err: cause}
		_, err := NewDriver(fake, 0, nil).Compress(context.Background(), samplePDF(), types.PercentageRequest(0, 50), nil)
		assert.ErrorIs(t, err, ErrSerialize)
		assert.ErrorIs(t, err, cause)
	})

	t.Run("typed error passes through", func(t *testing.T) {
		fake := &fakeCompressor{err: newError(ErrUpload, "fake", "upload", errors.New("refused"))}
		_, err := NewDriver(fake, 0, nil).Compress(context.Background(), samplePDF(), types.PercentageRequest(0, 50), nil)
		assert.ErrorIs(t, err, ErrUpload)
		assert.NotErrorIs(t, err, ErrSerialize)
	})
}

func TestDriver_Progress(t *testing.T) {
	var seen []int
	fake := &fakeCompressor{size: weak}
	input := samplePDF()

	_, err := NewDriver(fake, 3, nil).Compress(context.Background(), input,
		types.TargetSizeRequest(0, int64(len(input)/10)), func(p int) { seen = append(seen, p) })
	require.NoError(t, err)

	require.NotEmpty(t, seen)
	assert.Equal(t, 0, seen[0])
	assert.Equal(t, 100, seen[len(seen)-1])
	for i := 1; i < len(seen); i++ {
		assert.Greater(t, seen[i], seen[i-1], "progress must increase: %v", seen)
	}
}

func TestDriver_TargetConvergesFirstAttempt(t *testing.T) {
	input := samplePDF()
	target := int64(len(input) / 2)
	fake := &fakeCompressor{size: linear}

	res, err := NewDriver(fake, 3, nil).Compress(context.Background(), input, types.TargetSizeRequest(0, target), nil)
	require.NoError(t, err)
	assert.True(t, res.Converged)
	assert.Equal(t, 1, res.Attempts)
	assert.Equal(t, []int{51}, fake.calls)
	assert.LessOrEqual(t, res.Size, target)
}

func TestDriver_TargetEscalates(t *testing.T) {
	input := samplePDF()
	target := int64(len(input) / 2)
	fake := &fakeCompressor{size: nearly}

	res, err := NewDriver(fake, 3, nil).Compress(context.Background(), input, types.TargetSizeRequest(0, target), nil)
	require.NoError(t, err)
	assert.True(t, res.Converged)
	assert.Equal(t, 2, res.Attempts)
	assert.Equal(t, []int{51, 60}, fake.calls)
	assert.Equal(t, 60, res.Percentage)
	assert.Equal(t, types.TierHigh, res.Tier)
}

func TestDriver_TargetUnreachableKeepsBest(t *testing.T) {
	input := samplePDF()
	target := int64(len(input) / 2)
	fake := &fakeCompressor{size: weak}

	res, err := NewDriver(fake, 3, nil).Compress(context.Background(), input, types.TargetSizeRequest(0, target), nil)
	require.NoError(t, err)
	assert.False(t, res.Converged)
	assert.Equal(t, 3, res.Attempts)
	assert.Equal(t, []int{51, 60, 80}, fake.calls)
	assert.Equal(t, 80, res.Percentage)
	assert.Equal(t, int64(weak(len(input), 80)), res.Size)
	assert.Greater(t, res.Size, target)
}

func TestDriver_TargetAttemptsStrictlyIncrease(t *testing.T) {
	input := samplePDF()
	fake := &fakeCompressor{size: func(n, _ int) int { return n - 1 }}

	res, err := NewDriver(fake, 10, nil).Compress(context.Background(), input, types.TargetSizeRequest(0, 1), nil)
	require.NoError(t, err)
	assert.False(t, res.Converged)
	require.NotEmpty(t, fake.calls)
	for i := 1; i < len(fake.calls); i++ {
		assert.Greater(t, fake.calls[i], fake.calls[i-1])
	}
	assert.Equal(t, 98, fake.calls[len(fake.calls)-1])
	assert.LessOrEqual(t, len(fake.calls), 10)
}

func TestEscalate(t *testing.T) {
	tests := []struct {
		in     int
		want   int
		wantOK bool
	}{
		{5, 30, true},
		{10, 30, true},
		{51, 60, true},
		{60, 80, true},
		{85, 90, true},
		{90, 94, true},
		{94, 96, true},
		{97, 98, true},
		{98, 98, false},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.in), func(t *testing.T) {
			got, ok := escalate(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestProgress_MonotonicAndClamped(t *testing.T) {
	var seen []int
	p := newProgress(func(v int) { seen = append(seen, v) })
	p.report(-5)
	p.report(10)
	p.report(10)
	p.report(7)
	p.report(150)
	p.report(100)
	assert.Equal(t, []int{0, 10, 100}, seen)
}

func TestProgress_Span(t *testing.T) {
	var seen []int
	p := newProgress(func(v int) { seen = append(seen, v) })
	fn := p.span(20, 60)
	fn(0)
	fn(50)
	fn(100)
	assert.Equal(t, []int{20, 40, 60}, seen)
}

func TestProgress_NilFunc(t *testing.T) {
	assert.NotPanics(t, func() {
		newProgress(nil).report(50)
		report(nil, 10)
	})
}

func TestError_Message(t *testing.T) {
	err := newError(ErrDownload, "remote", "download", errors.New("status 404"))
	assert.Equal(t, "remote compression: download: download failed: status 404", err.Error())
	assert.ErrorIs(t, err, ErrDownload)

	bare := newError(ErrPollTimeout, "remote", "poll", nil)
	assert.Equal(t, "remote compression: poll: compression job timed out", bare.Error())
}

func TestRun(t *testing.T) {
	path := pdftest.WriteFile(t, "doc.pdf", pdftest.Options{Pages: 2, Padding: 100})
	fake := &fakeCompressor{size: linear}

	res, err := Run(context.Background(), fake, path, types.PercentageRequest(0, 30), nil)
	require.NoError(t, err)
	assert.Equal(t, types.TierMedium, res.Tier)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, int64(len(data)), res.OriginalSize)

	_, err = Run(context.Background(), fake, filepath.Join(t.TempDir(), "missing.pdf"), types.PercentageRequest(0, 30), nil)
	assert.ErrorIs(t, err, ErrInvalidFile)
}
