// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package history

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/pdftools/pkg/types"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(types.HistoryConfig{Enabled: true, Dir: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleRun(file string, started time.Time) *types.Run {
	return &types.Run{
		File:          file,
		Strategy:      types.StrategyLocal,
		Mode:          types.ModePercentage,
		Requested:     60,
		Percentage:    60,
		Tier:          types.TierHigh,
		OriginalSize:  1_000_000,
		PredictedSize: 382_000,
		ResultSize:    400_000,
		Attempts:      1,
		Status:        types.RunSucceeded,
		StartedAt:     started,
		Duration:      1500 * time.Millisecond,
	}
}

func TestNewStoreCreatesDBFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "state")
	s, err := NewStore(types.HistoryConfig{Dir: dir})
	require.NoError(t, err)
	defer s.Close()
	assert.FileExists(t, filepath.Join(dir, dbFile))
}

func TestNewStoreRequiresDir(t *testing.T) {
	_, err := NewStore(types.HistoryConfig{})
	assert.Error(t, err)
}

func TestRecordAssignsIDAndTime(t *testing.T) {
	s := testStore(t)
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	run := sampleRun("a.pdf", time.Time{})
	run.Status = ""
	require.NoError(t, s.Record(context.Background(), run))

	assert.Len(t, run.ID, 36)
	assert.Equal(t, fixed, run.StartedAt)
	assert.Equal(t, types.RunSucceeded, run.Status)
}

func TestRecordAndList(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	first := sampleRun("first.pdf", base)
	second := sampleRun("second.pdf", base.Add(time.Minute))
	failed := sampleRun("broken.pdf", base.Add(2*time.Minute))
	failed.Status = types.RunFailed
	failed.Error = "local compression: load: invalid or missing PDF"
	failed.ResultSize = 0

	for _, r := range []*types.Run{first, second, failed} {
		require.NoError(t, s.Record(ctx, r))
	}

	runs, err := s.List(ctx, ListOptions{})
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, "broken.pdf", runs[0].File)
	assert.Equal(t, "first.pdf", runs[2].File)

	got := runs[1]
	assert.Equal(t, second.ID, got.ID)
	assert.Equal(t, types.StrategyLocal, got.Strategy)
	assert.Equal(t, types.ModePercentage, got.Mode)
	assert.Equal(t, types.TierHigh, got.Tier)
	assert.Equal(t, int64(382_000), got.PredictedSize)
	assert.Equal(t, 1500*time.Millisecond, got.Duration)
	assert.True(t, second.StartedAt.Equal(got.StartedAt))

	limited, err := s.List(ctx, ListOptions{Limit: 1})
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "broken.pdf", limited[0].File)

	onlyFailed, err := s.List(ctx, ListOptions{Status: types.RunFailed})
	require.NoError(t, err)
	require.Len(t, onlyFailed, 1)
	assert.Equal(t, failed.Error, onlyFailed[0].Error)
}

func TestListOrdersWithinSecond(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	// Recorded out of order so insertion order cannot decide.
	for _, r := range []*types.Run{
		sampleRun("half.pdf", base.Add(500*time.Millisecond)),
		sampleRun("whole.pdf", base),
		sampleRun("tiny.pdf", base.Add(5*time.Millisecond)),
	} {
		require.NoError(t, s.Record(ctx, r))
	}

	runs, err := s.List(ctx, ListOptions{})
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, []string{"half.pdf", "tiny.pdf", "whole.pdf"}, []string{runs[0].File, runs[1].File, runs[2].File})
	assert.Equal(t, base.Add(500*time.Millisecond), runs[0].StartedAt)

	all, err := s.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, "whole.pdf", all[0].File)
}

func TestRecordDuplicateID(t *testing.T) {
	s := testStore(t)
	run := sampleRun("a.pdf", time.Now())
	require.NoError(t, s.Record(context.Background(), run))
	assert.Error(t, s.Record(context.Background(), run))
}

func TestSummarize(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	empty, err := s.Summarize(ctx)
	require.NoError(t, err)
	assert.Equal(t, Summary{}, empty)

	require.NoError(t, s.Record(ctx, sampleRun("a.pdf", time.Now())))
	require.NoError(t, s.Record(ctx, sampleRun("b.pdf", time.Now())))
	bad := sampleRun("c.pdf", time.Now())
	bad.Status = types.RunFailed
	require.NoError(t, s.Record(ctx, bad))

	sum, err := s.Summarize(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, sum.Runs)
	assert.Equal(t, 2, sum.Succeeded)
	assert.Equal(t, 1, sum.Failed)
	assert.Equal(t, int64(2_000_000), sum.OriginalBytes)
	assert.Equal(t, int64(800_000), sum.ResultBytes)
	assert.Equal(t, int64(1_200_000), sum.Saved())
}

func TestExport(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, s.Record(ctx, sampleRun("first.pdf", base)))
	require.NoError(t, s.Record(ctx, sampleRun("second.pdf", base.Add(time.Hour))))

	t.Run("yaml", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, s.Export(ctx, &buf, FormatYAML))

		var got Export
		require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
		require.Len(t, got.Runs, 2)
		assert.Equal(t, "first.pdf", got.Runs[0].File)
		assert.Equal(t, 2, got.Summary.Runs)
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, s.Export(ctx, &buf, FormatJSON))

		var got Export
		require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
		require.Len(t, got.Runs, 2)
		assert.Equal(t, "second.pdf", got.Runs[1].File)
		assert.Equal(t, types.TierHigh, got.Runs[1].Tier)
	})

	t.Run("unsupported", func(t *testing.T) {
		err := s.Export(ctx, &bytes.Buffer{}, "xml")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "xml")
	})
}

func TestExportEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, testStore(t).Export(context.Background(), &buf, FormatJSON))
	assert.Contains(t, buf.String(), `"runs": []`)
}
