// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package compress

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/pdftools/pkg/types"
)

type fakeRuntime struct {
	image  string
	args   []string
	stdin  []byte
	output []byte
	err    error
}

func (f *fakeRuntime) Name() string               { return "docker" }
func (f *fakeRuntime) Available() bool            { return true }
func (f *fakeRuntime) ImageExists(_ string) error { return nil }

func (f *fakeRuntime) Run(_ context.Context, image string, args []string, stdin io.Reader, stdout io.Writer) error {
	f.image = image
	f.args = args
	f.stdin, _ = io.ReadAll(stdin)
	if f.err != nil {
		return f.err
	}
	_, err := stdout.Write(f.output)
	return err
}

func TestGhostscript_Compress(t *testing.T) {
	rt := &fakeRuntime{output: []byte("%PDF-1.5 out")}
	g := NewGhostscriptCompressor(rt, types.GhostscriptConfig{}, nil)

	out, err := g.Compress(context.Background(), []byte("%PDF-1.7 in"), 70, nil)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.5 out"), out)
	assert.Equal(t, DefaultGhostscriptImage, rt.image)
	assert.Equal(t, []byte("%PDF-1.7 in"), rt.stdin)
	assert.Contains(t, rt.args, "-dPDFSETTINGS=/ebook")
	assert.Equal(t, []string{"-sOutputFile=-", "-"}, rt.args[len(rt.args)-2:])
}

func TestGhostscript_ConfiguredImage(t *testing.T) {
	rt := &fakeRuntime{output: []byte("%PDF-1.5")}
	g := NewGhostscriptCompressor(rt, types.GhostscriptConfig{Image: "registry.local/gs:10"}, nil)
	_, err := g.Compress(context.Background(), []byte("%PDF-1.7"), 20, nil)
	require.NoError(t, err)
	assert.Equal(t, "registry.local/gs:10", rt.image)
}

func TestGhostscript_Errors(t *testing.T) {
	t.Run("run failure", func(t *testing.T) {
		rt := &fakeRuntime{err: errors.New("exit status 1")}
		_, err := NewGhostscriptCompressor(rt, types.GhostscriptConfig{}, nil).
			Compress(context.Background(), []byte("%PDF-1.7"), 50, nil)
		assert.ErrorIs(t, err, ErrSerialize)
		assert.Contains(t, err.Error(), "exit status 1")
	})

	t.Run("empty output", func(t *testing.T) {
		rt := &fakeRuntime{}
		_, err := NewGhostscriptCompressor(rt, types.GhostscriptConfig{}, nil).
			Compress(context.Background(), []byte("%PDF-1.7"), 50, nil)
		assert.ErrorIs(t, err, ErrSerialize)
	})
}

func TestGsArgs(t *testing.T) {
	tests := []struct {
		percentage int
		settings   string
		downsample bool
	}{
		{10, "/prepress", false},
		{40, "/printer", false},
		{65, "/ebook", false},
		{85, "/screen", false},
		{95, "/screen", true},
	}
	for _, tt := range tests {
		args := gsArgs(tt.percentage)
		assert.Contains(t, args, "-dPDFSETTINGS="+tt.settings, "percentage %d", tt.percentage)
		assert.Contains(t, args, "-dSAFER")
		if tt.downsample {
			assert.Contains(t, args, "-dColorImageResolution=72")
			assert.Contains(t, args, "-dShowAnnots=false")
		} else {
			assert.NotContains(t, args, "-dColorImageResolution=72")
		}
	}
}
