// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pdfinfo

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/pdftools/internal/pdftest"
)

func TestSniff(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"plain header", "%PDF-1.7\n...", "1.7", false},
		{"junk before header", "garbage%PDF-1.4\r\n", "1.4", false},
		{"header only", "%PDF-2.0", "2.0", false},
		{"empty", "", "", true},
		{"not a pdf", "PK\x03\x04 zip file", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Sniff([]byte(tt.input))
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrNotPDF)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestInspect(t *testing.T) {
	data := pdftest.Build(pdftest.Options{Pages: 3, Title: "Quarterly Report", Author: "Finance"})

	info, err := Inspect(data)
	require.NoError(t, err)
	assert.Equal(t, "1.7", info.Version)
	assert.Equal(t, 3, info.Pages)
	assert.Equal(t, int64(len(data)), info.Size)
	assert.Equal(t, "Quarterly Report", info.Title)
	assert.Equal(t, "Finance", info.Author)
	assert.Equal(t, "pdftest", info.Producer)
}

func TestInspect_NoInfoDictionary(t *testing.T) {
	info, err := Inspect(pdftest.Build(pdftest.Options{Pages: 1}))
	require.NoError(t, err)
	assert.Equal(t, 1, info.Pages)
	assert.Empty(t, info.Title)
}

func TestInspect_Truncated(t *testing.T) {
	data := pdftest.Build(pdftest.Options{Pages: 2})
	_, err := Inspect(data[:len(data)/2])
	assert.Error(t, err)
}

func TestInspectFile(t *testing.T) {
	path := pdftest.WriteFile(t, "doc.pdf", pdftest.Options{Pages: 2})
	info, err := InspectFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, info.Pages)

	_, err = InspectFile(filepath.Join(t.TempDir(), "missing.pdf"))
	assert.Error(t, err)
}
