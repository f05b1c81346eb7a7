// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pdfinfo validates PDF input and reports basic document facts.
package pdfinfo

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ErrNotPDF is returned for input that is empty or lacks a PDF header.
var ErrNotPDF = errors.New("not a PDF document")

// headerWindow is how far into the file the %PDF- marker may appear.
// Some producers prepend junk before the header.
const headerWindow = 1024

// Info holds facts about one document.
type Info struct {
	Version  string `json:"version" yaml:"version"`
	Pages    int    `json:"pages" yaml:"pages"`
	Size     int64  `json:"size" yaml:"size"`
	Title    string `json:"title,omitempty" yaml:"title,omitempty"`
	Author   string `json:"author,omitempty" yaml:"author,omitempty"`
	Producer string `json:"producer,omitempty" yaml:"producer,omitempty"`
}

// Sniff checks that data looks like a PDF and returns its header version
// (e.g. "1.7"). It does not parse the body.
func Sniff(data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty input", ErrNotPDF)
	}
	window := data[:min(len(data), headerWindow)]
	i := bytes.Index(window, []byte("%PDF-"))
	if i < 0 {
		return "", fmt.Errorf("%w: missing %%PDF- header", ErrNotPDF)
	}
	rest := window[i+len("%PDF-"):]
	end := bytes.IndexAny(rest, "\r\n \t%")
	if end < 0 {
		end = len(rest)
	}
	return string(rest[:end]), nil
}

// Inspect parses data and reports its page count and document info.
func Inspect(data []byte) (info Info, err error) {
	version, err := Sniff(data)
	if err != nil {
		return Info{}, err
	}

	// The parser panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			info = Info{}
			err = fmt.Errorf("parsing PDF: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return Info{}, fmt.Errorf("parsing PDF: %w", err)
	}

	meta := r.Trailer().Key("Info")
	return Info{
		Version:  version,
		Pages:    r.NumPage(),
		Size:     int64(len(data)),
		Title:    strings.TrimSpace(meta.Key("Title").Text()),
		Author:   strings.TrimSpace(meta.Key("Author").Text()),
		Producer: strings.TrimSpace(meta.Key("Producer").Text()),
	}, nil
}

// InspectFile reads path and inspects it.
func InspectFile(path string) (Info, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Info{}, fmt.Errorf("reading %s: %w", path, err)
	}
	info, err := Inspect(data)
	if err != nil {
		return Info{}, fmt.Errorf("%s: %w", path, err)
	}
	return info, nil
}
