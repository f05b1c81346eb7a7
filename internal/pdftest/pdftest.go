// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pdftest builds small, structurally valid PDF documents for tests.
package pdftest

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// Options controls the generated document.
type Options struct {
	// Pages is the page count (default 1).
	Pages int
	// Title and Author go into the Info dictionary when non-empty.
	Title  string
	Author string
	// Padding repeats a drawing operator in every content stream to make
	// the file larger.
	Padding int

	// Annotation attaches a text annotation to the first page.
	Annotation bool
	// Outline adds a one-item bookmark tree pointing at the first page.
	Outline bool
	// Form adds an interactive form dictionary.
	Form bool
	// EmbeddedFile attaches a small text file through the EmbeddedFiles name tree.
	EmbeddedFile bool
	// JavaScript adds a document-level script through the JavaScript name tree.
	JavaScript bool
}

// Script is the document-level JavaScript added by Options.JavaScript.
const Script = "app.alert('pdftest');"

// Build returns a classic-xref PDF 1.7 document.
func Build(opts Options) []byte {
	if opts.Pages <= 0 {
		opts.Pages = 1
	}

	// Object numbers: 1 catalog, 2 pages, then page/content pairs, then the
	// optional extras in field order, then info.
	objects := make([]string, 2, 2+2*opts.Pages)
	add := func(obj string) int {
		objects = append(objects, obj)
		return len(objects)
	}

	kids := make([]string, opts.Pages)
	for i := range opts.Pages {
		kids[i] = fmt.Sprintf("%d 0 R", 3+2*i)
	}
	objects[1] = fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), opts.Pages)

	annotNum := 0
	if opts.Annotation {
		annotNum = 3 + 2*opts.Pages
	}

	for i := range opts.Pages {
		annots := ""
		if i == 0 && annotNum > 0 {
			annots = fmt.Sprintf(" /Annots [%d 0 R]", annotNum)
		}
		add(fmt.Sprintf(
			"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << >> /Contents %d 0 R%s >>", 4+2*i, annots))

		var content strings.Builder
		fmt.Fprintf(&content, "%d 0 0 RG 0 0 m %d 100 l S\n", i%2, 100+i)
		for range opts.Padding {
			content.WriteString("10 10 m 200 200 l S\n")
		}
		add(stream("", content.String()))
	}

	catalog := "<< /Type /Catalog /Pages 2 0 R"
	if opts.Annotation {
		add("<< /Type /Annot /Subtype /Text /Rect [10 10 30 30] /Contents (note) >>")
	}
	if opts.Outline {
		root := len(objects) + 1
		add(fmt.Sprintf("<< /Type /Outlines /First %d 0 R /Last %d 0 R /Count 1 >>", root+1, root+1))
		add(fmt.Sprintf("<< /Title (Introduction) /Parent %d 0 R /Dest [3 0 R /Fit] >>", root))
		catalog += fmt.Sprintf(" /Outlines %d 0 R", root)
	}
	if opts.Form {
		catalog += " /AcroForm << /Fields [] >>"
	}
	var names []string
	if opts.EmbeddedFile {
		file := add(stream("/Type /EmbeddedFile", "attached by pdftest\n"))
		spec := add(fmt.Sprintf("<< /Type /Filespec /F (note.txt) /UF (note.txt) /EF << /F %d 0 R >> >>", file))
		names = append(names, fmt.Sprintf("/EmbeddedFiles << /Names [(note.txt) %d 0 R] >>", spec))
	}
	if opts.JavaScript {
		action := add(fmt.Sprintf("<< /S /JavaScript /JS (%s) >>", Script))
		names = append(names, fmt.Sprintf("/JavaScript << /Names [(init) %d 0 R] >>", action))
	}
	if len(names) > 0 {
		catalog += " /Names << " + strings.Join(names, " ") + " >>"
	}
	objects[0] = catalog + " >>"

	infoNum := 0
	if opts.Title != "" || opts.Author != "" {
		var info strings.Builder
		info.WriteString("<<")
		if opts.Title != "" {
			fmt.Fprintf(&info, " /Title (%s)", opts.Title)
		}
		if opts.Author != "" {
			fmt.Fprintf(&info, " /Author (%s)", opts.Author)
		}
		info.WriteString(" /Producer (pdftest) >>")
		objects = append(objects, info.String())
		infoNum = len(objects)
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.7\n%\xe2\xe3\xcf\xd3\n")

	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}

	buf.WriteString("trailer\n")
	if infoNum > 0 {
		fmt.Fprintf(&buf, "<< /Size %d /Root 1 0 R /Info %d 0 R >>\n", len(objects)+1, infoNum)
	} else {
		fmt.Fprintf(&buf, "<< /Size %d /Root 1 0 R >>\n", len(objects)+1)
	}
	fmt.Fprintf(&buf, "startxref\n%d\n%%%%EOF\n", xref)
	return buf.Bytes()
}

// stream renders a stream object with the given extra dictionary entries.
func stream(entries, data string) string {
	if entries != "" {
		entries += " "
	}
	return fmt.Sprintf("<< %s/Length %d >>\nstream\n%sendstream", entries, len(data), data)
}

// WriteFile builds a document and writes it under t.TempDir(), returning
// its path.
func WriteFile(t testing.TB, name string, opts Options) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, Build(opts), 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
	return path
}
