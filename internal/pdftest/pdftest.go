// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pdftest builds small, well-formed PDF files for tests and demos.
// Each page carries a filled rectangle so rendered output is not blank.
package pdftest

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// Page describes one generated page. Sizes are in PDF points (1/72 inch).
type Page struct {
	Width, Height float64
	Rotate        int
}

// Common page sizes.
var (
	Letter = Page{Width: 612, Height: 792}
	A4     = Page{Width: 595, Height: 842}
	Inch   = Page{Width: 72, Height: 72}
)

// Pages returns n copies of p.
func Pages(n int, p Page) []Page {
	out := make([]Page, n)
	for i := range out {
		out[i] = p
	}
	return out
}

// Build returns the bytes of a PDF document with the given pages.
// With no pages the document has an empty page tree.
func Build(pages ...Page) []byte {
	var buf bytes.Buffer
	var offsets []int

	obj := func(body string) {
		offsets = append(offsets, buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", len(offsets), body)
	}

	buf.WriteString("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n")

	// Objects 1 and 2 are the catalog and the page tree root; each page
	// then takes two objects: the page dictionary and its content stream.
	kids := make([]string, len(pages))
	for i := range pages {
		kids[i] = fmt.Sprintf("%d 0 R", 3+2*i)
	}
	obj("<< /Type /Catalog /Pages 2 0 R >>")
	obj(fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pages)))

	for i, p := range pages {
		rotate := ""
		if p.Rotate != 0 {
			rotate = fmt.Sprintf(" /Rotate %d", p.Rotate)
		}
		obj(fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 %s %s]%s /Contents %d 0 R >>",
			num(p.Width), num(p.Height), rotate, 4+2*i))

		content := fmt.Sprintf("0.2 0.4 0.8 rg %s %s %s %s re f\n",
			num(p.Width/4), num(p.Height/4), num(p.Width/2), num(p.Height/2))
		obj(fmt.Sprintf("<< /Length %d >>\nstream\n%sendstream", len(content), content))
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(offsets)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(offsets)+1, xref)

	return buf.Bytes()
}

// WriteFile writes a generated PDF to path.
func WriteFile(path string, pages ...Page) error {
	return os.WriteFile(path, Build(pages...), 0o644)
}

// Write creates dir/name containing a generated PDF and returns its path.
func Write(t testing.TB, dir, name string, pages ...Page) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := WriteFile(path, pages...); err != nil {
		t.Fatal(err)
	}
	return path
}

// WriteCorrupt creates dir/name holding bytes that no PDF reader accepts.
func WriteCorrupt(t testing.TB, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("this is not a PDF document\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func num(v float64) string {
	s := strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", v), "0"), ".")
	if s == "" || s == "-" {
		return "0"
	}
	return s
}
