// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package raster

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

const (
	pdfExt = ".pdf"

	// sniffLen is how far into the file the %PDF- header may appear.
	// Readers accept leading garbage before the header, up to 1 KiB.
	sniffLen = 1024
)

var pdfMagic = []byte("%PDF-")

// IsPDFPath reports whether path has a .pdf extension, ignoring case.
func IsPDFPath(path string) bool {
	return strings.EqualFold(filepath.Ext(path), pdfExt)
}

// Stem returns the base name of path without its extension.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// PageFileName returns the output file name for the 1-based page index.
// Indices are zero-padded to three digits; larger indices keep all digits.
func PageFileName(stem string, page int) string {
	return fmt.Sprintf("%s_%03d.png", stem, page)
}

// PagePath returns the full output path for a page.
func PagePath(outDir, stem string, page int) string {
	return filepath.Join(outDir, PageFileName(stem, page))
}

// PlannedPaths lists the files a conversion of an n-page document writes.
func PlannedPaths(source, outDir string, n int) []string {
	stem := Stem(source)
	paths := make([]string, n)
	for i := range paths {
		paths[i] = PagePath(outDir, stem, i+1)
	}
	return paths
}

// HasPDFHeader reports whether the first KiB of the file contains %PDF-.
func HasPDFHeader(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	buf := make([]byte, sniffLen)
	n, err := io.ReadFull(f, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return false, err
	}
	return bytes.Contains(buf[:n], pdfMagic), nil
}
