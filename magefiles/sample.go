//go:build mage

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"

	"github.com/pdiddy/pdf2png/internal/pdftest"
)

const sampleDir = "samples"

// Sample writes a three-page test PDF to samples/ and converts it with the
// freshly built binary.
func Sample() error {
	mg.Deps(Build)

	if err := os.MkdirAll(sampleDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", sampleDir, err)
	}
	src := filepath.Join(sampleDir, "sample.pdf")
	pages := []pdftest.Page{pdftest.Letter, pdftest.A4, {Width: 612, Height: 792, Rotate: 90}}
	if err := pdftest.WriteFile(src, pages...); err != nil {
		return fmt.Errorf("writing %s: %w", src, err)
	}
	fmt.Printf("Wrote %s\n", src)

	bin := filepath.Join(binDir, binName)
	if err := sh.RunV(bin, "inspect", src, "--dpi", "150"); err != nil {
		return err
	}
	return sh.RunV(bin, "convert", src, "--dpi", "150", "--quiet")
}
