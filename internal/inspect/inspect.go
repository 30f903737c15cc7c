// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package inspect reads the page tree of a PDF file without rendering it:
// page count, physical page sizes, and the pixel dimensions a page will
// have at a given resolution.
package inspect

import (
	"fmt"
	"io"
	"math"
	"os"

	"seehuhn.de/go/pdf"
	"seehuhn.de/go/pdf/pagetree"

	"github.com/pdiddy/pdf2png/pkg/types"
)

const pointsPerInch = 72.0

// letter is the page size assumed when a page has no usable MediaBox.
var letter = pdf.Rectangle{URx: 612, URy: 792}

// File reads the page tree of the PDF at path.
func File(path string) (types.DocumentInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return types.DocumentInfo{}, err
	}
	defer f.Close()

	info, err := Read(f)
	if err != nil {
		return types.DocumentInfo{}, fmt.Errorf("inspecting %s: %w", path, err)
	}
	info.Path = path
	return info, nil
}

// Read reads the page tree of a PDF from rs. Pages rotated by 90 or 270
// degrees report their displayed (swapped) width and height.
func Read(rs io.ReadSeeker) (types.DocumentInfo, error) {
	r, err := pdf.NewReader(rs, nil)
	if err != nil {
		return types.DocumentInfo{}, fmt.Errorf("parsing PDF: %w", err)
	}
	defer r.Close()

	n, err := pagetree.NumPages(r)
	if err != nil {
		return types.DocumentInfo{}, fmt.Errorf("reading page tree: %w", err)
	}

	info := types.DocumentInfo{Pages: make([]types.PageInfo, 0, n)}
	for i := 0; i < n; i++ {
		dict, err := pagetree.GetPage(r, i)
		if err != nil {
			return types.DocumentInfo{}, fmt.Errorf("reading page %d: %w", i+1, err)
		}

		box, err := pdf.GetRectangle(r, dict["MediaBox"])
		if err != nil || box == nil || box.IsZero() {
			box = &letter
		}
		w, h := box.URx-box.LLx, box.URy-box.LLy

		rot, _ := pdf.GetInteger(r, dict["Rotate"])
		if quarterTurns(int(rot))%2 == 1 {
			w, h = h, w
		}

		info.Pages = append(info.Pages, types.PageInfo{Page: i + 1, Width: w, Height: h})
	}
	return info, nil
}

// PixelSize returns the raster size of a page rendered at dpi.
func PixelSize(p types.PageInfo, dpi int) (width, height int) {
	scale := float64(dpi) / pointsPerInch
	return toPixels(p.Width * scale), toPixels(p.Height * scale)
}

// toPixels rounds up, tolerating float noise just above an integer.
func toPixels(v float64) int {
	return int(math.Ceil(v - 1e-6))
}

func quarterTurns(rotate int) int {
	q := (rotate / 90) % 4
	if q < 0 {
		q += 4
	}
	return q
}
