// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package raster converts the pages of a PDF document into PNG files, one
// file per page, at a requested resolution. Rendering is delegated to a
// Renderer backend (MuPDF in-process, or poppler in a container).
package raster

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"os"

	"github.com/rs/zerolog"

	"github.com/pdiddy/pdf2png/pkg/types"
)

// Renderer opens PDF documents for rasterization.
type Renderer interface {
	// Name returns the backend name ("fitz" or "poppler").
	Name() string

	// Open opens the PDF at path. The caller must Close the document.
	Open(path string) (Document, error)
}

// Document is an open PDF whose pages can be rendered one at a time.
type Document interface {
	// NumPages returns the number of pages in physical order.
	NumPages() int

	// RenderPage rasterizes the page with the given 0-based index at dpi.
	RenderPage(index, dpi int) (image.Image, error)

	Close() error
}

// ProgressFunc is called after each page has been written.
type ProgressFunc func(types.ProgressEvent)

// State is the position of a Rasterizer in its per-conversion lifecycle.
type State string

const (
	StateIdle       State = "idle"
	StateValidating State = "validating"
	StateOpening    State = "opening"
	StateRendering  State = "rendering"
	StateDone       State = "done"
	StateFailed     State = "failed"
)

// Rasterizer runs conversions against one Renderer. It is not safe for
// concurrent use: callers must not start a conversion while another one on
// the same Rasterizer is in flight.
type Rasterizer struct {
	renderer Renderer
	strict   bool
	logger   zerolog.Logger

	state State
	page  int
}

// New returns a Rasterizer that renders with r. When cfg.Strict is set the
// source file must also carry a %PDF- header.
func New(r Renderer, cfg types.RasterConfig, logger zerolog.Logger) *Rasterizer {
	return &Rasterizer{
		renderer: r,
		strict:   cfg.Strict,
		logger:   logger.With().Str("backend", r.Name()).Logger(),
		state:    StateIdle,
	}
}

// State returns the current lifecycle state and the page being rendered
// (0 outside of the page loop).
func (r *Rasterizer) State() (State, int) {
	return r.state, r.page
}

// Convert renders every page of req.SourcePath into req.OutputDir as
// {stem}_{NNN}.png, in page order, calling progress after each write.
//
// On failure the returned error is a *ConversionError (or the context error
// when ctx is done between pages) and the result lists the pages written
// before the failure; those files are left on disk.
func (r *Rasterizer) Convert(ctx context.Context, req types.ConversionRequest, progress ProgressFunc) (types.ConversionResult, error) {
	result := types.ConversionResult{
		Source:    req.SourcePath,
		OutputDir: req.OutputDir,
		DPI:       req.DPI,
	}

	r.setState(StateValidating, 0)
	if err := r.validate(req); err != nil {
		return result, r.fail(err)
	}

	r.setState(StateOpening, 0)
	doc, err := r.renderer.Open(req.SourcePath)
	if err != nil {
		return result, r.fail(newError(KindOpenFailed, req.SourcePath, 0, err))
	}
	defer doc.Close()

	n := doc.NumPages()
	stem := Stem(req.SourcePath)
	result.Pages = make([]types.PageOutput, 0, n)
	r.logger.Debug().Str("source", req.SourcePath).Int("pages", n).Int("dpi", req.DPI).Msg("document opened")

	for i := 1; i <= n; i++ {
		if err := ctx.Err(); err != nil {
			return result, r.fail(fmt.Errorf("stopped before page %d of %d: %w", i, n, err))
		}
		r.setState(StateRendering, i)

		img, err := doc.RenderPage(i-1, req.DPI)
		if err != nil {
			return result, r.fail(newError(KindPageRenderFailed, req.SourcePath, i, err))
		}

		path := PagePath(req.OutputDir, stem, i)
		size, err := writePNG(path, img)
		if err != nil {
			return result, r.fail(newError(KindWriteFailed, path, i, err))
		}

		b := img.Bounds()
		result.Pages = append(result.Pages, types.PageOutput{
			Page:   i,
			Path:   path,
			Width:  b.Dx(),
			Height: b.Dy(),
			Bytes:  size,
		})
		r.logger.Debug().Int("page", i).Int("width", b.Dx()).Int("height", b.Dy()).Str("path", path).Msg("page written")

		if progress != nil {
			progress(types.ProgressEvent{Page: i, Total: n, Path: path})
		}
	}

	r.setState(StateDone, 0)
	return result, nil
}

func (r *Rasterizer) validate(req types.ConversionRequest) error {
	if !IsPDFPath(req.SourcePath) {
		return newError(KindNotAPdf, req.SourcePath, 0, nil)
	}
	if req.DPI <= 0 {
		return newError(KindInvalidRequest, req.SourcePath, 0, fmt.Errorf("dpi must be positive, got %d", req.DPI))
	}
	if req.OutputDir == "" {
		return newError(KindInvalidRequest, req.SourcePath, 0, fmt.Errorf("output directory is empty"))
	}
	if r.strict {
		ok, err := HasPDFHeader(req.SourcePath)
		if err != nil {
			return newError(KindOpenFailed, req.SourcePath, 0, err)
		}
		if !ok {
			return newError(KindNotAPdf, req.SourcePath, 0, fmt.Errorf("missing %%PDF- header"))
		}
	}
	return nil
}

func (r *Rasterizer) setState(s State, page int) {
	r.state = s
	r.page = page
}

func (r *Rasterizer) fail(err error) error {
	r.state = StateFailed
	return err
}

// writePNG encodes img and writes it to path, replacing any existing file.
// It returns the number of bytes written.
func writePNG(path string, img image.Image) (int64, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return 0, fmt.Errorf("encoding PNG: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return 0, err
	}
	return int64(buf.Len()), nil
}
