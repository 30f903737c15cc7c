// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package raster

import "fmt"

// ErrorKind classifies a conversion failure.
type ErrorKind string

const (
	KindInvalidRequest   ErrorKind = "invalid_request"
	KindNotAPdf          ErrorKind = "not_a_pdf"
	KindOpenFailed       ErrorKind = "open_failed"
	KindPageRenderFailed ErrorKind = "page_render_failed"
	KindWriteFailed      ErrorKind = "write_failed"
)

// ConversionError is returned for every failure of Convert. Page is the
// 1-based page being processed, or 0 when the failure happened before the
// page loop.
type ConversionError struct {
	Kind ErrorKind
	Path string
	Page int
	Err  error
}

func (e *ConversionError) Error() string {
	var msg string
	switch e.Kind {
	case KindNotAPdf:
		msg = fmt.Sprintf("not a PDF file: %s", e.Path)
	case KindOpenFailed:
		msg = fmt.Sprintf("opening %s", e.Path)
	case KindPageRenderFailed:
		msg = fmt.Sprintf("rendering page %d of %s", e.Page, e.Path)
	case KindWriteFailed:
		msg = fmt.Sprintf("writing page %d to %s", e.Page, e.Path)
	default:
		msg = fmt.Sprintf("invalid request for %s", e.Path)
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}

// Is matches sentinels by kind, so errors.Is(err, ErrWriteFailed) holds for
// any page. A sentinel with a non-zero Page also requires the page to match.
func (e *ConversionError) Is(target error) bool {
	t, ok := target.(*ConversionError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Page == 0 || t.Page == e.Page)
}

// Sentinels for errors.Is.
var (
	ErrInvalidRequest   = &ConversionError{Kind: KindInvalidRequest}
	ErrNotAPdf          = &ConversionError{Kind: KindNotAPdf}
	ErrOpenFailed       = &ConversionError{Kind: KindOpenFailed}
	ErrPageRenderFailed = &ConversionError{Kind: KindPageRenderFailed}
	ErrWriteFailed      = &ConversionError{Kind: KindWriteFailed}
)

func newError(kind ErrorKind, path string, page int, err error) *ConversionError {
	return &ConversionError{Kind: kind, Path: path, Page: page, Err: err}
}
