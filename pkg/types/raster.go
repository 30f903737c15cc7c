// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the values exchanged between the pdf2png CLI and the
// rasterizer: the conversion request, progress events, results, and config.
package types

// ConversionRequest describes one PDF-to-PNG conversion. It is built by the
// caller immediately before a conversion and is not retained afterwards.
type ConversionRequest struct {
	// SourcePath is the PDF file to convert.
	SourcePath string `json:"source_path" yaml:"source_path"`

	// OutputDir is an existing, writable directory for the PNG files.
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// DPI is the render resolution. Pixel size is page size in inches times DPI.
	DPI int `json:"dpi" yaml:"dpi"`
}

// ProgressEvent reports one completed page. Page and Total are 1-based.
type ProgressEvent struct {
	Page  int    `json:"page" yaml:"page"`
	Total int    `json:"total" yaml:"total"`
	Path  string `json:"path" yaml:"path"`
}

// PageOutput records the PNG file written for one page.
type PageOutput struct {
	Page   int    `json:"page" yaml:"page"`
	Path   string `json:"path" yaml:"path"`
	Width  int    `json:"width" yaml:"width"`
	Height int    `json:"height" yaml:"height"`
	Bytes  int64  `json:"bytes" yaml:"bytes"`
}

// ConversionResult is the terminal success value of a conversion.
type ConversionResult struct {
	Source    string       `json:"source" yaml:"source"`
	OutputDir string       `json:"output_dir" yaml:"output_dir"`
	DPI       int          `json:"dpi" yaml:"dpi"`
	Pages     []PageOutput `json:"pages" yaml:"pages"`
}

// TotalBytes sums the sizes of all written files.
func (r ConversionResult) TotalBytes() int64 {
	var n int64
	for _, p := range r.Pages {
		n += p.Bytes
	}
	return n
}

// PageInfo describes the physical size of one page, in PDF points (1/72 inch).
type PageInfo struct {
	Page   int     `json:"page" yaml:"page"`
	Width  float64 `json:"width_pt" yaml:"width_pt"`
	Height float64 `json:"height_pt" yaml:"height_pt"`
}

// DocumentInfo is the page-tree summary of a PDF file.
type DocumentInfo struct {
	Path  string     `json:"path" yaml:"path"`
	Pages []PageInfo `json:"pages" yaml:"pages"`
}

// NumPages returns the number of pages in the document.
func (d DocumentInfo) NumPages() int {
	return len(d.Pages)
}
