// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package raster

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/pdf2png/internal/inspect"
	"github.com/pdiddy/pdf2png/internal/pdftest"
	"github.com/pdiddy/pdf2png/pkg/types"
)

// fakeRenderer serves in-memory documents. Page images are solid rectangles
// sized from the page dimensions and the requested DPI.
type fakeRenderer struct {
	pages     []pdftest.Page
	openErr   error
	renderErr map[int]error // keyed by 0-based page index
	opened    int
	rendered  []int
}

func (f *fakeRenderer) Name() string { return "fake" }

func (f *fakeRenderer) Open(path string) (Document, error) {
	if f.openErr != nil {
		return nil, f.openErr
	}
	f.opened++
	return &fakeDocument{r: f}, nil
}

type fakeDocument struct {
	r      *fakeRenderer
	closed bool
}

func (d *fakeDocument) NumPages() int { return len(d.r.pages) }

func (d *fakeDocument) RenderPage(index, dpi int) (image.Image, error) {
	if err := d.r.renderErr[index]; err != nil {
		return nil, err
	}
	d.r.rendered = append(d.r.rendered, index)
	p := d.r.pages[index]
	w, h := inspect.PixelSize(types.PageInfo{Width: p.Width, Height: p.Height}, dpi)
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 0x80
	}
	return img, nil
}

func (d *fakeDocument) Close() error {
	d.closed = true
	return nil
}

func newTestRasterizer(r Renderer) *Rasterizer {
	return New(r, types.RasterConfig{}, zerolog.Nop())
}

// collect returns a ProgressFunc that appends events to *events.
func collect(events *[]types.ProgressEvent) ProgressFunc {
	return func(ev types.ProgressEvent) {
		*events = append(*events, ev)
	}
}

func listFiles(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}

func TestConvert_ThreePageReport(t *testing.T) {
	out := t.TempDir()
	r := &fakeRenderer{pages: pdftest.Pages(3, pdftest.Letter)}
	rz := newTestRasterizer(r)

	var events []types.ProgressEvent
	req := types.ConversionRequest{SourcePath: "/in/report.pdf", OutputDir: out, DPI: 300}
	result, err := rz.Convert(context.Background(), req, collect(&events))
	require.NoError(t, err)

	wantEvents := []types.ProgressEvent{
		{Page: 1, Total: 3, Path: filepath.Join(out, "report_001.png")},
		{Page: 2, Total: 3, Path: filepath.Join(out, "report_002.png")},
		{Page: 3, Total: 3, Path: filepath.Join(out, "report_003.png")},
	}
	if diff := cmp.Diff(wantEvents, events); diff != "" {
		t.Errorf("progress events mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, []string{"report_001.png", "report_002.png", "report_003.png"}, listFiles(t, out))
	assert.Equal(t, []int{0, 1, 2}, r.rendered)

	require.Len(t, result.Pages, 3)
	for i, p := range result.Pages {
		assert.Equal(t, i+1, p.Page)
		assert.Equal(t, 2550, p.Width) // 8.5in x 300dpi
		assert.Equal(t, 3300, p.Height)
		assert.Positive(t, p.Bytes)

		info, err := os.Stat(p.Path)
		require.NoError(t, err)
		assert.Equal(t, info.Size(), p.Bytes)
	}
	assert.Equal(t, 300, result.DPI)
	assert.Equal(t, result.Pages[0].Bytes*3, result.TotalBytes())

	state, page := rz.State()
	assert.Equal(t, StateDone, state)
	assert.Zero(t, page)
}

func TestConvert_WritesDecodablePNG(t *testing.T) {
	out := t.TempDir()
	r := &fakeRenderer{pages: []pdftest.Page{pdftest.Inch}}

	_, err := newTestRasterizer(r).Convert(context.Background(),
		types.ConversionRequest{SourcePath: "one.pdf", OutputDir: out, DPI: 150}, nil)
	require.NoError(t, err)

	f, err := os.Open(filepath.Join(out, "one_001.png"))
	require.NoError(t, err)
	defer f.Close()

	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 150, 150), img.Bounds())
	assert.Equal(t, color.Gray{Y: 0x80}, color.GrayModel.Convert(img.At(10, 10)))
}

func TestConvert_ZeroPages(t *testing.T) {
	out := t.TempDir()
	r := &fakeRenderer{}

	var events []types.ProgressEvent
	result, err := newTestRasterizer(r).Convert(context.Background(),
		types.ConversionRequest{SourcePath: "empty.pdf", OutputDir: out, DPI: 300}, collect(&events))

	require.NoError(t, err)
	assert.Empty(t, events)
	assert.Empty(t, result.Pages)
	assert.Empty(t, listFiles(t, out))
	assert.Equal(t, 1, r.opened)
}

func TestConvert_RejectsBeforeOpening(t *testing.T) {
	tests := []struct {
		name string
		req  types.ConversionRequest
		want error
	}{
		{
			name: "text file",
			req:  types.ConversionRequest{SourcePath: "notes.txt", OutputDir: "out", DPI: 300},
			want: ErrNotAPdf,
		},
		{
			name: "no extension",
			req:  types.ConversionRequest{SourcePath: "report", OutputDir: "out", DPI: 300},
			want: ErrNotAPdf,
		},
		{
			name: "pdf in the middle of the name",
			req:  types.ConversionRequest{SourcePath: "report.pdf.png", OutputDir: "out", DPI: 300},
			want: ErrNotAPdf,
		},
		{
			name: "zero dpi",
			req:  types.ConversionRequest{SourcePath: "report.pdf", OutputDir: "out", DPI: 0},
			want: ErrInvalidRequest,
		},
		{
			name: "negative dpi",
			req:  types.ConversionRequest{SourcePath: "report.pdf", OutputDir: "out", DPI: -72},
			want: ErrInvalidRequest,
		},
		{
			name: "missing output dir",
			req:  types.ConversionRequest{SourcePath: "report.pdf", DPI: 300},
			want: ErrInvalidRequest,
		},
		{
			name: "extension checked before dpi",
			req:  types.ConversionRequest{SourcePath: "report.doc", OutputDir: "out", DPI: 0},
			want: ErrNotAPdf,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &fakeRenderer{pages: pdftest.Pages(2, pdftest.Letter)}
			rz := newTestRasterizer(r)

			var events []types.ProgressEvent
			_, err := rz.Convert(context.Background(), tt.req, collect(&events))

			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.Zero(t, r.opened, "renderer must not be opened")
			assert.Empty(t, events)

			state, _ := rz.State()
			assert.Equal(t, StateFailed, state)
		})
	}
}

func TestConvert_UppercaseExtension(t *testing.T) {
	out := t.TempDir()
	r := &fakeRenderer{pages: pdftest.Pages(1, pdftest.Inch)}

	_, err := newTestRasterizer(r).Convert(context.Background(),
		types.ConversionRequest{SourcePath: "SCAN.PDF", OutputDir: out, DPI: 100}, nil)

	require.NoError(t, err)
	assert.Equal(t, []string{"SCAN_001.png"}, listFiles(t, out))
}

func TestConvert_OpenFailed(t *testing.T) {
	out := t.TempDir()
	cause := errors.New("no objects found")
	r := &fakeRenderer{openErr: cause}

	var events []types.ProgressEvent
	_, err := newTestRasterizer(r).Convert(context.Background(),
		types.ConversionRequest{SourcePath: "broken.pdf", OutputDir: out, DPI: 300}, collect(&events))

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrOpenFailed)
	assert.ErrorIs(t, err, cause)
	assert.Empty(t, events)
	assert.Empty(t, listFiles(t, out))
}

func TestConvert_PageRenderFailed(t *testing.T) {
	out := t.TempDir()
	cause := errors.New("syntax error in content stream")
	r := &fakeRenderer{
		pages:     pdftest.Pages(4, pdftest.Inch),
		renderErr: map[int]error{1: cause},
	}
	rz := newTestRasterizer(r)

	var events []types.ProgressEvent
	result, err := rz.Convert(context.Background(),
		types.ConversionRequest{SourcePath: "doc.pdf", OutputDir: out, DPI: 100}, collect(&events))

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPageRenderFailed)
	assert.ErrorIs(t, err, &ConversionError{Kind: KindPageRenderFailed, Page: 2})
	assert.NotErrorIs(t, err, &ConversionError{Kind: KindPageRenderFailed, Page: 3})
	assert.ErrorIs(t, err, cause)

	var convErr *ConversionError
	require.ErrorAs(t, err, &convErr)
	assert.Equal(t, 2, convErr.Page)

	// Page 1 stays on disk, nothing after page 2 is attempted.
	assert.Equal(t, []string{"doc_001.png"}, listFiles(t, out))
	assert.Equal(t, []int{0}, r.rendered)
	assert.Len(t, events, 1)
	assert.Len(t, result.Pages, 1)

	state, page := rz.State()
	assert.Equal(t, StateFailed, state)
	assert.Equal(t, 2, page)
}

func TestConvert_WriteFailed(t *testing.T) {
	out := filepath.Join(t.TempDir(), "missing")
	r := &fakeRenderer{pages: pdftest.Pages(2, pdftest.Inch)}

	var events []types.ProgressEvent
	_, err := newTestRasterizer(r).Convert(context.Background(),
		types.ConversionRequest{SourcePath: "doc.pdf", OutputDir: out, DPI: 72}, collect(&events))

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrWriteFailed)
	assert.ErrorIs(t, err, os.ErrNotExist)

	var convErr *ConversionError
	require.ErrorAs(t, err, &convErr)
	assert.Equal(t, 1, convErr.Page)
	assert.Equal(t, filepath.Join(out, "doc_001.png"), convErr.Path)
	assert.Empty(t, events)
	assert.Equal(t, []int{0}, r.rendered, "page 2 must not be rendered")
}

func TestConvert_RepeatOverwritesSameFiles(t *testing.T) {
	out := t.TempDir()
	stale := filepath.Join(out, "doc_002.png")
	require.NoError(t, os.WriteFile(stale, []byte("old"), 0o644))

	r := &fakeRenderer{pages: pdftest.Pages(3, pdftest.Inch)}
	rz := newTestRasterizer(r)
	req := types.ConversionRequest{SourcePath: "doc.pdf", OutputDir: out, DPI: 90}

	for run := 0; run < 2; run++ {
		_, err := rz.Convert(context.Background(), req, nil)
		require.NoError(t, err)
	}

	assert.Equal(t, []string{"doc_001.png", "doc_002.png", "doc_003.png"}, listFiles(t, out))
	data, err := os.ReadFile(stale)
	require.NoError(t, err)
	assert.NotEqual(t, []byte("old"), data)
}

func TestConvert_LargerDPIGivesLargerImages(t *testing.T) {
	page := pdftest.A4
	sizes := map[int]image.Point{}
	for _, dpi := range []int{100, 150, 300, 900} {
		out := t.TempDir()
		r := &fakeRenderer{pages: []pdftest.Page{page}}
		result, err := newTestRasterizer(r).Convert(context.Background(),
			types.ConversionRequest{SourcePath: "a4.pdf", OutputDir: out, DPI: dpi}, nil)
		require.NoError(t, err)
		sizes[dpi] = image.Pt(result.Pages[0].Width, result.Pages[0].Height)
	}

	prev := image.Point{}
	for _, dpi := range []int{100, 150, 300, 900} {
		got := sizes[dpi]
		assert.GreaterOrEqual(t, got.X, prev.X, "width at %d dpi", dpi)
		assert.GreaterOrEqual(t, got.Y, prev.Y, "height at %d dpi", dpi)
		assert.InDelta(t, page.Width/72*float64(dpi), float64(got.X), 1)
		assert.InDelta(t, page.Height/72*float64(dpi), float64(got.Y), 1)
		prev = got
	}
}

func TestConvert_StopsAtPageBoundaryWhenCancelled(t *testing.T) {
	out := t.TempDir()
	r := &fakeRenderer{pages: pdftest.Pages(3, pdftest.Inch)}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var events []types.ProgressEvent
	progress := func(ev types.ProgressEvent) {
		events = append(events, ev)
		cancel()
	}
	_, err := newTestRasterizer(r).Convert(ctx,
		types.ConversionRequest{SourcePath: "doc.pdf", OutputDir: out, DPI: 72}, progress)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, events, 1)
	assert.Equal(t, []string{"doc_001.png"}, listFiles(t, out))
}

func TestConvert_Strict(t *testing.T) {
	dir := t.TempDir()
	out := t.TempDir()
	good := pdftest.Write(t, dir, "good.pdf", pdftest.Inch)
	bad := pdftest.WriteCorrupt(t, dir, "bad.pdf")

	r := &fakeRenderer{pages: pdftest.Pages(1, pdftest.Inch)}
	rz := New(r, types.RasterConfig{Strict: true}, zerolog.Nop())

	_, err := rz.Convert(context.Background(), types.ConversionRequest{SourcePath: bad, OutputDir: out, DPI: 72}, nil)
	assert.ErrorIs(t, err, ErrNotAPdf)
	assert.Zero(t, r.opened)

	_, err = rz.Convert(context.Background(), types.ConversionRequest{SourcePath: filepath.Join(dir, "gone.pdf"), OutputDir: out, DPI: 72}, nil)
	assert.ErrorIs(t, err, ErrOpenFailed)
	assert.Zero(t, r.opened)

	_, err = rz.Convert(context.Background(), types.ConversionRequest{SourcePath: good, OutputDir: out, DPI: 72}, nil)
	assert.NoError(t, err)
	assert.Equal(t, 1, r.opened)
}

func TestConvert_LenientByDefault(t *testing.T) {
	dir := t.TempDir()
	bad := pdftest.WriteCorrupt(t, dir, "bad.pdf")
	r := &fakeRenderer{openErr: errors.New("cannot parse")}

	_, err := newTestRasterizer(r).Convert(context.Background(),
		types.ConversionRequest{SourcePath: bad, OutputDir: t.TempDir(), DPI: 72}, nil)

	// Without strict mode a corrupt .pdf reaches the backend and fails to open.
	assert.ErrorIs(t, err, ErrOpenFailed)
	assert.NotErrorIs(t, err, ErrNotAPdf)
}

func TestNew_InitialState(t *testing.T) {
	rz := newTestRasterizer(&fakeRenderer{})
	state, page := rz.State()
	assert.Equal(t, StateIdle, state)
	assert.Zero(t, page)
}
