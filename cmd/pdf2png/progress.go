// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"

	"github.com/pdiddy/pdf2png/internal/raster"
	"github.com/pdiddy/pdf2png/pkg/types"
)

// progressDisplay renders conversion progress. On a terminal it shows a
// spinner until the first page lands and then a bar; otherwise it prints one
// line per page.
type progressDisplay struct {
	w       io.Writer
	plain   bool
	spinner *spinner.Spinner
	bar     *progressbar.ProgressBar
}

func newProgressDisplay(w io.Writer, quiet bool) *progressDisplay {
	return &progressDisplay{w: w, plain: quiet || !isTerminal(w)}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Start shows the spinner while the document opens.
func (d *progressDisplay) Start(message string) {
	if d.plain {
		return
	}
	d.spinner = spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(d.w))
	d.spinner.Suffix = " " + message
	d.spinner.Start()
}

// Update is passed to Rasterizer.Convert as its progress callback.
func (d *progressDisplay) Update(ev types.ProgressEvent) {
	if d.plain {
		fmt.Fprintf(d.w, "converted page %03d/%03d\n", ev.Page, ev.Total)
		return
	}
	d.stopSpinner()
	if d.bar == nil {
		d.bar = progressbar.NewOptions(ev.Total,
			progressbar.OptionSetWriter(d.w),
			progressbar.OptionSetWidth(40),
			progressbar.OptionSetDescription("rendering"),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "█",
				SaucerHead:    "█",
				SaucerPadding: "░",
				BarStart:      "│",
				BarEnd:        "│",
			}),
			progressbar.OptionShowCount(),
			progressbar.OptionSetItsString("pages"),
			progressbar.OptionShowIts(),
			progressbar.OptionOnCompletion(func() {
				fmt.Fprint(d.w, "\n")
			}),
			progressbar.OptionSetRenderBlankState(true),
		)
	}
	_ = d.bar.Set(ev.Page)
}

// Finish stops any animation. It is safe to call more than once.
func (d *progressDisplay) Finish() {
	d.stopSpinner()
	if d.bar != nil && !d.bar.IsFinished() {
		fmt.Fprint(d.w, "\n")
		d.bar = nil
	}
}

func (d *progressDisplay) stopSpinner() {
	if d.spinner != nil {
		d.spinner.Stop()
		d.spinner = nil
	}
}

// printFinished writes the success summary for a completed conversion.
func printFinished(w io.Writer, result types.ConversionResult, elapsed time.Duration) {
	color.New(color.FgGreen, color.Bold).Fprintln(w, "FINISHED!")
	fmt.Fprintf(w, "%d %s, %s written to %s in %s\n",
		len(result.Pages),
		plural(len(result.Pages), "page", "pages"),
		humanize.Bytes(uint64(result.TotalBytes())),
		result.OutputDir,
		elapsed.Round(10*time.Millisecond))
}

// failureMessage is the one-line description printed for a failed command.
func failureMessage(err error) string {
	var ce *raster.ConversionError
	switch {
	case errors.Is(err, raster.ErrNotAPdf) && errors.As(err, &ce):
		return fmt.Sprintf("Not a PDF file... (%s)", ce.Path)
	case errors.Is(err, raster.ErrNotAPdf):
		return "Not a PDF file..."
	default:
		return "Error: " + err.Error()
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
