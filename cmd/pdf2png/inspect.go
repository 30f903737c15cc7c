// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pdf2png/internal/inspect"
	"github.com/pdiddy/pdf2png/internal/raster"
	"github.com/pdiddy/pdf2png/pkg/types"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <file.pdf>",
	Short: "Show page count and page sizes of a PDF file",
	Long: `Inspect reads the page tree of a PDF without rendering it and prints
each page's size in points and inches together with the pixel size a
conversion at --dpi would produce.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		src := args[0]
		if !raster.IsPDFPath(src) {
			return &raster.ConversionError{Kind: raster.KindNotAPdf, Path: src}
		}
		dpi, _ := cmd.Flags().GetInt("dpi")
		if dpi <= 0 {
			return fmt.Errorf("dpi must be positive, got %d", dpi)
		}

		info, err := inspect.File(src)
		if err != nil {
			return err
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(info)
		}
		return printDocumentInfo(cmd.OutOrStdout(), info, dpi)
	},
}

func init() {
	inspectCmd.Flags().Int("dpi", types.DefaultDPI, "resolution used for the pixel column")
	inspectCmd.Flags().Bool("json", false, "print page sizes as JSON")

	rootCmd.AddCommand(inspectCmd)
}

func printDocumentInfo(w io.Writer, info types.DocumentInfo, dpi int) error {
	fmt.Fprintf(w, "%s: %d %s\n", info.Path, info.NumPages(), plural(info.NumPages(), "page", "pages"))
	if info.NumPages() == 0 {
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "PAGE\tPOINTS\tINCHES\tPIXELS@%d\n", dpi)
	for _, p := range info.Pages {
		px, py := inspect.PixelSize(p, dpi)
		fmt.Fprintf(tw, "%d\t%gx%g\t%.2fx%.2f\t%dx%d\n",
			p.Page, p.Width, p.Height, p.Width/72, p.Height/72, px, py)
	}
	return tw.Flush()
}
