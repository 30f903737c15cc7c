// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/pdf2png/internal/inspect"
	"github.com/pdiddy/pdf2png/internal/raster"
	"github.com/pdiddy/pdf2png/pkg/types"
)

var convertCmd = &cobra.Command{
	Use:   "convert <file.pdf>",
	Short: "Render every page of a PDF file to PNG",
	Long: `Convert renders each page of the given PDF at the configured DPI and
writes <stem>_NNN.png files to the output directory (the PDF's own
directory unless --out is set). Pages are written in order; a failure
stops the run and leaves the pages already written in place.

Backends: fitz renders in-process with MuPDF; poppler runs pdftoppm in a
docker or podman container.`,
	Args: cobra.ExactArgs(1),
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().StringP("out", "o", "", "output directory (default: the PDF's directory)")
	convertCmd.Flags().Int("dpi", types.DefaultDPI, "render resolution in dots per inch")
	convertCmd.Flags().String("backend", string(types.BackendFitz), "rendering backend: fitz or poppler")
	convertCmd.Flags().Bool("strict", false, "reject files whose content does not start with %PDF-")
	convertCmd.Flags().String("image", types.DefaultPopplerImage, "container image for the poppler backend")
	convertCmd.Flags().Bool("dry-run", false, "list the files that would be written without rendering")
	convertCmd.Flags().String("report", "", "print a report of written files: yaml or json")
	convertCmd.Flags().BoolP("quiet", "q", false, "plain progress lines instead of a progress bar")

	_ = viper.BindPFlag("raster.dpi", convertCmd.Flags().Lookup("dpi"))
	_ = viper.BindPFlag("raster.backend", convertCmd.Flags().Lookup("backend"))
	_ = viper.BindPFlag("raster.strict", convertCmd.Flags().Lookup("strict"))
	_ = viper.BindPFlag("container.image", convertCmd.Flags().Lookup("image"))

	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	src := args[0]

	outDir, _ := cmd.Flags().GetString("out")
	if outDir == "" {
		outDir = filepath.Dir(src)
	}
	report, _ := cmd.Flags().GetString("report")
	if report != "" && report != "yaml" && report != "json" {
		return fmt.Errorf("unknown report format %q: use yaml or json", report)
	}

	if cfg.Raster.DPI < types.MinSuggestedDPI || cfg.Raster.DPI > types.MaxSuggestedDPI {
		logger.Warn().
			Int("dpi", cfg.Raster.DPI).
			Msgf("dpi outside the usual %d-%d range", types.MinSuggestedDPI, types.MaxSuggestedDPI)
	}

	req := types.ConversionRequest{SourcePath: src, OutputDir: outDir, DPI: cfg.Raster.DPI}

	if dryRun, _ := cmd.Flags().GetBool("dry-run"); dryRun {
		return dryRunConvert(cmd.OutOrStdout(), req)
	}

	renderer, err := raster.NewRenderer(cfg.Raster.Backend, cfg.Container)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	quiet, _ := cmd.Flags().GetBool("quiet")
	display := newProgressDisplay(cmd.ErrOrStderr(), quiet)
	display.Start("opening " + filepath.Base(src))

	logger.Info().
		Str("source", src).
		Str("out", outDir).
		Int("dpi", req.DPI).
		Str("backend", renderer.Name()).
		Msg("converting")

	start := time.Now()
	result, err := raster.New(renderer, cfg.Raster, logger).Convert(ctx, req, display.Update)
	display.Finish()
	if err != nil {
		if n := len(result.Pages); n > 0 {
			logger.Warn().Int("written", n).Msg("conversion stopped after partial output")
		}
		return err
	}

	printFinished(cmd.OutOrStdout(), result, time.Since(start))
	if report != "" {
		return writeReport(cmd.OutOrStdout(), report, result)
	}
	return nil
}

// dryRunConvert prints the files a conversion would write and their pixel
// sizes, reading only the page tree.
func dryRunConvert(w io.Writer, req types.ConversionRequest) error {
	if !raster.IsPDFPath(req.SourcePath) {
		return &raster.ConversionError{Kind: raster.KindNotAPdf, Path: req.SourcePath}
	}
	info, err := inspect.File(req.SourcePath)
	if err != nil {
		return err
	}

	paths := raster.PlannedPaths(req.SourcePath, req.OutputDir, info.NumPages())
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PAGE\tFILE\tPIXELS")
	for i, p := range info.Pages {
		width, height := inspect.PixelSize(p, req.DPI)
		fmt.Fprintf(tw, "%d\t%s\t%dx%d\n", p.Page, paths[i], width, height)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(w, "%d %s at %d dpi (dry run, nothing written)\n",
		info.NumPages(), plural(info.NumPages(), "page", "pages"), req.DPI)
	return nil
}

// writeReport encodes the conversion result as yaml or json.
func writeReport(w io.Writer, format string, result types.ConversionResult) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(result); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown report format %q: use yaml or json", format)
	}
}
