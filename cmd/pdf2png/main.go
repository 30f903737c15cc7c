// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the pdf2png CLI.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/pdf2png/internal/logging"
	"github.com/pdiddy/pdf2png/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// logger is configured in PersistentPreRunE from the loaded config.
var logger = zerolog.Nop()

// rootCmd is the base command for the pdf2png CLI.
var rootCmd = &cobra.Command{
	Use:   "pdf2png",
	Short: "Convert the pages of a PDF file to PNG images",
	Long: `pdf2png renders every page of a PDF document to a PNG file at a chosen
resolution. Page i of report.pdf becomes report_00i.png in the output
directory; existing files with the same names are overwritten.

Settings come from flags, PDF2PNG_* environment variables (a .env file in
the working directory is loaded when present), and an optional pdf2png.yaml.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading .env: %w", err)
		}
		if noColor, _ := cmd.Flags().GetBool("no-color"); noColor {
			color.NoColor = true
		}
		logger = logging.New(loadConfig().Log, os.Stderr)
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./pdf2png.yaml or ~/.config/pdf2png/pdf2png.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level: trace, debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", logging.FormatConsole, "log format: console or json")
	rootCmd.PersistentFlags().Bool("no-color", false, "disable colored output")

	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))

	viper.SetDefault("raster.dpi", types.DefaultDPI)
	viper.SetDefault("raster.backend", string(types.BackendFitz))
	viper.SetDefault("raster.strict", false)
	viper.SetDefault("container.image", types.DefaultPopplerImage)
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("pdf2png")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "pdf2png"))
		}
	}

	viper.SetEnvPrefix("PDF2PNG")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig reads the merged settings (flags over env over file over defaults).
func loadConfig() types.Config {
	return types.Config{
		Raster: types.RasterConfig{
			DPI:     viper.GetInt("raster.dpi"),
			Backend: types.Backend(viper.GetString("raster.backend")),
			Strict:  viper.GetBool("raster.strict"),
		},
		Container: types.ContainerConfig{
			Image: viper.GetString("container.image"),
		},
		Log: types.LogConfig{
			Level:  viper.GetString("log.level"),
			Format: viper.GetString("log.format"),
		},
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString(failureMessage(err)))
		os.Exit(1)
	}
}
