// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Backend identifies the PDF rendering backend.
type Backend string

const (
	// BackendFitz renders in-process with MuPDF.
	BackendFitz Backend = "fitz"

	// BackendPoppler renders with pdftoppm inside a docker or podman container.
	BackendPoppler Backend = "poppler"
)

const (
	// DefaultDPI is the render resolution when none is configured.
	DefaultDPI = 500

	// MinSuggestedDPI and MaxSuggestedDPI bound the range offered to users.
	// Values outside it are allowed but produce a warning.
	MinSuggestedDPI = 100
	MaxSuggestedDPI = 900

	// DefaultPopplerImage is the container image used by the poppler backend.
	DefaultPopplerImage = "minidocks/poppler:latest"
)

// RasterConfig holds settings for the rasterizer.
type RasterConfig struct {
	// DPI is the resolution placed into each ConversionRequest.
	DPI int `json:"dpi" yaml:"dpi"`

	// Backend selects the renderer: fitz or poppler.
	Backend Backend `json:"backend" yaml:"backend"`

	// Strict enables %PDF- header sniffing in addition to the extension check.
	Strict bool `json:"strict" yaml:"strict"`
}

// ContainerConfig holds settings for container-based backends.
type ContainerConfig struct {
	// Image is the container image providing pdftoppm.
	Image string `json:"image" yaml:"image"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	// Level is one of trace, debug, info, warn, error (default info).
	Level string `json:"level" yaml:"level"`

	// Format is console or json (default console).
	Format string `json:"format" yaml:"format"`
}

// Config groups all settings read from the config file, environment, and flags.
type Config struct {
	Raster    RasterConfig    `json:"raster" yaml:"raster"`
	Container ContainerConfig `json:"container" yaml:"container"`
	Log       LogConfig       `json:"log" yaml:"log"`
}
