// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package raster

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"os"
	"strconv"

	"github.com/pdiddy/pdf2png/internal/container"
	"github.com/pdiddy/pdf2png/internal/inspect"
	"github.com/pdiddy/pdf2png/pkg/types"
)

// PopplerRenderer renders pages with pdftoppm inside a container. The page
// count comes from reading the page tree locally; each page is one
// container run with the PDF on stdin and the PNG on stdout.
type PopplerRenderer struct {
	runtime container.Runtime
	image   string
}

// NewPopplerRenderer creates a renderer that runs image on rt. It verifies
// that the image exists locally before returning.
func NewPopplerRenderer(rt container.Runtime, image string) (*PopplerRenderer, error) {
	if image == "" {
		image = types.DefaultPopplerImage
	}
	if err := rt.ImageExists(image); err != nil {
		return nil, fmt.Errorf("poppler image not available in %s: %w", rt.Name(), err)
	}
	return &PopplerRenderer{runtime: rt, image: image}, nil
}

func (p *PopplerRenderer) Name() string { return string(types.BackendPoppler) }

// Open reads the whole file and its page tree. Unparseable files fail here,
// before any container is started.
func (p *PopplerRenderer) Open(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	info, err := inspect.Read(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return &popplerDocument{renderer: p, data: data, pages: info.NumPages()}, nil
}

type popplerDocument struct {
	renderer *PopplerRenderer
	data     []byte
	pages    int
}

func (d *popplerDocument) NumPages() int {
	return d.pages
}

func (d *popplerDocument) RenderPage(index, dpi int) (image.Image, error) {
	page := strconv.Itoa(index + 1)
	args := []string{
		"pdftoppm", "-png",
		"-r", strconv.Itoa(dpi),
		"-f", page, "-l", page,
		"-singlefile",
		"-",
	}

	var out bytes.Buffer
	if err := d.renderer.runtime.Run(d.renderer.image, args, bytes.NewReader(d.data), &out); err != nil {
		return nil, err
	}
	if out.Len() == 0 {
		return nil, fmt.Errorf("pdftoppm produced no output for page %s", page)
	}

	img, err := png.Decode(&out)
	if err != nil {
		return nil, fmt.Errorf("decoding pdftoppm output: %w", err)
	}
	return img, nil
}

func (d *popplerDocument) Close() error {
	d.data = nil
	return nil
}

// NewRenderer builds the renderer selected by backend. The poppler backend
// detects a container runtime first.
func NewRenderer(backend types.Backend, cfg types.ContainerConfig) (Renderer, error) {
	switch backend {
	case types.BackendFitz, "":
		return NewFitzRenderer(), nil
	case types.BackendPoppler:
		rt, err := container.DetectRuntime()
		if err != nil {
			return nil, err
		}
		return NewPopplerRenderer(rt, cfg.Image)
	default:
		return nil, fmt.Errorf("unknown backend %q: use %s or %s", backend, types.BackendFitz, types.BackendPoppler)
	}
}
