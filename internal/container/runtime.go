// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package container detects a docker or podman runtime and runs one-shot
// containers that read from stdin and write to stdout. The poppler backend
// uses it to run pdftoppm without a local poppler install.
package container

import (
	"bytes"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

// Runtime runs one-shot containers through a docker-compatible CLI.
type Runtime interface {
	// Name returns the CLI binary, "docker" or "podman".
	Name() string

	// Available reports whether the binary is on PATH and its daemon or
	// service answers `info`.
	Available() bool

	// ImageExists returns nil when image is present locally.
	ImageExists(image string) error

	// Run starts a throwaway container of image with args as its command.
	// stdin is attached to the container and its stdout is copied to stdout.
	Run(image string, args []string, stdin io.Reader, stdout io.Writer) error
}

// flavor describes one supported CLI. The two differ only in how an image
// is looked up.
type flavor struct {
	bin        string
	imageCheck []string
}

// flavors in detection order.
var flavors = []flavor{
	{bin: "docker", imageCheck: []string{"image", "inspect"}},
	{bin: "podman", imageCheck: []string{"image", "exists"}},
}

// sandboxArgs isolate the render container: no network, read-only root.
var sandboxArgs = []string{"--rm", "-i", "--network", "none", "--read-only"}

// commander is the process seam; tests substitute a fake.
type commander interface {
	LookPath(file string) (string, error)
	Quiet(name string, args ...string) error
	Pipe(name string, args []string, stdin io.Reader, stdout io.Writer) error
}

type osCommander struct{}

func (osCommander) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (osCommander) Quiet(name string, args ...string) error {
	return exec.Command(name, args...).Run()
}

// Pipe runs name and folds its stderr into the returned error.
func (osCommander) Pipe(name string, args []string, stdin io.Reader, stdout io.Writer) error {
	var stderr bytes.Buffer
	cmd := exec.Command(name, args...)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	if err == nil {
		return nil
	}
	if msg := strings.TrimSpace(stderr.String()); msg != "" {
		return fmt.Errorf("%w: %s", err, msg)
	}
	return err
}

// cli implements Runtime for one flavor.
type cli struct {
	flavor
	cmd commander
}

func (c *cli) Name() string { return c.bin }

func (c *cli) Available() bool {
	if _, err := c.cmd.LookPath(c.bin); err != nil {
		return false
	}
	return c.cmd.Quiet(c.bin, "info") == nil
}

func (c *cli) ImageExists(image string) error {
	args := append(append([]string{}, c.imageCheck...), image)
	if err := c.cmd.Quiet(c.bin, args...); err != nil {
		return fmt.Errorf("image %s not found in %s: %w", image, c.bin, err)
	}
	return nil
}

func (c *cli) Run(image string, args []string, stdin io.Reader, stdout io.Writer) error {
	full := make([]string, 0, 1+len(sandboxArgs)+1+len(args))
	full = append(full, "run")
	full = append(full, sandboxArgs...)
	full = append(full, image)
	full = append(full, args...)
	if err := c.cmd.Pipe(c.bin, full, stdin, stdout); err != nil {
		return fmt.Errorf("%s run %s: %w", c.bin, image, err)
	}
	return nil
}

// DetectRuntime returns the first working runtime, docker before podman.
func DetectRuntime() (Runtime, error) {
	return detect(osCommander{})
}

func detect(cmd commander) (Runtime, error) {
	names := make([]string, 0, len(flavors))
	for _, f := range flavors {
		c := &cli{flavor: f, cmd: cmd}
		if c.Available() {
			return c, nil
		}
		names = append(names, f.bin)
	}
	return nil, fmt.Errorf("no container runtime available: tried %s", strings.Join(names, ", "))
}

// named returns the runtime for bin without probing it.
func named(bin string, cmd commander) *cli {
	for _, f := range flavors {
		if f.bin == bin {
			return &cli{flavor: f, cmd: cmd}
		}
	}
	return nil
}
