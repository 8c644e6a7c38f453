// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package nbconvert converts Jupyter notebooks to HTML by invoking an
// external converter (jupyter nbconvert by default) either on the host or
// inside a container image.
package nbconvert

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/chapter-publisher/internal/container"
	"github.com/pdiddy/chapter-publisher/pkg/types"
)

// ErrConverterNotFound is returned when the converter binary cannot be
// located, so no conversion could even be attempted.
var ErrConverterNotFound = errors.New("notebook converter not found")

// Converter turns a notebook into a sibling HTML file. Implementations block
// until the conversion process has exited.
type Converter interface {
	// Convert converts the notebook at notebookPath. The HTML output is
	// written next to it using the converter's own naming convention.
	Convert(ctx context.Context, notebookPath string) error
}

// ExitError reports a converter process that started but exited non-zero.
type ExitError struct {
	Notebook string
	Code     int
	Stderr   string
	Err      error
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("converter exited with status %d for %s", e.Code, e.Notebook)
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += ": " + lastLine(s)
	}
	return msg
}

func (e *ExitError) Unwrap() error { return e.Err }

// lastLine keeps error messages to the converter's final diagnostic line.
func lastLine(s string) string {
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}

// exitCode extracts the process status from an os/exec error, or -1.
func exitCode(err error) int {
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		return ee.ExitCode()
	}
	return -1
}

// New builds the converter selected by cfg.Runtime. Container runtimes are
// resolved and their image checked here, so a missing runtime fails before
// any chapter is touched.
func New(cfg types.ConverterConfig, log *zap.Logger) (Converter, error) {
	if log == nil {
		log = zap.NewNop()
	}
	switch cfg.Runtime {
	case "", types.RuntimeHost:
		return NewHostConverter(cfg, log), nil
	case types.RuntimeDocker, types.RuntimePodman:
		rt, err := container.ForName(string(cfg.Runtime))
		if err != nil {
			return nil, err
		}
		return NewContainerConverter(rt, cfg, log)
	case types.RuntimeAuto:
		rt, err := container.DetectRuntime()
		if err != nil {
			return nil, err
		}
		return NewContainerConverter(rt, cfg, log)
	default:
		return nil, fmt.Errorf("unknown converter runtime %q: want host, docker, podman, or auto", cfg.Runtime)
	}
}
