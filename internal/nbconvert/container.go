// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package nbconvert

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/pdiddy/chapter-publisher/internal/container"
	"github.com/pdiddy/chapter-publisher/pkg/types"
)

// containerWorkDir is where the chapter directory is mounted inside the image.
const containerWorkDir = "/work"

// ContainerConverter runs the converter inside a container image with the
// notebook's directory mounted, so the host needs no Jupyter installation.
type ContainerConverter struct {
	runtime container.Runtime
	image   string
	command string
	args    []string
	log     *zap.Logger
}

// NewContainerConverter creates a converter that uses the given container
// runtime to run cfg.Image. It verifies that the image exists locally
// before returning.
func NewContainerConverter(rt container.Runtime, cfg types.ConverterConfig, log *zap.Logger) (*ContainerConverter, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := rt.ImageExists(cfg.Image); err != nil {
		return nil, fmt.Errorf("converter image not available in %s: %w", rt.Name(), err)
	}
	return &ContainerConverter{
		runtime: rt,
		image:   cfg.Image,
		command: cfg.Command,
		args:    cfg.Args,
		log:     log,
	}, nil
}

// Convert mounts the notebook's directory and runs the converter on the
// notebook by base name inside the container.
func (c *ContainerConverter) Convert(ctx context.Context, notebookPath string) error {
	hostDir, err := filepath.Abs(filepath.Dir(notebookPath))
	if err != nil {
		return fmt.Errorf("resolving directory of %s: %w", notebookPath, err)
	}

	args := make([]string, 0, len(c.args)+2)
	args = append(args, c.command)
	args = append(args, c.args...)
	args = append(args, filepath.Base(notebookPath))

	c.log.Debug("Running converter in container",
		zap.String("runtime", c.runtime.Name()),
		zap.String("image", c.image),
		zap.String("mount", hostDir),
		zap.Strings("args", args))

	var stderr bytes.Buffer
	if err := c.runtime.RunMounted(ctx, c.image, hostDir, containerWorkDir, args, &stderr); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return &ExitError{Notebook: notebookPath, Code: exitCode(err), Stderr: stderr.String(), Err: err}
	}
	return nil
}
