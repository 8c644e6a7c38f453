// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package nbconvert

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"

	"go.uber.org/zap"

	"github.com/pdiddy/chapter-publisher/pkg/types"
)

// executor abstracts command execution for testing.
type executor interface {
	LookPath(file string) (string, error)
	// Run executes name and waits for it. A process that ran and exited
	// non-zero is reported through code with a nil error; err is reserved
	// for failures to start or wait.
	Run(ctx context.Context, name string, args []string, stderr io.Writer) (code int, err error)
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (o *osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (o *osExecutor) Run(ctx context.Context, name string, args []string, stderr io.Writer) (int, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = stderr
	err := cmd.Run()
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		return ee.ExitCode(), nil
	}
	if err != nil {
		return -1, err
	}
	return 0, nil
}

// HostConverter runs the converter binary directly on the host.
type HostConverter struct {
	command string
	args    []string
	exec    executor
	log     *zap.Logger
}

// NewHostConverter creates a converter that runs cfg.Command with cfg.Args
// followed by the notebook path.
func NewHostConverter(cfg types.ConverterConfig, log *zap.Logger) *HostConverter {
	return newHostConverter(cfg, &osExecutor{}, log)
}

func newHostConverter(cfg types.ConverterConfig, exec executor, log *zap.Logger) *HostConverter {
	if log == nil {
		log = zap.NewNop()
	}
	return &HostConverter{
		command: cfg.Command,
		args:    cfg.Args,
		exec:    exec,
		log:     log,
	}
}

// Convert runs the converter on notebookPath and waits for it to exit.
// A missing binary yields ErrConverterNotFound; a non-zero exit yields *ExitError.
func (c *HostConverter) Convert(ctx context.Context, notebookPath string) error {
	if _, err := c.exec.LookPath(c.command); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrConverterNotFound, c.command, err)
	}

	args := make([]string, 0, len(c.args)+1)
	args = append(args, c.args...)
	args = append(args, notebookPath)

	c.log.Debug("Running converter", zap.String("command", c.command), zap.Strings("args", args))

	var stderr bytes.Buffer
	code, err := c.exec.Run(ctx, c.command, args, &stderr)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if err != nil {
		return fmt.Errorf("running %s on %s: %w", c.command, notebookPath, err)
	}
	if code != 0 {
		return &ExitError{Notebook: notebookPath, Code: code, Stderr: stderr.String()}
	}
	return nil
}
