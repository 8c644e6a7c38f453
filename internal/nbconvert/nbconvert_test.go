// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package nbconvert

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pdiddy/chapter-publisher/pkg/types"
)

// fakeExecutor records the last command and returns canned results.
type fakeExecutor struct {
	missing  bool
	code     int
	runErr   error
	stderr   string
	gotName  string
	gotArgs  []string
	runCalls int
}

func (f *fakeExecutor) LookPath(file string) (string, error) {
	if f.missing {
		return "", errors.New("executable file not found in $PATH")
	}
	return "/usr/bin/" + file, nil
}

func (f *fakeExecutor) Run(ctx context.Context, name string, args []string, stderr io.Writer) (int, error) {
	f.runCalls++
	f.gotName, f.gotArgs = name, args
	if f.stderr != "" {
		_, _ = io.WriteString(stderr, f.stderr)
	}
	return f.code, f.runErr
}

func TestHostConverter_Convert(t *testing.T) {
	cfg := types.DefaultConfig().Converter

	tests := []struct {
		name       string
		exec       *fakeExecutor
		wantErr    error
		wantExit   bool
		wantRuns   int
		wantSubstr string
	}{
		{
			name:     "successful conversion",
			exec:     &fakeExecutor{},
			wantRuns: 1,
		},
		{
			name:     "missing binary",
			exec:     &fakeExecutor{missing: true},
			wantErr:  ErrConverterNotFound,
			wantRuns: 0,
		},
		{
			name:       "non-zero exit carries stderr",
			exec:       &fakeExecutor{code: 1, stderr: "[NbConvertApp] Converting\nNotJSONError: bad notebook"},
			wantExit:   true,
			wantRuns:   1,
			wantSubstr: "NotJSONError: bad notebook",
		},
		{
			name:       "start failure is wrapped",
			exec:       &fakeExecutor{runErr: errors.New("fork failed")},
			wantRuns:   1,
			wantSubstr: "fork failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newHostConverter(cfg, tt.exec, zap.NewNop())
			nb := filepath.Join("chapter1", "intro.ipynb")

			err := c.Convert(context.Background(), nb)
			assert.Equal(t, tt.wantRuns, tt.exec.runCalls)

			switch {
			case tt.wantErr != nil:
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.wantExit:
				var exitErr *ExitError
				require.ErrorAs(t, err, &exitErr)
				assert.Equal(t, 1, exitErr.Code)
				assert.Equal(t, nb, exitErr.Notebook)
				assert.Contains(t, err.Error(), tt.wantSubstr)
			case tt.wantSubstr != "":
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantSubstr)
			default:
				require.NoError(t, err)
				assert.Equal(t, "jupyter", tt.exec.gotName)
				assert.Equal(t, []string{"nbconvert", "--to", "html", nb}, tt.exec.gotArgs)
			}
		})
	}
}

func TestHostConverter_CanceledContext(t *testing.T) {
	exec := &fakeExecutor{code: -1}
	c := newHostConverter(types.DefaultConfig().Converter, exec, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := c.Convert(ctx, "chapter1/intro.ipynb")
	assert.ErrorIs(t, err, context.Canceled)
}

// fakeRuntime implements container.Runtime for converter tests.
type fakeRuntime struct {
	imageErr error
	runErr   error
	stderr   string
	hostDir  string
	workDir  string
	args     []string
}

func (f *fakeRuntime) Name() string    { return "docker" }
func (f *fakeRuntime) Available() bool { return true }

func (f *fakeRuntime) ImageExists(image string) error { return f.imageErr }

func (f *fakeRuntime) RunMounted(ctx context.Context, image, hostDir, workDir string, args []string, stderr io.Writer) error {
	f.hostDir, f.workDir, f.args = hostDir, workDir, args
	if f.stderr != "" {
		_, _ = io.WriteString(stderr, f.stderr)
	}
	return f.runErr
}

func TestContainerConverter(t *testing.T) {
	cfg := types.DefaultConfig().Converter

	t.Run("missing image fails construction", func(t *testing.T) {
		_, err := NewContainerConverter(&fakeRuntime{imageErr: errors.New("no such image")}, cfg, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "converter image not available in docker")
	})

	t.Run("mounts notebook directory and passes base name", func(t *testing.T) {
		rt := &fakeRuntime{}
		c, err := NewContainerConverter(rt, cfg, zap.NewNop())
		require.NoError(t, err)

		dir := t.TempDir()
		require.NoError(t, c.Convert(context.Background(), filepath.Join(dir, "classes.ipynb")))

		assert.Equal(t, dir, rt.hostDir)
		assert.Equal(t, "/work", rt.workDir)
		assert.Equal(t, []string{"jupyter", "nbconvert", "--to", "html", "classes.ipynb"}, rt.args)
	})

	t.Run("container failure becomes ExitError", func(t *testing.T) {
		rt := &fakeRuntime{runErr: errors.New("exit status 2"), stderr: "kernel died"}
		c, err := NewContainerConverter(rt, cfg, nil)
		require.NoError(t, err)

		err = c.Convert(context.Background(), filepath.Join(t.TempDir(), "classes.ipynb"))
		var exitErr *ExitError
		require.ErrorAs(t, err, &exitErr)
		assert.Equal(t, -1, exitErr.Code)
		assert.Contains(t, exitErr.Error(), "kernel died")
	})
}

func TestNew_UnknownRuntime(t *testing.T) {
	cfg := types.DefaultConfig().Converter
	cfg.Runtime = "lxc"

	_, err := New(cfg, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown converter runtime "lxc"`)
}

func TestNew_HostIsDefault(t *testing.T) {
	cfg := types.DefaultConfig().Converter
	cfg.Runtime = ""

	c, err := New(cfg, nil)
	require.NoError(t, err)
	assert.IsType(t, &HostConverter{}, c)
}
