// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package container

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
)

// mockExecutor records calls and returns configured responses.
type mockExecutor struct {
	availableBins   map[string]bool // binary -> whether LookPath succeeds
	runnableCmds    map[string]bool // "bin arg1 arg2" -> whether RunSilent succeeds
	runAttachedFunc func(ctx context.Context, name string, args []string, stderr io.Writer) error
}

func (m *mockExecutor) LookPath(file string) (string, error) {
	if m.availableBins[file] {
		return "/usr/bin/" + file, nil
	}
	return "", errors.New("not found: " + file)
}

func (m *mockExecutor) RunSilent(name string, args ...string) error {
	key := name + " " + strings.Join(args, " ")
	if m.runnableCmds[key] {
		return nil
	}
	return errors.New("command failed: " + key)
}

func (m *mockExecutor) RunAttached(ctx context.Context, name string, args []string, stderr io.Writer) error {
	if m.runAttachedFunc != nil {
		return m.runAttachedFunc(ctx, name, args, stderr)
	}
	return nil
}

func TestDetectRuntime(t *testing.T) {
	tests := []struct {
		name     string
		exec     *mockExecutor
		wantName string
		wantErr  bool
	}{
		{
			name: "docker available",
			exec: &mockExecutor{
				availableBins: map[string]bool{"docker": true},
				runnableCmds:  map[string]bool{"docker info": true},
			},
			wantName: "docker",
		},
		{
			name: "podman fallback when docker missing",
			exec: &mockExecutor{
				availableBins: map[string]bool{"podman": true},
				runnableCmds:  map[string]bool{"podman info": true},
			},
			wantName: "podman",
		},
		{
			name: "neither available",
			exec: &mockExecutor{
				availableBins: map[string]bool{},
				runnableCmds:  map[string]bool{},
			},
			wantErr: true,
		},
		{
			name: "docker on PATH but info fails, podman works",
			exec: &mockExecutor{
				availableBins: map[string]bool{"docker": true, "podman": true},
				runnableCmds:  map[string]bool{"podman info": true},
			},
			wantName: "podman",
		},
		{
			name: "both available, docker preferred",
			exec: &mockExecutor{
				availableBins: map[string]bool{"docker": true, "podman": true},
				runnableCmds:  map[string]bool{"docker info": true, "podman info": true},
			},
			wantName: "docker",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt, err := detectRuntime(tt.exec)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !strings.Contains(err.Error(), "no container runtime available") {
					t.Errorf("error should mention no runtime available, got: %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if rt.Name() != tt.wantName {
				t.Errorf("got runtime %q, want %q", rt.Name(), tt.wantName)
			}
		})
	}
}

func TestImageExists(t *testing.T) {
	tests := []struct {
		name    string
		mkRT    func(*mockExecutor) Runtime
		image   string
		cmds    map[string]bool
		wantErr bool
	}{
		{
			name:  "docker image exists",
			mkRT:  func(e *mockExecutor) Runtime { return newDockerRuntime(e) },
			image: "jupyter/base-notebook:latest",
			cmds:  map[string]bool{"docker image inspect jupyter/base-notebook:latest": true},
		},
		{
			name:    "docker image not found",
			mkRT:    func(e *mockExecutor) Runtime { return newDockerRuntime(e) },
			image:   "jupyter/base-notebook:latest",
			cmds:    map[string]bool{},
			wantErr: true,
		},
		{
			name:  "podman image exists",
			mkRT:  func(e *mockExecutor) Runtime { return newPodmanRuntime(e) },
			image: "jupyter/base-notebook:latest",
			cmds:  map[string]bool{"podman image exists jupyter/base-notebook:latest": true},
		},
		{
			name:    "podman image not found",
			mkRT:    func(e *mockExecutor) Runtime { return newPodmanRuntime(e) },
			image:   "jupyter/base-notebook:latest",
			cmds:    map[string]bool{},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exec := &mockExecutor{runnableCmds: tt.cmds}
			rt := tt.mkRT(exec)
			err := rt.ImageExists(tt.image)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !strings.Contains(err.Error(), tt.image) {
					t.Errorf("error should mention image name, got: %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestRunMounted(t *testing.T) {
	tests := []struct {
		name     string
		mkRT     func(*mockExecutor) Runtime
		attached func(context.Context, string, []string, io.Writer) error
		wantBin  string
		wantArgs []string
		wantErr  bool
	}{
		{
			name:    "docker mounts host directory as workdir",
			mkRT:    func(e *mockExecutor) Runtime { return newDockerRuntime(e) },
			wantBin: "docker",
			wantArgs: []string{
				"run", "--rm", "-v", "/book/chapter1:/work", "-w", "/work",
				"jupyter/base-notebook:latest", "jupyter", "nbconvert", "--to", "html", "intro.ipynb",
			},
		},
		{
			name:    "podman uses the same argument layout",
			mkRT:    func(e *mockExecutor) Runtime { return newPodmanRuntime(e) },
			wantBin: "podman",
			wantArgs: []string{
				"run", "--rm", "-v", "/book/chapter1:/work", "-w", "/work",
				"jupyter/base-notebook:latest", "jupyter", "nbconvert", "--to", "html", "intro.ipynb",
			},
		},
		{
			name: "run failure returns wrapped error",
			mkRT: func(e *mockExecutor) Runtime { return newDockerRuntime(e) },
			attached: func(context.Context, string, []string, io.Writer) error {
				return errors.New("container exited with code 1")
			},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotBin string
			var gotArgs []string
			exec := &mockExecutor{runAttachedFunc: func(ctx context.Context, name string, args []string, stderr io.Writer) error {
				gotBin, gotArgs = name, args
				if tt.attached != nil {
					return tt.attached(ctx, name, args, stderr)
				}
				return nil
			}}
			rt := tt.mkRT(exec)
			var stderr bytes.Buffer
			err := rt.RunMounted(context.Background(), "jupyter/base-notebook:latest", "/book/chapter1", "/work",
				[]string{"jupyter", "nbconvert", "--to", "html", "intro.ipynb"}, &stderr)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !strings.Contains(err.Error(), "jupyter/base-notebook:latest") {
					t.Errorf("error should mention image name, got: %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if gotBin != tt.wantBin {
				t.Errorf("binary = %q, want %q", gotBin, tt.wantBin)
			}
			if strings.Join(gotArgs, " ") != strings.Join(tt.wantArgs, " ") {
				t.Errorf("args = %v, want %v", gotArgs, tt.wantArgs)
			}
		})
	}
}

func TestForName(t *testing.T) {
	exec := &mockExecutor{
		availableBins: map[string]bool{"podman": true},
		runnableCmds:  map[string]bool{"podman info": true},
	}

	rt, err := forName(exec, "podman")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rt.Name() != "podman" {
		t.Errorf("runtime name = %q, want podman", rt.Name())
	}

	if _, err := forName(exec, "docker"); err == nil {
		t.Error("expected error for unavailable docker")
	}
	if _, err := forName(exec, "lxc"); err == nil || !strings.Contains(err.Error(), "unknown container runtime") {
		t.Errorf("expected unknown runtime error, got %v", err)
	}
}

func TestRuntimeName(t *testing.T) {
	exec := &mockExecutor{}
	docker := newDockerRuntime(exec)
	if docker.Name() != "docker" {
		t.Errorf("docker runtime name = %q, want %q", docker.Name(), "docker")
	}
	podman := newPodmanRuntime(exec)
	if podman.Name() != "podman" {
		t.Errorf("podman runtime name = %q, want %q", podman.Name(), "podman")
	}
}
