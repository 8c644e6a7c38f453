// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "strings"

// PreviewConfig describes how README links reach the rendered HTML pages.
// Links are built as Service + Repository + "/blob/" + Branch + "/" + dir + "/" + file.
type PreviewConfig struct {
	// Service is the HTML preview service prefix (e.g. "https://htmlpreview.github.io/?").
	Service string `json:"service" yaml:"service" mapstructure:"service"`

	// Repository is the hosting URL of the repository holding the chapters.
	Repository string `json:"repository" yaml:"repository" mapstructure:"repository"`

	// Branch is the branch the HTML files are published from.
	Branch string `json:"branch" yaml:"branch" mapstructure:"branch"`
}

// BaseURL returns the fixed prefix shared by every link.
func (p PreviewConfig) BaseURL() string {
	return p.Service + strings.TrimSuffix(p.Repository, "/") + "/blob/" + p.Branch + "/"
}

// URL returns the preview link for file inside the chapter directory dir.
// dir is the directory base name, not a filesystem path.
func (p PreviewConfig) URL(dir, file string) string {
	return p.BaseURL() + dir + "/" + file
}

// ConverterRuntime selects where the notebook converter runs.
type ConverterRuntime string

const (
	RuntimeHost   ConverterRuntime = "host"
	RuntimeDocker ConverterRuntime = "docker"
	RuntimePodman ConverterRuntime = "podman"
	RuntimeAuto   ConverterRuntime = "auto"
)

// ConverterConfig holds settings for the notebook-to-HTML conversion step.
type ConverterConfig struct {
	// Command is the converter binary (default "jupyter").
	Command string `json:"command" yaml:"command" mapstructure:"command"`

	// Args precede the notebook path on the command line
	// (default ["nbconvert", "--to", "html"]).
	Args []string `json:"args" yaml:"args" mapstructure:"args"`

	// Runtime selects host execution or a container runtime.
	Runtime ConverterRuntime `json:"runtime" yaml:"runtime" mapstructure:"runtime"`

	// Image is the container image used when Runtime is not host.
	Image string `json:"image" yaml:"image" mapstructure:"image"`

	// Strict turns a non-zero converter exit into a publish error.
	Strict bool `json:"strict" yaml:"strict" mapstructure:"strict"`
}

// ReadmeConfig controls the generated chapter index file.
type ReadmeConfig struct {
	Name string `json:"name" yaml:"name" mapstructure:"name"`
}

// LedgerConfig controls the optional run history database.
type LedgerConfig struct {
	// Path is the SQLite database file. Empty disables the ledger.
	Path string `json:"path" yaml:"path" mapstructure:"path"`
}

// LogConfig controls console logging.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level" yaml:"level" mapstructure:"level"`
}

// Config groups all settings for a publish run.
type Config struct {
	// Root is the directory whose immediate subdirectories are scanned.
	Root string `json:"root" yaml:"root" mapstructure:"root"`

	// Match is the case-sensitive substring identifying chapter directories.
	Match string `json:"match" yaml:"match" mapstructure:"match"`

	Readme    ReadmeConfig    `json:"readme" yaml:"readme" mapstructure:"readme"`
	Preview   PreviewConfig   `json:"preview" yaml:"preview" mapstructure:"preview"`
	Converter ConverterConfig `json:"converter" yaml:"converter" mapstructure:"converter"`
	Ledger    LedgerConfig    `json:"ledger" yaml:"ledger" mapstructure:"ledger"`
	Log       LogConfig       `json:"log" yaml:"log" mapstructure:"log"`
}

// DefaultConfig returns the settings that reproduce the classic chapter
// layout: jupyter nbconvert on the host, README.md, htmlpreview links.
func DefaultConfig() Config {
	return Config{
		Root:  ".",
		Match: "chapter",
		Readme: ReadmeConfig{
			Name: "README.md",
		},
		Preview: PreviewConfig{
			Service:    "https://htmlpreview.github.io/?",
			Repository: "https://github.com/Mgancita/OO-modeling-and-design",
			Branch:     "master",
		},
		Converter: ConverterConfig{
			Command: "jupyter",
			Args:    []string{"nbconvert", "--to", "html"},
			Runtime: RuntimeHost,
			Image:   "jupyter/base-notebook:latest",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}
