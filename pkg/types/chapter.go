// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Page is one entry of a chapter README: an HTML file and its preview link.
type Page struct {
	// Name is the HTML file name inside the chapter directory.
	Name string `json:"name" yaml:"name"`

	// Text is the human-readable link text derived from Name.
	Text string `json:"text" yaml:"text"`

	// URL is the preview service link to the page.
	URL string `json:"url" yaml:"url"`
}

// ChapterResult describes what a publish did to a single chapter directory.
type ChapterResult struct {
	// Dir is the chapter directory path as visited.
	Dir string `json:"dir" yaml:"dir"`

	// Name is the base name of Dir.
	Name string `json:"name" yaml:"name"`

	// Title is the README header text (e.g. "Chapter 1").
	Title string `json:"title" yaml:"title"`

	// Notebooks lists the notebook files handed to the converter, in order.
	Notebooks []string `json:"notebooks" yaml:"notebooks"`

	// Pages lists the README entries, in order.
	Pages []Page `json:"pages" yaml:"pages"`

	// ReadmePath is the README file that was written. Empty on a dry run.
	ReadmePath string `json:"readme_path,omitempty" yaml:"readme_path,omitempty"`
}

// RunSummary holds the outcome of publishing every chapter under a root.
type RunSummary struct {
	Root     string          `json:"root" yaml:"root"`
	Chapters []ChapterResult `json:"chapters" yaml:"chapters"`
	Started  time.Time       `json:"started" yaml:"started"`
	Finished time.Time       `json:"finished" yaml:"finished"`
}

// Notebooks returns the number of notebooks converted across all chapters.
func (s RunSummary) Notebooks() int {
	n := 0
	for _, c := range s.Chapters {
		n += len(c.Notebooks)
	}
	return n
}

// Pages returns the number of README links written across all chapters.
func (s RunSummary) Pages() int {
	n := 0
	for _, c := range s.Chapters {
		n += len(c.Pages)
	}
	return n
}
