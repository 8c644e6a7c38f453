// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package publish converts the notebooks of every chapter directory to HTML
// and regenerates each chapter's README with links to the rendered pages.
//
// Chapters are processed one after another and the first error stops the
// run. READMEs written for earlier chapters are left in place.
package publish

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/maruel/natural"
	"go.uber.org/zap"

	"github.com/pdiddy/chapter-publisher/internal/nbconvert"
	"github.com/pdiddy/chapter-publisher/pkg/types"
)

// Options adjust a publish run without changing the configuration.
type Options struct {
	// SkipConvert regenerates READMEs from the HTML already on disk.
	SkipConvert bool

	// DryRun computes every result but runs no converter and writes nothing.
	DryRun bool
}

// Publisher publishes chapter directories.
type Publisher struct {
	conv nbconvert.Converter
	cfg  types.Config
	opts Options
	log  *zap.Logger
}

// New creates a Publisher that converts notebooks with conv. Empty match,
// README name and preview settings in cfg fall back to DefaultConfig.
func New(conv nbconvert.Converter, cfg types.Config, opts Options, log *zap.Logger) *Publisher {
	def := types.DefaultConfig()
	if cfg.Match == "" {
		cfg.Match = def.Match
	}
	if cfg.Readme.Name == "" {
		cfg.Readme.Name = def.Readme.Name
	}
	if cfg.Preview == (types.PreviewConfig{}) {
		cfg.Preview = def.Preview
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Publisher{conv: conv, cfg: cfg, opts: opts, log: log}
}

// PublishAll publishes every immediate subdirectory of root whose name
// contains the chapter match string, in natural name order. A root with no
// chapter directories is left untouched. The summary holds the chapters
// completed before any error.
func (p *Publisher) PublishAll(ctx context.Context, root string) (types.RunSummary, error) {
	summary := types.RunSummary{Root: root, Started: time.Now().UTC()}
	finish := func(err error) (types.RunSummary, error) {
		summary.Finished = time.Now().UTC()
		return summary, err
	}

	dirs, err := chapterDirs(root, p.cfg.Match)
	if err != nil {
		return finish(err)
	}
	if len(dirs) == 0 {
		p.log.Info("No chapter directories found", zap.String("root", root), zap.String("match", p.cfg.Match))
	}

	for _, dir := range dirs {
		if err := ctx.Err(); err != nil {
			return finish(err)
		}
		res, err := p.PublishChapter(ctx, dir)
		if err != nil {
			return finish(fmt.Errorf("publishing %s: %w", dir, err))
		}
		summary.Chapters = append(summary.Chapters, res)
	}
	return finish(nil)
}

// PublishChapter converts every notebook in dir, then lists the HTML files
// present afterwards and overwrites the chapter README with links to them.
// A converter that cannot run aborts before the README is touched. A
// converter that exits non-zero is logged and ignored unless the converter
// is configured as strict.
func (p *Publisher) PublishChapter(ctx context.Context, dir string) (types.ChapterResult, error) {
	name := filepath.Base(dir)
	res := types.ChapterResult{
		Dir:   dir,
		Name:  name,
		Title: ChapterTitle(name),
	}
	log := p.log.With(zap.String("chapter", name))

	files, err := listFiles(dir)
	if err != nil {
		return res, err
	}

	for _, f := range files {
		if !IsNotebook(f) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return res, err
		}
		res.Notebooks = append(res.Notebooks, f)
		if p.opts.SkipConvert || p.opts.DryRun {
			log.Debug("Skipping conversion", zap.String("notebook", f))
			continue
		}
		if err := p.convert(ctx, log, filepath.Join(dir, f)); err != nil {
			return res, err
		}
	}

	// Conversion may have added pages, so list again.
	if len(res.Notebooks) > 0 && !p.opts.SkipConvert && !p.opts.DryRun {
		if files, err = listFiles(dir); err != nil {
			return res, err
		}
	}

	for _, f := range files {
		if !IsHTML(f) {
			continue
		}
		res.Pages = append(res.Pages, types.Page{
			Name: f,
			Text: LinkText(f),
			URL:  p.cfg.Preview.URL(name, f),
		})
	}

	readme := filepath.Join(dir, p.cfg.Readme.Name)
	if p.opts.DryRun {
		log.Info("Would write README", zap.String("path", readme), zap.Int("pages", len(res.Pages)))
		return res, nil
	}
	if err := writeReadme(readme, res.Title, res.Pages); err != nil {
		return res, err
	}
	res.ReadmePath = readme

	log.Info("Wrote README",
		zap.String("path", readme),
		zap.Int("notebooks", len(res.Notebooks)),
		zap.Int("pages", len(res.Pages)))
	return res, nil
}

func (p *Publisher) convert(ctx context.Context, log *zap.Logger, notebook string) error {
	log.Debug("Converting notebook", zap.String("notebook", notebook))

	err := p.conv.Convert(ctx, notebook)
	if err == nil {
		return nil
	}

	var exitErr *nbconvert.ExitError
	if errors.As(err, &exitErr) && !p.cfg.Converter.Strict {
		log.Warn("Converter reported failure",
			zap.String("notebook", notebook),
			zap.Int("status", exitErr.Code),
			zap.String("stderr", exitErr.Stderr))
		return nil
	}
	return fmt.Errorf("converting %s: %w", notebook, err)
}

// chapterDirs returns the chapter directories directly under root, sorted
// naturally so "chapter2" precedes "chapter10".
func chapterDirs(root, match string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("reading root directory %s: %w", root, err)
	}

	var names []string
	for _, e := range entries {
		if !IsChapterDir(e.Name(), match) || !isDir(root, e) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Sort(natural.StringSlice(names))

	dirs := make([]string, len(names))
	for i, n := range names {
		dirs[i] = filepath.Join(root, n)
	}
	return dirs, nil
}

// listFiles returns the names of the non-directory entries of dir in
// natural order.
func listFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading chapter directory %s: %w", dir, err)
	}

	var names []string
	for _, e := range entries {
		if isDir(dir, e) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Sort(natural.StringSlice(names))
	return names, nil
}

// isDir reports whether e is a directory, following symlinks.
func isDir(parent string, e os.DirEntry) bool {
	if e.IsDir() {
		return true
	}
	if e.Type()&os.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(filepath.Join(parent, e.Name()))
	return err == nil && info.IsDir()
}
