// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/chapter-publisher/internal/ledger"
	"github.com/pdiddy/chapter-publisher/internal/nbconvert"
	"github.com/pdiddy/chapter-publisher/internal/publish"
	"github.com/pdiddy/chapter-publisher/pkg/types"
)

var publishCmd = &cobra.Command{
	Use:   "publish [root]",
	Short: "Convert chapter notebooks to HTML and rewrite chapter READMEs",
	Long: `Publish scans the immediate subdirectories of root (default: the current
directory) whose name contains the match string. For each chapter it runs
jupyter nbconvert --to html on every notebook, then overwrites README.md
with a "# Chapter N" header and one preview link per HTML file.

Use --skip-convert to rebuild READMEs from existing HTML only, and --dry-run
to print the READMEs that would be written without touching anything.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPublish,
}

func init() {
	publishCmd.Flags().String("match", "", `substring identifying chapter directories (default "chapter")`)
	publishCmd.Flags().String("readme", "", `README file name written in each chapter (default "README.md")`)
	publishCmd.Flags().String("runtime", "", "where the converter runs: host, docker, podman, or auto")
	publishCmd.Flags().String("image", "", "container image for the converter when --runtime is not host")
	publishCmd.Flags().Bool("strict", false, "fail when the converter exits non-zero")
	publishCmd.Flags().String("ledger", "", "record the run in this SQLite history file")
	publishCmd.Flags().Bool("skip-convert", false, "do not run the converter; index existing HTML only")
	publishCmd.Flags().Bool("dry-run", false, "print READMEs instead of converting and writing")

	for key, flag := range map[string]string{
		"match":             "match",
		"readme.name":       "readme",
		"converter.runtime": "runtime",
		"converter.image":   "image",
		"converter.strict":  "strict",
		"ledger.path":       "ledger",
	} {
		_ = viper.BindPFlag(key, publishCmd.Flags().Lookup(flag))
	}

	rootCmd.AddCommand(publishCmd)
}

func runPublish(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}
	if len(args) == 1 {
		cfg.Root = args[0]
	}

	skipConvert, _ := cmd.Flags().GetBool("skip-convert")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	opts := publish.Options{SkipConvert: skipConvert, DryRun: dryRun}

	var conv nbconvert.Converter
	if !skipConvert && !dryRun {
		if conv, err = nbconvert.New(cfg.Converter, logger); err != nil {
			return err
		}
	}

	var led *ledger.Ledger
	if cfg.Ledger.Path != "" && !dryRun {
		if led, err = ledger.Open(cfg.Ledger); err != nil {
			return err
		}
		defer led.Close()
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	summary, runErr := publish.New(conv, cfg, opts, logger).PublishAll(ctx, cfg.Root)

	if led != nil {
		id, err := led.Record(context.WithoutCancel(ctx), summary, runErr)
		if err != nil {
			logger.Warn("Unable to record run in ledger", zap.String("ledger", led.Path()), zap.Error(err))
		} else {
			logger.Debug("Recorded run", zap.Int64("run", id), zap.String("ledger", led.Path()))
		}
	}
	if runErr != nil {
		return runErr
	}

	out := cmd.OutOrStdout()
	if dryRun {
		printDryRun(out, cfg, summary)
	}
	fmt.Fprintf(out, "Published %d chapter(s), %d notebook(s), %d page(s)\n",
		len(summary.Chapters), summary.Notebooks(), summary.Pages())
	return nil
}

// printDryRun shows the README each chapter would receive.
func printDryRun(w io.Writer, cfg types.Config, summary types.RunSummary) {
	for _, ch := range summary.Chapters {
		fmt.Fprintf(w, "==> %s/%s\n", ch.Dir, cfg.Readme.Name)
		fmt.Fprint(w, publish.RenderReadme(ch.Title, ch.Pages))
		fmt.Fprintln(w)
	}
}
