// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the chapter-publisher CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/chapter-publisher/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// logger is prepared once flags and configuration are known.
var logger = zap.NewNop()

// rootCmd is the base command for the chapter-publisher CLI.
var rootCmd = &cobra.Command{
	Use:   "chapter-publisher",
	Short: "Render chapter notebooks to HTML and index them in README files",
	Long: `chapter-publisher walks the chapter directories of a course or book
repository, converts every Jupyter notebook to HTML with jupyter nbconvert,
and rewrites each chapter's README.md with links to the rendered pages
through an HTML preview service.

A chapter directory is any immediate subdirectory of the root whose name
contains "chapter". Chapters are processed in order and the first error
stops the run.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		log, err := newLogger(viper.GetString("log.level"))
		if err != nil {
			return err
		}
		logger = log
		if f := viper.ConfigFileUsed(); f != "" {
			logger.Debug("Using config file", zap.String("path", f))
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./chapter-publisher.yaml or ~/.config/chapter-publisher/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, or error")
	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))

	setDefaults(viper.GetViper())
}

// setDefaults registers every configuration key with its default so that
// environment variables and Unmarshal see the full key set.
func setDefaults(v *viper.Viper) {
	def := types.DefaultConfig()
	v.SetDefault("root", def.Root)
	v.SetDefault("match", def.Match)
	v.SetDefault("readme.name", def.Readme.Name)
	v.SetDefault("preview.service", def.Preview.Service)
	v.SetDefault("preview.repository", def.Preview.Repository)
	v.SetDefault("preview.branch", def.Preview.Branch)
	v.SetDefault("converter.command", def.Converter.Command)
	v.SetDefault("converter.args", def.Converter.Args)
	v.SetDefault("converter.runtime", string(def.Converter.Runtime))
	v.SetDefault("converter.image", def.Converter.Image)
	v.SetDefault("converter.strict", def.Converter.Strict)
	v.SetDefault("ledger.path", def.Ledger.Path)
	v.SetDefault("log.level", def.Log.Level)
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("chapter-publisher")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "chapter-publisher"))
		}
	}

	viper.SetEnvPrefix("CHAPTER_PUBLISHER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Fprintf(os.Stderr, "warning: reading config: %v\n", err)
		}
	}
}

// loadConfig decodes the effective configuration from viper.
func loadConfig(v *viper.Viper) (types.Config, error) {
	var cfg types.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding configuration: %w", err)
	}
	return cfg, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
