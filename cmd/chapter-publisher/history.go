// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/chapter-publisher/internal/ledger"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent publish runs from the run ledger",
	Long: `History reads the SQLite run ledger (ledger.path or --ledger) and lists
the most recent publish runs with their status and chapter counts.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().String("ledger", "", "SQLite history file (default: ledger.path)")
	historyCmd.Flags().Int("limit", 10, "maximum number of runs to list")
	historyCmd.Flags().Bool("json", false, "output runs as JSON")

	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}
	if p, _ := cmd.Flags().GetString("ledger"); p != "" {
		cfg.Ledger.Path = p
	}

	led, err := ledger.Open(cfg.Ledger)
	if err != nil {
		return err
	}
	defer led.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	runs, err := led.Recent(cmd.Context(), limit)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatHistory(cmd.OutOrStdout(), runs, jsonOutput)
}

func formatHistory(w io.Writer, runs []ledger.Run, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(runs)
	}

	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return nil
	}

	fmt.Fprintf(w, "%-5s  %-20s  %-9s  %-8s  %-5s  %s\n",
		"Run", "Started", "Status", "Chapters", "Pages", "Root")
	fmt.Fprintln(w, strings.Repeat("-", 80))

	for _, r := range runs {
		pages := 0
		for _, c := range r.Chapters {
			pages += len(c.Pages)
		}
		fmt.Fprintf(w, "%-5d  %-20s  %-9s  %-8d  %-5d  %s\n",
			r.ID, r.Started.Format("2006-01-02 15:04:05"), r.Status, len(r.Chapters), pages, r.Root)
		if r.Error != "" {
			fmt.Fprintf(w, "       error: %s\n", r.Error)
		}
	}

	fmt.Fprintf(w, "\n%d runs\n", len(runs))
	return nil
}
