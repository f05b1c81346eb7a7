// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/pdiddy/pdftools/internal/estimate"
	"github.com/pdiddy/pdftools/internal/history"
	"github.com/pdiddy/pdftools/pkg/types"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List and export recorded compression runs",
	Long: `History shows the compression runs recorded in the history database
(history.dir/history.db). Use "history list" for recent runs and
"history export" for a full YAML or JSON dump.`,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show recent compression runs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		failedOnly, _ := cmd.Flags().GetBool("failed")

		store, err := history.NewStore(cfg.History)
		if err != nil {
			return err
		}
		defer store.Close()

		opts := history.ListOptions{Limit: limit}
		if failedOnly {
			opts.Status = types.RunFailed
		}
		runs, err := store.List(cmd.Context(), opts)
		if err != nil {
			return err
		}
		sum, err := store.Summarize(cmd.Context())
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		if len(runs) == 0 {
			fmt.Fprintln(w, "no runs recorded")
			return nil
		}
		renderRuns(w, runs)
		fmt.Fprintf(w, "\n%d runs (%d succeeded, %d failed), %s saved\n",
			sum.Runs, sum.Succeeded, sum.Failed, estimate.FormatSize(sum.Saved()))
		return nil
	},
}

var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export all runs as YAML or JSON",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		output, _ := cmd.Flags().GetString("output")

		store, err := history.NewStore(cfg.History)
		if err != nil {
			return err
		}
		defer store.Close()

		if output == "" {
			return store.Export(cmd.Context(), cmd.OutOrStdout(), format)
		}
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("creating %s: %w", output, err)
		}
		if err := store.Export(cmd.Context(), f, format); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	},
}

func init() {
	historyListCmd.Flags().Int("limit", history.DefaultListLimit, "maximum number of runs to show")
	historyListCmd.Flags().Bool("failed", false, "show failed runs only")

	historyExportCmd.Flags().String("format", history.FormatYAML, "export format: yaml or json")
	historyExportCmd.Flags().StringP("output", "o", "", "write to a file instead of stdout")

	historyCmd.AddCommand(historyListCmd, historyExportCmd)
	rootCmd.AddCommand(historyCmd)
}

func renderRuns(w io.Writer, runs []types.Run) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Started", "File", "Strategy", "Tier", "Original", "Result", "Saved", "Status"})
	table.SetBorder(false)
	table.SetAutoWrapText(false)
	for _, r := range runs {
		saved := "-"
		if r.Status == types.RunSucceeded {
			saved = strconv.Itoa(estimate.Reduction(r.OriginalSize, r.ResultSize)) + "%"
		}
		table.Append([]string{
			r.StartedAt.Local().Format(time.DateTime),
			r.File,
			string(r.Strategy),
			string(r.Tier),
			estimate.FormatSize(r.OriginalSize),
			estimate.FormatSize(r.ResultSize),
			saved,
			string(r.Status),
		})
	}
	table.Render()
}
