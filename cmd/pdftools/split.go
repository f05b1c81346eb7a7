// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pdftools/internal/pages"
)

var splitCmd = &cobra.Command{
	Use:   "split <file>",
	Short: "Split a PDF into page ranges",
	Long: `Split writes the document into --out-dir as consecutive files of --span
pages each. With --ranges, one file is written per listed range instead
(for example --ranges 1-5,6-10). Output files are named
<name>_<first>-<last>.pdf, or <name>_<page>.pdf for single pages.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		outDir, _ := cmd.Flags().GetString("out-dir")
		span, _ := cmd.Flags().GetInt("span")
		ranges, _ := cmd.Flags().GetString("ranges")

		m := pages.New(logger)
		var (
			parts []pages.Part
			err   error
		)
		if ranges != "" {
			parts, err = m.SplitRanges(cmd.Context(), args[0], outDir, ranges)
		} else {
			parts, err = m.Split(cmd.Context(), args[0], outDir, span)
		}
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		for _, p := range parts {
			fmt.Fprintf(w, "%s (%d pages)\n", p.Path, p.Pages)
		}
		fmt.Fprintf(w, "\n%d files written to %s\n", len(parts), outDir)
		return nil
	},
}

func init() {
	splitCmd.Flags().String("out-dir", "split", "directory for the output files")
	splitCmd.Flags().Int("span", 1, "pages per output file")
	splitCmd.Flags().String("ranges", "", "comma separated page ranges, one output file each")
	splitCmd.MarkFlagsMutuallyExclusive("span", "ranges")

	rootCmd.AddCommand(splitCmd)
}
