// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pdftools/internal/estimate"
	"github.com/pdiddy/pdftools/internal/pages"
)

var mergeCmd = &cobra.Command{
	Use:   "merge <file> <file> [files...]",
	Short: "Concatenate PDF documents",
	Long: `Merge concatenates the given documents, in order, into one file. Every
input is checked before anything is written.`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")
		res, err := pages.New(logger).Merge(cmd.Context(), args, output)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "merged %d files into %s: %d pages, %s\n",
			res.Inputs, res.Output, res.Pages, estimate.FormatSize(res.Size))
		return nil
	},
}

func init() {
	mergeCmd.Flags().StringP("output", "o", "merged.pdf", "output path")

	rootCmd.AddCommand(mergeCmd)
}
