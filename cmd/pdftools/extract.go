// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pdftools/internal/estimate"
	"github.com/pdiddy/pdftools/internal/pages"
)

var extractCmd = &cobra.Command{
	Use:   "extract <file>",
	Short: "Copy selected pages into a new PDF",
	Long: `Extract writes the pages chosen by --pages into one document. Pages and
ranges are comma separated, for example --pages 1,3,5-7. Open ranges
("5-"), "even", "odd" and "!" negation are also accepted.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		selection, _ := cmd.Flags().GetString("pages")
		output, _ := cmd.Flags().GetString("output")

		res, err := pages.New(logger).Extract(cmd.Context(), args[0], output, selection)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "extracted %d pages into %s (%s)\n",
			res.Pages, res.Output, estimate.FormatSize(res.Size))
		return nil
	},
}

func init() {
	extractCmd.Flags().String("pages", "", "pages to keep, e.g. 1,3,5-7")
	extractCmd.Flags().StringP("output", "o", "extracted.pdf", "output path")
	_ = extractCmd.MarkFlagRequired("pages")

	rootCmd.AddCommand(extractCmd)
}
