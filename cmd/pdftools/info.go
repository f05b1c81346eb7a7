// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/pdiddy/pdftools/internal/estimate"
	"github.com/pdiddy/pdftools/internal/history"
	"github.com/pdiddy/pdftools/internal/pdfinfo"
)

var infoCmd = &cobra.Command{
	Use:   "info <file> [files...]",
	Short: "Show PDF version, page count, size, and document info",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		type entry struct {
			File         string `json:"file" yaml:"file"`
			pdfinfo.Info `yaml:",inline"`
		}

		var (
			entries []entry
			failed  int
		)
		for _, path := range args {
			info, err := pdfinfo.InspectFile(path)
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "failed  %s: %v\n", path, err)
				failed++
				continue
			}
			entries = append(entries, entry{File: path, Info: info})
		}

		if format, _ := cmd.Flags().GetString("format"); format != "" {
			if err := history.Encode(cmd.OutOrStdout(), format, entries); err != nil {
				return err
			}
		} else if len(entries) > 0 {
			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.SetHeader([]string{"File", "Version", "Pages", "Size", "Title", "Producer"})
			table.SetBorder(false)
			table.SetAutoWrapText(false)
			for _, e := range entries {
				table.Append([]string{
					e.File, e.Version, strconv.Itoa(e.Pages),
					estimate.FormatSize(e.Size), e.Title, e.Producer,
				})
			}
			table.Render()
		}

		if failed > 0 {
			return fmt.Errorf("%d file(s) could not be read", failed)
		}
		return nil
	},
}

func init() {
	infoCmd.Flags().String("format", "", "print as yaml or json instead of a table")

	rootCmd.AddCommand(infoCmd)
}
