// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/pdiddy/pdftools/internal/estimate"
	"github.com/pdiddy/pdftools/internal/history"
	"github.com/pdiddy/pdftools/pkg/types"
)

var estimateCmd = &cobra.Command{
	Use:   "estimate [file]",
	Short: "Predict compressed size without compressing",
	Long: `Estimate predicts the output size for a document. The size comes from
the file argument or --size. With --percent or --target it reports the single
matching prediction; otherwise it prints a table covering every tier.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runEstimate,
}

func init() {
	estimateCmd.Flags().String("size", "", "original size instead of a file, e.g. 4.2MB")
	estimateCmd.Flags().Int("percent", 0, "compression percentage, 5-98")
	estimateCmd.Flags().String("target", "", "target size, e.g. 500KB")
	estimateCmd.Flags().String("format", "", "print the estimate as yaml or json")

	estimateCmd.MarkFlagsMutuallyExclusive("percent", "target")

	rootCmd.AddCommand(estimateCmd)
}

// estimateRow is one line of estimate output.
type estimateRow struct {
	Percentage    int        `json:"percentage" yaml:"percentage"`
	Tier          types.Tier `json:"tier" yaml:"tier"`
	OriginalSize  int64      `json:"original_size" yaml:"original_size"`
	PredictedSize int64      `json:"predicted_size" yaml:"predicted_size"`
	Reduction     int        `json:"reduction" yaml:"reduction"`
}

func runEstimate(cmd *cobra.Command, args []string) error {
	original, err := originalSize(cmd, args)
	if err != nil {
		return err
	}

	var rows []estimateRow
	switch {
	case cmd.Flags().Changed("target"):
		raw, _ := cmd.Flags().GetString("target")
		target, err := parseSize(raw)
		if err != nil {
			return err
		}
		rows = append(rows, rowFor(estimate.Resolve(types.TargetSizeRequest(original, target)), original))
	case cmd.Flags().Changed("percent"):
		p, _ := cmd.Flags().GetInt("percent")
		rows = append(rows, rowFor(estimate.Resolve(types.PercentageRequest(original, p)), original))
	default:
		for _, tier := range types.Tiers {
			rows = append(rows, rowFor(estimate.EstimateResult(original, estimate.LowerBound(tier)), original))
		}
		rows = append(rows, rowFor(estimate.EstimateResult(original, estimate.MaxPercentage), original))
	}

	if format, _ := cmd.Flags().GetString("format"); format != "" {
		return history.Encode(cmd.OutOrStdout(), format, rows)
	}
	renderEstimates(cmd.OutOrStdout(), rows)
	return nil
}

func originalSize(cmd *cobra.Command, args []string) (int64, error) {
	if raw, _ := cmd.Flags().GetString("size"); raw != "" {
		if len(args) > 0 {
			return 0, fmt.Errorf("give either a file or --size, not both")
		}
		return parseSize(raw)
	}
	if len(args) == 0 {
		return 0, fmt.Errorf("provide a file or --size")
	}
	st, err := os.Stat(args[0])
	if err != nil {
		return 0, fmt.Errorf("reading %s: %w", args[0], err)
	}
	return st.Size(), nil
}

func rowFor(r types.EstimationResult, original int64) estimateRow {
	return estimateRow{
		Percentage:    r.Percentage,
		Tier:          r.Tier,
		OriginalSize:  original,
		PredictedSize: r.PredictedSize,
		Reduction:     estimate.Reduction(original, r.PredictedSize),
	}
}

func renderEstimates(w io.Writer, rows []estimateRow) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Percent", "Tier", "Original", "Predicted", "Reduction"})
	table.SetBorder(false)
	table.SetAutoWrapText(false)
	for _, r := range rows {
		table.Append([]string{
			strconv.Itoa(r.Percentage),
			string(r.Tier),
			estimate.FormatSize(r.OriginalSize),
			estimate.FormatSize(r.PredictedSize),
			strconv.Itoa(r.Reduction) + "%",
		})
	}
	table.Render()
}
