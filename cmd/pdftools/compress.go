// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/pdftools/internal/compress"
	"github.com/pdiddy/pdftools/internal/container"
	"github.com/pdiddy/pdftools/internal/estimate"
	"github.com/pdiddy/pdftools/internal/history"
	"github.com/pdiddy/pdftools/internal/pdfco"
	"github.com/pdiddy/pdftools/internal/secrets"
	"github.com/pdiddy/pdftools/pkg/types"
)

var compressCmd = &cobra.Command{
	Use:   "compress <file>",
	Short: "Compress a PDF by percentage or to a target size",
	Long: `Compress shrinks a PDF document. Give either --percent (5-98, higher is
more aggressive) or --target (a size such as 500KB or 2MiB). In target mode
the compressor is retried with increasing aggressiveness until the output
fits or --max-attempts is reached; the smallest result is kept.

If compression would make the file larger, the original is written
unchanged.`,
	Args: cobra.ExactArgs(1),
	RunE: runCompress,
}

func init() {
	compressCmd.Flags().Int("percent", 0, "compression percentage, 5-98")
	compressCmd.Flags().String("target", "", "target size, e.g. 500KB or 1.5MiB")
	compressCmd.Flags().StringP("output", "o", "", "output path (default <name>-compressed.pdf)")
	compressCmd.Flags().String("strategy", "", "compression strategy: local, remote, ghostscript")
	compressCmd.Flags().Int("max-attempts", 0, "maximum attempts in target mode (default 3)")
	compressCmd.Flags().String("report", "", "print the run record as yaml or json")
	compressCmd.Flags().Bool("quiet", false, "suppress progress output")
	compressCmd.Flags().Bool("no-history", false, "do not record this run")

	compressCmd.MarkFlagsMutuallyExclusive("percent", "target")
	compressCmd.MarkFlagsOneRequired("percent", "target")

	_ = viper.BindPFlag("compression.strategy", compressCmd.Flags().Lookup("strategy"))
	_ = viper.BindPFlag("compression.max_attempts", compressCmd.Flags().Lookup("max-attempts"))

	rootCmd.AddCommand(compressCmd)
}

func runCompress(cmd *cobra.Command, args []string) error {
	input := args[0]
	req, err := requestFromFlags(cmd)
	if err != nil {
		return err
	}
	output, _ := cmd.Flags().GetString("output")
	if output == "" {
		output = defaultOutputPath(input)
	}
	reportFormat, _ := cmd.Flags().GetString("report")
	quiet, _ := cmd.Flags().GetBool("quiet")
	noHistory, _ := cmd.Flags().GetBool("no-history")

	run := &types.Run{
		File:      input,
		Strategy:  cfg.Compression.Strategy,
		Mode:      req.Mode,
		Requested: req.Value,
		StartedAt: time.Now(),
	}

	res, runErr := compressFile(cmd.Context(), input, output, req, progressPrinter(cmd.ErrOrStderr(), quiet))
	run.Duration = time.Since(run.StartedAt)
	if runErr != nil {
		run.Status = types.RunFailed
		run.Error = runErr.Error()
	} else {
		run.Status = types.RunSucceeded
		run.Percentage = res.Percentage
		run.Tier = res.Tier
		run.OriginalSize = res.OriginalSize
		run.PredictedSize = res.PredictedSize
		run.ResultSize = res.Size
		run.Attempts = res.Attempts
	}

	if cfg.History.Enabled && !noHistory {
		recordRun(cmd.Context(), run)
	}
	if runErr != nil {
		return runErr
	}

	if reportFormat != "" {
		return history.Encode(cmd.OutOrStdout(), reportFormat, run)
	}
	printResult(cmd.OutOrStdout(), input, output, res)
	return nil
}

// requestFromFlags builds a CompressionRequest from --percent or --target.
// OriginalSize is filled in by the driver.
func requestFromFlags(cmd *cobra.Command) (types.CompressionRequest, error) {
	if cmd.Flags().Changed("target") {
		raw, _ := cmd.Flags().GetString("target")
		n, err := parseSize(raw)
		if err != nil {
			return types.CompressionRequest{}, err
		}
		return types.TargetSizeRequest(0, n), nil
	}
	p, _ := cmd.Flags().GetInt("percent")
	if p < estimate.MinPercentage || p > estimate.MaxPercentage {
		return types.CompressionRequest{}, fmt.Errorf("--percent must be between %d and %d, got %d",
			estimate.MinPercentage, estimate.MaxPercentage, p)
	}
	return types.PercentageRequest(0, p), nil
}

// parseSize accepts humanized sizes ("500KB", "1.5 MiB") and plain byte counts.
func parseSize(s string) (int64, error) {
	n, err := humanize.ParseBytes(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid size %q: %w", s, err)
	}
	if n == 0 {
		return 0, fmt.Errorf("size must be positive, got %q", s)
	}
	return int64(n), nil
}

// defaultOutputPath places the result next to input as <name>-compressed.pdf.
func defaultOutputPath(input string) string {
	ext := filepath.Ext(input)
	stem := strings.TrimSuffix(input, ext)
	if ext == "" {
		ext = ".pdf"
	}
	return stem + "-compressed" + ext
}

func compressFile(ctx context.Context, input, output string, req types.CompressionRequest, onProgress compress.ProgressFunc) (*compress.Result, error) {
	c, err := newCompressor(cfg.Compression)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(input)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", input, err)
	}

	driver := compress.NewDriver(c, cfg.Compression.MaxAttempts, logger)
	res, err := driver.Compress(ctx, data, req, onProgress)
	if err != nil {
		return nil, err
	}
	if err := writeFileAtomic(output, res.Data); err != nil {
		return nil, err
	}
	return res, nil
}

// newCompressor builds the configured strategy.
func newCompressor(cc types.CompressionConfig) (compress.Compressor, error) {
	switch cc.Strategy {
	case types.StrategyLocal, "":
		return compress.NewLocalCompressor(cc.Local, logger), nil

	case types.StrategyRemote:
		rc := cc.Remote
		key, ok := secrets.Resolve(rc.APIKey, loadedSecrets, secrets.PDFCoAPIKey)
		if !ok {
			return nil, fmt.Errorf("remote strategy needs an API key: set compression.remote.api_key, PDFTOOLS_COMPRESSION_REMOTE_API_KEY, or %s/%s",
				secrets.DefaultDir, secrets.PDFCoAPIKey)
		}
		rc.APIKey = key
		client := pdfco.NewClient(rc, &http.Client{Timeout: rc.Timeout}, logger)
		return compress.NewRemoteCompressor(client, rc, logger), nil

	case types.StrategyGhostscript:
		rt, err := container.DetectRuntime()
		if err != nil {
			return nil, err
		}
		image := cc.Ghostscript.Image
		if image == "" {
			image = compress.DefaultGhostscriptImage
		}
		if err := rt.ImageExists(image); err != nil {
			return nil, fmt.Errorf("%w (pull it with: %s pull %s)", err, rt.Name(), image)
		}
		return compress.NewGhostscriptCompressor(rt, cc.Ghostscript, logger), nil

	default:
		return nil, fmt.Errorf("unknown strategy %q (want %s, %s, or %s)", cc.Strategy,
			types.StrategyLocal, types.StrategyRemote, types.StrategyGhostscript)
	}
}

// writeFileAtomic writes data to a temp file next to path and renames it
// into place.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating output directory %s: %w", dir, err)
	}
	tmpFile, err := os.CreateTemp(dir, ".pdftools-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	_, writeErr := tmpFile.Write(data)
	closeErr := tmpFile.Close()
	if writeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing output: %w", writeErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("setting output permissions: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// progressPrinter renders progress on a single terminal line.
func progressPrinter(w io.Writer, quiet bool) compress.ProgressFunc {
	if quiet {
		return nil
	}
	return func(p int) {
		fmt.Fprintf(w, "\rcompressing... %3d%%", p)
		if p >= 100 {
			fmt.Fprintln(w)
		}
	}
}

func printResult(w io.Writer, input, output string, res *compress.Result) {
	if res.Unchanged {
		fmt.Fprintf(w, "%s: could not be reduced, original copied to %s (%s)\n",
			input, output, estimate.FormatSize(res.Size))
		return
	}
	fmt.Fprintf(w, "%s -> %s: %s -> %s (%d%% smaller), tier %s at %d%%, %d attempt(s), %s\n",
		input, output,
		estimate.FormatSize(res.OriginalSize), estimate.FormatSize(res.Size),
		res.Reduction(), res.Tier, res.Percentage, res.Attempts,
		res.Duration.Round(time.Millisecond))
	if !res.Converged {
		fmt.Fprintf(w, "warning: target size not reached; kept the smallest result\n")
	}
}

// recordRun stores run in the history database. Failures are only logged.
func recordRun(ctx context.Context, run *types.Run) {
	store, err := history.NewStore(cfg.History)
	if err != nil {
		logger.Warn("opening history", zap.Error(err))
		return
	}
	defer store.Close()

	if err := store.Record(context.WithoutCancel(ctx), run); err != nil {
		logger.Warn("recording run", zap.Error(err))
	}
}
