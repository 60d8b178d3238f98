package main

import (
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"libretto/internal/processing"
)

func newProcessCommand(cmdCtx *commandContext) *cobra.Command {
	var outputDir string
	var workers int

	cmd := &cobra.Command{
		Use:   "process <file>...",
		Short: "Run the audio pipeline over files",
		Long: "Decodes each file and applies the configured stages (resample, mix,\n" +
			"normalize, silence detection). Processed audio is written as WAV when an\n" +
			"output directory is configured.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := cmdCtx.ensureLogger()
			if err != nil {
				return err
			}

			batch, err := processing.NewBatchProcessor(pipelineConfig(cfg), logger)
			if err != nil {
				return err
			}
			batch.Workers = workers
			batch.OutputDir = outputDir
			if batch.OutputDir == "" {
				batch.OutputDir = cfg.Paths.OutputDir
			}

			var bar *progressbar.ProgressBar
			if isatty.IsTerminal(os.Stderr.Fd()) {
				bar = progressbar.NewOptions(len(args),
					progressbar.OptionSetWriter(os.Stderr),
					progressbar.OptionSetDescription("processing"),
					progressbar.OptionShowCount(),
					progressbar.OptionClearOnFinish(),
				)
				var mu sync.Mutex
				batch.Progress = func(done, total int, _ string) {
					mu.Lock()
					defer mu.Unlock()
					_ = bar.Set(done)
				}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			results := batch.ProcessPaths(ctx, args)
			if bar != nil {
				_ = bar.Finish()
			}

			out := cmd.OutOrStdout()
			failed := 0
			for _, res := range results {
				if res.Err != nil {
					failed++
					fmt.Fprintf(out, "FAIL %s: %v\n", res.Path, res.Err)
					continue
				}
				line := fmt.Sprintf("ok   %s (%d Hz, %d ch",
					res.Path, res.Output.Buffer.SampleRate, res.Output.Buffer.Channels)
				if n := len(res.Output.Silence); n > 0 {
					line += fmt.Sprintf(", %d silent regions", n)
				}
				line += ")"
				if res.OutputPath != "" {
					line += " -> " + res.OutputPath
				}
				fmt.Fprintln(out, line)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d files failed", failed, len(results))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Directory for processed WAV files")
	cmd.Flags().IntVar(&workers, "workers", 0, "Concurrent files (0 = one per CPU)")
	return cmd
}
