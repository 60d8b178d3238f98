package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"libretto/internal/catalog"
	"libretto/internal/config"
	"libretto/internal/scanner"
)

func newScanCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "scan [library]",
		Short: "Scan a library and reconcile the catalog",
		Long: "Walks the library root, extracts metadata from new and changed audio\n" +
			"files, and records them in the catalog. Unchanged files are skipped.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := "main"
			if len(args) == 1 {
				name = args[0]
			}

			logger, err := cmdCtx.ensureLogger()
			if err != nil {
				return err
			}

			return cmdCtx.withStore(func(cfg *config.Config, store *catalog.Store) error {
				ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
				defer stop()

				lib, err := resolveLibrary(ctx, cfg, store, name)
				if err != nil {
					return err
				}

				sc := scanner.New(cfg, store, logger)
				if isatty.IsTerminal(os.Stderr.Fd()) {
					sc.SetProgressFunc(newScanProgressBar())
				}

				result, err := sc.Scan(ctx, lib)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintln(out, renderTable(
					[]string{"New", "Updated", "Unchanged", "Errors", "Missing", "Elapsed"},
					[][]string{{
						fmt.Sprint(len(result.NewFiles)),
						fmt.Sprint(len(result.UpdatedFiles)),
						fmt.Sprint(result.UnchangedCount),
						fmt.Sprint(len(result.Errors)),
						fmt.Sprint(len(result.MissingPaths)),
						result.Duration.Round(time.Millisecond).String(),
					}},
					0, 1, 2, 3, 4,
				))
				for _, fe := range result.Errors {
					fmt.Fprintf(out, "skipped %s: %v\n", fe.Path, fe.Err)
				}
				for _, path := range result.MissingPaths {
					fmt.Fprintf(out, "missing from disk: %s\n", path)
				}
				if result.Cancelled {
					fmt.Fprintln(out, "Scan cancelled; partial results were committed")
				}
				return nil
			})
		},
	}
}

// resolveLibrary looks the library up by name. The default library is created
// on first use, rooted at the configured library directory.
func resolveLibrary(ctx context.Context, cfg *config.Config, store *catalog.Store, name string) (*catalog.Library, error) {
	lib, err := store.LibraryByName(ctx, name)
	if err == nil {
		return lib, nil
	}
	if !errors.Is(err, catalog.ErrLibraryNotFound) {
		return nil, err
	}
	if name != "main" {
		return nil, fmt.Errorf("%w (create it with `libretto libraries add %s --root <dir>`)", err, name)
	}
	return store.CreateLibrary(ctx, "main", cfg.Paths.LibraryDir)
}

func newScanProgressBar() scanner.ProgressFunc {
	bar := progressbar.NewOptions64(-1,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription("scanning"),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
	return func(p scanner.Progress) {
		switch p.Phase {
		case scanner.PhaseProcessing:
			if p.Discovered > 0 {
				bar.ChangeMax64(int64(p.Discovered))
			}
			_ = bar.Set(p.Processed)
		case scanner.PhaseComplete, scanner.PhaseCancelled:
			_ = bar.Finish()
		}
	}
}
