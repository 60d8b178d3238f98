package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"libretto/internal/catalog"
	"libretto/internal/config"
)

func newLibrariesCommand(cmdCtx *commandContext) *cobra.Command {
	librariesCmd := &cobra.Command{
		Use:   "libraries",
		Short: "Manage named libraries",
	}

	librariesCmd.AddCommand(newLibrariesAddCommand(cmdCtx))
	librariesCmd.AddCommand(newLibrariesListCommand(cmdCtx))

	return librariesCmd
}

func newLibrariesAddCommand(cmdCtx *commandContext) *cobra.Command {
	var rootDir string

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Register a library rooted at a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmdCtx.withStore(func(cfg *config.Config, store *catalog.Store) error {
				root := rootDir
				if root == "" {
					root = cfg.Paths.LibraryDir
				}
				expanded, err := config.ExpandPath(root)
				if err != nil {
					return fmt.Errorf("resolve root path: %w", err)
				}

				lib, err := store.CreateLibrary(cmd.Context(), args[0], expanded)
				if err != nil {
					return fmt.Errorf("create library: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created library %q rooted at %s\n", lib.Name, lib.RootPath)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&rootDir, "root", "", "Library root directory (defaults to paths.library_dir)")
	return cmd
}

func newLibrariesListCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered libraries",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmdCtx.withStore(func(cfg *config.Config, store *catalog.Store) error {
				libs, err := store.Libraries(cmd.Context())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(libs) == 0 {
					fmt.Fprintln(out, "No libraries registered; run `libretto libraries add <name>`")
					return nil
				}

				rows := make([][]string, 0, len(libs))
				for _, lib := range libs {
					stats, err := store.Stats(cmd.Context(), lib.ID)
					if err != nil {
						return err
					}
					rows = append(rows, []string{
						lib.Name,
						lib.RootPath,
						fmt.Sprint(stats.AudiobookCount),
						formatSize(stats.TotalSizeBytes),
						fmt.Sprintf("%.1f h", stats.TotalDurationHr),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Name", "Root", "Books", "Size", "Duration"},
					rows, 2, 3, 4,
				))
				return nil
			})
		},
	}
}
