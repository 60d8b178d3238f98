package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"libretto/internal/catalog"
	"libretto/internal/config"
)

func newListCommand(cmdCtx *commandContext) *cobra.Command {
	var byAuthor bool

	cmd := &cobra.Command{
		Use:   "list [library]",
		Short: "List cataloged audiobooks",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := "main"
			if len(args) == 1 {
				name = args[0]
			}

			return cmdCtx.withStore(func(cfg *config.Config, store *catalog.Store) error {
				lib, err := store.LibraryByName(cmd.Context(), name)
				if err != nil {
					return err
				}
				books, err := store.Audiobooks(cmd.Context(), lib.ID)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if len(books) == 0 {
					fmt.Fprintf(out, "Library %q is empty; run `libretto scan %s` first\n", name, name)
					return nil
				}

				// The store returns path order; titles read better sorted
				// with locale-aware collation.
				coll := collate.New(language.Und, collate.IgnoreCase)
				sort.SliceStable(books, func(i, j int) bool {
					a, b := books[i], books[j]
					if byAuthor && a.Author != b.Author {
						return coll.CompareString(a.Author, b.Author) < 0
					}
					return coll.CompareString(a.Title, b.Title) < 0
				})

				rows := make([][]string, 0, len(books))
				for _, b := range books {
					rows = append(rows, []string{
						b.Title,
						b.Author,
						b.Narrator,
						formatDuration(b.DurationSeconds),
						formatSize(b.SizeBytes),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Title", "Author", "Narrator", "Duration", "Size"},
					rows, 3, 4,
				))

				stats, err := store.Stats(cmd.Context(), lib.ID)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%d audiobooks, %s, %.1f hours\n",
					stats.AudiobookCount, formatSize(stats.TotalSizeBytes), stats.TotalDurationHr)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&byAuthor, "by-author", false, "Sort by author, then title")
	return cmd
}
