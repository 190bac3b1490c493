package main

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"tonearm/internal/config"
	"tonearm/internal/library"
)

func newListCommand(ctx *commandContext) *cobra.Command {
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List indexed tracks, releases, or artists",
	}

	listCmd.AddCommand(newListTracksCommand(ctx))
	listCmd.AddCommand(newListReleasesCommand(ctx))
	listCmd.AddCommand(newListArtistsCommand(ctx))

	return listCmd
}

func newListTracksCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "tracks",
		Short: "List every indexed track",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *library.Store) error {
				tracks, err := store.ListTracks(cmd.Context())
				if err != nil {
					return err
				}

				coll := newCollator()
				sort.SliceStable(tracks, func(i, j int) bool {
					return coll.CompareString(tracks[i].Name, tracks[j].Name) < 0
				})

				if jsonOutput {
					items := make([]map[string]any, 0, len(tracks))
					for _, track := range tracks {
						items = append(items, map[string]any{
							"id":         track.ID,
							"name":       track.Name,
							"path":       track.Path,
							"digest":     track.Digest,
							"duration":   track.Duration,
							"play_count": track.PlayCount,
							"rating":     track.Rating,
						})
					}
					return writeJSON(cmd, map[string]any{"tracks": items})
				}

				rows := make([][]string, 0, len(tracks))
				for _, track := range tracks {
					rows = append(rows, []string{
						strconv.FormatInt(track.ID, 10),
						track.Name,
						formatDuration(track.Duration),
						strconv.Itoa(track.PlayCount),
						formatRating(track.Rating),
						track.Path,
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"ID", "Name", "Length", "Plays", "Rating", "Path"},
					rows, 1, 3, 4,
				))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit tracks as JSON")
	return cmd
}

func newListReleasesCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "releases",
		Short: "List every indexed release with its primary artist",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *library.Store) error {
				releases, primaries, err := store.ListReleases(cmd.Context())
				if err != nil {
					return err
				}

				coll := newCollator()
				sort.SliceStable(releases, func(i, j int) bool {
					return coll.CompareString(releases[i].Title, releases[j].Title) < 0
				})

				if jsonOutput {
					items := make([]map[string]any, 0, len(releases))
					for _, release := range releases {
						items = append(items, map[string]any{
							"id":      release.ID,
							"title":   release.Title,
							"artist":  primaries[release.ID],
							"year":    release.Year,
							"genre":   release.Genre,
							"artwork": release.ArtworkPath,
						})
					}
					return writeJSON(cmd, map[string]any{"releases": items})
				}

				rows := make([][]string, 0, len(releases))
				for _, release := range releases {
					year := ""
					if release.Year != nil {
						year = strconv.Itoa(*release.Year)
					}
					artwork := "no"
					if release.ArtworkPath != "" {
						artwork = "yes"
					}
					rows = append(rows, []string{
						strconv.FormatInt(release.ID, 10),
						release.Title,
						primaries[release.ID],
						year,
						release.Genre,
						artwork,
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"ID", "Title", "Artist", "Year", "Genre", "Artwork"},
					rows, 1, 4,
				))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit releases as JSON")
	return cmd
}

func newListArtistsCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "artists",
		Short: "List every credited artist",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *library.Store) error {
				artists, err := store.ListArtists(cmd.Context())
				if err != nil {
					return err
				}

				coll := newCollator()
				sort.SliceStable(artists, func(i, j int) bool {
					return coll.CompareString(sortKey(artists[i]), sortKey(artists[j])) < 0
				})

				if jsonOutput {
					items := make([]map[string]any, 0, len(artists))
					for _, artist := range artists {
						items = append(items, map[string]any{
							"id":   artist.ID,
							"name": artist.Name,
						})
					}
					return writeJSON(cmd, map[string]any{"artists": items})
				}

				rows := make([][]string, 0, len(artists))
				for _, artist := range artists {
					rows = append(rows, []string{
						strconv.FormatInt(artist.ID, 10),
						artist.Name,
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"ID", "Name"}, rows, 1))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit artists as JSON")
	return cmd
}

func newCollator() *collate.Collator {
	return collate.New(language.Und, collate.Loose)
}

func sortKey(artist *library.Artist) string {
	if artist.SortName != "" {
		return artist.SortName
	}
	return artist.Name
}

func formatDuration(seconds *float64) string {
	if seconds == nil {
		return "-"
	}
	d := time.Duration(*seconds * float64(time.Second)).Round(time.Second)
	minutes := int(d.Minutes())
	return fmt.Sprintf("%d:%02d", minutes, int(d.Seconds())-minutes*60)
}

func formatRating(rating *int) string {
	if rating == nil {
		return "-"
	}
	return strconv.Itoa(*rating)
}
