package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"tonearm/internal/config"
	"tonearm/internal/library"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show library bookkeeping and storage paths",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *library.Store) error {
				meta, err := store.MetaAll(cmd.Context())
				if err != nil {
					return err
				}

				if jsonOutput {
					return writeJSON(cmd, map[string]any{
						"database":      cfg.DatabasePath(),
						"library_root":  cfg.Paths.LibraryRoot,
						"artwork_cache": cfg.ArtworkCacheDir(),
						"meta":          meta,
					})
				}

				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)

				fmt.Fprintln(out, "Library")
				printStatusLine(out, "Database", cfg.DatabasePath(), colorize)
				printStatusLine(out, "Music root", cfg.Paths.LibraryRoot, colorize)
				printStatusLine(out, "Artwork cache", cfg.ArtworkCacheDir(), colorize)
				fmt.Fprintln(out)
				fmt.Fprintln(out, "Bookkeeping")
				printStatusLine(out, "Schema version", orDash(meta[library.MetaVersion]), colorize)
				printStatusLine(out, "Created", orDash(meta[library.MetaCreatedDate]), colorize)
				printStatusLine(out, "Last scan", formatScanTime(meta[library.MetaLastScan]), colorize)
				printStatusLine(out, "Total tracks", orDash(meta[library.MetaTotalTracks]), colorize)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit status as JSON")
	return cmd
}

const (
	ansiReset = "\x1b[0m"
	ansiDim   = "\x1b[2m"

	statusLabelWidth = 16
)

func printStatusLine(out io.Writer, label, value string, colorize bool) {
	rendered := fmt.Sprintf("  %-*s %s", statusLabelWidth, label+":", value)
	if colorize && value == "-" {
		rendered = ansiDim + rendered + ansiReset
	}
	fmt.Fprintln(out, rendered)
}

func orDash(value string) string {
	if value == "" {
		return "-"
	}
	return value
}

// formatScanTime renders a stored scan timestamp in local time; a library
// that has never been scanned shows a dash.
func formatScanTime(value string) string {
	if value == "" {
		return "-"
	}
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return value
	}
	return parsed.Local().Format("2006-01-02 15:04:05")
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
