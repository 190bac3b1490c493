package main

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"tonearm/internal/config"
	"tonearm/internal/library"
	"tonearm/internal/scanner"
	"tonearm/internal/tags"
)

func newScanCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	var quiet bool

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Synchronize the library database with the music directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := ctx.newLogger()
			if err != nil {
				return err
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return ctx.withStore(func(cfg *config.Config, store *library.Store) error {
				scan := scanner.New(cfg, store, tags.TagLibDecoder{}, logger)
				if !quiet && !jsonOutput {
					scan.SetEmitter(progressPrinter(cmd))
				}

				summary, err := scan.Run(runCtx)
				if err != nil {
					return err
				}

				if jsonOutput {
					return writeJSON(cmd, map[string]any{
						"scan_id":      summary.ScanID,
						"files_seen":   summary.FilesSeen,
						"tracks_added": summary.TracksAdded,
						"tracks_moved": summary.TracksMoved,
						"elapsed":      summary.Elapsed.String(),
					})
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Scan %s committed in %s\n", summary.ScanID, summary.Elapsed.Round(time.Millisecond))
				fmt.Fprintf(out, "  files seen:   %d\n", summary.FilesSeen)
				fmt.Fprintf(out, "  tracks added: %d\n", summary.TracksAdded)
				fmt.Fprintf(out, "  tracks moved: %d\n", summary.TracksMoved)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit the scan summary as JSON")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Suppress per-file progress output")
	return cmd
}

// progressPrinter reports phase transitions and per-file progress on stderr
// so stdout stays reserved for the final summary.
func progressPrinter(cmd *cobra.Command) scanner.Emitter {
	errOut := cmd.ErrOrStderr()
	var lastPhase scanner.Phase
	return func(p scanner.Progress) {
		if p.Phase != lastPhase {
			lastPhase = p.Phase
			switch p.Phase {
			case scanner.PhaseDiscovering:
				fmt.Fprintln(errOut, "Discovering audio files...")
			case scanner.PhaseProcessing:
				fmt.Fprintf(errOut, "Processing %d files...\n", p.FilesSeen)
			case scanner.PhaseFinalizing:
				fmt.Fprintln(errOut, "Finalizing...")
			}
		}
		if p.Phase == scanner.PhaseProcessing && p.CurrentFile != "" {
			fmt.Fprintf(errOut, "  [%d/%d] %s\n", p.FilesDone+1, p.FilesSeen, p.CurrentFile)
		}
	}
}
