package main

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"media-catalog/internal/metrics"
	"media-catalog/internal/reconcile"
	"media-catalog/internal/startup"
)

// progressEvery is how many classifications pass between progress updates.
const progressEvery = 100

func newScanCmd() *cobra.Command {
	var (
		dryRun     bool
		jsonOutput bool
	)
	cmd := &cobra.Command{
		Use:   "scan [root]",
		Short: "Run one reconciliation pass",
		Long: `Scan walks root (MEDIA_DIR by default) once and brings the catalog in line
with it. With --dry-run every file is classified but nothing is written.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := startup.LoadConfig()
			if err != nil {
				return err
			}
			root := cfg.MediaDir
			if len(args) == 1 {
				if root, err = filepath.Abs(args[0]); err != nil {
					return err
				}
			}

			store, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer closeStore(store)

			metrics.InitializeMetrics()
			transcoder, cleanup := setupMedia(cfg, root)
			defer cleanup()

			opts := []reconcile.Option{}
			if dryRun {
				opts = append(opts, reconcile.WithDryRun())
			}
			stderr := cmd.ErrOrStderr()
			interactive := isTerminal(stderr)
			if interactive {
				opts = append(opts, reconcile.WithProgress(progressPrinter(stderr)))
			}

			engine := reconcile.New(reconcile.Deps{Store: store, Thumbnails: transcoder}, opts...)
			report, err := engine.Run(ctx, root)
			if interactive {
				fmt.Fprint(stderr, "\r\033[K")
			}
			if err != nil {
				return err
			}
			if !dryRun {
				afterPass(ctx, store, report)
			}
			return printReport(cmd.OutOrStdout(), report, jsonOutput)
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Classify files without changing the catalog")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the report as JSON")
	return cmd
}

// progressPrinter rewrites a single status line on w.
func progressPrinter(w io.Writer) func(reconcile.Event) {
	var n int
	return func(ev reconcile.Event) {
		n++
		if n%progressEvery == 0 {
			fmt.Fprintf(w, "\r\033[K%d files classified, last: %s", n, filepath.Base(ev.Path))
		}
	}
}

func printReport(w io.Writer, report reconcile.Report, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	mode := ""
	if report.DryRun {
		mode = " (dry run)"
	}
	fmt.Fprintf(w, "Pass %s over %s%s\n", report.PassID, report.Root, mode)
	rows := []struct {
		label string
		n     int
	}{
		{"scanned", report.Scanned},
		{"unchanged", report.Unchanged},
		{"modified", report.Modified},
		{"new", report.New},
		{"duplicates", report.Duplicates},
		{"renamed", report.Renamed},
		{"renamed+modified", report.RenamedModified},
		{"orphaned", report.Orphaned},
		{"orphan failures", report.OrphanFailures},
		{"thumbnails", report.ThumbnailsGenerated},
	}
	for _, row := range rows {
		fmt.Fprintf(w, "  %-17s %d\n", row.label+":", row.n)
	}
	_, err := fmt.Fprintf(w, "  %-17s %v\n", "duration:", report.Duration.Round(time.Millisecond))
	return err
}
