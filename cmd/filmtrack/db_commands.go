package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"filmtrack/internal/daemon"
	"filmtrack/internal/storage"
)

func newDBCommand(ctx *commandContext) *cobra.Command {
	dbCmd := &cobra.Command{
		Use:   "db",
		Short: "Inspect and maintain the data file",
	}
	dbCmd.AddCommand(newDBCheckpointCommand(ctx))
	dbCmd.AddCommand(newDBHealthCommand(ctx))
	return dbCmd
}

func newDBCheckpointCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "checkpoint",
		Short: "Fold the write-ahead log into the data file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withDaemon(cmd, func(c context.Context, d *daemon.Daemon) error {
				result, err := d.Checkpoint(c)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, result)
				}
				out := cmd.OutOrStdout()
				if result.Busy {
					fmt.Fprintf(out, "Checkpoint incomplete: %d of %d frames copied (readers active)\n",
						result.CheckpointedFrames, result.LogFrames)
					return nil
				}
				fmt.Fprintf(out, "Checkpoint complete: %d frames copied\n", result.CheckpointedFrames)
				return nil
			})
		},
	}
}

func newDBHealthCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Report data file, lock, and inventory health",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withDaemon(cmd, func(c context.Context, d *daemon.Daemon) error {
				report, err := d.Health(c)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, report)
				}
				printHealth(cmd, report)
				return nil
			})
		},
	}
}

func printHealth(cmd *cobra.Command, report daemon.HealthReport) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Status:       %s\n", report.Status)
	fmt.Fprintf(out, "Journal mode: %s\n", report.Storage.JournalMode)
	fmt.Fprintf(out, "Integrity:    %s\n", report.Storage.Integrity)
	fmt.Fprintf(out, "Statements:   %d registered, %d prepared\n", report.Statements.Registered, report.Statements.Prepared)
	fmt.Fprintln(out)

	files := []storage.FileState{report.Storage.Database, report.Storage.WAL, report.Storage.SHM, report.Storage.Journal}
	rows := make([][]string, 0, len(files))
	for _, file := range files {
		size, modified := "-", "-"
		if file.Exists {
			size = humanize.Bytes(uint64(file.Size))
			if file.Modified != nil {
				modified = humanize.Time(*file.Modified)
			}
		}
		rows = append(rows, []string{file.Path, yesNo(file.Exists), size, modified})
	}
	fmt.Fprint(out, renderTable(out, []string{"File", "Exists", "Size", "Modified"}, rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft}))

	if len(report.Storage.Tables) > 0 {
		tableRows := make([][]string, 0, len(report.Storage.Tables))
		for _, table := range report.Storage.Tables {
			missing := "-"
			if len(table.MissingColumns) > 0 {
				missing = fmt.Sprint(table.MissingColumns)
			}
			tableRows = append(tableRows, []string{table.Name, yesNo(table.Exists), strconv.FormatInt(table.Rows, 10), missing})
		}
		fmt.Fprint(out, renderTable(out, []string{"Table", "Exists", "Rows", "Missing columns"}, tableRows,
			[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft}))
	}

	if report.Items != nil {
		fmt.Fprint(out, renderTable(out, []string{"Status", "Count"}, buildStatusRows(report.Items),
			[]columnAlignment{alignLeft, alignRight}))
	}

	for _, warning := range report.Warnings {
		fmt.Fprintf(out, "warning: %s\n", warning)
	}
}
