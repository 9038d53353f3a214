package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"filmtrack/internal/syncconflict"
)

func newSyncCommand(ctx *commandContext) *cobra.Command {
	syncCmd := &cobra.Command{
		Use:   "sync",
		Short: "Inspect cloud-sync conflict copies",
	}
	syncCmd.AddCommand(newSyncScanCommand(ctx))
	return syncCmd
}

func newSyncScanCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "scan",
		Short: "Show what startup cleanup would do with conflict copies",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, closer, err := ctx.newLogger(cmd)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			defer closer.Close()

			result := syncconflict.Scan(cmd.Context(), syncconflict.OptionsFromConfig(cfg, logger))
			if ctx.jsonOutput() {
				return writeJSON(cmd, result)
			}
			out := cmd.OutOrStdout()
			if len(result.Planned) == 0 && len(result.Errors) == 0 {
				fmt.Fprintln(out, "No conflict copies found")
				return nil
			}
			if len(result.Planned) > 0 {
				rows := make([][]string, 0, len(result.Planned))
				for _, action := range result.Planned {
					rows = append(rows, []string{filepath.Base(action.Path), string(action.Decision), action.Reason})
				}
				fmt.Fprint(out, renderTable(out, []string{"File", "Action", "Reason"}, rows, nil))
			}
			for _, fileErr := range result.Errors {
				fmt.Fprintf(out, "error: %s: %s\n", fileErr.Path, fileErr.Error)
			}
			return nil
		},
	}
}
