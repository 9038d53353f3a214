package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"filmtrack/internal/logs"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var (
		lines  int
		follow bool
		filter logs.Filter
	)

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show recent log records",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			path := cfg.LogFilePath()
			result, err := logs.Tail(path, logs.TailOptions{Limit: lines, Filter: filter})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, entry := range result.Entries {
				printLogEntry(out, entry)
			}
			if !follow {
				return nil
			}
			err = logs.Follow(cmd.Context(), path, result.Offset, filter, 0, func(entry logs.Entry) error {
				printLogEntry(out, entry)
				return nil
			})
			if err != nil && cmd.Context().Err() != nil {
				return nil
			}
			return err
		},
	}

	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "Number of records to show")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep printing new records")
	cmd.Flags().StringVar(&filter.MinLevel, "level", "", "Minimum level (debug, info, warn, error)")
	cmd.Flags().StringVar(&filter.Component, "component", "", "Only records from this component")
	cmd.Flags().StringVar(&filter.EventType, "event", "", "Only records with this event type")
	return cmd
}

func printLogEntry(out io.Writer, entry logs.Entry) {
	if !entry.Structured {
		fmt.Fprintln(out, entry.Raw)
		return
	}
	stamp := "-"
	if !entry.Time.IsZero() {
		stamp = entry.Time.Local().Format(time.DateTime)
	}
	line := fmt.Sprintf("%s %-5s %s", stamp, strings.ToUpper(entry.Level), entry.Message)
	if entry.Component != "" {
		line += " [" + entry.Component + "]"
	}
	if entry.EventType != "" {
		line += " event=" + entry.EventType
	}
	fmt.Fprintln(out, line)
}
