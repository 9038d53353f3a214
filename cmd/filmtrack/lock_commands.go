package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"filmtrack/internal/config"
	"filmtrack/internal/processlock"
)

func newLockCommand(ctx *commandContext) *cobra.Command {
	lockCmd := &cobra.Command{
		Use:   "lock",
		Short: "Inspect the data directory lock",
	}
	lockCmd.AddCommand(newLockStatusCommand(ctx))
	return lockCmd
}

// inspectLock reads the lock file without trying to acquire it.
func inspectLock(cfg *config.Config) (processlock.Status, error) {
	manager := processlock.New(cfg.LockPath(), processlock.Options{
		HeartbeatInterval: cfg.HeartbeatInterval(),
		StaleThreshold:    cfg.StaleThreshold(),
	})
	return manager.Inspect()
}

func newLockStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show who holds the lock and whether it is stale",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			status, err := inspectLock(cfg)
			if err != nil {
				return fmt.Errorf("inspect lock: %w", err)
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, status)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Lock file: %s\n", status.Path)
			if !status.Exists {
				fmt.Fprintln(out, "State:     free")
				return nil
			}
			switch {
			case !status.Parsable:
				fmt.Fprintln(out, "State:     corrupt (will be overridden)")
			case status.Stale:
				fmt.Fprintln(out, "State:     stale (will be overridden)")
			default:
				fmt.Fprintln(out, "State:     held")
			}
			if status.Record != nil {
				fmt.Fprintf(out, "Owner:     %s\n", status.Record.Owner)
				fmt.Fprintf(out, "Acquired:  %s\n", status.Record.AcquiredAt().Local().Format(time.RFC3339))
			}
			if status.OwnerRunning != nil {
				state := "running"
				if !*status.OwnerRunning {
					state = "not running"
				}
				fmt.Fprintf(out, "Process:   %s\n", state)
			}
			fmt.Fprintf(out, "Refreshed: %s ago\n", status.Age.Round(time.Second))
			return nil
		},
	}
}
