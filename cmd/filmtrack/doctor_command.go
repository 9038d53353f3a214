package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"filmtrack/internal/preflight"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check directories and the data directory lock",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			results := preflight.RunAll(cfg)

			lock := preflight.Result{Name: "Lock", Passed: true, Detail: "free"}
			status, err := inspectLock(cfg)
			switch {
			case err != nil:
				lock.Passed = false
				lock.Detail = err.Error()
			case status.Exists && status.Parsable && !status.Stale:
				lock.Passed = false
				lock.Detail = fmt.Sprintf("held by %s", status.Record.Owner)
				if status.OwnerRunning != nil && !*status.OwnerRunning {
					lock.Detail += "; its process has exited, the lock goes stale once the threshold passes"
				}
			case status.Exists:
				lock.Detail = "stale or corrupt lock will be overridden on start"
			}
			results = append(results, lock)

			out := cmd.OutOrStdout()
			failed := 0
			rows := make([][]string, 0, len(results))
			for _, result := range results {
				state := "ok"
				if !result.Passed {
					state = "fail"
					failed++
				}
				rows = append(rows, []string{result.Name, state, result.Detail})
			}
			fmt.Fprint(out, renderTable(out, []string{"Check", "Result", "Detail"}, rows, nil))
			if failed > 0 {
				return errors.New("one or more checks failed")
			}
			return nil
		},
	}
}
