package daemon

import (
	"context"

	"filmtrack/internal/inventory"
	"filmtrack/internal/logging"
	"filmtrack/internal/processlock"
	"filmtrack/internal/stmtcache"
	"filmtrack/internal/storage"
)

// HealthReport aggregates operational state for the health command.
type HealthReport struct {
	Status     string                   `json:"status"`
	Warnings   []string                 `json:"warnings,omitempty"`
	Storage    storage.Health           `json:"storage"`
	Statements stmtcache.Stats          `json:"statements"`
	Lock       processlock.Status       `json:"lock"`
	Items      map[inventory.Status]int `json:"items"`
}

// Health reports data file, lock, and inventory state. It folds the
// write-ahead log first so the integrity check sees one file.
func (d *Daemon) Health(ctx context.Context) (HealthReport, error) {
	d.mu.Lock()
	engine, stmts, manager := d.engine, d.stmts, d.inventory
	d.mu.Unlock()
	if engine == nil {
		return HealthReport{}, ErrNotRunning
	}

	storageHealth, err := engine.Health(ctx, inventory.HealthExpectations())
	if err != nil {
		return HealthReport{}, err
	}
	report := HealthReport{
		Status:     storageHealth.Status,
		Warnings:   append([]string(nil), storageHealth.Warnings...),
		Storage:    storageHealth,
		Statements: stmts.Stats(),
	}

	lockStatus, err := d.lock.Inspect()
	if err != nil {
		report.Warnings = append(report.Warnings, "lock file unreadable: "+err.Error())
	} else {
		report.Lock = lockStatus
		if !lockStatus.OwnedByUs {
			report.Warnings = append(report.Warnings, "lock file is not owned by this process")
		}
	}

	items, err := manager.Stats(ctx)
	if err != nil {
		logging.WarnWithContext(d.logger, "inventory stats unavailable", "health_stats_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "health report omits item counts"),
		)
	} else {
		report.Items = items
	}

	if len(report.Warnings) > 0 {
		report.Status = storage.StatusWarning
	}
	return report, nil
}
