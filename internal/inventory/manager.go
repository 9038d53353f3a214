package inventory

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"filmtrack/internal/config"
	"filmtrack/internal/logging"
	"filmtrack/internal/stmtcache"
	"filmtrack/internal/storage"
)

const (
	defaultListLimit = 100
	maxListLimit     = 1000
)

// Options configures a Manager.
type Options struct {
	DefaultListLimit int
	MaxListLimit     int
	Now              func() time.Time
	Logger           *slog.Logger
}

// OptionsFromConfig maps the [inventory] section onto Options.
func OptionsFromConfig(cfg *config.Config, logger *slog.Logger) Options {
	return Options{
		DefaultListLimit: cfg.Inventory.DefaultListLimit,
		MaxListLimit:     cfg.Inventory.MaxListLimit,
		Logger:           logger,
	}
}

// Manager runs film item lifecycle operations against one engine.
type Manager struct {
	engine       *storage.Engine
	stmts        *stmtcache.Registry
	logger       *slog.Logger
	now          func() time.Time
	defaultLimit int
	maxLimit     int
}

// New registers the inventory statements with stmts and returns a Manager.
func New(engine *storage.Engine, stmts *stmtcache.Registry, opts Options) (*Manager, error) {
	if engine == nil || stmts == nil {
		return nil, errors.New("inventory: engine and statement registry are required")
	}
	for name, query := range statements {
		if err := stmts.Register(name, query); err != nil {
			return nil, err
		}
	}
	m := &Manager{
		engine:       engine,
		stmts:        stmts,
		logger:       logging.NewComponentLogger(opts.Logger, "inventory"),
		now:          opts.Now,
		defaultLimit: opts.DefaultListLimit,
		maxLimit:     opts.MaxListLimit,
	}
	if m.now == nil {
		m.now = time.Now
	}
	if m.maxLimit <= 0 {
		m.maxLimit = maxListLimit
	}
	if m.defaultLimit <= 0 {
		m.defaultLimit = defaultListLimit
	}
	if m.defaultLimit > m.maxLimit {
		m.defaultLimit = m.maxLimit
	}
	return m, nil
}

// getItemTx re-reads an item inside tx. Absence is (nil, nil).
func (m *Manager) getItemTx(ctx context.Context, tx stmtcache.TxView, id int64) (*FilmItem, error) {
	row, err := tx.Get(ctx, stmtItemByID, id)
	if err != nil {
		return nil, err
	}
	item, err := m.readItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return item, err
}

// readItem scans one item row. Unreadable shot logs are logged and dropped so
// one legacy row cannot hide the rest of the inventory.
func (m *Manager) readItem(row scanner) (*FilmItem, error) {
	item, err := scanItem(row)
	if err != nil {
		return nil, err
	}
	if item.shotLogsErr != nil {
		logging.WarnWithContext(m.logger, "film item shot log unreadable", "shot_logs_invalid",
			logging.Int64(logging.FieldItemID, item.ID),
			logging.Error(item.shotLogsErr),
			logging.String(logging.FieldImpact, "shot log shown as empty"),
			logging.String(logging.FieldErrorHint, "rewrite the shot log with items update"),
		)
	}
	return item, nil
}
