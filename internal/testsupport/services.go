package testsupport

import (
	"context"
	"testing"

	"filmtrack/internal/config"
	"filmtrack/internal/inventory"
	"filmtrack/internal/stmtcache"
	"filmtrack/internal/storage"
)

// MustOpenEngine opens the configured data file with the inventory schema
// and registers cleanup.
func MustOpenEngine(t testing.TB, cfg *config.Config) *storage.Engine {
	t.Helper()

	ctx := context.Background()
	engine, err := storage.Open(ctx, storage.OptionsFromConfig(cfg, nil))
	if err != nil {
		t.Fatalf("storage.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = engine.Close(context.Background())
	})
	if err := engine.EnsureSchema(ctx, inventory.Schema()); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}
	return engine
}

// Inventory bundles a manager with the engine and registry behind it.
type Inventory struct {
	*inventory.Manager
	Engine *storage.Engine
	Stmts  *stmtcache.Registry
}

// MustOpenInventory opens an engine and returns a ready Manager.
func MustOpenInventory(t testing.TB, cfg *config.Config, opts ...func(*inventory.Options)) Inventory {
	t.Helper()

	engine := MustOpenEngine(t, cfg)
	stmts := stmtcache.New(engine.DB(), nil)
	t.Cleanup(stmts.Close)

	options := inventory.OptionsFromConfig(cfg, nil)
	for _, opt := range opts {
		opt(&options)
	}
	manager, err := inventory.New(engine, stmts, options)
	if err != nil {
		t.Fatalf("inventory.New: %v", err)
	}
	return Inventory{Manager: manager, Engine: engine, Stmts: stmts}
}

// MustCreateFilm adds a catalog film for tests.
func MustCreateFilm(t testing.TB, inv Inventory, name string) *inventory.Film {
	t.Helper()

	film, err := inv.CreateFilm(context.Background(), inventory.NewFilm{Name: name, ISO: 400})
	if err != nil {
		t.Fatalf("CreateFilm: %v", err)
	}
	return film
}

// MustCreateRoll adds an empty roll for tests.
func MustCreateRoll(t testing.TB, inv Inventory, title string) *inventory.Roll {
	t.Helper()

	roll, err := inv.CreateRoll(context.Background(), inventory.NewRoll{Title: title})
	if err != nil {
		t.Fatalf("CreateRoll: %v", err)
	}
	return roll
}

// MustPurchase records a batch and returns the created item ids.
func MustPurchase(t testing.TB, inv Inventory, batch inventory.Batch) []int64 {
	t.Helper()

	created, err := inv.CreateFromPurchaseBatch(context.Background(), batch)
	if err != nil {
		t.Fatalf("CreateFromPurchaseBatch: %v", err)
	}
	ids := make([]int64, 0, len(created))
	for _, c := range created {
		ids = append(ids, c.ID)
	}
	return ids
}
