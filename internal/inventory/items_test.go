package inventory_test

import (
	"context"
	"testing"

	"filmtrack/internal/inventory"
	"filmtrack/internal/testsupport"
)

func TestGetMissingReturnsNil(t *testing.T) {
	inv, _ := openInventory(t)
	item, err := inv.Get(context.Background(), 12345)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if item != nil {
		t.Fatalf("expected nil, got %+v", item)
	}
}

func TestUpdateIgnoresUnknownKeys(t *testing.T) {
	inv, _ := openInventory(t)
	ctx := context.Background()
	itemID := purchaseOne(t, inv)
	before := mustGet(t, inv, itemID)

	patch, err := inventory.ParsePatch([]byte(`{"favourite_colour":"green","roll_id":99,"id":7}`))
	if err != nil {
		t.Fatalf("ParsePatch: %v", err)
	}
	if err := inv.Update(ctx, itemID, patch); err != nil {
		t.Fatalf("Update: %v", err)
	}
	after := mustGet(t, inv, itemID)
	if after.RollID != nil || after.ID != before.ID || after.UpdatedAt != nil {
		t.Fatalf("unknown keys changed the item: %+v", after)
	}
}

func TestUpdateAppliesWhitelistedFields(t *testing.T) {
	inv, _ := openInventory(t)
	ctx := context.Background()
	itemID := purchaseOne(t, inv)

	patch, err := inventory.ParsePatch([]byte(`{
        "status": "loaded",
        "label": "  box 3 ",
        "develop_price": 9.5,
        "negative_archived": true,
        "loaded_at": "2026-05-02T10:00:00Z",
        "batch_number": null
    }`))
	if err != nil {
		t.Fatalf("ParsePatch: %v", err)
	}
	if err := inv.Update(ctx, itemID, patch); err != nil {
		t.Fatalf("Update: %v", err)
	}
	item := mustGet(t, inv, itemID)
	if item.Status != inventory.StatusLoaded || item.Label != "box 3" || !item.NegativeArchived {
		t.Fatalf("fields not applied: %+v", item)
	}
	if item.DevelopPrice == nil || *item.DevelopPrice != 9.5 {
		t.Fatalf("develop_price = %v", item.DevelopPrice)
	}
	if item.LoadedAt == nil || item.LoadedAt.Hour() != 10 {
		t.Fatalf("loaded_at = %v", item.LoadedAt)
	}
	if item.BatchNumber != "" {
		t.Fatalf("batch_number not cleared: %q", item.BatchNumber)
	}
	if item.UpdatedAt == nil {
		t.Fatal("updated_at not stamped")
	}
}

func TestUpdateRejectsInvalidStatus(t *testing.T) {
	inv, _ := openInventory(t)
	ctx := context.Background()
	itemID := purchaseOne(t, inv)

	err := inv.Update(ctx, itemID, inventory.Patch{
		Label:  inventory.Value("should not land"),
		Status: inventory.Value(inventory.Status("misplaced")),
	})
	requireKind(t, err, inventory.KindValidation)
	requireKind(t, inv.Update(ctx, itemID, inventory.Patch{Status: inventory.Null[inventory.Status]()}), inventory.KindValidation)

	if item := mustGet(t, inv, itemID); item.Label != "" || item.Status != inventory.StatusInStock {
		t.Fatalf("rejected update mutated item: %+v", item)
	}
}

func TestUpdateMissingItem(t *testing.T) {
	inv, _ := openInventory(t)
	ctx := context.Background()
	requireKind(t, inv.Update(ctx, 777, inventory.Patch{Label: inventory.Value("x")}), inventory.KindNotFound)
	if err := inv.Update(ctx, 777, inventory.Patch{}); err != nil {
		t.Fatalf("empty patch should be a no-op, got %v", err)
	}
}

func TestParsePatchRejectsMalformedJSON(t *testing.T) {
	_, err := inventory.ParsePatch([]byte(`{"status":`))
	requireKind(t, err, inventory.KindValidation)
	_, err = inventory.ParsePatch([]byte(`{"develop_price":"cheap"}`))
	requireKind(t, err, inventory.KindValidation)
}

func TestListFiltersAndOrders(t *testing.T) {
	inv, _ := openInventory(t)
	ctx := context.Background()
	portra := testsupport.MustCreateFilm(t, inv, "Portra 400")
	hp5 := testsupport.MustCreateFilm(t, inv, "HP5")

	first := testsupport.MustPurchase(t, inv, inventory.Batch{Items: []inventory.BatchLine{{FilmID: portra.ID, Quantity: 2}}})
	testsupport.MustPurchase(t, inv, inventory.Batch{Items: []inventory.BatchLine{{FilmID: hp5.ID, Quantity: 3}}})
	if err := inv.Update(ctx, first[0], inventory.Patch{Status: inventory.Value(inventory.StatusArchived)}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	all, err := inv.List(ctx, inventory.Filter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 5 {
		t.Fatalf("List returned %d items", len(all))
	}
	if all[0].FilmID != hp5.ID || all[len(all)-1].ID != first[0] {
		t.Fatalf("expected newest batch first, got ids %d..%d", all[0].ID, all[len(all)-1].ID)
	}

	byFilm, err := inv.List(ctx, inventory.Filter{FilmID: portra.ID})
	if err != nil || len(byFilm) != 2 {
		t.Fatalf("film filter = %d items, err %v", len(byFilm), err)
	}

	byStatus, err := inv.List(ctx, inventory.Filter{Statuses: []inventory.Status{inventory.StatusArchived}})
	if err != nil || len(byStatus) != 1 || byStatus[0].ID != first[0] {
		t.Fatalf("status filter = %+v, err %v", byStatus, err)
	}

	set, err := inv.List(ctx, inventory.Filter{Statuses: []inventory.Status{inventory.StatusArchived, inventory.StatusInStock}})
	if err != nil || len(set) != 5 {
		t.Fatalf("status set filter = %d items, err %v", len(set), err)
	}

	page, err := inv.List(ctx, inventory.Filter{Limit: 2, Offset: 1})
	if err != nil {
		t.Fatalf("List page: %v", err)
	}
	if len(page) != 2 || page[0].ID != all[1].ID || page[1].ID != all[2].ID {
		t.Fatalf("page = %+v", page)
	}

	_, err = inv.List(ctx, inventory.Filter{Statuses: []inventory.Status{"lost"}})
	requireKind(t, err, inventory.KindValidation)
	_, err = inv.List(ctx, inventory.Filter{Offset: -1})
	requireKind(t, err, inventory.KindValidation)
}

func TestListClampsLimit(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	inv := testsupport.MustOpenInventory(t, cfg, func(o *inventory.Options) {
		o.DefaultListLimit = 2
		o.MaxListLimit = 3
	})
	film := testsupport.MustCreateFilm(t, inv, "Fomapan")
	testsupport.MustPurchase(t, inv, inventory.Batch{Items: []inventory.BatchLine{{FilmID: film.ID, Quantity: 5}}})

	ctx := context.Background()
	items, err := inv.List(ctx, inventory.Filter{})
	if err != nil || len(items) != 2 {
		t.Fatalf("default limit returned %d items, err %v", len(items), err)
	}
	items, err = inv.List(ctx, inventory.Filter{Limit: 50})
	if err != nil || len(items) != 3 {
		t.Fatalf("max limit returned %d items, err %v", len(items), err)
	}
}

func TestStatsCountsNonDeletedItems(t *testing.T) {
	inv, _ := openInventory(t)
	ctx := context.Background()
	film := testsupport.MustCreateFilm(t, inv, "Cinestill 800T")
	ids := testsupport.MustPurchase(t, inv, inventory.Batch{Items: []inventory.BatchLine{{FilmID: film.ID, Quantity: 3}}})
	if err := inv.SoftDelete(ctx, ids[0]); err != nil {
		t.Fatalf("SoftDelete: %v", err)
	}
	if err := inv.Update(ctx, ids[1], inventory.Patch{Status: inventory.Value(inventory.StatusLoaded)}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	stats, err := inv.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats[inventory.StatusInStock] != 1 || stats[inventory.StatusLoaded] != 1 {
		t.Fatalf("stats = %v", stats)
	}
	if _, ok := stats[inventory.StatusArchived]; !ok {
		t.Fatal("every status should be present")
	}
}

func TestFilmCatalog(t *testing.T) {
	inv, _ := openInventory(t)
	ctx := context.Background()

	if _, err := inv.CreateFilm(ctx, inventory.NewFilm{Name: "  "}); err == nil {
		t.Fatal("expected validation error for blank name")
	}
	testsupport.MustCreateFilm(t, inv, "zeta")
	testsupport.MustCreateFilm(t, inv, "Alpha")

	films, err := inv.ListFilms(ctx)
	if err != nil {
		t.Fatalf("ListFilms: %v", err)
	}
	if len(films) != 2 || films[0].Name != "Alpha" || films[0].ISO != 400 {
		t.Fatalf("films = %+v", films)
	}
	missing, err := inv.GetFilm(ctx, 999)
	if err != nil || missing != nil {
		t.Fatalf("GetFilm missing = %v, %v", missing, err)
	}
}
