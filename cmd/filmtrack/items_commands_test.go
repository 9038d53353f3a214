package main

import (
	"encoding/json"
	"strconv"
	"strings"
	"testing"

	"filmtrack/internal/inventory"
)

func createFilm(t *testing.T, env *cliTestEnv) int64 {
	t.Helper()
	out := mustRunCLI(t, env, "--json", "films", "add", "Portra 400", "--brand", "Kodak", "--iso", "400", "--format", "135")
	var film inventory.Film
	if err := json.Unmarshal([]byte(out), &film); err != nil {
		t.Fatalf("decode film: %v (%s)", err, out)
	}
	if film.ID <= 0 || film.Name != "Portra 400" {
		t.Fatalf("unexpected film %+v", film)
	}
	return film.ID
}

func purchase(t *testing.T, env *cliTestEnv, filmID int64, quantity int) []inventory.Created {
	t.Helper()
	out := mustRunCLI(t, env, "--json", "items", "purchase",
		"--film", strconv.FormatInt(filmID, 10),
		"--quantity", strconv.Itoa(quantity),
		"--unit-price", "12.5",
		"--shipping", "6",
		"--vendor", "Analog Shop",
	)
	var created []inventory.Created
	if err := json.Unmarshal([]byte(out), &created); err != nil {
		t.Fatalf("decode purchase: %v (%s)", err, out)
	}
	if len(created) != quantity {
		t.Fatalf("expected %d items, got %d", quantity, len(created))
	}
	return created
}

func showItem(t *testing.T, env *cliTestEnv, id int64) inventory.FilmItem {
	t.Helper()
	out := mustRunCLI(t, env, "--json", "items", "show", strconv.FormatInt(id, 10))
	var item inventory.FilmItem
	if err := json.Unmarshal([]byte(out), &item); err != nil {
		t.Fatalf("decode item: %v (%s)", err, out)
	}
	return item
}

func TestItemsPurchaseListAndStats(t *testing.T) {
	env := setupCLITestEnv(t)
	filmID := createFilm(t, env)
	created := purchase(t, env, filmID, 3)

	item := showItem(t, env, created[0].ID)
	if item.Status != inventory.StatusInStock {
		t.Fatalf("expected in_stock, got %s", item.Status)
	}
	if item.PurchaseShippingShare != 2 {
		t.Fatalf("expected shipping share 2, got %v", item.PurchaseShippingShare)
	}
	if item.PurchaseVendor != "Analog Shop" {
		t.Fatalf("expected vendor copied, got %q", item.PurchaseVendor)
	}

	out := mustRunCLI(t, env, "items", "list")
	requireContains(t, out, "In Stock")
	requireContains(t, out, "12.50")

	out = mustRunCLI(t, env, "items", "stats")
	requireContains(t, out, "In Stock")
	requireContains(t, out, "Sent To Lab")

	out = mustRunCLI(t, env, "--json", "items", "stats")
	var stats map[inventory.Status]int
	if err := json.Unmarshal([]byte(out), &stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if stats[inventory.StatusInStock] != 3 || stats[inventory.StatusShot] != 0 {
		t.Fatalf("unexpected stats %v", stats)
	}
}

func TestItemsPurchaseFromBatchFile(t *testing.T) {
	env := setupCLITestEnv(t)
	filmID := createFilm(t, env)

	batch := `{"purchase_vendor":"Lab","total_shipping":3,"items":[` +
		`{"film_id":` + strconv.FormatInt(filmID, 10) + `,"quantity":2,"unit_price":9},` +
		`{"film_id":` + strconv.FormatInt(filmID, 10) + `,"quantity":1}]}`
	out, err := runCLIWithInput(t, env, batch, "--json", "items", "purchase", "--file", "-")
	if err != nil {
		t.Fatalf("purchase from stdin: %v", err)
	}
	var created []inventory.Created
	if err := json.Unmarshal([]byte(out), &created); err != nil {
		t.Fatalf("decode purchase: %v", err)
	}
	if len(created) != 3 {
		t.Fatalf("expected 3 items, got %d", len(created))
	}
	if share := showItem(t, env, created[2].ID).PurchaseShippingShare; share != 1 {
		t.Fatalf("expected shipping share 1, got %v", share)
	}
}

func TestItemsPurchaseRejectsUnknownFilm(t *testing.T) {
	env := setupCLITestEnv(t)
	_, _, err := runCLI(t, env, "items", "purchase", "--film", "999", "--quantity", "1")
	if err == nil {
		t.Fatal("expected error for unknown film")
	}
	if kind := inventory.KindOf(err); kind != inventory.KindNotFound {
		t.Fatalf("expected not_found, got %s (%v)", kind, err)
	}
}

func TestItemsLinkAndDeleteGuard(t *testing.T) {
	env := setupCLITestEnv(t)
	filmID := createFilm(t, env)
	created := purchase(t, env, filmID, 2)
	itemID := strconv.FormatInt(created[0].ID, 10)

	out := mustRunCLI(t, env, "--json", "rolls", "add", "--title", "Summer", "--camera", "FM2")
	var roll inventory.Roll
	if err := json.Unmarshal([]byte(out), &roll); err != nil {
		t.Fatalf("decode roll: %v", err)
	}
	rollID := strconv.FormatInt(roll.ID, 10)

	out = mustRunCLI(t, env, "items", "link", itemID, rollID, "--camera", "FM2")
	requireContains(t, out, "Linked film item "+itemID+" to roll "+rollID)

	item := showItem(t, env, created[0].ID)
	if item.Status != inventory.StatusShot || item.RollID == nil || *item.RollID != roll.ID {
		t.Fatalf("unexpected linked item %+v", item)
	}
	if item.LoadedCamera != "FM2" || item.LoadedAt == nil || item.ShotAt == nil {
		t.Fatalf("expected loaded camera and stamps, got %+v", item)
	}

	out = mustRunCLI(t, env, "rolls", "show", rollID)
	requireContains(t, out, "Purchase cost: 12.50")

	_, _, err := runCLI(t, env, "items", "delete", itemID)
	if err == nil {
		t.Fatal("expected delete of linked item to fail")
	}
	if kind := inventory.KindOf(err); kind != inventory.KindConflict {
		t.Fatalf("expected conflict, got %s (%v)", kind, err)
	}
	requireContains(t, err.Error(), rollID)

	otherID := strconv.FormatInt(created[1].ID, 10)
	out = mustRunCLI(t, env, "items", "delete", otherID)
	requireContains(t, out, "Deleted film item "+otherID)
	out = mustRunCLI(t, env, "items", "list", "--include-deleted")
	requireContains(t, out, "(deleted)")
	out = mustRunCLI(t, env, "items", "list")
	if strings.Contains(out, "(deleted)") {
		t.Fatalf("deleted item listed without --include-deleted: %s", out)
	}
}

func TestItemsUpdateAndShots(t *testing.T) {
	env := setupCLITestEnv(t)
	filmID := createFilm(t, env)
	created := purchase(t, env, filmID, 1)
	id := strconv.FormatInt(created[0].ID, 10)

	mustRunCLI(t, env, "items", "update", id, "--patch", `{"label":"fridge","roll_id":42,"bogus":1}`)
	item := showItem(t, env, created[0].ID)
	if item.Label != "fridge" {
		t.Fatalf("expected label updated, got %q", item.Label)
	}
	if item.RollID != nil {
		t.Fatalf("roll_id must not be patchable, got %v", *item.RollID)
	}

	if _, _, err := runCLI(t, env, "items", "update", id, "--patch", `{"status":"lost"}`); err == nil {
		t.Fatal("expected invalid status to fail")
	} else if kind := inventory.KindOf(err); kind != inventory.KindValidation {
		t.Fatalf("expected validation, got %s", kind)
	}

	mustRunCLI(t, env, "items", "shots", "add", id, "--date", "2026-05-01", "--count", "10", "--lens", "50mm")
	out := mustRunCLI(t, env, "items", "shots", "add", id, "--date", "2026-05-01", "--count", "4", "--lens", "50MM")
	requireContains(t, out, "14 frame(s)")

	out = mustRunCLI(t, env, "items", "shots", "list", id)
	requireContains(t, out, "2026-05-01")
	requireContains(t, out, "14")
}

func TestItemsListRejectsUnknownStatus(t *testing.T) {
	env := setupCLITestEnv(t)
	if _, _, err := runCLI(t, env, "items", "list", "--status", "lost"); err == nil {
		t.Fatal("expected invalid status filter to fail")
	}
}
