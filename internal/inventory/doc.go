// Package inventory tracks physical film units from purchase to archive.
//
// A Manager owns the film_items, films, and rolls tables. Purchases arrive as
// batches and are expanded into one row per unit inside a single
// transaction, with the batch's shipping cost spread evenly across units.
// Items then move through the status set in status.go; LinkToRoll is the
// only way an item becomes bound to a roll, and a roll-bound item is
// permanent history that can no longer be deleted.
//
// Errors carry a Kind (validation, conflict, not_found, storage) so the
// request layer can report {kind, message} without exposing engine detail.
// Schema changes bump schemaVersion in schema.go.
package inventory
