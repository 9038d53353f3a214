// Package daemon coordinates the long-running filmtrack process.
//
// It owns every service object for one data directory and starts them in a
// fixed order: the sync conflict resolver cleans the directory, the process
// lock is acquired, the storage engine opens the data file, the schema is
// checked, and the statement cache and inventory manager are wired on top.
// Stop unwinds the same chain so the final checkpoint lands before the lock
// is released.
//
// Keep orchestration logic here: domain rules live in inventory, and the
// daemon focuses on startup, shutdown, and operational reporting.
package daemon
