// Command filmtrack manages a film-stock inventory stored in a single SQLite
// file that may live inside a cloud-synced folder.
//
// `filmtrack serve` keeps the data directory open until interrupted. Every
// other command opens the directory, does its work, and releases it again, so
// they report the directory as busy while a server is running.
package main
