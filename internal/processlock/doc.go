// Package processlock keeps at most one filmtrack process writing the data
// directory at a time.
//
// The lock is a small JSON file beside the data file naming its owner. The
// holder touches the file's modification time on a heartbeat; another process
// treats the lock as abandoned once that mtime is older than the staleness
// threshold, so a crashed owner never requires manual cleanup. Freshness, not
// existence, decides. Unparsable content is treated as stale.
//
// The read-check-write sequence of Acquire runs under an flock guard file so
// two processes starting together cannot both observe "no lock" and both
// write one.
package processlock
