// Package logs reads the rotating JSON log file written by filmtrack
// processes.
//
// Tail returns the last N records matching a Filter with bounded memory, and
// Follow polls for records appended after an offset, restarting from the top
// when the file is rotated underneath it. Lines that are not JSON are passed
// through unfiltered so partial writes and foreign output stay visible.
package logs
