// Package preflight provides readiness checks for the file system paths
// filmtrack depends on.
//
// The storage engine calls CheckFileWritable before opening the data file so
// an unwritable location fails fast. The CLI "filmtrack doctor" command runs
// RunAll to display every check at once.
package preflight
