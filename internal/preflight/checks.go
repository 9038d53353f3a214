package preflight

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/shirou/gopsutil/v3/disk"
	"golang.org/x/sys/unix"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckFileWritable verifies that path can be opened for writing. A missing
// file passes when its directory is writable so it can be created.
func CheckFileWritable(name, path string) Result {
	info, err := os.Stat(path)
	switch {
	case err == nil:
		if info.IsDir() {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: is a directory)", path)}
		}
		if err := unix.Access(path, unix.R_OK|unix.W_OK); err != nil {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: not writable: %v)", path, err)}
		}
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
	case os.IsNotExist(err):
		dir := CheckDirectoryAccess(name, filepath.Dir(path))
		if !dir.Passed {
			return dir
		}
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (will be created)", path)}
	default:
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
}

// CheckFreeSpace verifies the file system holding path has at least minFree
// bytes available.
func CheckFreeSpace(name, path string, minFree uint64) Result {
	usage, err := disk.Usage(path)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: disk usage: %v)", path, err)}
	}
	detail := fmt.Sprintf("%s free of %s", humanize.Bytes(usage.Free), humanize.Bytes(usage.Total))
	if usage.Free < minFree {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: need at least %s)", detail, humanize.Bytes(minFree))}
	}
	return Result{Name: name, Passed: true, Detail: detail}
}
