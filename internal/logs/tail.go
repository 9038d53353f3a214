package logs

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const (
	defaultPollInterval = 250 * time.Millisecond
	maxLineBytes        = 1024 * 1024
)

// TailOptions controls Tail.
type TailOptions struct {
	Limit  int
	Filter Filter
}

// TailResult holds the matching entries and the offset to follow from.
type TailResult struct {
	Entries []Entry
	Offset  int64
}

// Tail returns the last opts.Limit entries of path that match opts.Filter. A
// missing file yields an empty result.
func Tail(path string, opts TailOptions) (TailResult, error) {
	var result TailResult

	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return result, nil
		}
		return result, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return result, fmt.Errorf("stat log file: %w", err)
	}
	if info.IsDir() {
		return result, fmt.Errorf("log path %q is a directory", path)
	}
	if opts.Limit <= 0 {
		result.Offset = info.Size()
		return result, nil
	}

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	ring := make([]Entry, opts.Limit)
	count := 0
	idx := 0
	for scanner.Scan() {
		entry := parseEntry(scanner.Text())
		if !opts.Filter.Match(entry) {
			continue
		}
		ring[idx] = entry
		idx = (idx + 1) % opts.Limit
		if count < opts.Limit {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return result, fmt.Errorf("read log file: %w", err)
	}

	offset, err := file.Seek(0, io.SeekCurrent)
	if err != nil {
		return result, fmt.Errorf("determine log offset: %w", err)
	}
	result.Offset = offset

	result.Entries = make([]Entry, count)
	if count == opts.Limit {
		for i := 0; i < count; i++ {
			result.Entries[i] = ring[(idx+i)%opts.Limit]
		}
	} else {
		copy(result.Entries, ring[:count])
	}
	return result, nil
}

// Follow calls emit for every matching entry appended after offset until ctx
// is cancelled or emit returns an error. A file shorter than offset is taken
// to be a fresh file after rotation and is read from the start.
//
// Writes to the log directory wake the loop immediately; the poll interval
// is the upper bound when file notifications are unavailable.
func Follow(ctx context.Context, path string, offset int64, filter Filter, poll time.Duration, emit func(Entry) error) error {
	if poll <= 0 {
		poll = defaultPollInterval
	}
	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	var events <-chan fsnotify.Event
	var watchErrors <-chan error
	if watcher, err := fsnotify.NewWatcher(); err == nil {
		defer watcher.Close()
		if err := watcher.Add(filepath.Dir(path)); err == nil {
			events, watchErrors = watcher.Events, watcher.Errors
		}
	}

	for {
		info, err := os.Stat(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
			offset = 0
		case err != nil:
			return fmt.Errorf("stat log file: %w", err)
		default:
			if info.Size() < offset {
				offset = 0
			}
			if info.Size() > offset {
				next, err := readForward(path, offset, func(line string) error {
					entry := parseEntry(line)
					if !filter.Match(entry) {
						return nil
					}
					return emit(entry)
				})
				if err != nil {
					return err
				}
				offset = next
			}
		}

		if err := waitForChange(ctx, path, ticker.C, events, watchErrors); err != nil {
			return err
		}
	}
}

// waitForChange blocks until the ticker fires or path is written, created or
// renamed. Events for other files in the directory are ignored.
func waitForChange(ctx context.Context, path string, tick <-chan time.Time, events <-chan fsnotify.Event, watchErrors <-chan error) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-tick:
			return nil
		case event, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if filepath.Clean(event.Name) == filepath.Clean(path) &&
				event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				return nil
			}
		case _, ok := <-watchErrors:
			if !ok {
				watchErrors = nil
			}
		}
	}
}

// readForward hands complete lines after offset to fn and returns the offset
// just past the last complete line. A trailing partial line is left for the
// next poll.
func readForward(path string, offset int64, fn func(string) error) (int64, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return offset, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	if _, err := file.Seek(offset, io.SeekStart); err != nil {
		return offset, fmt.Errorf("seek log file: %w", err)
	}

	reader := bufio.NewReaderSize(file, 64*1024)
	for {
		line, err := reader.ReadString('\n')
		if errors.Is(err, io.EOF) {
			return offset, nil
		}
		if err != nil {
			return offset, fmt.Errorf("read log file: %w", err)
		}
		offset += int64(len(line))
		if err := fn(line[:len(line)-1]); err != nil {
			return offset, err
		}
	}
}
