// Package wal is a newline-delimited JSON write-ahead log.
package wal

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sync"
)

// FileMode is the permission used when the log file is created (rw-r--r--)
const FileMode fs.FileMode = 0644

// WAL appends JSON records to a file and syncs each one to disk
type WAL struct {
	file *os.File
	mu   sync.Mutex
}

// Open opens or creates the log at path in append mode
func Open(path string) (*WAL, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_RDWR, FileMode)
	if err != nil {
		return nil, fmt.Errorf("failed to open wal %s: %w", path, err)
	}
	return &WAL{file: file}, nil
}

// Write encodes v as one line and syncs the file
func (w *WAL) Write(v any) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := json.NewEncoder(w.file).Encode(v); err != nil {
		return fmt.Errorf("failed to append wal record: %w", err)
	}
	return w.file.Sync()
}

// ReadAll calls fn with every record from the start of the log, one at a time
func (w *WAL) ReadAll(fn func(raw json.RawMessage) error) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, err := w.file.Seek(0, io.SeekStart); err != nil {
		return err
	}

	decoder := json.NewDecoder(w.file)
	for {
		var raw json.RawMessage
		if err := decoder.Decode(&raw); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("failed to decode wal record: %w", err)
		}
		if err := fn(raw); err != nil {
			return err
		}
	}
}

// Close closes the underlying file
func (w *WAL) Close() error {
	return w.file.Close()
}
