// Package store persists fetched records locally: JSON Lines record
// files plus a per-user registry of saved outputs.
package store

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// OpinionsFile returns the output path for a user's opinion records.
func OpinionsFile(dataDir, username string) string {
	return filepath.Join(dataDir, username+"_opinions.jsonl")
}

// Writer streams records to a JSON Lines file, one record per line. Each
// run replaces the file; records are flushed on Close.
type Writer struct {
	file    *os.File
	buf     *bufio.Writer
	enc     *json.Encoder
	path    string
	records int
}

// NewWriter creates the output file, truncating a previous run's output
// and creating parent directories as needed.
func NewWriter(path string) (*Writer, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create output dir %s: %w", dir, err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create output file %s: %w", path, err)
	}

	buf := bufio.NewWriter(file)
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)

	return &Writer{
		file: file,
		buf:  buf,
		enc:  enc,
		path: path,
	}, nil
}

// Write appends one record as a JSON line.
func (w *Writer) Write(record map[string]any) error {
	if err := w.enc.Encode(record); err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	w.records++
	return nil
}

// Close flushes buffered lines and closes the file.
func (w *Writer) Close() error {
	if err := w.buf.Flush(); err != nil {
		w.file.Close()
		return fmt.Errorf("flush %s: %w", w.path, err)
	}
	return w.file.Close()
}

// Path returns the output file path.
func (w *Writer) Path() string {
	return w.path
}

// Records returns the number of records written so far.
func (w *Writer) Records() int {
	return w.records
}
