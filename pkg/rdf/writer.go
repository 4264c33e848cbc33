// Package rdf serializes statement sets to the line-oriented triple file the
// dgraph live loader consumes.
package rdf

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jurisgraph/jurisgraph/pkg/types"
)

// Writer emits statements to one output file. Overwrite mode regenerates the
// file from scratch; append mode adds a run-boundary comment and the new
// statements after the existing content.
type Writer struct {
	path string
	log  *slog.Logger
}

// NewWriter creates a Writer targeting path.
func NewWriter(path string, log *slog.Logger) *Writer {
	if log == nil {
		log = slog.Default()
	}
	return &Writer{path: path, log: log}
}

// Path returns the output file path.
func (w *Writer) Path() string { return w.path }

// Write serializes the statements, one per line. Returns the number of
// statement lines written.
func (w *Writer) Write(stmts []types.Statement, appendMode bool) (int, error) {
	flags := os.O_CREATE | os.O_WRONLY
	if appendMode {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}

	f, err := os.OpenFile(w.path, flags, 0o644)
	if err != nil {
		return 0, fmt.Errorf("failed to open triple file %s: %w", w.path, err)
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	if appendMode {
		fmt.Fprintf(bw, "\n# === Incremental update: %s ===\n", time.Now().Format(time.RFC3339))
	}
	for _, s := range stmts {
		if _, err := bw.WriteString(s.Line() + "\n"); err != nil {
			return 0, fmt.Errorf("failed to write triple file %s: %w", w.path, err)
		}
	}
	if err := bw.Flush(); err != nil {
		return 0, fmt.Errorf("failed to flush triple file %s: %w", w.path, err)
	}

	w.log.Info("wrote triple file", "path", w.path, "triples", len(stmts), "append", appendMode)
	return len(stmts), nil
}

// Backup moves the written file aside under a timestamped name, keeping the
// workspace clean after a successful upload while preserving the evidence.
func (w *Writer) Backup() (string, error) {
	if _, err := os.Stat(w.path); os.IsNotExist(err) {
		return "", nil
	}

	dir := filepath.Dir(w.path)
	base := filepath.Base(w.path)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	backup := filepath.Join(dir, fmt.Sprintf("%s_backup_%s%s", stem, time.Now().Format("20060102_150405"), ext))

	if err := os.Rename(w.path, backup); err != nil {
		return "", fmt.Errorf("failed to back up triple file: %w", err)
	}
	w.log.Info("triple file backed up", "path", backup)
	return backup, nil
}
