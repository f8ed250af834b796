// Package ledger persists the per-cycle record of issued asynchronous jobs.
//
// Each create or delete cycle truncates its ledger once at the start and then
// appends one entry per job it managed to issue. The file is the authoritative
// record of "operations this cycle attempted": the reconciliation workflow may
// read it from a different process instance than the one that wrote it.
package ledger

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Entry is one issued job: the provider's job id and the disk or snapshot name
// the job concerns. Entries are immutable once written.
type Entry struct {
	JobID   string
	Subject string
}

// Ledger is an append-only text file of entries, one "{job_id}, {subject}"
// line per entry. Appends are serialized; the only mutation besides Append is
// the full truncation in Reset.
type Ledger struct {
	path string
	mu   sync.Mutex
}

// New returns a ledger backed by the file at path. The file is not touched
// until Reset or Append is called.
func New(path string) *Ledger {
	return &Ledger{path: path}
}

// Path returns the ledger's file path.
func (l *Ledger) Path() string { return l.path }

// Reset truncates the ledger to empty, creating the file (and its directory)
// if needed. It must be called exactly once at the start of a cycle, before
// any Append.
func (l *Ledger) Reset() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("creating ledger directory: %w", err)
	}

	f, err := os.OpenFile(l.path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("truncating ledger %s: %w", l.path, err)
	}
	return f.Close()
}

// Append durably records one entry. Safe for concurrent use within a cycle:
// appends are serialized so lines never interleave.
func (l *Ledger) Append(jobID, subject string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(l.path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening ledger %s: %w", l.path, err)
	}
	defer f.Close()

	if _, err := fmt.Fprintf(f, "%s, %s\n", jobID, subject); err != nil {
		return fmt.Errorf("appending to ledger %s: %w", l.path, err)
	}
	return f.Sync()
}

// ReadAll returns every persisted entry in append order. A missing ledger file
// reads as empty, so reconciliation can run before the first cycle.
func (l *Ledger) ReadAll() ([]Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.Open(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening ledger %s: %w", l.path, err)
	}
	defer f.Close()

	var entries []Entry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		jobID, subject, _ := strings.Cut(line, ",")
		entries = append(entries, Entry{
			JobID:   strings.TrimSpace(jobID),
			Subject: strings.TrimSpace(subject),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading ledger %s: %w", l.path, err)
	}

	return entries, nil
}
