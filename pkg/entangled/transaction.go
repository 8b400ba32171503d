package entangled

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/shakfu/entangled-rs/pkg/log"
)

// ActionKind discriminates transaction actions.
type ActionKind int

const (
	// ActionCreate writes a file that must not yet exist.
	ActionCreate ActionKind = iota
	// ActionWrite replaces a tracked file.
	ActionWrite
	// ActionDelete removes a tracked file.
	ActionDelete
)

func (k ActionKind) String() string {
	switch k {
	case ActionCreate:
		return "create"
	case ActionWrite:
		return "write"
	case ActionDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// Action is one pending file operation. Paths are absolute.
type Action struct {
	Kind    ActionKind
	Path    string
	Content string
}

// Transaction accumulates file actions and applies them atomically against
// the file database. Deduplication is the caller's responsibility.
type Transaction struct {
	actions []Action
}

// NewTransaction creates an empty transaction.
func NewTransaction() *Transaction { return &Transaction{} }

// Create queues a create action.
func (t *Transaction) Create(path, content string) {
	t.actions = append(t.actions, Action{Kind: ActionCreate, Path: path, Content: content})
}

// Write queues a write action.
func (t *Transaction) Write(path, content string) {
	t.actions = append(t.actions, Action{Kind: ActionWrite, Path: path, Content: content})
}

// Delete queues a delete action.
func (t *Transaction) Delete(path string) {
	t.actions = append(t.actions, Action{Kind: ActionDelete, Path: path})
}

// Len returns the number of queued actions.
func (t *Transaction) Len() int { return len(t.actions) }

// IsEmpty reports whether nothing is queued.
func (t *Transaction) IsEmpty() bool { return len(t.actions) == 0 }

// Actions returns the queued actions in order.
func (t *Transaction) Actions() []Action {
	return append([]Action(nil), t.actions...)
}

// Describe renders one human line per action.
func (t *Transaction) Describe() []string {
	out := make([]string, len(t.actions))
	for i, a := range t.actions {
		out[i] = fmt.Sprintf("%s %s", a.Kind, a.Path)
	}
	return out
}

// CheckConflicts verifies every action against the database without touching
// the file system state. The first conflict aborts.
func (t *Transaction) CheckConflicts(db *FileDB) error {
	for _, a := range t.actions {
		if err := checkConflict(a, db); err != nil {
			return err
		}
	}
	return nil
}

func checkConflict(a Action, db *FileDB) error {
	switch a.Kind {
	case ActionCreate:
		if _, err := os.Stat(a.Path); err == nil {
			return NewFileConflictError(a.Path)
		}
		return nil
	case ActionWrite, ActionDelete:
		if _, err := os.Stat(a.Path); err != nil {
			return nil
		}
		if !db.IsTracked(a.Path) {
			return nil
		}
		current, err := FileDataFromPath(a.Path)
		if err != nil {
			return err
		}
		if db.IsModified(a.Path, current) {
			return NewFileConflictError(a.Path)
		}
		return nil
	default:
		return nil
	}
}

// appliedAction remembers enough to undo one applied action.
type appliedAction struct {
	action  Action
	existed bool
	backup  []byte
}

// Execute runs the transaction: pre-flight conflict checks (skipped under
// force), ordered apply with temp-file-plus-rename writes, rollback in
// reverse order on failure, and in-memory database update on success. The
// caller persists the database afterwards.
func (t *Transaction) Execute(ctx context.Context, db *FileDB, force bool) error {
	lg := log.FromContext(ctx)

	if !force {
		if err := t.CheckConflicts(db); err != nil {
			return err
		}
	}

	var applied []appliedAction
	for _, a := range t.actions {
		record := appliedAction{action: a}
		if backup, err := os.ReadFile(a.Path); err == nil {
			record.existed = true
			record.backup = backup
		}

		var err error
		switch a.Kind {
		case ActionCreate, ActionWrite:
			err = atomicWriteFile(a.Path, []byte(a.Content))
		case ActionDelete:
			if record.existed {
				err = os.Remove(a.Path)
			}
		}
		if err != nil {
			rollback(lg, applied)
			return err
		}
		applied = append(applied, record)
	}

	now := time.Now().UTC()
	for _, a := range t.actions {
		switch a.Kind {
		case ActionCreate, ActionWrite:
			db.Record(a.Path, FileDataFromContent(a.Content, now))
		case ActionDelete:
			db.Remove(a.Path)
		}
	}
	return nil
}

// rollback undoes applied actions in reverse order. It is best-effort:
// failures are logged and do not mask the primary error.
func rollback(lg *slog.Logger, applied []appliedAction) {
	for i := len(applied) - 1; i >= 0; i-- {
		rec := applied[i]
		var err error
		if rec.existed {
			err = atomicWriteFile(rec.action.Path, rec.backup)
		} else if rec.action.Kind != ActionDelete {
			err = os.Remove(rec.action.Path)
		}
		if err != nil {
			lg.Warn("rollback failed", "path", rec.action.Path, "error", err)
		}
	}
}

// tmpCounter keeps concurrent executions within one process from colliding
// on temp names.
var tmpCounter atomic.Int64

// atomicWriteFile writes content via a temp file in the target directory and
// renames it into place. Parent directories are created as needed.
func atomicWriteFile(path string, content []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp := filepath.Join(dir, fmt.Sprintf(".entangled-tmp-%d-%d", os.Getpid(), tmpCounter.Add(1)))
	if err := os.WriteFile(tmp, content, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}
