package entangled

import (
	"context"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/gofrs/flock"
)

// Context bundles everything a top-level operation needs: configuration,
// hook registry, file database, and base directory. There is no process-wide
// state; callers construct one Context per run.
type Context struct {
	Config  *Config
	Hooks   *HookRegistry
	DB      *FileDB
	BaseDir string

	filedbPath string
}

// NewContext loads the file database and wires the configured hooks. A
// malformed database is a hard error; a missing one starts empty.
func NewContext(ctx context.Context, cfg *Config, baseDir string) (*Context, error) {
	filedbPath := filepath.Join(baseDir, cfg.FileDBPath)
	db, err := LoadFileDB(filedbPath)
	if err != nil {
		return nil, err
	}

	hooks := NewHookRegistry()
	if cfg.Hooks.Shebang {
		hooks.Add(ShebangHook{})
	}
	if cfg.Hooks.SPDXLicense {
		hooks.Add(SPDXLicenseHook{})
	}

	return &Context{
		Config:     cfg,
		Hooks:      hooks,
		DB:         db,
		BaseDir:    baseDir,
		filedbPath: filedbPath,
	}, nil
}

// SaveFileDB persists the database.
func (ec *Context) SaveFileDB() error {
	return ec.DB.Save(ec.filedbPath)
}

// SourceFiles expands the configured glob patterns over the base directory.
// Results are relative to the base directory, sorted, and deduplicated so
// traversal order is deterministic.
func (ec *Context) SourceFiles() ([]string, error) {
	seen := map[string]struct{}{}
	var files []string
	for _, pattern := range ec.Config.SourcePatterns {
		matches, err := doublestar.FilepathGlob(filepath.Join(ec.BaseDir, pattern))
		if err != nil {
			return nil, &ConfigError{Msg: "bad source pattern " + pattern, Err: err}
		}
		for _, m := range matches {
			rel, err := filepath.Rel(ec.BaseDir, m)
			if err != nil {
				rel = m
			}
			if _, ok := seen[rel]; !ok {
				seen[rel] = struct{}{}
				files = append(files, rel)
			}
		}
	}
	sort.Strings(files)
	return files, nil
}

// SourceFilesFiltered intersects the discovered sources with an explicit
// file list. A filter entry that is not a discovered source is an error.
func (ec *Context) SourceFilesFiltered(filter []string) ([]string, error) {
	all, err := ec.SourceFiles()
	if err != nil {
		return nil, err
	}
	index := map[string]struct{}{}
	for _, f := range all {
		index[f] = struct{}{}
	}
	var out []string
	for _, f := range filter {
		rel := f
		if filepath.IsAbs(f) {
			if r, err := filepath.Rel(ec.BaseDir, f); err == nil {
				rel = r
			}
		}
		if _, ok := index[rel]; !ok {
			return nil, &ConfigError{Msg: "not a source file: " + f}
		}
		out = append(out, rel)
	}
	sort.Strings(out)
	return out, nil
}

// ResolveSource maps a base-relative markdown path to an absolute path.
func (ec *Context) ResolveSource(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(ec.BaseDir, path)
}

// ResolveTarget maps a tangle target to an absolute path, applying the
// configured output directory to relative targets.
func (ec *Context) ResolveTarget(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(ec.BaseDir, ec.Config.OutputDir, path)
}

// ExecuteAndCommit runs a transaction and persists the database while holding
// an advisory lock on the database file, so concurrent processes on the same
// directory serialize their execute-and-save steps. The database itself is
// loaded earlier, in NewContext, without the lock. When the lock cannot be
// taken, the transaction runs unlocked.
func (ec *Context) ExecuteAndCommit(ctx context.Context, tx *Transaction, force bool) error {
	if err := os.MkdirAll(filepath.Dir(ec.filedbPath), 0o755); err != nil {
		return err
	}
	lock := flock.New(ec.filedbPath + ".lock")
	if err := lock.Lock(); err == nil {
		defer func() { _ = lock.Unlock() }()
	}

	if err := tx.Execute(ctx, ec.DB, force); err != nil {
		return err
	}
	// The database is written even for empty transactions: digest refreshes
	// recorded during planning still need to land.
	return ec.SaveFileDB()
}
