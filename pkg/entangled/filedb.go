package entangled

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"time"
)

// filedbVersion tags the on-disk schema.
const filedbVersion = "1.0"

// Stat is the recorded size and modification time of a tangled file.
type Stat struct {
	MTime time.Time `json:"mtime"`
	Size  int64     `json:"size"`
}

// FileData is the persisted state of one tangled file: its stat plus the
// SHA-256 hex digest of the content as written.
type FileData struct {
	Stat      Stat   `json:"stat"`
	Hexdigest string `json:"hexdigest"`
}

// Hexdigest computes the SHA-256 hex digest of content bytes.
func Hexdigest(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// FileDataFromContent builds a record from content about to be written.
func FileDataFromContent(content string, mtime time.Time) FileData {
	return FileData{
		Stat:      Stat{MTime: mtime, Size: int64(len(content))},
		Hexdigest: Hexdigest([]byte(content)),
	}
}

// FileDataFromPath reads a file and builds its current record.
func FileDataFromPath(path string) (FileData, error) {
	info, err := os.Stat(path)
	if err != nil {
		return FileData{}, err
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return FileData{}, err
	}
	return FileData{
		Stat:      Stat{MTime: info.ModTime().UTC(), Size: info.Size()},
		Hexdigest: Hexdigest(content),
	}, nil
}

// FileDB is the persisted map of tangled-file states used for external
// modification detection. A missing entry means "untracked".
type FileDB struct {
	Version string              `json:"version"`
	Files   map[string]FileData `json:"files"`
}

// NewFileDB creates an empty database.
func NewFileDB() *FileDB {
	return &FileDB{Version: filedbVersion, Files: map[string]FileData{}}
}

// LoadFileDB reads the database from path. A missing file yields an empty
// database; malformed content is a hard error, distinguishable from missing.
func LoadFileDB(path string) (*FileDB, error) {
	content, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return NewFileDB(), nil
	}
	if err != nil {
		return nil, err
	}
	db := NewFileDB()
	if err := json.Unmarshal(content, db); err != nil {
		return nil, &ConfigError{Path: path, Msg: "malformed file database", Err: err}
	}
	if db.Files == nil {
		db.Files = map[string]FileData{}
	}
	return db, nil
}

// Save writes the database to path atomically, creating parent directories.
func (db *FileDB) Save(path string) error {
	content, err := json.MarshalIndent(db, "", "  ")
	if err != nil {
		return err
	}
	return atomicWriteFile(path, append(content, '\n'))
}

// Record stores the state for path.
func (db *FileDB) Record(path string, data FileData) { db.Files[path] = data }

// Remove forgets path.
func (db *FileDB) Remove(path string) { delete(db.Files, path) }

// Get returns the recorded state for path.
func (db *FileDB) Get(path string) (FileData, bool) {
	d, ok := db.Files[path]
	return d, ok
}

// IsTracked reports whether path has a recorded state.
func (db *FileDB) IsTracked(path string) bool {
	_, ok := db.Files[path]
	return ok
}

// IsModified reports whether the current on-disk state of path disagrees
// with the recorded digest. Untracked paths are never "modified".
func (db *FileDB) IsModified(path string, current FileData) bool {
	recorded, ok := db.Files[path]
	if !ok {
		return false
	}
	return recorded.Hexdigest != current.Hexdigest
}

// Len returns the number of tracked files.
func (db *FileDB) Len() int { return len(db.Files) }
