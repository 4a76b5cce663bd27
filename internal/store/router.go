package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/DeusData/codebase-graph/internal/ingest"
)

// ErrDatabaseNotFound is returned when a named database has no file.
var ErrDatabaseNotFound = errors.New("database not found")

// DatabaseInfo describes one database file.
type DatabaseInfo struct {
	Name    string    `json:"name"`
	Path    string    `json:"path"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
}

// Router maps database names to .db files in one directory. It implements
// ingest.Driver; every Open returns a session with its own connection.
type Router struct {
	dir string
}

// NewRouter creates a Router over dir, creating the directory. An empty dir
// selects DefaultDir.
func NewRouter(dir string) (*Router, error) {
	if dir == "" {
		var err error
		if dir, err = DefaultDir(); err != nil {
			return nil, err
		}
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("mkdir: %w", err)
	}
	return &Router{dir: dir}, nil
}

// Dir returns the database directory.
func (r *Router) Dir() string {
	return r.dir
}

func (r *Router) path(name string) string {
	return filepath.Join(r.dir, name+".db")
}

// HasDatabase reports whether a file exists for name, without opening it.
func (r *Router) HasDatabase(name string) bool {
	_, err := os.Stat(r.path(name))
	return err == nil
}

// EnsureDatabase creates the database file and schema. It returns
// ingest.ErrAlreadyExists when the file is already present.
func (r *Router) EnsureDatabase(_ context.Context, name string) error {
	if err := ingest.ValidateDatabaseName(name); err != nil {
		return err
	}
	if r.HasDatabase(name) {
		return ingest.ErrAlreadyExists
	}
	s, err := OpenPath(r.path(name))
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	slog.Info("router.create", "db", name)
	return s.Close()
}

// Open implements ingest.Driver.
func (r *Router) Open(_ context.Context, name string) (ingest.Session, error) {
	if err := ingest.ValidateDatabaseName(name); err != nil {
		return nil, err
	}
	s, err := OpenPath(r.path(name))
	if err != nil {
		return nil, fmt.Errorf("open store %q: %w", name, err)
	}
	return &session{s: s}, nil
}

// OpenStore opens an existing database for reading. The caller closes it.
func (r *Router) OpenStore(name string) (*Store, error) {
	if err := ingest.ValidateDatabaseName(name); err != nil {
		return nil, err
	}
	if !r.HasDatabase(name) {
		return nil, fmt.Errorf("%w: %s", ErrDatabaseNotFound, name)
	}
	return OpenPath(r.path(name))
}

// ListDatabases returns every database file in the directory, by name.
func (r *Router) ListDatabases() ([]DatabaseInfo, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, fmt.Errorf("readdir: %w", err)
	}
	result := make([]DatabaseInfo, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".db") {
			continue
		}
		info := DatabaseInfo{
			Name: strings.TrimSuffix(e.Name(), ".db"),
			Path: filepath.Join(r.dir, e.Name()),
		}
		if fi, err := e.Info(); err == nil {
			info.Size = fi.Size()
			info.ModTime = fi.ModTime()
		}
		result = append(result, info)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

// DeleteDatabase removes the .db file and its WAL/SHM files.
func (r *Router) DeleteDatabase(name string) error {
	if err := ingest.ValidateDatabaseName(name); err != nil {
		return err
	}
	if !r.HasDatabase(name) {
		return fmt.Errorf("%w: %s", ErrDatabaseNotFound, name)
	}
	dbPath := r.path(name)
	for _, suffix := range []string{"", "-wal", "-shm"} {
		p := dbPath + suffix
		if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("remove %s: %w", p, err)
		}
	}
	slog.Info("router.delete", "db", name)
	return nil
}
