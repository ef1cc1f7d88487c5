// Package repo provides the registry storage backends: a JSON file (the
// default), sqlite and postgres
package repo

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	perr "trawler/internal/platform/errors"
	"trawler/internal/services/registry/domain"
)

// File stores the registry as one JSON document
type File struct {
	path string
}

// NewFile returns a file backed store at path
func NewFile(path string) *File { return &File{path: path} }

type fileDoc struct {
	Version int            `json:"version"`
	Entries []domain.Entry `json:"entries"`
}

// Load implements domain.Store; a missing file is an empty registry
func (f *File) Load(_ context.Context) ([]domain.Entry, error) {
	b, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeDB, "read registry %s", f.path)
	}
	var doc fileDoc
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeDB, "decode registry %s", f.path)
	}
	return doc.Entries, nil
}

// Save implements domain.Store, replacing the file atomically
func (f *File) Save(_ context.Context, entries []domain.Entry) error {
	xs := make([]domain.Entry, 0, len(entries))
	for _, e := range entries {
		xs = append(xs, e.Clone())
	}
	sort.SliceStable(xs, func(i, j int) bool { return xs[i].Key < xs[j].Key })

	b, err := json.MarshalIndent(fileDoc{Version: 1, Entries: xs}, "", "  ")
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeDB, "encode registry")
	}
	return writeAtomic(f.path, b)
}

func writeAtomic(path string, b []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeDB, "create dir for %s", path)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".registry-*")
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeDB, "temp file for %s", path)
	}
	name := tmp.Name()
	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		_ = os.Remove(name)
		return perr.Wrapf(err, perr.ErrorCodeDB, "write %s", path)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(name)
		return perr.Wrapf(err, perr.ErrorCodeDB, "close %s", path)
	}
	if err := os.Rename(name, path); err != nil {
		_ = os.Remove(name)
		return perr.Wrapf(err, perr.ErrorCodeDB, "rename %s", path)
	}
	return nil
}
