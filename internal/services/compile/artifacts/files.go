// Package artifacts stores digests, decision logs and the seen set on disk
// and optionally archives decision logs to ClickHouse
package artifacts

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"trawler/internal/core/discovery"
	"trawler/internal/core/runctx"
	perr "trawler/internal/platform/errors"
)

// FailedPrefix marks the decision log of a run that did not produce a digest
const FailedPrefix = "FAILED-"

// Files is the on disk artifact store:
//
//	<dir>/digests/<id>.json
//	<dir>/decisions/<run id>.json or FAILED-<run id>.json
//	<dir>/seen.json
type Files struct {
	dir string
	now func() time.Time
}

// NewFiles returns a store rooted at dir
func NewFiles(dir string, now func() time.Time) *Files {
	if now == nil {
		now = time.Now
	}
	return &Files{dir: dir, now: now}
}

func (f *Files) digestPath(id string) string { return filepath.Join(f.dir, "digests", id+".json") }
func (f *Files) logPath(name string) string  { return filepath.Join(f.dir, "decisions", name+".json") }
func (f *Files) seenPath() string            { return filepath.Join(f.dir, "seen.json") }

// SaveDigest writes d once; an existing digest with the same id is a conflict
func (f *Files) SaveDigest(_ context.Context, d discovery.Digest) error {
	if err := checkID(d.ID); err != nil {
		return err
	}
	return writeOnce(f.digestPath(d.ID), d)
}

// SaveDecisionLog writes the log once under the run id, prefixed when the
// run failed
func (f *Files) SaveDecisionLog(_ context.Context, log discovery.DecisionLog) error {
	if err := checkID(log.RunID); err != nil {
		return err
	}
	name := log.RunID
	if log.Outcome == discovery.OutcomeFailed {
		name = FailedPrefix + name
	}
	return writeOnce(f.logPath(name), log)
}

// LoadSeen reads the persisted seen set; a missing file starts empty
func (f *Files) LoadSeen(_ context.Context) (*runctx.SeenSet, error) {
	s := runctx.NewSeenSet(runctx.DefaultSeenWindow, f.now)
	b, err := os.ReadFile(f.seenPath())
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return s, perr.Wrap(err, perr.ErrorCodeDB, "read seen set")
	}
	if err := json.Unmarshal(b, s); err != nil {
		return runctx.NewSeenSet(runctx.DefaultSeenWindow, f.now), perr.Wrap(err, perr.ErrorCodeJSON, "decode seen set")
	}
	return s, nil
}

// SaveSeen prunes expired ids and replaces the seen file
func (f *Files) SaveSeen(_ context.Context, s *runctx.SeenSet) error {
	s.Prune()
	b, err := json.Marshal(s)
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeJSON, "encode seen set")
	}
	return replace(f.seenPath(), b)
}

// Digest reads one digest by id
func (f *Files) Digest(_ context.Context, id string) (discovery.Digest, error) {
	if err := checkID(id); err != nil {
		return discovery.Digest{}, err
	}
	var d discovery.Digest
	if err := readJSON(f.digestPath(id), &d); err != nil {
		return discovery.Digest{}, err
	}
	return d, nil
}

// LatestDigest returns the most recent digest by date
func (f *Files) LatestDigest(ctx context.Context) (discovery.Digest, error) {
	ds, err := f.recent(ctx, 1)
	if err != nil {
		return discovery.Digest{}, err
	}
	if len(ds) == 0 {
		return discovery.Digest{}, perr.NotFoundf("no digest compiled yet")
	}
	return ds[0], nil
}

// DecisionLog reads the log of runID, successful or failed
func (f *Files) DecisionLog(_ context.Context, runID string) (discovery.DecisionLog, error) {
	if err := checkID(runID); err != nil {
		return discovery.DecisionLog{}, err
	}
	var log discovery.DecisionLog
	err := readJSON(f.logPath(runID), &log)
	if perr.IsCode(err, perr.ErrorCodeNotFound) {
		err = readJSON(f.logPath(FailedPrefix+runID), &log)
	}
	if err != nil {
		return discovery.DecisionLog{}, err
	}
	return log, nil
}

// RecentKeys implements the registry history port: the keys published in
// the k most recent digests
func (f *Files) RecentKeys(ctx context.Context, k int) ([]string, error) {
	ds, err := f.recent(ctx, k)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, d := range ds {
		out = append(out, d.Keys()...)
	}
	return out, nil
}

// recent loads up to k digests, newest first
func (f *Files) recent(_ context.Context, k int) ([]discovery.Digest, error) {
	ents, err := os.ReadDir(filepath.Join(f.dir, "digests"))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeDB, "list digests")
	}
	var ds []discovery.Digest
	for _, e := range ents {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		var d discovery.Digest
		if err := readJSON(filepath.Join(f.dir, "digests", e.Name()), &d); err != nil {
			return nil, err
		}
		ds = append(ds, d)
	}
	sort.SliceStable(ds, func(i, j int) bool {
		if !ds[i].Date.Equal(ds[j].Date) {
			return ds[i].Date.After(ds[j].Date)
		}
		return ds[i].ID > ds[j].ID
	})
	if k > 0 && len(ds) > k {
		ds = ds[:k]
	}
	return ds, nil
}

func checkID(id string) error {
	if id == "" || strings.ContainsAny(id, `/\`) || strings.HasPrefix(id, ".") {
		return perr.InvalidArgf("invalid id %q", id)
	}
	return nil
}

func readJSON(path string, dst any) error {
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return perr.NotFoundf("%s not found", filepath.Base(path))
	}
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeDB, "read %s", path)
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeJSON, "decode %s", path)
	}
	return nil
}

func writeOnce(path string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeJSON, "encode artifact")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeDB, "create dir for %s", path)
	}
	fh, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, fs.ErrExist) {
		return perr.Conflictf("%s already written", filepath.Base(path))
	}
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeDB, "create %s", path)
	}
	if _, err := fh.Write(b); err != nil {
		_ = fh.Close()
		return perr.Wrapf(err, perr.ErrorCodeDB, "write %s", path)
	}
	return perr.WrapIf(fh.Close(), perr.ErrorCodeDB, "close artifact")
}

func replace(path string, b []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeDB, "create dir for %s", path)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeDB, "write %s", tmp)
	}
	return perr.WrapIf(os.Rename(tmp, path), perr.ErrorCodeDB, "replace seen set")
}
