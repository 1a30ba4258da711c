// internal/hmmer/markers.go
package hmmer

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrSearch marks profile-search failures: an unusable marker set, an engine
// that exits nonzero, or output that cannot be parsed. Always fatal for the
// run.
var ErrSearch = errors.New("profile search")

// Marker is one HMM profile in the marker set, named by its filename stem.
type Marker struct {
	ID   string
	Path string
}

// ScanMarkers lists the profile library: one .hmm file per marker, sorted by
// id. An empty library is a startup failure.
func ScanMarkers(dir string) ([]Marker, error) {
	ents, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: markerset %s: %v", ErrSearch, dir, err)
	}
	var ms []Marker
	for _, e := range ents {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".hmm") {
			continue
		}
		ms = append(ms, Marker{
			ID:   strings.TrimSuffix(e.Name(), ".hmm"),
			Path: filepath.Join(dir, e.Name()),
		})
	}
	if len(ms) == 0 {
		return nil, fmt.Errorf("%w: no .hmm profiles in %s", ErrSearch, dir)
	}
	sort.Slice(ms, func(i, j int) bool { return ms[i].ID < ms[j].ID })
	return ms, nil
}

// ProfileDB is the concatenated on-disk form of the marker profiles for the
// duration of one search call. It is acquired per call and released on every
// exit path; never hold one across calls.
type ProfileDB struct {
	path string
}

// OpenProfileDB concatenates the marker profile files into one temporary HMM
// database.
func OpenProfileDB(markers []Marker) (*ProfileDB, error) {
	f, err := os.CreateTemp("", "phylomsa-hmmdb-*.hmm")
	if err != nil {
		return nil, fmt.Errorf("%w: profile db: %v", ErrSearch, err)
	}
	db := &ProfileDB{path: f.Name()}
	for _, m := range markers {
		src, err := os.Open(m.Path)
		if err != nil {
			_ = f.Close()
			_ = db.Close()
			return nil, fmt.Errorf("%w: marker %s: %v", ErrSearch, m.ID, err)
		}
		_, err = io.Copy(f, src)
		_ = src.Close()
		if err != nil {
			_ = f.Close()
			_ = db.Close()
			return nil, fmt.Errorf("%w: marker %s: %v", ErrSearch, m.ID, err)
		}
	}
	if err := f.Close(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: profile db: %v", ErrSearch, err)
	}
	return db, nil
}

// Path returns the on-disk location of the database.
func (db *ProfileDB) Path() string { return db.path }

// Close removes the database file.
func (db *ProfileDB) Close() error { return os.Remove(db.path) }
