// Package cache persists per-repository line deltas between runs.
//
// The store keeps one plain-text file per user. Each line holds
// "<key> <commitCount> <additions> <deletions>", where key is the hashed
// repository identity.
package cache

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/naka-gawa/github-stats/internal/domain"
)

const (
	fieldsPerLine = 4
	// maxLineLength bounds a well-formed line; longer lines are garbage.
	maxLineLength = 1 << 10
)

// ReadError is returned when an existing cache file cannot be read.
// Callers treat it as an empty cache.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read cache %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// WriteError is returned when the cache could not be replaced.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write cache %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// ErrInvalidUser is returned for user names that would leave the cache directory.
var ErrInvalidUser = errors.New("invalid user name")

// Store reads and writes cache files below a directory.
type Store struct {
	dir string
}

// NewStore creates a Store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Path returns the cache file of user.
func (s *Store) Path(user string) string {
	return filepath.Join(s.dir, user+"_loc_cache.txt")
}

// file is Path for names that stay inside the cache directory.
func (s *Store) file(user string) (string, error) {
	if user == "" || strings.ContainsAny(user, `/\`) || strings.Contains(user, "..") {
		return "", fmt.Errorf("%w %q", ErrInvalidUser, user)
	}
	return s.Path(user), nil
}

// Load returns the cached entries of user keyed by repository hash.
// A missing file yields an empty map. Malformed lines are skipped.
func (s *Store) Load(user string) (map[domain.CacheKey]domain.CacheEntry, error) {
	entries := make(map[domain.CacheKey]domain.CacheEntry)
	path, err := s.file(user)
	if err != nil {
		return entries, &ReadError{Path: s.Path(user), Err: err}
	}

	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return entries, nil
	}
	if err != nil {
		return entries, &ReadError{Path: path, Err: err}
	}
	defer f.Close()

	r := bufio.NewReader(f)
	for {
		line, err := r.ReadString('\n')
		if len(line) <= maxLineLength {
			if entry, ok := parseLine(line); ok {
				entries[entry.Key] = entry
			}
		}
		if errors.Is(err, io.EOF) {
			return entries, nil
		}
		if err != nil {
			return entries, &ReadError{Path: path, Err: err}
		}
	}
}

func parseLine(line string) (domain.CacheEntry, bool) {
	parts := strings.Fields(line)
	if len(parts) < fieldsPerLine {
		return domain.CacheEntry{}, false
	}
	commits, err := strconv.Atoi(parts[1])
	if err != nil || commits < 0 {
		return domain.CacheEntry{}, false
	}
	additions, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil || additions < 0 {
		return domain.CacheEntry{}, false
	}
	deletions, err := strconv.ParseInt(parts[3], 10, 64)
	if err != nil || deletions < 0 {
		return domain.CacheEntry{}, false
	}
	return domain.CacheEntry{
		Key:         domain.CacheKey(parts[0]),
		CommitCount: commits,
		Additions:   additions,
		Deletions:   deletions,
	}, true
}

// Save replaces the cache of user with exactly the given entries, in order.
// The file is written to a temporary sibling and renamed into place, so a
// crash leaves either the old or the new content.
func (s *Store) Save(user string, entries []domain.CacheEntry) error {
	path, err := s.file(user)
	if err != nil {
		return &WriteError{Path: s.Path(user), Err: err}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return &WriteError{Path: path, Err: err}
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return &WriteError{Path: path, Err: err}
	}
	// Cleanup is a no-op once the rename succeeded.
	defer os.Remove(tmp.Name())

	w := bufio.NewWriter(tmp)
	for _, e := range entries {
		if _, err := fmt.Fprintf(w, "%s %d %d %d\n", e.Key, e.CommitCount, e.Additions, e.Deletions); err != nil {
			tmp.Close()
			return &WriteError{Path: path, Err: err}
		}
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return &WriteError{Path: path, Err: err}
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return &WriteError{Path: path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	return nil
}

// Remove deletes the cache of user. A missing file is not an error.
func (s *Store) Remove(user string) error {
	path, err := s.file(user)
	if err != nil {
		return &WriteError{Path: s.Path(user), Err: err}
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return &WriteError{Path: path, Err: err}
	}
	return nil
}
