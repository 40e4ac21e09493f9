// Package storage manages the shared download directory. Every file in it is
// named "<chat id>_<sanitized title>.<ext>" so one request's files can be found
// and removed without touching anyone else's.
package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// DefaultDirPermissions is used when creating the download directory.
const DefaultDirPermissions = 0o755

type ArtifactStore struct {
	dir string
}

func NewArtifactStore(dir string) *ArtifactStore {
	return &ArtifactStore{dir: dir}
}

func (s *ArtifactStore) Dir() string {
	return s.dir
}

// EnsureDir creates the download directory if it does not exist.
func (s *ArtifactStore) EnsureDir() error {
	if err := os.MkdirAll(s.dir, DefaultDirPermissions); err != nil {
		return fmt.Errorf("create download dir: %w", err)
	}
	return nil
}

// BaseName is the extension-less file name for a chat and an already sanitized title.
func BaseName(chatID int64, name string) string {
	return strconv.FormatInt(chatID, 10) + "_" + name
}

// OutputTemplate is the engine output template for base, leaving the extension
// to the engine.
func (s *ArtifactStore) OutputTemplate(base string) string {
	return filepath.Join(s.dir, base) + ".%(ext)s"
}

// Locate returns the first finished artifact for base whose extension is in exts,
// checked in order, along with its size.
func (s *ArtifactStore) Locate(base string, exts ...string) (string, int64, bool) {
	for _, ext := range exts {
		path := filepath.Join(s.dir, base+"."+ext)
		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		return path, info.Size(), true
	}
	return "", 0, false
}

// Matches lists every file that belongs to base, partial files included.
func (s *ArtifactStore) Matches(base string) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read download dir: %w", err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if name == base || strings.HasPrefix(name, base+".") {
			paths = append(paths, filepath.Join(s.dir, name))
		}
	}
	return paths, nil
}

// Cleanup removes every file belonging to base and reports how many were removed.
// Files that vanish concurrently are not errors.
func (s *ArtifactStore) Cleanup(base string) (int, error) {
	paths, err := s.Matches(base)
	if err != nil {
		return 0, err
	}
	return removeAll(paths)
}

// Purge removes every regular file in the download directory.
func (s *ArtifactStore) Purge() (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("read download dir: %w", err)
	}
	var paths []string
	for _, entry := range entries {
		if entry.Type().IsRegular() {
			paths = append(paths, filepath.Join(s.dir, entry.Name()))
		}
	}
	return removeAll(paths)
}

// Usage reports the number of files and total bytes in the download directory.
func (s *ArtifactStore) Usage() (int, int64, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, 0, nil
		}
		return 0, 0, fmt.Errorf("read download dir: %w", err)
	}
	var files int
	var total int64
	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		files++
		total += info.Size()
	}
	return files, total, nil
}

func removeAll(paths []string) (int, error) {
	var errs []error
	removed := 0
	for _, p := range paths {
		if err := os.Remove(p); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			errs = append(errs, err)
			continue
		}
		removed++
	}
	return removed, errors.Join(errs...)
}
