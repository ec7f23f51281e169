package vault

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"
)

const tmpPrefix = ".tmp-"

// DirStore keeps one file per blob in a directory.
type DirStore struct {
	dir string

	mu      sync.Mutex
	lastMod time.Time
}

// NewDirStore creates dir if needed.
func NewDirStore(dir string) (*DirStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("vault: create store directory: %w", err)
	}

	return &DirStore{dir: dir}, nil
}

// Dir returns the backing directory.
func (s *DirStore) Dir() string { return s.dir }

func (s *DirStore) path(name string) (string, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}

	return filepath.Join(s.dir, name), nil
}

// Put writes data through a temp file and rename so readers never see a
// partial blob.
func (s *DirStore) Put(ctx context.Context, name string, data []byte) error {
	dest, err := s.path(name)
	if err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, tmpPrefix+"*")
	if err != nil {
		return fmt.Errorf("vault: create temp: %w", err)
	}

	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()

		return fmt.Errorf("vault: write %q: %w", name, err)
	}

	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()

		return fmt.Errorf("vault: sync %q: %w", name, err)
	}

	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("vault: close %q: %w", name, err)
	}

	// Stamped before the rename so a replaced blob moves to the end of the
	// listing and nothing becomes visible on a failed stamp.
	stamp := s.nextStamp()
	if err := os.Chtimes(tmpName, stamp, stamp); err != nil {
		cleanup()
		return fmt.Errorf("vault: stamp %q: %w", name, err)
	}

	if err := os.Rename(tmpName, dest); err != nil {
		cleanup()
		return fmt.Errorf("vault: rename %q: %w", name, err)
	}

	return nil
}

// nextStamp returns a modification time later than any previous one from
// this store, so List order survives coarse filesystem clocks.
func (s *DirStore) nextStamp() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().Truncate(time.Microsecond)
	if !now.After(s.lastMod) {
		now = s.lastMod.Add(time.Microsecond)
	}

	s.lastMod = now

	return now
}

// Get reads name.
func (s *DirStore) Get(_ context.Context, name string) ([]byte, error) {
	p, err := s.path(name)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}

	if err != nil {
		return nil, fmt.Errorf("vault: read %q: %w", name, err)
	}

	return data, nil
}

// Delete removes name.
func (s *DirStore) Delete(_ context.Context, name string) error {
	p, err := s.path(name)
	if err != nil {
		return err
	}

	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("vault: remove %q: %w", name, err)
	}

	return nil
}

// List returns blob names ordered by modification time, then name.
func (s *DirStore) List(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("vault: list store: %w", err)
	}

	type item struct {
		name string
		mod  time.Time
	}

	items := make([]item, 0, len(entries))

	for _, e := range entries {
		if !e.Type().IsRegular() || strings.HasPrefix(e.Name(), tmpPrefix) {
			continue
		}

		info, err := e.Info()
		if err != nil {
			continue
		}

		items = append(items, item{name: e.Name(), mod: info.ModTime()})
	}

	slices.SortFunc(items, func(a, b item) int {
		if c := a.mod.Compare(b.mod); c != 0 {
			return c
		}

		return strings.Compare(a.name, b.name)
	})

	names := make([]string, len(items))
	for i, it := range items {
		names[i] = it.name
	}

	return names, nil
}
