package session

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
)

const (
	authSuffix     = ".auth.json"
	activitySuffix = ".activity"
)

// FileRepository stores each session as two files in one directory:
// <id>.auth.json holds the bundle and <id>.activity holds the last activity
// as unix milliseconds.
type FileRepository struct {
	dir string
}

// NewFileRepository creates dir if needed.
func NewFileRepository(dir string) (*FileRepository, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create session dir %s: %w", dir, err)
	}
	return &FileRepository{dir: dir}, nil
}

func (f *FileRepository) authPath(id string) string {
	return filepath.Join(f.dir, id+authSuffix)
}

func (f *FileRepository) activityPath(id string) string {
	return filepath.Join(f.dir, id+activitySuffix)
}

// writeAtomic writes through a temp file and a rename so readers never see a
// half-written bundle.
func (f *FileRepository) writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(f.dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	name := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(name)
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(name)
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Rename(name, path); err != nil {
		os.Remove(name)
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}

func (f *FileRepository) Load(_ context.Context, id string) (*Bundle, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.authPath(id))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session %s: %w", id, err)
	}
	return decodeBundle(data), nil
}

func (f *FileRepository) Save(_ context.Context, id string, b *Bundle) error {
	if err := checkID(id); err != nil {
		return err
	}
	data, err := encodeBundle(b)
	if err != nil {
		return err
	}
	return f.writeAtomic(f.authPath(id), data)
}

func (f *FileRepository) Clear(_ context.Context, id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	for _, p := range []string{f.authPath(id), f.activityPath(id)} {
		if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("remove %s: %w", p, err)
		}
	}
	return nil
}

func (f *FileRepository) Touch(_ context.Context, id string, at time.Time) error {
	if err := checkID(id); err != nil {
		return err
	}
	return f.writeAtomic(f.activityPath(id), []byte(strconv.FormatInt(at.UnixMilli(), 10)))
}

func (f *FileRepository) LastActivity(_ context.Context, id string) (time.Time, bool, error) {
	if err := checkID(id); err != nil {
		return time.Time{}, false, err
	}
	data, err := os.ReadFile(f.activityPath(id))
	if errors.Is(err, fs.ErrNotExist) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("read activity %s: %w", id, err)
	}
	ms, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		// An unreadable timestamp is the same as none.
		return time.Time{}, false, nil
	}
	return time.UnixMilli(ms), true, nil
}

func (f *FileRepository) IDs(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return nil, fmt.Errorf("read session dir %s: %w", f.dir, err)
	}
	seen := make(map[string]struct{})
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		var id string
		switch {
		case strings.HasSuffix(name, authSuffix):
			id = strings.TrimSuffix(name, authSuffix)
		case strings.HasSuffix(name, activitySuffix):
			id = strings.TrimSuffix(name, activitySuffix)
		default:
			continue
		}
		if validID.MatchString(id) {
			seen[id] = struct{}{}
		}
	}
	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
