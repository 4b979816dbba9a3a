package filestore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"confpaper/pkg/platform/sentinel"
)

// LocalStorage keeps files under a root directory on the local filesystem.
type LocalStorage struct {
	root     string
	realRoot string
	now      func() time.Time
}

// NewLocal creates root if needed and returns a store rooted there.
func NewLocal(root string) (*LocalStorage, error) {
	if strings.TrimSpace(root) == "" {
		return nil, fmt.Errorf("storage root is required")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve storage root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o750); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, fmt.Errorf("resolve storage root: %w", err)
	}
	return &LocalStorage{root: abs, realRoot: resolved, now: time.Now}, nil
}

func (s *LocalStorage) Root() string {
	return s.root
}

// Save writes content to a new file and returns its relative handle. The
// file is created exclusively; a partial write is removed before returning.
func (s *LocalStorage) Save(ctx context.Context, content io.Reader, originalName string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	handle := newHandle(s.now(), originalName)
	full := filepath.Join(s.root, filepath.FromSlash(handle))
	if err := os.MkdirAll(filepath.Dir(full), 0o750); err != nil {
		return "", fmt.Errorf("create storage dir: %w", err)
	}
	if err := s.checkResolved(filepath.Dir(full), handle); err != nil {
		return "", err
	}

	f, err := os.OpenFile(full, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o640)
	if err != nil {
		return "", fmt.Errorf("create stored file: %w", err)
	}
	if _, err := io.Copy(f, ctxReader{ctx: ctx, r: content}); err != nil {
		_ = f.Close()
		_ = os.Remove(full)
		return "", fmt.Errorf("write stored file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(full)
		return "", fmt.Errorf("close stored file: %w", err)
	}
	return handle, nil
}

// Delete removes the file behind handle. A missing file is not an error.
func (s *LocalStorage) Delete(_ context.Context, handle string) error {
	full, err := s.resolve(handle)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete stored file: %w", err)
	}
	return nil
}

func (s *LocalStorage) OpenRead(ctx context.Context, handle string) (io.ReadSeekCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	full, err := s.resolve(handle)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("stored file %s: %w", handle, sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("open stored file: %w", err)
	}
	return f, nil
}

// Walk calls fn for every regular file under the root.
func (s *LocalStorage) Walk(ctx context.Context, fn func(Object) error) error {
	return filepath.WalkDir(s.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(s.root, p)
		if err != nil {
			return err
		}
		return fn(Object{Handle: filepath.ToSlash(rel), ModTime: info.ModTime()})
	})
}

// resolve maps a handle to an absolute path and proves it stays under root,
// both lexically and once symlinks are followed.
func (s *LocalStorage) resolve(handle string) (string, error) {
	cleaned, err := cleanHandle(handle)
	if err != nil {
		return "", err
	}
	full := filepath.Join(s.root, filepath.FromSlash(cleaned))
	if !within(s.root, full) {
		return "", fmt.Errorf("handle %q: %w", handle, ErrPathEscapesRoot)
	}
	if err := s.checkResolved(full, handle); err != nil {
		return "", err
	}
	return full, nil
}

func (s *LocalStorage) checkResolved(p, handle string) error {
	resolved, err := evalExisting(p)
	if err != nil {
		return fmt.Errorf("resolve stored path: %w", err)
	}
	if !within(s.realRoot, resolved) {
		return fmt.Errorf("handle %q: %w", handle, ErrPathEscapesRoot)
	}
	return nil
}

// evalExisting follows symlinks in the longest existing prefix of p and
// appends the missing remainder unchanged.
func evalExisting(p string) (string, error) {
	rest := ""
	for {
		resolved, err := filepath.EvalSymlinks(p)
		if err == nil {
			return filepath.Join(resolved, rest), nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", err
		}
		parent := filepath.Dir(p)
		if parent == p {
			return "", err
		}
		rest = filepath.Join(filepath.Base(p), rest)
		p = parent
	}
}

func within(root, p string) bool {
	rel, err := filepath.Rel(root, p)
	if err != nil || filepath.IsAbs(rel) {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// ctxReader stops a long copy once ctx is done.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
