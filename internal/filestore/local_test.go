package filestore

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"confpaper/pkg/platform/sentinel"
)

type LocalStorageSuite struct {
	suite.Suite
	ctx   context.Context
	store *LocalStorage
}

func TestLocalStorageSuite(t *testing.T) {
	suite.Run(t, new(LocalStorageSuite))
}

func (s *LocalStorageSuite) SetupTest() {
	s.ctx = context.Background()
	store, err := NewLocal(s.T().TempDir())
	s.Require().NoError(err)
	store.now = func() time.Time { return time.Date(2025, time.March, 9, 12, 0, 0, 0, time.UTC) }
	s.store = store
}

func (s *LocalStorageSuite) TestSaveLayout() {
	handle, err := s.store.Save(s.ctx, strings.NewReader("%PDF-1.7"), "My Paper.PDF")
	s.Require().NoError(err)

	s.Regexp(regexp.MustCompile(`^2025/03/[0-9a-f-]{36}\.pdf$`), handle)
	data, err := os.ReadFile(filepath.Join(s.store.Root(), filepath.FromSlash(handle)))
	s.Require().NoError(err)
	s.Equal("%PDF-1.7", string(data))
}

func (s *LocalStorageSuite) TestSaveDropsUnsafeExtension() {
	for _, name := range []string{"noext", "evil.p$f", "x.averyveryverylongext", "../../etc/passwd", `C:\tmp\a.`} {
		handle, err := s.store.Save(s.ctx, strings.NewReader("x"), name)
		s.Require().NoError(err, name)
		s.Regexp(regexp.MustCompile(`^2025/03/[0-9a-f-]{36}$`), handle, name)
	}
}

func (s *LocalStorageSuite) TestSaveGeneratesDistinctHandles() {
	a, err := s.store.Save(s.ctx, strings.NewReader("a"), "a.pdf")
	s.Require().NoError(err)
	b, err := s.store.Save(s.ctx, strings.NewReader("b"), "a.pdf")
	s.Require().NoError(err)
	s.NotEqual(a, b)
}

func (s *LocalStorageSuite) TestOpenRead() {
	handle, err := s.store.Save(s.ctx, strings.NewReader("content"), "a.pdf")
	s.Require().NoError(err)

	rc, err := s.store.OpenRead(s.ctx, handle)
	s.Require().NoError(err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	s.Require().NoError(err)
	s.Equal("content", string(data))

	_, err = s.store.OpenRead(s.ctx, "2025/03/missing.pdf")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *LocalStorageSuite) TestDelete() {
	handle, err := s.store.Save(s.ctx, strings.NewReader("content"), "a.pdf")
	s.Require().NoError(err)

	s.Require().NoError(s.store.Delete(s.ctx, handle))
	_, err = s.store.OpenRead(s.ctx, handle)
	s.ErrorIs(err, sentinel.ErrNotFound)

	s.Run("missing file is not an error", func() {
		s.NoError(s.store.Delete(s.ctx, handle))
	})
}

func (s *LocalStorageSuite) TestTraversalRejected() {
	outside := filepath.Join(filepath.Dir(s.store.Root()), "secret.txt")
	s.Require().NoError(os.WriteFile(outside, []byte("secret"), 0o600))
	s.T().Cleanup(func() { _ = os.Remove(outside) })

	for _, handle := range []string{"../secret.txt", "2025/../../secret.txt", outside, "", ".."} {
		_, err := s.store.OpenRead(s.ctx, handle)
		s.ErrorIs(err, ErrPathEscapesRoot, handle)
		s.ErrorIs(s.store.Delete(s.ctx, handle), ErrPathEscapesRoot, handle)
	}
	_, err := os.Stat(outside)
	s.NoError(err, "file outside root must survive")
}

func (s *LocalStorageSuite) TestSymlinkedDirectoryRejected() {
	outside := s.T().TempDir()
	secret := filepath.Join(outside, "secret.txt")
	s.Require().NoError(os.WriteFile(secret, []byte("TOPSECRET"), 0o600))
	s.Require().NoError(os.MkdirAll(filepath.Join(s.store.Root(), "2025"), 0o750))
	s.Require().NoError(os.Symlink(outside, filepath.Join(s.store.Root(), "2025", "05")))
	s.Require().NoError(os.Symlink(secret, filepath.Join(s.store.Root(), "2025", "link.pdf")))

	for _, handle := range []string{"2025/05/secret.txt", "2025/05/missing.pdf", "2025/link.pdf"} {
		_, err := s.store.OpenRead(s.ctx, handle)
		s.ErrorIs(err, ErrPathEscapesRoot, handle)
		s.ErrorIs(s.store.Delete(s.ctx, handle), ErrPathEscapesRoot, handle)
	}
	data, err := os.ReadFile(secret)
	s.Require().NoError(err)
	s.Equal("TOPSECRET", string(data))

	s.Run("save refuses a symlinked month directory", func() {
		s.Require().NoError(os.Symlink(outside, filepath.Join(s.store.Root(), "2025", "03")))
		_, err := s.store.Save(s.ctx, strings.NewReader("x"), "a.pdf")
		s.ErrorIs(err, ErrPathEscapesRoot)
		entries, err := os.ReadDir(outside)
		s.Require().NoError(err)
		s.Len(entries, 1)
	})
}

func TestLocalStorageUnderSymlinkedRoot(t *testing.T) {
	target := t.TempDir()
	link := filepath.Join(t.TempDir(), "root")
	require.NoError(t, os.Symlink(target, link))
	store, err := NewLocal(link)
	require.NoError(t, err)

	handle, err := store.Save(context.Background(), strings.NewReader("ok"), "a.pdf")
	require.NoError(t, err)
	rc, err := store.OpenRead(context.Background(), handle)
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "ok", string(data))
}

func (s *LocalStorageSuite) TestWalk() {
	a, err := s.store.Save(s.ctx, strings.NewReader("a"), "a.pdf")
	s.Require().NoError(err)
	b, err := s.store.Save(s.ctx, strings.NewReader("b"), "b.pdf")
	s.Require().NoError(err)

	var seen []string
	s.Require().NoError(s.store.Walk(s.ctx, func(o Object) error {
		seen = append(seen, o.Handle)
		return nil
	}))
	s.ElementsMatch([]string{a, b}, seen)
}

func TestSaveHonoursCancelledContext(t *testing.T) {
	store, err := NewLocal(t.TempDir())
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = store.Save(ctx, strings.NewReader("x"), "a.pdf")
	assert.ErrorIs(t, err, context.Canceled)
}
