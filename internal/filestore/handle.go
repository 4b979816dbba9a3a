// Package filestore keeps uploaded file bytes on local disk or in S3 and
// hands back relative handles of the form {yyyy}/{mm}/{uuid}{ext}.
package filestore

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrPathEscapesRoot is returned for handles that would resolve outside the
// storage root. Such handles are never read or deleted.
var ErrPathEscapesRoot = errors.New("storage path escapes root")

var extPattern = regexp.MustCompile(`^[a-z0-9]{1,10}$`)

// Object is one stored file as seen by the sweeper.
type Object struct {
	Handle  string
	ModTime time.Time
}

// newHandle builds a fresh relative handle for originalName uploaded at now.
// Only a short alphanumeric extension survives; the rest of the client name
// never reaches the filesystem.
func newHandle(now time.Time, originalName string) string {
	now = now.UTC()
	name := uuid.NewString() + sanitizeExt(originalName)
	return path.Join(fmt.Sprintf("%04d", now.Year()), fmt.Sprintf("%02d", int(now.Month())), name)
}

func sanitizeExt(originalName string) string {
	base := filepath.Base(strings.ReplaceAll(originalName, "\\", "/"))
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(base), "."))
	if !extPattern.MatchString(ext) {
		return ""
	}
	return "." + ext
}

// cleanHandle rejects empty, absolute and parent-relative handles and returns
// the slash-separated form.
func cleanHandle(handle string) (string, error) {
	h := strings.TrimSpace(handle)
	if h == "" {
		return "", fmt.Errorf("empty handle: %w", ErrPathEscapesRoot)
	}
	h = strings.ReplaceAll(h, "\\", "/")
	if path.IsAbs(h) || filepath.IsAbs(h) || filepath.VolumeName(h) != "" {
		return "", fmt.Errorf("absolute handle %q: %w", handle, ErrPathEscapesRoot)
	}
	cleaned := path.Clean(h)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("handle %q: %w", handle, ErrPathEscapesRoot)
	}
	return cleaned, nil
}
