package ingest

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

const nameBytes = 32

// NewFileName returns 32 random bytes in URL-safe base64 followed by ext.
// Names are never tracked; collisions are left to the size of the space.
func NewFileName(ext string) (string, error) {
	buf := make([]byte, nameBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random name: %w", err)
	}
	name := base64.RawURLEncoding.EncodeToString(buf)
	if ext != "" {
		name += "." + ext
	}
	return name, nil
}

// extension maps "video/mp4" to "mp4".
func extension(mediaType string) string {
	_, sub, ok := strings.Cut(mediaType, "/")
	if !ok {
		return ""
	}
	return sub
}

// scratch tracks the files one ingestion creates so they can be released
// together.
type scratch struct {
	paths []string
}

func (s *scratch) add(path string) {
	s.paths = append(s.paths, path)
}

// write copies at most limit bytes of r into a new file at path. A body longer
// than limit leaves no file behind.
func (s *scratch) write(path string, r io.Reader, limit int64) (int64, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return 0, err
	}
	s.add(path)

	n, err := io.Copy(f, io.LimitReader(r, limit+1))
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return n, err
	}
	if n > limit {
		return n, errTooLarge
	}
	return n, nil
}

var errTooLarge = errors.New("upload exceeds size limit")

// release removes every tracked file and reports the ones it could not.
func (s *scratch) release(warn func(path string, err error)) {
	for _, path := range s.paths {
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			warn(path, err)
		}
	}
	s.paths = nil
}

func scratchPath(dir, name string) string {
	return filepath.Join(dir, name)
}
