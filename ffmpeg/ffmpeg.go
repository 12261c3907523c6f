package ffmpeg

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

const (
	DefaultFfmpeg = "ffmpeg"

	fastStartSuffix = ".processing"
)

// FastStarter remuxes a file so its index sits at the front of the container.
// Streams are copied, never re-encoded.
type FastStarter struct {
	Bin string
}

func (f FastStarter) bin() string {
	if f.Bin == "" {
		return DefaultFfmpeg
	}
	return f.Bin
}

// FastStartPath derives the output sibling of src: same directory and stem,
// ".processing" before the original extension.
func FastStartPath(src string) string {
	ext := filepath.Ext(src)
	return strings.TrimSuffix(src, ext) + fastStartSuffix + ext
}

// IsFastStartPath reports whether name looks like a FastStartPath output.
func IsFastStartPath(name string) bool {
	ext := filepath.Ext(name)
	return strings.HasSuffix(strings.TrimSuffix(name, ext), fastStartSuffix)
}

func fastStartArgs(src, dst string) []string {
	return []string{
		"-y",
		"-i", src,
		"-movflags", "faststart",
		"-map_metadata", "0",
		"-codec", "copy",
		"-loglevel", "error",
		dst,
	}
}

// Rewrite writes a fast-start copy of src and returns its path. The caller owns
// both files. On failure any partial output is removed before returning.
func (f FastStarter) Rewrite(ctx context.Context, src string) (string, error) {
	dst := FastStartPath(src)
	_, stderr, code, err := run(ctx, f.bin(), fastStartArgs(src, dst)...)
	if err != nil {
		if rmErr := os.Remove(dst); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
			log.Warnf("remove partial output %s: %v", dst, rmErr)
		}
		return "", &RewriteError{Path: src, ExitCode: code, Stderr: string(stderr), Err: err}
	}
	return dst, nil
}
