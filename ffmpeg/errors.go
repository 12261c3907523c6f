package ffmpeg

import (
	"fmt"
	"strings"
)

// ProbeError reports a failed or unreadable ffprobe run.
type ProbeError struct {
	Path     string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *ProbeError) Error() string {
	msg := fmt.Sprintf("probe %s", e.Path)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += ": " + s
	}
	return msg
}

func (e *ProbeError) Unwrap() error { return e.Err }

// RewriteError reports a non-zero ffmpeg exit while remuxing.
type RewriteError struct {
	Path     string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *RewriteError) Error() string {
	msg := fmt.Sprintf("faststart %s: exit code %d", e.Path, e.ExitCode)
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += ": " + s
	}
	return msg
}

func (e *RewriteError) Unwrap() error { return e.Err }
