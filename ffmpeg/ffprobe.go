package ffmpeg

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"tubely/media"
)

const DefaultFfprobe = "ffprobe"

// Prober classifies the orientation of the first video stream of a file.
type Prober struct {
	Bin string
}

func (p Prober) bin() string {
	if p.Bin == "" {
		return DefaultFfprobe
	}
	return p.Bin
}

func probeArgs(path string) []string {
	return []string{
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height",
		"-of", "json",
		path,
	}
}

// Probe runs ffprobe against path. Any stderr output is treated as a failure,
// but a stream with no usable dimensions is classified as media.Other.
func (p Prober) Probe(ctx context.Context, path string) (media.Orientation, error) {
	stdout, stderr, code, err := run(ctx, p.bin(), probeArgs(path)...)
	if err != nil {
		return "", &ProbeError{Path: path, ExitCode: code, Stderr: string(stderr), Err: err}
	}
	if len(strings.TrimSpace(string(stderr))) > 0 {
		return "", &ProbeError{Path: path, Stderr: string(stderr), Err: errors.New("ffprobe reported errors")}
	}

	width, height, err := ParseDimensions(stdout)
	if err != nil {
		return "", &ProbeError{Path: path, Err: err}
	}
	orientation := media.Classify(width, height)
	log.Debugf("probed %s: %dx%d -> %s", path, width, height, orientation)
	return orientation, nil
}

type probeOutput struct {
	Streams []struct {
		Width  int `json:"width"`
		Height int `json:"height"`
	} `json:"streams"`
}

// ParseDimensions extracts the geometry of the first stream in ffprobe JSON.
// A missing streams list is an error; missing width or height decode as zero.
func ParseDimensions(data []byte) (int, int, error) {
	var out probeOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return 0, 0, fmt.Errorf("parse ffprobe output: %w", err)
	}
	if len(out.Streams) == 0 {
		return 0, 0, errors.New("ffprobe output has no video stream")
	}
	return out.Streams[0].Width, out.Streams[0].Height, nil
}
