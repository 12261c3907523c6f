package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
)

// runs bin with the provided args and returns (stdout, stderr, exit code, error).
// The exit code is -1 when the process could not be started or was killed.
func run(ctx context.Context, bin string, args ...string) ([]byte, []byte, int, error) {
	log.Debugln(bin, strings.Join(args, " "))
	cmd := exec.CommandContext(ctx, bin, args...)
	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()

	code := 0
	if err != nil {
		code = -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			code = exitErr.ExitCode()
		}
		log.Errorf("%s error: %v", bin, err)
	}
	if stderr.Len() > 0 {
		log.Debugln("stderr:", stderr.String())
	}
	return stdout.Bytes(), stderr.Bytes(), code, err
}

// Version returns the first line of "bin -version".
func Version(ctx context.Context, bin string) (string, error) {
	stdout, _, _, err := run(ctx, bin, "-version")
	if err != nil {
		return "", err
	}
	line, _, _ := strings.Cut(string(stdout), "\n")
	return strings.TrimSpace(line), nil
}
