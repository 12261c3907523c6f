package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// TempURLIssuer records a token granting access to key until expiresAt.
type TempURLIssuer interface {
	CreateTempURL(ctx context.Context, key string, expiresAt time.Time) (string, error)
}

// LocalPublisher stores objects under a directory on local disk. Presigned
// URLs point at the /temp/:token route.
type LocalPublisher struct {
	root    string
	baseURL string
	tokens  TempURLIssuer
	now     func() time.Time
}

func NewLocalPublisher(root, baseURL string, tokens TempURLIssuer) (*LocalPublisher, error) {
	if root == "" {
		return nil, errors.New("local storage root is required")
	}
	if tokens == nil {
		return nil, errors.New("local storage needs a temp url issuer")
	}
	if err := os.MkdirAll(root, 0o700); err != nil {
		return nil, fmt.Errorf("create storage root %s: %w", root, err)
	}
	return &LocalPublisher{
		root:    root,
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  tokens,
		now:     time.Now,
	}, nil
}

// Path maps a key to its file under the storage root.
func (p *LocalPublisher) Path(key string) (string, error) {
	if err := checkKey("open", key); err != nil {
		return "", err
	}
	return filepath.Join(p.root, filepath.FromSlash(key)), nil
}

func (p *LocalPublisher) Upload(ctx context.Context, key, localPath, contentType string) error {
	dstPath, err := p.Path(key)
	if err != nil {
		return err
	}
	if err := copyFile(localPath, dstPath); err != nil {
		return &PublishError{Op: "upload", Key: key, Err: err}
	}
	log.Infof("stored %s as %s (%s)", localPath, dstPath, contentType)
	return nil
}

func (p *LocalPublisher) Presign(ctx context.Context, key string, ttl time.Duration) (string, error) {
	if err := checkPresign(key, ttl); err != nil {
		return "", err
	}
	token, err := p.tokens.CreateTempURL(ctx, key, p.now().Add(ttl))
	if err != nil {
		return "", &PublishError{Op: "presign", Key: key, Err: err}
	}
	return p.baseURL + "/temp/" + token, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o700); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(dst), ".upload-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, in); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), dst)
}
