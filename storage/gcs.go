package storage

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"time"

	gcs "cloud.google.com/go/storage"
)

type GCSPublisher struct {
	client     *gcs.Client
	bucket     string
	accessID   string
	privateKey []byte
}

type GCSOption func(*GCSPublisher)

// WithSigningKey signs URLs with an explicit service account key instead of
// the client's detected credentials.
func WithSigningKey(accessID string, privateKey []byte) GCSOption {
	return func(p *GCSPublisher) {
		p.accessID = accessID
		p.privateKey = append([]byte(nil), privateKey...)
	}
}

func NewGCSPublisher(client *gcs.Client, bucket string, opts ...GCSOption) (*GCSPublisher, error) {
	if bucket == "" {
		return nil, errors.New("gcs bucket is required")
	}
	p := &GCSPublisher{client: client, bucket: bucket}
	for _, opt := range opts {
		opt(p)
	}
	if client == nil && len(p.privateKey) == 0 {
		return nil, errors.New("gcs publisher needs a client or a signing key")
	}
	return p, nil
}

func (p *GCSPublisher) Upload(ctx context.Context, key, localPath, contentType string) error {
	if err := checkKey("upload", key); err != nil {
		return err
	}
	if p.client == nil {
		return &PublishError{Op: "upload", Key: key, Err: errors.New("gcs client not configured")}
	}
	f, err := os.Open(localPath)
	if err != nil {
		return &PublishError{Op: "upload", Key: key, Err: err}
	}
	defer f.Close()

	// cancelling the writer's context aborts the upload, Close would commit it
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w := p.client.Bucket(p.bucket).Object(key).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := io.Copy(w, f); err != nil {
		cancel()
		return &PublishError{Op: "upload", Key: key, Err: err}
	}
	if err := w.Close(); err != nil {
		return &PublishError{Op: "upload", Key: key, Err: err}
	}
	log.Infof("uploaded %s to gs://%s/%s", localPath, p.bucket, key)
	return nil
}

func (p *GCSPublisher) Presign(ctx context.Context, key string, ttl time.Duration) (string, error) {
	if err := checkPresign(key, ttl); err != nil {
		return "", err
	}
	opts := &gcs.SignedURLOptions{
		Scheme:  gcs.SigningSchemeV4,
		Method:  http.MethodGet,
		Expires: time.Now().Add(ttl),
	}

	var (
		url string
		err error
	)
	if len(p.privateKey) > 0 {
		opts.GoogleAccessID = p.accessID
		opts.PrivateKey = p.privateKey
		url, err = gcs.SignedURL(p.bucket, key, opts)
	} else {
		url, err = p.client.Bucket(p.bucket).SignedURL(key, opts)
	}
	if err != nil {
		return "", &PublishError{Op: "presign", Key: key, Err: err}
	}
	return url, nil
}
