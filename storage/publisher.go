// Package storage publishes finished media to durable object storage and
// issues time-limited retrieval URLs for stored keys.
package storage

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

var log = logrus.NewEntry(logrus.StandardLogger())

func Init(logger *logrus.Logger) error {
	log = logger.WithFields(logrus.Fields{
		"component": "storage",
	})
	return nil
}

// Publisher uploads local files under a key and presigns keys for delivery.
// Presign never contacts the backend, so a URL for a missing key is issued
// and will 404 when fetched.
type Publisher interface {
	Upload(ctx context.Context, key, localPath, contentType string) error
	Presign(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// PublishError wraps any backend failure.
type PublishError struct {
	Op  string
	Key string
	Err error
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Op, e.Key, e.Err)
}

func (e *PublishError) Unwrap() error { return e.Err }

var (
	ErrInvalidKey = errors.New("invalid storage key")
	ErrInvalidTTL = errors.New("ttl must be positive")
)

// checkKey rejects keys that cannot be addressed by every backend.
func checkKey(op, key string) error {
	if key == "" || strings.HasPrefix(key, "/") || path.Clean(key) != key || strings.HasPrefix(key, "../") || key == ".." {
		return &PublishError{Op: op, Key: key, Err: ErrInvalidKey}
	}
	return nil
}

func checkPresign(key string, ttl time.Duration) error {
	if err := checkKey("presign", key); err != nil {
		return err
	}
	if ttl <= 0 {
		return &PublishError{Op: "presign", Key: key, Err: ErrInvalidTTL}
	}
	return nil
}
