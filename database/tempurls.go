package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TempURL grants time-limited access to a stored key without a login.
type TempURL struct {
	Token     string `gorm:"uniqueIndex"`
	Key       string
	ExpiresAt time.Time
}

type TempURLStore struct {
	db  *gorm.DB
	now func() time.Time
}

func NewTempURLStore(d *gorm.DB) *TempURLStore {
	return &TempURLStore{db: d, now: time.Now}
}

func generateToken() string {
	uuidObj := uuid.Must(uuid.NewV7())
	return uuidObj.String()
}

func (s *TempURLStore) CreateTempURL(ctx context.Context, key string, expiresAt time.Time) (string, error) {
	tempURL := TempURL{
		Token:     generateToken(),
		Key:       key,
		ExpiresAt: expiresAt,
	}
	if err := s.db.WithContext(ctx).Create(&tempURL).Error; err != nil {
		return "", fmt.Errorf("create temporary url: %w", err)
	}
	return tempURL.Token, nil
}

// Lookup returns the key behind an unexpired token.
func (s *TempURLStore) Lookup(ctx context.Context, token string) (string, error) {
	var tempURL TempURL
	err := s.db.WithContext(ctx).
		Where("token = ? AND expires_at > ?", token, s.now()).
		First(&tempURL).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return tempURL.Key, nil
}

func (s *TempURLStore) CleanupExpired(ctx context.Context) (int64, error) {
	result := s.db.WithContext(ctx).Where("expires_at < ?", s.now()).Delete(&TempURL{})
	if result.Error != nil {
		return 0, result.Error
	}
	log.Debugf("cleaned up %d expired temporary URLs", result.RowsAffected)
	return result.RowsAffected, nil
}
