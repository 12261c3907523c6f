package database

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"tubely/media"
)

var ErrNotFound = errors.New("record not found")

// VideoStore persists video records.
type VideoStore struct {
	db *gorm.DB
}

func NewVideoStore(d *gorm.DB) *VideoStore {
	return &VideoStore{db: d}
}

func (s *VideoStore) Create(ctx context.Context, video *media.Video) error {
	return s.db.WithContext(ctx).Create(video).Error
}

func (s *VideoStore) Get(ctx context.Context, id string) (media.Video, error) {
	var video media.Video
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&video).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return media.Video{}, fmt.Errorf("video %s: %w", id, ErrNotFound)
	}
	return video, err
}

// Update overwrites every column of an existing record. Last writer wins.
func (s *VideoStore) Update(ctx context.Context, video media.Video) error {
	result := s.db.WithContext(ctx).Model(&media.Video{ID: video.ID}).
		Select("*").
		Omit("id", "created_at").
		Updates(&video)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("video %s: %w", video.ID, ErrNotFound)
	}
	return nil
}

func (s *VideoStore) ListByUser(ctx context.Context, userID string) ([]media.Video, error) {
	var videos []media.Video
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&videos).Error
	return videos, err
}

func (s *VideoStore) Delete(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&media.Video{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("video %s: %w", id, ErrNotFound)
	}
	return nil
}
