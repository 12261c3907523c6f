package media

import "time"

type Orientation string

const (
	Landscape Orientation = "landscape"
	Portrait  Orientation = "portrait"
	Other     Orientation = "other"
)

// Video is the record a user creates before uploading. VideoURL holds the
// storage key of the published file, not a retrievable URL.
type Video struct {
	ID           string    `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	ThumbnailURL *string   `json:"thumbnailURL"`
	VideoURL     *string   `json:"videoURL"`
	UserID       string    `gorm:"index" json:"userID"`
}

func (v Video) OwnedBy(userID string) bool {
	return userID != "" && v.UserID == userID
}
