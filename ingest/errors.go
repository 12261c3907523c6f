package ingest

import "fmt"

// ValidationError rejects an upload before any bytes reach disk.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// ForbiddenError means the caller does not own the video.
type ForbiddenError struct {
	UserID  string
	VideoID string
}

func (e *ForbiddenError) Error() string {
	return fmt.Sprintf("user %s is not allowed to upload to video %s", e.UserID, e.VideoID)
}

type NotFoundError struct {
	VideoID string
	Err     error
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("video %s not found", e.VideoID)
}

func (e *NotFoundError) Unwrap() error { return e.Err }
