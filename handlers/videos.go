package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"tubely/ingest"
	"tubely/media"
)

type videoParams struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (a *API) CreateVideo(c echo.Context) error {
	var req videoParams
	if err := c.Bind(&req); err != nil {
		return badRequest("Couldn't decode parameters")
	}
	if req.Title == "" {
		return badRequest("Title is required")
	}
	video := media.Video{
		ID:          uuid.Must(uuid.NewV7()).String(),
		Title:       req.Title,
		Description: req.Description,
		UserID:      currentUser(c),
	}
	if err := a.Videos.Create(c.Request().Context(), &video); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, video)
}

func (a *API) ListVideos(c echo.Context) error {
	ctx := c.Request().Context()
	videos, err := a.Videos.ListByUser(ctx, currentUser(c))
	if err != nil {
		return err
	}
	signed := make([]media.Video, 0, len(videos))
	for _, v := range videos {
		sv, err := a.signVideo(ctx, v)
		if err != nil {
			return err
		}
		signed = append(signed, sv)
	}
	return c.JSON(http.StatusOK, signed)
}

func (a *API) GetVideo(c echo.Context) error {
	ctx := c.Request().Context()
	video, err := a.ownedVideo(c)
	if err != nil {
		return err
	}
	signed, err := a.signVideo(ctx, video)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, signed)
}

func (a *API) DeleteVideo(c echo.Context) error {
	video, err := a.ownedVideo(c)
	if err != nil {
		return err
	}
	if err := a.Videos.Delete(c.Request().Context(), video.ID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (a *API) ownedVideo(c echo.Context) (media.Video, error) {
	videoID := c.Param("videoID")
	if _, err := uuid.Parse(videoID); err != nil {
		return media.Video{}, badRequest("Invalid video ID")
	}
	video, err := a.Videos.Get(c.Request().Context(), videoID)
	if err != nil {
		return media.Video{}, err
	}
	userID := currentUser(c)
	if !video.OwnedBy(userID) {
		return media.Video{}, &ingest.ForbiddenError{UserID: userID, VideoID: videoID}
	}
	return video, nil
}

// signVideo replaces the stored key in VideoURL with a presigned URL.
func (a *API) signVideo(ctx context.Context, video media.Video) (media.Video, error) {
	if video.VideoURL == nil || *video.VideoURL == "" {
		return video, nil
	}
	url, err := a.Publisher.Presign(ctx, *video.VideoURL, a.SignedURLTTL)
	if err != nil {
		return media.Video{}, err
	}
	video.VideoURL = &url
	return video, nil
}
