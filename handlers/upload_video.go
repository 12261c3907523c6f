package handlers

import (
	"mime/multipart"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"tubely/ingest"
)

// UploadVideo streams the "video" form part into the ingest pipeline and
// responds with the updated, signed record. The part is read directly from
// the request so nothing is buffered to disk before the upload is admitted.
func (a *API) UploadVideo(c echo.Context) error {
	videoID := c.Param("videoID")
	if _, err := uuid.Parse(videoID); err != nil {
		return badRequest("Invalid video ID")
	}
	userID := currentUser(c)
	log.Infoln("uploading video", videoID, "by user", userID)

	reader, err := c.Request().MultipartReader()
	if err != nil {
		return badRequest("Invalid file")
	}
	part, err := filePart(reader, "video")
	if err != nil {
		return err
	}
	defer part.Close()

	// the request length bounds the file size; -1 means unknown
	size := c.Request().ContentLength
	if size < 0 {
		size = 0
	}

	ctx := c.Request().Context()
	video, err := a.Ingest.Ingest(ctx, ingest.Upload{
		VideoID:   videoID,
		UserID:    userID,
		MediaType: part.Header.Get(echo.HeaderContentType),
		Size:      size,
		Body:      part,
	})
	if err != nil {
		return err
	}

	signed, err := a.signVideo(ctx, video)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, signed)
}

// filePart advances reader to the part for the named form field.
func filePart(reader *multipart.Reader, field string) (*multipart.Part, error) {
	for {
		part, err := reader.NextPart()
		if err != nil {
			return nil, badRequest("Invalid file")
		}
		if part.FormName() == field {
			return part, nil
		}
		part.Close()
	}
}
