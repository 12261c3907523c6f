package handlers

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"

	"tubely/ingest"
)

var thumbnailTypes = map[string]string{
	"image/jpeg": "jpeg",
	"image/png":  "png",
}

// UploadThumbnail writes the "thumbnail" form file into the assets directory
// and points the record at it. No pipeline is involved.
func (a *API) UploadThumbnail(c echo.Context) error {
	video, err := a.ownedVideo(c)
	if err != nil {
		return err
	}
	log.Infoln("uploading thumbnail for video", video.ID, "by user", currentUser(c))

	header, err := c.FormFile("thumbnail")
	if err != nil {
		return badRequest("Invalid file")
	}
	mediaType := header.Header.Get(echo.HeaderContentType)
	if mediaType == "" {
		return badRequest("Missing Content-Type for thumbnail")
	}
	ext, ok := thumbnailTypes[mediaType]
	if !ok {
		return badRequest("Invalid Content-Type for thumbnail")
	}
	if header.Size > a.MaxThumbnailSize {
		return badRequest("File too large")
	}

	src, err := header.Open()
	if err != nil {
		return badRequest("Invalid file")
	}
	defer src.Close()

	name, err := ingest.NewFileName(ext)
	if err != nil {
		return err
	}
	if err := writeLimited(filepath.Join(a.AssetsDir, name), src, a.MaxThumbnailSize); err != nil {
		return err
	}

	url := strings.TrimRight(a.BaseURL, "/") + "/assets/" + name
	video.ThumbnailURL = &url
	if err := a.Videos.Update(c.Request().Context(), video); err != nil {
		return err
	}

	signed, err := a.signVideo(c.Request().Context(), video)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, signed)
}

func writeLimited(path string, r io.Reader, limit int64) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	n, err := io.Copy(f, io.LimitReader(r, limit+1))
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err == nil && n > limit {
		err = badRequest("File too large")
	}
	if err != nil {
		os.Remove(path)
		return err
	}
	return nil
}
