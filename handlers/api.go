package handlers

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"gorm.io/gorm"

	"tubely/database"
	"tubely/ingest"
	"tubely/storage"
)

// API holds the collaborators shared by every route.
type API struct {
	DB        *gorm.DB
	Videos    *database.VideoStore
	Ingest    *ingest.Orchestrator
	Publisher storage.Publisher

	// set only for the local storage backend
	TempURLs *database.TempURLStore
	Local    *storage.LocalPublisher

	FfmpegBin        string
	FfprobeBin       string
	JWTSecret        string
	TokenTTL         time.Duration
	SignedURLTTL     time.Duration
	AssetsDir        string
	BaseURL          string
	MaxVideoSize     int64
	MaxThumbnailSize int64
}

func (a *API) Register(e *echo.Echo) {
	e.HTTPErrorHandler = ErrorHandler

	e.POST("/api/users", a.CreateUser)
	e.POST("/api/login", a.Login)
	e.GET("/api/status", a.StatusGet)

	api := e.Group("/api", a.RequireUser)
	api.POST("/videos", a.CreateVideo)
	api.GET("/videos", a.ListVideos)
	api.GET("/videos/:videoID", a.GetVideo)
	api.DELETE("/videos/:videoID", a.DeleteVideo)
	api.POST("/thumbnail_upload/:videoID", a.UploadThumbnail,
		middleware.BodyLimit(bodyLimit(a.MaxThumbnailSize)))
	api.POST("/video_upload/:videoID", a.UploadVideo,
		middleware.BodyLimit(bodyLimit(a.MaxVideoSize)))

	e.Static("/assets", a.AssetsDir)
	if a.Local != nil && a.TempURLs != nil {
		e.GET("/temp/:token", a.TempGet)
	}
}

// allow for multipart framing on top of the file itself
func bodyLimit(fileLimit int64) string {
	return strconv.FormatInt(fileLimit+1<<20, 10)
}
