package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"tubely/config"
	"tubely/database"
	"tubely/ffmpeg"
	"tubely/handlers"
	"tubely/ingest"
	"tubely/janitor"
	"tubely/media"
	"tubely/storage"
	"tubely/users"
)

func main() {
	// a missing .env is fine, the environment may already be set
	envErr := godotenv.Load()

	initLogger()
	if envErr != nil && !errors.Is(envErr, os.ErrNotExist) {
		log.Warnln("load .env:", envErr)
	}

	log.Infof("GitSHA: %s", config.GetGitSHA())
	log.Infof("BuildDate: %s", config.GetBuildDate())

	ffmpeg.Init(log)
	storage.Init(log)
	handlers.Init(log)
	janitor.Init(log)

	jwtSecret, err := config.GetJWTSecret()
	if err != nil {
		log.Fatalln(err)
	}

	assetsDir := config.GetAssetsDir()
	if err := os.MkdirAll(assetsDir, 0o755); err != nil {
		log.Panicf("failed to create assets dir %s: %v", assetsDir, err)
	}
	if err := os.MkdirAll(filepath.Dir(config.GetDBPath()), 0o700); err != nil {
		log.Panicf("failed to create dir for %s: %v", config.GetDBPath(), err)
	}

	db, err := database.Open(config.GetDBPath(), &media.Video{}, &users.User{})
	if err != nil {
		log.Panicf("failed to open database %s: %v", config.GetDBPath(), err)
	}
	database.Init(db, log)
	defer database.Fini()

	videos := database.NewVideoStore(db)
	tempURLs := database.NewTempURLStore(db)

	ctx := context.Background()
	publisher, err := storage.New(ctx, storage.Config{
		Backend:           config.GetStorageBackend(),
		S3Bucket:          config.GetS3Bucket(),
		S3Region:          config.GetS3Region(),
		S3Endpoint:        config.GetS3Endpoint(),
		GCSBucket:         config.GetGCSBucket(),
		GCSAccessID:       config.GetGCSAccessID(),
		GCSPrivateKeyFile: config.GetGCSPrivateKeyFile(),
		DataDir:           filepath.Join(config.GetDataDir(), "objects"),
		BaseURL:           config.GetBaseURL(),
		TempURLs:          tempURLs,
	})
	if err != nil {
		log.Fatalln("configure storage:", err)
	}
	log.Infof("storage backend: %s", config.GetStorageBackend())

	orch, err := ingest.New(ingest.Config{
		AssetsDir:     assetsDir,
		MaxUploadSize: config.GetMaxVideoSize(),
		Prober:        &ffmpeg.Prober{Bin: config.GetFfprobeBin()},
		Rewriter:      &ffmpeg.FastStarter{Bin: config.GetFfmpegBin()},
		Publisher:     publisher,
		Records:       videos,
		NotFound:      func(err error) bool { return errors.Is(err, database.ErrNotFound) },
		Logger:        log,
	})
	if err != nil {
		log.Fatalln(err)
	}

	api := &handlers.API{
		DB:               db,
		Videos:           videos,
		Ingest:           orch,
		Publisher:        publisher,
		FfmpegBin:        config.GetFfmpegBin(),
		FfprobeBin:       config.GetFfprobeBin(),
		JWTSecret:        jwtSecret,
		TokenTTL:         config.GetTokenTTL(),
		SignedURLTTL:     config.GetSignedURLTTL(),
		AssetsDir:        assetsDir,
		BaseURL:          config.GetBaseURL(),
		MaxVideoSize:     config.GetMaxVideoSize(),
		MaxThumbnailSize: config.GetMaxThumbnailSize(),
	}
	if local, ok := publisher.(*storage.LocalPublisher); ok {
		api.Local = local
		api.TempURLs = tempURLs
	}

	jan := &janitor.Janitor{
		DB:        database.Get(),
		TempURLs:  tempURLs,
		AssetsDir: assetsDir,
		MaxAge:    config.GetScratchMaxAge(),
	}
	cron, err := jan.Start(config.GetJanitorSchedule())
	if err != nil {
		log.Fatalln("start janitor:", err)
	}
	defer cron.Stop()

	e := echo.New()
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	if config.GetSecure() {
		e.Use(middleware.Secure())
	}
	api.Register(e)

	e.Logger.Fatal(e.Start(":" + config.GetPort()))
}
