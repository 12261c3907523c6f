package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

var gitSHA string
var buildDate string

func lookup(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}

func lookupDuration(key string, fallback time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}

func lookupInt64(key string, fallback int64) int64 {
	if value, exists := os.LookupEnv(key); exists {
		if n, err := strconv.ParseInt(value, 10, 64); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func GetPort() string {
	return lookup("TUBELY_PORT", "8091")
}

// GetBaseURL is the externally visible origin, used for local temporary URLs.
func GetBaseURL() string {
	return lookup("TUBELY_BASE_URL", "http://localhost:"+GetPort())
}

// scratch files and thumbnails live here
func GetAssetsDir() string {
	return lookup("TUBELY_ASSETS_DIR", "assets")
}

// defaults to ./data, holds the local storage backend and the database
func GetDataDir() string {
	return lookup("TUBELY_DATA_DIR", "data")
}

// defaults to GetDataDir() / tubely.db
func GetDBPath() string {
	return lookup("TUBELY_DB_PATH", filepath.Join(GetDataDir(), "tubely.db"))
}

func GetJWTSecret() (string, error) {
	key := "TUBELY_JWT_SECRET"
	value, exists := os.LookupEnv(key)
	if exists && value != "" {
		return value, nil
	}
	return "", fmt.Errorf("please set %s", key)
}

func GetTokenTTL() time.Duration {
	return lookupDuration("TUBELY_TOKEN_TTL", time.Hour)
}

// s3, gcs or local
func GetStorageBackend() string {
	return strings.ToLower(lookup("TUBELY_STORAGE", "local"))
}

func GetS3Bucket() string {
	return lookup("TUBELY_S3_BUCKET", "")
}

func GetS3Region() string {
	return lookup("TUBELY_S3_REGION", "us-east-1")
}

// empty for AWS, set for minio and other S3-compatible servers
func GetS3Endpoint() string {
	return lookup("TUBELY_S3_ENDPOINT", "")
}

func GetGCSBucket() string {
	return lookup("TUBELY_GCS_BUCKET", "")
}

func GetGCSAccessID() string {
	return lookup("TUBELY_GCS_ACCESS_ID", "")
}

func GetGCSPrivateKeyFile() string {
	return lookup("TUBELY_GCS_PRIVATE_KEY_FILE", "")
}

func GetSignedURLTTL() time.Duration {
	return lookupDuration("TUBELY_SIGNED_URL_TTL", time.Hour)
}

func GetMaxVideoSize() int64 {
	return lookupInt64("TUBELY_MAX_VIDEO_SIZE", 10<<30)
}

func GetMaxThumbnailSize() int64 {
	return lookupInt64("TUBELY_MAX_THUMBNAIL_SIZE", 10<<20)
}

// scratch files older than this are swept by the janitor
func GetScratchMaxAge() time.Duration {
	return lookupDuration("TUBELY_SCRATCH_MAX_AGE", 24*time.Hour)
}

// cron schedule for the janitor, e.g. "@hourly" or "@every 30m"
func GetJanitorSchedule() string {
	return lookup("TUBELY_JANITOR_SCHEDULE", "@hourly")
}

func GetFfmpegBin() string {
	return lookup("TUBELY_FFMPEG", "ffmpeg")
}

func GetFfprobeBin() string {
	return lookup("TUBELY_FFPROBE", "ffprobe")
}

func GetLogLevel() string {
	return lookup("TUBELY_LOG_LEVEL", "debug")
}

func GetSecure() bool {
	key := "TUBELY_SECURE"
	if value, exists := os.LookupEnv(key); exists {
		lower := strings.ToLower(value)
		if lower == "on" || lower == "1" || lower == "true" || lower == "yes" {
			return true
		}
	}
	return false
}

func GetGitSHA() string {
	if gitSHA == "" {
		return "<not provided>"
	} else {
		return gitSHA
	}
}

func GetBuildDate() string {
	if buildDate == "" {
		return "<not provided>"
	} else {
		return buildDate
	}
}
