// Package janitor runs periodic maintenance: expiring temporary URLs,
// vacuuming the database and sweeping scratch files that a failed cleanup
// left behind.
package janitor

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"tubely/database"
	"tubely/ffmpeg"
)

var log = logrus.NewEntry(logrus.StandardLogger())

func Init(logger *logrus.Logger) error {
	log = logger.WithFields(logrus.Fields{
		"component": "janitor",
	})
	return nil
}

type Janitor struct {
	DB         *gorm.DB
	TempURLs   *database.TempURLStore
	AssetsDir  string
	ScratchExt string
	MaxAge     time.Duration

	now func() time.Time
}

// Start runs one pass immediately and then on schedule. Stop the returned
// cron to end it.
func (j *Janitor) Start(schedule string) (*cron.Cron, error) {
	c := cron.New()
	if _, err := c.AddFunc(schedule, j.RunOnce); err != nil {
		return nil, err
	}
	j.RunOnce()
	c.Start()
	return c, nil
}

func (j *Janitor) RunOnce() {
	ctx := context.Background()
	if j.TempURLs != nil {
		if n, err := j.TempURLs.CleanupExpired(ctx); err != nil {
			log.Errorln("cleanup expired URLs:", err)
		} else if n > 0 {
			log.Infof("cleaned up %d expired temporary URLs", n)
		}
	}
	if j.DB != nil {
		if err := database.Vacuum(j.DB); err != nil {
			log.Errorln("vacuum:", err)
		}
	}
	removed, err := j.SweepScratch()
	if err != nil {
		log.Errorln("sweep scratch files:", err)
	}
	if removed > 0 {
		log.Warnf("removed %d leaked scratch files from %s", removed, j.AssetsDir)
	}
}

// SweepScratch removes scratch video files in AssetsDir older than MaxAge.
// Thumbnails and other assets are left alone.
func (j *Janitor) SweepScratch() (int, error) {
	if j.AssetsDir == "" || j.MaxAge <= 0 {
		return 0, nil
	}
	now := time.Now
	if j.now != nil {
		now = j.now
	}
	entries, err := os.ReadDir(j.AssetsDir)
	if err != nil {
		return 0, err
	}
	cutoff := now().Add(-j.MaxAge)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || !j.isScratch(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		path := filepath.Join(j.AssetsDir, entry.Name())
		if err := os.Remove(path); err != nil {
			log.Warnf("remove %s: %v", path, err)
			continue
		}
		removed++
	}
	return removed, nil
}

func (j *Janitor) isScratch(name string) bool {
	ext := j.ScratchExt
	if ext == "" {
		ext = "mp4"
	}
	return strings.HasSuffix(name, "."+ext) || ffmpeg.IsFastStartPath(name)
}
