package handlers

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/labstack/echo/v4"
	"golang.org/x/sys/unix"

	"tubely/config"
	"tubely/ffmpeg"
)

// GetFreeSpace returns the free space in bytes for the filesystem containing the given directory
func getFreeSpace(dir string) (uint64, error) {
	var stat unix.Statfs_t
	err := unix.Statfs(dir, &stat)
	if err != nil {
		return 0, fmt.Errorf("error getting filesystem stats: %v", err)
	}

	// Calculate free space
	freeSpace := stat.Bavail * uint64(stat.Bsize)
	return freeSpace, nil
}

// GetDirectorySize calculates the total size of a directory in bytes
func getDirectorySize(dir string) (int64, error) {
	var size int64
	err := filepath.Walk(dir, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			size += info.Size()
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("error walking directory: %v", err)
	}
	return size, nil
}

type status struct {
	Ffmpeg    string `json:"ffmpeg"`
	Ffprobe   string `json:"ffprobe"`
	FreeMiB   string `json:"free_mib"`
	UsedMiB   string `json:"used_mib"`
	BuildID   string `json:"build_id"`
	BuildDate string `json:"build_date"`
}

func (a *API) StatusGet(c echo.Context) error {
	ctx := c.Request().Context()
	ffmpegVersion, err := ffmpeg.Version(ctx, a.FfmpegBin)
	if err != nil {
		log.Errorln(err)
	}
	ffprobeVersion, err := ffmpeg.Version(ctx, a.FfprobeBin)
	if err != nil {
		log.Errorln(err)
	}

	free, err := getFreeSpace(a.AssetsDir)
	if err != nil {
		log.Errorln(err)
	}
	used, err := getDirectorySize(a.AssetsDir)
	if err != nil {
		log.Errorln(err)
	}

	freeMiB := float64(free) / 1024 / 1024
	usedMiB := float64(used) / 1024 / 1024

	return c.JSON(http.StatusOK, status{
		Ffmpeg:    ffmpegVersion,
		Ffprobe:   ffprobeVersion,
		FreeMiB:   fmt.Sprintf("%.2f", freeMiB),
		UsedMiB:   fmt.Sprintf("%.2f", usedMiB),
		BuildID:   config.GetGitSHA(),
		BuildDate: config.GetBuildDate(),
	})
}
