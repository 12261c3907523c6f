// Package ingest drives an uploaded video through probe, fast-start rewrite
// and publish, then records the storage key on the video.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"tubely/media"
	"tubely/storage"
)

const (
	DefaultAcceptedType  = "video/mp4"
	DefaultMaxUploadSize = 10 << 30
)

type Stage string

const (
	StageReceived       Stage = "received"
	StageScratchWritten Stage = "scratch_written"
	StageProbed         Stage = "probed"
	StageRewritten      Stage = "rewritten"
	StagePublished      Stage = "published"
	StageRecordUpdated  Stage = "record_updated"
	StageFailed         Stage = "failed"
	StageCleanedUp      Stage = "cleaned_up"
)

type Prober interface {
	Probe(ctx context.Context, path string) (media.Orientation, error)
}

type Rewriter interface {
	Rewrite(ctx context.Context, path string) (string, error)
}

// RecordStore loads and saves video records.
type RecordStore interface {
	Get(ctx context.Context, id string) (media.Video, error)
	Update(ctx context.Context, video media.Video) error
}

type Config struct {
	AssetsDir     string
	AcceptedType  string
	MaxUploadSize int64

	Prober    Prober
	Rewriter  Rewriter
	Publisher storage.Publisher
	Records   RecordStore
	// NotFound reports whether a Records.Get error means the id is unknown.
	NotFound func(error) bool

	Logger *logrus.Logger
}

type Orchestrator struct {
	assetsDir     string
	acceptedType  string
	maxUploadSize int64

	prober    Prober
	rewriter  Rewriter
	publisher storage.Publisher
	records   RecordStore
	notFound  func(error) bool

	log *logrus.Entry
}

func New(cfg Config) (*Orchestrator, error) {
	if cfg.AssetsDir == "" {
		return nil, errors.New("assets dir is required")
	}
	if cfg.Prober == nil || cfg.Rewriter == nil || cfg.Publisher == nil || cfg.Records == nil {
		return nil, errors.New("prober, rewriter, publisher and record store are required")
	}
	accepted := cfg.AcceptedType
	if accepted == "" {
		accepted = DefaultAcceptedType
	}
	limit := cfg.MaxUploadSize
	if limit <= 0 {
		limit = DefaultMaxUploadSize
	}
	notFound := cfg.NotFound
	if notFound == nil {
		notFound = func(error) bool { return false }
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Orchestrator{
		assetsDir:     cfg.AssetsDir,
		acceptedType:  accepted,
		maxUploadSize: limit,
		prober:        cfg.Prober,
		rewriter:      cfg.Rewriter,
		publisher:     cfg.Publisher,
		records:       cfg.Records,
		notFound:      notFound,
		log:           logger.WithField("component", "ingest"),
	}, nil
}

// Upload is one video file as received from the caller.
type Upload struct {
	VideoID   string
	UserID    string
	MediaType string
	Size      int64
	Body      io.Reader
}

// Ingest validates the upload, stores it, and returns the updated record.
// Every scratch file created on the way is removed before Ingest returns.
//
// If the record update fails after a successful publish the stored object is
// left in place without a referencing record.
func (o *Orchestrator) Ingest(ctx context.Context, up Upload) (media.Video, error) {
	log := o.log.WithFields(logrus.Fields{
		"video_id": up.VideoID,
		"user_id":  up.UserID,
	})
	log.WithField("stage", StageReceived).Info("ingesting upload")

	video, err := o.admit(ctx, up)
	if err != nil {
		log.WithField("stage", StageFailed).Warnf("upload rejected: %v", err)
		return media.Video{}, err
	}

	var files scratch
	defer func() {
		files.release(func(path string, err error) {
			log.WithField("path", path).Warnf("cleanup: remove scratch file: %v", err)
		})
		log.WithField("stage", StageCleanedUp).Debug("scratch files released")
	}()

	fail := func(stage Stage, err error) (media.Video, error) {
		log.WithFields(logrus.Fields{"stage": StageFailed, "after": stage}).Errorf("ingest failed: %v", err)
		return media.Video{}, err
	}

	fileName, err := NewFileName(extension(up.MediaType))
	if err != nil {
		return fail(StageReceived, err)
	}
	srcPath := scratchPath(o.assetsDir, fileName)
	n, err := files.write(srcPath, up.Body, o.maxUploadSize)
	if errors.Is(err, errTooLarge) {
		return fail(StageReceived, &ValidationError{Msg: "file too large"})
	} else if err != nil {
		return fail(StageReceived, fmt.Errorf("write scratch file: %w", err))
	}
	log.WithFields(logrus.Fields{"stage": StageScratchWritten, "bytes": n}).Debug("scratch file written")

	orientation, err := o.prober.Probe(ctx, srcPath)
	if err != nil {
		return fail(StageScratchWritten, err)
	}
	log.WithFields(logrus.Fields{"stage": StageProbed, "orientation": orientation}).Debug("probed")

	rewrittenPath, err := o.rewriter.Rewrite(ctx, srcPath)
	if rewrittenPath != "" {
		files.add(rewrittenPath)
	}
	if err != nil {
		return fail(StageProbed, err)
	}
	log.WithField("stage", StageRewritten).Debug("rewritten for fast start")

	key := media.StorageKey(orientation, fileName)
	if err := o.publisher.Upload(ctx, key, rewrittenPath, up.MediaType); err != nil {
		return fail(StageRewritten, err)
	}
	log.WithFields(logrus.Fields{"stage": StagePublished, "key": key}).Info("published")

	video.VideoURL = &key
	if err := o.records.Update(ctx, video); err != nil {
		log.WithField("key", key).Warn("stored object has no referencing record")
		return fail(StagePublished, fmt.Errorf("update video %s: %w", video.ID, err))
	}
	log.WithField("stage", StageRecordUpdated).Info("video record updated")

	return video, nil
}

// admit runs every check that must pass before a scratch file is written.
func (o *Orchestrator) admit(ctx context.Context, up Upload) (media.Video, error) {
	if up.MediaType == "" {
		return media.Video{}, &ValidationError{Msg: "missing Content-Type for video"}
	}
	if up.MediaType != o.acceptedType {
		return media.Video{}, &ValidationError{Msg: "invalid Content-Type for video"}
	}
	if up.Size > o.maxUploadSize {
		return media.Video{}, &ValidationError{Msg: "file too large"}
	}
	if up.Body == nil {
		return media.Video{}, &ValidationError{Msg: "invalid file"}
	}

	video, err := o.records.Get(ctx, up.VideoID)
	if err != nil {
		if o.notFound(err) {
			return media.Video{}, &NotFoundError{VideoID: up.VideoID, Err: err}
		}
		return media.Video{}, fmt.Errorf("load video %s: %w", up.VideoID, err)
	}
	if !video.OwnedBy(up.UserID) {
		return media.Video{}, &ForbiddenError{UserID: up.UserID, VideoID: up.VideoID}
	}
	if err := os.MkdirAll(o.assetsDir, 0o755); err != nil {
		return media.Video{}, fmt.Errorf("create assets dir: %w", err)
	}
	return video, nil
}
