package ingest

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tubely/ffmpeg"
	"tubely/media"
	"tubely/storage"
)

var errNoRecord = errors.New("no such record")

type fakeProber struct {
	orientation media.Orientation
	err         error
	calls       int
	filesSeen   int
}

func (p *fakeProber) Probe(_ context.Context, path string) (media.Orientation, error) {
	p.calls++
	p.filesSeen = countFiles(filepath.Dir(path))
	return p.orientation, p.err
}

type fakeRewriter struct {
	err     error
	partial bool
	calls   int
}

func (r *fakeRewriter) Rewrite(_ context.Context, path string) (string, error) {
	r.calls++
	dst := ffmpeg.FastStartPath(path)
	if r.err != nil {
		if r.partial {
			_ = os.WriteFile(dst, []byte("partial"), 0o600)
			return dst, r.err
		}
		return "", r.err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(dst, append([]byte("faststart:"), data...), 0o600); err != nil {
		return "", err
	}
	return dst, nil
}

type fakePublisher struct {
	err         error
	calls       int
	key         string
	body        string
	contentType string
	filesSeen   int
}

func (p *fakePublisher) Upload(_ context.Context, key, localPath, contentType string) error {
	p.calls++
	p.filesSeen = countFiles(filepath.Dir(localPath))
	if p.err != nil {
		return p.err
	}
	data, err := os.ReadFile(localPath)
	if err != nil {
		return err
	}
	p.key, p.body, p.contentType = key, string(data), contentType
	return nil
}

func (p *fakePublisher) Presign(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://signed.example/" + key, nil
}

type fakeRecords struct {
	videos    map[string]media.Video
	getErr    error
	updateErr error
	updates   int
}

func newFakeRecords(videos ...media.Video) *fakeRecords {
	r := &fakeRecords{videos: map[string]media.Video{}}
	for _, v := range videos {
		r.videos[v.ID] = v
	}
	return r
}

func (r *fakeRecords) Get(_ context.Context, id string) (media.Video, error) {
	if r.getErr != nil {
		return media.Video{}, r.getErr
	}
	v, ok := r.videos[id]
	if !ok {
		return media.Video{}, errNoRecord
	}
	return v, nil
}

func (r *fakeRecords) Update(_ context.Context, v media.Video) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	r.updates++
	r.videos[v.ID] = v
	return nil
}

func countFiles(dir string) int {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return -1
	}
	return len(entries)
}

type harness struct {
	dir       string
	prober    *fakeProber
	rewriter  *fakeRewriter
	publisher *fakePublisher
	records   *fakeRecords
	orch      *Orchestrator
}

func newHarness(t *testing.T, orientation media.Orientation) *harness {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	h := &harness{
		dir:       filepath.Join(t.TempDir(), "assets"),
		prober:    &fakeProber{orientation: orientation},
		rewriter:  &fakeRewriter{},
		publisher: &fakePublisher{},
		records:   newFakeRecords(media.Video{ID: "video-1", UserID: "user-1", Title: "boots"}),
	}
	orch, err := New(Config{
		AssetsDir:     h.dir,
		MaxUploadSize: 1 << 20,
		Prober:        h.prober,
		Rewriter:      h.rewriter,
		Publisher:     h.publisher,
		Records:       h.records,
		NotFound:      func(err error) bool { return errors.Is(err, errNoRecord) },
		Logger:        logger,
	})
	require.NoError(t, err)
	h.orch = orch
	return h
}

func upload(body string) Upload {
	return Upload{
		VideoID:   "video-1",
		UserID:    "user-1",
		MediaType: "video/mp4",
		Size:      int64(len(body)),
		Body:      strings.NewReader(body),
	}
}

func TestIngestSuccess(t *testing.T) {
	h := newHarness(t, media.Landscape)

	video, err := h.orch.Ingest(context.Background(), upload("mp4 bytes"))
	require.NoError(t, err)

	require.NotNil(t, video.VideoURL)
	key := *video.VideoURL
	assert.True(t, strings.HasPrefix(key, "landscape/"), key)
	assert.True(t, strings.HasSuffix(key, ".mp4"), key)
	assert.Equal(t, key, h.publisher.key)
	assert.Equal(t, "faststart:mp4 bytes", h.publisher.body)
	assert.Equal(t, "video/mp4", h.publisher.contentType)

	assert.Equal(t, 1, h.prober.filesSeen)
	assert.Equal(t, 2, h.publisher.filesSeen)

	assert.Equal(t, 1, h.records.updates)
	assert.Equal(t, key, *h.records.videos["video-1"].VideoURL)
	assert.Equal(t, "boots", h.records.videos["video-1"].Title)
	assert.Zero(t, countFiles(h.dir))
}

func TestIngestKeyPrefixFollowsOrientation(t *testing.T) {
	for _, o := range []media.Orientation{media.Landscape, media.Portrait, media.Other} {
		h := newHarness(t, o)
		video, err := h.orch.Ingest(context.Background(), upload("x"))
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(*video.VideoURL, string(o)+"/"), *video.VideoURL)
	}
}

func TestIngestProbeFailure(t *testing.T) {
	h := newHarness(t, media.Landscape)
	h.prober.err = &ffmpeg.ProbeError{Path: "x", Stderr: "moov atom not found"}

	_, err := h.orch.Ingest(context.Background(), upload("mp4 bytes"))
	var probeErr *ffmpeg.ProbeError
	require.True(t, errors.As(err, &probeErr))

	assert.Zero(t, h.rewriter.calls)
	assert.Zero(t, h.publisher.calls)
	assert.Zero(t, h.records.updates)
	assert.Zero(t, countFiles(h.dir))
}

func TestIngestRewriteFailure(t *testing.T) {
	for _, partial := range []bool{false, true} {
		h := newHarness(t, media.Portrait)
		h.rewriter.err = &ffmpeg.RewriteError{Path: "x", ExitCode: 1, Stderr: "Invalid data"}
		h.rewriter.partial = partial

		_, err := h.orch.Ingest(context.Background(), upload("mp4 bytes"))
		var rewriteErr *ffmpeg.RewriteError
		require.True(t, errors.As(err, &rewriteErr))

		assert.Zero(t, h.publisher.calls)
		assert.Zero(t, h.records.updates)
		assert.Zero(t, countFiles(h.dir), "partial=%v", partial)
	}
}

func TestIngestPublishFailure(t *testing.T) {
	h := newHarness(t, media.Landscape)
	h.publisher.err = &storage.PublishError{Op: "upload", Key: "k", Err: errors.New("access denied")}

	_, err := h.orch.Ingest(context.Background(), upload("mp4 bytes"))
	var pubErr *storage.PublishError
	require.True(t, errors.As(err, &pubErr))

	assert.Zero(t, h.records.updates)
	assert.Nil(t, h.records.videos["video-1"].VideoURL)
	assert.Zero(t, countFiles(h.dir))
}

func TestIngestRecordUpdateFailure(t *testing.T) {
	h := newHarness(t, media.Landscape)
	h.records.updateErr = errors.New("database is locked")

	_, err := h.orch.Ingest(context.Background(), upload("mp4 bytes"))
	require.Error(t, err)
	assert.ErrorIs(t, err, h.records.updateErr)

	// the published object stays where it is
	assert.Equal(t, 1, h.publisher.calls)
	assert.NotEmpty(t, h.publisher.key)
	assert.Zero(t, countFiles(h.dir))
}

func TestIngestValidation(t *testing.T) {
	cases := map[string]func(*Upload){
		"wrong type":    func(u *Upload) { u.MediaType = "video/quicktime" },
		"missing type":  func(u *Upload) { u.MediaType = "" },
		"declared size": func(u *Upload) { u.Size = 2 << 20 },
		"nil body":      func(u *Upload) { u.Body = nil },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			h := newHarness(t, media.Landscape)
			up := upload("mp4 bytes")
			mutate(&up)

			_, err := h.orch.Ingest(context.Background(), up)
			var validation *ValidationError
			require.True(t, errors.As(err, &validation), "got %v", err)
			assert.Zero(t, h.prober.calls)
			_, statErr := os.Stat(h.dir)
			assert.True(t, os.IsNotExist(statErr), "assets dir should not be touched")
		})
	}
}

func TestIngestBodyLargerThanDeclared(t *testing.T) {
	h := newHarness(t, media.Landscape)
	up := upload("")
	up.Body = bytes.NewReader(make([]byte, (1<<20)+1))
	up.Size = 10

	_, err := h.orch.Ingest(context.Background(), up)
	var validation *ValidationError
	require.True(t, errors.As(err, &validation), "got %v", err)
	assert.Zero(t, h.prober.calls)
	assert.Zero(t, countFiles(h.dir))
}

func TestIngestForbidden(t *testing.T) {
	h := newHarness(t, media.Landscape)
	up := upload("mp4 bytes")
	up.UserID = "someone-else"

	_, err := h.orch.Ingest(context.Background(), up)
	var forbidden *ForbiddenError
	require.True(t, errors.As(err, &forbidden))
	assert.Zero(t, h.prober.calls)
}

func TestIngestNotFound(t *testing.T) {
	h := newHarness(t, media.Landscape)
	up := upload("mp4 bytes")
	up.VideoID = "missing"

	_, err := h.orch.Ingest(context.Background(), up)
	var notFound *NotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.ErrorIs(t, err, errNoRecord)

	h.records.getErr = errors.New("disk I/O error")
	_, err = h.orch.Ingest(context.Background(), upload("mp4 bytes"))
	require.Error(t, err)
	assert.False(t, errors.As(err, &notFound))
}

func TestIngestRetryIssuesNewKey(t *testing.T) {
	h := newHarness(t, media.Landscape)

	first, err := h.orch.Ingest(context.Background(), upload("mp4 bytes"))
	require.NoError(t, err)
	firstKey := *first.VideoURL

	second, err := h.orch.Ingest(context.Background(), upload("mp4 bytes"))
	require.NoError(t, err)

	assert.NotEqual(t, firstKey, *second.VideoURL)
	assert.Equal(t, *second.VideoURL, *h.records.videos["video-1"].VideoURL)
	assert.Equal(t, 2, h.records.updates)
	assert.Zero(t, countFiles(h.dir))
}

func TestNewRequiresCollaborators(t *testing.T) {
	_, err := New(Config{AssetsDir: t.TempDir()})
	assert.Error(t, err)
	_, err = New(Config{})
	assert.Error(t, err)
}
