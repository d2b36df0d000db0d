package media

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/sharetube/syncroom/internal/fanout"
	"github.com/sharetube/syncroom/internal/repository/media"
)

const MessageNewVideo = "new-video"

// sniffLen covers every signature mimetype knows about.
const sniffLen = 3072

var (
	ErrUnsupportedMedia = errors.New("unsupported media type")
	ErrInvalidFilename  = errors.New("invalid filename")
)

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9-_.]`)

type iStorage interface {
	SaveVideo(context.Context, *media.SaveVideoParams) (media.Video, error)
	GetVideo(context.Context, string) (media.Video, error)
	ListVideos(context.Context) ([]media.Video, error)
}

type iCatalog interface {
	AddVideo(context.Context, media.Video) error
	GetVideo(context.Context, string) (media.Video, error)
	ListVideos(context.Context) ([]media.Video, error)
}

type iNotifier interface {
	Deliver(outs ...fanout.Outbound)
}

type iMetrics interface {
	Uploaded(ok bool)
}

type service struct {
	storage  iStorage
	catalog  iCatalog
	notifier iNotifier
	metrics  iMetrics
	logger   *slog.Logger
}

// NewService lists videos from catalog when it is not nil and from the
// storage directory otherwise.
func NewService(storage iStorage, catalog iCatalog, notifier iNotifier, metrics iMetrics, logger *slog.Logger) *service {
	return &service{
		storage:  storage,
		catalog:  catalog,
		notifier: notifier,
		metrics:  metrics,
		logger:   logger,
	}
}

func (s service) ListVideos(ctx context.Context) ([]media.Video, error) {
	if s.catalog != nil {
		return s.catalog.ListVideos(ctx)
	}

	return s.storage.ListVideos(ctx)
}

// GetVideo fails with media.ErrVideoNotFound for unknown names.
func (s service) GetVideo(ctx context.Context, name string) (media.Video, error) {
	if s.catalog != nil {
		return s.catalog.GetVideo(ctx, name)
	}

	return s.storage.GetVideo(ctx, SafeFilename(name))
}

type UploadParams struct {
	Filename  string
	Video     io.Reader
	Thumbnail io.Reader
}

func SafeFilename(filename string) string {
	return unsafeFilenameChars.ReplaceAllString(filename, "_")
}

func (s service) Upload(ctx context.Context, params *UploadParams) (media.Video, error) {
	video, err := s.upload(ctx, params)
	s.metrics.Uploaded(err == nil)
	if err != nil {
		return media.Video{}, err
	}

	s.logger.InfoContext(ctx, "video uploaded", "name", video.Name)
	s.notifier.Deliver(fanout.ToAll(MessageNewVideo, video))

	return video, nil
}

func (s service) upload(ctx context.Context, params *UploadParams) (media.Video, error) {
	filename := SafeFilename(params.Filename)
	if strings.Trim(filename, "._") == "" {
		return media.Video{}, fmt.Errorf("%q: %w", params.Filename, ErrInvalidFilename)
	}

	if !media.IsVideoFile(filename) {
		return media.Video{}, fmt.Errorf("extension of %q: %w", filename, ErrUnsupportedMedia)
	}

	videoReader, err := sniff(params.Video, isVideo)
	if err != nil {
		return media.Video{}, fmt.Errorf("video %q: %w", filename, err)
	}

	save := media.SaveVideoParams{
		Filename: filename,
		Video:    videoReader,
	}

	if params.Thumbnail != nil {
		thumbnailReader, err := sniff(params.Thumbnail, isJPEG)
		if err != nil {
			return media.Video{}, fmt.Errorf("thumbnail of %q: %w", filename, err)
		}
		save.Thumbnail = thumbnailReader
	}

	video, err := s.storage.SaveVideo(ctx, &save)
	if err != nil {
		return media.Video{}, fmt.Errorf("failed to save video: %w", err)
	}

	if s.catalog != nil {
		if err := s.catalog.AddVideo(ctx, video); err != nil {
			return media.Video{}, fmt.Errorf("failed to add video to catalog: %w", err)
		}
	}

	return video, nil
}

// sniff checks the leading bytes of r and returns a reader that still
// yields the whole stream.
func sniff(r io.Reader, accept func(*mimetype.MIME) bool) (io.Reader, error) {
	br := bufio.NewReaderSize(r, sniffLen)
	header, err := br.Peek(sniffLen)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	mtype := mimetype.Detect(header)
	if !accept(mtype) {
		return nil, fmt.Errorf("detected %s: %w", mtype.String(), ErrUnsupportedMedia)
	}

	return br, nil
}

func isVideo(mtype *mimetype.MIME) bool {
	for m := mtype; m != nil; m = m.Parent() {
		if strings.HasPrefix(m.String(), "video/") || m.Is("application/ogg") {
			return true
		}
	}

	return false
}

func isJPEG(mtype *mimetype.MIME) bool {
	return mtype.Is("image/jpeg")
}
