package fs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/sharetube/syncroom/internal/repository/media"
)

type Config struct {
	MediaDir     string
	ThumbnailDir string
}

type repo struct {
	mediaDir     string
	thumbnailDir string
	logger       *slog.Logger
}

// NewRepo creates the media and thumbnail directories if they are missing.
func NewRepo(cfg *Config, logger *slog.Logger) (*repo, error) {
	for _, dir := range []string{cfg.MediaDir, cfg.ThumbnailDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	return &repo{
		mediaDir:     cfg.MediaDir,
		thumbnailDir: cfg.ThumbnailDir,
		logger:       logger,
	}, nil
}

func (r repo) video(filename string) media.Video {
	video := media.Video{
		Name: filename,
		URL:  media.VideoURL(filename),
	}

	if _, err := os.Stat(filepath.Join(r.thumbnailDir, media.ThumbnailName(filename))); err == nil {
		thumbnail := media.ThumbnailURL(filename)
		video.Thumbnail = &thumbnail
	}

	return video
}

func (r repo) ListVideos(ctx context.Context) ([]media.Video, error) {
	r.logger.DebugContext(ctx, "called", "funcName", "ListVideos", "dir", r.mediaDir)

	entries, err := os.ReadDir(r.mediaDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read media dir: %w", err)
	}

	videos := make([]media.Video, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !media.IsVideoFile(entry.Name()) {
			continue
		}
		videos = append(videos, r.video(entry.Name()))
	}

	sort.Slice(videos, func(i, j int) bool {
		return videos[i].Name < videos[j].Name
	})

	return videos, nil
}

func (r repo) GetVideo(ctx context.Context, filename string) (media.Video, error) {
	r.logger.DebugContext(ctx, "called", "funcName", "GetVideo", "filename", filename)

	if _, err := os.Stat(filepath.Join(r.mediaDir, filename)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return media.Video{}, media.ErrVideoNotFound
		}
		return media.Video{}, fmt.Errorf("failed to stat video: %w", err)
	}

	return r.video(filename), nil
}

// SaveVideo replaces any existing file of the same name. Files are written
// to a temporary name first so a failed upload never leaves a partial video.
func (r repo) SaveVideo(ctx context.Context, params *media.SaveVideoParams) (media.Video, error) {
	r.logger.DebugContext(ctx, "called", "funcName", "SaveVideo", "filename", params.Filename)

	if err := writeFile(r.mediaDir, params.Filename, params.Video); err != nil {
		return media.Video{}, fmt.Errorf("failed to write video: %w", err)
	}

	if params.Thumbnail != nil {
		if err := writeFile(r.thumbnailDir, media.ThumbnailName(params.Filename), params.Thumbnail); err != nil {
			return media.Video{}, fmt.Errorf("failed to write thumbnail: %w", err)
		}
	}

	return r.video(params.Filename), nil
}

func writeFile(dir, name string, src io.Reader) error {
	tmp, err := os.CreateTemp(dir, ".upload-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		return err
	}

	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), filepath.Join(dir, name))
}
