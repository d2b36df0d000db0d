package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sharetube/syncroom/internal/repository/media"
)

const catalogKey = "media:videos"

type repo struct {
	rc     *redis.Client
	logger *slog.Logger
}

func NewRepo(rc *redis.Client, logger *slog.Logger) *repo {
	return &repo{
		rc:     rc,
		logger: logger,
	}
}

type videoRecord struct {
	Name      string `redis:"name"`
	URL       string `redis:"url"`
	Thumbnail string `redis:"thumbnail"`
}

func (r repo) getVideoKey(name string) string {
	return "media:video:" + name
}

func (v videoRecord) toVideo() media.Video {
	video := media.Video{
		Name: v.Name,
		URL:  v.URL,
	}
	if v.Thumbnail != "" {
		thumbnail := v.Thumbnail
		video.Thumbnail = &thumbnail
	}

	return video
}

// AddVideo indexes the video, keeping the first upload time for ordering.
func (r repo) AddVideo(ctx context.Context, video media.Video) error {
	r.logger.DebugContext(ctx, "called", "funcName", "AddVideo", "name", video.Name)

	record := videoRecord{
		Name: video.Name,
		URL:  video.URL,
	}
	if video.Thumbnail != nil {
		record.Thumbnail = *video.Thumbnail
	}

	pipe := r.rc.TxPipeline()
	pipe.HSet(ctx, r.getVideoKey(video.Name), record)
	pipe.ZAddNX(ctx, catalogKey, redis.Z{
		Score:  float64(time.Now().UnixMilli()),
		Member: video.Name,
	})

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to add video: %w", err)
	}

	return nil
}

func (r repo) GetVideo(ctx context.Context, name string) (media.Video, error) {
	r.logger.DebugContext(ctx, "called", "funcName", "GetVideo", "name", name)

	var record videoRecord
	if err := r.rc.HGetAll(ctx, r.getVideoKey(name)).Scan(&record); err != nil {
		return media.Video{}, fmt.Errorf("failed to get video: %w", err)
	}

	if record.URL == "" {
		return media.Video{}, media.ErrVideoNotFound
	}

	return record.toVideo(), nil
}

func (r repo) ListVideos(ctx context.Context) ([]media.Video, error) {
	r.logger.DebugContext(ctx, "called", "funcName", "ListVideos")

	names, err := r.rc.ZRange(ctx, catalogKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list video names: %w", err)
	}

	pipe := r.rc.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, 0, len(names))
	for _, name := range names {
		cmds = append(cmds, pipe.HGetAll(ctx, r.getVideoKey(name)))
	}

	if len(cmds) > 0 {
		if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("failed to get videos: %w", err)
		}
	}

	videos := make([]media.Video, 0, len(names))
	for _, cmd := range cmds {
		var record videoRecord
		if err := cmd.Scan(&record); err != nil {
			return nil, fmt.Errorf("failed to scan video: %w", err)
		}
		if record.URL == "" {
			continue
		}
		videos = append(videos, record.toVideo())
	}

	return videos, nil
}

func (r repo) RemoveVideo(ctx context.Context, name string) error {
	r.logger.DebugContext(ctx, "called", "funcName", "RemoveVideo", "name", name)

	pipe := r.rc.TxPipeline()
	pipe.Del(ctx, r.getVideoKey(name))
	removed := pipe.ZRem(ctx, catalogKey, name)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to remove video: %w", err)
	}

	if removed.Val() == 0 {
		return media.ErrVideoNotFound
	}

	return nil
}
