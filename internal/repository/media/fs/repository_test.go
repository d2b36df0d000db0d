package fs

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sharetube/syncroom/internal/repository/media"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) (*repo, *Config) {
	t.Helper()
	root := t.TempDir()
	cfg := &Config{
		MediaDir:     filepath.Join(root, "media"),
		ThumbnailDir: filepath.Join(root, "thumbnails"),
	}
	r, err := NewRepo(cfg, slog.Default())
	require.NoError(t, err)
	return r, cfg
}

func TestListVideosFiltersAndLinksThumbnails(t *testing.T) {
	r, cfg := newTestRepo(t)
	for _, name := range []string{"b.webm", "a.mp4", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(cfg.MediaDir, name), []byte("x"), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(cfg.MediaDir, "dir.mp4"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(cfg.ThumbnailDir, "a.jpg"), []byte("x"), 0o644))

	videos, err := r.ListVideos(context.Background())
	require.NoError(t, err)
	require.Len(t, videos, 2)

	assert.Equal(t, "a.mp4", videos[0].Name)
	assert.Equal(t, "/media/a.mp4", videos[0].URL)
	require.NotNil(t, videos[0].Thumbnail)
	assert.Equal(t, "/thumbnails/a.jpg", *videos[0].Thumbnail)

	assert.Equal(t, "b.webm", videos[1].Name)
	assert.Nil(t, videos[1].Thumbnail)
}

func TestSaveVideo(t *testing.T) {
	r, cfg := newTestRepo(t)
	ctx := context.Background()

	video, err := r.SaveVideo(ctx, &media.SaveVideoParams{
		Filename:  "clip.mp4",
		Video:     strings.NewReader("video bytes"),
		Thumbnail: strings.NewReader("jpeg bytes"),
	})
	require.NoError(t, err)
	assert.Equal(t, "/media/clip.mp4", video.URL)
	require.NotNil(t, video.Thumbnail)

	data, err := os.ReadFile(filepath.Join(cfg.MediaDir, "clip.mp4"))
	require.NoError(t, err)
	assert.Equal(t, "video bytes", string(data))

	entries, err := os.ReadDir(cfg.MediaDir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files are cleaned up")

	got, err := r.GetVideo(ctx, "clip.mp4")
	require.NoError(t, err)
	assert.Equal(t, video, got)

	_, err = r.GetVideo(ctx, "missing.mp4")
	assert.ErrorIs(t, err, media.ErrVideoNotFound)
}
