package media

import (
	"path"
	"strings"
)

const (
	MediaURLPrefix     = "/media/"
	ThumbnailURLPrefix = "/thumbnails/"
	ThumbnailExt       = ".jpg"
)

var videoExts = map[string]bool{
	".mp4":  true,
	".webm": true,
	".ogg":  true,
	".mov":  true,
	".mkv":  true,
}

func IsVideoFile(filename string) bool {
	return videoExts[strings.ToLower(path.Ext(filename))]
}

func ThumbnailName(filename string) string {
	return strings.TrimSuffix(filename, path.Ext(filename)) + ThumbnailExt
}

func VideoURL(filename string) string {
	return MediaURLPrefix + filename
}

func ThumbnailURL(filename string) string {
	return ThumbnailURLPrefix + ThumbnailName(filename)
}
