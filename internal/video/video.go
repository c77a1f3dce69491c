// Package video implements batch resizing and thumbnail extraction for
// local video files by shelling out to ffmpeg. Discovery is non-recursive
// and extension based; probing goes through ffprobe so files without a
// video stream are rejected before an encode is attempted.
package video

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
)

var (
	// videoRe matches the container extensions handled by the resize tool.
	videoRe = regexp.MustCompile(`(?i)\.(mp4|avi|mkv|mov|flv|wmv|webm|m4v|mpeg|mpg)$`)
)

// IsVideo reports whether name carries a recognized video extension.
func IsVideo(name string) bool { return videoRe.MatchString(name) }

// ListVideos returns the video files directly inside dir, sorted by name.
func ListVideos(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("read directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("read directory %s: not a directory", dir)
	}

	des, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read directory %s: %w", dir, err)
	}

	videos := make([]string, 0, len(des))
	for _, de := range des {
		if !de.Type().IsRegular() {
			continue
		}
		if IsVideo(de.Name()) {
			videos = append(videos, filepath.Join(dir, de.Name()))
		}
	}
	sort.Strings(videos)
	return videos, nil
}
