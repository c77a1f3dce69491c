package video

import (
	"context"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"gopkg.in/vansante/go-ffprobe.v2"
)

// probeFunc defines the function signature used to execute ffprobe.
type probeFunc func(ctx context.Context, path string, extraOpts ...string) (*ffprobe.ProbeData, error)

// ProbeInfo is the subset of ffprobe output the resize tool needs.
type ProbeInfo struct {
	Width    int
	Height   int
	Duration float64
}

// Prober inspects video files via ffprobe. Results are memoized so the
// resize pass and the thumbnail pass share one probe per file.
type Prober struct {
	probe probeFunc
	cache *cache.Cache
}

// NewProber creates a prober backed by the ffprobe binary.
func NewProber() *Prober {
	return &Prober{
		probe: ffprobe.ProbeURL,
		cache: cache.New(time.Hour, 10*time.Minute),
	}
}

// Probe returns stream information for the video at path. A file without
// a video stream is an error.
func (p *Prober) Probe(ctx context.Context, path string) (*ProbeInfo, error) {
	if cached, found := p.cache.Get(path); found {
		if info, ok := cached.(*ProbeInfo); ok {
			return info, nil
		}
	}

	data, err := p.probe(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("probe %s: %w", path, err)
	}

	var stream *ffprobe.Stream
	if data != nil {
		stream = data.FirstVideoStream()
	}
	if stream == nil {
		return nil, fmt.Errorf("probe %s: no video stream", path)
	}

	info := &ProbeInfo{
		Width:  stream.Width,
		Height: stream.Height,
	}
	if data.Format != nil {
		info.Duration = data.Format.DurationSeconds
	}

	p.cache.Set(path, info, cache.DefaultExpiration)
	return info, nil
}
