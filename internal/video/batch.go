package video

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// StreamProber abstracts stream inspection so tests can substitute probes.
type StreamProber interface {
	Probe(ctx context.Context, path string) (*ProbeInfo, error)
}

// BatchConfig wires the collaborators of a batch run.
type BatchConfig struct {
	Encoder Encoder
	Prober  StreamProber
	Out     io.Writer
}

func (c BatchConfig) withDefaults() BatchConfig {
	if c.Encoder == nil {
		c.Encoder = NewFFmpegCLI()
	}
	if c.Prober == nil {
		c.Prober = NewProber()
	}
	if c.Out == nil {
		c.Out = os.Stdout
	}
	return c
}

// BatchOptions controls one batch run over a directory.
type BatchOptions struct {
	Height    int
	KeepAudio bool
	Preset    string
	CRF       int
	Thumbs    bool
	ThumbSeek float64
}

// FileResult records the outcome for a single video.
type FileResult struct {
	Path   string
	Output string
	Err    error

	Thumb    string
	ThumbErr error
}

// BatchReport aggregates the outcomes of a batch run.
type BatchReport struct {
	Results       []FileResult
	Resized       int
	Failed        int
	ThumbsCreated int
	ThumbsFailed  int
}

// Err returns a non-nil error when any video or thumbnail failed, so
// callers can exit non-zero on partial failure.
func (r *BatchReport) Err() error {
	switch {
	case r.Failed > 0:
		return fmt.Errorf("%d of %d videos failed", r.Failed, len(r.Results))
	case r.ThumbsFailed > 0:
		return fmt.Errorf("%d thumbnails failed", r.ThumbsFailed)
	}
	return nil
}

// RunBatch resizes every video in dir into dir/output, optionally writing
// one thumbnail per source video into dir/thumbs. A file that fails does
// not stop the batch; a thumbnail is still attempted when its resize
// failed, because it is taken from the source file.
func RunBatch(ctx context.Context, dir string, opts BatchOptions, cfg BatchConfig) (*BatchReport, error) {
	cfg = cfg.withDefaults()

	videos, err := ListVideos(dir)
	if err != nil {
		return nil, err
	}
	if len(videos) == 0 {
		return nil, fmt.Errorf("no video files found in %s", dir)
	}

	outputDir := filepath.Join(dir, "output")
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	thumbsDir := ""
	if opts.Thumbs {
		thumbsDir = filepath.Join(dir, "thumbs")
		if err := os.MkdirAll(thumbsDir, 0755); err != nil {
			return nil, fmt.Errorf("create thumbnails directory: %w", err)
		}
	}

	report := &BatchReport{}
	for _, path := range videos {
		res := FileResult{Path: path}
		base := filepath.Base(path)

		if err := ctx.Err(); err != nil {
			res.Err = err
			report.Failed++
			report.Results = append(report.Results, res)
			continue
		}

		info, err := cfg.Prober.Probe(ctx, path)
		if err != nil {
			res.Err = err
			report.Failed++
			report.Results = append(report.Results, res)
			fmt.Fprintf(cfg.Out, "Error processing %s: %v\n", base, err)
			continue
		}

		res.Output = filepath.Join(outputDir, base)
		fmt.Fprintf(cfg.Out, "Processing: %s\n", base)
		if err := cfg.Encoder.Resize(ctx, path, res.Output, ResizeOptions{
			Height:    opts.Height,
			KeepAudio: opts.KeepAudio,
			Preset:    opts.Preset,
			CRF:       opts.CRF,
		}); err != nil {
			res.Err = err
			report.Failed++
			fmt.Fprintf(cfg.Out, "Error processing %s: %v\n", base, err)
		} else {
			report.Resized++
			fmt.Fprintf(cfg.Out, "Completed: %s\n", base)
		}

		if opts.Thumbs {
			stem := strings.TrimSuffix(base, filepath.Ext(base))
			res.Thumb = filepath.Join(thumbsDir, stem+".jpg")

			seek := opts.ThumbSeek
			if info.Duration > 0 && seek >= info.Duration {
				seek = 0
			}

			fmt.Fprintf(cfg.Out, "Creating thumbnail: %s\n", filepath.Base(res.Thumb))
			if err := cfg.Encoder.Thumbnail(ctx, path, res.Thumb, seek); err != nil {
				res.ThumbErr = err
				report.ThumbsFailed++
				fmt.Fprintf(cfg.Out, "Error creating thumbnail for %s: %v\n", base, err)
			} else {
				report.ThumbsCreated++
			}
		}

		report.Results = append(report.Results, res)
	}

	return report, nil
}
