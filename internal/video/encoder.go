package video

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

var commandContext = exec.CommandContext

// ResizeOptions controls a single transcode.
type ResizeOptions struct {
	Height    int
	KeepAudio bool
	Preset    string
	CRF       int
}

// Encoder defines the transcoding behaviour the batch driver depends on.
type Encoder interface {
	Resize(ctx context.Context, inputPath, outputPath string, opts ResizeOptions) error
	Thumbnail(ctx context.Context, inputPath, outputPath string, seekSeconds float64) error
}

// Option configures the CLI encoder.
type Option func(*FFmpegCLI)

// WithBinary overrides the default binary name.
func WithBinary(binary string) Option {
	return func(c *FFmpegCLI) {
		if binary != "" {
			c.binary = binary
		}
	}
}

// FFmpegCLI wraps the ffmpeg command-line encoder.
type FFmpegCLI struct {
	binary string
}

// NewFFmpegCLI constructs a CLI encoder using defaults.
func NewFFmpegCLI(opts ...Option) *FFmpegCLI {
	cli := &FFmpegCLI{binary: "ffmpeg"}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

// Resize transcodes inputPath to outputPath scaled to opts.Height, keeping
// the aspect ratio. Width is forced even so libx264 accepts odd sources.
func (c *FFmpegCLI) Resize(ctx context.Context, inputPath, outputPath string, opts ResizeOptions) error {
	if inputPath == "" {
		return errors.New("input path required")
	}
	if outputPath == "" {
		return errors.New("output path required")
	}
	if opts.Height <= 0 {
		return fmt.Errorf("invalid height %d", opts.Height)
	}

	preset := opts.Preset
	if preset == "" {
		preset = "medium"
	}
	crf := opts.CRF
	if crf <= 0 {
		crf = 23
	}

	args := []string{
		"-y",
		"-i", inputPath,
		"-c:v", "libx264",
		"-preset", preset,
		"-crf", strconv.Itoa(crf),
		"-vf", fmt.Sprintf("scale=-2:%d", opts.Height),
	}
	if opts.KeepAudio {
		args = append(args, "-c:a", "aac", "-b:a", "128k")
	} else {
		args = append(args, "-an")
	}
	args = append(args, outputPath)

	return c.run(ctx, "resize", args)
}

// Thumbnail extracts a single frame from inputPath into outputPath. Seeking
// happens before the input is opened so long files open fast.
func (c *FFmpegCLI) Thumbnail(ctx context.Context, inputPath, outputPath string, seekSeconds float64) error {
	if inputPath == "" {
		return errors.New("input path required")
	}
	if outputPath == "" {
		return errors.New("output path required")
	}
	if seekSeconds < 0 {
		seekSeconds = 0
	}

	args := []string{
		"-y",
		"-ss", strconv.FormatFloat(seekSeconds, 'f', -1, 64),
		"-i", inputPath,
		"-vframes", "1",
		"-vf", "thumbnail",
		outputPath,
	}

	return c.run(ctx, "thumbnail", args)
}

func (c *FFmpegCLI) run(ctx context.Context, op string, args []string) error {
	cmd := commandContext(ctx, c.binary, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg %s failed: %w: %s", op, err, lastLine(stderr.String()))
	}
	return nil
}

// lastLine extracts the final non-empty line of ffmpeg's stderr, which is
// where it reports the actual failure reason.
func lastLine(output string) string {
	lines := strings.Split(strings.TrimSpace(output), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return "no output"
}

var _ Encoder = (*FFmpegCLI)(nil)
