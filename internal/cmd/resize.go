package cmd

import (
	"fmt"
	"path/filepath"
	"strconv"

	"mediabatch/internal/video"

	"github.com/spf13/cobra"
)

var resizeCmd = &cobra.Command{
	Use:   "resize <directory> <height>",
	Short: "Resize every video in a directory with ffmpeg",
	Long: `Resize every video file directly inside a directory to the given height,
keeping the aspect ratio. Resized copies are written to DIR/output under
their original names; with --thumbs one JPG frame per source video is
written to DIR/thumbs.

Encoding runs through the external ffmpeg binary configured in the config
file. A file that fails does not stop the batch; the command exits non-zero
when any file failed.`,
	Args: cobra.ExactArgs(2),
	RunE: runResizeCommand,
}

var (
	resizeRemoveAudio bool
	resizeThumbs      bool
	resizePreset      string
	resizeCRF         int
	resizeThumbSeek   float64
)

func runResizeCommand(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	height, err := parseHeight(args[1])
	if err != nil {
		return err
	}

	dir, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("failed to resolve directory: %w", err)
	}

	if !cmd.Flags().Changed("preset") {
		resizePreset = cfg.EncodePreset
	}
	if !cmd.Flags().Changed("crf") {
		resizeCRF = cfg.EncodeCRF
	}
	if !cmd.Flags().Changed("seek") {
		resizeThumbSeek = cfg.ThumbSeekSeconds
	}

	report, err := video.RunBatch(cmd.Context(), dir, video.BatchOptions{
		Height:    height,
		KeepAudio: !resizeRemoveAudio,
		Preset:    resizePreset,
		CRF:       resizeCRF,
		Thumbs:    resizeThumbs,
		ThumbSeek: resizeThumbSeek,
	}, video.BatchConfig{
		Encoder: video.NewFFmpegCLI(video.WithBinary(cfg.FFmpegBinary)),
		Out:     cmd.OutOrStdout(),
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "\nResized: %d, Failed: %d\n", report.Resized, report.Failed)
	if resizeThumbs {
		fmt.Fprintf(cmd.OutOrStdout(), "Thumbnails created: %d, failed: %d\n", report.ThumbsCreated, report.ThumbsFailed)
	}
	return report.Err()
}

func parseHeight(arg string) (int, error) {
	height, err := strconv.Atoi(arg)
	if err != nil || height <= 0 {
		return 0, fmt.Errorf("invalid height %q: must be a positive integer", arg)
	}
	return height, nil
}

func init() {
	resizeCmd.Flags().BoolVar(&resizeRemoveAudio, "remove-audio", false, "Strip the audio track from resized videos")
	resizeCmd.Flags().BoolVar(&resizeThumbs, "thumbs", false, "Also write one JPG thumbnail per source video")
	resizeCmd.Flags().StringVar(&resizePreset, "preset", "medium", "x264 encoder preset")
	resizeCmd.Flags().IntVar(&resizeCRF, "crf", 23, "x264 constant rate factor")
	resizeCmd.Flags().Float64Var(&resizeThumbSeek, "seek", 1, "Seconds into each video to take the thumbnail frame")
	rootCmd.AddCommand(resizeCmd)
}
