package app

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"live_stream_service/internal/video/domain"
	"live_stream_service/pkg/logger"

	"go.uber.org/zap"
)

// TranscodeToHLS converts inputPath to a single-rendition HLS stream in
// outputDir: one index.m3u8 playlist plus numbered TS segments. timeout
// bounds the ffmpeg run; zero means no bound.
func TranscodeToHLS(ctx context.Context, inputPath, outputDir string, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	outputPlaylist := filepath.Join(outputDir, domain.ManifestFileName)
	cmdArgs := []string{
		"-y",
		"-i", inputPath,
		"-codec:v", "libx264",
		"-codec:a", "aac",
		"-hls_time", "6",
		"-hls_playlist_type", "vod",
		"-hls_segment_filename", filepath.Join(outputDir, "segment_%03d.ts"),
		outputPlaylist,
	}
	logger.Log.Info("run FFmpeg HLS", zap.Strings("args", cmdArgs))
	cmd := exec.CommandContext(ctx, "ffmpeg", cmdArgs...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("FFmpeg HLS error: %v, output: %s", err, string(output))
	}

	// exit code 0 alone is not success, the playlist must exist
	if _, err := os.Stat(outputPlaylist); err != nil {
		return fmt.Errorf("FFmpeg HLS produced no playlist: %v", err)
	}
	return nil
}
