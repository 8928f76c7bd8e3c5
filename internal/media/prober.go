// Package media inspects files on disk before they are registered as assets.
package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io/fs"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	// Decoders registered for image.DecodeConfig.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"icut-go/internal/config"
	"icut-go/internal/editor"
	"icut-go/internal/timeline"
)

var audioExtensions = map[string]bool{
	"mp3": true, "wav": true, "aac": true, "flac": true, "ogg": true, "m4a": true, "opus": true,
}

// runFunc runs an external command and returns its stdout.
type runFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

// Prober reads media metadata. Image dimensions come from the image header.
// Durations and video dimensions come from ffprobe when it is installed;
// without it, time-based media is registered with its kind and size only.
type Prober struct {
	ffprobePath string
	timeout     time.Duration
	run         runFunc
}

var _ editor.Prober = (*Prober)(nil)

// NewProber creates a Prober from the [media] config section.
func NewProber(cfg config.MediaConfig) *Prober {
	path := cfg.FFprobePath
	if path == "" {
		path = "ffprobe"
	}
	timeout := cfg.ProbeTimeout.Duration
	if timeout <= 0 {
		timeout = config.DefaultProbeTimeout
	}
	return &Prober{ffprobePath: path, timeout: timeout, run: runCommand}
}

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%s: %w (stderr: %s)", filepath.Base(name), err, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}

// Probe stats path and reads whatever metadata its kind carries. Missing or
// unreadable files fail with timeline.ErrIO. Directories, special files and
// files whose content does not decode fail with timeline.ErrUnsupportedMedia.
func (p *Prober) Probe(ctx context.Context, path string) (*timeline.MediaInfo, error) {
	const op = "probe"

	info, err := os.Stat(path)
	if err != nil {
		return nil, timeline.Wrap(timeline.ErrIO, op, err)
	}
	if !info.Mode().IsRegular() {
		return nil, &timeline.Error{Kind: timeline.ErrUnsupportedMedia, Op: op, Msg: fmt.Sprintf("%s is not a regular file", path)}
	}

	result := &timeline.MediaInfo{
		Kind:      kindOf(path),
		SizeBytes: info.Size(),
	}

	switch result.Kind {
	case timeline.KindImage:
		err = p.probeImage(path, result)
	case timeline.KindVideo, timeline.KindAudio:
		err = p.probeStreams(ctx, path, result)
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

func kindOf(path string) timeline.Kind {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if audioExtensions[ext] {
		return timeline.KindAudio
	}
	return timeline.AssetKindOf(path)
}

func (p *Prober) probeImage(path string, result *timeline.MediaInfo) error {
	// No registered decoder reads svg; it keeps its kind without dimensions.
	if strings.EqualFold(filepath.Ext(path), ".svg") {
		return nil
	}

	f, err := os.Open(path)
	if err != nil {
		return timeline.Wrap(timeline.ErrIO, "probe image", err)
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return timeline.Wrap(timeline.ErrUnsupportedMedia, "probe image", fmt.Errorf("decoding %s: %w", filepath.Base(path), err))
	}
	w, h := int64(cfg.Width), int64(cfg.Height)
	result.Width, result.Height = &w, &h
	return nil
}

func (p *Prober) probeStreams(ctx context.Context, path string, result *timeline.MediaInfo) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	out, err := p.run(ctx, p.ffprobePath,
		"-v", "error",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	)
	switch {
	case err == nil:
	case errors.Is(err, exec.ErrNotFound), errors.Is(err, fs.ErrNotExist):
		return nil
	case ctx.Err() != nil:
		return timeline.Wrap(timeline.ErrIO, "probe streams", fmt.Errorf("ffprobe timed out after %s: %w", p.timeout, ctx.Err()))
	default:
		return timeline.Wrap(timeline.ErrUnsupportedMedia, "probe streams", err)
	}

	probe, err := parseFFprobe(out)
	if err != nil {
		return timeline.Wrap(timeline.ErrUnsupportedMedia, "probe streams", err)
	}
	applyFFprobe(probe, result)
	return nil
}

// applyFFprobe copies the probed duration and the first video stream's
// dimensions. A video container without a video stream is audio.
func applyFFprobe(probe *ffprobeOutput, result *timeline.MediaInfo) {
	if ms, ok := probe.durationMs(); ok {
		result.DurationMs = &ms
	}

	video := probe.firstStream("video")
	if video == nil {
		if result.Kind == timeline.KindVideo && probe.firstStream("audio") != nil {
			result.Kind = timeline.KindAudio
		}
		return
	}
	if result.Kind == timeline.KindVideo && video.Width > 0 && video.Height > 0 {
		w, h := video.Width, video.Height
		result.Width, result.Height = &w, &h
	}
}

func secondsToMs(s float64) int64 {
	return int64(math.Round(s * 1000))
}
