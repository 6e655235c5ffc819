package utils

import (
	"bytes"
	"fmt"
	"image/jpeg"
	"os"
	"path/filepath"
	"strconv"

	"github.com/disintegration/imaging"
	"github.com/goccy/go-json"
	ffmpeg "github.com/u2takey/ffmpeg-go"
)

const (
	ThumbnailWidth = 640
	AvatarWidth    = 320
)

// MediaProcessor inspects uploaded videos with ffmpeg and resizes images.
type MediaProcessor struct {
	tempDir string
}

func NewMediaProcessor() *MediaProcessor {
	return &MediaProcessor{tempDir: os.TempDir()}
}

type probeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// ProbeDuration returns the container duration of the video in seconds.
func (p *MediaProcessor) ProbeDuration(data []byte, filename string) (float64, error) {
	path, cleanup, err := p.spool(data, filename)
	if err != nil {
		return 0, err
	}
	defer cleanup()

	out, err := ffmpeg.Probe(path)
	if err != nil {
		return 0, fmt.Errorf("ffprobe: %w", err)
	}
	var probe probeOutput
	if err := json.Unmarshal([]byte(out), &probe); err != nil {
		return 0, fmt.Errorf("decode ffprobe output: %w", err)
	}
	if probe.Format.Duration == "" {
		return 0, nil
	}
	return strconv.ParseFloat(probe.Format.Duration, 64)
}

// ExtractThumbnail grabs the frame at one second and returns it as a resized JPEG.
func (p *MediaProcessor) ExtractThumbnail(data []byte, filename string) ([]byte, error) {
	path, cleanup, err := p.spool(data, filename)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	frame, err := os.CreateTemp(p.tempDir, "thumb-*.jpg")
	if err != nil {
		return nil, err
	}
	frame.Close()
	defer os.Remove(frame.Name())

	err = ffmpeg.Input(path).
		Output(frame.Name(), ffmpeg.KwArgs{"vframes": 1, "ss": "00:00:01"}).
		OverWriteOutput().
		Run()
	if err != nil {
		return nil, fmt.Errorf("failed to generate thumbnail: %w", err)
	}

	raw, err := os.ReadFile(frame.Name())
	if err != nil {
		return nil, fmt.Errorf("failed to read thumbnail file: %w", err)
	}
	return ResizeJPEG(raw, ThumbnailWidth)
}

// ResizeJPEG decodes any supported image, scales it to width keeping the
// aspect ratio and re-encodes it as JPEG. Narrower images keep their size.
func ResizeJPEG(data []byte, width int) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	if img.Bounds().Dx() > width {
		img = imaging.Resize(img, width, 0, imaging.Lanczos)
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 85}); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}

// spool writes data to a temp file because ffmpeg reads from paths.
func (p *MediaProcessor) spool(data []byte, filename string) (string, func(), error) {
	f, err := os.CreateTemp(p.tempDir, "upload-*"+filepath.Ext(filename))
	if err != nil {
		return "", nil, err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", nil, err
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", nil, err
	}
	return f.Name(), func() { os.Remove(f.Name()) }, nil
}
