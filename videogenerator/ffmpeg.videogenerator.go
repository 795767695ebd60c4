package videogenerator

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"os/exec"
	"strings"
	"time"
)

// ffmpegWaitDelay bounds how long Close waits for ffmpeg's pipes after it
// was killed.
const ffmpegWaitDelay = 5 * time.Second

// EncodeSpec describes one ffmpeg run.
type EncodeSpec struct {
	FFmpegPath string
	Output     string
	Width      int
	Height     int
	FPS        int
	Duration   float64

	AudioPath string
	// AudioOffset is the time of the first frame at which the audio starts.
	AudioOffset float64
}

func (s EncodeSpec) isGIF() bool {
	return Config{OutputPath: s.Output}.IsGIF()
}

// Args builds the ffmpeg command line. Frames arrive on stdin as raw RGBA.
func (s EncodeSpec) Args() []string {
	args := []string{
		"-y",
		"-f", "rawvideo",
		"-pixel_format", "rgba",
		"-video_size", fmt.Sprintf("%dx%d", s.Width, s.Height),
		"-framerate", fmt.Sprintf("%d", s.FPS),
		"-i", "pipe:0",
	}

	if s.isGIF() {
		return append(args,
			"-vf", "split[a][b];[a]palettegen[p];[b][p]paletteuse",
			"-loop", "0",
			"-t", fmt.Sprintf("%f", s.Duration),
			s.Output,
		)
	}

	withAudio := s.AudioPath != ""
	if withAudio {
		if s.AudioOffset >= 0 {
			args = append(args, "-itsoffset", fmt.Sprintf("%fs", s.AudioOffset))
		} else {
			args = append(args, "-ss", fmt.Sprintf("%f", -s.AudioOffset))
		}
		args = append(args, "-i", s.AudioPath, "-map", "0:v", "-map", "1:a", "-c:a", "aac", "-b:a", "192k")
	}

	return append(args,
		"-vf", "pad=ceil(iw/2)*2:ceil(ih/2)*2",
		"-c:v", "libx264",
		"-preset", "veryfast",
		"-tune", "animation",
		"-pix_fmt", "yuv420p",
		"-t", fmt.Sprintf("%f", s.Duration),
		s.Output,
	)
}

// FindFFmpeg resolves the ffmpeg binary, preferring an explicit path.
func FindFFmpeg(path string) (string, error) {
	if path == "" {
		path = "ffmpeg"
	}
	resolved, err := exec.LookPath(path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFFmpegNotFound, err)
	}
	return resolved, nil
}

// FFmpegSink pipes frames into a running ffmpeg process.
type FFmpegSink struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stderr bytes.Buffer
	args   []string
	row    []byte
}

// NewFFmpegSink starts ffmpeg. Cancelling ctx kills it.
func NewFFmpegSink(ctx context.Context, enc EncodeSpec) (*FFmpegSink, error) {
	s := &FFmpegSink{args: enc.Args()}
	s.cmd = exec.CommandContext(ctx, enc.FFmpegPath, s.args...)
	s.cmd.Stderr = &s.stderr
	s.cmd.WaitDelay = ffmpegWaitDelay

	stdin, err := s.cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("ffmpeg stdin: %w", err)
	}
	s.stdin = stdin

	if err := s.cmd.Start(); err != nil {
		return nil, fmt.Errorf("start ffmpeg: %w", err)
	}
	return s, nil
}

func (s *FFmpegSink) WriteFrame(img *image.RGBA) error {
	b := img.Bounds()
	rowLen := b.Dx() * 4
	if img.Stride == rowLen {
		_, err := s.stdin.Write(img.Pix[:rowLen*b.Dy()])
		return s.wrap(err)
	}
	for y := 0; y < b.Dy(); y++ {
		if _, err := s.stdin.Write(img.Pix[y*img.Stride : y*img.Stride+rowLen]); err != nil {
			return s.wrap(err)
		}
	}
	return nil
}

// Close flushes stdin and waits for ffmpeg to finish writing the file.
func (s *FFmpegSink) Close() error {
	s.stdin.Close()
	return s.wrap(s.cmd.Wait())
}

func (s *FFmpegSink) wrap(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("error executing FFmpeg command: ffmpeg %s: %w\n%s",
		strings.Join(s.args, " "), err, lastLines(s.stderr.String(), 10))
}

func lastLines(s string, n int) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
