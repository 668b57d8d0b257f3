package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
)

// ErrTranscode marks a conversion failure (malformed input, unsupported
// codec). It is recoverable: the session stays usable afterwards.
var ErrTranscode = errors.New("audio transcode failed")

// Transcoder converts a complete compressed clip into raw PCM16LE mono at a
// fixed sample rate by streaming it through an ffmpeg subprocess.
type Transcoder struct {
	ffmpegPath  string
	inputFormat string
	sampleRate  int
}

func NewTranscoder(ffmpegPath, inputFormat string, sampleRate int) *Transcoder {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if inputFormat == "" {
		inputFormat = "webm"
	}
	if sampleRate <= 0 {
		sampleRate = 48000
	}
	return &Transcoder{
		ffmpegPath:  ffmpegPath,
		inputFormat: inputFormat,
		sampleRate:  sampleRate,
	}
}

func (t *Transcoder) SampleRate() int { return t.sampleRate }

// ToPCM16 decodes, resamples and re-encodes the clip. Input is fed and
// output drained concurrently, so a stream that yields zero bytes ends
// cleanly with an empty result instead of deadlocking on a full pipe.
func (t *Transcoder) ToPCM16(ctx context.Context, clip []byte) ([]byte, error) {
	cmd := exec.CommandContext(ctx, t.ffmpegPath,
		"-hide_banner", "-loglevel", "error",
		"-f", t.inputFormat, "-i", "pipe:0",
		"-f", "s16le", "-acodec", "pcm_s16le",
		"-ar", strconv.Itoa(t.sampleRate), "-ac", "1",
		"pipe:1",
	)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: stdin pipe: %v", ErrTranscode, err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: stdout pipe: %v", ErrTranscode, err)
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: start %s: %v", ErrTranscode, t.ffmpegPath, err)
	}

	writeErrCh := make(chan error, 1)
	go func() {
		_, werr := stdin.Write(clip)
		if cerr := stdin.Close(); werr == nil {
			werr = cerr
		}
		writeErrCh <- werr
	}()

	pcm, readErr := io.ReadAll(stdout)
	writeErr := <-writeErrCh
	waitErr := cmd.Wait()

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if waitErr != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = waitErr.Error()
		}
		return nil, fmt.Errorf("%w: %s", ErrTranscode, detail)
	}
	if readErr != nil {
		return nil, fmt.Errorf("%w: read output: %v", ErrTranscode, readErr)
	}
	// A broken pipe on write means ffmpeg stopped consuming; if it still
	// exited zero the output it produced is complete.
	if writeErr != nil && !errors.Is(writeErr, io.ErrClosedPipe) && !isBrokenPipe(writeErr) {
		return nil, fmt.Errorf("%w: feed input: %v", ErrTranscode, writeErr)
	}

	return pcm, nil
}

func isBrokenPipe(err error) bool {
	return err != nil && strings.Contains(err.Error(), "broken pipe")
}
