package audio

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"
)

// fakeFFmpeg writes a shell script standing in for the real binary so the
// pipe plumbing can be tested without a codec install.
func fakeFFmpeg(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake ffmpeg scripts require a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "ffmpeg")
	script := "#!/bin/sh\n" + body + "\n"
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("write fake ffmpeg: %v", err)
	}
	return path
}

func TestToPCM16PassesBytesThrough(t *testing.T) {
	tr := NewTranscoder(fakeFFmpeg(t, "cat"), "webm", 48000)

	in := []byte{1, 2, 3, 4, 5, 6}
	out, err := tr.ToPCM16(context.Background(), in)
	if err != nil {
		t.Fatalf("ToPCM16() error = %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("output length = %d, want %d", len(out), len(in))
	}
}

func TestToPCM16EmptyOutputIsNotAnError(t *testing.T) {
	// Zero bytes produced with a clean exit: valid empty result, no hang.
	tr := NewTranscoder(fakeFFmpeg(t, "cat > /dev/null"), "webm", 48000)

	done := make(chan struct{})
	var out []byte
	var err error
	go func() {
		defer close(done)
		out, err = tr.ToPCM16(context.Background(), []byte("silence"))
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatalf("ToPCM16() deadlocked on empty output")
	}
	if err != nil {
		t.Fatalf("ToPCM16() error = %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("output length = %d, want 0", len(out))
	}
}

func TestToPCM16FailureIsRecoverable(t *testing.T) {
	tr := NewTranscoder(fakeFFmpeg(t, "echo 'Invalid data found' >&2; exit 1"), "webm", 48000)

	_, err := tr.ToPCM16(context.Background(), []byte("not audio"))
	if !errors.Is(err, ErrTranscode) {
		t.Fatalf("ToPCM16() error = %v, want ErrTranscode", err)
	}
}

func TestToPCM16HonorsCancellation(t *testing.T) {
	tr := NewTranscoder(fakeFFmpeg(t, "sleep 30"), "webm", 48000)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := tr.ToPCM16(ctx, []byte("clip"))
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("ToPCM16() error = %v, want context.DeadlineExceeded", err)
	}
}

func TestEncodePCM16WAVHeader(t *testing.T) {
	pcm := make([]byte, 96)
	wav, err := EncodePCM16WAV(pcm, 48000)
	if err != nil {
		t.Fatalf("EncodePCM16WAV() error = %v", err)
	}
	if len(wav) != 44+len(pcm) {
		t.Fatalf("wav length = %d, want %d", len(wav), 44+len(pcm))
	}
	if string(wav[0:4]) != "RIFF" || string(wav[8:12]) != "WAVE" {
		t.Fatalf("missing RIFF/WAVE markers: % x", wav[:12])
	}
	if string(wav[36:40]) != "data" {
		t.Fatalf("missing data chunk marker: % x", wav[36:40])
	}
}
