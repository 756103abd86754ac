package backend

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// fakeRun records ffmpeg invocations and returns scripted outputs.
type fakeRun struct {
	calls   [][]string
	outputs [][]byte
	errs    []error
}

func (f *fakeRun) run(_ context.Context, _ time.Duration, name string, args ...string) ([]byte, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	i := len(f.calls) - 1
	if i >= len(f.outputs) {
		return nil, errors.New("unexpected invocation")
	}
	return f.outputs[i], f.errs[i]
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 10, 6))); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func writeClip(t *testing.T) string {
	t.Helper()
	src := filepath.Join(t.TempDir(), "clip.mp4")
	if err := os.WriteFile(src, []byte("pretend video bytes"), 0o600); err != nil {
		t.Fatal(err)
	}
	return src
}

func hasSeekFlag(call []string) bool {
	for _, arg := range call {
		if arg == "-ss" {
			return true
		}
	}
	return false
}

func TestFFmpegRetriesFromStartOnSeekError(t *testing.T) {
	fake := &fakeRun{
		outputs: [][]byte{nil, pngBytes(t)},
		errs:    []error{errors.New("ffmpeg error: exit status 1"), nil},
	}
	b := &FFmpeg{run: fake.run}

	result, err := b.Generate(context.Background(), writeClip(t), 128)
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if result.Image == nil {
		t.Fatal("Generate() returned nil image")
	}

	if len(fake.calls) < 2 {
		t.Fatalf("expected a retry invocation, got %d calls", len(fake.calls))
	}
	if !hasSeekFlag(fake.calls[0]) {
		t.Error("first invocation should seek into the clip")
	}
	if hasSeekFlag(fake.calls[1]) {
		t.Error("retry invocation should start from the first frame")
	}
}

func TestFFmpegRetriesFromStartOnEmptySeekedOutput(t *testing.T) {
	// Seeking past EOF can exit zero with no frames emitted; that must
	// fall back to extracting from the start, not fail outright.
	fake := &fakeRun{
		outputs: [][]byte{{}, pngBytes(t)},
		errs:    []error{nil, nil},
	}
	b := &FFmpeg{run: fake.run}

	result, err := b.Generate(context.Background(), writeClip(t), 128)
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}

	if result.SourceWidth != 10 || result.SourceHeight != 6 {
		t.Errorf("source dimensions = %dx%d, want 10x6", result.SourceWidth, result.SourceHeight)
	}
	if len(fake.calls) < 2 {
		t.Fatalf("expected a retry invocation after empty seeked output, got %d calls", len(fake.calls))
	}
	if hasSeekFlag(fake.calls[1]) {
		t.Error("retry invocation should start from the first frame")
	}
}

func TestFFmpegFailsWhenBothAttemptsEmpty(t *testing.T) {
	fake := &fakeRun{
		outputs: [][]byte{{}, {}},
		errs:    []error{nil, nil},
	}
	b := &FFmpeg{run: fake.run}

	if _, err := b.Generate(context.Background(), writeClip(t), 128); err == nil {
		t.Fatal("Generate() should fail when no attempt produces output")
	}
}
