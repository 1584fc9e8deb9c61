package speech

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type stubSynth struct {
	calls []string
	err   error
}

func (s *stubSynth) Synthesize(_ context.Context, text string) (io.ReadCloser, error) {
	s.calls = append(s.calls, text)
	if s.err != nil {
		return nil, s.err
	}
	return io.NopCloser(strings.NewReader("mp3:" + text)), nil
}

type stubRunner struct {
	runs [][]string
}

func (r *stubRunner) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	r.runs = append(r.runs, append([]string{name}, args...))
	return nil, nil
}

func (r *stubRunner) Start(string, ...string) error { return nil }

func TestSpeakWritesAndPlays(t *testing.T) {
	t.Parallel()

	out := filepath.Join(t.TempDir(), "audio", "out.mp3")
	synth := &stubSynth{}
	runner := &stubRunner{}
	sp := NewSpeaker(synth, runner, Config{OutputPath: out, Player: []string{"ffplay", "-nodisp", "-autoexit"}})

	if err := sp.SpeakAsync(context.Background(), "hello").Wait(); err != nil {
		t.Fatalf("SpeakAsync().Wait() error = %v", err)
	}

	raw, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if string(raw) != "mp3:hello" {
		t.Fatalf("unexpected audio: %q", raw)
	}
	if len(runner.runs) != 1 || runner.runs[0][0] != "ffplay" || runner.runs[0][3] != out {
		t.Fatalf("unexpected player invocation: %v", runner.runs)
	}
}

func TestSpeakSkipsBlankText(t *testing.T) {
	t.Parallel()

	synth := &stubSynth{}
	sp := NewSpeaker(synth, nil, Config{OutputPath: filepath.Join(t.TempDir(), "o.mp3")})
	if err := sp.Speak(context.Background(), "   "); err != nil {
		t.Fatalf("Speak() error = %v", err)
	}
	if len(synth.calls) != 0 {
		t.Fatalf("expected no synthesis, got %v", synth.calls)
	}
}

func TestSpeakAsyncReportsFailure(t *testing.T) {
	t.Parallel()

	want := errors.New("quota")
	sp := NewSpeaker(&stubSynth{err: want}, nil, Config{OutputPath: filepath.Join(t.TempDir(), "o.mp3")})
	if err := sp.SpeakAsync(context.Background(), "hi").Wait(); !errors.Is(err, want) {
		t.Fatalf("Wait() = %v, want %v", err, want)
	}
}
