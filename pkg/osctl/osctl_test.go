package osctl

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

type recordingRunner struct {
	runs   [][]string
	starts [][]string
	err    error
}

func (r *recordingRunner) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	r.runs = append(r.runs, append([]string{name}, args...))
	return nil, r.err
}

func (r *recordingRunner) Start(name string, args ...string) error {
	r.starts = append(r.starts, append([]string{name}, args...))
	return r.err
}

func TestPowerCommandPerPlatform(t *testing.T) {
	t.Parallel()

	c := New(WithGOOS("linux"))
	got, err := c.PowerCommand(PowerSleep)
	if err != nil {
		t.Fatalf("PowerCommand() error = %v", err)
	}
	if !reflect.DeepEqual(got, []string{"systemctl", "suspend"}) {
		t.Fatalf("unexpected command: %v", got)
	}

	if _, err := New(WithGOOS("plan9")).PowerCommand(PowerLock); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
	if _, err := c.PowerCommand("hibernate"); err == nil {
		t.Fatal("expected unknown action error")
	}
}

func TestPowerWaitsForDelayThenRuns(t *testing.T) {
	t.Parallel()

	runner := &recordingRunner{}
	c := New(WithGOOS("windows"), WithRunner(runner))
	var slept time.Duration
	c.sleep = func(_ context.Context, d time.Duration) error {
		slept = d
		return nil
	}

	if err := c.Power(context.Background(), PowerLock, 3*time.Second); err != nil {
		t.Fatalf("Power() error = %v", err)
	}
	if slept != 3*time.Second {
		t.Fatalf("expected 3s delay, got %s", slept)
	}
	if len(runner.runs) != 1 || runner.runs[0][0] != "rundll32.exe" {
		t.Fatalf("unexpected runs: %v", runner.runs)
	}
}

func TestVolumeCommandClamps(t *testing.T) {
	t.Parallel()

	got, err := New(WithGOOS("linux")).VolumeCommand(140)
	if err != nil {
		t.Fatalf("VolumeCommand() error = %v", err)
	}
	if got[len(got)-1] != "100%" {
		t.Fatalf("expected clamp to 100%%, got %v", got)
	}

	got, err = New(WithGOOS("windows")).VolumeCommand(50)
	if err != nil {
		t.Fatalf("VolumeCommand() error = %v", err)
	}
	if got[2] != "32767" {
		t.Fatalf("unexpected windows scale: %v", got)
	}
}

func TestOpenURLUsesPlatformHandler(t *testing.T) {
	t.Parallel()

	runner := &recordingRunner{}
	c := New(WithGOOS("darwin"), WithRunner(runner))
	if err := c.OpenURL("https://example.com", ""); err != nil {
		t.Fatalf("OpenURL() error = %v", err)
	}
	if err := c.OpenURL("https://example.com", "/usr/bin/firefox"); err != nil {
		t.Fatalf("OpenURL() error = %v", err)
	}
	want := [][]string{
		{"open", "https://example.com"},
		{"/usr/bin/firefox", "https://example.com"},
	}
	if !reflect.DeepEqual(runner.starts, want) {
		t.Fatalf("starts = %v, want %v", runner.starts, want)
	}
}

func TestIsRunningFindsCurrentProcess(t *testing.T) {
	t.Parallel()

	// Process names are truncated to 15 bytes on linux.
	name := filepath.Base(os.Args[0])
	if len(name) > 15 {
		name = name[:15]
	}

	running, err := New().IsRunning(name)
	if err != nil {
		t.Fatalf("IsRunning() error = %v", err)
	}
	if !running {
		t.Fatalf("expected %q to be running", name)
	}

	if running, _ := IsRunning("   "); running {
		t.Fatal("blank name must not match")
	}
}
