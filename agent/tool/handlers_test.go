package tool

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	contractx "github.com/tanpawarit/ultra-assistant/agent/contract"
	"github.com/tanpawarit/ultra-assistant/agent/apps"
	"github.com/tanpawarit/ultra-assistant/agent/media"
	"github.com/tanpawarit/ultra-assistant/agent/state"
	"github.com/tanpawarit/ultra-assistant/pkg/osctl"
	"github.com/tanpawarit/ultra-assistant/pkg/weather"
	"github.com/tanpawarit/ultra-assistant/pkg/websearch"
)

type fakeMemory struct {
	records []contractx.MemoryRecord
	now     time.Time
}

func (m *fakeMemory) Records(context.Context) ([]contractx.MemoryRecord, error) {
	return m.records, nil
}

func (m *fakeMemory) Store(_ context.Context, data string) (contractx.MemoryRecord, error) {
	rec := contractx.MemoryRecord{Data: data, StoreTime: m.now}
	m.records = append(m.records, rec)
	return rec, nil
}

func (m *fakeMemory) Retrieve(context.Context) ([]contractx.MemoryRecord, error) {
	for i := range m.records {
		rt := m.now
		m.records[i].RetrieveTime = &rt
	}
	return m.records, nil
}

func (m *fakeMemory) Clear(context.Context) error {
	m.records = nil
	return nil
}

type fakeSystem struct {
	volume   int
	power    []osctl.PowerAction
	urls     [][2]string
	launched [][]string
	failApp  string
	running  map[string]bool
}

func (s *fakeSystem) IsRunning(name string) (bool, error) {
	return s.running[name], nil
}

func (s *fakeSystem) SetVolume(_ context.Context, level int) error {
	s.volume = level
	return nil
}

func (s *fakeSystem) Power(_ context.Context, action osctl.PowerAction, _ time.Duration) error {
	if action == "hibernate" {
		return errors.New("unknown power action")
	}
	s.power = append(s.power, action)
	return nil
}

func (s *fakeSystem) OpenURL(url string, exe string) error {
	s.urls = append(s.urls, [2]string{url, exe})
	return nil
}

func (s *fakeSystem) Launch(path string, name string, args ...string) error {
	if name == s.failApp {
		return errors.New("not installed")
	}
	s.launched = append(s.launched, append([]string{path, name}, args...))
	return nil
}

type fakeLocator map[string]string

func (l fakeLocator) Find(name string) (string, bool) {
	p, ok := l[name]
	return p, ok
}

type fakeMedia struct {
	volume int
	toggle []media.ToggleAction
}

func (m *fakeMedia) Play(_ context.Context, query string) (string, error) {
	if query == "unknown" {
		return "", media.ErrTrackNotFound
	}
	return "Numb", nil
}

func (m *fakeMedia) Toggle(_ context.Context, action media.ToggleAction) (string, error) {
	m.toggle = append(m.toggle, action)
	return "Okay, it's paused.", nil
}

func (m *fakeMedia) SetVolume(_ context.Context, percent int) error {
	m.volume = percent
	return nil
}

type fakeWeather struct{}

func (fakeWeather) Current(_ context.Context, location, _ string) (weather.Report, error) {
	if location == "Atlantis" {
		return weather.Report{}, errors.New("no matching location")
	}
	return weather.Report{Location: location, Temperature: 70, Unit: weather.Fahrenheit}, nil
}

type fakeSearch struct{}

func (fakeSearch) Search(_ context.Context, q string) (websearch.Result, error) {
	return websearch.Result{DirectAnswer: "answer to " + q}, nil
}

func newTestExecutor(t *testing.T, deps Dependencies) *Executor {
	t.Helper()
	reg, err := Build(deps)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	return NewExecutor(reg)
}

func run(exec *Executor, name Name, args map[string]any) contractx.ToolOutcome {
	return exec.Execute(context.Background(), contractx.ToolInvocationRequest{ID: "call", Name: string(name), Arguments: args})
}

func TestPersonalMemoryLifecycle(t *testing.T) {
	t.Parallel()

	mem := &fakeMemory{now: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}
	exec := newTestExecutor(t, Dependencies{Memory: mem})

	out := run(exec, PersonalMemory, map[string]any{"operation": "store", "data": "likes jazz"})
	if out.Result.Status != contractx.ToolStatusSuccess || out.Result.Message != "Data stored successfully on 2026-01-02 03:04:05" {
		t.Fatalf("store result = %+v", out.Result)
	}

	out = run(exec, PersonalMemory, map[string]any{"operation": "retrieve"})
	items, ok := out.Result.Payload.([]memoryItem)
	if !ok || len(items) != 1 || items[0].RetrieveTime != "2026-01-02 03:04:05" {
		t.Fatalf("retrieve payload = %#v", out.Result.Payload)
	}

	if out = run(exec, PersonalMemory, map[string]any{"operation": "store"}); out.Result.Status != contractx.ToolStatusError {
		t.Fatalf("expected store without data to fail, got %+v", out.Result)
	}

	out = run(exec, PersonalMemory, map[string]any{"operation": "clear"})
	if out.Result.Status != contractx.ToolStatusSuccess || len(mem.records) != 0 {
		t.Fatalf("clear result = %+v, records = %v", out.Result, mem.records)
	}

	if out = run(exec, PersonalMemory, map[string]any{"operation": "forget"}); out.Result.Status != contractx.ToolStatusError {
		t.Fatalf("expected enum rejection, got %+v", out.Result)
	}
}

func TestDatetimeModes(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 10, 18, 14, 5, 9, 0, time.UTC)
	exec := newTestExecutor(t, Dependencies{Now: func() time.Time { return now }})

	cases := map[string]string{
		"date":        "2026-10-18",
		"time":        "02:05:09 PM",
		"date & time": "2026-10-18 02:05:09 PM",
	}
	for mode, want := range cases {
		out := run(exec, GetCurrentDatetime, map[string]any{"mode": mode})
		got, _ := out.Result.Payload.(map[string]string)
		if got["datetime"] != want {
			t.Fatalf("mode %q = %v, want %q", mode, got, want)
		}
	}
	out := run(exec, GetCurrentDatetime, nil)
	if got, _ := out.Result.Payload.(map[string]string); got["datetime"] != cases["date & time"] {
		t.Fatalf("default mode = %v", got)
	}
}

func TestSystemTools(t *testing.T) {
	t.Parallel()

	sys := &fakeSystem{}
	exec := newTestExecutor(t, Dependencies{System: sys, Locator: fakeLocator{"firefox": "/usr/bin/firefox"}})

	if out := run(exec, SetSystemVolume, map[string]any{"volume_level": float64(150)}); out.Result.Status != contractx.ToolStatusSuccess || sys.volume != 100 {
		t.Fatalf("volume result = %+v, volume = %d", out.Result, sys.volume)
	}
	if out := run(exec, ControlPC, map[string]any{"action": "lock", "delay": float64(0)}); out.Result.Status != contractx.ToolStatusSuccess {
		t.Fatalf("control_pc result = %+v", out.Result)
	}
	if !reflect.DeepEqual(sys.power, []osctl.PowerAction{osctl.PowerLock}) {
		t.Fatalf("power calls = %v", sys.power)
	}

	run(exec, OpenBrowser, map[string]any{"url": "example.com"})
	run(exec, OpenBrowser, map[string]any{"url": "https://go.dev", "browser": "firefox"})
	want := [][2]string{{"https://example.com", ""}, {"https://go.dev", "/usr/bin/firefox"}}
	if !reflect.DeepEqual(sys.urls, want) {
		t.Fatalf("urls = %v, want %v", sys.urls, want)
	}

	out := run(exec, OpenApplication, map[string]any{"app_name": "firefox", "arguments": "--private-window"})
	if !out.Result.Silent || out.Result.Status != contractx.ToolStatusSuccess {
		t.Fatalf("open_application result = %+v", out.Result)
	}
	if !reflect.DeepEqual(sys.launched, [][]string{{"/usr/bin/firefox", "firefox", "--private-window"}}) {
		t.Fatalf("launched = %v", sys.launched)
	}
}

func TestOpenSkipsRunningApplications(t *testing.T) {
	t.Parallel()

	docs := newDocs(t)
	mgr, err := apps.NewManager(docs, "subsets.json", func(string) bool { return true })
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	sys := &fakeSystem{running: map[string]bool{"spotify": true}}
	exec := newTestExecutor(t, Dependencies{System: sys, Subsets: mgr})

	out := run(exec, OpenApplication, map[string]any{"app_name": "spotify"})
	if !out.Result.Silent || out.Result.Status != contractx.ToolStatusSuccess {
		t.Fatalf("open_application result = %+v", out.Result)
	}
	if out.Result.Message != "spotify is already running" {
		t.Fatalf("open_application message = %q", out.Result.Message)
	}
	if len(sys.launched) != 0 {
		t.Fatalf("expected no launch, got %v", sys.launched)
	}

	out = run(exec, ManageAppSubset, map[string]any{"action": "open", "subset_name": "media"})
	results, _ := out.Result.Payload.([]string)
	if !reflect.DeepEqual(results, []string{"spotify is already running", "Opened vlc"}) {
		t.Fatalf("open results = %v", results)
	}
	if len(sys.launched) != 1 || sys.launched[0][1] != "vlc" {
		t.Fatalf("launched = %v", sys.launched)
	}
}

func TestManageAppSubset(t *testing.T) {
	t.Parallel()

	docs := newDocs(t)
	mgr, err := apps.NewManager(docs, "subsets.json", func(name string) bool { return name != "ghost" })
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	sys := &fakeSystem{failApp: "vlc"}
	exec := newTestExecutor(t, Dependencies{System: sys, Subsets: mgr})

	out := run(exec, ManageAppSubset, map[string]any{"action": "create", "subset_name": "Work", "apps": []any{"chrome", "ghost"}})
	if out.Result.Status != contractx.ToolStatusSuccess || out.Result.Message != "Created subset 'work' with applications: chrome" {
		t.Fatalf("create result = %+v", out.Result)
	}

	out = run(exec, ManageAppSubset, map[string]any{"action": "open", "subset_name": "media"})
	if !out.Result.Silent || out.Result.Status != contractx.ToolStatusSuccess {
		t.Fatalf("open result = %+v", out.Result)
	}
	results, _ := out.Result.Payload.([]string)
	if !reflect.DeepEqual(results, []string{"Opened spotify", "Failed to open vlc: not installed"}) {
		t.Fatalf("open results = %v", results)
	}

	out = run(exec, ManageAppSubset, map[string]any{"action": "modify", "subset_name": "nope", "modification_type": "add", "apps": []any{"x"}})
	if out.Result.Status != contractx.ToolStatusError {
		t.Fatalf("modify missing subset = %+v", out.Result)
	}

	if out = run(exec, ManageAppSubset, map[string]any{"action": "delete", "subset_name": "work"}); out.Result.Status != contractx.ToolStatusSuccess {
		t.Fatalf("delete result = %+v", out.Result)
	}

	out = run(exec, ManageAppSubset, map[string]any{"action": "list"})
	list, _ := out.Result.Payload.(map[string][]string)
	if _, ok := list["work"]; ok || len(list) != 4 {
		t.Fatalf("list = %v", list)
	}
}

func TestMediaAndWebTools(t *testing.T) {
	t.Parallel()

	m := &fakeMedia{}
	exec := newTestExecutor(t, Dependencies{Media: m, Weather: fakeWeather{}, Search: fakeSearch{}})

	if out := run(exec, SearchAndPlaySong, map[string]any{"song_name": "numb"}); out.Result.Status != contractx.ToolStatusSuccess {
		t.Fatalf("play result = %+v", out.Result)
	}
	if out := run(exec, SearchAndPlaySong, map[string]any{"song_name": "unknown"}); out.Result.Status != contractx.ToolStatusError {
		t.Fatalf("unknown song result = %+v", out.Result)
	}
	run(exec, ToggleSpotifyPlayback, map[string]any{"action": "pause"})
	run(exec, SetSpotifyVolume, map[string]any{"volume_percent": float64(45)})
	if !reflect.DeepEqual(m.toggle, []media.ToggleAction{media.ActionPause}) || m.volume != 45 {
		t.Fatalf("toggle calls = %v, volume = %d", m.toggle, m.volume)
	}

	if out := run(exec, GetCurrentWeather, map[string]any{"location": "Oslo"}); out.Result.Status != contractx.ToolStatusSuccess {
		t.Fatalf("weather result = %+v", out.Result)
	}
	if out := run(exec, GetCurrentWeather, map[string]any{"location": "Atlantis"}); out.Result.Status != contractx.ToolStatusError {
		t.Fatalf("weather failure = %+v", out.Result)
	}
	if out := run(exec, SearchGoogle, map[string]any{"searchquery": "go"}); out.Result.Status != contractx.ToolStatusSuccess {
		t.Fatalf("search result = %+v", out.Result)
	}
}

func TestUnconfiguredToolsReportFailure(t *testing.T) {
	t.Parallel()

	exec := newTestExecutor(t, Dependencies{})
	for name, args := range map[Name]map[string]any{
		SearchGoogle:      {"searchquery": "x"},
		GetCurrentWeather: {},
		SearchAndPlaySong: {"song_name": "x"},
		SetSystemVolume:   {"volume_level": float64(1)},
		PersonalMemory:    {"operation": "retrieve"},
	} {
		out := run(exec, name, args)
		if out.Result.Status != contractx.ToolStatusError {
			t.Fatalf("%s: expected not configured failure, got %+v", name, out.Result)
		}
	}
}

func newDocs(t *testing.T) *state.FileStore {
	t.Helper()
	docs, err := state.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	return docs
}
