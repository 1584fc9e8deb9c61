package tool

import (
	"context"
	"fmt"
	"time"

	contractx "github.com/tanpawarit/ultra-assistant/agent/contract"
	"github.com/tanpawarit/ultra-assistant/agent/apps"
	"github.com/tanpawarit/ultra-assistant/agent/media"
	"github.com/tanpawarit/ultra-assistant/pkg/osctl"
	"github.com/tanpawarit/ultra-assistant/pkg/weather"
	"github.com/tanpawarit/ultra-assistant/pkg/websearch"
)

type WeatherProvider interface {
	Current(ctx context.Context, location string, unit string) (weather.Report, error)
}

type WebSearcher interface {
	Search(ctx context.Context, query string) (websearch.Result, error)
}

type MediaController interface {
	Play(ctx context.Context, query string) (string, error)
	Toggle(ctx context.Context, action media.ToggleAction) (string, error)
	SetVolume(ctx context.Context, percent int) error
}

type SystemController interface {
	SetVolume(ctx context.Context, level int) error
	Power(ctx context.Context, action osctl.PowerAction, delay time.Duration) error
	OpenURL(url string, executable string) error
	Launch(path string, name string, args ...string) error
	IsRunning(name string) (bool, error)
}

type AppLocator interface {
	Find(name string) (string, bool)
}

type SubsetManager interface {
	Create(ctx context.Context, name string, list []string) (apps.Change, error)
	Delete(ctx context.Context, name string) error
	Modify(ctx context.Context, name string, mod apps.Modification, list []string) (apps.Change, error)
	Apps(ctx context.Context, name string) ([]string, error)
	List(ctx context.Context) (map[string][]string, error)
}

// Dependencies are the collaborators tool handlers call into. A nil
// collaborator leaves its tools registered but reporting that the feature
// is not configured.
type Dependencies struct {
	Memory  contractx.MemoryStore
	Weather WeatherProvider
	Search  WebSearcher
	Media   MediaController
	System  SystemController
	Locator AppLocator
	Subsets SubsetManager
	Now     func() time.Time
}

// Build registers every catalog tool and checks the registry against the
// catalog.
func Build(deps Dependencies) (*Registry, error) {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	h := &handlers{deps: deps}
	reg := NewRegistry()

	bindings := map[Name]Handler{
		SearchGoogle:          Typed(h.searchGoogle),
		GetCurrentWeather:     Typed(h.currentWeather),
		UseCalculator:         Typed(executeCalculator),
		PersonalMemory:        Typed(h.personalMemory),
		SearchAndPlaySong:     Typed(h.playSong),
		ToggleSpotifyPlayback: Typed(h.togglePlayback),
		SetSpotifyVolume:      Typed(h.spotifyVolume),
		SetSystemVolume:       Typed(h.systemVolume),
		GetCurrentDatetime:    Typed(h.currentDatetime),
		ControlPC:             Typed(h.controlPC),
		OpenApplication:       Typed(h.openApplication),
		OpenBrowser:           Typed(h.openBrowser),
		ManageAppSubset:       Typed(h.manageAppSubset),
	}

	catalog := Catalog()
	for _, d := range catalog {
		handler, ok := bindings[d.Name]
		if !ok {
			return nil, fmt.Errorf("%w: no handler bound for %q", contractx.ErrValidation, d.Name)
		}
		if err := reg.Register(d.Name, d.Schema, handler); err != nil {
			return nil, err
		}
	}
	if err := reg.Validate(catalog); err != nil {
		return nil, err
	}
	return reg, nil
}

type handlers struct {
	deps Dependencies
}

func notConfigured(feature string) contractx.ToolResult {
	return contractx.Failure(feature + " is not configured")
}
