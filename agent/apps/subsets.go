// Package apps resolves application names to executables and manages
// named groups of applications that open together.
package apps

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/tanpawarit/ultra-assistant/agent/state"
)

var (
	ErrSubsetNotFound  = errors.New("subset not found")
	ErrNoValidApps     = errors.New("no valid applications provided")
	ErrInvalidModifier = errors.New("invalid modification, use add or remove")
	ErrEmptySubsetName = errors.New("subset name is required")
)

// DefaultSubsets seed the configuration the first time it is read.
func DefaultSubsets() map[string][]string {
	return map[string][]string{
		"home":        {"spotify", "telegram", "discord"},
		"office":      {"chrome", "outlook", "notepad"},
		"media":       {"spotify", "vlc"},
		"development": {"vscode", "github desktop", "terminal"},
	}
}

type Modification string

const (
	ModAdd    Modification = "add"
	ModRemove Modification = "remove"
)

// Change reports which apps were applied and which were skipped.
type Change struct {
	Applied []string
	Skipped []string
}

type Manager struct {
	docs   state.DocumentStore
	key    string
	exists func(string) bool

	mu      sync.Mutex
	subsets map[string][]string
}

// NewManager keeps subsets under key. exists verifies an app before it is
// added; nil accepts every name.
func NewManager(docs state.DocumentStore, key string, exists func(string) bool) (*Manager, error) {
	if docs == nil {
		return nil, errors.New("document store is required")
	}
	if key == "" {
		key = "app_subsets_config.json"
	}
	if exists == nil {
		exists = func(string) bool { return true }
	}
	return &Manager{docs: docs, key: key, exists: exists}, nil
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func (m *Manager) load(ctx context.Context) error {
	if m.subsets != nil {
		return nil
	}
	raw, err := m.docs.Read(ctx, m.key)
	switch {
	case errors.Is(err, state.ErrDocumentNotFound):
		m.subsets = DefaultSubsets()
		return m.save(ctx)
	case err != nil:
		return fmt.Errorf("read subsets: %w", err)
	}

	var subsets map[string][]string
	if err := json.Unmarshal(raw, &subsets); err != nil || subsets == nil {
		log.Warn().Err(err).Str("key", m.key).Msg("app subsets unreadable, using defaults")
		subsets = DefaultSubsets()
	}
	m.subsets = subsets
	return nil
}

func (m *Manager) save(ctx context.Context) error {
	raw, err := json.MarshalIndent(m.subsets, "", "    ")
	if err != nil {
		return fmt.Errorf("encode subsets: %w", err)
	}
	if err := m.docs.Write(ctx, m.key, raw); err != nil {
		return fmt.Errorf("write subsets: %w", err)
	}
	return nil
}

// Create replaces or adds a subset with the apps that verify. Fails with
// ErrNoValidApps when none do.
func (m *Manager) Create(ctx context.Context, name string, apps []string) (Change, error) {
	name = normalize(name)
	if name == "" {
		return Change{}, ErrEmptySubsetName
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.load(ctx); err != nil {
		return Change{}, err
	}

	var ch Change
	for _, app := range apps {
		app = normalize(app)
		if app == "" {
			continue
		}
		if m.exists(app) {
			if !slices.Contains(ch.Applied, app) {
				ch.Applied = append(ch.Applied, app)
			}
		} else {
			ch.Skipped = append(ch.Skipped, app)
		}
	}
	if len(ch.Applied) == 0 {
		return ch, ErrNoValidApps
	}
	m.subsets[name] = ch.Applied
	return ch, m.save(ctx)
}

func (m *Manager) Delete(ctx context.Context, name string) error {
	name = normalize(name)
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.load(ctx); err != nil {
		return err
	}
	if _, ok := m.subsets[name]; !ok {
		return fmt.Errorf("%w: %q", ErrSubsetNotFound, name)
	}
	delete(m.subsets, name)
	return m.save(ctx)
}

// Modify adds verified apps to, or removes apps from, an existing subset.
func (m *Manager) Modify(ctx context.Context, name string, mod Modification, apps []string) (Change, error) {
	name = normalize(name)
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.load(ctx); err != nil {
		return Change{}, err
	}
	current, ok := m.subsets[name]
	if !ok {
		return Change{}, fmt.Errorf("%w: %q", ErrSubsetNotFound, name)
	}

	var ch Change
	switch mod {
	case ModAdd:
		for _, app := range apps {
			app = normalize(app)
			switch {
			case app == "":
			case !m.exists(app):
				ch.Skipped = append(ch.Skipped, app)
			case !slices.Contains(current, app):
				current = append(current, app)
				ch.Applied = append(ch.Applied, app)
			}
		}
	case ModRemove:
		for _, app := range apps {
			app = normalize(app)
			if i := slices.Index(current, app); i >= 0 {
				current = slices.Delete(current, i, i+1)
				ch.Applied = append(ch.Applied, app)
			} else if app != "" {
				ch.Skipped = append(ch.Skipped, app)
			}
		}
	default:
		return Change{}, ErrInvalidModifier
	}

	m.subsets[name] = current
	return ch, m.save(ctx)
}

func (m *Manager) Apps(ctx context.Context, name string) ([]string, error) {
	name = normalize(name)
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.load(ctx); err != nil {
		return nil, err
	}
	apps, ok := m.subsets[name]
	if !ok || len(apps) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrSubsetNotFound, name)
	}
	return slices.Clone(apps), nil
}

func (m *Manager) List(ctx context.Context) (map[string][]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.load(ctx); err != nil {
		return nil, err
	}
	out := make(map[string][]string, len(m.subsets))
	keys := make([]string, 0, len(m.subsets))
	for k := range m.subsets {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		out[k] = slices.Clone(m.subsets[k])
	}
	return out, nil
}
