package apps

import (
	_ "embed"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"runtime"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed paths.yaml
var defaultPaths []byte

// Entry lists the spoken names an application answers to and the install
// locations to check, in order.
type Entry struct {
	CommonNames []string `yaml:"common_name"`
	Paths       []string `yaml:"paths"`
}

// Table maps an OS name (runtime.GOOS) to its known applications.
type Table map[string]map[string]Entry

func DefaultTable() Table {
	t, err := ParseTable(defaultPaths)
	if err != nil {
		panic(fmt.Sprintf("apps: embedded path table: %v", err))
	}
	return t
}

func ParseTable(raw []byte) (Table, error) {
	var t Table
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return nil, fmt.Errorf("apps: parse path table: %w", err)
	}
	return t, nil
}

// LoadTable reads a YAML path table, falling back to the embedded one
// when path is empty.
func LoadTable(path string) (Table, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultTable(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("apps: read path table: %w", err)
	}
	return ParseTable(raw)
}

type Locator struct {
	table  Table
	goos   string
	exists func(string) bool
	lookup func(string) (string, error)
}

type LocatorOption func(*Locator)

func WithGOOS(goos string) LocatorOption {
	return func(l *Locator) {
		if goos != "" {
			l.goos = goos
		}
	}
}

func WithFileCheck(exists func(string) bool) LocatorOption {
	return func(l *Locator) {
		if exists != nil {
			l.exists = exists
		}
	}
}

func WithLookPath(lookup func(string) (string, error)) LocatorOption {
	return func(l *Locator) {
		if lookup != nil {
			l.lookup = lookup
		}
	}
}

func NewLocator(table Table, opts ...LocatorOption) *Locator {
	l := &Locator{
		table:  table,
		goos:   runtime.GOOS,
		exists: fileExists,
		lookup: exec.LookPath,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}
	return l
}

// Find returns the first existing install path for name from the table.
func (l *Locator) Find(name string) (string, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return "", false
	}
	apps := l.table[l.goos]
	keys := make([]string, 0, len(apps))
	for k := range apps {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for _, k := range keys {
		entry := apps[k]
		if k != name && !slices.Contains(entry.CommonNames, name) {
			continue
		}
		for _, p := range entry.Paths {
			if expanded := ExpandPath(p); l.exists(expanded) {
				return expanded, true
			}
		}
	}
	return "", false
}

// Exists reports whether name resolves through the table or the search
// path.
func (l *Locator) Exists(name string) bool {
	if _, ok := l.Find(name); ok {
		return true
	}
	if strings.TrimSpace(name) == "" {
		return false
	}
	_, err := l.lookup(strings.ToLower(strings.TrimSpace(name)))
	return err == nil
}

var windowsVar = regexp.MustCompile(`%([A-Za-z_][A-Za-z0-9_]*)%`)

// ExpandPath expands ~, $VAR and %VAR% references.
func ExpandPath(p string) string {
	p = windowsVar.ReplaceAllStringFunc(p, func(m string) string {
		if v, ok := os.LookupEnv(strings.Trim(m, "%")); ok {
			return v
		}
		return m
	})
	if strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			p = filepath.Join(home, p[2:])
		}
	}
	if strings.Contains(p, "$") {
		p = os.ExpandEnv(p)
	}
	return p
}

func fileExists(p string) bool {
	info, err := os.Stat(p)
	return err == nil && !info.IsDir()
}
