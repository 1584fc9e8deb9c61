package state

import (
	"context"
	"fmt"
	"strings"
)

const (
	BackendFile     = "file"
	BackendUpstash  = "upstash"
	BackendPostgres = "postgres"
)

type Config struct {
	Backend    string `envconfig:"BACKEND" split_words:"true" default:"file"`
	Dir        string `envconfig:"DIR" split_words:"true" default:"."`
	HistoryKey string `envconfig:"HISTORY_KEY" split_words:"true" default:"conversation_history.json"`
	MemoryKey  string `envconfig:"MEMORY_KEY" split_words:"true" default:"memory.json"`
	SubsetsKey string `envconfig:"SUBSETS_KEY" split_words:"true" default:"app_subsets_config.json"`

	Upstash  UpstashRedisConfig `envconfig:"UPSTASH"`
	Postgres PostgresConfig     `envconfig:"POSTGRES"`
}

// Open builds the document backend named by cfg.Backend.
func Open(ctx context.Context, cfg Config) (DocumentStore, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "", BackendFile:
		return NewFileStore(cfg.Dir)
	case BackendUpstash:
		return NewUpstashRedisStore(cfg.Upstash)
	case BackendPostgres:
		return NewPostgresStore(ctx, cfg.Postgres)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}
