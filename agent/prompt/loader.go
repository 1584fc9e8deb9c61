package prompt

import (
	"context"
	_ "embed"
	"fmt"
	"strings"
	"time"

	einoprompt "github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog/log"
)

//go:embed template/system.txt
var systemRaw string

type Config struct {
	AssistantName string `envconfig:"NAME" default:"Ultra"`
	Languages     string `envconfig:"LANGUAGES" default:"English"`
}

// Instructions renders the system message with the current date.
type Instructions struct {
	cfg      Config
	template einoprompt.ChatTemplate
	now      func() time.Time
}

func NewInstructions(cfg Config, now func() time.Time) *Instructions {
	if strings.TrimSpace(cfg.AssistantName) == "" {
		cfg.AssistantName = "Ultra"
	}
	if strings.TrimSpace(cfg.Languages) == "" {
		cfg.Languages = "English"
	}
	if now == nil {
		now = time.Now
	}
	return &Instructions{
		cfg:      cfg,
		template: einoprompt.FromMessages(schema.FString, schema.SystemMessage(strings.TrimSpace(systemRaw))),
		now:      now,
	}
}

func (i *Instructions) Render(ctx context.Context) (string, error) {
	msgs, err := i.template.Format(ctx, map[string]any{
		"assistant_name": i.cfg.AssistantName,
		"languages":      i.cfg.Languages,
		"date":           i.now().Format("2006-01-02 15:04"),
	})
	if err != nil {
		return "", fmt.Errorf("render system prompt: %w", err)
	}
	if len(msgs) == 0 || msgs[0] == nil {
		return "", fmt.Errorf("render system prompt: no message produced")
	}
	return msgs[0].Content, nil
}

// Text renders the instructions, falling back to the raw template when
// formatting fails.
func (i *Instructions) Text() string {
	out, err := i.Render(context.Background())
	if err != nil {
		log.Error().Err(err).Msg("system prompt render failed")
		return strings.TrimSpace(systemRaw)
	}
	return out
}
