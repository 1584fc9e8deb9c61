package llm

import (
	"fmt"
	"strings"
	"time"

	contractx "github.com/tanpawarit/ultra-assistant/agent/contract"
	openaix "github.com/tanpawarit/ultra-assistant/pkg/openaix"
)

// Stage selects which planner call a model config is built for.
type Stage string

const (
	StagePlanning  Stage = "planning"
	StageSynthesis Stage = "synthesis"
)

type Config struct {
	BaseURL            string        `envconfig:"BASE_URL" split_words:"true" default:"https://api.openai.com/v1"`
	APIKey             string        `envconfig:"API_KEY" split_words:"true" required:"true"`
	Model              string        `envconfig:"MODEL" split_words:"true" default:"gpt-4o-mini"`
	MaxCompletionToken int           `envconfig:"MAX_COMPLETION_TOKEN" split_words:"true" default:"1024"`
	Temperature        float32       `envconfig:"TEMPERATURE" split_words:"true" default:"0.7"`
	SiteURL            string        `envconfig:"SITE_URL" split_words:"true"`
	SiteName           string        `envconfig:"SITE_NAME" split_words:"true"`
	SoftTimeout        time.Duration `envconfig:"SOFT_TIMEOUT" split_words:"true" default:"7s"`
	HardTimeout        time.Duration `envconfig:"HARD_TIMEOUT" split_words:"true" default:"30s"`

	SynthesisModel       string  `envconfig:"SYNTHESIS_MODEL" split_words:"true"`
	SynthesisTemperature float32 `envconfig:"SYNTHESIS_TEMPERATURE" split_words:"true" default:"-1"`
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return fmt.Errorf("%w: llm api key is required", contractx.ErrValidation)
	}
	if strings.TrimSpace(c.Model) == "" {
		return fmt.Errorf("%w: default model is required", contractx.ErrValidation)
	}
	if c.SoftTimeout <= 0 || c.HardTimeout <= 0 {
		return fmt.Errorf("%w: planner timeouts must be > 0", contractx.ErrValidation)
	}
	if c.SoftTimeout >= c.HardTimeout {
		return fmt.Errorf("%w: soft timeout %s must be below hard timeout %s", contractx.ErrValidation, c.SoftTimeout, c.HardTimeout)
	}
	return nil
}

func (c Config) ClientFor(stage Stage) openaix.Config {
	modelName := strings.TrimSpace(c.Model)
	temp := c.Temperature

	if stage == StageSynthesis {
		if v := strings.TrimSpace(c.SynthesisModel); v != "" {
			modelName = v
		}
		if c.SynthesisTemperature >= 0 {
			temp = c.SynthesisTemperature
		}
	}

	maxCompletionToken := c.MaxCompletionToken
	return openaix.Config{
		BaseURL:            strings.TrimSpace(c.BaseURL),
		APIKey:             strings.TrimSpace(c.APIKey),
		Model:              modelName,
		MaxCompletionToken: &maxCompletionToken,
		Temperature:        temp,
		// The hard cutoff is enforced by the planner; the HTTP timeout only
		// guards against a wedged connection.
		Timeout:  c.HardTimeout + 5*time.Second,
		SiteURL:  strings.TrimSpace(c.SiteURL),
		SiteName: strings.TrimSpace(c.SiteName),
	}
}
