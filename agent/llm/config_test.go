package llm

import (
	"errors"
	"testing"
	"time"

	contractx "github.com/tanpawarit/ultra-assistant/agent/contract"
)

func TestClientForSynthesisOverrides(t *testing.T) {
	t.Parallel()

	cfg := Config{
		APIKey:               "k",
		Model:                "gpt-4o-mini",
		Temperature:          0.7,
		SynthesisModel:       "gpt-4o",
		SynthesisTemperature: 0.2,
		SoftTimeout:          7 * time.Second,
		HardTimeout:          30 * time.Second,
	}

	planning := cfg.ClientFor(StagePlanning)
	if planning.Model != "gpt-4o-mini" || planning.Temperature != 0.7 {
		t.Fatalf("unexpected planning config: %+v", planning)
	}

	synthesis := cfg.ClientFor(StageSynthesis)
	if synthesis.Model != "gpt-4o" {
		t.Fatalf("unexpected synthesis model: %s", synthesis.Model)
	}
	if synthesis.Temperature != 0.2 {
		t.Fatalf("unexpected synthesis temperature: %v", synthesis.Temperature)
	}
}

func TestValidateRejectsInvertedTimeouts(t *testing.T) {
	t.Parallel()

	cfg := Config{
		APIKey:      "k",
		Model:       "m",
		SoftTimeout: 30 * time.Second,
		HardTimeout: 7 * time.Second,
	}
	if err := cfg.Validate(); !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}
