// Package speech turns assistant replies into audio with the OpenAI speech
// endpoint and plays them through an external player.
package speech

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	openaisdk "github.com/openai/openai-go"
	"github.com/rs/zerolog/log"

	"github.com/tanpawarit/ultra-assistant/pkg/osctl"
	"github.com/tanpawarit/ultra-assistant/pkg/task"
)

type Config struct {
	Enabled    bool     `envconfig:"ENABLED" default:"false"`
	Model      string   `envconfig:"MODEL" default:"tts-1"`
	Voice      string   `envconfig:"VOICE" default:"echo"`
	OutputPath string   `envconfig:"OUTPUT_PATH" default:"output.mp3"`
	Player     []string `envconfig:"PLAYER"`
}

// Synthesizer returns encoded audio for text.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) (io.ReadCloser, error)
}

type OpenAISynthesizer struct {
	client *openaisdk.Client
	model  string
	voice  string
}

func NewOpenAISynthesizer(client *openaisdk.Client, model, voice string) *OpenAISynthesizer {
	return &OpenAISynthesizer{client: client, model: model, voice: voice}
}

func (s *OpenAISynthesizer) Synthesize(ctx context.Context, text string) (io.ReadCloser, error) {
	if s.client == nil {
		return nil, errors.New("speech: openai client not configured")
	}
	resp, err := s.client.Audio.Speech.New(ctx, openaisdk.AudioSpeechNewParams{
		Input:          text,
		Model:          openaisdk.SpeechModel(s.model),
		Voice:          openaisdk.AudioSpeechNewParamsVoice(s.voice),
		ResponseFormat: openaisdk.AudioSpeechNewParamsResponseFormatMP3,
	})
	if err != nil {
		return nil, fmt.Errorf("speech: synthesize: %w", err)
	}
	return resp.Body, nil
}

type Speaker struct {
	synth  Synthesizer
	runner osctl.Runner
	output string
	player []string
}

func NewSpeaker(synth Synthesizer, runner osctl.Runner, cfg Config) *Speaker {
	output := strings.TrimSpace(cfg.OutputPath)
	if output == "" {
		output = "output.mp3"
	}
	return &Speaker{synth: synth, runner: runner, output: output, player: cfg.Player}
}

// Speak synthesizes text to the output file and plays it when a player
// command is configured. Blocks until playback ends.
func (s *Speaker) Speak(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	body, err := s.synth.Synthesize(ctx, text)
	if err != nil {
		return err
	}
	defer body.Close()

	if err := writeFile(s.output, body); err != nil {
		return err
	}
	if len(s.player) == 0 || s.runner == nil {
		return nil
	}
	args := append(append([]string{}, s.player[1:]...), s.output)
	if _, err := s.runner.Run(ctx, s.player[0], args...); err != nil {
		return fmt.Errorf("speech: play: %w", err)
	}
	return nil
}

// SpeakAsync starts Speak in the background. Failures are logged and
// returned from Wait.
func (s *Speaker) SpeakAsync(ctx context.Context, text string) *task.Task {
	return task.Go(func() error {
		err := s.Speak(ctx, text)
		if err != nil {
			log.Warn().Err(err).Msg("speech failed")
		}
		return err
	})
}

func writeFile(path string, r io.Reader) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("speech: create output dir: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("speech: create output: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return fmt.Errorf("speech: write output: %w", err)
	}
	return f.Close()
}
