package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tanpawarit/ultra-assistant/agent/agents/orchestrator"
	"github.com/tanpawarit/ultra-assistant/agent/apps"
	"github.com/tanpawarit/ultra-assistant/agent/llm"
	"github.com/tanpawarit/ultra-assistant/agent/media"
	"github.com/tanpawarit/ultra-assistant/agent/planner"
	"github.com/tanpawarit/ultra-assistant/agent/prompt"
	statex "github.com/tanpawarit/ultra-assistant/agent/state"
	"github.com/tanpawarit/ultra-assistant/agent/tool"
	configx "github.com/tanpawarit/ultra-assistant/pkg/config"
	_ "github.com/tanpawarit/ultra-assistant/pkg/logger/autoload"
	openaix "github.com/tanpawarit/ultra-assistant/pkg/openaix"
	"github.com/tanpawarit/ultra-assistant/pkg/osctl"
	"github.com/tanpawarit/ultra-assistant/pkg/speech"
	"github.com/tanpawarit/ultra-assistant/pkg/task"
	"github.com/tanpawarit/ultra-assistant/pkg/weather"
	"github.com/tanpawarit/ultra-assistant/pkg/websearch"
)

type ToolsConfig struct {
	Workers   int     `envconfig:"WORKERS" default:"1"`
	PathsFile string  `envconfig:"PATHS_FILE" split_words:"true"`
	DuckRatio float64 `envconfig:"DUCK_RATIO" split_words:"true" default:"0.6"`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	llmCfg := configx.MustNew[llm.Config]("LLM")
	if err := llmCfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid llm config")
	}
	storeCfg := configx.MustNew[statex.Config]("STORE")
	promptCfg := configx.MustNew[prompt.Config]("ASSISTANT")
	toolsCfg := configx.MustNew[ToolsConfig]("TOOLS")
	weatherCfg := configx.MustNew[weather.Config]("WEATHER")
	searchCfg := configx.MustNew[websearch.Config]("SEARCH")
	spotifyCfg := configx.MustNew[media.SpotifyConfig]("SPOTIFY")
	speechCfg := configx.MustNew[speech.Config]("SPEECH")

	docs, err := statex.Open(ctx, *storeCfg)
	if err != nil {
		log.Fatal().Err(err).Str("backend", storeCfg.Backend).Msg("open document store")
	}

	instructions := prompt.NewInstructions(*promptCfg, time.Now)
	conversation, err := statex.NewConversationStore(docs, storeCfg.HistoryKey, instructions.Text)
	if err != nil {
		log.Fatal().Err(err).Msg("conversation store")
	}
	memory, err := statex.NewMemoryStore(docs, storeCfg.MemoryKey)
	if err != nil {
		log.Fatal().Err(err).Msg("memory store")
	}

	table := apps.DefaultTable()
	if toolsCfg.PathsFile != "" {
		if table, err = apps.LoadTable(toolsCfg.PathsFile); err != nil {
			log.Fatal().Err(err).Str("path", toolsCfg.PathsFile).Msg("load application paths")
		}
	}
	locator := apps.NewLocator(table)
	subsets, err := apps.NewManager(docs, storeCfg.SubsetsKey, locator.Exists)
	if err != nil {
		log.Fatal().Err(err).Msg("app subset manager")
	}

	deps := tool.Dependencies{
		Memory:  memory,
		Search:  websearch.NewClient(*searchCfg),
		System:  osctl.New(),
		Locator: locator,
		Subsets: subsets,
		Now:     time.Now,
	}
	if wc, err := weather.NewClient(*weatherCfg); err != nil {
		log.Warn().Err(err).Msg("weather disabled")
	} else {
		deps.Weather = wc
	}

	var ducker orchestrator.Ducker
	if spotifyCfg.Enabled() {
		player, err := media.NewSpotifyPlayer(ctx, *spotifyCfg)
		if err != nil {
			log.Warn().Err(err).Msg("spotify disabled")
		} else {
			coordinator := media.NewCoordinator(player, media.WithDuckRatio(toolsCfg.DuckRatio))
			deps.Media = coordinator
			ducker = coordinator
		}
	}

	registry, err := tool.Build(deps)
	if err != nil {
		log.Fatal().Err(err).Msg("build tool registry")
	}

	planning, err := newPlanner(ctx, *llmCfg, llm.StagePlanning)
	if err != nil {
		log.Fatal().Err(err).Msg("planning model")
	}
	synthesis, err := newPlanner(ctx, *llmCfg, llm.StageSynthesis)
	if err != nil {
		log.Fatal().Err(err).Msg("synthesis model")
	}

	opts := []orchestrator.Option{
		orchestrator.WithSynthesizer(synthesis),
		orchestrator.WithMemory(memory),
	}
	if ducker != nil {
		opts = append(opts, orchestrator.WithDucker(ducker))
	}
	orch, err := orchestrator.New(
		planning,
		tool.NewExecutor(registry, tool.WithWorkers(toolsCfg.Workers)),
		conversation,
		registry.ToolInfos(),
		opts...,
	)
	if err != nil {
		log.Fatal().Err(err).Msg("orchestrator")
	}

	var speaker *speech.Speaker
	if speechCfg.Enabled {
		client := openaix.NewClient(llmCfg.ClientFor(llm.StageSynthesis))
		if client == nil {
			log.Warn().Msg("speech disabled: no api key")
		} else {
			synth := speech.NewOpenAISynthesizer(client, speechCfg.Model, speechCfg.Voice)
			speaker = speech.NewSpeaker(synth, osctl.ExecRunner{}, *speechCfg)
		}
	}

	run(ctx, orch, speaker, promptCfg.AssistantName)
}

func newPlanner(ctx context.Context, cfg llm.Config, stage llm.Stage) (planner.Planner, error) {
	clientCfg := cfg.ClientFor(stage)
	model, err := clientCfg.New(ctx)
	if err != nil {
		return nil, err
	}
	p, err := planner.New(model, planner.WithTemperature(clientCfg.Temperature))
	if err != nil {
		return nil, err
	}
	return planner.WithDeadlines(p, cfg.SoftTimeout, cfg.HardTimeout, func() {
		fmt.Println("[taking longer than expected...]")
	}), nil
}

func run(ctx context.Context, orch *orchestrator.Orchestrator, speaker *speech.Speaker, name string) {
	scanner := bufio.NewScanner(os.Stdin)
	var speaking *task.Task

	lines := make(chan string)
	go func() {
		defer close(lines)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	fmt.Print("> ")
	for {
		select {
		case <-ctx.Done():
			speaking.Wait()
			return
		case line, ok := <-lines:
			if !ok {
				speaking.Wait()
				return
			}
			switch strings.ToLower(strings.TrimSpace(line)) {
			case "exit", "quit":
				speaking.Wait()
				return
			case "reset":
				if err := orch.ResetHistory(ctx); err != nil {
					log.Error().Err(err).Msg("reset failed")
				} else {
					fmt.Printf("%s: Okay, I've forgotten our conversation.\n", name)
				}
				fmt.Print("> ")
				continue
			}

			reply, err := orch.HandleMessage(ctx, line)
			if err != nil {
				log.Error().Err(err).Msg("turn failed")
			}
			if reply.Text != "" {
				fmt.Printf("%s: %s\n", name, reply.Text)
			}

			if speaker != nil && reply.Speak {
				speaking.Wait()
				speaking = speaker.SpeakAsync(ctx, reply.Text)
			}
			if reply.FollowUp {
				fmt.Print(">> ")
			} else {
				fmt.Print("> ")
			}
		}
	}
}
