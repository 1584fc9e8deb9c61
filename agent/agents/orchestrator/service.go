package orchestrator

import (
	"context"
	"errors"
	"sync"

	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/ultra-assistant/agent/contract"
	nodex "github.com/tanpawarit/ultra-assistant/agent/nodes"
	"github.com/tanpawarit/ultra-assistant/agent/planner"
)

// Ducker lowers background media for the length of a turn.
type Ducker interface {
	Duck(ctx context.Context)
	Restore(ctx context.Context)
}

type Option func(*Orchestrator)

// WithSynthesizer uses a separate planner for the answer that follows tool
// execution.
func WithSynthesizer(p planner.Planner) Option {
	return func(o *Orchestrator) {
		if p != nil {
			o.synthesizer = p
		}
	}
}

func WithMemory(m contractx.MemoryStore) Option {
	return func(o *Orchestrator) {
		o.memory = m
	}
}

func WithDucker(d Ducker) Option {
	return func(o *Orchestrator) {
		o.ducker = d
	}
}

func WithTurnIDs(next func() string) Option {
	return func(o *Orchestrator) {
		if next != nil {
			o.nextID = next
		}
	}
}

// Orchestrator runs one turn at a time: load, plan, optionally execute
// tools and synthesize, then persist.
type Orchestrator struct {
	planner      planner.Planner
	synthesizer  planner.Planner
	executor     nodex.BatchExecutor
	conversation contractx.ConversationStore
	memory       contractx.MemoryStore
	ducker       Ducker
	tools        []*schema.ToolInfo
	nextID       func() string

	// mu is held from load to save so turns never interleave.
	mu          sync.Mutex
	graphRunner compose.Runnable[nodex.GraphInput, nodex.GraphOutput]
}

func New(
	p planner.Planner,
	executor nodex.BatchExecutor,
	conversation contractx.ConversationStore,
	tools []*schema.ToolInfo,
	opts ...Option,
) (*Orchestrator, error) {
	if p == nil {
		return nil, errors.New("planner is required")
	}
	if executor == nil {
		return nil, errors.New("tool executor is required")
	}
	if conversation == nil {
		return nil, errors.New("conversation store is required")
	}

	o := &Orchestrator{
		planner:      p,
		synthesizer:  p,
		executor:     executor,
		conversation: conversation,
		tools:        tools,
		nextID:       uuid.NewString,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}

	graphRunner, err := o.compileTurnGraph(context.Background())
	if err != nil {
		return nil, err
	}
	o.graphRunner = graphRunner
	return o, nil
}

// HandleMessage runs a full turn for one utterance. The returned reply is
// always usable; err is only set when the turn could not run at all.
func (o *Orchestrator) HandleMessage(ctx context.Context, text string) (contractx.Reply, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	turnID := o.nextID()
	logger := log.With().Str("turn_id", turnID).Logger()

	if o.ducker != nil {
		o.ducker.Duck(ctx)
		defer o.ducker.Restore(context.WithoutCancel(ctx))
	}

	out, err := o.graphRunner.Invoke(ctx, nodex.GraphInput{TurnID: turnID, Text: text})
	if err != nil {
		logger.Error().Err(err).Msg("turn failed")
		return contractx.Reply{
			TurnID:   turnID,
			Text:     nodex.LoadFailedReply,
			Speak:    true,
			Degraded: true,
		}, err
	}

	logger.Info().
		Bool("speak", out.Reply.Speak).
		Bool("degraded", out.Reply.Degraded).
		Msg("turn complete")
	return out.Reply, nil
}

// ResetHistory clears the stored conversation. It waits for any running
// turn to finish first.
func (o *Orchestrator) ResetHistory(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if err := o.conversation.Reset(ctx); err != nil {
		return err
	}
	log.Info().Msg("conversation history reset")
	return nil
}
