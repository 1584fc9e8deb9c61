package orchestratornode

import (
	"context"

	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/ultra-assistant/agent/contract"
	"github.com/tanpawarit/ultra-assistant/agent/planner"
)

// SynthesizeAnswer asks for the final answer from the tool results. The
// call carries no tools, so any tool request that still comes back is
// dropped.
func SynthesizeAnswer(ctx context.Context, in *GraphState, p planner.Planner) (*GraphState, error) {
	if in == nil {
		return nil, ErrNilState
	}
	in.enter(contractx.PhaseAwaitingSynthesis)

	resp, err := p.Complete(ctx, in.Working, nil)
	if err != nil {
		log.Error().Err(err).Str("turn_id", in.TurnID).Msg("synthesis failed")
		in.Degraded = true
		in.Answer = DegradedReply(err)
		return in, nil
	}
	if resp.HasToolCalls() {
		log.Warn().
			Str("turn_id", in.TurnID).
			Int("tool_calls", len(resp.ToolCalls)).
			Msg("synthesis requested more tools, ignoring")
	}
	in.Plan = contractx.PlannerResponse{Content: resp.Content}
	return in, nil
}
