package orchestratornode

import (
	"context"

	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/ultra-assistant/agent/contract"
	"github.com/tanpawarit/ultra-assistant/agent/planner"
)

// PlanTurn asks the planner for an answer or a batch of tool requests. A
// planner failure degrades the turn instead of failing it.
func PlanTurn(ctx context.Context, in *GraphState, p planner.Planner, tools []*schema.ToolInfo) (*GraphState, error) {
	if in == nil {
		return nil, ErrNilState
	}
	in.enter(contractx.PhaseAwaitingPlan)

	resp, err := p.Complete(ctx, in.Working, tools)
	if err != nil {
		log.Error().Err(err).Str("turn_id", in.TurnID).Msg("planning failed")
		in.Degraded = true
		in.Answer = DegradedReply(err)
		return in, nil
	}
	in.Plan = resp
	return in, nil
}

// AfterPlan routes to tool execution only for a healthy plan with tool
// requests.
func AfterPlan(in *GraphState) string {
	if in != nil && !in.Degraded && in.Plan.HasToolCalls() {
		return NodeExecuteTools
	}
	return NodeRecordAnswer
}
