package orchestratornode

import (
	"context"

	contractx "github.com/tanpawarit/ultra-assistant/agent/contract"
)

// BatchExecutor runs a batch of tool requests and returns outcomes in
// request order.
type BatchExecutor interface {
	ExecuteAll(ctx context.Context, reqs []contractx.ToolInvocationRequest) []contractx.ToolOutcome
}

// ExecuteTools records the planner's tool requests, runs them and appends
// one tool message per request, in request order.
func ExecuteTools(ctx context.Context, in *GraphState, exec BatchExecutor) (*GraphState, error) {
	if in == nil {
		return nil, ErrNilState
	}
	in.enter(contractx.PhaseExecutingTools)

	call := contractx.AssistantToolCallMessage(in.Plan.Content, in.Plan.ToolCalls)
	in.Transcript = append(in.Transcript, call)
	in.Working = append(in.Working, call)

	in.Outcomes = exec.ExecuteAll(ctx, in.Plan.ToolCalls)
	for _, out := range in.Outcomes {
		in.Transcript = append(in.Transcript, out.Message)
		in.Working = append(in.Working, out.Message)
		if out.Result.Silent {
			in.Silent = true
		}
	}
	return in, nil
}
