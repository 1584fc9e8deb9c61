package orchestratornode

import (
	contractx "github.com/tanpawarit/ultra-assistant/agent/contract"
)

func FinalizeReply(in *GraphState) (GraphOutput, error) {
	if in == nil {
		return GraphOutput{}, ErrNilState
	}
	in.enter(contractx.PhaseDone)
	return GraphOutput{Reply: contractx.Reply{
		TurnID:   in.TurnID,
		Text:     in.Answer,
		Speak:    in.Answer != "" && !in.Silent,
		Degraded: in.Degraded,
		FollowUp: !in.Empty && ExpectsFollowUp(in.Answer),
	}}, nil
}
