package orchestratornode

import (
	"strings"

	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/ultra-assistant/agent/contract"
)

// RecordAnswer appends the final assistant message. Failed planner calls add
// nothing; a blank answer is replaced by EmptyAnswerReply and recorded so
// every planned turn ends with an assistant message.
func RecordAnswer(in *GraphState) (*GraphState, error) {
	if in == nil {
		return nil, ErrNilState
	}
	if in.Degraded {
		return in, nil
	}
	in.Answer = strings.TrimSpace(in.Plan.Content)
	if in.Answer == "" {
		log.Warn().Str("turn_id", in.TurnID).Msg("planner returned an empty answer")
		in.Degraded = true
		in.Answer = EmptyAnswerReply
	}
	in.Transcript = append(in.Transcript, contractx.AssistantMessage(in.Answer))
	return in, nil
}
