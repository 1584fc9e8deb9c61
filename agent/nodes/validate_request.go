package orchestratornode

import (
	"errors"
	"strings"

	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/ultra-assistant/agent/contract"
)

var ErrNilState = errors.New("turn state is nil")

type GraphInput struct {
	TurnID string
	Text   string
}

type GraphOutput struct {
	Reply contractx.Reply
}

// GraphState is carried through one turn. Transcript is the canonical
// history that gets persisted; Working is what the planner sees and also
// holds the injected memory notes.
type GraphState struct {
	TurnID string
	Text   string
	Empty  bool
	Phase  contractx.TurnPhase

	Transcript contractx.Transcript
	Working    contractx.Transcript

	Plan     contractx.PlannerResponse
	Outcomes []contractx.ToolOutcome
	Silent   bool

	Answer   string
	Degraded bool
}

func (s *GraphState) enter(phase contractx.TurnPhase) {
	s.Phase = phase
	log.Debug().Str("turn_id", s.TurnID).Str("phase", string(phase)).Msg("turn phase")
}

func ValidateRequest(in GraphInput) (*GraphState, error) {
	st := &GraphState{
		TurnID: in.TurnID,
		Text:   strings.TrimSpace(in.Text),
		Phase:  contractx.PhaseIdle,
	}
	if st.Text == "" {
		st.Empty = true
		st.Answer = NotHeardReply
	}
	return st, nil
}
