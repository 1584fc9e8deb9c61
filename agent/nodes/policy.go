package orchestratornode

import (
	"errors"
	"strings"

	contractx "github.com/tanpawarit/ultra-assistant/agent/contract"
)

const (
	NodeValidateRequest   = "validate_request"
	NodeLoadTranscript    = "load_transcript"
	NodeInjectMemory      = "inject_memory"
	NodePlanTurn          = "plan_turn"
	NodeExecuteTools      = "execute_tools"
	NodeSynthesizeAnswer  = "synthesize_answer"
	NodeRecordAnswer      = "record_answer"
	NodePersistTranscript = "persist_transcript"
	NodeFinalizeReply     = "finalize_reply"
)

const (
	NotHeardReply    = "I didn't hear you."
	TimeoutReply     = "Sorry, that took too long. Please try again."
	UnavailableReply = "Sorry, I can't reach my language service right now."
	LoadFailedReply  = "Sorry, I couldn't load our conversation. Please try again."
	EmptyAnswerReply = "Sorry, I don't have an answer for that."
)

func DegradedReply(err error) string {
	if errors.Is(err, contractx.ErrPlannerTimeout) {
		return TimeoutReply
	}
	return UnavailableReply
}

// Generic offers of help end in a question mark but do not need an answer.
var openOffers = []string{
	"How can I assist you today?",
	"How can I help you today?",
	"How can I assist you?",
	"How may I assist you today?",
	"How can I help you?",
}

func ExpectsFollowUp(answer string) bool {
	answer = strings.TrimSpace(answer)
	if !strings.HasSuffix(answer, "?") {
		return false
	}
	for _, offer := range openOffers {
		if strings.Contains(answer, offer) {
			return false
		}
	}
	return true
}

// AfterValidate skips the whole turn for an empty utterance.
func AfterValidate(in *GraphState) string {
	if in == nil || in.Empty {
		return NodeFinalizeReply
	}
	return NodeLoadTranscript
}
