package orchestratornode

import (
	"context"
	"fmt"

	contractx "github.com/tanpawarit/ultra-assistant/agent/contract"
)

// LoadTranscript reads the canonical history and appends the user's
// message. Backend failures abort the turn so nothing is overwritten.
func LoadTranscript(ctx context.Context, in *GraphState, store contractx.ConversationStore) (*GraphState, error) {
	if in == nil {
		return nil, ErrNilState
	}
	transcript, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load conversation: %w", err)
	}
	in.Transcript = append(transcript, contractx.UserMessage(in.Text))
	return in, nil
}
