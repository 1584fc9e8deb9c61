package orchestratornode

import (
	"context"

	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/ultra-assistant/agent/contract"
)

// PersistTranscript saves the canonical transcript. A failed save is logged
// and the answer is still delivered.
func PersistTranscript(ctx context.Context, in *GraphState, store contractx.ConversationStore) (*GraphState, error) {
	if in == nil {
		return nil, ErrNilState
	}
	if err := store.Save(ctx, in.Transcript); err != nil {
		log.Error().Err(err).Str("turn_id", in.TurnID).Msg("conversation save failed")
	}
	return in, nil
}
