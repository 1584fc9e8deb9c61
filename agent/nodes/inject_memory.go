package orchestratornode

import (
	"context"

	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/ultra-assistant/agent/contract"
)

// InjectMemory builds the planner's working copy with each stored memory
// as a system note just before the user's message. The notes never reach
// the canonical transcript.
func InjectMemory(ctx context.Context, in *GraphState, memory contractx.MemoryStore) (*GraphState, error) {
	if in == nil {
		return nil, ErrNilState
	}

	var records []contractx.MemoryRecord
	if memory != nil {
		var err error
		records, err = memory.Records(ctx)
		if err != nil {
			log.Warn().Err(err).Str("turn_id", in.TurnID).Msg("memory unavailable, planning without it")
			records = nil
		}
	}

	base := len(in.Transcript) - 1
	working := make(contractx.Transcript, 0, len(in.Transcript)+len(records))
	working = append(working, in.Transcript[:base]...)
	for _, rec := range records {
		working = append(working, contractx.SystemMessage(rec.Data))
	}
	working = append(working, in.Transcript[base:]...)

	in.Working = working
	return in, nil
}
