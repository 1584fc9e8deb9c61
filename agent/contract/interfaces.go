package contract

import "context"

// PlannerResponse carries either a final answer or a batch of tool requests.
type PlannerResponse struct {
	Content   string
	ToolCalls []ToolInvocationRequest
}

func (r PlannerResponse) HasToolCalls() bool {
	return len(r.ToolCalls) > 0
}

type ToolExecutor interface {
	Execute(ctx context.Context, req ToolInvocationRequest) ToolOutcome
}

type ConversationStore interface {
	Load(ctx context.Context) (Transcript, error)
	Save(ctx context.Context, t Transcript) error
	// Reset forgets the stored history; the next Load starts fresh.
	Reset(ctx context.Context) error
}

type MemoryStore interface {
	Records(ctx context.Context) ([]MemoryRecord, error)
	Store(ctx context.Context, data string) (MemoryRecord, error)
	Retrieve(ctx context.Context) ([]MemoryRecord, error)
	Clear(ctx context.Context) error
}
