package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/ultra-assistant/agent/contract"
)

// ConversationStore owns the canonical transcript document.
type ConversationStore struct {
	docs         DocumentStore
	key          string
	instructions func() string
}

var _ contractx.ConversationStore = (*ConversationStore)(nil)

// NewConversationStore takes the instruction source as a func so every Load
// picks up the latest operating instructions.
func NewConversationStore(docs DocumentStore, key string, instructions func() string) (*ConversationStore, error) {
	if docs == nil {
		return nil, errors.New("document store is required")
	}
	if instructions == nil {
		return nil, errors.New("instruction source is required")
	}
	if key == "" {
		key = "conversation_history.json"
	}
	return &ConversationStore{docs: docs, key: key, instructions: instructions}, nil
}

// Load returns the stored transcript with its system message refreshed. A
// missing or corrupt document yields a fresh transcript; only backend
// failures are returned.
func (s *ConversationStore) Load(ctx context.Context) (contractx.Transcript, error) {
	raw, err := s.docs.Read(ctx, s.key)
	if err != nil && !errors.Is(err, ErrDocumentNotFound) {
		return nil, fmt.Errorf("load conversation: %w", err)
	}

	var transcript contractx.Transcript
	if err == nil {
		transcript, err = decodeTranscript(raw)
		if err != nil {
			log.Warn().Err(err).Str("key", s.key).Msg("conversation history unreadable, starting fresh")
			transcript = nil
		}
	}

	instructions := s.instructions()
	if len(transcript) > 0 && transcript[0].Role == contractx.RoleSystem {
		transcript[0] = contractx.SystemMessage(instructions)
	} else {
		transcript = append(contractx.Transcript{contractx.SystemMessage(instructions)}, transcript...)
	}
	return transcript, nil
}

func (s *ConversationStore) Save(ctx context.Context, t contractx.Transcript) error {
	if err := ValidateTranscript(t); err != nil {
		return err
	}
	raw, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("marshal conversation: %w", err)
	}
	if err := s.docs.Write(ctx, s.key, raw); err != nil {
		return fmt.Errorf("save conversation: %w", err)
	}
	return nil
}

func (s *ConversationStore) Reset(ctx context.Context) error {
	if err := s.docs.Delete(ctx, s.key); err != nil {
		return fmt.Errorf("reset conversation: %w", err)
	}
	return nil
}

func decodeTranscript(raw []byte) (contractx.Transcript, error) {
	var t contractx.Transcript
	if err := json.Unmarshal(raw, &t); err != nil {
		return nil, fmt.Errorf("%w: %v", contractx.ErrPersistenceCorrupt, err)
	}
	if err := ValidateTranscript(t); err != nil {
		return nil, fmt.Errorf("%w: %v", contractx.ErrPersistenceCorrupt, err)
	}
	return t, nil
}

// ValidateTranscript checks roles and that every tool message answers a
// tool call of the assistant message opening its group.
func ValidateTranscript(t contractx.Transcript) error {
	var pending map[string]bool
	for i, m := range t {
		switch m.Role {
		case contractx.RoleSystem, contractx.RoleUser:
			pending = nil
		case contractx.RoleAssistant:
			pending = nil
			if len(m.ToolCalls) > 0 {
				if m.Content == nil {
					return fmt.Errorf("%w: message %d: assistant tool call message has null content", contractx.ErrValidation, i)
				}
				pending = make(map[string]bool, len(m.ToolCalls))
				for _, call := range m.ToolCalls {
					pending[call.ID] = true
				}
			}
		case contractx.RoleTool:
			if !pending[m.ToolCallID] {
				return fmt.Errorf("%w: message %d: tool_call_id %q has no matching assistant tool call", contractx.ErrValidation, i, m.ToolCallID)
			}
		default:
			return fmt.Errorf("%w: message %d: unknown role %q", contractx.ErrValidation, i, m.Role)
		}
	}
	return nil
}
