package contract

import (
	"encoding/json"
	"time"
)

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Message is one entry of the transcript. ToolCalls is only set on assistant
// messages; ToolCallID and Name only on tool messages.
type Message struct {
	Role       Role                    `json:"role"`
	Content    *string                 `json:"content"`
	ToolCalls  []ToolInvocationRequest `json:"tool_calls,omitempty"`
	ToolCallID string                  `json:"tool_call_id,omitempty"`
	Name       string                  `json:"name,omitempty"`
}

// Text returns the message content, or "" when content is null.
func (m Message) Text() string {
	if m.Content == nil {
		return ""
	}
	return *m.Content
}

func SystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: &content}
}

func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: &content}
}

func AssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: &content}
}

// AssistantToolCallMessage records the planner's tool requests. Content is
// never left null because downstream consumers require a string.
func AssistantToolCallMessage(content string, calls []ToolInvocationRequest) Message {
	return Message{
		Role:      RoleAssistant,
		Content:   &content,
		ToolCalls: append([]ToolInvocationRequest(nil), calls...),
	}
}

func ToolMessage(callID string, name string, content string) Message {
	return Message{
		Role:       RoleTool,
		Content:    &content,
		ToolCallID: callID,
		Name:       name,
	}
}

// ToolInvocationRequest is created by the planner adapter only.
type ToolInvocationRequest struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`

	// RawArguments is the undecoded argument text as sent by the planner.
	RawArguments string `json:"raw_arguments,omitempty"`
	// DecodeErr is set when RawArguments could not be decoded.
	DecodeErr error `json:"-"`
}

// Transcript is the ordered conversation log; element 0 is always the
// system message once loaded through the conversation store.
type Transcript []Message

func (t Transcript) Clone() Transcript {
	if t == nil {
		return nil
	}
	out := make(Transcript, len(t))
	for i, m := range t {
		if m.Content != nil {
			c := *m.Content
			m.Content = &c
		}
		if m.ToolCalls != nil {
			m.ToolCalls = append([]ToolInvocationRequest(nil), m.ToolCalls...)
		}
		out[i] = m
	}
	return out
}

type MemoryRecord struct {
	Data         string     `json:"data"`
	StoreTime    time.Time  `json:"store_time"`
	RetrieveTime *time.Time `json:"retrieve_time"`
}

type ToolStatus string

const (
	ToolStatusSuccess ToolStatus = "success"
	ToolStatusError   ToolStatus = "error"
)

// ToolResult lives for one turn only and becomes a tool message's content at
// the transcript boundary via Serialize.
type ToolResult struct {
	Status  ToolStatus `json:"status"`
	Message string     `json:"message,omitempty"`
	Payload any        `json:"result,omitempty"`
	Silent  bool       `json:"no_speak,omitempty"`
}

func Success(payload any) ToolResult {
	return ToolResult{Status: ToolStatusSuccess, Payload: payload}
}

func Failure(msg string) ToolResult {
	return ToolResult{Status: ToolStatusError, Message: msg}
}

func (r ToolResult) WithMessage(msg string) ToolResult {
	r.Message = msg
	return r
}

func (r ToolResult) Silenced() ToolResult {
	r.Silent = true
	return r
}

// Serialize renders the result as the JSON text the planner consumes.
func (r ToolResult) Serialize() string {
	if r.Status == "" {
		r.Status = ToolStatusSuccess
	}
	raw, err := json.Marshal(r)
	if err != nil {
		fallback, _ := json.Marshal(ToolResult{
			Status:  ToolStatusError,
			Message: "tool result could not be serialized: " + err.Error(),
			Silent:  r.Silent,
		})
		return string(fallback)
	}
	return string(raw)
}

// ToolOutcome pairs the transcript message with the structured result so the
// orchestrator can read flags without parsing message text.
type ToolOutcome struct {
	Message Message
	Result  ToolResult
}

type TurnPhase string

const (
	PhaseIdle              TurnPhase = "idle"
	PhaseAwaitingPlan      TurnPhase = "awaiting_plan"
	PhaseExecutingTools    TurnPhase = "executing_tools"
	PhaseAwaitingSynthesis TurnPhase = "awaiting_synthesis"
	PhaseDone              TurnPhase = "done"
)

// Reply is what a turn hands back to the trigger surface.
type Reply struct {
	TurnID   string `json:"turn_id"`
	Text     string `json:"text"`
	Speak    bool   `json:"speak"`
	Degraded bool   `json:"degraded"`
	// FollowUp is set when the reply asks the user something, so the
	// surface can listen again without a new trigger.
	FollowUp bool `json:"follow_up"`
}
