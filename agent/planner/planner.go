// Package planner adapts a tool-calling chat model to the assistant's
// transcript and tool-request types.
package planner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/google/uuid"

	contractx "github.com/tanpawarit/ultra-assistant/agent/contract"
)

// Planner completes a transcript. With tools it may answer with tool
// requests; without tools it must answer in text.
type Planner interface {
	Complete(ctx context.Context, transcript contractx.Transcript, tools []*schema.ToolInfo) (contractx.PlannerResponse, error)
}

type ChatPlanner struct {
	model       einomodel.ToolCallingChatModel
	temperature *float32
}

var _ Planner = (*ChatPlanner)(nil)

type Option func(*ChatPlanner)

func WithTemperature(t float32) Option {
	return func(p *ChatPlanner) {
		p.temperature = &t
	}
}

func New(model einomodel.ToolCallingChatModel, opts ...Option) (*ChatPlanner, error) {
	if model == nil {
		return nil, fmt.Errorf("%w: chat model is required", contractx.ErrValidation)
	}
	p := &ChatPlanner{model: model}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p, nil
}

func (p *ChatPlanner) Complete(ctx context.Context, transcript contractx.Transcript, tools []*schema.ToolInfo) (contractx.PlannerResponse, error) {
	m := p.model
	if len(tools) > 0 {
		bound, err := p.model.WithTools(tools)
		if err != nil {
			return contractx.PlannerResponse{}, fmt.Errorf("%w: bind tools: %v", contractx.ErrPlannerBackend, err)
		}
		m = bound
	}

	var opts []einomodel.Option
	if p.temperature != nil {
		opts = append(opts, einomodel.WithTemperature(*p.temperature))
	}

	out, err := m.Generate(ctx, ToSchemaMessages(transcript), opts...)
	if err != nil {
		return contractx.PlannerResponse{}, classify(ctx, err)
	}
	if out == nil {
		return contractx.PlannerResponse{}, fmt.Errorf("%w: empty response", contractx.ErrPlannerBackend)
	}
	return FromSchemaMessage(out), nil
}

func classify(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", contractx.ErrPlannerTimeout, err)
	}
	return fmt.Errorf("%w: %v", contractx.ErrPlannerBackend, err)
}

var roles = map[contractx.Role]schema.RoleType{
	contractx.RoleSystem:    schema.System,
	contractx.RoleUser:      schema.User,
	contractx.RoleAssistant: schema.Assistant,
	contractx.RoleTool:      schema.Tool,
}

func ToSchemaMessages(t contractx.Transcript) []*schema.Message {
	out := make([]*schema.Message, 0, len(t))
	for _, m := range t {
		msg := &schema.Message{
			Role:       roles[m.Role],
			Content:    m.Text(),
			ToolCallID: m.ToolCallID,
			Name:       m.Name,
		}
		for _, call := range m.ToolCalls {
			msg.ToolCalls = append(msg.ToolCalls, schema.ToolCall{
				ID:   call.ID,
				Type: "function",
				Function: schema.FunctionCall{
					Name:      call.Name,
					Arguments: rawArguments(call),
				},
			})
		}
		out = append(out, msg)
	}
	return out
}

func rawArguments(call contractx.ToolInvocationRequest) string {
	if call.RawArguments != "" {
		return call.RawArguments
	}
	if call.Arguments == nil {
		return "{}"
	}
	raw, err := json.Marshal(call.Arguments)
	if err != nil {
		return "{}"
	}
	return string(raw)
}

// FromSchemaMessage converts a model reply. Missing call ids are filled so
// every tool message can be paired with its request; undecodable
// arguments are kept on the request for the executor to report.
func FromSchemaMessage(msg *schema.Message) contractx.PlannerResponse {
	resp := contractx.PlannerResponse{Content: msg.Content}
	for _, call := range msg.ToolCalls {
		req := contractx.ToolInvocationRequest{
			ID:           strings.TrimSpace(call.ID),
			Name:         strings.TrimSpace(call.Function.Name),
			RawArguments: call.Function.Arguments,
			Arguments:    map[string]any{},
		}
		if req.ID == "" {
			req.ID = "call_" + uuid.NewString()
		}
		if raw := strings.TrimSpace(call.Function.Arguments); raw != "" {
			var args map[string]any
			if err := json.Unmarshal([]byte(raw), &args); err != nil {
				req.DecodeErr = err
			} else if args != nil {
				req.Arguments = args
			}
		}
		resp.ToolCalls = append(resp.ToolCalls, req)
	}
	return resp
}
