package planner

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	contractx "github.com/tanpawarit/ultra-assistant/agent/contract"
)

type fakeToolCallingModel struct {
	responses []*schema.Message
	err       error
	idx       int
	block     bool
	inputs    [][]*schema.Message
	tools     []*schema.ToolInfo
}

func (f *fakeToolCallingModel) Generate(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.Message, error) {
	f.inputs = append(f.inputs, input)
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.err != nil {
		return nil, f.err
	}
	if f.idx >= len(f.responses) {
		return nil, errors.New("no fake response left")
	}
	msg := f.responses[f.idx]
	f.idx++
	return msg, nil
}

func (f *fakeToolCallingModel) Stream(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("stream not implemented in fake model")
}

func (f *fakeToolCallingModel) WithTools(tools []*schema.ToolInfo) (einomodel.ToolCallingChatModel, error) {
	f.tools = tools
	return f, nil
}

func TestCompleteReturnsToolCalls(t *testing.T) {
	t.Parallel()

	fake := &fakeToolCallingModel{responses: []*schema.Message{{
		Role: schema.Assistant,
		ToolCalls: []schema.ToolCall{
			{ID: "call_1", Function: schema.FunctionCall{Name: "use_calculator", Arguments: `{"input_string":"2+2"}`}},
			{Function: schema.FunctionCall{Name: "get_current_datetime", Arguments: ""}},
			{ID: "call_3", Function: schema.FunctionCall{Name: "personal_memory", Arguments: `{"operation":`}},
		},
	}}}
	p, err := New(fake, WithTemperature(0.7))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	tools := []*schema.ToolInfo{{Name: "use_calculator"}}
	resp, err := p.Complete(context.Background(), contractx.Transcript{
		contractx.SystemMessage("sys"),
		contractx.UserMessage("what is 2+2"),
	}, tools)
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if len(fake.tools) != 1 {
		t.Fatalf("expected tools bound, got %v", fake.tools)
	}
	if !resp.HasToolCalls() || len(resp.ToolCalls) != 3 {
		t.Fatalf("unexpected tool calls: %+v", resp.ToolCalls)
	}
	if resp.ToolCalls[0].Arguments["input_string"] != "2+2" {
		t.Fatalf("unexpected arguments: %+v", resp.ToolCalls[0].Arguments)
	}
	if !strings.HasPrefix(resp.ToolCalls[1].ID, "call_") || len(resp.ToolCalls[1].Arguments) != 0 {
		t.Fatalf("expected synthesized id and empty args, got %+v", resp.ToolCalls[1])
	}
	if resp.ToolCalls[2].DecodeErr == nil {
		t.Fatal("expected decode error for truncated arguments")
	}

	in := fake.inputs[0]
	if len(in) != 2 || in[0].Role != schema.System || in[1].Content != "what is 2+2" {
		t.Fatalf("unexpected model input: %+v", in)
	}
}

func TestCompleteTextWithoutTools(t *testing.T) {
	t.Parallel()

	fake := &fakeToolCallingModel{responses: []*schema.Message{{Role: schema.Assistant, Content: "4"}}}
	p, _ := New(fake)

	resp, err := p.Complete(context.Background(), contractx.Transcript{contractx.UserMessage("2+2")}, nil)
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if resp.HasToolCalls() || resp.Content != "4" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if fake.tools != nil {
		t.Fatal("tools must not be bound for a synthesis call")
	}
}

func TestCompleteBackendError(t *testing.T) {
	t.Parallel()

	p, _ := New(&fakeToolCallingModel{err: errors.New("502 bad gateway")})
	_, err := p.Complete(context.Background(), nil, nil)
	if !errors.Is(err, contractx.ErrPlannerBackend) {
		t.Fatalf("Complete() error = %v, want ErrPlannerBackend", err)
	}
}

func TestToSchemaMessagesKeepsToolPairing(t *testing.T) {
	t.Parallel()

	calls := []contractx.ToolInvocationRequest{{ID: "c1", Name: "use_calculator", Arguments: map[string]any{"input_string": "1+1"}}}
	msgs := ToSchemaMessages(contractx.Transcript{
		contractx.AssistantToolCallMessage("", calls),
		contractx.ToolMessage("c1", "use_calculator", `{"status":"success"}`),
	})
	if msgs[0].Role != schema.Assistant || len(msgs[0].ToolCalls) != 1 {
		t.Fatalf("unexpected assistant message: %+v", msgs[0])
	}
	if msgs[0].ToolCalls[0].Function.Arguments != `{"input_string":"1+1"}` {
		t.Fatalf("unexpected arguments: %s", msgs[0].ToolCalls[0].Function.Arguments)
	}
	if msgs[1].Role != schema.Tool || msgs[1].ToolCallID != "c1" {
		t.Fatalf("unexpected tool message: %+v", msgs[1])
	}
}

func TestWithDeadlinesHardTimeout(t *testing.T) {
	t.Parallel()

	var slow atomic.Int32
	inner, _ := New(&fakeToolCallingModel{block: true})
	p := WithDeadlines(inner, 10*time.Millisecond, 50*time.Millisecond, func() { slow.Add(1) })

	start := time.Now()
	_, err := p.Complete(context.Background(), nil, nil)
	if !errors.Is(err, contractx.ErrPlannerTimeout) {
		t.Fatalf("Complete() error = %v, want ErrPlannerTimeout", err)
	}
	if time.Since(start) > 2*time.Second {
		t.Fatal("hard timeout not enforced")
	}
	if slow.Load() != 1 {
		t.Fatalf("onSlow called %d times, want 1", slow.Load())
	}
}

func TestWithDeadlinesFastCallSkipsNotice(t *testing.T) {
	t.Parallel()

	var slow atomic.Int32
	inner, _ := New(&fakeToolCallingModel{responses: []*schema.Message{{Content: "hi"}}})
	p := WithDeadlines(inner, time.Second, 5*time.Second, func() { slow.Add(1) })

	resp, err := p.Complete(context.Background(), nil, nil)
	if err != nil || resp.Content != "hi" {
		t.Fatalf("Complete() = %+v, %v", resp, err)
	}
	if slow.Load() != 0 {
		t.Fatal("onSlow must not fire for fast calls")
	}
}
