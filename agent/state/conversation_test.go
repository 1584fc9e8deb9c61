package state

import (
	"context"
	"errors"
	"reflect"
	"testing"

	contractx "github.com/tanpawarit/ultra-assistant/agent/contract"
)

type memDocs struct {
	docs    map[string][]byte
	readErr error
	writes  int
}

func newMemDocs() *memDocs {
	return &memDocs{docs: map[string][]byte{}}
}

func (m *memDocs) Read(_ context.Context, key string) ([]byte, error) {
	if m.readErr != nil {
		return nil, m.readErr
	}
	raw, ok := m.docs[key]
	if !ok {
		return nil, ErrDocumentNotFound
	}
	return append([]byte(nil), raw...), nil
}

func (m *memDocs) Write(_ context.Context, key string, body []byte) error {
	m.writes++
	m.docs[key] = append([]byte(nil), body...)
	return nil
}

func (m *memDocs) Delete(_ context.Context, key string) error {
	delete(m.docs, key)
	return nil
}

func newTestConversation(t *testing.T, docs DocumentStore, instructions *string) *ConversationStore {
	t.Helper()
	store, err := NewConversationStore(docs, "history.json", func() string { return *instructions })
	if err != nil {
		t.Fatalf("NewConversationStore() error = %v", err)
	}
	return store
}

func TestConversationResetDropsHistory(t *testing.T) {
	t.Parallel()

	instructions := "be brief"
	docs := newMemDocs()
	store := newTestConversation(t, docs, &instructions)

	transcript := contractx.Transcript{
		contractx.SystemMessage(instructions),
		contractx.UserMessage("hi"),
		contractx.AssistantMessage("hello"),
	}
	if err := store.Save(context.Background(), transcript); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := store.Reset(context.Background()); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}
	if _, ok := docs.docs["history.json"]; ok {
		t.Fatal("expected history document deleted")
	}

	got, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(got) != 1 || got[0].Role != contractx.RoleSystem {
		t.Fatalf("expected fresh transcript, got %+v", got)
	}
}

func TestConversationLoadEmptySeedsSystemMessage(t *testing.T) {
	t.Parallel()

	instructions := "be brief"
	store := newTestConversation(t, newMemDocs(), &instructions)

	got, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 message, got %d", len(got))
	}
	if got[0].Role != contractx.RoleSystem || got[0].Text() != "be brief" {
		t.Fatalf("unexpected system message: %+v", got[0])
	}
}

func TestConversationLoadSaveIsIdempotentExceptInstructions(t *testing.T) {
	t.Parallel()

	docs := newMemDocs()
	instructions := "v1"
	store := newTestConversation(t, docs, &instructions)
	ctx := context.Background()

	seed := contractx.Transcript{
		contractx.SystemMessage("v1"),
		contractx.UserMessage("What's 2+2?"),
		contractx.AssistantToolCallMessage("", []contractx.ToolInvocationRequest{
			{ID: "call_1", Name: "use_calculator", Arguments: map[string]any{"input_string": "2+2"}},
		}),
		contractx.ToolMessage("call_1", "use_calculator", `{"status":"success"}`),
		contractx.AssistantMessage("It's 4."),
	}
	if err := store.Save(ctx, seed); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	first, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if err := store.Save(ctx, first); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	instructions = "v2"
	second, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if second[0].Text() != "v2" {
		t.Fatalf("system message not refreshed: %q", second[0].Text())
	}
	if !reflect.DeepEqual(first[1:], second[1:]) {
		t.Fatalf("transcript changed across load/save:\nfirst=%+v\nsecond=%+v", first[1:], second[1:])
	}
	if len(second) != len(seed) {
		t.Fatalf("expected %d messages, got %d", len(seed), len(second))
	}
}

func TestConversationLoadCorruptDocumentResets(t *testing.T) {
	t.Parallel()

	docs := newMemDocs()
	docs.docs["history.json"] = []byte(`{not json`)
	instructions := "fresh"
	store := newTestConversation(t, docs, &instructions)

	got, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(got) != 1 || got[0].Text() != "fresh" {
		t.Fatalf("expected fresh transcript, got %+v", got)
	}
}

func TestConversationLoadOrphanToolMessageIsCorrupt(t *testing.T) {
	t.Parallel()

	docs := newMemDocs()
	docs.docs["history.json"] = []byte(`[{"role":"system","content":"x"},{"role":"tool","content":"{}","tool_call_id":"call_9","name":"use_calculator"}]`)
	instructions := "fresh"
	store := newTestConversation(t, docs, &instructions)

	got, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected reset transcript, got %d messages", len(got))
	}
}

func TestConversationLoadPrependsSystemWhenMissing(t *testing.T) {
	t.Parallel()

	docs := newMemDocs()
	docs.docs["history.json"] = []byte(`[{"role":"user","content":"hi"}]`)
	instructions := "sys"
	store := newTestConversation(t, docs, &instructions)

	got, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(got) != 2 || got[0].Role != contractx.RoleSystem || got[1].Text() != "hi" {
		t.Fatalf("unexpected transcript: %+v", got)
	}
}

func TestConversationLoadPropagatesBackendError(t *testing.T) {
	t.Parallel()

	docs := newMemDocs()
	docs.readErr = errors.New("connection refused")
	instructions := "sys"
	store := newTestConversation(t, docs, &instructions)

	if _, err := store.Load(context.Background()); err == nil {
		t.Fatal("expected backend error")
	}
}

func TestConversationSaveRejectsNullToolCallContent(t *testing.T) {
	t.Parallel()

	docs := newMemDocs()
	instructions := "sys"
	store := newTestConversation(t, docs, &instructions)

	bad := contractx.Transcript{
		contractx.SystemMessage("sys"),
		{Role: contractx.RoleAssistant, ToolCalls: []contractx.ToolInvocationRequest{{ID: "c1", Name: "x"}}},
	}
	if err := store.Save(context.Background(), bad); !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("Save() error = %v, want ErrValidation", err)
	}
	if docs.writes != 0 {
		t.Fatalf("expected no write, got %d", docs.writes)
	}
}
