package state

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	contractx "github.com/tanpawarit/ultra-assistant/agent/contract"
)

func newTestMemory(t *testing.T, docs DocumentStore, now time.Time) *MemoryStore {
	t.Helper()
	store, err := NewMemoryStore(docs, "memory.json", WithClock(func() time.Time { return now }))
	if err != nil {
		t.Fatalf("NewMemoryStore() error = %v", err)
	}
	return store
}

func TestMemoryStoreAddsRecordWithNullRetrieveTime(t *testing.T) {
	t.Parallel()

	docs := newMemDocs()
	now := time.Date(2026, 3, 1, 17, 0, 0, 0, time.UTC)
	store := newTestMemory(t, docs, now)

	record, err := store.Store(context.Background(), "call mom at 5pm")
	if err != nil {
		t.Fatalf("Store() error = %v", err)
	}
	if !record.StoreTime.Equal(now) || record.RetrieveTime != nil {
		t.Fatalf("unexpected record: %+v", record)
	}

	var persisted []map[string]any
	if err := json.Unmarshal(docs.docs["memory.json"], &persisted); err != nil {
		t.Fatalf("decode persisted memory: %v", err)
	}
	if len(persisted) != 1 {
		t.Fatalf("expected 1 record, got %d", len(persisted))
	}
	if persisted[0]["data"] != "call mom at 5pm" {
		t.Fatalf("unexpected data: %v", persisted[0]["data"])
	}
	if persisted[0]["store_time"] == nil {
		t.Fatal("store_time must be set")
	}
	if v, ok := persisted[0]["retrieve_time"]; !ok || v != nil {
		t.Fatalf("retrieve_time must be present and null, got %v (present=%v)", v, ok)
	}
}

func TestMemoryStoreRetrieveStampsRecords(t *testing.T) {
	t.Parallel()

	docs := newMemDocs()
	now := time.Date(2026, 3, 1, 17, 0, 0, 0, time.UTC)
	store := newTestMemory(t, docs, now)
	ctx := context.Background()

	if _, err := store.Store(ctx, "a"); err != nil {
		t.Fatalf("Store() error = %v", err)
	}
	got, err := store.Retrieve(ctx)
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if len(got) != 1 || got[0].RetrieveTime == nil || !got[0].RetrieveTime.Equal(now) {
		t.Fatalf("unexpected retrieve result: %+v", got)
	}

	records, err := store.Records(ctx)
	if err != nil {
		t.Fatalf("Records() error = %v", err)
	}
	if records[0].RetrieveTime == nil {
		t.Fatal("retrieve time must be persisted")
	}
}

func TestMemoryStoreStoreStoreClearLeavesEmptyList(t *testing.T) {
	t.Parallel()

	docs := newMemDocs()
	store := newTestMemory(t, docs, time.Now())
	ctx := context.Background()

	for _, data := range []string{"one", "two"} {
		if _, err := store.Store(ctx, data); err != nil {
			t.Fatalf("Store(%q) error = %v", data, err)
		}
	}
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}

	if string(docs.docs["memory.json"]) != "[]" {
		t.Fatalf("expected empty list document, got %s", docs.docs["memory.json"])
	}
}

func TestMemoryStoreCorruptDocumentReadsEmpty(t *testing.T) {
	t.Parallel()

	docs := newMemDocs()
	docs.docs["memory.json"] = []byte("garbage")
	store := newTestMemory(t, docs, time.Now())

	records, err := store.Records(context.Background())
	if err != nil {
		t.Fatalf("Records() error = %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected no records, got %d", len(records))
	}
}

func TestMemoryStoreRejectsEmptyData(t *testing.T) {
	t.Parallel()

	store := newTestMemory(t, newMemDocs(), time.Now())
	if _, err := store.Store(context.Background(), "  "); !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("Store() error = %v, want ErrValidation", err)
	}
}
