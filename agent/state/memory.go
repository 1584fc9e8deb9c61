package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/ultra-assistant/agent/contract"
)

// MemoryStore keeps the personal memory list as one document, rewritten
// on every mutation.
type MemoryStore struct {
	docs DocumentStore
	key  string
	now  func() time.Time
	mu   sync.Mutex
}

var _ contractx.MemoryStore = (*MemoryStore)(nil)

type MemoryOption func(*MemoryStore)

func WithClock(now func() time.Time) MemoryOption {
	return func(s *MemoryStore) {
		if now != nil {
			s.now = now
		}
	}
}

func NewMemoryStore(docs DocumentStore, key string, opts ...MemoryOption) (*MemoryStore, error) {
	if docs == nil {
		return nil, errors.New("document store is required")
	}
	if key == "" {
		key = "memory.json"
	}
	s := &MemoryStore{docs: docs, key: key, now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

func (s *MemoryStore) Records(ctx context.Context) ([]contractx.MemoryRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read(ctx)
}

func (s *MemoryStore) Store(ctx context.Context, data string) (contractx.MemoryRecord, error) {
	if strings.TrimSpace(data) == "" {
		return contractx.MemoryRecord{}, fmt.Errorf("%w: memory data is empty", contractx.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.read(ctx)
	if err != nil {
		return contractx.MemoryRecord{}, err
	}
	record := contractx.MemoryRecord{
		Data:      data,
		StoreTime: s.now().Truncate(time.Second),
	}
	records = append(records, record)
	if err := s.write(ctx, records); err != nil {
		return contractx.MemoryRecord{}, err
	}
	return record, nil
}

// Retrieve stamps every record with the current time and returns them.
func (s *MemoryStore) Retrieve(ctx context.Context) ([]contractx.MemoryRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.read(ctx)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return records, nil
	}

	now := s.now().Truncate(time.Second)
	for i := range records {
		stamp := now
		records[i].RetrieveTime = &stamp
	}
	if err := s.write(ctx, records); err != nil {
		return nil, err
	}
	return records, nil
}

func (s *MemoryStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(ctx, []contractx.MemoryRecord{})
}

func (s *MemoryStore) read(ctx context.Context) ([]contractx.MemoryRecord, error) {
	raw, err := s.docs.Read(ctx, s.key)
	if err != nil {
		if errors.Is(err, ErrDocumentNotFound) {
			return []contractx.MemoryRecord{}, nil
		}
		return nil, fmt.Errorf("load memory: %w", err)
	}

	var records []contractx.MemoryRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		log.Warn().
			Err(fmt.Errorf("%w: %v", contractx.ErrPersistenceCorrupt, err)).
			Str("key", s.key).
			Msg("memory document unreadable, starting empty")
		return []contractx.MemoryRecord{}, nil
	}
	if records == nil {
		records = []contractx.MemoryRecord{}
	}
	return records, nil
}

func (s *MemoryStore) write(ctx context.Context, records []contractx.MemoryRecord) error {
	raw, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("marshal memory: %w", err)
	}
	if err := s.docs.Write(ctx, s.key, raw); err != nil {
		return fmt.Errorf("save memory: %w", err)
	}
	return nil
}
