package journal

import (
	"context"
	"sync"
)

// Store is an ordered, append-only log of records.
type Store interface {
	Append(ctx context.Context, r Record) error
	Records(ctx context.Context) ([]Record, error)
	Clear(ctx context.Context) error
	Close() error
}

// MemoryStore keeps encoded records in process memory.
type MemoryStore struct {
	mu     sync.Mutex
	lines  []string
	closed bool
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Append encodes r and adds it to the end of the log.
func (m *MemoryStore) Append(ctx context.Context, r Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	line, err := Encode(r)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.lines = append(m.lines, line)
	return nil
}

// Records decodes every stored record in order.
func (m *MemoryStore) Records(ctx context.Context) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil, ErrClosed
	}
	lines := append([]string(nil), m.lines...)
	m.mu.Unlock()

	return decodeAll(lines)
}

// Lines returns the raw JSON lines.
func (m *MemoryStore) Lines() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.lines...)
}

// Clear removes every record.
func (m *MemoryStore) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.lines = nil
	return nil
}

// Close marks the store closed.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func decodeAll(lines []string) ([]Record, error) {
	records := make([]Record, 0, len(lines))
	for _, line := range lines {
		r, err := Decode(line)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, nil
}
