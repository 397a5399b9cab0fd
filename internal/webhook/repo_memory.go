package webhook

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is a simple in-memory append-only store useful for
// tests. It is not intended for production use.
type MemoryStore struct {
	mu      sync.Mutex
	nextID  int64
	entries []memEntry
	clock   func() time.Time

	// AppendErr, when set, makes Append fail; used to exercise the
	// storage-error path.
	AppendErr error
}

type memEntry struct {
	LogEntry
	payload Payload
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{nextID: 1, clock: time.Now}
}

func (m *MemoryStore) Append(ctx context.Context, e NewLogEntry) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.AppendErr != nil {
		return 0, m.AppendErr
	}
	id := m.nextID
	m.nextID++
	m.entries = append(m.entries, memEntry{
		LogEntry: LogEntry{
			LogID:        id,
			EventType:    e.EventType,
			ContactEmail: e.ContactEmail,
			ContactID:    e.ContactID,
			ReceivedAt:   m.clock().UTC(),
		},
		payload: e.Payload,
	})
	return id, nil
}

func (m *MemoryStore) RecentLogs(ctx context.Context, limit int) ([]LogEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]LogEntry, 0, limit)
	for i := len(m.entries) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.entries[i].LogEntry)
	}
	return out, nil
}

func (m *MemoryStore) Stats(ctx context.Context) (Stats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := Stats{EventTypes: make(map[string]int64)}
	cutoff := m.clock().UTC().Add(-24 * time.Hour)
	for _, e := range m.entries {
		s.TotalLogs++
		s.EventTypes[e.EventType]++
		if e.ReceivedAt.After(cutoff) {
			s.Recent24h++
		}
	}
	return s, nil
}

func (m *MemoryStore) Ping(ctx context.Context) error { return nil }

func (m *MemoryStore) Close() error { return nil }

// Entries returns a copy of everything appended so far.
func (m *MemoryStore) Entries() []LogEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]LogEntry, len(m.entries))
	for i, e := range m.entries {
		out[i] = e.LogEntry
	}
	return out
}
