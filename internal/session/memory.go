package session

import (
	"context"
	"sync"
	"time"

	"github.com/zfogg/clipfeed/internal/feed"
	"github.com/zfogg/clipfeed/internal/metrics"
)

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// MemoryStore keeps sessions in process. It serves single-instance
// deployments without Redis and tests.
type MemoryStore struct {
	opts Options
	now  func() time.Time

	mu       sync.Mutex
	sessions map[string]memoryEntry
	locks    map[string]time.Time
}

// NewMemoryStore creates an in-process store
func NewMemoryStore(opts Options) *MemoryStore {
	return &MemoryStore{
		opts:     opts.withDefaults(),
		now:      time.Now,
		sessions: make(map[string]memoryEntry),
		locks:    make(map[string]time.Time),
	}
}

func (m *MemoryStore) Create(ctx context.Context, s *feed.Session) error {
	return m.Save(ctx, s)
}

func (m *MemoryStore) Get(_ context.Context, id string) (*feed.Session, error) {
	m.mu.Lock()
	entry, ok := m.sessions[id]
	if ok && !m.now().Before(entry.expiresAt) {
		delete(m.sessions, id)
		ok = false
	}
	m.mu.Unlock()

	if !ok {
		return nil, feed.ErrSessionNotFound
	}
	return decode(entry.data)
}

func (m *MemoryStore) Save(_ context.Context, s *feed.Session) error {
	data, err := encode(s)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = memoryEntry{data: data, expiresAt: m.now().Add(m.opts.TTL)}
	m.sweep()
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	delete(m.locks, id)
	return nil
}

func (m *MemoryStore) Acquire(_ context.Context, id string) (func(), error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if until, held := m.locks[id]; held && now.Before(until) {
		metrics.Get().SessionGuardRejections.Inc()
		return nil, feed.ErrBatchInFlight
	}
	until := now.Add(m.opts.LockTTL)
	m.locks[id] = until

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			// A holder that outlived LockTTL must not free a newer holder's lock.
			if m.locks[id].Equal(until) {
				delete(m.locks, id)
			}
		})
	}, nil
}

// Len returns the number of live sessions
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sweep()
	return len(m.sessions)
}

// sweep drops expired sessions. Callers hold mu.
func (m *MemoryStore) sweep() {
	now := m.now()
	for id, e := range m.sessions {
		if !now.Before(e.expiresAt) {
			delete(m.sessions, id)
		}
	}
	for id, until := range m.locks {
		if !now.Before(until) {
			delete(m.locks, id)
		}
	}
}
