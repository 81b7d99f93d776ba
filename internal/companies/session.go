package companies

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/dei-tracker/web/internal/models"
)

// SessionStore keeps fetch-all row sets between page requests of the same
// filter session.
type SessionStore interface {
	Name() string
	GetRows(ctx context.Context, key string) ([]models.Company, bool, error)
	SetRows(ctx context.Context, key string, rows []models.Company, ttl time.Duration) error
}

// DefaultSessionCapacity is the number of row sets a MemoryStore keeps when
// no capacity is configured.
const DefaultSessionCapacity = 256

type memoryEntry struct {
	rows    []models.Company
	expires time.Time
}

// MemoryStore is the in-process SessionStore. It holds at most capacity row
// sets and drops the least recently used one when full. Expired entries are
// removed on read.
type MemoryStore struct {
	entries *lru.Cache[string, memoryEntry]
	now     func() time.Time
}

func NewMemoryStore(capacity int) *MemoryStore {
	if capacity < 1 {
		capacity = DefaultSessionCapacity
	}
	// lru.New only fails for a non-positive size.
	entries, _ := lru.New[string, memoryEntry](capacity)
	return &MemoryStore{
		entries: entries,
		now:     time.Now,
	}
}

func (s *MemoryStore) Name() string {
	return "memory"
}

func (s *MemoryStore) GetRows(_ context.Context, key string) ([]models.Company, bool, error) {
	entry, ok := s.entries.Get(key)
	if !ok {
		return nil, false, nil
	}
	if !s.now().Before(entry.expires) {
		s.entries.Remove(key)
		return nil, false, nil
	}
	return entry.rows, true, nil
}

func (s *MemoryStore) SetRows(_ context.Context, key string, rows []models.Company, ttl time.Duration) error {
	s.entries.Add(key, memoryEntry{rows: rows, expires: s.now().Add(ttl)})
	return nil
}

func (s *MemoryStore) Len() int {
	return s.entries.Len()
}
