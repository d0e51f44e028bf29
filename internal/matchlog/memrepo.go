package matchlog

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// memrepo is a development-only in-memory match log used when no DB is
// configured.
type memrepo struct {
	mu sync.RWMutex

	nextID    int64
	byID      map[int64]*Record
	bySession map[string]*Record
}

func NewMemoryRepository() Repository {
	return &memrepo{
		byID:      make(map[int64]*Record),
		bySession: make(map[string]*Record),
	}
}

func (m *memrepo) InsertMatch(ctx context.Context, rec *Record) (int64, error) {
	if rec == nil {
		return 0, ErrDuplicateMatch
	}
	key := strings.TrimSpace(rec.SessionUUID)

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.bySession[key]; exists {
		return 0, ErrDuplicateMatch
	}

	m.nextID++
	cp := *rec
	cp.ID = m.nextID
	cp.MovesUCI = append([]string(nil), rec.MovesUCI...)
	cp.MovesSAN = append([]string(nil), rec.MovesSAN...)

	m.byID[cp.ID] = &cp
	m.bySession[key] = &cp
	return cp.ID, nil
}

func (m *memrepo) RecentMatches(ctx context.Context, limit int) ([]*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	items := make([]*Record, 0, len(m.byID))
	for _, rec := range m.byID {
		cp := *rec
		items = append(items, &cp)
	}
	sort.Slice(items, func(i, j int) bool {
		if !items[i].EndedAt.Equal(items[j].EndedAt) {
			return items[i].EndedAt.After(items[j].EndedAt)
		}
		return items[i].ID > items[j].ID
	})
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}
