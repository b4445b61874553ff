package server

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/cv-builder/internal/db"
	"github.com/jonathan/cv-builder/internal/types"
)

var _ Store = (*db.DB)(nil)

// Store persists saved résumés per owner. Get and Update return nil when
// the résumé does not exist for that owner. *db.DB satisfies Store.
type Store interface {
	ListResumes(ctx context.Context, owner string) ([]types.SavedResume, error)
	GetResume(ctx context.Context, owner, id string) (*types.SavedResume, error)
	CreateResume(ctx context.Context, owner string, r types.SavedResume) (*types.SavedResume, error)
	UpdateResume(ctx context.Context, owner string, r types.SavedResume) (*types.SavedResume, error)
	DeleteResume(ctx context.Context, owner, id string) (bool, error)
}

// MemoryStore keeps résumés in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	byOwner map[string]map[string]types.SavedResume
	now     func() time.Time
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byOwner: make(map[string]map[string]types.SavedResume),
		now:     time.Now,
	}
}

// ListResumes returns the owner's résumés, most recently updated first.
func (m *MemoryStore) ListResumes(_ context.Context, owner string) ([]types.SavedResume, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]types.SavedResume, 0, len(m.byOwner[owner]))
	for _, r := range m.byOwner[owner] {
		r.Data = r.Data.Clone()
		out = append(out, r)
	}
	slices.SortFunc(out, func(a, b types.SavedResume) int {
		if c := b.UpdatedAt.Compare(a.UpdatedAt); c != 0 {
			return c
		}
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out, nil
}

func (m *MemoryStore) GetResume(_ context.Context, owner, id string) (*types.SavedResume, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.byOwner[owner][id]
	if !ok {
		return nil, nil
	}
	r.Data = r.Data.Clone()
	return &r, nil
}

func (m *MemoryStore) CreateResume(_ context.Context, owner string, r types.SavedResume) (*types.SavedResume, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now().UTC()
	r.ID = uuid.NewString()
	r.Data = r.Data.Clone()
	r.Data.ID = r.ID
	r.CreatedAt, r.UpdatedAt = now, now

	if m.byOwner[owner] == nil {
		m.byOwner[owner] = make(map[string]types.SavedResume)
	}
	m.byOwner[owner][r.ID] = r

	out := r
	out.Data = r.Data.Clone()
	return &out, nil
}

func (m *MemoryStore) UpdateResume(_ context.Context, owner string, r types.SavedResume) (*types.SavedResume, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.byOwner[owner][r.ID]
	if !ok {
		return nil, nil
	}
	r.Data = r.Data.Clone()
	r.Data.ID = r.ID
	r.CreatedAt = existing.CreatedAt
	r.UpdatedAt = m.now().UTC()
	m.byOwner[owner][r.ID] = r

	out := r
	out.Data = r.Data.Clone()
	return &out, nil
}

func (m *MemoryStore) DeleteResume(_ context.Context, owner, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byOwner[owner][id]; !ok {
		return false, nil
	}
	delete(m.byOwner[owner], id)
	return true, nil
}
