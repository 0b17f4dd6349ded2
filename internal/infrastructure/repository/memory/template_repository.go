package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/haeun-dev/manito/internal/domain/mission"
)

type TemplateRepository struct {
	mu    sync.RWMutex
	items map[string]mission.Template
}

func NewTemplateRepository() *TemplateRepository {
	return &TemplateRepository{items: make(map[string]mission.Template)}
}

func (r *TemplateRepository) List(_ context.Context) ([]mission.Template, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]mission.Template, 0, len(r.items))
	for _, item := range r.items {
		out = append(out, item)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ID < out[j].ID
	})

	return out, nil
}

func (r *TemplateRepository) GetByID(_ context.Context, missionID string) (mission.Template, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[missionID]
	if !ok {
		return mission.Template{}, false, nil
	}

	return item, true, nil
}

// Put exists for seeding and tests; templates are immutable reference data.
func (r *TemplateRepository) Put(item mission.Template) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[item.ID] = item
}
