package cache

import (
	"context"

	"github.com/haeun-dev/manito/internal/domain/mission"
	basecache "github.com/haeun-dev/manito/internal/platform/cache"
)

// TemplateRepository serves the mission catalog through the in-process
// cache. Templates are reference data that only changes via migration,
// so reads are cached and there is no write path to invalidate.
type TemplateRepository struct {
	next  mission.TemplateRepository
	cache *basecache.Store
}

func NewTemplateRepository(next mission.TemplateRepository, cache *basecache.Store) *TemplateRepository {
	return &TemplateRepository{next: next, cache: cache}
}

func (r *TemplateRepository) List(ctx context.Context) ([]mission.Template, error) {
	v, err := r.cache.GetOrLoad(ctx, "mission-template:list", func(ctx context.Context) (any, error) {
		items, err := r.next.List(ctx)
		if err != nil {
			return nil, err
		}
		return append([]mission.Template(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]mission.Template)
	return append([]mission.Template(nil), items...), nil
}

func (r *TemplateRepository) GetByID(ctx context.Context, missionID string) (mission.Template, bool, error) {
	key := "mission-template:id:" + missionID
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		item, exists, err := r.next.GetByID(ctx, missionID)
		if err != nil {
			return nil, err
		}
		return cachedTemplateByID{value: item, exists: exists}, nil
	})
	if err != nil {
		return mission.Template{}, false, err
	}

	cached, _ := v.(cachedTemplateByID)
	return cached.value, cached.exists, nil
}

type cachedTemplateByID struct {
	value  mission.Template
	exists bool
}
