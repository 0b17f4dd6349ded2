package memory

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/haeun-dev/manito/internal/domain/mission"
)

type QuotaRepository struct {
	mu    sync.Mutex
	items map[string]mission.Quota
}

func NewQuotaRepository() *QuotaRepository {
	return &QuotaRepository{items: make(map[string]mission.Quota)}
}

func (r *QuotaRepository) ListByGroupWeek(_ context.Context, groupID string, week int) ([]mission.Quota, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]mission.Quota, 0)
	for _, item := range r.items {
		if item.GroupID == groupID && item.Week == week {
			out = append(out, item)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].MissionID < out[j].MissionID
	})

	return out, nil
}

func (r *QuotaRepository) GetByMission(_ context.Context, groupID, missionID string, week int) (mission.Quota, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[quotaKey(groupID, missionID, week)]
	if !ok {
		return mission.Quota{}, false, nil
	}

	return item, true, nil
}

// DecrementRemaining is the check-and-decrement executed under one lock, the
// memory rendition of a conditional UPDATE ... WHERE remaining_count > 0.
func (r *QuotaRepository) DecrementRemaining(_ context.Context, groupID, missionID string, week int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := quotaKey(groupID, missionID, week)
	item, ok := r.items[key]
	if !ok {
		return false, fmt.Errorf("quota not found group=%s mission=%s week=%d", groupID, missionID, week)
	}
	if item.RemainingCount <= 0 {
		return false, nil
	}

	item.RemainingCount--
	r.items[key] = item
	return true, nil
}

func (r *QuotaRepository) IncrementRemaining(_ context.Context, groupID, missionID string, week int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := quotaKey(groupID, missionID, week)
	item, ok := r.items[key]
	if !ok {
		return fmt.Errorf("quota not found group=%s mission=%s week=%d", groupID, missionID, week)
	}
	if item.RemainingCount < item.MaxAssignable {
		item.RemainingCount++
		r.items[key] = item
	}

	return nil
}

func (r *QuotaRepository) SetRemaining(_ context.Context, groupID, missionID string, week, remaining int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := quotaKey(groupID, missionID, week)
	item, ok := r.items[key]
	if !ok {
		return fmt.Errorf("quota not found group=%s mission=%s week=%d", groupID, missionID, week)
	}
	if remaining < 0 {
		remaining = 0
	}
	if remaining > item.MaxAssignable {
		remaining = item.MaxAssignable
	}

	item.RemainingCount = remaining
	r.items[key] = item
	return nil
}

// Put exists for seeding and tests; real quota rows come from the external
// seeding job.
func (r *QuotaRepository) Put(item mission.Quota) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[quotaKey(item.GroupID, item.MissionID, item.Week)] = item
}

func quotaKey(groupID, missionID string, week int) string {
	return groupID + "::" + missionID + "::" + strconv.Itoa(week)
}
