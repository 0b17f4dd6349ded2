package memory

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/haeun-dev/manito/internal/domain/anonymity"
)

type SnapshotRepository struct {
	mu    sync.Mutex
	items map[string]anonymity.Snapshot
}

func NewSnapshotRepository() *SnapshotRepository {
	return &SnapshotRepository{items: make(map[string]anonymity.Snapshot)}
}

func (r *SnapshotRepository) Get(_ context.Context, userID, groupID string, week int) (anonymity.Snapshot, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[snapshotKey(userID, groupID, week)]
	if !ok {
		return anonymity.Snapshot{}, false, nil
	}

	return item, true, nil
}

// Create is first-writer-wins; a second insert for the same (user, group,
// week) reports ErrAlreadyExists and never overwrites the pinned name.
func (r *SnapshotRepository) Create(_ context.Context, item anonymity.Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := snapshotKey(item.UserID, item.GroupID, item.Week)
	if _, exists := r.items[key]; exists {
		return fmt.Errorf("%w: user=%s group=%s week=%d", anonymity.ErrAlreadyExists, item.UserID, item.GroupID, item.Week)
	}

	r.items[key] = item
	return nil
}

func snapshotKey(userID, groupID string, week int) string {
	return userID + "::" + groupID + "::" + strconv.Itoa(week)
}
