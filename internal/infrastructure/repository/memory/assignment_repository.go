package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/haeun-dev/manito/internal/domain/assignment"
)

type AssignmentRepository struct {
	mu    sync.Mutex
	items map[string]assignment.Assignment
}

func NewAssignmentRepository() *AssignmentRepository {
	return &AssignmentRepository{items: make(map[string]assignment.Assignment)}
}

// Create enforces both ledger uniqueness rules under the lock: one assignment
// per (user, group) per day and one manual assignment per (user, group,
// mission, week).
func (r *AssignmentRepository) Create(_ context.Context, item assignment.Assignment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[item.ID]; exists {
		return fmt.Errorf("%w: id=%s", assignment.ErrDuplicate, item.ID)
	}
	for _, existing := range r.items {
		if existing.UserID != item.UserID || existing.GroupID != item.GroupID {
			continue
		}
		if existing.AssignedDate.Equal(item.AssignedDate) {
			return fmt.Errorf("%w: user=%s already assigned on %s", assignment.ErrDuplicate, item.UserID, item.AssignedDate.Format("2006-01-02"))
		}
		if item.SelectionType == assignment.SelectionManual &&
			existing.SelectionType == assignment.SelectionManual &&
			existing.MissionID == item.MissionID &&
			existing.Week == item.Week {
			return fmt.Errorf("%w: user=%s mission=%s week=%d", assignment.ErrDuplicate, item.UserID, item.MissionID, item.Week)
		}
	}

	r.items[item.ID] = item
	return nil
}

func (r *AssignmentRepository) GetByID(_ context.Context, assignmentID string) (assignment.Assignment, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[assignmentID]
	if !ok {
		return assignment.Assignment{}, false, nil
	}

	return item, true, nil
}

func (r *AssignmentRepository) GetByUserAndDate(_ context.Context, userID, groupID string, date time.Time) (assignment.Assignment, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, item := range r.items {
		if item.UserID == userID && item.GroupID == groupID && item.AssignedDate.Equal(date) {
			return item, true, nil
		}
	}

	return assignment.Assignment{}, false, nil
}

func (r *AssignmentRepository) ListByUserAndWeek(_ context.Context, userID, groupID string, week int) ([]assignment.Assignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]assignment.Assignment, 0)
	for _, item := range r.items {
		if item.UserID == userID && item.GroupID == groupID && item.Week == week {
			out = append(out, item)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})

	return out, nil
}

func (r *AssignmentRepository) ExistsManual(_ context.Context, userID, groupID, missionID string, week int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, item := range r.items {
		if item.UserID == userID && item.GroupID == groupID && item.MissionID == missionID &&
			item.Week == week && item.SelectionType == assignment.SelectionManual {
			return true, nil
		}
	}

	return false, nil
}

func (r *AssignmentRepository) CountManualByMissionAndDate(_ context.Context, groupID, missionID string, date time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := 0
	for _, item := range r.items {
		if item.GroupID == groupID && item.MissionID == missionID &&
			item.SelectionType == assignment.SelectionManual && item.AssignedDate.Equal(date) {
			count++
		}
	}

	return count, nil
}

func (r *AssignmentRepository) CountManualByMissionAndWeek(_ context.Context, groupID, missionID string, week int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := 0
	for _, item := range r.items {
		if item.GroupID == groupID && item.MissionID == missionID &&
			item.SelectionType == assignment.SelectionManual && item.Week == week {
			count++
		}
	}

	return count, nil
}

func (r *AssignmentRepository) UpdateStatus(_ context.Context, assignmentID string, status assignment.Status, updatedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[assignmentID]
	if !ok {
		return fmt.Errorf("assignment not found id=%s", assignmentID)
	}

	item.Status = status
	item.UpdatedAt = updatedAt
	r.items[assignmentID] = item
	return nil
}
