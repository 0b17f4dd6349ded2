package assignment

import (
	"context"
	"errors"
	"time"
)

// ErrDuplicate reports a uniqueness-constraint hit on Create: either a second
// assignment dated the same day for the (user, group), or a second manual
// assignment for the (user, group, mission, week).
var ErrDuplicate = errors.New("assignment already exists")

type Repository interface {
	Create(ctx context.Context, item Assignment) error
	GetByID(ctx context.Context, assignmentID string) (Assignment, bool, error)
	GetByUserAndDate(ctx context.Context, userID, groupID string, date time.Time) (Assignment, bool, error)
	ListByUserAndWeek(ctx context.Context, userID, groupID string, week int) ([]Assignment, error)
	ExistsManual(ctx context.Context, userID, groupID, missionID string, week int) (bool, error)
	CountManualByMissionAndDate(ctx context.Context, groupID, missionID string, date time.Time) (int, error)
	CountManualByMissionAndWeek(ctx context.Context, groupID, missionID string, week int) (int, error)
	UpdateStatus(ctx context.Context, assignmentID string, status Status, updatedAt time.Time) error
}
