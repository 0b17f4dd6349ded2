package assignment

import (
	"fmt"
	"time"
)

type SelectionType string

const (
	// SelectionManual is a mission the user picked from the group's weekly
	// catalog; manual selections consume quota.
	SelectionManual SelectionType = "manual"
	// SelectionAuto is a fallback mission handed out by the status view;
	// auto selections bypass quota.
	SelectionAuto SelectionType = "auto"
)

type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// Assignment is one ledger row: a mission granted to a user within a group
// week. Status only ever moves in_progress -> completed.
type Assignment struct {
	ID            string
	UserID        string
	GroupID       string
	MissionID     string
	Week          int
	AssignedDate  time.Time // midnight in the service timezone
	SelectionType SelectionType
	Status        Status
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (a Assignment) Validate() error {
	if a.ID == "" {
		return fmt.Errorf("assignment id is required")
	}
	if a.UserID == "" {
		return fmt.Errorf("user id is required")
	}
	if a.GroupID == "" {
		return fmt.Errorf("group id is required")
	}
	if a.MissionID == "" {
		return fmt.Errorf("mission id is required")
	}
	if a.Week < 1 {
		return fmt.Errorf("week must be >= 1")
	}
	if a.AssignedDate.IsZero() {
		return fmt.Errorf("assigned date is required")
	}
	if a.SelectionType != SelectionManual && a.SelectionType != SelectionAuto {
		return fmt.Errorf("unknown selection type %q", a.SelectionType)
	}
	if a.Status != StatusInProgress && a.Status != StatusCompleted {
		return fmt.Errorf("unknown status %q", a.Status)
	}

	return nil
}
