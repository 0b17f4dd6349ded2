package postgres

import (
	"time"

	"github.com/haeun-dev/manito/internal/domain/assignment"
)

// assignedDateLayout is how assigned_date crosses the wire. The column is a
// DATE; sending a time.Time would let the DB session timezone reinterpret the
// instant, so the calendar's local date is formatted in Go before the driver
// sees it.
const assignedDateLayout = "2006-01-02"

func assignedDateArg(t time.Time) string {
	return t.Format(assignedDateLayout)
}

type assignmentTableModel struct {
	ID            string    `db:"id"`
	UserID        string    `db:"user_id"`
	GroupID       string    `db:"group_id"`
	MissionID     string    `db:"mission_id"`
	Week          int       `db:"week"`
	AssignedDate  time.Time `db:"assigned_date"`
	SelectionType string    `db:"selection_type"`
	Status        string    `db:"status"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

type assignmentInsertModel struct {
	ID            string    `db:"id"`
	UserID        string    `db:"user_id"`
	GroupID       string    `db:"group_id"`
	MissionID     string    `db:"mission_id"`
	Week          int       `db:"week"`
	AssignedDate  string    `db:"assigned_date"`
	SelectionType string    `db:"selection_type"`
	Status        string    `db:"status"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

func assignmentToInsertModel(item assignment.Assignment) assignmentInsertModel {
	return assignmentInsertModel{
		ID:            item.ID,
		UserID:        item.UserID,
		GroupID:       item.GroupID,
		MissionID:     item.MissionID,
		Week:          item.Week,
		AssignedDate:  assignedDateArg(item.AssignedDate),
		SelectionType: string(item.SelectionType),
		Status:        string(item.Status),
		CreatedAt:     item.CreatedAt,
		UpdatedAt:     item.UpdatedAt,
	}
}

func assignmentFromRow(row assignmentTableModel) assignment.Assignment {
	return assignment.Assignment{
		ID:            row.ID,
		UserID:        row.UserID,
		GroupID:       row.GroupID,
		MissionID:     row.MissionID,
		Week:          row.Week,
		AssignedDate:  row.AssignedDate,
		SelectionType: assignment.SelectionType(row.SelectionType),
		Status:        assignment.Status(row.Status),
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	}
}
