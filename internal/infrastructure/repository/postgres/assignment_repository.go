package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/haeun-dev/manito/internal/domain/assignment"
	qb "github.com/haeun-dev/manito/internal/platform/querybuilder"
)

type AssignmentRepository struct {
	db *sqlx.DB
}

func NewAssignmentRepository(db *sqlx.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// Create relies on the table's uniqueness constraints for the daily and
// manual-weekly rules; a constraint hit surfaces as assignment.ErrDuplicate.
func (r *AssignmentRepository) Create(ctx context.Context, item assignment.Assignment) error {
	query, args, err := qb.InsertModel("assignments", assignmentToInsertModel(item), "")
	if err != nil {
		return fmt.Errorf("build assignment insert query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: user=%s group=%s mission=%s week=%d", assignment.ErrDuplicate, item.UserID, item.GroupID, item.MissionID, item.Week)
		}
		return fmt.Errorf("insert assignment: %w", err)
	}

	return nil
}

func (r *AssignmentRepository) GetByID(ctx context.Context, assignmentID string) (assignment.Assignment, bool, error) {
	query, args, err := assignmentBaseSelectBuilder().
		Where(qb.Eq("id", assignmentID)).
		ToSQL()
	if err != nil {
		return assignment.Assignment{}, false, fmt.Errorf("build get assignment query: %w", err)
	}

	var row assignmentTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return assignment.Assignment{}, false, nil
		}
		return assignment.Assignment{}, false, fmt.Errorf("get assignment: %w", err)
	}

	return assignmentFromRow(row), true, nil
}

func (r *AssignmentRepository) GetByUserAndDate(ctx context.Context, userID, groupID string, date time.Time) (assignment.Assignment, bool, error) {
	query, args, err := assignmentBaseSelectBuilder().
		Where(
			qb.Eq("user_id", userID),
			qb.Eq("group_id", groupID),
			qb.Eq("assigned_date", assignedDateArg(date)),
		).
		ToSQL()
	if err != nil {
		return assignment.Assignment{}, false, fmt.Errorf("build get assignment by date query: %w", err)
	}

	var row assignmentTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return assignment.Assignment{}, false, nil
		}
		return assignment.Assignment{}, false, fmt.Errorf("get assignment by user and date: %w", err)
	}

	return assignmentFromRow(row), true, nil
}

func (r *AssignmentRepository) ListByUserAndWeek(ctx context.Context, userID, groupID string, week int) ([]assignment.Assignment, error) {
	query, args, err := assignmentBaseSelectBuilder().
		Where(
			qb.Eq("user_id", userID),
			qb.Eq("group_id", groupID),
			qb.Eq("week", week),
		).
		OrderBy("created_at").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list assignments query: %w", err)
	}

	var rows []assignmentTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list assignments by user and week: %w", err)
	}

	out := make([]assignment.Assignment, 0, len(rows))
	for _, row := range rows {
		out = append(out, assignmentFromRow(row))
	}
	return out, nil
}

func (r *AssignmentRepository) ExistsManual(ctx context.Context, userID, groupID, missionID string, week int) (bool, error) {
	count, err := r.countAssignments(ctx,
		qb.Eq("user_id", userID),
		qb.Eq("group_id", groupID),
		qb.Eq("mission_id", missionID),
		qb.Eq("week", week),
		qb.Eq("selection_type", string(assignment.SelectionManual)),
	)
	if err != nil {
		return false, fmt.Errorf("check manual assignment existence: %w", err)
	}

	return count > 0, nil
}

func (r *AssignmentRepository) CountManualByMissionAndDate(ctx context.Context, groupID, missionID string, date time.Time) (int, error) {
	count, err := r.countAssignments(ctx,
		qb.Eq("group_id", groupID),
		qb.Eq("mission_id", missionID),
		qb.Eq("assigned_date", assignedDateArg(date)),
		qb.Eq("selection_type", string(assignment.SelectionManual)),
	)
	if err != nil {
		return 0, fmt.Errorf("count manual assignments by date: %w", err)
	}

	return count, nil
}

func (r *AssignmentRepository) CountManualByMissionAndWeek(ctx context.Context, groupID, missionID string, week int) (int, error) {
	count, err := r.countAssignments(ctx,
		qb.Eq("group_id", groupID),
		qb.Eq("mission_id", missionID),
		qb.Eq("week", week),
		qb.Eq("selection_type", string(assignment.SelectionManual)),
	)
	if err != nil {
		return 0, fmt.Errorf("count manual assignments by week: %w", err)
	}

	return count, nil
}

func (r *AssignmentRepository) UpdateStatus(ctx context.Context, assignmentID string, status assignment.Status, updatedAt time.Time) error {
	query, args, err := qb.Update("assignments").
		Set("status", string(status)).
		Set("updated_at", updatedAt).
		Where(qb.Eq("id", assignmentID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build assignment status update query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update assignment status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update assignment status rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("assignment not found id=%s", assignmentID)
	}

	return nil
}

func (r *AssignmentRepository) countAssignments(ctx context.Context, conditions ...qb.Condition) (int, error) {
	query, args, err := qb.Select("COUNT(*)").
		From("assignments").
		Where(conditions...).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build assignment count query: %w", err)
	}

	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, err
	}

	return count, nil
}

func assignmentBaseSelectBuilder() *qb.SelectBuilder {
	return qb.Select("*").From("assignments")
}
