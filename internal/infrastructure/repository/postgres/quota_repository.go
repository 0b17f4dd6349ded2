package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/haeun-dev/manito/internal/domain/mission"
	qb "github.com/haeun-dev/manito/internal/platform/querybuilder"
)

type QuotaRepository struct {
	db *sqlx.DB
}

func NewQuotaRepository(db *sqlx.DB) *QuotaRepository {
	return &QuotaRepository{db: db}
}

func (r *QuotaRepository) ListByGroupWeek(ctx context.Context, groupID string, week int) ([]mission.Quota, error) {
	query, args, err := quotaBaseSelectBuilder().
		Where(
			qb.Eq("group_id", groupID),
			qb.Eq("week", week),
		).
		OrderBy("mission_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list quotas query: %w", err)
	}

	var rows []quotaTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list quotas by group and week: %w", err)
	}

	out := make([]mission.Quota, 0, len(rows))
	for _, row := range rows {
		out = append(out, quotaFromRow(row))
	}
	return out, nil
}

func (r *QuotaRepository) GetByMission(ctx context.Context, groupID, missionID string, week int) (mission.Quota, bool, error) {
	query, args, err := quotaBaseSelectBuilder().
		Where(
			qb.Eq("group_id", groupID),
			qb.Eq("mission_id", missionID),
			qb.Eq("week", week),
		).
		ToSQL()
	if err != nil {
		return mission.Quota{}, false, fmt.Errorf("build get quota query: %w", err)
	}

	var row quotaTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return mission.Quota{}, false, nil
		}
		return mission.Quota{}, false, fmt.Errorf("get quota: %w", err)
	}

	return quotaFromRow(row), true, nil
}

// DecrementRemaining runs the capacity check and the decrement as one
// conditional UPDATE; concurrent callers racing for the last slot are settled
// by the row lock, not by the caller's earlier read.
func (r *QuotaRepository) DecrementRemaining(ctx context.Context, groupID, missionID string, week int) (bool, error) {
	query, args, err := qb.Update("group_mission_quotas").
		SetExpr("remaining_count", "remaining_count - 1").
		Where(
			qb.Eq("group_id", groupID),
			qb.Eq("mission_id", missionID),
			qb.Eq("week", week),
			qb.Expr("remaining_count > ?", 0),
		).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build quota decrement query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("decrement quota: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("decrement quota rows affected: %w", err)
	}

	return affected > 0, nil
}

func (r *QuotaRepository) IncrementRemaining(ctx context.Context, groupID, missionID string, week int) error {
	query, args, err := qb.Update("group_mission_quotas").
		SetExpr("remaining_count", "LEAST(remaining_count + 1, max_assignable)").
		Where(
			qb.Eq("group_id", groupID),
			qb.Eq("mission_id", missionID),
			qb.Eq("week", week),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build quota increment query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("increment quota: %w", err)
	}

	return nil
}

func (r *QuotaRepository) SetRemaining(ctx context.Context, groupID, missionID string, week, remaining int) error {
	query, args, err := qb.Update("group_mission_quotas").
		SetExpr("remaining_count", "LEAST(GREATEST(?, 0), max_assignable)", remaining).
		Where(
			qb.Eq("group_id", groupID),
			qb.Eq("mission_id", missionID),
			qb.Eq("week", week),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build quota set remaining query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("set quota remaining: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("set quota remaining rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("quota not found group=%s mission=%s week=%d", groupID, missionID, week)
	}

	return nil
}

func quotaBaseSelectBuilder() *qb.SelectBuilder {
	return qb.Select("*").From("group_mission_quotas")
}
