package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/haeun-dev/manito/internal/domain/anonymity"
	qb "github.com/haeun-dev/manito/internal/platform/querybuilder"
)

type SnapshotRepository struct {
	db *sqlx.DB
}

func NewSnapshotRepository(db *sqlx.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

func (r *SnapshotRepository) Get(ctx context.Context, userID, groupID string, week int) (anonymity.Snapshot, bool, error) {
	query, args, err := qb.Select("*").
		From("anonymous_snapshots").
		Where(
			qb.Eq("user_id", userID),
			qb.Eq("group_id", groupID),
			qb.Eq("week", week),
		).
		ToSQL()
	if err != nil {
		return anonymity.Snapshot{}, false, fmt.Errorf("build get snapshot query: %w", err)
	}

	var row snapshotTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return anonymity.Snapshot{}, false, nil
		}
		return anonymity.Snapshot{}, false, fmt.Errorf("get anonymous snapshot: %w", err)
	}

	return snapshotFromRow(row), true, nil
}

// Create never overwrites a pinned name. The unique (user_id, group_id, week)
// constraint arbitrates concurrent first writes; the loser gets
// anonymity.ErrAlreadyExists and reads back the winner.
func (r *SnapshotRepository) Create(ctx context.Context, item anonymity.Snapshot) error {
	insertModel := snapshotInsertModel{
		UserID:        item.UserID,
		GroupID:       item.GroupID,
		Week:          item.Week,
		AnonymousName: item.AnonymousName,
		CreatedAt:     item.CreatedAt,
	}

	query, args, err := qb.InsertModel("anonymous_snapshots", insertModel, "")
	if err != nil {
		return fmt.Errorf("build snapshot insert query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: user=%s group=%s week=%d", anonymity.ErrAlreadyExists, item.UserID, item.GroupID, item.Week)
		}
		return fmt.Errorf("insert anonymous snapshot: %w", err)
	}

	return nil
}
