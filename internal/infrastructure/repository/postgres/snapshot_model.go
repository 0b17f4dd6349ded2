package postgres

import (
	"time"

	"github.com/haeun-dev/manito/internal/domain/anonymity"
)

type snapshotTableModel struct {
	ID            int64     `db:"id"`
	UserID        string    `db:"user_id"`
	GroupID       string    `db:"group_id"`
	Week          int       `db:"week"`
	AnonymousName string    `db:"anonymous_name"`
	CreatedAt     time.Time `db:"created_at"`
}

type snapshotInsertModel struct {
	UserID        string    `db:"user_id"`
	GroupID       string    `db:"group_id"`
	Week          int       `db:"week"`
	AnonymousName string    `db:"anonymous_name"`
	CreatedAt     time.Time `db:"created_at"`
}

func snapshotFromRow(row snapshotTableModel) anonymity.Snapshot {
	return anonymity.Snapshot{
		UserID:        row.UserID,
		GroupID:       row.GroupID,
		Week:          row.Week,
		AnonymousName: row.AnonymousName,
		CreatedAt:     row.CreatedAt,
	}
}
