package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/haeun-dev/manito/internal/domain/pairing"
	qb "github.com/haeun-dev/manito/internal/platform/querybuilder"
)

// PairingRepository reads the pairing graph written by the matching batch.
// The game core never inserts or updates these rows.
type PairingRepository struct {
	db *sqlx.DB
}

func NewPairingRepository(db *sqlx.DB) *PairingRepository {
	return &PairingRepository{db: db}
}

func (r *PairingRepository) GetByGiver(ctx context.Context, groupID string, week int, giverUserID string) (pairing.Pairing, bool, error) {
	query, args, err := pairingBaseSelectBuilder().
		Where(
			qb.Eq("group_id", groupID),
			qb.Eq("week", week),
			qb.Eq("giver_user_id", giverUserID),
		).
		ToSQL()
	if err != nil {
		return pairing.Pairing{}, false, fmt.Errorf("build get pairing by giver query: %w", err)
	}

	var row pairingTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return pairing.Pairing{}, false, nil
		}
		return pairing.Pairing{}, false, fmt.Errorf("get pairing by giver: %w", err)
	}

	return pairingFromRow(row), true, nil
}

func (r *PairingRepository) GetByReceiver(ctx context.Context, groupID string, week int, receiverUserID string) (pairing.Pairing, bool, error) {
	query, args, err := pairingBaseSelectBuilder().
		Where(
			qb.Eq("group_id", groupID),
			qb.Eq("week", week),
			qb.Eq("receiver_user_id", receiverUserID),
		).
		ToSQL()
	if err != nil {
		return pairing.Pairing{}, false, fmt.Errorf("build get pairing by receiver query: %w", err)
	}

	var row pairingTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return pairing.Pairing{}, false, nil
		}
		return pairing.Pairing{}, false, fmt.Errorf("get pairing by receiver: %w", err)
	}

	return pairingFromRow(row), true, nil
}

func pairingBaseSelectBuilder() *qb.SelectBuilder {
	return qb.Select("*").From("pairings")
}
