package postgres

import (
	"time"

	"github.com/haeun-dev/manito/internal/domain/pairing"
)

type pairingTableModel struct {
	ID             int64     `db:"id"`
	GroupID        string    `db:"group_id"`
	Week           int       `db:"week"`
	GiverUserID    string    `db:"giver_user_id"`
	ReceiverUserID string    `db:"receiver_user_id"`
	CreatedAt      time.Time `db:"created_at"`
}

func pairingFromRow(row pairingTableModel) pairing.Pairing {
	return pairing.Pairing{
		GroupID:        row.GroupID,
		Week:           row.Week,
		GiverUserID:    row.GiverUserID,
		ReceiverUserID: row.ReceiverUserID,
		CreatedAt:      row.CreatedAt,
	}
}
