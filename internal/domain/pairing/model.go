package pairing

import "time"

// Pairing is one manito edge for a group week: the giver secretly performs
// missions for the receiver. Rows are produced by the external matching batch
// before the week's ACTIVE period opens and are immutable afterwards.
type Pairing struct {
	GroupID        string
	Week           int
	GiverUserID    string
	ReceiverUserID string
	CreatedAt      time.Time
}
