package anonymity

import (
	"context"
	"errors"
)

// ErrAlreadyExists reports that another writer created the snapshot first; the
// caller should read back the winner instead of retrying the insert.
var ErrAlreadyExists = errors.New("anonymous snapshot already exists")

type Repository interface {
	Get(ctx context.Context, userID, groupID string, week int) (Snapshot, bool, error)
	Create(ctx context.Context, item Snapshot) error
}
