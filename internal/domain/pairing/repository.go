package pairing

import "context"

// Repository exposes read access to the weekly pairing graph. The game core
// never writes pairings; only the matching batch does.
type Repository interface {
	GetByGiver(ctx context.Context, groupID string, week int, giverUserID string) (Pairing, bool, error)
	GetByReceiver(ctx context.Context, groupID string, week int, receiverUserID string) (Pairing, bool, error)
}
