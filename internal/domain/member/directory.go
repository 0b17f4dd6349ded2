package member

import "context"

// Directory is the narrow identity contract this core consumes from the
// account service: user existence and group membership. Group creation and
// membership management live outside the game core.
type Directory interface {
	UserExists(ctx context.Context, userID string) (bool, error)
	GroupExists(ctx context.Context, groupID string) (bool, error)
	IsGroupMember(ctx context.Context, userID, groupID string) (bool, error)
}
