package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/haeun-dev/manito/internal/domain/anonymity"
	"github.com/haeun-dev/manito/internal/domain/cycle"
	"github.com/haeun-dev/manito/internal/domain/member"
	"github.com/haeun-dev/manito/internal/platform/logging"
)

type AnonymityService struct {
	directory    member.Directory
	snapshotRepo anonymity.Repository
	calendar     cycle.Calendar
	logger       *logging.Logger
	now          func() time.Time
}

func NewAnonymityService(
	directory member.Directory,
	snapshotRepo anonymity.Repository,
	calendar cycle.Calendar,
	logger *logging.Logger,
) *AnonymityService {
	if logger == nil {
		logger = logging.Default()
	}
	return &AnonymityService{
		directory:    directory,
		snapshotRepo: snapshotRepo,
		calendar:     calendar,
		logger:       logger,
		now:          time.Now,
	}
}

// GetOrCreateName returns the caller's pinned pseudonym for the given week,
// synthesizing and persisting one on first use. week=0 means the current week.
// Creation is first-writer-wins: when the insert loses the race this reads
// back the winner so repeated calls within a week always agree.
func (s *AnonymityService) GetOrCreateName(ctx context.Context, userID, groupID string, week int) (anonymity.Snapshot, error) {
	userID = strings.TrimSpace(userID)
	groupID = strings.TrimSpace(groupID)
	if userID == "" || groupID == "" {
		return anonymity.Snapshot{}, fmt.Errorf("%w: user_id and group_id are required", ErrInvalidInput)
	}
	if week < 0 {
		return anonymity.Snapshot{}, fmt.Errorf("%w: week must not be negative", ErrInvalidInput)
	}
	if week == 0 {
		week = s.calendar.WeekOf(s.now())
	}

	if err := s.guardMembership(ctx, userID, groupID); err != nil {
		return anonymity.Snapshot{}, err
	}

	existing, exists, err := s.snapshotRepo.Get(ctx, userID, groupID, week)
	if err != nil {
		return anonymity.Snapshot{}, fmt.Errorf("get anonymous snapshot: %w", err)
	}
	if exists {
		return existing, nil
	}

	item := anonymity.Snapshot{
		UserID:        userID,
		GroupID:       groupID,
		Week:          week,
		AnonymousName: anonymity.RandomName(),
		CreatedAt:     s.now().UTC(),
	}
	if err := item.Validate(); err != nil {
		return anonymity.Snapshot{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if err := s.snapshotRepo.Create(ctx, item); err != nil {
		if errors.Is(err, anonymity.ErrAlreadyExists) {
			winner, exists, readErr := s.snapshotRepo.Get(ctx, userID, groupID, week)
			if readErr != nil {
				return anonymity.Snapshot{}, fmt.Errorf("read back anonymous snapshot: %w", readErr)
			}
			if !exists {
				return anonymity.Snapshot{}, fmt.Errorf("anonymous snapshot vanished after conflict user=%s group=%s week=%d", userID, groupID, week)
			}
			return winner, nil
		}
		return anonymity.Snapshot{}, fmt.Errorf("create anonymous snapshot: %w", err)
	}

	return item, nil
}

func (s *AnonymityService) guardMembership(ctx context.Context, userID, groupID string) error {
	exists, err := s.directory.UserExists(ctx, userID)
	if err != nil {
		return fmt.Errorf("%w: check user existence: %v", ErrDependencyUnavailable, err)
	}
	if !exists {
		return fmt.Errorf("%w: user=%s", ErrNotFound, userID)
	}

	isMember, err := s.directory.IsGroupMember(ctx, userID, groupID)
	if err != nil {
		return fmt.Errorf("%w: check group membership: %v", ErrDependencyUnavailable, err)
	}
	if !isMember {
		return fmt.Errorf("%w: user=%s is not a member of group=%s", ErrPreconditionFailed, userID, groupID)
	}

	return nil
}
