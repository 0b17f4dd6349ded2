package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/haeun-dev/manito/internal/domain/cycle"
	"github.com/haeun-dev/manito/internal/domain/member"
	"github.com/haeun-dev/manito/internal/domain/pairing"
	"github.com/haeun-dev/manito/internal/platform/logging"
)

type ManitoInfo struct {
	Week           int
	Phase          cycle.Phase
	Countdown      string
	NextTransition time.Time
	// ManitteeUserID is the user this caller secretly serves. Always visible
	// to the giver.
	ManitteeUserID string
	// ManittoUserID is the giver who served this caller. Disclosed only
	// during the REVEAL period; empty otherwise.
	ManittoUserID string
}

type ManitoService struct {
	directory   member.Directory
	pairingRepo pairing.Repository
	calendar    cycle.Calendar
	logger      *logging.Logger
	now         func() time.Time
}

func NewManitoService(
	directory member.Directory,
	pairingRepo pairing.Repository,
	calendar cycle.Calendar,
	logger *logging.Logger,
) *ManitoService {
	if logger == nil {
		logger = logging.Default()
	}
	return &ManitoService{
		directory:   directory,
		pairingRepo: pairingRepo,
		calendar:    calendar,
		logger:      logger,
		now:         time.Now,
	}
}

// CurrentInfo reports the caller's role in the current cycle together with the
// phase countdown. Reveal state is computed lazily from the wall clock on
// every read; nothing is persisted at the transition instant.
func (s *ManitoService) CurrentInfo(ctx context.Context, userID, groupID string) (ManitoInfo, error) {
	userID = strings.TrimSpace(userID)
	groupID = strings.TrimSpace(groupID)
	if userID == "" || groupID == "" {
		return ManitoInfo{}, fmt.Errorf("%w: user_id and group_id are required", ErrInvalidInput)
	}

	if err := s.guardMembership(ctx, userID, groupID); err != nil {
		return ManitoInfo{}, err
	}

	now := s.now()
	phase := s.calendar.PhaseAt(now)
	nextTransition := s.calendar.NextTransition(now)

	// REVEAL outlives the Monday 00:00 week rollover. Both pairing lookups
	// and the reported week must stay on the cycle being revealed, or the
	// Monday-morning tail would chase rows the matching batch has not
	// written yet.
	week := s.calendar.WeekOf(now)
	if phase == cycle.PhaseReveal {
		week = s.calendar.RevealedWeekOf(now)
	}

	info := ManitoInfo{
		Week:           week,
		Phase:          phase,
		Countdown:      cycle.FormatCountdown(nextTransition.Sub(now)),
		NextTransition: nextTransition,
	}

	asGiver, exists, err := s.pairingRepo.GetByGiver(ctx, groupID, week, userID)
	if err != nil {
		return ManitoInfo{}, fmt.Errorf("get pairing by giver: %w", err)
	}
	if !exists {
		return ManitoInfo{}, fmt.Errorf("%w: no active pairing for user=%s group=%s week=%d", ErrPreconditionFailed, userID, groupID, week)
	}
	info.ManitteeUserID = asGiver.ReceiverUserID

	if phase == cycle.PhaseReveal {
		asReceiver, exists, err := s.pairingRepo.GetByReceiver(ctx, groupID, week, userID)
		if err != nil {
			return ManitoInfo{}, fmt.Errorf("get pairing by receiver: %w", err)
		}
		if exists {
			info.ManittoUserID = asReceiver.GiverUserID
		}
	}

	return info, nil
}

func (s *ManitoService) guardMembership(ctx context.Context, userID, groupID string) error {
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
