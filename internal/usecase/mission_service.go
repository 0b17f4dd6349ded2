package usecase

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"
	"strings"
	"time"

	"github.com/haeun-dev/manito/internal/domain/assignment"
	"github.com/haeun-dev/manito/internal/domain/cycle"
	"github.com/haeun-dev/manito/internal/domain/member"
	"github.com/haeun-dev/manito/internal/domain/mission"
	"github.com/haeun-dev/manito/internal/domain/pairing"
	"github.com/haeun-dev/manito/internal/platform/id"
	"github.com/haeun-dev/manito/internal/platform/logging"
)

const (
	weeklyAssignmentLimit  = 5
	quotaDecrementAttempts = 3
)

type SelectMissionInput struct {
	UserID    string
	GroupID   string
	MissionID string
}

type AvailableMission struct {
	Mission                 mission.Template
	MaxAssignable           int
	RemainingToday          int
	AlreadySelectedThisWeek bool
	Selectable              bool
}

type MissionBoard struct {
	Week           int
	Missions       []AvailableMission
	CanSelectToday bool
	TodaySelection *assignment.Assignment
}

type MissionService struct {
	directory      member.Directory
	pairingRepo    pairing.Repository
	templateRepo   mission.TemplateRepository
	quotaRepo      mission.QuotaRepository
	assignmentRepo assignment.Repository
	calendar       cycle.Calendar
	idGen          id.Generator
	logger         *logging.Logger
	now            func() time.Time
}

func NewMissionService(
	directory member.Directory,
	pairingRepo pairing.Repository,
	templateRepo mission.TemplateRepository,
	quotaRepo mission.QuotaRepository,
	assignmentRepo assignment.Repository,
	calendar cycle.Calendar,
	idGen id.Generator,
	logger *logging.Logger,
) *MissionService {
	if logger == nil {
		logger = logging.Default()
	}
	return &MissionService{
		directory:      directory,
		pairingRepo:    pairingRepo,
		templateRepo:   templateRepo,
		quotaRepo:      quotaRepo,
		assignmentRepo: assignmentRepo,
		calendar:       calendar,
		idGen:          idGen,
		logger:         logger,
		now:            time.Now,
	}
}

func (s *MissionService) ListAvailable(ctx context.Context, userID, groupID string) (MissionBoard, error) {
	userID = strings.TrimSpace(userID)
	groupID = strings.TrimSpace(groupID)
	if userID == "" || groupID == "" {
		return MissionBoard{}, fmt.Errorf("%w: user_id and group_id are required", ErrInvalidInput)
	}

	if err := s.guardMembership(ctx, userID, groupID); err != nil {
		return MissionBoard{}, err
	}

	now := s.now()
	week := s.calendar.WeekOf(now)
	today := s.calendar.DateOf(now)

	if err := s.guardActivePairing(ctx, groupID, week, userID); err != nil {
		return MissionBoard{}, err
	}

	quotas, err := s.quotaRepo.ListByGroupWeek(ctx, groupID, week)
	if err != nil {
		return MissionBoard{}, fmt.Errorf("list quotas by group and week: %w", err)
	}
	if len(quotas) == 0 {
		return MissionBoard{}, fmt.Errorf("%w: no missions seeded for group=%s week=%d", ErrCycleNotReady, groupID, week)
	}

	templates, err := s.templateRepo.List(ctx)
	if err != nil {
		return MissionBoard{}, fmt.Errorf("list mission templates: %w", err)
	}
	templatesByID := make(map[string]mission.Template, len(templates))
	for _, t := range templates {
		templatesByID[t.ID] = t
	}

	todayItem, hasToday, err := s.assignmentRepo.GetByUserAndDate(ctx, userID, groupID, today)
	if err != nil {
		return MissionBoard{}, fmt.Errorf("get today's assignment: %w", err)
	}

	board := MissionBoard{
		Week:           week,
		Missions:       make([]AvailableMission, 0, len(quotas)),
		CanSelectToday: !hasToday,
	}
	if hasToday {
		board.TodaySelection = &todayItem
	}

	for _, quota := range quotas {
		template, ok := templatesByID[quota.MissionID]
		if !ok {
			// Quota row for a template that was never seeded; skip rather
			// than fail the whole catalog.
			s.logger.WarnContext(ctx, "quota references unknown mission template",
				"group_id", groupID, "mission_id", quota.MissionID, "week", week)
			continue
		}

		takenToday, err := s.assignmentRepo.CountManualByMissionAndDate(ctx, groupID, quota.MissionID, today)
		if err != nil {
			return MissionBoard{}, fmt.Errorf("count today's selections mission=%s: %w", quota.MissionID, err)
		}
		alreadySelected, err := s.assignmentRepo.ExistsManual(ctx, userID, groupID, quota.MissionID, week)
		if err != nil {
			return MissionBoard{}, fmt.Errorf("check weekly selection mission=%s: %w", quota.MissionID, err)
		}

		remainingToday := quota.MaxAssignable - takenToday
		if remainingToday < 0 {
			remainingToday = 0
		}

		board.Missions = append(board.Missions, AvailableMission{
			Mission:                 template,
			MaxAssignable:           quota.MaxAssignable,
			RemainingToday:          remainingToday,
			AlreadySelectedThisWeek: alreadySelected,
			Selectable:              remainingToday > 0 && !alreadySelected && board.CanSelectToday && quota.IsSelectable(),
		})
	}

	sort.SliceStable(board.Missions, func(i, j int) bool {
		return board.Missions[i].Mission.ID < board.Missions[j].Mission.ID
	})

	return board, nil
}

// Select grants a manual mission selection. The precondition checks run in a
// fixed order so concurrent callers failing multiple rules always see the same
// rejection. The quota decrement is conditional at the storage layer; the
// guard in step 7 is advisory only and the decrement is what actually settles
// races for the last slot.
func (s *MissionService) Select(ctx context.Context, input SelectMissionInput) (assignment.Assignment, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MissionService.Select")
	defer span.End()

	input.UserID = strings.TrimSpace(input.UserID)
	input.GroupID = strings.TrimSpace(input.GroupID)
	input.MissionID = strings.TrimSpace(input.MissionID)
	if input.UserID == "" || input.GroupID == "" || input.MissionID == "" {
		return assignment.Assignment{}, fmt.Errorf("%w: user_id, group_id and mission_id are required", ErrInvalidInput)
	}

	if err := s.guardMembership(ctx, input.UserID, input.GroupID); err != nil {
		return assignment.Assignment{}, err
	}
	if _, exists, err := s.templateRepo.GetByID(ctx, input.MissionID); err != nil {
		return assignment.Assignment{}, fmt.Errorf("get mission template: %w", err)
	} else if !exists {
		return assignment.Assignment{}, fmt.Errorf("%w: mission=%s", ErrNotFound, input.MissionID)
	}

	now := s.now()
	week := s.calendar.WeekOf(now)
	today := s.calendar.DateOf(now)

	if err := s.guardActivePairing(ctx, input.GroupID, week, input.UserID); err != nil {
		return assignment.Assignment{}, err
	}

	quota, offered, err := s.quotaRepo.GetByMission(ctx, input.GroupID, input.MissionID, week)
	if err != nil {
		return assignment.Assignment{}, fmt.Errorf("get mission quota: %w", err)
	}
	if !offered {
		return assignment.Assignment{}, fmt.Errorf("%w: mission=%s is not offered to group=%s this week", ErrNotFound, input.MissionID, input.GroupID)
	}

	if _, exists, err := s.assignmentRepo.GetByUserAndDate(ctx, input.UserID, input.GroupID, today); err != nil {
		return assignment.Assignment{}, fmt.Errorf("get today's assignment: %w", err)
	} else if exists {
		return assignment.Assignment{}, fmt.Errorf("%w: user=%s already has a mission for today", ErrDuplicateSelection, input.UserID)
	}

	if exists, err := s.assignmentRepo.ExistsManual(ctx, input.UserID, input.GroupID, input.MissionID, week); err != nil {
		return assignment.Assignment{}, fmt.Errorf("check weekly selection: %w", err)
	} else if exists {
		return assignment.Assignment{}, fmt.Errorf("%w: mission=%s already selected this week", ErrDuplicateSelection, input.MissionID)
	}

	if !quota.IsSelectable() {
		return assignment.Assignment{}, fmt.Errorf("%w: mission=%s quota is drained", ErrCapacityExhausted, input.MissionID)
	}

	if err := s.decrementQuota(ctx, input.GroupID, input.MissionID, week); err != nil {
		return assignment.Assignment{}, err
	}

	item, err := s.createAssignment(ctx, input.UserID, input.GroupID, input.MissionID, week, today, assignment.SelectionManual, now)
	if err != nil {
		// The slot was taken but the ledger row failed; hand the slot back so
		// the pair commits together or not at all.
		if incErr := s.quotaRepo.IncrementRemaining(ctx, input.GroupID, input.MissionID, week); incErr != nil {
			s.logger.ErrorContext(ctx, "compensating quota increment failed",
				"group_id", input.GroupID, "mission_id", input.MissionID, "week", week, "error", incErr)
		}
		return assignment.Assignment{}, err
	}

	return item, nil
}

// AutoAssign hands out a fallback mission when the status view finds a user
// with nothing in progress. Unlike manual selection it bypasses quota: the
// fallback must always be able to produce something even when every
// group-scoped quota is drained.
func (s *MissionService) AutoAssign(ctx context.Context, userID, groupID string) (assignment.Assignment, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MissionService.AutoAssign")
	defer span.End()

	userID = strings.TrimSpace(userID)
	groupID = strings.TrimSpace(groupID)
	if userID == "" || groupID == "" {
		return assignment.Assignment{}, fmt.Errorf("%w: user_id and group_id are required", ErrInvalidInput)
	}

	if err := s.guardMembership(ctx, userID, groupID); err != nil {
		return assignment.Assignment{}, err
	}

	now := s.now()
	week := s.calendar.WeekOf(now)
	today := s.calendar.DateOf(now)

	if err := s.guardActivePairing(ctx, groupID, week, userID); err != nil {
		return assignment.Assignment{}, err
	}

	// The status view calls this idempotently; an assignment dated today means
	// there is nothing to do.
	if existing, exists, err := s.assignmentRepo.GetByUserAndDate(ctx, userID, groupID, today); err != nil {
		return assignment.Assignment{}, fmt.Errorf("get today's assignment: %w", err)
	} else if exists {
		return existing, nil
	}

	thisWeek, err := s.assignmentRepo.ListByUserAndWeek(ctx, userID, groupID, week)
	if err != nil {
		return assignment.Assignment{}, fmt.Errorf("list assignments by user and week: %w", err)
	}
	if len(thisWeek) >= weeklyAssignmentLimit {
		return assignment.Assignment{}, fmt.Errorf("%w: weekly mission limit of %d reached", ErrPreconditionFailed, weeklyAssignmentLimit)
	}

	templates, err := s.templateRepo.List(ctx)
	if err != nil {
		return assignment.Assignment{}, fmt.Errorf("list mission templates: %w", err)
	}

	assigned := make(map[string]struct{}, len(thisWeek))
	for _, item := range thisWeek {
		assigned[item.MissionID] = struct{}{}
	}
	candidates := make([]mission.Template, 0, len(templates))
	for _, t := range templates {
		if _, taken := assigned[t.ID]; taken {
			continue
		}
		candidates = append(candidates, t)
	}
	if len(candidates) == 0 {
		return assignment.Assignment{}, fmt.Errorf("%w: no unassigned mission templates left this week", ErrCapacityExhausted)
	}

	pick := candidates[rand.IntN(len(candidates))]

	item, err := s.createAssignment(ctx, userID, groupID, pick.ID, week, today, assignment.SelectionAuto, now)
	if err != nil {
		return assignment.Assignment{}, err
	}

	return item, nil
}

// Complete moves an assignment to completed. Called by the feed collaborator
// when a qualifying post is published; a repeat call is a no-op.
func (s *MissionService) Complete(ctx context.Context, assignmentID string) (assignment.Assignment, error) {
	assignmentID = strings.TrimSpace(assignmentID)
	if assignmentID == "" {
		return assignment.Assignment{}, fmt.Errorf("%w: assignment_id is required", ErrInvalidInput)
	}

	item, exists, err := s.assignmentRepo.GetByID(ctx, assignmentID)
	if err != nil {
		return assignment.Assignment{}, fmt.Errorf("get assignment by id: %w", err)
	}
	if !exists {
		return assignment.Assignment{}, fmt.Errorf("%w: assignment=%s", ErrNotFound, assignmentID)
	}
	if item.Status == assignment.StatusCompleted {
		return item, nil
	}

	updatedAt := s.now().UTC()
	if err := s.assignmentRepo.UpdateStatus(ctx, assignmentID, assignment.StatusCompleted, updatedAt); err != nil {
		return assignment.Assignment{}, fmt.Errorf("update assignment status: %w", err)
	}

	item.Status = assignment.StatusCompleted
	item.UpdatedAt = updatedAt
	return item, nil
}

func (s *MissionService) guardMembership(ctx context.Context, userID, groupID string) error {
	exists, err := s.directory.UserExists(ctx, userID)
	if err != nil {
		return fmt.Errorf("%w: check user existence: %v", ErrDependencyUnavailable, err)
	}
	if !exists {
		return fmt.Errorf("%w: user=%s", ErrNotFound, userID)
	}

	exists, err = s.directory.GroupExists(ctx, groupID)
	if err != nil {
		return fmt.Errorf("%w: check group existence: %v", ErrDependencyUnavailable, err)
	}
	if !exists {
		return fmt.Errorf("%w: group=%s", ErrNotFound, groupID)
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

func (s *MissionService) guardActivePairing(ctx context.Context, groupID string, week int, giverUserID string) error {
	_, exists, err := s.pairingRepo.GetByGiver(ctx, groupID, week, giverUserID)
	if err != nil {
		return fmt.Errorf("get pairing by giver: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: no active pairing for user=%s group=%s week=%d", ErrPreconditionFailed, giverUserID, groupID, week)
	}

	return nil
}

func (s *MissionService) decrementQuota(ctx context.Context, groupID, missionID string, week int) error {
	var lastErr error
	for attempt := 1; attempt <= quotaDecrementAttempts; attempt++ {
		ok, err := s.quotaRepo.DecrementRemaining(ctx, groupID, missionID, week)
		if err != nil {
			lastErr = err
			continue
		}
		if ok {
			return nil
		}
		// Cleanly drained: another caller took the last slot between the guard
		// and here.
		return fmt.Errorf("%w: mission=%s quota is drained", ErrCapacityExhausted, missionID)
	}

	// Contention timeout is treated the same as losing the last slot.
	s.logger.WarnContext(ctx, "quota decrement retries exhausted",
		"group_id", groupID, "mission_id", missionID, "week", week, "error", lastErr)
	return fmt.Errorf("%w: mission=%s quota decrement failed after %d attempts", ErrCapacityExhausted, missionID, quotaDecrementAttempts)
}

func (s *MissionService) createAssignment(
	ctx context.Context,
	userID, groupID, missionID string,
	week int,
	today time.Time,
	selectionType assignment.SelectionType,
	now time.Time,
) (assignment.Assignment, error) {
	assignmentID, err := s.idGen.NewID()
	if err != nil {
		return assignment.Assignment{}, fmt.Errorf("generate assignment id: %w", err)
	}

	item := assignment.Assignment{
		ID:            assignmentID,
		UserID:        userID,
		GroupID:       groupID,
		MissionID:     missionID,
		Week:          week,
		AssignedDate:  today,
		SelectionType: selectionType,
		Status:        assignment.StatusInProgress,
		CreatedAt:     now.UTC(),
		UpdatedAt:     now.UTC(),
	}
	if err := item.Validate(); err != nil {
		return assignment.Assignment{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if err := s.assignmentRepo.Create(ctx, item); err != nil {
		if errors.Is(err, assignment.ErrDuplicate) {
			return assignment.Assignment{}, fmt.Errorf("%w: %v", ErrDuplicateSelection, err)
		}
		return assignment.Assignment{}, fmt.Errorf("create assignment: %w", err)
	}

	return item, nil
}
