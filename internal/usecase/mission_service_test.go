package usecase

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/haeun-dev/manito/internal/domain/assignment"
	"github.com/haeun-dev/manito/internal/domain/cycle"
	"github.com/haeun-dev/manito/internal/domain/mission"
	"github.com/haeun-dev/manito/internal/infrastructure/repository/memory"
	"github.com/haeun-dev/manito/internal/platform/logging"
)

type sequenceIDGenerator struct {
	mu   sync.Mutex
	next int
}

func (g *sequenceIDGenerator) NewID() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.next++
	return fmt.Sprintf("asg-%03d", g.next), nil
}

type missionFixture struct {
	service        *MissionService
	directory      *memory.Directory
	pairingRepo    *memory.PairingRepository
	templateRepo   *memory.TemplateRepository
	quotaRepo      *memory.QuotaRepository
	assignmentRepo *memory.AssignmentRepository
	calendar       cycle.Calendar
	week           int
	now            time.Time
}

// Wednesday 15:00 KST, inside the ACTIVE period.
func activeInstant(t *testing.T) time.Time {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Seoul")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	return time.Date(2026, 3, 4, 15, 0, 0, 0, loc)
}

func newMissionFixture(t *testing.T, now time.Time, seedQuotas bool) *missionFixture {
	t.Helper()

	calendar, err := cycle.NewCalendar(time.Date(2024, 1, 1, 0, 0, 0, 0, now.Location()), now.Location())
	if err != nil {
		t.Fatalf("new calendar: %v", err)
	}
	week := calendar.WeekOf(now)

	directory := memory.NewDirectory()
	directory.AddGroup(memory.GroupIDDasom13)
	for _, userID := range memory.SeedMembers() {
		directory.AddMember(memory.GroupIDDasom13, userID)
	}

	pairingRepo := memory.NewPairingRepository()
	for _, item := range memory.SeedPairings(week, now) {
		pairingRepo.Put(item)
	}

	templateRepo := memory.NewTemplateRepository()
	for _, item := range memory.SeedTemplates() {
		templateRepo.Put(item)
	}

	quotaRepo := memory.NewQuotaRepository()
	if seedQuotas {
		for _, item := range memory.SeedQuotas(week) {
			quotaRepo.Put(item)
		}
	}

	assignmentRepo := memory.NewAssignmentRepository()

	service := NewMissionService(
		directory,
		pairingRepo,
		templateRepo,
		quotaRepo,
		assignmentRepo,
		calendar,
		&sequenceIDGenerator{},
		logging.NewNop(),
	)
	service.now = func() time.Time { return now }

	return &missionFixture{
		service:        service,
		directory:      directory,
		pairingRepo:    pairingRepo,
		templateRepo:   templateRepo,
		quotaRepo:      quotaRepo,
		assignmentRepo: assignmentRepo,
		calendar:       calendar,
		week:           week,
		now:            now,
	}
}

func TestMissionService_Select_Success(t *testing.T) {
	now := activeInstant(t)
	f := newMissionFixture(t, now, true)

	item, err := f.service.Select(t.Context(), SelectMissionInput{
		UserID:    "usr-yuna",
		GroupID:   memory.GroupIDDasom13,
		MissionID: "msn-001",
	})
	if err != nil {
		t.Fatalf("select failed: %v", err)
	}

	if item.SelectionType != assignment.SelectionManual {
		t.Fatalf("expected manual selection, got %s", item.SelectionType)
	}
	if item.Status != assignment.StatusInProgress {
		t.Fatalf("expected in_progress status, got %s", item.Status)
	}
	if item.Week != f.week {
		t.Fatalf("expected week %d, got %d", f.week, item.Week)
	}
	if !item.AssignedDate.Equal(f.calendar.DateOf(now)) {
		t.Fatalf("expected assigned date %v, got %v", f.calendar.DateOf(now), item.AssignedDate)
	}

	quota, _, err := f.quotaRepo.GetByMission(t.Context(), memory.GroupIDDasom13, "msn-001", f.week)
	if err != nil {
		t.Fatalf("get quota: %v", err)
	}
	if quota.RemainingCount != quota.MaxAssignable-1 {
		t.Fatalf("expected quota decremented to %d, got %d", quota.MaxAssignable-1, quota.RemainingCount)
	}
}

func TestMissionService_Select_GuardFailures(t *testing.T) {
	now := activeInstant(t)
	f := newMissionFixture(t, now, true)

	// Unknown user.
	_, err := f.service.Select(t.Context(), SelectMissionInput{UserID: "usr-ghost", GroupID: memory.GroupIDDasom13, MissionID: "msn-001"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown user, got %v", err)
	}

	// Known user outside the group.
	f.directory.AddUser("usr-outsider")
	_, err = f.service.Select(t.Context(), SelectMissionInput{UserID: "usr-outsider", GroupID: memory.GroupIDDasom13, MissionID: "msn-001"})
	if !errors.Is(err, ErrPreconditionFailed) {
		t.Fatalf("expected ErrPreconditionFailed for non-member, got %v", err)
	}

	// Unknown mission.
	_, err = f.service.Select(t.Context(), SelectMissionInput{UserID: "usr-yuna", GroupID: memory.GroupIDDasom13, MissionID: "msn-999"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown mission, got %v", err)
	}

	// Member without a pairing this week.
	f.directory.AddMember(memory.GroupIDDasom13, "usr-late-joiner")
	_, err = f.service.Select(t.Context(), SelectMissionInput{UserID: "usr-late-joiner", GroupID: memory.GroupIDDasom13, MissionID: "msn-001"})
	if !errors.Is(err, ErrPreconditionFailed) {
		t.Fatalf("expected ErrPreconditionFailed for missing pairing, got %v", err)
	}

	// Mission in the catalog but not offered this week.
	f.templateRepo.Put(mission.Template{ID: "msn-777", Title: "보너스 미션", Difficulty: mission.DifficultyEasy})
	_, err = f.service.Select(t.Context(), SelectMissionInput{UserID: "usr-yuna", GroupID: memory.GroupIDDasom13, MissionID: "msn-777"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unoffered mission, got %v", err)
	}
}

func TestMissionService_Select_DailyAndWeeklyUniqueness(t *testing.T) {
	now := activeInstant(t)
	f := newMissionFixture(t, now, true)

	if _, err := f.service.Select(t.Context(), SelectMissionInput{UserID: "usr-yuna", GroupID: memory.GroupIDDasom13, MissionID: "msn-001"}); err != nil {
		t.Fatalf("first select failed: %v", err)
	}

	// Second selection the same day, different mission.
	_, err := f.service.Select(t.Context(), SelectMissionInput{UserID: "usr-yuna", GroupID: memory.GroupIDDasom13, MissionID: "msn-002"})
	if !errors.Is(err, ErrDuplicateSelection) {
		t.Fatalf("expected ErrDuplicateSelection for second daily pick, got %v", err)
	}

	// Next day, same mission again within the same week.
	f.service.now = func() time.Time { return now.AddDate(0, 0, 1) }
	_, err = f.service.Select(t.Context(), SelectMissionInput{UserID: "usr-yuna", GroupID: memory.GroupIDDasom13, MissionID: "msn-001"})
	if !errors.Is(err, ErrDuplicateSelection) {
		t.Fatalf("expected ErrDuplicateSelection for repeated weekly pick, got %v", err)
	}

	// Next day, a different mission is fine.
	if _, err := f.service.Select(t.Context(), SelectMissionInput{UserID: "usr-yuna", GroupID: memory.GroupIDDasom13, MissionID: "msn-002"}); err != nil {
		t.Fatalf("next-day select failed: %v", err)
	}
}

func TestMissionService_Select_CapacityExhausted(t *testing.T) {
	now := activeInstant(t)
	f := newMissionFixture(t, now, true)

	f.quotaRepo.Put(mission.Quota{
		GroupID:        memory.GroupIDDasom13,
		MissionID:      "msn-001",
		Week:           f.week,
		MaxAssignable:  1,
		RemainingCount: 1,
	})

	if _, err := f.service.Select(t.Context(), SelectMissionInput{UserID: "usr-yuna", GroupID: memory.GroupIDDasom13, MissionID: "msn-001"}); err != nil {
		t.Fatalf("select of last slot failed: %v", err)
	}

	_, err := f.service.Select(t.Context(), SelectMissionInput{UserID: "usr-minho", GroupID: memory.GroupIDDasom13, MissionID: "msn-001"})
	if !errors.Is(err, ErrCapacityExhausted) {
		t.Fatalf("expected ErrCapacityExhausted, got %v", err)
	}
}

func TestMissionService_Select_ConcurrentLastSlots(t *testing.T) {
	now := activeInstant(t)
	f := newMissionFixture(t, now, true)

	f.quotaRepo.Put(mission.Quota{
		GroupID:        memory.GroupIDDasom13,
		MissionID:      "msn-003",
		Week:           f.week,
		MaxAssignable:  5,
		RemainingCount: 5,
	})

	users := memory.SeedMembers()
	if len(users) != 6 {
		t.Fatalf("expected 6 seed members, got %d", len(users))
	}

	var wg sync.WaitGroup
	errs := make([]error, len(users))
	for i, userID := range users {
		i, userID := i, userID
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = f.service.Select(t.Context(), SelectMissionInput{
				UserID:    userID,
				GroupID:   memory.GroupIDDasom13,
				MissionID: "msn-003",
			})
		}()
	}
	wg.Wait()

	successCount := 0
	exhaustedCount := 0
	for _, err := range errs {
		switch {
		case err == nil:
			successCount++
		case errors.Is(err, ErrCapacityExhausted):
			exhaustedCount++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if successCount != 5 || exhaustedCount != 1 {
		t.Fatalf("expected 5 successes and 1 exhaustion, got %d and %d", successCount, exhaustedCount)
	}

	quota, _, err := f.quotaRepo.GetByMission(t.Context(), memory.GroupIDDasom13, "msn-003", f.week)
	if err != nil {
		t.Fatalf("get quota: %v", err)
	}
	if quota.RemainingCount != 0 {
		t.Fatalf("expected remaining count 0, got %d", quota.RemainingCount)
	}
}

func TestMissionService_ListAvailable(t *testing.T) {
	now := activeInstant(t)
	f := newMissionFixture(t, now, true)

	board, err := f.service.ListAvailable(t.Context(), "usr-yuna", memory.GroupIDDasom13)
	if err != nil {
		t.Fatalf("list available failed: %v", err)
	}
	if board.Week != f.week {
		t.Fatalf("expected week %d, got %d", f.week, board.Week)
	}
	if !board.CanSelectToday {
		t.Fatalf("expected can_select_today before any pick")
	}
	if len(board.Missions) != len(memory.SeedTemplates()) {
		t.Fatalf("expected %d missions, got %d", len(memory.SeedTemplates()), len(board.Missions))
	}
	for _, m := range board.Missions {
		if !m.Selectable {
			t.Fatalf("expected mission %s selectable on a fresh board", m.Mission.ID)
		}
	}

	if _, err := f.service.Select(t.Context(), SelectMissionInput{UserID: "usr-yuna", GroupID: memory.GroupIDDasom13, MissionID: "msn-001"}); err != nil {
		t.Fatalf("select failed: %v", err)
	}

	board, err = f.service.ListAvailable(t.Context(), "usr-yuna", memory.GroupIDDasom13)
	if err != nil {
		t.Fatalf("list available after select failed: %v", err)
	}
	if board.CanSelectToday {
		t.Fatalf("expected can_select_today false after today's pick")
	}
	if board.TodaySelection == nil || board.TodaySelection.MissionID != "msn-001" {
		t.Fatalf("expected today's selection msn-001, got %+v", board.TodaySelection)
	}
	for _, m := range board.Missions {
		if m.Selectable {
			t.Fatalf("expected nothing selectable after today's pick, mission %s still is", m.Mission.ID)
		}
		if m.Mission.ID == "msn-001" {
			if !m.AlreadySelectedThisWeek {
				t.Fatalf("expected msn-001 marked as selected this week")
			}
			if m.RemainingToday != m.MaxAssignable-1 {
				t.Fatalf("expected remaining today %d, got %d", m.MaxAssignable-1, m.RemainingToday)
			}
		}
	}
}

func TestMissionService_ListAvailable_CycleNotReady(t *testing.T) {
	now := activeInstant(t)
	f := newMissionFixture(t, now, false)

	_, err := f.service.ListAvailable(t.Context(), "usr-yuna", memory.GroupIDDasom13)
	if !errors.Is(err, ErrCycleNotReady) {
		t.Fatalf("expected ErrCycleNotReady, got %v", err)
	}
}

func TestMissionService_ListAvailable_PairingCheckedBeforeQuotas(t *testing.T) {
	now := activeInstant(t)
	f := newMissionFixture(t, now, false)

	f.directory.AddMember(memory.GroupIDDasom13, "usr-late-joiner")
	_, err := f.service.ListAvailable(t.Context(), "usr-late-joiner", memory.GroupIDDasom13)
	if !errors.Is(err, ErrPreconditionFailed) {
		t.Fatalf("expected ErrPreconditionFailed before quota inspection, got %v", err)
	}
}

func TestMissionService_AutoAssign(t *testing.T) {
	now := activeInstant(t)
	f := newMissionFixture(t, now, true)

	// Drain every quota; auto assignment must not care.
	for _, q := range memory.SeedQuotas(f.week) {
		q.RemainingCount = 0
		f.quotaRepo.Put(q)
	}

	item, err := f.service.AutoAssign(t.Context(), "usr-yuna", memory.GroupIDDasom13)
	if err != nil {
		t.Fatalf("auto assign failed: %v", err)
	}
	if item.SelectionType != assignment.SelectionAuto {
		t.Fatalf("expected auto selection, got %s", item.SelectionType)
	}

	// Same-day repeat returns the existing assignment.
	again, err := f.service.AutoAssign(t.Context(), "usr-yuna", memory.GroupIDDasom13)
	if err != nil {
		t.Fatalf("repeat auto assign failed: %v", err)
	}
	if again.ID != item.ID {
		t.Fatalf("expected same assignment on repeat, got %s vs %s", again.ID, item.ID)
	}
}

func TestMissionService_AutoAssign_WeeklyLimit(t *testing.T) {
	now := activeInstant(t)
	f := newMissionFixture(t, now, true)

	// Fill Monday through Friday of the same calendar week.
	for _, offset := range []int{-2, -1, 0, 1, 2} {
		dayNow := now.AddDate(0, 0, offset)
		f.service.now = func() time.Time { return dayNow }
		if _, err := f.service.AutoAssign(t.Context(), "usr-minho", memory.GroupIDDasom13); err != nil {
			t.Fatalf("auto assign offset %d failed: %v", offset, err)
		}
	}

	f.service.now = func() time.Time { return now.AddDate(0, 0, 3) }
	_, err := f.service.AutoAssign(t.Context(), "usr-minho", memory.GroupIDDasom13)
	if !errors.Is(err, ErrPreconditionFailed) {
		t.Fatalf("expected ErrPreconditionFailed at weekly limit, got %v", err)
	}
}

func TestMissionService_Complete_Idempotent(t *testing.T) {
	now := activeInstant(t)
	f := newMissionFixture(t, now, true)

	created, err := f.service.Select(t.Context(), SelectMissionInput{UserID: "usr-yuna", GroupID: memory.GroupIDDasom13, MissionID: "msn-001"})
	if err != nil {
		t.Fatalf("select failed: %v", err)
	}

	completed, err := f.service.Complete(t.Context(), created.ID)
	if err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	if completed.Status != assignment.StatusCompleted {
		t.Fatalf("expected completed status, got %s", completed.Status)
	}

	firstUpdatedAt := completed.UpdatedAt
	f.service.now = func() time.Time { return now.Add(2 * time.Hour) }

	repeat, err := f.service.Complete(t.Context(), created.ID)
	if err != nil {
		t.Fatalf("repeat complete failed: %v", err)
	}
	if repeat.Status != assignment.StatusCompleted {
		t.Fatalf("expected completed status on repeat, got %s", repeat.Status)
	}
	if !repeat.UpdatedAt.Equal(firstUpdatedAt) {
		t.Fatalf("expected no-op repeat to keep updated_at %v, got %v", firstUpdatedAt, repeat.UpdatedAt)
	}

	_, err = f.service.Complete(t.Context(), "asg-missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown assignment, got %v", err)
	}
}

func TestMissionService_RecountQuotas_RestoresDriftedCounters(t *testing.T) {
	now := activeInstant(t)
	f := newMissionFixture(t, now, true)

	if _, err := f.service.Select(t.Context(), SelectMissionInput{UserID: "usr-yuna", GroupID: memory.GroupIDDasom13, MissionID: "msn-001"}); err != nil {
		t.Fatalf("select failed: %v", err)
	}
	if _, err := f.service.Select(t.Context(), SelectMissionInput{UserID: "usr-minho", GroupID: memory.GroupIDDasom13, MissionID: "msn-001"}); err != nil {
		t.Fatalf("select failed: %v", err)
	}

	// Simulate counter drift from a partial failure.
	if err := f.quotaRepo.SetRemaining(t.Context(), memory.GroupIDDasom13, "msn-001", f.week, 3); err != nil {
		t.Fatalf("set remaining: %v", err)
	}

	result, err := f.service.RecountQuotas(t.Context(), RecountQuotasInput{GroupID: memory.GroupIDDasom13})
	if err != nil {
		t.Fatalf("recount failed: %v", err)
	}
	if result.AdjustedCount != 1 {
		t.Fatalf("expected 1 adjusted quota, got %d", result.AdjustedCount)
	}
	if result.FailedCount != 0 {
		t.Fatalf("expected no failures, got %d", result.FailedCount)
	}

	quota, _, err := f.quotaRepo.GetByMission(t.Context(), memory.GroupIDDasom13, "msn-001", f.week)
	if err != nil {
		t.Fatalf("get quota: %v", err)
	}
	if quota.RemainingCount != 1 {
		t.Fatalf("expected recount to restore remaining=1, got %d", quota.RemainingCount)
	}
}

func TestMissionService_RecountQuotas_DryRun(t *testing.T) {
	now := activeInstant(t)
	f := newMissionFixture(t, now, true)

	if _, err := f.service.Select(t.Context(), SelectMissionInput{UserID: "usr-yuna", GroupID: memory.GroupIDDasom13, MissionID: "msn-002"}); err != nil {
		t.Fatalf("select failed: %v", err)
	}
	if err := f.quotaRepo.SetRemaining(t.Context(), memory.GroupIDDasom13, "msn-002", f.week, 3); err != nil {
		t.Fatalf("set remaining: %v", err)
	}

	result, err := f.service.RecountQuotas(t.Context(), RecountQuotasInput{GroupID: memory.GroupIDDasom13, DryRun: true})
	if err != nil {
		t.Fatalf("dry-run recount failed: %v", err)
	}
	if result.AdjustedCount != 1 {
		t.Fatalf("expected 1 drift reported, got %d", result.AdjustedCount)
	}

	quota, _, err := f.quotaRepo.GetByMission(t.Context(), memory.GroupIDDasom13, "msn-002", f.week)
	if err != nil {
		t.Fatalf("get quota: %v", err)
	}
	if quota.RemainingCount != 3 {
		t.Fatalf("expected dry run to leave remaining=3, got %d", quota.RemainingCount)
	}
}
