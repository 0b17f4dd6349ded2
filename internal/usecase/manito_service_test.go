package usecase

import (
	"errors"
	"testing"
	"time"

	"github.com/haeun-dev/manito/internal/domain/cycle"
	"github.com/haeun-dev/manito/internal/infrastructure/repository/memory"
	"github.com/haeun-dev/manito/internal/platform/logging"
)

func newManitoFixture(t *testing.T, now time.Time) (*ManitoService, int) {
	t.Helper()

	calendar, err := cycle.NewCalendar(time.Date(2024, 1, 1, 0, 0, 0, 0, now.Location()), now.Location())
	if err != nil {
		t.Fatalf("new calendar: %v", err)
	}
	// Seed the week the service resolves: the revealed (previous) week when
	// now sits in the Monday tail of REVEAL, the current week otherwise.
	week := calendar.WeekOf(now)
	if calendar.PhaseAt(now) == cycle.PhaseReveal {
		week = calendar.RevealedWeekOf(now)
	}

	directory := memory.NewDirectory()
	directory.AddGroup(memory.GroupIDDasom13)
	for _, userID := range memory.SeedMembers() {
		directory.AddMember(memory.GroupIDDasom13, userID)
	}

	pairingRepo := memory.NewPairingRepository()
	for _, item := range memory.SeedPairings(week, now) {
		pairingRepo.Put(item)
	}

	service := NewManitoService(directory, pairingRepo, calendar, logging.NewNop())
	service.now = func() time.Time { return now }
	return service, week
}

func TestManitoService_CurrentInfo_Active(t *testing.T) {
	now := activeInstant(t)
	service, week := newManitoFixture(t, now)

	info, err := service.CurrentInfo(t.Context(), "usr-yuna", memory.GroupIDDasom13)
	if err != nil {
		t.Fatalf("current info failed: %v", err)
	}

	if info.Week != week {
		t.Fatalf("expected week %d, got %d", week, info.Week)
	}
	if info.Phase != cycle.PhaseActive {
		t.Fatalf("expected ACTIVE phase, got %s", info.Phase)
	}
	// Seed pairing is a ring: usr-yuna gives to usr-minho.
	if info.ManitteeUserID != "usr-minho" {
		t.Fatalf("expected manittee usr-minho, got %s", info.ManitteeUserID)
	}
	if info.ManittoUserID != "" {
		t.Fatalf("expected manitto hidden during ACTIVE, got %s", info.ManittoUserID)
	}

	// Wednesday 15:00 to Friday 17:00 is 50 hours.
	if info.Countdown != "50:00:00" {
		t.Fatalf("expected countdown 50:00:00, got %s", info.Countdown)
	}
	if !info.NextTransition.After(now) {
		t.Fatalf("expected next transition strictly after now")
	}
}

func TestManitoService_CurrentInfo_Reveal(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Seoul")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	// Saturday 10:00 KST, inside REVEAL.
	now := time.Date(2026, 3, 7, 10, 0, 0, 0, loc)
	service, _ := newManitoFixture(t, now)

	info, err := service.CurrentInfo(t.Context(), "usr-minho", memory.GroupIDDasom13)
	if err != nil {
		t.Fatalf("current info failed: %v", err)
	}

	if info.Phase != cycle.PhaseReveal {
		t.Fatalf("expected REVEAL phase, got %s", info.Phase)
	}
	if info.ManitteeUserID != "usr-jiwoo" {
		t.Fatalf("expected manittee usr-jiwoo, got %s", info.ManitteeUserID)
	}
	// During REVEAL the giver who served this user becomes visible.
	if info.ManittoUserID != "usr-yuna" {
		t.Fatalf("expected manitto usr-yuna, got %s", info.ManittoUserID)
	}
}

func TestManitoService_CurrentInfo_RevealMondayMorning(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Seoul")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	// Monday 09:00 KST: still REVEAL, but past the Monday 00:00 week
	// rollover. The concluded week's pairing must stay visible; the new
	// week has no rows yet.
	now := time.Date(2026, 3, 9, 9, 0, 0, 0, loc)
	service, week := newManitoFixture(t, now)

	info, err := service.CurrentInfo(t.Context(), "usr-minho", memory.GroupIDDasom13)
	if err != nil {
		t.Fatalf("current info failed: %v", err)
	}

	if info.Phase != cycle.PhaseReveal {
		t.Fatalf("expected REVEAL phase, got %s", info.Phase)
	}
	if info.Week != week {
		t.Fatalf("expected revealed week %d, got %d", week, info.Week)
	}
	if got := service.calendar.WeekOf(now); info.Week != got-1 {
		t.Fatalf("expected the week before the calendar week %d, got %d", got, info.Week)
	}
	if info.ManitteeUserID != "usr-jiwoo" {
		t.Fatalf("expected manittee usr-jiwoo, got %s", info.ManitteeUserID)
	}
	if info.ManittoUserID != "usr-yuna" {
		t.Fatalf("expected manitto usr-yuna, got %s", info.ManittoUserID)
	}
}

func TestManitoService_CurrentInfo_NoPairing(t *testing.T) {
	now := activeInstant(t)
	service, _ := newManitoFixture(t, now)

	service.directory.(*memory.Directory).AddMember(memory.GroupIDDasom13, "usr-late-joiner")
	_, err := service.CurrentInfo(t.Context(), "usr-late-joiner", memory.GroupIDDasom13)
	if !errors.Is(err, ErrPreconditionFailed) {
		t.Fatalf("expected ErrPreconditionFailed, got %v", err)
	}
}
