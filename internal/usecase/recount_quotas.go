package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
)

const (
	recountStatusSuccess  = "success"
	recountStatusAdjusted = "adjusted"
	recountStatusFailed   = "failed"

	recountMaxWorkers = 4
)

type RecountQuotasInput struct {
	GroupID    string
	MaxWorkers int
	// DryRun computes drift without writing corrections back.
	DryRun bool
}

type RecountQuotasResult struct {
	GroupID       string              `json:"group_id"`
	Week          int                 `json:"week"`
	QuotaCount    int                 `json:"quota_count"`
	AdjustedCount int                 `json:"adjusted_count"`
	FailedCount   int                 `json:"failed_count"`
	WorkerCount   int                 `json:"worker_count"`
	Quotas        []RecountQuotaEntry `json:"quotas"`
}

type RecountQuotaEntry struct {
	MissionID         string `json:"mission_id"`
	MaxAssignable     int    `json:"max_assignable"`
	ManualCount       int    `json:"manual_count"`
	PreviousRemaining int    `json:"previous_remaining"`
	RemainingCount    int    `json:"remaining_count"`
	Status            string `json:"status"`
	DurationMs        int64  `json:"duration_ms"`
	Message           string `json:"message,omitempty"`
}

// RecountQuotas recomputes remaining_count as max_assignable minus the number
// of committed manual selections, per mission for the current week. It is the
// repair tool for counters that drifted through partial failures of the
// select protocol, fanned out over a bounded worker pool.
func (s *MissionService) RecountQuotas(ctx context.Context, input RecountQuotasInput) (RecountQuotasResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MissionService.RecountQuotas")
	defer span.End()

	input.GroupID = strings.TrimSpace(input.GroupID)
	if input.GroupID == "" {
		return RecountQuotasResult{}, fmt.Errorf("%w: group_id is required", ErrInvalidInput)
	}

	exists, err := s.directory.GroupExists(ctx, input.GroupID)
	if err != nil {
		return RecountQuotasResult{}, fmt.Errorf("%w: check group existence: %v", ErrDependencyUnavailable, err)
	}
	if !exists {
		return RecountQuotasResult{}, fmt.Errorf("%w: group=%s", ErrNotFound, input.GroupID)
	}

	week := s.calendar.WeekOf(s.now())
	quotas, err := s.quotaRepo.ListByGroupWeek(ctx, input.GroupID, week)
	if err != nil {
		return RecountQuotasResult{}, fmt.Errorf("list quotas by group and week: %w", err)
	}

	workerCount := normalizeRecountWorkerCount(input.MaxWorkers, len(quotas))
	result := RecountQuotasResult{
		GroupID:     input.GroupID,
		Week:        week,
		QuotaCount:  len(quotas),
		WorkerCount: workerCount,
		Quotas:      make([]RecountQuotaEntry, 0, len(quotas)),
	}
	if len(quotas) == 0 {
		return result, nil
	}

	entries := make(chan RecountQuotaEntry, len(quotas))
	var adjustedCount atomic.Int32
	var failedCount atomic.Int32

	pool, err := ants.NewPool(workerCount)
	if err != nil {
		return RecountQuotasResult{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var workers sync.WaitGroup
	for _, quota := range quotas {
		quota := quota
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			start := time.Now()
			entry := s.recountQuota(ctx, input.GroupID, quota.MissionID, week, quota.MaxAssignable, quota.RemainingCount, input.DryRun)
			entry.DurationMs = time.Since(start).Milliseconds()

			switch entry.Status {
			case recountStatusAdjusted:
				adjustedCount.Add(1)
			case recountStatusFailed:
				failedCount.Add(1)
			}

			entries <- entry
		}); err != nil {
			workers.Done()
			return RecountQuotasResult{}, fmt.Errorf("submit recount task to worker pool: %w", err)
		}
	}

	workers.Wait()
	close(entries)

	for entry := range entries {
		result.Quotas = append(result.Quotas, entry)
	}
	sort.SliceStable(result.Quotas, func(i, j int) bool {
		return result.Quotas[i].MissionID < result.Quotas[j].MissionID
	})

	result.AdjustedCount = int(adjustedCount.Load())
	result.FailedCount = int(failedCount.Load())

	if result.AdjustedCount > 0 {
		s.logger.InfoContext(ctx, "quota recount adjusted drifted counters",
			"group_id", input.GroupID, "week", week, "adjusted", result.AdjustedCount, "dry_run", input.DryRun)
	}

	return result, nil
}

func (s *MissionService) recountQuota(
	ctx context.Context,
	groupID, missionID string,
	week, maxAssignable, previousRemaining int,
	dryRun bool,
) RecountQuotaEntry {
	entry := RecountQuotaEntry{
		MissionID:         missionID,
		MaxAssignable:     maxAssignable,
		PreviousRemaining: previousRemaining,
		RemainingCount:    previousRemaining,
		Status:            recountStatusSuccess,
	}

	manualCount, err := s.assignmentRepo.CountManualByMissionAndWeek(ctx, groupID, missionID, week)
	if err != nil {
		entry.Status = recountStatusFailed
		entry.Message = err.Error()
		return entry
	}
	entry.ManualCount = manualCount

	want := maxAssignable - manualCount
	if want < 0 {
		want = 0
	}
	if want == previousRemaining {
		return entry
	}

	entry.RemainingCount = want
	entry.Status = recountStatusAdjusted
	if dryRun {
		return entry
	}

	if err := s.quotaRepo.SetRemaining(ctx, groupID, missionID, week, want); err != nil {
		entry.Status = recountStatusFailed
		entry.RemainingCount = previousRemaining
		entry.Message = err.Error()
	}

	return entry
}

func normalizeRecountWorkerCount(value, taskCount int) int {
	if taskCount <= 0 {
		return 1
	}
	if value <= 0 {
		value = recountMaxWorkers
	}
	if value > recountMaxWorkers {
		value = recountMaxWorkers
	}
	if value > taskCount {
		value = taskCount
	}
	return value
}
