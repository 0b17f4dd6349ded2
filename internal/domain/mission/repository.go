package mission

import "context"

// TemplateRepository serves the mission catalog, seeded reference data that
// this core only reads.
type TemplateRepository interface {
	List(ctx context.Context) ([]Template, error)
	GetByID(ctx context.Context, missionID string) (Template, bool, error)
}

// QuotaRepository persists per (group, mission, week) capacity records.
//
// DecrementRemaining must be atomic against concurrent callers: it succeeds
// only while the stored remaining count is still positive and reports false
// once the quota is drained. IncrementRemaining is the compensation path and
// floors at MaxAssignable.
type QuotaRepository interface {
	ListByGroupWeek(ctx context.Context, groupID string, week int) ([]Quota, error)
	GetByMission(ctx context.Context, groupID, missionID string, week int) (Quota, bool, error)
	DecrementRemaining(ctx context.Context, groupID, missionID string, week int) (bool, error)
	IncrementRemaining(ctx context.Context, groupID, missionID string, week int) error
	SetRemaining(ctx context.Context, groupID, missionID string, week, remaining int) error
}
