package mission

import "fmt"

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyNormal Difficulty = "normal"
	DifficultyHard   Difficulty = "hard"
)

var AllDifficulties = map[Difficulty]struct{}{
	DifficultyEasy:   {},
	DifficultyNormal: {},
	DifficultyHard:   {},
}

// Template is an immutable mission definition with no week or group affinity.
type Template struct {
	ID          string
	Title       string
	Description string
	Difficulty  Difficulty
}

func (t Template) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("mission id is required")
	}
	if t.Title == "" {
		return fmt.Errorf("mission title is required")
	}
	if _, ok := AllDifficulties[t.Difficulty]; !ok {
		return fmt.Errorf("unknown mission difficulty %q", t.Difficulty)
	}

	return nil
}

// Quota bounds how many members of one group may manually take a mission
// during one week. This is the contended record of the selection protocol:
// RemainingCount only moves through the repository's conditional
// decrement/increment operations, never read-modify-write.
type Quota struct {
	GroupID        string
	MissionID      string
	Week           int
	MaxAssignable  int
	RemainingCount int
}

func (q Quota) IsSelectable() bool {
	return q.RemainingCount > 0
}

func (q Quota) Validate() error {
	if q.GroupID == "" {
		return fmt.Errorf("group id is required")
	}
	if q.MissionID == "" {
		return fmt.Errorf("mission id is required")
	}
	if q.Week < 1 {
		return fmt.Errorf("week must be >= 1")
	}
	if q.MaxAssignable < 0 {
		return fmt.Errorf("max assignable must be >= 0")
	}
	if q.RemainingCount < 0 || q.RemainingCount > q.MaxAssignable {
		return fmt.Errorf("remaining count %d out of range [0, %d]", q.RemainingCount, q.MaxAssignable)
	}

	return nil
}
