package anonymity

import (
	"fmt"
	"math/rand/v2"
	"time"
)

// Snapshot pins a user's pseudonym for one group week. It is written once and
// never overwritten, so profile edits after the fact cannot deanonymize posts
// published under the name.
type Snapshot struct {
	UserID        string
	GroupID       string
	Week          int
	AnonymousName string
	CreatedAt     time.Time
}

func (s Snapshot) Validate() error {
	if s.UserID == "" {
		return fmt.Errorf("user id is required")
	}
	if s.GroupID == "" {
		return fmt.Errorf("group id is required")
	}
	if s.Week < 1 {
		return fmt.Errorf("week must be >= 1")
	}
	if s.AnonymousName == "" {
		return fmt.Errorf("anonymous name is required")
	}

	return nil
}

const namePrefix = "익명의 "

var animalNames = []string{
	"너구리", "고슴도치", "수달", "펭귄", "판다",
	"호랑이", "토끼", "다람쥐", "고래", "부엉이",
	"여우", "알파카", "물개", "두더지", "사막여우",
}

// RandomName synthesizes a pseudonym from the fixed animal list. Uniqueness is
// not guaranteed here; duplicate names across users are acceptable, duplicate
// snapshot rows are not (the store enforces that).
func RandomName() string {
	return namePrefix + animalNames[rand.IntN(len(animalNames))]
}
