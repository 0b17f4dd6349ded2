package memory

import (
	"time"

	"github.com/haeun-dev/manito/internal/domain/mission"
	"github.com/haeun-dev/manito/internal/domain/pairing"
)

const (
	GroupIDDasom13 = "dasom-13"

	seedQuotaMaxAssignable = 3
)

func SeedTemplates() []mission.Template {
	return []mission.Template{
		{ID: "msn-001", Title: "몰래 간식 남기기", Description: "마니띠의 자리에 좋아할 만한 간식을 몰래 두고 오세요.", Difficulty: mission.DifficultyEasy},
		{ID: "msn-002", Title: "응원 쪽지 쓰기", Description: "마니띠에게 익명 응원 쪽지를 남겨 보세요.", Difficulty: mission.DifficultyEasy},
		{ID: "msn-003", Title: "취향 조사하기", Description: "마니띠가 요즘 빠져 있는 것을 대화에서 자연스럽게 알아내세요.", Difficulty: mission.DifficultyNormal},
		{ID: "msn-004", Title: "칭찬 세 번 하기", Description: "하루 동안 마니띠를 세 번 칭찬하되 들키지 마세요.", Difficulty: mission.DifficultyNormal},
		{ID: "msn-005", Title: "점심 같이 먹기", Description: "마니띠와 자연스럽게 점심을 함께하세요.", Difficulty: mission.DifficultyHard},
		{ID: "msn-006", Title: "손편지 준비하기", Description: "공개 주간에 전달할 손편지를 미리 써 두세요.", Difficulty: mission.DifficultyHard},
	}
}

func SeedMembers() []string {
	return []string{"usr-yuna", "usr-minho", "usr-jiwoo", "usr-haneul", "usr-seojun", "usr-dain"}
}

// SeedPairings returns a ring matching over the seed members for the given
// week, the shape the external matching batch produces.
func SeedPairings(week int, createdAt time.Time) []pairing.Pairing {
	members := SeedMembers()
	out := make([]pairing.Pairing, 0, len(members))
	for i, giver := range members {
		out = append(out, pairing.Pairing{
			GroupID:        GroupIDDasom13,
			Week:           week,
			GiverUserID:    giver,
			ReceiverUserID: members[(i+1)%len(members)],
			CreatedAt:      createdAt,
		})
	}
	return out
}

func SeedQuotas(week int) []mission.Quota {
	templates := SeedTemplates()
	out := make([]mission.Quota, 0, len(templates))
	for _, t := range templates {
		out = append(out, mission.Quota{
			GroupID:        GroupIDDasom13,
			MissionID:      t.ID,
			Week:           week,
			MaxAssignable:  seedQuotaMaxAssignable,
			RemainingCount: seedQuotaMaxAssignable,
		})
	}
	return out
}
