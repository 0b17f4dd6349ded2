package postgres

import (
	"github.com/haeun-dev/manito/internal/domain/mission"
)

type missionTemplateTableModel struct {
	ID          string `db:"id"`
	Title       string `db:"title"`
	Description string `db:"description"`
	Difficulty  string `db:"difficulty"`
}

func templateFromRow(row missionTemplateTableModel) mission.Template {
	return mission.Template{
		ID:          row.ID,
		Title:       row.Title,
		Description: row.Description,
		Difficulty:  mission.Difficulty(row.Difficulty),
	}
}

type quotaTableModel struct {
	ID             int64  `db:"id"`
	GroupID        string `db:"group_id"`
	MissionID      string `db:"mission_id"`
	Week           int    `db:"week"`
	MaxAssignable  int    `db:"max_assignable"`
	RemainingCount int    `db:"remaining_count"`
}

func quotaFromRow(row quotaTableModel) mission.Quota {
	return mission.Quota{
		GroupID:        row.GroupID,
		MissionID:      row.MissionID,
		Week:           row.Week,
		MaxAssignable:  row.MaxAssignable,
		RemainingCount: row.RemainingCount,
	}
}
