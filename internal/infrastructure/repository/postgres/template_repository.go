package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/haeun-dev/manito/internal/domain/mission"
	qb "github.com/haeun-dev/manito/internal/platform/querybuilder"
)

type TemplateRepository struct {
	db *sqlx.DB
}

func NewTemplateRepository(db *sqlx.DB) *TemplateRepository {
	return &TemplateRepository{db: db}
}

func (r *TemplateRepository) List(ctx context.Context) ([]mission.Template, error) {
	query, args, err := qb.Select("*").
		From("mission_templates").
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list mission templates query: %w", err)
	}

	var rows []missionTemplateTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list mission templates: %w", err)
	}

	out := make([]mission.Template, 0, len(rows))
	for _, row := range rows {
		out = append(out, templateFromRow(row))
	}
	return out, nil
}

func (r *TemplateRepository) GetByID(ctx context.Context, missionID string) (mission.Template, bool, error) {
	query, args, err := qb.Select("*").
		From("mission_templates").
		Where(qb.Eq("id", missionID)).
		ToSQL()
	if err != nil {
		return mission.Template{}, false, fmt.Errorf("build get mission template query: %w", err)
	}

	var row missionTemplateTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return mission.Template{}, false, nil
		}
		return mission.Template{}, false, fmt.Errorf("get mission template: %w", err)
	}

	return templateFromRow(row), true, nil
}
