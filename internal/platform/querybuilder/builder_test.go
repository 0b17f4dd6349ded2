package querybuilder

import "testing"

func TestSelectBuilder(t *testing.T) {
	query, args, err := Select("id", "title").
		From("mission_templates").
		Where(Eq("difficulty", "easy"), IsNull("deleted_at")).
		OrderBy("id").
		Limit(5).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT id, title FROM mission_templates WHERE difficulty = $1 AND deleted_at IS NULL ORDER BY id LIMIT 5"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 1 || args[0] != "easy" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestSelectBuilderEmptyIn(t *testing.T) {
	query, args, err := Select("id").
		From("mission_templates").
		Where(In("id", nil)).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT id FROM mission_templates WHERE 1=0"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 0 {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestInsertBuilder(t *testing.T) {
	query, args, err := InsertInto("mission_quotas").
		Columns("group_id", "mission_id").
		Values("g1", "m1").
		Suffix("ON CONFLICT DO NOTHING").
		ToSQL()
	if err != nil {
		t.Fatalf("build insert query: %v", err)
	}

	wantQuery := "INSERT INTO mission_quotas (group_id, mission_id) VALUES ($1, $2) ON CONFLICT DO NOTHING"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != "g1" || args[1] != "m1" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestUpdateBuilderConditionalDecrement(t *testing.T) {
	query, args, err := Update("mission_quotas").
		SetExpr("remaining_count", "remaining_count - 1").
		Where(
			Eq("group_id", "g1"),
			Eq("mission_id", "m1"),
			Eq("week", 3),
			Expr("remaining_count > ?", 0),
		).
		ToSQL()
	if err != nil {
		t.Fatalf("build update query: %v", err)
	}

	wantQuery := "UPDATE mission_quotas SET remaining_count = remaining_count - 1 WHERE group_id = $1 AND mission_id = $2 AND week = $3 AND remaining_count > $4"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 4 || args[0] != "g1" || args[1] != "m1" || args[2] != 3 || args[3] != 0 {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestUpdateBuilderSuffix(t *testing.T) {
	query, args, err := Update("mission_quotas").
		Set("remaining_count", 3).
		Where(Eq("id", int64(7))).
		Suffix("RETURNING remaining_count").
		ToSQL()
	if err != nil {
		t.Fatalf("build update query: %v", err)
	}

	wantQuery := "UPDATE mission_quotas SET remaining_count = $1 WHERE id = $2 RETURNING remaining_count"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestInsertModel(t *testing.T) {
	type row struct {
		ID    string `db:"id"`
		Title string `db:"title"`
		Skip  string `db:"-"`
	}

	query, args, err := InsertModel("mission_templates", row{ID: "m1", Title: "제목"}, "")
	if err != nil {
		t.Fatalf("build insert query: %v", err)
	}

	wantQuery := "INSERT INTO mission_templates (id, title) VALUES ($1, $2)"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != "m1" || args[1] != "제목" {
		t.Fatalf("unexpected args: %+v", args)
	}
}
