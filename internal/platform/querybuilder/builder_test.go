package querybuilder

import (
	"reflect"
	"testing"
)

func TestSelectBuilder_ToSQL(t *testing.T) {
	t.Parallel()

	query, args, err := Select("*").From("table_entries").
		Where(
			Eq("league_id", "liga-1"),
			Eq("season", "2025-26"),
			IsNull("deleted_at"),
		).
		OrderBy("rank").
		Limit(10).
		ToSQL()
	if err != nil {
		t.Fatalf("build select: %v", err)
	}

	want := "SELECT * FROM table_entries WHERE league_id = $1 AND season = $2 AND deleted_at IS NULL ORDER BY rank LIMIT 10"
	if query != want {
		t.Fatalf("query:\n got=%s\nwant=%s", query, want)
	}
	if !reflect.DeepEqual(args, []any{"liga-1", "2025-26"}) {
		t.Fatalf("args: got=%v", args)
	}
}

func TestSelectBuilder_RequiresTable(t *testing.T) {
	t.Parallel()

	if _, _, err := Select("id").ToSQL(); err == nil {
		t.Fatal("expected error for missing table")
	}
	if _, _, err := Select().From("t").ToSQL(); err == nil {
		t.Fatal("expected error for missing columns")
	}
}

func TestInCondition(t *testing.T) {
	t.Parallel()

	query, args, err := Select("id").From("matches").
		Where(In("status", []any{"finished", "live"})).
		ToSQL()
	if err != nil {
		t.Fatalf("build select: %v", err)
	}

	want := "SELECT id FROM matches WHERE status IN ($1, $2)"
	if query != want {
		t.Fatalf("query: got=%s want=%s", query, want)
	}
	if len(args) != 2 {
		t.Fatalf("args: got=%v", args)
	}

	// An empty IN list can never match.
	query, _, err = Select("id").From("matches").
		Where(In("status", nil)).
		ToSQL()
	if err != nil {
		t.Fatalf("build empty-in select: %v", err)
	}
	if query != "SELECT id FROM matches WHERE 1=0" {
		t.Fatalf("empty IN: got=%s", query)
	}
}

func TestExprRewritesQuestionMarks(t *testing.T) {
	t.Parallel()

	query, args, err := Select("id").From("job_runs").
		Where(
			Eq("league_id", "liga-1"),
			Expr("finished_at > ?", "2026-01-01"),
		).
		ToSQL()
	if err != nil {
		t.Fatalf("build select: %v", err)
	}

	want := "SELECT id FROM job_runs WHERE league_id = $1 AND finished_at > $2"
	if query != want {
		t.Fatalf("query: got=%s want=%s", query, want)
	}
	if !reflect.DeepEqual(args, []any{"liga-1", "2026-01-01"}) {
		t.Fatalf("args: got=%v", args)
	}
}

func TestInsertBuilder_WithSuffix(t *testing.T) {
	t.Parallel()

	query, args, err := InsertInto("consistency_reports").
		Columns("league_id", "season", "findings").
		Values("liga-1", "2025-26", []byte(`{}`)).
		Suffix("ON CONFLICT (league_id, season) DO UPDATE SET findings = EXCLUDED.findings").
		ToSQL()
	if err != nil {
		t.Fatalf("build insert: %v", err)
	}

	want := "INSERT INTO consistency_reports (league_id, season, findings) VALUES ($1, $2, $3) ON CONFLICT (league_id, season) DO UPDATE SET findings = EXCLUDED.findings"
	if query != want {
		t.Fatalf("query:\n got=%s\nwant=%s", query, want)
	}
	if len(args) != 3 {
		t.Fatalf("args: got=%v", args)
	}
}

func TestInsertBuilder_RowArityMismatch(t *testing.T) {
	t.Parallel()

	_, _, err := InsertInto("t").
		Columns("a", "b").
		Values("only-one").
		ToSQL()
	if err == nil {
		t.Fatal("expected arity error")
	}
}

func TestUpdateBuilder_MixedSetAndSetExpr(t *testing.T) {
	t.Parallel()

	query, args, err := Update("table_entries").
		Set("rank", 3).
		SetExpr("updated_at", "NOW()").
		Where(
			Eq("league_id", "liga-1"),
			IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		t.Fatalf("build update: %v", err)
	}

	want := "UPDATE table_entries SET rank = $1, updated_at = NOW() WHERE league_id = $2 AND deleted_at IS NULL"
	if query != want {
		t.Fatalf("query:\n got=%s\nwant=%s", query, want)
	}
	if !reflect.DeepEqual(args, []any{3, "liga-1"}) {
		t.Fatalf("args: got=%v", args)
	}
}

func TestInsertModel(t *testing.T) {
	t.Parallel()

	model := struct {
		LeagueID string `db:"league_id"`
		Season   string `db:"season"`
		Points   int    `db:"points"`
		Ignored  string `db:"-"`
		NoTag    string
	}{
		LeagueID: "liga-1",
		Season:   "2025-26",
		Points:   42,
	}

	query, args, err := InsertModel("table_entries", model, "")
	if err != nil {
		t.Fatalf("insert model: %v", err)
	}

	want := "INSERT INTO table_entries (league_id, season, points) VALUES ($1, $2, $3)"
	if query != want {
		t.Fatalf("query: got=%s want=%s", query, want)
	}
	if !reflect.DeepEqual(args, []any{"liga-1", "2025-26", 42}) {
		t.Fatalf("args: got=%v", args)
	}
}

func TestInsertModel_RejectsNonStruct(t *testing.T) {
	t.Parallel()

	if _, _, err := InsertModel("t", 42, ""); err == nil {
		t.Fatal("expected error for non-struct model")
	}
	var nilPtr *struct{}
	if _, _, err := InsertModel("t", nilPtr, ""); err == nil {
		t.Fatal("expected error for nil pointer model")
	}
}
