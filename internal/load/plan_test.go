package load

import (
	"errors"
	"reflect"
	"strconv"
	"testing"

	"dbetl/internal/database"
)

func TestResolvePlanIdentity(t *testing.T) {
	t.Parallel()

	pl, err := resolvePlan([]string{"id", "name"}, nil, nil)
	if err != nil {
		t.Fatalf("resolvePlan: %v", err)
	}
	if !reflect.DeepEqual(pl.columns, []string{"id", "name"}) || pl.indices != nil {
		t.Fatalf("unexpected plan: %+v", pl)
	}
}

func TestResolvePlanPositional(t *testing.T) {
	t.Parallel()

	pl, err := resolvePlan([]string{"id", "name"}, []string{"pk", "full_name"}, nil)
	if err != nil {
		t.Fatalf("resolvePlan: %v", err)
	}
	if !reflect.DeepEqual(pl.columns, []string{"pk", "full_name"}) || pl.indices != nil {
		t.Fatalf("unexpected plan: %+v", pl)
	}
}

func TestResolvePlanCountMismatch(t *testing.T) {
	t.Parallel()

	_, err := resolvePlan([]string{"id", "name", "age"}, []string{"pk"}, nil)
	var mm *ColumnCountMismatchError
	if !errors.As(err, &mm) {
		t.Fatalf("want ColumnCountMismatchError, got %v", err)
	}
	if mm.Source != 3 || mm.Target != 1 {
		t.Fatalf("counts %d/%d", mm.Source, mm.Target)
	}
}

// Mapping keeps only mapped source columns, renamed, in source-column order.
// A mapping takes precedence over an explicit target column list.
func TestResolvePlanMapping(t *testing.T) {
	t.Parallel()

	pl, err := resolvePlan(
		[]string{"id", "nome", "idade"},
		[]string{"ignored", "ignored", "ignored"},
		map[string]string{"idade": "age", "id": "pk"},
	)
	if err != nil {
		t.Fatalf("resolvePlan: %v", err)
	}
	if !reflect.DeepEqual(pl.columns, []string{"pk", "age"}) {
		t.Fatalf("columns %v", pl.columns)
	}
	if !reflect.DeepEqual(pl.indices, []int{0, 2}) {
		t.Fatalf("indices %v", pl.indices)
	}
}

func TestResolvePlanNoMappedColumns(t *testing.T) {
	t.Parallel()

	_, err := resolvePlan([]string{"id"}, nil, map[string]string{"other": "x"})
	if !errors.Is(err, ErrNoMappedColumns) {
		t.Fatalf("want ErrNoMappedColumns, got %v", err)
	}
}

func TestProjectSubset(t *testing.T) {
	t.Parallel()

	pl := plan{columns: []string{"age"}, indices: []int{2}}
	rows := [][]any{
		{1, "a", 35},
		{2, "b", 28},
	}
	got, err := pl.project(rows)
	if err != nil {
		t.Fatalf("project: %v", err)
	}
	want := [][]any{{35}, {28}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("projected %v, want %v", got, want)
	}
}

func TestProjectShortRow(t *testing.T) {
	t.Parallel()

	pl := plan{columns: []string{"c"}, indices: []int{5}}
	if _, err := pl.project([][]any{{1}}); err == nil {
		t.Fatal("expected error for short row")
	}
}

func TestProjectIdentityIsNoOp(t *testing.T) {
	t.Parallel()

	rows := [][]any{{1, 2}}
	pl := plan{columns: []string{"a", "b"}}
	got, err := pl.project(rows)
	if err != nil {
		t.Fatalf("project: %v", err)
	}
	if &got[0] != &rows[0] {
		t.Fatal("identity projection should return the input untouched")
	}
}

// Partitioning is a pure function of (rows, batchSize): ceil(n/size)
// batches, all but the last of the full size, concatenation reconstructs
// the input.
func TestPartition(t *testing.T) {
	t.Parallel()

	rows := make([][]any, 5)
	for i := range rows {
		rows[i] = []any{i}
	}

	batches := partition(rows, 2)
	if len(batches) != 3 {
		t.Fatalf("batches %d, want 3", len(batches))
	}
	sizes := []int{len(batches[0]), len(batches[1]), len(batches[2])}
	if !reflect.DeepEqual(sizes, []int{2, 2, 1}) {
		t.Fatalf("sizes %v, want [2 2 1]", sizes)
	}

	var flat [][]any
	for _, b := range batches {
		flat = append(flat, b...)
	}
	if !reflect.DeepEqual(flat, rows) {
		t.Fatal("concatenated batches differ from input")
	}
}

func TestPartitionSingleBatch(t *testing.T) {
	t.Parallel()

	rows := [][]any{{1}, {2}, {3}}
	batches := partition(rows, 100)
	if len(batches) != 1 || len(batches[0]) != 3 {
		t.Fatalf("unexpected batches: %d", len(batches))
	}
}

func TestPartitionExactMultiple(t *testing.T) {
	t.Parallel()

	rows := [][]any{{1}, {2}, {3}, {4}}
	batches := partition(rows, 2)
	if len(batches) != 2 || len(batches[0]) != 2 || len(batches[1]) != 2 {
		t.Fatalf("unexpected batches: %v", batches)
	}
}

func qmarkDialect() database.Dialect {
	return database.Dialect{
		Name:        "fake",
		Placeholder: func(int) string { return "?" },
		QuoteIdent:  database.QuoteDouble,
		CreateTable: func(table, columns string) string {
			return "CREATE TABLE IF NOT EXISTS " + table + " (" + columns + ")"
		},
	}
}

func TestBuildInsertQuestionMarks(t *testing.T) {
	t.Parallel()

	got := buildInsert(qmarkDialect(), "clientes", []string{"id", "nome"}, 2)
	want := `INSERT INTO "clientes" ("id", "nome") VALUES (?, ?), (?, ?)`
	if got != want {
		t.Fatalf("got  %s\nwant %s", got, want)
	}
}

// Positional placeholders number continuously across rows.
func TestBuildInsertNumbered(t *testing.T) {
	t.Parallel()

	d := database.Dialect{
		Placeholder: func(n int) string { return "$" + strconv.Itoa(n) },
		QuoteIdent:  database.QuoteDouble,
	}
	got := buildInsert(d, "t", []string{"a", "b"}, 3)
	want := `INSERT INTO "t" ("a", "b") VALUES ($1, $2), ($3, $4), ($5, $6)`
	if got != want {
		t.Fatalf("got  %s\nwant %s", got, want)
	}
}
