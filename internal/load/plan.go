package load

import (
	"fmt"
	"strings"

	"dbetl/internal/database"
)

// plan is the resolved shape of one load call: the target column names and,
// for the mapping case, the source positions each row is projected to.
// A nil indices slice means the full row is kept as-is.
type plan struct {
	columns []string
	indices []int
}

// resolvePlan resolves target columns with the documented precedence:
// explicit mapping first, then a positional target column list, then
// identity. Mapping projection order follows source-column order restricted
// to the mapped columns, which keeps it deterministic.
func resolvePlan(sourceColumns, targetColumns []string, mapping map[string]string) (plan, error) {
	if len(mapping) > 0 {
		var cols []string
		var idx []int
		for i, src := range sourceColumns {
			if dst, ok := mapping[src]; ok {
				cols = append(cols, dst)
				idx = append(idx, i)
			}
		}
		if len(cols) == 0 {
			return plan{}, ErrNoMappedColumns
		}
		return plan{columns: cols, indices: idx}, nil
	}

	if len(targetColumns) > 0 {
		if len(targetColumns) != len(sourceColumns) {
			return plan{}, &ColumnCountMismatchError{Source: len(sourceColumns), Target: len(targetColumns)}
		}
		return plan{columns: targetColumns}, nil
	}

	return plan{columns: sourceColumns}, nil
}

// project applies the plan's column selection to every row, preserving row
// order. Identity and positional plans return the input untouched.
func (p plan) project(rows [][]any) ([][]any, error) {
	if p.indices == nil {
		return rows, nil
	}
	out := make([][]any, len(rows))
	for i, row := range rows {
		proj := make([]any, len(p.indices))
		for j, src := range p.indices {
			if src >= len(row) {
				return nil, fmt.Errorf("row %d has %d values, need column %d", i, len(row), src)
			}
			proj[j] = row[src]
		}
		out[i] = proj
	}
	return out, nil
}

// partition splits rows into contiguous batches of the given size; the last
// batch may be shorter. Batch order is row order.
func partition(rows [][]any, size int) [][][]any {
	if size <= 0 || len(rows) == 0 {
		return nil
	}
	out := make([][][]any, 0, (len(rows)+size-1)/size)
	for start := 0; start < len(rows); start += size {
		end := start + size
		if end > len(rows) {
			end = len(rows)
		}
		out = append(out, rows[start:end])
	}
	return out
}

// buildInsert renders one parameterized multi-row INSERT for nRows rows.
// The placeholder style comes from the target dialect; numbering is
// continuous across rows for engines with positional placeholders.
func buildInsert(d database.Dialect, table string, columns []string, nRows int) string {
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = d.QuoteIdent(c)
	}

	var sb strings.Builder
	sb.WriteString("INSERT INTO ")
	sb.WriteString(d.QuoteIdent(table))
	sb.WriteString(" (")
	sb.WriteString(strings.Join(quoted, ", "))
	sb.WriteString(") VALUES ")

	n := 0
	for r := 0; r < nRows; r++ {
		if r > 0 {
			sb.WriteString(", ")
		}
		sb.WriteByte('(')
		for c := range columns {
			if c > 0 {
				sb.WriteString(", ")
			}
			n++
			sb.WriteString(d.Placeholder(n))
		}
		sb.WriteByte(')')
	}
	return sb.String()
}
