// Package metrics defines the aggregate metric registry. Each metric renders
// one SQL aggregate expression aliased to its canonical name, which is also
// the key under which the query runner's row map exposes the computed value.
package metrics

import "fmt"

// Metric is a named aggregate over a column (or over the whole table).
type Metric struct {
	// Name is the canonical result key, always lower case.
	Name string
	fn   func(column string) string
}

// Expr renders the SQL expression for the given column, aliased to the
// metric's canonical name.
func (m Metric) Expr(column string) string {
	return fmt.Sprintf("%s AS %s", m.fn(column), quoteIdent(m.Name))
}

var (
	// Sum is the aggregate SUM of a column's values.
	Sum = Metric{Name: "sum", fn: func(c string) string { return "SUM(" + quoteIdent(c) + ")" }}
	// Min is the minimum value in a column.
	Min = Metric{Name: "min", fn: func(c string) string { return "MIN(" + quoteIdent(c) + ")" }}
	// Max is the maximum value in a column.
	Max = Metric{Name: "max", fn: func(c string) string { return "MAX(" + quoteIdent(c) + ")" }}
	// Mean is the arithmetic mean of a column's values.
	Mean = Metric{Name: "mean", fn: func(c string) string { return "AVG(" + quoteIdent(c) + ")" }}
	// Count is the number of non-null values in a column.
	Count = Metric{Name: "valuescount", fn: func(c string) string { return "COUNT(" + quoteIdent(c) + ")" }}
	// NullCount is the number of null values in a column.
	NullCount = Metric{Name: "nullcount", fn: func(c string) string {
		return "SUM(CASE WHEN " + quoteIdent(c) + " IS NULL THEN 1 ELSE 0 END)"
	}}
	// DistinctCount is the number of distinct non-null values in a column.
	DistinctCount = Metric{Name: "distinctcount", fn: func(c string) string {
		return "COUNT(DISTINCT " + quoteIdent(c) + ")"
	}}
	// RowCount is the number of rows in the table; the column is ignored.
	RowCount = Metric{Name: "rowcount", fn: func(string) string { return "COUNT(*)" }}
)

// quoteIdent double-quotes an identifier, escaping embedded quotes.
func quoteIdent(name string) string {
	out := make([]byte, 0, len(name)+2)
	out = append(out, '"')
	for i := 0; i < len(name); i++ {
		if name[i] == '"' {
			out = append(out, '"')
		}
		out = append(out, name[i])
	}
	return string(append(out, '"'))
}
