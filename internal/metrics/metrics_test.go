package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMetricExpr(t *testing.T) {
	assert.Equal(t, `SUM("amount") AS "sum"`, Sum.Expr("amount"))
	assert.Equal(t, `AVG("amount") AS "mean"`, Mean.Expr("amount"))
	assert.Equal(t, `COUNT(*) AS "rowcount"`, RowCount.Expr("ignored"))
	assert.Equal(t, `COUNT(DISTINCT "id") AS "distinctcount"`, DistinctCount.Expr("id"))
	assert.Equal(t, `SUM(CASE WHEN "id" IS NULL THEN 1 ELSE 0 END) AS "nullcount"`, NullCount.Expr("id"))
}

func TestQuoteIdentEscapesQuotes(t *testing.T) {
	assert.Equal(t, `MIN("we""ird") AS "min"`, Min.Expr(`we"ird`))
}
