package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEntityLink(t *testing.T) {
	t.Run("column_level", func(t *testing.T) {
		link, err := ParseEntityLink("<#E::table::orders::columns::amount>")

		require.NoError(t, err)
		assert.Equal(t, "orders", link.Table)
		assert.Equal(t, "amount", link.Column)
	})

	t.Run("table_level", func(t *testing.T) {
		link, err := ParseEntityLink("<#E::table::orders>")

		require.NoError(t, err)
		assert.Equal(t, "orders", link.Table)
		assert.Empty(t, link.Column)
	})

	t.Run("invalid", func(t *testing.T) {
		_, err := ParseEntityLink("orders.amount")

		require.Error(t, err)
		var verr *ValidationError
		assert.ErrorAs(t, err, &verr)
	})

	t.Run("missing_table", func(t *testing.T) {
		_, err := ParseEntityLink("<#E::table::>")

		require.Error(t, err)
	})
}

func TestColumnFromRef(t *testing.T) {
	assert.Equal(t, "amount", ColumnFromRef("<#E::table::orders::columns::amount>"))
	assert.Equal(t, "amount", ColumnFromRef("...::amount>>"))
	assert.Equal(t, "amount", ColumnFromRef("amount"))
}

func TestTestCase_Parameter(t *testing.T) {
	tc := TestCase{
		Name: "amount_sum",
		Parameters: []ParameterValue{
			{Name: "minValueForColSum", Value: "100"},
			{Name: "maxValueForColSum", Value: "200"},
		},
	}

	v, ok := tc.Parameter("maxValueForColSum")
	require.True(t, ok)
	assert.Equal(t, "200", v)

	_, ok = tc.Parameter("missing")
	assert.False(t, ok)
}

func TestDeriveRunStatus(t *testing.T) {
	mk := func(statuses ...TestCaseStatus) []CaseResult {
		out := make([]CaseResult, len(statuses))
		for i, s := range statuses {
			out[i] = CaseResult{Result: TestCaseResult{Status: s}}
		}
		return out
	}

	assert.Equal(t, StatusSuccess, DeriveRunStatus(mk(StatusSuccess, StatusSuccess)))
	assert.Equal(t, StatusFailed, DeriveRunStatus(mk(StatusSuccess, StatusFailed)))
	assert.Equal(t, StatusAborted, DeriveRunStatus(mk(StatusFailed, StatusAborted, StatusSuccess)))
	assert.Equal(t, StatusSuccess, DeriveRunStatus(nil))
}
