package domain

import (
	"strings"
)

// ParameterValue is a single named test-case parameter.
type ParameterValue struct {
	Name  string
	Value string
}

// TestCase describes one data-quality assertion against a table or column.
// It is immutable input owned by the caller; validators only read it.
type TestCase struct {
	Name       string
	Definition string // registry key, e.g. "columnValuesSumToBeBetween"
	EntityLink EntityLink
	Parameters []ParameterValue
}

// Parameter returns the value of the named parameter, if present.
func (tc *TestCase) Parameter(name string) (string, bool) {
	for _, p := range tc.Parameters {
		if p.Name == name {
			return p.Value, true
		}
	}
	return "", false
}

// EntityLink is a typed reference to the entity under test. It is parsed
// once at test-case construction, not re-parsed on every validation.
type EntityLink struct {
	Raw    string
	Table  string
	Column string // empty for table-level tests
}

const entityLinkSeparator = "::"

// ParseEntityLink parses a reference of the form
// "<#E::table::orders::columns::amount>" into a typed EntityLink.
// Column-level links carry a "columns" segment; table-level links stop at
// the table name.
func ParseEntityLink(raw string) (EntityLink, error) {
	trimmed := strings.TrimSuffix(strings.TrimPrefix(raw, "<"), ">")
	parts := strings.Split(trimmed, entityLinkSeparator)
	if len(parts) < 3 || parts[1] != "table" || parts[2] == "" {
		return EntityLink{}, ErrValidation("invalid entity link %q", raw)
	}

	link := EntityLink{Raw: raw, Table: parts[2]}
	if len(parts) >= 5 && parts[len(parts)-2] == "columns" {
		link.Column = ColumnFromRef(raw)
		if link.Column == "" {
			return EntityLink{}, ErrValidation("entity link %q names an empty column", raw)
		}
	}
	return link, nil
}

// ColumnFromRef extracts the column name from a raw entity reference: the
// final "::" segment with trailing '>' markers stripped.
func ColumnFromRef(raw string) string {
	parts := strings.Split(raw, entityLinkSeparator)
	return strings.TrimRight(parts[len(parts)-1], ">")
}
