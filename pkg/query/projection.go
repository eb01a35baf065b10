package query

import (
	"fmt"
	"strings"
)

type projectedColumn struct {
	column string
	field  string
}

// ProjectionMap maps domain field names to qualified table columns for a
// single table, so builders and sort specs can speak in field names.
type ProjectionMap struct {
	schema  string
	table   string
	alias   string
	columns []projectedColumn
	byField map[string]string
}

// NewProjectionMap creates a ProjectionMap for the given schema, table, and alias.
func NewProjectionMap(schema, table, alias string) *ProjectionMap {
	return &ProjectionMap{
		schema:  schema,
		table:   table,
		alias:   alias,
		byField: make(map[string]string),
	}
}

// Project registers a column under the given field name. Registration order
// determines column order in SELECT clauses.
func (pm *ProjectionMap) Project(column, field string) *ProjectionMap {
	pm.columns = append(pm.columns, projectedColumn{column: column, field: field})
	pm.byField[field] = fmt.Sprintf("%s.%s", pm.alias, column)
	return pm
}

// Table returns the aliased table reference for FROM clauses.
func (pm *ProjectionMap) Table() string {
	return fmt.Sprintf("%s.%s %s", pm.schema, pm.table, pm.alias)
}

// Column returns the qualified column for a field name. Unknown fields panic,
// since they indicate a programming error rather than bad input.
func (pm *ProjectionMap) Column(field string) string {
	col, ok := pm.byField[field]
	if !ok {
		panic(fmt.Sprintf("query: field %q not projected on %s.%s", field, pm.schema, pm.table))
	}
	return col
}

// Columns returns the comma-separated qualified column list for SELECT clauses.
func (pm *ProjectionMap) Columns() string {
	cols := make([]string, len(pm.columns))
	for i, c := range pm.columns {
		cols[i] = fmt.Sprintf("%s.%s", pm.alias, c.column)
	}
	return strings.Join(cols, ", ")
}
