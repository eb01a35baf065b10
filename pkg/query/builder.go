// Package query constructs SQL queries using a fluent API with automatic
// parameter numbering, including keyset (cursor) pagination predicates.
package query

import (
	"fmt"
	"strings"
)

// SortField identifies a sort key by field name and direction.
type SortField struct {
	Field      string
	Descending bool
}

type condition struct {
	clause string
	args   []any
}

// Builder constructs SQL queries against a single projected table.
type Builder struct {
	projection *ProjectionMap
	conditions []condition
	sort       []SortField
}

// NewBuilder creates a Builder for the given projection.
func NewBuilder(projection *ProjectionMap) *Builder {
	return &Builder{
		projection: projection,
		conditions: make([]condition, 0),
	}
}

// WhereEquals adds an equality condition. Nil values are ignored.
func (b *Builder) WhereEquals(field string, value any) *Builder {
	if value == nil {
		return b
	}
	col := b.projection.Column(field)
	b.conditions = append(b.conditions, condition{
		clause: fmt.Sprintf("%s = $%%d", col),
		args:   []any{value},
	})
	return b
}

// WhereAfter adds a strictly-greater-than condition. Nil values are ignored.
func (b *Builder) WhereAfter(field string, value any) *Builder {
	if value == nil {
		return b
	}
	col := b.projection.Column(field)
	b.conditions = append(b.conditions, condition{
		clause: fmt.Sprintf("%s > $%%d", col),
		args:   []any{value},
	})
	return b
}

// WhereKeyset adds the keyset continuation predicate for a cursor position.
// sort and values must be aligned: values[i] is the last-seen value of
// sort[i]. The generated predicate selects rows strictly after the position
// in sort order, expanding the row tuple so mixed directions compare
// correctly:
//
//	(k1 < v1) OR (k1 = v1 AND k2 > v2) OR (k1 = v1 AND k2 = v2 AND k3 < v3)
//
// with < or > chosen per field direction. The final sort field is expected
// to be a unique tie-breaker so the position identifies exactly one row.
func (b *Builder) WhereKeyset(sort []SortField, values []any) *Builder {
	if len(sort) == 0 || len(sort) != len(values) {
		return b
	}

	branches := make([]string, 0, len(sort))
	args := make([]any, 0, len(sort)*2)

	for i, sf := range sort {
		parts := make([]string, 0, i+1)
		for j := 0; j < i; j++ {
			parts = append(parts, fmt.Sprintf("%s = $%%d", b.projection.Column(sort[j].Field)))
			args = append(args, values[j])
		}

		op := ">"
		if sf.Descending {
			op = "<"
		}
		parts = append(parts, fmt.Sprintf("%s %s $%%d", b.projection.Column(sf.Field), op))
		args = append(args, values[i])

		branches = append(branches, "("+strings.Join(parts, " AND ")+")")
	}

	b.conditions = append(b.conditions, condition{
		clause: "(" + strings.Join(branches, " OR ") + ")",
		args:   args,
	})
	return b
}

// OrderByFields sets the sort specification applied by BuildKeyset.
func (b *Builder) OrderByFields(sort []SortField) *Builder {
	b.sort = sort
	return b
}

// BuildKeyset returns a SELECT with the accumulated conditions, the configured
// ordering, and the given LIMIT. The limit is the caller's overfetch policy;
// the builder applies it verbatim.
func (b *Builder) BuildKeyset(limit int) (string, []any) {
	where, args := b.buildWhere()

	sql := fmt.Sprintf(
		"SELECT %s FROM %s%s%s LIMIT %d",
		b.projection.Columns(),
		b.projection.Table(),
		where,
		b.buildOrderBy(),
		limit,
	)

	return sql, args
}

// BuildSingle returns a SELECT query for a single record by ID.
func (b *Builder) BuildSingle(idField string, id any) (string, []any) {
	sql := fmt.Sprintf(
		"SELECT %s FROM %s WHERE %s = $1",
		b.projection.Columns(),
		b.projection.Table(),
		b.projection.Column(idField),
	)
	return sql, []any{id}
}

func (b *Builder) buildOrderBy() string {
	if len(b.sort) == 0 {
		return ""
	}

	clauses := make([]string, len(b.sort))
	for i, sf := range b.sort {
		dir := "ASC"
		if sf.Descending {
			dir = "DESC"
		}
		clauses[i] = fmt.Sprintf("%s %s", b.projection.Column(sf.Field), dir)
	}

	return " ORDER BY " + strings.Join(clauses, ", ")
}

func (b *Builder) buildWhere() (string, []any) {
	if len(b.conditions) == 0 {
		return "", nil
	}

	clauses := make([]string, 0, len(b.conditions))
	args := make([]any, 0)
	paramIdx := 1

	for _, cond := range b.conditions {
		clause := cond.clause
		for _, arg := range cond.args {
			clause = strings.Replace(clause, "$%d", fmt.Sprintf("$%d", paramIdx), 1)
			args = append(args, arg)
			paramIdx++
		}
		clauses = append(clauses, clause)
	}

	return " WHERE " + strings.Join(clauses, " AND "), args
}
