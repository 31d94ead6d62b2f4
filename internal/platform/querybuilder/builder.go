package querybuilder

import (
	"fmt"
	"strconv"
	"strings"
)

// argWriter accumulates positional arguments and renders postgres placeholders.
type argWriter struct {
	buf  strings.Builder
	args []any
}

func (w *argWriter) bind(value any) {
	w.args = append(w.args, value)
	w.buf.WriteString("$")
	w.buf.WriteString(strconv.Itoa(len(w.args)))
}

// expr copies raw SQL, replacing each '?' with the next bound argument.
// Surplus '?' are left untouched.
func (w *argWriter) expr(sql string, exprArgs []any) {
	next := 0
	for i := 0; i < len(sql); i++ {
		if sql[i] == '?' && next < len(exprArgs) {
			w.bind(exprArgs[next])
			next++
			continue
		}
		w.buf.WriteByte(sql[i])
	}
}

func (w *argWriter) where(conditions []Condition) {
	if len(conditions) == 0 {
		return
	}
	w.buf.WriteString(" WHERE ")
	for i, c := range conditions {
		if i > 0 {
			w.buf.WriteString(" AND ")
		}
		c.writeSQL(w)
	}
}

func (w *argWriter) list(keyword string, parts []string) {
	if len(parts) == 0 {
		return
	}
	w.buf.WriteString(" ")
	w.buf.WriteString(keyword)
	w.buf.WriteString(" ")
	w.buf.WriteString(strings.Join(parts, ", "))
}

func (w *argWriter) suffix(sql string) {
	if sql == "" {
		return
	}
	w.buf.WriteString(" ")
	w.buf.WriteString(sql)
}

type Condition interface {
	writeSQL(w *argWriter)
}

type compareCondition struct {
	column string
	op     string
	value  any
}

func (c compareCondition) writeSQL(w *argWriter) {
	w.buf.WriteString(c.column)
	w.buf.WriteString(" ")
	w.buf.WriteString(c.op)
	w.buf.WriteString(" ")
	w.bind(c.value)
}

func Eq(column string, value any) Condition {
	return compareCondition{column: column, op: "=", value: value}
}

func NotEq(column string, value any) Condition {
	return compareCondition{column: column, op: "<>", value: value}
}

func Gte(column string, value any) Condition {
	return compareCondition{column: column, op: ">=", value: value}
}

func Lte(column string, value any) Condition {
	return compareCondition{column: column, op: "<=", value: value}
}

type nullCondition struct {
	column string
}

func IsNull(column string) Condition {
	return nullCondition{column: column}
}

func (c nullCondition) writeSQL(w *argWriter) {
	w.buf.WriteString(c.column)
	w.buf.WriteString(" IS NULL")
}

type SelectBuilder struct {
	distinctOn []string
	columns    []string
	table      string
	where      []Condition
	orderBy    []string
	limit      int
	suffix     string
}

func Select(columns ...string) *SelectBuilder {
	return &SelectBuilder{columns: append([]string(nil), columns...)}
}

// DistinctOn renders SELECT DISTINCT ON (...); ORDER BY must lead with the same expressions.
func (b *SelectBuilder) DistinctOn(exprs ...string) *SelectBuilder {
	b.distinctOn = append(b.distinctOn, exprs...)
	return b
}

func (b *SelectBuilder) From(table string) *SelectBuilder {
	b.table = table
	return b
}

func (b *SelectBuilder) Where(conditions ...Condition) *SelectBuilder {
	b.where = append(b.where, conditions...)
	return b
}

func (b *SelectBuilder) OrderBy(parts ...string) *SelectBuilder {
	b.orderBy = append(b.orderBy, parts...)
	return b
}

func (b *SelectBuilder) Limit(limit int) *SelectBuilder {
	b.limit = limit
	return b
}

// Suffix appends raw SQL such as FOR UPDATE.
func (b *SelectBuilder) Suffix(sql string) *SelectBuilder {
	b.suffix = strings.TrimSpace(sql)
	return b
}

func (b *SelectBuilder) ToSQL() (string, []any, error) {
	if len(b.columns) == 0 {
		return "", nil, fmt.Errorf("select columns are required")
	}
	if strings.TrimSpace(b.table) == "" {
		return "", nil, fmt.Errorf("select table is required")
	}

	w := &argWriter{}
	w.buf.WriteString("SELECT ")
	if len(b.distinctOn) > 0 {
		w.buf.WriteString("DISTINCT ON (")
		w.buf.WriteString(strings.Join(b.distinctOn, ", "))
		w.buf.WriteString(") ")
	}
	w.buf.WriteString(strings.Join(b.columns, ", "))
	w.buf.WriteString(" FROM ")
	w.buf.WriteString(b.table)
	w.where(b.where)
	w.list("ORDER BY", b.orderBy)
	if b.limit > 0 {
		w.buf.WriteString(" LIMIT ")
		w.buf.WriteString(strconv.Itoa(b.limit))
	}
	w.suffix(b.suffix)

	return w.buf.String(), w.args, nil
}

type InsertBuilder struct {
	table   string
	columns []string
	rows    [][]any
	suffix  string
}

func InsertInto(table string) *InsertBuilder {
	return &InsertBuilder{table: table}
}

func (b *InsertBuilder) Columns(columns ...string) *InsertBuilder {
	b.columns = append([]string(nil), columns...)
	return b
}

func (b *InsertBuilder) Values(values ...any) *InsertBuilder {
	b.rows = append(b.rows, append([]any(nil), values...))
	return b
}

func (b *InsertBuilder) Suffix(sql string) *InsertBuilder {
	b.suffix = strings.TrimSpace(sql)
	return b
}

func (b *InsertBuilder) ToSQL() (string, []any, error) {
	if strings.TrimSpace(b.table) == "" {
		return "", nil, fmt.Errorf("insert table is required")
	}
	if len(b.columns) == 0 {
		return "", nil, fmt.Errorf("insert columns are required")
	}
	if len(b.rows) == 0 {
		return "", nil, fmt.Errorf("insert values are required")
	}

	w := &argWriter{args: make([]any, 0, len(b.rows)*len(b.columns))}
	w.buf.WriteString("INSERT INTO ")
	w.buf.WriteString(b.table)
	w.buf.WriteString(" (")
	w.buf.WriteString(strings.Join(b.columns, ", "))
	w.buf.WriteString(") VALUES ")
	for rowIdx, row := range b.rows {
		if len(row) != len(b.columns) {
			return "", nil, fmt.Errorf("insert row %d has %d values, expected %d", rowIdx, len(row), len(b.columns))
		}
		if rowIdx > 0 {
			w.buf.WriteString(", ")
		}
		w.buf.WriteString("(")
		for colIdx, value := range row {
			if colIdx > 0 {
				w.buf.WriteString(", ")
			}
			w.bind(value)
		}
		w.buf.WriteString(")")
	}
	w.suffix(b.suffix)

	return w.buf.String(), w.args, nil
}

// rawSQL is a SET right-hand side; '?' marks are bound to args in order.
type rawSQL struct {
	sql  string
	args []any
}

type setClause struct {
	column string
	value  any
	raw    *rawSQL
}

type UpdateBuilder struct {
	table string
	sets  []setClause
	where []Condition
}

func Update(table string) *UpdateBuilder {
	return &UpdateBuilder{table: table}
}

func (b *UpdateBuilder) Set(column string, value any) *UpdateBuilder {
	b.sets = append(b.sets, setClause{column: column, value: value})
	return b
}

func (b *UpdateBuilder) SetExpr(column, sql string, args ...any) *UpdateBuilder {
	b.sets = append(b.sets, setClause{column: column, raw: &rawSQL{sql: sql, args: args}})
	return b
}

func (b *UpdateBuilder) Where(conditions ...Condition) *UpdateBuilder {
	b.where = append(b.where, conditions...)
	return b
}

func (b *UpdateBuilder) ToSQL() (string, []any, error) {
	if strings.TrimSpace(b.table) == "" {
		return "", nil, fmt.Errorf("update table is required")
	}
	if len(b.sets) == 0 {
		return "", nil, fmt.Errorf("update sets are required")
	}

	w := &argWriter{}
	w.buf.WriteString("UPDATE ")
	w.buf.WriteString(b.table)
	w.buf.WriteString(" SET ")
	for i, s := range b.sets {
		if i > 0 {
			w.buf.WriteString(", ")
		}
		w.buf.WriteString(s.column)
		w.buf.WriteString(" = ")
		if s.raw != nil {
			w.expr(s.raw.sql, s.raw.args)
			continue
		}
		w.bind(s.value)
	}
	w.where(b.where)

	return w.buf.String(), w.args, nil
}

type DeleteBuilder struct {
	table string
	where []Condition
}

func DeleteFrom(table string) *DeleteBuilder {
	return &DeleteBuilder{table: table}
}

func (b *DeleteBuilder) Where(conditions ...Condition) *DeleteBuilder {
	b.where = append(b.where, conditions...)
	return b
}

func (b *DeleteBuilder) ToSQL() (string, []any, error) {
	if strings.TrimSpace(b.table) == "" {
		return "", nil, fmt.Errorf("delete table is required")
	}
	// Unbounded deletes are never intended here.
	if len(b.where) == 0 {
		return "", nil, fmt.Errorf("delete requires at least one condition")
	}

	w := &argWriter{}
	w.buf.WriteString("DELETE FROM ")
	w.buf.WriteString(b.table)
	w.where(b.where)

	return w.buf.String(), w.args, nil
}
