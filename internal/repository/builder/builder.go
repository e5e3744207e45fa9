package builder

import (
	"fmt"
	"strconv"
	"strings"
)

type statement int

const (
	stmtSelect statement = iota
	stmtInsert
	stmtDelete
)

// SQLBuilder constructs PostgreSQL statements with numbered placeholders.
// Conditions are written with "?" and numbered in argument order by Build.
type SQLBuilder struct {
	stmt       statement
	table      string
	columns    []string
	rows       [][]interface{}
	joins      []string
	where      []string
	args       []interface{}
	orderBy    []string
	limit      int
	offset     int
	onConflict string
}

func NewSQLBuilder() *SQLBuilder {
	return &SQLBuilder{}
}

// Select specifies the columns to retrieve.
func (b *SQLBuilder) Select(cols ...string) *SQLBuilder {
	b.stmt = stmtSelect
	b.columns = cols
	return b
}

// Insert specifies the table and columns for insertion.
func (b *SQLBuilder) Insert(table string, cols ...string) *SQLBuilder {
	b.stmt = stmtInsert
	b.table = table
	b.columns = cols
	return b
}

func (b *SQLBuilder) Delete(table string) *SQLBuilder {
	b.stmt = stmtDelete
	b.table = table
	return b
}

func (b *SQLBuilder) From(table string) *SQLBuilder {
	b.table = table
	return b
}

// Values adds one row of values for insertion. Calling it again inserts
// several rows in one statement.
func (b *SQLBuilder) Values(vals ...interface{}) *SQLBuilder {
	b.rows = append(b.rows, vals)
	return b
}

// OnConflictDoNothing skips rows that violate a unique constraint on the given columns.
func (b *SQLBuilder) OnConflictDoNothing(cols ...string) *SQLBuilder {
	b.onConflict = " ON CONFLICT"
	if len(cols) > 0 {
		b.onConflict += " (" + strings.Join(cols, ", ") + ")"
	}
	b.onConflict += " DO NOTHING"
	return b
}

// Where adds a condition; conditions are joined with AND.
func (b *SQLBuilder) Where(condition string, args ...interface{}) *SQLBuilder {
	b.where = append(b.where, condition)
	b.args = append(b.args, args...)
	return b
}

// Join adds a JOIN clause, e.g. Join("INNER", "dept_emp de", "e.emp_no = de.emp_no").
func (b *SQLBuilder) Join(joinType, table, on string) *SQLBuilder {
	b.joins = append(b.joins, fmt.Sprintf("%s JOIN %s ON %s", joinType, table, on))
	return b
}

func (b *SQLBuilder) OrderBy(order string) *SQLBuilder {
	b.orderBy = append(b.orderBy, order)
	return b
}

func (b *SQLBuilder) Limit(limit int) *SQLBuilder {
	b.limit = limit
	return b
}

func (b *SQLBuilder) Offset(offset int) *SQLBuilder {
	b.offset = offset
	return b
}

// Build returns the statement and its arguments.
func (b *SQLBuilder) Build() (string, []interface{}) {
	if b.stmt == stmtInsert {
		return b.buildInsert()
	}

	var sb strings.Builder
	switch b.stmt {
	case stmtSelect:
		sb.WriteString("SELECT " + strings.Join(b.columns, ", ") + " FROM " + b.table)
		for _, join := range b.joins {
			sb.WriteString(" " + join)
		}
	case stmtDelete:
		sb.WriteString("DELETE FROM " + b.table)
	}

	if len(b.where) > 0 {
		n := 0
		sb.WriteString(" WHERE " + number(strings.Join(b.where, " AND "), &n))
	}
	if len(b.orderBy) > 0 {
		sb.WriteString(" ORDER BY " + strings.Join(b.orderBy, ", "))
	}
	if b.limit > 0 {
		sb.WriteString(" LIMIT " + strconv.Itoa(b.limit))
	}
	if b.offset > 0 {
		sb.WriteString(" OFFSET " + strconv.Itoa(b.offset))
	}
	return sb.String(), b.args
}

func (b *SQLBuilder) buildInsert() (string, []interface{}) {
	var (
		args   []interface{}
		tuples = make([]string, len(b.rows))
		n      int
	)
	for r, row := range b.rows {
		placeholders := make([]string, len(row))
		for i := range row {
			n++
			placeholders[i] = "$" + strconv.Itoa(n)
		}
		tuples[r] = "(" + strings.Join(placeholders, ", ") + ")"
		args = append(args, row...)
	}

	query := "INSERT INTO " + b.table + " (" + strings.Join(b.columns, ", ") + ") VALUES " +
		strings.Join(tuples, ", ") + b.onConflict
	return query, args
}

// number replaces each "?" in s with $n, continuing from *n.
func number(s string, n *int) string {
	parts := strings.Split(s, "?")
	var sb strings.Builder
	for i, part := range parts {
		sb.WriteString(part)
		if i < len(parts)-1 {
			*n++
			sb.WriteString("$" + strconv.Itoa(*n))
		}
	}
	return sb.String()
}
