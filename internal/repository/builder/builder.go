package builder

import (
	"fmt"
	"strings"
)

// SQLBuilder helps construct PostgreSQL queries with ? placeholders rewritten to $n.
type SQLBuilder struct {
	table    string
	columns  []string
	values   []interface{}
	where    []string
	args     []interface{}
	conflict *onConflict
	isInsert bool
	isSelect bool
}

// onConflict turns an INSERT into an upsert.
type onConflict struct {
	target  []string
	updates []string
}

// NewSQLBuilder creates a new instance of SQLBuilder.
func NewSQLBuilder() *SQLBuilder {
	return &SQLBuilder{}
}

// Select specifies the columns to retrieve.
func (b *SQLBuilder) Select(cols ...string) *SQLBuilder {
	b.isSelect = true
	b.columns = cols
	return b
}

// Insert specifies the table and columns for insertion.
func (b *SQLBuilder) Insert(table string, cols ...string) *SQLBuilder {
	b.isInsert = true
	b.table = table
	b.columns = cols
	return b
}

// From specifies the table to select from.
func (b *SQLBuilder) From(table string) *SQLBuilder {
	b.table = table
	return b
}

// Values specifies the values for insertion.
func (b *SQLBuilder) Values(vals ...interface{}) *SQLBuilder {
	b.values = vals
	b.args = append(b.args, vals...)
	return b
}

// OnConflict makes an INSERT overwrite updateCols from the proposed row when a
// row with the same target columns already exists.
func (b *SQLBuilder) OnConflict(target []string, updateCols ...string) *SQLBuilder {
	b.conflict = &onConflict{target: target, updates: updateCols}
	return b
}

// Where adds a condition to a SELECT. Conditions are combined with AND.
func (b *SQLBuilder) Where(condition string, args ...interface{}) *SQLBuilder {
	b.where = append(b.where, condition)
	b.args = append(b.args, args...)
	return b
}

// Build constructs the final SQL string and arguments.
func (b *SQLBuilder) Build() (string, []interface{}) {
	var sb strings.Builder

	switch {
	case b.isSelect:
		sb.WriteString("SELECT ")
		sb.WriteString(strings.Join(b.columns, ", "))
		sb.WriteString(" FROM ")
		sb.WriteString(b.table)
	case b.isInsert:
		sb.WriteString("INSERT INTO ")
		sb.WriteString(b.table)
		sb.WriteString(" (")
		sb.WriteString(strings.Join(b.columns, ", "))
		sb.WriteString(") VALUES (")
		placeholders := make([]string, len(b.values))
		for i := range b.values {
			placeholders[i] = fmt.Sprintf("$%d", i+1)
		}
		sb.WriteString(strings.Join(placeholders, ", "))
		sb.WriteString(")")
		if b.conflict != nil {
			sb.WriteString(" ON CONFLICT (")
			sb.WriteString(strings.Join(b.conflict.target, ", "))
			sb.WriteString(")")
			if len(b.conflict.updates) == 0 {
				sb.WriteString(" DO NOTHING")
			} else {
				sets := make([]string, len(b.conflict.updates))
				for i, col := range b.conflict.updates {
					sets[i] = fmt.Sprintf("%s = EXCLUDED.%s", col, col)
				}
				sb.WriteString(" DO UPDATE SET ")
				sb.WriteString(strings.Join(sets, ", "))
			}
		}
		return sb.String(), b.args
	}

	if len(b.where) > 0 {
		argIndex := 1
		sb.WriteString(" WHERE ")
		parts := strings.Split(strings.Join(b.where, " AND "), "?")
		for i, part := range parts {
			sb.WriteString(part)
			if i < len(parts)-1 {
				sb.WriteString(fmt.Sprintf("$%d", argIndex))
				argIndex++
			}
		}
	}

	return sb.String(), b.args
}
