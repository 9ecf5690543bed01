package querybuilder

import (
	"fmt"
	"strconv"
	"strings"
)

// sqlWriter accumulates SQL text and its bound arguments. Placeholders are
// numbered ($1, $2, ...), which both lib/pq and go-sqlite3 accept.
type sqlWriter struct {
	strings.Builder
	args []any
}

func (w *sqlWriter) bind(value any) {
	w.args = append(w.args, value)
	w.WriteString("$")
	w.WriteString(strconv.Itoa(len(w.args)))
}

func (w *sqlWriter) list(prefix string, items []string) {
	if len(items) == 0 {
		return
	}
	w.WriteString(prefix)
	w.WriteString(strings.Join(items, ", "))
}

func (w *sqlWriter) where(conditions []Condition) {
	for i, c := range conditions {
		if i == 0 {
			w.WriteString(" WHERE ")
		} else {
			w.WriteString(" AND ")
		}
		c(w)
	}
}

// Condition renders one AND-ed predicate of a WHERE clause.
type Condition func(w *sqlWriter)

func Eq(column string, value any) Condition {
	return func(w *sqlWriter) {
		w.WriteString(column)
		w.WriteString(" = ")
		w.bind(value)
	}
}

type SelectBuilder struct {
	columns []string
	from    string
	joins   []string
	where   []Condition
	orderBy []string
	limit   int
}

func Select(columns ...string) *SelectBuilder {
	return &SelectBuilder{columns: columns}
}

func (b *SelectBuilder) From(table string) *SelectBuilder {
	b.from = table
	return b
}

// Join adds an inner join, e.g. Join("players w", "w.id = m.winner_id").
func (b *SelectBuilder) Join(table, on string) *SelectBuilder {
	b.joins = append(b.joins, "JOIN "+table+" ON "+on)
	return b
}

func (b *SelectBuilder) Where(conditions ...Condition) *SelectBuilder {
	b.where = append(b.where, conditions...)
	return b
}

func (b *SelectBuilder) OrderBy(terms ...string) *SelectBuilder {
	b.orderBy = append(b.orderBy, terms...)
	return b
}

// Limit caps the row count; zero or negative means no LIMIT clause.
func (b *SelectBuilder) Limit(limit int) *SelectBuilder {
	b.limit = limit
	return b
}

func (b *SelectBuilder) ToSQL() (string, []any, error) {
	if len(b.columns) == 0 || strings.TrimSpace(b.from) == "" {
		return "", nil, fmt.Errorf("select needs columns and a table")
	}

	var w sqlWriter
	w.list("SELECT ", b.columns)
	w.WriteString(" FROM ")
	w.WriteString(b.from)
	for _, j := range b.joins {
		w.WriteString(" ")
		w.WriteString(j)
	}
	w.where(b.where)
	w.list(" ORDER BY ", b.orderBy)
	if b.limit > 0 {
		w.WriteString(" LIMIT ")
		w.WriteString(strconv.Itoa(b.limit))
	}
	return w.String(), w.args, nil
}

// InsertBuilder writes a single-row insert.
type InsertBuilder struct {
	table      string
	columns    []string
	values     []any
	onConflict []string
	skipOnDup  bool
	returning  []string
}

func InsertInto(table string, columns []string, values []any) *InsertBuilder {
	return &InsertBuilder{table: table, columns: columns, values: values}
}

// OnConflictDoNothing skips the row when it violates the unique target. With
// Returning, a skipped row yields sql.ErrNoRows.
func (b *InsertBuilder) OnConflictDoNothing(target ...string) *InsertBuilder {
	b.onConflict = target
	b.skipOnDup = true
	return b
}

func (b *InsertBuilder) Returning(columns ...string) *InsertBuilder {
	b.returning = columns
	return b
}

func (b *InsertBuilder) ToSQL() (string, []any, error) {
	if strings.TrimSpace(b.table) == "" || len(b.columns) == 0 {
		return "", nil, fmt.Errorf("insert needs a table and columns")
	}
	if len(b.values) != len(b.columns) {
		return "", nil, fmt.Errorf("insert into %s has %d values for %d columns", b.table, len(b.values), len(b.columns))
	}

	var w sqlWriter
	w.WriteString("INSERT INTO ")
	w.WriteString(b.table)
	w.WriteString(" (")
	w.WriteString(strings.Join(b.columns, ", "))
	w.WriteString(") VALUES (")
	for i, v := range b.values {
		if i > 0 {
			w.WriteString(", ")
		}
		w.bind(v)
	}
	w.WriteString(")")
	if b.skipOnDup {
		w.WriteString(" ON CONFLICT")
		if len(b.onConflict) > 0 {
			w.WriteString(" (" + strings.Join(b.onConflict, ", ") + ")")
		}
		w.WriteString(" DO NOTHING")
	}
	w.list(" RETURNING ", b.returning)
	return w.String(), w.args, nil
}

type UpdateBuilder struct {
	table     string
	sets      []Condition
	where     []Condition
	returning []string
}

func Update(table string) *UpdateBuilder {
	return &UpdateBuilder{table: table}
}

func (b *UpdateBuilder) Set(column string, value any) *UpdateBuilder {
	b.sets = append(b.sets, Eq(column, value))
	return b
}

// Increment adds one to a counter column in SQL, so concurrent writers never
// overwrite each other.
func (b *UpdateBuilder) Increment(column string) *UpdateBuilder {
	b.sets = append(b.sets, func(w *sqlWriter) {
		w.WriteString(column + " = " + column + " + 1")
	})
	return b
}

func (b *UpdateBuilder) Where(conditions ...Condition) *UpdateBuilder {
	b.where = append(b.where, conditions...)
	return b
}

func (b *UpdateBuilder) Returning(columns ...string) *UpdateBuilder {
	b.returning = columns
	return b
}

func (b *UpdateBuilder) ToSQL() (string, []any, error) {
	if strings.TrimSpace(b.table) == "" || len(b.sets) == 0 {
		return "", nil, fmt.Errorf("update needs a table and at least one assignment")
	}
	if len(b.where) == 0 {
		return "", nil, fmt.Errorf("update of %s without where clause is not allowed", b.table)
	}

	var w sqlWriter
	w.WriteString("UPDATE ")
	w.WriteString(b.table)
	for i, set := range b.sets {
		if i == 0 {
			w.WriteString(" SET ")
		} else {
			w.WriteString(", ")
		}
		set(&w)
	}
	w.where(b.where)
	w.list(" RETURNING ", b.returning)
	return w.String(), w.args, nil
}
