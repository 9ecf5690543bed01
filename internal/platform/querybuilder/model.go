package querybuilder

import (
	"fmt"
	"reflect"
	"strings"
)

// InsertModel starts an insert from the struct's `db` tags. Columns the
// database fills itself are tagged `db:"id,readonly"` and skipped.
func InsertModel(table string, model any) (*InsertBuilder, error) {
	v := reflect.Indirect(reflect.ValueOf(model))
	if !v.IsValid() || v.Kind() != reflect.Struct {
		return nil, fmt.Errorf("insert model for %s must be a struct, got %T", table, model)
	}

	t := v.Type()
	var (
		columns []string
		values  []any
	)
	for i := range t.NumField() {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		name, opts, _ := strings.Cut(field.Tag.Get("db"), ",")
		name = strings.TrimSpace(name)
		if name == "" || name == "-" || strings.Contains(","+opts+",", ",readonly,") {
			continue
		}
		columns = append(columns, name)
		values = append(values, v.Field(i).Interface())
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("insert model %T has no db columns", model)
	}
	return InsertInto(table, columns, values), nil
}
