package querybuilder

import (
	"fmt"
	"reflect"
	"slices"
	"strings"
)

// InsertModel builds an INSERT from the exported `db`-tagged fields of model.
func InsertModel(table string, model any, suffix string) (string, []any, error) {
	cols, vals, err := ModelColumns(model)
	if err != nil {
		return "", nil, err
	}
	return InsertInto(table).
		Columns(cols...).
		Values(vals...).
		Suffix(suffix).
		ToSQL()
}

// UpsertModel builds an INSERT ... ON CONFLICT (conflict) DO UPDATE that overwrites
// every model column except the conflict target and the columns listed in keep.
func UpsertModel(table string, model any, conflict []string, keep ...string) (string, []any, error) {
	if len(conflict) == 0 {
		return "", nil, fmt.Errorf("upsert conflict target is required")
	}
	cols, vals, err := ModelColumns(model)
	if err != nil {
		return "", nil, err
	}

	sets := make([]string, 0, len(cols))
	for _, col := range cols {
		if slices.Contains(conflict, col) || slices.Contains(keep, col) {
			continue
		}
		sets = append(sets, col+" = EXCLUDED."+col)
	}

	suffix := "ON CONFLICT (" + strings.Join(conflict, ", ") + ") DO NOTHING"
	if len(sets) > 0 {
		suffix = "ON CONFLICT (" + strings.Join(conflict, ", ") + ") DO UPDATE SET " + strings.Join(sets, ", ")
	}

	return InsertInto(table).
		Columns(cols...).
		Values(vals...).
		Suffix(suffix).
		ToSQL()
}

// ModelColumns returns column names and values for the `db` tags of a struct.
func ModelColumns(model any) ([]string, []any, error) {
	value := reflect.ValueOf(model)
	for value.Kind() == reflect.Pointer {
		if value.IsNil() {
			return nil, nil, fmt.Errorf("model cannot be nil")
		}
		value = value.Elem()
	}
	if value.Kind() != reflect.Struct {
		return nil, nil, fmt.Errorf("model must be struct, got %s", value.Kind())
	}

	typ := value.Type()
	cols := make([]string, 0, typ.NumField())
	vals := make([]any, 0, typ.NumField())
	for i := range typ.NumField() {
		field := typ.Field(i)
		if !field.IsExported() {
			continue
		}
		col, _, _ := strings.Cut(field.Tag.Get("db"), ",")
		col = strings.TrimSpace(col)
		if col == "" || col == "-" {
			continue
		}
		cols = append(cols, col)
		vals = append(vals, value.Field(i).Interface())
	}

	if len(cols) == 0 {
		return nil, nil, fmt.Errorf("model has no db columns")
	}
	return cols, vals, nil
}
