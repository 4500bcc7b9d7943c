// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package log

import (
	"log/slog"
	"reflect"
	"sort"
	"time"

	"github.com/iancoleman/strcase"
)

// Reflect converts the exported fields of a struct (or pointer to struct) into
// snake_case slog attributes. Zero values are omitted to keep the log clean;
// nested structs and string-keyed maps become groups.
func Reflect(v any) []slog.Attr {
	val := realValue(reflect.ValueOf(v))
	if val.Kind() != reflect.Struct {
		return nil
	}
	return reflectAttrs(val)
}

func reflectAttrs(val reflect.Value) []slog.Attr {
	typ := val.Type()
	var attrs []slog.Attr
	for i := range typ.NumField() {
		f := typ.Field(i)
		if !f.IsExported() {
			continue
		}

		attrs = append(attrs, reflectAttr(
			strcase.ToSnake(f.Name),
			realValue(val.Field(i)),
		)...)
	}
	return attrs
}

func reflectAttr(name string, val reflect.Value) []slog.Attr {
	if missingValue(val) {
		return nil
	}

	switch v := val.Interface().(type) {
	case time.Time:
		return []slog.Attr{slog.Time(name, v)}
	case time.Duration:
		return []slog.Attr{slog.Duration(name, v)}
	case []byte:
		return []slog.Attr{slog.String(name, string(v))}
	}

	switch val.Kind() {
	case reflect.Struct:
		return group(name, reflectAttrs(val))

	case reflect.Map:
		if val.Type().Key().Kind() != reflect.String {
			break
		}
		keys := val.MapKeys()
		sort.Slice(keys, func(i, j int) bool {
			return keys[i].String() < keys[j].String()
		})
		var as []slog.Attr
		for _, k := range keys {
			as = append(as, reflectAttr(
				strcase.ToSnake(k.String()),
				realValue(val.MapIndex(k)),
			)...)
		}
		return group(name, as)
	}

	return []slog.Attr{slog.Any(name, val.Interface())}
}

func group(name string, as []slog.Attr) []slog.Attr {
	if len(as) == 0 {
		return nil
	}
	cpy := make([]any, len(as))
	for i, a := range as {
		cpy[i] = a
	}
	return []slog.Attr{slog.Group(name, cpy...)}
}

func realValue(val reflect.Value) reflect.Value {
	for val.Kind() == reflect.Pointer || val.Kind() == reflect.Interface {
		val = val.Elem()
	}
	return val
}

func missingValue(val reflect.Value) bool {
	return val.Kind() == reflect.Invalid || val.IsZero()
}
