package redisfields

import (
	"reflect"
)

// FromStruct flattens a struct into a field map for HSET, keyed by the
// `redis` tag (or the field name). Nil pointers are omitted and non-nil
// pointers are dereferenced. Fields tagged `redis:"-"` are skipped.
func FromStruct(value any) map[string]any {
	v := reflect.ValueOf(value)
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return map[string]any{}
		}
		v = v.Elem()
	}

	fields := make(map[string]any)
	if v.Kind() != reflect.Struct {
		return fields
	}

	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}

		tag := sf.Tag.Get("redis")
		if tag == "-" {
			continue
		}
		if tag == "" {
			tag = sf.Name
		}

		field := v.Field(i)
		if field.Kind() == reflect.Ptr {
			if field.IsNil() {
				continue
			}
			field = field.Elem()
		}

		fields[tag] = field.Interface()
	}

	return fields
}
