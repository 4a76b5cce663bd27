package ingest

import (
	"encoding/json"
	"reflect"

	"github.com/DeusData/codebase-graph/internal/graph"
)

// Flatten converts node meta into property values a graph store accepts:
// nil values are dropped, maps and arrays holding maps or arrays become JSON
// strings, and scalars and scalar arrays pass through.
func Flatten(meta map[string]any) map[string]any {
	out := make(map[string]any, len(meta))
	for k, v := range meta {
		if v == nil {
			continue
		}
		out[k] = flattenValue(v)
	}
	return out
}

func flattenValue(v any) any {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map, reflect.Struct:
		return toJSON(v)
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() == reflect.Uint8 {
			return v
		}
		for i := 0; i < rv.Len(); i++ {
			if nested(rv.Index(i)) {
				return toJSON(v)
			}
		}
		return v
	case reflect.Pointer:
		if rv.IsNil() {
			return nil
		}
		return flattenValue(rv.Elem().Interface())
	}
	return v
}

func nested(v reflect.Value) bool {
	for v.Kind() == reflect.Interface || v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return false
		}
		v = v.Elem()
	}
	switch v.Kind() {
	case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct:
		return true
	}
	return false
}

func toJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

// NodeProps returns the stored properties of n: the flattened meta overlaid
// with name, filePath, parentId and subtype. Empty values are omitted.
func NodeProps(n graph.Node) map[string]any {
	props := Flatten(n.Meta)
	props["name"] = n.Name
	for k, v := range map[string]string{
		"filePath": n.FilePath,
		"parentId": n.ParentID,
		"subtype":  n.Subtype,
	} {
		if v != "" {
			props[k] = v
		} else {
			delete(props, k)
		}
	}
	return props
}
