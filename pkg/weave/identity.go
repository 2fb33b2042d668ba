package weave

import (
	"fmt"
	"reflect"
)

// identical compares prop values by identity. Comparable values use ==;
// maps and slices compare by backing storage. Functions are never
// identical, since Go cannot tell two closures over different variables
// apart.
func identical(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}
	switch va.Kind() {
	case reflect.Func:
		return false
	case reflect.Map:
		return va.Pointer() == vb.Pointer()
	case reflect.Slice:
		return va.Pointer() == vb.Pointer() && va.Len() == vb.Len()
	}
	if va.Comparable() && vb.Comparable() {
		return a == b
	}
	return false
}

func isComparable(v any) bool {
	return v == nil || reflect.ValueOf(v).Comparable()
}

func propsDiffer(a, b Props) bool {
	if len(a) != len(b) {
		return true
	}
	for k, v := range a {
		w, ok := b[k]
		if !ok || !identical(v, w) {
			return true
		}
	}
	return false
}

func childrenDiffer(a, b []any) bool {
	if len(a) != len(b) {
		return true
	}
	for i := range a {
		if !identical(a[i], b[i]) {
			return true
		}
	}
	return false
}

func typeName(v any) string {
	return fmt.Sprintf("%T", v)
}
