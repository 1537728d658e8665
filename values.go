package h5diff

import (
	"reflect"

	"github.com/google/go-cmp/cmp"
	"github.com/qri-io/h5diff/container"
)

// arrayDiff summarizes an element-wise comparison of two payloads
type arrayDiff struct {
	// number of positions that differ
	count int
	// flat index of the first differing position & the values found there
	first int
	a, b  interface{}
}

// compareArrays subtracts b from a element by element. Any position whose
// difference isn't exactly zero counts, there is no tolerance. Arrays
// must have equal shapes
func compareArrays(a, b *container.Array) arrayDiff {
	res := arrayDiff{first: -1}
	va, vb := sliceValue(a), sliceValue(b)

	n := va.Len()
	if vb.Len() > n {
		n = vb.Len()
	}
	for i := 0; i < n; i++ {
		if i >= va.Len() || i >= vb.Len() {
			res.count++
			continue
		}
		x, y := va.Index(i), vb.Index(i)
		if elementsDiffer(x, y) {
			if res.count == 0 {
				res.first = i
				res.a, res.b = x.Interface(), y.Interface()
			}
			res.count++
		}
	}
	return res
}

func sliceValue(a *container.Array) reflect.Value {
	if a == nil || a.Data == nil {
		return reflect.ValueOf([]interface{}{})
	}
	rv := reflect.ValueOf(a.Data)
	if rv.Kind() != reflect.Slice {
		// scalar payload
		return reflect.ValueOf([]interface{}{a.Data})
	}
	return rv
}

type elemClass int

const (
	classOther elemClass = iota
	classInt
	classUint
	classFloat
	classString
	classBool
)

func classify(v reflect.Value) elemClass {
	if v.Kind() == reflect.Interface {
		v = v.Elem()
	}
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return classInt
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return classUint
	case reflect.Float32, reflect.Float64:
		return classFloat
	case reflect.String:
		return classString
	case reflect.Bool:
		return classBool
	}
	return classOther
}

func elementsDiffer(x, y reflect.Value) bool {
	if x.Kind() == reflect.Interface {
		x = x.Elem()
	}
	if y.Kind() == reflect.Interface {
		y = y.Elem()
	}
	cx, cy := classify(x), classify(y)

	switch {
	case cx == classFloat || cy == classFloat:
		fx, okx := asFloat(x, cx)
		fy, oky := asFloat(y, cy)
		if !okx || !oky {
			return true
		}
		// NaN & inf-inf never subtract to zero
		return fx-fy != 0
	case cx == classInt && cy == classInt:
		return x.Int() != y.Int()
	case cx == classUint && cy == classUint:
		return x.Uint() != y.Uint()
	case cx == classInt && cy == classUint:
		return x.Int() < 0 || uint64(x.Int()) != y.Uint()
	case cx == classUint && cy == classInt:
		return y.Int() < 0 || uint64(y.Int()) != x.Uint()
	case cx == classString && cy == classString:
		return x.String() != y.String()
	case cx == classBool && cy == classBool:
		return x.Bool() != y.Bool()
	case cx == classOther && cy == classOther && x.IsValid() && y.IsValid():
		return !attrValuesEqual(x.Interface(), y.Interface())
	}
	return true
}

func asFloat(v reflect.Value, c elemClass) (float64, bool) {
	switch c {
	case classFloat:
		return v.Float(), true
	case classInt:
		return float64(v.Int()), true
	case classUint:
		return float64(v.Uint()), true
	}
	return 0, false
}

// attrValuesEqual compares two attribute values of the same type tag
func attrValuesEqual(a, b interface{}) bool {
	return cmp.Equal(a, b, exportAll)
}

// backends may hand back struct values with unexported fields, eg. for
// compound types
var exportAll = cmp.Exporter(func(reflect.Type) bool { return true })
