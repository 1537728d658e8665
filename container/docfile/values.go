package docfile

import (
	"fmt"
	"math"
	"reflect"
	"strconv"

	"github.com/pkg/errors"
	"github.com/qri-io/h5diff/container"
)

// number is satisfied by the json.Number types of both encoding/json and
// go-json, which is what decoding with UseNumber produces
type number interface {
	Int64() (int64, error)
	Float64() (float64, error)
	String() string
}

// flatten walks nested lists, returning the leaves in row-major order and
// the extents of the nesting. ragged nesting is an error
func flatten(v interface{}) (leaves []interface{}, shape []int, err error) {
	list, ok := v.([]interface{})
	if !ok {
		return []interface{}{v}, []int{}, nil
	}
	if len(list) == 0 {
		return []interface{}{}, []int{0}, nil
	}

	var inner []int
	for i, el := range list {
		l, s, err := flatten(el)
		if err != nil {
			return nil, nil, err
		}
		if i == 0 {
			inner = s
		} else if !container.ShapeEqual(inner, s) {
			return nil, nil, fmt.Errorf("ragged data: element %d has shape %s, expected %s", i, container.ShapeString(s), container.ShapeString(inner))
		}
		leaves = append(leaves, l...)
	}
	return leaves, append([]int{len(list)}, inner...), nil
}

// collectLeaves gathers every scalar of a possibly nested list, without
// requiring the nesting to be rectangular
func collectLeaves(v interface{}, leaves []interface{}) []interface{} {
	if list, ok := v.([]interface{}); ok {
		for _, el := range list {
			leaves = collectLeaves(el, leaves)
		}
		return leaves
	}
	return append(leaves, v)
}

// inferTag picks the narrowest tag that can hold every leaf. integers
// mixed with floats promote to float64, empty input defaults to float64
func inferTag(leaves []interface{}) (container.TypeTag, error) {
	var tag container.TypeTag
	for _, l := range leaves {
		var t container.TypeTag
		switch x := l.(type) {
		case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
			t = container.Int64
		case float32, float64:
			t = container.Float64
		case number:
			t = container.Int64
			if _, err := strconv.ParseInt(x.String(), 10, 64); err != nil {
				t = container.Float64
			}
		case string:
			t = container.String
		case bool:
			t = container.Bool
		case nil:
			return "", fmt.Errorf("null values are not allowed in typed data")
		default:
			return "", fmt.Errorf("unsupported value %v (%T)", l, l)
		}

		switch {
		case tag == "" || tag == t:
			tag = t
		case tag.IsNumeric() && t.IsNumeric():
			tag = container.Float64
		default:
			return "", fmt.Errorf("mixed value types %s and %s", tag, t)
		}
	}
	if tag == "" {
		tag = container.Float64
	}
	return tag, nil
}

// castSlice converts leaves into a typed slice of element type tag
func castSlice(tag container.TypeTag, leaves []interface{}) (interface{}, error) {
	st, ok := container.SliceType(tag)
	if !ok {
		return nil, fmt.Errorf("unrecognized dtype %q", tag)
	}
	out := reflect.MakeSlice(st, len(leaves), len(leaves))
	for i, l := range leaves {
		if err := setScalar(out.Index(i), tag, l); err != nil {
			return nil, errors.Wrapf(err, "element %d", i)
		}
	}
	return out.Interface(), nil
}

// castScalar converts a single decoded value into the go type for tag
func castScalar(tag container.TypeTag, v interface{}) (interface{}, error) {
	st, ok := container.SliceType(tag)
	if !ok {
		return nil, fmt.Errorf("unrecognized dtype %q", tag)
	}
	rv := reflect.New(st.Elem()).Elem()
	if err := setScalar(rv, tag, v); err != nil {
		return nil, err
	}
	return rv.Interface(), nil
}

func setScalar(dst reflect.Value, tag container.TypeTag, v interface{}) error {
	switch {
	case tag.IsUnsigned():
		u, err := toUint(v)
		if err != nil {
			return err
		}
		if dst.OverflowUint(u) {
			return fmt.Errorf("%d overflows %s", u, tag)
		}
		dst.SetUint(u)
	case tag.IsInteger():
		i, err := toInt(v)
		if err != nil {
			return err
		}
		if dst.OverflowInt(i) {
			return fmt.Errorf("%d overflows %s", i, tag)
		}
		dst.SetInt(i)
	case tag.IsFloat():
		f, err := toFloat(v)
		if err != nil {
			return err
		}
		if tag == container.Float32 && !math.IsInf(f, 0) && !math.IsNaN(f) && dst.OverflowFloat(f) {
			return fmt.Errorf("%g overflows %s", f, tag)
		}
		dst.SetFloat(f)
	case tag == container.String:
		s, ok := v.(string)
		if !ok {
			return fmt.Errorf("expected string, got %v (%T)", v, v)
		}
		dst.SetString(s)
	case tag == container.Bool:
		b, ok := v.(bool)
		if !ok {
			return fmt.Errorf("expected bool, got %v (%T)", v, v)
		}
		dst.SetBool(b)
	default:
		return fmt.Errorf("unrecognized dtype %q", tag)
	}
	return nil
}

func toInt(v interface{}) (int64, error) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if rv.Uint() > math.MaxInt64 {
			return 0, fmt.Errorf("%d overflows int64", rv.Uint())
		}
		return int64(rv.Uint()), nil
	}
	if n, ok := v.(number); ok {
		return strconv.ParseInt(n.String(), 10, 64)
	}
	return 0, fmt.Errorf("expected integer, got %v (%T)", v, v)
}

func toUint(v interface{}) (uint64, error) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if rv.Int() < 0 {
			return 0, fmt.Errorf("%d is negative", rv.Int())
		}
		return uint64(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint(), nil
	}
	if n, ok := v.(number); ok {
		return strconv.ParseUint(n.String(), 10, 64)
	}
	return 0, fmt.Errorf("expected unsigned integer, got %v (%T)", v, v)
}

func toFloat(v interface{}) (float64, error) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), nil
	case reflect.Float32, reflect.Float64:
		return rv.Float(), nil
	case reflect.String:
		// yaml has no literal for these in flow lists written by hand
		switch rv.String() {
		case "nan", "NaN":
			return math.NaN(), nil
		case "inf", "+inf", "Inf":
			return math.Inf(1), nil
		case "-inf", "-Inf":
			return math.Inf(-1), nil
		}
	}
	if n, ok := v.(number); ok {
		return n.Float64()
	}
	return 0, fmt.Errorf("expected number, got %v (%T)", v, v)
}

// attributeValue normalizes a decoded attribute value. scalars become the
// go type for dtype, lists become (possibly nested) typed slices
func attributeValue(dtype string, v interface{}) (interface{}, error) {
	if v == nil {
		return nil, nil
	}

	var (
		tag container.TypeTag
		err error
	)
	if dtype != "" {
		if tag, err = container.ParseTypeTag(dtype); err != nil {
			return nil, err
		}
	} else if tag, err = inferTag(collectLeaves(v, nil)); err != nil {
		return nil, err
	}
	return buildValue(tag, v)
}

func buildValue(tag container.TypeTag, v interface{}) (interface{}, error) {
	list, ok := v.([]interface{})
	if !ok {
		return castScalar(tag, v)
	}

	// flat lists are the common case
	if leaves, _, err := flatten(v); err == nil && (len(list) == 0 || !isList(list[0])) {
		return castSlice(tag, leaves)
	}

	var elemType reflect.Type
	vals := make([]reflect.Value, len(list))
	for i, el := range list {
		bv, err := buildValue(tag, el)
		if err != nil {
			return nil, errors.Wrapf(err, "element %d", i)
		}
		rv := reflect.ValueOf(bv)
		if elemType == nil {
			elemType = rv.Type()
		} else if elemType != rv.Type() {
			return nil, fmt.Errorf("element %d: mixed nesting depth", i)
		}
		vals[i] = rv
	}
	out := reflect.MakeSlice(reflect.SliceOf(elemType), len(vals), len(vals))
	for i, rv := range vals {
		out.Index(i).Set(rv)
	}
	return out.Interface(), nil
}

func isList(v interface{}) bool {
	_, ok := v.([]interface{})
	return ok
}
