package container

import (
	"fmt"
	"reflect"
)

// TypeTag names the semantic type of a stored value, eg. "int64",
// "float32", "string", or "[]float64" for an array of float64
type TypeTag string

// scalar type tags
const (
	Int8    = TypeTag("int8")
	Int16   = TypeTag("int16")
	Int32   = TypeTag("int32")
	Int64   = TypeTag("int64")
	Uint8   = TypeTag("uint8")
	Uint16  = TypeTag("uint16")
	Uint32  = TypeTag("uint32")
	Uint64  = TypeTag("uint64")
	Float32 = TypeTag("float32")
	Float64 = TypeTag("float64")
	String  = TypeTag("string")
	Bool    = TypeTag("bool")
	// None is the tag of a nil value
	None = TypeTag("none")
	// Mixed marks the element type of heterogeneous lists
	Mixed = TypeTag("mixed")
)

var scalarTags = map[TypeTag]reflect.Type{
	Int8:    reflect.TypeOf(int8(0)),
	Int16:   reflect.TypeOf(int16(0)),
	Int32:   reflect.TypeOf(int32(0)),
	Int64:   reflect.TypeOf(int64(0)),
	Uint8:   reflect.TypeOf(uint8(0)),
	Uint16:  reflect.TypeOf(uint16(0)),
	Uint32:  reflect.TypeOf(uint32(0)),
	Uint64:  reflect.TypeOf(uint64(0)),
	Float32: reflect.TypeOf(float32(0)),
	Float64: reflect.TypeOf(float64(0)),
	String:  reflect.TypeOf(""),
	Bool:    reflect.TypeOf(false),
}

// ArrayOf returns the tag for an array of t
func ArrayOf(t TypeTag) TypeTag {
	return "[]" + t
}

// IsArray reports whether t is an array tag
func (t TypeTag) IsArray() bool {
	return len(t) > 2 && t[:2] == "[]"
}

// Elem returns the element tag of an array tag, or t itself for scalars
func (t TypeTag) Elem() TypeTag {
	if t.IsArray() {
		return t[2:]
	}
	return t
}

// IsInteger reports whether t is a signed or unsigned integer tag
func (t TypeTag) IsInteger() bool {
	switch t {
	case Int8, Int16, Int32, Int64, Uint8, Uint16, Uint32, Uint64:
		return true
	}
	return false
}

// IsUnsigned reports whether t is an unsigned integer tag
func (t TypeTag) IsUnsigned() bool {
	switch t {
	case Uint8, Uint16, Uint32, Uint64:
		return true
	}
	return false
}

// IsFloat reports whether t is a floating point tag
func (t TypeTag) IsFloat() bool {
	return t == Float32 || t == Float64
}

// IsNumeric reports whether t is an integer or float tag
func (t TypeTag) IsNumeric() bool {
	return t.IsInteger() || t.IsFloat()
}

// ParseTypeTag validates a scalar type name, as written in container
// documents
func ParseTypeTag(s string) (TypeTag, error) {
	t := TypeTag(s)
	if _, ok := scalarTags[t]; ok {
		return t, nil
	}
	switch s {
	case "int":
		return Int64, nil
	case "uint":
		return Uint64, nil
	case "float", "double":
		return Float64, nil
	case "str":
		return String, nil
	}
	return "", fmt.Errorf("unrecognized dtype %q", s)
}

// SliceType returns the go slice type used to hold a payload of element
// type t
func SliceType(t TypeTag) (reflect.Type, bool) {
	rt, ok := scalarTags[t]
	if !ok {
		return nil, false
	}
	return reflect.SliceOf(rt), true
}

// TypeOf records the runtime type of a value, not the value itself.
// platform-sized ints are reported as their 64 bit counterparts
func TypeOf(v interface{}) TypeTag {
	if v == nil {
		return None
	}
	return typeOfValue(reflect.ValueOf(v))
}

func typeOfValue(rv reflect.Value) TypeTag {
	switch rv.Kind() {
	case reflect.Interface, reflect.Ptr:
		if rv.IsNil() {
			return None
		}
		return typeOfValue(rv.Elem())
	case reflect.Int:
		return Int64
	case reflect.Uint:
		return Uint64
	case reflect.Slice, reflect.Array:
		if rv.Type().Elem().Kind() != reflect.Interface {
			return ArrayOf(typeOfValue(reflect.Zero(rv.Type().Elem())))
		}
		// generic lists report their element type only when homogeneous
		var elem TypeTag
		for i := 0; i < rv.Len(); i++ {
			et := typeOfValue(rv.Index(i))
			if elem == "" {
				elem = et
			} else if elem != et {
				return ArrayOf(Mixed)
			}
		}
		if elem == "" {
			elem = None
		}
		return ArrayOf(elem)
	}

	for tag, rt := range scalarTags {
		if rv.Type() == rt {
			return tag
		}
	}
	return TypeTag(rv.Type().String())
}

func sliceLen(data interface{}) int {
	if data == nil {
		return 0
	}
	rv := reflect.ValueOf(data)
	if rv.Kind() != reflect.Slice {
		return 1
	}
	return rv.Len()
}
