package h5diff

import (
	"fmt"
	"math"
	"reflect"
	"strings"

	gojson "github.com/goccy/go-json"
	"github.com/qri-io/h5diff/container"
)

// DiffKind classifies a Record. Values are the stable bracketed tags
// printed in text reports
type DiffKind string

const (
	// DKUniqueA marks a child that only exists in container A
	DKUniqueA = DiffKind("DIFF_UNIQUE_A")
	// DKUniqueB marks a child that only exists in container B
	DKUniqueB = DiffKind("DIFF_UNIQUE_B")
	// DKObjectKind is a child that is a group on one side & a dataset on
	// the other
	DKObjectKind = DiffKind("DIFF_OBJECTS")
	// DKDtype is a dataset whose element types differ
	DKDtype = DiffKind("DIFF_DTYPE")
	// DKShape is a dataset whose dimensional extents differ
	DKShape = DiffKind("DIFF_DATA_SHAPE")
	// DKValue is a dataset with at least one differing element
	DKValue = DiffKind("DIFF_DATA_VALUE")
	// DKAttrUniqueA is an attribute only present in container A
	DKAttrUniqueA = DiffKind("DIFF_UNIQ_ATTR_A")
	// DKAttrUniqueB is an attribute only present in container B
	DKAttrUniqueB = DiffKind("DIFF_UNIQ_ATTR_B")
	// DKAttrType is an attribute whose stored value types differ
	DKAttrType = DiffKind("DIFF_ATTR_DTYPE")
	// DKAttrValue is an attribute with equal types but unequal values
	DKAttrValue = DiffKind("DIFF_ATTR_VALUE")
)

// DiffKinds lists every kind in report order
var DiffKinds = []DiffKind{
	DKUniqueA, DKUniqueB, DKObjectKind, DKDtype, DKShape, DKValue,
	DKAttrUniqueA, DKAttrUniqueB, DKAttrType, DKAttrValue,
}

// IsAttribute reports whether the kind describes an attribute rather than
// a child object
func (k DiffKind) IsAttribute() bool {
	switch k {
	case DKAttrUniqueA, DKAttrUniqueB, DKAttrType, DKAttrValue:
		return true
	}
	return false
}

// Record is a single discrepancy found while comparing two containers
type Record struct {
	// the type of difference
	Kind DiffKind `json:"kind"`
	// Path of the level being examined when the record was produced, always
	// ends in "/"
	Path string `json:"path"`
	// Name of the offending child. empty when the record concerns the root
	// group's own attributes
	Name string `json:"name,omitempty"`
	// Attr is the attribute name for attribute-level records
	Attr string `json:"attr,omitempty"`
	// File identifies the container holding a name the other side lacks
	File string `json:"file,omitempty"`
	// the differing object kinds, types, shapes or values, A then B
	A interface{} `json:"a,omitempty"`
	B interface{} `json:"b,omitempty"`
	// for value records, position of the first differing element & the
	// number of differing elements
	Index []int `json:"index,omitempty"`
	Count int   `json:"count,omitempty"`
}

// ObjectPath is the full path of the object the record describes
func (r *Record) ObjectPath() string {
	if r.Name == "" {
		return r.Path
	}
	return r.Path + r.Name
}

func (r *Record) String() string {
	return fmt.Sprintf("** %s (%s)**", r.message(), r.Kind)
}

func (r *Record) message() string {
	subject := r.Name
	if subject == "" {
		subject = r.Path
	}

	switch r.Kind {
	case DKUniqueA, DKUniqueB:
		return fmt.Sprintf("Element '%s' only in '%s'", r.Name, r.File)
	case DKObjectKind:
		return fmt.Sprintf("Element '%s' has different object kinds: '%v' and '%v'", subject, r.A, r.B)
	case DKDtype:
		return fmt.Sprintf("Element '%s' has different dtypes: '%v' and '%v'", subject, r.A, r.B)
	case DKShape:
		return fmt.Sprintf("Element '%s' has different shapes: %v and %v", subject, r.A, r.B)
	case DKValue:
		return fmt.Sprintf("Element '%s' has different data: %d differing element%s, first at %s: %s and %s",
			subject, r.Count, plural(r.Count), container.ShapeString(r.Index), formatValue(r.A), formatValue(r.B))
	case DKAttrUniqueA, DKAttrUniqueB:
		return fmt.Sprintf("Attribute '%s' of '%s' only in '%s'", r.Attr, subject, r.File)
	case DKAttrType:
		return fmt.Sprintf("Attribute '%s' of '%s' has different types: '%v' and '%v'", r.Attr, subject, r.A, r.B)
	case DKAttrValue:
		return fmt.Sprintf("Attribute '%s' of '%s' has different values: %s and %s", r.Attr, subject, formatValue(r.A), formatValue(r.B))
	default:
		return fmt.Sprintf("'%s': %v and %v", subject, r.A, r.B)
	}
}

// MarshalJSON implements the json.Marshaler interface. JSON has no
// literal for NaN or infinities, they're written as the strings "NaN",
// "+Inf" & "-Inf"
func (r Record) MarshalJSON() ([]byte, error) {
	type record Record
	out := record(r)
	out.A, out.B = jsonValue(r.A), jsonValue(r.B)
	return gojson.Marshal(out)
}

func jsonValue(v interface{}) interface{} {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		switch {
		case math.IsNaN(f):
			return "NaN"
		case math.IsInf(f, 1):
			return "+Inf"
		case math.IsInf(f, -1):
			return "-Inf"
		}
	case reflect.Slice, reflect.Array:
		switch rv.Type().Elem().Kind() {
		case reflect.Float32, reflect.Float64, reflect.Slice, reflect.Array, reflect.Interface:
			out := make([]interface{}, rv.Len())
			for i := range out {
				out[i] = jsonValue(rv.Index(i).Interface())
			}
			return out
		}
	}
	return v
}

func formatValue(v interface{}) string {
	switch x := v.(type) {
	case string:
		return fmt.Sprintf("%q", x)
	case []string:
		quoted := make([]string, len(x))
		for i, s := range x {
			quoted[i] = fmt.Sprintf("%q", s)
		}
		return "[" + strings.Join(quoted, " ") + "]"
	case nil:
		return "null"
	}
	return fmt.Sprintf("%v", v)
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
