// Package container defines the read-only view h5diff needs of a
// hierarchical data container: groups that own named children, datasets
// holding typed shaped arrays, and attributes attached to either.
//
// Backends (see the docfile subpackage) implement these interfaces; the
// differ never decodes storage itself.
package container

import "fmt"

// Kind is the closed set of object kinds the differ understands
type Kind uint8

const (
	// KindUnknown is any object kind a backend exposes that is neither a
	// group nor a dataset, eg. named datatypes or links
	KindUnknown Kind = iota
	// KindGroup is a node that owns children & attributes but no payload
	KindGroup
	// KindDataset is a node holding a typed, shaped array payload
	KindDataset
)

func (k Kind) String() string {
	switch k {
	case KindGroup:
		return "group"
	case KindDataset:
		return "dataset"
	default:
		return "unknown"
	}
}

// Attribute is a small named value attached to a group or dataset
type Attribute struct {
	Name  string
	Value interface{}
}

// Object is anything that can be a child of a group
type Object interface {
	// Name of this object within its parent, "/" for the root group
	Name() string
	Kind() Kind
	// Attributes lists every attribute on this object
	Attributes() ([]Attribute, error)
}

// Group is a named node that owns child groups & datasets
type Group interface {
	Object
	// Children lists direct children in stable insertion order
	Children() ([]Object, error)
	// Group opens the named child as a group
	Group(name string) (Group, error)
	// Dataset opens the named child as a dataset
	Dataset(name string) (Dataset, error)
}

// Dataset is a named node holding a typed, shaped array
type Dataset interface {
	Object
	// Dtype reports the semantic element type without reading the whole
	// payload
	Dtype() (TypeTag, error)
	// Shape is the ordered sequence of dimension extents. scalar datasets
	// have an empty shape
	Shape() ([]int, error)
	// Read materializes the full payload
	Read() (*Array, error)
}

// Container is an opened, read-only container. The container itself is
// its root group
type Container interface {
	Group
	// Path the container was opened from
	Path() string
	Close() error
}

// Array is a dataset payload stored as a flat slice in row-major order.
// Data is one of []int8 ... []uint64, []float32, []float64, []string or
// []bool, matching Dtype
type Array struct {
	Dtype TypeTag
	Shape []int
	Data  interface{}
}

// Len returns the number of elements in the array
func (a *Array) Len() int {
	if a == nil {
		return 0
	}
	return sliceLen(a.Data)
}

// ShapeString renders a shape the way numpy prints tuples
func ShapeString(shape []int) string {
	switch len(shape) {
	case 0:
		return "()"
	case 1:
		return fmt.Sprintf("(%d,)", shape[0])
	}
	s := "("
	for i, d := range shape {
		if i > 0 {
			s += ", "
		}
		s += fmt.Sprintf("%d", d)
	}
	return s + ")"
}

// Unravel converts a flat row-major index into a position within shape
func Unravel(idx int, shape []int) []int {
	pos := make([]int, len(shape))
	for i := len(shape) - 1; i >= 0; i-- {
		if shape[i] == 0 {
			continue
		}
		pos[i] = idx % shape[i]
		idx /= shape[i]
	}
	return pos
}

// ShapeEqual reports whether two shapes have identical extents
func ShapeEqual(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// ShapeSize is the number of elements a shape holds
func ShapeSize(shape []int) int {
	n := 1
	for _, d := range shape {
		n *= d
	}
	return n
}
