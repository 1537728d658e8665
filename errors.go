package h5diff

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/qri-io/h5diff/container"
)

// UnrecognizedKindError is returned when a group holds a child that is
// neither a group nor a dataset. comparison semantics for such objects are
// undefined, so the whole diff is aborted rather than reporting a record
type UnrecognizedKindError struct {
	// full path of the object
	Object string
	// path of the group holding it & its name within that group
	Parent string
	Name   string
	// Kind is whatever the backend calls the object
	Kind string
}

func (e *UnrecognizedKindError) Error() string {
	return fmt.Sprintf("unknown object type %s: %s (%s -- %s)", e.Kind, e.Object, e.Parent, e.Name)
}

// IsUnrecognizedKind reports whether err, or any error it wraps, is an
// *UnrecognizedKindError
func IsUnrecognizedKind(err error) bool {
	var uk *UnrecognizedKindError
	return errors.As(err, &uk)
}

// kindName asks a backend object for a descriptive kind name, falling back
// to its go type
func kindName(o container.Object) string {
	if kn, ok := o.(interface{ KindName() string }); ok {
		return kn.KindName()
	}
	return fmt.Sprintf("%T", o)
}
