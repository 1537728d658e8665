// Package docfile reads containers stored as self-describing YAML or JSON
// documents. A document is a root group: a list of attributes and a list
// of children, where every child is a group, a dataset, or an object of
// some other kind the differ will refuse to compare:
//
//	attributes:
//	  - {name: title, value: run-42}
//	children:
//	  - name: g
//	    kind: group
//	    children:
//	      - name: d
//	        kind: dataset
//	        dtype: int64
//	        data: [1, 2, 3]
//	        attributes:
//	          - {name: units, value: m}
//
// Dataset shapes are inferred from data nesting unless given, dtypes are
// inferred from values unless given.
package docfile

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/qri-io/h5diff/container"
	"github.com/spf13/afero"
)

// OpenError is returned when a container can't be read or decoded
type OpenError struct {
	Path string
	Err  error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("unable to open file '%s': %s", e.Path, e.Err)
}

// Unwrap returns the underlying cause
func (e *OpenError) Unwrap() error { return e.Err }

// Cause implements the github.com/pkg/errors causer interface
func (e *OpenError) Cause() error { return e.Err }

// File is an opened container document
type File struct {
	*group
	path string
	size int64
}

var _ container.Container = (*File)(nil)

// Open reads & decodes the container document at path from fs. a nil fs
// reads from the operating system
func Open(fs afero.Fs, path string) (*File, error) {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, &OpenError{Path: path, Err: err}
	}
	f, err := Parse(data, FormatFromPath(path))
	if err != nil {
		return nil, &OpenError{Path: path, Err: err}
	}
	f.path = path
	return f, nil
}

// Parse decodes a container document held in memory
func Parse(data []byte, format Format) (*File, error) {
	doc, err := decode(data, format)
	if err != nil {
		return nil, err
	}
	root, err := buildGroup("/", "/", doc.Attributes, doc.Children)
	if err != nil {
		return nil, err
	}
	return &File{group: root, size: int64(len(data))}, nil
}

// Path the container was opened from, empty for parsed documents
func (f *File) Path() string { return f.path }

// Size of the encoded document in bytes
func (f *File) Size() int64 { return f.size }

// Close releases the container. documents are fully read on open, so
// this never fails
func (f *File) Close() error { return nil }

type group struct {
	name     string
	attrs    []container.Attribute
	children []container.Object
	index    map[string]int
}

func (g *group) Name() string                               { return g.name }
func (g *group) Kind() container.Kind                       { return container.KindGroup }
func (g *group) Attributes() ([]container.Attribute, error) { return g.attrs, nil }
func (g *group) Children() ([]container.Object, error)      { return g.children, nil }

func (g *group) child(name string) (container.Object, error) {
	i, ok := g.index[name]
	if !ok {
		return nil, errors.Errorf("group %q has no child %q", g.name, name)
	}
	return g.children[i], nil
}

func (g *group) Group(name string) (container.Group, error) {
	ch, err := g.child(name)
	if err != nil {
		return nil, err
	}
	grp, ok := ch.(*group)
	if !ok {
		return nil, errors.Errorf("%q is a %s, not a group", name, ch.Kind())
	}
	return grp, nil
}

func (g *group) Dataset(name string) (container.Dataset, error) {
	ch, err := g.child(name)
	if err != nil {
		return nil, err
	}
	ds, ok := ch.(*dataset)
	if !ok {
		return nil, errors.Errorf("%q is a %s, not a dataset", name, ch.Kind())
	}
	return ds, nil
}

type dataset struct {
	name  string
	attrs []container.Attribute
	arr   *container.Array
}

func (d *dataset) Name() string                               { return d.name }
func (d *dataset) Kind() container.Kind                       { return container.KindDataset }
func (d *dataset) Attributes() ([]container.Attribute, error) { return d.attrs, nil }
func (d *dataset) Dtype() (container.TypeTag, error)          { return d.arr.Dtype, nil }
func (d *dataset) Shape() ([]int, error)                      { return d.arr.Shape, nil }
func (d *dataset) Read() (*container.Array, error)            { return d.arr, nil }

// unrecognized is an object of a kind the document declares but the
// container model doesn't define, eg. "datatype" or "softlink"
type unrecognized struct {
	name  string
	kind  string
	attrs []container.Attribute
}

func (u *unrecognized) Name() string                               { return u.name }
func (u *unrecognized) Kind() container.Kind                       { return container.KindUnknown }
func (u *unrecognized) Attributes() ([]container.Attribute, error) { return u.attrs, nil }

// KindName is the kind string the document declared
func (u *unrecognized) KindName() string { return u.kind }

func buildAttributes(path string, docs []attributeDoc) ([]container.Attribute, error) {
	attrs := make([]container.Attribute, 0, len(docs))
	seen := map[string]bool{}
	for _, a := range docs {
		if a.Name == "" {
			return nil, errors.Errorf("%s: attribute with empty name", path)
		}
		if seen[a.Name] {
			return nil, errors.Errorf("%s: duplicate attribute %q", path, a.Name)
		}
		seen[a.Name] = true

		v, err := attributeValue(a.Dtype, a.Value)
		if err != nil {
			return nil, errors.Wrapf(err, "%s: attribute %q", path, a.Name)
		}
		attrs = append(attrs, container.Attribute{Name: a.Name, Value: v})
	}
	return attrs, nil
}

func buildGroup(name, path string, attrDocs []attributeDoc, children []nodeDoc) (*group, error) {
	attrs, err := buildAttributes(path, attrDocs)
	if err != nil {
		return nil, err
	}
	g := &group{
		name:     name,
		attrs:    attrs,
		children: make([]container.Object, 0, len(children)),
		index:    map[string]int{},
	}

	for _, ch := range children {
		if ch.Name == "" {
			return nil, errors.Errorf("%s: child with empty name", path)
		}
		if _, exists := g.index[ch.Name]; exists {
			return nil, errors.Errorf("%s: duplicate child name %q", path, ch.Name)
		}
		obj, err := buildNode(path+ch.Name+"/", ch)
		if err != nil {
			return nil, err
		}
		g.index[ch.Name] = len(g.children)
		g.children = append(g.children, obj)
	}
	return g, nil
}

func buildNode(path string, n nodeDoc) (container.Object, error) {
	kind := n.Kind
	if kind == "" {
		kind = "group"
		if n.Data != nil || n.Dtype != "" {
			kind = "dataset"
		}
	}

	switch kind {
	case "group":
		if n.Data != nil || n.Dtype != "" || n.Shape != nil {
			return nil, errors.Errorf("%s: groups have no payload", path)
		}
		return buildGroup(n.Name, path, n.Attributes, n.Children)
	case "dataset":
		if len(n.Children) > 0 {
			return nil, errors.Errorf("%s: datasets have no children", path)
		}
		return buildDataset(path, n)
	default:
		attrs, err := buildAttributes(path, n.Attributes)
		if err != nil {
			return nil, err
		}
		return &unrecognized{name: n.Name, kind: kind, attrs: attrs}, nil
	}
}

func buildDataset(path string, n nodeDoc) (*dataset, error) {
	attrs, err := buildAttributes(path, n.Attributes)
	if err != nil {
		return nil, err
	}

	var (
		leaves = []interface{}{}
		shape  = []int{0}
	)
	if n.Data != nil {
		if leaves, shape, err = flatten(n.Data); err != nil {
			return nil, errors.Wrapf(err, "%s", path)
		}
	}

	if n.Shape != nil && !container.ShapeEqual(n.Shape, shape) {
		if container.ShapeSize(n.Shape) != len(leaves) {
			return nil, errors.Errorf("%s: shape %s holds %d elements, data has %d", path, container.ShapeString(n.Shape), container.ShapeSize(n.Shape), len(leaves))
		}
		shape = n.Shape
	}

	var tag container.TypeTag
	if n.Dtype != "" {
		tag, err = container.ParseTypeTag(n.Dtype)
	} else {
		tag, err = inferTag(leaves)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "%s", path)
	}

	data, err := castSlice(tag, leaves)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", path)
	}

	return &dataset{
		name:  n.Name,
		attrs: attrs,
		arr:   &container.Array{Dtype: tag, Shape: shape, Data: data},
	}, nil
}
