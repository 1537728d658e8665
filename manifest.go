package h5diff

import (
	"github.com/pkg/errors"
	"github.com/qri-io/h5diff/container"
)

// Attrs maps attribute names to the type of their stored value, keeping
// the order the container listed them in
type Attrs struct {
	names []string
	types map[string]container.TypeTag
}

// Names lists attribute names in container order
func (a Attrs) Names() []string { return a.names }

// Len is the number of attributes
func (a Attrs) Len() int { return len(a.names) }

// Type returns the value type tag of the named attribute
func (a Attrs) Type(name string) (container.TypeTag, bool) {
	t, ok := a.types[name]
	return t, ok
}

// Has reports whether the named attribute exists
func (a Attrs) Has(name string) bool {
	_, ok := a.types[name]
	return ok
}

// ReadAttributes records the runtime type of every attribute on o. values
// are read but not kept
func ReadAttributes(o container.Object) (Attrs, error) {
	list, err := o.Attributes()
	if err != nil {
		return Attrs{}, err
	}
	attrs := Attrs{
		names: make([]string, 0, len(list)),
		types: make(map[string]container.TypeTag, len(list)),
	}
	for _, a := range list {
		if _, dup := attrs.types[a.Name]; dup {
			return Attrs{}, errors.Errorf("duplicate attribute %q", a.Name)
		}
		attrs.names = append(attrs.names, a.Name)
		attrs.types[a.Name] = container.TypeOf(a.Value)
	}
	return attrs, nil
}

// NodeSummary is a lightweight descriptor of one child of a group
type NodeSummary struct {
	Kind  container.Kind
	Attrs Attrs
	// ElementType is only set for datasets
	ElementType container.TypeTag
}

// Manifest describes the direct children of one group, in insertion order
type Manifest struct {
	Path  string
	Names []string
	nodes map[string]*NodeSummary
}

// Get returns the summary of a named child
func (m *Manifest) Get(name string) (*NodeSummary, bool) {
	n, ok := m.nodes[name]
	return n, ok
}

// Has reports whether name is a direct child
func (m *Manifest) Has(name string) bool {
	_, ok := m.nodes[name]
	return ok
}

// BuildManifest summarizes every direct child of g. A child that is neither
// a group nor a dataset aborts with an *UnrecognizedKindError
func BuildManifest(path string, g container.Group) (*Manifest, error) {
	children, err := g.Children()
	if err != nil {
		return nil, errors.Wrapf(err, "listing children of %s", path)
	}

	m := &Manifest{
		Path:  path,
		Names: make([]string, 0, len(children)),
		nodes: make(map[string]*NodeSummary, len(children)),
	}
	for _, ch := range children {
		name := ch.Name()
		if m.Has(name) {
			return nil, errors.Errorf("%s: duplicate child name %q", path, name)
		}

		var sum *NodeSummary
		switch ch.Kind() {
		case container.KindDataset:
			sum, err = summarizeDataset(g, name, ch)
		case container.KindGroup:
			sum, err = summarizeGroup(ch)
		default:
			return nil, &UnrecognizedKindError{
				Object: path + name,
				Parent: path,
				Name:   name,
				Kind:   kindName(ch),
			}
		}
		if err != nil {
			return nil, errors.Wrapf(err, "reading %s%s", path, name)
		}

		m.Names = append(m.Names, name)
		m.nodes[name] = sum
	}
	return m, nil
}

func summarizeGroup(o container.Object) (*NodeSummary, error) {
	attrs, err := ReadAttributes(o)
	if err != nil {
		return nil, err
	}
	return &NodeSummary{Kind: container.KindGroup, Attrs: attrs}, nil
}

func summarizeDataset(parent container.Group, name string, o container.Object) (*NodeSummary, error) {
	attrs, err := ReadAttributes(o)
	if err != nil {
		return nil, err
	}
	ds, err := parent.Dataset(name)
	if err != nil {
		return nil, err
	}
	dtype, err := ds.Dtype()
	if err != nil {
		return nil, err
	}
	return &NodeSummary{Kind: container.KindDataset, Attrs: attrs, ElementType: dtype}, nil
}
