package docfile

import (
	"math"
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
	"github.com/qri-io/h5diff/container"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDataset(t *testing.T, f *File, name string) *container.Array {
	t.Helper()
	ds, err := f.Dataset(name)
	require.NoError(t, err)
	arr, err := ds.Read()
	require.NoError(t, err)
	return arr
}

func TestParseYAML(t *testing.T) {
	f, err := Parse([]byte(`
attributes:
  - {name: title, value: run-42}
children:
  - name: g
    kind: group
    attributes:
      - {name: version, value: 2}
    children:
      - name: d
        kind: dataset
        dtype: int64
        data: [1, 2, 3]
        attributes:
          - {name: units, value: m}
  - {name: t, kind: datatype}
`), FormatYAML)
	require.NoError(t, err)

	assert.Equal(t, "/", f.Name())
	assert.Equal(t, container.KindGroup, f.Kind())
	assert.Equal(t, "", f.Path())

	attrs, err := f.Attributes()
	require.NoError(t, err)
	assert.Equal(t, []container.Attribute{{Name: "title", Value: "run-42"}}, attrs)

	children, err := f.Children()
	require.NoError(t, err)
	require.Len(t, children, 2)
	assert.Equal(t, "g", children[0].Name())
	assert.Equal(t, container.KindGroup, children[0].Kind())
	assert.Equal(t, "t", children[1].Name())
	assert.Equal(t, container.KindUnknown, children[1].Kind())
	assert.Equal(t, "datatype", children[1].(interface{ KindName() string }).KindName())

	g, err := f.Group("g")
	require.NoError(t, err)
	gAttrs, err := g.Attributes()
	require.NoError(t, err)
	assert.Equal(t, []container.Attribute{{Name: "version", Value: int64(2)}}, gAttrs)

	ds, err := g.Dataset("d")
	require.NoError(t, err)
	dtype, err := ds.Dtype()
	require.NoError(t, err)
	assert.Equal(t, container.Int64, dtype)
	shape, err := ds.Shape()
	require.NoError(t, err)
	assert.Equal(t, []int{3}, shape)
	arr, err := ds.Read()
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3}, arr.Data)
}

func TestParseJSON(t *testing.T) {
	f, err := Parse([]byte(`{
		"attributes": [{"name": "big", "value": 9007199254740993}],
		"children": [
			{"name": "x", "data": [[1, 2.5], [3, 4]]},
			{"name": "n", "dtype": "uint64", "data": [18446744073709551615]}
		]
	}`), FormatAuto)
	require.NoError(t, err)

	attrs, err := f.Attributes()
	require.NoError(t, err)
	// integers survive decoding without a round trip through float64
	assert.Equal(t, int64(9007199254740993), attrs[0].Value)

	x := mustDataset(t, f, "x")
	assert.Equal(t, container.Float64, x.Dtype)
	assert.Equal(t, []int{2, 2}, x.Shape)
	assert.Equal(t, []float64{1, 2.5, 3, 4}, x.Data)

	n := mustDataset(t, f, "n")
	assert.Equal(t, []uint64{math.MaxUint64}, n.Data)
}

func TestDatasetInference(t *testing.T) {
	cases := []struct {
		description string
		doc         string
		expect      *container.Array
	}{
		{"scalar",
			`children: [{name: x, data: 5}]`,
			&container.Array{Dtype: container.Int64, Shape: []int{}, Data: []int64{5}}},
		{"nested shape",
			`children: [{name: x, data: [[1, 2, 3], [4, 5, 6]]}]`,
			&container.Array{Dtype: container.Int64, Shape: []int{2, 3}, Data: []int64{1, 2, 3, 4, 5, 6}}},
		{"ints promote to float",
			`children: [{name: x, data: [1, 2.5]}]`,
			&container.Array{Dtype: container.Float64, Shape: []int{2}, Data: []float64{1, 2.5}}},
		{"strings",
			`children: [{name: x, data: [a, b]}]`,
			&container.Array{Dtype: container.String, Shape: []int{2}, Data: []string{"a", "b"}}},
		{"bools",
			`children: [{name: x, data: [true, false]}]`,
			&container.Array{Dtype: container.Bool, Shape: []int{2}, Data: []bool{true, false}}},
		{"empty defaults to float64",
			`children: [{name: x, data: []}]`,
			&container.Array{Dtype: container.Float64, Shape: []int{0}, Data: []float64{}}},
		{"dtype only",
			`children: [{name: x, dtype: int8}]`,
			&container.Array{Dtype: container.Int8, Shape: []int{0}, Data: []int8{}}},
		{"explicit dtype casts",
			`children: [{name: x, dtype: float32, data: [1, 2]}]`,
			&container.Array{Dtype: container.Float32, Shape: []int{2}, Data: []float32{1, 2}}},
		{"dtype aliases",
			`children: [{name: x, dtype: double, data: [1]}]`,
			&container.Array{Dtype: container.Float64, Shape: []int{1}, Data: []float64{1}}},
		{"explicit shape reshapes flat data",
			`children: [{name: x, shape: [2, 2], data: [1, 2, 3, 4]}]`,
			&container.Array{Dtype: container.Int64, Shape: []int{2, 2}, Data: []int64{1, 2, 3, 4}}},
	}

	for _, c := range cases {
		t.Run(c.description, func(t *testing.T) {
			f, err := Parse([]byte(c.doc), FormatYAML)
			require.NoError(t, err)
			if diff := cmp.Diff(c.expect, mustDataset(t, f, "x")); diff != "" {
				t.Errorf("result mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSpecialFloats(t *testing.T) {
	f, err := Parse([]byte(`children: [{name: x, dtype: float64, data: [nan, inf, -inf, .nan]}]`), FormatYAML)
	require.NoError(t, err)
	data := mustDataset(t, f, "x").Data.([]float64)
	assert.True(t, math.IsNaN(data[0]))
	assert.True(t, math.IsInf(data[1], 1))
	assert.True(t, math.IsInf(data[2], -1))
	assert.True(t, math.IsNaN(data[3]))
}

func TestAttributeValues(t *testing.T) {
	f, err := Parse([]byte(`
attributes:
  - {name: s, value: text}
  - {name: i, value: 3}
  - {name: f, dtype: float32, value: 0.5}
  - {name: l, value: [1, 2]}
  - {name: m, value: [[1, 2], [3, 4]]}
  - {name: n, value: null}
  - {name: u, dtype: uint8, value: [1, 2]}
`), FormatYAML)
	require.NoError(t, err)

	attrs, err := f.Attributes()
	require.NoError(t, err)
	expect := []container.Attribute{
		{Name: "s", Value: "text"},
		{Name: "i", Value: int64(3)},
		{Name: "f", Value: float32(0.5)},
		{Name: "l", Value: []int64{1, 2}},
		{Name: "m", Value: [][]int64{{1, 2}, {3, 4}}},
		{Name: "n", Value: nil},
		{Name: "u", Value: []uint8{1, 2}},
	}
	if diff := cmp.Diff(expect, attrs); diff != "" {
		t.Errorf("result mismatch (-want +got):\n%s", diff)
	}
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		description string
		doc         string
		err         string
	}{
		{"duplicate child",
			`children: [{name: x, data: [1]}, {name: x, kind: group}]`,
			`/: duplicate child name "x"`},
		{"empty child name",
			`children: [{kind: group}]`,
			`/: child with empty name`},
		{"duplicate attribute",
			`children: [{name: g, attributes: [{name: k, value: 1}, {name: k, value: 2}]}]`,
			`/g/: duplicate attribute "k"`},
		{"ragged data",
			`children: [{name: x, data: [[1, 2], [3]]}]`,
			`/x/: ragged data: element 1 has shape (1,), expected (2,)`},
		{"shape size mismatch",
			`children: [{name: x, shape: [2, 2], data: [1, 2, 3]}]`,
			`/x/: shape (2, 2) holds 4 elements, data has 3`},
		{"mixed types",
			`children: [{name: x, data: [1, a]}]`,
			`/x/: mixed value types int64 and string`},
		{"overflow",
			`children: [{name: x, dtype: int8, data: [1, 300]}]`,
			`/x/: element 1: 300 overflows int8`},
		{"unknown dtype",
			`children: [{name: x, dtype: complex128, data: [1]}]`,
			`/x/: unrecognized dtype "complex128"`},
		{"group with payload",
			`children: [{name: x, kind: group, data: [1]}]`,
			`/x/: groups have no payload`},
		{"dataset with children",
			`children: [{name: x, kind: dataset, data: [1], children: [{name: y}]}]`,
			`/x/: datasets have no children`},
		{"null data element",
			`children: [{name: x, data: [1, null]}]`,
			`/x/: null values are not allowed in typed data`},
	}

	for _, c := range cases {
		t.Run(c.description, func(t *testing.T) {
			_, err := Parse([]byte(c.doc), FormatYAML)
			assert.EqualError(t, err, c.err)
		})
	}
}

func TestUnknownFields(t *testing.T) {
	_, err := Parse([]byte(`children: [{name: x, colour: red}]`), FormatYAML)
	assert.Error(t, err)

	_, err = Parse([]byte(`{"children": [{"name": "x", "colour": "red"}]}`), FormatJSON)
	assert.Error(t, err)
}

func TestEmptyDocument(t *testing.T) {
	for _, doc := range []string{"", "  \n", "{}"} {
		f, err := Parse([]byte(doc), FormatAuto)
		require.NoError(t, err, "%q", doc)
		children, _ := f.Children()
		assert.Empty(t, children)
		attrs, _ := f.Attributes()
		assert.Empty(t, attrs)
	}
}

func TestGroupLookupErrors(t *testing.T) {
	f, err := Parse([]byte(`children: [{name: g, kind: group}, {name: d, data: [1]}]`), FormatYAML)
	require.NoError(t, err)

	_, err = f.Group("d")
	assert.EqualError(t, err, `"d" is a dataset, not a group`)
	_, err = f.Dataset("g")
	assert.EqualError(t, err, `"g" is a group, not a dataset`)
	_, err = f.Group("missing")
	assert.EqualError(t, err, `group "/" has no child "missing"`)
}

func TestOpen(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/data/a.yaml", []byte(`children: [{name: x, data: [1]}]`), 0644))
	require.NoError(t, afero.WriteFile(fs, "/data/b.json", []byte(`{"children": [{"name": "x", "data": [1]}]}`), 0644))
	require.NoError(t, afero.WriteFile(fs, "/data/c.h5doc", []byte(`{"children": []}`), 0644))
	require.NoError(t, afero.WriteFile(fs, "/data/bad.yaml", []byte("children: [\n"), 0644))

	for _, path := range []string{"/data/a.yaml", "/data/b.json", "/data/c.h5doc"} {
		f, err := Open(fs, path)
		require.NoError(t, err, path)
		assert.Equal(t, path, f.Path())
		assert.True(t, f.Size() > 0)
		assert.NoError(t, f.Close())
	}

	_, err := Open(fs, "/data/missing.yaml")
	var openErr *OpenError
	require.True(t, errors.As(err, &openErr))
	assert.Equal(t, "/data/missing.yaml", openErr.Path)
	assert.True(t, os.IsNotExist(errors.Cause(err)))

	_, err = Open(fs, "/data/bad.yaml")
	require.True(t, errors.As(err, &openErr))
	assert.Equal(t, "/data/bad.yaml", openErr.Path)
	assert.Contains(t, err.Error(), "unable to open file '/data/bad.yaml': decoding yaml")
}

func TestFormatFromPath(t *testing.T) {
	assert.Equal(t, FormatJSON, FormatFromPath("a/b.JSON"))
	assert.Equal(t, FormatYAML, FormatFromPath("b.yml"))
	assert.Equal(t, FormatYAML, FormatFromPath("b.yaml"))
	assert.Equal(t, FormatAuto, FormatFromPath("b.h5"))
}
