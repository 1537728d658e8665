package h5diff

import (
	"context"
	"fmt"

	"github.com/qri-io/h5diff/container/docfile"
)

func ExampleDiff() {
	// we'll use the background as our execution context
	ctx := context.Background()

	// start with two slightly different containers
	aDoc := []byte(`
attributes:
  - {name: title, value: run-42}
children:
  - name: g
    kind: group
    children:
      - name: d
        kind: dataset
        dtype: int64
        data: [1, 2, 3]
        attributes:
          - {name: units, value: m}
`)

	bDoc := []byte(`
attributes:
  - {name: title, value: run-42}
children:
  - name: g
    kind: group
    children:
      - name: d
        kind: dataset
        dtype: int64
        data: [1, 2, 3]
        attributes:
          - {name: units, value: cm}
`)

	a, err := docfile.Parse(aDoc, docfile.FormatYAML)
	if err != nil {
		panic(err)
	}
	b, err := docfile.Parse(bDoc, docfile.FormatYAML)
	if err != nil {
		panic(err)
	}

	// Diff walks both containers, returning every difference it finds
	res, err := Diff(ctx, a, b, OptionSetNames("a.h5", "b.h5"))
	if err != nil {
		panic(err)
	}

	// Format the records for terminal output
	report, err := FormatPrettyString(res.Records, false)
	if err != nil {
		panic(err)
	}

	fmt.Print(report)
	fmt.Println("differs:", res.Differs)
	// Output: ------------------------------
	// Examining /g/
	// ** Attribute 'units' of 'd' has different values: "m" and "cm" (DIFF_ATTR_VALUE)**
	// differs: true
}
