package h5diff

import (
	"io"

	gojson "github.com/goccy/go-json"
	"github.com/qri-io/h5diff/container"
)

// Reporter receives findings synchronously, in traversal order, as the
// diff proceeds. A non-nil error aborts the diff
type Reporter interface {
	// Level is called when the differ starts examining a group path
	Level(path string) error
	// Entry is called for each child name present on both sides
	Entry(path, name string) error
	// Record is called for every discrepancy
	Record(r *Record) error
	// Warn is called for children that can't be evaluated
	Warn(path, name string, kind container.Kind) error
}

type nopReporter struct{}

func (nopReporter) Level(string) error                       { return nil }
func (nopReporter) Entry(string, string) error               { return nil }
func (nopReporter) Record(*Record) error                     { return nil }
func (nopReporter) Warn(string, string, container.Kind) error { return nil }

// Warning is a child the differ skipped
type Warning struct {
	Path string
	Name string
	Kind container.Kind
}

// Collector keeps everything reported in memory
type Collector struct {
	Levels   []string
	Records  []*Record
	Warnings []Warning
}

// Level implements Reporter
func (c *Collector) Level(path string) error {
	c.Levels = append(c.Levels, path)
	return nil
}

// Entry implements Reporter
func (c *Collector) Entry(path, name string) error { return nil }

// Record implements Reporter
func (c *Collector) Record(r *Record) error {
	c.Records = append(c.Records, r)
	return nil
}

// Warn implements Reporter
func (c *Collector) Warn(path, name string, kind container.Kind) error {
	c.Warnings = append(c.Warnings, Warning{Path: path, Name: name, Kind: kind})
	return nil
}

// Kinds returns collected record kinds in report order
func (c *Collector) Kinds() []DiffKind {
	kinds := make([]DiffKind, len(c.Records))
	for i, r := range c.Records {
		kinds[i] = r.Kind
	}
	return kinds
}

// MultiReporter fans every call out to each reporter in order
type MultiReporter []Reporter

// Level implements Reporter
func (m MultiReporter) Level(path string) error {
	for _, r := range m {
		if err := r.Level(path); err != nil {
			return err
		}
	}
	return nil
}

// Entry implements Reporter
func (m MultiReporter) Entry(path, name string) error {
	for _, r := range m {
		if err := r.Entry(path, name); err != nil {
			return err
		}
	}
	return nil
}

// Record implements Reporter
func (m MultiReporter) Record(rec *Record) error {
	for _, r := range m {
		if err := r.Record(rec); err != nil {
			return err
		}
	}
	return nil
}

// Warn implements Reporter
func (m MultiReporter) Warn(path, name string, kind container.Kind) error {
	for _, r := range m {
		if err := r.Warn(path, name, kind); err != nil {
			return err
		}
	}
	return nil
}

// JSONReporter streams records as newline-delimited JSON objects
type JSONReporter struct {
	enc *gojson.Encoder
}

// NewJSONReporter writes one JSON object per record to w
func NewJSONReporter(w io.Writer) *JSONReporter {
	return &JSONReporter{enc: gojson.NewEncoder(w)}
}

// Level implements Reporter
func (j *JSONReporter) Level(string) error { return nil }

// Entry implements Reporter
func (j *JSONReporter) Entry(string, string) error { return nil }

// Record implements Reporter
func (j *JSONReporter) Record(r *Record) error {
	return j.enc.Encode(r)
}

// Warn implements Reporter
func (j *JSONReporter) Warn(path, name string, kind container.Kind) error {
	return j.enc.Encode(map[string]string{
		"warning": "unrecognized object kind, not evaluated",
		"path":    path,
		"name":    name,
		"type":    kind.String(),
	})
}
