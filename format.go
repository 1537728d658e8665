package h5diff

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/qri-io/h5diff/container"
)

const levelSeparator = "------------------------------"

// TextReporter writes a human readable report as the diff proceeds. if
// colorTTY is true records are colored by kind:
// red for names & attributes only in A
// green for names & attributes only in B
// blue for everything present on both sides that differs
type TextReporter struct {
	w       io.Writer
	colors  map[DiffKind]*color.Color
	warn    *color.Color
	current string
}

// NewTextReporter creates a TextReporter writing to w
func NewTextReporter(w io.Writer, colorTTY bool) *TextReporter {
	var (
		red    = color.New(color.FgRed)
		green  = color.New(color.FgGreen)
		blue   = color.New(color.FgBlue)
		yellow = color.New(color.FgYellow)
	)
	for _, c := range []*color.Color{red, green, blue, yellow} {
		if colorTTY {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	return &TextReporter{
		w: w,
		colors: map[DiffKind]*color.Color{
			DKUniqueA:     red,
			DKAttrUniqueA: red,
			DKUniqueB:     green,
			DKAttrUniqueB: green,
			DKObjectKind:  blue,
			DKDtype:       blue,
			DKShape:       blue,
			DKValue:       blue,
			DKAttrType:    blue,
			DKAttrValue:   blue,
		},
		warn: yellow,
	}
}

// Level implements Reporter
func (t *TextReporter) Level(path string) error {
	t.current = path
	_, err := fmt.Fprintf(t.w, "%s\nExamining %s\n", levelSeparator, path)
	return err
}

// Entry implements Reporter
func (t *TextReporter) Entry(path, name string) error {
	_, err := fmt.Fprintf(t.w, "\t%s\n", name)
	return err
}

// Record implements Reporter
func (t *TextReporter) Record(r *Record) error {
	// a parent level reports a subgroup's attribute names after earlier
	// siblings were descended into, & root attributes come after every
	// subgroup. both re-print the header of the level they belong to
	if r.Path != t.current {
		if err := t.Level(r.Path); err != nil {
			return err
		}
	}
	line := r.String()
	if c, ok := t.colors[r.Kind]; ok {
		line = c.Sprint(line)
	}
	_, err := fmt.Fprintln(t.w, line)
	return err
}

// Warn implements Reporter
func (t *TextReporter) Warn(path, name string, kind container.Kind) error {
	_, err := fmt.Fprintln(t.w, t.warn.Sprintf("WARNING: element '%s' is not a recognized type (%s) and isn't being evaluated", name, kind))
	return err
}

// FormatPrettyString is a convenience wrapper that outputs to a string
// instead of an io.Writer
func FormatPrettyString(records []*Record, colorTTY bool) (string, error) {
	buf := &bytes.Buffer{}
	if err := FormatPretty(buf, records, colorTTY); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// FormatPretty writes collected records as a text report, one section per
// level path
func FormatPretty(w io.Writer, records []*Record, colorTTY bool) error {
	tr := NewTextReporter(w, colorTTY)
	for _, r := range records {
		if err := tr.Record(r); err != nil {
			return err
		}
	}
	return nil
}

// FormatPrettyStats prints a string of stats info
func FormatPrettyStats(diffStat *Stats) string {
	return formatStats(diffStat, false)
}

// FormatPrettyStatsColor prints a string of stats info with ANSI colors
func FormatPrettyStatsColor(diffStat *Stats) string {
	return formatStats(diffStat, true)
}

func formatStats(ds *Stats, colorTTY bool) string {
	if ds == nil {
		return ""
	}

	var (
		neutral = color.New(color.FgWhite)
		changed = color.New(color.FgBlue)
	)
	for _, c := range []*color.Color{neutral, changed} {
		if colorTTY {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	buf := &bytes.Buffer{}
	buf.WriteString(neutral.Sprintf("%d %s. %d %s. %d %s. %d %s.",
		ds.Levels, pluralize(ds.Levels, "level"),
		ds.Groups, pluralize(ds.Groups, "group"),
		ds.Datasets, pluralize(ds.Datasets, "dataset"),
		ds.Elements, pluralize(ds.Elements, "element"),
	))

	diffs := ds.Differences()
	diffColor := neutral
	if diffs > 0 {
		diffColor = changed
	}
	buf.WriteString(" ")
	buf.WriteString(diffColor.Sprintf("%d %s.", diffs, pluralize(diffs, "difference")))

	if diffs > 0 {
		var kinds []string
		for _, k := range DiffKinds {
			if n := ds.Records[k]; n > 0 {
				kinds = append(kinds, fmt.Sprintf("%d %s", n, k))
			}
		}
		buf.WriteString(" (" + strings.Join(kinds, ", ") + ")")
	}

	buf.WriteRune('\n')
	return buf.String()
}

func pluralize(n int, word string) string {
	return word + plural(n)
}
