package h5diff

import (
	"context"

	"github.com/pkg/errors"
	"github.com/qri-io/h5diff/container"
	"go.uber.org/zap"
)

// RootPath is the path of a container's root group
const RootPath = "/"

// DiffConfig are any possible configuration parameters for calculating diffs
type DiffConfig struct {
	// NameA & NameB identify the two containers in records. when empty
	// and the compared groups are containers, their paths are used
	NameA, NameB string
	// Reporter receives findings as they're made
	Reporter Reporter
	// Provide a non-nil stats pointer & diff will populate it with data from
	// the diff process
	Stats *Stats
	// Logger receives debug output & warnings
	Logger *zap.Logger
}

// DiffOption is a function that adjust a config, zero or more DiffOptions
// can be passed to the New and Diff functions
type DiffOption func(cfg *DiffConfig)

// OptionSetStats will set the passed-in stats pointer when Diff is called
func OptionSetStats(st *Stats) DiffOption {
	return func(cfg *DiffConfig) {
		cfg.Stats = st
	}
}

// OptionSetReporter streams findings to r
func OptionSetReporter(r Reporter) DiffOption {
	return func(cfg *DiffConfig) {
		cfg.Reporter = r
	}
}

// OptionSetLogger sets the logger used for diagnostics
func OptionSetLogger(l *zap.Logger) DiffOption {
	return func(cfg *DiffConfig) {
		cfg.Logger = l
	}
}

// OptionSetNames sets the identifiers records use for each container
func OptionSetNames(a, b string) DiffOption {
	return func(cfg *DiffConfig) {
		cfg.NameA, cfg.NameB = a, b
	}
}

// H5Diff compares containers
type H5Diff struct {
	cfg *DiffConfig
}

// New creates an H5Diff from the given options
func New(opts ...DiffOption) *H5Diff {
	cfg := &DiffConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	return &H5Diff{cfg: cfg}
}

// Result is the outcome of comparing two containers
type Result struct {
	// Records lists every discrepancy in the order it was found
	Records []*Record
	// Differs is true when any level of the tree produced a record
	Differs bool
	// RootDiffers only reflects records produced while examining the root
	// level itself: its children's names, kinds & datasets, its subgroups'
	// attribute names, and the root attributes. differences found deeper in
	// the tree don't affect it
	RootDiffers bool
}

// Diff is a convenience wrapper that compares a & b with a single-use
// H5Diff
func Diff(ctx context.Context, a, b container.Group, opts ...DiffOption) (*Result, error) {
	return New(opts...).Diff(ctx, a, b)
}

// Diff walks a & b in lock-step from their roots, classifying every
// difference. Only an *UnrecognizedKindError, a read failure, a reporter
// failure or a cancelled context stop the walk early
func (h *H5Diff) Diff(ctx context.Context, a, b container.Group) (*Result, error) {
	d := &diff{
		cfg:      h.cfg,
		nameA:    h.cfg.NameA,
		nameB:    h.cfg.NameB,
		reporter: h.cfg.Reporter,
		stats:    h.cfg.Stats,
		log:      h.cfg.Logger,
		res:      &Result{},
	}
	if d.nameA == "" {
		d.nameA = containerName(a)
	}
	if d.nameB == "" {
		d.nameB = containerName(b)
	}
	if d.reporter == nil {
		d.reporter = nopReporter{}
	}
	if d.stats == nil {
		d.stats = &Stats{}
	}
	if d.log == nil {
		d.log = zap.NewNop()
	}

	rootDiffers, err := d.diffLevel(ctx, a, b, RootPath)
	if err != nil {
		return nil, err
	}
	d.res.RootDiffers = rootDiffers
	d.log.Debug("diff complete",
		zap.String("a", d.nameA),
		zap.String("b", d.nameB),
		zap.Int("records", len(d.res.Records)),
		zap.Int("levels", d.stats.Levels),
	)
	return d.res, nil
}

func containerName(g container.Group) string {
	if c, ok := g.(container.Container); ok && c.Path() != "" {
		return c.Path()
	}
	return g.Name()
}

// diff holds the state of a single comparison. nothing here outlives the
// call to Diff
type diff struct {
	cfg          *DiffConfig
	nameA, nameB string
	reporter     Reporter
	stats        *Stats
	log          *zap.Logger
	res          *Result
}

// level accumulates the findings made directly at one path
type level struct {
	d       *diff
	path    string
	differs bool
	err     error
}

func (l *level) emit(r *Record) {
	l.differs = true
	l.d.res.Differs = true
	l.d.res.Records = append(l.d.res.Records, r)
	l.d.stats.count(r.Kind)
	l.d.log.Debug("difference",
		zap.String("kind", string(r.Kind)),
		zap.String("object", r.ObjectPath()),
		zap.Bool("attribute", r.Kind.IsAttribute()),
	)
	if l.err == nil {
		l.err = l.d.reporter.Record(r)
	}
}

// diffLevel compares the direct children of ga & gb, recursing into
// subgroups present on both sides. It returns whether this level itself
// produced a record; findings in descendants are only reflected in the
// Result
func (d *diff) diffLevel(ctx context.Context, ga, gb container.Group, path string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	d.stats.Levels++
	if err := d.reporter.Level(path); err != nil {
		return false, err
	}

	ma, err := BuildManifest(path, ga)
	if err != nil {
		return false, err
	}
	mb, err := BuildManifest(path, gb)
	if err != nil {
		return false, err
	}
	d.log.Debug("examining level",
		zap.String("path", path),
		zap.Int("childrenA", len(ma.Names)),
		zap.Int("childrenB", len(mb.Names)),
	)

	lvl := &level{d: d, path: path}

	// name-set reconciliation. common names keep A's insertion order
	common := make([]string, 0, len(ma.Names))
	for _, name := range ma.Names {
		if mb.Has(name) {
			common = append(common, name)
		} else {
			lvl.emit(&Record{Kind: DKUniqueA, Path: path, Name: name, File: d.nameA})
		}
	}
	for _, name := range mb.Names {
		if !ma.Has(name) {
			lvl.emit(&Record{Kind: DKUniqueB, Path: path, Name: name, File: d.nameB})
		}
	}
	if lvl.err != nil {
		return false, lvl.err
	}

	// content pass
	for _, name := range common {
		if err := d.reporter.Entry(path, name); err != nil {
			return false, err
		}
		sa, _ := ma.Get(name)
		sb, _ := mb.Get(name)

		if sa.Kind != sb.Kind {
			lvl.emit(&Record{Kind: DKObjectKind, Path: path, Name: name, A: sa.Kind.String(), B: sb.Kind.String()})
			continue
		}

		switch sa.Kind {
		case container.KindDataset:
			d.stats.Datasets++
			if err := d.diffDataset(lvl, name, ga, gb, sa, sb); err != nil {
				return false, err
			}
		case container.KindGroup:
			// groups have no payload. attributes & recursion happen below
			d.stats.Groups++
		default:
			d.log.Warn("element is not a recognized type and isn't being evaluated",
				zap.String("path", path),
				zap.String("name", name),
				zap.Stringer("kind", sa.Kind),
			)
			if err := d.reporter.Warn(path, name, sa.Kind); err != nil {
				return false, err
			}
		}
		if lvl.err != nil {
			return false, lvl.err
		}
	}

	// group-recursion pass
	for _, name := range common {
		sa, _ := ma.Get(name)
		sb, _ := mb.Get(name)
		if sa.Kind != sb.Kind || sa.Kind != container.KindGroup {
			continue
		}

		// only attribute presence is compared for groups
		lvl.diffAttrNames(name, sa.Attrs, sb.Attrs)
		if lvl.err != nil {
			return false, lvl.err
		}

		ca, err := ga.Group(name)
		if err != nil {
			return false, errors.Wrapf(err, "opening %s%s in %s", path, name, d.nameA)
		}
		cb, err := gb.Group(name)
		if err != nil {
			return false, errors.Wrapf(err, "opening %s%s in %s", path, name, d.nameB)
		}
		if _, err := d.diffLevel(ctx, ca, cb, path+name+"/"); err != nil {
			return false, err
		}
	}

	// the root's own attributes aren't covered by any parent level
	if path == RootPath {
		attrsA, err := ReadAttributes(ga)
		if err != nil {
			return false, errors.Wrapf(err, "reading root attributes of %s", d.nameA)
		}
		attrsB, err := ReadAttributes(gb)
		if err != nil {
			return false, errors.Wrapf(err, "reading root attributes of %s", d.nameB)
		}
		if err := lvl.diffAttrs("", ga, gb, attrsA, attrsB); err != nil {
			return false, err
		}
		if lvl.err != nil {
			return false, lvl.err
		}
	}

	return lvl.differs, nil
}

// diffDataset compares element type, shape, values and attributes of the
// dataset called name in both groups
func (d *diff) diffDataset(lvl *level, name string, ga, gb container.Group, sa, sb *NodeSummary) error {
	path := lvl.path
	if sa.ElementType != sb.ElementType {
		// values are still compared, integers & floats can hold equal data
		lvl.emit(&Record{Kind: DKDtype, Path: path, Name: name, A: string(sa.ElementType), B: string(sb.ElementType)})
	}

	da, err := ga.Dataset(name)
	if err != nil {
		return errors.Wrapf(err, "opening %s%s in %s", path, name, d.nameA)
	}
	db, err := gb.Dataset(name)
	if err != nil {
		return errors.Wrapf(err, "opening %s%s in %s", path, name, d.nameB)
	}

	shapeA, err := da.Shape()
	if err != nil {
		return errors.Wrapf(err, "reading shape of %s%s in %s", path, name, d.nameA)
	}
	shapeB, err := db.Shape()
	if err != nil {
		return errors.Wrapf(err, "reading shape of %s%s in %s", path, name, d.nameB)
	}

	if !container.ShapeEqual(shapeA, shapeB) {
		lvl.emit(&Record{
			Kind: DKShape,
			Path: path,
			Name: name,
			A:    container.ShapeString(shapeA),
			B:    container.ShapeString(shapeB),
		})
	} else {
		arrA, err := da.Read()
		if err != nil {
			return errors.Wrapf(err, "reading %s%s in %s", path, name, d.nameA)
		}
		arrB, err := db.Read()
		if err != nil {
			return errors.Wrapf(err, "reading %s%s in %s", path, name, d.nameB)
		}

		res := compareArrays(arrA, arrB)
		d.stats.Elements += arrA.Len()
		if res.count > 0 {
			rec := &Record{Kind: DKValue, Path: path, Name: name, A: res.a, B: res.b, Count: res.count}
			if res.first >= 0 {
				rec.Index = container.Unravel(res.first, shapeA)
			}
			lvl.emit(rec)
		}
	}

	return lvl.diffAttrs(name, da, db, sa.Attrs, sb.Attrs)
}

// diffAttrNames reports attributes present on only one side of the named
// child
func (l *level) diffAttrNames(name string, a, b Attrs) {
	for _, k := range a.Names() {
		if !b.Has(k) {
			l.emit(&Record{Kind: DKAttrUniqueA, Path: l.path, Name: name, Attr: k, File: l.d.nameA})
		}
	}
	for _, k := range b.Names() {
		if !a.Has(k) {
			l.emit(&Record{Kind: DKAttrUniqueB, Path: l.path, Name: name, Attr: k, File: l.d.nameB})
		}
	}
}

// diffAttrs fully reconciles the attributes of oa & ob: presence, then
// value types, then values for attributes whose types agree
func (l *level) diffAttrs(name string, oa, ob container.Object, a, b Attrs) error {
	l.diffAttrNames(name, a, b)

	var valuesA, valuesB map[string]interface{}
	for _, k := range a.Names() {
		tb, ok := b.Type(k)
		if !ok {
			continue
		}
		ta, _ := a.Type(k)
		if ta != tb {
			l.emit(&Record{Kind: DKAttrType, Path: l.path, Name: name, Attr: k, A: string(ta), B: string(tb)})
			continue
		}

		if valuesA == nil {
			var err error
			if valuesA, err = attributeValues(oa); err != nil {
				return errors.Wrapf(err, "reading attributes of %s%s in %s", l.path, name, l.d.nameA)
			}
			if valuesB, err = attributeValues(ob); err != nil {
				return errors.Wrapf(err, "reading attributes of %s%s in %s", l.path, name, l.d.nameB)
			}
		}
		if va, vb := valuesA[k], valuesB[k]; !attrValuesEqual(va, vb) {
			l.emit(&Record{Kind: DKAttrValue, Path: l.path, Name: name, Attr: k, A: va, B: vb})
		}
	}
	return nil
}

func attributeValues(o container.Object) (map[string]interface{}, error) {
	attrs, err := o.Attributes()
	if err != nil {
		return nil, err
	}
	vals := make(map[string]interface{}, len(attrs))
	for _, a := range attrs {
		vals[a.Name] = a.Value
	}
	return vals, nil
}
