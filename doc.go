// Package h5diff compares two hierarchical data containers and reports every
// structural and content difference between them. It's intended for
// validating that two versions of a simulation output container are
// equivalent after a code change, format migration or regression run.
//
// Containers hold nested named groups, typed multi-dimensional datasets, and
// per-object key/value attributes. h5diff reads them through the interfaces
// in the container package, so any backend that can enumerate groups,
// datasets and attributes can be compared. The docfile package provides a
// backend for containers described as YAML or JSON documents.
//
// Both containers are walked in lock-step, depth first, starting at the root
// group "/". At each level the direct children of both groups are summarized
// and compared:
//
//   1. names present on only one side are reported
//   2. for names present on both sides, in the order the first container
//      lists them: objects of different kinds are reported and skipped.
//      datasets have their element types, shapes, values and attributes
//      compared. values are only compared when shapes agree, and are
//      compared exactly, without tolerance
//   3. groups present on both sides have their attribute names compared and
//      are then descended into
//   4. at the root, the root group's own attributes are compared
//
// Every difference is a Record tagged with a DiffKind. Records are streamed
// to a Reporter as they're found and collected in the Result.
//
// Records carry the path of the level that produced them, not the path
// being walked when they're reported. A group's attribute names are checked
// by its parent level right before descending into it, so after a sibling's
// subtree the text report prints the parent's "Examining" header again for
// them. The root's own attribute records come last, under a repeated
// "Examining /" header.
//
// A child that is neither a group nor a dataset aborts the comparison with
// an *UnrecognizedKindError, as comparing it has no defined meaning.
package h5diff
