// Package emit resolves artifact output locations and writes serialized
// schema documents to disk.
//
// Every resolved path is canonicalized and checked to stay inside the
// applicable root (the source repository root, or the override root when
// one is given) before anything touches the filesystem. Writes are
// all-or-nothing per file, and two declarations resolving to the same
// output path is a conflict, never a silent overwrite.
package emit
