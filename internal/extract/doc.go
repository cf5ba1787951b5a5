// Package extract scans Go source trees for annotated struct declarations.
//
// A struct participates when its doc comment carries a gts:schema directive
// block. The scanner parses each file once, translates the struct's fields
// into the core field-type model, and yields fully populated declarations
// in file order. The core packages never re-parse source text.
//
// Key types:
//   - Scanner: walks a root directory, honoring exclude globs
//   - Directive: the parsed gts:schema attribute block
//   - Result: declarations, extraction diagnostics, and scan statistics
package extract
