// Package gtsid implements the GTS identifier grammar.
//
// A GTS schema identifier is an ordered chain of versioned segments:
//
//	gts.<vendor>.<package>.<namespace>.<type>.v<major>[.<minor>]~[...]
//
// Multi-segment identifiers encode inheritance chains: each appended
// segment names a type derived from the chain before it. An instance
// identifier is a schema identifier followed by an opaque instance
// segment.
//
// Key capabilities:
//   - Parse / format with an exact round-trip guarantee
//   - Instance identifier composition and decomposition
//   - Wildcard pattern matching (e.g. "gts.x.core.events.*")
//   - Deterministic UUID derivation for identifiers
package gtsid
