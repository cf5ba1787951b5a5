// Package schema holds the GTS declaration model and the composition
// engine that turns declarations into JSON Schema artifacts.
//
// The pipeline is: build a Registry over a batch of declarations, run
// Validate on each declaration, then ComposeOne (or ComposeChain for a
// nested generic hierarchy) and render the artifact for emission.
// Composition is pure: the same declarations always produce the same
// artifact, so independent declarations can be composed in parallel
// against the read-only registry.
package schema
