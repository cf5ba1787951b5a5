// Package diagnostic provides structured per-declaration errors and
// warnings for the schema generation pipeline.
//
// Key capabilities:
//   - Validation failures with stable machine-readable codes
//   - Security and conflict reports from the emitter
//   - Aggregation across a whole batch without stopping at the first failure
package diagnostic
