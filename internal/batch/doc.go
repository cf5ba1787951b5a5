// Package batch drives a full generation run: scan, register, validate,
// compose, emit.
//
// One failing declaration never stops its siblings; failures are collected
// per declaration and reported together. The exceptions are registry-level
// problems (duplicate names, unresolvable parents, inheritance cycles),
// which poison every chain they touch and abort the run.
package batch
