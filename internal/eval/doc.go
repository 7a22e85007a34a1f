// Package eval implements expression evaluation and local-variable
// fetch against the RDBG server: a retry-and-poll state machine over
// evalExpr/evalLocalVariables, a never-overwrite-on-empty result
// cache, container-shape fallbacks for dictionary and value-table
// types, and a watch-concurrency throttle.
package eval
