// Package rpoll implements the adaptive ping loop that discovers
// targetStarted/targetQuit/callStackFormed/exprEvaluated events from
// the RDBG server and delivers them to the session orchestrator on a
// channel, along with the supporting per-target throttle, dedup
// window, immediate post-step ping schedule and exprEvaluated store.
package rpoll
