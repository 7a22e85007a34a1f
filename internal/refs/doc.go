// Package refs issues and resolves the opaque integer handles the DAP
// client uses to address stack frames and variable nodes, and owns
// the threadId<->frame handle encoding contract with stackTrace
// responses.
package refs
