package refs

import "github.com/rdbg-bridge/rdbg-dap/internal/rdbgxml"

// LocalsEntry identifies a "locals" scope handle: the (threadId,
// frameIndex) pair to evaluate local variables against.
type LocalsEntry struct {
	ThreadID   int
	FrameIndex int
}

// VariableEntry identifies an expanded-evaluation children handle: the
// expression path that reached this node, the owning frame, and an
// optional cache of already-decoded children (populated once the
// evaluation engine resolves them, so repeated `variables` requests
// for the same node don't re-issue evalExpr).
type VariableEntry struct {
	Path       string
	ThreadID   int
	FrameIndex int
	Children   []rdbgxml.EvalChild
}

// Registry is a single monotonic handle dispenser shared by the
// scopes and variables DAP requests. It is owned by exactly one
// goroutine per session (the DAP dispatch loop), so unlike a
// multi-threaded adapter's reference table it needs no mutex.
type Registry struct {
	next int

	locals    map[int]*LocalsEntry
	variables map[int]*VariableEntry
}

// NewRegistry creates an empty Registry. Handles start at 1 since DAP
// reserves 0 to mean "no children".
func NewRegistry() *Registry {
	return &Registry{
		next:      1,
		locals:    map[int]*LocalsEntry{},
		variables: map[int]*VariableEntry{},
	}
}

// NewLocals issues a handle for a locals scope at (threadId, frameIndex).
func (r *Registry) NewLocals(threadID, frameIndex int) int {
	h := r.alloc()
	r.locals[h] = &LocalsEntry{ThreadID: threadID, FrameIndex: frameIndex}
	return h
}

// NewVariable issues a handle for an expandable variable node.
func (r *Registry) NewVariable(path string, threadID, frameIndex int) int {
	h := r.alloc()
	r.variables[h] = &VariableEntry{Path: path, ThreadID: threadID, FrameIndex: frameIndex}
	return h
}

// Locals returns the locals entry for handle, if any.
func (r *Registry) Locals(handle int) (*LocalsEntry, bool) {
	e, ok := r.locals[handle]
	return e, ok
}

// Variable returns the variable-node entry for handle, if any.
func (r *Registry) Variable(handle int) (*VariableEntry, bool) {
	e, ok := r.variables[handle]
	return e, ok
}

// CacheChildren attaches decoded children to an already-issued
// variable handle.
func (r *Registry) CacheChildren(handle int, children []rdbgxml.EvalChild) {
	if e, ok := r.variables[handle]; ok {
		e.Children = children
	}
}

// Clear resets both tables; the handle counter keeps counting. Called
// whenever the stack is invalidated: on every step or continue, and when
// a new stop replaces a thread's stack.
func (r *Registry) Clear() {
	r.locals = map[int]*LocalsEntry{}
	r.variables = map[int]*VariableEntry{}
}

func (r *Registry) alloc() int {
	h := r.next
	r.next++
	return h
}
