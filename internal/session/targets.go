package session

import "github.com/rdbg-bridge/rdbg-dap/internal/rdbgxml"

// targetState is one attached or auto-attach-eligible target, tracked
// by the orchestrator. It is owned by the single DAP dispatch
// goroutine, same as refs.Registry.
type targetState struct {
	Info rdbgxml.TargetInfo

	Attached       bool
	Stopped        bool
	Stack          []rdbgxml.StackFrame
	RteProcVersion string

	ThreadID int
}

// targetSet tracks every target the orchestrator currently knows
// about and implements rpoll.KnownTargets.
type targetSet struct {
	byID    map[string]*targetState
	nextTID int
	idByTID map[int]string
}

func newTargetSet() *targetSet {
	return &targetSet{
		byID:    map[string]*targetState{},
		nextTID: 1,
		idByTID: map[int]string{},
	}
}

func (s *targetSet) upsert(info rdbgxml.TargetInfo) *targetState {
	if t, ok := s.byID[info.ID]; ok {
		t.Info = info
		return t
	}
	t := &targetState{Info: info, ThreadID: s.nextTID}
	s.idByTID[s.nextTID] = info.ID
	s.nextTID++
	s.byID[info.ID] = t
	return t
}

func (s *targetSet) remove(id string) {
	if t, ok := s.byID[id]; ok {
		delete(s.idByTID, t.ThreadID)
		delete(s.byID, id)
	}
}

func (s *targetSet) get(id string) (*targetState, bool) {
	t, ok := s.byID[id]
	return t, ok
}

func (s *targetSet) byThread(threadID int) (*targetState, bool) {
	id, ok := s.idByTID[threadID]
	if !ok {
		return nil, false
	}
	return s.get(id)
}

// AnyStopped reports whether at least one known target is currently
// halted at a breakpoint, satisfying rpoll.KnownTargets.
func (s *targetSet) AnyStopped() bool {
	for _, t := range s.byID {
		if t.Stopped {
			return true
		}
	}
	return false
}

// Count satisfies rpoll.KnownTargets.
func (s *targetSet) Count() int {
	return len(s.byID)
}

// IDs satisfies rpoll.KnownTargets.
func (s *targetSet) IDs() []string {
	ids := make([]string, 0, len(s.byID))
	for id := range s.byID {
		ids = append(ids, id)
	}
	return ids
}

// threads returns every known target as a (threadId, name) pair for
// the DAP threads response, or only the placeholder "Main" thread while
// no target is known yet.
func (s *targetSet) threads() []threadInfo {
	if len(s.byID) == 0 {
		return []threadInfo{{ID: mainThreadID, Name: "Main"}}
	}
	out := make([]threadInfo, 0, len(s.byID))
	for _, t := range s.byID {
		name := t.Info.UserName
		if name == "" {
			name = t.Info.TargetType
		}
		out = append(out, threadInfo{ID: t.ThreadID, Name: name})
	}
	return out
}

type threadInfo struct {
	ID   int
	Name string
}

// mainThreadID is the synthetic thread id reported while no RDBG
// target is known yet.
const mainThreadID = 1
