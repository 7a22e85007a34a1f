package rpoll

import "time"

// targetThrottle tracks, per target, the last time a pingDBGTGT was
// sent and the most recent rteProcVersion the server echoed back, so
// the caller can include it on the next ping.
type targetThrottle struct {
	lastSent       map[string]time.Time
	rteProcVersion map[string]string
}

func newTargetThrottle() *targetThrottle {
	return &targetThrottle{
		lastSent:       map[string]time.Time{},
		rteProcVersion: map[string]string{},
	}
}

// shouldSend reports whether enough time has passed since the last
// ping to this target to send another one now.
func (t *targetThrottle) shouldSend(targetID string, now time.Time, minInterval time.Duration) bool {
	last, ok := t.lastSent[targetID]
	if !ok {
		return true
	}
	return now.Sub(last) >= minInterval
}

func (t *targetThrottle) recordSent(targetID string, now time.Time) {
	t.lastSent[targetID] = now
}

func (t *targetThrottle) recordVersion(targetID, version string) {
	if version != "" {
		t.rteProcVersion[targetID] = version
	}
}

func (t *targetThrottle) version(targetID string) string {
	return t.rteProcVersion[targetID]
}

func (t *targetThrottle) forget(targetID string) {
	delete(t.lastSent, targetID)
	delete(t.rteProcVersion, targetID)
}
