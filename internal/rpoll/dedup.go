package rpoll

import "time"

// stopKey identifies a stop by its innermost frame, the cheapest
// signal that distinguishes "the same stop reported twice" from "a new
// stop that happens to reuse a line number".
type stopKey struct {
	Presentation string
	Line         int
}

// dedupWindow suppresses a callStackFormed that repeats the
// immediately preceding stop within a short window, which otherwise
// double-fires when the immediate post-step pings race the polling
// loop.
type dedupWindow struct {
	window time.Duration
	last   stopKey
	at     time.Time
	armed  bool
}

func newDedupWindow(window time.Duration) *dedupWindow {
	return &dedupWindow{window: window}
}

// observe reports whether this stop is a duplicate of the last one
// seen within the window, and records it as the new "last" regardless
// (a duplicate still refreshes the window, matching repeated identical
// reports rather than just the first pair).
func (d *dedupWindow) observe(key stopKey, now time.Time) (isDuplicate bool) {
	if d.armed && key == d.last && now.Sub(d.at) < d.window {
		isDuplicate = true
	}
	d.last = key
	d.at = now
	d.armed = true
	return isDuplicate
}
