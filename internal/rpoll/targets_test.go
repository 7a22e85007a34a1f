package rpoll

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTargetThrottleFirstSendAlwaysAllowed(t *testing.T) {
	th := newTargetThrottle()
	assert.True(t, th.shouldSend("t1", time.Now(), time.Second))
}

func TestTargetThrottleSuppressesWithinInterval(t *testing.T) {
	th := newTargetThrottle()
	now := time.Now()
	th.recordSent("t1", now)
	assert.False(t, th.shouldSend("t1", now.Add(500*time.Millisecond), time.Second))
	assert.True(t, th.shouldSend("t1", now.Add(1100*time.Millisecond), time.Second))
}

func TestTargetThrottleTracksVersionPerTarget(t *testing.T) {
	th := newTargetThrottle()
	th.recordVersion("t1", "v1")
	th.recordVersion("t2", "v2")
	assert.Equal(t, "v1", th.version("t1"))
	assert.Equal(t, "v2", th.version("t2"))
	assert.Equal(t, "", th.version("unknown"))
}

func TestTargetThrottleForget(t *testing.T) {
	th := newTargetThrottle()
	th.recordSent("t1", time.Now())
	th.recordVersion("t1", "v1")
	th.forget("t1")
	assert.True(t, th.shouldSend("t1", time.Now(), time.Second))
	assert.Equal(t, "", th.version("t1"))
}
