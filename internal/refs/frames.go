package refs

// frameHandleBase and frameHandleStride implement the frame-handle
// encoding contract: handle = threadId*10000 + 1000 + frameIndex. The
// +1000 offset keeps frame handles out of the low range reserved for
// scope/variable handles issued by Registry.
const (
	frameHandleStride = 10000
	frameHandleBase   = 1000
)

// EncodeFrameHandle packs (threadId, frameIndex) into the handle
// value sent as a StackFrame.id in a stackTrace response.
func EncodeFrameHandle(threadID, frameIndex int) int {
	return threadID*frameHandleStride + frameHandleBase + frameIndex
}

// DecodeFrameHandle recovers (threadId, frameIndex) from a frame
// handle. It is the exact inverse of EncodeFrameHandle.
func DecodeFrameHandle(handle int) (threadID, frameIndex int) {
	rem := handle - frameHandleBase
	threadID = rem / frameHandleStride
	frameIndex = rem % frameHandleStride
	return threadID, frameIndex
}
