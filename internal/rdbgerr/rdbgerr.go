// Package rdbgerr centralizes the string-matching rules against RDBG
// server error bodies that would otherwise be inlined ad hoc by every
// caller: the "only while stopped" retry trigger and the attachDebugUI
// failure-reason table. Transport-level error classification lives in
// internal/transport (errkind.go).
package rdbgerr

import "strings"

// onlyWhileStoppedPatterns are the server error substrings that mean
// "retry once the target is stopped" rather than "this call failed".
var onlyWhileStoppedPatterns = []string{
	"только в режиме останова",
	"only while stopped",
	"only in break mode",
}

// IsOnlyWhileStopped reports whether body names the "only while
// stopped" condition.
func IsOnlyWhileStopped(body string) bool {
	for _, p := range onlyWhileStoppedPatterns {
		if strings.Contains(body, p) {
			return true
		}
	}
	return false
}

// AttachReason is a classified attachDebugUI failure reason.
type AttachReason string

const (
	AttachRegistered          AttachReason = "registered"
	AttachCredentialsRequired AttachReason = "credentialsRequired"
	AttachInfoBaseInDebug     AttachReason = "ibInDebug"
	AttachNotRegistered       AttachReason = "notRegistered"
	AttachUnknown             AttachReason = "unknown"
)

// attachReasonPatterns maps substrings of the attachDebugUI textual
// result to the classified reason. The first matching entry wins, so
// "not registered" is listed before "registered", which it contains.
var attachReasonPatterns = []struct {
	Substr string
	Reason AttachReason
}{
	{"not registered", AttachNotRegistered},
	{"registered", AttachRegistered},
	{"credentials", AttachCredentialsRequired},
	{"учетные данные", AttachCredentialsRequired},
	{"already in debug", AttachInfoBaseInDebug},
	{"уже отлаживается", AttachInfoBaseInDebug},
}

// ClassifyAttachResult maps the raw attachDebugUI result text to an
// AttachReason.
func ClassifyAttachResult(result string) AttachReason {
	lower := strings.ToLower(result)
	for _, p := range attachReasonPatterns {
		if strings.Contains(lower, strings.ToLower(p.Substr)) {
			return p.Reason
		}
	}
	return AttachUnknown
}
