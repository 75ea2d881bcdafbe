package diveagent

import "strings"

// System-triggered conversation events. The backend injects these as user
// messages; the assistant reacts to them but never emits them.
const (
	SystemEventPrefix       = "[SYSTEM_EVENT]"
	EventStartConversation  = SystemEventPrefix + " start_conversation"
	EventVideoUploaded      = SystemEventPrefix + " video_uploaded"
)

// IsSystemEvent reports whether a message is a backend event rather than
// diver input. UIs skip these when rendering the transcript.
func IsSystemEvent(content string) bool {
	return strings.HasPrefix(content, SystemEventPrefix)
}
