// Package session holds per-conversation state: the append-only message log,
// the linked processing session, and the structured dive record.
package session

import (
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/reefbound/diveagent/src/aisdk"
	"github.com/reefbound/diveagent/src/divelog"
)

// Tool names referenced by the exposure policy. The tool packages register
// under these same names.
const (
	ToolUpdateDive    = "update_dive_information"
	ToolFetchAnalysis = "fetch_dive_analysis"
)

// Session is the state of one interactive conversation. It lives in process
// memory only; the structured record is persisted externally keyed by the
// processing-session id.
type Session struct {
	ID string

	mu            sync.Mutex
	messages      []*aisdk.Message
	diveSessionID string
	record        divelog.Record
}

// New creates a session with a generated identifier.
func New() *Session {
	return &Session{ID: uuid.New().String()}
}

// Append adds a message to the ordered log. The log is append-only and is
// never rewritten afterwards.
func (s *Session) Append(role, text string) error {
	if !aisdk.ValidRole(role) {
		return &ValidationError{Field: "role", Message: "role must be user, assistant or tool_result", Value: role}
	}
	if strings.TrimSpace(text) == "" {
		return &ValidationError{Field: "content", Message: "message content must be non-empty text"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, &aisdk.Message{Role: role, Content: text})
	return nil
}

// Transcript returns a copy of the ordered message log.
func (s *Session) Transcript() []*aisdk.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*aisdk.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Len returns the number of messages in the log.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.messages)
}

// Link associates a processing session and resets the structured record: a
// new video means prior structured data no longer applies unless reloaded
// from storage.
func (s *Session) Link(diveSessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.diveSessionID = diveSessionID
	s.record = divelog.Record{}
}

// DiveSessionID returns the linked processing-session id, or "".
func (s *Session) DiveSessionID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.diveSessionID
}

// Record returns the current structured record.
func (s *Session) Record() divelog.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.record
}

// SetRecord replaces the structured record. Only successful tool executions
// and reloads of externally stored metadata may call this.
func (s *Session) SetRecord(rec divelog.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record = rec
}

// MetadataComplete reports whether all three record fields are present.
func (s *Session) MetadataComplete() bool {
	return s.Record().Complete()
}

// ExposedTools is the pure exposure policy: no tools before a processing
// session is linked; once linked the metadata tool stays offered regardless
// of completeness, so the diver can correct fields later.
func (s *Session) ExposedTools() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.diveSessionID == "" {
		return nil
	}
	return []string{ToolUpdateDive, ToolFetchAnalysis}
}
