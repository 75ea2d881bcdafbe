package store

import (
	"fmt"
	"strings"
)

// Object layout mirrors the processing pipeline's bucket layout.
const (
	processedPrefix  = "processed"
	metadataFilename = "session_metadata.json"
	analysisFilename = "gpt_output.json"
	reasoningFile    = "reasoning.txt"

	// KnowledgeBaseKey is where the aggregated knowledge base lives.
	KnowledgeBaseKey = "knowledge/base.json"
)

// ProcessedPrefix returns the key prefix covering all processing sessions.
func ProcessedPrefix() string {
	return processedPrefix + "/"
}

// SessionIDFromKey extracts the processing session id from a session-scoped
// key, or returns "" for keys outside the processed layout.
func SessionIDFromKey(key string) string {
	rest, ok := strings.CutPrefix(key, ProcessedPrefix())
	if !ok {
		return ""
	}
	id, _, ok := strings.Cut(rest, "/")
	if !ok {
		return ""
	}
	return id
}

// SessionPrefix returns the key prefix for one processing session.
func SessionPrefix(diveSessionID string) string {
	return fmt.Sprintf("%s/%s/", processedPrefix, diveSessionID)
}

// MetadataKey returns the key of a session's metadata document.
func MetadataKey(diveSessionID string) string {
	return SessionPrefix(diveSessionID) + metadataFilename
}

// AnalysisKey returns the key of a session's analysis document.
func AnalysisKey(diveSessionID string) string {
	return SessionPrefix(diveSessionID) + analysisFilename
}

// ReasoningKey returns the key of a session's raw model reasoning text.
func ReasoningKey(diveSessionID string) string {
	return SessionPrefix(diveSessionID) + reasoningFile
}

// IsMetadataKey reports whether key names a session metadata document.
func IsMetadataKey(key string) bool {
	return len(key) > len(metadataFilename) && key[len(key)-len(metadataFilename):] == metadataFilename
}
