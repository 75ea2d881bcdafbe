// Package knowledge aggregates per-session pipeline output into a dive
// knowledge base keyed by dive identity.
package knowledge

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/reefbound/diveagent/src/divelog"
	"github.com/reefbound/diveagent/src/store"
)

// Sighting is one confirmed species observation within a dive.
type Sighting struct {
	Name          string  `json:"name"`
	Confidence    float64 `json:"confidence"`
	Description   string  `json:"description"`
	ImageURL      string  `json:"image_url"`
	VideoFilename string  `json:"video_filename"`
	SourceKey     string  `json:"s3_key"`
	SessionID     string  `json:"session_id"`
}

// Dive groups every processing session that belongs to the same physical
// dive, identified by date plus dive number.
type Dive struct {
	DiveDate     string     `json:"dive_date"`
	DiveNumber   int        `json:"dive_number"`
	DiveLocation string     `json:"dive_location,omitempty"`
	Sessions     []string   `json:"sessions"`
	SpeciesSeen  []Sighting `json:"species_seen"`
}

// Base is the aggregated knowledge base document.
type Base struct {
	Dives map[string]*Dive `json:"dives"`
}

// DiveID derives the grouping key for a dated, numbered dive.
func DiveID(date string, number int) string {
	return fmt.Sprintf("%s_#%d", date, number)
}

// Builder scans the object store and assembles the knowledge base.
type Builder struct {
	objects store.ObjectStore
	logger  *slog.Logger
}

// NewBuilder creates a knowledge base builder over the given store.
func NewBuilder(objects store.ObjectStore, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{
		objects: objects,
		logger:  logger.With("component", "knowledge_builder"),
	}
}

// Build walks every session metadata document and aggregates the complete,
// identified sightings into a Base. Sessions missing dive identity, sessions
// whose analysis found nothing recognizable, and duplicate uploads of the
// same source video are skipped. Per-session failures are logged and
// skipped, never fatal.
func (b *Builder) Build(ctx context.Context) (*Base, error) {
	keys, err := b.objects.List(ctx, store.ProcessedPrefix())
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	kb := &Base{Dives: map[string]*Dive{}}
	seenSources := map[string]bool{}
	count := 0

	for _, key := range keys {
		if !store.IsMetadataKey(key) {
			continue
		}
		count++
		if err := b.addSession(ctx, kb, seenSources, key); err != nil {
			b.logger.Error("skipping session", "key", key, "error", err)
		}
	}

	b.logger.Info("knowledge base assembled", "sessions", count, "dives", len(kb.Dives))
	return kb, nil
}

func (b *Builder) addSession(ctx context.Context, kb *Base, seenSources map[string]bool, metaKey string) error {
	raw, err := b.objects.Get(ctx, metaKey)
	if err != nil {
		return fmt.Errorf("failed to load metadata: %w", err)
	}
	var meta divelog.Metadata
	if err := json.Unmarshal(raw, &meta); err != nil {
		return fmt.Errorf("failed to decode metadata: %w", err)
	}

	if meta.SourceKey == "" || seenSources[meta.SourceKey] {
		b.logger.Debug("skipping duplicate video", "s3_key", meta.SourceKey)
		return nil
	}
	seenSources[meta.SourceKey] = true

	if meta.DiveDate == "" || meta.DiveNumber == nil {
		b.logger.Debug("skipping session without dive info", "key", metaKey)
		return nil
	}

	sessionID := meta.SessionID
	if sessionID == "" {
		sessionID = store.SessionIDFromKey(metaKey)
	}

	analysis, err := b.loadAnalysis(ctx, sessionID)
	if err != nil {
		return err
	}
	if analysis.Animal == "" || strings.EqualFold(analysis.Animal, "unknown") {
		return nil
	}

	imageURL := matchFrameURL(meta.FrameURLs, analysis.Filename)
	if imageURL == "" {
		b.logger.Warn("no matching frame for analysis",
			"filename", analysis.Filename, "session_id", sessionID)
		return nil
	}

	diveID := DiveID(meta.DiveDate, *meta.DiveNumber)
	dive, ok := kb.Dives[diveID]
	if !ok {
		dive = &Dive{
			DiveDate:     meta.DiveDate,
			DiveNumber:   *meta.DiveNumber,
			DiveLocation: meta.DiveLocation,
			Sessions:     []string{},
			SpeciesSeen:  []Sighting{},
		}
		kb.Dives[diveID] = dive
	}

	for _, seen := range dive.Sessions {
		if seen == sessionID {
			return nil
		}
	}
	dive.Sessions = append(dive.Sessions, sessionID)
	dive.SpeciesSeen = append(dive.SpeciesSeen, Sighting{
		Name:          analysis.Animal,
		Confidence:    analysis.Confidence,
		Description:   analysis.Description,
		ImageURL:      imageURL,
		VideoFilename: meta.VideoFilename,
		SourceKey:     meta.SourceKey,
		SessionID:     sessionID,
	})
	return nil
}

func (b *Builder) loadAnalysis(ctx context.Context, sessionID string) (*divelog.Analysis, error) {
	raw, err := b.objects.Get(ctx, store.AnalysisKey(sessionID))
	if err != nil {
		return nil, fmt.Errorf("failed to load analysis: %w", err)
	}
	var analysis divelog.Analysis
	if err := json.Unmarshal(raw, &analysis); err != nil {
		return nil, fmt.Errorf("failed to decode analysis: %w", err)
	}
	return &analysis, nil
}

// matchFrameURL finds the frame URL referencing the analyzed filename.
func matchFrameURL(frameURLs []string, filename string) string {
	if filename == "" {
		return ""
	}
	for _, url := range frameURLs {
		if strings.Contains(url, filename) {
			return url
		}
	}
	return ""
}

// Save persists the knowledge base document to its well-known key.
func (b *Builder) Save(ctx context.Context, kb *Base) error {
	body, err := json.MarshalIndent(kb, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode knowledge base: %w", err)
	}
	if err := b.objects.Put(ctx, store.KnowledgeBaseKey, body); err != nil {
		return fmt.Errorf("failed to store knowledge base: %w", err)
	}
	b.logger.Info("knowledge base saved", "key", store.KnowledgeBaseKey, "bytes", len(body))
	return nil
}

// DiveIDs returns the grouping keys in sorted order, for stable CLI output.
func (kb *Base) DiveIDs() []string {
	ids := make([]string, 0, len(kb.Dives))
	for id := range kb.Dives {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
