package knowledge

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reefbound/diveagent/src/divelog"
	"github.com/reefbound/diveagent/src/store"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type sessionDoc struct {
	id       string
	date     string
	number   int
	location string
	source   string
	animal   string
}

func putSession(t *testing.T, objects store.ObjectStore, doc sessionDoc) {
	t.Helper()
	ctx := context.Background()

	frame := fmt.Sprintf("https://frames.example/%s/frame1.jpg", doc.id)
	meta := divelog.Metadata{
		SessionID:     doc.id,
		VideoFilename: doc.id + ".mp4",
		SourceKey:     doc.source,
		DiveLocation:  doc.location,
		FrameURLs:     []string{frame},
	}
	if doc.date != "" {
		meta.DiveDate = doc.date
		n := doc.number
		meta.DiveNumber = &n
	}
	body, err := json.Marshal(meta)
	require.NoError(t, err)
	require.NoError(t, objects.Put(ctx, store.MetadataKey(doc.id), body))

	analysis := divelog.Analysis{
		Filename:    "frame1.jpg",
		Animal:      doc.animal,
		Description: "seen near the reef",
		Confidence:  0.9,
	}
	body, err = json.Marshal(analysis)
	require.NoError(t, err)
	require.NoError(t, objects.Put(ctx, store.AnalysisKey(doc.id), body))
}

func TestBuildGroupsSessionsByDive(t *testing.T) {
	objects := store.NewFileStore(afero.NewMemMapFs(), "/objects")
	putSession(t, objects, sessionDoc{id: "s1", date: "2024-03-01", number: 1, location: "Blue Hole", source: "dives/a.mp4", animal: "sea turtle"})
	putSession(t, objects, sessionDoc{id: "s2", date: "2024-03-01", number: 1, location: "Blue Hole", source: "dives/b.mp4", animal: "manta ray"})
	putSession(t, objects, sessionDoc{id: "s3", date: "2024-03-02", number: 1, location: "West Reef", source: "dives/c.mp4", animal: "clownfish"})

	kb, err := NewBuilder(objects, discardLogger()).Build(context.Background())
	require.NoError(t, err)

	require.Len(t, kb.Dives, 2)
	assert.Equal(t, []string{"2024-03-01_#1", "2024-03-02_#1"}, kb.DiveIDs())

	dive := kb.Dives["2024-03-01_#1"]
	require.NotNil(t, dive)
	assert.Equal(t, "Blue Hole", dive.DiveLocation)
	assert.ElementsMatch(t, []string{"s1", "s2"}, dive.Sessions)
	require.Len(t, dive.SpeciesSeen, 2)
}

func TestBuildSkipsIncompleteAndUnknown(t *testing.T) {
	objects := store.NewFileStore(afero.NewMemMapFs(), "/objects")
	putSession(t, objects, sessionDoc{id: "ok", date: "2024-03-01", number: 1, location: "Blue Hole", source: "dives/a.mp4", animal: "sea turtle"})
	putSession(t, objects, sessionDoc{id: "untagged", source: "dives/b.mp4", animal: "manta ray"})
	putSession(t, objects, sessionDoc{id: "nothing", date: "2024-03-01", number: 2, location: "Blue Hole", source: "dives/c.mp4", animal: "unknown"})
	putSession(t, objects, sessionDoc{id: "blank", date: "2024-03-01", number: 3, location: "Blue Hole", source: "dives/d.mp4", animal: ""})

	kb, err := NewBuilder(objects, discardLogger()).Build(context.Background())
	require.NoError(t, err)

	require.Len(t, kb.Dives, 1)
	assert.NotNil(t, kb.Dives["2024-03-01_#1"])
}

func TestBuildSkipsDuplicateSources(t *testing.T) {
	objects := store.NewFileStore(afero.NewMemMapFs(), "/objects")
	putSession(t, objects, sessionDoc{id: "s1", date: "2024-03-01", number: 1, location: "Blue Hole", source: "dives/same.mp4", animal: "sea turtle"})
	putSession(t, objects, sessionDoc{id: "s2", date: "2024-03-01", number: 1, location: "Blue Hole", source: "dives/same.mp4", animal: "sea turtle"})

	kb, err := NewBuilder(objects, discardLogger()).Build(context.Background())
	require.NoError(t, err)

	dive := kb.Dives["2024-03-01_#1"]
	require.NotNil(t, dive)
	assert.Len(t, dive.Sessions, 1)
	assert.Len(t, dive.SpeciesSeen, 1)
}

func TestBuildSurvivesBrokenSession(t *testing.T) {
	objects := store.NewFileStore(afero.NewMemMapFs(), "/objects")
	ctx := context.Background()

	putSession(t, objects, sessionDoc{id: "ok", date: "2024-03-01", number: 1, location: "Blue Hole", source: "dives/a.mp4", animal: "sea turtle"})
	require.NoError(t, objects.Put(ctx, store.MetadataKey("broken"), []byte("not json")))

	kb, err := NewBuilder(objects, discardLogger()).Build(ctx)
	require.NoError(t, err)
	assert.Len(t, kb.Dives, 1)
}

func TestSaveWritesKnowledgeBase(t *testing.T) {
	objects := store.NewFileStore(afero.NewMemMapFs(), "/objects")
	putSession(t, objects, sessionDoc{id: "s1", date: "2024-03-01", number: 1, location: "Blue Hole", source: "dives/a.mp4", animal: "sea turtle"})

	ctx := context.Background()
	builder := NewBuilder(objects, discardLogger())
	kb, err := builder.Build(ctx)
	require.NoError(t, err)
	require.NoError(t, builder.Save(ctx, kb))

	body, err := objects.Get(ctx, store.KnowledgeBaseKey)
	require.NoError(t, err)

	var stored Base
	require.NoError(t, json.Unmarshal(body, &stored))
	require.Len(t, stored.Dives, 1)
	assert.Equal(t, "sea turtle", stored.Dives["2024-03-01_#1"].SpeciesSeen[0].Name)
}
