// Package pipeline provides the client-side view of the video processing
// pipeline: waiting for its output documents to land in the object store.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/reefbound/diveagent/src/divelog"
	"github.com/reefbound/diveagent/src/store"
)

// ErrTimeout is returned when the pipeline produced no metadata document
// within the polling window.
var ErrTimeout = errors.New("timed out waiting for session metadata")

const (
	// DefaultInterval is the delay between store checks.
	DefaultInterval = 3 * time.Second
	// DefaultInitialDelay runs before the first check; the pipeline never
	// finishes faster than this.
	DefaultInitialDelay = 15 * time.Second
	// DefaultTimeout bounds the whole wait.
	DefaultTimeout = 120 * time.Second
)

// Poller waits for pipeline output to appear for a processing session.
type Poller struct {
	objects store.ObjectStore
	logger  *slog.Logger

	Interval     time.Duration
	InitialDelay time.Duration
	Timeout      time.Duration
}

// NewPoller creates a poller with the default timing.
func NewPoller(objects store.ObjectStore, logger *slog.Logger) *Poller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{
		objects:      objects,
		logger:       logger.With("component", "pipeline_poller"),
		Interval:     DefaultInterval,
		InitialDelay: DefaultInitialDelay,
		Timeout:      DefaultTimeout,
	}
}

// WaitForMetadata blocks until the session's metadata document exists and
// returns its parsed contents. It returns ErrTimeout when the window closes
// first, or the context's error when ctx is canceled.
func (p *Poller) WaitForMetadata(ctx context.Context, diveSessionID string) (*divelog.Metadata, error) {
	logger := p.logger.With("dive_session_id", diveSessionID)
	key := store.MetadataKey(diveSessionID)

	ctx, cancel := context.WithTimeout(ctx, p.InitialDelay+p.Timeout)
	defer cancel()

	if err := sleepCtx(ctx, p.InitialDelay); err != nil {
		return nil, err
	}

	for {
		raw, err := p.objects.Get(ctx, key)
		if err == nil {
			var meta divelog.Metadata
			if err := json.Unmarshal(raw, &meta); err != nil {
				return nil, fmt.Errorf("failed to decode metadata: %w", err)
			}
			logger.Info("session metadata available", "key", key)
			return &meta, nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("failed to check metadata: %w", err)
		}

		logger.Debug("metadata not ready, waiting", "interval", p.Interval)
		if err := sleepCtx(ctx, p.Interval); err != nil {
			return nil, err
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return ErrTimeout
		}
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
