package pipeline

import (
	"context"
	"log/slog"

	"github.com/Mati018/website-search/pkg/natsutil"

	"github.com/nats-io/nats.go"
)

// NATS subjects for pipeline lifecycle events.
const (
	SubjectSearchCompleted    = "search.completed"
	SubjectCollectionsCleared = "search.collections.cleared"
)

// SearchCompletedEvent is published after every successful search request.
type SearchCompletedEvent struct {
	Website string  `json:"website"`
	Query   string  `json:"query"`
	Pages   int     `json:"pages"`
	Chunks  int     `json:"chunks"`
	Elapsed float64 `json:"elapsed_seconds"`
}

// CollectionsClearedEvent is published after an administrative sweep.
type CollectionsClearedEvent struct {
	Deleted int `json:"deleted"`
}

// Events publishes pipeline lifecycle events to NATS. A nil *Events is a
// valid no-op publisher, for deployments without a broker. Publishing is
// fire-and-forget: failures are logged, never surfaced.
type Events struct {
	nc     *nats.Conn
	logger *slog.Logger
}

// NewEvents creates an event publisher over an established connection.
func NewEvents(nc *nats.Conn, logger *slog.Logger) *Events {
	if logger == nil {
		logger = slog.Default()
	}
	return &Events{nc: nc, logger: logger}
}

// SearchCompleted publishes a SearchCompletedEvent.
func (e *Events) SearchCompleted(ctx context.Context, ev SearchCompletedEvent) {
	if e == nil {
		return
	}
	if err := natsutil.Publish(ctx, e.nc, SubjectSearchCompleted, ev); err != nil {
		e.logger.Warn("event publish failed", "subject", SubjectSearchCompleted, "err", err)
	}
}

// CollectionsCleared publishes a CollectionsClearedEvent.
func (e *Events) CollectionsCleared(ctx context.Context, ev CollectionsClearedEvent) {
	if e == nil {
		return
	}
	if err := natsutil.Publish(ctx, e.nc, SubjectCollectionsCleared, ev); err != nil {
		e.logger.Warn("event publish failed", "subject", SubjectCollectionsCleared, "err", err)
	}
}
