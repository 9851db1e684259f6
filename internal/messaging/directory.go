package messaging

import (
	"context"
	"time"

	"github.com/placette/messaging/internal/bus"
	"github.com/placette/messaging/internal/wire"
	"go.uber.org/zap"
)

// Directory lists the current user's conversations. Read-only: it never
// refreshes itself when a thread changes; callers re-list explicitly.
type Directory struct {
	gw     Gateway
	bus    *bus.Bus
	logger *zap.Logger
}

// NewDirectory creates a directory over the gateway.
func NewDirectory(gw Gateway, b *bus.Bus, logger *zap.Logger) *Directory {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Directory{gw: gw, bus: b, logger: logger}
}

// List returns the directory ordered by the backend (newest activity first).
// Fails soft: on error it returns an empty slice alongside the error so the
// UI can render an empty list with a notice instead of crashing.
func (d *Directory) List(ctx context.Context) ([]wire.ConversationListing, error) {
	listings, err := d.gw.ListConversations(ctx)
	if err != nil {
		d.logger.Warn("directory refresh failed", zap.Error(err))
		return []wire.ConversationListing{}, err
	}
	if d.bus != nil {
		d.bus.Publish(bus.Event{
			Kind:      "directory.refreshed",
			Timestamp: time.Now(),
			Payload:   DirectoryRefreshed{Count: len(listings)},
		})
	}
	return listings, nil
}

// DirectoryRefreshed is the payload for directory.refreshed events.
type DirectoryRefreshed struct {
	Count int
}
