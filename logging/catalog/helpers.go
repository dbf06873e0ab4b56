package catalog

import (
	"context"

	"bossfight/logging"
)

const (
	// EventReloaded is emitted after the stage catalog file is picked up again.
	EventReloaded logging.EventType = "catalog.reloaded"
	// EventReloadFailed is emitted when a changed catalog file is rejected and
	// the previous roster stays active.
	EventReloadFailed logging.EventType = "catalog.reload_failed"
)

// ReloadPayload identifies the catalog file and the resulting roster size.
type ReloadPayload struct {
	Path   string `json:"path"`
	Stages int    `json:"stages,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Reloaded publishes an info event for an accepted catalog reload.
func Reloaded(ctx context.Context, pub logging.Publisher, payload ReloadPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventReloaded,
		Actor:    logging.EntityRef{ID: payload.Path, Kind: logging.EntityKindCatalog},
		Severity: logging.SeverityInfo,
		Category: logging.CategorySystem,
		Payload:  payload,
	})
}

// ReloadFailed publishes a warning for a rejected catalog reload.
func ReloadFailed(ctx context.Context, pub logging.Publisher, payload ReloadPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventReloadFailed,
		Actor:    logging.EntityRef{ID: payload.Path, Kind: logging.EntityKindCatalog},
		Severity: logging.SeverityWarn,
		Category: logging.CategorySystem,
		Payload:  payload,
	})
}
