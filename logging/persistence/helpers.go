package persistence

import (
	"context"

	"bossfight/logging"
)

const (
	// EventSaveFailed is emitted when the game record could not be written.
	EventSaveFailed logging.EventType = "persistence.save_failed"
	// EventLoadFallback is emitted when a stored record was unreadable and
	// the default record was used instead.
	EventLoadFallback logging.EventType = "persistence.load_fallback"
)

// FailurePayload identifies the backend and the underlying error.
type FailurePayload struct {
	Backend string `json:"backend"`
	Op      string `json:"op"`
	Error   string `json:"error"`
}

// SaveFailed publishes an error event for a write that did not land.
func SaveFailed(ctx context.Context, pub logging.Publisher, version uint64, payload FailurePayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventSaveFailed,
		Version:  version,
		Actor:    logging.EntityRef{ID: payload.Backend, Kind: logging.EntityKindStore},
		Severity: logging.SeverityError,
		Category: logging.CategoryPersistence,
		Payload:  payload,
	})
}

// LoadFallback publishes a warning when a read fell back to defaults.
func LoadFallback(ctx context.Context, pub logging.Publisher, payload FailurePayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventLoadFallback,
		Actor:    logging.EntityRef{ID: payload.Backend, Kind: logging.EntityKindStore},
		Severity: logging.SeverityWarn,
		Category: logging.CategoryPersistence,
		Payload:  payload,
	})
}
