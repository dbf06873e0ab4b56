package persistence

import (
	"context"
	"testing"

	"bossfight/logging"
	"bossfight/logging/sinks"
)

func TestSaveFailedAndLoadFallback(t *testing.T) {
	sink := sinks.NewMemorySink()
	payload := FailurePayload{Backend: "file", Op: "save", Error: "disk full"}

	SaveFailed(context.Background(), sink, 3, payload)
	LoadFallback(context.Background(), sink, FailurePayload{Backend: "sqlite", Op: "load", Error: "corrupt"})

	events := sink.Events()
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Type != EventSaveFailed || events[0].Severity != logging.SeverityError || events[0].Version != 3 {
		t.Fatalf("unexpected save failure event %+v", events[0])
	}
	if events[0].Actor.ID != "file" || events[0].Actor.Kind != logging.EntityKindStore {
		t.Fatalf("expected store actor, got %+v", events[0].Actor)
	}
	if events[1].Type != EventLoadFallback || events[1].Severity != logging.SeverityWarn || events[1].Category != logging.CategoryPersistence {
		t.Fatalf("unexpected fallback event %+v", events[1])
	}
}
