package game

import (
	"context"
	"testing"

	"bossfight/logging"
	"bossfight/logging/sinks"
)

var (
	teacher = logging.EntityRef{ID: "teacher", Kind: logging.EntityKindTeacher}
	boss    = logging.EntityRef{ID: "stage-1", Kind: logging.EntityKindBoss}
)

func TestAwardAppliedAddsDefeatEvent(t *testing.T) {
	sink := sinks.NewMemorySink()

	AwardApplied(context.Background(), sink, 4, teacher, boss, AwardPayload{Amount: 55, Damage: 5, HP: 95, MaxHP: 100, Level: 1})
	if got := len(sink.Events()); got != 1 {
		t.Fatalf("expected 1 event for a non-lethal award, got %d", got)
	}

	AwardApplied(context.Background(), sink, 5, teacher, boss, AwardPayload{Amount: 1000, Damage: 100, HP: 0, MaxHP: 100, Level: 1, Defeated: true})
	defeats := sink.OfType(EventBossDefeated)
	if len(defeats) != 1 {
		t.Fatalf("expected one defeat event, got %d", len(defeats))
	}
	if defeats[0].Version != 5 || defeats[0].Targets[0] != boss || defeats[0].Category != logging.CategoryGame {
		t.Fatalf("unexpected defeat event %+v", defeats[0])
	}
}

func TestHelpersSetSeverityAndVersion(t *testing.T) {
	sink := sinks.NewMemorySink()
	ctx := context.Background()

	AwardRejected(ctx, sink, teacher, RejectedPayload{Reason: "invalid input"})
	StageAdvanced(ctx, sink, 7, teacher, AdvancePayload{From: 1, To: 2, Stage: 2, Boss: "Golem", MaxHP: 150})
	AdvanceRejected(ctx, sink, 8, teacher, RejectedPayload{Level: 4, Reason: "already final"})
	GameReset(ctx, sink, 9, teacher, ResetPayload{Level: 1, MaxHP: 100})

	events := sink.Events()
	want := []struct {
		typ      logging.EventType
		severity logging.Severity
		version  uint64
	}{
		{EventAwardRejected, logging.SeverityWarn, 0},
		{EventStageAdvanced, logging.SeverityInfo, 7},
		{EventAdvanceRejected, logging.SeverityWarn, 8},
		{EventGameReset, logging.SeverityInfo, 9},
	}
	if len(events) != len(want) {
		t.Fatalf("expected %d events, got %d", len(want), len(events))
	}
	for i, w := range want {
		if events[i].Type != w.typ || events[i].Severity != w.severity || events[i].Version != w.version {
			t.Fatalf("event %d = %s/%v/v%d, want %s/%v/v%d", i, events[i].Type, events[i].Severity, events[i].Version, w.typ, w.severity, w.version)
		}
	}
}

func TestHelpersTolerateNilPublisher(t *testing.T) {
	AwardApplied(context.Background(), nil, 1, teacher, boss, AwardPayload{Defeated: true})
	GameReset(context.Background(), nil, 1, teacher, ResetPayload{})
}
