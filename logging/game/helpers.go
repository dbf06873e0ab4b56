package game

import (
	"context"

	"bossfight/logging"
)

const (
	// EventAwardApplied is emitted when a teacher award damages the boss.
	EventAwardApplied logging.EventType = "game.award_applied"
	// EventBossDefeated is emitted when an award drains the boss to zero HP.
	EventBossDefeated logging.EventType = "game.boss_defeated"
	// EventStageAdvanced is emitted when the record moves to the next stage.
	EventStageAdvanced logging.EventType = "game.stage_advanced"
	// EventAdvanceRejected is emitted when the final stage blocks an advance.
	EventAdvanceRejected logging.EventType = "game.advance_rejected"
	// EventAwardRejected is emitted when an award amount fails validation.
	EventAwardRejected logging.EventType = "game.award_rejected"
	// EventGameReset is emitted after the record is reset to defaults.
	EventGameReset logging.EventType = "game.reset"
)

// AwardPayload captures the effect of a single award.
type AwardPayload struct {
	Amount   int64 `json:"amount"`
	Damage   int   `json:"damage"`
	HP       int   `json:"hp"`
	MaxHP    int   `json:"maxHp"`
	Level    int   `json:"level"`
	Defeated bool  `json:"defeated"`
}

// AdvancePayload captures a stage transition.
type AdvancePayload struct {
	From  int    `json:"from"`
	To    int    `json:"to"`
	Stage int    `json:"stage"`
	Boss  string `json:"boss"`
	MaxHP int    `json:"maxHp"`
}

// RejectedPayload describes why an operation was refused.
type RejectedPayload struct {
	Level  int    `json:"level,omitempty"`
	Reason string `json:"reason"`
}

// ResetPayload describes the record produced by a reset.
type ResetPayload struct {
	Level int `json:"level"`
	MaxHP int `json:"maxHp"`
}

// AwardApplied publishes an award event, plus a defeat event when the HP
// pool is exhausted.
func AwardApplied(ctx context.Context, pub logging.Publisher, version uint64, actor, boss logging.EntityRef, payload AwardPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventAwardApplied,
		Version:  version,
		Actor:    actor,
		Targets:  []logging.EntityRef{boss},
		Severity: logging.SeverityInfo,
		Category: logging.CategoryGame,
		Payload:  payload,
	})
	if payload.Defeated {
		pub.Publish(ctx, logging.Event{
			Type:     EventBossDefeated,
			Version:  version,
			Actor:    actor,
			Targets:  []logging.EntityRef{boss},
			Severity: logging.SeverityInfo,
			Category: logging.CategoryGame,
			Payload:  payload,
		})
	}
}

// AwardRejected publishes a warning for an invalid award amount.
func AwardRejected(ctx context.Context, pub logging.Publisher, actor logging.EntityRef, payload RejectedPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventAwardRejected,
		Actor:    actor,
		Severity: logging.SeverityWarn,
		Category: logging.CategoryGame,
		Payload:  payload,
	})
}

// StageAdvanced publishes a stage transition event.
func StageAdvanced(ctx context.Context, pub logging.Publisher, version uint64, actor logging.EntityRef, payload AdvancePayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventStageAdvanced,
		Version:  version,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryGame,
		Payload:  payload,
	})
}

// AdvanceRejected publishes a warning when the final stage blocks an advance.
func AdvanceRejected(ctx context.Context, pub logging.Publisher, version uint64, actor logging.EntityRef, payload RejectedPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventAdvanceRejected,
		Version:  version,
		Actor:    actor,
		Severity: logging.SeverityWarn,
		Category: logging.CategoryGame,
		Payload:  payload,
	})
}

// GameReset publishes a reset event.
func GameReset(ctx context.Context, pub logging.Publisher, version uint64, actor logging.EntityRef, payload ResetPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventGameReset,
		Version:  version,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryGame,
		Payload:  payload,
	})
}
