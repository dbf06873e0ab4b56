package net

import (
	"context"
	"encoding/json"
	"time"

	"golang.org/x/text/language"

	"bossfight/internal/catalog"
	"bossfight/internal/game"
	"bossfight/internal/i18n"
	"bossfight/internal/net/ws"
)

type gamePayload struct {
	Level      int                `json:"level"`
	HP         int                `json:"hp"`
	MaxHP      int                `json:"max_hp"`
	Monster    string             `json:"monster"`
	Emoji      string             `json:"emoji"`
	Image      string             `json:"image"`
	Background catalog.Background `json:"background"`
	Timestamp  string             `json:"timestamp"`
	Version    uint64             `json:"version"`
}

type awardPayload struct {
	Success  bool   `json:"success"`
	Damage   int    `json:"damage"`
	NewHP    int    `json:"new_hp"`
	MaxHP    int    `json:"max_hp"`
	BossDead bool   `json:"boss_dead"`
	Level    int    `json:"level"`
	Monster  string `json:"monster"`
}

type advancePayload struct {
	Success      bool               `json:"success"`
	OldLevel     int                `json:"old_level"`
	NewLevel     int                `json:"new_level"`
	NewBoss      string             `json:"new_boss"`
	Emoji        string             `json:"emoji"`
	Image        string             `json:"image"`
	NewHP        int                `json:"new_hp"`
	NewMaxHP     int                `json:"new_max_hp"`
	LevelUpVideo string             `json:"level_up_video"`
	Background   catalog.Background `json:"background"`
}

type resetPayload struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type errorPayload struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

type catalogPayload struct {
	Policy string          `json:"policy"`
	Stages []catalog.Stage `json:"stages"`
}

func newGamePayload(snapshot game.Snapshot, tag language.Tag) gamePayload {
	return gamePayload{
		Level:      snapshot.State.Level,
		HP:         snapshot.State.CurrentHP,
		MaxHP:      snapshot.State.MaxHP,
		Monster:    snapshot.Stage.NameFor(tag),
		Emoji:      snapshot.Stage.Emoji,
		Image:      snapshot.Stage.Image,
		Background: snapshot.Stage.Background,
		Timestamp:  snapshot.State.LastUpdated.Format(time.RFC3339Nano),
		Version:    snapshot.State.Version,
	}
}

func newAwardPayload(result game.AwardResult, tag language.Tag) awardPayload {
	return awardPayload{
		Success:  true,
		Damage:   result.Damage.Dealt,
		NewHP:    result.State.CurrentHP,
		MaxHP:    result.State.MaxHP,
		BossDead: result.State.Defeated(),
		Level:    result.State.Level,
		Monster:  result.Stage.NameFor(tag),
	}
}

func newAdvancePayload(result game.AdvanceResult, tag language.Tag, video string) advancePayload {
	return advancePayload{
		Success:      true,
		OldLevel:     result.FromLevel,
		NewLevel:     result.State.Level,
		NewBoss:      result.Stage.NameFor(tag),
		Emoji:        result.Stage.Emoji,
		Image:        result.Stage.Image,
		NewHP:        result.State.CurrentHP,
		NewMaxHP:     result.State.MaxHP,
		LevelUpVideo: video,
		Background:   result.Stage.Background,
	}
}

// GameNotifier pushes the /api/game payload for each mutation to every hub
// subscriber in the subscriber's own language.
func GameNotifier(hub *ws.Hub, locales *i18n.Resolver) game.Notifier {
	return game.NotifierFunc(func(ctx context.Context, snapshot game.Snapshot) {
		hub.Broadcast(context.WithoutCancel(ctx), func(locale string) ([]byte, error) {
			tag, _ := locales.ParseTag(locale)
			return json.Marshal(newGamePayload(snapshot, tag))
		})
	})
}
