package game

import (
	"errors"
	"testing"
	"time"

	"bossfight/internal/catalog"
	"bossfight/internal/state"
)

var fixedNow = time.Date(2024, 9, 1, 8, 30, 0, 0, time.UTC)

func newEngine(policy catalog.Policy) Engine {
	return Engine{
		Catalog: catalog.Default,
		Policy:  policy,
		Clock:   func() time.Time { return fixedNow },
	}
}

func TestDamageFor(t *testing.T) {
	cases := []struct {
		amount int64
		want   int
	}{
		{amount: 0, want: 1},
		{amount: 1, want: 1},
		{amount: 9, want: 1},
		{amount: 10, want: 1},
		{amount: 19, want: 1},
		{amount: 20, want: 2},
		{amount: 55, want: 5},
		{amount: 1000, want: 100},
	}
	for _, tc := range cases {
		if got := DamageFor(tc.amount); got != tc.want {
			t.Fatalf("DamageFor(%d) = %d, want %d", tc.amount, got, tc.want)
		}
	}
}

func TestApplyDamageProperty(t *testing.T) {
	engine := newEngine(catalog.PolicyWrap)
	for amount := int64(1); amount <= 2000; amount += 7 {
		for _, hp := range []int{0, 1, 5, 50, 100} {
			start := state.GameState{Level: 1, CurrentHP: hp, MaxHP: 100}
			next, damage, err := engine.ApplyDamage(start, amount)
			if err != nil {
				t.Fatalf("ApplyDamage(%d) failed: %v", amount, err)
			}
			wantDamage := int(amount / 10)
			if wantDamage < 1 {
				wantDamage = 1
			}
			wantHP := hp - wantDamage
			if wantHP < 0 {
				wantHP = 0
			}
			if damage.Dealt != wantDamage || next.CurrentHP != wantHP {
				t.Fatalf("amount %d hp %d: got damage %d hp %d, want %d %d", amount, hp, damage.Dealt, next.CurrentHP, wantDamage, wantHP)
			}
			if damage.Defeated != (wantHP == 0) {
				t.Fatalf("amount %d hp %d: defeated=%v", amount, hp, damage.Defeated)
			}
			if next.Level != 1 || next.MaxHP != 100 {
				t.Fatalf("damage must not change stage: %+v", next)
			}
		}
	}
}

func TestApplyDamageRejectsNegative(t *testing.T) {
	engine := newEngine(catalog.PolicyWrap)
	start := state.GameState{Level: 2, CurrentHP: 70, MaxHP: 150, LastUpdated: fixedNow.Add(-time.Hour)}

	next, _, err := engine.ApplyDamage(start, -5)
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if next != start {
		t.Fatalf("state must be unchanged, got %+v", next)
	}
}

func TestApplyDamageStampsTime(t *testing.T) {
	engine := newEngine(catalog.PolicyWrap)
	next, _, _ := engine.ApplyDamage(state.GameState{Level: 1, CurrentHP: 100, MaxHP: 100}, 30)
	if !next.LastUpdated.Equal(fixedNow) {
		t.Fatalf("expected last_updated %v, got %v", fixedNow, next.LastUpdated)
	}
}

func TestAdvanceStageResetsHPRegardlessOfPrior(t *testing.T) {
	engine := newEngine(catalog.PolicyWrap)
	for _, hp := range []int{0, 1, 100} {
		next, stage, err := engine.AdvanceStage(state.GameState{Level: 1, CurrentHP: hp, MaxHP: 100})
		if err != nil {
			t.Fatalf("AdvanceStage failed: %v", err)
		}
		if next.Level != 2 || next.CurrentHP != 150 || next.MaxHP != 150 {
			t.Fatalf("from hp %d: unexpected state %+v", hp, next)
		}
		if stage.Name != "Dragon" {
			t.Fatalf("expected Dragon, got %q", stage.Name)
		}
	}
}

func TestAdvanceStageWrapsFromLast(t *testing.T) {
	engine := newEngine(catalog.PolicyWrap)
	next, stage, err := engine.AdvanceStage(state.GameState{Level: 4, CurrentHP: 0, MaxHP: 200})
	if err != nil {
		t.Fatalf("AdvanceStage failed: %v", err)
	}
	if next.Level != 5 || next.CurrentHP != 100 || next.MaxHP != 100 || stage.Index != 1 {
		t.Fatalf("expected level 5 showing stage 1, got %+v (%d)", next, stage.Index)
	}
	if got := engine.Stage(next); got.Index != 1 || got.Name != stage.Name {
		t.Fatalf("stored level 5 must resolve to stage 1, got %d", got.Index)
	}

	again, stage, err := engine.AdvanceStage(next)
	if err != nil {
		t.Fatalf("AdvanceStage failed: %v", err)
	}
	if again.Level != 6 || stage.Index != 2 || again.CurrentHP != 150 {
		t.Fatalf("expected level 6 showing stage 2, got %+v (%d)", again, stage.Index)
	}
}

func TestAdvanceStageClampIsTerminal(t *testing.T) {
	engine := newEngine(catalog.PolicyClamp)
	start := state.GameState{Level: 4, CurrentHP: 0, MaxHP: 200, LastUpdated: fixedNow.Add(-time.Minute)}

	next, _, err := engine.AdvanceStage(start)
	if !errors.Is(err, ErrAlreadyFinal) {
		t.Fatalf("expected ErrAlreadyFinal, got %v", err)
	}
	if next != start {
		t.Fatalf("state must be unchanged, got %+v", next)
	}

	mid, _, err := engine.AdvanceStage(state.GameState{Level: 3, CurrentHP: 10, MaxHP: 80})
	if err != nil || mid.Level != 4 || mid.CurrentHP != 200 {
		t.Fatalf("expected advance to 4, got %+v err=%v", mid, err)
	}
}

func TestZeroEngineServesDefaultRoster(t *testing.T) {
	var engine Engine
	st := engine.DefaultState()
	if st.Level != 1 || st.CurrentHP != 100 || st.MaxHP != 100 || st.Version != 0 {
		t.Fatalf("unexpected default %+v", st)
	}
	if got := engine.Stage(state.GameState{Level: 6}).Index; got != 2 {
		t.Fatalf("wrap resolution of 6 expected stage 2, got %d", got)
	}
}
