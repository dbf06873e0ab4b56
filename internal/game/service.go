package game

import (
	"context"
	"errors"
	"strconv"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"bossfight/internal/catalog"
	"bossfight/internal/state"
	"bossfight/internal/store"
	"bossfight/internal/telemetry"
	"bossfight/logging"
	loggame "bossfight/logging/game"
	logpersistence "bossfight/logging/persistence"
)

// Snapshot pairs the record with the roster entry it resolves to.
type Snapshot struct {
	State state.GameState
	Stage catalog.Stage
}

// Notifier receives the snapshot produced by every successful mutation.
type Notifier interface {
	Notify(ctx context.Context, snapshot Snapshot)
}

// NotifierFunc adapts a function into a Notifier.
type NotifierFunc func(ctx context.Context, snapshot Snapshot)

func (f NotifierFunc) Notify(ctx context.Context, snapshot Snapshot) {
	if f == nil {
		return
	}
	f(ctx, snapshot)
}

type AwardResult struct {
	Snapshot
	Amount int64
	Damage Damage
}

type AdvanceResult struct {
	Snapshot
	From      catalog.Stage
	FromLevel int
}

// Options configures a Service. Store is required; everything else has a
// no-op default.
type Options struct {
	Engine    Engine
	Store     store.Store
	Publisher logging.Publisher
	Metrics   telemetry.Metrics
	Logger    telemetry.Logger
	Notifier  Notifier
}

// Service runs each operation as one load, transition, and save cycle
// through store.Update. Write failures are logged and swallowed so the
// caller still receives the computed result.
type Service struct {
	engine    Engine
	store     store.Store
	publisher logging.Publisher
	metrics   telemetry.Metrics
	logger    telemetry.Logger
	notifier  Notifier
}

var teacherActor = logging.EntityRef{ID: "teacher", Kind: logging.EntityKindTeacher}

func NewService(opts Options) (*Service, error) {
	if opts.Store == nil {
		return nil, errors.New("game service requires a store")
	}
	svc := &Service{
		engine:    opts.Engine,
		store:     opts.Store,
		publisher: opts.Publisher,
		metrics:   opts.Metrics,
		logger:    opts.Logger,
		notifier:  opts.Notifier,
	}
	if svc.publisher == nil {
		svc.publisher = logging.NopPublisher()
	}
	if svc.metrics == nil {
		svc.metrics = telemetry.NopMetrics()
	}
	if svc.logger == nil {
		svc.logger = telemetry.LoggerFunc(nil)
	}
	return svc, nil
}

func (s *Service) Engine() Engine {
	return s.engine
}

// SetNotifier replaces the push target. It must be called before serving.
func (s *Service) SetNotifier(n Notifier) {
	s.notifier = n
}

func (s *Service) snapshot(st state.GameState) Snapshot {
	return Snapshot{State: st, Stage: s.engine.Stage(st)}
}

// State returns the current record without writing it.
func (s *Service) State(ctx context.Context) (Snapshot, error) {
	st, err := s.store.Load(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	return s.snapshot(st), nil
}

// Award applies amount points of damage to the current boss.
func (s *Service) Award(ctx context.Context, amount int64) (AwardResult, error) {
	var damage Damage
	next, err := s.store.Update(ctx, func(current state.GameState) (state.GameState, error) {
		updated, dealt, err := s.engine.ApplyDamage(current, amount)
		damage = dealt
		return updated, err
	})
	if err := s.absorb(ctx, next.Version, err); err != nil {
		if errors.Is(err, ErrInvalidInput) {
			s.RejectAward(ctx, err)
		}
		return AwardResult{}, err
	}

	result := AwardResult{Snapshot: s.snapshot(next), Amount: amount, Damage: damage}
	trace.SpanFromContext(ctx).SetAttributes(
		attribute.Int("game.level", next.Level),
		attribute.Int("game.damage", damage.Dealt),
		attribute.Int("game.hp", next.CurrentHP),
	)
	s.metrics.Add(telemetry.KeyAwardsApplied, 1)
	s.metrics.Add(telemetry.KeyDamageDealt, uint64(damage.Dealt))
	if damage.Defeated {
		s.metrics.Add(telemetry.KeyBossesDefeated, 1)
	}
	loggame.AwardApplied(ctx, s.publisher, next.Version, teacherActor, bossRef(result.Stage), loggame.AwardPayload{
		Amount:   amount,
		Damage:   damage.Dealt,
		HP:       next.CurrentHP,
		MaxHP:    next.MaxHP,
		Level:    next.Level,
		Defeated: damage.Defeated,
	})
	s.notify(ctx, result.Snapshot)
	return result, nil
}

// RejectAward records an award that failed validation before reaching the
// engine.
func (s *Service) RejectAward(ctx context.Context, err error) {
	s.metrics.Add(telemetry.KeyAwardsRejected, 1)
	loggame.AwardRejected(ctx, s.publisher, teacherActor, loggame.RejectedPayload{Reason: err.Error()})
}

// Advance moves to the next stage at full health.
func (s *Service) Advance(ctx context.Context) (AdvanceResult, error) {
	var from state.GameState
	var stage catalog.Stage
	next, err := s.store.Update(ctx, func(current state.GameState) (state.GameState, error) {
		from = current
		updated, resolved, err := s.engine.AdvanceStage(current)
		stage = resolved
		return updated, err
	})
	if err := s.absorb(ctx, next.Version, err); err != nil {
		if errors.Is(err, ErrAlreadyFinal) {
			s.metrics.Add(telemetry.KeyAdvancesRejected, 1)
			loggame.AdvanceRejected(ctx, s.publisher, from.Version, teacherActor, loggame.RejectedPayload{
				Level:  from.Level,
				Reason: err.Error(),
			})
		}
		return AdvanceResult{}, err
	}

	result := AdvanceResult{
		Snapshot:  Snapshot{State: next, Stage: stage},
		From:      s.engine.Stage(from),
		FromLevel: from.Level,
	}
	trace.SpanFromContext(ctx).SetAttributes(
		attribute.Int("game.from_level", from.Level),
		attribute.Int("game.level", next.Level),
	)
	s.metrics.Add(telemetry.KeyStagesAdvanced, 1)
	loggame.StageAdvanced(ctx, s.publisher, next.Version, teacherActor, loggame.AdvancePayload{
		From:  from.Level,
		To:    next.Level,
		Stage: stage.Index,
		Boss:  stage.Name,
		MaxHP: next.MaxHP,
	})
	s.notify(ctx, result.Snapshot)
	return result, nil
}

// Reset replaces the record with the default.
func (s *Service) Reset(ctx context.Context) (Snapshot, error) {
	next, err := s.store.Reset(ctx)
	if err := s.absorb(ctx, next.Version, err); err != nil {
		return Snapshot{}, err
	}
	result := s.snapshot(next)
	s.metrics.Add(telemetry.KeyResets, 1)
	loggame.GameReset(ctx, s.publisher, next.Version, teacherActor, loggame.ResetPayload{
		Level: next.Level,
		MaxHP: next.MaxHP,
	})
	s.notify(ctx, result)
	return result, nil
}

// FallbackReporter returns a store.FallbackFunc that logs reads from backend
// which fell back to the default record.
func (s *Service) FallbackReporter(backend string) store.FallbackFunc {
	return func(ctx context.Context, err error) {
		s.metrics.Add(telemetry.KeyLoadFallbacks, 1)
		s.logger.Printf("%s game state unreadable, using defaults: %v", backend, err)
		logpersistence.LoadFallback(ctx, s.publisher, logpersistence.FailurePayload{
			Backend: backend,
			Op:      "load",
			Error:   err.Error(),
		})
	}
}

// absorb swallows persistence failures after logging them and returns any
// other error unchanged.
func (s *Service) absorb(ctx context.Context, version uint64, err error) error {
	if err == nil {
		return nil
	}
	if !errors.Is(err, store.ErrPersistence) {
		return err
	}
	var perr *store.PersistenceError
	payload := logpersistence.FailurePayload{Error: err.Error()}
	if errors.As(err, &perr) {
		payload.Backend = perr.Backend
		payload.Op = perr.Op
	}
	s.metrics.Add(telemetry.KeyPersistenceFailures, 1)
	s.logger.Printf("game state not persisted: %v", err)
	logpersistence.SaveFailed(ctx, s.publisher, version, payload)
	trace.SpanFromContext(ctx).RecordError(err)
	return nil
}

func (s *Service) notify(ctx context.Context, snapshot Snapshot) {
	if s.notifier != nil {
		s.notifier.Notify(ctx, snapshot)
	}
}

func bossRef(stage catalog.Stage) logging.EntityRef {
	return logging.EntityRef{ID: strconv.Itoa(stage.Index), Kind: logging.EntityKindBoss}
}
