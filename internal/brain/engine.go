package brain

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/karlbackan/gigaverse-bot-sub002/internal/model"
	"github.com/karlbackan/gigaverse-bot-sub002/internal/repository"
	"github.com/karlbackan/gigaverse-bot-sub002/pkg/rps"
)

// Contract violations. These are the only errors the core ever returns:
// data-quality problems degrade behavior instead.
var (
	ErrInvalidOutcome = errors.New("outcome out of range")
	ErrInvalidMove    = errors.New("move out of range")
)

// RoundContext is the per-round context supplied by the caller that
// talks to the actual game.
type RoundContext struct {
	Turn         int
	OwnCharges   rps.ChargeState
	EnemyCharges rps.ChargeState
	OwnHealth    float64
	EnemyHealth  float64
	OwnShield    float64
	EnemyShield  float64
	// Epoch is the monotonically increasing session counter; the store
	// groups it coarsely for conditioning.
	Epoch int
	// AttackPower optionally carries relative per-move attack stats for
	// the fallback weighting. All-zero means not supplied.
	AttackPower [3]float64
	// Time is the round timestamp; zero means now. Tests pin it for
	// reproducible recency decay.
	Time time.Time
}

// Observer receives decision-core events for metrics. Implementations
// must be cheap; calls happen on the decision path.
type Observer interface {
	ObserveDecision(mode, path string)
	ObserveOutcome(mode string, outcome rps.Outcome, recentWinRate float64)
	ObservePrediction(mode string, correct bool)
}

type pendingPrediction struct {
	turn int
	move rps.Move
}

// Engine is the decision core for one game mode: it owns the
// per-opponent pattern stores and runs predict -> filter -> decide per
// round, closing the loop through Record. Opponents never share state.
// The engine is not safe for concurrent use; per the game's execution
// model there is a single synchronous decision loop.
type Engine struct {
	mode      string
	predictor predictor
	policy    PolicyConfig
	rng       *rand.Rand

	snapshots repository.SnapshotStore
	saver     *repository.AsyncSaver
	saveEvery int

	obs Observer

	opponents map[string]*PatternStore
	pending   map[string]pendingPrediction
	sinceSave map[string]int
}

// Option configures an Engine.
type Option func(*Engine)

// WithRand injects a seedable random source for reproducible
// exploration and mixed-strategy behavior.
func WithRand(rng *rand.Rand) Option {
	return func(e *Engine) { e.rng = rng }
}

// WithSignalWeights overrides the ensemble weights.
func WithSignalWeights(w SignalWeights) Option {
	return func(e *Engine) { e.predictor = predictor{weights: w} }
}

// WithPolicyConfig overrides the decision-policy tunables.
func WithPolicyConfig(cfg PolicyConfig) Option {
	return func(e *Engine) { e.policy = cfg }
}

// WithStorage attaches a snapshot store: opponents are restored from it
// on first contact and saved back every saveEvery recorded rounds via a
// non-blocking background saver.
func WithStorage(store repository.SnapshotStore, saveEvery int) Option {
	return func(e *Engine) {
		e.snapshots = store
		if saveEvery <= 0 {
			saveEvery = 10
		}
		e.saveEvery = saveEvery
		e.saver = repository.NewAsyncSaver(store, 32)
	}
}

// WithObserver attaches a metrics observer.
func WithObserver(obs Observer) Option {
	return func(e *Engine) { e.obs = obs }
}

// New creates an Engine for one game mode. Statistics are scoped by
// (mode, opponent id); two modes never share counters.
func New(mode string, opts ...Option) *Engine {
	e := &Engine{
		mode:      mode,
		predictor: predictor{weights: DefaultSignalWeights()},
		policy:    DefaultPolicyConfig(),
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
		opponents: make(map[string]*PatternStore),
		pending:   make(map[string]pendingPrediction),
		sinceSave: make(map[string]int),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Mode returns the game mode this engine is scoped to.
func (e *Engine) Mode() string { return e.mode }

// Opponent returns the pattern store for an opponent, creating it on
// first contact. Safe to call repeatedly without duplicating state.
// When storage is attached the first contact attempts a snapshot
// restore; a failed load degrades to an empty store.
func (e *Engine) Opponent(opponentID string) *PatternStore {
	if s, ok := e.opponents[opponentID]; ok {
		return s
	}
	var s *PatternStore
	if e.snapshots != nil {
		snap, err := e.snapshots.LoadSnapshot(context.Background(), e.mode, opponentID)
		switch {
		case err != nil:
			log.Warn().Err(err).
				Str("mode", e.mode).
				Str("opponent", opponentID).
				Msg("snapshot load failed; starting fresh")
		case snap != nil:
			s = RestoreStore(snap)
			log.Debug().
				Str("opponent", opponentID).
				Int("rounds", s.Rounds()).
				Msg("opponent restored from snapshot")
		}
	}
	if s == nil {
		s = NewPatternStore()
	}
	e.opponents[opponentID] = s
	return s
}

// Predict estimates the opponent's next move: the fused ensemble
// distribution, masked to the enemy's feasible moves and renormalized.
// Returns nil when fewer than MinPredictSamples rounds are recorded.
func (e *Engine) Predict(opponentID string, ctx RoundContext) *PredictionResult {
	s := e.Opponent(opponentID)
	pred := e.predictor.predict(s, ctx)
	if pred == nil {
		return nil
	}
	filterFeasible(pred, ctx.EnemyCharges)
	return pred
}

// Decide picks the bot's move for this round. It never fails: with no
// usable prediction it degrades to the weighted-random fallback, and a
// forced enemy move is always answered with its fixed counter.
func (e *Engine) Decide(opponentID string, ctx RoundContext) rps.Move {
	s := e.Opponent(opponentID)
	feasible := feasibleOrClamped(ctx.EnemyCharges)

	pred := e.predictor.predict(s, ctx)
	if pred != nil {
		maskFeasible(pred, feasible)
		e.pending[opponentID] = pendingPrediction{turn: ctx.Turn, move: pred.Top()}
	}

	move, path := decide(e.rng, e.policy, s, pred, feasible, ctx)

	if e.obs != nil {
		e.obs.ObserveDecision(e.mode, string(path))
	}
	evt := log.Debug().
		Str("opponent", opponentID).
		Int("turn", ctx.Turn).
		Str("move", move.String()).
		Str("path", string(path))
	if pred != nil {
		evt = evt.Float64("confidence", pred.Confidence)
	}
	evt.Msg("decision")

	return move
}

// Record feeds a resolved round back into the opponent's pattern store
// and the self-calibration history. outcome is the bot's own result.
// It returns an error only for out-of-domain moves or outcomes, which
// indicate caller misuse.
func (e *Engine) Record(opponentID string, turn int, ownMove, enemyMove rps.Move, outcome rps.Outcome, ctx RoundContext) error {
	if !outcome.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidOutcome, int(outcome))
	}
	if !ownMove.Valid() || !enemyMove.Valid() {
		return fmt.Errorf("%w: own %d enemy %d", ErrInvalidMove, int(ownMove), int(enemyMove))
	}

	s := e.Opponent(opponentID)

	// Score the prediction made for this turn before the round is
	// appended, so the accuracy history lines up one-to-one with
	// decisions.
	if p, ok := e.pending[opponentID]; ok && p.turn == turn {
		s.RecordAccuracy(p.move, enemyMove)
		delete(e.pending, opponentID)
		if e.obs != nil {
			e.obs.ObservePrediction(e.mode, p.move == enemyMove)
		}
	}

	playedAt := ctx.Time
	if playedAt.IsZero() {
		playedAt = time.Now()
	}
	s.RecordRound(model.RoundRecord{
		Turn:         turn,
		EnemyMove:    enemyMove,
		OwnMove:      ownMove,
		EnemyCharges: ctx.EnemyCharges,
		OwnHealth:    ctx.OwnHealth,
		EnemyHealth:  ctx.EnemyHealth,
		Epoch:        ctx.Epoch,
		PlayedAt:     playedAt,
	}, outcome)

	if e.obs != nil {
		winRate, _ := s.RecentWinRate()
		e.obs.ObserveOutcome(e.mode, outcome, winRate)
	}

	if e.saver != nil {
		e.sinceSave[opponentID]++
		if e.sinceSave[opponentID] >= e.saveEvery {
			e.sinceSave[opponentID] = 0
			e.saver.Enqueue(e.mode, opponentID, s.Snapshot(e.mode, opponentID))
		}
	}

	return nil
}

// Flush saves every known opponent immediately and waits for the
// background saver to drain. Call on shutdown.
func (e *Engine) Flush() {
	if e.saver == nil {
		return
	}
	for id, s := range e.opponents {
		e.saver.Enqueue(e.mode, id, s.Snapshot(e.mode, id))
	}
	e.saver.Close()
	e.saver = nil
}
