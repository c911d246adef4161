package client

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/karlbackan/gigaverse-bot-sub002/internal/auth"
	"github.com/karlbackan/gigaverse-bot-sub002/internal/brain"
)

// Runner drives the fetch -> decide -> submit -> record loop against a
// GameClient until the run ends or the context is cancelled.
type Runner struct {
	client GameClient
	engine *brain.Engine
	token  string
}

// RunnerOption configures optional Runner behavior.
type RunnerOption func(*Runner)

// WithSessionToken makes Run verify the game API bearer token before
// playing, refusing to start a session that would 401 mid-run.
func WithSessionToken(raw string) RunnerOption {
	return func(r *Runner) { r.token = raw }
}

// NewRunner wires a game client to a decision engine.
func NewRunner(client GameClient, engine *brain.Engine, opts ...RunnerOption) *Runner {
	r := &Runner{client: client, engine: engine}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run plays rounds until NextRound reports the run is over. Transport
// errors stop the loop; decision errors cannot happen by contract, so
// a Record failure is a bug and is returned.
func (r *Runner) Run(ctx context.Context) (int, error) {
	if r.token != "" {
		claims, err := auth.Check(r.token, time.Now())
		if err != nil {
			return 0, fmt.Errorf("session token: %w", err)
		}
		evt := log.Info().Str("address", claims.Address)
		if left, ok := auth.TimeLeft(claims, time.Now()); ok {
			evt = evt.Dur("valid_for", left)
		}
		evt.Msg("session token verified")
	}

	played := 0
	for {
		if err := ctx.Err(); err != nil {
			return played, err
		}

		round, err := r.client.NextRound(ctx)
		if err != nil {
			return played, fmt.Errorf("next round: %w", err)
		}
		if round == nil {
			return played, nil
		}

		reqID := uuid.NewString()
		rctx := brain.RoundContext{
			Turn:         round.Turn,
			OwnCharges:   round.OwnCharges,
			EnemyCharges: round.EnemyCharges,
			OwnHealth:    round.OwnHealth,
			EnemyHealth:  round.EnemyHealth,
			OwnShield:    round.OwnShield,
			EnemyShield:  round.EnemyShield,
			Epoch:        round.Epoch,
		}

		move := r.engine.Decide(round.OpponentID, rctx)
		result, err := r.client.SubmitMove(ctx, round.ID, move)
		if err != nil {
			return played, fmt.Errorf("submit move: %w", err)
		}

		if err := r.engine.Record(round.OpponentID, round.Turn, move, result.EnemyMove, result.Outcome, rctx); err != nil {
			return played, fmt.Errorf("record round: %w", err)
		}
		played++

		log.Debug().
			Str("request", reqID).
			Str("opponent", round.OpponentID).
			Int("turn", round.Turn).
			Str("own", move.String()).
			Str("enemy", result.EnemyMove.String()).
			Str("outcome", result.Outcome.String()).
			Msg("round resolved")
	}
}
