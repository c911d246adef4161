package client

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/karlbackan/gigaverse-bot-sub002/internal/auth"
	"github.com/karlbackan/gigaverse-bot-sub002/internal/brain"
	"github.com/karlbackan/gigaverse-bot-sub002/pkg/rps"
)

// fakeClient serves a fixed number of rounds against a scripted enemy
// that always has full charges and cycles rock -> paper -> scissor.
type fakeClient struct {
	rounds    int
	served    int
	submitted []rps.Move
	submitErr error
}

func (f *fakeClient) NextRound(ctx context.Context) (*Round, error) {
	if f.served >= f.rounds {
		return nil, nil
	}
	full := rps.ChargeState{Rock: 2, Paper: 2, Scissor: 2}
	r := &Round{
		ID:           "round-" + string(rune('a'+f.served%26)),
		OpponentID:   "enemy-1",
		Turn:         f.served,
		OwnCharges:   full,
		EnemyCharges: full,
		OwnHealth:    80,
		EnemyHealth:  80,
	}
	f.served++
	return r, nil
}

func (f *fakeClient) SubmitMove(ctx context.Context, roundID string, move rps.Move) (*Result, error) {
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	f.submitted = append(f.submitted, move)
	enemy := rps.AllMoves()[(f.served-1)%3]
	return &Result{EnemyMove: enemy, Outcome: rps.Resolve(move, enemy)}, nil
}

func testEngine(t *testing.T) *brain.Engine {
	t.Helper()
	return brain.New("test", brain.WithRand(rand.New(rand.NewSource(7))))
}

func TestRunnerPlaysAllRounds(t *testing.T) {
	fc := &fakeClient{rounds: 12}
	r := NewRunner(fc, testEngine(t))

	played, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if played != 12 {
		t.Fatalf("played = %d, want 12", played)
	}
	if len(fc.submitted) != 12 {
		t.Fatalf("submitted %d moves, want 12", len(fc.submitted))
	}
	for i, m := range fc.submitted {
		if !m.Valid() {
			t.Fatalf("move %d invalid: %d", i, int(m))
		}
	}
}

func TestRunnerFeedsEngineHistory(t *testing.T) {
	fc := &fakeClient{rounds: 10}
	eng := testEngine(t)
	r := NewRunner(fc, eng)

	if _, err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := eng.Opponent("enemy-1").Rounds(); got != 10 {
		t.Fatalf("recorded rounds = %d, want 10", got)
	}
}

func TestRunnerStopsOnSubmitError(t *testing.T) {
	wantErr := errors.New("network down")
	fc := &fakeClient{rounds: 5, submitErr: wantErr}
	r := NewRunner(fc, testEngine(t))

	played, err := r.Run(context.Background())
	if !errors.Is(err, wantErr) {
		t.Fatalf("err = %v, want %v", err, wantErr)
	}
	if played != 0 {
		t.Fatalf("played = %d, want 0", played)
	}
}

func signedToken(t *testing.T, expiresAt time.Time) string {
	t.Helper()
	claims := &auth.Claims{
		Address: "0xfeed",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("game-server-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return raw
}

func TestRunnerRejectsExpiredToken(t *testing.T) {
	fc := &fakeClient{rounds: 5}
	r := NewRunner(fc, testEngine(t), WithSessionToken(signedToken(t, time.Now().Add(-time.Hour))))

	played, err := r.Run(context.Background())
	if !errors.Is(err, auth.ErrExpiredToken) {
		t.Fatalf("err = %v, want ErrExpiredToken", err)
	}
	if played != 0 || fc.served != 0 {
		t.Fatalf("played %d rounds (served %d) with an expired token", played, fc.served)
	}
}

func TestRunnerAcceptsValidToken(t *testing.T) {
	fc := &fakeClient{rounds: 3}
	r := NewRunner(fc, testEngine(t), WithSessionToken(signedToken(t, time.Now().Add(time.Hour))))

	played, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if played != 3 {
		t.Fatalf("played = %d, want 3", played)
	}
}

func TestRunnerHonorsContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fc := &fakeClient{rounds: 100}
	r := NewRunner(fc, testEngine(t))

	if _, err := r.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}
