package brain

import (
	"math/rand"
	"testing"

	"github.com/karlbackan/gigaverse-bot-sub002/pkg/rps"
)

func testRng() *rand.Rand {
	return rand.New(rand.NewSource(42))
}

// forcedExploration returns a config whose effective exploration rate
// stays at 100% even after the two-feasible halving.
func forcedExploration() PolicyConfig {
	cfg := DefaultPolicyConfig()
	cfg.BaseExploration = 2.0
	return cfg
}

func TestGuaranteedWinInvariant(t *testing.T) {
	// One feasible enemy move means a fixed counter, regardless of
	// exploration rate or history.
	rng := testRng()
	cfg := forcedExploration()

	tests := []struct {
		charges rps.ChargeState
		want    rps.Move
	}{
		{rps.ChargeState{Rock: 1, Paper: -1, Scissor: -1}, rps.Paper},
		{rps.ChargeState{Rock: -1, Paper: 0, Scissor: -2}, rps.Scissor},
		{rps.ChargeState{Rock: -3, Paper: -1, Scissor: 2}, rps.Rock},
	}
	for _, tt := range tests {
		s := NewPatternStore()
		for i := 0; i < 30; i++ {
			feedRound(t, s, i+1, rps.Rock)
		}
		feasible := feasibleOrClamped(tt.charges)
		for trial := 0; trial < 100; trial++ {
			move, path := decide(rng, cfg, s, nil, feasible, healthyContext(31))
			if move != tt.want {
				t.Fatalf("charges %+v: got %s, want %s", tt.charges, move, tt.want)
			}
			if path != pathGuaranteed {
				t.Fatalf("path = %s, want guaranteed", path)
			}
		}
	}
}

func TestSmartExplorationInvariant(t *testing.T) {
	// Rock depleted: countering rock (with paper) has no strategic
	// value, so forced exploration must never choose paper.
	rng := testRng()
	cfg := forcedExploration()

	s := NewPatternStore()
	for i := 0; i < 30; i++ {
		feedRound(t, s, i+1, rps.Rock)
	}

	charges := rps.ChargeState{Rock: -1, Paper: 2, Scissor: 2}
	feasible := feasibleOrClamped(charges)
	ctx := healthyContext(31)
	ctx.EnemyCharges = charges

	paperCount := 0
	for trial := 0; trial < 100; trial++ {
		move, path := decide(rng, cfg, s, nil, feasible, ctx)
		if path != pathExplore {
			t.Fatalf("path = %s, want explore", path)
		}
		if move == rps.Paper {
			paperCount++
		}
	}
	if paperCount != 0 {
		t.Errorf("paper selected %d times; it only counters a depleted move", paperCount)
	}
}

func TestSmartExplorationRespectsOwnCharges(t *testing.T) {
	// Our rock is recharging: exploration must never pick it even
	// though it counters a feasible enemy scissor.
	rng := testRng()
	cfg := forcedExploration()

	s := NewPatternStore()
	for i := 0; i < 30; i++ {
		feedRound(t, s, i+1, rps.Rock)
	}

	ctx := healthyContext(31)
	ctx.OwnCharges = rps.ChargeState{Rock: -1, Paper: 2, Scissor: 2}
	feasible := feasibleOrClamped(ctx.EnemyCharges)

	rockCount := 0
	for trial := 0; trial < 300; trial++ {
		move, path := decide(rng, cfg, s, nil, feasible, ctx)
		if path != pathExplore {
			t.Fatalf("path = %s, want explore", path)
		}
		if move == rps.Rock {
			rockCount++
		}
	}
	if rockCount != 0 {
		t.Errorf("exploration chose our recharging rock %d/300 times", rockCount)
	}
}

func TestSmartExplorationDegradesToOwnPlayable(t *testing.T) {
	// Every useful counter is on our recharging moves; exploration
	// must settle for what we can actually play.
	rng := testRng()
	cfg := forcedExploration()

	s := NewPatternStore()
	for i := 0; i < 30; i++ {
		feedRound(t, s, i+1, rps.Rock)
	}

	ctx := healthyContext(31)
	ctx.EnemyCharges = rps.ChargeState{Rock: -1, Paper: 2, Scissor: 2}
	ctx.OwnCharges = rps.ChargeState{Rock: -1, Paper: 2, Scissor: -1}
	feasible := feasibleOrClamped(ctx.EnemyCharges)

	for trial := 0; trial < 100; trial++ {
		move, path := decide(rng, cfg, s, nil, feasible, ctx)
		if path != pathExplore {
			t.Fatalf("path = %s, want explore", path)
		}
		if move != rps.Paper {
			t.Fatalf("got %s, want paper (the only move we can play)", move)
		}
	}
}

func TestDeterminismUnderZeroExploration(t *testing.T) {
	cfg := DefaultPolicyConfig()
	cfg.BaseExploration = 0
	cfg.MixedRate = 0

	p := predictor{weights: DefaultSignalWeights()}
	s := NewPatternStore()
	for i := 0; i < 25; i++ {
		feedRound(t, s, i+1, rps.Rock)
	}

	ctx := healthyContext(26)
	feasible := feasibleOrClamped(ctx.EnemyCharges)

	rng := testRng()
	var first rps.Move
	for trial := 0; trial < 50; trial++ {
		pred := p.predict(s, ctx)
		if pred == nil {
			t.Fatal("expected a prediction")
		}
		filterFeasible(pred, ctx.EnemyCharges)
		move, path := decide(rng, cfg, s, pred, feasible, ctx)
		if trial == 0 {
			first = move
			if path != pathExploit {
				t.Fatalf("path = %s, want exploit", path)
			}
			continue
		}
		if move != first {
			t.Fatalf("trial %d: move %s differs from first %s", trial, move, first)
		}
	}
	if first != rps.Paper {
		t.Errorf("against an all-rock opponent the exploit move should be paper, got %s", first)
	}
}

func TestExplorationRateAdaptation(t *testing.T) {
	cfg := DefaultPolicyConfig()
	all := rps.AllMoves()
	three := all[:]
	two := all[:2]

	losing := NewPatternStore()
	winning := NewPatternStore()
	for i := 0; i < windowCap; i++ {
		losing.RecordRound(roundRec(i+1, rps.Rock), rps.Loss)
		winning.RecordRound(roundRec(i+1, rps.Rock), rps.Win)
	}

	base := explorationRate(cfg, NewPatternStore(), three)
	if base != cfg.BaseExploration {
		t.Errorf("empty window rate = %v, want base %v", base, cfg.BaseExploration)
	}
	if got := explorationRate(cfg, losing, three); got != cfg.BaseExploration*1.5 {
		t.Errorf("losing rate = %v, want x1.5", got)
	}
	if got := explorationRate(cfg, winning, three); got != cfg.BaseExploration*0.5 {
		t.Errorf("winning rate = %v, want x0.5", got)
	}
	if got := explorationRate(cfg, winning, two); got != cfg.BaseExploration*0.25 {
		t.Errorf("winning two-feasible rate = %v, want x0.25", got)
	}
}

func TestExploitPrefersCounter(t *testing.T) {
	rng := testRng()
	cfg := DefaultPolicyConfig()
	cfg.MixedRate = 0

	tests := []struct {
		predicted rps.Move
		want      rps.Move
	}{
		{rps.Rock, rps.Paper},
		{rps.Paper, rps.Scissor},
		{rps.Scissor, rps.Rock},
	}
	for _, tt := range tests {
		var dist [3]float64
		dist[tt.predicted] = 0.8
		dist[rps.CounterTo(tt.predicted)] = 0.1
		dist[tt.predicted.Beats()] = 0.1
		pred := &PredictionResult{Dist: dist, Confidence: 0.8}
		move, _ := exploit(rng, cfg, pred, healthyContext(1))
		if move != tt.want {
			t.Errorf("predicted %s: exploit chose %s, want %s", tt.predicted, move, tt.want)
		}
	}
}

func TestExploitRespectsOwnCharges(t *testing.T) {
	rng := testRng()
	cfg := DefaultPolicyConfig()
	cfg.MixedRate = 0

	// Paper (the ideal counter to rock) is depleted on our side, so the
	// best playable answer is rock (draws rock, beats scissor).
	ctx := healthyContext(1)
	ctx.OwnCharges = rps.ChargeState{Rock: 2, Paper: -1, Scissor: 2}
	pred := &PredictionResult{Dist: [3]float64{0.9, 0.05, 0.05}, Confidence: 0.8}

	move, _ := exploit(rng, cfg, pred, ctx)
	if move == rps.Paper {
		t.Fatal("exploit chose a move we cannot play")
	}
	if move != rps.Rock {
		t.Errorf("exploit chose %s, want rock", move)
	}
}

func TestMixedStrategyStaysAmongScoredMoves(t *testing.T) {
	rng := testRng()
	cfg := DefaultPolicyConfig()
	cfg.MixedRate = 1.0
	cfg.MixedMargin = 2.0 // everything qualifies

	// Scissor is not playable; mixing must still never pick it.
	ctx := healthyContext(1)
	ctx.OwnCharges = rps.ChargeState{Rock: 2, Paper: 2, Scissor: -1}
	pred := &PredictionResult{Dist: [3]float64{0.9, 0.05, 0.05}, Confidence: 0.8}

	for trial := 0; trial < 100; trial++ {
		move, _ := exploit(rng, cfg, pred, ctx)
		if move == rps.Scissor {
			t.Fatal("mixed strategy substituted an unplayable move")
		}
	}
}

func TestFallbackSuppressesDepletedOwnMoves(t *testing.T) {
	rng := testRng()
	ctx := healthyContext(1)
	ctx.OwnCharges = rps.ChargeState{Rock: -1, Paper: 3, Scissor: 3}

	rockCount := 0
	for trial := 0; trial < 500; trial++ {
		if fallback(rng, ctx) == rps.Rock {
			rockCount++
		}
	}
	// Weight 0.01 vs ~1.1 each: rock should be rare.
	if rockCount > 15 {
		t.Errorf("depleted own move chosen %d/500 times", rockCount)
	}
}

func TestFallbackAttackPowerBias(t *testing.T) {
	rng := testRng()
	ctx := healthyContext(1)
	ctx.AttackPower = [3]float64{10, 1, 1}

	counts := [3]int{}
	for trial := 0; trial < 3000; trial++ {
		counts[fallback(rng, ctx)]++
	}
	if counts[rps.Rock] <= counts[rps.Paper] || counts[rps.Rock] <= counts[rps.Scissor] {
		t.Errorf("strongest attack should be favored: %v", counts)
	}
}

func TestDecideFallsBackWithoutPrediction(t *testing.T) {
	rng := testRng()
	cfg := DefaultPolicyConfig()
	cfg.BaseExploration = 0

	s := NewPatternStore()
	ctx := healthyContext(1)
	feasible := feasibleOrClamped(ctx.EnemyCharges)

	_, path := decide(rng, cfg, s, nil, feasible, ctx)
	if path != pathFallback {
		t.Errorf("path = %s, want fallback", path)
	}
}

func TestDecideLowConfidenceFallsBack(t *testing.T) {
	rng := testRng()
	cfg := DefaultPolicyConfig()
	cfg.BaseExploration = 0

	s := NewPatternStore()
	for i := 0; i < 6; i++ {
		feedRound(t, s, i+1, rps.Rock)
	}
	ctx := healthyContext(7)
	feasible := feasibleOrClamped(ctx.EnemyCharges)

	// Confidence below the gate once multiplied by the small sample
	// count must not reach the exploit branch.
	pred := &PredictionResult{Dist: [3]float64{1, 0, 0}, Confidence: 0.2, Feasible: feasible}
	_, path := decide(rng, cfg, s, pred, feasible, ctx)
	if path != pathFallback {
		t.Errorf("path = %s, want fallback", path)
	}
}
