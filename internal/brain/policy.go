package brain

import (
	"math/rand"

	"github.com/karlbackan/gigaverse-bot-sub002/pkg/rps"
)

// PolicyConfig holds the exploration/exploitation tunables for the
// decision policy.
type PolicyConfig struct {
	// BaseExploration is the starting exploration probability before
	// win-rate and feasibility adjustments.
	BaseExploration float64
	// LosingThreshold and WinningThreshold bound the recent win rates
	// at which exploration is raised (x1.5) or lowered (x0.5).
	LosingThreshold  float64
	WinningThreshold float64
	// MinWindowSamples gates the win-rate adjustments on having enough
	// outcomes in the rolling window.
	MinWindowSamples int
	// ConfidenceGate is the confidence x sample-multiplier threshold
	// below which the policy ignores the prediction.
	ConfidenceGate float64
	// MixedRate is the probability of substituting a near-optimal
	// alternative for the best-scoring move, to stay unpredictable.
	MixedRate float64
	// mixedMargin is how far (in score) an alternative may trail the
	// best move and still qualify for mixed substitution.
	MixedMargin float64
	// Expected-value coefficients for winning, drawing, and losing
	// against the predicted move.
	WinCoeff  float64
	DrawCoeff float64
	LossCoeff float64
	// HighThreatHealth is the own-health percentage at or below which
	// the loss coefficient is doubled, making risky moves unattractive.
	HighThreatHealth float64
}

// DefaultPolicyConfig returns the tuned production defaults.
func DefaultPolicyConfig() PolicyConfig {
	return PolicyConfig{
		BaseExploration:  0.08,
		LosingThreshold:  0.35,
		WinningThreshold: 0.75,
		MinWindowSamples: 10,
		ConfidenceGate:   0.30,
		MixedRate:        0.08,
		MixedMargin:      0.15,
		WinCoeff:         1.0,
		DrawCoeff:        0.15,
		LossCoeff:        -0.55,
		HighThreatHealth: 25,
	}
}

// decisionPath labels which branch of the policy produced the move,
// for logging and metrics.
type decisionPath string

const (
	pathGuaranteed decisionPath = "guaranteed"
	pathExplore    decisionPath = "explore"
	pathExploit    decisionPath = "exploit"
	pathMixed      decisionPath = "mixed"
	pathFallback   decisionPath = "fallback"
)

// decide runs the ordered decision procedure against an already
// feasibility-filtered prediction (pred may be nil when there was not
// enough data). feasible is never empty. It never fails; malformed
// inputs degrade toward the weighted-random fallback.
func decide(rng *rand.Rand, cfg PolicyConfig, s *PatternStore, pred *PredictionResult, feasible []rps.Move, ctx RoundContext) (rps.Move, decisionPath) {
	// A forced enemy move has a fixed counter. Never explored away.
	if len(feasible) == 1 {
		return rps.CounterTo(feasible[0]), pathGuaranteed
	}

	rate := explorationRate(cfg, s, feasible)
	if rate > 0 && rng.Float64() < rate {
		return smartExplore(rng, feasible, ctx.OwnCharges), pathExplore
	}

	if pred != nil {
		sampleMult := min(1.0, float64(s.Rounds())/20)
		mass := pred.Dist[0] + pred.Dist[1] + pred.Dist[2]
		if pred.Confidence*sampleMult > cfg.ConfidenceGate && mass > 0 {
			return exploit(rng, cfg, pred, ctx)
		}
	}

	return fallback(rng, ctx), pathFallback
}

// explorationRate adapts the base rate to recent performance and to
// the size of the enemy's feasible set.
func explorationRate(cfg PolicyConfig, s *PatternStore, feasible []rps.Move) float64 {
	rate := cfg.BaseExploration
	winRate, n := s.RecentWinRate()
	if n >= cfg.MinWindowSamples {
		if winRate < cfg.LosingThreshold {
			rate *= 1.5
		} else if winRate > cfg.WinningThreshold {
			rate *= 0.5
		}
	}
	// A two-move enemy is already half-solved; randomize less.
	if len(feasible) == 2 {
		rate *= 0.5
	}
	return rate
}

// smartExplore picks uniformly among moves that counter something the
// enemy can actually play. A counter to a depleted move has no
// strategic value and is never chosen, and counters the bot cannot
// currently play are skipped too; when nothing survives both cuts it
// degrades to any own-playable move.
func smartExplore(rng *rand.Rand, feasible []rps.Move, own rps.ChargeState) rps.Move {
	var candidates []rps.Move
	seen := [3]bool{}
	for _, m := range feasible {
		c := rps.CounterTo(m)
		if !seen[c] && own.Feasible(c) {
			seen[c] = true
			candidates = append(candidates, c)
		}
	}
	if len(candidates) == 0 {
		candidates = ownPlayable(own)
	}
	return candidates[rng.Intn(len(candidates))]
}

// exploit scores every own-playable move against the predicted
// distribution and takes the best, with an occasional substitution of
// a near-optimal alternative to avoid being counter-read.
func exploit(rng *rand.Rand, cfg PolicyConfig, pred *PredictionResult, ctx RoundContext) (rps.Move, decisionPath) {
	lossCoeff := cfg.LossCoeff
	if ctx.OwnHealth > 0 && ctx.OwnHealth <= cfg.HighThreatHealth {
		lossCoeff *= 2
	}

	candidates := ownPlayable(ctx.OwnCharges)

	var scores [3]float64
	best := candidates[0]
	for _, m := range candidates {
		score := 0.0
		for _, opp := range rps.AllMoves() {
			p := pred.Dist[opp]
			if p == 0 {
				continue
			}
			switch rps.Resolve(m, opp) {
			case rps.Win:
				score += p * cfg.WinCoeff
			case rps.Tie:
				score += p * cfg.DrawCoeff
			default:
				score += p * lossCoeff
			}
		}
		scores[m] = score
		if score > scores[best] {
			best = m
		}
	}

	if cfg.MixedRate > 0 && rng.Float64() < cfg.MixedRate {
		var alts []rps.Move
		for _, m := range candidates {
			if m != best && scores[m] >= scores[best]-cfg.MixedMargin {
				alts = append(alts, m)
			}
		}
		if len(alts) > 0 {
			return alts[rng.Intn(len(alts))], pathMixed
		}
	}

	return best, pathExploit
}

// fallback picks a weighted-random move when no usable prediction
// exists: own moves with more remaining charge get a mild bonus,
// relative attack power (when supplied) biases further, and own
// depleted moves are suppressed to near-zero weight.
func fallback(rng *rand.Rand, ctx RoundContext) rps.Move {
	maxPower := 0.0
	for _, p := range ctx.AttackPower {
		if p > maxPower {
			maxPower = p
		}
	}

	var weights [3]float64
	total := 0.0
	for _, m := range rps.AllMoves() {
		w := 1.0
		if charge := ctx.OwnCharges.Charge(m); charge < 0 {
			w = 0.01
		} else {
			w += 0.2 * float64(min(charge, 5)) / 5
			if maxPower > 0 {
				w += 0.3 * ctx.AttackPower[m] / maxPower
			}
		}
		weights[m] = w
		total += w
	}

	r := rng.Float64() * total
	for _, m := range rps.AllMoves() {
		r -= weights[m]
		if r < 0 {
			return m
		}
	}
	return rps.Scissor
}

// ownPlayable returns the bot's own feasible moves, or all three when
// its charge state says nothing is playable.
func ownPlayable(cs rps.ChargeState) []rps.Move {
	playable := cs.FeasibleMoves()
	if len(playable) == 0 {
		all := rps.AllMoves()
		return all[:]
	}
	return playable
}
