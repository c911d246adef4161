package brain

import (
	"time"

	"github.com/karlbackan/gigaverse-bot-sub002/pkg/rps"
)

// Per-signal minimum sample counts. A signal contributes nothing until
// its own conditioning key has seen enough data.
const (
	MinPredictSamples = 5
	minTurnSamples    = 2
	minSeq2Samples    = 3
	minSeq4Samples    = 2
	minClassSamples   = 3
	minBracketSamples = 4
	minEpochSamples   = 3

	// ConfidenceCap is the hard ceiling on prediction confidence.
	ConfidenceCap = 0.9

	// Self-tuning thresholds: with enough scored predictions, sustained
	// accuracy shifts weight between the pattern signals and the
	// baseline signals.
	tuneMinSamples = 30
	tuneHighAcc    = 0.65
	tuneLowAcc     = 0.35
)

// SignalWeights holds the ensemble contribution of each signal source.
// Contributions are summed, not averaged, so only relative magnitude
// matters.
type SignalWeights struct {
	Overall float64
	Turn    float64
	Seq2    float64
	Seq4    float64
	Charge  float64
	Health  float64
	Epoch   float64
	Recency float64
}

// DefaultSignalWeights returns the baseline ensemble weights: sequence,
// charge-class, and recency signals dominate, the rest are small
// steering contributions.
func DefaultSignalWeights() SignalWeights {
	return SignalWeights{
		Overall: 0.08,
		Turn:    0.07,
		Seq2:    0.30,
		Seq4:    0.12,
		Charge:  0.25,
		Health:  0.08,
		Epoch:   0.05,
		Recency: 0.25,
	}
}

// PredictionResult is a fused probability distribution over the enemy's
// next move. Feasible and Guaranteed are filled in by the feasibility
// filter; before filtering they describe the all-feasible case.
type PredictionResult struct {
	Dist       [3]float64
	Confidence float64
	Feasible   []rps.Move
	Guaranteed bool
}

// Top returns the highest-probability move, preferring the canonical
// move order on ties.
func (p *PredictionResult) Top() rps.Move {
	best := rps.Rock
	for _, m := range rps.AllMoves() {
		if p.Dist[m] > p.Dist[best] {
			best = m
		}
	}
	return best
}

type predictor struct {
	weights SignalWeights
}

// tunedWeights applies the bounded self-tuning rule: sustained high
// accuracy nudges the sequence and charge signals up, sustained low
// accuracy shifts weight back to the overall and recency baselines.
// The boost is capped at 1.5x so tuning can never run away.
func (p predictor) tunedWeights(s *PatternStore) SignalWeights {
	w := p.weights
	acc, n := s.Accuracy()
	if n < tuneMinSamples {
		return w
	}
	switch {
	case acc > tuneHighAcc:
		boost := 1 + min(0.5, (acc-tuneHighAcc)*2)
		w.Seq2 *= boost
		w.Seq4 *= boost
		w.Charge *= boost
	case acc < tuneLowAcc:
		boost := 1 + min(0.5, (tuneLowAcc-acc)*2)
		w.Overall *= boost
		w.Recency *= boost
	}
	return w
}

// predict fuses the active signal sources into a distribution over the
// enemy's next move. Returns nil when the opponent has too few recorded
// rounds to say anything.
func (p predictor) predict(s *PatternStore, ctx RoundContext) *PredictionResult {
	if s.Rounds() < MinPredictSamples {
		return nil
	}

	w := p.tunedWeights(s)
	now := ctx.Time
	if now.IsZero() {
		now = time.Now()
	}

	var acc [3]float64
	addSignal := func(c moveCounts, weight float64, minN int) bool {
		if c.total() < minN {
			return false
		}
		d := c.dist()
		for i := range acc {
			acc[i] += weight * d[i]
		}
		return true
	}

	addSignal(s.overall, w.Overall, 1)

	if c, ok := s.byTurn[ctx.Turn]; ok {
		addSignal(*c, w.Turn, minTurnSamples)
	}

	seq2Applied := false
	seq2Share := 0.0
	if seq, ok := s.lastMoves(2); ok {
		if c, found := s.bySeq2[[2]rps.Move{seq[0], seq[1]}]; found {
			if addSignal(*c, w.Seq2, minSeq2Samples) {
				seq2Applied = true
				_, seq2Share = c.top()
			}
		}
	}

	if seq, ok := s.lastMoves(4); ok {
		if c, found := s.bySeq4[[4]rps.Move{seq[0], seq[1], seq[2], seq[3]}]; found {
			addSignal(*c, w.Seq4, minSeq4Samples)
		}
	}

	if c, ok := s.byClass[rps.Classify(ctx.EnemyCharges)]; ok {
		addSignal(*c, w.Charge, minClassSamples)
	}

	if c, ok := s.byBracket[rps.HealthBracket(ctx.EnemyHealth)]; ok {
		addSignal(*c, w.Health, minBracketSamples)
	}

	if c, ok := s.byEpoch[ctx.Epoch/epochGroupSize]; ok {
		addSignal(*c, w.Epoch, minEpochSamples)
	}

	if d, ok := s.recencyDist(now); ok {
		for i := range acc {
			acc[i] += w.Recency * d[i]
		}
	}

	sum := acc[0] + acc[1] + acc[2]
	if sum <= 0 {
		for i := range acc {
			acc[i] = 1.0 / rps.NumMoves
		}
	} else {
		for i := range acc {
			acc[i] /= sum
		}
	}

	return &PredictionResult{
		Dist:       acc,
		Confidence: p.confidence(s, seq2Applied, seq2Share),
		Feasible:   rps.ChargeState{}.FeasibleMoves(),
	}
}

// confidence scores how much to trust the prediction: sample volume up
// to a cap, strength of the short-sequence match, and the empirical
// self-calibration multiplier. Always clamped to [0, ConfidenceCap].
func (p predictor) confidence(s *PatternStore, seq2Applied bool, seq2Share float64) float64 {
	n := s.Rounds()
	conf := 0.15 + 0.35*float64(min(n, 50))/50

	if seq2Applied {
		conf += 0.12
		if seq2Share > 0.6 {
			conf += 0.12
		}
	}

	if acc, an := s.Accuracy(); an >= 5 {
		// 1.0 at chance level (1/3 correct), 1.5 at perfect, 0.75 at zero.
		conf *= 0.75 + 0.75*acc
	}

	return clampConfidence(conf)
}

func clampConfidence(c float64) float64 {
	if c < 0 {
		return 0
	}
	if c > ConfidenceCap {
		return ConfidenceCap
	}
	return c
}
