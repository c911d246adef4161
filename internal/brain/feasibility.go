package brain

import (
	"github.com/rs/zerolog/log"

	"github.com/karlbackan/gigaverse-bot-sub002/pkg/rps"
)

// feasibilityBonus values are added to confidence after masking: a
// forced enemy move is as certain as the cap allows, and a two-move
// situation is still worth a small bump.
const (
	guaranteedBonus  = 0.30
	twoFeasibleBonus = 0.10
)

// feasibleOrClamped returns the enemy's playable moves, clamping a
// malformed all-negative charge state to all-feasible so the policy
// always has a legal move to counter.
func feasibleOrClamped(cs rps.ChargeState) []rps.Move {
	feasible := cs.FeasibleMoves()
	if len(feasible) == 0 {
		log.Warn().
			Int("rock", cs.Rock).
			Int("paper", cs.Paper).
			Int("scissor", cs.Scissor).
			Msg("all enemy moves depleted; clamping to all feasible")
		all := rps.AllMoves()
		return all[:]
	}
	return feasible
}

// filterFeasible masks the predicted distribution to the enemy's
// feasible moves and renormalizes. It mutates pred in place, recording
// the feasible set, the guaranteed flag, and the feasibility bonus to
// confidence.
func filterFeasible(pred *PredictionResult, cs rps.ChargeState) {
	maskFeasible(pred, feasibleOrClamped(cs))
}

// maskFeasible applies an already-resolved feasible set, so callers
// that computed it for the policy do not clamp (and warn) twice.
func maskFeasible(pred *PredictionResult, feasible []rps.Move) {
	var masked [3]float64
	sum := 0.0
	for _, m := range feasible {
		masked[m] = pred.Dist[m]
		sum += masked[m]
	}
	if sum > 0 {
		for i := range masked {
			masked[i] /= sum
		}
	} else {
		// The prediction put all its mass on depleted moves; fall back
		// to uniform over what the enemy can actually play.
		for _, m := range feasible {
			masked[m] = 1.0 / float64(len(feasible))
		}
	}

	pred.Dist = masked
	pred.Feasible = feasible
	pred.Guaranteed = len(feasible) == 1

	switch len(feasible) {
	case 1:
		pred.Confidence = clampConfidence(pred.Confidence + guaranteedBonus)
	case 2:
		pred.Confidence = clampConfidence(pred.Confidence + twoFeasibleBonus)
	}
}
