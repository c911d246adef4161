package rps

// ChargeState holds the per-move charge counters for one combatant.
// A nonnegative value means the move is currently usable; a negative
// value means it is depleted and recharging.
type ChargeState struct {
	Rock    int `json:"rock"`
	Paper   int `json:"paper"`
	Scissor int `json:"scissor"`
}

// Charge returns the charge counter for m.
func (cs ChargeState) Charge(m Move) int {
	switch m {
	case Rock:
		return cs.Rock
	case Paper:
		return cs.Paper
	default:
		return cs.Scissor
	}
}

// SetCharge replaces the charge counter for m.
func (cs *ChargeState) SetCharge(m Move, v int) {
	switch m {
	case Rock:
		cs.Rock = v
	case Paper:
		cs.Paper = v
	default:
		cs.Scissor = v
	}
}

// Feasible reports whether m can currently be played.
func (cs ChargeState) Feasible(m Move) bool {
	return cs.Charge(m) >= 0
}

// FeasibleMoves returns every currently playable move in canonical order.
func (cs ChargeState) FeasibleMoves() []Move {
	var out []Move
	for _, m := range AllMoves() {
		if cs.Feasible(m) {
			out = append(out, m)
		}
	}
	return out
}

// TotalRemaining sums the nonnegative charge counters.
func (cs ChargeState) TotalRemaining() int {
	total := 0
	for _, m := range AllMoves() {
		if c := cs.Charge(m); c > 0 {
			total += c
		}
	}
	return total
}

// ChargeClass buckets a ChargeState into a coarse category used as a
// conditioning key for pattern counters. Explicit enumerated values
// avoid the key-collision hazards of concatenated string keys.
type ChargeClass int

const (
	ChargeAllCharged ChargeClass = iota
	ChargeRockRecharging
	ChargePaperRecharging
	ChargeScissorRecharging
	ChargeOnlyRockLeft
	ChargeOnlyPaperLeft
	ChargeOnlyScissorLeft
	ChargeConservingRock
	ChargeConservingPaper
	ChargeConservingScissor
	ChargeCriticalLow
)

func (c ChargeClass) String() string {
	switch c {
	case ChargeAllCharged:
		return "all_charged"
	case ChargeRockRecharging:
		return "rock_recharging"
	case ChargePaperRecharging:
		return "paper_recharging"
	case ChargeScissorRecharging:
		return "scissor_recharging"
	case ChargeOnlyRockLeft:
		return "only_rock_left"
	case ChargeOnlyPaperLeft:
		return "only_paper_left"
	case ChargeOnlyScissorLeft:
		return "only_scissor_left"
	case ChargeConservingRock:
		return "conserving_rock"
	case ChargeConservingPaper:
		return "conserving_paper"
	case ChargeConservingScissor:
		return "conserving_scissor"
	case ChargeCriticalLow:
		return "critical_low"
	}
	return "unknown"
}

// Classify buckets cs into its ChargeClass. The rules, most specific
// first: two moves depleted leaves a forced move; one move depleted
// names the recharging move; with everything usable, a total of two or
// fewer remaining charges is critical, and exactly one move sitting on
// its last charge while the others are comfortable means the enemy is
// conserving it.
func Classify(cs ChargeState) ChargeClass {
	var depleted []Move
	for _, m := range AllMoves() {
		if !cs.Feasible(m) {
			depleted = append(depleted, m)
		}
	}

	switch len(depleted) {
	case 3:
		// Invalid state; callers clamp this to all-feasible before use.
		return ChargeCriticalLow
	case 2:
		for _, m := range AllMoves() {
			if cs.Feasible(m) {
				switch m {
				case Rock:
					return ChargeOnlyRockLeft
				case Paper:
					return ChargeOnlyPaperLeft
				default:
					return ChargeOnlyScissorLeft
				}
			}
		}
	case 1:
		switch depleted[0] {
		case Rock:
			return ChargeRockRecharging
		case Paper:
			return ChargePaperRecharging
		default:
			return ChargeScissorRecharging
		}
	}

	if cs.TotalRemaining() <= 2 {
		return ChargeCriticalLow
	}

	var last []Move
	comfortable := true
	for _, m := range AllMoves() {
		switch c := cs.Charge(m); {
		case c == 1:
			last = append(last, m)
		case c < 2:
			comfortable = false
		}
	}
	if len(last) == 1 && comfortable {
		switch last[0] {
		case Rock:
			return ChargeConservingRock
		case Paper:
			return ChargeConservingPaper
		default:
			return ChargeConservingScissor
		}
	}

	return ChargeAllCharged
}

// HealthBracket buckets a health percentage (0..100) into one of four
// quartile brackets, 0 (critical) through 3 (healthy).
func HealthBracket(percent float64) int {
	switch {
	case percent <= 25:
		return 0
	case percent <= 50:
		return 1
	case percent <= 75:
		return 2
	default:
		return 3
	}
}
