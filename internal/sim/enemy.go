package sim

import (
	"github.com/karlbackan/gigaverse-bot-sub002/pkg/rps"
)

// rechargeRounds is how many rounds a move stays depleted after its
// last charge is spent.
const rechargeRounds = 2

// Enemy wraps a Script with the game's charge mechanics: every played
// move spends a charge, a move played on zero charges goes negative
// and recharges one step per round, and the script's preference is
// clamped to whatever is feasible.
type Enemy struct {
	Script     Script
	MaxCharges int

	charges rps.ChargeState
	history []rps.Move
}

// NewEnemy creates an enemy with all charges full.
func NewEnemy(script Script, maxCharges int) *Enemy {
	if maxCharges <= 0 {
		maxCharges = 3
	}
	return &Enemy{
		Script:     script,
		MaxCharges: maxCharges,
		charges:    rps.ChargeState{Rock: maxCharges, Paper: maxCharges, Scissor: maxCharges},
	}
}

// Charges returns the enemy's current charge state. Callers read this
// before Play to build the round context the bot sees.
func (e *Enemy) Charges() rps.ChargeState { return e.charges }

// History returns the enemy's played moves oldest-first.
func (e *Enemy) History() []rps.Move { return e.history }

// Play advances one round: recharge ticks, the script picks a
// preference, the preference is clamped to a feasible move, and the
// spent charge is deducted.
func (e *Enemy) Play(round int) rps.Move {
	e.tick()

	var want rps.Move
	if ca, ok := e.Script.(ChargeAware); ok {
		want = ca.NextWithCharges(round, e.history, e.charges)
	} else {
		want = e.Script.Next(round, e.history)
	}

	move := e.clamp(want)
	if e.charges.Charge(move) == 0 {
		e.charges.SetCharge(move, -rechargeRounds)
	} else {
		e.charges.SetCharge(move, e.charges.Charge(move)-1)
	}

	e.history = append(e.history, move)
	return move
}

// Force advances one round with a move chosen externally instead of by
// the script. The simulation harness uses this to run the bot's own
// side under the same charge mechanics.
func (e *Enemy) Force(_ int, move rps.Move) {
	e.tick()
	if e.charges.Charge(move) == 0 {
		e.charges.SetCharge(move, -rechargeRounds)
	} else if e.charges.Charge(move) > 0 {
		e.charges.SetCharge(move, e.charges.Charge(move)-1)
	}
	e.history = append(e.history, move)
}

// tick advances recharge clocks: depleted moves step toward zero, at
// which point they come back with one charge.
func (e *Enemy) tick() {
	for _, m := range rps.AllMoves() {
		if c := e.charges.Charge(m); c < 0 {
			if c+1 == 0 {
				e.charges.SetCharge(m, 1)
			} else {
				e.charges.SetCharge(m, c+1)
			}
		}
	}
}

// clamp substitutes the nearest feasible move when the preference is
// depleted. All three depleted cannot happen: at most one move can go
// negative per round and recharging brings them back.
func (e *Enemy) clamp(want rps.Move) rps.Move {
	if e.charges.Feasible(want) {
		return want
	}
	feasible := e.charges.FeasibleMoves()
	if len(feasible) == 0 {
		return want
	}
	for _, m := range feasible {
		if m == rps.CounterTo(want) {
			return m
		}
	}
	return feasible[0]
}
