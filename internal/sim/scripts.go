// Package sim provides scripted opponents with the same charge
// mechanics as the live game, for the simulation harness and for
// behavioral tests of the decision core.
package sim

import (
	"math/rand"

	"github.com/karlbackan/gigaverse-bot-sub002/pkg/rps"
)

// Script decides an enemy's preferred next move given the round number
// and its own move history. The enemy clamps the preference to its
// feasible moves afterwards.
type Script interface {
	Name() string
	Next(round int, history []rps.Move) rps.Move
}

// Constant always plays the same move.
type Constant struct {
	Move rps.Move
}

func (c Constant) Name() string { return "constant_" + c.Move.String() }

func (c Constant) Next(int, []rps.Move) rps.Move { return c.Move }

// Cycle plays the forward rock->paper->scissor cycle.
type Cycle struct{}

func (Cycle) Name() string { return "cycle" }

func (Cycle) Next(round int, _ []rps.Move) rps.Move {
	return rps.Move(round % rps.NumMoves)
}

// Biased samples from a fixed move distribution.
type Biased struct {
	Weights [3]float64
	Rng     *rand.Rand
}

func (b Biased) Name() string { return "biased" }

func (b Biased) Next(int, []rps.Move) rps.Move {
	total := b.Weights[0] + b.Weights[1] + b.Weights[2]
	if total <= 0 {
		return rps.Move(b.Rng.Intn(rps.NumMoves))
	}
	r := b.Rng.Float64() * total
	for _, m := range rps.AllMoves() {
		r -= b.Weights[m]
		if r < 0 {
			return m
		}
	}
	return rps.Scissor
}

// Markov3 hides a third-order pattern in otherwise random play: after
// its own trailing moves match Pattern, it plays Response with
// probability 1-Noise.
type Markov3 struct {
	Pattern  [3]rps.Move
	Response rps.Move
	Noise    float64
	Rng      *rand.Rand
}

func (m Markov3) Name() string { return "markov3" }

func (m Markov3) Next(_ int, history []rps.Move) rps.Move {
	n := len(history)
	if n >= 3 &&
		history[n-3] == m.Pattern[0] &&
		history[n-2] == m.Pattern[1] &&
		history[n-1] == m.Pattern[2] &&
		m.Rng.Float64() >= m.Noise {
		return m.Response
	}
	return rps.Move(m.Rng.Intn(rps.NumMoves))
}

// ChargeAware scripts also see their own charge state; the Enemy uses
// this instead of Next when implemented.
type ChargeAware interface {
	NextWithCharges(round int, history []rps.Move, charges rps.ChargeState) rps.Move
}

// Conserving plays randomly but avoids spending the last charge of a
// move, mimicking the charge-hoarding behavior seen in live enemies.
type Conserving struct {
	Rng *rand.Rand
}

func (Conserving) Name() string { return "conserving" }

func (c Conserving) Next(int, []rps.Move) rps.Move {
	return rps.Move(c.Rng.Intn(rps.NumMoves))
}

func (c Conserving) NextWithCharges(_ int, _ []rps.Move, charges rps.ChargeState) rps.Move {
	var comfortable []rps.Move
	for _, m := range rps.AllMoves() {
		if charges.Charge(m) >= 2 {
			comfortable = append(comfortable, m)
		}
	}
	if len(comfortable) == 0 {
		return rps.Move(c.Rng.Intn(rps.NumMoves))
	}
	return comfortable[c.Rng.Intn(len(comfortable))]
}
