// Package rps implements the rules of the three-move simultaneous game:
// moves, outcomes, the counter relation, and the charge (cooldown) state
// that constrains which moves a combatant may play.
package rps

import "fmt"

// Move is one of the three playable moves.
type Move int

const (
	Rock Move = iota
	Paper
	Scissor
)

// NumMoves is the number of distinct moves.
const NumMoves = 3

// AllMoves lists every move in canonical order.
func AllMoves() [NumMoves]Move {
	return [NumMoves]Move{Rock, Paper, Scissor}
}

func (m Move) String() string {
	switch m {
	case Rock:
		return "rock"
	case Paper:
		return "paper"
	case Scissor:
		return "scissor"
	}
	return fmt.Sprintf("move(%d)", int(m))
}

// Valid reports whether m is one of the three defined moves.
func (m Move) Valid() bool {
	return m >= Rock && m <= Scissor
}

// ParseMove converts a move name to a Move.
func ParseMove(s string) (Move, error) {
	switch s {
	case "rock":
		return Rock, nil
	case "paper":
		return Paper, nil
	case "scissor", "scissors":
		return Scissor, nil
	}
	return 0, fmt.Errorf("unknown move %q", s)
}

// Beats returns the move that m defeats.
func (m Move) Beats() Move {
	switch m {
	case Rock:
		return Scissor
	case Paper:
		return Rock
	default:
		return Paper
	}
}

// CounterTo returns the move that defeats m.
func CounterTo(m Move) Move {
	switch m {
	case Rock:
		return Paper
	case Paper:
		return Scissor
	default:
		return Rock
	}
}

// Outcome is a round result from the decision-maker's own perspective.
type Outcome int

const (
	Tie Outcome = iota
	Win
	Loss
)

func (o Outcome) String() string {
	switch o {
	case Win:
		return "win"
	case Loss:
		return "loss"
	case Tie:
		return "tie"
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// Valid reports whether o is one of the three defined outcomes.
func (o Outcome) Valid() bool {
	return o >= Tie && o <= Loss
}

// Resolve returns the outcome of own vs opp from own's perspective.
func Resolve(own, opp Move) Outcome {
	if own == opp {
		return Tie
	}
	if own.Beats() == opp {
		return Win
	}
	return Loss
}
