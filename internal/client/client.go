// Package client defines the interface to the host game's API and the
// round loop that drives the decision core through it. The HTTP
// transport itself lives outside this module; anything satisfying
// GameClient can be plugged in.
package client

import (
	"context"

	"github.com/karlbackan/gigaverse-bot-sub002/pkg/rps"
)

// Round is the state of one combat round as reported by the game.
type Round struct {
	ID           string
	OpponentID   string
	Turn         int
	OwnCharges   rps.ChargeState
	EnemyCharges rps.ChargeState
	OwnHealth    float64
	EnemyHealth  float64
	OwnShield    float64
	EnemyShield  float64
	Epoch        int
}

// Result is a resolved round: the enemy's revealed move and the
// outcome from the bot's perspective.
type Result struct {
	EnemyMove rps.Move
	Outcome   rps.Outcome
}

// GameClient is the transport boundary to the host game.
// NextRound returns (nil, nil) when the current run is over.
type GameClient interface {
	NextRound(ctx context.Context) (*Round, error)
	SubmitMove(ctx context.Context, roundID string, move rps.Move) (*Result, error)
}
