// Package model defines the serializable forms of the decision core's
// per-opponent state, shared by the brain and the snapshot repositories.
package model

import (
	"time"

	"github.com/karlbackan/gigaverse-bot-sub002/pkg/rps"
)

// RoundRecord is one observed enemy move with the context active at the
// time it was played.
type RoundRecord struct {
	Turn         int             `json:"turn"`
	EnemyMove    rps.Move        `json:"enemy_move"`
	OwnMove      rps.Move        `json:"own_move"`
	EnemyCharges rps.ChargeState `json:"enemy_charges"`
	OwnHealth    float64         `json:"own_health"`
	EnemyHealth  float64         `json:"enemy_health"`
	Epoch        int             `json:"epoch"`
	PlayedAt     time.Time       `json:"played_at"`
}

// AccuracyRecord is one scored prediction: what the predictor expected
// the enemy to play, what it actually played, and whether they matched.
type AccuracyRecord struct {
	Predicted rps.Move `json:"predicted"`
	Actual    rps.Move `json:"actual"`
	Correct   bool     `json:"correct"`
}

// TurnCounts holds the move counters conditioned on a turn index.
type TurnCounts struct {
	Turn   int    `json:"turn"`
	Counts [3]int `json:"counts"`
}

// SeqCounts holds the move counters conditioned on a trailing move
// sequence. Seq is the sequence oldest-first.
type SeqCounts struct {
	Seq    []rps.Move `json:"seq"`
	Counts [3]int     `json:"counts"`
}

// ClassCounts holds the move counters conditioned on a charge class.
type ClassCounts struct {
	Class  rps.ChargeClass `json:"class"`
	Counts [3]int          `json:"counts"`
}

// BracketCounts holds the move counters conditioned on a health bracket.
type BracketCounts struct {
	Bracket int    `json:"bracket"`
	Counts  [3]int `json:"counts"`
}

// EpochCounts holds the move counters conditioned on an epoch group.
type EpochCounts struct {
	Epoch  int    `json:"epoch"`
	Counts [3]int `json:"counts"`
}

// Snapshot is the persisted form of one opponent's PatternStore.
// Conditioned tables are stored as explicit entry slices rather than
// string-keyed maps so that the sequence and class keys survive a
// round-trip without ad hoc key encoding.
type Snapshot struct {
	Mode       string `json:"mode"`
	OpponentID string `json:"opponent_id"`

	Overall   [3]int           `json:"overall"`
	ByTurn    []TurnCounts     `json:"by_turn,omitempty"`
	BySeq2    []SeqCounts      `json:"by_seq2,omitempty"`
	BySeq4    []SeqCounts      `json:"by_seq4,omitempty"`
	ByClass   []ClassCounts    `json:"by_class,omitempty"`
	ByBracket []BracketCounts  `json:"by_bracket,omitempty"`
	ByEpoch   []EpochCounts    `json:"by_epoch,omitempty"`
	Recent    []RoundRecord    `json:"recent,omitempty"`
	Window    []rps.Outcome    `json:"window,omitempty"`
	Accuracy  []AccuracyRecord `json:"accuracy,omitempty"`

	Wins   int `json:"wins"`
	Losses int `json:"losses"`
	Ties   int `json:"ties"`
	Rounds int `json:"rounds"`

	SavedAt time.Time `json:"saved_at"`
}
