// Package brain is the opponent-modeling and decision core: it tracks
// per-opponent move patterns, fuses them into a prediction for the next
// enemy move, and picks the bot's move subject to the enemy's charge
// constraints.
package brain

import (
	"math"
	"time"

	"github.com/karlbackan/gigaverse-bot-sub002/internal/model"
	"github.com/karlbackan/gigaverse-bot-sub002/pkg/rps"
)

const (
	recentCap   = 100
	windowCap   = 20
	accuracyCap = 40

	// epochGroupSize buckets the session epoch counter into coarse
	// groups for conditioning, so neighboring epochs share counters.
	epochGroupSize = 10
)

// moveCounts is a per-move counter triple indexed by rps.Move.
type moveCounts [3]int

func (c *moveCounts) add(m rps.Move) { c[m]++ }

func (c moveCounts) total() int { return c[0] + c[1] + c[2] }

// dist returns the counters as a probability distribution, or the zero
// array when no samples exist.
func (c moveCounts) dist() [3]float64 {
	n := c.total()
	if n == 0 {
		return [3]float64{}
	}
	var d [3]float64
	for i := range c {
		d[i] = float64(c[i]) / float64(n)
	}
	return d
}

// top returns the most counted move and its share of the samples.
func (c moveCounts) top() (rps.Move, float64) {
	n := c.total()
	if n == 0 {
		return rps.Rock, 0
	}
	best := rps.Rock
	for _, m := range rps.AllMoves() {
		if c[m] > c[best] {
			best = m
		}
	}
	return best, float64(c[best]) / float64(n)
}

// PatternStore accumulates everything the predictor knows about one
// opponent in one game mode: unbounded aggregate counters conditioned
// on several context keys, a bounded buffer of raw recent rounds, the
// rolling outcome window, and the prediction accuracy history.
type PatternStore struct {
	overall   moveCounts
	byTurn    map[int]*moveCounts
	bySeq2    map[[2]rps.Move]*moveCounts
	bySeq4    map[[4]rps.Move]*moveCounts
	byClass   map[rps.ChargeClass]*moveCounts
	byBracket map[int]*moveCounts
	byEpoch   map[int]*moveCounts

	recent   []model.RoundRecord
	window   []rps.Outcome
	accuracy []model.AccuracyRecord

	wins, losses, ties int
	rounds             int
}

// NewPatternStore returns an empty store.
func NewPatternStore() *PatternStore {
	return &PatternStore{
		byTurn:    make(map[int]*moveCounts),
		bySeq2:    make(map[[2]rps.Move]*moveCounts),
		bySeq4:    make(map[[4]rps.Move]*moveCounts),
		byClass:   make(map[rps.ChargeClass]*moveCounts),
		byBracket: make(map[int]*moveCounts),
		byEpoch:   make(map[int]*moveCounts),
	}
}

// Rounds returns the number of recorded rounds.
func (s *PatternStore) Rounds() int { return s.rounds }

// Totals returns the win/loss/tie totals from the bot's perspective.
func (s *PatternStore) Totals() (wins, losses, ties int) {
	return s.wins, s.losses, s.ties
}

func bump(m map[int]*moveCounts, key int, move rps.Move) {
	c, ok := m[key]
	if !ok {
		c = &moveCounts{}
		m[key] = c
	}
	c.add(move)
}

// RecordRound appends a resolved round: the enemy's move with its
// context feeds every conditioned counter, and outcome (the bot's own
// result) feeds the rolling performance window.
func (s *PatternStore) RecordRound(rec model.RoundRecord, outcome rps.Outcome) {
	// Sequence counters must be keyed on the history *before* this
	// round, so they are updated before the record is appended.
	if seq, ok := s.lastMoves(2); ok {
		key := [2]rps.Move{seq[0], seq[1]}
		c, found := s.bySeq2[key]
		if !found {
			c = &moveCounts{}
			s.bySeq2[key] = c
		}
		c.add(rec.EnemyMove)
	}
	if seq, ok := s.lastMoves(4); ok {
		key := [4]rps.Move{seq[0], seq[1], seq[2], seq[3]}
		c, found := s.bySeq4[key]
		if !found {
			c = &moveCounts{}
			s.bySeq4[key] = c
		}
		c.add(rec.EnemyMove)
	}

	s.overall.add(rec.EnemyMove)
	bump(s.byTurn, rec.Turn, rec.EnemyMove)
	bump(s.byBracket, rps.HealthBracket(rec.EnemyHealth), rec.EnemyMove)
	bump(s.byEpoch, rec.Epoch/epochGroupSize, rec.EnemyMove)

	class := rps.Classify(rec.EnemyCharges)
	c, ok := s.byClass[class]
	if !ok {
		c = &moveCounts{}
		s.byClass[class] = c
	}
	c.add(rec.EnemyMove)

	s.recent = append(s.recent, rec)
	if len(s.recent) > recentCap {
		s.recent = s.recent[1:]
	}

	s.window = append(s.window, outcome)
	if len(s.window) > windowCap {
		s.window = s.window[1:]
	}

	switch outcome {
	case rps.Win:
		s.wins++
	case rps.Loss:
		s.losses++
	default:
		s.ties++
	}
	s.rounds++
}

// RecordAccuracy appends one scored prediction to the bounded accuracy
// history feeding the predictor's self-calibration.
func (s *PatternStore) RecordAccuracy(predicted, actual rps.Move) {
	s.accuracy = append(s.accuracy, model.AccuracyRecord{
		Predicted: predicted,
		Actual:    actual,
		Correct:   predicted == actual,
	})
	if len(s.accuracy) > accuracyCap {
		s.accuracy = s.accuracy[1:]
	}
}

// Accuracy returns the fraction of recent predictions that were correct
// and the number of samples backing it.
func (s *PatternStore) Accuracy() (float64, int) {
	if len(s.accuracy) == 0 {
		return 0, 0
	}
	correct := 0
	for _, a := range s.accuracy {
		if a.Correct {
			correct++
		}
	}
	return float64(correct) / float64(len(s.accuracy)), len(s.accuracy)
}

// RecentWinRate returns the win rate over the rolling outcome window
// and the number of outcomes in it.
func (s *PatternStore) RecentWinRate() (float64, int) {
	if len(s.window) == 0 {
		return 0, 0
	}
	wins := 0
	for _, o := range s.window {
		if o == rps.Win {
			wins++
		}
	}
	return float64(wins) / float64(len(s.window)), len(s.window)
}

// lastMoves returns the trailing n enemy moves oldest-first.
func (s *PatternStore) lastMoves(n int) ([]rps.Move, bool) {
	if len(s.recent) < n {
		return nil, false
	}
	out := make([]rps.Move, n)
	for i := 0; i < n; i++ {
		out[i] = s.recent[len(s.recent)-n+i].EnemyMove
	}
	return out, true
}

// recencyDist returns the exponentially time-decayed move distribution
// over the recent buffer, weighting each record by exp(-age in hours),
// relative to now.
func (s *PatternStore) recencyDist(now time.Time) ([3]float64, bool) {
	if len(s.recent) == 0 {
		return [3]float64{}, false
	}
	var weighted [3]float64
	total := 0.0
	for _, rec := range s.recent {
		age := now.Sub(rec.PlayedAt).Hours()
		if age < 0 {
			age = 0
		}
		w := math.Exp(-age)
		weighted[rec.EnemyMove] += w
		total += w
	}
	if total == 0 {
		return [3]float64{}, false
	}
	for i := range weighted {
		weighted[i] /= total
	}
	return weighted, true
}

// RecentEntropy returns the Shannon entropy (bits) of the recent move
// distribution. Near log2(3) the opponent is close to uniform; low
// values mean it is heavily biased. Instrumentation only, the decision
// path does not read it.
func (s *PatternStore) RecentEntropy() float64 {
	var counts moveCounts
	for _, rec := range s.recent {
		counts.add(rec.EnemyMove)
	}
	h := 0.0
	for _, p := range counts.dist() {
		if p > 0 {
			h -= p * math.Log2(p)
		}
	}
	return h
}

// Snapshot converts the store to its serializable form.
func (s *PatternStore) Snapshot(mode, opponentID string) *model.Snapshot {
	snap := &model.Snapshot{
		Mode:       mode,
		OpponentID: opponentID,
		Overall:    s.overall,
		Wins:       s.wins,
		Losses:     s.losses,
		Ties:       s.ties,
		Rounds:     s.rounds,
		SavedAt:    time.Now().UTC(),
	}
	for turn, c := range s.byTurn {
		snap.ByTurn = append(snap.ByTurn, model.TurnCounts{Turn: turn, Counts: *c})
	}
	for seq, c := range s.bySeq2 {
		seq := seq
		snap.BySeq2 = append(snap.BySeq2, model.SeqCounts{Seq: seq[:], Counts: *c})
	}
	for seq, c := range s.bySeq4 {
		seq := seq
		snap.BySeq4 = append(snap.BySeq4, model.SeqCounts{Seq: seq[:], Counts: *c})
	}
	for class, c := range s.byClass {
		snap.ByClass = append(snap.ByClass, model.ClassCounts{Class: class, Counts: *c})
	}
	for bracket, c := range s.byBracket {
		snap.ByBracket = append(snap.ByBracket, model.BracketCounts{Bracket: bracket, Counts: *c})
	}
	for epoch, c := range s.byEpoch {
		snap.ByEpoch = append(snap.ByEpoch, model.EpochCounts{Epoch: epoch, Counts: *c})
	}
	snap.Recent = append(snap.Recent, s.recent...)
	snap.Window = append(snap.Window, s.window...)
	snap.Accuracy = append(snap.Accuracy, s.accuracy...)
	return snap
}

// RestoreStore rebuilds a PatternStore from a persisted snapshot.
// Entries with malformed sequence lengths are skipped rather than
// corrupting in-memory invariants.
func RestoreStore(snap *model.Snapshot) *PatternStore {
	s := NewPatternStore()
	if snap == nil {
		return s
	}
	s.overall = snap.Overall
	s.wins, s.losses, s.ties = snap.Wins, snap.Losses, snap.Ties
	s.rounds = snap.Rounds
	for _, e := range snap.ByTurn {
		c := moveCounts(e.Counts)
		s.byTurn[e.Turn] = &c
	}
	for _, e := range snap.BySeq2 {
		if len(e.Seq) != 2 {
			continue
		}
		c := moveCounts(e.Counts)
		s.bySeq2[[2]rps.Move{e.Seq[0], e.Seq[1]}] = &c
	}
	for _, e := range snap.BySeq4 {
		if len(e.Seq) != 4 {
			continue
		}
		c := moveCounts(e.Counts)
		s.bySeq4[[4]rps.Move{e.Seq[0], e.Seq[1], e.Seq[2], e.Seq[3]}] = &c
	}
	for _, e := range snap.ByClass {
		c := moveCounts(e.Counts)
		s.byClass[e.Class] = &c
	}
	for _, e := range snap.ByBracket {
		c := moveCounts(e.Counts)
		s.byBracket[e.Bracket] = &c
	}
	for _, e := range snap.ByEpoch {
		c := moveCounts(e.Counts)
		s.byEpoch[e.Epoch] = &c
	}
	recent := snap.Recent
	if len(recent) > recentCap {
		recent = recent[len(recent)-recentCap:]
	}
	s.recent = append(s.recent, recent...)
	window := snap.Window
	if len(window) > windowCap {
		window = window[len(window)-windowCap:]
	}
	s.window = append(s.window, window...)
	accuracy := snap.Accuracy
	if len(accuracy) > accuracyCap {
		accuracy = accuracy[len(accuracy)-accuracyCap:]
	}
	s.accuracy = append(s.accuracy, accuracy...)
	return s
}
