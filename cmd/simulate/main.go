package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/karlbackan/gigaverse-bot-sub002/internal/auth"
	"github.com/karlbackan/gigaverse-bot-sub002/internal/brain"
	"github.com/karlbackan/gigaverse-bot-sub002/internal/config"
	"github.com/karlbackan/gigaverse-bot-sub002/internal/logger"
	"github.com/karlbackan/gigaverse-bot-sub002/internal/metrics"
	"github.com/karlbackan/gigaverse-bot-sub002/internal/repository"
	filestore "github.com/karlbackan/gigaverse-bot-sub002/internal/repository/file"
	"github.com/karlbackan/gigaverse-bot-sub002/internal/repository/postgres"
	redisstore "github.com/karlbackan/gigaverse-bot-sub002/internal/repository/redis"
	"github.com/karlbackan/gigaverse-bot-sub002/internal/sim"
	"github.com/karlbackan/gigaverse-bot-sub002/pkg/rps"
)

// matchResult summarizes one simulated match against a scripted enemy.
type matchResult struct {
	Script       string  `json:"script"`
	Rounds       int     `json:"rounds"`
	Wins         int     `json:"wins"`
	Losses       int     `json:"losses"`
	Ties         int     `json:"ties"`
	WinRate      float64 `json:"win_rate"`
	Accuracy     float64 `json:"prediction_accuracy"`
	AccuracyN    int     `json:"prediction_samples"`
	FinalOwnHP   float64 `json:"final_own_health"`
	FinalEnemyHP float64 `json:"final_enemy_health"`
}

func main() {
	logger.Init()

	var (
		scriptName string
		rounds     int
		matches    int
		maxCharges int
		seed       int64
		backend    string
		jsonOut    bool
	)

	flag.StringVar(&scriptName, "script", "all", "Enemy script (constant, cycle, biased, markov3, conserving, all)")
	flag.IntVar(&rounds, "n", 100, "Rounds per match")
	flag.IntVar(&matches, "matches", 1, "Matches per script")
	flag.IntVar(&maxCharges, "charges", 3, "Max charges per move")
	flag.Int64Var(&seed, "seed", 0, "Base seed (0 = time-seeded)")
	flag.StringVar(&backend, "backend", "none", "Snapshot backend (none, file, postgres, redis)")
	flag.BoolVar(&jsonOut, "json", false, "Output results as JSON")
	flag.Parse()

	cfg := config.Load()

	// The harness shares its environment with live deployments; flag a
	// stale game API token early instead of at the next real run.
	if cfg.GigaverseToken != "" {
		if _, err := auth.Check(cfg.GigaverseToken, time.Now()); err != nil {
			log.Warn().Err(err).Msg("Configured game API token is not usable")
		}
	}

	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		log.Info().Msg("Shutting down...")
		cancel()
	}()

	collector := metrics.New()
	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", collector.Handler())
		go func() {
			if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil {
				log.Error().Err(err).Msg("Metrics server stopped")
			}
		}()
	}

	store, cleanup, err := openStore(backend, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("backend", backend).Msg("Snapshot store setup failed")
	}
	if cleanup != nil {
		defer cleanup()
	}

	opts := []brain.Option{
		brain.WithRand(rand.New(rand.NewSource(seed))),
		brain.WithObserver(collector),
	}
	if store != nil {
		opts = append(opts, brain.WithStorage(store, cfg.SnapshotEvery))
	}
	engine := brain.New(cfg.Mode, opts...)

	var results []matchResult
	for _, script := range selectScripts(scriptName, seed) {
		for i := 0; i < matches; i++ {
			if ctx.Err() != nil {
				break
			}
			res := runMatch(ctx, engine, script, rounds, maxCharges)
			results = append(results, res)
			log.Info().
				Str("script", res.Script).
				Int("match", i+1).
				Float64("win_rate", res.WinRate).
				Float64("accuracy", res.Accuracy).
				Msg("Match completed")
		}
	}

	engine.Flush()

	if jsonOut {
		printJSON(results)
	} else {
		printSummary(results)
	}
}

// runMatch plays one bot-vs-script match. Both sides run under the
// same charge mechanics; the winner of a round deals damage and the
// match ends at n rounds or when a side's health reaches zero.
func runMatch(ctx context.Context, engine *brain.Engine, script sim.Script, rounds, maxCharges int) matchResult {
	const damage = 10.0

	enemy := sim.NewEnemy(script, maxCharges)
	own := sim.NewEnemy(sim.Constant{Move: rps.Rock}, maxCharges) // charge accounting only
	opponentID := script.Name() + "-" + uuid.NewString()[:8]

	ownHealth, enemyHealth := 100.0, 100.0
	res := matchResult{Script: script.Name()}

	for turn := 0; turn < rounds && ownHealth > 0 && enemyHealth > 0; turn++ {
		if ctx.Err() != nil {
			break
		}

		rctx := brain.RoundContext{
			Turn:         turn,
			OwnCharges:   own.Charges(),
			EnemyCharges: enemy.Charges(),
			OwnHealth:    ownHealth,
			EnemyHealth:  enemyHealth,
		}

		move := engine.Decide(opponentID, rctx)
		enemyMove := enemy.Play(turn)
		own.Force(turn, move)

		outcome := rps.Resolve(move, enemyMove)
		switch outcome {
		case rps.Win:
			enemyHealth -= damage
			res.Wins++
		case rps.Loss:
			ownHealth -= damage
			res.Losses++
		default:
			res.Ties++
		}
		res.Rounds++

		if err := engine.Record(opponentID, turn, move, enemyMove, outcome, rctx); err != nil {
			log.Error().Err(err).Msg("Record failed")
			break
		}
	}

	if res.Rounds > 0 {
		res.WinRate = float64(res.Wins) / float64(res.Rounds)
	}
	res.Accuracy, res.AccuracyN = engine.Opponent(opponentID).Accuracy()
	res.FinalOwnHP = ownHealth
	res.FinalEnemyHP = enemyHealth
	return res
}

func selectScripts(name string, seed int64) []sim.Script {
	rng := rand.New(rand.NewSource(seed + 1))
	all := []sim.Script{
		sim.Constant{Move: rps.Rock},
		sim.Cycle{},
		sim.Biased{Weights: [3]float64{0.6, 0.25, 0.15}, Rng: rng},
		sim.Markov3{
			Pattern:  [3]rps.Move{rps.Rock, rps.Rock, rps.Paper},
			Response: rps.Scissor,
			Noise:    0.1,
			Rng:      rng,
		},
		sim.Conserving{Rng: rng},
	}
	if name == "all" {
		return all
	}
	var picked []sim.Script
	for _, s := range all {
		if strings.HasPrefix(s.Name(), name) {
			picked = append(picked, s)
		}
	}
	if len(picked) == 0 {
		log.Fatal().Str("script", name).Msg("Unknown enemy script")
	}
	return picked
}

func openStore(backend string, cfg *config.Config) (repository.SnapshotStore, func(), error) {
	switch backend {
	case "none", "":
		return nil, nil, nil
	case "file":
		st, err := filestore.NewStore(cfg.SnapshotDir)
		if err != nil {
			return nil, nil, err
		}
		return st, func() { st.Close() }, nil
	case "postgres":
		db, err := postgres.Connect(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		repo := postgres.NewSnapshotRepo(db)
		return repo, func() { repo.Close() }, nil
	case "redis":
		cl, err := redisstore.NewClient(cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		return cl, func() { cl.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown backend %q", backend)
	}
}

func printSummary(results []matchResult) {
	byScript := make(map[string]*matchResult)
	var order []string
	for _, r := range results {
		agg, ok := byScript[r.Script]
		if !ok {
			agg = &matchResult{Script: r.Script}
			byScript[r.Script] = agg
			order = append(order, r.Script)
		}
		agg.Rounds += r.Rounds
		agg.Wins += r.Wins
		agg.Losses += r.Losses
		agg.Ties += r.Ties
	}
	sort.Strings(order)

	fmt.Printf("\nResults (%d matches):\n", len(results))
	for _, name := range order {
		a := byScript[name]
		rate := 0.0
		if a.Rounds > 0 {
			rate = float64(a.Wins) / float64(a.Rounds)
		}
		fmt.Printf("  %-16s %4d rounds:  %d wins, %d losses, %d ties  -- win rate: %.1f%%\n",
			name, a.Rounds, a.Wins, a.Losses, a.Ties, rate*100)
	}
}

func printJSON(results []matchResult) {
	out := struct {
		Matches int           `json:"matches"`
		Results []matchResult `json:"results"`
	}{
		Matches: len(results),
		Results: results,
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.Encode(out)
}
