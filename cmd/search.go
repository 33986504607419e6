package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/cwbudde/dlogsolve/internal/hashfn"
	"github.com/cwbudde/dlogsolve/internal/jobs"
	"github.com/cwbudde/dlogsolve/internal/modarith"
	"github.com/cwbudde/dlogsolve/internal/population"
	"github.com/cwbudde/dlogsolve/internal/progress"
	"github.com/cwbudde/dlogsolve/internal/store"
)

const (
	strategyRandom = "random"
	strategyMayfly = "mayfly"
)

var (
	searchTargetHash  string
	searchPop         int
	searchGenerations int
	searchWorkers     int
	searchRadius      uint32
	searchFormulas    string
	searchInitMin     uint32
	searchInitMax     uint32
	searchSeed        int64
	searchStrategy    string
	searchTraceDir    string
	searchEvery       int
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search for an (input, formula) pair producing a target hash",
	Long: `Evolves a population of (value, formula) candidates until one hashes to the
target or the generation limit is reached. Every generation is recorded to
<trace-dir>/runs/<run-id>/trace.jsonl; pass --trace-dir "" to disable tracing.`,
	Args: cobra.NoArgs,
	RunE: runSearch,
}

func init() {
	defaults := population.DefaultConfig()

	searchCmd.Flags().StringVar(&searchTargetHash, "target-hash", "", "Target hash in [0, 4294967295]")
	searchCmd.Flags().IntVar(&searchPop, "pop", defaults.PopulationSize, "Population size")
	searchCmd.Flags().IntVar(&searchGenerations, "generations", defaults.MaxGenerations, "Maximum generations")
	searchCmd.Flags().IntVar(&searchWorkers, "workers", defaults.Workers, "Concurrent chunks per generation")
	searchCmd.Flags().Uint32Var(&searchRadius, "radius", defaults.MutationRadius, "Mutation radius")
	searchCmd.Flags().StringVar(&searchFormulas, "formulas", "0,1,2,3,4", "Comma-separated formula indices candidates may use")
	searchCmd.Flags().Uint32Var(&searchInitMin, "init-min", defaults.InitMin, "Smallest initial value")
	searchCmd.Flags().Uint32Var(&searchInitMax, "init-max", defaults.InitMax, "Largest initial value")
	searchCmd.Flags().Int64Var(&searchSeed, "seed", 0, "Random seed (0 = time based)")
	searchCmd.Flags().StringVar(&searchStrategy, "strategy", strategyRandom, "Search strategy: random or mayfly")
	searchCmd.Flags().StringVar(&searchTraceDir, "trace-dir", defaultDataDir, "Directory for run traces (empty = disabled)")
	searchCmd.Flags().IntVar(&searchEvery, "progress-every", progress.DefaultEvery, "Generations between progress lines when not on a terminal")

	rootCmd.AddCommand(searchCmd)
}

// parseTargetHash reads a hash value in [0, 2^32).
func parseTargetHash(s string) (int64, error) {
	v, err := modarith.Parse(s)
	if err != nil {
		return 0, err
	}
	if !v.IsUint64() || v.Uint64() > math.MaxUint32 {
		return 0, fmt.Errorf("%w: target hash %s is outside [0, %d]", modarith.ErrInvalidInput, s, uint32(math.MaxUint32))
	}
	return int64(v.Uint64()), nil
}

// searchConfig builds the population config from flags.
func searchConfig() (population.Config, error) {
	cfg := population.DefaultConfig()
	cfg.PopulationSize = searchPop
	cfg.MaxGenerations = searchGenerations
	cfg.Workers = searchWorkers
	cfg.MutationRadius = searchRadius
	cfg.InitMin = searchInitMin
	cfg.InitMax = searchInitMax

	formulas, err := parseFormulas(searchFormulas)
	if err != nil {
		return cfg, err
	}
	cfg.Formulas = formulas

	cfg.Seed = searchSeed
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	return cfg, cfg.Validate()
}

// parseFormulas reads a comma-separated list of formula indices.
func parseFormulas(s string) ([]hashfn.Formula, error) {
	var formulas []hashfn.Formula
	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		idx, err := strconv.Atoi(field)
		if err != nil {
			return nil, fmt.Errorf("%w: formula index %q", modarith.ErrInvalidInput, field)
		}
		f, err := hashfn.ParseFormula(idx)
		if err != nil {
			return nil, err
		}
		formulas = append(formulas, f)
	}
	return formulas, nil
}

func newStrategy(name string, cfg population.Config) (population.Strategy, error) {
	switch name {
	case strategyRandom:
		return population.NewSearcher(cfg)
	case strategyMayfly:
		return population.NewGuidedSearch(cfg)
	default:
		return nil, fmt.Errorf("unknown strategy: %s", name)
	}
}

func runSearch(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	p := newPrompter(cmd.InOrStdin(), out)

	targetStr, err := p.valueOr(searchTargetHash, "Enter the target hash: ")
	if err != nil {
		return err
	}
	target, err := parseTargetHash(targetStr)
	if err != nil {
		return err
	}

	cfg, err := searchConfig()
	if err != nil {
		return err
	}
	strategy, err := newStrategy(searchStrategy, cfg)
	if err != nil {
		return err
	}

	manager := jobs.NewManager()
	run := manager.Create(searchStrategy, target)
	runLogger := slog.Default().With("run_id", run.ID)
	strategy.WithLogger(runLogger)

	runLogger.Info("Starting search",
		"target", target,
		"strategy", searchStrategy,
		"population", cfg.PopulationSize,
		"generations", cfg.MaxGenerations,
		"workers", cfg.Workers,
		"seed", cfg.Seed,
	)

	var (
		runStore *store.FSStore
		trace    *store.TraceWriter
	)
	if searchTraceDir != "" {
		runStore, err = store.NewFSStore(searchTraceDir)
		if err != nil {
			return err
		}
		trace, err = store.NewTraceWriter(runStore.BaseDir(), run.ID)
		if err != nil {
			return err
		}
		defer trace.Close()
	}

	total := cfg.MaxGenerations
	if searchStrategy == strategyMayfly {
		total = len(cfg.Formulas)
	}
	bar := progress.New(cmd.ErrOrStderr(), total)
	bar.Every = searchEvery

	strategy.OnProgress(func(gs population.GenerationStats) {
		logRunError(runLogger, "update progress", manager.Update(run.ID, func(r *jobs.Run) {
			r.Generation = gs.Generation
			r.Evaluated += int64(gs.Evaluated)
		}))
		bar.Update(gs.Generation, gs.Evaluated)
		if trace != nil {
			if err := trace.Write(store.TraceEntry{
				Generation:    gs.Generation,
				Evaluated:     gs.Evaluated,
				NonConvergent: gs.NonConvergent,
				Matched:       gs.Matched,
				Timestamp:     time.Now(),
			}); err != nil {
				runLogger.Warn("Failed to write trace entry", "error", err)
			}
		}
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	logRunError(runLogger, "mark running", manager.MarkRunning(run.ID))
	res, searchErr := strategy.Search(ctx, target)
	bar.Finish()

	switch {
	case errors.Is(searchErr, context.Canceled):
		logRunError(runLogger, "mark cancelled", manager.MarkCancelled(run.ID))
	case searchErr != nil:
		logRunError(runLogger, "mark failed", manager.MarkFailed(run.ID, searchErr))
	default:
		logRunError(runLogger, "record generation", manager.Update(run.ID, func(r *jobs.Run) { r.Generation = res.Generation }))
		logRunError(runLogger, "mark completed",
			manager.MarkCompleted(run.ID, res.Found, res.Candidate.Value, int(res.Candidate.Formula)))
	}

	if runStore != nil {
		final, _ := manager.Get(run.ID)
		if err := runStore.SaveRun(final); err != nil {
			runLogger.Warn("Failed to save run summary", "error", err)
		}
	}

	if searchErr != nil {
		return searchErr
	}

	if res.Found {
		progress.Success(out, "Found formula that produces the hash %d: (%d, %d)",
			target, res.Candidate.Value, int(res.Candidate.Formula))
	} else {
		progress.Failure(out, "No formula found that produces the hash %d after %d generations.",
			target, cfg.MaxGenerations)
	}
	if trace != nil {
		fmt.Fprintf(out, "Run %s traced to %s\n", run.ID, trace.Path())
	}
	return nil
}

// logRunError records a failed run registry call. The registry only feeds the
// run summary, so the search carries on.
func logRunError(logger *slog.Logger, action string, err error) {
	if err != nil {
		logger.Debug("Run registry update failed", "action", action, "error", err)
	}
}
