package population

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/cwbudde/dlogsolve/internal/hashfn"
	"github.com/cwbudde/dlogsolve/internal/opt"
)

// Strategy is a search over candidates for a target hash.
type Strategy interface {
	Search(ctx context.Context, target int64) (Result, error)
	OnProgress(fn ProgressReporter)
	WithLogger(logger *slog.Logger)
}

var (
	_ Strategy = (*Searcher)(nil)
	_ Strategy = (*GuidedSearch)(nil)
)

// noMatchCost is returned for values whose hash cannot be compared.
const noMatchCost = float64(1 << 32)

// GuidedSearch minimizes the distance between hash(value) and the target with
// one mayfly run per formula, treating the value as a continuous variable.
// A zero-cost evaluation is a match.
type GuidedSearch struct {
	cfg          Config
	progress     ProgressReporter
	logger       *slog.Logger
	newOptimizer func(seed int64) opt.Optimizer
}

// NewGuidedSearch validates cfg and returns a GuidedSearch. MaxGenerations
// becomes the optimizer's iteration count and PopulationSize its swarm size.
func NewGuidedSearch(cfg Config) (*GuidedSearch, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	gs := &GuidedSearch{cfg: cfg, logger: slog.Default()}
	gs.newOptimizer = func(seed int64) opt.Optimizer {
		return opt.NewMayfly(cfg.MaxGenerations, cfg.PopulationSize, seed)
	}
	return gs, nil
}

func (gs *GuidedSearch) OnProgress(fn ProgressReporter) {
	gs.progress = fn
}

func (gs *GuidedSearch) WithLogger(logger *slog.Logger) {
	gs.logger = logger
}

// formulaRun is the state of one formula's optimization. The objective may
// be called concurrently, so every field is guarded by mu.
type formulaRun struct {
	mu            sync.Mutex
	formula       hashfn.Formula
	rng           *rand.Rand
	evaluated     int64
	nonConvergent int
	found         bool
	value         uint32
	elapsed       time.Duration
}

func (r *formulaRun) objective(ctx context.Context, target int64) opt.Objective {
	return func(x []float64) float64 {
		r.mu.Lock()
		defer r.mu.Unlock()

		// Once matched or cancelled the remaining iterations are skipped.
		if r.found || ctx.Err() != nil {
			return noMatchCost
		}

		value := toValue(x[0])
		r.evaluated++
		h, err := hashfn.Evaluate(r.rng, value, r.formula)
		if err != nil {
			r.nonConvergent++
			return noMatchCost
		}

		cost := circularDistance(h, target)
		if cost == 0 {
			r.found = true
			r.value = value
		}
		return cost
	}
}

// Search runs every formula concurrently and returns the match of the first
// formula in Config.Formulas order that found one.
func (gs *GuidedSearch) Search(ctx context.Context, target int64) (Result, error) {
	seeds := rand.New(rand.NewSource(gs.cfg.Seed))

	lower, upper := float64(gs.cfg.InitMin), float64(gs.cfg.InitMax)
	if upper <= lower {
		upper = lower + 1
	}
	bounds := opt.Bounds{Lower: lower, Upper: upper, Dim: 1}

	runs := make([]*formulaRun, len(gs.cfg.Formulas))
	var g errgroup.Group
	for i, f := range gs.cfg.Formulas {
		run := &formulaRun{formula: f, rng: rand.New(rand.NewSource(seeds.Int63()))}
		runs[i] = run
		optimizer := gs.newOptimizer(seeds.Int63())

		g.Go(func() error {
			start := time.Now()
			_, err := optimizer.Minimize(run.objective(ctx, target), bounds)
			run.mu.Lock()
			run.elapsed = time.Since(start)
			run.mu.Unlock()
			if err != nil {
				return fmt.Errorf("formula %d: %w", int(run.formula), err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	swarm := int64(max(gs.cfg.PopulationSize, opt.MinSwarm))

	var total int64
	for i, run := range runs {
		total += run.evaluated
		if gs.progress != nil {
			gs.progress(GenerationStats{
				Generation:    i,
				Evaluated:     int(run.evaluated),
				NonConvergent: run.nonConvergent,
				Matched:       run.found,
				Elapsed:       run.elapsed,
			})
		}
		gs.logger.Debug("Guided formula finished",
			"formula", int(run.formula),
			"evaluated", run.evaluated,
			"found", run.found,
		)
	}

	for _, run := range runs {
		if run.found {
			return Result{
				Candidate:  Candidate{Value: run.value, Formula: run.formula},
				Generation: int(run.evaluated / swarm),
				Found:      true,
				Evaluated:  total,
			}, nil
		}
	}

	if err := ctx.Err(); err != nil {
		return Result{Evaluated: total}, err
	}
	return Result{Generation: gs.cfg.MaxGenerations, Evaluated: total}, nil
}

// toValue rounds x to the nearest representable input.
func toValue(x float64) uint32 {
	switch {
	case math.IsNaN(x) || x <= 0:
		return 0
	case x >= math.MaxUint32:
		return math.MaxUint32
	default:
		return uint32(math.Round(x))
	}
}

// circularDistance is the distance between h and target on the 32-bit ring.
func circularDistance(h, target int64) float64 {
	if h < 0 {
		return noMatchCost
	}
	a := uint32(h) - uint32(target)
	b := uint32(target) - uint32(h)
	return float64(min(a, b))
}
