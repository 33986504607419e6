package population

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/cwbudde/dlogsolve/internal/hashfn"
)

// GenerationStats summarizes one evaluated generation.
type GenerationStats struct {
	Generation    int
	Evaluated     int
	NonConvergent int
	Matched       bool
	Elapsed       time.Duration
}

// ProgressReporter is called once per generation, after evaluation and
// before mutation. It runs on the search goroutine.
type ProgressReporter func(GenerationStats)

// Result is the outcome of a search. Found is false when MaxGenerations
// passed without a match.
type Result struct {
	Candidate  Candidate
	Generation int
	Found      bool
	Evaluated  int64
}

// Searcher runs the generational search.
type Searcher struct {
	cfg      Config
	progress ProgressReporter
	logger   *slog.Logger
}

// NewSearcher validates cfg and returns a Searcher.
func NewSearcher(cfg Config) (*Searcher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Searcher{cfg: cfg, logger: slog.Default()}, nil
}

// OnProgress registers fn to receive per-generation stats.
func (s *Searcher) OnProgress(fn ProgressReporter) {
	s.progress = fn
}

// WithLogger sets the logger used for search events.
func (s *Searcher) WithLogger(logger *slog.Logger) {
	s.logger = logger
}

// chunkResult is what one worker reports for its slice of the population.
type chunkResult struct {
	match         int // index into the chunk, -1 if none
	nonConvergent int
	err           error
}

// Search evolves the population until a candidate hashes to target or
// MaxGenerations is reached. The context is checked between generations;
// a generation in flight always completes.
func (s *Searcher) Search(ctx context.Context, target int64) (Result, error) {
	rng := rand.New(rand.NewSource(s.cfg.Seed))
	pop := NewPopulation(rng, s.cfg)

	var evaluated int64
	for gen := 0; gen < s.cfg.MaxGenerations; gen++ {
		if err := ctx.Err(); err != nil {
			return Result{Generation: gen, Evaluated: evaluated}, err
		}

		start := time.Now()
		bounds := chunkBounds(len(pop), s.cfg.Workers)
		results := evaluateChunks(pop, bounds, target, rng)
		evaluated += int64(len(pop))

		// Every chunk has finished; scan in chunk order.
		var (
			errs          []error
			nonConvergent int
			match         = -1
		)
		for i, r := range results {
			nonConvergent += r.nonConvergent
			if r.err != nil {
				errs = append(errs, fmt.Errorf("chunk %d: %w", i, r.err))
				continue
			}
			if match < 0 && r.match >= 0 {
				match = bounds[i][0] + r.match
			}
		}
		if err := errors.Join(errs...); err != nil {
			return Result{Generation: gen, Evaluated: evaluated}, fmt.Errorf("generation %d: %w", gen, err)
		}

		if s.progress != nil {
			s.progress(GenerationStats{
				Generation:    gen,
				Evaluated:     len(pop),
				NonConvergent: nonConvergent,
				Matched:       match >= 0,
				Elapsed:       time.Since(start),
			})
		}

		if match >= 0 {
			s.logger.Info("Search matched",
				"generation", gen,
				"value", pop[match].Value,
				"formula", int(pop[match].Formula),
			)
			return Result{Candidate: pop[match], Generation: gen, Found: true, Evaluated: evaluated}, nil
		}

		pop = pop.Mutate(rng, s.cfg.MutationRadius)
	}

	s.logger.Info("Search exhausted", "generations", s.cfg.MaxGenerations, "evaluated", evaluated)
	return Result{Generation: s.cfg.MaxGenerations, Evaluated: evaluated}, nil
}

// chunkBounds splits n items into at most workers contiguous [start, end)
// ranges.
func chunkBounds(n, workers int) [][2]int {
	if workers > n {
		workers = n
	}
	if workers < 1 {
		workers = 1
	}
	size := (n + workers - 1) / workers

	bounds := make([][2]int, 0, workers)
	for start := 0; start < n; start += size {
		end := start + size
		if end > n {
			end = n
		}
		bounds = append(bounds, [2]int{start, end})
	}
	return bounds
}

// evaluateChunks hashes every chunk concurrently and waits for all of them.
// Each chunk gets its own source seeded from rng, so rng is only touched
// here on the calling goroutine.
func evaluateChunks(pop Population, bounds [][2]int, target int64, rng *rand.Rand) []chunkResult {
	results := make([]chunkResult, len(bounds))
	seeds := make([]int64, len(bounds))
	for i := range seeds {
		seeds[i] = rng.Int63()
	}

	var g errgroup.Group
	for i, b := range bounds {
		g.Go(func() error {
			chunkRng := rand.New(rand.NewSource(seeds[i]))
			results[i] = evaluateChunk(chunkRng, pop[b[0]:b[1]], target)
			return nil
		})
	}
	// Chunk failures are carried in results so that all of them are reported.
	_ = g.Wait()

	return results
}

// evaluateChunk returns the first candidate in chunk whose hash equals
// target. Non-convergent formulas count as no match.
func evaluateChunk(rng *rand.Rand, chunk Population, target int64) chunkResult {
	res := chunkResult{match: -1}
	for i, c := range chunk {
		h, err := c.Hash(rng)
		if errors.Is(err, hashfn.ErrNonConvergent) {
			res.nonConvergent++
			continue
		}
		if err != nil {
			res.err = fmt.Errorf("candidate %s: %w", c, err)
			return res
		}
		if h == target {
			res.match = i
			return res
		}
	}
	return res
}
