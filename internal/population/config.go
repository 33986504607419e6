package population

import (
	"fmt"
	"math"
	"runtime"

	"github.com/cwbudde/dlogsolve/internal/hashfn"
)

// Config holds the parameters of a population search.
type Config struct {
	// PopulationSize is the number of candidates per generation
	PopulationSize int

	// MaxGenerations bounds the search; reaching it is a normal "not found"
	MaxGenerations int

	// Workers is the number of chunks evaluated concurrently per generation
	Workers int

	// MutationRadius is the largest absolute offset applied to a value
	MutationRadius uint32

	// InitMin and InitMax bound the initial values (inclusive)
	InitMin uint32
	InitMax uint32

	// Formulas are the formulas candidates may carry
	Formulas []hashfn.Formula

	// Seed drives every random draw of the search
	Seed int64
}

// DefaultConfig returns the default search parameters.
func DefaultConfig() Config {
	return Config{
		PopulationSize: 1000,
		MaxGenerations: 2_000_000,
		Workers:        runtime.NumCPU(),
		MutationRadius: 1_000_000,
		InitMin:        0,
		InitMax:        math.MaxUint32,
		Formulas:       hashfn.All(),
		Seed:           1,
	}
}

// Validate checks the config and returns a *ValidationError for the first
// invalid field.
func (c Config) Validate() error {
	if c.PopulationSize <= 0 {
		return &ValidationError{Field: "PopulationSize", Reason: "must be positive"}
	}
	if c.MaxGenerations <= 0 {
		return &ValidationError{Field: "MaxGenerations", Reason: "must be positive"}
	}
	if c.Workers <= 0 {
		return &ValidationError{Field: "Workers", Reason: "must be positive"}
	}
	if c.InitMin > c.InitMax {
		return &ValidationError{
			Field:  "InitMin",
			Reason: fmt.Sprintf("must not exceed InitMax (%d > %d)", c.InitMin, c.InitMax),
		}
	}
	if len(c.Formulas) == 0 {
		return &ValidationError{Field: "Formulas", Reason: "cannot be empty"}
	}
	for _, f := range c.Formulas {
		if !f.Valid() {
			return &ValidationError{Field: "Formulas", Reason: fmt.Sprintf("unsupported formula %d", int(f))}
		}
	}
	return nil
}

// ValidationError represents an invalid search configuration.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation error: " + e.Field + " " + e.Reason
}
