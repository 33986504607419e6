// Package hashfn implements the five candidate hash formulas evaluated by the
// population search. Formulas 3 and 4 draw random parameters on every call,
// so they are not deterministic.
package hashfn

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/cznic/mathutil"
)

var (
	// ErrUnsupportedFormula is returned for a formula index outside [0, 4].
	ErrUnsupportedFormula = errors.New("unsupported formula")

	// ErrNonConvergent is returned when a formula's inner search hits its
	// round cap without producing a value.
	ErrNonConvergent = errors.New("formula did not converge")
)

// Formula selects one of the hash formulas.
type Formula int

const (
	Multiplicative Formula = iota
	Quintic
	Sine
	BabyStep16
	RhoFactor
)

// NumFormulas is the number of supported formulas.
const NumFormulas = 5

// MaxFactorRounds bounds the rho factoring walk across all retries.
var MaxFactorRounds = 1 << 16

const (
	multiplier   = 123456789
	xorMask      = 987654321
	knuthGolden  = 2654435761
	quinticPower = 5
	sineScale    = 1 << 31

	bsgsModulus = 1 << 16
	bsgsSteps   = 256 // isqrt(bsgsModulus)
	// The units mod 2^16 have order 2^15, so base^(2^15-m) = base^-m.
	bsgsUnitOrder = 1 << 15
)

var formulaNames = [NumFormulas]string{
	"multiplicative",
	"quintic",
	"sine",
	"baby-step-16",
	"rho-factor",
}

func (f Formula) String() string {
	if f.Valid() {
		return formulaNames[f]
	}
	return fmt.Sprintf("Formula(%d)", int(f))
}

// Valid reports whether f is one of the supported formulas.
func (f Formula) Valid() bool {
	return f >= 0 && f < NumFormulas
}

// Description returns the formula as an expression over the input x.
func (f Formula) Description() string {
	switch f {
	case Multiplicative:
		return "(x * 123456789) XOR 987654321 mod 2^32"
	case Quintic:
		return "(x^5 mod 2^32) * 2654435761 mod 2^32"
	case Sine:
		return "floor(sin(x) * 2^31) mod 2^32"
	case BabyStep16:
		return "BSGS log of x mod 2^16, random odd base, -1 if none"
	case RhoFactor:
		return "Pollard rho divisor of x, random c"
	default:
		return ""
	}
}

// ParseFormula converts an index to a Formula.
func ParseFormula(index int) (Formula, error) {
	f := Formula(index)
	if !f.Valid() {
		return 0, fmt.Errorf("%w: %d", ErrUnsupportedFormula, index)
	}
	return f, nil
}

// All returns every supported formula in index order.
func All() []Formula {
	all := make([]Formula, NumFormulas)
	for i := range all {
		all[i] = Formula(i)
	}
	return all
}

// Evaluate applies formula f to input. rng supplies the random draws of the
// non-deterministic formulas and must not be shared across goroutines.
func Evaluate(rng *rand.Rand, input uint32, f Formula) (int64, error) {
	switch f {
	case Multiplicative:
		return int64(input*multiplier ^ xorMask), nil
	case Quintic:
		p := uint32(mathutil.ModPowUint64(uint64(input), quinticPower, 1<<32))
		return int64(p * knuthGolden), nil
	case Sine:
		// Large inputs lose all precision in sin; kept as specified.
		v := math.Floor(math.Sin(float64(input)) * sineScale)
		return int64(uint32(int64(v))), nil
	case BabyStep16:
		return babyStep16(rng, input), nil
	case RhoFactor:
		return rhoFactor(rng, input)
	default:
		return 0, fmt.Errorf("%w: %d", ErrUnsupportedFormula, int(f))
	}
}

// ComputeHash evaluates formula index on input with a time-seeded source.
func ComputeHash(input uint32, index int) (int64, error) {
	f, err := ParseFormula(index)
	if err != nil {
		return 0, err
	}
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	return Evaluate(rng, input, f)
}

// oddBase draws a unit base in [3, 2^16).
func oddBase(rng *rand.Rand) uint32 {
	return uint32(rng.Intn(bsgsUnitOrder-1))*2 + 3
}

// babyStep16 returns an exponent k with base^k ≡ input (mod 2^16) for a
// freshly drawn base, or -1.
func babyStep16(rng *rand.Rand, input uint32) int64 {
	base := oddBase(rng)
	target := input % bsgsModulus

	table := make(map[uint32]uint32, bsgsSteps)
	value := uint32(1)
	for j := uint32(0); j < bsgsSteps; j++ {
		table[value] = j
		value = value * base % bsgsModulus
	}

	factor := mathutil.ModPowUint32(base, bsgsUnitOrder-bsgsSteps, bsgsModulus)
	gamma := target
	for i := int64(0); i < bsgsModulus; i++ {
		if j, ok := table[gamma]; ok {
			return i*bsgsSteps + int64(j)
		}
		gamma = gamma * factor % bsgsModulus
	}
	return -1
}

// rhoFactor finds a divisor of input with the walk x ← x² + c. A walk that
// collapses onto input itself is restarted with a new c; all walks share
// MaxFactorRounds.
func rhoFactor(rng *rand.Rand, input uint32) (int64, error) {
	n := uint64(input)
	if n < 4 {
		return int64(n), nil
	}
	if n%2 == 0 {
		return 2, nil
	}

	rounds := 0
	for {
		c := uint64(rng.Int63n(int64(n-1))) + 1
		x, y, d := uint64(2), uint64(2), uint64(1)

		for d == 1 {
			if rounds >= MaxFactorRounds {
				return 0, fmt.Errorf("%w: no divisor of %d after %d rounds", ErrNonConvergent, n, rounds)
			}
			rounds++

			x = (x*x + c) % n
			y = (y*y + c) % n
			y = (y*y + c) % n

			diff := x - y
			if y > x {
				diff = y - x
			}
			d = mathutil.GCDUint64(diff, n)
		}

		if d != n {
			return int64(d), nil
		}
	}
}
