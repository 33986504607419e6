package dlog

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cwbudde/dlogsolve/internal/modarith"
	"github.com/holiman/uint256"
)

// Method selects a solver.
type Method int

const (
	BabyStep Method = iota
	Pollard
)

func (m Method) String() string {
	switch m {
	case BabyStep:
		return "baby-step"
	case Pollard:
		return "pollard"
	default:
		return fmt.Sprintf("Method(%d)", int(m))
	}
}

// ParseMethod maps a user-supplied method name to a Method.
func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "baby-step":
		return BabyStep, nil
	case "pollard":
		return Pollard, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedMethod, s)
	}
}

// Solution is the outcome of a solve. Found is false when the search space
// was exhausted; that is a normal result, not an error.
type Solution struct {
	X        *uint256.Int
	Found    bool
	Method   Method
	Verified bool
	Elapsed  time.Duration
}

// Solve routes to the solver selected by method. There is no fallback
// between methods.
func Solve(base, target, modulus *uint256.Int, method Method) (Solution, error) {
	start := time.Now()

	var (
		x  *uint256.Int
		ok bool
	)
	switch method {
	case BabyStep:
		if _, fits := stepCount(modulus); !fits {
			return Solution{}, fmt.Errorf("%w: modulus %s needs more than %d baby steps",
				ErrTableTooLarge, modarith.String(modulus), MaxTableSize)
		}
		x, ok = BabyStepGiantStep(base, target, modulus)
	case Pollard:
		x, ok = PollardRho(base, target, modulus)
	default:
		return Solution{}, fmt.Errorf("%w: %s", ErrUnsupportedMethod, method)
	}

	sol := Solution{X: x, Found: ok, Method: method, Elapsed: time.Since(start)}
	if ok {
		sol.Verified = Verify(base, x, target, modulus)
	}

	slog.Debug("Discrete log solve finished",
		"method", method.String(),
		"found", sol.Found,
		"verified", sol.Verified,
		"elapsed", sol.Elapsed,
	)
	return sol, nil
}

// SolveDiscreteLog is Solve for a method given by name.
func SolveDiscreteLog(base, target, modulus *uint256.Int, method string) (Solution, error) {
	m, err := ParseMethod(method)
	if err != nil {
		return Solution{}, err
	}
	return Solve(base, target, modulus, m)
}

// Verify reports whether base^x ≡ target (mod modulus).
func Verify(base, x, target, modulus *uint256.Int) bool {
	if x == nil || modulus.IsZero() {
		return false
	}
	return modarith.ModPow(base, x, modulus).Eq(target)
}
