// Package modarith provides the modular arithmetic primitives shared by the
// discrete-log solvers. Values are fixed-width 256-bit integers so that the
// baby-step table can key on them directly.
package modarith

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/holiman/uint256"
)

var (
	// ErrInvalidInverse is returned when an inverse is requested for a value
	// that is not a unit modulo the (prime) modulus.
	ErrInvalidInverse = errors.New("value has no inverse modulo modulus")

	// ErrInvalidInput is returned when a textual integer cannot be parsed.
	ErrInvalidInput = errors.New("invalid integer input")
)

// primalityRounds is the Miller-Rabin round count used by IsProbablePrime.
const primalityRounds = 20

// ModPow returns base^exponent mod modulus using left-to-right square and
// multiply. An exponent of zero yields 1 (reduced by the modulus).
func ModPow(base, exponent, modulus *uint256.Int) *uint256.Int {
	if modulus.IsZero() {
		panic("modarith: zero modulus")
	}

	result := uint256.NewInt(1)
	result.Mod(result, modulus)

	b := new(uint256.Int).Mod(base, modulus)
	for i := exponent.BitLen() - 1; i >= 0; i-- {
		result.MulMod(result, result, modulus)
		if exponent[i/64]>>(uint(i)%64)&1 == 1 {
			result.MulMod(result, b, modulus)
		}
	}
	return result
}

// ModInvPrime returns value^(modulus-2) mod modulus, the inverse of value by
// Fermat's little theorem. The result is only meaningful when modulus is
// prime; that is the caller's responsibility.
func ModInvPrime(value, modulus *uint256.Int) (*uint256.Int, error) {
	two := uint256.NewInt(2)
	if modulus.Lt(two) {
		return nil, fmt.Errorf("%w: modulus %s is too small", ErrInvalidInverse, modulus.ToBig())
	}
	if new(uint256.Int).Mod(value, modulus).IsZero() {
		return nil, fmt.Errorf("%w: %s is 0 mod %s", ErrInvalidInverse, value.ToBig(), modulus.ToBig())
	}

	exp := new(uint256.Int).Sub(modulus, two)
	return ModPow(value, exp, modulus), nil
}

// SubMod returns (a - b) mod n for a, b already reduced mod n.
func SubMod(a, b, n *uint256.Int) *uint256.Int {
	neg := new(uint256.Int).Sub(n, b)
	return new(uint256.Int).AddMod(a, neg, n)
}

// Isqrt returns floor(sqrt(n)).
func Isqrt(n *uint256.Int) *uint256.Int {
	root := new(big.Int).Sqrt(n.ToBig())
	r, _ := uint256.FromBig(root)
	return r
}

// IsProbablePrime reports whether n passes Miller-Rabin (and Baillie-PSW).
func IsProbablePrime(n *uint256.Int) bool {
	return n.ToBig().ProbablyPrime(primalityRounds)
}

// Parse reads a non-negative decimal or 0x-prefixed hex integer.
func Parse(s string) (*uint256.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("%w: empty value", ErrInvalidInput)
	}

	b, ok := new(big.Int).SetString(s, 0)
	if !ok {
		return nil, fmt.Errorf("%w: %q is not an integer", ErrInvalidInput, s)
	}
	if b.Sign() < 0 {
		return nil, fmt.Errorf("%w: %q is negative", ErrInvalidInput, s)
	}

	v, overflow := uint256.FromBig(b)
	if overflow {
		return nil, fmt.Errorf("%w: %q does not fit in 256 bits", ErrInvalidInput, s)
	}
	return v, nil
}

// String renders v in decimal.
func String(v *uint256.Int) string {
	if v == nil {
		return "<nil>"
	}
	return v.ToBig().String()
}
