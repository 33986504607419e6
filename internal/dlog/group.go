// Package dlog solves g^x ≡ h (mod p) over the multiplicative group of a
// prime field, by baby-step giant-step or Pollard's rho.
package dlog

import (
	"errors"
	"fmt"

	"github.com/cwbudde/dlogsolve/internal/modarith"
	"github.com/holiman/uint256"
)

var (
	// ErrUnsupportedMethod is returned for a method name other than
	// "baby-step" or "pollard".
	ErrUnsupportedMethod = errors.New("unsupported method: choose 'baby-step' or 'pollard'")

	// ErrInvalidGroup is returned when the modulus is not prime or the base
	// is outside (1, modulus).
	ErrInvalidGroup = errors.New("invalid group parameters")

	// ErrInvalidTarget is returned when the target is not reduced mod p.
	ErrInvalidTarget = errors.New("invalid target")

	// ErrTableTooLarge is returned when the baby-step table for a modulus
	// would exceed MaxTableSize entries.
	ErrTableTooLarge = errors.New("baby-step table too large")
)

// Group holds the base and prime modulus of one solve. The exponent group
// order is Modulus - 1.
type Group struct {
	Base    *uint256.Int
	Modulus *uint256.Int
}

// NewGroup validates that modulus is (probably) prime and 1 < base < modulus.
func NewGroup(base, modulus *uint256.Int) (Group, error) {
	if !modarith.IsProbablePrime(modulus) {
		return Group{}, fmt.Errorf("%w: modulus %s is not prime", ErrInvalidGroup, modarith.String(modulus))
	}
	if !base.Gt(uint256.NewInt(1)) || !base.Lt(modulus) {
		return Group{}, fmt.Errorf("%w: base %s must satisfy 1 < base < %s",
			ErrInvalidGroup, modarith.String(base), modarith.String(modulus))
	}
	return Group{
		Base:    new(uint256.Int).Set(base),
		Modulus: new(uint256.Int).Set(modulus),
	}, nil
}

// Order returns the group order p - 1.
func (g Group) Order() *uint256.Int {
	return new(uint256.Int).Sub(g.Modulus, uint256.NewInt(1))
}

// Check reports whether target lies in [0, modulus).
func (g Group) Check(target *uint256.Int) error {
	if !target.Lt(g.Modulus) {
		return fmt.Errorf("%w: %s is not below the modulus %s",
			ErrInvalidTarget, modarith.String(target), modarith.String(g.Modulus))
	}
	return nil
}
