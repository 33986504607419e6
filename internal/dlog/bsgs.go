package dlog

import (
	"log/slog"

	"github.com/cwbudde/dlogsolve/internal/modarith"
	"github.com/holiman/uint256"
)

// MaxTableSize caps the number of baby steps a single solve may store.
var MaxTableSize uint64 = 1 << 26

// stepCount returns m = isqrt(modulus) + 1 and whether it fits MaxTableSize.
func stepCount(modulus *uint256.Int) (uint64, bool) {
	root := modarith.Isqrt(modulus)
	if !root.IsUint64() || root.Uint64() >= MaxTableSize {
		return 0, false
	}
	return root.Uint64() + 1, true
}

// BabyStepGiantStep finds x with base^x ≡ target (mod modulus).
//
// The baby-step table maps base^j → j for j in [0, m); when two j share a
// residue the later one is kept. Giant steps multiply target by
// base^(modulus-m-1), which equals base^-m when modulus is prime. The first
// giant step i that lands in the table yields x = i*m + table[value].
//
// ok is false when no exponent exists in [0, m*m) or the table would be too
// large.
func BabyStepGiantStep(base, target, modulus *uint256.Int) (x *uint256.Int, ok bool) {
	m, fits := stepCount(modulus)
	if !fits {
		slog.Debug("Baby-step table exceeds limit", "modulus", modarith.String(modulus), "max", MaxTableSize)
		return nil, false
	}
	mInt := uint256.NewInt(m)

	// base^(modulus-m-1) needs modulus > m.
	if !modulus.Gt(mInt) {
		return nil, false
	}

	table := make(map[uint256.Int]uint64, m)
	value := uint256.NewInt(1)
	value.Mod(value, modulus)
	for j := uint64(0); j < m; j++ {
		table[*value] = j
		value.MulMod(value, base, modulus)
	}

	exp := new(uint256.Int).Sub(modulus, mInt)
	exp.Sub(exp, uint256.NewInt(1))
	factor := modarith.ModPow(base, exp, modulus)

	gamma := new(uint256.Int).Set(target)
	for i := uint64(0); i < m; i++ {
		if j, hit := table[*gamma]; hit {
			x = new(uint256.Int).Mul(uint256.NewInt(i), mInt)
			x.Add(x, uint256.NewInt(j))
			return x, true
		}
		gamma.MulMod(gamma, factor, modulus)
	}

	return nil, false
}
