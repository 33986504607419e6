package dlog

import (
	"math"

	"github.com/cwbudde/dlogsolve/internal/modarith"
	"github.com/holiman/uint256"
)

// rhoState is one walker: X ≡ base^A · target^B (mod p).
type rhoState struct {
	X, A, B uint256.Int
}

// rhoWalk carries the parameters of the step function.
type rhoWalk struct {
	base, target, p, n *uint256.Int
}

var (
	one   = uint256.NewInt(1)
	three = uint256.NewInt(3)
)

// step advances s by one application of the three-way partitioned map.
func (w *rhoWalk) step(s *rhoState) {
	var class uint256.Int
	class.Mod(&s.X, three)

	switch class.Uint64() {
	case 0:
		s.X.MulMod(&s.X, &s.X, w.p)
		s.A.AddMod(&s.A, &s.A, w.n)
		s.B.AddMod(&s.B, &s.B, w.n)
	case 1:
		s.X.MulMod(&s.X, w.base, w.p)
		s.A.AddMod(&s.A, one, w.n)
	default:
		s.X.MulMod(&s.X, w.target, w.p)
		s.B.AddMod(&s.B, one, w.n)
	}
}

// PollardRho finds x with base^x ≡ target (mod modulus) by Floyd cycle
// detection over the walk x ← f(x).
//
// On collision with r = b_tortoise - b_hare (mod n), n = modulus-1, the
// answer is (a_hare - a_tortoise) · r^(n-1) mod n. The power is only an
// inverse when gcd(r, n) = 1, so a returned x may fail verification; callers
// needing certainty must check base^x ≡ target themselves.
//
// ok is false on a degenerate collision (r = 0) or when no collision occurs
// within modulus rounds.
func PollardRho(base, target, modulus *uint256.Int) (x *uint256.Int, ok bool) {
	if modulus.Lt(three) {
		return nil, false
	}

	n := new(uint256.Int).Sub(modulus, one)
	w := &rhoWalk{base: base, target: target, p: modulus, n: n}

	var tortoise, hare rhoState
	tortoise.X.SetUint64(1)
	hare.X.SetUint64(1)

	rounds := uint64(math.MaxUint64)
	if modulus.IsUint64() {
		rounds = modulus.Uint64()
	}

	for i := uint64(0); i < rounds; i++ {
		w.step(&tortoise)
		w.step(&hare)
		w.step(&hare)

		if !tortoise.X.Eq(&hare.X) {
			continue
		}

		r := modarith.SubMod(&tortoise.B, &hare.B, n)
		if r.IsZero() {
			return nil, false
		}
		exp := new(uint256.Int).Sub(n, one)
		inv := modarith.ModPow(r, exp, n)
		x = modarith.SubMod(&hare.A, &tortoise.A, n)
		x.MulMod(x, inv, n)
		return x, true
	}

	return nil, false
}
