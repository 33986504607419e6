package dlog

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/cwbudde/dlogsolve/internal/modarith"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func u(v uint64) *uint256.Int { return uint256.NewInt(v) }

func TestBabyStepGiantStep_Scenarios(t *testing.T) {
	tests := []struct {
		name                string
		base, target, prime uint64
		expected            uint64
	}{
		{"5^x = 3 mod 7", 5, 3, 7, 5},
		{"identity", 2, 1, 11, 0},
		{"2^x = 9 mod 11", 2, 9, 11, 6},
		{"3^x = 13 mod 17", 3, 13, 17, 4},
		{"2^x = 5 mod 101", 2, 5, 101, 24},
		{"2^x = 1000 mod 1019", 2, 1000, 1019, 33},
		{"3^x = 54321 mod 65537", 3, 54321, 65537, 8269},
		{"7^x = 1234 mod 10007", 7, 1234, 10007, 3810},
		{"2^x = 3 mod 1000003", 2, 3, 1000003, 254277},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, ok := BabyStepGiantStep(u(tt.base), u(tt.target), u(tt.prime))
			require.True(t, ok)
			assert.Equal(t, tt.expected, x.Uint64())
			assert.True(t, Verify(u(tt.base), x, u(tt.target), u(tt.prime)))
		})
	}
}

func TestBabyStepGiantStep_NotInSubgroup(t *testing.T) {
	// 5 does not generate 57 mod 101.
	x, ok := BabyStepGiantStep(u(5), u(57), u(101))
	assert.False(t, ok)
	assert.Nil(t, x)
}

func TestBabyStepGiantStep_LastWriteWins(t *testing.T) {
	// 3 has order 3 mod 13, so j=0 and j=3 both map residue 1; j=3 is kept.
	x, ok := BabyStepGiantStep(u(3), u(1), u(13))
	require.True(t, ok)
	assert.Equal(t, uint64(3), x.Uint64())
	assert.True(t, Verify(u(3), x, u(1), u(13)))
}

func TestBabyStepGiantStep_Identity(t *testing.T) {
	// Primitive roots: 1 appears only at j=0 among the baby steps.
	groups := []struct{ g, p uint64 }{{2, 11}, {2, 101}, {2, 1019}, {3, 65537}}
	for _, grp := range groups {
		x, ok := BabyStepGiantStep(u(grp.g), modarith.ModPow(u(grp.g), u(0), u(grp.p)), u(grp.p))
		require.True(t, ok, "g=%d p=%d", grp.g, grp.p)
		assert.True(t, x.IsZero(), "g=%d p=%d x=%s", grp.g, grp.p, modarith.String(x))
	}
}

func TestBabyStepGiantStep_IdentitySmallOrder(t *testing.T) {
	// 2 has order 32 mod 65537 and m=257, so j=256 is the last baby step
	// mapping to 1.
	x, ok := BabyStepGiantStep(u(2), u(1), u(65537))
	require.True(t, ok)
	assert.Equal(t, uint64(256), x.Uint64())
	assert.True(t, Verify(u(2), x, u(1), u(65537)))
}

func TestBabyStepGiantStep_RoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	groups := []struct{ g, p uint64 }{
		{2, 1019}, {3, 65537}, {5, 1000003}, {2, 101}, {6, 10007},
	}

	for _, grp := range groups {
		for i := 0; i < 25; i++ {
			xStar := uint64(rng.Int63n(int64(grp.p - 1)))
			h := modarith.ModPow(u(grp.g), u(xStar), u(grp.p))

			x, ok := BabyStepGiantStep(u(grp.g), h, u(grp.p))
			require.True(t, ok, "g=%d p=%d x*=%d", grp.g, grp.p, xStar)
			assert.True(t, Verify(u(grp.g), x, h, u(grp.p)), "g=%d p=%d x*=%d x=%s",
				grp.g, grp.p, xStar, modarith.String(x))
		}
	}
}

func TestBabyStepGiantStep_TinyModulus(t *testing.T) {
	_, ok := BabyStepGiantStep(u(1), u(1), u(2))
	assert.False(t, ok)
}

func TestPollardRho_Scenarios(t *testing.T) {
	tests := []struct {
		base, target, prime uint64
		expected            uint64
	}{
		{2, 1, 11, 0},
		{5, 3, 7, 5},
		{2, 9, 11, 6},
		{2, 5, 101, 24},
		{2, 3, 101, 69},
		{2, 10, 101, 25},
		{2, 7, 13, 11},
	}

	for _, tt := range tests {
		x, ok := PollardRho(u(tt.base), u(tt.target), u(tt.prime))
		require.True(t, ok, "%d^x = %d mod %d", tt.base, tt.target, tt.prime)
		assert.Equal(t, tt.expected, x.Uint64())
		assert.True(t, Verify(u(tt.base), x, u(tt.target), u(tt.prime)))
	}
}

func TestPollardRho_NonInvertibleCollision(t *testing.T) {
	// The collision difference shares a factor with p-1 = 16, so the
	// returned exponent does not verify.
	x, ok := PollardRho(u(3), u(13), u(17))
	require.True(t, ok)
	assert.True(t, x.IsZero())
	assert.False(t, Verify(u(3), x, u(13), u(17)))

	x, ok = PollardRho(u(2), u(1000), u(1019))
	require.True(t, ok)
	assert.Equal(t, uint64(876), x.Uint64())
	assert.False(t, Verify(u(2), x, u(1000), u(1019)))
}

func TestPollardRho_Degenerate(t *testing.T) {
	x, ok := PollardRho(u(2), u(12345), u(65537))
	assert.False(t, ok)
	assert.Nil(t, x)

	_, ok = PollardRho(u(3), u(9), u(13))
	assert.False(t, ok)
}

func TestPollardRho_TinyModulus(t *testing.T) {
	_, ok := PollardRho(u(1), u(1), u(2))
	assert.False(t, ok)
}

func TestRhoWalk_Invariant(t *testing.T) {
	base, target, p := u(2), u(1000), u(1019)
	w := &rhoWalk{base: base, target: target, p: p, n: u(1018)}

	var s rhoState
	s.X.SetUint64(1)
	for i := 0; i < 500; i++ {
		w.step(&s)
		gA := modarith.ModPow(base, &s.A, p)
		hB := modarith.ModPow(target, &s.B, p)
		want := new(uint256.Int).MulMod(gA, hB, p)
		require.True(t, want.Eq(&s.X), "step %d: x=%s a=%s b=%s", i,
			modarith.String(&s.X), modarith.String(&s.A), modarith.String(&s.B))
	}
}

func TestSolvers_AgreeWhenBothVerify(t *testing.T) {
	p, g := uint64(101), uint64(2)
	for h := uint64(1); h < p; h++ {
		x1, ok1 := BabyStepGiantStep(u(g), u(h), u(p))
		x2, ok2 := PollardRho(u(g), u(h), u(p))
		if !ok1 || !ok2 || !Verify(u(g), x2, u(h), u(p)) {
			continue
		}
		assert.True(t, Verify(u(g), x1, u(h), u(p)), "h=%d", h)
		assert.True(t, modarith.ModPow(u(g), x1, u(p)).Eq(modarith.ModPow(u(g), x2, u(p))), "h=%d", h)
	}
}

func TestParseMethod(t *testing.T) {
	m, err := ParseMethod("baby-step")
	require.NoError(t, err)
	assert.Equal(t, BabyStep, m)

	m, err = ParseMethod("  Pollard ")
	require.NoError(t, err)
	assert.Equal(t, Pollard, m)

	_, err = ParseMethod("brute-force")
	assert.ErrorIs(t, err, ErrUnsupportedMethod)

	assert.Equal(t, "baby-step", BabyStep.String())
	assert.Equal(t, "pollard", Pollard.String())
}

func TestSolveDiscreteLog(t *testing.T) {
	sol, err := SolveDiscreteLog(u(5), u(3), u(7), "baby-step")
	require.NoError(t, err)
	assert.True(t, sol.Found)
	assert.True(t, sol.Verified)
	assert.Equal(t, uint64(5), sol.X.Uint64())
	assert.Equal(t, BabyStep, sol.Method)

	sol, err = SolveDiscreteLog(u(2), u(5), u(101), "pollard")
	require.NoError(t, err)
	assert.True(t, sol.Found)
	assert.Equal(t, uint64(24), sol.X.Uint64())

	sol, err = SolveDiscreteLog(u(3), u(13), u(17), "pollard")
	require.NoError(t, err)
	assert.True(t, sol.Found)
	assert.False(t, sol.Verified)

	sol, err = SolveDiscreteLog(u(5), u(57), u(101), "baby-step")
	require.NoError(t, err)
	assert.False(t, sol.Found)
}

func TestSolveDiscreteLog_UnsupportedMethod(t *testing.T) {
	_, err := SolveDiscreteLog(u(5), u(3), u(7), "brute-force")
	if !errors.Is(err, ErrUnsupportedMethod) {
		t.Fatalf("expected ErrUnsupportedMethod, got %v", err)
	}

	_, err = Solve(u(5), u(3), u(7), Method(7))
	assert.ErrorIs(t, err, ErrUnsupportedMethod)
}

func TestSolve_TableTooLarge(t *testing.T) {
	orig := MaxTableSize
	MaxTableSize = 16
	defer func() { MaxTableSize = orig }()

	_, err := Solve(u(2), u(5), u(1019), BabyStep)
	assert.ErrorIs(t, err, ErrTableTooLarge)

	_, ok := BabyStepGiantStep(u(2), u(5), u(1019))
	assert.False(t, ok)
}

func TestNewGroup(t *testing.T) {
	g, err := NewGroup(u(5), u(7))
	require.NoError(t, err)
	assert.Equal(t, uint64(6), g.Order().Uint64())
	assert.NoError(t, g.Check(u(3)))
	assert.ErrorIs(t, g.Check(u(7)), ErrInvalidTarget)

	tests := []struct {
		name      string
		base, mod uint64
	}{
		{"composite modulus", 2, 15},
		{"base one", 1, 7},
		{"base zero", 0, 7},
		{"base equals modulus", 7, 7},
		{"base above modulus", 9, 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewGroup(u(tt.base), u(tt.mod))
			assert.ErrorIs(t, err, ErrInvalidGroup)
		})
	}
}
