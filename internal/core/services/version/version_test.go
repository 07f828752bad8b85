package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		raw  string
		want string
		ok   bool
	}{
		{"2.4.41", "2.4.41", true},
		{"v2.4.41", "2.4.41", true},
		{"V2.4.41", "2.4.41", true},
		{"r1701", "1701", true},
		{"R2.0", "2.0", true},
		{"  2.4.41  ", "2.4.41", true},
		{"2.4.41-alpha", "2.4.41", true},
		{"2.4.41 (Ubuntu)", "2.4.41", true},
		{"5.7.30-0ubuntu0.18.04.1", "5.7.30", true},
		{"8", "8", true},
		{"invalid", "", false},
		{"", "", false},
		{"   ", "", false},
		{"v", "", false},
		{"beta", "", false},
	}

	for _, tt := range tests {
		got, ok := Normalize(tt.raw)
		assert.Equal(t, tt.ok, ok, "Normalize(%q) ok", tt.raw)
		assert.Equal(t, tt.want, got, "Normalize(%q)", tt.raw)
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{"2.4.41", "v1.0", "r2.4.41-alpha", "10.0.0.1 build 7", "1"}
	for _, raw := range inputs {
		once, ok := Normalize(raw)
		require.True(t, ok, "Normalize(%q)", raw)
		twice, ok := Normalize(once)
		require.True(t, ok, "Normalize(Normalize(%q))", raw)
		assert.Equal(t, once, twice, "normalization must be idempotent for %q", raw)
	}
}

func TestCompare(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"1.0.0", "2.0.0", -1},
		{"2.0.0", "1.0.0", 1},
		{"2.0.0", "2.0.0", 0},
		{"2.4", "2.4.0", 0}, // missing trailing segment is 0
		{"2.4.0", "2.4", 0},
		{"2.4.1", "2.4", 1},
		{"2.4.9", "2.4.10", -1}, // numeric, not lexical
		{"1.2.3", "1.2.3.4", -1},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Compare(tt.a, tt.b), "Compare(%q, %q)", tt.a, tt.b)
	}
}

func TestCompareOrderingLaw(t *testing.T) {
	a, b, c := "1.2.3", "1.10.0", "2.0.0"
	assert.Equal(t, -1, Compare(a, b))
	assert.Equal(t, -1, Compare(b, c))
	assert.Equal(t, -1, Compare(a, c))
	assert.Equal(t, 1, Compare(b, a))
	assert.Equal(t, 0, Compare(a, a))
}

func TestCompareFallback(t *testing.T) {
	// Unparseable versions fall back to ordinal string comparison.
	assert.Equal(t, -1, Compare("abc", "abd"))
	assert.Equal(t, 1, Compare("zzz", "1.0.0"))
	assert.Equal(t, 0, Compare("garbage", "garbage"))
}

func TestGetParts(t *testing.T) {
	parts, ok := GetParts("2.4.41")
	require.True(t, ok)
	require.NotNil(t, parts.Major)
	require.NotNil(t, parts.Minor)
	require.NotNil(t, parts.Patch)
	assert.Equal(t, 2, *parts.Major)
	assert.Equal(t, 4, *parts.Minor)
	assert.Equal(t, 41, *parts.Patch)
	assert.Empty(t, parts.Additional)

	parts, ok = GetParts("v1.2")
	require.True(t, ok)
	assert.Equal(t, 1, *parts.Major)
	assert.Equal(t, 2, *parts.Minor)
	assert.Nil(t, parts.Patch)

	parts, ok = GetParts("1.2.3.4.5")
	require.True(t, ok)
	assert.Equal(t, "4.5", parts.Additional)

	_, ok = GetParts("not a version")
	assert.False(t, ok)
}

func TestInRange(t *testing.T) {
	tests := []struct {
		version string
		rng     string
		want    bool
	}{
		{"1.5.0", ">=1.0.0,<2.0.0", true},
		{"2.0.0", ">=1.0.0,<2.0.0", false},
		{"0.9.9", ">=1.0.0", false},
		{"1.0.0", ">=1.0.0", true},
		{"1.0.1", ">1.0.0", true},
		{"1.0.0", ">1.0.0", false},
		{"3.2.1", "<=3.2.1", true},
		{"1.2.3", "==1.2.3", true},
		{"1.2.3", "1.2.3", true},
		{"1.2.4", "1.2.3", false},
		{"garbage", ">=1.0.0", false},
		{"1.0.0", "not a range", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, InRange(tt.version, tt.rng), "InRange(%q, %q)", tt.version, tt.rng)
	}
}
