package vercmp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompare(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"1.2", "1.2.0", 0},
		{"2.0.0", "1.9.9", 1},
		{"", "1.0", -1},
		{"", "", 0},
		{"1.0.0", "1.0.1", -1},
		{"1.10", "1.9", 1},
		{"1.x", "1.0", 0},
		{"0", "", 1},
		{"3", "2.99.99", 1},
		{" 1.0 ", "1", 0},
	}

	for _, tt := range tests {
		t.Run(tt.a+"_vs_"+tt.b, func(t *testing.T) {
			got := Compare(tt.a, tt.b)
			assert.Equal(t, sign(tt.want), sign(got))
		})
	}
}

func TestCompareIsAntisymmetric(t *testing.T) {
	versions := []string{"", "0", "1", "1.0", "1.0.1", "1.2", "1.2.0", "1.10", "2.0.0", "abc", "1..2"}

	for _, a := range versions {
		for _, b := range versions {
			assert.Equal(t, sign(Compare(a, b)), -sign(Compare(b, a)), "Compare(%q, %q)", a, b)
		}
	}
}

func TestIsValid(t *testing.T) {
	assert.True(t, IsValid("1"))
	assert.True(t, IsValid("1.2.3.4"))
	assert.False(t, IsValid(""))
	assert.False(t, IsValid("1.2."))
	assert.False(t, IsValid("v1.2"))
	assert.False(t, IsValid("1.2-beta"))
}

func TestNewer(t *testing.T) {
	assert.True(t, Newer("1.1.0", "1.0.0"))
	assert.False(t, Newer("1.0", "1.0.0"))
	assert.True(t, Newer("0.0.1", ""))
}

func TestCanonical(t *testing.T) {
	assert.Equal(t, "1.2", Canonical("1.2.0"))
	assert.Equal(t, "1.2", Canonical("01.02"))
	assert.Equal(t, "0", Canonical("0.0.0"))
	assert.Equal(t, "", Canonical(""))
	assert.Equal(t, Canonical("2.0.1"), Canonical("2.0.1.0"))
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	}
	return 0
}
