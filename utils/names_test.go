package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeClassName(t *testing.T) {
	cases := map[string]string{
		"7A":    "7A",
		"7a":    "7A",
		" 7 a ": "7A",
		"7-a":   "7A",
		"11B":   "11B",
		"1v":    "1V",
		"12A":   "",
		"0A":    "",
		"7":     "",
		"AB":    "",
		"":      "",
	}
	for input, want := range cases {
		assert.Equal(t, want, NormalizeClassName(input), "input %q", input)
	}
}

func TestNameCaseVariants(t *testing.T) {
	variants := NameCaseVariants("ivan petrov")
	assert.Contains(t, variants, "ivan petrov")
	assert.Contains(t, variants, "Ivan Petrov")
	assert.Contains(t, variants, "Ivan petrov")
	assert.Contains(t, variants, "IVAN PETROV")

	// Deduplicated: an already lower-case input is not repeated.
	seen := make(map[string]int)
	for _, v := range variants {
		seen[v]++
	}
	for v, n := range seen {
		assert.Equal(t, 1, n, "variant %q repeated", v)
	}

	assert.Nil(t, NameCaseVariants("   "))
}
