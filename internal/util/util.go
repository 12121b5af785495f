// Package util provides common utility functions used across the generators.
package util

import "math"

// DigitsIn extracts the integer formed by all decimal digits in s, in order.
// "t850" yields 850, "z1000" yields 1000. Returns 0 when s has no digits.
func DigitsIn(s string) int {
	n := 0
	found := false
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n = n*10 + int(r-'0')
			found = true
		}
	}
	if !found {
		return 0
	}
	return n
}

// Round2 rounds to two decimal places, half away from zero.
func Round2(f float64) float64 {
	return math.Round(f*100) / 100
}
