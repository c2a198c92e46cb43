package domain

import "fmt"

// Money is an amount in integer cents. Currency amounts are never floats.
type Money int64

// String renders cents as a decimal amount for logs and messages.
func (m Money) String() string {
	sign := ""
	v := m
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

// Abs returns the magnitude of the amount.
func (m Money) Abs() Money {
	if m < 0 {
		return -m
	}
	return m
}
