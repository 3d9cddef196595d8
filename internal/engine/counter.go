package engine

import "fmt"

// Counter is a mixed-radix odometer over assignment identifiers. Digit j
// names the rod that piece j is cut from, so a counter with n digits and
// base m visits all m^n piece-to-rod mappings, starting from all zeros.
type Counter struct {
	digits []int
	base   int
}

// NewCounter returns a counter of the given length positioned at all zeros.
func NewCounter(length, base int) *Counter {
	return &Counter{digits: make([]int, length), base: base}
}

// RestoreCounter returns a counter positioned at digits. The slice is copied.
func RestoreCounter(digits []int, base int) (*Counter, error) {
	for i, d := range digits {
		if d < 0 || (base > 0 && d >= base) {
			return nil, fmt.Errorf("%w: digit %d is %d, base %d", ErrInvalidInput, i, d, base)
		}
	}
	return &Counter{digits: append([]int(nil), digits...), base: base}, nil
}

// Digits returns the current identifier. The slice is owned by the counter
// and changes on the next call to Next.
func (c *Counter) Digits() []int {
	return c.digits
}

// Snapshot returns a copy of the current identifier.
func (c *Counter) Snapshot() []int {
	return append([]int(nil), c.digits...)
}

// Base returns the radix of every digit.
func (c *Counter) Base() int {
	return c.base
}

// Next advances to the following identifier, carrying from the last digit
// towards the first. It reports true on overflow, when every digit rolled
// back to zero and enumeration is complete. A counter without digits or with
// base <= 0 overflows on the first call.
func (c *Counter) Next() bool {
	if c.base <= 0 {
		return true
	}
	for pos := len(c.digits) - 1; pos >= 0; pos-- {
		if c.digits[pos] < c.base-1 {
			c.digits[pos]++
			return false
		}
		c.digits[pos] = 0
	}
	return true
}
