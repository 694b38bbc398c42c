// SPDX-License-Identifier: GPL-3.0
// Copyright 2024 Pete Heist

package fctsim

import (
	"fmt"
	"math"
)

// Clock represents the virtual simulation time, in nanoseconds.
type Clock int64

// ClockInfinity is a sentinel Clock value meaning "never" (an idle
// source's tnext, for example).
const ClockInfinity = Clock(math.MaxInt64)

// ClockZero is the start of simulated time.
const ClockZero = Clock(0)

// Delta is a signed duration between two Clock values, in nanoseconds.
type Delta int64

// DeltaZero is a zero-length Delta.
const DeltaZero = Delta(0)

// Add returns c advanced by d.
func (c Clock) Add(d Delta) Clock {
	return c + Clock(d)
}

// Sub returns the Delta from other to c (c - other).
func (c Clock) Sub(other Clock) Delta {
	return Delta(c - other)
}

// After reports whether c is strictly after other.
func (c Clock) After(other Clock) bool {
	return c > other
}

func (c Clock) String() string {
	if c == ClockInfinity {
		return "+Inf"
	}
	return fmt.Sprintf("%d.%09d", int64(c)/1e9, int64(c)%1e9)
}
