// SPDX-License-Identifier: GPL-3.0
// Copyright 2024 Pete Heist

package fctsim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRateLength(t *testing.T) {
	rate := 100 * Gbps
	assert.Equal(t, Delta(5), rate.length(64))
}

func TestRateWidth(t *testing.T) {
	rate := 100 * Gbps
	assert.Equal(t, Bytes(63), rate.width(5))
}

func TestLengthZeroSize(t *testing.T) {
	assert.Equal(t, DeltaZero, Gbps.length(0))
}

func TestLengthPanicsOnZeroRate(t *testing.T) {
	assert.Panics(t, func() {
		Bitrate(0).length(100)
	})
}

func TestWidthNonPositiveDelta(t *testing.T) {
	assert.Equal(t, Bytes(0), Gbps.width(0))
	assert.Equal(t, Bytes(0), Gbps.width(-5))
}

func TestMinMaxHelpers(t *testing.T) {
	assert.Equal(t, Bitrate(1), minBitrate(1, 2))
	assert.Equal(t, Bitrate(2), maxBitrate(1, 2))
	assert.Equal(t, Bytes(1), minBytes(1, 2))
	assert.Equal(t, Bytes(2), maxBytes(1, 2))
	assert.Equal(t, Clock(1), minClock(1, 2))
	assert.Equal(t, Clock(2), maxClock(1, 2))
	assert.Equal(t, Delta(1), minDelta(1, 2))
}
