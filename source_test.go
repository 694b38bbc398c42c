// SPDX-License-Identifier: GPL-3.0
// Copyright 2024 Pete Heist

package fctsim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testParams(window Bytes) flowParams {
	return flowParams{
		window:      window,
		gain:        0.5,
		additiveInc: 0,
		szPktMax:    1000,
		szPktHdr:    0,
		minRate:     1,
	}
}

// TestSourceWindowBoundRecovery reproduces spec.md §8 scenario 5: with a
// window of exactly one packet, the source sends once, goes window-bound
// (tnext set to +Inf), and resumes only once the corresponding ack frees
// the window.
func TestSourceWindowBoundRecovery(t *testing.T) {
	src := newSource(SourceDesc{ID: 0, Delay2BtlNs: 0, LinkRateBps: Gbps}, testParams(1000), Gbps)

	evs := src.flowArrive(FlowDesc{ID: 0, SourceID: 0, QIndex: 0, SizeBytes: 5000, StartNs: 0, Delay2DstNs: 0}, ClockZero)
	require.Len(t, evs, 2)

	var retry event
	for _, e := range evs {
		if _, ok := e.cmd.(SourceTrySendCmd); ok {
			retry = e
		}
	}
	require.NotNil(t, retry.cmd)

	evs = src.trySend(src.version, retry.time)
	assert.Empty(t, evs, "the flow is window-bound and should produce no events")
	assert.Equal(t, ClockInfinity, src.tnext)

	ackTime := retry.time + 100
	evs = src.rcvAck(0, Ack{BytesAcked: 1000, Marked: false}, ackTime)
	require.Len(t, evs, 1)
	resend, ok := evs[0].cmd.(SourceTrySendCmd)
	require.True(t, ok)
	assert.Equal(t, src.version, resend.Version)
	// The wake-up must not fire before the ack that unblocked it arrived.
	assert.GreaterOrEqual(t, evs[0].time, ackTime)
}

// TestSourceSimultaneousArrivals reproduces spec.md §8 scenario 6: two
// flows with identical start times on the same source both become
// runnable.
func TestSourceSimultaneousArrivals(t *testing.T) {
	src := newSource(SourceDesc{ID: 0, Delay2BtlNs: 1000, LinkRateBps: Gbps}, testParams(1_000_000), Gbps)

	evs1 := src.flowArrive(FlowDesc{ID: 0, SourceID: 0, QIndex: 0, SizeBytes: 1000, StartNs: 0, Delay2DstNs: 2000}, ClockZero)
	evs2 := src.flowArrive(FlowDesc{ID: 1, SourceID: 0, QIndex: 0, SizeBytes: 1000, StartNs: 0, Delay2DstNs: 2000}, ClockZero)

	assert.NotEmpty(t, evs1)
	// The first arrival's send left a TrySend pending, so the second
	// arrival schedules nothing itself; that pending wake-up serves it.
	assert.Empty(t, evs2)
	assert.Len(t, src.admitted, 2)
}

// TestSourceTrySendStaleVersionNoOp is the version-safety property (I10):
// a TrySend carrying a stale version must never transmit.
func TestSourceTrySendStaleVersionNoOp(t *testing.T) {
	src := newSource(SourceDesc{ID: 0, Delay2BtlNs: 0, LinkRateBps: Gbps}, testParams(1_000_000), Gbps)
	src.flowArrive(FlowDesc{ID: 0, SourceID: 0, QIndex: 0, SizeBytes: 5000, StartNs: 0, Delay2DstNs: 0}, ClockZero)

	staleVersion := src.version - 1
	evs := src.trySend(staleVersion, ClockZero)
	assert.Nil(t, evs)
}

func TestIdealFCTZeroByteFlow(t *testing.T) {
	ideal := idealFCT(0, 1000, 2000, Gbps, Gbps, 1500, 54)
	assert.Equal(t, Delta(3000), ideal)
}
