// SPDX-License-Identifier: GPL-3.0
// Copyright 2024 Pete Heist

package fctsim

import "math"

// caState is the DCTCP congestion-avoidance state (spec.md §3).
type caState int

const (
	caOpen caState = iota
	caReducing
)

// flowParams are the DCTCP/window tunables a Flow is constructed with,
// threaded down from Config by Source.flowArrive.
type flowParams struct {
	window      Bytes
	gain        float64
	additiveInc Bitrate
	szPktMax    Bytes
	szPktHdr    Bytes
	minRate     Bitrate
}

// Flow holds the DCTCP sender state for a single flow (spec.md §3, §4.4).
type Flow struct {
	id      FlowID
	qIndex  QIndex
	size    Bytes
	start   Clock
	src2btl Delta
	btl2dst Delta

	rate    Bitrate
	minRate Bitrate
	maxRate Bitrate

	window  Bytes
	sndNxt  Bytes
	sndUna  Bytes

	alpha         float64
	gain          float64
	additiveInc   Bitrate
	lastUpdateSeq Bytes
	batchSize     int
	markedCount   int
	ca            caState
	highSeq       Bytes

	szPktMax Bytes
	szPktHdr Bytes

	// tnext is the earliest time this flow may send its next packet. It
	// starts at the flow's arrival time.
	tnext Clock
}

// newFlow returns a new Flow for a just-arrived FlowDesc, with the DCTCP
// rate initialized to the source's link rate (spec.md §4.3 flow_arrive).
func newFlow(desc FlowDesc, src2btl, btl2dst Delta, linkRate Bitrate, now Clock, p flowParams) *Flow {
	return &Flow{
		id:          desc.ID,
		qIndex:      desc.QIndex,
		size:        desc.SizeBytes,
		start:       desc.StartNs,
		src2btl:     src2btl,
		btl2dst:     btl2dst,
		rate:        linkRate,
		minRate:     p.minRate,
		maxRate:     linkRate,
		window:      p.window,
		alpha:       0,
		gain:        p.gain,
		additiveInc: p.additiveInc,
		szPktMax:    p.szPktMax,
		szPktHdr:    p.szPktHdr,
		tnext:       now,
	}
}

// bytesLeft returns the number of payload bytes not yet scheduled to send.
func (f *Flow) bytesLeft() Bytes {
	return f.size.SaturatingSub(f.sndNxt)
}

// onTheFly returns the number of payload bytes sent but not yet acked.
func (f *Flow) onTheFly() Bytes {
	return f.sndNxt.SaturatingSub(f.sndUna)
}

// usableWindow returns the usable congestion window: the window scaled by
// rate/maxRate, minus bytes on the fly, clamped at zero (spec.md §4.4).
func (f *Flow) usableWindow() Bytes {
	scaled := math.Floor(float64(f.window) * float64(f.rate) / float64(f.maxRate))
	return Bytes(scaled).SaturatingSub(f.onTheFly())
}

// isRateBound reports whether the flow cannot send at now due to pacing.
func (f *Flow) isRateBound(now Clock) bool {
	return f.tnext > now
}

// isWindowBound reports whether the flow has no usable window left.
func (f *Flow) isWindowBound() bool {
	return f.usableWindow() == 0
}

// nextPacket produces the flow's next packet at time now. Precondition:
// bytesLeft() > 0 and usableWindow() > 0 (spec.md §4.4).
func (f *Flow) nextPacket(now Clock) Packet {
	payload := minBytes(f.bytesLeft(), f.szPktMax)
	payload = minBytes(payload, f.usableWindow())
	f.sndNxt += payload
	pktSize := payload + f.szPktHdr
	isLast := f.bytesLeft() == 0
	f.tnext = now.Add(f.rate.length(pktSize))
	return Packet{
		FlowID:  f.id,
		QIndex:  f.qIndex,
		Size:    pktSize,
		IsLast:  isLast,
		Src2Btl: f.src2btl,
		Btl2Dst: f.btl2dst,
	}
}

// ceilInPackets returns ceil(bytes / szPktMax) as a packet count.
func ceilInPackets(bytes, szPktMax Bytes) int {
	if szPktMax == 0 {
		return 0
	}
	return int((bytes + szPktMax - 1) / szPktMax)
}

// rcvAck applies an Ack to the flow's DCTCP state machine (spec.md §4.4).
func (f *Flow) rcvAck(ack Ack) {
	f.sndUna += ack.BytesAcked
	if ack.Marked {
		f.markedCount++
	}

	newBatch := false
	if f.sndUna > f.lastUpdateSeq {
		newBatch = true
		if f.lastUpdateSeq == 0 {
			f.batchSize = ceilInPackets(f.sndNxt, f.szPktMax)
		} else {
			// An empty batch (everything already acked) counts as fully
			// marked if any mark arrived, unmarked otherwise.
			frac := 0.0
			if f.batchSize > 0 {
				frac = float64(f.markedCount) / float64(f.batchSize)
			} else if f.markedCount > 0 {
				frac = 1
			}
			frac = math.Max(0, math.Min(1, frac))
			f.alpha = (1-f.gain)*f.alpha + f.gain*frac
			f.markedCount = 0
			f.batchSize = ceilInPackets(f.sndNxt.SaturatingSub(f.sndUna), f.szPktMax)
		}
		f.lastUpdateSeq = f.sndNxt
	}

	if f.ca == caReducing && f.sndUna > f.highSeq {
		f.ca = caOpen
	}
	if f.ca == caOpen {
		if ack.Marked {
			newRate := Bitrate(float64(f.rate) * (1 - f.alpha/2))
			f.rate = maxBitrate(f.minRate, newRate)
			f.ca = caReducing
			f.highSeq = f.sndNxt
		}
		if newBatch {
			f.rate = minBitrate(f.maxRate, f.rate+f.additiveInc)
		}
	}
	// Rate changes do not cancel or reschedule a pending send: the source
	// code this is distilled from leaves a TODO noting HPCC may not do
	// this either. Rate changes take effect on the next scheduling
	// decision (spec.md §9 open question (a)).
}
