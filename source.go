// SPDX-License-Identifier: GPL-3.0
// Copyright 2024 Pete Heist

package fctsim

// flowQResultKind classifies the outcome of a round-robin scan over a
// source's flows (spec.md §4.3).
type flowQResultKind int

const (
	flowQFound flowQResultKind = iota
	flowQRateBound
	flowQWinBound
	flowQEmpty
)

type flowQResult struct {
	kind  flowQResultKind
	pkt   Packet
	tnext Clock
}

// flowQ is a source's insertion-ordered set of flows plus a round-robin
// cursor (spec.md §4.3).
type flowQ struct {
	order  []FlowID
	byID   map[FlowID]*Flow
	rrNext int
}

func newFlowQ() *flowQ {
	return &flowQ{byID: make(map[FlowID]*Flow)}
}

func (q *flowQ) add(f *Flow) {
	q.order = append(q.order, f.id)
	q.byID[f.id] = f
}

func (q *flowQ) get(id FlowID) (*Flow, bool) {
	f, ok := q.byID[id]
	return f, ok
}

func (q *flowQ) remove(idx int, id FlowID) {
	q.order = append(q.order[:idx], q.order[idx+1:]...)
	delete(q.byID, id)
}

// nextPacket scans up to N flows starting at rrNext and returns the result
// of that scan (spec.md §4.3).
func (q *flowQ) nextPacket(now Clock) flowQResult {
	n := len(q.order)
	if n == 0 {
		return flowQResult{kind: flowQEmpty}
	}
	minViableTnext := ClockInfinity
	haveRateBound := false
	for i := 0; i < n; i++ {
		idx := (i + q.rrNext) % n
		id := q.order[idx]
		f := q.byID[id]
		rateBound := f.isRateBound(now)
		winBound := f.isWindowBound()
		switch {
		case !rateBound && !winBound:
			pkt := f.nextPacket(now)
			if f.bytesLeft() == 0 {
				q.remove(idx, id)
			}
			q.rrNext = idx + 1
			return flowQResult{kind: flowQFound, pkt: pkt}
		case rateBound && !winBound:
			haveRateBound = true
			minViableTnext = minClock(minViableTnext, f.tnext)
		default:
			// window-bound: not a candidate for scheduling.
		}
	}
	if haveRateBound {
		return flowQResult{kind: flowQRateBound, tnext: minViableTnext}
	}
	return flowQResult{kind: flowQWinBound}
}

// admittedFlow holds the facts about a flow needed to build its Record once
// it departs, kept independently of flowQ because a flow is removed from
// flowQ's membership as soon as it sends its last byte, before its
// departure (and therefore its ack delay) has elapsed (spec.md §3
// lifecycles).
type admittedFlow struct {
	id      FlowID
	size    Bytes
	start   Clock
	src2btl Delta
	btl2dst Delta
}

// Source is a per-source flow multiplexer: a window-based, rate-paced,
// round-robin sender over its flows (spec.md §4.3).
type Source struct {
	id        SourceID
	delay2btl Delta
	linkRate  Bitrate

	earliestTnext Clock
	tnext         Clock
	flows         *flowQ
	admitted      map[FlowID]admittedFlow
	version       uint64

	params flowParams

	btlBandwidth Bitrate
}

// newSource returns a new, idle Source.
func newSource(desc SourceDesc, params flowParams, btlBandwidth Bitrate) *Source {
	return &Source{
		id:           desc.ID,
		delay2btl:    desc.Delay2BtlNs,
		linkRate:     desc.LinkRateBps,
		tnext:        ClockInfinity,
		flows:        newFlowQ(),
		admitted:     make(map[FlowID]admittedFlow),
		params:       params,
		btlBandwidth: btlBandwidth,
	}
}

// trySend attempts to transmit the next packet from some flow (spec.md
// §4.3). version must match s.version or this call is a stale no-op
// (I10).
func (s *Source) trySend(version uint64, now Clock) []event {
	if version != s.version {
		return nil
	}
	switch r := s.flows.nextPacket(now); r.kind {
	case flowQFound:
		pkt := r.pkt
		pkt.SourceID = s.id
		bwDelta := s.linkRate.length(pkt.Size)
		s.earliestTnext = now.Add(bwDelta)
		s.tnext = now.Add(bwDelta)
		return []event{
			{time: now.Add(s.delay2btl + bwDelta), cmd: BottleneckReceiveCmd{Packet: pkt}},
			{time: now.Add(bwDelta), cmd: SourceTrySendCmd{SourceID: s.id, Version: s.version}},
		}
	case flowQRateBound:
		s.tnext = r.tnext
		return []event{
			{time: r.tnext, cmd: SourceTrySendCmd{SourceID: s.id, Version: s.version}},
		}
	default: // flowQWinBound, flowQEmpty
		s.tnext = ClockInfinity
		return nil
	}
}

// rcvAck delivers an Ack to one of the source's flows (spec.md §4.3). A
// missing flow silently drops the ack: it has already drained and is
// merely awaiting its FlowDepart.
func (s *Source) rcvAck(flowID FlowID, ack Ack, now Clock) []event {
	f, ok := s.flows.get(flowID)
	if !ok {
		return nil
	}
	f.rcvAck(ack)
	if !f.isWindowBound() && f.tnext < s.tnext {
		tnext := maxClock(s.earliestTnext, f.tnext)
		s.version++
		s.tnext = tnext
		// tnext may already be in the past (the window freed up well
		// before the link is next free to send on); the wake-up still
		// fires now, not retroactively.
		return []event{
			{time: maxClock(now, tnext), cmd: SourceTrySendCmd{SourceID: s.id, Version: s.version}},
		}
	}
	return nil
}

// flowArrive admits a new flow onto the source (spec.md §4.3).
func (s *Source) flowArrive(desc FlowDesc, now Clock) []event {
	btl2dst := desc.Delay2DstNs - s.delay2btl
	f := newFlow(desc, s.delay2btl, btl2dst, s.linkRate, now, s.params)
	s.flows.add(f)
	s.admitted[desc.ID] = admittedFlow{
		id:      desc.ID,
		size:    desc.SizeBytes,
		start:   desc.StartNs,
		src2btl: s.delay2btl,
		btl2dst: btl2dst,
	}
	if s.earliestTnext <= now && now < s.tnext {
		s.version++
		return s.trySend(s.version, now)
	}
	return nil
}

// flowDepart finalizes a drained flow and produces its FCT record (spec.md
// §4.3). ok is false if flowID is unknown (an internal bug: a FlowDepart
// was scheduled for a flow never admitted).
func (s *Source) flowDepart(flowID FlowID, now Clock) (Record, bool) {
	info, ok := s.admitted[flowID]
	if !ok {
		return Record{}, false
	}
	delete(s.admitted, flowID)

	ideal := idealFCT(info.size, info.src2btl, info.btl2dst, s.linkRate, s.btlBandwidth, s.params.szPktMax, s.params.szPktHdr)
	return Record{
		ID:    info.id,
		Size:  info.size,
		Start: info.start,
		FCT:   Delta(now - info.start),
		Ideal: ideal,
	}, true
}

// idealFCT computes the analytical completion time on two unloaded hops
// (spec.md §4.3).
func idealFCT(size Bytes, src2btl, btl2dst Delta, bwHop1, bwHop2 Bitrate, szPktMax, szPktHdr Bytes) Delta {
	szHead := minBytes(size, szPktMax)
	var head Bytes
	if szHead > 0 {
		head = szHead + szPktHdr
	}
	rest := size.SaturatingSub(szHead)

	var nrFull int
	var tail Bytes
	if szPktMax > 0 {
		nrFull = int(rest / szPktMax)
		tail = rest % szPktMax
	}

	minRate := minBitrate(bwHop1, bwHop2)
	total := bwHop1.length(head) + bwHop2.length(head)
	if nrFull > 0 {
		fullPkt := szPktMax + szPktHdr
		total += Delta(int64(nrFull)) * minRate.length(fullPkt)
	}
	if tail > 0 {
		total += minRate.length(tail + szPktHdr)
	}
	total += src2btl + btl2dst
	return total
}
