// SPDX-License-Identifier: GPL-3.0
// Copyright 2024 Pete Heist

package fctsim

// portStatus is the bottleneck port's state machine (spec.md §4.5).
type portStatus int

const (
	portBlocked portStatus = iota
	portRunning
)

// subQueue is one FIFO sub-queue of a bottleneck port, with deficit
// round-robin bookkeeping (spec.md §3, §4.5).
type subQueue struct {
	pkts    []Packet
	qsize   Bytes
	quantum Bytes
	deficit Bytes
}

func (q *subQueue) enqueue(pkt Packet) {
	q.pkts = append(q.pkts, pkt)
	q.qsize += pkt.Size
}

// dequeue removes and returns the head packet. ok is false if empty.
func (q *subQueue) dequeue() (Packet, bool) {
	if len(q.pkts) == 0 {
		return Packet{}, false
	}
	pkt := q.pkts[0]
	q.pkts = q.pkts[1:]
	q.qsize -= pkt.Size
	return pkt, true
}

func (q *subQueue) peek() (Packet, bool) {
	if len(q.pkts) == 0 {
		return Packet{}, false
	}
	return q.pkts[0], true
}

func (q *subQueue) empty() bool {
	return len(q.pkts) == 0
}

// Bottleneck is the single bottleneck port: N DRR sub-queues, one per
// QIndex, with ECN threshold marking (spec.md §4.5).
type Bottleneck struct {
	bandwidth  Bitrate
	queues     []subQueue
	counter    int
	shouldBump bool
	status     portStatus

	markingThreshold Bytes
	szPktHdr         Bytes
}

// newBottleneck returns a new Bottleneck with one sub-queue per quantum.
// Precondition: every quantum is > 0 (I4), enforced by Config.Validate.
func newBottleneck(bandwidth Bitrate, quanta []Bytes, markingThreshold, szPktHdr Bytes) *Bottleneck {
	qs := make([]subQueue, len(quanta))
	for i, q := range quanta {
		qs[i] = subQueue{quantum: q}
	}
	return &Bottleneck{
		bandwidth:        bandwidth,
		queues:           qs,
		shouldBump:       true,
		markingThreshold: markingThreshold,
		szPktHdr:         szPktHdr,
	}
}

// pickDequeueIndex implements DRR (spec.md §4.5): starting at counter, skip
// empty queues (resetting their deficit, I5), then find the first queue
// whose deficit covers its head packet, bumping its deficit by its quantum
// once per visit. Returns ok=false iff every queue is empty.
func (b *Bottleneck) pickDequeueIndex() (QIndex, bool) {
	n := len(b.queues)
	start := b.counter
	for b.counter-start < n {
		idx := b.counter % n
		if b.queues[idx].empty() {
			b.queues[idx].deficit = 0
			b.counter++
			b.shouldBump = true
			continue
		}
		break
	}
	if b.counter-start == n {
		return 0, false
	}
	for {
		idx := b.counter % n
		if b.queues[idx].empty() {
			b.queues[idx].deficit = 0
			b.counter++
			b.shouldBump = true
			continue
		}
		if b.shouldBump {
			b.queues[idx].deficit += b.queues[idx].quantum
			b.shouldBump = false
		}
		pkt, _ := b.queues[idx].peek()
		if b.queues[idx].deficit >= pkt.Size {
			b.queues[idx].deficit -= pkt.Size
			return QIndex(idx), true
		}
		b.counter++
		b.shouldBump = true
	}
}

// receive enqueues pkt (spec.md §4.5) and returns any events it produces.
func (b *Bottleneck) receive(pkt Packet, now Clock) []event {
	b.queues[pkt.QIndex].enqueue(pkt)
	if b.status == portRunning {
		return nil
	}
	b.status = portRunning
	return b.step(now)
}

// step services the next packet, if any (spec.md §4.5). Panics if called
// while not Running: an internal invariant violation, never a recoverable
// error (spec.md §7).
func (b *Bottleneck) step(now Clock) []event {
	if b.status != portRunning {
		panic("fctsim: bottleneck Step called while Blocked")
	}
	idx, ok := b.pickDequeueIndex()
	if !ok {
		b.status = portBlocked
		return nil
	}
	pkt, ok := b.queues[idx].dequeue()
	if !ok {
		// pickDequeueIndex guarantees a nonempty queue at idx.
		panic("fctsim: DRR selected an empty sub-queue")
	}

	serviceDelta := b.bandwidth.length(pkt.Size)
	evs := []event{
		{time: now.Add(serviceDelta), cmd: BottleneckStepCmd{}},
	}

	marked := b.queues[idx].qsize > b.markingThreshold
	ackDelta := serviceDelta + pkt.Btl2Dst + (pkt.Src2Btl + pkt.Btl2Dst)
	evs = append(evs, event{
		time: now.Add(ackDelta),
		cmd: SourceRcvAckCmd{
			SourceID: pkt.SourceID,
			FlowID:   pkt.FlowID,
			Ack:      Ack{BytesAcked: pkt.Size.SaturatingSub(b.szPktHdr), Marked: marked},
		},
	})

	if pkt.IsLast {
		evs = append(evs, event{
			time: now.Add(serviceDelta + pkt.Btl2Dst),
			cmd:  SourceFlowDepartCmd{SourceID: pkt.SourceID, FlowID: pkt.FlowID},
		})
	}
	return evs
}

// queueOccupancy returns the current byte occupancy of sub-queue idx, for
// metrics reporting.
func (b *Bottleneck) queueOccupancy(idx QIndex) Bytes {
	return b.queues[idx].qsize
}
