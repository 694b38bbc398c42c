// SPDX-License-Identifier: GPL-3.0
// Copyright 2024 Pete Heist

package fctsim

// Packet represents a single packet in flight between a source, the
// bottleneck, and a destination. Size is the total wire length, payload
// plus header (spec.md §3).
type Packet struct {
	FlowID   FlowID
	SourceID SourceID
	QIndex   QIndex
	Size     Bytes
	IsLast   bool

	// Src2Btl and Btl2Dst are the one-way propagation delays this packet's
	// flow carries: source-to-bottleneck, and bottleneck-to-destination.
	Src2Btl Delta
	Btl2Dst Delta
}

// SegmentLen returns the payload size (size minus header bytes).
func (p Packet) SegmentLen(hdr Bytes) Bytes {
	return p.Size.SaturatingSub(hdr)
}

// Ack represents an acknowledgment returned by the bottleneck to a source
// on behalf of a flow.
type Ack struct {
	BytesAcked Bytes
	Marked     bool
}
