// SPDX-License-Identifier: GPL-3.0
// Copyright 2024 Pete Heist

package fctsim

import "strconv"

// FlowID identifies a flow. Flow IDs are opaque, dense small integers
// assigned by the caller in FlowDesc.
type FlowID int

// SourceID identifies a source. Source IDs are opaque, dense small integers
// assigned by the caller in SourceDesc.
type SourceID int

// QIndex identifies one of a bottleneck port's DRR sub-queues.
type QIndex int

func (q QIndex) String() string {
	return strconv.Itoa(int(q))
}
