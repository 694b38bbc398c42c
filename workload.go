// SPDX-License-Identifier: GPL-3.0
// Copyright 2024 Pete Heist

package fctsim

import "sort"

// workload drives flow arrivals in start-time order (spec.md §4.2). It
// holds the flows sorted once at construction and pops them one at a time
// as Step events fire.
type workload struct {
	flows []FlowDesc
	next  int
}

// newWorkload returns a workload over descs, sorted by StartNs. Input need
// not be pre-sorted (spec.md §3).
func newWorkload(descs []FlowDesc) *workload {
	sorted := make([]FlowDesc, len(descs))
	copy(sorted, descs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StartNs < sorted[j].StartNs
	})
	return &workload{flows: sorted}
}

// step emits the next flow arrival and self-reschedules for the one after
// it, if any (spec.md §4.2).
func (w *workload) step(now Clock) []event {
	if w.next >= len(w.flows) {
		return nil
	}
	desc := w.flows[w.next]
	w.next++
	evs := []event{
		{time: desc.StartNs, cmd: SourceFlowArriveCmd{SourceID: desc.SourceID, Desc: desc}},
	}
	if w.next < len(w.flows) {
		evs = append(evs, event{time: w.flows[w.next].StartNs, cmd: WorkloadStepCmd{}})
	}
	return evs
}
