// SPDX-License-Identifier: GPL-3.0
// Copyright 2024 Pete Heist

package fctsim

import "container/heap"

// schedule is a min-priority queue of events ordered by ascending time
// (spec.md §4.1). Ties are broken by insertion order, which the spec
// leaves unspecified (I9) but this repo fixes deterministically so that
// running the same configuration twice produces identical records
// (spec.md §8).
type schedule struct {
	h       eventHeap
	nextSeq uint64
}

// newSchedule returns an empty schedule.
func newSchedule() *schedule {
	return &schedule{h: make(eventHeap, 0, 64)}
}

// push inserts an event at the given absolute time.
func (s *schedule) push(time Clock, cmd Command) {
	heap.Push(&s.h, event{time: time, cmd: cmd, seq: s.nextSeq})
	s.nextSeq++
}

// pop removes and returns the earliest event. ok is false if the schedule
// is empty.
func (s *schedule) pop() (event, bool) {
	if len(s.h) == 0 {
		return event{}, false
	}
	return heap.Pop(&s.h).(event), true
}

// empty reports whether the schedule holds no events.
func (s *schedule) empty() bool {
	return len(s.h) == 0
}

// eventHeap implements container/heap.Interface over events ordered by
// (time, seq).
type eventHeap []event

func (h eventHeap) Len() int { return len(h) }

func (h eventHeap) Less(i, j int) bool {
	if h[i].time != h[j].time {
		return h[i].time < h[j].time
	}
	return h[i].seq < h[j].seq
}

func (h eventHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *eventHeap) Push(x any) {
	*h = append(*h, x.(event))
}

func (h *eventHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	*h = old[:n-1]
	return e
}
