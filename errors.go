// SPDX-License-Identifier: GPL-3.0
// Copyright 2024 Pete Heist

package fctsim

import "github.com/pkg/errors"

// Error kinds at the library boundary (spec.md §7). Internal invariant
// violations (an empty dequeue while Running, a past-time schedule, a
// zero-rate length computation) are bugs, not recoverable errors, and
// panic instead of returning one of these.
var (
	// ErrInvalidConfiguration wraps any defect found by Config.Validate:
	// a non-positive DRR quantum, an empty quanta list, a flow whose
	// delay2dst is less than its source's delay2btl, a flow referencing an
	// unknown source_id or an out-of-range q_index, a dctcp_gain outside
	// (0,1], or a zero sz_pktmax_bytes or bandwidth_bps.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrIO wraps a failure reading or parsing a flow descriptor file or a
	// config document, the only collaborator-boundary error kind (spec.md §7).
	ErrIO = errors.New("io error")
)
