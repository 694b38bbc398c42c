// SPDX-License-Identifier: GPL-3.0
// Copyright 2024 Pete Heist

package fctsim

import (
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
)

////////////////
//
// Configuration
//
// Config is the external interface described in spec.md §6: one bottleneck,
// a set of sources, a list of flows, and the DRR/DCTCP tunables. It is the
// single input to NewSimulator.

// Config is the simulator's external configuration object.
type Config struct {
	// BandwidthBps is the bottleneck's service rate.
	BandwidthBps Bitrate `yaml:"bandwidth_bps"`
	// Sources describes every traffic source.
	Sources []SourceDesc `yaml:"sources"`
	// Flows describes every flow. Order need not be sorted by start time;
	// the simulator sorts by start on load.
	Flows []FlowDesc `yaml:"flows"`
	// Quanta holds one DRR weight per bottleneck sub-queue; all must be > 0.
	Quanta []Bytes `yaml:"quanta"`
	// WindowBytes is the per-flow congestion window.
	WindowBytes Bytes `yaml:"window_bytes"`
	// DCTCPMarkingThresholdBytes is the per-queue occupancy threshold for
	// ECN marking.
	DCTCPMarkingThresholdBytes Bytes `yaml:"dctcp_marking_threshold_bytes"`
	// DCTCPGain is the alpha EWMA gain, in (0, 1].
	DCTCPGain float64 `yaml:"dctcp_gain"`
	// DCTCPAIBps is the additive increase applied per acknowledged batch.
	DCTCPAIBps Bitrate `yaml:"dctcp_ai_bps"`
	// SzPktMaxBytes is the maximum payload carried by one packet; a full
	// packet on the wire is SzPktMaxBytes + SzPktHdrBytes.
	SzPktMaxBytes Bytes `yaml:"sz_pktmax_bytes"`
	// SzPktHdrBytes is the header size subtracted from payload accounting
	// in Acks.
	SzPktHdrBytes Bytes `yaml:"sz_pkthdr_bytes"`
	// TimeoutNs is an optional simulated-time deadline. Zero means no
	// deadline.
	TimeoutNs Delta `yaml:"timeout_ns"`
	// MinRateBps is the DCTCP floor rate a flow's sending rate may never
	// drop below. Defaults to 100 Mbps if zero.
	MinRateBps Bitrate `yaml:"min_rate_bps"`
}

// SourceDesc describes a traffic source (spec.md §3).
type SourceDesc struct {
	ID          SourceID `json:"id" yaml:"id"`
	Delay2BtlNs Delta    `json:"delay_src_to_btl_ns" yaml:"delay_src_to_btl_ns"`
	LinkRateBps Bitrate  `json:"link_rate_bps" yaml:"link_rate_bps"`
}

// FlowDesc describes a flow (spec.md §3). It is the schema loaded from the
// JSON flow descriptor file named in spec.md §6.
type FlowDesc struct {
	ID          FlowID   `json:"id"`
	SourceID    SourceID `json:"source_id"`
	QIndex      QIndex   `json:"q_index"`
	SizeBytes   Bytes    `json:"size_bytes"`
	StartNs     Clock    `json:"start_ns"`
	Delay2DstNs Delta    `json:"delay_src_to_dst_ns"`
}

// Validate checks the configuration for the error conditions enumerated in
// spec.md §7, collecting every violation rather than stopping at the first.
// It returns nil if the configuration is valid.
func (c *Config) Validate() error {
	var merr *multierror.Error

	if len(c.Quanta) == 0 {
		merr = multierror.Append(merr, errors.Wrap(ErrInvalidConfiguration, "quanta must not be empty"))
	}
	for i, q := range c.Quanta {
		if q <= 0 {
			merr = multierror.Append(merr, errors.Wrapf(ErrInvalidConfiguration, "quanta[%d] = %d is not positive", i, q))
		}
	}

	sources := make(map[SourceID]SourceDesc, len(c.Sources))
	for _, s := range c.Sources {
		sources[s.ID] = s
	}

	for _, f := range c.Flows {
		src, ok := sources[f.SourceID]
		if !ok {
			merr = multierror.Append(merr, errors.Wrapf(ErrInvalidConfiguration, "flow %d references unknown source_id %d", f.ID, f.SourceID))
			continue
		}
		if f.Delay2DstNs < src.Delay2BtlNs {
			merr = multierror.Append(merr, errors.Wrapf(ErrInvalidConfiguration, "flow %d: delay_src_to_dst_ns (%d) < source %d's delay_src_to_btl_ns (%d)", f.ID, f.Delay2DstNs, src.ID, src.Delay2BtlNs))
		}
		if int(f.QIndex) < 0 || int(f.QIndex) >= len(c.Quanta) {
			merr = multierror.Append(merr, errors.Wrapf(ErrInvalidConfiguration, "flow %d references q_index %d out of range [0,%d)", f.ID, f.QIndex, len(c.Quanta)))
		}
	}

	if c.DCTCPGain <= 0 || c.DCTCPGain > 1 {
		merr = multierror.Append(merr, errors.Wrapf(ErrInvalidConfiguration, "dctcp_gain (%f) must be in (0,1]", c.DCTCPGain))
	}
	if c.SzPktMaxBytes == 0 {
		merr = multierror.Append(merr, errors.Wrap(ErrInvalidConfiguration, "sz_pktmax_bytes must be positive"))
	}
	if c.BandwidthBps == 0 {
		merr = multierror.Append(merr, errors.Wrap(ErrInvalidConfiguration, "bandwidth_bps must be positive"))
	}

	return merr.ErrorOrNil()
}

// minRate returns the configured DCTCP rate floor, defaulting to 100 Mbps
// to match original_source's hardcoded floor (entities/flow.rs).
func (c *Config) minRate() Bitrate {
	if c.MinRateBps > 0 {
		return c.MinRateBps
	}
	return 100 * Mbps
}
