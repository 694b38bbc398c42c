// SPDX-License-Identifier: GPL-3.0
// Copyright 2024 Pete Heist

package fctsim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		BandwidthBps:               40 * Gbps,
		Sources:                    []SourceDesc{{ID: 0, Delay2BtlNs: 1000, LinkRateBps: 10 * Gbps}},
		Flows:                      []FlowDesc{{ID: 0, SourceID: 0, QIndex: 0, SizeBytes: 100, StartNs: 0, Delay2DstNs: 3000}},
		Quanta:                     []Bytes{1500},
		WindowBytes:                100 * Kilobyte,
		DCTCPMarkingThresholdBytes: 300 * Kilobyte,
		DCTCPGain:                  0.0625,
		DCTCPAIBps:                 10 * Mbps,
		SzPktMaxBytes:              1500,
		SzPktHdrBytes:              54,
	}
}

func TestConfigValidateAccepts(t *testing.T) {
	require.NoError(t, validConfig().Validate())
}

func TestConfigValidateCollectsEveryViolation(t *testing.T) {
	cfg := validConfig()
	cfg.Quanta = []Bytes{0}
	cfg.DCTCPGain = 2
	cfg.SzPktMaxBytes = 0
	cfg.BandwidthBps = 0
	cfg.Flows[0].SourceID = 99

	err := cfg.Validate()
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, "quanta[0]")
	assert.Contains(t, msg, "dctcp_gain")
	assert.Contains(t, msg, "sz_pktmax_bytes")
	assert.Contains(t, msg, "bandwidth_bps")
	assert.Contains(t, msg, "unknown source_id")
}

func TestConfigValidateRejectsDelayOrder(t *testing.T) {
	cfg := validConfig()
	cfg.Flows[0].Delay2DstNs = 500 // less than source's Delay2BtlNs of 1000
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfiguration)
}

func TestConfigValidateRejectsQIndexOutOfRange(t *testing.T) {
	cfg := validConfig()
	cfg.Flows[0].QIndex = 5
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfiguration)
}

func TestConfigMinRateDefault(t *testing.T) {
	cfg := validConfig()
	assert.Equal(t, 100*Mbps, cfg.minRate())
	cfg.MinRateBps = 5 * Mbps
	assert.Equal(t, 5*Mbps, cfg.minRate())
}
