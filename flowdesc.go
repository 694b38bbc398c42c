// SPDX-License-Identifier: GPL-3.0
// Copyright 2024 Pete Heist

package fctsim

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// LoadFlows reads a flow descriptor file: a JSON array of FlowDesc (spec.md
// §6). It is the one collaborator boundary spec.md names explicitly as
// excluded from the core, kept thin on purpose.
func LoadFlows(path string) ([]FlowDesc, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(ErrIO, "reading flow descriptor %q: %v", path, err)
	}
	var flows []FlowDesc
	if err := json.Unmarshal(b, &flows); err != nil {
		return nil, errors.Wrapf(ErrIO, "parsing flow descriptor %q: %v", path, err)
	}
	return flows, nil
}

// LoadConfig reads the non-flow simulation configuration document: bandwidth,
// sources, DRR quanta, and DCTCP tunables, in YAML.
func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(ErrIO, "reading config %q: %v", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, errors.Wrapf(ErrIO, "parsing config %q: %v", path, err)
	}
	return &cfg, nil
}
