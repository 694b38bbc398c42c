// SPDX-License-Identifier: GPL-3.0
// Copyright 2024 Pete Heist

// Command fctsim runs the flow-completion-time simulator over a YAML
// configuration and a JSON flow descriptor file, and prints the resulting
// records as JSON.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/heistp/fctsim"
	"github.com/heistp/fctsim/internal/simlog"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		flowsPath  string
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:   "fctsim",
		Short: "Run the single-bottleneck DCTCP flow-completion-time simulator",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(configPath, flowsPath, verbose)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to the YAML simulation config (required)")
	cmd.Flags().StringVarP(&flowsPath, "flows", "f", "", "path to the JSON flow descriptor file (required)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log every dispatched event")
	cmd.MarkFlagRequired("config")
	cmd.MarkFlagRequired("flows")

	return cmd
}

func run(configPath, flowsPath string, verbose bool) error {
	cfg, err := fctsim.LoadConfig(configPath)
	if err != nil {
		return err
	}
	flows, err := fctsim.LoadFlows(flowsPath)
	if err != nil {
		return err
	}
	cfg.Flows = flows

	log := simlog.New()
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	metrics := fctsim.NewMetrics(prometheus.DefaultRegisterer)

	sim, err := fctsim.NewSimulator(cfg, log, metrics)
	if err != nil {
		return err
	}

	records, err := sim.Run(context.Background())
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}
