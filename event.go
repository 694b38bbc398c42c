// SPDX-License-Identifier: GPL-3.0
// Copyright 2024 Pete Heist

package fctsim

// Command is a tagged event payload dispatched by the Simulator at its
// scheduled time (spec.md §4.1). Each concrete command type names the
// component it targets.
type Command interface {
	isCommand()
}

// WorkloadStepCmd requests the next flow arrival from the Workload.
type WorkloadStepCmd struct{}

func (WorkloadStepCmd) isCommand() {}

// SourceTrySendCmd asks a source to attempt to transmit its next packet.
// Version guards against stale wake-ups (spec.md §4.3, I10).
type SourceTrySendCmd struct {
	SourceID SourceID
	Version  uint64
}

func (SourceTrySendCmd) isCommand() {}

// SourceRcvAckCmd delivers an Ack to a flow on a source.
type SourceRcvAckCmd struct {
	SourceID SourceID
	FlowID   FlowID
	Ack      Ack
}

func (SourceRcvAckCmd) isCommand() {}

// SourceFlowArriveCmd starts a new flow on a source.
type SourceFlowArriveCmd struct {
	SourceID SourceID
	Desc     FlowDesc
}

func (SourceFlowArriveCmd) isCommand() {}

// SourceFlowDepartCmd reports that a flow has delivered all of its bytes.
type SourceFlowDepartCmd struct {
	SourceID SourceID
	FlowID   FlowID
}

func (SourceFlowDepartCmd) isCommand() {}

// BottleneckReceiveCmd delivers a packet to the bottleneck's ingress.
type BottleneckReceiveCmd struct {
	Packet Packet
}

func (BottleneckReceiveCmd) isCommand() {}

// BottleneckStepCmd asks the bottleneck to service its next packet.
type BottleneckStepCmd struct{}

func (BottleneckStepCmd) isCommand() {}

// event pairs an absolute dispatch Clock with the Command to run then.
type event struct {
	time Clock
	cmd  Command
	seq  uint64
}
