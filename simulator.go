// SPDX-License-Identifier: GPL-3.0
// Copyright 2024 Pete Heist

package fctsim

import (
	"context"

	"github.com/google/uuid"

	"github.com/heistp/fctsim/internal/simlog"
)

// Simulator owns the schedule and every component it drives: the workload,
// one Source per configured source, and the single Bottleneck (spec.md
// §4.1). It is single-threaded and lock-free: Run dispatches one event at a
// time to completion before popping the next (spec.md §5).
type Simulator struct {
	schedule   *schedule
	workload   *workload
	sources    map[SourceID]*Source
	bottleneck *Bottleneck

	timeout Clock
	curTime Clock

	runID   string
	records []Record

	log     *simlog.Logger
	metrics *Metrics
}

// NewSimulator builds a Simulator from cfg. It returns an error wrapping
// ErrInvalidConfiguration if cfg fails validation (spec.md §7); it never
// touches a filesystem or network.
func NewSimulator(cfg *Config, log *simlog.Logger, metrics *Metrics) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	params := flowParams{
		window:      cfg.WindowBytes,
		gain:        cfg.DCTCPGain,
		additiveInc: cfg.DCTCPAIBps,
		szPktMax:    cfg.SzPktMaxBytes,
		szPktHdr:    cfg.SzPktHdrBytes,
		minRate:     cfg.minRate(),
	}

	sources := make(map[SourceID]*Source, len(cfg.Sources))
	for _, sd := range cfg.Sources {
		sources[sd.ID] = newSource(sd, params, cfg.BandwidthBps)
	}

	btl := newBottleneck(cfg.BandwidthBps, cfg.Quanta, cfg.DCTCPMarkingThresholdBytes, cfg.SzPktHdrBytes)

	sc := newSchedule()
	sc.push(ClockZero, WorkloadStepCmd{})

	timeout := ClockInfinity
	if cfg.TimeoutNs > 0 {
		timeout = ClockZero.Add(cfg.TimeoutNs)
	}

	return &Simulator{
		schedule:   sc,
		workload:   newWorkload(cfg.Flows),
		sources:    sources,
		bottleneck: btl,
		timeout:    timeout,
		runID:      uuid.NewString(),
		log:        log,
		metrics:    metrics,
	}, nil
}

// Run drains the schedule, dispatching events in non-decreasing time order
// until it empties or the configured timeout is exceeded (spec.md §4.1). It
// returns the completed run's records in flow-departure order. The context
// is checked once per dispatched event; cancellation stops the run early
// and returns ctx.Err() alongside whatever records have already completed.
func (s *Simulator) Run(ctx context.Context) ([]Record, error) {
	for {
		select {
		case <-ctx.Done():
			return s.records, ctx.Err()
		default:
		}

		e, ok := s.schedule.pop()
		if !ok {
			break
		}
		if e.time.After(s.timeout) {
			break
		}
		if e.time < s.curTime {
			// The schedule must never yield an event earlier than cur_time
			// (spec.md §3, I8); a violation is an internal bug.
			panic("fctsim: schedule returned an event before cur_time")
		}
		s.curTime = e.time
		s.metrics.dispatched(s.curTime)

		for _, ev := range s.dispatch(e.cmd) {
			s.schedule.push(ev.time, ev.cmd)
		}
	}
	return s.records, nil
}

// dispatch routes one command to its target component and returns the
// events it produced.
func (s *Simulator) dispatch(cmd Command) []event {
	switch c := cmd.(type) {
	case WorkloadStepCmd:
		s.log.Eventf(int64(s.curTime), "workload", "step")
		return s.workload.step(s.curTime)

	case SourceTrySendCmd:
		src := s.mustSource(c.SourceID)
		s.log.Eventf(int64(s.curTime), "source", "try_send source=%d version=%d", c.SourceID, c.Version)
		return src.trySend(c.Version, s.curTime)

	case SourceRcvAckCmd:
		src := s.mustSource(c.SourceID)
		s.log.Eventf(int64(s.curTime), "source", "rcv_ack source=%d flow=%d marked=%t", c.SourceID, c.FlowID, c.Ack.Marked)
		return src.rcvAck(c.FlowID, c.Ack, s.curTime)

	case SourceFlowArriveCmd:
		src := s.mustSource(c.SourceID)
		s.log.Eventf(int64(s.curTime), "source", "flow_arrive source=%d flow=%d", c.SourceID, c.Desc.ID)
		return src.flowArrive(c.Desc, s.curTime)

	case SourceFlowDepartCmd:
		src := s.mustSource(c.SourceID)
		rec, ok := src.flowDepart(c.FlowID, s.curTime)
		if !ok {
			panic("fctsim: flow_depart for a flow never admitted")
		}
		rec.RunID = s.runID
		s.records = append(s.records, rec)
		s.metrics.recorded()
		s.log.Eventf(int64(s.curTime), "source", "flow_depart source=%d flow=%d fct_ns=%d", c.SourceID, c.FlowID, rec.FCT)
		return nil

	case BottleneckReceiveCmd:
		s.log.Eventf(int64(s.curTime), "bottleneck", "receive flow=%d size=%d", c.Packet.FlowID, c.Packet.Size)
		evs := s.bottleneck.receive(c.Packet, s.curTime)
		s.reportOccupancy()
		return evs

	case BottleneckStepCmd:
		s.log.Eventf(int64(s.curTime), "bottleneck", "step")
		evs := s.bottleneck.step(s.curTime)
		s.reportOccupancy()
		return evs

	default:
		panic("fctsim: unknown command type")
	}
}

func (s *Simulator) mustSource(id SourceID) *Source {
	src, ok := s.sources[id]
	if !ok {
		panic("fctsim: command references unknown source_id")
	}
	return src
}

func (s *Simulator) reportOccupancy() {
	for i := range s.bottleneck.queues {
		s.metrics.queueOccupied(QIndex(i), s.bottleneck.queueOccupancy(QIndex(i)))
	}
}
