// SPDX-License-Identifier: GPL-3.0
// Copyright 2024 Pete Heist

// Package simlog provides the structured per-event diagnostic logger used
// throughout the simulator.
package simlog

import (
	"github.com/sirupsen/logrus"
)

// Logger wraps a logrus.Logger with the simulator's per-event call shape.
type Logger struct {
	l *logrus.Logger
}

// New returns a Logger writing structured, leveled output.
func New() *Logger {
	l := logrus.New()
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: false})
	return &Logger{l: l}
}

// SetLevel sets the minimum logged level (e.g. logrus.DebugLevel).
func (g *Logger) SetLevel(level logrus.Level) {
	g.l.SetLevel(level)
}

// Eventf logs one dispatched event at debug level, tagged with the
// simulated time it fired at and the component that handled it. This
// mirrors the teacher's logf(now, id, format, args...) call shape. A nil
// *Logger is valid and logs nothing, so instrumentation stays opt-in.
func (g *Logger) Eventf(now int64, component string, format string, args ...any) {
	if g == nil {
		return
	}
	g.l.WithFields(logrus.Fields{
		"time_ns":   now,
		"component": component,
	}).Debugf(format, args...)
}

// Errorf logs a non-fatal diagnostic at error level.
func (g *Logger) Errorf(format string, args ...any) {
	if g == nil {
		return
	}
	g.l.Errorf(format, args...)
}
