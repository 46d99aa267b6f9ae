/*
 * LispNav
 *
 * Copyright 2020 Matthias Ladkau. All rights reserved.
 *
 * This Source Code Form is subject to the terms of the MIT
 * License, If a copy of the MIT License was not distributed with this
 * file, You can obtain one at https://opensource.org/licenses/MIT.
 */

/*
Package navmetrics exposes Prometheus instrumentation for the
navigation engine: frame push/pop counters, a virtual-stack depth
gauge, and breakpoint hits broken down by classification category
(user / inner / recovery). This is ambient observability infrastructure
the engine's semantics never depend on, wired in as a Manager-level
hook rather than left out.
*/
package navmetrics

import "github.com/prometheus/client_golang/prometheus"

/*
Recorder is the narrow surface the navigator package needs from a
metrics backend. A Manager is constructed with one; tests and callers
that do not care about metrics use NewNullRecorder().
*/
type Recorder interface {

	/*
		FramePushed records a frame of the given kind being pushed and
		the resulting virtual-stack depth.
	*/
	FramePushed(kind string, depth int)

	/*
		FramePopped records a frame of the given kind being popped and
		the resulting virtual-stack depth.
	*/
	FramePopped(kind string, depth int)

	/*
		BreakpointHit records a stop event being classified into the
		given category: "user", "inner", or "recovery".
	*/
	BreakpointHit(category string)
}

/*
NullRecorder discards every observation. It is the default for tests
and for hosts that do not want Prometheus wired in.
*/
type NullRecorder struct{}

/*
NewNullRecorder returns a Recorder that discards every observation.
*/
func NewNullRecorder() *NullRecorder { return &NullRecorder{} }

func (NullRecorder) FramePushed(string, int) {}
func (NullRecorder) FramePopped(string, int) {}
func (NullRecorder) BreakpointHit(string)    {}

/*
PrometheusRecorder is the production Recorder, backed by
github.com/prometheus/client_golang. One instance should be shared by
every Manager in a process; registering the same collector on a
registry twice panics, so construct exactly one and pass it to every
navigator.Init call.
*/
type PrometheusRecorder struct {
	framesPushed   *prometheus.CounterVec
	framesPopped   *prometheus.CounterVec
	breakpointHits *prometheus.CounterVec
	stackDepth     prometheus.Gauge
}

/*
NewPrometheusRecorder builds a PrometheusRecorder and registers its
collectors on reg. Pass prometheus.DefaultRegisterer for the global
registry.
*/
func NewPrometheusRecorder(reg prometheus.Registerer) *PrometheusRecorder {
	r := &PrometheusRecorder{
		framesPushed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lispnav",
			Name:      "frames_pushed_total",
			Help:      "Number of virtual Lisp frames pushed, by frame kind.",
		}, []string{"kind"}),
		framesPopped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lispnav",
			Name:      "frames_popped_total",
			Help:      "Number of virtual Lisp frames popped, by frame kind.",
		}, []string{"kind"}),
		breakpointHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lispnav",
			Name:      "breakpoint_hits_total",
			Help:      "Number of stop events classified, by category (user/inner/recovery).",
		}, []string{"category"}),
		stackDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "lispnav",
			Name:      "virtual_stack_depth",
			Help:      "Current depth of the virtual Lisp call stack.",
		}),
	}

	reg.MustRegister(r.framesPushed, r.framesPopped, r.breakpointHits, r.stackDepth)

	return r
}

func (r *PrometheusRecorder) FramePushed(kind string, depth int) {
	r.framesPushed.WithLabelValues(kind).Inc()
	r.stackDepth.Set(float64(depth))
}

func (r *PrometheusRecorder) FramePopped(kind string, depth int) {
	r.framesPopped.WithLabelValues(kind).Inc()
	r.stackDepth.Set(float64(depth))
}

func (r *PrometheusRecorder) BreakpointHit(category string) {
	r.breakpointHits.WithLabelValues(category).Inc()
}
