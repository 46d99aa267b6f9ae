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
Package fakehost is an in-memory double for hostdbg.Host, backed by
lispval/simval, used to drive navigation-engine tests without a real
inferior process. A test pushes and pops synthetic native frames and
fires synthetic stop events; the engine under test never knows the
difference from a real host debugger.
*/
package fakehost

import (
	"fmt"

	"devt.de/krotik/lispnav/hostdbg"
	"devt.de/krotik/lispnav/lispval"
)

/*
Frame is a synthetic native call-stack frame.
*/
type Frame struct {
	name  string
	vars  map[string]lispval.Value
	older *Frame
	newer *Frame
}

func (f *Frame) Name() string { return f.name }

func (f *Frame) Older() hostdbg.InferiorFrame {
	if f.older == nil {
		return nil
	}
	return f.older
}

func (f *Frame) Newer() hostdbg.InferiorFrame {
	if f.newer == nil {
		return nil
	}
	return f.newer
}

func (f *Frame) ReadVar(name string) (lispval.Value, error) {
	v, ok := f.vars[name]
	if !ok {
		return nil, fmt.Errorf("no such variable: %s", name)
	}
	return v, nil
}

/*
breakpoint is the concrete Breakpoint/FinishBreakpoint double.
*/
type breakpoint struct {
	id        string
	location  string
	enabled   bool
	deleted   bool
	temporary bool
	pred      hostdbg.StopPredicate

	// finish-breakpoint state
	isFinish    bool
	frame       *Frame
	returnValue lispval.Value
	fired       bool
}

func (b *breakpoint) ID() string       { return b.id }
func (b *breakpoint) Location() string { return b.location }

func (b *breakpoint) SetStopPredicate(pred hostdbg.StopPredicate) { b.pred = pred }

func (b *breakpoint) Enable()  { b.enabled = true }
func (b *breakpoint) Disable() { b.enabled = false }

func (b *breakpoint) Enabled() bool { return b.enabled }

func (b *breakpoint) Delete() { b.deleted = true }

func (b *breakpoint) Valid() bool {
	if b.deleted {
		return false
	}
	if b.isFinish {
		return !b.fired
	}
	if b.temporary {
		return !b.fired
	}
	return true
}

func (b *breakpoint) ReturnValue() lispval.Value { return b.returnValue }

/*
Host is the fake host debugger. Zero value is not usable; use New().
*/
type Host struct {
	newest *Frame

	breakpoints []*breakpoint
	finishByPtr map[*Frame][]*breakpoint

	subscribers map[int]func(hostdbg.StopEvent)
	nextSub     int
	nextBPID    int

	filters map[string]func([]hostdbg.InferiorFrame) []hostdbg.InferiorFrame

	symbols map[string]lispval.Value
	exprs   map[string]lispval.Value

	resumed int
}

/*
New returns an empty fake host with no frames and no breakpoints.
*/
func New() *Host {
	return &Host{
		finishByPtr: make(map[*Frame][]*breakpoint),
		subscribers: make(map[int]func(hostdbg.StopEvent)),
		filters:     make(map[string]func([]hostdbg.InferiorFrame) []hostdbg.InferiorFrame),
		symbols:     make(map[string]lispval.Value),
		exprs:       make(map[string]lispval.Value),
	}
}

// Host-surface methods (hostdbg.Host)
// ====================================

func (h *Host) NewestFrame() hostdbg.InferiorFrame {
	if h.newest == nil {
		return nil
	}
	return h.newest
}

func (h *Host) newBreakpoint(location string, temporary bool) *breakpoint {
	h.nextBPID++
	bp := &breakpoint{
		id:        fmt.Sprintf("bp%d", h.nextBPID),
		location:  location,
		enabled:   true,
		temporary: temporary,
	}
	h.breakpoints = append(h.breakpoints, bp)
	return bp
}

func (h *Host) BreakAt(location string) hostdbg.Breakpoint {
	return h.newBreakpoint(location, false)
}

func (h *Host) TempBreakAt(location string) hostdbg.Breakpoint {
	return h.newBreakpoint(location, true)
}

func (h *Host) FinishBreakAt(frame hostdbg.InferiorFrame) hostdbg.FinishBreakpoint {
	f, ok := frame.(*Frame)
	if !ok {
		panic("fakehost: FinishBreakAt called with a frame not owned by this host")
	}

	h.nextBPID++
	bp := &breakpoint{
		id:       fmt.Sprintf("bp%d", h.nextBPID),
		location: fmt.Sprintf("finish@%s", f.name),
		enabled:  true,
		isFinish: true,
		frame:    f,
	}
	h.breakpoints = append(h.breakpoints, bp)
	h.finishByPtr[f] = append(h.finishByPtr[f], bp)
	return bp
}

func (h *Host) Resume() { h.resumed++ }

func (h *Host) Subscribe(fn func(hostdbg.StopEvent)) int {
	h.nextSub++
	h.subscribers[h.nextSub] = fn
	return h.nextSub
}

func (h *Host) Unsubscribe(token int) { delete(h.subscribers, token) }

func (h *Host) RegisterFrameFilter(name string, priority int, filter func([]hostdbg.InferiorFrame) []hostdbg.InferiorFrame) {
	h.filters[name] = filter
}

func (h *Host) LookupSymbol(name string) (lispval.Value, error) {
	v, ok := h.symbols[name]
	if !ok {
		return nil, fmt.Errorf("no such symbol: %s", name)
	}
	return v, nil
}

func (h *Host) EvalExpr(expr string) (lispval.Value, error) {
	v, ok := h.exprs[expr]
	if !ok {
		return nil, fmt.Errorf("cannot evaluate expression: %s", expr)
	}
	return v, nil
}

// Test-driving methods (not part of hostdbg.Host)
// =================================================

/*
SetSymbol pre-seeds a symbol the host will resolve for LookupSymbol.
*/
func (h *Host) SetSymbol(name string, v lispval.Value) { h.symbols[name] = v }

/*
SetExpr pre-seeds an expression the host will resolve for EvalExpr.
*/
func (h *Host) SetExpr(expr string, v lispval.Value) { h.exprs[expr] = v }

/*
EnterFrame pushes a synthetic native frame representing the inferior
calling into name, with the given local variables already bound (as a
real breakpoint at a function's first executable line would see),
then fires a stop event for any enabled breakpoint located at name
whose predicate (if any) matches. It returns the pushed frame.
*/
func (h *Host) EnterFrame(name string, vars map[string]lispval.Value) *Frame {
	f := &Frame{name: name, vars: vars, older: h.newest}
	if h.newest != nil {
		h.newest.newer = f
	}
	h.newest = f

	h.fireAt(name)
	return f
}

/*
ReturnFrame pops the current innermost frame, records retVal as its
return value, and fires any FinishBreakpoint installed against it.
*/
func (h *Host) ReturnFrame(retVal lispval.Value) {
	f := h.newest
	if f == nil {
		panic("fakehost: ReturnFrame called with no frame on the stack")
	}

	h.newest = f.older
	if h.newest != nil {
		h.newest.newer = nil
	}

	var hit []hostdbg.Breakpoint
	for _, bp := range h.finishByPtr[f] {
		if !bp.Valid() || !bp.Enabled() {
			continue
		}
		bp.returnValue = retVal
		bp.fired = true
		hit = append(hit, bp)
	}

	if len(hit) > 0 {
		h.dispatch(hit)
	}
}

/*
HitLabel fires a stop event for an internal breakpoint installed at an
arbitrary label inside the currently selected frame (an argument or
body site), without altering the native call stack.
*/
func (h *Host) HitLabel(label string) {
	h.fireAt(label)
}

func (h *Host) fireAt(location string) {
	var hit []hostdbg.Breakpoint

	for _, bp := range h.breakpoints {
		if bp.location != location || !bp.Valid() || !bp.Enabled() {
			continue
		}
		if bp.pred != nil && !bp.pred(h.NewestFrame()) {
			continue
		}
		hit = append(hit, bp)
	}

	for _, bp := range hit {
		if b, ok := bp.(*breakpoint); ok && b.temporary {
			b.fired = true
		}
	}

	if len(hit) > 0 {
		h.dispatch(hit)
	}
}

func (h *Host) dispatch(hit []hostdbg.Breakpoint) {
	ev := hostdbg.StopEvent{Breakpoints: hit}
	for _, fn := range h.subscribers {
		fn(ev)
	}
}

/*
ResumedCount returns how many times Resume was called, for tests that
want to assert the engine resumed the inferior a certain number of
times.
*/
func (h *Host) ResumedCount() int { return h.resumed }

/*
AllFrames returns the full native frame chain, innermost first, for
tests asserting on backtrace shape.
*/
func (h *Host) AllFrames() []hostdbg.InferiorFrame {
	var frames []hostdbg.InferiorFrame
	for f := h.newest; f != nil; f = f.older {
		frames = append(frames, f)
	}
	return frames
}
