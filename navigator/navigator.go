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
Package navigator implements the Manager: the component that owns the
virtual Lisp stack, the user breakpoint table, and the recovery path,
and arbitrates every host-debugger stop event between them.

On every stop the Manager classifies the firing breakpoints into three
disjoint categories in strict priority order — RECOVERY, then USER,
then INNER (top of the virtual stack wins ties) — and dispatches to
the right consumer. It also implements the four navigation verbs
(step/next/up/continue) by delegating to the top Frame, and rebuilds
the virtual stack when it has fallen out of sync with the real
inferior stack.
*/
package navigator

import (
	"fmt"

	"github.com/google/uuid"

	"devt.de/krotik/lispnav/breakpoint"
	"devt.de/krotik/lispnav/config"
	"devt.de/krotik/lispnav/entrypoint"
	"devt.de/krotik/lispnav/frame"
	"devt.de/krotik/lispnav/hostdbg"
	"devt.de/krotik/lispnav/navmetrics"
	"devt.de/krotik/lispnav/util"
)

/*
MsgGetIntoLispFirst is returned verbatim by every navigation verb when
the virtual stack is empty.
*/
const MsgGetIntoLispFirst = "get into lisp first!"

/*
MsgInGuts is returned by Step/Next while the top frame is a Primitive
in guts mode; up and continue still work (continue exits guts mode).
*/
const MsgInGuts = "in C mode; use regular navigation commands (or continue)"

/*
active is the single live Manager, if any. Init refuses to create a
second one; Teardown clears it. The Manager is meant to have
process-wide lifetime for the duration of one debug session, but must
be cleanly reinitialisable for the next one.
*/
var active *Manager

/*
Manager owns the virtual Lisp stack, the user breakpoint table, and
the recovery path.
*/
type Manager struct {

	/*
		ID tags this session's log lines and recovery events so a host
		process managing more than one inferior can tell sessions
		apart.
	*/
	ID uuid.UUID

	host    hostdbg.Host
	log     util.Logger
	metrics navmetrics.Recorder

	gutsPrompt func() bool

	breakpoints []*breakpoint.UserBreakpoint
	stack       []frame.Frame
	bpOwner     map[frame.Frame]*breakpoint.UserBreakpoint

	// recovery is the finish breakpoint rebuild installed as the start
	// of the eagerly-pushed UNKNOWN frame at the top of the stack. It
	// is tracked separately, ahead of USER and INNER in classification
	// priority, so a rebuild-in-progress always wins even though the
	// actual resync work it does once it fires is identical to an
	// ordinary INNER start hit.
	recovery hostdbg.Breakpoint

	subToken   int
	subscribed bool
}

/*
Init constructs a Manager, subscribes it to host's stop events, and
makes it the active instance. It returns an error if a Manager is
already active; call Teardown on the existing one first.

gutsPrompt is threaded down to every frame the Manager creates, and
from there to every Primitive frame reached by stepping in; a nil
gutsPrompt always declines guts mode. metrics may be
navmetrics.NewNullRecorder() if Prometheus instrumentation is not
wanted.
*/
func Init(host hostdbg.Host, log util.Logger, metrics navmetrics.Recorder, gutsPrompt func() bool) (*Manager, error) {
	if active != nil {
		return nil, fmt.Errorf("navigator: a Manager (session %s) is already active; call Teardown first", active.ID)
	}

	m := &Manager{
		ID:         uuid.New(),
		host:       host,
		log:        log,
		metrics:    metrics,
		gutsPrompt: gutsPrompt,
		bpOwner:    make(map[frame.Frame]*breakpoint.UserBreakpoint),
	}

	m.subToken = host.Subscribe(m.onStop)
	m.subscribed = true

	active = m
	log.LogInfo(fmt.Sprintf("navigator: session %s initialised", m.ID))

	return m, nil
}

/*
Teardown disconnects the stop subscription, deletes every breakpoint
this Manager created (user breakpoints and every frame's internal
breakpoints), and drops the virtual stack. It is safe to call more
than once.
*/
func (m *Manager) Teardown() {
	if m.subscribed {
		m.host.Unsubscribe(m.subToken)
		m.subscribed = false
	}

	for _, ub := range m.breakpoints {
		ub.Delete()
	}
	m.breakpoints = nil

	for _, f := range m.stack {
		f.Teardown()
	}
	m.stack = nil
	m.bpOwner = make(map[frame.Frame]*breakpoint.UserBreakpoint)

	m.recovery = nil

	if active == m {
		active = nil
	}

	m.log.LogInfo(fmt.Sprintf("navigator: session %s torn down", m.ID))
}

// Breakpoint table
// ================

/*
Break installs a user breakpoint on name, or returns the existing one
if name was already broken on (breakpoint.ForName is itself not
idempotent; Break is what gives the Manager's table dedup-by-name
semantics).
*/
func (m *Manager) Break(name string) *breakpoint.UserBreakpoint {
	for _, ub := range m.breakpoints {
		if ub.Name == name {
			return ub
		}
	}

	ub := breakpoint.ForName(m.host, name)
	m.breakpoints = append(m.breakpoints, ub)

	return ub
}

/*
RemoveBreak deletes and forgets the user breakpoint on name. It
reports false if no such breakpoint exists.
*/
func (m *Manager) RemoveBreak(name string) bool {
	for i, ub := range m.breakpoints {
		if ub.Name == name {
			ub.Delete()
			m.breakpoints = append(m.breakpoints[:i], m.breakpoints[i+1:]...)
			return true
		}
	}
	return false
}

/*
DisableBreak arms-off the user breakpoint on name without deleting it.
*/
func (m *Manager) DisableBreak(name string) bool {
	for _, ub := range m.breakpoints {
		if ub.Name == name {
			ub.Disable()
			return true
		}
	}
	return false
}

/*
EnableBreak re-arms a previously disabled user breakpoint on name.
*/
func (m *Manager) EnableBreak(name string) bool {
	for _, ub := range m.breakpoints {
		if ub.Name == name {
			ub.Enable()
			return true
		}
	}
	return false
}

/*
Breakpoints returns a snapshot of the user breakpoint table, for
listing surfaces.
*/
func (m *Manager) Breakpoints() []*breakpoint.UserBreakpoint {
	out := make([]*breakpoint.UserBreakpoint, len(m.breakpoints))
	copy(out, m.breakpoints)
	return out
}

func (m *Manager) anyBreakpointEnabled() bool {
	for _, ub := range m.breakpoints {
		if ub.Eval.Enabled() || ub.Subr.Enabled() {
			return true
		}
	}
	return false
}

// Virtual stack inspection
// ========================

/*
Stack returns a snapshot of the virtual Lisp stack, bottom frame
first. Callers that want most-recent-first order (a `backtrace` with
no argument) should iterate it in reverse.
*/
func (m *Manager) Stack() []frame.Frame {
	out := make([]frame.Frame, len(m.stack))
	copy(out, m.stack)
	return out
}

func (m *Manager) empty() bool { return len(m.stack) == 0 }

func (m *Manager) top() frame.Frame { return m.stack[len(m.stack)-1] }

func (m *Manager) inGuts() bool {
	return !m.empty() && m.top().Kind() == frame.KindPrimitive && m.top().Guts()
}

// Owner (frame.Owner) implementation
// ===================================

/*
Push installs f as the new top of the virtual stack, disarming the
previous top's internal breakpoints first — a frame pushed directly by
the Manager, such as a user breakpoint or a recovery frame, did not
already disarm its predecessor the way frame.stepIn does for a
step-in child.
*/
func (m *Manager) Push(f frame.Frame) {
	if !m.empty() {
		m.top().Disarm()
	}

	m.stack = append(m.stack, f)
	m.metrics.FramePushed(f.Kind().String(), len(m.stack))
}

/*
Pop removes the top of the virtual stack. If the popped frame was the
origin of a user breakpoint, that breakpoint is re-armed (so a second,
independent call of the same Lisp function will stop again). If the
popped frame was BREAKPOINT- or UNKNOWN-tagged, or the stack is now
empty (unless config.RebuildOnEmptyPop is off), the Manager rebuilds to
resynchronise with the real inferior stack; otherwise the new top's
internal breakpoints are rearmed.
*/
func (m *Manager) Pop() {
	if m.empty() {
		return
	}

	popped := m.stack[len(m.stack)-1]
	m.stack = m.stack[:len(m.stack)-1]
	m.metrics.FramePopped(popped.Kind().String(), len(m.stack))

	if ub, ok := m.bpOwner[popped]; ok {
		ub.Enable()
		delete(m.bpOwner, popped)
	}

	tag := popped.TypeTag()
	if tag == frame.TagBreakpoint || tag == frame.TagUnknown ||
		(m.empty() && config.Bool(config.RebuildOnEmptyPop)) {
		m.rebuild()
		return
	}

	if !m.empty() {
		m.top().Rearm()
	}
}

// Stop event classification and dispatch
// =======================================

func (m *Manager) onStop(ev hostdbg.StopEvent) {
	if m.recovery != nil {
		for _, bp := range ev.Breakpoints {
			if bp == m.recovery {
				m.metrics.BreakpointHit("recovery")
				m.recovery = nil
				// The eagerly-pushed UNKNOWN frame is already on top
				// of the stack with bp as its start; routing the hit
				// through the ordinary Frame.Hit path runs exactly
				// the doStart() transition rebuild needs.
				m.top().Hit(bp)
				return
			}
		}
	}

	for _, ub := range m.breakpoints {
		for _, bp := range ev.Breakpoints {
			if ub.Has(bp) {
				m.metrics.BreakpointHit("user")
				m.handleUserHit(ub, bp)
				return
			}
		}
	}

	for i := len(m.stack) - 1; i >= 0; i-- {
		f := m.stack[i]
		for _, bp := range ev.Breakpoints {
			if f.CaresAbout(bp) {
				m.metrics.BreakpointHit("inner")
				f.Hit(bp)
				return
			}
		}
	}

	locs := make([]string, len(ev.Breakpoints))
	for i, bp := range ev.Breakpoints {
		locs[i] = bp.Location()
	}
	m.reportError(util.ErrUnexpectedStop,
		fmt.Sprintf("stop event matched no known breakpoint (%d breakpoints fired)", len(ev.Breakpoints)), locs)

	if !config.Bool(config.BreakOnError) {
		m.host.Resume()
	}
}

/*
reportError logs an engine error with the current virtual stack
attached as its trace (most recent frame first) and a snapshot of the
Manager's state at the time of the error. data carries whatever the
call site observed going wrong (e.g. the firing breakpoint locations
of an unattributable stop).
*/
func (m *Manager) reportError(t error, detail string, data interface{}) {
	re := util.NewRuntimeError(t, detail).(*util.RuntimeError)
	for i := len(m.stack) - 1; i >= 0; i-- {
		re.AddTrace(m.stack[i].String())
	}

	m.log.LogError(&util.RuntimeErrorWithDetail{
		RuntimeError: re,
		Snapshot: map[string]interface{}{
			"session":         m.ID.String(),
			"stackDepth":      len(m.stack),
			"breakpoints":     len(m.breakpoints),
			"recoveryPending": m.recovery != nil,
		},
		Data: data,
	})
}

/*
handleUserHit reacts to a user breakpoint firing: disable it (so a
nested call of the same function does not re-trigger while the outer
call is being inspected) and push a BREAKPOINT frame of the matching
variant with no start, since we are already inside the function.
*/
func (m *Manager) handleUserHit(ub *breakpoint.UserBreakpoint, bp hostdbg.Breakpoint) {
	ub.Disable()

	kind := ub.VariantForHit(bp)
	f := newFrameForKind(kind, m, m.host, frame.TagBreakpoint, nil, m.gutsPrompt)
	m.bpOwner[f] = ub

	m.Push(f)
}

/*
rebuild walks the real inferior stack outward from the current
position until it finds a recognised entry point, and resynchronises
the virtual stack to it by eagerly pushing an UNKNOWN frame with a
recovery finish breakpoint as its deferred start, then resuming the
inferior so that recovery can fire. If the virtual stack's top already
matches, there is nothing to do; if no recognised frame exists further
out, there is no Lisp context left to recover.
*/
func (m *Manager) rebuild() {
	cur := m.host.NewestFrame()
	if cur == nil {
		m.log.LogInfo("navigator: rebuild found no selected inferior frame")
		return
	}

	var discovered hostdbg.InferiorFrame
	for walker := cur; ; {
		older := walker.Older()
		if older == nil {
			break
		}
		if entrypoint.IsRecognised(older.Name()) {
			discovered = older
			break
		}
		walker = older
	}

	if discovered == nil {
		m.log.LogInfo("navigator: rebuild found no recognised Lisp frame outward of the current position")
		return
	}

	if !m.empty() && m.top().Underlying() == discovered {
		return
	}

	oneNearer := discovered.Newer()
	if oneNearer == nil {
		m.reportError(util.ErrOutOfSync,
			"navigator: rebuild found a recognised frame with no nearer frame to finish on",
			discovered.Name())
		return
	}

	kind, _ := entrypoint.VariantFor(discovered.Name())

	fin := m.host.FinishBreakAt(oneNearer)
	m.recovery = hostdbg.Breakpoint(fin)

	m.Push(newFrameForKind(kind, m, m.host, frame.TagUnknown, hostdbg.Breakpoint(fin), m.gutsPrompt))
	m.host.Resume()
}

func newFrameForKind(kind entrypoint.FrameKind, owner frame.Owner, host hostdbg.Host, tag frame.TypeTag, start hostdbg.Breakpoint, gutsPrompt func() bool) frame.Frame {
	switch kind {
	case entrypoint.KindEval:
		return frame.NewEvalFrame(owner, host, tag, start, gutsPrompt)
	case entrypoint.KindLambda:
		return frame.NewLambdaFrame(owner, host, tag, start, gutsPrompt)
	case entrypoint.KindSubr:
		return frame.NewSubrFrame(owner, host, tag, start, gutsPrompt)
	}
	panic(fmt.Sprintf("navigator: unrecognised entrypoint.FrameKind %v", kind))
}

// Navigation verbs
// ================

/*
Step makes the top frame stop at every argument, body, and finish
site. Rejected with MsgGetIntoLispFirst on an empty stack, or
MsgInGuts while the top Primitive frame is in guts mode.
*/
func (m *Manager) Step() error {
	if m.empty() {
		return util.NewRuntimeError(util.ErrInvalidEntry, MsgGetIntoLispFirst)
	}
	if m.inGuts() {
		return util.NewRuntimeError(util.ErrInvalidEntry, MsgInGuts)
	}
	m.top().Step()
	return nil
}

/*
Next makes the top frame skip argument-side stops, stopping only at
body and finish sites. Same rejections as Step.
*/
func (m *Manager) Next() error {
	if m.empty() {
		return util.NewRuntimeError(util.ErrInvalidEntry, MsgGetIntoLispFirst)
	}
	if m.inGuts() {
		return util.NewRuntimeError(util.ErrInvalidEntry, MsgInGuts)
	}
	m.top().Next()
	return nil
}

/*
Up makes the top frame run until its Lisp call returns. Unlike
Step/Next this works even while in guts mode (it is how the user
leaves a primitive without re-arming its internal breakpoints).
*/
func (m *Manager) Up() error {
	if m.empty() {
		return util.NewRuntimeError(util.ErrInvalidEntry, MsgGetIntoLispFirst)
	}
	m.top().Up()
	return nil
}

/*
Continue resumes execution past the top frame entirely. On an empty
stack it still succeeds — resuming the raw inferior — as long as some
user breakpoint is armed or a recovery is pending; otherwise there is
nothing left that could ever stop the inferior again, and it is
rejected with MsgGetIntoLispFirst. In guts mode, Continue is what exits
guts mode (see frame.PrimitiveFrame.Cont).
*/
func (m *Manager) Continue() error {
	if m.empty() {
		if m.anyBreakpointEnabled() || m.recovery != nil {
			m.host.Resume()
			return nil
		}
		return util.NewRuntimeError(util.ErrInvalidEntry, MsgGetIntoLispFirst)
	}
	m.top().Cont()
	return nil
}
