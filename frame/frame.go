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
Package frame implements the per-Lisp-invocation state machine: a node
on the virtual Lisp stack tracking argument/body/finish transitions and
owning a private set of internal breakpoints inside the evaluator.

Frame has four variants — Eval, Lambda, Subr, Primitive — modelled as a
single sum type sharing a common base (the shared args/bodies/disabled/
start/finish/command state) with variant-specific state layered on top,
per the "Polymorphic Frame" design.
*/
package frame

import (
	"fmt"

	"devt.de/krotik/common/errorutil"

	"devt.de/krotik/lispnav/hostdbg"
)

/*
Command is a navigation verb, totally ordered by inclusivity: STEP
stops at more sites than NEXT, which stops at more than UP.
*/
type Command int

/*
Navigation commands, lowest value stops at the most sites.
*/
const (
	Step Command = iota + 1
	Next
	Up
)

func (c Command) String() string {
	switch c {
	case Step:
		return "STEP"
	case Next:
		return "NEXT"
	case Up:
		return "UP"
	}
	return "?"
}

/*
Kind is the closed set of Frame variants.
*/
type Kind int

/*
Frame variants.
*/
const (
	KindEval Kind = iota
	KindLambda
	KindSubr
	KindPrimitive
)

func (k Kind) String() string {
	switch k {
	case KindEval:
		return "Eval"
	case KindLambda:
		return "Lambda"
	case KindSubr:
		return "Subr"
	case KindPrimitive:
		return "Primitive"
	}
	return "?"
}

/*
TypeTag records why a Frame came to exist.
*/
type TypeTag int

/*
Frame origin tags.
*/
const (
	TagArg TypeTag = iota
	TagBody
	TagBreakpoint
	TagUnknown
)

func (t TypeTag) String() string {
	switch t {
	case TagArg:
		return "ARG"
	case TagBody:
		return "BODY"
	case TagBreakpoint:
		return "BREAKPOINT"
	case TagUnknown:
		return "UNKNOWN"
	}
	return "?"
}

/*
State is a Frame's current position in its own state machine.
*/
type State int

/*
Frame states.
*/
const (
	StateEntry State = iota
	StateArg
	StateBody
	StateEnd
	StateUnknown
)

func (s State) String() string {
	switch s {
	case StateEntry:
		return "ENTRY"
	case StateArg:
		return "ARG"
	case StateBody:
		return "BODY"
	case StateEnd:
		return "END"
	case StateUnknown:
		return "UNKNOWN"
	}
	return "?"
}

/*
ExprClass is the lazily-latched expression shape a Frame infers from
the first argument or body site that fires.
*/
type ExprClass int

/*
Expression-shape classes.
*/
const (
	ExprUnset ExprClass = iota
	ExprSubr
	ExprCons
)

/*
Owner is the narrow surface a Frame needs from whatever owns the
virtual Lisp stack (the Manager): pushing a child frame and popping
itself. It is a small interface, not the concrete Manager type, so this
package never imports the navigator package.
*/
type Owner interface {
	Push(f Frame)
	Pop()
}

/*
Frame is the common surface of every Lisp-invocation state machine
variant.
*/
type Frame interface {

	/*
		Kind reports which variant this Frame is.
	*/
	Kind() Kind

	/*
		TypeTag reports why this Frame came to exist.
	*/
	TypeTag() TypeTag

	/*
		State reports this Frame's current position.
	*/
	State() State

	/*
		Command reports the navigation verb currently in effect.
	*/
	Command() Command

	/*
		Start returns this Frame's start breakpoint, or nil if this
		Frame was constructed already inside its function.
	*/
	Start() hostdbg.Breakpoint

	/*
		Finish returns this Frame's finish breakpoint, or nil before
		Start has fired.
	*/
	Finish() hostdbg.FinishBreakpoint

	/*
		CaresAbout reports whether bp is this Frame's start, finish,
		or a currently-enabled internal breakpoint.
	*/
	CaresAbout(bp hostdbg.Breakpoint) bool

	/*
		LookingFor returns the set of breakpoints this Frame will
		actually stop at (rather than silently resume past), derived
		from its current Command.
	*/
	LookingFor() map[hostdbg.Breakpoint]struct{}

	/*
		Hit processes bp firing while this Frame is the target
		consumer (per CaresAbout). It transitions state, optionally
		pushes a child frame, and resumes the inferior unless the hit
		is one this Frame's current command is looking for. A start
		hit enters the frame and leaves the inferior stopped.
	*/
	Hit(bp hostdbg.Breakpoint)

	/*
		Step sets the navigation command to STEP and resumes.
	*/
	Step()

	/*
		Next sets the navigation command to NEXT and resumes.
	*/
	Next()

	/*
		Up sets the navigation command to UP and resumes.
	*/
	Up()

	/*
		Cont continues past this Frame entirely (equivalent to Up,
		except for a Primitive in guts mode, where it re-arms the
		internal breakpoints and resumes STEP semantics instead).
	*/
	Cont()

	/*
		Guts reports whether this Frame is a Primitive currently in
		guts mode (internal breakpoints suppressed so the user can
		drive the raw C implementation with native debugger
		commands). Every other variant always reports false.
	*/
	Guts() bool

	/*
		Underlying returns the real inferior frame this Frame is
		currently attached to (nil before a deferred start fires).
		The Manager uses this to decide, during rebuild, whether the
		virtual stack's top frame already matches the inferior stack.
	*/
	Underlying() hostdbg.InferiorFrame

	/*
		Disarm disables every currently-enabled internal breakpoint on
		this Frame, recording them so Rearm restores exactly this set.
		The Manager calls this on the previous top when pushing a
		sibling frame that did not arrive via this Frame's own
		step-in (a user breakpoint or a recovery frame firing while
		this Frame was still active).
	*/
	Disarm()

	/*
		Rearm re-enables the breakpoints the most recent Disarm call
		disabled. The Manager calls this on the new top after popping
		a frame that stepped in from it.
	*/
	Rearm()

	/*
		Teardown deletes every breakpoint this Frame still owns
		(start, finish, args, bodies) without popping itself from the
		owner's stack. Used for whole-session cleanup, where the
		Manager discards the entire virtual stack at once rather than
		unwinding it frame by frame.
	*/
	Teardown()

	fmt.Stringer
}

/*
enterer is implemented by every concrete variant: the hook base calls
exactly once, either at construction (already inside the function) or
when Start fires (entering from outside).
*/
type enterer interface {
	enterFrame()
}

/*
stepper is implemented by every concrete variant: the step-in actions
for an ARG or BODY hit, which are entirely variant-specific.
*/
type stepper interface {
	doArg(bp hostdbg.Breakpoint, stepIn bool)
	doBody(bp hostdbg.Breakpoint, stepIn bool)
}

/*
base holds the state shared by every Frame variant.
*/
type base struct {
	self enterer

	owner Owner
	host  hostdbg.Host

	kind    Kind
	typeTag TypeTag
	state   State
	command Command

	start  hostdbg.Breakpoint
	finish hostdbg.FinishBreakpoint

	underlying hostdbg.InferiorFrame

	args     map[hostdbg.Breakpoint]struct{}
	bodies   map[hostdbg.Breakpoint]struct{}
	disabled map[hostdbg.Breakpoint]struct{}

	exprClass ExprClass
}

/*
newBase constructs the shared state for a Frame variant. If start is
non-nil, the caller is expected to build its args/bodies sets and then
call disableAll before returning; the Frame only becomes live when
Start fires. If start is nil, the caller should finish construction by
invoking variant.enterFrame() itself (the frame is already inside its
function).
*/
func newBase(owner Owner, host hostdbg.Host, kind Kind, typeTag TypeTag, start hostdbg.Breakpoint) *base {
	b := &base{
		owner:    owner,
		host:     host,
		kind:     kind,
		typeTag:  typeTag,
		command:  Step,
		start:    start,
		args:     make(map[hostdbg.Breakpoint]struct{}),
		bodies:   make(map[hostdbg.Breakpoint]struct{}),
		disabled: make(map[hostdbg.Breakpoint]struct{}),
	}

	if typeTag == TagUnknown {
		b.state = StateUnknown
	} else {
		b.state = StateEntry
	}

	if start == nil {
		b.underlying = host.NewestFrame()
		b.finish = host.FinishBreakAt(b.underlying)
	}

	return b
}

func (b *base) Kind() Kind                        { return b.kind }
func (b *base) TypeTag() TypeTag                  { return b.typeTag }
func (b *base) State() State                      { return b.state }
func (b *base) Command() Command                  { return b.command }
func (b *base) Start() hostdbg.Breakpoint         { return b.start }
func (b *base) Finish() hostdbg.FinishBreakpoint  { return b.finish }
func (b *base) Underlying() hostdbg.InferiorFrame { return b.underlying }

/*
enabled returns the currently-armed subset of args ∪ bodies.
*/
func (b *base) enabled() map[hostdbg.Breakpoint]struct{} {
	en := make(map[hostdbg.Breakpoint]struct{})
	for bp := range b.args {
		if _, off := b.disabled[bp]; !off {
			en[bp] = struct{}{}
		}
	}
	for bp := range b.bodies {
		if _, off := b.disabled[bp]; !off {
			en[bp] = struct{}{}
		}
	}
	return en
}

func (b *base) CaresAbout(bp hostdbg.Breakpoint) bool {
	if bp == b.start {
		return true
	}
	if b.finish != nil && bp == hostdbg.Breakpoint(b.finish) {
		return true
	}
	_, ok := b.enabled()[bp]
	return ok
}

func (b *base) LookingFor() map[hostdbg.Breakpoint]struct{} {
	lf := make(map[hostdbg.Breakpoint]struct{})

	if b.finish != nil {
		lf[hostdbg.Breakpoint(b.finish)] = struct{}{}
	}

	if b.command <= Next {
		for bp := range b.bodies {
			lf[bp] = struct{}{}
		}
	}

	if b.command <= Step {
		for bp := range b.args {
			lf[bp] = struct{}{}
		}
	}

	return lf
}

/*
disableAll disables every currently-enabled internal breakpoint,
recording them so enableAll can restore exactly this set later.
*/
func (b *base) disableAll() {
	for bp := range b.enabled() {
		bp.Disable()
		b.disabled[bp] = struct{}{}
	}
}

/*
enableAll re-arms every breakpoint disableAll most recently disabled.
*/
func (b *base) enableAll() {
	for bp := range b.disabled {
		bp.Enable()
	}
	b.disabled = make(map[hostdbg.Breakpoint]struct{})
}

/*
Disarm is the exported form of disableAll, used by the Manager to
suspend a frame it did not itself step in from.
*/
func (b *base) Disarm() { b.disableAll() }

/*
Rearm is the exported form of enableAll, used by the Manager to
restore a frame's internal breakpoints once the frame above it pops.
*/
func (b *base) Rearm() { b.enableAll() }

/*
setExprClass lazily latches the expression shape on first arg/body
hit; later hits are no-ops.
*/
func (b *base) setExprClass(c ExprClass) {
	if b.exprClass == ExprUnset {
		b.exprClass = c
	}
}

func (b *base) Step() { b.command = Step; b.host.Resume() }
func (b *base) Next() { b.command = Next; b.host.Resume() }
func (b *base) Up()   { b.command = Up; b.host.Resume() }
func (b *base) Cont() { b.Up() }

/*
Guts always reports false; only PrimitiveFrame overrides this.
*/
func (b *base) Guts() bool { return false }

/*
doStart is the shared reaction to the start breakpoint firing: clear
start, install finish on the now-current frame, re-arm whatever was
disabled at construction, then let the variant build whatever it could
not build until entry (and, for variants like a compiled Lambda, disarm
what entry reveals was never reachable after all).
*/
func (b *base) doStart() {
	b.start = nil
	b.underlying = b.host.NewestFrame()
	b.finish = b.host.FinishBreakAt(b.underlying)
	b.enableAll()
	b.self.enterFrame()
	b.state = StateEntry
}

/*
doFinish is the shared reaction to the finish breakpoint firing:
delete every owned breakpoint still installed and pop this Frame.
*/
func (b *base) doFinish() {
	b.state = StateEnd
	b.Teardown()
	b.owner.Pop()
}

/*
Teardown deletes every breakpoint this Frame still owns without
touching the owner's stack; doFinish additionally pops the Frame
once this has run.
*/
func (b *base) Teardown() {
	if b.start != nil && b.start.Valid() {
		b.start.Delete()
	}
	for bp := range b.args {
		if bp.Valid() {
			bp.Delete()
		}
	}
	for bp := range b.bodies {
		if bp.Valid() {
			bp.Delete()
		}
	}
	if b.finish != nil && b.finish.Valid() {
		b.finish.Delete()
	}
}

/*
stepIn disables this Frame's internal breakpoints (the parent must not
keep firing while a child frame is active) and pushes the child onto
the owner's stack.
*/
func (b *base) stepIn(child Frame) {
	b.disableAll()
	b.owner.Push(child)
}

/*
Hit dispatches a firing breakpoint to the right transition. It panics
via errorutil.AssertTrue if bp is not one this Frame cares about —
the Manager is responsible for only ever routing a cared-about
breakpoint here.
*/
func hit(f Frame, b *base, bp hostdbg.Breakpoint, s stepper) {
	errorutil.AssertTrue(f.CaresAbout(bp), "frame.Hit called with an unrelated breakpoint")

	if bp == b.start {
		b.doStart()
		return
	}

	_, stepIn := b.LookingFor()[bp]

	if _, isArg := b.args[bp]; isArg {
		b.state = StateArg
		s.doArg(bp, stepIn)
	} else if _, isBody := b.bodies[bp]; isBody {
		b.state = StateBody
		s.doBody(bp, stepIn)
	} else if b.finish != nil && bp == hostdbg.Breakpoint(b.finish) {
		b.doFinish()
		return
	}

	if !stepIn {
		b.host.Resume()
	}
}
