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
Package hostdbg declares the narrow surface the navigation engine
consumes from a native machine-code host debugger: location
breakpoints with stop predicates, finish-on-return breakpoints, frame
navigation and variable reads, symbol lookup, expression evaluation,
stop-event subscription, and frame-filter registration.

The engine never imports a concrete debugger implementation; it only
ever sees these interfaces. This keeps the engine testable against an
in-memory double (hostdbg/fakehost) and portable to any host debugger
that can implement this surface, the same way the Lisp value adapter
(lispval) is the engine's only view of inferior memory.

Shaped after a breakpoint/process/stack abstraction used by a
source-level Go debugger (an external point of reference, not a
dependency of this module): a Breakpoint carries a location and an
optional stop predicate, independent of how the underlying process
implements single-stepping.
*/
package hostdbg

import "devt.de/krotik/lispnav/lispval"

/*
StopPredicate decides whether a Breakpoint hit should actually stop
execution. It is evaluated by the host debugger at the moment the
location is reached, with the newest inferior frame already selected.
*/
type StopPredicate func(frame InferiorFrame) bool

/*
Breakpoint is a location breakpoint (by function name or raw address)
with an overridable stop predicate.
*/
type Breakpoint interface {

	/*
		ID returns a host-assigned identifier stable for the lifetime
		of this breakpoint.
	*/
	ID() string

	/*
		Location returns the function name or address this breakpoint
		was installed at.
	*/
	Location() string

	/*
		SetStopPredicate overrides the condition under which a hit on
		this breakpoint actually stops the inferior.
	*/
	SetStopPredicate(pred StopPredicate)

	/*
		Enable arms this breakpoint.
	*/
	Enable()

	/*
		Disable arms-off this breakpoint without deleting it.
	*/
	Disable()

	/*
		Enabled reports whether this breakpoint currently fires.
	*/
	Enabled() bool

	/*
		Delete removes this breakpoint from the host debugger. Only a
		breakpoint the engine created may be deleted by the engine.
	*/
	Delete()

	/*
		Valid reports whether this breakpoint is still installed (not
		yet deleted, and not a temporary breakpoint that already
		fired).
	*/
	Valid() bool
}

/*
FinishBreakpoint fires once, when the inferior frame it was created
against returns, and then exposes the function's decoded return value.
*/
type FinishBreakpoint interface {
	Breakpoint

	/*
		ReturnValue is only meaningful after this breakpoint has
		fired.
	*/
	ReturnValue() lispval.Value
}

/*
InferiorFrame is a single frame of the real (native) call stack.
*/
type InferiorFrame interface {

	/*
		Name returns the frame's function name.
	*/
	Name() string

	/*
		Older returns the next frame out (caller), or nil at the
		outermost frame.
	*/
	Older() InferiorFrame

	/*
		Newer returns the next frame in (callee), or nil at the
		innermost frame.
	*/
	Newer() InferiorFrame

	/*
		ReadVar reads a named local variable in this frame's scope,
		decoded as a Lisp value.
	*/
	ReadVar(name string) (lispval.Value, error)
}

/*
SymbolLookup resolves a named symbol in the inferior's symbol table,
independent of any particular stack frame.
*/
type SymbolLookup interface {
	LookupSymbol(name string) (lispval.Value, error)
}

/*
ExprEvaluator evaluates a parsed expression string in the context of
the currently selected inferior frame, used by the `print` verb.
*/
type ExprEvaluator interface {
	EvalExpr(expr string) (lispval.Value, error)
}

/*
StopEvent describes a single host-debugger stop, carrying every
breakpoint that fired at this PC in this event.
*/
type StopEvent struct {
	Breakpoints []Breakpoint
}

/*
StopEventSource lets the Manager subscribe and unsubscribe from the
host debugger's stop notifications.
*/
type StopEventSource interface {

	/*
		Subscribe registers fn to be called on every stop event and
		returns a token usable with Unsubscribe.
	*/
	Subscribe(fn func(StopEvent)) (token int)

	/*
		Unsubscribe removes a previously registered subscriber.
	*/
	Unsubscribe(token int)
}

/*
FrameFilterRegistry lets a reference backtrace renderer register a
frame-filter with the host debugger's own backtrace machinery.
*/
type FrameFilterRegistry interface {
	RegisterFrameFilter(name string, priority int, filter func(frames []InferiorFrame) []InferiorFrame)
}

/*
Host bundles every capability surface the engine needs from the host
debugger. A concrete adapter implements all of it; hostdbg/fakehost
provides an in-memory double for tests.
*/
type Host interface {
	SymbolLookup
	ExprEvaluator
	StopEventSource
	FrameFilterRegistry

	/*
		NewestFrame returns the currently selected (innermost)
		inferior frame, or nil if the inferior is not stopped.
	*/
	NewestFrame() InferiorFrame

	/*
		BreakAt installs a breakpoint at a function name or raw
		address.
	*/
	BreakAt(location string) Breakpoint

	/*
		TempBreakAt installs a one-shot breakpoint at a function name
		or raw address; it is automatically deleted after it fires
		once.
	*/
	TempBreakAt(location string) Breakpoint

	/*
		FinishBreakAt installs a finish breakpoint on the given
		inferior frame.
	*/
	FinishBreakAt(frame InferiorFrame) FinishBreakpoint

	/*
		Resume continues the inferior until the next stop event.
	*/
	Resume()
}
