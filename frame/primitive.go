/*
 * LispNav
 *
 * Copyright 2020 Matthias Ladkau. All rights reserved.
 *
 * This Source Code Form is subject to the terms of the MIT
 * License, If a copy of the MIT License was not distributed with this
 * file, You can obtain one at https://opensource.org/licenses/MIT.
 */

package frame

import (
	"devt.de/krotik/lispnav/entrypoint"
	"devt.de/krotik/lispnav/hostdbg"
)

/*
PrimitiveFrame is the state machine for the C-level body of a built-in
subroutine: it watches the three recognised entry points (eval_sub,
funcall_lambda, funcall_subr) for the case where the primitive calls
back into the evaluator (e.g. "funcall" or "mapcar" invoking a Lisp
callback). In guts mode these internal breakpoints are suppressed and
the user drives the raw C implementation with native debugger
commands; outside guts mode they stay armed so a callback into the
evaluator pushes the matching child frame.
*/
type PrimitiveFrame struct {
	*base

	gutsPrompt func() bool
	guts       bool

	evalBP   hostdbg.Breakpoint
	lambdaBP hostdbg.Breakpoint
	subrBP   hostdbg.Breakpoint
}

/*
NewPrimitiveFrame constructs a PrimitiveFrame. gutsPrompt, if non-nil,
is invoked once (at construction, or when Start fires) to ask whether
to debug this primitive's own C code directly; a nil gutsPrompt always
declines, leaving the evaluator entry points watched.
*/
func NewPrimitiveFrame(owner Owner, host hostdbg.Host, typeTag TypeTag, start hostdbg.Breakpoint, gutsPrompt func() bool) *PrimitiveFrame {
	f := &PrimitiveFrame{base: newBase(owner, host, KindPrimitive, typeTag, start), gutsPrompt: gutsPrompt}
	f.self = f

	f.evalBP = host.BreakAt(entrypoint.EvalSub)
	f.lambdaBP = host.BreakAt(entrypoint.FuncallLambda)
	f.subrBP = host.BreakAt(entrypoint.FuncallSubr)
	f.bodies[f.evalBP] = struct{}{}
	f.bodies[f.lambdaBP] = struct{}{}
	f.bodies[f.subrBP] = struct{}{}

	if start != nil {
		f.disableAll()
	} else {
		f.enterFrame()
	}

	return f
}

func (f *PrimitiveFrame) enterFrame() {
	f.guts = f.gutsPrompt != nil && f.gutsPrompt()
	if f.guts {
		f.disableAll()
	}
}

func (f *PrimitiveFrame) Hit(bp hostdbg.Breakpoint) { hit(f, f.base, bp, f) }

/*
Guts reports whether this Primitive is currently in guts mode.
*/
func (f *PrimitiveFrame) Guts() bool { return f.guts }

/*
Cont leaves guts mode if it was entered: it re-arms the internal
breakpoints this frame suppressed and resumes STEP semantics, since
"continue" exits C mode rather than running to return. Outside guts
mode this is the ordinary Cont/Up behaviour.
*/
func (f *PrimitiveFrame) Cont() {
	if f.guts {
		f.guts = false
		f.enableAll()
		f.command = Step
		f.host.Resume()
		return
	}
	f.base.Cont()
}

func (f *PrimitiveFrame) doArg(bp hostdbg.Breakpoint, stepIn bool) {}

func (f *PrimitiveFrame) doBody(bp hostdbg.Breakpoint, stepIn bool) {
	if !stepIn {
		return
	}
	switch bp {
	case f.evalBP:
		f.stepIn(NewEvalFrame(f.owner, f.host, TagBody, nil, f.gutsPrompt))
	case f.lambdaBP:
		f.stepIn(NewLambdaFrame(f.owner, f.host, TagBody, nil, f.gutsPrompt))
	case f.subrBP:
		f.stepIn(NewSubrFrame(f.owner, f.host, TagBody, nil, f.gutsPrompt))
	}
}

func (f *PrimitiveFrame) String() string {
	mode := "watching"
	if f.guts {
		mode = "guts"
	}
	return "primitive(" + mode + ") : " + f.kind.String() + " @" + f.state.String()
}
