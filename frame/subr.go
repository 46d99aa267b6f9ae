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
	"devt.de/krotik/lispnav/hostdbg"
	"devt.de/krotik/lispnav/lispfunc"
)

/*
SubrFrame is the state machine for a single funcall_subr invocation: a
built-in primitive entered directly, without an eval_sub in between.
Its one body breakpoint sits on the subroutine's own C implementation,
which cannot be installed until the descriptor is known — that requires
actually being inside the frame — so a SubrFrame constructed with a
start breakpoint carries no bodies at all until Start fires.
*/
type SubrFrame struct {
	*base

	Subr *lispfunc.Subr

	bodyBP     hostdbg.Breakpoint
	gutsPrompt func() bool
}

/*
NewSubrFrame constructs a SubrFrame. gutsPrompt, if non-nil, is asked
once per primitive body entered ("debug this primitive's own C code?")
and threaded down to the PrimitiveFrame children this frame creates; a
nil gutsPrompt means never debug the primitive's C code.
*/
func NewSubrFrame(owner Owner, host hostdbg.Host, typeTag TypeTag, start hostdbg.Breakpoint, gutsPrompt func() bool) *SubrFrame {
	f := &SubrFrame{base: newBase(owner, host, KindSubr, typeTag, start), gutsPrompt: gutsPrompt}
	f.self = f

	if start == nil {
		f.enterFrame()
	}

	return f
}

func (f *SubrFrame) enterFrame() {
	s, err := lispfunc.NewSubr(f.host.NewestFrame())
	if err != nil {
		return
	}
	f.Subr = s

	f.bodyBP = f.host.BreakAt(s.Info.Func)
	f.bodies[f.bodyBP] = struct{}{}
}

func (f *SubrFrame) Hit(bp hostdbg.Breakpoint) { hit(f, f.base, bp, f) }

func (f *SubrFrame) doArg(bp hostdbg.Breakpoint, stepIn bool) {}

func (f *SubrFrame) doBody(bp hostdbg.Breakpoint, stepIn bool) {
	f.setExprClass(ExprSubr)
	if stepIn {
		// The body breakpoint is the primitive's implementation, so
		// the inferior is already inside it.
		f.stepIn(NewPrimitiveFrame(f.owner, f.host, TagBody, nil, f.gutsPrompt))
	}
}

func (f *SubrFrame) String() string {
	name := "?"
	if f.Subr != nil {
		name = f.Subr.Name()
	}
	return "subr(" + name + ") : " + f.kind.String() + " @" + f.state.String()
}
