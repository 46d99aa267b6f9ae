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
	"devt.de/krotik/lispnav/lispfunc"
)

/*
LambdaFrame is the state machine for a single funcall_lambda
invocation. Its body breakpoint sits on eval_sub itself: the lambda's
body forms are evaluated through it, so the next eval_sub entered while
this frame is on top is the body starting. A compiled closure has no
Lisp body to enter (Compiled() is true and the body breakpoint is
disarmed on entry).
*/
type LambdaFrame struct {
	*base

	Lambda *lispfunc.Lambda

	bodyBP     hostdbg.Breakpoint
	gutsPrompt func() bool
}

/*
NewLambdaFrame constructs a LambdaFrame. gutsPrompt is threaded down to
any Primitive frame reached through this frame's children.
*/
func NewLambdaFrame(owner Owner, host hostdbg.Host, typeTag TypeTag, start hostdbg.Breakpoint, gutsPrompt func() bool) *LambdaFrame {
	f := &LambdaFrame{base: newBase(owner, host, KindLambda, typeTag, start), gutsPrompt: gutsPrompt}
	f.self = f

	f.bodyBP = host.BreakAt(entrypoint.EvalSub)
	f.bodies[f.bodyBP] = struct{}{}

	if start != nil {
		f.disableAll()
	} else {
		f.enterFrame()
	}

	return f
}

func (f *LambdaFrame) enterFrame() {
	l, err := lispfunc.NewLambda(f.host.NewestFrame())
	if err != nil {
		return
	}
	f.Lambda = l

	// A compiled closure has no Lisp body to stop inside of; disarm
	// the body breakpoint so this frame behaves like an opaque call.
	if l.Compiled() {
		f.bodyBP.Disable()
		f.disabled[f.bodyBP] = struct{}{}
	}
}

func (f *LambdaFrame) Hit(bp hostdbg.Breakpoint) { hit(f, f.base, bp, f) }

func (f *LambdaFrame) doArg(bp hostdbg.Breakpoint, stepIn bool) {}

func (f *LambdaFrame) doBody(bp hostdbg.Breakpoint, stepIn bool) {
	f.setExprClass(ExprCons)
	if stepIn {
		// The body breakpoint is eval_sub itself, so the inferior is
		// already inside the child's frame.
		f.stepIn(NewEvalFrame(f.owner, f.host, TagBody, nil, f.gutsPrompt))
	}
}

func (f *LambdaFrame) String() string {
	name := "?"
	if f.Lambda != nil {
		name = f.Lambda.Name()
	}
	return "lambda(" + name + ") : " + f.kind.String() + " @" + f.state.String()
}
