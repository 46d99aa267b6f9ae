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
Labelled argument and body sites inside the evaluator. eval_sub
dispatches a form along one of three shapes — a variadic subr (many),
a fixed-arity subr (n), an unevalled subr — or hands it to the lambda
machinery, whose argument binding and body sites live in apply_lambda
and progn. Which labels can actually fire for a given form is only
known once the first site is reached.
*/
const (
	LabelSubrArgMany = "eval_sub:subr_arg_many"
	LabelSubrArgN    = "eval_sub:subr_arg_n"
	LabelLambdaArgs  = "apply_lambda:lambda_args"

	LabelSubrBodyMany      = "eval_sub:subr_body_many"
	LabelSubrBodyN         = "eval_sub:subr_body_n"
	LabelSubrBodyUnevalled = "eval_sub:subr_body_unevalled"
	LabelLambdaBody        = "progn:lambda_body"
)

/*
classForLabel maps a site label to the expression shape it reveals:
the subr sites mean the form dispatched to a built-in, the lambda
sites mean it dispatched to a cons-shaped function.
*/
func classForLabel(label string) ExprClass {
	switch label {
	case LabelSubrArgMany, LabelSubrArgN, LabelSubrBodyMany,
		LabelSubrBodyN, LabelSubrBodyUnevalled:
		return ExprSubr
	case LabelLambdaArgs, LabelLambdaBody:
		return ExprCons
	}
	return ExprUnset
}

/*
bodyForArg pairs each argument site with the body site of the same
shape. The unevalled body has no argument pairing; it is entered
directly without argument stops.
*/
var bodyForArg = map[string]string{
	LabelSubrArgMany: LabelSubrBodyMany,
	LabelSubrArgN:    LabelSubrBodyN,
	LabelLambdaArgs:  LabelLambdaBody,
}

/*
EvalFrame is the state machine for a single eval_sub invocation. It
starts with internal breakpoints on every argument and body site since
the form's shape is unknown until the first one fires; the set is then
narrowed to the sites consistent with that shape.
*/
type EvalFrame struct {
	*base

	Eval *lispfunc.Eval

	gutsPrompt func() bool
	narrowed   bool
}

/*
NewEvalFrame constructs an EvalFrame. If start is nil the frame is
already inside eval_sub (host.NewestFrame() is that call); otherwise
start is the breakpoint whose hit will transition this frame into it.
gutsPrompt is threaded down to any Primitive child this frame steps
into.
*/
func NewEvalFrame(owner Owner, host hostdbg.Host, typeTag TypeTag, start hostdbg.Breakpoint, gutsPrompt func() bool) *EvalFrame {
	f := &EvalFrame{base: newBase(owner, host, KindEval, typeTag, start), gutsPrompt: gutsPrompt}
	f.self = f

	for _, label := range []string{LabelSubrArgMany, LabelSubrArgN, LabelLambdaArgs} {
		f.args[host.BreakAt(label)] = struct{}{}
	}
	for _, label := range []string{LabelSubrBodyMany, LabelSubrBodyN, LabelSubrBodyUnevalled, LabelLambdaBody} {
		f.bodies[host.BreakAt(label)] = struct{}{}
	}

	if start != nil {
		f.disableAll()
	} else {
		f.enterFrame()
	}

	return f
}

func (f *EvalFrame) enterFrame() {
	if ev, err := lispfunc.NewEval(f.host.NewestFrame()); err == nil {
		f.Eval = ev
	}
}

func (f *EvalFrame) Hit(bp hostdbg.Breakpoint) { hit(f, f.base, bp, f) }

func (f *EvalFrame) doArg(bp hostdbg.Breakpoint, stepIn bool) {
	f.setExprClass(classForLabel(bp.Location()))

	// First arg hit: the form's shape is now known and the other site
	// labels can never fire for it. Keep only the hit site and its
	// paired body.
	if !f.narrowed {
		f.narrowed = true

		bodyLoc := bodyForArg[bp.Location()]
		for other := range f.args {
			if other != bp {
				other.Delete()
				delete(f.args, other)
			}
		}
		for body := range f.bodies {
			if body.Location() != bodyLoc {
				body.Delete()
				delete(f.bodies, body)
			}
		}
	}

	if stepIn {
		// The argument's own form shape is unknown yet; a nested eval
		// is the safe default.
		f.stepIn(NewEvalFrame(f.owner, f.host, TagArg,
			f.host.TempBreakAt(entrypoint.EvalSub), f.gutsPrompt))
	}
}

func (f *EvalFrame) doBody(bp hostdbg.Breakpoint, stepIn bool) {
	f.setExprClass(classForLabel(bp.Location()))

	// Once a body starts no further argument sites can occur.
	for arg := range f.args {
		arg.Delete()
		delete(f.args, arg)
	}

	if !stepIn {
		return
	}

	switch f.exprClass {
	case ExprCons:
		f.stepIn(NewEvalFrame(f.owner, f.host, TagBody,
			f.host.TempBreakAt(entrypoint.EvalSub), f.gutsPrompt))
	case ExprSubr:
		fun, err := f.host.NewestFrame().ReadVar("fun")
		if err != nil {
			return
		}
		info, ok := fun.Subr()
		if !ok {
			return
		}
		f.stepIn(NewPrimitiveFrame(f.owner, f.host, TagBody,
			f.host.TempBreakAt(info.Func), f.gutsPrompt))
	}
}

func (f *EvalFrame) String() string {
	name := "?"
	if f.Eval != nil {
		name = f.Eval.Name()
	}
	return "eval(" + name + ") : " + f.kind.String() + " @" + f.state.String()
}
