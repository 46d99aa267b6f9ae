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
Package breakpoint wraps a host-debugger location breakpoint with a
name predicate: a user breakpoint on a Lisp function name fires only
when the Lisp callee currently entered matches that name.
*/
package breakpoint

import (
	"github.com/google/uuid"

	"devt.de/krotik/lispnav/entrypoint"
	"devt.de/krotik/lispnav/hostdbg"
	"devt.de/krotik/lispnav/lispfunc"
)

/*
UserBreakpoint is a pair of host breakpoints tagged with the same Lisp
function name: one on the eval_sub entry point, one on funcall_subr.
Both are needed because some built-in primitives are entered directly
through funcall_subr without going through eval_sub first.
*/
type UserBreakpoint struct {
	ID   uuid.UUID
	Name string
	Eval hostdbg.Breakpoint
	Subr hostdbg.Breakpoint
}

/*
ForName installs both halves of a user breakpoint on the given Lisp
function name. The eval half stops only when the stopped frame's form
is a cons whose head is a symbol named name; the subr half stops only
when the subroutine descriptor's name equals name.
*/
func ForName(host hostdbg.Host, name string) *UserBreakpoint {
	eval := host.BreakAt(entrypoint.EvalSub)
	eval.SetStopPredicate(func(frame hostdbg.InferiorFrame) bool {
		ev, err := lispfunc.NewEval(frame)
		if err != nil {
			return false
		}
		form := ev.Form
		car, _, ok := form.Pair()
		if !ok {
			return false
		}
		sym, ok := car.Symbol()
		return ok && sym == name
	})

	subr := host.BreakAt(entrypoint.FuncallSubr)
	subr.SetStopPredicate(func(frame hostdbg.InferiorFrame) bool {
		s, err := lispfunc.NewSubr(frame)
		if err != nil {
			return false
		}
		return s.Name() == name
	})

	return &UserBreakpoint{
		ID:   uuid.New(),
		Name: name,
		Eval: eval,
		Subr: subr,
	}
}

/*
Delete removes both halves of this user breakpoint from the host.
*/
func (b *UserBreakpoint) Delete() {
	b.Eval.Delete()
	b.Subr.Delete()
}

/*
Enable arms both halves of this user breakpoint.
*/
func (b *UserBreakpoint) Enable() {
	b.Eval.Enable()
	b.Subr.Enable()
}

/*
Disable arms-off both halves of this user breakpoint without deleting
them, so a nested call of the same function does not re-trigger while
the outer call is already being inspected.
*/
func (b *UserBreakpoint) Disable() {
	b.Eval.Disable()
	b.Subr.Disable()
}

/*
Has reports whether bp is one of this user breakpoint's two halves.
*/
func (b *UserBreakpoint) Has(bp hostdbg.Breakpoint) bool {
	return bp == b.Eval || bp == b.Subr
}

/*
VariantForHit returns the FrameKind the half of a user breakpoint that
fired belongs to — entrypoint.KindEval for the eval_sub half,
entrypoint.KindSubr for the funcall_subr half.
*/
func (b *UserBreakpoint) VariantForHit(bp hostdbg.Breakpoint) entrypoint.FrameKind {
	if bp == b.Subr {
		return entrypoint.KindSubr
	}
	return entrypoint.KindEval
}
