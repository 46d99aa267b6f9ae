/*
 * LispNav
 *
 * Copyright 2020 Matthias Ladkau. All rights reserved.
 *
 * This Source Code Form is subject to the terms of the MIT
 * License, If a copy of the MIT License was not distributed with this
 * file, You can obtain one at https://opensource.org/licenses/MIT.
 */

package breakpoint

import (
	"testing"

	"github.com/stretchr/testify/require"

	"devt.de/krotik/lispnav/hostdbg"
	"devt.de/krotik/lispnav/hostdbg/fakehost"
	"devt.de/krotik/lispnav/lispval"
	"devt.de/krotik/lispnav/lispval/simval"
)

func TestForNameStopsOnMatchingEval(t *testing.T) {
	h := fakehost.New()
	bp := ForName(h, "foo")

	var events []hostdbg.StopEvent
	h.Subscribe(func(ev hostdbg.StopEvent) { events = append(events, ev) })

	h.EnterFrame("eval_sub", map[string]lispval.Value{
		"form": simval.List(simval.Symbol("bar"), simval.Int(1)),
	})
	require.Empty(t, events, "expected no stop for a non-matching callee")

	h.ReturnFrame(nil)
	h.EnterFrame("eval_sub", map[string]lispval.Value{
		"form": simval.List(simval.Symbol("foo"), simval.Int(1), simval.Int(2)),
	})
	require.Len(t, events, 1, "expected a stop for the matching callee")
	require.Equal(t, bp.Eval, events[0].Breakpoints[0], "expected the eval half of the breakpoint to have fired")
}

func TestForNameStopsOnMatchingSubr(t *testing.T) {
	h := fakehost.New()
	bp := ForName(h, "car")

	var events []hostdbg.StopEvent
	h.Subscribe(func(ev hostdbg.StopEvent) { events = append(events, ev) })

	h.EnterFrame("funcall_subr", map[string]lispval.Value{
		"subr":    simval.Subr("cdr", 1, 1),
		"numargs": simval.Int(1),
		"args":    simval.Vector(simval.Symbol("x")),
	})
	require.Empty(t, events, "expected no stop for a non-matching subr")

	h.ReturnFrame(nil)
	h.EnterFrame("funcall_subr", map[string]lispval.Value{
		"subr":    simval.Subr("car", 1, 1),
		"numargs": simval.Int(1),
		"args":    simval.Vector(simval.Symbol("x")),
	})
	require.Len(t, events, 1, "expected a stop for the matching subr")
	require.Equal(t, bp.Subr, events[0].Breakpoints[0], "expected the subr half of the breakpoint to have fired")
}

func TestUserBreakpointEnableDisable(t *testing.T) {
	h := fakehost.New()
	bp := ForName(h, "foo")

	bp.Disable()
	require.False(t, bp.Eval.Enabled(), "expected the eval half to be disabled")
	require.False(t, bp.Subr.Enabled(), "expected the subr half to be disabled")

	bp.Enable()
	require.True(t, bp.Eval.Enabled(), "expected the eval half to be enabled")
	require.True(t, bp.Subr.Enabled(), "expected the subr half to be enabled")
}

func TestUserBreakpointHasAndVariant(t *testing.T) {
	h := fakehost.New()
	bp := ForName(h, "foo")

	require.True(t, bp.Has(bp.Eval), "expected Has to recognise the eval half")
	require.True(t, bp.Has(bp.Subr), "expected Has to recognise the subr half")

	other := h.BreakAt("eval_sub")
	require.False(t, bp.Has(other), "did not expect Has to recognise an unrelated breakpoint")

	require.Equal(t, "Eval", bp.VariantForHit(bp.Eval).String())
	require.Equal(t, "Subr", bp.VariantForHit(bp.Subr).String())
}
