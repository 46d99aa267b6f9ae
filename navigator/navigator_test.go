/*
 * LispNav
 *
 * Copyright 2020 Matthias Ladkau. All rights reserved.
 *
 * This Source Code Form is subject to the terms of the MIT
 * License, If a copy of the MIT License was not distributed with this
 * file, You can obtain one at https://opensource.org/licenses/MIT.
 */

package navigator

import (
	"strings"
	"testing"

	"devt.de/krotik/lispnav/frame"
	"devt.de/krotik/lispnav/hostdbg/fakehost"
	"devt.de/krotik/lispnav/lispval"
	"devt.de/krotik/lispnav/lispval/simval"
	"devt.de/krotik/lispnav/navmetrics"
	"devt.de/krotik/lispnav/util"
)

/*
newManager builds a Manager against a fresh fakehost for a single test
and tears it down on cleanup, so the active-instance guard never leaks
between tests in this package.
*/
func newManager(t *testing.T, h *fakehost.Host, gutsPrompt func() bool) *Manager {
	t.Helper()

	m, err := Init(h, util.NewNullLogger(), navmetrics.NewNullRecorder(), gutsPrompt)
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	t.Cleanup(m.Teardown)

	return m
}

func TestInitRefusesSecondActiveManager(t *testing.T) {
	h := fakehost.New()
	m := newManager(t, h, nil)

	if _, err := Init(h, util.NewNullLogger(), navmetrics.NewNullRecorder(), nil); err == nil {
		t.Error("Expected Init to refuse a second active Manager")
	}

	m.Teardown()
	m2, err := Init(h, util.NewNullLogger(), navmetrics.NewNullRecorder(), nil)
	if err != nil {
		t.Fatalf("Expected Init to succeed once the prior Manager tore down, got %v", err)
	}
	m2.Teardown()
}

func TestNavigationVerbsRejectedOnEmptyStack(t *testing.T) {
	h := fakehost.New()
	m := newManager(t, h, nil)

	for _, call := range []func() error{m.Step, m.Next, m.Up} {
		err := call()
		if err == nil {
			t.Fatal("Expected an error on an empty virtual stack")
		}
		re, ok := err.(*util.RuntimeError)
		if !ok || re.Detail != MsgGetIntoLispFirst {
			t.Errorf("Expected %q, got %v", MsgGetIntoLispFirst, err)
		}
	}
}

func TestContinueOnEmptyStackResumesWhenABreakpointIsArmed(t *testing.T) {
	h := fakehost.New()
	m := newManager(t, h, nil)

	if err := m.Continue(); err == nil {
		t.Fatal("Expected Continue to be rejected with no breakpoints armed")
	}

	m.Break("foo")
	if err := m.Continue(); err != nil {
		t.Fatalf("Expected Continue to resume with a breakpoint armed, got %v", err)
	}
	if h.ResumedCount() != 1 {
		t.Errorf("Expected exactly one Resume, got %d", h.ResumedCount())
	}
}

func TestUserBreakpointHitPushesEvalFrame(t *testing.T) {
	h := fakehost.New()
	m := newManager(t, h, nil)

	m.Break("foo")

	h.EnterFrame("eval_sub", map[string]lispval.Value{
		"form": simval.List(simval.Symbol("foo"), simval.Int(1), simval.Int(2)),
	})

	stack := m.Stack()
	if len(stack) != 1 {
		t.Fatalf("Expected the breakpoint hit to push exactly one frame, got %d", len(stack))
	}

	top := stack[0]
	if top.Kind() != frame.KindEval {
		t.Errorf("Expected an Eval frame, got %v", top.Kind())
	}
	if top.TypeTag() != frame.TagBreakpoint {
		t.Errorf("Expected a BREAKPOINT-tagged frame, got %v", top.TypeTag())
	}
	if top.State() != frame.StateEntry {
		t.Errorf("Expected ENTRY state, got %v", top.State())
	}
}

func TestUserBreakpointDoesNotFireOnNonMatchingCallee(t *testing.T) {
	h := fakehost.New()
	m := newManager(t, h, nil)

	m.Break("foo")

	h.EnterFrame("eval_sub", map[string]lispval.Value{
		"form": simval.List(simval.Symbol("bar"), simval.Int(1)),
	})

	if len(m.Stack()) != 0 {
		t.Error("Did not expect a non-matching callee to push a frame")
	}
}

func TestUserBreakpointDisabledWhileActiveThenReenabledOnPop(t *testing.T) {
	h := fakehost.New()
	m := newManager(t, h, nil)

	ub := m.Break("foo")

	h.EnterFrame("eval_sub", map[string]lispval.Value{
		"form": simval.List(simval.Symbol("foo")),
	})

	if ub.Eval.Enabled() {
		t.Error("Expected the eval half to be disabled while its own hit is being inspected")
	}

	h.ReturnFrame(nil)

	if len(m.Stack()) != 0 {
		t.Fatalf("Expected the stack to be empty after the breakpoint frame finished")
	}
	if !ub.Eval.Enabled() {
		t.Error("Expected the eval half to be re-armed once its frame popped")
	}
}

func TestStepIntoArgumentPushesChildEvalFrame(t *testing.T) {
	h := fakehost.New()
	m := newManager(t, h, nil)

	m.Break("foo")
	h.EnterFrame("eval_sub", map[string]lispval.Value{
		"form": simval.List(simval.Symbol("foo"), simval.Int(1)),
	})

	top := m.Stack()[0].(*frame.EvalFrame)
	top.Step()

	h.HitLabel(frame.LabelSubrArgMany)

	stack := m.Stack()
	if len(stack) != 2 {
		t.Fatalf("Expected stepping into an argument to push a child frame, got depth %d", len(stack))
	}
	if stack[1].TypeTag() != frame.TagArg {
		t.Errorf("Expected the child frame to be ARG-tagged, got %v", stack[1].TypeTag())
	}
	if stack[1].Start() == nil {
		t.Fatal("Expected the child frame to wait on a temporary entry breakpoint")
	}

	// The argument's own evaluation begins: the temporary start fires,
	// the child enters, and on its return the child pops and the
	// parent's breakpoints are re-armed.
	h.EnterFrame("eval_sub", map[string]lispval.Value{
		"form": simval.Int(1),
	})
	if got := m.Stack()[1].State(); got != frame.StateEntry {
		t.Errorf("Expected the child to be at ENTRY once its start fires, got %v", got)
	}

	h.ReturnFrame(simval.Int(1))
	stack = m.Stack()
	if len(stack) != 1 {
		t.Fatalf("Expected the child to pop once its call returns, got depth %d", len(stack))
	}
	if stack[0].State() != frame.StateArg {
		t.Errorf("Expected the parent to still be at ARG, got %v", stack[0].State())
	}
}

func TestNextSkipsArgumentStopsAndStopsAtBody(t *testing.T) {
	h := fakehost.New()
	m := newManager(t, h, nil)

	m.Break("car")
	h.EnterFrame("eval_sub", map[string]lispval.Value{
		"form": simval.List(simval.Symbol("car"), simval.Symbol("x")),
		"fun":  simval.Subr("car", 1, 1),
	})

	if err := m.Next(); err != nil {
		t.Fatalf("Next failed: %v", err)
	}

	h.HitLabel(frame.LabelSubrArgN)
	if len(m.Stack()) != 1 {
		t.Error("Expected NEXT to silently pass the argument site")
	}
	if h.ResumedCount() != 2 {
		t.Errorf("Expected a resume for Next and one for the silent pass, got %d", h.ResumedCount())
	}

	h.HitLabel(frame.LabelSubrBodyN)
	stack := m.Stack()
	if len(stack) != 2 {
		t.Fatalf("Expected the body stop to step into the primitive, got depth %d", len(stack))
	}
	if stack[1].Kind() != frame.KindPrimitive {
		t.Errorf("Expected a Primitive child at the subr body, got %v", stack[1].Kind())
	}
	if stack[1].Start() == nil || stack[1].Start().Location() != "Fcar" {
		t.Error("Expected the child to wait on the subroutine's implementation")
	}
}

func TestUpSkipsArgumentAndPopsOnFinish(t *testing.T) {
	h := fakehost.New()
	m := newManager(t, h, nil)

	m.Break("foo")
	h.EnterFrame("eval_sub", map[string]lispval.Value{
		"form": simval.List(simval.Symbol("foo"), simval.Int(1)),
	})

	if err := m.Up(); err != nil {
		t.Fatalf("Up failed: %v", err)
	}

	h.HitLabel(frame.LabelSubrArgMany)
	if len(m.Stack()) != 1 {
		t.Error("Expected UP to silently pass the argument site, not step in")
	}

	h.ReturnFrame(simval.Int(3))
	if len(m.Stack()) != 0 {
		t.Error("Expected the breakpoint frame to pop once its call returns")
	}
}

func TestGutsModeBlocksStepAndNextButNotUpOrContinue(t *testing.T) {
	h := fakehost.New()
	m := newManager(t, h, func() bool { return true })

	m.Break("mapcar")
	h.EnterFrame("funcall_subr", map[string]lispval.Value{
		"subr":    simval.Subr("mapcar", 2, 2),
		"numargs": simval.Int(2),
		"args":    simval.Vector(simval.Symbol("f"), simval.Symbol("l")),
	})

	subrFrame := m.Stack()[0].(*frame.SubrFrame)
	subrFrame.Step()
	h.EnterFrame("Fmapcar", nil)

	stack := m.Stack()
	if len(stack) != 2 {
		t.Fatalf("Expected stepping into the subr body to push a Primitive frame, got depth %d", len(stack))
	}
	if !m.inGuts() {
		t.Fatal("Expected the pushed Primitive frame to be in guts mode")
	}

	if err := m.Step(); err == nil || err.(*util.RuntimeError).Detail != MsgInGuts {
		t.Errorf("Expected Step to be rejected with MsgInGuts, got %v", err)
	}
	if err := m.Next(); err == nil || err.(*util.RuntimeError).Detail != MsgInGuts {
		t.Errorf("Expected Next to be rejected with MsgInGuts, got %v", err)
	}
	if err := m.Up(); err != nil {
		t.Errorf("Expected Up to work in guts mode, got %v", err)
	}
	if err := m.Continue(); err != nil {
		t.Errorf("Expected Continue to work in guts mode, got %v", err)
	}
}

func TestRebuildResynchronisesAfterUnrecognisedReturn(t *testing.T) {
	h := fakehost.New()

	// The inferior is already inside a nested eval_sub invocation
	// before the engine attaches, so no engine frame exists for it.
	h.EnterFrame("eval_sub", map[string]lispval.Value{
		"form": simval.List(simval.Symbol("foo")),
	})
	h.EnterFrame("some_helper", map[string]lispval.Value{})

	m2 := newManager(t, h, nil)
	m2.rebuild()

	stack := m2.Stack()
	if len(stack) != 1 {
		t.Fatalf("Expected rebuild to discover the outer eval_sub frame, got depth %d", len(stack))
	}
	if stack[0].TypeTag() != frame.TagUnknown {
		t.Errorf("Expected an UNKNOWN-tagged recovery frame, got %v", stack[0].TypeTag())
	}
	if stack[0].State() != frame.StateUnknown {
		t.Errorf("Expected UNKNOWN state before the recovery finish fires, got %v", stack[0].State())
	}
	if h.ResumedCount() != 1 {
		t.Errorf("Expected rebuild to resume the inferior, got %d resumes", h.ResumedCount())
	}

	// The helper returns: the recovery finish fires and the UNKNOWN
	// frame enters the rediscovered eval_sub invocation.
	h.ReturnFrame(nil)

	top, ok := m2.Stack()[0].(*frame.EvalFrame)
	if !ok {
		t.Fatalf("Expected the recovery frame to be an Eval frame, got %v", m2.Stack()[0].Kind())
	}
	if top.State() != frame.StateEntry {
		t.Errorf("Expected ENTRY state once the recovery finish fires, got %v", top.State())
	}
	if top.Eval == nil || top.Eval.Name() != "foo" {
		t.Error("Expected the recovery frame to decode the rediscovered invocation")
	}
}

/*
captureLogger keeps the raw values handed to LogError so tests can
inspect the logged error object itself rather than its rendering.
*/
type captureLogger struct {
	*util.NullLogger
	errs []interface{}
}

func (c *captureLogger) LogError(m ...interface{}) { c.errs = append(c.errs, m...) }

func TestUnexpectedStopIsLoggedAndResumed(t *testing.T) {
	h := fakehost.New()
	cl := &captureLogger{NullLogger: util.NewNullLogger()}

	m, err := Init(h, cl, navmetrics.NewNullRecorder(), nil)
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	t.Cleanup(m.Teardown)

	// A breakpoint the engine knows nothing about fires.
	h.BreakAt("some_internal_helper")
	h.EnterFrame("some_internal_helper", nil)

	if len(cl.errs) != 1 {
		t.Fatalf("Expected exactly one logged error, got %d", len(cl.errs))
	}
	re, ok := cl.errs[0].(*util.RuntimeErrorWithDetail)
	if !ok {
		t.Fatalf("Expected a RuntimeErrorWithDetail, got %T", cl.errs[0])
	}
	if !strings.Contains(re.Error(), "stop event matched no known breakpoint") {
		t.Error("Unexpected error text:", re.Error())
	}
	if re.Snapshot["stackDepth"] != 0 {
		t.Error("Expected the snapshot to record an empty virtual stack, got:", re.Snapshot["stackDepth"])
	}
	if locs, ok := re.Data.([]string); !ok || len(locs) != 1 || locs[0] != "some_internal_helper" {
		t.Error("Expected the firing breakpoint location as error data, got:", re.Data)
	}
	if h.ResumedCount() != 1 {
		t.Errorf("Expected the unexpected stop to resume the inferior, got %d resumes", h.ResumedCount())
	}
}

func TestBreakDedupsByName(t *testing.T) {
	h := fakehost.New()
	m := newManager(t, h, nil)

	a := m.Break("foo")
	b := m.Break("foo")

	if a != b {
		t.Error("Expected Break to return the same UserBreakpoint for a repeated name")
	}
	if len(m.Breakpoints()) != 1 {
		t.Errorf("Expected exactly one entry in the breakpoint table, got %d", len(m.Breakpoints()))
	}
}

func TestRemoveBreakDeletesAndForgets(t *testing.T) {
	h := fakehost.New()
	m := newManager(t, h, nil)

	m.Break("foo")
	if !m.RemoveBreak("foo") {
		t.Fatal("Expected RemoveBreak to report success for a known name")
	}
	if len(m.Breakpoints()) != 0 {
		t.Error("Expected the breakpoint table to be empty after removal")
	}
	if m.RemoveBreak("foo") {
		t.Error("Expected a second RemoveBreak on the same name to report failure")
	}
}
