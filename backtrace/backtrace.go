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
Package backtrace renders the Lisp call stack two ways: Render shows
the virtual stack the navigation engine itself maintains (cheap, but
only as deep as the engine has pushed frames for); Full and
RegisterFilter instead walk the real inferior stack directly,
decoding every frame whose function name is a recognised entry point
into its Lisp view, independent of what the engine has or has not
stepped into yet.
*/
package backtrace

import (
	"fmt"

	"devt.de/krotik/lispnav/entrypoint"
	"devt.de/krotik/lispnav/frame"
	"devt.de/krotik/lispnav/hostdbg"
	"devt.de/krotik/lispnav/lispfunc"
)

/*
Entry is one rendered line of a backtrace: a display name, its
argument bindings already rendered to text, the Frame variant it came
from, and whether argument extraction faulted (Args then holds "?"
placeholders).
*/
type Entry struct {
	Display string
	Args    []string
	Kind    frame.Kind
	Fault   bool
}

/*
Render renders the navigation engine's virtual Lisp stack, most recent
frame first, matching the `backtrace` verb with no argument.
*/
func Render(stack []frame.Frame) []Entry {
	entries := make([]Entry, 0, len(stack))
	for i := len(stack) - 1; i >= 0; i-- {
		entries = append(entries, renderFrame(stack[i]))
	}
	return entries
}

func renderFrame(f frame.Frame) Entry {
	switch v := f.(type) {
	case *frame.EvalFrame:
		if v.Eval == nil {
			return Entry{Display: "eval(?)", Kind: frame.KindEval}
		}
		return viewEntry(v.Eval, frame.KindEval)
	case *frame.LambdaFrame:
		if v.Lambda == nil {
			return Entry{Display: "lambda(?)", Kind: frame.KindLambda}
		}
		return viewEntry(v.Lambda, frame.KindLambda)
	case *frame.SubrFrame:
		if v.Subr == nil {
			return Entry{Display: "subr(?)", Kind: frame.KindSubr}
		}
		return viewEntry(v.Subr, frame.KindSubr)
	default:
		return Entry{Display: f.String(), Kind: f.Kind()}
	}
}

func viewEntry(view lispfunc.FunctionView, kind frame.Kind) Entry {
	args := view.ArgsList()
	rendered := make([]string, len(args))
	fault := false

	for i, a := range args {
		if _, ok := a.(lispfunc.PlaceholderArg); ok {
			rendered[i] = "?"
			fault = true
			continue
		}
		rendered[i] = fmt.Sprintf("%s=%s", a.Symbol(), lispfunc.Render(a.Value()))
	}

	return Entry{Display: view.Name(), Args: rendered, Kind: kind, Fault: fault}
}

/*
Full walks the real inferior stack from the currently selected frame
outward, decoding every recognised entry point into its Lisp view. A
frame whose name is not recognised is rendered by its raw native name.
Argument extraction that faults never aborts the walk — renderNative
substitutes a faulted Entry instead of propagating the error, matching
the engine's total-backtrace requirement.
*/
func Full(host hostdbg.Host) []Entry {
	var entries []Entry
	for f := host.NewestFrame(); f != nil; f = f.Older() {
		entries = append(entries, renderNative(f))
	}
	return entries
}

func renderNative(f hostdbg.InferiorFrame) Entry {
	kind, ok := entrypoint.VariantFor(f.Name())
	if !ok {
		return Entry{Display: f.Name()}
	}

	switch kind {
	case entrypoint.KindEval:
		v, err := lispfunc.NewEval(f)
		if err != nil {
			return Entry{Display: f.Name(), Fault: true}
		}
		return viewEntry(v, frame.KindEval)
	case entrypoint.KindLambda:
		v, err := lispfunc.NewLambda(f)
		if err != nil {
			return Entry{Display: f.Name(), Fault: true}
		}
		return viewEntry(v, frame.KindLambda)
	case entrypoint.KindSubr:
		v, err := lispfunc.NewSubr(f)
		if err != nil {
			return Entry{Display: f.Name(), Fault: true}
		}
		return viewEntry(v, frame.KindSubr)
	}

	return Entry{Display: f.Name()}
}

/*
decoratedFrame wraps a native frame so its displayed name reads as the
Lisp callee rather than the C entry-point function, the same
substitution a host-debugger frame decorator performs; every other
InferiorFrame method is inherited unchanged from the wrapped frame.
*/
type decoratedFrame struct {
	hostdbg.InferiorFrame
	displayName string
}

func (d *decoratedFrame) Name() string { return d.displayName }

/*
RegisterFilter installs the Lisp frame filter on host's own backtrace
machinery, under the "lisp-objects" name at priority 100. Only frames
at a recognised entry point are kept, each wrapped as a decoratedFrame
carrying the Lisp callee's display name; every other native frame is
dropped from the filtered view, since it carries no Lisp-level
information the user asked to see.
*/
func RegisterFilter(host hostdbg.Host) {
	host.RegisterFrameFilter("lisp-objects", 100, func(frames []hostdbg.InferiorFrame) []hostdbg.InferiorFrame {
		var out []hostdbg.InferiorFrame
		for _, f := range frames {
			if !entrypoint.IsRecognised(f.Name()) {
				continue
			}
			out = append(out, &decoratedFrame{InferiorFrame: f, displayName: renderNative(f).Display})
		}
		return out
	})
}
