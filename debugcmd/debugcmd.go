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
Package debugcmd maps the textual verbs a command-line front end reads
from a user (print, break, rmbreak, disablebreak, enablebreak,
backtrace, step, next, up, continue) onto calls against a Debugger.
Every Command's result must be possible to convert into a JSON string,
the contract cmd/navcli relies on when it prints each result as JSON.
*/
package debugcmd

import (
	"fmt"
	"strings"

	"devt.de/krotik/lispnav/backtrace"
	"devt.de/krotik/lispnav/breakpoint"
)

/*
Debugger is the narrow surface a Command needs. navigator.Manager
satisfies everything but Backtrace and Print: Print also needs the
host's expression evaluator and value renderer, and a full Backtrace
walks the host's real native stack; NewDebugger adapts a Manager and a
hostdbg.Host into one.
*/
type Debugger interface {
	Break(name string) *breakpoint.UserBreakpoint
	RemoveBreak(name string) bool
	DisableBreak(name string) bool
	EnableBreak(name string) bool
	Breakpoints() []*breakpoint.UserBreakpoint
	Backtrace(full bool) []backtrace.Entry
	Step() error
	Next() error
	Up() error
	Continue() error
	Print(expr string) (string, error)
}

/*
Command is a single debug verb. It must be possible to convert its
result into a JSON string.
*/
type Command interface {

	/*
		Run executes the command against d and returns its result.
	*/
	Run(d Debugger, args []string) (interface{}, error)

	/*
		DocString returns a descriptive text about this command.
	*/
	DocString() string
}

/*
Commands contains the mapping of textual verbs to Command
implementations.
*/
var Commands = map[string]Command{
	"print":        printCommand{},
	"break":        breakCommand{},
	"rmbreak":      rmBreakCommand{},
	"disablebreak": disableBreakCommand{},
	"enablebreak":  enableBreakCommand{},
	"backtrace":    backtraceCommand{},
	"step":         stepCommand{},
	"next":         nextCommand{},
	"up":           upCommand{},
	"continue":     continueCommand{},
}

// print
// =====

type printCommand struct{}

func (printCommand) Run(d Debugger, args []string) (interface{}, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("need an expression to print")
	}
	return d.Print(strings.Join(args, " "))
}

func (printCommand) DocString() string {
	return "Evaluates an expression in the currently selected frame and prints its value."
}

// break
// =====

type breakCommand struct{}

func (breakCommand) Run(d Debugger, args []string) (interface{}, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("need a Lisp function name")
	}
	ub := d.Break(args[0])
	return ub.ID.String(), nil
}

func (breakCommand) DocString() string {
	return "Sets a breakpoint on a named Lisp function."
}

// rmbreak
// =======

type rmBreakCommand struct{}

func (rmBreakCommand) Run(d Debugger, args []string) (interface{}, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("need a Lisp function name")
	}
	if !d.RemoveBreak(args[0]) {
		return nil, fmt.Errorf("no breakpoint on %v", args[0])
	}
	return nil, nil
}

func (rmBreakCommand) DocString() string {
	return "Removes the breakpoint on a named Lisp function."
}

// disablebreak
// ============

type disableBreakCommand struct{}

func (disableBreakCommand) Run(d Debugger, args []string) (interface{}, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("need a Lisp function name")
	}
	if !d.DisableBreak(args[0]) {
		return nil, fmt.Errorf("no breakpoint on %v", args[0])
	}
	return nil, nil
}

func (disableBreakCommand) DocString() string {
	return "Temporarily disables the breakpoint on a named Lisp function."
}

// enablebreak
// ===========

type enableBreakCommand struct{}

func (enableBreakCommand) Run(d Debugger, args []string) (interface{}, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("need a Lisp function name")
	}
	if !d.EnableBreak(args[0]) {
		return nil, fmt.Errorf("no breakpoint on %v", args[0])
	}
	return nil, nil
}

func (enableBreakCommand) DocString() string {
	return "Re-arms a previously disabled breakpoint on a named Lisp function."
}

// backtrace
// =========

type backtraceCommand struct{}

func (backtraceCommand) Run(d Debugger, args []string) (interface{}, error) {
	full := len(args) > 0 && strings.EqualFold(args[0], "full")
	return d.Backtrace(full), nil
}

func (backtraceCommand) DocString() string {
	return "Shows the Lisp call stack. Pass \"full\" to walk the real inferior stack instead of the navigation engine's own virtual one."
}

// step
// ====

type stepCommand struct{}

func (stepCommand) Run(d Debugger, args []string) (interface{}, error) { return nil, d.Step() }

func (stepCommand) DocString() string {
	return "Steps into the next argument, body, or finish site of the current frame."
}

// next
// ====

type nextCommand struct{}

func (nextCommand) Run(d Debugger, args []string) (interface{}, error) { return nil, d.Next() }

func (nextCommand) DocString() string {
	return "Steps over arguments, stopping only at body and finish sites."
}

// up
// ==

type upCommand struct{}

func (upCommand) Run(d Debugger, args []string) (interface{}, error) { return nil, d.Up() }

func (upCommand) DocString() string {
	return "Runs until the current frame's Lisp call returns."
}

// continue
// ========

type continueCommand struct{}

func (continueCommand) Run(d Debugger, args []string) (interface{}, error) { return nil, d.Continue() }

func (continueCommand) DocString() string {
	return "Resumes execution past the current frame. With no Lisp frame, resumes the raw inferior only while a breakpoint is armed or a recovery is pending; otherwise it is rejected."
}
