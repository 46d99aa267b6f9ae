/*
 * LispNav
 *
 * Copyright 2020 Matthias Ladkau. All rights reserved.
 *
 * This Source Code Form is subject to the terms of the MIT
 * License, If a copy of the MIT License was not distributed with this
 * file, You can obtain one at https://opensource.org/licenses/MIT.
 */

package debugcmd

import (
	"devt.de/krotik/lispnav/backtrace"
	"devt.de/krotik/lispnav/breakpoint"
	"devt.de/krotik/lispnav/hostdbg"
	"devt.de/krotik/lispnav/lispfunc"
	"devt.de/krotik/lispnav/navigator"
)

/*
managerAdapter implements Debugger over a navigator.Manager and the
hostdbg.Host it was initialised with. The Manager alone has no notion
of expression evaluation or the real native stack; both come from the
host directly.
*/
type managerAdapter struct {
	m    *navigator.Manager
	host hostdbg.Host
}

/*
NewDebugger adapts m and host into a Debugger for debugcmd's commands.
*/
func NewDebugger(m *navigator.Manager, host hostdbg.Host) Debugger {
	return &managerAdapter{m: m, host: host}
}

func (a *managerAdapter) Break(name string) *breakpoint.UserBreakpoint { return a.m.Break(name) }
func (a *managerAdapter) RemoveBreak(name string) bool                 { return a.m.RemoveBreak(name) }
func (a *managerAdapter) DisableBreak(name string) bool                { return a.m.DisableBreak(name) }
func (a *managerAdapter) EnableBreak(name string) bool                 { return a.m.EnableBreak(name) }
func (a *managerAdapter) Breakpoints() []*breakpoint.UserBreakpoint    { return a.m.Breakpoints() }

func (a *managerAdapter) Step() error     { return a.m.Step() }
func (a *managerAdapter) Next() error     { return a.m.Next() }
func (a *managerAdapter) Up() error       { return a.m.Up() }
func (a *managerAdapter) Continue() error { return a.m.Continue() }

/*
Backtrace renders the virtual stack (full=false) or walks the real
inferior stack directly (full=true).
*/
func (a *managerAdapter) Backtrace(full bool) []backtrace.Entry {
	if full {
		return backtrace.Full(a.host)
	}
	return backtrace.Render(a.m.Stack())
}

/*
Print evaluates expr in the context of the currently selected inferior
frame and renders the result the way the inferior's own printer would.
*/
func (a *managerAdapter) Print(expr string) (string, error) {
	v, err := a.host.EvalExpr(expr)
	if err != nil {
		return "", err
	}
	return lispfunc.Render(v), nil
}
