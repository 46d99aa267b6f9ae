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
Package lispfunc derives a Lisp-level view of the function currently
being invoked from a single stopped inferior frame known to sit at a
recognised entry point (see package entrypoint). It has three closed
variants — Eval, Lambda, Subr — one per recognised entry point.
*/
package lispfunc

import (
	"fmt"
	"strconv"

	"devt.de/krotik/lispnav/hostdbg"
	"devt.de/krotik/lispnav/lispval"
)

/*
FunctionView is the common surface of every Lisp function variant:
the callee's display name and its argument list.
*/
type FunctionView interface {
	Name() string
	ArgsList() []Arg
}

/*
Arg is a single argument binding at a call site: a display symbol (an
index for positional args) and the argument's decoded value.
*/
type Arg interface {
	Symbol() string
	Value() lispval.Value
}

/*
arg is the normal Arg implementation, backed by a successfully
extracted value.
*/
type arg struct {
	symbol string
	value  lispval.Value
}

func (a *arg) Symbol() string       { return a.symbol }
func (a *arg) Value() lispval.Value { return a.value }

/*
PlaceholderArg stands in for an argument whose extraction faulted.
Modelling the fault as an Arg variant (rather than returning an error
from ArgsList) keeps every consumer — in particular the backtrace
renderer — total: it never has to special-case a partially-failed
argument list.
*/
type PlaceholderArg struct {
	Index int
}

func (p PlaceholderArg) Symbol() string       { return strconv.Itoa(p.Index) }
func (p PlaceholderArg) Value() lispval.Value { return nil }

/*
Render returns a human-readable rendering of v, or "nil" for a nil
Value (used when a function view itself has no decodable form).
*/
func Render(v lispval.Value) string {
	if v == nil {
		return "nil"
	}
	return v.Render()
}

// Eval
// ====

/*
Eval is the function view at an eval_sub entry point: the form being
evaluated.
*/
type Eval struct {
	Form lispval.Value
}

/*
NewEval builds an Eval view from a frame stopped at eval_sub.
*/
func NewEval(frame hostdbg.InferiorFrame) (*Eval, error) {
	form, err := frame.ReadVar("form")
	if err != nil {
		return nil, err
	}
	return &Eval{Form: form}, nil
}

/*
Name returns the head of the form if it is a cons whose head is a
symbol; otherwise the form's own rendering (a bare literal standing in
as the "function" at this eval site).
*/
func (e *Eval) Name() string {
	if car, _, ok := e.Form.Pair(); ok {
		if sym, ok := car.Symbol(); ok {
			return sym
		}
	}
	return Render(e.Form)
}

/*
ArgsList returns the elements of the form's cdr (the unevaluated
argument forms), or nil if the form is not cons-shaped.
*/
func (e *Eval) ArgsList() []Arg {
	_, cdr, ok := e.Form.Pair()
	if !ok {
		return nil
	}

	var args []Arg
	i := 0
	for v := range lispval.Elements(cdr) {
		args = append(args, &arg{symbol: strconv.Itoa(i), value: v})
		i++
	}
	return args
}

// Lambda
// ======

/*
Lambda is the function view at a funcall_lambda entry point.

Two mutually incompatible behaviours exist for rendering a Lambda's
identity: one walks the callee's list structure to expose its lexical
environment, parameter list, and body; another only distinguishes a
compiled closure from an interpreted one. This preserves the richer
behaviour: when the callee is cons-shaped with 3 or 4 elements,
LexicalEnv/ParamList/Body are available; otherwise Compiled reports
whether it is a compiled closure.
*/
type Lambda struct {
	Fun   lispval.Value
	args  []lispval.Value
	nargs int64
	fault bool
}

/*
NewLambda builds a Lambda view from a frame stopped at funcall_lambda.
*/
func NewLambda(frame hostdbg.InferiorFrame) (*Lambda, error) {
	fun, err := frame.ReadVar("fun")
	if err != nil {
		return nil, err
	}

	nargsV, err := frame.ReadVar("nargs")
	if err != nil {
		return nil, err
	}
	nargs, ok := nargsV.Int()
	if !ok {
		return nil, fmt.Errorf("nargs is not an integer")
	}

	l := &Lambda{Fun: fun, nargs: nargs}

	argVec, err := frame.ReadVar("arg_vector")
	if err != nil {
		l.fault = true
		return l, nil
	}

	vec, ok := argVec.Vector()
	if !ok || int64(len(vec)) != nargs {
		l.fault = true
		return l, nil
	}

	l.args = vec
	return l, nil
}

/*
shape returns the callee's cons elements, or nil if it is not
cons-shaped.
*/
func (l *Lambda) shape() []lispval.Value {
	var elems []lispval.Value
	for v := range lispval.Elements(l.Fun) {
		elems = append(elems, v)
	}
	return elems
}

/*
Compiled reports whether the callee is an opaque compiled closure
(true) or a list-shaped lambda rich enough to expose LexicalEnv,
ParamList and Body (false).
*/
func (l *Lambda) Compiled() bool {
	n := len(l.shape())
	return n != 3 && n != 4
}

/*
LexicalEnv returns the lambda's captured lexical environment. Only
meaningful when the callee is a 4-element cons (env params . body).
*/
func (l *Lambda) LexicalEnv() (lispval.Value, bool) {
	elems := l.shape()
	if len(elems) == 4 {
		return elems[0], true
	}
	return nil, false
}

/*
ParamList returns the lambda's parameter list. Meaningful for a
3-element (params body docstring) or 4-element (env params body
docstring) cons.
*/
func (l *Lambda) ParamList() lispval.Value {
	elems := l.shape()
	switch len(elems) {
	case 4:
		return elems[1]
	case 3:
		return elems[0]
	}
	return nil
}

/*
Body returns the lambda's body form.
*/
func (l *Lambda) Body() lispval.Value {
	elems := l.shape()
	switch len(elems) {
	case 4:
		return elems[2]
	case 3:
		return elems[1]
	}
	return nil
}

/*
Name returns "**compiled**" for an opaque compiled closure, or
"**lambda**" for a list-shaped one.
*/
func (l *Lambda) Name() string {
	if l.Compiled() {
		return "**compiled**"
	}
	return "**lambda**"
}

/*
ArgsList returns the bound argument vector, or a placeholder list of
the declared length if extraction faulted.
*/
func (l *Lambda) ArgsList() []Arg {
	if l.fault {
		args := make([]Arg, l.nargs)
		for i := range args {
			args[i] = PlaceholderArg{Index: i}
		}
		return args
	}

	args := make([]Arg, len(l.args))
	for i, v := range l.args {
		args[i] = &arg{symbol: strconv.Itoa(i), value: v}
	}
	return args
}

// Subr
// ====

/*
Subr is the function view at a funcall_subr entry point: a built-in
primitive entered directly without going through eval_sub first.
*/
type Subr struct {
	Info  lispval.SubrInfo
	args  []lispval.Value
	nargs int64
	fault bool
}

/*
NewSubr builds a Subr view from a frame stopped at funcall_subr.
*/
func NewSubr(frame hostdbg.InferiorFrame) (*Subr, error) {
	subrVal, err := frame.ReadVar("subr")
	if err != nil {
		return nil, err
	}

	info, ok := subrVal.Subr()
	if !ok {
		return nil, fmt.Errorf("subr variable is not a subroutine descriptor")
	}

	nargsV, err := frame.ReadVar("numargs")
	if err != nil {
		return nil, err
	}
	nargs, ok := nargsV.Int()
	if !ok {
		return nil, fmt.Errorf("numargs is not an integer")
	}

	s := &Subr{Info: info, nargs: nargs}

	argsV, err := frame.ReadVar("args")
	if err != nil {
		s.fault = true
		return s, nil
	}

	vec, ok := argsV.Vector()
	if !ok || int64(len(vec)) != nargs {
		s.fault = true
		return s, nil
	}

	s.args = vec
	return s, nil
}

func (s *Subr) Name() string { return s.Info.Name }

/*
ArgsList returns the bound argument vector, or a placeholder list of
the declared length if extraction faulted.
*/
func (s *Subr) ArgsList() []Arg {
	if s.fault {
		args := make([]Arg, s.nargs)
		for i := range args {
			args[i] = PlaceholderArg{Index: i}
		}
		return args
	}

	args := make([]Arg, len(s.args))
	for i, v := range s.args {
		args[i] = &arg{symbol: strconv.Itoa(i), value: v}
	}
	return args
}
