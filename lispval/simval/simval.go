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
Package simval is a reference lispval.Value implementation backed by
plain Go data, used to drive an in-memory simulated inferior in tests
(see hostdbg/fakehost). It is not meant for production use; a real
host adapter decodes lispval.Value from actual inferior memory.
*/
package simval

import (
	"fmt"
	"strconv"

	"devt.de/krotik/lispnav/lispval"
)

/*
Nil is the canonical empty-list / false value.
*/
var Nil = &value{kind: lispval.KindSymbol, sym: "nil", nilp: true}

/*
value is the concrete, in-memory backing for a simulated Lisp datum.
Only the fields relevant to its Kind are populated.
*/
type value struct {
	kind lispval.ValueKind
	nilp bool

	sym string
	i   int64
	f   float64
	s   string

	car, cdr lispval.Value

	vec []lispval.Value

	subr lispval.SubrInfo
}

/*
Symbol builds a symbol value. Use Nil for the canonical empty list.
*/
func Symbol(name string) lispval.Value {
	return &value{kind: lispval.KindSymbol, sym: name}
}

/*
Int builds a fixnum value.
*/
func Int(i int64) lispval.Value {
	return &value{kind: lispval.KindInt, i: i}
}

/*
Float builds a float value.
*/
func Float(f float64) lispval.Value {
	return &value{kind: lispval.KindFloat, f: f}
}

/*
Str builds a string value.
*/
func Str(s string) lispval.Value {
	return &value{kind: lispval.KindString, s: s}
}

/*
Cons builds a cons cell.
*/
func Cons(car, cdr lispval.Value) lispval.Value {
	return &value{kind: lispval.KindCons, car: car, cdr: cdr}
}

/*
List builds a proper list out of the given elements, terminated by
Nil.
*/
func List(elems ...lispval.Value) lispval.Value {
	if len(elems) == 0 {
		return Nil
	}
	return Cons(elems[0], List(elems[1:]...))
}

/*
Vector builds a vector value.
*/
func Vector(elems ...lispval.Value) lispval.Value {
	return &value{kind: lispval.KindVector, vec: elems}
}

/*
Subr builds a subroutine descriptor value. The implementation location
is derived as "F" followed by the Lisp name, following the evaluator's
naming convention for primitive C functions (car is implemented by
Fcar).
*/
func Subr(name string, minArgs, maxArgs int) lispval.Value {
	return &value{kind: lispval.KindSubr, subr: lispval.SubrInfo{
		Name: name, MinArgs: minArgs, MaxArgs: maxArgs, Func: "F" + name,
	}}
}

func (v *value) Kind() lispval.ValueKind { return v.kind }

func (v *value) IsNil() bool { return v.nilp }

func (v *value) Symbol() (string, bool) {
	if v.kind != lispval.KindSymbol {
		return "", false
	}
	return v.sym, true
}

func (v *value) Int() (int64, bool) {
	if v.kind != lispval.KindInt {
		return 0, false
	}
	return v.i, true
}

func (v *value) Pair() (lispval.Value, lispval.Value, bool) {
	if v.kind != lispval.KindCons {
		return nil, nil, false
	}
	return v.car, v.cdr, true
}

func (v *value) Float() (float64, bool) {
	if v.kind != lispval.KindFloat {
		return 0, false
	}
	return v.f, true
}

func (v *value) Str() (string, bool) {
	if v.kind != lispval.KindString {
		return "", false
	}
	return v.s, true
}

func (v *value) Vector() ([]lispval.Value, bool) {
	if v.kind != lispval.KindVector {
		return nil, false
	}
	return v.vec, true
}

func (v *value) Subr() (lispval.SubrInfo, bool) {
	if v.kind != lispval.KindSubr {
		return lispval.SubrInfo{}, false
	}
	return v.subr, true
}

func (v *value) Render() string {
	switch v.kind {
	case lispval.KindSymbol:
		if v.nilp {
			return "nil"
		}
		return v.sym
	case lispval.KindInt:
		return strconv.FormatInt(v.i, 10)
	case lispval.KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case lispval.KindString:
		return strconv.Quote(v.s)
	case lispval.KindCons:
		return fmt.Sprintf("(%s . %s)", v.car.Render(), v.cdr.Render())
	case lispval.KindVector:
		return fmt.Sprintf("%v", v.vec)
	case lispval.KindSubr:
		return fmt.Sprintf("#<subr %s>", v.subr.Name)
	}
	return "#<vectorlike>"
}
