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
Package lispval models the tagged-union Lisp datum the navigation
engine observes in inferior memory: a reference to a native value that
classifies into one of a small set of variants (symbol, integer,
cons-pair, float, string, vector, subroutine, or an opaque vector-like
residual).

The engine never constructs a Value itself — it is handed one by a
hostdbg.InferiorFrame.ReadVar call or a cons traversal, and only ever
reads it through this interface. A concrete implementation lives
outside this package (see lispval/simval for a reference one used by
tests).
*/
package lispval

import "iter"

/*
ValueKind is the closed set of Lisp datum variants this adapter
classifies a raw inferior value into.
*/
type ValueKind int

/*
Recognised value variants.
*/
const (
	KindSymbol ValueKind = iota
	KindInt
	KindCons
	KindFloat
	KindString
	KindVector
	KindSubr
	KindVectorlike
)

/*
SubrInfo describes a subroutine (built-in primitive) descriptor: its
Lisp-visible name, how many arguments it expects, and where its C
implementation lives. MinArgs/MaxArgs follow the evaluator's own
UNEVALLED/MANY sentinels: a MaxArgs of -1 means MANY (variadic), and a
MinArgs/MaxArgs pair of (-2,-2) means UNEVALLED (the subr receives the
unevaluated argument list as a single cons). Func is the descriptor's
function-pointer target as a location the host debugger can break on
(a function name or a raw address).
*/
type SubrInfo struct {
	Name    string
	MinArgs int
	MaxArgs int
	Func    string
}

/*
Subr argument-count sentinels, mirroring the evaluator's own constants.
*/
const (
	SubrUnevalled = -2
	SubrMany      = -1
)

/*
Value is a classified reference to a single Lisp datum living in
inferior memory. Exactly one Kind-appropriate accessor returns ok=true;
the others return the zero value and ok=false.
*/
type Value interface {

	/*
		Kind reports which variant this value classifies as.
	*/
	Kind() ValueKind

	/*
		IsNil reports whether this value is the empty list / false
		symbol. Meaningful for any Kind, not just KindSymbol.
	*/
	IsNil() bool

	/*
		Symbol returns the symbol's name if Kind() == KindSymbol.
	*/
	Symbol() (string, bool)

	/*
		Int returns the fixnum's value if Kind() == KindInt.
	*/
	Int() (int64, bool)

	/*
		Pair returns the car/cdr of a cons cell if Kind() == KindCons.
	*/
	Pair() (car, cdr Value, ok bool)

	/*
		Float returns the float's value if Kind() == KindFloat.
	*/
	Float() (float64, bool)

	/*
		Str returns the string's contents if Kind() == KindString.
	*/
	Str() (string, bool)

	/*
		Vector returns a vector's elements if Kind() == KindVector.
	*/
	Vector() ([]Value, bool)

	/*
		Subr returns a subroutine's descriptor if Kind() == KindSubr.
	*/
	Subr() (SubrInfo, bool)

	/*
		Render returns a human-readable rendering of this value,
		analogous to the inferior's own printer, used when a display
		name is needed for a value that is not a symbol (e.g. a bare
		literal list standing in as the "function" at an eval site).
	*/
	Render() string
}

/*
Elements lazily walks a cons list, yielding each car in order. It stops
at the first nil tail (a proper list). If the list is improper — the
final cdr is neither nil nor a cons — the non-nil, non-pair tail is
yielded once more as a trailing element rather than looping forever,
a case real argument lists occasionally present (dotted parameter
lists) that a naive proper-list walk would otherwise drop silently.

Elements yields nothing if v itself is not cons-shaped.
*/
func Elements(v Value) iter.Seq[Value] {
	return func(yield func(Value) bool) {
		cur := v

		for {
			car, cdr, ok := cur.Pair()
			if !ok {
				return
			}

			if !yield(car) {
				return
			}

			if cdr.IsNil() {
				return
			}

			if _, _, ok := cdr.Pair(); !ok {
				// improper list: surface the dangling tail once more
				yield(cdr)
				return
			}

			cur = cdr
		}
	}
}
