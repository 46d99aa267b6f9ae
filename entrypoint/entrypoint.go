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
Package entrypoint enumerates the C evaluator functions the navigation
engine treats as Lisp-level call boundaries and maps each to the Frame
variant it produces.
*/
package entrypoint

/*
FrameKind is the closed set of Frame variants a recognised entry point
can produce.
*/
type FrameKind int

/*
Recognised Frame variants.
*/
const (
	KindEval FrameKind = iota
	KindLambda
	KindSubr
)

/*
String returns a human-readable name for a FrameKind.
*/
func (k FrameKind) String() string {
	switch k {
	case KindEval:
		return "Eval"
	case KindLambda:
		return "Lambda"
	case KindSubr:
		return "Subr"
	}
	return "Unknown"
}

/*
Recognised entry-point function names inside the evaluator.
*/
const (
	EvalSub       = "eval_sub"
	FuncallLambda = "funcall_lambda"
	FuncallSubr   = "funcall_subr"
)

/*
entryPoints maps each recognised evaluator entry function to the Frame
variant entering it produces.
*/
var entryPoints = map[string]FrameKind{
	EvalSub:       KindEval,
	FuncallLambda: KindLambda,
	FuncallSubr:   KindSubr,
}

/*
IsRecognised reports whether name is one of the three entry points the
engine watches for.
*/
func IsRecognised(name string) bool {
	_, ok := entryPoints[name]
	return ok
}

/*
VariantFor returns the Frame variant a given entry-point name produces.
The second return value is false if name is not recognised.
*/
func VariantFor(name string) (FrameKind, bool) {
	k, ok := entryPoints[name]
	return k, ok
}

/*
Names returns the recognised entry-point symbol names, in the order
EvalSub, FuncallLambda, FuncallSubr.
*/
func Names() []string {
	return []string{EvalSub, FuncallLambda, FuncallSubr}
}
