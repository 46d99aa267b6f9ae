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
Package util contains utility definitions and functions for the Lisp
navigation engine.
*/
package util

import (
	"encoding/json"
	"errors"
	"fmt"
)

/*
TraceableRuntimeError can record and show a trace of virtual Lisp frames.
*/
type TraceableRuntimeError interface {
	error

	/*
		AddTrace adds a trace step. A step is a rendered description of a
		virtual Lisp frame (e.g. "eval(foo) : Eval @ARG").
	*/
	AddTrace(frame string)

	/*
		GetTrace returns the current virtual-stack trace, in the order
		the steps were added.
	*/
	GetTrace() []string
}

/*
RuntimeError is an engine-detected condition from the error taxonomy of
the navigation engine.
*/
type RuntimeError struct {
	Type   error    // Error type (used for equal checks)
	Detail string   // Details of this error
	Trace  []string // Virtual-stack trace at the time of the error
}

/*
Engine error types.
*/
var (

	// ErrInvalidEntry signals that an operation assumed the inferior was
	// stopped at a recognised entry point but it was not.
	ErrInvalidEntry = errors.New("not at a recognised Lisp entry point")

	// ErrInvalidArgs signals that argument extraction from the inferior
	// frame faulted; the caller substitutes placeholder arguments.
	ErrInvalidArgs = errors.New("could not extract arguments from frame")

	// ErrUnexpectedStop signals a stop event carrying no breakpoint the
	// engine recognises.
	ErrUnexpectedStop = errors.New("stop event matched no known breakpoint")

	// ErrOutOfSync signals that the virtual stack's top frame does not
	// match the real inferior stack; triggers a rebuild.
	ErrOutOfSync = errors.New("virtual stack out of sync with inferior stack")

	// ErrUserAbort signals the user declined a destructive, session-wide
	// action (e.g. teardown).
	ErrUserAbort = errors.New("user declined the requested action")
)

/*
NewRuntimeError creates a new RuntimeError object.
*/
func NewRuntimeError(t error, detail string) error {
	return &RuntimeError{t, detail, nil}
}

/*
Error returns a human-readable string representation of this error.
*/
func (re *RuntimeError) Error() string {
	return fmt.Sprintf("navigation engine error: %v (%v)", re.Type, re.Detail)
}

/*
AddTrace adds a trace step.
*/
func (re *RuntimeError) AddTrace(frame string) {
	re.Trace = append(re.Trace, frame)
}

/*
GetTrace returns the current virtual-stack trace.
*/
func (re *RuntimeError) GetTrace() []string {
	return re.Trace
}

/*
Recoverable reports whether the engine's error policy recovers locally
from this condition (InvalidArgs substitutes placeholders, OutOfSync
triggers a rebuild) rather than merely reporting and continuing.
*/
func (re *RuntimeError) Recoverable() bool {
	return re.Type == ErrInvalidArgs || re.Type == ErrOutOfSync
}

/*
ToJSONObject returns this RuntimeError as a JSON object.
*/
func (re *RuntimeError) ToJSONObject() map[string]interface{} {
	t := ""
	if re.Type != nil {
		t = re.Type.Error()
	}
	return map[string]interface{}{
		"Type":   t,
		"Detail": re.Detail,
		"Trace":  re.Trace,
	}
}

/*
MarshalJSON serializes this RuntimeError into a JSON string.
*/
func (re *RuntimeError) MarshalJSON() ([]byte, error) {
	return json.Marshal(re.ToJSONObject())
}

/*
RuntimeErrorWithDetail is a runtime error with an additional snapshot of
engine state (the frame stack and any payload useful for diagnosis)
attached at the point the error was raised.
*/
type RuntimeErrorWithDetail struct {
	*RuntimeError
	Snapshot map[string]interface{}
	Data     interface{}
}

/*
ToJSONObject returns this RuntimeErrorWithDetail and all its children as a JSON object.
*/
func (re *RuntimeErrorWithDetail) ToJSONObject() map[string]interface{} {
	res := re.RuntimeError.ToJSONObject()
	s := map[string]interface{}{}
	if re.Snapshot != nil {
		s = re.Snapshot
	}
	res["Snapshot"] = s
	res["Data"] = re.Data
	return res
}

/*
MarshalJSON serializes this RuntimeErrorWithDetail into a JSON string.
*/
func (re *RuntimeErrorWithDetail) MarshalJSON() ([]byte, error) {
	return json.Marshal(re.ToJSONObject())
}
