/*
 * LispNav
 *
 * Copyright 2020 Matthias Ladkau. All rights reserved.
 *
 * This Source Code Form is subject to the terms of the MIT
 * License, If a copy of the MIT License was not distributed with this
 * file, You can obtain one at https://opensource.org/licenses/MIT.
 */

package util

import (
	"encoding/json"
	"testing"
)

func TestRuntimeError(t *testing.T) {

	err1 := NewRuntimeError(ErrInvalidArgs, "bar")

	if err1.Error() != "navigation engine error: could not extract arguments from frame (bar)" {
		t.Error("Unexpected result:", err1)
		return
	}

	if !err1.(*RuntimeError).Recoverable() {
		t.Error("ErrInvalidArgs should be recoverable")
		return
	}

	err2 := NewRuntimeError(ErrUnexpectedStop, "breakpoint id 17 unknown")

	if err2.(*RuntimeError).Recoverable() {
		t.Error("ErrUnexpectedStop should not be recoverable")
		return
	}

	err3 := NewRuntimeError(ErrOutOfSync, "top frame mismatch")

	err3.(TraceableRuntimeError).AddTrace("[foo] EVAL@ARG")
	err3.(TraceableRuntimeError).AddTrace("[bar] LAMBDA@BODY")
	err3.(TraceableRuntimeError).AddTrace("[baz] SUBR@CALL")

	trace := err3.(TraceableRuntimeError).GetTrace()
	if len(trace) != 3 || trace[0] != "[foo] EVAL@ARG" || trace[2] != "[baz] SUBR@CALL" {
		t.Error("Unexpected trace:", trace)
		return
	}

	res, _ := json.MarshalIndent(err3, "", "  ")
	if string(res) != `{
  "Detail": "top frame mismatch",
  "Trace": [
    "[foo] EVAL@ARG",
    "[bar] LAMBDA@BODY",
    "[baz] SUBR@CALL"
  ],
  "Type": "virtual stack out of sync with inferior stack"
}` {
		t.Error("Unexpected result:", string(res))
		return
	}

	err4 := &RuntimeErrorWithDetail{
		RuntimeError: err3.(*RuntimeError),
		Snapshot:     map[string]interface{}{"depth": 3},
		Data:         "id17",
	}

	res, _ = json.MarshalIndent(err4, "", "  ")
	if string(res) != `{
  "Data": "id17",
  "Detail": "top frame mismatch",
  "Snapshot": {
    "depth": 3
  },
  "Trace": [
    "[foo] EVAL@ARG",
    "[bar] LAMBDA@BODY",
    "[baz] SUBR@CALL"
  ],
  "Type": "virtual stack out of sync with inferior stack"
}` {
		t.Error("Unexpected result:", string(res))
		return
	}
}
