/*
 * LispNav
 *
 * Copyright 2020 Matthias Ladkau. All rights reserved.
 *
 * This Source Code Form is subject to the terms of the MIT
 * License, If a copy of the MIT License was not distributed with this
 * file, You can obtain one at https://opensource.org/licenses/MIT.
 */

package lispfunc

import (
	"testing"

	"devt.de/krotik/lispnav/hostdbg/fakehost"
	"devt.de/krotik/lispnav/lispval"
	"devt.de/krotik/lispnav/lispval/simval"
)

func TestEvalConsForm(t *testing.T) {
	h := fakehost.New()
	f := h.EnterFrame("eval_sub", map[string]lispval.Value{
		"form": simval.List(simval.Symbol("foo"), simval.Int(1), simval.Int(2)),
	})

	ev, err := NewEval(f)
	if err != nil {
		t.Fatal(err)
	}

	if ev.Name() != "foo" {
		t.Error("Unexpected name:", ev.Name())
	}

	args := ev.ArgsList()
	if len(args) != 2 {
		t.Fatal("Unexpected number of args:", len(args))
	}
	if args[0].Symbol() != "0" || args[1].Symbol() != "1" {
		t.Error("Unexpected arg symbols:", args[0].Symbol(), args[1].Symbol())
	}
	if i, _ := args[0].Value().Int(); i != 1 {
		t.Error("Unexpected first arg value:", i)
	}
}

func TestEvalNonConsForm(t *testing.T) {
	h := fakehost.New()
	f := h.EnterFrame("eval_sub", map[string]lispval.Value{
		"form": simval.Int(42),
	})

	ev, err := NewEval(f)
	if err != nil {
		t.Fatal(err)
	}

	if ev.Name() != "42" {
		t.Error("Unexpected name:", ev.Name())
	}
	if args := ev.ArgsList(); args != nil {
		t.Error("Expected no args for a non-cons form, got:", args)
	}
}

func TestLambdaCompiled(t *testing.T) {
	h := fakehost.New()
	f := h.EnterFrame("funcall_lambda", map[string]lispval.Value{
		"fun":        simval.Symbol("some-opaque-closure"),
		"nargs":      simval.Int(2),
		"arg_vector": simval.Vector(simval.Int(1), simval.Int(2)),
	})

	l, err := NewLambda(f)
	if err != nil {
		t.Fatal(err)
	}

	if !l.Compiled() {
		t.Error("Expected a compiled lambda")
	}
	if l.Name() != "**compiled**" {
		t.Error("Unexpected name:", l.Name())
	}
	if _, ok := l.LexicalEnv(); ok {
		t.Error("Did not expect a lexical environment")
	}

	args := l.ArgsList()
	if len(args) != 2 {
		t.Fatal("Unexpected number of args:", len(args))
	}
}

func TestLambdaRicherVariant(t *testing.T) {
	h := fakehost.New()
	env := simval.Symbol("env1")
	params := simval.List(simval.Symbol("a"), simval.Symbol("b"))
	body := simval.List(simval.Symbol("progn"))

	f := h.EnterFrame("funcall_lambda", map[string]lispval.Value{
		"fun":        simval.List(env, params, body, simval.Symbol("doc")),
		"nargs":      simval.Int(0),
		"arg_vector": simval.Vector(),
	})

	l, err := NewLambda(f)
	if err != nil {
		t.Fatal(err)
	}

	if l.Compiled() {
		t.Error("Expected the richer, non-compiled variant")
	}
	if l.Name() != "**lambda**" {
		t.Error("Unexpected name:", l.Name())
	}

	lex, ok := l.LexicalEnv()
	if !ok {
		t.Fatal("Expected a lexical environment")
	}
	if sym, _ := lex.Symbol(); sym != "env1" {
		t.Error("Unexpected lexical environment:", sym)
	}
	if l.ParamList() != params {
		t.Error("Unexpected param list")
	}
	if l.Body() != body {
		t.Error("Unexpected body")
	}
}

func TestLambdaArgFault(t *testing.T) {
	h := fakehost.New()
	f := h.EnterFrame("funcall_lambda", map[string]lispval.Value{
		"fun":   simval.Symbol("some-opaque-closure"),
		"nargs": simval.Int(3),
		// arg_vector deliberately missing to simulate a memory fault
	})

	l, err := NewLambda(f)
	if err != nil {
		t.Fatal(err)
	}

	args := l.ArgsList()
	if len(args) != 3 {
		t.Fatal("Unexpected number of placeholder args:", len(args))
	}
	for i, a := range args {
		ph, ok := a.(PlaceholderArg)
		if !ok || ph.Index != i {
			t.Error("Expected a placeholder arg at index", i, "got", a)
		}
		if a.Value() != nil {
			t.Error("Placeholder arg should have a nil value")
		}
	}
}

func TestSubr(t *testing.T) {
	h := fakehost.New()
	f := h.EnterFrame("funcall_subr", map[string]lispval.Value{
		"subr":    simval.Subr("car", 1, 1),
		"numargs": simval.Int(1),
		"args":    simval.Vector(simval.Symbol("x")),
	})

	s, err := NewSubr(f)
	if err != nil {
		t.Fatal(err)
	}

	if s.Name() != "car" {
		t.Error("Unexpected name:", s.Name())
	}
	if s.Info.Func != "Fcar" {
		t.Error("Unexpected implementation location:", s.Info.Func)
	}

	args := s.ArgsList()
	if len(args) != 1 {
		t.Fatal("Unexpected number of args:", len(args))
	}
	if sym, _ := args[0].Value().Symbol(); sym != "x" {
		t.Error("Unexpected arg value:", sym)
	}
}

func TestSubrArgFault(t *testing.T) {
	h := fakehost.New()
	f := h.EnterFrame("funcall_subr", map[string]lispval.Value{
		"subr":    simval.Subr("car", 1, 1),
		"numargs": simval.Int(1),
		// args deliberately missing
	})

	s, err := NewSubr(f)
	if err != nil {
		t.Fatal(err)
	}

	args := s.ArgsList()
	if len(args) != 1 {
		t.Fatal("Unexpected number of placeholder args:", len(args))
	}
	if _, ok := args[0].(PlaceholderArg); !ok {
		t.Error("Expected a placeholder arg")
	}
}
