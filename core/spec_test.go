/* Copyright 2024 Comcast Cable Communications Management, LLC
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 * http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package core

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/Comcast/patmatch/match"
)

// funcs is an Interpreter whose code is the name of a Go function.
type funcs map[string]func(bs *match.Bindings) interface{}

func (fs funcs) Compile(ctx context.Context, code interface{}) (interface{}, error) {
	s, is := code.(string)
	if !is {
		return nil, fmt.Errorf("bad code %#v", code)
	}
	f, have := fs[s]
	if !have {
		return nil, fmt.Errorf("unknown function %q", s)
	}
	return f, nil
}

func (fs funcs) Exec(ctx context.Context, bs *match.Bindings, code interface{}, compiled interface{}) (interface{}, error) {
	f, is := compiled.(func(bs *match.Bindings) interface{})
	if !is {
		return nil, fmt.Errorf("bad compilation %T", compiled)
	}
	return f(bs), nil
}

var testInterpreters = InterpretersMap{
	"go": funcs{
		"small": func(bs *match.Bindings) interface{} {
			x, _ := bs.Get("n")
			n, is := x.(int)
			return is && n < 10
		},
		"n": func(bs *match.Bindings) interface{} {
			x, _ := bs.Get("n")
			return x
		},
		"size": func(bs *match.Bindings) interface{} {
			return bs.Len()
		},
	},
}

const testSpecYAML = `
name: sizes
doc: Says something about numbers.
types:
  - name: Pair
    arity: 2
clauses:
  - doc: Small numbers are returned as is.
    pattern: "?n"
    guard:
      interpreter: go
      source: small
    action:
      interpreter: go
      source: n
  - pattern:
      isa: Int
    action:
      interpreter: go
      source: size
  - pattern:
      tag: Pair
      args: ["?a", "?a"]
    action:
      interpreter: go
      source: size
`

func TestSpecParseCompileEvaluate(t *testing.T) {
	ctx := context.Background()

	spec, err := ParseSpec([]byte(testSpecYAML))
	if err != nil {
		t.Fatal(err)
	}
	if spec.Name != "sizes" || len(spec.Clauses) != 3 || len(spec.Types) != 1 {
		t.Fatalf("bad spec %#v", spec)
	}

	if _, err = spec.Evaluate(ctx, 3); err == nil {
		t.Fatal("uncompiled spec evaluated")
	} else if _, is := err.(*SpecNotCompiled); !is {
		t.Fatalf("surprised by %v", err)
	}

	if err = spec.Compile(ctx, testInterpreters, true); err != nil {
		t.Fatal(err)
	}

	r, err := spec.Evaluate(ctx, 3)
	if err != nil {
		t.Fatal(err)
	}
	if r.Clause != 0 || r.Value != 3 {
		t.Fatalf("got %d %v", r.Clause, r.Value)
	}

	if r, err = spec.Evaluate(ctx, 30); err != nil {
		t.Fatal(err)
	}
	if r.Clause != 1 || r.Value != 0 {
		t.Fatalf("got %d %v", r.Clause, r.Value)
	}

	if r, err = spec.Evaluate(ctx, match.NewData("Pair", "x", "x")); err != nil {
		t.Fatal(err)
	}
	if r.Clause != 2 || r.Value != 1 {
		t.Fatalf("got %d %v", r.Clause, r.Value)
	}

	if _, err = spec.Evaluate(ctx, match.NewData("Pair", "x", "y")); !errors.Is(err, NoMatch) {
		t.Fatalf("wanted NoMatch, not %v", err)
	}

	bs, err := spec.Match(ctx, 30)
	if err != nil {
		t.Fatal(err)
	}
	if bs.Len() != 0 {
		t.Fatalf("bad bindings %s", bs)
	}
}

func TestSpecCompileErrors(t *testing.T) {
	ctx := context.Background()
	for i, c := range []struct {
		clause *ClauseSource
		reason string
	}{
		{nil, "nil clause"},
		{&ClauseSource{Pattern: "?x"}, "no action"},
		{&ClauseSource{Pattern: "?x", Action: &ActionSource{Interpreter: "go", Source: "nope"}}, "action"},
		{&ClauseSource{Pattern: "?x", Action: &ActionSource{Interpreter: "lisp", Source: "n"}}, "action"},
		{&ClauseSource{Pattern: "?x", Guard: &ActionSource{Interpreter: "go", Source: 42}, Action: &ActionSource{Interpreter: "go", Source: "n"}}, "guard"},
		{&ClauseSource{Pattern: "?x...", Action: &ActionSource{Interpreter: "go", Source: "n"}}, "pattern"},
		{&ClauseSource{Pattern: map[string]interface{}{"range": []interface{}{1}}, Action: &ActionSource{Interpreter: "go", Source: "n"}}, "pattern"},
	} {
		spec := &Spec{
			Name:    "bad",
			Clauses: []*ClauseSource{c.clause},
		}
		err := spec.Compile(ctx, testInterpreters, true)
		var bad *BadClause
		if !errors.As(err, &bad) {
			t.Fatalf("%d: wanted a BadClause, not %v", i, err)
		}
		if bad.Reason != c.reason {
			t.Fatalf("%d: wanted reason %q, not %q (%v)", i, c.reason, bad.Reason, err)
		}
	}

	spec := &Spec{
		Clauses: []*ClauseSource{
			{Pattern: "?x", Action: &ActionSource{Interpreter: "lisp", Source: "n"}},
		},
	}
	if err := spec.Compile(ctx, testInterpreters, true); !errors.Is(err, InterpreterNotFound) {
		t.Fatalf("wanted InterpreterNotFound, not %v", err)
	}
}

func TestSpecPatternSyntax(t *testing.T) {
	ctx := context.Background()
	spec := &Spec{
		PatternSyntax: "json",
		Clauses: []*ClauseSource{
			{
				Pattern: `["?n", "?..."]`,
				Action:  &ActionSource{Interpreter: "go", Source: "n"},
			},
		},
	}
	if err := spec.Compile(ctx, testInterpreters, true); err != nil {
		t.Fatal(err)
	}
	r, err := spec.Evaluate(ctx, []interface{}{"first", 2, 3})
	if err != nil {
		t.Fatal(err)
	}
	if r.Value != "first" {
		t.Fatalf("got %v", r.Value)
	}

	spec.PatternSyntax = "lisp"
	if err = spec.Compile(ctx, testInterpreters, false); err != nil {
		t.Fatal("recompiled without force")
	}
	if err = spec.Compile(ctx, testInterpreters, true); err == nil {
		t.Fatal("unknown syntax compiled")
	}
}

func TestSpecComputeId(t *testing.T) {
	a, err := ParseSpec([]byte(testSpecYAML))
	if err != nil {
		t.Fatal(err)
	}
	id, err := a.ComputeId()
	if err != nil {
		t.Fatal(err)
	}
	if len(id) != 64 {
		t.Fatalf("strange id %q", id)
	}

	b := a.Copy("")
	b.Id = "something else"
	if other, err := b.ComputeId(); err != nil {
		t.Fatal(err)
	} else if other != id {
		t.Fatalf("id depends on Id: %s != %s", other, id)
	}

	b.Clauses[0].Doc = "Changed"
	if other, err := b.ComputeId(); err != nil {
		t.Fatal(err)
	} else if other == id {
		t.Fatal("id didn't change")
	}
}

func TestUpdatableSpec(t *testing.T) {
	ctx := context.Background()
	s1, err := ParseSpec([]byte(testSpecYAML))
	if err != nil {
		t.Fatal(err)
	}
	if err = s1.Compile(ctx, testInterpreters, false); err != nil {
		t.Fatal(err)
	}
	u := NewUpdatableSpec(s1)

	s2 := s1.Copy("2")
	if err = u.SetSpec(s2); err == nil {
		t.Fatal("uncompiled spec accepted")
	}
	if err = s2.Compile(ctx, testInterpreters, false); err != nil {
		t.Fatal(err)
	}
	if err = u.SetSpec(s2); err != nil {
		t.Fatal(err)
	}
	if u.Spec().Version != "2" {
		t.Fatalf("bad version %q", u.Spec().Version)
	}

	var s Specter = s1
	if s.Spec() != s1 {
		t.Fatal("a Spec isn't its own Specter")
	}
}

func TestShapesSpecShape(t *testing.T) {
	spec := ShapesSpec()
	m := spec.Matcher()
	if !m.Types.IsA("Circle", "Shape") {
		t.Fatal("Circle isn't a Shape")
	}
	for i, c := range spec.Clauses {
		p, err := DefaultPatternParser(spec.PatternSyntax, c.Pattern)
		if err != nil {
			t.Fatalf("%d: %s", i, err)
		}
		if err = m.Validate(p); err != nil {
			t.Fatalf("%d: %s", i, err)
		}
	}
}
