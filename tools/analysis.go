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

package tools

import (
	"fmt"
	"sort"

	"github.com/Comcast/patmatch/core"
	"github.com/Comcast/patmatch/match"
)

// ClauseAnalysis summarizes one clause.
type ClauseAnalysis struct {
	Pattern   string   `json:"pattern,omitempty"`
	Variables []string `json:"variables"`
	Guard     bool     `json:"guard,omitempty"`
}

// SpecAnalysis summarizes a Spec without compiling its guards or
// actions.
type SpecAnalysis struct {
	spec *core.Spec

	Errors       []string          `json:"errors,omitempty"`
	Clauses      []*ClauseAnalysis `json:"clauses"`
	Guards       int               `json:"guards"`
	Actions      int               `json:"actions"`
	Interpreters []string          `json:"interpreters"`

	// UndeclaredTypes are type names used in patterns that
	// neither the Spec nor match.DefaultTypes declares.
	UndeclaredTypes []string `json:"undeclaredTypes,omitempty"`
}

// Analyze decodes and validates each clause's pattern and reports
// what the clauses use.
//
// Problems go into Errors rather than being returned.
func Analyze(s *core.Spec) (*SpecAnalysis, error) {
	a := SpecAnalysis{
		spec:    s,
		Errors:  make([]string, 0, 8),
		Clauses: make([]*ClauseAnalysis, 0, len(s.Clauses)),
	}

	parser := s.PatternParser
	if parser == nil {
		parser = core.DefaultPatternParser
	}
	m := s.Matcher()

	interpreters, undeclared := make(map[string]bool), make(map[string]bool)

	for i, c := range s.Clauses {
		if c == nil {
			a.Errors = append(a.Errors, fmt.Sprintf("clause %d: nil", i))
			continue
		}
		ca := &ClauseAnalysis{
			Variables: []string{},
		}
		a.Clauses = append(a.Clauses, ca)

		if c.Guard != nil {
			a.Guards++
			ca.Guard = true
			interpreters[c.Guard.Interpreter] = true
		}
		if c.Action != nil {
			a.Actions++
			interpreters[c.Action.Interpreter] = true
		} else {
			a.Errors = append(a.Errors, fmt.Sprintf("clause %d: no action", i))
		}

		p, err := parser(s.PatternSyntax, c.Pattern)
		if err == nil {
			err = m.Validate(p)
		}
		if err != nil {
			a.Errors = append(a.Errors, fmt.Sprintf("clause %d: %s", i, err))
			continue
		}
		ca.Pattern = p.String()
		ca.Variables = match.Variables(p)
		for _, t := range typeNames(p) {
			if _, have := m.Types.Parent(t); !have && t != match.TypeAny {
				undeclared[t] = true
			}
		}
	}

	a.Interpreters = keysToStringSlice(interpreters)
	for i, name := range a.Interpreters {
		if name == "" {
			a.Interpreters[i] = "default"
		}
	}
	a.UndeclaredTypes = keysToStringSlice(undeclared)

	return &a, nil
}

// typeNames finds the type names used by TypeTests.  Constructor
// tags aren't included since undeclared tags are fine.
func typeNames(p match.Pattern) []string {
	acc := make([]string, 0, 4)
	var walk func(p match.Pattern)
	walk = func(p match.Pattern) {
		switch vv := p.(type) {
		case match.TypeTest:
			acc = append(acc, vv.Type)
			walk(vv.Sub)
		case match.Alternation:
			for _, q := range vv.Alts {
				walk(q)
			}
		case match.Constructor:
			for _, q := range vv.Elems {
				walk(q)
			}
			walk(vv.Rest)
		case match.Sequence:
			for _, q := range vv.Elems {
				walk(q)
			}
			walk(vv.Rest)
		case match.Grid:
			for _, row := range vv.Rows {
				for _, q := range row.Cells {
					walk(q)
				}
				walk(row.Rest)
			}
			walk(vv.RestRow)
		case match.Guarded:
			walk(vv.Pattern)
		}
	}
	walk(p)
	return acc
}

// keysToStringSlice returns the map's keys sorted.
func keysToStringSlice(m map[string]bool) []string {
	list := make([]string, 0, len(m))
	for key := range m {
		list = append(list, key)
	}
	sort.Strings(list)
	return list
}
