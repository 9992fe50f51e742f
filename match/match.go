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

// Package match implements the core pattern matcher.
//
// A Pattern is matched against a subject value, and a successful match
// produces Bindings for the pattern's variables.  A failed match isn't
// an error: Match returns nil Bindings.  The only errors are faults
// from Guards and patterns that were built incorrectly.
package match

import (
	"context"

	"github.com/Comcast/patmatch/seq"
)

type Matcher struct {
	// Types is the type registry for TypeTest patterns and for
	// checking Constructor arities.  Nil means DefaultTypes.
	Types *Types

	// NumericFudge makes numbers of different Go kinds equal if
	// they have the same value.
	//
	// Patterns decoded from JSON have float64s, while Go callers
	// tend to give ints.  Without this switch, Lit(1) would not
	// match float64(1).
	NumericFudge bool

	// BindDiscard makes a Wildcard bind Discard.
	//
	// The binding isn't needed to decide a match, so turn this
	// switch off if no guard or action ever looks at Discard.
	BindDiscard bool
}

var DefaultMatcher = &Matcher{
	Types:        DefaultTypes,
	NumericFudge: true,
	BindDiscard:  true,
}

func (m *Matcher) types() *Types {
	if m.Types == nil {
		return DefaultTypes
	}
	return m.Types
}

// Match attempts to match the given subject with the given pattern.
//
// Returns nil Bindings if there's no match.
func (m *Matcher) Match(ctx context.Context, p Pattern, x interface{}) (*Bindings, error) {
	return m.MatchWith(ctx, p, x, nil)
}

// MatchWith is a version of Match that takes initial bindings.
//
// Those initial bindings are not modified.  Their values constrain
// the pattern's variables with the same names.
func (m *Matcher) MatchWith(ctx context.Context, p Pattern, x interface{}, bs *Bindings) (*Bindings, error) {
	acc := bs.Copy()
	matched, err := m.match(ctx, p, x, acc)
	if err != nil || !matched {
		return nil, err
	}
	return acc, nil
}

// match is a version of Match that extends the given bindings (which
// can be modified even if the match fails).
func (m *Matcher) match(ctx context.Context, p Pattern, x interface{}, bs *Bindings) (bool, error) {
	switch vv := p.(type) {
	case Literal:
		return m.Equal(vv.Value, x), nil

	case Wildcard:
		if m.BindDiscard {
			bs.bind(Discard, x)
		}
		return true, nil

	case Variable:
		if vv.Name == Discard {
			return m.match(ctx, Wildcard{}, x, bs)
		}
		if y, have := bs.Get(vv.Name); have {
			return m.Equal(y, x), nil
		}
		bs.bind(vv.Name, x)
		return true, nil

	case TypeTest:
		if !m.isA(x, vv.Type, vv.Exact) {
			return false, nil
		}
		if vv.Sub == nil {
			return true, nil
		}
		return m.match(ctx, vv.Sub, x, bs)

	case Alternation:
		mark := bs.mark()
		for _, alt := range vv.Alts {
			matched, err := m.match(ctx, alt, x, bs)
			if err != nil {
				return false, err
			}
			if matched {
				return true, nil
			}
			bs.reset(mark)
		}
		return false, nil

	case Constructor:
		return m.matchConstructor(ctx, vv, x, bs)

	case Sequence:
		if seq.IsGrid(x) {
			g, is := seq.AsGrid(x)
			if !is {
				return false, nil
			}
			return m.matchRows(ctx, vv, g, bs)
		}
		v, is := seq.AsVector(x)
		if !is {
			return false, nil
		}
		return m.matchVector(ctx, vv, v, bs)

	case Grid:
		g, is := seq.AsGrid(x)
		if !is {
			return false, nil
		}
		return m.matchGrid(ctx, vv, g, bs)

	case Range:
		if iv, is := x.(Interval); is {
			return m.Equal(vv.Lo, iv.Lo) && m.Equal(vv.Hi, iv.Hi), nil
		}
		if c, ok := compare(vv.Lo, x); !ok || 0 < c {
			return false, nil
		}
		c, ok := compare(x, vv.Hi)
		return ok && c <= 0, nil

	case Guarded:
		matched, err := m.match(ctx, vv.Pattern, x, bs)
		if err != nil || !matched {
			return false, err
		}
		if vv.Guard == nil {
			return false, &MalformedPattern{p, "nil guard"}
		}
		return vv.Guard.Check(ctx, bs)

	case Rest:
		return false, &MalformedPattern{p, "rest outside an element list"}

	default:
		return false, &UnknownPatternType{p}
	}
}

// isA checks the subject's type tag against the given type.
//
// A Composite tag that hasn't been declared is taken to be a
// Composite.
func (m *Matcher) isA(x interface{}, t string, exact bool) bool {
	tag := TypeOf(x)
	if tag == t {
		return true
	}
	if exact {
		return false
	}
	ts := m.types()
	if ts.IsA(tag, t) {
		return true
	}
	if _, declared := ts.Parent(tag); !declared {
		if _, is := x.(Composite); is {
			return ts.IsA("Composite", t)
		}
	}
	return false
}

func (m *Matcher) matchConstructor(ctx context.Context, p Constructor, x interface{}, bs *Bindings) (bool, error) {
	if d, is := x.(*Data); is && d == nil {
		return false, nil
	}
	c, is := x.(Composite)
	if !is || c.Tag() != p.Tag {
		return false, nil
	}
	fields := c.Fields()
	n := len(p.Elems)
	if p.Rest == nil && len(fields) != n {
		return false, nil
	}
	if len(fields) < n {
		return false, nil
	}
	for i, elem := range p.Elems {
		matched, err := m.match(ctx, elem, fields[i], bs)
		if err != nil || !matched {
			return false, err
		}
	}
	if p.Rest == nil {
		return true, nil
	}
	rest := make(Tuple, len(fields)-n)
	copy(rest, fields[n:])
	return m.match(ctx, p.Rest, rest, bs)
}

func (m *Matcher) matchVector(ctx context.Context, p Sequence, v seq.Vector, bs *Bindings) (bool, error) {
	n := len(p.Elems)
	if p.Rest == nil && v.Len() != n {
		return false, nil
	}
	head, rest, ok := v.Split(n)
	if !ok {
		return false, nil
	}
	for i, elem := range p.Elems {
		matched, err := m.match(ctx, elem, head.At(i), bs)
		if err != nil || !matched {
			return false, err
		}
	}
	if p.Rest == nil {
		return true, nil
	}
	return m.match(ctx, p.Rest, rest, bs)
}

// matchRows matches a Sequence against the rows of a grid.
func (m *Matcher) matchRows(ctx context.Context, p Sequence, g seq.Grid, bs *Bindings) (bool, error) {
	n := len(p.Elems)
	if p.Rest == nil && g.Rows() != n {
		return false, nil
	}
	_, rest, ok := g.SplitRows(n)
	if !ok {
		return false, nil
	}
	for i, elem := range p.Elems {
		matched, err := m.match(ctx, elem, g.Row(i), bs)
		if err != nil || !matched {
			return false, err
		}
	}
	if p.Rest == nil {
		return true, nil
	}
	return m.match(ctx, p.Rest, rest, bs)
}

func (m *Matcher) matchGrid(ctx context.Context, p Grid, g seq.Grid, bs *Bindings) (bool, error) {
	var (
		rows = len(p.Rows)
		M    = g.Rows()
		N    = g.Cols()
	)
	if M == 0 || rows == 0 {
		return false, nil
	}

	slabs := make([]seq.Grid, 0, rows)
	switch {
	case p.RestRow != nil || rows == M:
		if M < rows {
			return false, nil
		}
		for i := 0; i < rows; i++ {
			slabs = append(slabs, g.Sub(i, i+1, 0, N))
		}
	case rows == 1:
		slabs = append(slabs, g)
	default:
		return false, nil
	}

	for i, row := range p.Rows {
		matched, err := m.matchSlab(ctx, row, slabs[i], bs)
		if err != nil || !matched {
			return false, err
		}
	}

	if p.RestRow == nil {
		return true, nil
	}
	return m.match(ctx, p.RestRow, g.Sub(rows, M, 0, N), bs)
}

// matchSlab matches a pattern row against a horizontal band of a grid.
func (m *Matcher) matchSlab(ctx context.Context, row GridRow, slab seq.Grid, bs *Bindings) (bool, error) {
	var (
		k = len(row.Cells)
		h = slab.Rows()
		N = slab.Cols()
	)

	switch {
	case row.Rest != nil || k == N:
		if N < k {
			return false, nil
		}
		for j, cell := range row.Cells {
			matched, err := m.match(ctx, cell, slab.Sub(0, h, j, j+1).Region(), bs)
			if err != nil || !matched {
				return false, err
			}
		}
		if row.Rest == nil {
			return true, nil
		}
		return m.match(ctx, row.Rest, slab.Sub(0, h, k, N), bs)
	case k == 1:
		return m.match(ctx, row.Cells[0], slab.Region(), bs)
	default:
		return false, nil
	}
}

// Match uses DefaultMatcher.
func Match(ctx context.Context, p Pattern, x interface{}) (*Bindings, error) {
	return DefaultMatcher.Match(ctx, p, x)
}

// MatchWith uses DefaultMatcher.
func MatchWith(ctx context.Context, p Pattern, x interface{}, bs *Bindings) (*Bindings, error) {
	return DefaultMatcher.MatchWith(ctx, p, x, bs)
}
