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

package match

import (
	"context"
	"fmt"
	"strings"
)

// Pattern is a structural description of a value.
//
// The implementations are the types in this file.  Build them
// directly or with the constructors below, which check the things
// that can be checked without a Matcher.  A Pattern is never modified
// by matching, so one can be shared freely.
type Pattern interface {
	pattern()
	String() string
}

// Literal matches a value that is Equal to Value.
type Literal struct {
	Value interface{}
}

// Wildcard matches anything.  It binds Discard.
type Wildcard struct{}

// Variable matches anything and binds Name.
//
// If Name is already bound, the subject must be Equal to that value.
type Variable struct {
	Name string
}

// TypeTest matches a subject whose type tag is Type.  Unless Exact,
// a subject whose type has Type as an ancestor also matches.
//
// The subject is then matched against Sub (if any).
type TypeTest struct {
	Type  string
	Exact bool
	Sub   Pattern
}

// Alternation matches if any of Alts match.  The alternatives are
// tried in order, and only the first successful one contributes
// bindings.
type Alternation struct {
	Alts []Pattern
}

// Constructor matches a Composite with the given Tag and fields that
// match Elems positionally.
//
// An empty Tag matches a Tuple.  If Rest isn't nil, the Composite can
// have more fields than Elems, and Rest is matched against a Tuple of
// the remaining fields.
type Constructor struct {
	Tag   string
	Elems []Pattern
	Rest  Pattern
}

// Sequence matches a one-dimensional collection.
//
// If Rest isn't nil, the subject can be longer than Elems, and Rest is
// matched against a seq.Vector view of the remaining elements.
//
// A two-dimensional subject is matched row by row.  Each of Elems sees
// a row, and Rest sees the remaining rows as a seq.Grid.
type Sequence struct {
	Elems []Pattern
	Rest  Pattern
}

// GridRow is a row of a Grid pattern.
type GridRow struct {
	Cells []Pattern
	// Rest, if not nil, absorbs the columns after Cells.
	Rest Pattern
}

// Grid matches a two-dimensional collection.
//
// The subject is split vertically first.  With a RestRow, each pattern
// row matches one subject row and RestRow sees the remaining rows.
// Without a RestRow, either each pattern row matches one subject row
// or the single pattern row spans all of the subject's rows.
//
// Each resulting slab is then split horizontally in the same way:
// with a row Rest, each cell sees one column and Rest sees the
// remaining columns; without it, either each cell sees one column or
// the single cell sees the whole slab.
//
// A region that's a single element is that element.  A region that's
// a single column of several rows is a seq.Vector.  Anything else,
// including every rest, is a seq.Grid.
type Grid struct {
	Rows    []GridRow
	RestRow Pattern
}

// Range matches a number or string between Lo and Hi inclusive.
//
// An Interval subject matches only if its bounds equal Lo and Hi.
type Range struct {
	Lo interface{}
	Hi interface{}
}

// Guarded matches if Pattern matches and then Guard holds for the
// resulting bindings.
type Guarded struct {
	Pattern Pattern
	Guard   Guard
}

// Rest marks the last element of an element list as absorbing the
// remaining elements.
//
// The constructors lift a Rest into the Rest field of the enclosing
// pattern.  A Rest anywhere else is malformed.
type Rest struct {
	Sub Pattern
}

func (p Literal) pattern()     {}
func (p Wildcard) pattern()    {}
func (p Variable) pattern()    {}
func (p TypeTest) pattern()    {}
func (p Alternation) pattern() {}
func (p Constructor) pattern() {}
func (p Sequence) pattern()    {}
func (p Grid) pattern()        {}
func (p Range) pattern()       {}
func (p Guarded) pattern()     {}
func (p Rest) pattern()        {}

// Guard is a predicate over the bindings of a successful structural
// match.
//
// An error from Check is a fault, not a mismatch.
type Guard interface {
	Check(ctx context.Context, bs *Bindings) (bool, error)
}

// GuardFunc is a Guard that's just a function.
type GuardFunc func(ctx context.Context, bs *Bindings) (bool, error)

func (f GuardFunc) Check(ctx context.Context, bs *Bindings) (bool, error) {
	return f(ctx, bs)
}

func (f GuardFunc) String() string {
	return "func"
}

// MalformedPattern is returned for a pattern that can't match
// anything because of how it's built.
type MalformedPattern struct {
	Pattern Pattern
	Reason  string
}

func (e *MalformedPattern) Error() string {
	return fmt.Sprintf("malformed pattern %v: %s", e.Pattern, e.Reason)
}

// UnknownPatternType is an error that includes the thing that's
// causing the trouble.
type UnknownPatternType struct {
	Pattern interface{}
}

func (e *UnknownPatternType) Error() string {
	return fmt.Sprintf("unknown pattern type %T", e.Pattern)
}

// Lit makes a Literal.
func Lit(v interface{}) Pattern {
	return Literal{v}
}

// Any makes a Wildcard.
func Any() Pattern {
	return Wildcard{}
}

// Var makes a Variable.  Var(Discard) is a Wildcard.
func Var(name string) Pattern {
	if name == Discard {
		return Wildcard{}
	}
	return Variable{name}
}

// IsA makes a hierarchical TypeTest.  The sub-pattern can be nil.
func IsA(t string, sub Pattern) Pattern {
	return TypeTest{
		Type: t,
		Sub:  sub,
	}
}

// IsExactly makes an exact TypeTest.  The sub-pattern can be nil.
func IsExactly(t string, sub Pattern) Pattern {
	return TypeTest{
		Type:  t,
		Exact: true,
		Sub:   sub,
	}
}

// Splat makes a Rest for the end of an element list.  A nil
// sub-pattern means a Wildcard.
func Splat(sub Pattern) Pattern {
	if sub == nil {
		sub = Wildcard{}
	}
	return Rest{sub}
}

// Or makes an Alternation.
func Or(ps ...Pattern) (Pattern, error) {
	p := Alternation{ps}
	if len(ps) == 0 {
		return nil, &MalformedPattern{p, "no alternatives"}
	}
	for _, q := range ps {
		if err := checkSub(p, q); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// Tup makes an untagged Constructor.
func Tup(ps ...Pattern) (Pattern, error) {
	return Con("", ps...)
}

// Con makes a Constructor.  The last element can be a Rest.
func Con(tag string, ps ...Pattern) (Pattern, error) {
	elems, rest, err := liftRest(ps)
	p := Constructor{
		Tag:   tag,
		Elems: elems,
		Rest:  rest,
	}
	if err != nil {
		return nil, &MalformedPattern{p, err.Error()}
	}
	return p, nil
}

// Seq makes a Sequence.  The last element can be a Rest.
func Seq(ps ...Pattern) (Pattern, error) {
	elems, rest, err := liftRest(ps)
	p := Sequence{
		Elems: elems,
		Rest:  rest,
	}
	if err != nil {
		return nil, &MalformedPattern{p, err.Error()}
	}
	return p, nil
}

// Grd makes a Grid from rows of cells.
//
// The last cell of a row can be a Rest.  If there is more than one
// row, the last row can be a lone Rest, which becomes the RestRow.
func Grd(rows ...[]Pattern) (Pattern, error) {
	var g Grid
	if len(rows) == 0 {
		return nil, &MalformedPattern{g, "no rows"}
	}
	for i, row := range rows {
		if 1 < len(rows) && len(row) == 1 {
			if r, is := row[0].(Rest); is {
				if i != len(rows)-1 {
					return nil, &MalformedPattern{g, fmt.Sprintf("rest row %d isn't last", i)}
				}
				g.RestRow = r.Sub
				if g.RestRow == nil {
					g.RestRow = Wildcard{}
				}
				break
			}
		}
		cells, rest, err := liftRest(row)
		if err != nil {
			return nil, &MalformedPattern{g, fmt.Sprintf("row %d: %s", i, err)}
		}
		if len(cells) == 0 && rest == nil {
			return nil, &MalformedPattern{g, fmt.Sprintf("row %d is empty", i)}
		}
		g.Rows = append(g.Rows, GridRow{
			Cells: cells,
			Rest:  rest,
		})
	}
	if err := checkWidths(g); err != nil {
		return nil, err
	}
	return g, nil
}

// checkWidths reports rows that can't all fit the same number of
// columns.
//
// A row of k > 1 cells without a rest needs exactly k columns.  A row
// of k cells with a rest needs at least k.  A lone cell spans its row.
func checkWidths(g Grid) error {
	var (
		fixed = -1
		least = 0
	)
	for i, row := range g.Rows {
		k := len(row.Cells)
		switch {
		case row.Rest != nil:
			if least < k {
				least = k
			}
		case 1 < k:
			if 0 <= fixed && fixed != k {
				return &MalformedPattern{g, fmt.Sprintf("row %d has %d cells, not %d", i, k, fixed)}
			}
			fixed = k
		}
	}
	if 0 <= fixed && fixed < least {
		return &MalformedPattern{g, fmt.Sprintf("rows need %d columns and at least %d", fixed, least)}
	}
	return nil
}

// Rng makes a Range.
func Rng(lo, hi interface{}) (Pattern, error) {
	p := Range{lo, hi}
	if err := checkRange(p); err != nil {
		return nil, err
	}
	return p, nil
}

// When makes a Guarded pattern.
func When(p Pattern, g Guard) (Pattern, error) {
	q := Guarded{
		Pattern: p,
		Guard:   g,
	}
	if g == nil {
		return nil, &MalformedPattern{q, "nil guard"}
	}
	if err := checkSub(q, p); err != nil {
		return nil, err
	}
	return q, nil
}

// Must panics if err isn't nil.
//
//	p := match.Must(match.Seq(match.Var("a"), match.Splat(match.Var("b"))))
func Must(p Pattern, err error) Pattern {
	if err != nil {
		panic(err)
	}
	return p
}

func checkSub(p, sub Pattern) error {
	if sub == nil {
		return &MalformedPattern{p, "nil sub-pattern"}
	}
	if _, is := sub.(Rest); is {
		return &MalformedPattern{p, "rest outside an element list"}
	}
	return nil
}

func checkRange(p Range) error {
	c, ok := compare(p.Lo, p.Hi)
	if !ok {
		return &MalformedPattern{p, "bounds aren't comparable"}
	}
	if 0 < c {
		return &MalformedPattern{p, "lower bound exceeds upper bound"}
	}
	return nil
}

// liftRest separates a trailing Rest from the other elements.
func liftRest(ps []Pattern) ([]Pattern, Pattern, error) {
	var rest Pattern
	elems := make([]Pattern, 0, len(ps))
	for i, p := range ps {
		if p == nil {
			return nil, nil, fmt.Errorf("nil element %d", i)
		}
		r, is := p.(Rest)
		if !is {
			elems = append(elems, p)
			continue
		}
		if rest != nil {
			return nil, nil, fmt.Errorf("more than one rest")
		}
		if i != len(ps)-1 {
			return nil, nil, fmt.Errorf("rest at %d isn't last", i)
		}
		rest = r.Sub
		if rest == nil {
			rest = Wildcard{}
		}
	}
	return elems, rest, nil
}

// Validate reports the first problem that would prevent the pattern
// from matching as its author intended.
//
// A Constructor whose Tag has a declared arity (see
// Types.DeclareConstructor) must be able to fit that arity.
func (m *Matcher) Validate(p Pattern) error {
	switch vv := p.(type) {
	case nil:
		return &MalformedPattern{p, "nil pattern"}
	case Literal, Wildcard:
		return nil
	case Variable:
		if vv.Name == "" {
			return &MalformedPattern{p, "empty variable name"}
		}
		return nil
	case TypeTest:
		if vv.Type == "" {
			return &MalformedPattern{p, "empty type"}
		}
		if vv.Sub == nil {
			return nil
		}
		if err := checkSub(p, vv.Sub); err != nil {
			return err
		}
		return m.Validate(vv.Sub)
	case Alternation:
		if len(vv.Alts) == 0 {
			return &MalformedPattern{p, "no alternatives"}
		}
		for _, alt := range vv.Alts {
			if err := checkSub(p, alt); err != nil {
				return err
			}
			if err := m.Validate(alt); err != nil {
				return err
			}
		}
		return nil
	case Constructor:
		if n, have := m.types().Arity(vv.Tag); have && vv.Tag != "" {
			if vv.Rest == nil && len(vv.Elems) != n {
				return &MalformedPattern{p, fmt.Sprintf("%s has %d fields", vv.Tag, n)}
			}
			if n < len(vv.Elems) {
				return &MalformedPattern{p, fmt.Sprintf("%s has only %d fields", vv.Tag, n)}
			}
		}
		return m.validateElems(p, vv.Elems, vv.Rest)
	case Sequence:
		return m.validateElems(p, vv.Elems, vv.Rest)
	case Grid:
		if len(vv.Rows) == 0 {
			return &MalformedPattern{p, "no rows"}
		}
		for i, row := range vv.Rows {
			if len(row.Cells) == 0 && row.Rest == nil {
				return &MalformedPattern{p, fmt.Sprintf("row %d is empty", i)}
			}
			if err := m.validateElems(p, row.Cells, row.Rest); err != nil {
				return err
			}
		}
		if err := checkWidths(vv); err != nil {
			return err
		}
		if vv.RestRow != nil {
			if err := checkSub(p, vv.RestRow); err != nil {
				return err
			}
			return m.Validate(vv.RestRow)
		}
		return nil
	case Range:
		return checkRange(vv)
	case Guarded:
		if vv.Guard == nil {
			return &MalformedPattern{p, "nil guard"}
		}
		if err := checkSub(p, vv.Pattern); err != nil {
			return err
		}
		return m.Validate(vv.Pattern)
	case Rest:
		return &MalformedPattern{p, "rest outside an element list"}
	default:
		return &UnknownPatternType{p}
	}
}

func (m *Matcher) validateElems(p Pattern, elems []Pattern, rest Pattern) error {
	for _, elem := range elems {
		if err := checkSub(p, elem); err != nil {
			return err
		}
		if err := m.Validate(elem); err != nil {
			return err
		}
	}
	if rest == nil {
		return nil
	}
	if err := checkSub(p, rest); err != nil {
		return err
	}
	return m.Validate(rest)
}

// Validate uses DefaultMatcher.
func Validate(p Pattern) error {
	return DefaultMatcher.Validate(p)
}

func (p Literal) String() string {
	if s, is := p.Value.(string); is {
		return fmt.Sprintf("%q", s)
	}
	return fmt.Sprintf("%v", p.Value)
}

func (p Wildcard) String() string {
	return Discard
}

func (p Variable) String() string {
	return p.Name
}

func (p TypeTest) String() string {
	sub := ""
	if p.Sub != nil {
		sub = p.Sub.String()
	}
	if p.Exact {
		return sub + "::=" + p.Type
	}
	return sub + "::" + p.Type
}

func (p Alternation) String() string {
	return "(" + join(p.Alts, nil, " | ") + ")"
}

func (p Constructor) String() string {
	return p.Tag + "(" + join(p.Elems, p.Rest, ", ") + ")"
}

func (p Sequence) String() string {
	return "[" + join(p.Elems, p.Rest, ", ") + "]"
}

func (p Grid) String() string {
	rows := make([]string, 0, len(p.Rows)+1)
	for _, row := range p.Rows {
		rows = append(rows, join(row.Cells, row.Rest, " "))
	}
	if p.RestRow != nil {
		rows = append(rows, Rest{p.RestRow}.String())
	}
	return "[" + strings.Join(rows, "; ") + "]"
}

func (p Range) String() string {
	return fmt.Sprintf("%v:%v", p.Lo, p.Hi)
}

func (p Guarded) String() string {
	return fmt.Sprintf("(%v if %v)", p.Pattern, p.Guard)
}

func (p Rest) String() string {
	if p.Sub == nil {
		return "..."
	}
	return p.Sub.String() + "..."
}

func join(ps []Pattern, rest Pattern, sep string) string {
	acc := make([]string, 0, len(ps)+1)
	for _, p := range ps {
		acc = append(acc, fmt.Sprintf("%v", p))
	}
	if rest != nil {
		acc = append(acc, Rest{rest}.String())
	}
	return strings.Join(acc, sep)
}
