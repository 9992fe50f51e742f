package core

import (
	"context"

	"github.com/Comcast/patmatch/match"
	"github.com/Comcast/patmatch/util"
)

// TracesInitialCap is the initial capacity for Traces buffers.
var TracesInitialCap = 16

// Clause is one alternative of a match expression.
type Clause struct {
	// Pattern is matched against the subject.
	Pattern match.Pattern

	// Guard is an optional predicate that must hold for the
	// bindings of a successful match.  If the Guard says no, the
	// next clause is considered.
	Guard match.Guard

	// Action produces the result of the whole evaluation when
	// this clause is the first that matches.
	Action Action

	// Doc is optional documentation.
	Doc string
}

// ClauseSet is an ordered list of clauses.
//
// A ClauseSet can't be changed after it's made, and it's safe to use
// concurrently.
type ClauseSet struct {
	matcher *match.Matcher
	clauses []*Clause
}

// NewClauseSet makes a ClauseSet that uses match.DefaultMatcher.
//
// Each clause is checked: it needs a valid pattern and an action.
// The first problem is returned as a *BadClause.
func NewClauseSet(clauses ...*Clause) (*ClauseSet, error) {
	return NewClauseSetWith(match.DefaultMatcher, clauses...)
}

// NewClauseSetWith is a version of NewClauseSet that uses the given
// Matcher.
func NewClauseSetWith(m *match.Matcher, clauses ...*Clause) (*ClauseSet, error) {
	if m == nil {
		m = match.DefaultMatcher
	}
	acc := make([]*Clause, len(clauses))
	for i, c := range clauses {
		if c == nil {
			return nil, &BadClause{Index: i, Reason: "nil clause"}
		}
		if c.Pattern == nil {
			return nil, &BadClause{Index: i, Reason: "no pattern"}
		}
		if c.Action == nil {
			return nil, &BadClause{Index: i, Reason: "no action"}
		}
		if err := m.Validate(c.Pattern); err != nil {
			return nil, &BadClause{Index: i, Err: err}
		}
		copied := *c
		acc[i] = &copied
	}
	return &ClauseSet{
		matcher: m,
		clauses: acc,
	}, nil
}

// Len returns the number of clauses.
func (cs *ClauseSet) Len() int {
	return len(cs.clauses)
}

// Clause returns the clause at the given position.
func (cs *ClauseSet) Clause(i int) Clause {
	return *cs.clauses[i]
}

// Result is what a successful evaluation produces.
type Result struct {
	// Clause is the index of the clause that matched.
	Clause int `json:"clause"`

	// Value is what that clause's action returned.
	Value interface{} `json:"value"`

	// Bindings are the bindings from the match.
	Bindings *match.Bindings `json:"bindings"`
}

// Traces holds trace messages.
type Traces struct {
	Messages []interface{} `json:"messages,omitempty" yaml:",omitempty"`
}

// NewTraces creates an initialized Traces.
//
// The Messages array has TracesInitialCap initial capacity.
func NewTraces() *Traces {
	return &Traces{
		Messages: make([]interface{}, 0, TracesInitialCap),
	}
}

func (ts *Traces) Add(xs ...interface{}) {
	if ts == nil {
		return
	}
	ts.Messages = append(ts.Messages, xs...)
}

// Evaluate finds the first clause whose pattern matches the subject
// and whose guard (if any) holds.  That clause's action is executed,
// and the action's result is returned.
//
// If no clause matches, the error is NoMatch.  Errors from guards and
// actions are returned as is.
func (cs *ClauseSet) Evaluate(ctx context.Context, x interface{}) (*Result, error) {
	return cs.consider(ctx, x, nil, true)
}

// Trace is a version of Evaluate that also reports what happened with
// each clause that was considered.
func (cs *ClauseSet) Trace(ctx context.Context, x interface{}) (*Result, *Traces, error) {
	ts := NewTraces()
	r, err := cs.consider(ctx, x, ts, true)
	return r, ts, err
}

// Match is a version of Evaluate that doesn't execute the action.
//
// Returns the bindings from the first clause that matches (with its
// guard).
func (cs *ClauseSet) Match(ctx context.Context, x interface{}) (*match.Bindings, error) {
	r, err := cs.consider(ctx, x, nil, false)
	if err != nil {
		return nil, err
	}
	return r.Bindings, nil
}

// consider considers the clauses in order.
func (cs *ClauseSet) consider(ctx context.Context, x interface{}, ts *Traces, exec bool) (*Result, error) {
	ts.Add(map[string]interface{}{
		"consider": x,
		"clauses":  len(cs.clauses),
	})

	for i, c := range cs.clauses {
		bs, err := c.try(ctx, cs.matcher, x, i, ts)
		if err != nil {
			return nil, err
		}
		if bs == nil {
			continue
		}
		r := &Result{
			Clause:   i,
			Bindings: bs,
		}
		if !exec {
			return r, nil
		}
		if r.Value, err = c.Action.Exec(ctx, bs); err != nil {
			util.Logf("core: clause %d action error %s", i, err)
			ts.Add(map[string]interface{}{
				"clause": i,
				"error":  err.Error(),
			})
			return nil, err
		}
		ts.Add(map[string]interface{}{
			"clause": i,
			"result": r.Value,
		})
		return r, nil
	}

	util.Logf("core: no match for %v", x)
	ts.Add(map[string]interface{}{
		"noMatch": true,
	})

	return nil, NoMatch
}

// try attempts to match the clause's pattern and then checks its
// guard.
//
// Returns nil Bindings if the clause doesn't apply.
func (c *Clause) try(ctx context.Context, m *match.Matcher, x interface{}, i int, ts *Traces) (*match.Bindings, error) {
	bs, err := m.Match(ctx, c.Pattern, x)
	if err != nil {
		util.Logf("core: clause %d match error %s", i, err)
		ts.Add(map[string]interface{}{
			"clause": i,
			"error":  err.Error(),
		})
		return nil, err
	}

	if bs == nil {
		ts.Add(map[string]interface{}{
			"clause":  i,
			"pattern": c.Pattern.String(),
			"matched": false,
		})
		return nil, nil
	}

	if c.Guard == nil {
		ts.Add(map[string]interface{}{
			"clause":  i,
			"matched": true,
			"bs":      bs,
		})
		return bs, nil
	}

	ok, err := c.Guard.Check(ctx, bs)
	if err != nil {
		util.Logf("core: clause %d guard error %s", i, err)
		ts.Add(map[string]interface{}{
			"clause": i,
			"error":  err.Error(),
		})
		return nil, err
	}
	ts.Add(map[string]interface{}{
		"clause":  i,
		"matched": true,
		"bs":      bs,
		"guard":   ok,
	})
	if !ok {
		return nil, nil
	}
	return bs, nil
}
