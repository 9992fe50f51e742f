package core

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"

	"github.com/Comcast/patmatch/match"

	"github.com/jsccast/yaml"
	"github.com/zeebo/blake3"
)

// DefaultPatternParser turns a clause's pattern data into a Pattern.
//
// Syntax "" (or "data") means the pattern is plain data for
// match.Decode.  Syntax "json" means the pattern is a string of JSON
// that decodes to that data.
var DefaultPatternParser = func(syntax string, p interface{}) (match.Pattern, error) {
	switch syntax {
	case "data", "":
		if s, is := p.(string); is && len(s) > 0 && s[0] == '{' {
			return nil, errors.New("warning: pattern is a string: " + s)
		}
		return match.Decode(p)
	case "json":
		if js, is := p.(string); is {
			return match.ParsePattern([]byte(js))
		}
		return match.Decode(p)
	default:
		return nil, errors.New("unsupported pattern syntax: " + syntax)
	}
}

// Spec is a clause set as data.
//
// A Spec can be written in JSON or YAML.  Its clauses' guards and
// actions are ActionSources, so a Spec must be Compiled with some
// Interpreters before use.
type Spec struct {
	// Name is the generic name for this clause set.  Something
	// like "classify-shape".  Cf. Id.
	Name string `json:"name,omitempty" yaml:",omitempty"`

	// Version is the version of this clause set.  Something like
	// "1.2".
	Version string `json:"version,omitempty" yaml:",omitempty"`

	// Id should be a globally unique identifier.  See ComputeId.
	Id string `json:"id,omitempty" yaml:",omitempty"`

	// Doc is general documentation (in Markdown) about what this
	// clause set does.
	Doc string `json:"doc,omitempty" yaml:",omitempty"`

	// PatternSyntax indicates the syntax (if any) for clause
	// patterns.
	PatternSyntax string `json:"patternSyntax,omitempty" yaml:",omitempty"`

	PatternParser func(string, interface{}) (match.Pattern, error) `json:"-" yaml:"-"`

	// Types declares type tags for TypeTest and Constructor
	// patterns.  These declarations extend match.DefaultTypes.
	Types []*TypeDecl `json:"types,omitempty" yaml:",omitempty"`

	// Clauses are considered in order.
	Clauses []*ClauseSource `json:"clauses" yaml:"clauses"`

	set      *ClauseSet
	compiled bool
}

// TypeDecl declares a type tag and its parent.
//
// If Arity is given, the tag is also a constructor with that many
// fields.
type TypeDecl struct {
	Name   string `json:"name"`
	Parent string `json:"parent,omitempty" yaml:",omitempty"`
	Arity  *int   `json:"arity,omitempty" yaml:",omitempty"`
}

// ClauseSource can be compiled to a Clause.
type ClauseSource struct {
	Doc string `json:"doc,omitempty" yaml:",omitempty"`

	// Pattern is given in the Spec's PatternSyntax.
	Pattern interface{} `json:"pattern"`

	// Guard is optional.  Its action must return a boolean.
	Guard *ActionSource `json:"guard,omitempty" yaml:"guard,omitempty"`

	Action *ActionSource `json:"action,omitempty" yaml:"action,omitempty"`
}

// Copy makes a deep copy of the ClauseSource.
func (c *ClauseSource) Copy() *ClauseSource {
	if c == nil {
		return nil
	}
	return &ClauseSource{
		Doc:     c.Doc,
		Pattern: c.Pattern,
		Guard:   c.Guard.Copy(),
		Action:  c.Action.Copy(),
	}
}

// ParseSpec parses YAML (or JSON) into an uncompiled Spec.
func ParseSpec(src []byte) (*Spec, error) {
	var spec Spec
	if err := yaml.Unmarshal(src, &spec); err != nil {
		return nil, err
	}
	for _, c := range spec.Clauses {
		if c == nil {
			continue
		}
		var err error
		if c.Pattern, err = StringMaps(c.Pattern); err != nil {
			return nil, err
		}
		for _, a := range []*ActionSource{c.Guard, c.Action} {
			if a == nil {
				continue
			}
			if a.Source, err = StringMaps(a.Source); err != nil {
				return nil, err
			}
		}
	}
	return &spec, nil
}

// Copy makes a deep copy of the Spec, which will need to be compiled.
func (spec *Spec) Copy(version string) *Spec {
	if version == "" {
		version = spec.Version
	}
	clauses := make([]*ClauseSource, len(spec.Clauses))
	for i, c := range spec.Clauses {
		clauses[i] = c.Copy()
	}
	types := make([]*TypeDecl, len(spec.Types))
	for i, t := range spec.Types {
		if t != nil {
			d := *t
			types[i] = &d
		}
	}

	return &Spec{
		Name:          spec.Name,
		Version:       version,
		Id:            spec.Id,
		Doc:           spec.Doc,
		PatternSyntax: spec.PatternSyntax,
		PatternParser: spec.PatternParser,
		Types:         types,
		Clauses:       clauses,
	}
}

// ComputeId returns the hex BLAKE3 hash of the Spec's JSON
// representation (without its Id).
//
// This package doesn't set Spec.Id.  Do that yourself if you want.
func (spec *Spec) ComputeId() (string, error) {
	c := spec.Copy("")
	c.Id = ""
	for _, cs := range c.Clauses {
		if cs == nil {
			continue
		}
		var err error
		if cs.Pattern, err = StringMaps(cs.Pattern); err != nil {
			return "", err
		}
	}
	js, err := json.Marshal(c)
	if err != nil {
		return "", err
	}
	h := blake3.New()
	if _, err = h.Write(js); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Matcher returns a Matcher that knows about the Spec's Types.
func (spec *Spec) Matcher() *match.Matcher {
	if len(spec.Types) == 0 {
		return match.DefaultMatcher
	}
	ts := match.DefaultTypes.Copy()
	for _, t := range spec.Types {
		if t == nil {
			continue
		}
		if t.Arity != nil {
			ts.DeclareConstructor(t.Name, t.Parent, *t.Arity)
		} else {
			ts.Declare(t.Name, t.Parent)
		}
	}
	m := *match.DefaultMatcher
	m.Types = ts
	return &m
}

// Compile parses all patterns and compiles all guards and actions.
//
// A problem with a clause is reported as a *BadClause.  If the Spec
// was already compiled, nothing happens unless force is true.
func (spec *Spec) Compile(ctx context.Context, interpreters InterpretersMap, force bool) error {
	if spec.compiled && !force {
		return nil
	}

	parser := spec.PatternParser
	if parser == nil {
		parser = DefaultPatternParser
	}

	clauses := make([]*Clause, len(spec.Clauses))
	for i, src := range spec.Clauses {
		if src == nil {
			return &BadClause{Index: i, Reason: "nil clause"}
		}
		p, err := parser(spec.PatternSyntax, src.Pattern)
		if err != nil {
			return &BadClause{Index: i, Reason: "pattern", Err: err}
		}
		c := &Clause{
			Pattern: p,
			Doc:     src.Doc,
		}
		if src.Guard != nil {
			if c.Guard, err = src.Guard.CompileGuard(ctx, interpreters); err != nil {
				return &BadClause{Index: i, Reason: "guard", Err: err}
			}
		}
		if src.Action == nil {
			return &BadClause{Index: i, Reason: "no action"}
		}
		if c.Action, err = src.Action.Compile(ctx, interpreters); err != nil {
			return &BadClause{Index: i, Reason: "action", Err: err}
		}
		clauses[i] = c
	}

	set, err := NewClauseSetWith(spec.Matcher(), clauses...)
	if err != nil {
		return err
	}
	spec.set = set
	spec.compiled = true

	return nil
}

// ClauseSet returns the compiled clauses (or nil if the Spec hasn't
// been compiled).
func (spec *Spec) ClauseSet() *ClauseSet {
	return spec.set
}

// Evaluate calls ClauseSet.Evaluate on the compiled clauses.
func (spec *Spec) Evaluate(ctx context.Context, x interface{}) (*Result, error) {
	if !spec.compiled {
		return nil, &SpecNotCompiled{spec}
	}
	return spec.set.Evaluate(ctx, x)
}

// Trace calls ClauseSet.Trace on the compiled clauses.
func (spec *Spec) Trace(ctx context.Context, x interface{}) (*Result, *Traces, error) {
	if !spec.compiled {
		return nil, nil, &SpecNotCompiled{spec}
	}
	return spec.set.Trace(ctx, x)
}

// Match calls ClauseSet.Match on the compiled clauses.
func (spec *Spec) Match(ctx context.Context, x interface{}) (*match.Bindings, error) {
	if !spec.compiled {
		return nil, &SpecNotCompiled{spec}
	}
	return spec.set.Match(ctx, x)
}
