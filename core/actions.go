package core

import (
	"context"
	"errors"

	"github.com/Comcast/patmatch/match"
)

var (
	// InterpreterNotFound occurs when you try to Compile an
	// ActionSource, and the required interpreter isn't in the
	// given map of interpreters.
	InterpreterNotFound = errors.New("interpreter not found")

	// DefaultInterpreters will be used in ActionSource.Compile if
	// the given nil interpreters.
	DefaultInterpreters = NewInterpretersMap()
)

// Interpreter can optionally compile and execute code for actions and
// guards.
type Interpreter interface {
	// Compile can make something that helps when Exec()ing the
	// code later.
	Compile(ctx context.Context, code interface{}) (interface{}, error)

	// Exec executes the code with the given bindings.  The result
	// of previous Compile() might be provided.
	Exec(ctx context.Context, bs *match.Bindings, code interface{}, compiled interface{}) (interface{}, error)
}

// InterpretersMap maps interpreter names (as used in
// ActionSource.Interpreter) to Interpreters.
type InterpretersMap map[string]Interpreter

func NewInterpretersMap() InterpretersMap {
	return make(InterpretersMap, 8)
}

// Action produces a clause's result from the bindings of a match.
type Action interface {
	Exec(ctx context.Context, bs *match.Bindings) (interface{}, error)
}

// FuncAction is an Action that's just a Go function.
type FuncAction struct {
	F func(context.Context, *match.Bindings) (interface{}, error) `json:"-" yaml:"-"`
}

// Exec runs the given action.  A nil FuncAction returns nil.
func (a *FuncAction) Exec(ctx context.Context, bs *match.Bindings) (interface{}, error) {
	if a == nil || a.F == nil {
		return nil, nil
	}
	return a.F(ctx, bs)
}

// Constant makes an Action that always returns the given value.
func Constant(x interface{}) Action {
	return &FuncAction{
		F: func(context.Context, *match.Bindings) (interface{}, error) {
			return x, nil
		},
	}
}

// ActionGuard is a match.Guard that runs an Action, which must
// return a boolean.
type ActionGuard struct {
	Action Action
}

func (g *ActionGuard) Check(ctx context.Context, bs *match.Bindings) (bool, error) {
	x, err := g.Action.Exec(ctx, bs)
	if err != nil {
		return false, err
	}
	b, is := x.(bool)
	if !is {
		return false, &BadGuardResult{x}
	}
	return b, nil
}

func (g *ActionGuard) String() string {
	return "guard"
}

// ActionSource can be compiled to an Action.
type ActionSource struct {
	Interpreter string      `json:"interpreter,omitempty" yaml:",omitempty"`
	Source      interface{} `json:"source"`
}

// Copy makes a shallow copy.
func (a *ActionSource) Copy() *ActionSource {
	if a == nil {
		return nil
	}
	return &ActionSource{
		Interpreter: a.Interpreter,
		Source:      a.Source,
	}
}

// Compile attempts to compile the ActionSource into an Action using
// the given interpreters, which defaults to DefaultInterpreters.
func (a *ActionSource) Compile(ctx context.Context, interpreters InterpretersMap) (Action, error) {
	if interpreters == nil {
		interpreters = DefaultInterpreters
	}

	interpreter, have := interpreters[a.Interpreter]
	if !have {
		return nil, InterpreterNotFound
	}

	x, err := interpreter.Compile(ctx, a.Source)
	if err != nil {
		return nil, err
	}

	return &FuncAction{
		F: func(ctx context.Context, bs *match.Bindings) (interface{}, error) {
			return interpreter.Exec(ctx, bs, a.Source, x)
		},
	}, nil
}

// CompileGuard is a version of Compile that makes a match.Guard.
func (a *ActionSource) CompileGuard(ctx context.Context, interpreters InterpretersMap) (match.Guard, error) {
	action, err := a.Compile(ctx, interpreters)
	if err != nil {
		return nil, err
	}
	return &ActionGuard{action}, nil
}
