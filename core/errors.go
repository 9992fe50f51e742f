package core

// Most of these errors are user errors, not internal errors.

import (
	"errors"
	"fmt"
)

// NoMatch is returned by ClauseSet.Evaluate when no clause matches.
//
// Since NoMatch is an error, it can't be confused with any result
// that an action returns (including nil).  Use errors.Is to check.
var NoMatch = errors.New("no match")

// SpecNotCompiled occurs when a Spec is used (say via Evaluate())
// before it has been Compile()ed.
type SpecNotCompiled struct {
	Spec *Spec
}

func (e *SpecNotCompiled) Error() string {
	return `spec "` + e.Spec.Name + `" not compiled`
}

// BadClause occurs when a clause can't be built or compiled.
type BadClause struct {
	// Index is the position of the clause in its set.
	Index int

	// Reason says what's wrong if Err doesn't.
	Reason string

	Err error
}

func (e *BadClause) Error() string {
	msg := e.Reason
	if e.Err != nil {
		if msg == "" {
			msg = e.Err.Error()
		} else {
			msg += ": " + e.Err.Error()
		}
	}
	return fmt.Sprintf("clause %d: %s", e.Index, msg)
}

func (e *BadClause) Unwrap() error {
	return e.Err
}

// BadGuardResult occurs when a guard compiled from an ActionSource
// returns something other than a boolean.
type BadGuardResult struct {
	Result interface{}
}

func (e *BadGuardResult) Error() string {
	return fmt.Sprintf("guard returned %#v (%T) instead of a boolean", e.Result, e.Result)
}
