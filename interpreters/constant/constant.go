// Package constant provides an Interpreter whose code is its own
// result.
package constant

import (
	"context"
	"log"

	"github.com/Comcast/patmatch/core"
	"github.com/Comcast/patmatch/match"
)

// Interpreter is a core.Interpreter that returns the source as the
// result.
//
// Useful for clauses that just classify a subject.
type Interpreter struct {
	// Verbose, if true, logs each execution.
	Verbose bool
}

func NewInterpreter() *Interpreter {
	return &Interpreter{}
}

// Compile canonicalizes the source, which is then the result of every
// Exec.
func (i *Interpreter) Compile(ctx context.Context, code interface{}) (interface{}, error) {
	return core.Canonicalize(code)
}

func (i *Interpreter) Exec(ctx context.Context, bs *match.Bindings, code interface{}, compiled interface{}) (interface{}, error) {
	if i.Verbose {
		log.Printf("constant: %v with %s", code, bs)
	}
	if compiled == nil {
		return i.Compile(ctx, code)
	}
	return compiled, nil
}
