// Package interpreters gathers the standard Interpreters.
package interpreters

import (
	"github.com/Comcast/patmatch/core"
	"github.com/Comcast/patmatch/interpreters/constant"
	"github.com/Comcast/patmatch/interpreters/goja"
)

// Standard returns a map with the "goja" and "constant" interpreters.
//
// "ecmascript" is another name for "goja", and the empty name means
// "constant".
func Standard() core.InterpretersMap {
	is := core.NewInterpretersMap()

	js := goja.NewInterpreter()
	is["goja"] = js
	is["ecmascript"] = js

	c := constant.NewInterpreter()
	is["constant"] = c
	is[""] = c

	return is
}
