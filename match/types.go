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
	"reflect"

	"github.com/Comcast/patmatch/seq"
)

// TypeAny is the root of every type hierarchy.
const TypeAny = "Any"

// Types is a registry of type tags and their declared parents.
//
// A TypeTest pattern consults a Types to decide if a subject's type
// is compatible with the type the pattern names.  The relation is
// exact equality or a declared ancestor; there's no variance for
// parameterized names like "Dict{Int,String}", which are just opaque
// tags.  Declare whatever parent relationships you need.
//
// A Types should be set up before it's shared.  Lookups don't
// synchronize.
type Types struct {
	parents map[string]string
	arities map[string]int
}

// NewTypes makes a Types that knows only TypeAny.
func NewTypes() *Types {
	return &Types{
		parents: make(map[string]string, 32),
		arities: make(map[string]int, 8),
	}
}

// StandardTypes returns a new Types with the built-in hierarchy:
//
//	Any
//	  Number
//	    Real
//	      Integer
//	        Int
//	        UInt
//	      Float
//	  String
//	  Bool
//	  Nothing
//	  Tuple
//	  Composite
//	  AbstractArray
//	    Vector
//	    Matrix
//	  Range
//	  Dict
func StandardTypes() *Types {
	return NewTypes().
		Declare("Number", TypeAny).
		Declare("Real", "Number").
		Declare("Integer", "Real").
		Declare("Int", "Integer").
		Declare("UInt", "Integer").
		Declare("Float", "Real").
		Declare("String", TypeAny).
		Declare("Bool", TypeAny).
		Declare("Nothing", TypeAny).
		Declare("Tuple", TypeAny).
		Declare("Composite", TypeAny).
		Declare("AbstractArray", TypeAny).
		Declare("Vector", "AbstractArray").
		Declare("Matrix", "AbstractArray").
		Declare("Range", TypeAny).
		Declare("Dict", TypeAny)
}

// DefaultTypes is used by DefaultMatcher.
var DefaultTypes = StandardTypes()

// Declare records that the named type has the given parent.
//
// An empty parent means TypeAny.  A declaration that would make a
// cycle is ignored.
func (ts *Types) Declare(name, parent string) *Types {
	if parent == "" {
		parent = TypeAny
	}
	if name == TypeAny || ts.IsA(parent, name) {
		return ts
	}
	ts.parents[name] = parent
	return ts
}

// DeclareConstructor declares a type that's also a constructor tag
// with a fixed number of fields.
//
// Constructor patterns for that tag are checked against the arity
// when they are validated.
func (ts *Types) DeclareConstructor(name, parent string, arity int) *Types {
	if parent == "" {
		parent = "Composite"
	}
	ts.Declare(name, parent)
	ts.arities[name] = arity
	return ts
}

// Parent returns the declared parent of the type.
func (ts *Types) Parent(name string) (string, bool) {
	p, have := ts.parents[name]
	return p, have
}

// Arity returns the declared arity of a constructor tag.
func (ts *Types) Arity(name string) (int, bool) {
	n, have := ts.arities[name]
	return n, have
}

// IsA reports whether sub is super or has super as an ancestor.
//
// Every type is an Any.
func (ts *Types) IsA(sub, super string) bool {
	if super == TypeAny || sub == super {
		return true
	}
	// Bounded walk.
	for i := 0; i <= len(ts.parents); i++ {
		p, have := ts.parents[sub]
		if !have {
			return false
		}
		if p == super {
			return true
		}
		sub = p
	}
	return false
}

// Copy makes a deep copy.
func (ts *Types) Copy() *Types {
	acc := NewTypes()
	for k, v := range ts.parents {
		acc.parents[k] = v
	}
	for k, v := range ts.arities {
		acc.arities[k] = v
	}
	return acc
}

// TypeOf returns the type tag of a value.
//
// A Typer reports its own tag, and a Composite's tag is its Tag()
// (or "Tuple" for an untagged one).  A nil *Data is "Nothing".  Go
// values map to the standard tags.  Anything else gets its Go type
// name.
func TypeOf(x interface{}) string {
	switch vv := x.(type) {
	case nil:
		return "Nothing"
	case Typer:
		return vv.TypeName()
	case Tuple:
		return "Tuple"
	case *Data:
		if vv == nil {
			return "Nothing"
		}
		return vv.Tag()
	case Composite:
		return vv.Tag()
	case Interval:
		return "Range"
	case bool:
		return "Bool"
	case string:
		return "String"
	case int, int8, int16, int32, int64:
		return "Int"
	case uint, uint8, uint16, uint32, uint64:
		return "UInt"
	case float32, float64:
		return "Float"
	case seq.Vector:
		return "Vector"
	case seq.Grid, [][]interface{}:
		return "Matrix"
	case map[string]interface{}:
		return "Dict"
	}

	if _, is := seq.AsVector(x); is {
		return "Vector"
	}

	switch reflect.TypeOf(x).Kind() {
	case reflect.Map:
		return "Dict"
	}

	return reflect.TypeOf(x).String()
}
