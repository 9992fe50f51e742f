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
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Comcast/patmatch/seq"
)

// Composite is a value with a tag and positional fields.
//
// Constructor patterns match Composites.
type Composite interface {
	Tag() string
	Fields() []interface{}
}

// Typer is implemented by values that report their own type tag.
//
// Use a Typer for a value whose type is richer than its Go type (say,
// "Dict{Int,String}").
type Typer interface {
	TypeName() string
}

// Tuple is an untagged Composite.
type Tuple []interface{}

func (t Tuple) Tag() string {
	return ""
}

func (t Tuple) Fields() []interface{} {
	return t
}

func (t Tuple) String() string {
	acc := make([]string, len(t))
	for i, x := range t {
		acc[i] = fmt.Sprintf("%v", x)
	}
	return "(" + strings.Join(acc, ", ") + ")"
}

func (t Tuple) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]interface{}{
		"@tuple": []interface{}(t),
	})
}

// Data is a simple tagged Composite.
type Data struct {
	Name string
	Args []interface{}
}

// NewData makes a Data with the given tag and fields.
func NewData(tag string, args ...interface{}) *Data {
	return &Data{
		Name: tag,
		Args: args,
	}
}

// Tag returns the Data's name.  A nil Data has no tag.
func (d *Data) Tag() string {
	if d == nil {
		return ""
	}
	return d.Name
}

func (d *Data) Fields() []interface{} {
	if d == nil {
		return nil
	}
	return d.Args
}

func (d *Data) String() string {
	if d == nil {
		return "nothing"
	}
	return d.Name + Tuple(d.Args).String()
}

func (d *Data) MarshalJSON() ([]byte, error) {
	if d == nil {
		return []byte("null"), nil
	}
	args := d.Args
	if args == nil {
		args = []interface{}{}
	}
	return json.Marshal(map[string]interface{}{
		"@tag":  d.Name,
		"@args": args,
	})
}

// Interval is a range-valued subject.
type Interval struct {
	Lo interface{}
	Hi interface{}
}

func (r Interval) String() string {
	return fmt.Sprintf("%v:%v", r.Lo, r.Hi)
}

func (r Interval) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]interface{}{
		"@range": []interface{}{r.Lo, r.Hi},
	})
}

// Plain converts the value into plain data (maps, slices, and
// scalars) for consumers that don't know this package's types.
//
// Vectors and Grids become slices, Tuples become slices, Data become
// {"tag":T,"args":[...]}, and Intervals become {"lo":L,"hi":H}.
func Plain(x interface{}) interface{} {
	switch vv := x.(type) {
	case seq.Vector:
		return plains(vv.Values())
	case seq.Grid:
		rows := vv.Values()
		acc := make([]interface{}, len(rows))
		for i, row := range rows {
			acc[i] = plains(row)
		}
		return acc
	case Tuple:
		return plains(vv)
	case *Data:
		return map[string]interface{}{
			"tag":  vv.Name,
			"args": plains(vv.Args),
		}
	case Composite:
		return map[string]interface{}{
			"tag":  vv.Tag(),
			"args": plains(vv.Fields()),
		}
	case Interval:
		return map[string]interface{}{
			"lo": Plain(vv.Lo),
			"hi": Plain(vv.Hi),
		}
	case []interface{}:
		return plains(vv)
	case map[string]interface{}:
		acc := make(map[string]interface{}, len(vv))
		for k, v := range vv {
			acc[k] = Plain(v)
		}
		return acc
	default:
		return x
	}
}

func plains(xs []interface{}) []interface{} {
	acc := make([]interface{}, len(xs))
	for i, x := range xs {
		acc[i] = Plain(x)
	}
	return acc
}
