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
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Decode builds a Pattern from plain data (the kind of thing that
// json.Unmarshal or a YAML parser produces).
//
// Strings that start with '?' are variables:
//
//	"?x"     Variable x
//	"?" "?_" Wildcard
//	"?x..."  Rest of Variable x (last element of an array only)
//	"?..."   Rest of Wildcard
//
// An array is a Sequence.  A map with one of the following forms is
// special:
//
//	{"lit":V}               Literal V (even if V looks like a pattern)
//	{"or":[P,...]}          Alternation
//	{"isa":T,"is":P}        TypeTest ("is" is optional)
//	{"type":T,"is":P}       exact TypeTest ("is" is optional)
//	{"tag":T,"args":[P...]} Constructor ("args" is optional)
//	{"tuple":[P,...]}       untagged Constructor
//	{"grid":[[P,...],...]}  Grid
//	{"range":[LO,HI]}       Range
//
// Every other value is a Literal of itself (after DecodeSubject).
func Decode(x interface{}) (Pattern, error) {
	p, err := decode(x)
	if err != nil {
		return nil, err
	}
	if _, is := p.(Rest); is {
		return nil, &MalformedPattern{p, "rest outside an element list"}
	}
	return p, nil
}

// MustDecode panics if Decode returns an error.
func MustDecode(x interface{}) Pattern {
	return Must(Decode(x))
}

func decode(x interface{}) (Pattern, error) {
	switch vv := x.(type) {
	case string:
		return decodeString(vv), nil
	case []interface{}:
		ps, err := decodes(vv)
		if err != nil {
			return nil, err
		}
		return Seq(ps...)
	case map[interface{}]interface{}:
		m, err := stringKeys(vv)
		if err != nil {
			return nil, err
		}
		return decodeMap(m)
	case map[string]interface{}:
		return decodeMap(vv)
	default:
		return Lit(DecodeSubject(x)), nil
	}
}

func decodeString(s string) Pattern {
	if !strings.HasPrefix(s, "?") {
		return Lit(s)
	}
	name := s[1:]
	if strings.HasSuffix(name, "...") {
		return Splat(decodeString("?" + strings.TrimSuffix(name, "...")))
	}
	if name == "" || name == Discard {
		return Wildcard{}
	}
	return Var(name)
}

func decodes(xs []interface{}) ([]Pattern, error) {
	acc := make([]Pattern, len(xs))
	for i, x := range xs {
		p, err := decode(x)
		if err != nil {
			return nil, err
		}
		acc[i] = p
	}
	return acc, nil
}

// onlyKeys reports whether the map has the required key and no keys
// other than that one and the optional one.
func onlyKeys(m map[string]interface{}, required, optional string) bool {
	if _, have := m[required]; !have {
		return false
	}
	for k := range m {
		if k != required && k != optional {
			return false
		}
	}
	return true
}

func decodeMap(m map[string]interface{}) (Pattern, error) {
	switch {
	case onlyKeys(m, "lit", ""):
		return Lit(DecodeSubject(m["lit"])), nil

	case onlyKeys(m, "or", ""):
		xs, is := m["or"].([]interface{})
		if !is {
			return nil, fmt.Errorf("or needs an array, not %T", m["or"])
		}
		ps, err := decodeAll(xs)
		if err != nil {
			return nil, err
		}
		return Or(ps...)

	case onlyKeys(m, "isa", "is"), onlyKeys(m, "type", "is"):
		exact := true
		t, have := m["type"]
		if !have {
			t, exact = m["isa"], false
		}
		name, is := t.(string)
		if !is {
			return nil, fmt.Errorf("type needs a string, not %T", t)
		}
		var sub Pattern
		if x, have := m["is"]; have {
			var err error
			if sub, err = Decode(x); err != nil {
				return nil, err
			}
		}
		if exact {
			return IsExactly(name, sub), nil
		}
		return IsA(name, sub), nil

	case onlyKeys(m, "tag", "args"):
		tag, is := m["tag"].(string)
		if !is {
			return nil, fmt.Errorf("tag needs a string, not %T", m["tag"])
		}
		var ps []Pattern
		if x, have := m["args"]; have {
			xs, is := x.([]interface{})
			if !is {
				return nil, fmt.Errorf("args needs an array, not %T", x)
			}
			var err error
			if ps, err = decodes(xs); err != nil {
				return nil, err
			}
		}
		return Con(tag, ps...)

	case onlyKeys(m, "tuple", ""):
		xs, is := m["tuple"].([]interface{})
		if !is {
			return nil, fmt.Errorf("tuple needs an array, not %T", m["tuple"])
		}
		ps, err := decodes(xs)
		if err != nil {
			return nil, err
		}
		return Tup(ps...)

	case onlyKeys(m, "grid", ""):
		xs, is := m["grid"].([]interface{})
		if !is {
			return nil, fmt.Errorf("grid needs an array of arrays, not %T", m["grid"])
		}
		rows := make([][]Pattern, len(xs))
		for i, x := range xs {
			ys, is := x.([]interface{})
			if !is {
				// A lone rest row can be given without brackets.
				ys = []interface{}{x}
			}
			ps, err := decodes(ys)
			if err != nil {
				return nil, err
			}
			rows[i] = ps
		}
		return Grd(rows...)

	case onlyKeys(m, "range", ""):
		xs, is := m["range"].([]interface{})
		if !is || len(xs) != 2 {
			return nil, fmt.Errorf("range needs [lo,hi], not %v", m["range"])
		}
		return Rng(DecodeSubject(xs[0]), DecodeSubject(xs[1]))

	default:
		return Lit(DecodeSubject(m)), nil
	}
}

// decodeAll is decodes for places where a Rest isn't allowed.
func decodeAll(xs []interface{}) ([]Pattern, error) {
	acc := make([]Pattern, len(xs))
	for i, x := range xs {
		p, err := Decode(x)
		if err != nil {
			return nil, err
		}
		acc[i] = p
	}
	return acc, nil
}

// DecodeSubject converts plain data to a subject value.
//
//	{"@range":[LO,HI]}         Interval
//	{"@tag":T,"@args":[X,...]} Data ("@args" is optional)
//	{"@tuple":[X,...]}         Tuple
//
// json.Numbers become ints if they are integral and float64s
// otherwise.  Maps with non-string keys (from YAML) get string keys.
// Everything else is converted recursively.
func DecodeSubject(x interface{}) interface{} {
	switch vv := x.(type) {
	case json.Number:
		if n, err := vv.Int64(); err == nil {
			return int(n)
		}
		if f, err := vv.Float64(); err == nil {
			return f
		}
		return vv.String()
	case []interface{}:
		acc := make([]interface{}, len(vv))
		for i, y := range vv {
			acc[i] = DecodeSubject(y)
		}
		return acc
	case map[interface{}]interface{}:
		m, err := stringKeys(vv)
		if err != nil {
			return x
		}
		return DecodeSubject(m)
	case map[string]interface{}:
		return decodeSubjectMap(vv)
	default:
		return x
	}
}

func decodeSubjectMap(m map[string]interface{}) interface{} {
	if onlyKeys(m, "@range", "") {
		if xs, is := m["@range"].([]interface{}); is && len(xs) == 2 {
			return Interval{
				Lo: DecodeSubject(xs[0]),
				Hi: DecodeSubject(xs[1]),
			}
		}
	}
	if onlyKeys(m, "@tuple", "") {
		if xs, is := m["@tuple"].([]interface{}); is {
			return Tuple(DecodeSubject(xs).([]interface{}))
		}
	}
	if onlyKeys(m, "@tag", "@args") {
		if tag, is := m["@tag"].(string); is {
			var args []interface{}
			if x, have := m["@args"]; have {
				xs, is := x.([]interface{})
				if !is {
					return m
				}
				args = DecodeSubject(xs).([]interface{})
			}
			return NewData(tag, args...)
		}
	}
	acc := make(map[string]interface{}, len(m))
	for k, v := range m {
		acc[k] = DecodeSubject(v)
	}
	return acc
}

func stringKeys(m map[interface{}]interface{}) (map[string]interface{}, error) {
	acc := make(map[string]interface{}, len(m))
	for k, v := range m {
		s, is := k.(string)
		if !is {
			return nil, fmt.Errorf("map key %v (%T) isn't a string", k, k)
		}
		acc[s] = v
	}
	return acc, nil
}

// ParseJSON parses JSON into a subject value with DecodeSubject.
func ParseJSON(js []byte) (interface{}, error) {
	d := json.NewDecoder(bytes.NewReader(js))
	d.UseNumber()
	var x interface{}
	if err := d.Decode(&x); err != nil {
		return nil, err
	}
	return DecodeSubject(x), nil
}

// ParsePattern parses JSON into a Pattern with Decode.
func ParsePattern(js []byte) (Pattern, error) {
	d := json.NewDecoder(bytes.NewReader(js))
	d.UseNumber()
	var x interface{}
	if err := d.Decode(&x); err != nil {
		return nil, err
	}
	return Decode(x)
}
