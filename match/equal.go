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

// fudge is a hack to cast numbers to float64s.
func fudge(x interface{}) interface{} {
	switch vv := x.(type) {
	case float64:
		return vv
	case float32:
		return float64(vv)
	case int:
		return float64(vv)
	case int8:
		return float64(vv)
	case int16:
		return float64(vv)
	case int32:
		return float64(vv)
	case int64:
		return float64(vv)
	case uint:
		return float64(vv)
	case uint8:
		return float64(vv)
	case uint16:
		return float64(vv)
	case uint32:
		return float64(vv)
	case uint64:
		return float64(vv)
	default:
		return x
	}
}

// integer sees x as a signed or unsigned integer.
//
// For a negative signed integer, neg is true and mag is the magnitude.
func integer(x interface{}) (neg bool, mag uint64, ok bool) {
	var n int64
	switch vv := x.(type) {
	case int:
		n = int64(vv)
	case int8:
		n = int64(vv)
	case int16:
		n = int64(vv)
	case int32:
		n = int64(vv)
	case int64:
		n = vv
	case uint:
		return false, uint64(vv), true
	case uint8:
		return false, uint64(vv), true
	case uint16:
		return false, uint64(vv), true
	case uint32:
		return false, uint64(vv), true
	case uint64:
		return false, vv, true
	default:
		return false, 0, false
	}
	if n < 0 {
		return true, uint64(-(n + 1)) + 1, true
	}
	return false, uint64(n), true
}

// compareIntegers orders two integers exactly, regardless of their
// Go kinds.  The last return value is false unless both are integers.
func compareIntegers(a, b interface{}) (int, bool) {
	an, am, ok := integer(a)
	if !ok {
		return 0, false
	}
	bn, bm, ok := integer(b)
	if !ok {
		return 0, false
	}
	switch {
	case an && !bn:
		return -1, true
	case !an && bn:
		return 1, true
	}
	c := 0
	switch {
	case am < bm:
		c = -1
	case am > bm:
		c = 1
	}
	if an {
		c = -c
	}
	return c, true
}

func isNumber(x interface{}) bool {
	_, is := fudge(x).(float64)
	return is
}

// Equal is the equality that Literal patterns and repeated variables
// use.
//
// With NumericFudge, numbers of different Go kinds are equal if they
// have the same value.  Two integers are compared exactly; only a
// float on either side makes the comparison go through float64.
// Intervals are equal if their bounds are.
// Composites are equal if their tags and fields are.  Sequences and
// grids compare element by element, regardless of how they are
// represented.
func (m *Matcher) Equal(a, b interface{}) bool {
	if m.NumericFudge {
		if c, ok := compareIntegers(a, b); ok {
			return c == 0
		}
		if x, is := fudge(a).(float64); is {
			y, is := fudge(b).(float64)
			return is && x == y
		}
	}

	switch vv := a.(type) {
	case nil:
		return b == nil
	case bool, string:
		return a == b
	case Interval:
		w, is := b.(Interval)
		return is && m.Equal(vv.Lo, w.Lo) && m.Equal(vv.Hi, w.Hi)
	case Composite:
		w, is := b.(Composite)
		if !is || vv.Tag() != w.Tag() {
			return false
		}
		return m.equals(vv.Fields(), w.Fields())
	case map[string]interface{}:
		w, is := b.(map[string]interface{})
		if !is || len(vv) != len(w) {
			return false
		}
		for k, x := range vv {
			y, have := w[k]
			if !have || !m.Equal(x, y) {
				return false
			}
		}
		return true
	}

	if seq.IsGrid(a) || seq.IsGrid(b) {
		g, is := seq.AsGrid(a)
		if !is {
			return false
		}
		h, is := seq.AsGrid(b)
		if !is || g.Rows() != h.Rows() || g.Cols() != h.Cols() {
			return false
		}
		for i := 0; i < g.Rows(); i++ {
			for j := 0; j < g.Cols(); j++ {
				if !m.Equal(g.At(i, j), h.At(i, j)) {
					return false
				}
			}
		}
		return true
	}

	if v, is := seq.AsVector(a); is {
		w, is := seq.AsVector(b)
		if !is || v.Len() != w.Len() {
			return false
		}
		for i := 0; i < v.Len(); i++ {
			if !m.Equal(v.At(i), w.At(i)) {
				return false
			}
		}
		return true
	}

	return reflect.DeepEqual(a, b)
}

func (m *Matcher) equals(xs, ys []interface{}) bool {
	if len(xs) != len(ys) {
		return false
	}
	for i, x := range xs {
		if !m.Equal(x, ys[i]) {
			return false
		}
	}
	return true
}

// Equal uses DefaultMatcher.
func Equal(a, b interface{}) bool {
	return DefaultMatcher.Equal(a, b)
}

// compare orders two numbers or two strings.
//
// The second return value is false if the values aren't comparable.
func compare(a, b interface{}) (int, bool) {
	if c, ok := compareIntegers(a, b); ok {
		return c, true
	}
	if x, is := fudge(a).(float64); is {
		y, is := fudge(b).(float64)
		if !is {
			return 0, false
		}
		switch {
		case x < y:
			return -1, true
		case x > y:
			return 1, true
		case x == y:
			return 0, true
		}
		// NaN
		return 0, false
	}
	if x, is := a.(string); is {
		y, is := b.(string)
		if !is {
			return 0, false
		}
		switch {
		case x < y:
			return -1, true
		case x > y:
			return 1, true
		}
		return 0, true
	}
	return 0, false
}
