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

// Package seq provides one- and two-dimensional views over ordered
// collections.
//
// A view is a window (offset, length, stride) into a backing buffer.
// Views borrow that buffer; they never copy it.  A view that is bound
// by the pattern matcher therefore aliases the subject that was
// matched, and its lifetime is that of the Bindings that hold it.  If
// you need an independent copy, call Values().
//
// The matcher uses the Split methods to decompose a subject into a
// head and a rest.
package seq

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
)

// Vector is a one-dimensional view.
//
// A Vector taken from a row of a Grid remembers that it is a row, so
// AsGrid sees it as 1xN rather than Nx1.
type Vector struct {
	buf    []interface{}
	off    int
	n      int
	stride int
	row    bool
}

// NewVector makes a Vector that views (and does not copy) the given
// slice.
func NewVector(xs []interface{}) Vector {
	return Vector{
		buf:    xs,
		n:      len(xs),
		stride: 1,
	}
}

// Len returns the number of elements in the view.
func (v Vector) Len() int {
	return v.n
}

// At returns the i-th element.  Panics if i is out of range.
func (v Vector) At(i int) interface{} {
	if i < 0 || v.n <= i {
		panic(fmt.Sprintf("seq: index %d out of range [0,%d)", i, v.n))
	}
	return v.buf[v.off+i*v.stride]
}

// Slice returns the view of elements i (inclusive) to j (exclusive).
func (v Vector) Slice(i, j int) Vector {
	if i < 0 || j < i || v.n < j {
		panic(fmt.Sprintf("seq: slice [%d:%d] out of range [0,%d]", i, j, v.n))
	}
	return Vector{
		buf:    v.buf,
		off:    v.off + i*v.stride,
		n:      j - i,
		stride: v.stride,
		row:    v.row,
	}
}

// Split returns the first k elements and the remaining elements.
//
// The last return value is false if the view has fewer than k
// elements.
func (v Vector) Split(k int) (Vector, Vector, bool) {
	if k < 0 || v.n < k {
		return Vector{}, Vector{}, false
	}
	return v.Slice(0, k), v.Slice(k, v.n), true
}

// IsRow reports whether the view is a row of a Grid.
func (v Vector) IsRow() bool {
	return v.row
}

// Values copies the elements into a new slice.
func (v Vector) Values() []interface{} {
	acc := make([]interface{}, v.n)
	for i := range acc {
		acc[i] = v.buf[v.off+i*v.stride]
	}
	return acc
}

func (v Vector) String() string {
	return fmt.Sprintf("%v", v.Values())
}

func (v Vector) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Values())
}

// Grid is a two-dimensional view.
//
// Elements are addressed as buf[off + i*rs + j*cs] for row i and
// column j.
type Grid struct {
	buf  []interface{}
	off  int
	rows int
	cols int
	rs   int
	cs   int
}

// BadShape occurs when a buffer can't be viewed with the requested
// dimensions.
var BadShape = errors.New("bad grid shape")

// NewGrid makes a Grid that views the given row-major buffer.
func NewGrid(rows, cols int, buf []interface{}) (Grid, error) {
	if rows < 0 || cols < 0 || len(buf) != rows*cols {
		return Grid{}, BadShape
	}
	return Grid{
		buf:  buf,
		rows: rows,
		cols: cols,
		rs:   cols,
		cs:   1,
	}, nil
}

// GridOf copies the given rows into a new owned buffer and returns a
// Grid over that buffer.
//
// All rows must have the same length.
func GridOf(rows [][]interface{}) (Grid, error) {
	if len(rows) == 0 {
		return Grid{}, nil
	}
	cols := len(rows[0])
	buf := make([]interface{}, 0, len(rows)*cols)
	for _, row := range rows {
		if len(row) != cols {
			return Grid{}, BadShape
		}
		buf = append(buf, row...)
	}
	return NewGrid(len(rows), cols, buf)
}

// Rows returns the number of rows.
func (g Grid) Rows() int {
	return g.rows
}

// Cols returns the number of columns.
func (g Grid) Cols() int {
	return g.cols
}

// At returns the element at row i and column j.
func (g Grid) At(i, j int) interface{} {
	if i < 0 || g.rows <= i || j < 0 || g.cols <= j {
		panic(fmt.Sprintf("seq: index (%d,%d) out of range (%d,%d)", i, j, g.rows, g.cols))
	}
	return g.buf[g.off+i*g.rs+j*g.cs]
}

// Row returns a view of row i.
func (g Grid) Row(i int) Vector {
	return Vector{
		buf:    g.buf,
		off:    g.off + i*g.rs,
		n:      g.cols,
		stride: g.cs,
		row:    true,
	}
}

// Col returns a view of column j.
func (g Grid) Col(j int) Vector {
	return Vector{
		buf:    g.buf,
		off:    g.off + j*g.cs,
		n:      g.rows,
		stride: g.rs,
	}
}

// Sub returns the view of rows r0 to r1 and columns c0 to c1 (upper
// bounds exclusive).
func (g Grid) Sub(r0, r1, c0, c1 int) Grid {
	if r0 < 0 || r1 < r0 || g.rows < r1 || c0 < 0 || c1 < c0 || g.cols < c1 {
		panic(fmt.Sprintf("seq: sub [%d:%d,%d:%d] out of range (%d,%d)",
			r0, r1, c0, c1, g.rows, g.cols))
	}
	off := g.off
	if r1 > r0 && c1 > c0 {
		off += r0*g.rs + c0*g.cs
	}
	return Grid{
		buf:  g.buf,
		off:  off,
		rows: r1 - r0,
		cols: c1 - c0,
		rs:   g.rs,
		cs:   g.cs,
	}
}

// SplitRows returns the first k rows and the remaining rows.
func (g Grid) SplitRows(k int) (Grid, Grid, bool) {
	if k < 0 || g.rows < k {
		return Grid{}, Grid{}, false
	}
	return g.Sub(0, k, 0, g.cols), g.Sub(k, g.rows, 0, g.cols), true
}

// SplitCols returns the first k columns and the remaining columns.
func (g Grid) SplitCols(k int) (Grid, Grid, bool) {
	if k < 0 || g.cols < k {
		return Grid{}, Grid{}, false
	}
	return g.Sub(0, g.rows, 0, k), g.Sub(0, g.rows, k, g.cols), true
}

// Region collapses a view to the simplest thing that represents it: a
// 1x1 Grid is its element, an Nx1 Grid is a column Vector, and
// anything else stays a Grid.
func (g Grid) Region() interface{} {
	switch {
	case g.rows == 1 && g.cols == 1:
		return g.At(0, 0)
	case g.cols == 1:
		return g.Col(0)
	default:
		return g
	}
}

// Values copies the elements into new rows.
func (g Grid) Values() [][]interface{} {
	acc := make([][]interface{}, g.rows)
	for i := range acc {
		acc[i] = g.Row(i).Values()
	}
	return acc
}

func (g Grid) String() string {
	var buf bytes.Buffer
	buf.WriteString("[")
	for i := 0; i < g.rows; i++ {
		if 0 < i {
			buf.WriteString("; ")
		}
		for j := 0; j < g.cols; j++ {
			if 0 < j {
				buf.WriteString(" ")
			}
			fmt.Fprintf(&buf, "%v", g.At(i, j))
		}
	}
	buf.WriteString("]")
	return buf.String()
}

func (g Grid) MarshalJSON() ([]byte, error) {
	return json.Marshal(g.Values())
}

// AsVector attempts to see the given thing as a one-dimensional
// collection.
//
// A Vector is returned as is, and a []interface{} is viewed without
// copying.  A Grid with a single row or a single column is seen as
// that row or column.  Other slices and arrays are copied via
// reflection.  Strings are not vectors.
func AsVector(x interface{}) (Vector, bool) {
	switch vv := x.(type) {
	case Vector:
		return vv, true
	case []interface{}:
		return NewVector(vv), true
	case Grid:
		switch {
		case vv.rows == 1:
			return vv.Row(0), true
		case vv.cols == 1:
			return vv.Col(0), true
		}
		return Vector{}, false
	case string, nil:
		return Vector{}, false
	}

	v := reflect.ValueOf(x)
	switch v.Kind() {
	case reflect.Slice, reflect.Array:
		// A named []interface{} (like a tuple) is not a
		// sequence.
		if v.Kind() == reflect.Slice && v.Type().Elem().Kind() == reflect.Interface && v.Type().Name() != "" {
			return Vector{}, false
		}
		xs := make([]interface{}, v.Len())
		for i := range xs {
			xs[i] = v.Index(i).Interface()
		}
		return NewVector(xs), true
	}
	return Vector{}, false
}

// AsGrid attempts to see the given thing as a two-dimensional
// collection.
//
// A Grid is returned as is.  A [][]interface{} or a []interface{} of
// equal-length []interface{} rows is copied into a new Grid.  A
// Vector is viewed (without copying) as a single column, or as a
// single row if it came from a Grid row.
func AsGrid(x interface{}) (Grid, bool) {
	switch vv := x.(type) {
	case Grid:
		return vv, true
	case Vector:
		if vv.row {
			return Grid{
				buf:  vv.buf,
				off:  vv.off,
				rows: 1,
				cols: vv.n,
				rs:   vv.n * vv.stride,
				cs:   vv.stride,
			}, true
		}
		return Grid{
			buf:  vv.buf,
			off:  vv.off,
			rows: vv.n,
			cols: 1,
			rs:   vv.stride,
			cs:   1,
		}, true
	case [][]interface{}:
		g, err := GridOf(vv)
		return g, err == nil
	case []interface{}:
		rows := make([][]interface{}, len(vv))
		for i, y := range vv {
			row, is := y.([]interface{})
			if !is {
				return Grid{}, false
			}
			rows[i] = row
		}
		g, err := GridOf(rows)
		return g, err == nil
	}
	return Grid{}, false
}

// IsGrid reports whether the thing is a genuinely two-dimensional
// collection: a Grid or a [][]interface{}.
func IsGrid(x interface{}) bool {
	switch x.(type) {
	case Grid, [][]interface{}:
		return true
	}
	return false
}
