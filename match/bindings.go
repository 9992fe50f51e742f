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
	"sort"
)

// Discard is the name that a Wildcard binds.
//
// Unlike every other name, Discard can be bound more than once in a
// single match.  The most recent binding wins.
const Discard = "_"

// Binding is one name and its value.
type Binding struct {
	Name  string
	Value interface{}
}

// Bindings is an ordered map from pattern variable names to their
// values.
//
// Bindings are an append-only log.  Get returns the most recent value
// for a name, and Names gives the distinct names in the order that
// they were first bound.  A nil *Bindings is an empty environment,
// which is also how the matcher reports a failed match.
type Bindings struct {
	entries []Binding
}

// NewBindings makes an empty Bindings.
func NewBindings() *Bindings {
	return &Bindings{
		entries: make([]Binding, 0, 8),
	}
}

// BindingsFrom makes Bindings from a map.  Since a map has no order,
// the names are bound in sorted order.
func BindingsFrom(m map[string]interface{}) *Bindings {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	bs := NewBindings()
	for _, name := range names {
		bs.Extend(name, m[name])
	}
	return bs
}

// Extend adds the binding; modifies and returns the Bindings.
//
// Use Extend to seed initial bindings.  A later Extend of the same
// name shadows the earlier one.
func (bs *Bindings) Extend(name string, v interface{}) *Bindings {
	bs.entries = append(bs.entries, Binding{name, v})
	return bs
}

// Get returns the current value bound to the name.
func (bs *Bindings) Get(name string) (interface{}, bool) {
	if bs == nil {
		return nil, false
	}
	for i := len(bs.entries) - 1; 0 <= i; i-- {
		if bs.entries[i].Name == name {
			return bs.entries[i].Value, true
		}
	}
	return nil, false
}

// Names returns the distinct bound names in first-binding order.
func (bs *Bindings) Names() []string {
	if bs == nil {
		return nil
	}
	acc := make([]string, 0, len(bs.entries))
	seen := make(map[string]bool, len(bs.entries))
	for _, b := range bs.entries {
		if seen[b.Name] {
			continue
		}
		seen[b.Name] = true
		acc = append(acc, b.Name)
	}
	return acc
}

// Len returns the number of distinct names.
func (bs *Bindings) Len() int {
	return len(bs.Names())
}

// Each calls the function with each distinct name (in first-binding
// order) and its current value.
func (bs *Bindings) Each(f func(name string, v interface{})) {
	for _, name := range bs.Names() {
		v, _ := bs.Get(name)
		f(name, v)
	}
}

// Map returns the current bindings as a new map.
func (bs *Bindings) Map() map[string]interface{} {
	if bs == nil {
		return map[string]interface{}{}
	}
	acc := make(map[string]interface{}, len(bs.entries))
	for _, b := range bs.entries {
		acc[b.Name] = b.Value
	}
	return acc
}

// Copy makes a shallow copy of the Bindings.
func (bs *Bindings) Copy() *Bindings {
	if bs == nil {
		return NewBindings()
	}
	acc := make([]Binding, len(bs.entries), len(bs.entries)+8)
	copy(acc, bs.entries)
	return &Bindings{
		entries: acc,
	}
}

// mark returns a position that reset can return to.
func (bs *Bindings) mark() int {
	return len(bs.entries)
}

// reset forgets everything bound since the mark.
func (bs *Bindings) reset(mark int) {
	for i := mark; i < len(bs.entries); i++ {
		bs.entries[i] = Binding{}
	}
	bs.entries = bs.entries[:mark]
}

func (bs *Bindings) bind(name string, v interface{}) {
	bs.entries = append(bs.entries, Binding{name, v})
}

// MarshalJSON renders the Bindings as a JSON object with keys in
// first-binding order.
func (bs *Bindings) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	var err error
	i := 0
	bs.Each(func(name string, v interface{}) {
		if err != nil {
			return
		}
		var k, js []byte
		if k, err = json.Marshal(name); err != nil {
			return
		}
		if js, err = json.Marshal(v); err != nil {
			return
		}
		if 0 < i {
			buf.WriteByte(',')
		}
		i++
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(js)
	})
	if err != nil {
		return nil, err
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (bs *Bindings) String() string {
	var buf bytes.Buffer
	buf.WriteByte('{')
	i := 0
	bs.Each(func(name string, v interface{}) {
		if 0 < i {
			buf.WriteString(", ")
		}
		i++
		fmt.Fprintf(&buf, "%s: %v", name, v)
	})
	buf.WriteByte('}')
	return buf.String()
}
