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

package tools

import (
	"io"
	"io/ioutil"
	"path/filepath"
	"regexp"

	"github.com/Comcast/patmatch/core"
	"github.com/Comcast/patmatch/util"
)

var inlineDirective = regexp.MustCompile(`%inline *\("([^"]*)"\)`)

// Inline replaces each '%inline("NAME")' with f(NAME).
//
// Replacements aren't scanned again.
func Inline(bs []byte, f func(string) ([]byte, error)) ([]byte, error) {
	acc := make([]byte, 0, len(bs))
	last := 0
	for _, loc := range inlineDirective.FindAllSubmatchIndex(bs, -1) {
		name := string(bs[loc[2]:loc[3]])
		replacement, err := f(name)
		if err != nil {
			return nil, err
		}
		util.Logf("tools: inlining %s (%d bytes)", name, len(replacement))
		acc = append(acc, bs[last:loc[0]]...)
		acc = append(acc, replacement...)
		last = loc[1]
	}
	return append(acc, bs[last:]...), nil
}

func fileInliner(dir string) func(string) ([]byte, error) {
	return func(name string) ([]byte, error) {
		return ioutil.ReadFile(filepath.Join(dir, name))
	}
}

// ReadFileWithInlines is a replacement for ioutil.ReadFile that
// Inline()s files relative to the given file's directory.
func ReadFileWithInlines(filename string) ([]byte, error) {
	bs, err := ioutil.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return Inline(bs, fileInliner(filepath.Dir(filename)))
}

// ReadAllWithInlines is a replacement for ioutil.ReadAll that
// Inline()s files relative to the given directory.
func ReadAllWithInlines(in io.Reader, dir string) ([]byte, error) {
	bs, err := ioutil.ReadAll(in)
	if err != nil {
		return nil, err
	}
	return Inline(bs, fileInliner(dir))
}

// ReadSpecFile reads a YAML or JSON Spec (with inlines).
//
// The Spec isn't compiled.
func ReadSpecFile(filename string) (*core.Spec, error) {
	bs, err := ReadFileWithInlines(filename)
	if err != nil {
		return nil, err
	}
	return core.ParseSpec(bs)
}
