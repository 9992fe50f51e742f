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

package main

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"log"
	"strings"

	"github.com/dop251/goja"
)

// Transformer runs JavaScript that rewrites a clause-set document.
//
// Each script is run in one runtime.  The last must define a function
// 'transform' that takes the document and returns the new one.
type Transformer struct {
	JS *goja.Runtime
}

func (m *Transformer) init() error {
	m.JS = goja.New()
	env := make(map[string]interface{})
	m.JS.Set("_", env)

	env["log"] = func(x interface{}) interface{} {
		switch vv := x.(type) {
		case goja.Value:
			x = vv.Export()
		}
		bs, err := json.Marshal(&x)
		if err != nil {
			return err
		}
		log.Printf("%s\n", bs)

		return x
	}

	return nil
}

func (m *Transformer) load(filename string) error {
	log.Printf("loading %s", filename)

	src, err := ioutil.ReadFile(filename)
	if err != nil {
		return err
	}

	_, err = m.JS.RunScript(filename, string(src))
	return err
}

// loadDir loads every .js file in the directory.
func (m *Transformer) loadDir(dir string) error {
	files, err := ioutil.ReadDir(dir)
	if err != nil {
		return err
	}

	for _, file := range files {
		filename := file.Name()
		if !strings.HasSuffix(filename, ".js") {
			continue
		}
		if err = m.load(dir + "/" + filename); err != nil {
			return err
		}
	}

	return nil
}

// Transform loads the libraries in libDir (if not empty) and then the
// script, and calls 'transform' on the document.
func Transform(x interface{}, libDir, script string) (interface{}, error) {

	js, err := json.Marshal(&x)
	if err != nil {
		return nil, err
	}

	m := &Transformer{}

	if err := m.init(); err != nil {
		return nil, err
	}

	if libDir != "" {
		if err := m.loadDir(libDir); err != nil {
			return nil, err
		}
	}

	if err := m.load(script); err != nil {
		return nil, err
	}

	if _, is := goja.AssertFunction(m.JS.Get("transform")); !is {
		return nil, fmt.Errorf("%s doesn't define 'transform'", script)
	}

	v, err := m.JS.RunString(fmt.Sprintf("transform(%s)", js))
	if err != nil {
		return nil, err
	}

	return v.Export(), nil
}
