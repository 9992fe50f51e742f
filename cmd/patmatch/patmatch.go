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

// Package main is a little command-line utility to invoke pattern
// matching or to evaluate a subject with a clause-set document.
//
//	patmatch -p '{"likes":"?liked"}' -m '{"likes":"tacos"}' -w '{"liked":"tacos"}'
//	patmatch -p '["?x","?rest..."]' -m '[1,2,3]'
//	patmatch -s shapes.yaml -m '{"tag":"Circle","args":[2]}'
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"reflect"
	"runtime"
	"time"

	"github.com/Comcast/patmatch/core"
	"github.com/Comcast/patmatch/interpreters"
	"github.com/Comcast/patmatch/match"
	"github.com/Comcast/patmatch/tools"

	"github.com/fatih/color"
)

var (
	good = color.New(color.FgGreen, color.Bold)
	bad  = color.New(color.FgRed, color.Bold)
	info = color.New(color.FgCyan)
)

func main() {
	var (
		subjectJS  = flag.String("m", "", "subject in JSON")
		patternJS  = flag.String("p", "", "pattern in JSON")
		bindingsJS = flag.String("b", "{}", "initial bindings in JSON")
		wantJS     = flag.String("w", "", "wanted bindings in JSON (null for no match)")
		specFile   = flag.String("s", "", "clause-set document (YAML or JSON) to evaluate the subject")
		timeout    = flag.Duration("t", 5*time.Second, "evaluation timeout")
		noColor    = flag.Bool("no-color", false, "disable colored output")

		bench = flag.Int("bench", 0, "number of times to run (and report time)")

		verbose = flag.Bool("v", false, "verbosity")
	)

	flag.Parse()

	if *noColor {
		color.NoColor = true
	}

	subject, err := match.ParseJSON([]byte(*subjectJS))
	if err != nil {
		fatalf("bad subject: %s", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if *specFile != "" {
		if err := evaluate(ctx, *specFile, subject, *verbose); err != nil {
			fatalf("%s", err)
		}
		return
	}

	pattern, err := match.ParsePattern([]byte(*patternJS))
	if err != nil {
		fatalf("bad pattern: %s", err)
	}
	if *verbose {
		info.Fprintf(os.Stderr, "pattern %s\n", pattern)
	}

	var initial map[string]interface{}
	if err := json.Unmarshal([]byte(*bindingsJS), &initial); err != nil {
		fatalf("bad bindings: %s", err)
	}
	bs := match.BindingsFrom(initial)

	if 0 < *bench {
		var stats runtime.MemStats
		runtime.ReadMemStats(&stats)
		allocs := stats.TotalAlloc
		then := time.Now()
		for i := 0; i < *bench; i++ {
			if _, err := match.MatchWith(ctx, pattern, subject, bs.Copy()); err != nil {
				fatalf("%s", err)
			}
		}
		elapsed := time.Now().Sub(then)
		meanNanos := elapsed.Nanoseconds() / int64(*bench)

		runtime.ReadMemStats(&stats)
		allocated := (stats.TotalAlloc - allocs) / uint64(*bench)

		log.Printf("%d iterations, %d mean ns/Match, %d mean bytes allocated per Match", *bench, meanNanos, allocated)
	}

	got, err := match.MatchWith(ctx, pattern, subject, bs)
	if err != nil {
		fatalf("%s", err)
	}

	if *wantJS != "" {
		var want interface{}
		if err := json.Unmarshal([]byte(*wantJS), &want); err != nil {
			fatalf("bad wanted bindings: %s", err)
		}
		same, err := Same(want, got, *verbose)
		if err != nil {
			fatalf("%s", err)
		}
		if !same {
			bad.Printf("false\n")
			os.Exit(1)
		}
		good.Printf("true\n")
		return
	}

	if got == nil {
		bad.Printf("null\n")
		return
	}

	js, err := json.Marshal(got)
	if err != nil {
		fatalf("%s", err)
	}
	good.Printf("%s\n", js)
}

// evaluate compiles the document with the standard interpreters and
// evaluates the subject.
func evaluate(ctx context.Context, filename string, subject interface{}, verbose bool) error {
	spec, err := tools.ReadSpecFile(filename)
	if err != nil {
		return err
	}
	if err = spec.Compile(ctx, interpreters.Standard(), true); err != nil {
		return err
	}

	var (
		r  *core.Result
		ts *core.Traces
	)
	if verbose {
		r, ts, err = spec.Trace(ctx, subject)
		if ts != nil {
			for _, m := range ts.Messages {
				js, _ := json.Marshal(m)
				info.Fprintf(os.Stderr, "%s\n", js)
			}
		}
	} else {
		r, err = spec.Evaluate(ctx, subject)
	}

	if err == core.NoMatch {
		bad.Printf("no match\n")
		return nil
	}
	if err != nil {
		return err
	}

	js, err := json.Marshal(r)
	if err != nil {
		return err
	}
	good.Printf("%s\n", js)
	return nil
}

// Same checks that the bindings we got are what we wanted.
//
// A nil want means no match was wanted.  Uses reflect.DeepEqual on
// the JSON representations to do the hard work.
func Same(want interface{}, got *match.Bindings, verbose bool) (bool, error) {
	if want == nil || got == nil {
		return want == nil && got == nil, nil
	}

	js, err := json.Marshal(got)
	if err != nil {
		return false, err
	}
	var have interface{}
	if err = json.Unmarshal(js, &have); err != nil {
		return false, err
	}

	if reflect.DeepEqual(want, have) {
		return true, nil
	}
	if verbose {
		wjs, err := json.Marshal(&want)
		if err != nil {
			return false, err
		}
		fmt.Fprintf(os.Stderr, "disagreement: %s != %s\n", js, wjs)
	}
	return false, nil
}

func fatalf(format string, args ...interface{}) {
	bad.Fprintf(os.Stderr, "error: "+format+"\n", args...)
	os.Exit(1)
}
