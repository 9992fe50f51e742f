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

// Package core evaluates ordered clauses against a subject.
//
// A Clause has a Pattern (see package match), an optional Guard, and
// an Action.  A ClauseSet considers its clauses in order.  The first
// clause whose pattern matches the subject and whose guard holds
// wins: its Action runs with the bindings from the match, and the
// result is returned.  When no clause applies, Evaluate returns
// NoMatch.
//
// Guards and actions can be Go functions (FuncAction) or code
// (ActionSource).  Code needs an Interpreter, which knows how to
// Compile and Exec it.  See the interpreters package.
//
// A Spec is a ClauseSet as data, which can be written in YAML or
// JSON.  Patterns in a Spec use match.Decode's representation.  To
// use a Spec, Compile() it with some Interpreters and then
// Evaluate().
//
// See ShapesSpec for an example.
package core
