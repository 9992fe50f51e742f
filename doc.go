// Package patmatch provides structural pattern matching over
// JSON-like values and ordered clause sets that dispatch on the first
// matching pattern.
//
// Patterns, bindings and the type registry are in package 'match',
// clause sets and clause-set documents are in package 'core', and
// guard/action interpreters are in 'interpreters'.  Some command-line
// tools and an HTTP service are in 'cmd' and 'service'.
package patmatch
