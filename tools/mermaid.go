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
	"fmt"
	"io"
	"strings"

	. "github.com/Comcast/patmatch/core"
)

type MermaidOpts struct {
	// ShowPatterns puts each clause's compact pattern in its
	// node.
	ShowPatterns bool `json:"showPatterns"`

	// ActionFill is the fill color for action nodes.
	ActionFill string `json:"actionFill,omitempty"`

	// GuardFill is the fill color for guard nodes.
	GuardFill string `json:"guardFill,omitempty"`
}

// Mermaid makes a Mermaid (https://mermaidjs.github.io/) flowchart
// of how the Spec's clauses are considered.
//
// Each clause is a decision.  A match leads to the clause's guard (if
// any) and then its action.  A miss leads to the next clause and
// finally to "no match".
func Mermaid(spec *Spec, w io.Writer, opts *MermaidOpts) error {

	if opts == nil {
		opts = &MermaidOpts{
			ShowPatterns: true,
			ActionFill:   "#bcf2db",
			GuardFill:    "#f2e6bc",
		}
	}

	parser := spec.PatternParser
	if parser == nil {
		parser = DefaultPatternParser
	}

	quote := func(s string) string {
		return strings.Replace(s, `"`, `#quot;`, -1)
	}

	fmt.Fprintf(w, "graph TB\n")
	fmt.Fprintf(w, "  subject((\"subject\"))\n")
	fmt.Fprintf(w, "  nomatch[\"no match\"]\n")

	ids := make([]int, 0, len(spec.Clauses))
	for i, c := range spec.Clauses {
		if c != nil {
			ids = append(ids, i)
		}
	}
	cid := func(n int) string {
		if n < len(ids) {
			return fmt.Sprintf("c%d", ids[n])
		}
		return "nomatch"
	}

	fmt.Fprintf(w, "  subject --> %s\n", cid(0))

	for n, i := range ids {
		c := spec.Clauses[i]
		id, next := cid(n), cid(n+1)

		label := fmt.Sprintf("clause %d", i)
		if opts.ShowPatterns {
			p, err := parser(spec.PatternSyntax, c.Pattern)
			if err != nil {
				return fmt.Errorf("clause %d: %w", i, err)
			}
			label += "<br/><code>" + quote(p.String()) + "</code>"
		}
		fmt.Fprintf(w, "  %s{\"%s\"}\n", id, label)
		fmt.Fprintf(w, "  %s -- no --> %s\n", id, next)

		aid := id + "a"
		doc := c.Doc
		if doc == "" {
			doc = "action"
		}
		fmt.Fprintf(w, "  %s[\"%s\"]\n", aid, quote(doc))
		if opts.ActionFill != "" {
			fmt.Fprintf(w, "  style %s fill:%s\n", aid, opts.ActionFill)
		}

		if c.Guard == nil {
			fmt.Fprintf(w, "  %s -- match --> %s\n", id, aid)
			continue
		}
		gid := id + "g"
		fmt.Fprintf(w, "  %s{\"guard\"}\n", gid)
		if opts.GuardFill != "" {
			fmt.Fprintf(w, "  style %s fill:%s\n", gid, opts.GuardFill)
		}
		fmt.Fprintf(w, "  %s -- match --> %s\n", id, gid)
		fmt.Fprintf(w, "  %s -- true --> %s\n", gid, aid)
		fmt.Fprintf(w, "  %s -- false --> %s\n", gid, next)
	}

	fmt.Fprintf(w, "\n")

	return nil
}
