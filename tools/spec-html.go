package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"

	"github.com/Comcast/patmatch/core"
	"github.com/Comcast/patmatch/interpreters"

	md "github.com/russross/blackfriday/v2"
	"gopkg.in/yaml.v2"
)

// RenderSpecHTML writes an HTML fragment that documents the Spec's
// clauses.
//
// Docs are Markdown.  Patterns are shown as YAML along with their
// compact form (when they decode).
func RenderSpecHTML(s *core.Spec, out io.Writer) error {
	f := func(format string, args ...interface{}) {
		fmt.Fprintf(out, format+"\n", args...)
	}

	f(`<div class="specDoc doc">%s</div>`, md.Run([]byte(s.Doc)))

	if len(s.Types) > 0 {
		f(`<div class="types"><table>`)
		for _, t := range s.Types {
			parent := t.Parent
			if parent == "" {
				parent = "Any"
			}
			arity := ""
			if t.Arity != nil {
				arity = fmt.Sprintf("%d", *t.Arity)
			}
			f(`<tr class="type"><td><code>%s</code></td><td><code>%s</code></td><td>%s</td></tr>`,
				html.EscapeString(t.Name), html.EscapeString(parent), arity)
		}
		f(`</table></div>`)
	}

	parser := s.PatternParser
	if parser == nil {
		parser = core.DefaultPatternParser
	}

	code := func(a *core.ActionSource) (string, error) {
		src, is := a.Source.(string)
		if !is {
			bs, err := yaml.Marshal(a.Source)
			if err != nil {
				return "", err
			}
			src = string(bs)
		}
		interpreter := a.Interpreter
		if interpreter == "" {
			interpreter = "default"
		}
		return fmt.Sprintf(`<div class="code"><span class="interpreter">%s</span><pre>%s</pre></div>`,
			html.EscapeString(interpreter), html.EscapeString(src)), nil
	}

	f(`<div class="clauses"><table>`)
	for i, c := range s.Clauses {
		if c == nil {
			continue
		}
		f(`<tr class="clause"><td><div id="clause%d" class="clauseNum">%d</div></td><td>`, i, i)
		if c.Doc != "" {
			f(`<div class="clauseDoc doc">%s</div>`, md.Run([]byte(c.Doc)))
		}
		f(`<table>`)

		bs, err := yaml.Marshal(c.Pattern)
		if err != nil {
			return err
		}
		f(`<tr><td>pattern</td><td><pre>%s</pre></td></tr>`, html.EscapeString(string(bs)))
		if p, err := parser(s.PatternSyntax, c.Pattern); err == nil {
			f(`<tr><td></td><td><code class="compact">%s</code></td></tr>`, html.EscapeString(p.String()))
		}

		if c.Guard != nil {
			src, err := code(c.Guard)
			if err != nil {
				return err
			}
			f(`<tr><td>guard</td><td>%s</td></tr>`, src)
		}
		if c.Action != nil {
			src, err := code(c.Action)
			if err != nil {
				return err
			}
			f(`<tr><td>action</td><td>%s</td></tr>`, src)
		}
		f(`</table>`)
		f(`</td></tr>`)
	}
	f(`</table></div>`)

	return nil
}

// RenderSpecPage writes a complete HTML page for the Spec.
//
// If includeSource is true, the page also has the Spec's JSON in a
// script variable thisSpec.
func RenderSpecPage(s *core.Spec, out io.Writer, cssFiles []string, includeSource bool) error {

	if cssFiles == nil {
		cssFiles = []string{"/static/spec-html.css"}
	}

	title := html.EscapeString(s.Name)

	fmt.Fprintf(out, `<!DOCTYPE html>
<meta charset="utf-8">
<html>
  <head>
  <title>%s</title>
`, title)

	if includeSource {
		js, err := json.Marshal(s)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, `
  <script>
  var thisSpec = %s;
  </script>
`, js)
	}

	for _, cssFile := range cssFiles {
		fmt.Fprintf(out, "  <link href=\"%s\" rel=\"stylesheet\">\n", cssFile)
	}

	fmt.Fprintf(out, `
  </head>
  <body>
    <h1>%s</h1>
`, title)

	if err := RenderSpecHTML(s, out); err != nil {
		return err
	}

	fmt.Fprintf(out, `
  </body>
</html>
`)

	return nil
}

// ReadAndRenderSpecPage reads the Spec file, checks that it compiles
// with the standard interpreters, and renders a page.
func ReadAndRenderSpecPage(filename string, cssFiles []string, out io.Writer, includeSource bool) error {
	spec, err := ReadSpecFile(filename)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err = spec.Compile(ctx, interpreters.Standard(), true); err != nil {
		return err
	}

	return RenderSpecPage(spec, out, cssFiles, includeSource)
}
