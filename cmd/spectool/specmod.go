package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/Comcast/patmatch/core"
	"github.com/Comcast/patmatch/match"
	"github.com/Comcast/patmatch/tools"

	"github.com/jsccast/yaml"
)

var Mods = map[string]Mod{
	"addCatchAll": &AddCatchAllMod{},
	"declareType": &DeclareTypeMod{},
	"setId":       &SetIdMod{},
	"analyze":     &Analyzer{},
	"mermaid":     &Mermaider{},
	"html":        &HTMLRenderer{},
}

var (
	CatchAllExists = errors.New("last clause already matches everything")
	TypeExists     = errors.New("type exists")
)

// Mod is a subcommand that reads a Spec from stdin and maybe
// modifies it.
type Mod interface {
	F(*core.Spec) error
	Doc() string
	Flags() *flag.FlagSet
}

// AddCatchAll appends a clause that matches anything and returns the
// given value.
//
// The Spec's Doc is updated to note that this processing has occurred.
func AddCatchAll(s *core.Spec, value interface{}) error {
	if n := len(s.Clauses); 0 < n && s.Clauses[n-1] != nil {
		p, err := match.Decode(s.Clauses[n-1].Pattern)
		if err == nil && s.Clauses[n-1].Guard == nil {
			switch p.(type) {
			case match.Wildcard, match.Variable:
				return CatchAllExists
			}
		}
	}

	s.Clauses = append(s.Clauses, &core.ClauseSource{
		Doc:     "Matches anything.",
		Pattern: "?",
		Action: &core.ActionSource{
			Interpreter: "constant",
			Source:      value,
		},
	})

	s.Doc = s.Doc + `

This spec has been processed by AddCatchAll.
`
	return nil
}

type AddCatchAllMod struct {
	ValueJS string
}

func (m *AddCatchAllMod) Doc() string {
	return `
Appends a clause with pattern "?" that returns the given constant (JSON).
`
}

func (m *AddCatchAllMod) Flags() *flag.FlagSet {
	flags := flag.NewFlagSet("addCatchAll", flag.PanicOnError)
	flags.StringVar(&m.ValueJS, "v", "null", "value (JSON) the new clause returns")
	return flags
}

func (m *AddCatchAllMod) F(s *core.Spec) error {
	var v interface{}
	if err := json.Unmarshal([]byte(m.ValueJS), &v); err != nil {
		return err
	}
	return AddCatchAll(s, v)
}

type DeclareTypeMod struct {
	Name   string
	Parent string
	Arity  int
}

func (m *DeclareTypeMod) Doc() string {
	return `
Declares a type.  A non-negative arity makes it a constructor.
`
}

func (m *DeclareTypeMod) Flags() *flag.FlagSet {
	flags := flag.NewFlagSet("declareType", flag.PanicOnError)
	flags.StringVar(&m.Name, "n", "", "type name")
	flags.StringVar(&m.Parent, "p", "", "parent type name")
	flags.IntVar(&m.Arity, "a", -1, "constructor arity")
	return flags
}

func (m *DeclareTypeMod) F(s *core.Spec) error {
	if m.Name == "" {
		return fmt.Errorf("need a type name (-n)")
	}
	for _, t := range s.Types {
		if t != nil && t.Name == m.Name {
			return TypeExists
		}
	}
	t := &core.TypeDecl{
		Name:   m.Name,
		Parent: m.Parent,
	}
	if 0 <= m.Arity {
		arity := m.Arity
		t.Arity = &arity
	}
	s.Types = append(s.Types, t)
	return nil
}

type SetIdMod struct {
}

func (m *SetIdMod) Doc() string {
	return `
Sets the Spec's id to its content hash.
`
}

func (m *SetIdMod) Flags() *flag.FlagSet {
	return flag.NewFlagSet("setId", flag.PanicOnError)
}

func (m *SetIdMod) F(s *core.Spec) error {
	id, err := s.ComputeId()
	if err != nil {
		return err
	}
	s.Id = id
	return nil
}

type Analyzer struct {
}

func (m *Analyzer) F(s *core.Spec) error {
	a, err := tools.Analyze(s)
	if err != nil {
		return err
	}
	bs, err := yaml.Marshal(&a)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "%s\n", bs)

	return nil
}

func (m *Analyzer) Doc() string {
	return `
Writes an analysis (YAML) of the clauses to stderr.
`
}

func (m *Analyzer) Flags() *flag.FlagSet {
	return flag.NewFlagSet("analyze", flag.PanicOnError)
}

type Mermaider struct {
	OutputFilename string
	ShowPatterns   bool
}

func (m *Mermaider) F(s *core.Spec) error {
	f, err := os.Create(m.OutputFilename)
	if err != nil {
		return err
	}
	defer f.Close()

	return tools.Mermaid(s, f, &tools.MermaidOpts{
		ShowPatterns: m.ShowPatterns,
	})
}

func (m *Mermaider) Doc() string {
	return `
Writes a Mermaid flowchart of the clauses.
`
}

func (m *Mermaider) Flags() *flag.FlagSet {
	fs := flag.NewFlagSet("mermaid", flag.PanicOnError)
	fs.StringVar(&m.OutputFilename, "o", "spec.mermaid", "output filename")
	fs.BoolVar(&m.ShowPatterns, "p", true, "show patterns")
	return fs
}

type HTMLRenderer struct {
	OutputFilename string
	IncludeSource  bool
}

func (m *HTMLRenderer) F(s *core.Spec) error {
	f, err := os.Create(m.OutputFilename)
	if err != nil {
		return err
	}
	defer f.Close()

	return tools.RenderSpecPage(s, f, nil, m.IncludeSource)
}

func (m *HTMLRenderer) Doc() string {
	return `
Writes an HTML rendering of the Spec.
`
}

func (m *HTMLRenderer) Flags() *flag.FlagSet {
	fs := flag.NewFlagSet("html", flag.PanicOnError)
	fs.StringVar(&m.OutputFilename, "o", "spec.html", "output filename")
	fs.BoolVar(&m.IncludeSource, "s", false, "include the YAML source")
	return fs
}
