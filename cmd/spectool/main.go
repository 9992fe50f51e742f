package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io/ioutil"
	"os"
	"sort"

	"github.com/Comcast/patmatch/core"

	"github.com/jsccast/yaml"
)

func main() {

	if len(os.Args) < 2 {
		Usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "transform":
		flags := flag.NewFlagSet("transform", flag.ExitOnError)
		libDir := flags.String("l", "", "directory of .js libraries to load first")
		script := flags.String("f", "transform.js", "script that defines transform(doc)")
		if err := flags.Parse(os.Args[2:]); err != nil {
			fail(err)
		}

		bs, err := ioutil.ReadAll(os.Stdin)
		if err != nil {
			fail(err)
		}
		var x interface{}
		if err = yaml.Unmarshal(bs, &x); err != nil {
			fail(err)
		}
		if x, err = core.StringMaps(x); err != nil {
			fail(err)
		}

		if x, err = Transform(x, *libDir, *script); err != nil {
			fail(err)
		}

		if bs, err = yaml.Marshal(&x); err != nil {
			fail(err)
		}

		fmt.Printf("%s\n", bs)

	case "yamltojson":
		pretty := false

		switch len(os.Args) {
		case 2:
		case 3:
			switch os.Args[2] {
			case "-p":
				pretty = true
			default:
				fail(fmt.Errorf("unsupported args: %v", os.Args[1:]))
			}
		default:
			fail(fmt.Errorf("unsupported args: %v", os.Args[1:]))
		}

		s := readSpec()

		var (
			bs  []byte
			err error
		)
		if pretty {
			bs, err = json.MarshalIndent(&s, "", "  ")
		} else {
			bs, err = json.Marshal(&s)
		}
		if err != nil {
			fail(err)
		}

		if _, err = os.Stdout.Write(bs); err != nil {
			fail(err)
		}

	case "jsontoyaml":

		bs, err := ioutil.ReadAll(os.Stdin)
		if err != nil {
			fail(err)
		}

		var s *core.Spec

		if err = json.Unmarshal(bs, &s); err != nil {
			fail(err)
		}

		if bs, err = yaml.Marshal(&s); err != nil {
			fail(err)
		}

		if _, err = os.Stdout.Write(bs); err != nil {
			fail(err)
		}

	case "id":
		id, err := readSpec().ComputeId()
		if err != nil {
			fail(err)
		}
		fmt.Println(id)

	default:

		mod, have := Mods[os.Args[1]]
		if !have {
			fmt.Printf("Unknown subcommand \"%s\"\n", os.Args[1])
			Usage()
			os.Exit(1)
		}

		if err := mod.Flags().Parse(os.Args[2:]); err != nil {
			fail(err)
		}

		s := readSpec()

		if err := mod.F(s); err != nil {
			fail(err)
		}

		bs, err := yaml.Marshal(&s)
		if err != nil {
			fail(err)
		}

		if _, err = os.Stdout.Write(bs); err != nil {
			fail(err)
		}
	}
}

// readSpec parses the document on stdin.  Empty input gives
// DefaultSpecYAML.
func readSpec() *core.Spec {
	bs, err := ioutil.ReadAll(os.Stdin)
	if err != nil {
		fail(err)
	}

	if len(bs) == 0 {
		bs = []byte(DefaultSpecYAML)
	}

	s, err := core.ParseSpec(bs)
	if err != nil {
		fail(err)
	}
	return s
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}

func Usage() {
	fmt.Printf("Subcommands:\n\n")
	names := make([]string, 0, len(Mods))
	for name := range Mods {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		mod := Mods[name]
		mod.Flags().Usage()
		fmt.Println("  " + mod.Doc())
		fmt.Println()
	}
	fmt.Println("Usage of yamltojson:")
	fmt.Printf("  -p    pretty-print\n\n")
	fmt.Printf("Usage of jsontoyaml: (no arguments)\n\n")
	fmt.Printf("Usage of id: (no arguments)\n\n")
	fmt.Printf("Usage of transform:\n  -f    script defining transform(doc)\n  -l    library directory\n\n")
}

var DefaultSpecYAML = `clauses:
`
