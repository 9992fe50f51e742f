package tools

import (
	"errors"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInline(t *testing.T) {
	f := func(name string) ([]byte, error) {
		switch name {
		case "x":
			return []byte("XX"), nil
		case "loop":
			return []byte(`%inline("loop")`), nil
		}
		return nil, errors.New("unknown " + name)
	}

	for _, c := range []struct {
		in, want string
	}{
		{`a %inline("x") b`, "a XX b"},
		{`%inline("x")%inline ("x")`, "XXXX"},
		{`nothing`, "nothing"},
		{`%inline("loop")`, `%inline("loop")`},
	} {
		got, err := Inline([]byte(c.in), f)
		if err != nil {
			t.Fatal(err)
		}
		if string(got) != c.want {
			t.Fatalf("%q: got %q", c.in, got)
		}
	}

	if _, err := Inline([]byte(`%inline("y")`), f); err == nil {
		t.Fatal("missing inline accepted")
	}
}

func TestReadSpecFile(t *testing.T) {
	dir, err := ioutil.TempDir("", "inline")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	js := `return 0 < n;`
	if err = ioutil.WriteFile(filepath.Join(dir, "positive.js"), []byte(js), 0644); err != nil {
		t.Fatal(err)
	}
	spec := `
name: positive
clauses:
  - pattern: "?n"
    guard:
      interpreter: goja
      source: |
        %inline("positive.js")
    action:
      source: positive
`
	filename := filepath.Join(dir, "spec.yaml")
	if err = ioutil.WriteFile(filename, []byte(spec), 0644); err != nil {
		t.Fatal(err)
	}

	s, err := ReadSpecFile(filename)
	if err != nil {
		t.Fatal(err)
	}
	src, is := s.Clauses[0].Guard.Source.(string)
	if !is || strings.TrimSpace(src) != js {
		t.Fatalf("bad guard source %#v", s.Clauses[0].Guard.Source)
	}
}
