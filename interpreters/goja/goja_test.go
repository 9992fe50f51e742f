package goja

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Comcast/patmatch/core"
	"github.com/Comcast/patmatch/match"
	. "github.com/Comcast/patmatch/util/testutil"
)

func exec(t *testing.T, i *Interpreter, bs *match.Bindings, code interface{}) interface{} {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	compiled, err := i.Compile(ctx, code)
	if err != nil {
		t.Fatal(err)
	}

	x, err := i.Exec(ctx, bs, code, compiled)
	if err != nil {
		t.Fatal(err)
	}
	return x
}

func TestActionsSimple(t *testing.T) {
	x := exec(t, NewInterpreter(), nil, `return {likes:"chips"};`)
	SameJS(t, "result", x, `{"likes":"chips"}`)
}

func TestActionsBindings(t *testing.T) {
	bs := match.NewBindings().
		Extend("x", 2).
		Extend("name", "homer").
		Extend("_", "ignored").
		Extend("xs", match.Tuple{1, 2})

	i := NewInterpreter()

	if x := exec(t, i, bs, `return x + 1;`); fmt.Sprint(x) != "3" {
		t.Fatalf("got %#v", x)
	}
	if x := exec(t, i, bs, `return _.bindings.name;`); x != "homer" {
		t.Fatalf("got %#v", x)
	}
	if x := exec(t, i, bs, `return xs.length;`); fmt.Sprint(x) != "2" {
		t.Fatalf("got %#v", x)
	}
	if x := exec(t, i, bs, `return typeof _ === "object" && _.bindings._;`); x != "ignored" {
		t.Fatalf("got %#v", x)
	}

	i.NoGlobals = true
	if x := exec(t, i, bs, `return typeof x;`); x != "undefined" {
		t.Fatalf("got %#v", x)
	}
}

func TestActionsGuardResult(t *testing.T) {
	bs := match.NewBindings().Extend("w", 3).Extend("h", 2)
	if x := exec(t, NewInterpreter(), bs, `return h < w;`); x != true {
		t.Fatalf("got %#v", x)
	}
	if x := exec(t, NewInterpreter(), bs, `h < w;`); x != nil {
		t.Fatalf("no return still gave %#v", x)
	}
}

func TestActionsTimeout(t *testing.T) {
	code := `for (;;) { sleep(10); } return null;`

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	i := NewInterpreter()
	i.Testing = true
	compiled, err := i.Compile(ctx, code)
	if err != nil {
		t.Fatal(err)
	}

	if _, err = i.Exec(ctx, nil, code, compiled); err == nil {
		t.Fatal("didn't timeout")
	}
	if err != Interrupted {
		t.Fatalf("surprised by \"%s\"", err)
	}
}

func TestActionsError(t *testing.T) {
	code := `likes + tacos; return null;`

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	i := NewInterpreter()
	compiled, err := i.Compile(ctx, code)
	if err != nil {
		t.Fatal(err)
	}

	if _, err = i.Exec(ctx, nil, code, compiled); err == nil {
		t.Fatal("didn't protest")
	}
}

func TestActionsCompileError(t *testing.T) {
	i := NewInterpreter()
	if _, err := i.Compile(context.Background(), `return {`); err == nil {
		t.Fatal("didn't protest")
	}
	if _, err := i.Compile(context.Background(), 42); err == nil {
		t.Fatal("didn't protest")
	}
}

func TestActionsCronNextGood(t *testing.T) {
	x := exec(t, NewInterpreter(), nil, `return _.cronNext("* 0 * * *");`)
	s, is := x.(string)
	if !is {
		t.Fatalf("%#v is a %T, not a string", x, x)
	}
	if _, err := time.Parse(time.RFC3339Nano, s); err != nil {
		t.Fatal(err)
	}
}

func TestActionsCronNextBad(t *testing.T) {
	code := `return _.cronNext("bad");`

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	i := NewInterpreter()
	compiled, err := i.Compile(ctx, code)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := i.Exec(ctx, nil, code, compiled); err == nil {
		t.Fatal("didn't protest")
	}
}

func TestActionsMatch(t *testing.T) {
	i := NewInterpreter()

	x := exec(t, i, nil, `return _.match(["?a", "?rest..."], [1, 2, 3]);`)
	SameJS(t, "bindings", x, `{"a":1,"rest":[2,3]}`)

	if x = exec(t, i, nil, `return _.match(["?a", "?a"], [1, 2]);`); x != nil {
		t.Fatalf("matched: %#v", x)
	}

	if x = exec(t, i, nil, `return _.esc("a b");`); x != "a+b" {
		t.Fatalf("got %#v", x)
	}
}

func TestActionSourceCompile(t *testing.T) {
	ctx := context.Background()
	as := &core.ActionSource{
		Interpreter: "goja",
		Source:      `return n * 2;`,
	}

	// DefaultInterpreters has "goja" thanks to this package's init.
	action, err := as.Compile(ctx, nil)
	if err != nil {
		t.Fatal(err)
	}

	x, err := action.Exec(ctx, match.NewBindings().Extend("n", 21))
	if err != nil {
		t.Fatal(err)
	}
	if fmt.Sprint(x) != "42" {
		t.Fatalf("got %#v", x)
	}

	g, err := (&core.ActionSource{
		Interpreter: "goja",
		Source:      `return "yes";`,
	}).CompileGuard(ctx, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err = g.Check(ctx, match.NewBindings()); err == nil {
		t.Fatal("non-boolean guard result accepted")
	}
}

func TestActionsRequireSimple(t *testing.T) {
	i := NewInterpreter()
	i.LibraryProvider = MakeMapLibraryProvider(map[string]string{
		"foo": `function foo() { return "queso"; }`,
		"bar": `function bar() { return "chips"; }`,
	})

	code := map[string]interface{}{
		"requires": []interface{}{"foo", "bar"},
		"code":     `return [foo(), bar()];`,
	}

	SameJS(t, "result", exec(t, i, nil, code), `["queso","chips"]`)

	code["requires"] = "baz"
	if _, err := i.Compile(context.Background(), code); err == nil {
		t.Fatal("undefined library accepted")
	}
}

func TestActionsLibraryCompileError(t *testing.T) {
	i := NewInterpreter()
	if _, err := i.CompileLibrary(context.Background(), "foo", `function foo() this won't compile { return 0; }`); err == nil {
		t.Fatal("bad library compiled")
	}
}

func TestActionsRequireHTTP(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `
function foo() { return "queso"; }
`)
	})

	server := httptest.NewServer(handler)
	defer server.Close()

	code := map[string]interface{}{
		"requires": []interface{}{server.URL},
		"code":     `return {wants: foo()}`,
	}

	SameJS(t, "result", exec(t, NewInterpreter(), nil, code), `{"wants":"queso"}`)
}

func TestFileLibraryProvider(t *testing.T) {
	p := MakeFileLibraryProvider(".")
	ctx := context.Background()
	for _, name := range []string{"nope", "file://../secrets.js", "gopher://x"} {
		if _, err := p(ctx, nil, name); err == nil {
			t.Fatalf("%s accepted", name)
		}
	}
}

func benchmarkCompiling(b *testing.B, compiling bool) {
	code := `
function radians (num) {
  return num * Math.PI / 180;
}

function haversine (lon1,lat1,lon2,lat2) {
  var R = 6371;
  var dLat = radians(lat2-lat1);
  var dLon = radians(lon2-lon1);
  var lat1 = radians(lat1);
  var lat2 = radians(lat2);
  var a = Math.sin(dLat/2) * Math.sin(dLat/2) + Math.sin(dLon/2) * Math.sin(dLon/2) * Math.cos(lat1) * Math.cos(lat2);
  var c = 2 * Math.atan2(Math.sqrt(a), Math.sqrt(1-a));
  return R * c;
}

return lat < 90 && haversine(0, 0, lon, lat) > 0;
`

	ctx := context.Background()
	i := NewInterpreter()
	bs := match.NewBindings().Extend("lat", 45).Extend("lon", 45)

	var compiled interface{}
	if compiling {
		var err error
		if compiled, err = i.Compile(ctx, code); err != nil {
			b.Fatal(err)
		}
	}

	b.ResetTimer()

	for n := 0; n < b.N; n++ {
		if _, err := i.Exec(ctx, bs, code, compiled); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkPrecompile(b *testing.B) {
	benchmarkCompiling(b, true)
}

func BenchmarkNoPrecompile(b *testing.B) {
	benchmarkCompiling(b, false)
}
