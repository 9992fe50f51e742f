package match

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/Comcast/patmatch/seq"
)

func ints(ns ...int) []interface{} {
	acc := make([]interface{}, len(ns))
	for i, n := range ns {
		acc[i] = n
	}
	return acc
}

func mustMatch(t *testing.T, p Pattern, x interface{}) *Bindings {
	t.Helper()
	bs, err := Match(context.Background(), p, x)
	if err != nil {
		t.Fatal(err)
	}
	if bs == nil {
		t.Fatalf("%v didn't match %v", p, x)
	}
	return bs
}

func mustNotMatch(t *testing.T, p Pattern, x interface{}) {
	t.Helper()
	bs, err := Match(context.Background(), p, x)
	if err != nil {
		t.Fatal(err)
	}
	if bs != nil {
		t.Fatalf("%v matched %v: %v", p, x, bs)
	}
}

func checkBinding(t *testing.T, bs *Bindings, name string, want interface{}) {
	t.Helper()
	got, have := bs.Get(name)
	if !have {
		t.Fatalf("%s not bound in %v", name, bs)
	}
	if !Equal(got, want) {
		t.Fatalf("%s: got %v, wanted %v", name, got, want)
	}
}

func TestLiteral(t *testing.T) {
	mustMatch(t, Lit(1), 1)
	mustMatch(t, Lit(1), float64(1))
	mustMatch(t, Lit(uint8(3)), int64(3))
	mustMatch(t, Lit("a"), "a")
	mustMatch(t, Lit(nil), nil)
	mustMatch(t, Lit(ints(1, 2)), []int{1, 2})

	// Integers compare exactly, even beyond float64 precision.
	mustNotMatch(t, Lit(int64(9007199254740993)), int64(9007199254740992))
	mustNotMatch(t, Lit(uint64(18446744073709551615)), uint64(18446744073709551614))
	mustNotMatch(t, Lit(int64(-1)), uint64(18446744073709551615))
	mustMatch(t, Lit(uint64(9007199254740993)), int64(9007199254740993))
	mustMatch(t, Lit(int8(-5)), int64(-5))
	mustNotMatch(t, Must(Seq(Var("x"), Var("x"))), []int64{9007199254740993, 9007199254740992})
	mustNotMatch(t, Must(Rng(int64(9007199254740993), int64(9007199254740995))), int64(9007199254740992))
	mustMatch(t, Must(Rng(int64(-9007199254740995), int64(9007199254740993))), uint64(9007199254740993))
	mustNotMatch(t, Lit(1), "1")
	mustNotMatch(t, Lit(true), 1)
	mustNotMatch(t, Lit(nil), false)
	mustNotMatch(t, Lit(ints(1, 2)), ints(1, 2, 3))

	if bs := mustMatch(t, Lit(1), 1); bs.Len() != 0 {
		t.Fatal(bs)
	}
}

func TestLiteralStrict(t *testing.T) {
	m := &Matcher{}
	bs, err := m.Match(context.Background(), Lit(1), float64(1))
	if err != nil {
		t.Fatal(err)
	}
	if bs != nil {
		t.Fatal("matched without NumericFudge")
	}
}

func TestVariable(t *testing.T) {
	bs := mustMatch(t, Var("x"), "hello")
	checkBinding(t, bs, "x", "hello")
	if names := bs.Names(); !reflect.DeepEqual(names, []string{"x"}) {
		t.Fatal(names)
	}
}

func TestLinearConsistency(t *testing.T) {
	p := Must(Tup(Var("x"), Var("x")))

	bs := mustMatch(t, p, Tuple{3, 3})
	checkBinding(t, bs, "x", 3)
	if bs.Len() != 1 {
		t.Fatal(bs)
	}

	mustNotMatch(t, p, Tuple{3, 4})
}

func TestDiscardRebinds(t *testing.T) {
	p := Must(Seq(Any(), Var("_"), Var("y")))
	bs := mustMatch(t, p, ints(1, 2, 3))
	checkBinding(t, bs, Discard, 2)
	checkBinding(t, bs, "y", 3)
}

func TestWildcardNonInterference(t *testing.T) {
	ctx := context.Background()
	p := Must(Seq(Var("a"), Any(), Lit(3)))
	quiet := &Matcher{NumericFudge: true}
	for _, x := range []interface{}{ints(1, 2, 3), ints(1, 2, 4), ints(1)} {
		loud, err := DefaultMatcher.Match(ctx, p, x)
		if err != nil {
			t.Fatal(err)
		}
		soft, err := quiet.Match(ctx, p, x)
		if err != nil {
			t.Fatal(err)
		}
		if (loud == nil) != (soft == nil) {
			t.Fatalf("%v: %v vs %v", x, loud, soft)
		}
		if loud == nil {
			continue
		}
		a, _ := loud.Get("a")
		b, _ := soft.Get("a")
		if a != b {
			t.Fatal(a, b)
		}
		if _, have := soft.Get(Discard); have {
			t.Fatal("bound discard")
		}
	}
}

func TestRangeDuality(t *testing.T) {
	p := Must(Rng(3, 10))
	mustMatch(t, p, 7)
	mustMatch(t, p, 3.0)
	mustMatch(t, p, 10)
	mustNotMatch(t, p, 11)
	mustNotMatch(t, p, "7")
	mustMatch(t, p, Interval{3, 10})
	mustNotMatch(t, p, Interval{3, 9})
	mustNotMatch(t, p, Interval{4, 5})

	mustMatch(t, Must(Rng("a", "m")), "hello")
	mustNotMatch(t, Must(Rng("a", "m")), "world")
}

func TestSequenceRest(t *testing.T) {
	p := Must(Seq(Var("a"), Splat(Var("b"))))

	bs := mustMatch(t, p, ints(1, 2, 3, 4))
	checkBinding(t, bs, "a", 1)
	checkBinding(t, bs, "b", ints(2, 3, 4))
	b, _ := bs.Get("b")
	if _, is := b.(seq.Vector); !is {
		t.Fatalf("rest is a %T", b)
	}

	bs = mustMatch(t, p, ints(1))
	checkBinding(t, bs, "a", 1)
	checkBinding(t, bs, "b", ints())

	mustNotMatch(t, p, ints())
	mustNotMatch(t, p, "abc")
}

func TestSequenceExact(t *testing.T) {
	p := Must(Seq(Var("a"), Lit(2)))
	checkBinding(t, mustMatch(t, p, []int{1, 2}), "a", 1)
	mustNotMatch(t, p, ints(1, 2, 3))
	mustNotMatch(t, p, ints(1))
	mustNotMatch(t, p, Tuple{1, 2})
}

func TestSequenceRestAliases(t *testing.T) {
	xs := ints(1, 2, 3)
	bs := mustMatch(t, Must(Seq(Any(), Splat(Var("r")))), xs)
	xs[2] = 42
	checkBinding(t, bs, "r", ints(2, 42))
}

func TestSequenceRows(t *testing.T) {
	g, err := seq.GridOf([][]interface{}{ints(1, 2), ints(3, 4), ints(5, 6)})
	if err != nil {
		t.Fatal(err)
	}
	bs := mustMatch(t, Must(Seq(Var("a"), Splat(Var("b")))), g)
	checkBinding(t, bs, "a", ints(1, 2))
	checkBinding(t, bs, "b", [][]interface{}{ints(3, 4), ints(5, 6)})
}

func TestSequenceOfGridRows(t *testing.T) {
	// [[1 2 3], a] against [1 2 3; 4 5 6]
	x := [][]interface{}{ints(1, 2, 3), ints(4, 5, 6)}
	p := Must(Seq(Must(Grd([]Pattern{Lit(1), Lit(2), Lit(3)})), Var("a")))
	checkBinding(t, mustMatch(t, p, x), "a", ints(4, 5, 6))

	g, err := seq.GridOf(x)
	if err != nil {
		t.Fatal(err)
	}
	checkBinding(t, mustMatch(t, p, g), "a", ints(4, 5, 6))

	// The row can still be matched as a sequence.
	bs := mustMatch(t, Must(Seq(Must(Seq(Var("b"), Splat(nil))), Any())), g)
	checkBinding(t, bs, "b", 1)

	// A 1xN grid literal is a row.
	row := Lit(g.Sub(0, 1, 0, 3))
	mustMatch(t, Must(Seq(row, Any())), g)
	mustNotMatch(t, Must(Seq(Any(), row)), g)

	mustNotMatch(t, p, [][]interface{}{ints(1, 2, 4), ints(4, 5, 6)})
}

func TestNilData(t *testing.T) {
	var d *Data
	if got := TypeOf(d); got != "Nothing" {
		t.Fatalf("TypeOf: %s", got)
	}
	if d.Tag() != "" || d.Fields() != nil || d.String() != "nothing" {
		t.Fatalf("bad nil Data %q %v %q", d.Tag(), d.Fields(), d.String())
	}
	mustNotMatch(t, IsA("Composite", nil), d)
	mustMatch(t, IsA("Nothing", nil), d)
	mustNotMatch(t, Must(Con("Point", Var("x"), Var("y"))), d)
	mustNotMatch(t, Must(Tup(Var("x"))), d)
	mustNotMatch(t, Must(Seq(Splat(nil))), d)
	mustMatch(t, Var("v"), d)
}

func TestGridColumnSplit(t *testing.T) {
	p := Must(Grd([]Pattern{Var("a"), Splat(Var("b"))}))
	x := [][]interface{}{ints(1, 2, 3), ints(4, 5, 6)}

	bs := mustMatch(t, p, x)
	a, _ := bs.Get("a")
	if v, is := a.(seq.Vector); !is || !reflect.DeepEqual(v.Values(), ints(1, 4)) {
		t.Fatalf("a = %v", a)
	}
	b, _ := bs.Get("b")
	g, is := b.(seq.Grid)
	if !is {
		t.Fatalf("b is a %T", b)
	}
	if want := [][]interface{}{ints(2, 3), ints(5, 6)}; !reflect.DeepEqual(g.Values(), want) {
		t.Fatal(g)
	}

	// Same thing from JSON.
	js, err := ParseJSON([]byte(`[[1,2,3],[4,5,6]]`))
	if err != nil {
		t.Fatal(err)
	}
	checkBinding(t, mustMatch(t, p, js), "a", ints(1, 4))
}

func TestGridPositions(t *testing.T) {
	p := Must(Grd(
		[]Pattern{Lit(1), Var("a")},
		[]Pattern{Splat(Var("b"))},
	))
	x := [][]interface{}{ints(1, 2), ints(3, 4), ints(5, 6)}
	bs := mustMatch(t, p, x)
	checkBinding(t, bs, "a", 2)
	checkBinding(t, bs, "b", [][]interface{}{ints(3, 4), ints(5, 6)})

	mustNotMatch(t, p, [][]interface{}{ints(9, 2), ints(3, 4)})
	mustNotMatch(t, p, [][]interface{}{ints(1, 2, 3)})
}

func TestGridWhole(t *testing.T) {
	p := Must(Grd(
		[]Pattern{Var("a"), Var("b")},
		[]Pattern{Var("c"), Lit(4)},
	))
	bs := mustMatch(t, p, [][]interface{}{ints(1, 2), ints(3, 4)})
	checkBinding(t, bs, "a", 1)
	checkBinding(t, bs, "c", 3)

	mustNotMatch(t, p, [][]interface{}{ints(1, 2), ints(3, 5)})
	mustNotMatch(t, p, [][]interface{}{ints(1, 2, 3), ints(3, 4, 5)})
	mustNotMatch(t, p, ints(1, 2, 3, 4))
}

func TestGridOneCellSpansAll(t *testing.T) {
	p := Must(Grd([]Pattern{Var("m")}))
	x := [][]interface{}{ints(1, 2), ints(3, 4)}
	checkBinding(t, mustMatch(t, p, x), "m", x)
}

func TestTypeTest(t *testing.T) {
	mustMatch(t, IsA("Int", nil), 3)
	mustMatch(t, IsA("Number", nil), 3.5)
	mustMatch(t, IsA("Real", nil), uint(2))
	mustNotMatch(t, IsA("Integer", nil), 3.5)
	mustMatch(t, IsA("Any", nil), nil)
	mustMatch(t, IsA("String", nil), "s")
	mustMatch(t, IsA("AbstractArray", nil), ints(1))
	mustMatch(t, IsA("Matrix", nil), [][]interface{}{ints(1)})
	mustMatch(t, IsA("Range", nil), Interval{1, 2})

	mustMatch(t, IsExactly("Int", nil), 3)
	mustNotMatch(t, IsExactly("Number", nil), 3)

	bs := mustMatch(t, IsA("Number", Var("n")), 3)
	checkBinding(t, bs, "n", 3)
}

type dict struct {
	m map[int]string
}

func (d dict) TypeName() string {
	return "Dict{Int,String}"
}

func TestTypeTestDeclared(t *testing.T) {
	ts := StandardTypes().
		Declare("Dict{Int,String}", "Dict").
		Declare("Person", "")
	m := &Matcher{Types: ts, NumericFudge: true}
	ctx := context.Background()

	d := dict{map[int]string{1: "one"}}
	for _, typ := range []string{"Dict{Int,String}", "Dict", "Any"} {
		bs, err := m.Match(ctx, IsA(typ, nil), d)
		if err != nil {
			t.Fatal(err)
		}
		if bs == nil {
			t.Fatalf("%s didn't match", typ)
		}
	}
	if bs, _ := m.Match(ctx, IsA("Dict{String,Int}", nil), d); bs != nil {
		t.Fatal("no variance")
	}

	// Undeclared tags are Composites.
	mustMatch(t, IsA("Composite", nil), NewData("Point", 1, 2))
	mustNotMatch(t, IsA("Tuple", nil), NewData("Point", 1, 2))
}

func TestConstructor(t *testing.T) {
	p := Must(Con("Person", Var("name"), Splat(Var("more"))))
	bs := mustMatch(t, p, NewData("Person", "Julia", 10, "Boston"))
	checkBinding(t, bs, "name", "Julia")
	checkBinding(t, bs, "more", Tuple{10, "Boston"})
	if more, _ := bs.Get("more"); reflect.TypeOf(more) != reflect.TypeOf(Tuple{}) {
		t.Fatalf("rest is a %T", more)
	}

	mustNotMatch(t, p, NewData("Robot", "R2"))
	mustNotMatch(t, p, NewData("Person"))
	mustNotMatch(t, p, Tuple{"Julia"})

	exact := Must(Con("Point", Var("x"), Var("y")))
	mustMatch(t, exact, NewData("Point", 1, 2))
	mustNotMatch(t, exact, NewData("Point", 1, 2, 3))
}

func TestExpressionLike(t *testing.T) {
	// Expr(:call, [name, args...], _)
	p := Must(Con("Expr",
		Lit("call"),
		Must(Seq(Var("name"), Splat(Var("args")))),
		Any()))
	x := NewData("Expr", "call", []interface{}{"+", 1, 2}, "Any")
	bs := mustMatch(t, p, x)
	checkBinding(t, bs, "name", "+")
	checkBinding(t, bs, "args", ints(1, 2))
}

func TestAlternationIsolation(t *testing.T) {
	// The first branch binds x and then fails.
	first := Must(Seq(Var("x"), Lit(1)))
	second := Must(Seq(Lit(2), Var("y")))
	p := Must(Or(first, second))

	bs := mustMatch(t, p, ints(2, 3))
	if _, have := bs.Get("x"); have {
		t.Fatalf("leaked x: %v", bs)
	}
	checkBinding(t, bs, "y", 3)
	if !reflect.DeepEqual(bs.Names(), []string{"y"}) {
		t.Fatal(bs.Names())
	}

	// x from the failed branch doesn't constrain a later x.
	q := Must(Or(Must(Seq(Var("x"), Lit(0))), Any()))
	bs = mustMatch(t, Must(Seq(q, Var("x"))), []interface{}{ints(5, 1), 7})
	checkBinding(t, bs, "x", 7)
}

func TestAlternationFirstWins(t *testing.T) {
	p := Must(Or(Var("a"), Var("b")))
	bs := mustMatch(t, p, 1)
	if _, have := bs.Get("b"); have {
		t.Fatal(bs)
	}
}

func TestGuarded(t *testing.T) {
	positive := GuardFunc(func(ctx context.Context, bs *Bindings) (bool, error) {
		x, _ := bs.Get("x")
		n, is := x.(int)
		return is && 0 < n, nil
	})
	p := Must(When(Var("x"), positive))
	mustMatch(t, p, 1)
	mustNotMatch(t, p, -1)

	boom := errors.New("boom")
	faulty := Must(When(Any(), GuardFunc(func(ctx context.Context, bs *Bindings) (bool, error) {
		return false, boom
	})))
	if _, err := Match(context.Background(), faulty, 1); err != boom {
		t.Fatal(err)
	}

	// A fault in an alternative propagates.
	if _, err := Match(context.Background(), Must(Or(faulty, Any())), 1); err != boom {
		t.Fatal(err)
	}
}

func TestMatchWith(t *testing.T) {
	ctx := context.Background()
	given := NewBindings().Extend("x", 1)
	if bs, _ := MatchWith(ctx, Var("x"), 2, given); bs != nil {
		t.Fatal(bs)
	}
	bs, err := MatchWith(ctx, Must(Seq(Var("x"), Var("y"))), ints(1, 2), given)
	if err != nil {
		t.Fatal(err)
	}
	checkBinding(t, bs, "y", 2)
	if given.Len() != 1 {
		t.Fatal("initial bindings modified")
	}
}

func TestMalformedAtMatch(t *testing.T) {
	ctx := context.Background()
	if _, err := Match(ctx, Rest{Any()}, 1); err == nil {
		t.Fatal("bare rest matched")
	}
	if _, err := Match(ctx, &Literal{1}, 1); err == nil {
		t.Fatal("pointer pattern matched")
	}
}

func TestValidate(t *testing.T) {
	bad := map[string]func() (Pattern, error){
		"empty or":       func() (Pattern, error) { return Or() },
		"rest not last":  func() (Pattern, error) { return Seq(Splat(nil), Any()) },
		"two rests":      func() (Pattern, error) { return Tup(Splat(nil), Splat(nil)) },
		"nil element":    func() (Pattern, error) { return Seq(Any(), nil) },
		"no rows":        func() (Pattern, error) { return Grd() },
		"empty row":      func() (Pattern, error) { return Grd([]Pattern{}) },
		"rest row first": func() (Pattern, error) { return Grd([]Pattern{Splat(nil)}, []Pattern{Any()}) },
		"bad range":      func() (Pattern, error) { return Rng(10, 3) },
		"mixed range":    func() (Pattern, error) { return Rng(1, "z") },
		"nil guard":      func() (Pattern, error) { return When(Any(), nil) },
		"rest in or":     func() (Pattern, error) { return Or(Splat(nil)) },
		"ragged rows": func() (Pattern, error) {
			return Grd([]Pattern{Var("a"), Var("b")}, []Pattern{Var("c"), Var("d"), Var("e")})
		},
		"rest too wide": func() (Pattern, error) {
			return Grd([]Pattern{Var("a"), Var("b")}, []Pattern{Var("c"), Var("d"), Var("e"), Splat(nil)})
		},
	}
	for name, f := range bad {
		t.Run(name, func(t *testing.T) {
			p, err := f()
			if err == nil {
				t.Fatalf("built %v", p)
			}
			if _, is := err.(*MalformedPattern); !is {
				t.Fatalf("%T: %v", err, err)
			}
		})
	}

	ts := StandardTypes().DeclareConstructor("Point", "", 2)
	m := &Matcher{Types: ts}
	if err := m.Validate(Must(Con("Point", Any(), Any(), Any()))); err == nil {
		t.Fatal("too many fields")
	}
	if err := m.Validate(Must(Con("Point", Any()))); err == nil {
		t.Fatal("too few fields")
	}
	if err := m.Validate(Must(Con("Point", Any(), Splat(nil)))); err != nil {
		t.Fatal(err)
	}
	if err := m.Validate(Must(Con("Point", Any(), Any(), Any(), Splat(nil)))); err == nil {
		t.Fatal("too many fields before rest")
	}

	if err := Validate(Variable{}); err == nil {
		t.Fatal("empty variable name")
	}
	if err := Validate(Sequence{Elems: []Pattern{Rest{Any()}}}); err == nil {
		t.Fatal("misplaced rest")
	}
	if err := Validate(Rest{Any()}); err == nil {
		t.Fatal("bare rest")
	}
	if err := Validate(nil); err == nil {
		t.Fatal("nil")
	}
	if err := Validate(&Wildcard{}); err == nil {
		t.Fatal("pointer")
	}

	good := Must(Grd(
		[]Pattern{Var("a"), Splat(Var("b"))},
		[]Pattern{Splat(Var("c"))},
	))
	if err := Validate(good); err != nil {
		t.Fatal(err)
	}
}

func TestPatternString(t *testing.T) {
	tests := []struct {
		p    Pattern
		want string
	}{
		{Must(Seq(Var("a"), Splat(Var("b")))), "[a, b...]"},
		{Must(Grd([]Pattern{Lit(1), Var("a")}, []Pattern{Splat(Var("b"))})), "[1 a; b...]"},
		{Must(Con("Person", Lit("x"), Any())), `Person("x", _)`},
		{Must(Or(Lit(1), Lit(2))), "(1 | 2)"},
		{Must(Rng(1, 3)), "1:3"},
		{IsA("Int", Var("n")), "n::Int"},
	}
	for _, tc := range tests {
		if got := tc.p.String(); got != tc.want {
			t.Errorf("got %s, wanted %s", got, tc.want)
		}
	}
}

func BenchmarkMatch(b *testing.B) {
	var (
		ctx = context.Background()
		p   = Must(Seq(Var("a"), Must(Or(Lit(1), Var("b"))), Splat(Var("c"))))
		x   = ints(1, 2, 3, 4, 5)
	)
	for i := 0; i < b.N; i++ {
		if bs, err := Match(ctx, p, x); err != nil || bs == nil {
			b.Fatal(bs, err)
		}
	}
}
