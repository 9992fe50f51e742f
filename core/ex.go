package core

// ShapesSpec makes an example Spec that's useful to have around.
//
// It classifies Circle and Rect values (see match.NewData).  The
// guards and some actions use the "goja" interpreter, and the rest
// use the "constant" interpreter, so compile the Spec with
// interpreters that provide both.
func ShapesSpec() *Spec {
	var (
		one = 1
		two = 2
	)

	goja := func(code string) *ActionSource {
		return &ActionSource{
			Interpreter: "goja",
			Source:      code,
		}
	}

	constant := func(x interface{}) *ActionSource {
		return &ActionSource{
			Interpreter: "constant",
			Source:      x,
		}
	}

	tag := func(name string, args ...interface{}) interface{} {
		return map[string]interface{}{
			"tag":  name,
			"args": args,
		}
	}

	return &Spec{
		Name:    "shapes",
		Version: "0.1",
		Doc:     "Classifies *shapes*.  Anything that isn't a shape is `nothing`.",
		Types: []*TypeDecl{
			{Name: "Shape", Parent: "Composite"},
			{Name: "Circle", Parent: "Shape", Arity: &one},
			{Name: "Rect", Parent: "Shape", Arity: &two},
		},
		Clauses: []*ClauseSource{
			{
				Doc:     "The unit circle",
				Pattern: tag("Circle", 1),
				Action:  constant("unit circle"),
			},
			{
				Doc:     "Any other circle reports its area",
				Pattern: tag("Circle", "?r"),
				Action:  goja(`return {area: Math.PI * r * r};`),
			},
			{
				Doc:     "Squares have equal sides",
				Pattern: tag("Rect", "?w", "?w"),
				Action:  constant("square"),
			},
			{
				Doc:     "Wide rectangles",
				Pattern: tag("Rect", "?w", "?h"),
				Guard:   goja(`return h < w;`),
				Action:  constant("wide"),
			},
			{
				Pattern: map[string]interface{}{"isa": "Shape"},
				Action:  constant("tall"),
			},
			{
				Doc:     "Default",
				Pattern: "?",
				Action:  constant(nil),
			},
		},
	}
}
