package match

// Variables returns the names the pattern can bind, in order of first
// appearance.  Discard isn't included.
//
// An Alternation contributes the names from all of its alternatives
// even though a successful match binds only one alternative's names.
func Variables(p Pattern) []string {
	seen := make(map[string]bool, 8)
	acc := make([]string, 0, 8)
	var walk func(p Pattern)
	walk = func(p Pattern) {
		switch vv := p.(type) {
		case Variable:
			if vv.Name != Discard && !seen[vv.Name] {
				seen[vv.Name] = true
				acc = append(acc, vv.Name)
			}
		case TypeTest:
			walk(vv.Sub)
		case Alternation:
			for _, alt := range vv.Alts {
				walk(alt)
			}
		case Constructor:
			for _, q := range vv.Elems {
				walk(q)
			}
			walk(vv.Rest)
		case Sequence:
			for _, q := range vv.Elems {
				walk(q)
			}
			walk(vv.Rest)
		case Grid:
			for _, row := range vv.Rows {
				for _, q := range row.Cells {
					walk(q)
				}
				walk(row.Rest)
			}
			walk(vv.RestRow)
		case Guarded:
			walk(vv.Pattern)
		case Rest:
			walk(vv.Sub)
		}
	}
	walk(p)
	return acc
}
