package expr

// Inspect traverses e in pre-order, outermost node first. If fn returns false
// the children of that node are skipped.
func Inspect(e Expr, fn func(Expr) bool) {
	if e == nil || !fn(e) {
		return
	}

	switch n := e.(type) {
	case *Member:
		Inspect(n.Receiver, fn)
	case *Call:
		for _, a := range n.Args {
			Inspect(a, fn)
		}
	case *Assign:
		Inspect(n.Left, fn)
		Inspect(n.Right, fn)
	case *Lambda:
		for _, p := range n.Params {
			Inspect(p, fn)
		}

		Inspect(n.Body, fn)
	}
}

// Rewrite returns e with every node for which fn reports a replacement
// swapped out. Replacements are not descended into. Nodes whose children did
// not change are returned as is, so untouched subtrees are shared with e.
func Rewrite(e Expr, fn func(Expr) (Expr, bool)) Expr {
	if e == nil {
		return nil
	}

	if r, ok := fn(e); ok {
		return r
	}

	switch n := e.(type) {
	case *Member:
		if recv := Rewrite(n.Receiver, fn); recv != n.Receiver {
			return &Member{Receiver: recv, Field: n.Field}
		}
	case *Call:
		if args, changed := rewriteAll(n.Args, fn); changed {
			return &Call{Name: n.Name, Fn: n.Fn, Result: n.Result, Args: args}
		}
	case *Assign:
		left, right := Rewrite(n.Left, fn), Rewrite(n.Right, fn)
		if left != n.Left || right != n.Right {
			return &Assign{Left: left, Right: right}
		}
	case *Lambda:
		if body := Rewrite(n.Body, fn); body != n.Body {
			return &Lambda{Params: n.Params, Body: body}
		}
	}

	return e
}

func rewriteAll(in []Expr, fn func(Expr) (Expr, bool)) ([]Expr, bool) {
	out := make([]Expr, len(in))
	changed := false

	for i, a := range in {
		out[i] = Rewrite(a, fn)
		changed = changed || out[i] != a
	}

	return out, changed
}

// SubstituteParameter replaces every node identical to from with to.
func SubstituteParameter(e, from, to Expr) Expr {
	return Rewrite(e, func(n Expr) (Expr, bool) {
		if n == from {
			return to, true
		}

		return nil, false
	})
}

// ExtractMember returns the first member access, in pre-order, whose receiver
// is the lambda's first parameter. For `t.A.B` that is `t.A`.
func ExtractMember(l *Lambda) *Member {
	if l == nil || len(l.Params) == 0 {
		return nil
	}

	root := l.Params[0]

	var found *Member
	Inspect(l.Body, func(n Expr) bool {
		if found != nil {
			return false
		}

		if m, ok := n.(*Member); ok && m.Receiver == Expr(root) {
			found = m

			return false
		}

		return true
	})

	return found
}

// Params returns the distinct parameters referenced by e in pre-order.
func Params(e Expr) []*Parameter {
	var (
		out  []*Parameter
		seen = map[*Parameter]bool{}
	)

	Inspect(e, func(n Expr) bool {
		if p, ok := n.(*Parameter); ok && !seen[p] {
			seen[p] = true
			out = append(out, p)
		}

		return true
	})

	return out
}
