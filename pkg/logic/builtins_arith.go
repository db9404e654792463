package logic

import (
	"context"
	"math"
)

func init() {
	registerBuiltin(builtinKey("is", 2), func(r *Resolver, args []Term) Goal {
		return isGoal(args[0], args[1])
	})
	for _, op := range []string{"<", ">", "=<", ">=", "=:=", "=\\="} {
		op := op
		registerBuiltin(builtinKey(op, 2), func(r *Resolver, args []Term) Goal {
			return arithCompareGoal(op, args[0], args[1])
		})
	}
	registerBuiltin(builtinKey("==", 2), func(r *Resolver, args []Term) Goal {
		return structEqGoal(args[0], args[1], true)
	})
	registerBuiltin(builtinKey("\\==", 2), func(r *Resolver, args []Term) Goal {
		return structEqGoal(args[0], args[1], false)
	})
}

// isGoal implements `is/2`: X is Expr. Expr must evaluate to a ground
// number (an unbound operand fails the branch per spec.md's
// UnboundArithmetic, not an error); X is unified with the result.
func isGoal(result, expr Term) Goal {
	return func(ctx context.Context, sub *Subst) *Stream {
		n, ok := evalArith(expr, sub)
		if !ok {
			return emptyStream()
		}
		newSub, ok := Unify(result, n, sub)
		if !ok {
			return emptyStream()
		}
		return unitStream(newSub)
	}
}

func arithCompareGoal(op string, lhs, rhs Term) Goal {
	return func(ctx context.Context, sub *Subst) *Stream {
		l, ok := evalArith(lhs, sub)
		if !ok {
			return emptyStream()
		}
		r, ok := evalArith(rhs, sub)
		if !ok {
			return emptyStream()
		}
		var pass bool
		switch op {
		case "<":
			pass = l.val < r.val
		case ">":
			pass = l.val > r.val
		case "=<":
			pass = l.val <= r.val
		case ">=":
			pass = l.val >= r.val
		case "=:=":
			pass = l.val == r.val
		case "=\\=":
			pass = l.val != r.val
		}
		if !pass {
			return emptyStream()
		}
		return unitStream(sub)
	}
}

// structEqGoal implements `==`/`\==`: structural equality after
// walk*, with no unification performed on either side.
func structEqGoal(a, b Term, wantEqual bool) Goal {
	return func(ctx context.Context, sub *Subst) *Stream {
		eq := structurallyEqual(WalkStar(a, sub), WalkStar(b, sub))
		if eq != wantEqual {
			return emptyStream()
		}
		return unitStream(sub)
	}
}

func structurallyEqual(a, b Term) bool {
	if a.Tag() != b.Tag() {
		return false
	}
	switch av := a.(type) {
	case *Atom:
		return av == b.(*Atom)
	case *Number:
		return av.val == b.(*Number).val
	case *Str:
		return av.val == b.(*Str).val
	case *Var:
		return av.id == b.(*Var).id
	case *Compound:
		bv := b.(*Compound)
		if av.Functor != bv.Functor || len(av.Args) != len(bv.Args) {
			return false
		}
		for i := range av.Args {
			if !structurallyEqual(av.Args[i], bv.Args[i]) {
				return false
			}
		}
		return true
	case *List:
		bv := b.(*List)
		if len(av.Items) != len(bv.Items) {
			return false
		}
		for i := range av.Items {
			if !structurallyEqual(av.Items[i], bv.Items[i]) {
				return false
			}
		}
		return structurallyEqual(av.Tail, bv.Tail)
	case *Map:
		bv := b.(*Map)
		if len(av.Entries) != len(bv.Entries) {
			return false
		}
		for k, v := range av.Entries {
			ov, ok := bv.Entries[k]
			if !ok || !structurallyEqual(v, ov) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// evalArith walks expr through sub and evaluates it as an arithmetic
// expression. ok is false for an unbound operand (UnboundArithmetic) or
// a domain violation such as division by zero (DomainError) — both fail
// the branch silently rather than returning a Go error, per spec.md §7.
func evalArith(expr Term, sub *Subst) (*Number, bool) {
	t := Walk(expr, sub)
	switch v := t.(type) {
	case *Number:
		return v, true
	case *Var:
		return nil, false // UnboundArithmetic
	case *Compound:
		return evalArithCompound(v, sub)
	default:
		return nil, false
	}
}

func evalArithCompound(c *Compound, sub *Subst) (*Number, bool) {
	op := c.Functor.name
	if unary, ok := unaryArithOps[op]; ok && len(c.Args) == 1 {
		a, ok := evalArith(c.Args[0], sub)
		if !ok {
			return nil, false
		}
		return unary(a)
	}
	if binary, ok := binaryArithOps[op]; ok && len(c.Args) == 2 {
		a, ok := evalArith(c.Args[0], sub)
		if !ok {
			return nil, false
		}
		b, ok := evalArith(c.Args[1], sub)
		if !ok {
			return nil, false
		}
		return binary(a, b)
	}
	return nil, false
}

var unaryArithOps = map[string]func(*Number) (*Number, bool){
	"abs":   func(a *Number) (*Number, bool) { return numFrom(math.Abs(a.val), a.isInt), true },
	"sqrt":  func(a *Number) (*Number, bool) { return sqrtOp(a) },
	"floor": func(a *Number) (*Number, bool) { return NewInt(int64(math.Floor(a.val))), true },
	"ceil":  func(a *Number) (*Number, bool) { return NewInt(int64(math.Ceil(a.val))), true },
	"round": func(a *Number) (*Number, bool) { return NewInt(int64(math.Round(a.val))), true },
	"-":     func(a *Number) (*Number, bool) { return numFrom(-a.val, a.isInt), true },
}

func sqrtOp(a *Number) (*Number, bool) {
	if a.val < 0 {
		return nil, false // DomainError: sqrt of a negative number
	}
	return NewFloat(math.Sqrt(a.val)), true
}

var binaryArithOps = map[string]func(a, b *Number) (*Number, bool){
	"+":   func(a, b *Number) (*Number, bool) { return numFrom(a.val+b.val, a.isInt && b.isInt), true },
	"-":   func(a, b *Number) (*Number, bool) { return numFrom(a.val-b.val, a.isInt && b.isInt), true },
	"*":   func(a, b *Number) (*Number, bool) { return numFrom(a.val*b.val, a.isInt && b.isInt), true },
	"/":   divOp,
	"mod": modOp,
	"rem": remOp,
	"min": func(a, b *Number) (*Number, bool) { return numFrom(math.Min(a.val, b.val), a.isInt && b.isInt), true },
	"max": func(a, b *Number) (*Number, bool) { return numFrom(math.Max(a.val, b.val), a.isInt && b.isInt), true },
	"pow": func(a, b *Number) (*Number, bool) { return numFrom(math.Pow(a.val, b.val), a.isInt && b.isInt), true },
}

func divOp(a, b *Number) (*Number, bool) {
	if b.val == 0 {
		return nil, false // DomainError: division by zero
	}
	if a.isInt && b.isInt && math.Mod(a.val, b.val) == 0 {
		return NewInt(int64(a.val) / int64(b.val)), true
	}
	return NewFloat(a.val / b.val), true
}

func modOp(a, b *Number) (*Number, bool) {
	if b.val == 0 {
		return nil, false
	}
	m := math.Mod(a.val, b.val)
	if m != 0 && (m < 0) != (b.val < 0) {
		m += b.val
	}
	return NewInt(int64(m)), true
}

func remOp(a, b *Number) (*Number, bool) {
	if b.val == 0 {
		return nil, false
	}
	return NewInt(int64(math.Mod(a.val, b.val))), true
}

func numFrom(v float64, isInt bool) *Number {
	if isInt {
		return NewInt(int64(v))
	}
	return NewFloat(v)
}
