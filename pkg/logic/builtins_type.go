package logic

import "context"

func init() {
	registerBuiltin(builtinKey("number", 1), typeCheck(func(t Term) bool { _, ok := t.(*Number); return ok }))
	registerBuiltin(builtinKey("integer", 1), typeCheck(func(t Term) bool {
		n, ok := t.(*Number)
		return ok && n.isInt
	}))
	registerBuiltin(builtinKey("atom", 1), typeCheck(func(t Term) bool { _, ok := t.(*Atom); return ok }))
	registerBuiltin(builtinKey("is_list", 1), typeCheck(func(t Term) bool { _, ok := t.(*List); return ok }))
	registerBuiltin(builtinKey("var", 1), typeCheck(func(t Term) bool { _, ok := t.(*Var); return ok }))
	registerBuiltin(builtinKey("nonvar", 1), typeCheck(func(t Term) bool { _, ok := t.(*Var); return !ok }))
	registerBuiltin(builtinKey("ground", 1), func(r *Resolver, args []Term) Goal {
		arg := args[0]
		return func(ctx context.Context, sub *Subst) *Stream {
			if !IsGround(WalkStar(arg, sub)) {
				return emptyStream()
			}
			return unitStream(sub)
		}
	})
}

// typeCheck builds a builtin from a predicate over the walked value of
// the single argument.
func typeCheck(pred func(Term) bool) builtinFunc {
	return func(r *Resolver, args []Term) Goal {
		arg := args[0]
		return func(ctx context.Context, sub *Subst) *Stream {
			if !pred(Walk(arg, sub)) {
				return emptyStream()
			}
			return unitStream(sub)
		}
	}
}
