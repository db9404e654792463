package logic

import (
	"context"
	"fmt"
)

// builtinFunc builds a Goal from a builtin call's already-split argument
// list. The resolver looks built-ins up before consulting the knowledge
// base, so a built-in predicate always shadows a KB predicate of the
// same name/arity — a deliberate, documented choice (spec.md §4.4.3).
type builtinFunc func(r *Resolver, args []Term) Goal

var builtinTable = map[string]builtinFunc{}

func registerBuiltin(nameArity string, fn builtinFunc) {
	if _, exists := builtinTable[nameArity]; exists {
		panic("logic: duplicate builtin registration for " + nameArity)
	}
	builtinTable[nameArity] = fn
}

func builtinKey(name string, arity int) string {
	return fmt.Sprintf("%s/%d", name, arity)
}

// lookupBuiltin returns the builtin for name/arity, if any.
func lookupBuiltin(name string, arity int) (builtinFunc, bool) {
	fn, ok := builtinTable[builtinKey(name, arity)]
	return fn, ok
}

func init() {
	registerBuiltin(builtinKey("true", 0), func(r *Resolver, args []Term) Goal { return Success })
	registerBuiltin(builtinKey("fail", 0), func(r *Resolver, args []Term) Goal { return Failure })
	registerBuiltin(builtinKey("false", 0), func(r *Resolver, args []Term) Goal { return Failure })
	registerBuiltin(builtinKey("!", 0), func(r *Resolver, args []Term) Goal { return Cut() })
	registerBuiltin(builtinKey("repeat", 0), func(r *Resolver, args []Term) Goal { return repeatGoal() })

	registerBuiltin(builtinKey("not", 1), func(r *Resolver, args []Term) Goal {
		return Not(r.ResolveTerm(args[0]))
	})
	registerBuiltin(builtinKey("\\+", 1), func(r *Resolver, args []Term) Goal {
		return Not(r.ResolveTerm(args[0]))
	})

	registerBuiltin(builtinKey("once", 1), func(r *Resolver, args []Term) Goal {
		inner := r.ResolveTerm(args[0])
		return func(ctx context.Context, sub *Subst) *Stream {
			s := inner(ctx, sub)
			first, ok := s.Next(ctx)
			s.Close()
			if !ok {
				return emptyStream()
			}
			return unitStream(first)
		}
	})

	registerBuiltin(builtinKey("if", 3), func(r *Resolver, args []Term) Goal {
		return Condu([][2]Goal{{r.ResolveTerm(args[0]), r.ResolveTerm(args[1])}}, r.ResolveTerm(args[2]))
	})
}

// repeatGoal succeeds infinitely; it is only useful combined with once/1
// or an external limit, since pulling from it never exhausts on its own.
func repeatGoal() Goal {
	return func(ctx context.Context, sub *Subst) *Stream {
		return generate(func(emit func(*Subst) bool) {
			for emit(sub) {
			}
		})
	}
}
