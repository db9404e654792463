package logic

import "fmt"

// Reify walks t through sub and replaces every remaining unbound
// variable with a display atom named "_0", "_1", ... in order of first
// occurrence within t — the naming spec.md §4.7/§9 describes for
// surfacing query results as plain data. Two occurrences of the same
// variable reify to the same atom; numbering restarts at "_0" for each
// call, so reifying two different results of the same query each get
// their own independent "_0, _1, ..." naming rather than a shared one.
func Reify(t Term, sub *Subst) Term {
	walked := WalkStar(t, sub)
	names := map[int64]*Atom{}
	counter := 0
	return reifyTerm(walked, names, &counter)
}

func reifyTerm(t Term, names map[int64]*Atom, counter *int) Term {
	switch v := t.(type) {
	case *Var:
		if a, ok := names[v.id]; ok {
			return a
		}
		a := NewAtom(fmt.Sprintf("_%d", *counter))
		*counter++
		names[v.id] = a
		return a
	case *Compound:
		args := make([]Term, len(v.Args))
		for i, a := range v.Args {
			args[i] = reifyTerm(a, names, counter)
		}
		return &Compound{Functor: v.Functor, Args: args}
	case *List:
		items := make([]Term, len(v.Items))
		for i, a := range v.Items {
			items[i] = reifyTerm(a, names, counter)
		}
		return &List{Items: items, Tail: reifyTerm(v.Tail, names, counter)}
	case *Map:
		entries := make(map[string]Term, len(v.Entries))
		for k, val := range v.Entries {
			entries[k] = reifyTerm(val, names, counter)
		}
		return &Map{Entries: entries, Keys: v.Keys}
	default:
		return t
	}
}
