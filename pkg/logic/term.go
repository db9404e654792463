// Package logic implements the term model, unifier, knowledge-base store,
// SLD resolver, and trace/spy instrumentation of a Prolog-style logic
// programming engine.
//
// A Term is exactly one of seven kinds: Atom, Number, Str, Var, Compound,
// List, or Map. Every function that inspects a term switches on Tag()
// exhaustively rather than relying on duck typing, so adding a new kind is
// a compile-time-checked change everywhere it matters.
package logic

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
)

// TermTag identifies the concrete kind of a Term.
type TermTag int

const (
	TagAtom TermTag = iota
	TagNumber
	TagString
	TagVar
	TagCompound
	TagList
	TagMap
)

func (t TermTag) String() string {
	switch t {
	case TagAtom:
		return "atom"
	case TagNumber:
		return "num"
	case TagString:
		return "str"
	case TagVar:
		return "var"
	case TagCompound:
		return "compound"
	case TagList:
		return "list"
	case TagMap:
		return "map"
	default:
		return "unknown"
	}
}

// Term is the common interface implemented by every term kind.
type Term interface {
	Tag() TermTag
	String() string
}

// Atom is a symbolic constant, compared by value equality. Atoms are
// interned: two calls to NewAtom with the same name return the same
// pointer, so pointer equality is a valid (and cheap) fast path before
// falling back to value comparison.
type Atom struct {
	name string
}

var atomTable sync.Map // string -> *Atom

// NewAtom returns the interned Atom for name, creating it on first use.
func NewAtom(name string) *Atom {
	if v, ok := atomTable.Load(name); ok {
		return v.(*Atom)
	}
	a := &Atom{name: name}
	v, _ := atomTable.LoadOrStore(name, a)
	return v.(*Atom)
}

func (a *Atom) Tag() TermTag    { return TagAtom }
func (a *Atom) Name() string    { return a.name }
func (a *Atom) String() string  { return a.name }

// Nil is the canonical empty-list / proper-list terminator atom.
var Nil = NewAtom("[]")

// True and False are the canonical boolean atoms; the engine has no
// dedicated boolean type.
var (
	True  = NewAtom("true")
	False = NewAtom("false")
)

// Number is an integer or floating-point value. Integers are tracked
// separately from floats so that `integer/1` and `%d`-style printing work
// without reparsing, but arithmetic always operates in float64.
type Number struct {
	val   float64
	isInt bool
}

// NewInt creates an integer Number.
func NewInt(n int64) *Number { return &Number{val: float64(n), isInt: true} }

// NewFloat creates a floating-point Number.
func NewFloat(f float64) *Number { return &Number{val: f, isInt: false} }

func (n *Number) Tag() TermTag { return TagNumber }
func (n *Number) Float() float64 { return n.val }
func (n *Number) IsInt() bool    { return n.isInt }

// Int returns the integer value, truncating any fractional part.
func (n *Number) Int() int64 { return int64(n.val) }

func (n *Number) String() string {
	if n.isInt {
		return strconv.FormatInt(int64(n.val), 10)
	}
	return strconv.FormatFloat(n.val, 'g', -1, 64)
}

// Str is an opaque text value, compared only by equality (never by
// unification into its characters).
type Str struct {
	val string
}

// NewStr creates a Str term.
func NewStr(s string) *Str { return &Str{val: s} }

func (s *Str) Tag() TermTag   { return TagString }
func (s *Str) Value() string  { return s.val }
func (s *Str) String() string { return strconv.Quote(s.val) }

// Var is a logic variable, identified by a process-unique id. Two
// variables with the same name but different ids never unify trivially
// with each other; only the id determines identity.
type Var struct {
	id   int64
	name string
}

var varCounter int64

// Fresh allocates a new logic variable with a globally unique id. name is
// used only for display; pass "" for an anonymous variable.
func Fresh(name string) *Var {
	id := atomic.AddInt64(&varCounter, 1)
	return &Var{id: id, name: name}
}

func (v *Var) Tag() TermTag { return TagVar }
func (v *Var) ID() int64    { return v.id }
func (v *Var) Name() string { return v.name }

func (v *Var) String() string {
	if v.name != "" {
		return "?" + v.name
	}
	return fmt.Sprintf("_G%d", v.id)
}

// Compound is an ordered sequence [functor, a1, ..., an] where functor is
// an atom naming the predicate or function.
type Compound struct {
	Functor *Atom
	Args    []Term
}

// NewCompound builds a compound term. A zero-arity compound is equivalent
// to its functor atom and callers should prefer NewAtom in that case.
func NewCompound(functor string, args ...Term) *Compound {
	return &Compound{Functor: NewAtom(functor), Args: args}
}

func (c *Compound) Tag() TermTag { return TagCompound }
func (c *Compound) Arity() int   { return len(c.Args) }

func (c *Compound) String() string {
	parts := make([]string, len(c.Args))
	for i, a := range c.Args {
		parts[i] = a.String()
	}
	return c.Functor.name + "(" + strings.Join(parts, ", ") + ")"
}

// List is a finite sequence of terms. Items holds the known prefix; Tail
// is Nil for a proper (closed) list or an unbound Var for a partial list
// whose remaining elements are not yet known — the representation used by
// relational list built-ins such as append/3 and member/2 to generate or
// consume lists of unknown length.
type List struct {
	Items []Term
	Tail  Term
}

// NewList builds a proper (Nil-terminated) list from items.
func NewList(items ...Term) *List {
	return &List{Items: items, Tail: Nil}
}

// NewPartialList builds a list whose tail is an arbitrary term (typically
// a Var), i.e. a Prolog [H|T] cons.
func NewPartialList(items []Term, tail Term) *List {
	return &List{Items: items, Tail: tail}
}

func (l *List) Tag() TermTag { return TagList }

// IsProper reports whether the list's tail is the Nil terminator.
func (l *List) IsProper() bool {
	a, ok := l.Tail.(*Atom)
	return ok && a == Nil
}

func (l *List) String() string {
	parts := make([]string, len(l.Items))
	for i, t := range l.Items {
		parts[i] = t.String()
	}
	body := strings.Join(parts, ", ")
	if l.IsProper() {
		return "[" + body + "]"
	}
	if len(l.Items) == 0 {
		return "[|" + l.Tail.String() + "]"
	}
	return "[" + body + "|" + l.Tail.String() + "]"
}

// Map is an unordered set of key -> term bindings. Keys are atoms or
// numbers; two maps unify only when their key sets are identical and each
// pair of values unifies.
type Map struct {
	Entries map[string]Term // canonical key string -> value term
	Keys    map[string]Term // canonical key string -> original key term
}

// NewMap builds a Map term from parallel key/value slices. Keys must be
// Atom or Number terms.
func NewMap(keys []Term, values []Term) (*Map, error) {
	if len(keys) != len(values) {
		return nil, fmt.Errorf("%w: map key/value length mismatch: %d keys, %d values", ErrBadArity, len(keys), len(values))
	}
	m := &Map{Entries: make(map[string]Term, len(keys)), Keys: make(map[string]Term, len(keys))}
	for i, k := range keys {
		ck, err := mapKeyString(k)
		if err != nil {
			return nil, err
		}
		m.Entries[ck] = values[i]
		m.Keys[ck] = k
	}
	return m, nil
}

func mapKeyString(k Term) (string, error) {
	switch v := k.(type) {
	case *Atom:
		return "a:" + v.name, nil
	case *Number:
		return "n:" + v.String(), nil
	default:
		return "", fmt.Errorf("logic: map keys must be atoms or numbers, got %s", k.Tag())
	}
}

func (m *Map) Tag() TermTag { return TagMap }

func (m *Map) String() string {
	parts := make([]string, 0, len(m.Entries))
	for ck, v := range m.Entries {
		parts = append(parts, fmt.Sprintf("%s: %s", m.Keys[ck].String(), v.String()))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// IsGround reports whether t contains no unbound variables, without
// consulting any substitution (apply WalkStar first for a walked check).
func IsGround(t Term) bool {
	switch v := t.(type) {
	case *Var:
		return false
	case *Compound:
		for _, a := range v.Args {
			if !IsGround(a) {
				return false
			}
		}
		return true
	case *List:
		for _, a := range v.Items {
			if !IsGround(a) {
				return false
			}
		}
		return IsGround(v.Tail)
	case *Map:
		for _, val := range v.Entries {
			if !IsGround(val) {
				return false
			}
		}
		return true
	default:
		return true
	}
}
