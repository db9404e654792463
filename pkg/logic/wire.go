package logic

import (
	"fmt"
	"strconv"
	"time"
)

// WireTerm is the tagged-variant JSON shape of spec.md §6.3: short
// lowercase tag keys, one flat struct per term kind, used for
// interchange with a UI or any non-Go consumer. Standard-library
// encoding/json (via struct tags) backs this rather than a third-party
// codec, because the wire shape is specified directly in terms of JSON
// and no example repo in the pack reaches for protobuf/msgpack/cbor for
// anything resembling a per-term tagged-variant shape (see DESIGN.md).
type WireTerm struct {
	T       string              `json:"t"`
	V       interface{}         `json:"v,omitempty"`
	Name    string              `json:"name,omitempty"`
	Items   []WireTerm          `json:"items,omitempty"`
	Head    string              `json:"head,omitempty"`
	Args    []WireTerm          `json:"args,omitempty"`
	Entries map[string]WireTerm `json:"entries,omitempty"`
}

// ToWire converts t to its wire representation. t should already be
// walked (WalkStar) against whatever substitution is relevant; ToWire
// itself performs no substitution lookups. Unbound variables reified by
// the caller arrive as plain atoms and serialize as {t:"atom"}; a raw
// *Var reaching ToWire serializes as {t:"var", name} using its display
// name, per spec.md §6.3's "_0, _1, ..." convention for anything still
// unbound after reification.
func ToWire(t Term) (WireTerm, error) {
	switch v := t.(type) {
	case *Atom:
		return WireTerm{T: "atom", V: v.name}, nil
	case *Number:
		if v.isInt {
			return WireTerm{T: "num", V: v.Int()}, nil
		}
		return WireTerm{T: "num", V: v.val}, nil
	case *Str:
		return WireTerm{T: "str", V: v.val}, nil
	case *Var:
		name := v.name
		if name == "" {
			name = fmt.Sprintf("_G%d", v.id)
		}
		return WireTerm{T: "var", Name: name}, nil
	case *Compound:
		args := make([]WireTerm, len(v.Args))
		for i, a := range v.Args {
			w, err := ToWire(a)
			if err != nil {
				return WireTerm{}, err
			}
			args[i] = w
		}
		return WireTerm{T: "compound", Head: v.Functor.name, Args: args}, nil
	case *List:
		if !v.IsProper() {
			return WireTerm{}, fmt.Errorf("logic: cannot export a partial list (unresolved tail %s) to wire format", v.Tail)
		}
		items := make([]WireTerm, len(v.Items))
		for i, a := range v.Items {
			w, err := ToWire(a)
			if err != nil {
				return WireTerm{}, err
			}
			items[i] = w
		}
		return WireTerm{T: "list", Items: items}, nil
	case *Map:
		entries := make(map[string]WireTerm, len(v.Entries))
		for ck, val := range v.Entries {
			w, err := ToWire(val)
			if err != nil {
				return WireTerm{}, err
			}
			entries[v.Keys[ck].String()] = w
		}
		return WireTerm{T: "map", Entries: entries}, nil
	default:
		return WireTerm{}, fmt.Errorf("logic: %w: unrecognized term kind %T", ErrImportShape, t)
	}
}

// FromWire reconstructs a Term from its wire representation.
func FromWire(w WireTerm) (Term, error) {
	switch w.T {
	case "atom":
		s, ok := w.V.(string)
		if !ok {
			return nil, fmt.Errorf("logic: %w: atom wire value must be a string", ErrImportShape)
		}
		return NewAtom(s), nil
	case "num":
		n, err := wireNumber(w.V)
		if err != nil {
			return nil, err
		}
		return n, nil
	case "str":
		s, ok := w.V.(string)
		if !ok {
			return nil, fmt.Errorf("logic: %w: str wire value must be a string", ErrImportShape)
		}
		return NewStr(s), nil
	case "var":
		return Fresh(w.Name), nil
	case "compound":
		args := make([]Term, len(w.Args))
		for i, a := range w.Args {
			t, err := FromWire(a)
			if err != nil {
				return nil, err
			}
			args[i] = t
		}
		return NewCompound(w.Head, args...), nil
	case "list":
		items := make([]Term, len(w.Items))
		for i, a := range w.Items {
			t, err := FromWire(a)
			if err != nil {
				return nil, err
			}
			items[i] = t
		}
		return NewList(items...), nil
	case "map":
		keys := make([]Term, 0, len(w.Entries))
		values := make([]Term, 0, len(w.Entries))
		for k, v := range w.Entries {
			val, err := FromWire(v)
			if err != nil {
				return nil, err
			}
			keys = append(keys, mapKeyFromString(k))
			values = append(values, val)
		}
		return NewMap(keys, values)
	default:
		return nil, fmt.Errorf("logic: %w: unrecognized wire tag %q", ErrImportShape, w.T)
	}
}

// wireNumber recovers a *Number from a decoded JSON value, preferring an
// integer reading when the value carries no fractional part —
// encoding/json decodes all JSON numbers as float64, so ToWire/FromWire
// is asked to round-trip through an int64/float64 Go value directly
// (e.g. when a caller builds a WireTerm in Go rather than decoding JSON)
// as well as through json.Unmarshal's float64.
func wireNumber(v interface{}) (*Number, error) {
	switch n := v.(type) {
	case int64:
		return NewInt(n), nil
	case int:
		return NewInt(int64(n)), nil
	case float64:
		if n == float64(int64(n)) {
			return NewInt(int64(n)), nil
		}
		return NewFloat(n), nil
	default:
		return nil, fmt.Errorf("logic: %w: num wire value must be numeric", ErrImportShape)
	}
}

// mapKeyFromString recovers a map key term from its wire string form,
// treating a parseable integer as a Number key and anything else as an
// Atom key — a heuristic, since the wire format's {t:"map", entries}
// shape does not distinguish key kinds (documented limitation, see
// DESIGN.md).
func mapKeyFromString(s string) Term {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return NewInt(n)
	}
	return NewAtom(s)
}

// ExportedFact is one fact in an exported knowledge base.
type ExportedFact struct {
	Predicate string     `json:"predicate"`
	Args      []WireTerm `json:"args"`
}

// ExportedRule is one rule in an exported knowledge base.
type ExportedRule struct {
	Predicate string     `json:"predicate"`
	HeadArgs  []WireTerm `json:"head_args"`
	Body      []WireTerm `json:"body"`
}

// ExportedKB is the whole-KB snapshot returned by Store.Export and
// accepted by Store.Import, matching spec.md §6.1's
// `export() → { facts, rules, exported_at }`.
type ExportedKB struct {
	Facts      []ExportedFact `json:"facts"`
	Rules      []ExportedRule `json:"rules"`
	ExportedAt time.Time      `json:"exported_at"`
}

// Export snapshots the entire knowledge base into wire form.
func (s *Store) Export() (ExportedKB, error) {
	s.mu.RLock()
	predicates := make(map[string]*predicate, len(s.predicates))
	for k, v := range s.predicates {
		predicates[k] = v
	}
	s.mu.RUnlock()

	out := ExportedKB{ExportedAt: time.Now()}
	for key, pred := range predicates {
		name, _, err := splitPredKey(key)
		if err != nil {
			return ExportedKB{}, err
		}
		for _, fact := range pred.Facts {
			args, err := wireTermList(fact.(*List).Items)
			if err != nil {
				return ExportedKB{}, err
			}
			out.Facts = append(out.Facts, ExportedFact{Predicate: name, Args: args})
		}
		for _, rule := range pred.Rules {
			headArgs, err := wireTermList(rule.HeadArgs)
			if err != nil {
				return ExportedKB{}, err
			}
			body, err := wireTermList(rule.Body)
			if err != nil {
				return ExportedKB{}, err
			}
			out.Rules = append(out.Rules, ExportedRule{Predicate: name, HeadArgs: headArgs, Body: body})
		}
	}
	return out, nil
}

// Import atomically replaces the whole knowledge base with data, per
// spec.md §4.3's `import(data)`: "atomic swap of whole KB". A single
// history entry of kind "import" is recorded.
func (s *Store) Import(data ExportedKB) error {
	predicates := map[string]*predicate{}
	for _, f := range data.Facts {
		args, err := fromWireList(f.Args)
		if err != nil {
			return err
		}
		key := predKey(f.Predicate, len(args))
		pred := predicates[key]
		if pred == nil {
			pred = &predicate{}
			predicates[key] = pred
		}
		fact := factTerm(args)
		if !containsTerm(pred.Facts, fact) {
			pred.Facts = append(pred.Facts, fact)
		}
	}
	var nextID int64
	for _, rl := range data.Rules {
		headArgs, err := fromWireList(rl.HeadArgs)
		if err != nil {
			return err
		}
		body, err := fromWireList(rl.Body)
		if err != nil {
			return err
		}
		key := predKey(rl.Predicate, len(headArgs))
		pred := predicates[key]
		if pred == nil {
			pred = &predicate{}
			predicates[key] = pred
		}
		nextID++
		pred.Rules = append(pred.Rules, &Rule{ID: nextID, Predicate: rl.Predicate, HeadArgs: headArgs, Body: body})
	}

	s.mu.Lock()
	s.predicates = predicates
	s.nextRuleID = nextID
	s.appendHistoryLocked("import", "", nil)
	s.mu.Unlock()

	s.invalidateCache()
	s.logger.Debug("knowledge base imported")
	s.dispatch("import", "", nil)
	return nil
}

func wireTermList(terms []Term) ([]WireTerm, error) {
	out := make([]WireTerm, len(terms))
	for i, t := range terms {
		w, err := ToWire(t)
		if err != nil {
			return nil, err
		}
		out[i] = w
	}
	return out, nil
}

func fromWireList(wires []WireTerm) ([]Term, error) {
	out := make([]Term, len(wires))
	for i, w := range wires {
		t, err := FromWire(w)
		if err != nil {
			return nil, err
		}
		out[i] = t
	}
	return out, nil
}

func splitPredKey(key string) (string, int, error) {
	for i := len(key) - 1; i >= 0; i-- {
		if key[i] == '/' {
			arity, err := strconv.Atoi(key[i+1:])
			if err != nil {
				return "", 0, fmt.Errorf("logic: %w: malformed predicate key %q", ErrImportShape, key)
			}
			return key[:i], arity, nil
		}
	}
	return "", 0, fmt.Errorf("logic: %w: malformed predicate key %q", ErrImportShape, key)
}
