package prologtext

import (
	"fmt"

	"github.com/lucidkb/logicore/pkg/logic"
)

// ParsedClause is one fact or rule recognized from source text. Body is
// nil for a fact; for a rule it is the flattened top-level conjuncts of
// the clause's body, each itself possibly a `,`/`;`/`->` compound if the
// source text parenthesized a nested group.
type ParsedClause struct {
	Predicate string
	HeadArgs  []logic.Term
	Body      []logic.Term
}

// Parser recognizes a sequence of clauses terminated by '.', sharing one
// name→variable map across every clause in a source (so repeating a
// `?x` across clauses rebinds to the same variable, matching the
// shared-map convention spec.md §4.7 describes for queries — Parse
// extends it to clause source for convenience, since that is the more
// useful default a hand-authored knowledge base file wants).
type Parser struct {
	lex  *lexer
	tok  token
	vars map[string]*logic.Var
}

// NewParser builds a Parser over src. vars, if non-nil, is the shared
// name→variable map to extend; pass nil to have the parser allocate its
// own.
func NewParser(src string, vars map[string]*logic.Var) (*Parser, error) {
	if vars == nil {
		vars = map[string]*logic.Var{}
	}
	p := &Parser{lex: newLexer(src), vars: vars}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return p, nil
}

// Vars returns the parser's shared name→variable map.
func (p *Parser) Vars() map[string]*logic.Var { return p.vars }

func (p *Parser) advance() error {
	tok, err := p.lex.next()
	if err != nil {
		return err
	}
	p.tok = tok
	return nil
}

func (p *Parser) expect(k tokenKind, what string) (token, error) {
	if p.tok.kind != k {
		return token{}, fmt.Errorf("prologtext: expected %s at position %d, found %q", what, p.tok.pos, p.tok.text)
	}
	tok := p.tok
	return tok, p.advance()
}

// ParseClauses reads every clause in the parser's remaining source.
func (p *Parser) ParseClauses() ([]ParsedClause, error) {
	var out []ParsedClause
	for p.tok.kind != tokEOF {
		clause, err := p.parseClause()
		if err != nil {
			return nil, err
		}
		out = append(out, clause)
	}
	return out, nil
}

func (p *Parser) parseClause() (ParsedClause, error) {
	head, err := p.parseCompoundOrAtom()
	if err != nil {
		return ParsedClause{}, err
	}
	_, predicate, headArgs := splitHead(head)

	var body []logic.Term
	if p.tok.kind == tokRuleArrow {
		if err := p.advance(); err != nil {
			return ParsedClause{}, err
		}
		expr, err := p.parseOr()
		if err != nil {
			return ParsedClause{}, err
		}
		body = flattenConj(expr)
	}
	if _, err := p.expect(tokDot, "'.'"); err != nil {
		return ParsedClause{}, err
	}
	return ParsedClause{Predicate: predicate, HeadArgs: headArgs, Body: body}, nil
}

// ParseGoals reads a single comma-separated goal list terminated by '.'
// or end of input — the shape spec.md §4.7 step 1 expects for a query's
// goal list.
func (p *Parser) ParseGoals() ([]logic.Term, error) {
	expr, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	goals := flattenConj(expr)
	if p.tok.kind == tokDot {
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	return goals, nil
}

// Operator precedence, low to high: ';' < '->' < ','.

func (p *Parser) parseOr() (logic.Term, error) {
	left, err := p.parseArrow()
	if err != nil {
		return nil, err
	}
	for p.tok.kind == tokSemi {
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseArrow()
		if err != nil {
			return nil, err
		}
		left = logic.NewCompound(";", left, right)
	}
	return left, nil
}

func (p *Parser) parseArrow() (logic.Term, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	if p.tok.kind == tokArrow {
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = logic.NewCompound("->", left, right)
	}
	return left, nil
}

func (p *Parser) parseAnd() (logic.Term, error) {
	left, err := p.parsePrimaryGoal()
	if err != nil {
		return nil, err
	}
	for p.tok.kind == tokComma {
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parsePrimaryGoal()
		if err != nil {
			return nil, err
		}
		left = logic.NewCompound(",", left, right)
	}
	return left, nil
}

func (p *Parser) parsePrimaryGoal() (logic.Term, error) {
	if p.tok.kind == tokBang {
		if err := p.advance(); err != nil {
			return nil, err
		}
		return logic.NewAtom("!"), nil
	}
	if p.tok.kind == tokLParen {
		if err := p.advance(); err != nil {
			return nil, err
		}
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokRParen, "')'"); err != nil {
			return nil, err
		}
		return inner, nil
	}
	return p.parseTerm()
}

// parseTerm parses one term: variable, number, string, list, or
// atom/compound.
func (p *Parser) parseTerm() (logic.Term, error) {
	switch p.tok.kind {
	case tokVar:
		name := p.tok.text
		if err := p.advance(); err != nil {
			return nil, err
		}
		return p.varFor(name), nil
	case tokNumber:
		n := p.tok.num
		if err := p.advance(); err != nil {
			return nil, err
		}
		if n == float64(int64(n)) {
			return logic.NewInt(int64(n)), nil
		}
		return logic.NewFloat(n), nil
	case tokString:
		s := p.tok.text
		if err := p.advance(); err != nil {
			return nil, err
		}
		return logic.NewStr(s), nil
	case tokLBracket:
		return p.parseList()
	case tokIdent:
		return p.parseCompoundOrAtom()
	default:
		return nil, fmt.Errorf("prologtext: unexpected token at position %d", p.tok.pos)
	}
}

func (p *Parser) varFor(name string) *logic.Var {
	if v, ok := p.vars[name]; ok {
		return v
	}
	v := logic.Fresh(name)
	p.vars[name] = v
	return v
}

func (p *Parser) parseCompoundOrAtom() (logic.Term, error) {
	name, err := p.expect(tokIdent, "identifier")
	if err != nil {
		return nil, err
	}
	if p.tok.kind != tokLParen {
		return logic.NewAtom(name.text), nil
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	var args []logic.Term
	if p.tok.kind != tokRParen {
		for {
			arg, err := p.parseTerm()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if p.tok.kind != tokComma {
				break
			}
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
	}
	if _, err := p.expect(tokRParen, "')'"); err != nil {
		return nil, err
	}
	return logic.NewCompound(name.text, args...), nil
}

func (p *Parser) parseList() (logic.Term, error) {
	if _, err := p.expect(tokLBracket, "'['"); err != nil {
		return nil, err
	}
	if p.tok.kind == tokRBracket {
		return p.advance2(logic.NewList())
	}
	var items []logic.Term
	for {
		item, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
		if p.tok.kind == tokComma {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		break
	}
	var tail logic.Term = logic.Nil
	if p.tok.kind == tokPipe {
		if err := p.advance(); err != nil {
			return nil, err
		}
		t, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		tail = t
	}
	if _, err := p.expect(tokRBracket, "']'"); err != nil {
		return nil, err
	}
	return logic.NewPartialList(items, tail), nil
}

func (p *Parser) advance2(t logic.Term) (logic.Term, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	return t, nil
}

func splitHead(head logic.Term) (compound bool, predicate string, args []logic.Term) {
	switch v := head.(type) {
	case *logic.Compound:
		return true, v.Functor.Name(), v.Args
	case *logic.Atom:
		return false, v.Name(), nil
	default:
		return false, head.String(), nil
	}
}

// flattenConj splits the outermost chain of `,`/2 compounds produced by
// parseAnd into a flat slice, so a plain conjunctive body is stored as
// spec.md §3.3's "list of compound terms" rather than one deeply nested
// term.
func flattenConj(t logic.Term) []logic.Term {
	if c, ok := t.(*logic.Compound); ok && c.Functor.Name() == "," && len(c.Args) == 2 {
		return append(flattenConj(c.Args[0]), flattenConj(c.Args[1])...)
	}
	return []logic.Term{t}
}
