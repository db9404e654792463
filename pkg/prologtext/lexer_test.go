package prologtext

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lexAll(t *testing.T, src string) []token {
	l := newLexer(src)
	var out []token
	for {
		tok, err := l.next()
		require.NoError(t, err)
		out = append(out, tok)
		if tok.kind == tokEOF {
			return out
		}
	}
}

func kinds(toks []token) []tokenKind {
	out := make([]tokenKind, len(toks))
	for i, tok := range toks {
		out[i] = tok.kind
	}
	return out
}

func TestLexer_FactClause(t *testing.T) {
	toks := lexAll(t, "parent(tom, mary).")
	assert.Equal(t, []tokenKind{
		tokIdent, tokLParen, tokIdent, tokComma, tokIdent, tokRParen, tokDot, tokEOF,
	}, kinds(toks))
}

func TestLexer_RuleArrowAndVariables(t *testing.T) {
	toks := lexAll(t, "ancestor(?x, ?z) :- parent(?x, ?y).")
	assert.Contains(t, kinds(toks), tokRuleArrow)
	assert.Contains(t, kinds(toks), tokVar)
}

func TestLexer_NegativeNumberVsArrow(t *testing.T) {
	toks := lexAll(t, "-> -5")
	assert.Equal(t, tokArrow, toks[0].kind)
	assert.Equal(t, tokNumber, toks[1].kind)
	assert.Equal(t, -5.0, toks[1].num)
}

func TestLexer_DotDoesNotConsumeDecimalBoundary(t *testing.T) {
	toks := lexAll(t, "3.5.")
	require.Len(t, toks, 3)
	assert.Equal(t, tokNumber, toks[0].kind)
	assert.Equal(t, 3.5, toks[0].num)
	assert.Equal(t, tokDot, toks[1].kind)
}

func TestLexer_StringEscapes(t *testing.T) {
	toks := lexAll(t, `"a\nb"`)
	require.Equal(t, tokString, toks[0].kind)
	assert.Equal(t, "a\nb", toks[0].text)
}

func TestLexer_CommentIsSkipped(t *testing.T) {
	toks := lexAll(t, "p(x). % trailing comment\nq(y).")
	assert.Equal(t, 2, countKind(toks, tokDot))
}

func TestLexer_BangAndSemicolon(t *testing.T) {
	toks := lexAll(t, "!;")
	assert.Equal(t, []tokenKind{tokBang, tokSemi, tokEOF}, kinds(toks))
}

func TestLexer_UnterminatedStringErrors(t *testing.T) {
	l := newLexer(`"abc`)
	_, err := l.next()
	assert.Error(t, err)
}

func TestLexer_UnexpectedCharacterErrors(t *testing.T) {
	l := newLexer("@")
	_, err := l.next()
	assert.Error(t, err)
}

func countKind(toks []token, k tokenKind) int {
	n := 0
	for _, tok := range toks {
		if tok.kind == k {
			n++
		}
	}
	return n
}
