package engine

import "github.com/jacklang/jackc/token"

// matcher is the teacher's terminal-matching idiom (engine/compiler.go's
// is/or combinators), completed here: a predicate over a token, composed
// with anyOf the way the teacher composed is(...) calls with or(...).
type matcher func(tok token.Token) bool

func is(raw string) matcher {
	return func(tok token.Token) bool { return tok.Raw == raw }
}

func anyOf(ms ...matcher) matcher {
	return func(tok token.Token) bool {
		for _, m := range ms {
			if m(tok) {
				return true
			}
		}
		return false
	}
}

func ofType(t token.Type) matcher {
	return func(tok token.Token) bool { return tok.Type == t }
}

func isIdentifier() matcher { return ofType(token.Identifier) }

var isType = anyOf(is("int"), is("char"), is("boolean"), isIdentifier())

var isKeywordConst = anyOf(is("true"), is("false"), is("null"), is("this"))

// isTermStart matches whatever may open a term, per spec.md §4.3's term
// production.
var isTermStart = anyOf(
	ofType(token.IntConst),
	ofType(token.StrConst),
	ofType(token.Identifier),
	isKeywordConst,
	is("("), is("-"), is("~"),
)
