// Package token turns Jack source bytes into a randomly-indexable token
// stream. Comments are stripped before lexing; nothing else fails at lex
// time — a malformed word simply becomes an identifier that the engine
// will later fail to resolve.
package token

import (
	"bufio"
	"io"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/exp/slices"

	"github.com/jacklang/jackc/jackerr"
)

type Type string

const (
	Keyword    Type = "keyword"
	Symbol     Type = "symbol"
	IntConst   Type = "integerConstant"
	StrConst   Type = "stringConstant"
	Identifier Type = "identifier"
)

// Token is a tagged lexical unit. Raw carries the literal text as scanned
// (string literals still wrapped in their quotes); Type classifies it.
type Token struct {
	Raw  string
	Type Type
	Line int
}

var keywords = []string{
	"class", "constructor", "function", "method", "field", "static",
	"var", "int", "char", "boolean", "void", "true", "false", "null",
	"this", "let", "do", "if", "else", "while", "return",
}

var symbols = []string{
	"{", "}", "(", ")", "[", "]", ".", ",", ";",
	"+", "-", "*", "/", "&", "|", "<", ">", "=", "~",
}

var operators = []string{"+", "-", "*", "/", "&", "|", "<", ">", "="}

var integerRe = regexp.MustCompile(`^\d+$`)

func isKeyword(s string) bool   { return slices.Contains(keywords, s) }
func isSymbolTok(s string) bool { return slices.Contains(symbols, s) }

func classify(raw string) Type {
	switch {
	case isKeyword(raw):
		return Keyword
	case isSymbolTok(raw):
		return Symbol
	case integerRe.MatchString(raw):
		return IntConst
	case strings.HasPrefix(raw, `"`):
		return StrConst
	default:
		return Identifier
	}
}

// Tokenizer holds the full token stream for one source file plus a
// movable cursor. The stream is materialized up front (spec.md §5: the
// input reader is closed before any code generation begins), so
// Advance/StepBack/Peek never touch I/O.
type Tokenizer struct {
	tokens  []Token
	cursor  int // index of the next token Advance will return
	Current Token
}

// New reads all of r, strips comments, and lexes the remainder into a
// token stream. It never returns a partial stream: an unterminated block
// comment or string literal truncates silently (spec.md §9.4), matching
// the teacher's/original's forgiving lexer.
func New(r io.Reader) (*Tokenizer, error) {
	lines, err := splitLogicalLines(r)
	if err != nil {
		return nil, err
	}

	tk := &Tokenizer{}
	for _, ll := range lines {
		tk.tokens = append(tk.tokens, lexLine(ll.text, ll.line)...)
	}
	return tk, nil
}

func (tk *Tokenizer) HasMoreTokens() bool {
	return tk.cursor < len(tk.tokens)
}

// Advance consumes the next token into Current.
func (tk *Tokenizer) Advance() bool {
	if !tk.HasMoreTokens() {
		return false
	}
	tk.Current = tk.tokens[tk.cursor]
	tk.cursor++
	return true
}

// StepBack moves the cursor back by exactly one and restores the
// previously-current token. It is the engine's one-token lookahead
// primitive, matching spec.md §4.1's "step_back" (the original's
// decrementPointer).
func (tk *Tokenizer) StepBack() {
	if tk.cursor <= 1 {
		tk.cursor = 0
		tk.Current = Token{}
		return
	}
	tk.cursor--
	tk.Current = tk.tokens[tk.cursor-1]
}

// Peek returns the next token without consuming it. It reads the token
// at the cursor directly and leaves both the cursor and Current
// unchanged; it does not go through Advance or StepBack.
func (tk *Tokenizer) Peek() (Token, bool) {
	if !tk.HasMoreTokens() {
		return Token{}, false
	}
	return tk.tokens[tk.cursor], true
}

func (tk *Tokenizer) KindOfCurrent() Type { return tk.Current.Type }

func (tk *Tokenizer) KeywordOfCurrent() (string, error) {
	if tk.Current.Type != Keyword {
		return "", &jackerr.WrongTokenKind{Requested: "keyword", Actual: string(tk.Current.Type), Raw: tk.Current.Raw}
	}
	return tk.Current.Raw, nil
}

func (tk *Tokenizer) SymbolOfCurrent() (byte, error) {
	if tk.Current.Type != Symbol {
		return 0, &jackerr.WrongTokenKind{Requested: "symbol", Actual: string(tk.Current.Type), Raw: tk.Current.Raw}
	}
	return tk.Current.Raw[0], nil
}

func (tk *Tokenizer) IdentifierOfCurrent() (string, error) {
	if tk.Current.Type != Identifier {
		return "", &jackerr.WrongTokenKind{Requested: "identifier", Actual: string(tk.Current.Type), Raw: tk.Current.Raw}
	}
	return tk.Current.Raw, nil
}

func (tk *Tokenizer) IntValueOfCurrent() (int, error) {
	if tk.Current.Type != IntConst {
		return 0, &jackerr.WrongTokenKind{Requested: "integer constant", Actual: string(tk.Current.Type), Raw: tk.Current.Raw}
	}
	return strconv.Atoi(tk.Current.Raw)
}

func (tk *Tokenizer) StringValueOfCurrent() (string, error) {
	if tk.Current.Type != StrConst {
		return "", &jackerr.WrongTokenKind{Requested: "string constant", Actual: string(tk.Current.Type), Raw: tk.Current.Raw}
	}
	return strings.Trim(tk.Current.Raw, `"`), nil
}

// IsOperatorCurrent mirrors the original's isOperator: true iff the
// current token is a symbol in the nine arithmetic/logical/comparison
// characters. For single-character symbol tokens (the only kind this
// tokenizer ever produces) this is exact; spec.md §9.2 notes the
// original's version is really a substring test over "+-*/&|<>=", which
// would also (harmlessly) accept any multi-character substring of that
// set — an impossibility given one-character symbol tokens.
func (tk *Tokenizer) IsOperatorCurrent() bool {
	return IsOperator(tk.Current)
}

// IsOperator reports whether tok is one of the nine arithmetic, logical,
// or comparison symbols spec.md §4.3's Expression rule dispatches on.
func IsOperator(tok Token) bool {
	return tok.Type == Symbol && slices.Contains(operators, tok.Raw)
}

type logicalLine struct {
	text string
	line int
}

// splitLogicalLines strips // and /* */ comments and returns the
// surviving, non-empty lines with their 1-based source line numbers.
// Block-comment state is a single mode bit carried across line reads
// (spec.md §4.1/§9.5), exactly as the original's insideBlockComment.
func splitLogicalLines(r io.Reader) ([]logicalLine, error) {
	scanner := bufio.NewScanner(r)
	var out []logicalLine
	inBlock := false
	lineNr := 0

	for scanner.Scan() {
		lineNr++
		line := scanner.Text()

		if inBlock {
			if idx := strings.Index(line, "*/"); idx >= 0 {
				line = line[idx+2:]
				inBlock = false
			} else {
				continue
			}
		}

		// strip a line comment before looking for a block comment, matching
		// the original's removeComments order — otherwise a "/*" appearing
		// inside a "// ..." comment is mistaken for a real block start.
		if idx := findLineCommentStart(line); idx >= 0 {
			line = line[:idx]
		}

		for {
			open := strings.Index(line, "/*")
			if open < 0 {
				break
			}
			if closeIdx := strings.Index(line[open:], "*/"); closeIdx >= 0 {
				line = line[:open] + line[open+closeIdx+2:]
				continue
			}
			line = line[:open]
			inBlock = true
			break
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		out = append(out, logicalLine{text: line, line: lineNr})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// findLineCommentStart finds a "//" that isn't inside a string literal.
func findLineCommentStart(line string) int {
	inString := false
	for i := 0; i < len(line)-1; i++ {
		c := line[i]
		if c == '"' {
			inString = !inString
			continue
		}
		if !inString && c == '/' && line[i+1] == '/' {
			return i
		}
	}
	return -1
}

func lexLine(line string, lineNr int) []Token {
	var toks []Token
	var cur strings.Builder

	flush := func() {
		if cur.Len() == 0 {
			return
		}
		raw := cur.String()
		toks = append(toks, Token{Raw: raw, Type: classify(raw), Line: lineNr})
		cur.Reset()
	}

	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case c == ' ' || c == '\t':
			flush()
		case c == '"':
			end := strings.IndexByte(line[i+1:], '"')
			if end < 0 {
				// unterminated string literal: drop silently (spec.md §9.4)
				i = len(line)
				break
			}
			end += i + 1
			flush()
			toks = append(toks, Token{Raw: line[i : end+1], Type: StrConst, Line: lineNr})
			i = end
		case isSymbolTok(string(c)):
			flush()
			toks = append(toks, Token{Raw: string(c), Type: Symbol, Line: lineNr})
		default:
			cur.WriteByte(c)
		}
	}
	flush()
	return toks
}
