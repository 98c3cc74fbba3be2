// Package engine implements the recursive-descent parser fused with
// code generation of spec.md §4.3: one procedure per grammar
// nonterminal, each consuming tokens and emitting VM instructions as it
// goes, with no intermediate parse tree.
//
// The engine never recovers from a malformed token: processTokenOrPanics
// panics with a *jackerr.UnexpectedToken (and class panics with a
// *jackerr.StrayInput on leftover tokens), and Compile is the single
// recover point that turns that panic back
// into a returned error, the teacher's engine/errors.go sentinel-error
// idiom generalized to a typed panic/recover boundary.
package engine

import (
	"strconv"

	"github.com/jacklang/jackc/jackerr"
	"github.com/jacklang/jackc/logger"
	"github.com/jacklang/jackc/symtab"
	"github.com/jacklang/jackc/token"
	"github.com/jacklang/jackc/vm"
)

// Compiler holds the session-local state of one class compilation:
// the symbol table, the class/subroutine names currently being
// compiled, and the label counter (spec.md §3's Compilation Engine
// state).
type Compiler struct {
	vmw            *vm.Writer
	table          *symtab.Table
	className      string
	subroutineName string
	labelCounter   int
}

func New(w *vm.Writer) *Compiler {
	return &Compiler{vmw: w, table: symtab.New()}
}

// Compile drives one full class compilation against tk, recovering any
// parser panic into a returned error.
func (c *Compiler) Compile(tk *token.Tokenizer) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = e
				return
			}
			panic(r)
		}
	}()
	c.class(tk)
	return nil
}

func (c *Compiler) newLabel() string {
	label := "LABEL_" + strconv.Itoa(c.labelCounter)
	c.labelCounter++
	return label
}

// processTokenOrPanics advances the tokenizer and panics with a
// *jackerr.UnexpectedToken describing what was expected if the newly
// current token doesn't satisfy m.
func processTokenOrPanics(tk *token.Tokenizer, description string, m matcher) token.Token {
	if !tk.Advance() {
		panic(&jackerr.UnexpectedToken{Expected: description, Actual: "end of input"})
	}
	if !m(tk.Current) {
		panic(&jackerr.UnexpectedToken{Expected: description, Actual: tk.Current.Raw, Line: tk.Current.Line})
	}
	return tk.Current
}

func checkSymbol(tk *token.Tokenizer, sym string) token.Token {
	return processTokenOrPanics(tk, "'"+sym+"'", is(sym))
}

func checkKeyword(tk *token.Tokenizer, kw string) token.Token {
	return processTokenOrPanics(tk, "'"+kw+"'", is(kw))
}

// peekIs reports whether the next, not-yet-consumed token matches m.
func peekIs(tk *token.Tokenizer, m matcher) bool {
	tok, ok := tk.Peek()
	return ok && m(tok)
}

// class = 'class' ID '{' classVarDec* subroutineDec* '}'
func (c *Compiler) class(tk *token.Tokenizer) {
	checkKeyword(tk, "class")
	c.className = processTokenOrPanics(tk, "class name", isIdentifier()).Raw
	checkSymbol(tk, "{")

	for peekIs(tk, anyOf(is("static"), is("field"))) {
		c.classVarDec(tk)
	}
	for peekIs(tk, anyOf(is("constructor"), is("function"), is("method"))) {
		c.subroutine(tk)
	}

	checkSymbol(tk, "}")
	logger.Printf("class %s names in scope: %v\n", c.className, c.table.Names())
	if tk.HasMoreTokens() {
		tk.Advance()
		panic(&jackerr.StrayInput{Raw: tk.Current.Raw, Line: tk.Current.Line})
	}
}

// classVarDec = ('static'|'field') type ID (',' ID)* ';'
func (c *Compiler) classVarDec(tk *token.Tokenizer) {
	tk.Advance() // 'static' or 'field'
	kind := symtab.Static
	if tk.Current.Raw == "field" {
		kind = symtab.Field
	}
	c.varList(tk, kind)
}

// compileType = 'int' | 'char' | 'boolean' | ID
func (c *Compiler) compileType(tk *token.Tokenizer) string {
	return processTokenOrPanics(tk, "type", isType).Raw
}

// varList parses "type ID (',' ID)* ';'" — the shared tail of
// classVarDec and varDec — and defines each name under kind.
func (c *Compiler) varList(tk *token.Tokenizer, kind symtab.Kind) {
	typ := c.compileType(tk)
	for {
		name := processTokenOrPanics(tk, "variable name", isIdentifier()).Raw
		c.table.Define(name, typ, kind)
		sep := processTokenOrPanics(tk, "',' or ';'", anyOf(is(","), is(";"))).Raw
		if sep == ";" {
			break
		}
	}
}

// subroutineDec = ('constructor'|'function'|'method') ('void'|type) ID
//
//	'(' parameterList ')' subroutineBody
func (c *Compiler) subroutine(tk *token.Tokenizer) {
	tk.Advance() // constructor | function | method
	kind := tk.Current.Raw

	c.table.StartSubroutine()
	if kind == "method" {
		c.table.Define("this", c.className, symtab.Argument)
	}

	if peekIs(tk, is("void")) {
		tk.Advance()
	} else {
		c.compileType(tk)
	}

	c.subroutineName = processTokenOrPanics(tk, "subroutine name", isIdentifier()).Raw

	checkSymbol(tk, "(")
	c.parameterList(tk)
	checkSymbol(tk, ")")

	checkSymbol(tk, "{")
	c.varDec(tk)

	c.vmw.WriteFunction(c.className+"."+c.subroutineName, c.table.VarCount(symtab.Local))
	switch kind {
	case "method":
		c.vmw.WritePush("argument", 0)
		c.vmw.WritePop("pointer", 0)
	case "constructor":
		c.vmw.WritePush("constant", c.table.VarCount(symtab.Field))
		c.vmw.WriteCall("Memory.alloc", 1)
		c.vmw.WritePop("pointer", 0)
	}

	c.statements(tk)
	checkSymbol(tk, "}")
}

// parameterList = ( type ID (',' type ID)* )?
func (c *Compiler) parameterList(tk *token.Tokenizer) {
	if peekIs(tk, is(")")) {
		return
	}
	for {
		typ := c.compileType(tk)
		name := processTokenOrPanics(tk, "parameter name", isIdentifier()).Raw
		c.table.Define(name, typ, symtab.Argument)
		if !peekIs(tk, is(",")) {
			return
		}
		checkSymbol(tk, ",")
	}
}

// varDec = 'var' type ID (',' ID)* ';'
func (c *Compiler) varDec(tk *token.Tokenizer) {
	for peekIs(tk, is("var")) {
		tk.Advance() // 'var'
		c.varList(tk, symtab.Local)
	}
}

// statement = letStmt | ifStmt | whileStmt | doStmt | returnStmt
func (c *Compiler) statements(tk *token.Tokenizer) {
	for {
		tok, ok := tk.Peek()
		if !ok {
			return
		}
		switch tok.Raw {
		case "let":
			tk.Advance()
			c.letStmt(tk)
		case "if":
			tk.Advance()
			c.ifStmt(tk)
		case "while":
			tk.Advance()
			c.whileStmt(tk)
		case "do":
			tk.Advance()
			c.doStmt(tk)
		case "return":
			tk.Advance()
			c.returnStmt(tk)
		default:
			return
		}
	}
}

// letStmt = 'let' ID ('[' expression ']')? '=' expression ';'
func (c *Compiler) letStmt(tk *token.Tokenizer) {
	name := processTokenOrPanics(tk, "variable name", isIdentifier()).Raw

	isArray := peekIs(tk, is("["))
	if isArray {
		checkSymbol(tk, "[")
		c.vmw.WritePush(c.table.KindOf(name).Segment(), c.table.IndexOf(name))
		c.expression(tk)
		checkSymbol(tk, "]")
		c.vmw.WriteArithmetic("+")
	}

	checkSymbol(tk, "=")
	c.expression(tk)
	checkSymbol(tk, ";")

	if isArray {
		c.vmw.WritePop("temp", 0)
		c.vmw.WritePop("pointer", 1)
		c.vmw.WritePush("temp", 0)
		c.vmw.WritePop("that", 0)
		return
	}
	c.vmw.WritePop(c.table.KindOf(name).Segment(), c.table.IndexOf(name))
}

// ifStmt = 'if' '(' expression ')' '{' statement* '}'
//
//	('else' '{' statement* '}')?
func (c *Compiler) ifStmt(tk *token.Tokenizer) {
	elseLabel := c.newLabel()
	endLabel := c.newLabel()

	checkSymbol(tk, "(")
	c.expression(tk)
	checkSymbol(tk, ")")
	c.vmw.WriteNot()
	c.vmw.WriteIfGoto(elseLabel)

	checkSymbol(tk, "{")
	c.statements(tk)
	checkSymbol(tk, "}")
	c.vmw.WriteGoto(endLabel)

	c.vmw.WriteLabel(elseLabel)
	if peekIs(tk, is("else")) {
		tk.Advance()
		checkSymbol(tk, "{")
		c.statements(tk)
		checkSymbol(tk, "}")
	}
	c.vmw.WriteLabel(endLabel)
}

// whileStmt = 'while' '(' expression ')' '{' statement* '}'
//
// Label allocation order follows spec.md §9 note 1: the exit label is
// allocated before the top label (both orderings are semantically
// correct; this is the concrete choice the original source makes).
func (c *Compiler) whileStmt(tk *token.Tokenizer) {
	whileExit := c.newLabel()
	whileTop := c.newLabel()

	c.vmw.WriteLabel(whileTop)
	checkSymbol(tk, "(")
	c.expression(tk)
	checkSymbol(tk, ")")
	c.vmw.WriteNot()
	c.vmw.WriteIfGoto(whileExit)

	checkSymbol(tk, "{")
	c.statements(tk)
	checkSymbol(tk, "}")
	c.vmw.WriteGoto(whileTop)
	c.vmw.WriteLabel(whileExit)
}

// doStmt = 'do' subroutineCall ';'
func (c *Compiler) doStmt(tk *token.Tokenizer) {
	c.subroutineCall(tk)
	checkSymbol(tk, ";")
	c.vmw.WritePop("temp", 0)
}

// returnStmt = 'return' expression? ';'
func (c *Compiler) returnStmt(tk *token.Tokenizer) {
	if peekIs(tk, is(";")) {
		tk.Advance()
		c.vmw.WritePush("constant", 0)
	} else {
		c.expression(tk)
		checkSymbol(tk, ";")
	}
	c.vmw.WriteReturn()
}

// expression = term (op term)*
//
// Strictly left-associative, no precedence: spec.md §1 non-goals and
// §4.3 both require this — operators are applied in the order seen.
func (c *Compiler) expression(tk *token.Tokenizer) {
	c.term(tk)
	for {
		tok, ok := tk.Peek()
		if !ok || !token.IsOperator(tok) {
			return
		}
		tk.Advance()
		op := tk.Current.Raw
		c.term(tk)
		c.vmw.WriteArithmetic(op)
	}
}

// term = INT | STRING | keywordConst | ID
//
//	| ID '[' expression ']'
//	| subroutineCall
//	| '(' expression ')' | ('-'|'~') term
func (c *Compiler) term(tk *token.Tokenizer) {
	processTokenOrPanics(tk, "term", isTermStart)

	switch tk.Current.Type {
	case token.IntConst:
		n, _ := tk.IntValueOfCurrent()
		c.vmw.WritePush("constant", n)
		return
	case token.StrConst:
		c.pushStringLiteral(tk)
		return
	}

	switch tk.Current.Raw {
	case "true":
		c.vmw.WritePush("constant", 0)
		c.vmw.WriteNot()
		return
	case "false", "null":
		c.vmw.WritePush("constant", 0)
		return
	case "this":
		c.vmw.WritePush("pointer", 0)
		return
	case "(":
		c.expression(tk)
		checkSymbol(tk, ")")
		return
	case "-":
		c.term(tk)
		c.vmw.WriteNeg()
		return
	case "~":
		c.term(tk)
		c.vmw.WriteNot()
		return
	}

	// identifier: look one token ahead to disambiguate plain variable,
	// array access, and subroutine call.
	name := tk.Current.Raw
	next, ok := tk.Peek()
	switch {
	case ok && next.Raw == "[":
		tk.Advance()
		c.vmw.WritePush(c.table.KindOf(name).Segment(), c.table.IndexOf(name))
		c.expression(tk)
		checkSymbol(tk, "]")
		c.vmw.WriteArithmetic("+")
		c.vmw.WritePop("pointer", 1)
		c.vmw.WritePush("that", 0)
	case ok && (next.Raw == "(" || next.Raw == "."):
		tk.StepBack()
		c.subroutineCall(tk)
	default:
		c.vmw.WritePush(c.table.KindOf(name).Segment(), c.table.IndexOf(name))
	}
}

func (c *Compiler) pushStringLiteral(tk *token.Tokenizer) {
	s, _ := tk.StringValueOfCurrent()
	c.vmw.WritePush("constant", len(s))
	c.vmw.WriteCall("String.new", 1)
	for i := 0; i < len(s); i++ {
		c.vmw.WritePush("constant", int(s[i]))
		c.vmw.WriteCall("String.appendChar", 2)
	}
}

// subroutineCall = ID '(' expressionList ')'
//
//	| ID '.' ID '(' expressionList ')'
func (c *Compiler) subroutineCall(tk *token.Tokenizer) {
	n1 := processTokenOrPanics(tk, "subroutine name", isIdentifier()).Raw

	switch {
	case peekIs(tk, is("(")):
		checkSymbol(tk, "(")
		c.vmw.WritePush("pointer", 0)
		nArgs := c.expressionList(tk) + 1
		checkSymbol(tk, ")")
		c.vmw.WriteCall(c.className+"."+n1, nArgs)

	case peekIs(tk, is(".")):
		checkSymbol(tk, ".")
		n2 := processTokenOrPanics(tk, "subroutine name", isIdentifier()).Raw

		typ := c.table.TypeOf(n1)
		var fullName string
		nArgs := 0
		if typ == "" {
			fullName = n1 + "." + n2
		} else {
			c.vmw.WritePush(c.table.KindOf(n1).Segment(), c.table.IndexOf(n1))
			nArgs = 1
			fullName = typ + "." + n2
		}

		checkSymbol(tk, "(")
		nArgs += c.expressionList(tk)
		checkSymbol(tk, ")")
		c.vmw.WriteCall(fullName, nArgs)

	default:
		processTokenOrPanics(tk, "'(' or '.'", anyOf(is("("), is(".")))
	}
}

// expressionList = ( expression (',' expression)* )?
func (c *Compiler) expressionList(tk *token.Tokenizer) int {
	if peekIs(tk, is(")")) {
		return 0
	}
	count := 1
	c.expression(tk)
	for peekIs(tk, is(",")) {
		checkSymbol(tk, ",")
		c.expression(tk)
		count++
	}
	return count
}
