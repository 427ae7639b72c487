package glsl

import (
	"fmt"
	"strings"
)

// Parser parses GLSL tokens into an AST.
type Parser struct {
	tokens  []Token
	current int
}

// ParseError represents a parsing error.
type ParseError struct {
	Message string
	Token   Token
}

func (e ParseError) Error() string {
	return fmt.Sprintf("line %d, column %d: %s", e.Token.Line, e.Token.Column, e.Message)
}

// NewParser creates a new parser for the given tokens.
func NewParser(tokens []Token) *Parser {
	return &Parser{
		tokens:  tokens,
		current: 0,
	}
}

// Parse parses GLSL source code to a translation unit.
func Parse(source string) (*TranslationUnit, error) {
	lexer := NewLexer(source)
	tokens, err := lexer.Tokenize()
	if err != nil {
		return nil, err
	}
	return NewParser(tokens).Parse()
}

// Parse parses the tokens and returns a TranslationUnit AST.
func (p *Parser) Parse() (*TranslationUnit, error) {
	tu := &TranslationUnit{}

	for !p.isAtEnd() {
		decls, err := p.declaration()
		if err != nil {
			return nil, err
		}
		tu.Decls = append(tu.Decls, decls...)
	}

	return tu, nil
}

// declaration parses a top-level declaration. A single declarator list
// may produce several declarations.
func (p *Parser) declaration() ([]Decl, *ParseError) {
	switch {
	case p.check(TokenDirective):
		tok := p.advance()
		return []Decl{&DirectiveDecl{Raw: tok.Lexeme, Span: tokenSpan(tok)}}, nil

	case p.check(TokenPrecision):
		d, err := p.precisionDecl()
		if err != nil {
			return nil, err
		}
		return []Decl{d}, nil

	case p.check(TokenStruct):
		d, err := p.structDecl()
		if err != nil {
			return nil, err
		}
		return []Decl{d}, nil

	case p.match(TokenSemicolon):
		return nil, nil

	default:
		return p.qualifiedDecl()
	}
}

// precisionDecl parses "precision <qualifier> <type> ;".
func (p *Parser) precisionDecl() (*PrecisionDecl, *ParseError) {
	start := p.advance() // consume 'precision'

	if !p.isPrecisionQualifier(p.peek().Kind) {
		return nil, &ParseError{Message: "expected precision qualifier", Token: p.peek()}
	}
	prec := p.advance()

	ty, err := p.typeSpec()
	if err != nil {
		return nil, err
	}

	p.match(TokenSemicolon)

	return &PrecisionDecl{
		Precision: prec.Lexeme,
		Type:      ty,
		Span:      tokenSpan(start),
	}, nil
}

// structDecl parses a struct declaration.
func (p *Parser) structDecl() (*StructDecl, *ParseError) {
	start := p.advance() // consume 'struct'

	if !p.check(TokenIdent) {
		return nil, &ParseError{Message: "expected struct name", Token: p.peek()}
	}
	name := p.advance()

	fields, err := p.fieldList()
	if err != nil {
		return nil, err
	}

	p.match(TokenSemicolon)

	return &StructDecl{
		Name:   name.Lexeme,
		Fields: fields,
		Span:   tokenSpan(start),
	}, nil
}

// fieldList parses "{ type name [array] ; ... }".
func (p *Parser) fieldList() ([]*StructField, *ParseError) {
	if err := p.expectErr(TokenLeftBrace); err != nil {
		return nil, err
	}

	fields := make([]*StructField, 0, 4)
	for !p.check(TokenRightBrace) && !p.isAtEnd() {
		// Field precision qualifiers are accepted and dropped.
		for p.isPrecisionQualifier(p.peek().Kind) {
			p.advance()
		}

		ty, err := p.typeSpec()
		if err != nil {
			return nil, err
		}

		for {
			if !p.check(TokenIdent) {
				return nil, &ParseError{Message: "expected field name", Token: p.peek()}
			}
			name := p.advance()

			array, err := p.arraySpec()
			if err != nil {
				return nil, err
			}

			fields = append(fields, &StructField{
				Type:  ty,
				Name:  name.Lexeme,
				Array: array,
				Span:  tokenSpan(name),
			})

			if !p.match(TokenComma) {
				break
			}
		}

		if err := p.expectErr(TokenSemicolon); err != nil {
			return nil, err
		}
	}

	if err := p.expectErr(TokenRightBrace); err != nil {
		return nil, err
	}

	return fields, nil
}

// qualifiedDecl parses global variables, interface blocks, prototypes
// and function definitions: all start with an optional qualifier
// sequence followed by a type name.
func (p *Parser) qualifiedDecl() ([]Decl, *ParseError) {
	start := p.peek()
	quals, err := p.qualifiers()
	if err != nil {
		return nil, err
	}

	// Interface block: qualifiers followed by Name '{'.
	if len(quals) > 0 && p.check(TokenIdent) && p.peekNext().Kind == TokenLeftBrace {
		return p.blockDecl(start, quals)
	}

	ty, perr := p.typeSpec()
	if perr != nil {
		return nil, perr
	}

	if !p.check(TokenIdent) {
		return nil, &ParseError{Message: "expected declaration name", Token: p.peek()}
	}
	name := p.advance()

	if p.check(TokenLeftParen) {
		return p.functionDecl(start, ty, name)
	}

	return p.varDeclList(start, quals, ty, name)
}

// blockDecl parses an interface block declaration.
func (p *Parser) blockDecl(start Token, quals []string) ([]Decl, *ParseError) {
	name := p.advance()

	fields, err := p.fieldList()
	if err != nil {
		return nil, err
	}

	instance := ""
	if p.check(TokenIdent) {
		instance = p.advance().Lexeme
	}

	p.match(TokenSemicolon)

	return []Decl{&BlockDecl{
		Qualifiers: quals,
		Name:       name.Lexeme,
		Fields:     fields,
		Instance:   instance,
		Span:       tokenSpan(start),
	}}, nil
}

// functionDecl parses a prototype or function definition after the
// return type and name have been consumed.
func (p *Parser) functionDecl(start Token, ret *TypeSpec, name Token) ([]Decl, *ParseError) {
	params, err := p.parameterList()
	if err != nil {
		return nil, err
	}

	proto := &Prototype{
		ReturnType: ret,
		Name:       name.Lexeme,
		Params:     params,
		Span:       tokenSpan(start),
	}

	if p.match(TokenSemicolon) {
		return []Decl{&PrototypeDecl{Proto: proto, Span: tokenSpan(start)}}, nil
	}

	body, err := p.block()
	if err != nil {
		return nil, err
	}

	return []Decl{&FunctionDecl{
		Proto: proto,
		Body:  body,
		Span:  tokenSpan(start),
	}}, nil
}

// parameterList parses "( param, ... )".
func (p *Parser) parameterList() ([]*Param, *ParseError) {
	if err := p.expectErr(TokenLeftParen); err != nil {
		return nil, err
	}

	params := make([]*Param, 0, 4)
	for !p.check(TokenRightParen) && !p.isAtEnd() {
		param, err := p.parameter()
		if err != nil {
			return nil, err
		}
		// "void" as the only parameter means an empty list.
		if param.Type.Name == "void" && param.Name == "" && len(params) == 0 && p.check(TokenRightParen) {
			break
		}
		params = append(params, param)

		if !p.match(TokenComma) {
			break
		}
	}

	if err := p.expectErr(TokenRightParen); err != nil {
		return nil, err
	}

	return params, nil
}

// parameter parses a single function parameter.
func (p *Parser) parameter() (*Param, *ParseError) {
	start := p.peek()
	quals, err := p.qualifiers()
	if err != nil {
		return nil, err
	}

	ty, perr := p.typeSpec()
	if perr != nil {
		return nil, perr
	}

	name := ""
	var array *ArraySpec
	if p.check(TokenIdent) {
		name = p.advance().Lexeme
		array, perr = p.arraySpec()
		if perr != nil {
			return nil, perr
		}
	}

	return &Param{
		Qualifiers: quals,
		Type:       ty,
		Name:       name,
		Array:      array,
		Span:       tokenSpan(start),
	}, nil
}

// varDeclList parses the declarator list of a variable declaration.
func (p *Parser) varDeclList(start Token, quals []string, ty *TypeSpec, name Token) ([]Decl, *ParseError) {
	var decls []Decl

	for {
		array, err := p.arraySpec()
		if err != nil {
			return nil, err
		}

		var init Expr
		if p.match(TokenEqual) {
			e, err := p.expression()
			if err != nil {
				return nil, err
			}
			init = e
		}

		decls = append(decls, &VarDecl{
			Qualifiers: quals,
			Type:       ty,
			Name:       name.Lexeme,
			Array:      array,
			Init:       init,
			Span:       tokenSpan(start),
		})

		if !p.match(TokenComma) {
			break
		}
		if !p.check(TokenIdent) {
			return nil, &ParseError{Message: "expected declarator name", Token: p.peek()}
		}
		name = p.advance()
	}

	if err := p.expectErr(TokenSemicolon); err != nil {
		return nil, err
	}

	return decls, nil
}

// qualifiers parses a possibly empty qualifier sequence. Layout
// qualifiers are kept as a single raw string.
func (p *Parser) qualifiers() ([]string, *ParseError) {
	var quals []string

	for {
		tok := p.peek()
		switch tok.Kind {
		case TokenConst, TokenIn, TokenOut, TokenInout, TokenUniform, TokenBuffer,
			TokenShared, TokenVarying, TokenAttribute, TokenCentroid, TokenFlat,
			TokenSmooth, TokenNoperspective, TokenInvariant, TokenPrecise,
			TokenHighp, TokenMediump, TokenLowp:
			p.advance()
			quals = append(quals, tok.Lexeme)

		case TokenLayout:
			p.advance()
			raw, err := p.layoutQualifier()
			if err != nil {
				return nil, err
			}
			quals = append(quals, raw)

		default:
			return quals, nil
		}
	}
}

// layoutQualifier consumes "( ... )" after "layout" and returns the
// qualifier verbatim.
func (p *Parser) layoutQualifier() (string, *ParseError) {
	if err := p.expectErr(TokenLeftParen); err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString("layout(")
	depth := 1
	for depth > 0 && !p.isAtEnd() {
		tok := p.advance()
		switch tok.Kind {
		case TokenLeftParen:
			depth++
		case TokenRightParen:
			depth--
			if depth == 0 {
				continue
			}
		case TokenComma:
			sb.WriteString(", ")
			continue
		}
		if depth > 0 {
			sb.WriteString(tok.Lexeme)
		}
	}
	sb.WriteString(")")

	return sb.String(), nil
}

// typeSpec parses a type reference.
func (p *Parser) typeSpec() (*TypeSpec, *ParseError) {
	if !p.check(TokenIdent) {
		return nil, &ParseError{Message: "expected type", Token: p.peek()}
	}
	name := p.advance()

	array, err := p.arraySpec()
	if err != nil {
		return nil, err
	}

	return &TypeSpec{
		Name:  name.Lexeme,
		Array: array,
		Span:  tokenSpan(name),
	}, nil
}

// arraySpec parses an optional array specifier.
func (p *Parser) arraySpec() (*ArraySpec, *ParseError) {
	if !p.check(TokenLeftBracket) {
		return nil, nil
	}
	start := p.advance()

	var size Expr
	if !p.check(TokenRightBracket) {
		e, err := p.expression()
		if err != nil {
			return nil, err
		}
		size = e
	}

	if err := p.expectErr(TokenRightBracket); err != nil {
		return nil, err
	}

	return &ArraySpec{Size: size, Span: tokenSpan(start)}, nil
}

// block parses a compound statement.
func (p *Parser) block() (*BlockStmt, *ParseError) {
	start := p.peek()
	if err := p.expectErr(TokenLeftBrace); err != nil {
		return nil, err
	}

	stmts := make([]Stmt, 0, 4)
	for !p.check(TokenRightBrace) && !p.isAtEnd() {
		more, err := p.statement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, more...)
	}

	if err := p.expectErr(TokenRightBrace); err != nil {
		return nil, err
	}

	return &BlockStmt{
		Statements: stmts,
		Span:       tokenSpan(start),
	}, nil
}

// statement parses a statement. Local declarations may expand to
// several statements (one per declarator).
func (p *Parser) statement() ([]Stmt, *ParseError) {
	switch {
	case p.check(TokenReturn):
		s, err := p.returnStmt()
		return wrapStmt(s, err)
	case p.check(TokenIf):
		s, err := p.ifStmt()
		return wrapStmt(s, err)
	case p.check(TokenFor):
		s, err := p.forStmt()
		return wrapStmt(s, err)
	case p.check(TokenWhile):
		s, err := p.whileStmt()
		return wrapStmt(s, err)
	case p.check(TokenDo):
		s, err := p.doWhileStmt()
		return wrapStmt(s, err)
	case p.check(TokenSwitch):
		s, err := p.switchStmt()
		return wrapStmt(s, err)
	case p.check(TokenBreak):
		start := p.advance()
		p.match(TokenSemicolon)
		return []Stmt{&BreakStmt{Span: tokenSpan(start)}}, nil
	case p.check(TokenContinue):
		start := p.advance()
		p.match(TokenSemicolon)
		return []Stmt{&ContinueStmt{Span: tokenSpan(start)}}, nil
	case p.check(TokenDiscard):
		start := p.advance()
		p.match(TokenSemicolon)
		return []Stmt{&DiscardStmt{Span: tokenSpan(start)}}, nil
	case p.check(TokenLeftBrace):
		s, err := p.block()
		return wrapStmt(s, err)
	case p.match(TokenSemicolon):
		return nil, nil
	case p.startsLocalDecl():
		return p.localDecl()
	default:
		s, err := p.exprOrAssignStmt()
		return wrapStmt(s, err)
	}
}

func wrapStmt(s Stmt, err *ParseError) ([]Stmt, *ParseError) {
	if err != nil {
		return nil, err
	}
	return []Stmt{s}, nil
}

// startsLocalDecl reports whether the upcoming tokens begin a local
// variable declaration. Either a qualifier keyword, or two consecutive
// identifiers ("type name").
func (p *Parser) startsLocalDecl() bool {
	switch p.peek().Kind {
	case TokenConst, TokenHighp, TokenMediump, TokenLowp, TokenPrecise:
		return true
	case TokenIdent:
		return p.peekNext().Kind == TokenIdent
	}
	return false
}

// localDecl parses a local variable declaration list.
func (p *Parser) localDecl() ([]Stmt, *ParseError) {
	start := p.peek()
	quals, err := p.qualifiers()
	if err != nil {
		return nil, err
	}

	ty, perr := p.typeSpec()
	if perr != nil {
		return nil, perr
	}

	var stmts []Stmt
	for {
		if !p.check(TokenIdent) {
			return nil, &ParseError{Message: "expected variable name", Token: p.peek()}
		}
		name := p.advance()

		array, err := p.arraySpec()
		if err != nil {
			return nil, err
		}

		var init Expr
		if p.match(TokenEqual) {
			e, err := p.expression()
			if err != nil {
				return nil, err
			}
			init = e
		}

		stmts = append(stmts, &VarDecl{
			Qualifiers: quals,
			Type:       ty,
			Name:       name.Lexeme,
			Array:      array,
			Init:       init,
			Span:       tokenSpan(start),
		})

		if !p.match(TokenComma) {
			break
		}
	}

	if err := p.expectErr(TokenSemicolon); err != nil {
		return nil, err
	}

	return stmts, nil
}

// returnStmt parses a return statement.
func (p *Parser) returnStmt() (*ReturnStmt, *ParseError) {
	start := p.advance() // consume 'return'

	var value Expr
	if !p.check(TokenSemicolon) && !p.check(TokenRightBrace) {
		e, err := p.expression()
		if err != nil {
			return nil, err
		}
		value = e
	}

	p.match(TokenSemicolon)

	return &ReturnStmt{
		Value: value,
		Span:  tokenSpan(start),
	}, nil
}

// ifStmt parses an if statement. Single-statement branches are wrapped
// in a block.
func (p *Parser) ifStmt() (*IfStmt, *ParseError) {
	start := p.advance() // consume 'if'

	if err := p.expectErr(TokenLeftParen); err != nil {
		return nil, err
	}
	cond, err := p.expression()
	if err != nil {
		return nil, err
	}
	if err := p.expectErr(TokenRightParen); err != nil {
		return nil, err
	}

	body, err := p.blockOrSingle()
	if err != nil {
		return nil, err
	}

	var elseStmt Stmt
	if p.match(TokenElse) {
		if p.check(TokenIf) {
			elseStmt, err = p.ifStmt()
		} else {
			elseStmt, err = p.blockOrSingle()
		}
		if err != nil {
			return nil, err
		}
	}

	return &IfStmt{
		Condition: cond,
		Body:      body,
		Else:      elseStmt,
		Span:      tokenSpan(start),
	}, nil
}

// blockOrSingle parses either a block or a single statement wrapped in
// a block.
func (p *Parser) blockOrSingle() (*BlockStmt, *ParseError) {
	if p.check(TokenLeftBrace) {
		return p.block()
	}
	start := p.peek()
	stmts, err := p.statement()
	if err != nil {
		return nil, err
	}
	return &BlockStmt{Statements: stmts, Span: tokenSpan(start)}, nil
}

// forStmt parses a for statement.
func (p *Parser) forStmt() (*ForStmt, *ParseError) {
	start := p.advance() // consume 'for'

	if err := p.expectErr(TokenLeftParen); err != nil {
		return nil, err
	}

	// Init
	var init Stmt
	if !p.check(TokenSemicolon) {
		stmts, err := p.statement()
		if err != nil {
			return nil, err
		}
		if len(stmts) == 1 {
			init = stmts[0]
		} else if len(stmts) > 1 {
			init = &BlockStmt{Statements: stmts, Span: tokenSpan(start)}
		}
	} else {
		p.advance()
	}

	// Condition
	var cond Expr
	if !p.check(TokenSemicolon) {
		e, err := p.expression()
		if err != nil {
			return nil, err
		}
		cond = e
	}
	p.match(TokenSemicolon)

	// Update
	var update Stmt
	if !p.check(TokenRightParen) {
		s, err := p.simpleStmt()
		if err != nil {
			return nil, err
		}
		update = s
	}

	if err := p.expectErr(TokenRightParen); err != nil {
		return nil, err
	}

	body, err := p.blockOrSingle()
	if err != nil {
		return nil, err
	}

	return &ForStmt{
		Init:      init,
		Condition: cond,
		Update:    update,
		Body:      body,
		Span:      tokenSpan(start),
	}, nil
}

// whileStmt parses a while statement.
func (p *Parser) whileStmt() (*WhileStmt, *ParseError) {
	start := p.advance() // consume 'while'

	if err := p.expectErr(TokenLeftParen); err != nil {
		return nil, err
	}
	cond, err := p.expression()
	if err != nil {
		return nil, err
	}
	if err := p.expectErr(TokenRightParen); err != nil {
		return nil, err
	}

	body, err := p.blockOrSingle()
	if err != nil {
		return nil, err
	}

	return &WhileStmt{
		Condition: cond,
		Body:      body,
		Span:      tokenSpan(start),
	}, nil
}

// doWhileStmt parses a do-while statement.
func (p *Parser) doWhileStmt() (*DoWhileStmt, *ParseError) {
	start := p.advance() // consume 'do'

	body, err := p.block()
	if err != nil {
		return nil, err
	}

	if err := p.expectErr(TokenWhile); err != nil {
		return nil, err
	}
	if err := p.expectErr(TokenLeftParen); err != nil {
		return nil, err
	}
	cond, perr := p.expression()
	if perr != nil {
		return nil, perr
	}
	if err := p.expectErr(TokenRightParen); err != nil {
		return nil, err
	}
	p.match(TokenSemicolon)

	return &DoWhileStmt{
		Body:      body,
		Condition: cond,
		Span:      tokenSpan(start),
	}, nil
}

// switchStmt parses a switch statement.
func (p *Parser) switchStmt() (*SwitchStmt, *ParseError) {
	start := p.advance() // consume 'switch'

	if err := p.expectErr(TokenLeftParen); err != nil {
		return nil, err
	}
	selector, err := p.expression()
	if err != nil {
		return nil, err
	}
	if err := p.expectErr(TokenRightParen); err != nil {
		return nil, err
	}

	if err := p.expectErr(TokenLeftBrace); err != nil {
		return nil, err
	}

	var cases []*SwitchCase
	for !p.check(TokenRightBrace) && !p.isAtEnd() {
		c, err := p.switchCase()
		if err != nil {
			return nil, err
		}
		cases = append(cases, c)
	}

	if err := p.expectErr(TokenRightBrace); err != nil {
		return nil, err
	}

	return &SwitchStmt{
		Selector: selector,
		Cases:    cases,
		Span:     tokenSpan(start),
	}, nil
}

// switchCase parses a case or default clause.
func (p *Parser) switchCase() (*SwitchCase, *ParseError) {
	start := p.peek()
	var selector Expr
	isDefault := false

	if p.match(TokenDefault) {
		isDefault = true
	} else if p.match(TokenCase) {
		e, err := p.expression()
		if err != nil {
			return nil, err
		}
		selector = e
	} else {
		return nil, &ParseError{Message: "expected 'case' or 'default'", Token: start}
	}

	if err := p.expectErr(TokenColon); err != nil {
		return nil, err
	}

	var body []Stmt
	for !p.check(TokenCase) && !p.check(TokenDefault) && !p.check(TokenRightBrace) && !p.isAtEnd() {
		stmts, err := p.statement()
		if err != nil {
			return nil, err
		}
		body = append(body, stmts...)
	}

	return &SwitchCase{
		Selector:  selector,
		IsDefault: isDefault,
		Body:      body,
		Span:      tokenSpan(start),
	}, nil
}

// exprOrAssignStmt parses an expression statement or assignment,
// consuming the trailing semicolon.
func (p *Parser) exprOrAssignStmt() (Stmt, *ParseError) {
	s, err := p.simpleStmt()
	if err != nil {
		return nil, err
	}
	p.match(TokenSemicolon)
	return s, nil
}

// simpleStmt parses an expression or assignment without the trailing
// semicolon (also used for for-loop updates).
func (p *Parser) simpleStmt() (Stmt, *ParseError) {
	start := p.peek()
	expr, err := p.expression()
	if err != nil {
		return nil, err
	}

	if p.isAssignOp(p.peek().Kind) {
		op := p.advance()
		right, err := p.expression()
		if err != nil {
			return nil, err
		}
		return &AssignStmt{
			Left:  expr,
			Op:    op.Kind,
			Right: right,
			Span:  tokenSpan(start),
		}, nil
	}

	return &ExprStmt{
		Expr: expr,
		Span: tokenSpan(start),
	}, nil
}

// expression parses an expression.
func (p *Parser) expression() (Expr, *ParseError) {
	return p.ternary()
}

// ternary parses conditional expressions.
func (p *Parser) ternary() (Expr, *ParseError) {
	cond, err := p.logicalOr()
	if err != nil {
		return nil, err
	}

	if p.match(TokenQuestion) {
		trueExpr, err := p.expression()
		if err != nil {
			return nil, err
		}
		if err := p.expectErr(TokenColon); err != nil {
			return nil, err
		}
		falseExpr, err := p.ternary()
		if err != nil {
			return nil, err
		}
		return &TernaryExpr{
			Condition: cond,
			True:      trueExpr,
			False:     falseExpr,
		}, nil
	}

	return cond, nil
}

// logicalOr parses || expressions.
func (p *Parser) logicalOr() (Expr, *ParseError) {
	return p.binary(p.logicalXor, TokenPipePipe)
}

// logicalXor parses ^^ expressions.
func (p *Parser) logicalXor() (Expr, *ParseError) {
	return p.binary(p.logicalAnd, TokenCaretCaret)
}

// logicalAnd parses && expressions.
func (p *Parser) logicalAnd() (Expr, *ParseError) {
	return p.binary(p.bitwiseOr, TokenAmpAmp)
}

// bitwiseOr parses | expressions.
func (p *Parser) bitwiseOr() (Expr, *ParseError) {
	return p.binary(p.bitwiseXor, TokenPipe)
}

// bitwiseXor parses ^ expressions.
func (p *Parser) bitwiseXor() (Expr, *ParseError) {
	return p.binary(p.bitwiseAnd, TokenCaret)
}

// bitwiseAnd parses & expressions.
func (p *Parser) bitwiseAnd() (Expr, *ParseError) {
	return p.binary(p.equality, TokenAmpersand)
}

// equality parses == and != expressions.
func (p *Parser) equality() (Expr, *ParseError) {
	return p.binary(p.comparison, TokenEqualEqual, TokenBangEqual)
}

// comparison parses <, >, <=, >= expressions.
func (p *Parser) comparison() (Expr, *ParseError) {
	return p.binary(p.shift, TokenLess, TokenGreater, TokenLessEqual, TokenGreaterEqual)
}

// shift parses << and >> expressions.
func (p *Parser) shift() (Expr, *ParseError) {
	return p.binary(p.additive, TokenLessLess, TokenGreaterGreater)
}

// additive parses + and - expressions.
func (p *Parser) additive() (Expr, *ParseError) {
	return p.binary(p.multiplicative, TokenPlus, TokenMinus)
}

// multiplicative parses *, /, % expressions.
func (p *Parser) multiplicative() (Expr, *ParseError) {
	return p.binary(p.unary, TokenStar, TokenSlash, TokenPercent)
}

// binary parses a left-associative binary expression level.
func (p *Parser) binary(next func() (Expr, *ParseError), ops ...TokenKind) (Expr, *ParseError) {
	left, err := next()
	if err != nil {
		return nil, err
	}

	for p.checkAny(ops...) {
		op := p.advance()
		right, err := next()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{
			Left:  left,
			Op:    op.Kind,
			Right: right,
		}
	}

	return left, nil
}

// unary parses prefix unary expressions.
func (p *Parser) unary() (Expr, *ParseError) {
	if p.check(TokenMinus) || p.check(TokenPlus) || p.check(TokenBang) || p.check(TokenTilde) ||
		p.check(TokenPlusPlus) || p.check(TokenMinusMinus) {
		op := p.advance()
		operand, err := p.unary()
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{
			Op:      op.Kind,
			Operand: operand,
			Span:    tokenSpan(op),
		}, nil
	}

	return p.postfix()
}

// postfix parses postfix expressions (calls, indexing, member access,
// increment/decrement).
func (p *Parser) postfix() (Expr, *ParseError) {
	expr, err := p.primary()
	if err != nil {
		return nil, err
	}

	for {
		if p.check(TokenLeftParen) {
			ident, ok := expr.(*Ident)
			if !ok {
				return nil, &ParseError{Message: "expected function name before call", Token: p.peek()}
			}
			p.advance()

			args := make([]Expr, 0, 4)
			for !p.check(TokenRightParen) && !p.isAtEnd() {
				arg, err := p.expression()
				if err != nil {
					return nil, err
				}
				args = append(args, arg)
				if !p.match(TokenComma) {
					break
				}
			}
			if err := p.expectErr(TokenRightParen); err != nil {
				return nil, err
			}

			expr = &CallExpr{
				Callee: ident.Name,
				Args:   args,
				Span:   ident.Span,
			}
		} else if p.match(TokenLeftBracket) {
			index, err := p.expression()
			if err != nil {
				return nil, err
			}
			if err := p.expectErr(TokenRightBracket); err != nil {
				return nil, err
			}
			expr = &IndexExpr{
				Expr:  expr,
				Index: index,
			}
		} else if p.match(TokenDot) {
			if !p.check(TokenIdent) {
				return nil, &ParseError{Message: "expected member name", Token: p.peek()}
			}
			member := p.advance()
			expr = &MemberExpr{
				Expr:   expr,
				Member: member.Lexeme,
			}
		} else if p.check(TokenPlusPlus) || p.check(TokenMinusMinus) {
			op := p.advance()
			expr = &PostfixExpr{
				Operand: expr,
				Op:      op.Kind,
			}
		} else {
			break
		}
	}

	return expr, nil
}

// primary parses primary expressions.
func (p *Parser) primary() (Expr, *ParseError) {
	tok := p.peek()

	switch tok.Kind {
	case TokenIntLiteral, TokenFloatLiteral:
		p.advance()
		return &Literal{
			Kind:  tok.Kind,
			Value: tok.Lexeme,
			Span:  tokenSpan(tok),
		}, nil

	case TokenTrue, TokenFalse:
		p.advance()
		return &Literal{
			Kind:  TokenBoolLiteral,
			Value: tok.Lexeme,
			Span:  tokenSpan(tok),
		}, nil

	case TokenIdent:
		p.advance()
		return &Ident{
			Name: tok.Lexeme,
			Span: tokenSpan(tok),
		}, nil

	case TokenLeftParen:
		p.advance()
		expr, err := p.expression()
		if err != nil {
			return nil, err
		}
		if err := p.expectErr(TokenRightParen); err != nil {
			return nil, err
		}
		return &ParenExpr{
			Expr: expr,
			Span: tokenSpan(tok),
		}, nil

	default:
		return nil, &ParseError{
			Message: fmt.Sprintf("unexpected token %s in expression", tok.Kind),
			Token:   tok,
		}
	}
}

// Helper methods

func (p *Parser) advance() Token {
	if !p.isAtEnd() {
		p.current++
	}
	return p.previous()
}

func (p *Parser) peek() Token {
	return p.tokens[p.current]
}

func (p *Parser) peekNext() Token {
	if p.current+1 >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.current+1]
}

func (p *Parser) previous() Token {
	return p.tokens[p.current-1]
}

func (p *Parser) isAtEnd() bool {
	return p.peek().Kind == TokenEOF
}

func (p *Parser) check(kind TokenKind) bool {
	if p.isAtEnd() {
		return false
	}
	return p.peek().Kind == kind
}

func (p *Parser) checkAny(kinds ...TokenKind) bool {
	for _, k := range kinds {
		if p.check(k) {
			return true
		}
	}
	return false
}

func (p *Parser) match(kind TokenKind) bool {
	if p.check(kind) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) expectErr(kind TokenKind) *ParseError {
	if p.check(kind) {
		p.advance()
		return nil
	}
	return &ParseError{
		Message: fmt.Sprintf("expected %s, got %s", kind, p.peek().Kind),
		Token:   p.peek(),
	}
}

func (p *Parser) isPrecisionQualifier(kind TokenKind) bool {
	switch kind {
	case TokenHighp, TokenMediump, TokenLowp:
		return true
	}
	return false
}

func (p *Parser) isAssignOp(kind TokenKind) bool {
	switch kind {
	case TokenEqual, TokenPlusEqual, TokenMinusEqual, TokenStarEqual,
		TokenSlashEqual, TokenPercentEqual, TokenAmpEqual, TokenPipeEqual,
		TokenCaretEqual, TokenLessLessEqual, TokenGreaterGreaterEqual:
		return true
	}
	return false
}

func tokenSpan(tok Token) Span {
	return Span{
		Start: Position{Line: tok.Line, Column: tok.Column},
	}
}
