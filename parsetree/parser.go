package parsetree

import (
	"github.com/tinycc/tcc/lexer"
	"github.com/tinycc/tcc/tcerr"
)

// Parser walks a fixed token slice with a single monotonically
// advancing cursor — there is no backtracking anywhere in this
// grammar, so one index suffices.
type Parser struct {
	tokens []lexer.Token
	pos    int
}

// New returns a Parser positioned at the first token of tokens, which
// must end with a lexer.KindEOF sentinel (lexer.Scan always produces
// one).
func New(tokens []lexer.Token) *Parser {
	return &Parser{tokens: tokens}
}

func (p *Parser) cur() lexer.Token { return p.tokens[p.pos] }

func (p *Parser) advance() lexer.Token {
	t := p.tokens[p.pos]
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return t
}

func (p *Parser) errorf(format string, args ...any) error {
	return tcerr.New(tcerr.Syntax, format, args...)
}

func (p *Parser) unexpected() error {
	t := p.cur()
	return p.errorf("unexpected token %s %q", t.Kind, t.Lexeme)
}

func (p *Parser) expect(kind lexer.Kind) (lexer.Token, error) {
	if p.cur().Kind != kind {
		return lexer.Token{}, p.errorf("expected %s, got %s %q", kind, p.cur().Kind, p.cur().Lexeme)
	}
	return p.advance(), nil
}

// Parse runs the whole Program production and returns its parse tree,
// failing unless the input is consumed exactly up to KindEOF.
func (p *Parser) Parse() (*Node, error) {
	prog, err := p.parseProgram()
	if err != nil {
		return nil, err
	}
	if p.cur().Kind != lexer.KindEOF {
		return nil, p.unexpected()
	}
	return prog, nil
}

// Program → Def Program | ε
func (p *Parser) parseProgram() (*Node, error) {
	prog := newNode("program")
	for p.cur().Kind == lexer.KindInt {
		def, err := p.parseDef()
		if err != nil {
			return nil, err
		}
		prog.addSucc(def)
	}
	if p.cur().Kind != lexer.KindEOF {
		return nil, p.unexpected()
	}
	return prog, nil
}

// Def → "int" id "(" Params ")" Block
func (p *Parser) parseDef() (*Node, error) {
	if _, err := p.expect(lexer.KindInt); err != nil {
		return nil, err
	}
	name, err := p.expect(lexer.KindID)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.KindLeftParen); err != nil {
		return nil, err
	}
	params, err := p.parseParams()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.KindRightParen); err != nil {
		return nil, err
	}
	block, err := p.parseBlock()
	if err != nil {
		return nil, err
	}

	def := newNode("func")
	def.Name = name.Lexeme
	for _, param := range params {
		def.addSucc(param)
	}
	def.addSucc(block)
	return def, nil
}

// Params → "int" id ParamsTail | ε
func (p *Parser) parseParams() ([]*Node, error) {
	if p.cur().Kind != lexer.KindInt {
		return nil, nil
	}
	p.advance()
	name, err := p.expect(lexer.KindID)
	if err != nil {
		return nil, err
	}
	param := newNode("param")
	param.Name = name.Lexeme
	rest, err := p.parseParamsTail()
	if err != nil {
		return nil, err
	}
	return append([]*Node{param}, rest...), nil
}

// ParamsTail → "," "int" id ParamsTail | ε
func (p *Parser) parseParamsTail() ([]*Node, error) {
	if p.cur().Kind != lexer.KindComma {
		return nil, nil
	}
	p.advance()
	if _, err := p.expect(lexer.KindInt); err != nil {
		return nil, err
	}
	name, err := p.expect(lexer.KindID)
	if err != nil {
		return nil, err
	}
	param := newNode("param")
	param.Name = name.Lexeme
	rest, err := p.parseParamsTail()
	if err != nil {
		return nil, err
	}
	return append([]*Node{param}, rest...), nil
}

// Block → "{" Stmts "}"
func (p *Parser) parseBlock() (*Node, error) {
	if _, err := p.expect(lexer.KindLeftBracket); err != nil {
		return nil, err
	}
	block := newNode("block")
	for isStmtStart(p.cur().Kind) {
		stmt, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		block.addSucc(stmt)
	}
	if _, err := p.expect(lexer.KindRightBracket); err != nil {
		return nil, err
	}
	return block, nil
}

func isStmtStart(k lexer.Kind) bool {
	switch k {
	case lexer.KindInt, lexer.KindID, lexer.KindLeftBracket, lexer.KindIf, lexer.KindReturn:
		return true
	}
	return false
}

// Stmt → Decl | Block | Assign | Call ";" | If | Return
func (p *Parser) parseStmt() (*Node, error) {
	switch p.cur().Kind {
	case lexer.KindInt:
		return p.parseDecl()
	case lexer.KindLeftBracket:
		return p.parseBlock()
	case lexer.KindIf:
		return p.parseIf()
	case lexer.KindReturn:
		return p.parseReturn()
	case lexer.KindID:
		name := p.advance().Lexeme
		switch p.cur().Kind {
		case lexer.KindEquals:
			return p.parseAssign(name)
		case lexer.KindLeftParen:
			return p.parseCallStmt(name)
		default:
			return nil, p.unexpected()
		}
	default:
		return nil, p.unexpected()
	}
}

// Decl → "int" id ("=" Exp)? ";"
func (p *Parser) parseDecl() (*Node, error) {
	if _, err := p.expect(lexer.KindInt); err != nil {
		return nil, err
	}
	name, err := p.expect(lexer.KindID)
	if err != nil {
		return nil, err
	}
	decl := newNode("decl")
	decl.Name = name.Lexeme
	if p.cur().Kind == lexer.KindEquals {
		p.advance()
		exp, err := p.parseExp()
		if err != nil {
			return nil, err
		}
		decl.addSucc(exp)
	}
	if _, err := p.expect(lexer.KindSeparator); err != nil {
		return nil, err
	}
	return decl, nil
}

// Assign → id "=" Exp ";"   (id already consumed by parseStmt)
func (p *Parser) parseAssign(name string) (*Node, error) {
	if _, err := p.expect(lexer.KindEquals); err != nil {
		return nil, err
	}
	exp, err := p.parseExp()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.KindSeparator); err != nil {
		return nil, err
	}
	assign := newNode("assignment")
	assign.Name = name
	assign.addSucc(exp)
	return assign, nil
}

// Call ";" → id "(" Args ")" ";"   (id already consumed by parseStmt)
func (p *Parser) parseCallStmt(name string) (*Node, error) {
	args, err := p.parseCallArgs()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.KindSeparator); err != nil {
		return nil, err
	}
	call := newNode("func_call")
	call.Name = name
	for _, a := range args {
		call.addSucc(a)
	}
	return call, nil
}

// parseCallArgs consumes "(" Args ")", used both by a call statement
// and by a call appearing as a Factor inside an expression.
func (p *Parser) parseCallArgs() ([]*Node, error) {
	if _, err := p.expect(lexer.KindLeftParen); err != nil {
		return nil, err
	}
	args, err := p.parseArgs()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.KindRightParen); err != nil {
		return nil, err
	}
	return args, nil
}

// Args → Exp ArgsTail | ε
func (p *Parser) parseArgs() ([]*Node, error) {
	if !isExpStart(p.cur().Kind) {
		return nil, nil
	}
	first, err := p.parseExp()
	if err != nil {
		return nil, err
	}
	rest, err := p.parseArgsTail()
	if err != nil {
		return nil, err
	}
	return append([]*Node{first}, rest...), nil
}

// ArgsTail → "," Exp ArgsTail | ε
func (p *Parser) parseArgsTail() ([]*Node, error) {
	if p.cur().Kind != lexer.KindComma {
		return nil, nil
	}
	p.advance()
	exp, err := p.parseExp()
	if err != nil {
		return nil, err
	}
	rest, err := p.parseArgsTail()
	if err != nil {
		return nil, err
	}
	return append([]*Node{exp}, rest...), nil
}

func isExpStart(k lexer.Kind) bool {
	return k == lexer.KindLiteral || k == lexer.KindID || k == lexer.KindLeftParen
}

// If → "if" "(" Cond ")" Stmt ("else" Stmt)?
func (p *Parser) parseIf() (*Node, error) {
	if _, err := p.expect(lexer.KindIf); err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.KindLeftParen); err != nil {
		return nil, err
	}
	cond, err := p.parseCond()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.KindRightParen); err != nil {
		return nil, err
	}
	then, err := p.parseStmt()
	if err != nil {
		return nil, err
	}

	ifNode := newNode("if")
	ifNode.addSucc(cond)
	ifNode.addSucc(then)
	if p.cur().Kind == lexer.KindElse {
		p.advance()
		elseStmt, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		ifNode.addSucc(elseStmt)
	}
	return ifNode, nil
}

// Cond → Exp OptCmp
func (p *Parser) parseCond() (*Node, error) {
	op1, err := p.parseExp()
	if err != nil {
		return nil, err
	}
	cond := newNode("condition")
	cond.addSucc(op1)
	return p.parseOptCmp(cond)
}

// OptCmp → ("<" "="? | ">" "="? | "=" "=" | "!" "=") Exp | ε
//
// The relational operator is recognized from up to two lookahead
// tokens: "=" at the top of OptCmp is only legal as the first half of
// "==", and "!" is only legal followed by "=".
func (p *Parser) parseOptCmp(cond *Node) (*Node, error) {
	switch p.cur().Kind {
	case lexer.KindLessThan:
		p.advance()
		op := "less_than"
		if p.cur().Kind == lexer.KindEquals {
			p.advance()
			op = "less_than_equal"
		}
		return p.finishCmp(cond, op)
	case lexer.KindGreaterThan:
		p.advance()
		op := "greater_than"
		if p.cur().Kind == lexer.KindEquals {
			p.advance()
			op = "greater_than_equal"
		}
		return p.finishCmp(cond, op)
	case lexer.KindEquals:
		p.advance()
		if _, err := p.expect(lexer.KindEquals); err != nil {
			return nil, err
		}
		return p.finishCmp(cond, "equal")
	case lexer.KindNot:
		p.advance()
		if _, err := p.expect(lexer.KindEquals); err != nil {
			return nil, err
		}
		return p.finishCmp(cond, "not_equal")
	default:
		return cond, nil
	}
}

func (p *Parser) finishCmp(cond *Node, op string) (*Node, error) {
	op2, err := p.parseExp()
	if err != nil {
		return nil, err
	}
	cond.Name = op
	cond.addSucc(op2)
	return cond, nil
}

// Return → "return" Exp ";"
func (p *Parser) parseReturn() (*Node, error) {
	if _, err := p.expect(lexer.KindReturn); err != nil {
		return nil, err
	}
	exp, err := p.parseExp()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.KindSeparator); err != nil {
		return nil, err
	}
	ret := newNode("return")
	ret.addSucc(exp)
	return ret, nil
}

// Exp → Term Exp2
func (p *Parser) parseExp() (*Node, error) {
	term, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	exp2, err := p.parseExp2()
	if err != nil {
		return nil, err
	}
	exp := newNode("exp")
	exp.addSucc(term)
	exp.addSucc(exp2)
	return exp, nil
}

// Exp2 → ("+"|"-") Term Exp2 | ε
//
// The recursion here produces a right-leaning tree: "a - b - c"
// parses as if written "a - (b - c)". This is a faithful
// reproduction of the grammar, not an oversight — see ast.Build.
func (p *Parser) parseExp2() (*Node, error) {
	exp2 := newNode("exp2")
	switch p.cur().Kind {
	case lexer.KindAdd, lexer.KindSub:
		op := string(p.advance().Kind)
		term, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		tail, err := p.parseExp2()
		if err != nil {
			return nil, err
		}
		exp2.Name = op
		exp2.addSucc(term)
		exp2.addSucc(tail)
	}
	return exp2, nil
}

// Term → Factor Exp3
func (p *Parser) parseTerm() (*Node, error) {
	factor, err := p.parseFactor()
	if err != nil {
		return nil, err
	}
	exp3, err := p.parseExp3()
	if err != nil {
		return nil, err
	}
	term := newNode("term")
	term.addSucc(factor)
	term.addSucc(exp3)
	return term, nil
}

// Exp3 → ("*"|"/") Factor Exp3 | ε
func (p *Parser) parseExp3() (*Node, error) {
	exp3 := newNode("exp3")
	switch p.cur().Kind {
	case lexer.KindMul, lexer.KindDiv:
		op := string(p.advance().Kind)
		factor, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		tail, err := p.parseExp3()
		if err != nil {
			return nil, err
		}
		exp3.Name = op
		exp3.addSucc(factor)
		exp3.addSucc(tail)
	}
	return exp3, nil
}

// Factor → literal | id ("(" Args ")")? | "(" Exp ")"
func (p *Parser) parseFactor() (*Node, error) {
	factor := newNode("factor")
	switch p.cur().Kind {
	case lexer.KindLiteral:
		factor.Val = p.advance().Lexeme
	case lexer.KindID:
		name := p.advance().Lexeme
		if p.cur().Kind == lexer.KindLeftParen {
			args, err := p.parseCallArgs()
			if err != nil {
				return nil, err
			}
			call := newNode("func_call")
			call.Name = name
			for _, a := range args {
				call.addSucc(a)
			}
			factor.addSucc(call)
		} else {
			factor.Name = name
		}
	case lexer.KindLeftParen:
		p.advance()
		exp, err := p.parseExp()
		if err != nil {
			return nil, err
		}
		factor.addSucc(exp)
		if _, err := p.expect(lexer.KindRightParen); err != nil {
			return nil, err
		}
	default:
		return nil, p.unexpected()
	}
	return factor, nil
}
