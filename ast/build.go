package ast

import (
	"strconv"

	"github.com/tinycc/tcc/parsetree"
	"github.com/tinycc/tcc/tcerr"
)

// Build folds a parse tree into the compact AST. The parse tree
// carries the grammar's epsilon productions as empty-child nodes
// (parseExp2, parseExp3); Build is where those get collapsed away and
// the right-leaning Exp2/Exp3 chains become nested BinaryExp trees.
func Build(tree *parsetree.Node) (*Program, error) {
	if tree.Sym != "program" {
		return nil, tcerr.New(tcerr.Syntax, "expected a program node, got %s", tree.Sym)
	}
	prog := &Program{}
	for _, child := range tree.Succs {
		fn, err := buildFunc(child)
		if err != nil {
			return nil, err
		}
		prog.Funcs = append(prog.Funcs, fn)
	}
	return prog, nil
}

func buildFunc(node *parsetree.Node) (*Func, error) {
	if len(node.Succs) == 0 {
		return nil, tcerr.New(tcerr.Syntax, "function %s has no body", node.Name)
	}
	params := make([]*Param, 0, len(node.Succs)-1)
	for _, p := range node.Succs[:len(node.Succs)-1] {
		params = append(params, &Param{Name: p.Name})
	}
	block, err := buildBlock(node.Succs[len(node.Succs)-1])
	if err != nil {
		return nil, err
	}
	return &Func{Name: node.Name, Params: params, Body: block}, nil
}

func buildBlock(node *parsetree.Node) (*Block, error) {
	block := &Block{}
	for _, s := range node.Succs {
		stmt, err := buildStmt(s)
		if err != nil {
			return nil, err
		}
		block.Stmts = append(block.Stmts, stmt)
	}
	return block, nil
}

func buildStmt(node *parsetree.Node) (Stmt, error) {
	switch node.Sym {
	case "decl":
		return buildDecl(node)
	case "block":
		return buildBlock(node)
	case "assignment":
		return buildAssignment(node)
	case "func_call":
		return buildFuncCall(node)
	case "if":
		return buildIf(node)
	case "return":
		return buildReturn(node)
	default:
		return nil, tcerr.New(tcerr.Syntax, "unrecognized statement node %s", node.Sym)
	}
}

func buildDecl(node *parsetree.Node) (*Decl, error) {
	decl := &Decl{Name: node.Name}
	if len(node.Succs) == 1 {
		init, err := buildExp(node.Succs[0])
		if err != nil {
			return nil, err
		}
		decl.Init = init
	}
	return decl, nil
}

func buildAssignment(node *parsetree.Node) (*Assignment, error) {
	if len(node.Succs) != 1 {
		return nil, tcerr.New(tcerr.Syntax, "assignment to %s has no value", node.Name)
	}
	value, err := buildExp(node.Succs[0])
	if err != nil {
		return nil, err
	}
	return &Assignment{Name: node.Name, Value: value}, nil
}

func buildFuncCall(node *parsetree.Node) (*FuncCall, error) {
	call := &FuncCall{Name: node.Name}
	for _, a := range node.Succs {
		arg, err := buildExp(a)
		if err != nil {
			return nil, err
		}
		call.Args = append(call.Args, arg)
	}
	return call, nil
}

func buildIf(node *parsetree.Node) (*If, error) {
	if len(node.Succs) < 2 {
		return nil, tcerr.New(tcerr.Syntax, "malformed if statement")
	}
	cond, err := buildCondition(node.Succs[0])
	if err != nil {
		return nil, err
	}
	then, err := buildStmt(node.Succs[1])
	if err != nil {
		return nil, err
	}
	ifStmt := &If{Cond: cond, Then: then}
	if len(node.Succs) == 3 {
		elseStmt, err := buildStmt(node.Succs[2])
		if err != nil {
			return nil, err
		}
		ifStmt.Else = elseStmt
	}
	return ifStmt, nil
}

func buildCondition(node *parsetree.Node) (*Condition, error) {
	if len(node.Succs) == 0 {
		return nil, tcerr.New(tcerr.Syntax, "condition has no operand")
	}
	left, err := buildExp(node.Succs[0])
	if err != nil {
		return nil, err
	}
	if node.Name == "" {
		return &Condition{Left: left}, nil
	}
	if len(node.Succs) != 2 {
		return nil, tcerr.New(tcerr.Syntax, "comparison %s is missing its right operand", node.Name)
	}
	right, err := buildExp(node.Succs[1])
	if err != nil {
		return nil, err
	}
	return &Condition{Op: node.Name, Left: left, Right: right}, nil
}

func buildReturn(node *parsetree.Node) (*Return, error) {
	if len(node.Succs) != 1 {
		return nil, tcerr.New(tcerr.Syntax, "return has no value")
	}
	value, err := buildExp(node.Succs[0])
	if err != nil {
		return nil, err
	}
	return &Return{Value: value}, nil
}

// buildExp folds an "exp" parse-tree node (Term Exp2) into an Expr,
// threading the Exp2 tail through buildExp2 to build the right-leaning
// chain.
func buildExp(node *parsetree.Node) (Expr, error) {
	if len(node.Succs) != 2 {
		return nil, tcerr.New(tcerr.Syntax, "malformed expression node")
	}
	left, err := buildTerm(node.Succs[0])
	if err != nil {
		return nil, err
	}
	return buildExp2(left, node.Succs[1])
}

// buildExp2 folds an Exp2 tail ("+"|"-" Term Exp2 | ε). An empty tail
// (no children — the epsilon production) just returns left unchanged;
// otherwise the fold recurses into the nested tail first so that
// "a - b - c" becomes a - (b - c), matching the grammar's right
// recursion rather than the usual left-to-right evaluation order.
func buildExp2(left Expr, tail *parsetree.Node) (Expr, error) {
	if len(tail.Succs) == 0 {
		return left, nil
	}
	term, err := buildTerm(tail.Succs[0])
	if err != nil {
		return nil, err
	}
	rest, err := buildExp2(term, tail.Succs[1])
	if err != nil {
		return nil, err
	}
	return &BinaryExp{Op: tail.Name, Left: left, Right: rest}, nil
}

func buildTerm(node *parsetree.Node) (Expr, error) {
	if len(node.Succs) != 2 {
		return nil, tcerr.New(tcerr.Syntax, "malformed term node")
	}
	left, err := buildFactor(node.Succs[0])
	if err != nil {
		return nil, err
	}
	return buildExp3(left, node.Succs[1])
}

// buildExp3 is buildExp2's counterpart for "*"|"/" chains.
func buildExp3(left Expr, tail *parsetree.Node) (Expr, error) {
	if len(tail.Succs) == 0 {
		return left, nil
	}
	factor, err := buildFactor(tail.Succs[0])
	if err != nil {
		return nil, err
	}
	rest, err := buildExp3(factor, tail.Succs[1])
	if err != nil {
		return nil, err
	}
	return &BinaryExp{Op: tail.Name, Left: left, Right: rest}, nil
}

func buildFactor(node *parsetree.Node) (Expr, error) {
	switch {
	case node.Val != "":
		n, err := strconv.Atoi(node.Val)
		if err != nil {
			return nil, tcerr.New(tcerr.Lexical, "invalid integer literal %q", node.Val)
		}
		return &Literal{Value: n}, nil
	case node.Name != "":
		return &VarRef{Name: node.Name}, nil
	case len(node.Succs) == 1:
		child := node.Succs[0]
		if child.Sym == "func_call" {
			return buildFuncCall(child)
		}
		return buildExp(child)
	default:
		return nil, tcerr.New(tcerr.Syntax, "malformed factor node")
	}
}
