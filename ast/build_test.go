package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tinycc/tcc/lexer"
	"github.com/tinycc/tcc/parsetree"
)

func build(t *testing.T, src string) *Program {
	t.Helper()
	tree, err := parsetree.New(lexer.Scan(src)).Parse()
	require.NoError(t, err)
	prog, err := Build(tree)
	require.NoError(t, err)
	return prog
}

func TestBuildTrivialProgram(t *testing.T) {
	prog := build(t, "int main() { return 0; }")
	require.Len(t, prog.Funcs, 1)

	fn := prog.Funcs[0]
	assert.Equal(t, "main", fn.Name)
	assert.Empty(t, fn.Params)
	require.Len(t, fn.Body.Stmts, 1)

	ret, ok := fn.Body.Stmts[0].(*Return)
	require.True(t, ok)
	lit, ok := ret.Value.(*Literal)
	require.True(t, ok)
	assert.Equal(t, 0, lit.Value)
}

func TestBuildParamsAndDecl(t *testing.T) {
	prog := build(t, "int add(int a, int b) { int c = a + b; return c; }")
	fn := prog.Funcs[0]
	require.Len(t, fn.Params, 2)
	assert.Equal(t, "a", fn.Params[0].Name)
	assert.Equal(t, "b", fn.Params[1].Name)

	decl, ok := fn.Body.Stmts[0].(*Decl)
	require.True(t, ok)
	assert.Equal(t, "c", decl.Name)
	require.NotNil(t, decl.Init)

	sum, ok := decl.Init.(*BinaryExp)
	require.True(t, ok)
	assert.Equal(t, "add", sum.Op)
}

func TestBuildRightLeaningChain(t *testing.T) {
	prog := build(t, "int main() { return a - b - c; }")
	ret := prog.Funcs[0].Body.Stmts[0].(*Return)

	top, ok := ret.Value.(*BinaryExp)
	require.True(t, ok)
	assert.Equal(t, "sub", top.Op)
	assert.Equal(t, "a", top.Left.(*VarRef).Name)

	nested, ok := top.Right.(*BinaryExp)
	require.True(t, ok, "right side of a - b - c must itself be a BinaryExp (b - c)")
	assert.Equal(t, "sub", nested.Op)
	assert.Equal(t, "b", nested.Left.(*VarRef).Name)
	assert.Equal(t, "c", nested.Right.(*VarRef).Name)
}

func TestBuildIfWithoutElse(t *testing.T) {
	prog := build(t, "int main() { if (x != 0) { return 1; } return 0; }")
	fn := prog.Funcs[0]
	require.Len(t, fn.Body.Stmts, 2)

	ifStmt, ok := fn.Body.Stmts[0].(*If)
	require.True(t, ok)
	assert.Equal(t, "not_equal", ifStmt.Cond.Op)
	assert.Nil(t, ifStmt.Else)
}

func TestBuildIfWithElse(t *testing.T) {
	prog := build(t, "int main() { if (x) { return 1; } else { return 2; } }")
	ifStmt := prog.Funcs[0].Body.Stmts[0].(*If)
	assert.Equal(t, "", ifStmt.Cond.Op)
	assert.Nil(t, ifStmt.Cond.Right)
	require.NotNil(t, ifStmt.Else)
}

func TestBuildFuncCallAsStatementAndExpression(t *testing.T) {
	prog := build(t, "int main() { print(1); return f(2, 3); }")
	fn := prog.Funcs[0]

	callStmt, ok := fn.Body.Stmts[0].(*FuncCall)
	require.True(t, ok)
	assert.Equal(t, "print", callStmt.Name)
	require.Len(t, callStmt.Args, 1)

	ret := fn.Body.Stmts[1].(*Return)
	callExpr, ok := ret.Value.(*FuncCall)
	require.True(t, ok)
	assert.Equal(t, "f", callExpr.Name)
	require.Len(t, callExpr.Args, 2)
}

func TestBuildParenthesizedExpression(t *testing.T) {
	prog := build(t, "int main() { return (a + 1) * 2; }")
	ret := prog.Funcs[0].Body.Stmts[0].(*Return)
	mul, ok := ret.Value.(*BinaryExp)
	require.True(t, ok)
	assert.Equal(t, "mul", mul.Op)

	sum, ok := mul.Left.(*BinaryExp)
	require.True(t, ok, "parenthesized (a + 1) must still be a BinaryExp, not flattened away")
	assert.Equal(t, "add", sum.Op)
}

func TestDebugPrintVisitorDoesNotPanic(t *testing.T) {
	prog := build(t, "int add(int a, int b) { int c = a + b; if (c > 0) { return c; } return 0; }")
	v := &DebugPrintVisitor{}
	prog.Accept(v)
	assert.Contains(t, v.String(), "Func add")
}
