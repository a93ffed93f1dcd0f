package ir

import "github.com/tinycc/tcc/ast"

// Translator walks an *ast.Program and emits three-address code.
// Temporaries and labels are numbered from fresh, per-Translator
// counters — two compilations never share a Translator, so there is
// no reset method.
type Translator struct {
	nextTemp  int
	nextLabel int
}

func (t *Translator) newTemp() Operand {
	o := Temp(t.nextTemp)
	t.nextTemp++
	return o
}

func (t *Translator) newLabel() Operand {
	o := Label(t.nextLabel)
	t.nextLabel++
	return o
}

var condBranchOp = map[string]Op{
	"less_than":          OpBL,
	"less_than_equal":    OpBLE,
	"greater_than":       OpBG,
	"greater_than_equal": OpBGE,
	"equal":              OpBEQ,
	"not_equal":          OpBNE,
}

var binaryOp = map[string]Op{
	"add": OpAdd,
	"sub": OpSub,
	"mul": OpMul,
	"div": OpDiv,
}

// Translate lowers every function in prog into a single flat
// instruction stream, in source order.
func (t *Translator) Translate(prog *ast.Program) []Instr {
	var out []Instr
	for _, fn := range prog.Funcs {
		out = append(out, t.translateFunc(fn)...)
	}
	return out
}

func (t *Translator) translateFunc(fn *ast.Func) []Instr {
	name := Func(fn.Name, nil)
	nbrLocals := Literal(fn.NbrLocals)
	instrs := []Instr{{Op: OpBegin, Src1: &name, Dest: &nbrLocals}}
	instrs = append(instrs, t.translateStmts(fn.Body.Stmts)...)
	instrs = append(instrs, Instr{Op: OpEnd, Src1: &name})
	return instrs
}

func (t *Translator) translateStmts(stmts []ast.Stmt) []Instr {
	var out []Instr
	for _, s := range stmts {
		out = append(out, t.translateStmt(s)...)
	}
	return out
}

func (t *Translator) translateStmt(s ast.Stmt) []Instr {
	switch n := s.(type) {
	case *ast.Decl:
		if n.Init == nil {
			return nil
		}
		instrs, val := t.translateExp(n.Init)
		dest := Variable(n.Slot)
		return append(instrs, Instr{Op: OpMov, Src1: &val, Dest: &dest})
	case *ast.Block:
		return t.translateStmts(n.Stmts)
	case *ast.Assignment:
		instrs, val := t.translateExp(n.Value)
		dest := Variable(n.Slot)
		return append(instrs, Instr{Op: OpMov, Src1: &val, Dest: &dest})
	case *ast.FuncCall:
		instrs, _ := t.translateCall(n)
		return instrs
	case *ast.If:
		return t.translateIf(n)
	case *ast.Return:
		instrs, val := t.translateExp(n.Value)
		return append(instrs, Instr{Op: OpRet, Src1: &val})
	default:
		return nil
	}
}

// translateIf reproduces the reference compiler's emission order
// exactly, including the redundant unconditional branch to the end
// label in the no-else case — the then-body already falls through to
// end_if, so that second "b end_if" never changes control flow. It
// stays because removing it would no longer match what this compiler
// has always emitted.
func (t *Translator) translateIf(ifStmt *ast.If) []Instr {
	instrs, lop, rop, branchOp := t.translateCondition(ifStmt.Cond)
	begin := t.newLabel()
	end := t.newLabel()

	instrs = append(instrs, Instr{Op: branchOp, Src1: &lop, Src2: &rop, Dest: &begin})

	if ifStmt.Else == nil {
		instrs = append(instrs, Instr{Op: OpB, Dest: &end})
		instrs = append(instrs, Instr{Op: OpLabel, Dest: &begin})
		instrs = append(instrs, t.translateStmt(ifStmt.Then)...)
		instrs = append(instrs, Instr{Op: OpB, Dest: &end})
		instrs = append(instrs, Instr{Op: OpLabel, Dest: &end})
		return instrs
	}

	elseLabel := t.newLabel()
	instrs = append(instrs, Instr{Op: OpB, Dest: &elseLabel})
	instrs = append(instrs, Instr{Op: OpLabel, Dest: &begin})
	instrs = append(instrs, t.translateStmt(ifStmt.Then)...)
	instrs = append(instrs, Instr{Op: OpB, Dest: &end})
	instrs = append(instrs, Instr{Op: OpLabel, Dest: &elseLabel})
	instrs = append(instrs, t.translateStmt(ifStmt.Else)...)
	instrs = append(instrs, Instr{Op: OpLabel, Dest: &end})
	return instrs
}

// translateCondition evaluates both operands of a Condition and
// picks the branch opcode that jumps when the condition holds. A bare
// condition (no comparison operator) means "op1 is non-zero",
// implemented as op1 > 0, lowered as a greater-than comparison
// against the literal 0.
func (t *Translator) translateCondition(cond *ast.Condition) ([]Instr, Operand, Operand, Op) {
	instrs, lop := t.translateExp(cond.Left)
	if cond.Op == "" {
		return instrs, lop, Literal(0), OpBG
	}
	rinstrs, rop := t.translateExp(cond.Right)
	instrs = append(instrs, rinstrs...)
	return instrs, lop, rop, condBranchOp[cond.Op]
}

func (t *Translator) translateCall(call *ast.FuncCall) ([]Instr, Operand) {
	var instrs []Instr
	args := make([]Operand, 0, len(call.Args))
	for _, a := range call.Args {
		is, val := t.translateExp(a)
		instrs = append(instrs, is...)
		args = append(args, val)
	}
	dest := t.newTemp()
	fn := Func(call.Name, args)
	instrs = append(instrs, Instr{Op: OpCall, Src1: &fn, Dest: &dest})
	return instrs, dest
}

func (t *Translator) translateExp(e ast.Expr) ([]Instr, Operand) {
	switch n := e.(type) {
	case *ast.Literal:
		return nil, Literal(n.Value)
	case *ast.VarRef:
		return nil, Variable(n.Slot)
	case *ast.FuncCall:
		return t.translateCall(n)
	case *ast.BinaryExp:
		linstrs, lop := t.translateExp(n.Left)
		rinstrs, rop := t.translateExp(n.Right)
		instrs := append(linstrs, rinstrs...)
		dest := t.newTemp()
		instrs = append(instrs, Instr{Op: binaryOp[n.Op], Src1: &lop, Src2: &rop, Dest: &dest})
		return instrs, dest
	default:
		return nil, Operand{}
	}
}
