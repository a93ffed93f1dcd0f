// Package codegen emits x86-64 System-V assembly text from a flat
// three-address instruction stream. Every temporary is a stack slot
// in spirit: whichever instruction produces one pushes it, and
// whichever instruction consumes it pops it straight back off — there
// is no register allocator and no attempt at one.
package codegen

import (
	"fmt"
	"strings"

	"github.com/tinycc/tcc/ir"
)

// mnemonicIndent matches the column the reference assembler output
// uses for every instruction; labels sit at column zero.
const mnemonicIndent = "         "

var condJump = map[ir.Op]string{
	ir.OpBL:  "jl",
	ir.OpBLE: "jle",
	ir.OpBG:  "jg",
	ir.OpBGE: "jge",
	ir.OpBEQ: "je",
	ir.OpBNE: "jne",
}

var arithMnemonic = map[ir.Op]string{
	ir.OpAdd: "addq",
	ir.OpSub: "subq",
	ir.OpMul: "imulq",
}

type generator struct {
	sb      strings.Builder
	curFunc string // asm label of the function currently being emitted
}

// Generate lowers instrs into complete, freestanding assembly text
// for a Linux x86-64 executable: no libc, no CRT, _start is the
// process entry point and exits via the sys_exit syscall directly.
func Generate(instrs []ir.Instr) string {
	g := &generator{}
	g.preamble()
	for _, in := range instrs {
		g.emit(in)
	}
	if callsPrint(instrs) {
		g.emitPrint()
	}
	return g.sb.String()
}

func callsPrint(instrs []ir.Instr) bool {
	for _, in := range instrs {
		if in.Op == ir.OpCall && in.Src1.Name == "print" {
			return true
		}
	}
	return false
}

func (g *generator) writeln(format string, args ...any) {
	fmt.Fprintf(&g.sb, format, args...)
	g.sb.WriteByte('\n')
}

func (g *generator) instr(format string, args ...any) {
	g.writeln(mnemonicIndent+format, args...)
}

func (g *generator) label(name string) {
	g.writeln("%s:", name)
}

// asmLabel renames "main" to "_start", since a freestanding binary's
// entry point is never reached through a call instruction and the
// platform expects that exact symbol name.
func asmLabel(name string) string {
	if name == "main" {
		return "_start"
	}
	return name
}

func labelName(op *ir.Operand) string {
	return fmt.Sprintf("L%d", op.Temp)
}

func (g *generator) preamble() {
	g.writeln(".global _start")
	g.writeln(".data")
	g.label("buf")
	g.instr(".skip 1024")
	g.writeln("")
	g.writeln(".text")
	g.writeln("")
}

func (g *generator) emit(in ir.Instr) {
	switch in.Op {
	case ir.OpBegin:
		g.emitBegin(in)
	case ir.OpEnd:
		g.writeln("")
	case ir.OpMov:
		g.loadOperand(in.Src1, "%rax")
		g.storeReg("%rax", in.Dest)
	case ir.OpAdd, ir.OpSub, ir.OpMul:
		g.loadOperandPair(in.Src1, in.Src2, "%rax", "%rbx")
		g.instr("%s %%rbx, %%rax", arithMnemonic[in.Op])
		g.storeReg("%rax", in.Dest)
	case ir.OpDiv:
		g.loadOperandPair(in.Src1, in.Src2, "%rax", "%rbx")
		g.instr("cqto")
		g.instr("idivq %%rbx")
		g.storeReg("%rax", in.Dest)
	case ir.OpBL, ir.OpBLE, ir.OpBG, ir.OpBGE, ir.OpBEQ, ir.OpBNE:
		g.loadOperandPair(in.Src1, in.Src2, "%r8", "%r9")
		g.instr("cmpq %%r9, %%r8")
		g.instr("%s %s", condJump[in.Op], labelName(in.Dest))
	case ir.OpB:
		g.instr("jmp %s", labelName(in.Dest))
	case ir.OpLabel:
		g.label(labelName(in.Dest))
	case ir.OpCall:
		g.emitCall(in)
	case ir.OpRet:
		g.emitRet(in)
	}
}

func (g *generator) emitBegin(in ir.Instr) {
	g.curFunc = asmLabel(in.Src1.Name)
	g.label(g.curFunc)
	g.instr("pushq %%rbp")
	g.instr("movq %%rsp, %%rbp")
	if n := in.Dest.Value; n > 0 {
		g.instr("subq $%d, %%rsp", n*8)
	}
}

// loadOperand moves operand's value into reg. A temp operand is
// popped off the stack — the instruction that produced it always
// pushed it, so this is always safe.
func (g *generator) loadOperand(op *ir.Operand, reg string) {
	switch op.Kind {
	case ir.OperandLiteral:
		g.instr("movq $%d, %s", op.Value, reg)
	case ir.OperandVariable:
		g.instr("movq %d(%%rbp), %s", op.Slot*8, reg)
	case ir.OperandTemp:
		g.instr("popq %s", reg)
	}
}

// loadOperandPair loads a two-operand instruction's Src1 into reg1 and
// Src2 into reg2. When both operands are temporaries, the translator's
// left-then-right evaluation order means Src2's push landed on top of
// Src1's, so the pops must happen in reverse — Src2 first — or the two
// values end up swapped in their registers.
func (g *generator) loadOperandPair(src1, src2 *ir.Operand, reg1, reg2 string) {
	if src1.Kind == ir.OperandTemp && src2.Kind == ir.OperandTemp {
		g.loadOperand(src2, reg2)
		g.loadOperand(src1, reg1)
		return
	}
	g.loadOperand(src1, reg1)
	g.loadOperand(src2, reg2)
}

// storeReg writes reg into dest. A temp destination is pushed onto
// the stack for whichever instruction consumes it next.
func (g *generator) storeReg(reg string, dest *ir.Operand) {
	switch dest.Kind {
	case ir.OperandVariable:
		g.instr("movq %s, %d(%%rbp)", reg, dest.Slot*8)
	case ir.OperandTemp:
		g.instr("pushq %s", reg)
	}
}

// emitCall pushes arguments right-to-left, matching the stack layout
// parameter slots expect (the first parameter ends up at the lowest
// address above the return address, i.e. slot 2).
func (g *generator) emitCall(in ir.Instr) {
	fn := in.Src1
	for i := len(fn.Args) - 1; i >= 0; i-- {
		arg := fn.Args[i]
		g.loadOperand(&arg, "%rax")
		g.instr("pushq %%rax")
	}
	g.instr("call %s", asmLabel(fn.Name))
	if len(fn.Args) > 0 {
		g.instr("addq $%d, %%rsp", len(fn.Args)*8)
	}
	g.storeReg("%rax", in.Dest)
}

func (g *generator) emitRet(in ir.Instr) {
	g.loadOperand(in.Src1, "%rax")
	g.instr("movq %%rbp, %%rsp")
	g.instr("popq %%rbp")
	if g.curFunc == "_start" {
		g.instr("movq $0, %%rdi")
		g.instr("movq $60, %%rax")
		g.instr("syscall")
		return
	}
	g.instr("ret")
}

// emitPrint is the only builtin the language has: print(int) writes
// the decimal representation of its argument, followed by a newline,
// to standard output. There is no libc here, so it builds the digits
// itself and calls sys_write directly.
func (g *generator) emitPrint() {
	g.label("print")
	g.instr("pushq %%rbp")
	g.instr("movq %%rsp, %%rbp")
	g.instr("movq 16(%%rbp), %%rax")
	g.instr("leaq buf+1023(%%rip), %%rsi")
	g.instr("movb $10, (%%rsi)") // '\n'
	g.instr("decq %%rsi")
	g.instr("movq $1, %%rcx")
	g.instr("movq $0, %%r8")
	g.instr("cmpq $0, %%rax")
	g.instr("jge .Lprint_digits")
	g.instr("movq $1, %%r8")
	g.instr("negq %%rax")
	g.label(".Lprint_digits")
	g.instr("movq $10, %%rbx")
	g.label(".Lprint_loop")
	g.instr("cqto")
	g.instr("idivq %%rbx")
	g.instr("addq $48, %%rdx")
	g.instr("movb %%dl, (%%rsi)")
	g.instr("decq %%rsi")
	g.instr("incq %%rcx")
	g.instr("cmpq $0, %%rax")
	g.instr("jne .Lprint_loop")
	g.instr("cmpq $0, %%r8")
	g.instr("je .Lprint_write")
	g.instr("movb $45, (%%rsi)") // '-'
	g.instr("decq %%rsi")
	g.instr("incq %%rcx")
	g.label(".Lprint_write")
	g.instr("incq %%rsi")
	g.instr("movq $1, %%rax")
	g.instr("movq $1, %%rdi")
	g.instr("movq %%rcx, %%rdx")
	g.instr("syscall")
	g.instr("movq %%rbp, %%rsp")
	g.instr("popq %%rbp")
	g.instr("ret")
	g.writeln("")
}
