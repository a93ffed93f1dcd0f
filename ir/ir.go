// Package ir translates the AST into a flat sequence of three-address
// instructions, the last representation before assembly text. Every
// temporary and label is fresh and monotonically numbered per
// compilation — there is no reuse, which keeps codegen's stack-machine
// discipline simple: whatever pushed a temporary is always the last
// thing to pop it.
package ir

import "fmt"

// Op is a three-address opcode.
type Op string

const (
	OpBegin Op = "begin"
	OpEnd   Op = "end"
	OpMov   Op = "mov"
	OpAdd   Op = "add"
	OpSub   Op = "sub"
	OpMul   Op = "mul"
	OpDiv   Op = "div"
	OpB     Op = "b"
	OpBL    Op = "bl"
	OpBLE   Op = "ble"
	OpBG    Op = "bg"
	OpBGE   Op = "bge"
	OpBEQ   Op = "beq"
	OpBNE   Op = "bne"
	OpLabel Op = "label"
	OpCall  Op = "CALL"
	OpRet   Op = "ret"
)

// OperandKind tags which of Operand's fields is meaningful.
type OperandKind int

const (
	OperandLiteral  OperandKind = iota // Value holds an integer constant
	OperandVariable                    // Slot holds a frame slot
	OperandTemp                        // Temp holds a tXX number
	OperandLabel                       // Temp holds an LXX number
	OperandFunc                        // Name holds a function name
)

// Operand is a tagged value: exactly one of its fields is meaningful,
// selected by Kind.
type Operand struct {
	Kind  OperandKind
	Value int    // OperandLiteral
	Slot  int    // OperandVariable
	Temp  int    // OperandTemp, OperandLabel
	Name  string // OperandFunc
	Args  []Operand
}

func Literal(v int) Operand  { return Operand{Kind: OperandLiteral, Value: v} }
func Variable(s int) Operand { return Operand{Kind: OperandVariable, Slot: s} }
func Temp(n int) Operand     { return Operand{Kind: OperandTemp, Temp: n} }
func Label(n int) Operand    { return Operand{Kind: OperandLabel, Temp: n} }
func Func(name string, args []Operand) Operand {
	return Operand{Kind: OperandFunc, Name: name, Args: args}
}

func (o Operand) String() string {
	switch o.Kind {
	case OperandLiteral:
		return fmt.Sprintf("%d", o.Value)
	case OperandVariable:
		return fmt.Sprintf("slot(%d)", o.Slot)
	case OperandTemp:
		return fmt.Sprintf("t%d", o.Temp)
	case OperandLabel:
		return fmt.Sprintf("L%d", o.Temp)
	case OperandFunc:
		return fmt.Sprintf("%s(...)", o.Name)
	default:
		return "?"
	}
}

// Instr is one three-address instruction. Not every field is used by
// every Op — Src2 is nil for a unary mov and for ret (whose value is
// Src1), both Srcs are nil for label and b, and so on. codegen switches on Op and knows which fields to
// expect.
type Instr struct {
	Op   Op
	Src1 *Operand
	Src2 *Operand
	Dest *Operand
}

func (i Instr) String() string {
	parts := []any{i.Op}
	if i.Src1 != nil {
		parts = append(parts, i.Src1)
	}
	if i.Src2 != nil {
		parts = append(parts, i.Src2)
	}
	if i.Dest != nil {
		parts = append(parts, i.Dest)
	}
	return fmt.Sprint(parts...)
}
