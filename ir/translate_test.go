package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tinycc/tcc/ast"
	"github.com/tinycc/tcc/lexer"
	"github.com/tinycc/tcc/parsetree"
	"github.com/tinycc/tcc/sema"
)

func translate(t *testing.T, src string) []Instr {
	t.Helper()
	tree, err := parsetree.New(lexer.Scan(src)).Parse()
	require.NoError(t, err)
	prog, err := ast.Build(tree)
	require.NoError(t, err)
	require.NoError(t, sema.Analyze(prog))
	return (&Translator{}).Translate(prog)
}

func ops(instrs []Instr) []Op {
	out := make([]Op, len(instrs))
	for i, ins := range instrs {
		out[i] = ins.Op
	}
	return out
}

func TestTranslateBeginEndBracketEveryFunction(t *testing.T) {
	instrs := translate(t, "int main() { return 0; }")
	require.True(t, len(instrs) >= 2)
	assert.Equal(t, OpBegin, instrs[0].Op)
	assert.Equal(t, OpEnd, instrs[len(instrs)-1].Op)
}

func TestTranslateIfWithoutElseEmitsRedundantBranch(t *testing.T) {
	instrs := translate(t, `
		int main() {
			if (1 == 1) {
				return 1;
			}
			return 0;
		}
	`)

	got := ops(instrs)
	// begin, beq begin_if, b end_if, label begin_if, ret, b end_if, label end_if, ret, end
	assert.Contains(t, got, OpBEQ)

	// locate the conditional branch and confirm the exact quirked
	// sequence follows it: b end, label begin, <then>, b end (again), label end.
	var branchIdx int
	for i, o := range got {
		if o == OpBEQ {
			branchIdx = i
			break
		}
	}
	require.Equal(t, OpB, got[branchIdx+1])
	require.Equal(t, OpLabel, got[branchIdx+2])
	require.Equal(t, OpRet, got[branchIdx+3])
	require.Equal(t, OpB, got[branchIdx+4], "the second, redundant branch to end_if")
	require.Equal(t, OpLabel, got[branchIdx+5])

	endLabel := *instrs[branchIdx+1].Dest
	secondBranchLabel := *instrs[branchIdx+4].Dest
	assert.Equal(t, endLabel.Temp, secondBranchLabel.Temp, "both branches target the same end label")
}

func TestTranslateIfWithElseHasNoRedundantBranch(t *testing.T) {
	instrs := translate(t, `
		int main() {
			if (1 == 1) {
				return 1;
			} else {
				return 2;
			}
		}
	`)
	got := ops(instrs)

	branchCount := 0
	for _, o := range got {
		if o == OpB {
			branchCount++
		}
	}
	assert.Equal(t, 2, branchCount, "one branch to the else label, one from the end of the then-branch to end_if")
}

func TestTranslateNotEqualMapsToBNE(t *testing.T) {
	instrs := translate(t, "int main() { if (1 != 2) { return 1; } return 0; }")
	assert.Contains(t, ops(instrs), OpBNE)
}

func TestTranslateBareConditionIsGreaterThanZero(t *testing.T) {
	instrs := translate(t, "int main() { int x = 1; if (x) { return 1; } return 0; }")
	got := ops(instrs)
	assert.Contains(t, got, OpBG)

	for _, ins := range instrs {
		if ins.Op == OpBG {
			require.NotNil(t, ins.Src2)
			assert.Equal(t, OperandLiteral, ins.Src2.Kind)
			assert.Equal(t, 0, ins.Src2.Value)
		}
	}
}

func TestTranslateRightLeaningSubtractionEvaluatesInnermostFirst(t *testing.T) {
	instrs := translate(t, "int f(int a, int b, int c) { return a - b - c; }")

	var subs []Instr
	for _, ins := range instrs {
		if ins.Op == OpSub {
			subs = append(subs, ins)
		}
	}
	require.Len(t, subs, 2)
	// the inner (b - c) temp must be computed before the outer
	// (a - innerTemp) uses it as its Src2.
	assert.Equal(t, subs[0].Dest.Temp, subs[1].Src2.Temp)
}

func TestTranslateCallArgumentsEvaluatedInOrder(t *testing.T) {
	instrs := translate(t, `
		int f(int a, int b) { return a + b; }
		int main() { return f(1, 2); }
	`)

	var call Instr
	for _, ins := range instrs {
		if ins.Op == OpCall && ins.Src1.Name == "f" {
			call = ins
			break
		}
	}
	require.NotNil(t, call.Src1)
	require.Len(t, call.Src1.Args, 2)
	assert.Equal(t, 1, call.Src1.Args[0].Value)
	assert.Equal(t, 2, call.Src1.Args[1].Value)
}

func TestTranslateTempsAreMonotonicAndNeverReused(t *testing.T) {
	instrs := translate(t, "int main() { return (1 + 2) * (3 + 4); }")

	var temps []int
	for _, ins := range instrs {
		if ins.Dest != nil && ins.Dest.Kind == OperandTemp {
			temps = append(temps, ins.Dest.Temp)
		}
	}
	require.Len(t, temps, 3)
	for i := 1; i < len(temps); i++ {
		assert.Greater(t, temps[i], temps[i-1])
	}
}
