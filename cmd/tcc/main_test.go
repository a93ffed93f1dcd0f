package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileEndToEndTrivialProgram(t *testing.T) {
	asm, err := compile("int main() { return 0; }")
	require.NoError(t, err)
	assert.Contains(t, asm, "_start:")
	assert.Contains(t, asm, "syscall")
}

func TestCompileEndToEndFunctionCallAndArithmetic(t *testing.T) {
	asm, err := compile(`
		int add(int a, int b) {
			return a + b;
		}
		int main() {
			int sum = add(2, 3);
			print(sum);
			return 0;
		}
	`)
	require.NoError(t, err)
	assert.Contains(t, asm, "add:")
	assert.Contains(t, asm, "call add")
	assert.Contains(t, asm, "call print")
}

func TestCompileReportsLexicalFailureAsSyntaxError(t *testing.T) {
	_, err := compile("int main() { return @; }")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "syntax error")
}

func TestCompileReportsSemanticError(t *testing.T) {
	_, err := compile("int main() { return undeclared; }")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "semantic error")
}

func TestCompileReportsArityMismatch(t *testing.T) {
	_, err := compile(`
		int f(int a) { return a; }
		int main() { return f(1, 2); }
	`)
	require.Error(t, err)
}

func TestCompileIfWithoutElseEmitsConditionalJump(t *testing.T) {
	asm, err := compile(`
		int main() {
			int x = 10;
			if (x > 5) {
				x = x - 1;
			}
			return x;
		}
	`)
	require.NoError(t, err)
	assert.Contains(t, asm, "jg L")
}
