// Package sema resolves every name in the AST to a concrete storage
// location and checks every call against the function it names. It
// walks the tree exactly once, annotating Param, Decl, Assignment and
// VarRef nodes in place with the frame slot package codegen will
// address them by — there is no separate symbol table surviving past
// Analyze, the slots live on the tree itself.
package sema

import (
	"github.com/tinycc/tcc/ast"
	"github.com/tinycc/tcc/tcerr"
)

// FuncEntry records a function's name and the number of parameters it
// takes, for arity checking at call sites.
type FuncEntry struct {
	Name  string
	Arity int
}

// VarEntry records a variable's name and the frame slot assigned to
// it. Parameters get ascending positive slots starting at 2 (the
// first two 8-byte words past %rbp are the saved %rbp and return
// address); locals get descending negative slots starting at -1.
// Slots are never reused and never decremented on scope exit — a
// shadowed name living deeper in the tree still gets a fresh slot.
type VarEntry struct {
	Name string
	Slot int
}

// scope is one entry in the explicit scope stack; unlike a parent
// pointer chain, popping a scope is just shortening the slice.
type scope map[string]VarEntry

type analyzer struct {
	funcs  map[string]FuncEntry
	scopes []scope

	nextParamSlot int
	nextLocalSlot int
	localCount    int
}

// Analyze resolves every name in prog and assigns every frame slot,
// mutating the tree in place. It fails fast on the first error, as
// every stage of this compiler does.
func Analyze(prog *ast.Program) error {
	a := &analyzer{
		funcs: map[string]FuncEntry{
			"print": {Name: "print", Arity: 1},
		},
	}

	for _, fn := range prog.Funcs {
		if _, exists := a.funcs[fn.Name]; exists {
			return tcerr.New(tcerr.Semantic, "function %s redefined", fn.Name)
		}
		a.funcs[fn.Name] = FuncEntry{Name: fn.Name, Arity: len(fn.Params)}
	}

	for _, fn := range prog.Funcs {
		if err := a.analyzeFunc(fn); err != nil {
			return err
		}
	}
	return nil
}

func (a *analyzer) pushScope() { a.scopes = append(a.scopes, scope{}) }
func (a *analyzer) popScope()  { a.scopes = a.scopes[:len(a.scopes)-1] }

func (a *analyzer) bind(name string, entry VarEntry) {
	a.scopes[len(a.scopes)-1][name] = entry
}

func (a *analyzer) declaredInCurrentScope(name string) bool {
	_, ok := a.scopes[len(a.scopes)-1][name]
	return ok
}

func (a *analyzer) lookup(name string) (VarEntry, bool) {
	for i := len(a.scopes) - 1; i >= 0; i-- {
		if entry, ok := a.scopes[i][name]; ok {
			return entry, true
		}
	}
	return VarEntry{}, false
}

func (a *analyzer) analyzeFunc(fn *ast.Func) error {
	a.pushScope()
	defer a.popScope()

	a.nextParamSlot = 2
	a.nextLocalSlot = -1
	a.localCount = 0

	for _, p := range fn.Params {
		if a.declaredInCurrentScope(p.Name) {
			return tcerr.New(tcerr.Semantic, "parameter %s redeclared in function %s", p.Name, fn.Name)
		}
		p.Slot = a.nextParamSlot
		a.nextParamSlot++
		a.bind(p.Name, VarEntry{Name: p.Name, Slot: p.Slot})
	}

	if err := a.analyzeStmts(fn.Body.Stmts); err != nil {
		return err
	}
	fn.NbrLocals = a.localCount
	return nil
}

func (a *analyzer) analyzeBlock(b *ast.Block) error {
	a.pushScope()
	defer a.popScope()
	return a.analyzeStmts(b.Stmts)
}

func (a *analyzer) analyzeStmts(stmts []ast.Stmt) error {
	for _, s := range stmts {
		if err := a.analyzeStmt(s); err != nil {
			return err
		}
	}
	return nil
}

func (a *analyzer) analyzeStmt(s ast.Stmt) error {
	switch n := s.(type) {
	case *ast.Decl:
		return a.analyzeDecl(n)
	case *ast.Block:
		return a.analyzeBlock(n)
	case *ast.Assignment:
		return a.analyzeAssignment(n)
	case *ast.FuncCall:
		return a.analyzeCall(n)
	case *ast.If:
		return a.analyzeIf(n)
	case *ast.Return:
		return a.analyzeExpr(n.Value)
	default:
		return tcerr.New(tcerr.Semantic, "unrecognized statement %T", s)
	}
}

func (a *analyzer) analyzeDecl(d *ast.Decl) error {
	if d.Init != nil {
		if err := a.analyzeExpr(d.Init); err != nil {
			return err
		}
	}
	if a.declaredInCurrentScope(d.Name) {
		return tcerr.New(tcerr.Semantic, "variable %s redeclared", d.Name)
	}
	d.Slot = a.nextLocalSlot
	a.nextLocalSlot--
	a.localCount++
	a.bind(d.Name, VarEntry{Name: d.Name, Slot: d.Slot})
	return nil
}

func (a *analyzer) analyzeAssignment(asg *ast.Assignment) error {
	if err := a.analyzeExpr(asg.Value); err != nil {
		return err
	}
	entry, ok := a.lookup(asg.Name)
	if !ok {
		return tcerr.New(tcerr.Semantic, "assignment to undeclared variable %s", asg.Name)
	}
	asg.Slot = entry.Slot
	return nil
}

func (a *analyzer) analyzeCall(call *ast.FuncCall) error {
	entry, ok := a.funcs[call.Name]
	if !ok {
		return tcerr.New(tcerr.Semantic, "call to undefined function %s", call.Name)
	}
	if len(call.Args) != entry.Arity {
		return tcerr.New(tcerr.Semantic, "function %s takes %d argument(s), got %d", call.Name, entry.Arity, len(call.Args))
	}
	for _, arg := range call.Args {
		if err := a.analyzeExpr(arg); err != nil {
			return err
		}
	}
	return nil
}

func (a *analyzer) analyzeIf(ifStmt *ast.If) error {
	if err := a.analyzeExpr(ifStmt.Cond.Left); err != nil {
		return err
	}
	if ifStmt.Cond.Right != nil {
		if err := a.analyzeExpr(ifStmt.Cond.Right); err != nil {
			return err
		}
	}
	if err := a.analyzeStmt(ifStmt.Then); err != nil {
		return err
	}
	if ifStmt.Else != nil {
		return a.analyzeStmt(ifStmt.Else)
	}
	return nil
}

func (a *analyzer) analyzeExpr(e ast.Expr) error {
	switch n := e.(type) {
	case *ast.Literal:
		return nil
	case *ast.VarRef:
		entry, ok := a.lookup(n.Name)
		if !ok {
			return tcerr.New(tcerr.Semantic, "use of undeclared variable %s", n.Name)
		}
		n.Slot = entry.Slot
		return nil
	case *ast.BinaryExp:
		if err := a.analyzeExpr(n.Left); err != nil {
			return err
		}
		return a.analyzeExpr(n.Right)
	case *ast.FuncCall:
		return a.analyzeCall(n)
	default:
		return tcerr.New(tcerr.Semantic, "unrecognized expression %T", e)
	}
}
