// Package parsetree implements the LL(1) recursive-descent parser for
// the grammar, producing a parse tree that mirrors the grammar's
// non-terminals one-for-one. The tree is scaffolding: package ast
// folds it into the compact AST and nothing downstream of that ever
// looks at a *Node again.
package parsetree

// Node is a single parse-tree node. Sym names the grammar production
// or terminal it came from ("func", "decl", "if", "exp2", ...); Name
// and Val carry whatever scalar payload that production captured (a
// function/variable name, an operator spelling, a literal digit
// string); Succs holds the ordered child subtrees. Only one of
// Name/Val is ever meaningful for a given Sym — which one is a
// property of the grammar rule, not of the Node type itself.
type Node struct {
	Sym   string
	Name  string
	Val   string
	Succs []*Node
}

func newNode(sym string) *Node { return &Node{Sym: sym} }

func (n *Node) addSucc(s *Node) { n.Succs = append(n.Succs, s) }
