package symdiff

import (
	"fmt"
	"sort"
	"strconv"
)

// ============================================================
// Expression tree
// ============================================================

// NodeKind classifies a tree node.
type NodeKind uint8

const (
	KindEmpty NodeKind = iota
	KindNumber
	KindSymbol
	KindOperator
)

// Node is an immutable expression tree node. A node exclusively owns its
// children; derived trees may share unreduced subtrees read-only.
//
// The zero Node is the undefined expression.
type Node struct {
	kind  NodeKind
	op    Op
	num   float64
	name  string
	left  *Node
	right *Node
}

var undefined = &Node{}

// Undefined returns the empty node that stands for a malformed or
// domain-invalid function.
func Undefined() *Node { return undefined }

// Number returns a numeric leaf.
func Number(v float64) *Node { return &Node{kind: KindNumber, num: v} }

// Symbol returns a variable or named-constant leaf.
func Symbol(name string) *Node { return &Node{kind: KindSymbol, name: name} }

// Unary applies a prefix or postfix operator. It panics if op is binary or
// x is nil.
func Unary(op Op, x *Node) *Node {
	if !op.Valid() || op.Arity() == Binary {
		panic(fmt.Sprintf("symdiff: %q is not a unary operator", op.Info().Symbol))
	}
	if x == nil {
		panic(fmt.Sprintf("symdiff: %q applied to a nil operand", op.Info().Symbol))
	}
	return &Node{kind: KindOperator, op: op, left: x}
}

// BinaryOf applies a binary operator. It panics if op is not binary or an
// operand is nil.
func BinaryOf(op Op, l, r *Node) *Node {
	if !op.Valid() || op.Arity() != Binary {
		panic(fmt.Sprintf("symdiff: %q is not a binary operator", op.Info().Symbol))
	}
	if l == nil || r == nil {
		panic(fmt.Sprintf("symdiff: %q applied to a nil operand", op.Info().Symbol))
	}
	return &Node{kind: KindOperator, op: op, left: l, right: r}
}

func (n *Node) Kind() NodeKind { return n.kind }
func (n *Node) Op() Op         { return n.op }
func (n *Node) Left() *Node    { return n.left }
func (n *Node) Right() *Node   { return n.right }
func (n *Node) Name() string   { return n.name }

// Value returns the numeric value of a number leaf.
func (n *Node) Value() (float64, bool) { return n.num, n.kind == KindNumber }

func (n *Node) IsUndefined() bool { return n == nil || n.kind == KindEmpty }
func (n *Node) IsLeaf() bool      { return n.kind != KindOperator }

// Equal reports structural equality.
func (n *Node) Equal(o *Node) bool {
	if n == o {
		return true
	}
	if n == nil || o == nil || n.kind != o.kind {
		return false
	}
	switch n.kind {
	case KindNumber:
		return n.num == o.num
	case KindSymbol:
		return n.name == o.name
	case KindOperator:
		if n.op != o.op || !n.left.Equal(o.left) {
			return false
		}
		if n.op.Arity() == Binary {
			return n.right.Equal(o.right)
		}
	}
	return true
}

// Symbols returns the sorted free symbols of the tree, excluding named
// constants.
func (n *Node) Symbols() []string {
	seen := map[string]struct{}{}
	walk(n, func(m *Node) {
		if m.kind == KindSymbol && !IsConstant(m.name) {
			seen[m.name] = struct{}{}
		}
	})
	out := make([]string, 0, len(seen))
	for s := range seen {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Depth returns the height of the tree; leaves have depth 1.
func (n *Node) Depth() int {
	type frame struct {
		n     *Node
		depth int
	}
	best := 0
	stack := []frame{{n, 1}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if f.n == nil {
			continue
		}
		if f.depth > best {
			best = f.depth
		}
		if f.n.left != nil {
			stack = append(stack, frame{f.n.left, f.depth + 1})
		}
		if f.n.right != nil {
			stack = append(stack, frame{f.n.right, f.depth + 1})
		}
	}
	return best
}

// walk visits every node in pre-order without recursion.
func walk(n *Node, visit func(*Node)) {
	stack := []*Node{n}
	for len(stack) > 0 {
		m := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if m == nil {
			continue
		}
		visit(m)
		stack = append(stack, m.right, m.left)
	}
}

// ============================================================
// Builder
// ============================================================

// Build turns a postfix token list into a tree. The list is consumed from
// the tail: an operator pops its right operand first, then its left. An
// empty list yields Undefined.
func Build(postfix []Token) (*Node, error) {
	return buildTree(postfix, 0)
}

// buildTree assembles the tree bottom-up with an explicit operand stack,
// which is equivalent to the tail-first recursive descent for the output
// of ToPostfix. maxDepth <= 0 disables the height limit.
func buildTree(postfix []Token, maxDepth int) (*Node, error) {
	if len(postfix) == 0 {
		return Undefined(), nil
	}
	type item struct {
		n     *Node
		depth int
	}
	stack := make([]item, 0, len(postfix))
	pop := func() item {
		if len(stack) == 0 {
			return item{Undefined(), 1}
		}
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		return it
	}

	for _, tok := range postfix {
		var it item
		switch tok.Kind {
		case TokenNumber:
			v, err := strconv.ParseFloat(tok.Text, 64)
			if err != nil {
				return nil, fmt.Errorf("build: %q: %w", tok.Text, ErrInvalidNumber)
			}
			it = item{Number(v), 1}
		case TokenSymbol:
			it = item{Symbol(tok.Text), 1}
		case TokenOperator:
			if tok.Op.Arity() == Binary {
				r := pop()
				l := pop()
				it = item{BinaryOf(tok.Op, l.n, r.n), 1 + max(l.depth, r.depth)}
			} else {
				x := pop()
				it = item{Unary(tok.Op, x.n), 1 + x.depth}
			}
		default:
			return nil, fmt.Errorf("build: unexpected %s token: %w", tok.Kind, ErrParenthesisMismatch)
		}
		if maxDepth > 0 && it.depth > maxDepth {
			return nil, fmt.Errorf("build: depth %d exceeds %d: %w", it.depth, maxDepth, ErrTooDeep)
		}
		stack = append(stack, it)
	}
	// Tail-first consumption only ever reads the last complete subtree.
	return stack[len(stack)-1].n, nil
}
