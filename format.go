package symdiff

import (
	"strconv"
	"strings"
)

// ============================================================
// Infix rendering
// ============================================================

// String renders the tree as infix text with the fewest parentheses that
// keep its meaning. A tree that does not validate without bindings renders
// as "undefined".
func (n *Node) String() string {
	if ok, err := n.Validate(nil); err != nil || !ok {
		return "undefined"
	}
	var sb strings.Builder
	writeInfix(&sb, n)
	return sb.String()
}

func writeInfix(sb *strings.Builder, n *Node) {
	switch n.kind {
	case KindEmpty:
		sb.WriteString("undefined")
		return
	case KindNumber:
		sb.WriteString(formatNumber(n.num))
		return
	case KindSymbol:
		sb.WriteString(n.name)
		return
	}

	switch n.op.Arity() {
	case Prefix:
		sb.WriteString(n.op.String())
		writeChild(sb, n, n.left, false)
	case Postfix:
		writeChild(sb, n, n.left, false)
		sb.WriteString(n.op.String())
	case Binary:
		writeChild(sb, n, n.left, false)
		sb.WriteString(n.op.String())
		writeChild(sb, n, n.right, true)
	}
}

func writeChild(sb *strings.Builder, parent, child *Node, isRight bool) {
	if needsParens(parent, child, isRight) {
		sb.WriteByte('(')
		writeInfix(sb, child)
		sb.WriteByte(')')
		return
	}
	writeInfix(sb, child)
}

// needsParens decides whether child must be wrapped under parent.
func needsParens(parent, child *Node, isRight bool) bool {
	prio, isOp := childPriority(child)
	if parent.op.Arity() != Binary {
		if parent.op == OpNeg {
			return isOp && prio <= OpNeg.Priority()
		}
		return true
	}
	if !isOp {
		return false
	}
	pp := parent.op.Priority()
	if pp != prio {
		return pp > prio
	}
	switch parent.op.Assoc() {
	case LeftAssociative:
		return isRight
	case RightAssociative:
		return !isRight
	}
	return false
}

// childPriority reports the binding strength of child. A negative number
// is spelled with a leading '-', so it binds like unary minus.
func childPriority(child *Node) (int, bool) {
	switch child.kind {
	case KindOperator:
		return child.op.Priority(), true
	case KindNumber:
		if child.num < 0 {
			return OpNeg.Priority(), true
		}
	}
	return 0, false
}

// formatNumber prints the shortest decimal that parses back to v. It never
// uses exponent notation, which the tokenizer would read as the constant e.
func formatNumber(v float64) string {
	if v == 0 {
		v = 0 // drop the sign of -0
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// FormatValue prints a numeric result for display.
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// ============================================================
// LaTeX rendering
// ============================================================

// LaTeX renders the tree for typesetting.
func (n *Node) LaTeX() string {
	if ok, err := n.Validate(nil); err != nil || !ok {
		return `\mathrm{undefined}`
	}
	var sb strings.Builder
	writeLaTeX(&sb, n)
	return sb.String()
}

var latexFuncs = map[Op]string{
	OpExp: `\exp`,
	OpLn:  `\ln`,
	OpSin: `\sin`,
	OpCos: `\cos`,
	OpTg:  `\tan`,
}

func writeLaTeX(sb *strings.Builder, n *Node) {
	switch n.kind {
	case KindEmpty:
		sb.WriteString(`\mathrm{undefined}`)
		return
	case KindNumber:
		sb.WriteString(formatNumber(n.num))
		return
	case KindSymbol:
		switch n.name {
		case "pi", "tau", "phi":
			sb.WriteString(`\` + n.name)
		default:
			sb.WriteString(n.name)
		}
		return
	}

	switch n.op {
	case OpDiv:
		sb.WriteString(`\frac{`)
		writeLaTeX(sb, n.left)
		sb.WriteString(`}{`)
		writeLaTeX(sb, n.right)
		sb.WriteString(`}`)
	case OpPow:
		writeLaTeXChild(sb, n, n.left, false)
		sb.WriteString(`^{`)
		writeLaTeX(sb, n.right)
		sb.WriteString(`}`)
	case OpSqrt:
		sb.WriteString(`\sqrt{`)
		writeLaTeX(sb, n.left)
		sb.WriteString(`}`)
	case OpNeg:
		sb.WriteString("-")
		writeLaTeXChild(sb, n, n.left, false)
	case OpMul:
		writeLaTeXChild(sb, n, n.left, false)
		sb.WriteString(` \cdot `)
		writeLaTeXChild(sb, n, n.right, true)
	case OpAdd, OpSub:
		writeLaTeXChild(sb, n, n.left, false)
		sb.WriteString(" " + n.op.String() + " ")
		writeLaTeXChild(sb, n, n.right, true)
	default:
		sb.WriteString(latexFuncs[n.op])
		sb.WriteString(`\left(`)
		writeLaTeX(sb, n.left)
		sb.WriteString(`\right)`)
	}
}

func writeLaTeXChild(sb *strings.Builder, parent, child *Node, isRight bool) {
	if needsParens(parent, child, isRight) {
		sb.WriteString(`\left(`)
		writeLaTeX(sb, child)
		sb.WriteString(`\right)`)
		return
	}
	writeLaTeX(sb, child)
}
