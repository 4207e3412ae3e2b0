package symdiff

import (
	"strconv"
	"strings"
	"unicode"
)

// ============================================================
// Shunting-yard conversion
// ============================================================

// StripSpace removes every whitespace rune. Positions in a *ParseError
// refer to the stripped form.
func StripSpace(expr string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, expr)
}

// ToPostfix tokenizes expr and reorders the tokens into postfix order,
// inserting implicit multiplications and reclassifying unary minus.
func ToPostfix(expr string) ([]Token, error) {
	expr = StripSpace(expr)
	tokens, err := Tokenize(expr)
	if err != nil {
		return nil, err
	}
	c := converter{expr: expr, output: make([]Token, 0, len(tokens))}
	return c.run(tokens)
}

type converter struct {
	expr     string
	stack    []Token
	output   []Token
	prev     *Token
	position int
	openPos  []int
}

func (c *converter) run(tokens []Token) ([]Token, error) {
	for i := range tokens {
		tok := tokens[i]
		switch tok.Kind {
		case TokenOperator:
			if tok.Op == OpSub && c.startsOperand() {
				tok = opToken(OpNeg)
			}
			switch tok.Op.Arity() {
			case Postfix:
				if err := c.checkPlacement(tok.Width()); err != nil {
					return nil, err
				}
				c.output = append(c.output, tok)
			case Prefix:
				c.insertSkippedMul()
				c.stack = append(c.stack, tok)
			case Binary:
				if err := c.checkPlacement(tok.Width()); err != nil {
					return nil, err
				}
				c.pushBinary(tok)
			}

		case TokenLeftParen:
			c.insertSkippedMul()
			c.openPos = append(c.openPos, c.position)
			c.stack = append(c.stack, tok)

		case TokenRightParen:
			if err := c.checkPlacement(1); err != nil {
				return nil, err
			}
			if err := c.closeGroup(); err != nil {
				return nil, err
			}

		default:
			if tok.Kind == TokenNumber {
				if _, err := strconv.ParseFloat(tok.Text, 64); err != nil {
					return nil, newParseError(InvalidNumber, c.expr, c.position, tok.Width())
				}
			}
			c.insertSkippedMul()
			c.output = append(c.output, tok)
		}

		c.prev = &tok
		c.position += tok.Width()
	}

	if c.prev != nil {
		last := c.position - c.prev.Width()
		if isOpenEnded(c.prev) {
			return nil, newParseError(EntitiesPlacement, c.expr, last, c.prev.Width())
		}
	}

	for len(c.stack) > 0 {
		top := c.pop()
		if top.Kind == TokenLeftParen {
			return nil, newParseError(ParenthesisMismatch, c.expr, c.openPos[len(c.openPos)-1], 1)
		}
		c.output = append(c.output, top)
	}
	return c.output, nil
}

// startsOperand reports whether a '-' at this point must be unary.
func (c *converter) startsOperand() bool {
	return c.prev == nil || c.prev.Kind == TokenLeftParen || c.prev.Kind == TokenOperator
}

// checkPlacement rejects a binary/postfix operator or ')' that has no left
// operand.
func (c *converter) checkPlacement(width int) error {
	if c.prev == nil || c.prev.Kind == TokenLeftParen || c.prev.isPending() {
		return newParseError(EntitiesPlacement, c.expr, c.position, width)
	}
	return nil
}

func (c *converter) pushBinary(tok Token) {
	p := tok.Op.Priority()
	for len(c.stack) > 0 {
		top := c.stack[len(c.stack)-1]
		if top.Kind != TokenOperator {
			break
		}
		tp := top.Op.Priority()
		if tp > p || (tp == p && top.Op.Assoc() != RightAssociative) {
			c.output = append(c.output, c.pop())
			continue
		}
		break
	}
	c.stack = append(c.stack, tok)
}

// insertSkippedMul emits the implied '*' in inputs such as "2x", "x(y)" or
// "(a)(b)".
func (c *converter) insertSkippedMul() {
	if c.prev == nil {
		return
	}
	if c.prev.IsOperand() || c.prev.Kind == TokenRightParen ||
		(c.prev.Kind == TokenOperator && c.prev.Op.Arity() == Postfix) {
		c.pushBinary(opToken(OpMul))
	}
}

func (c *converter) closeGroup() error {
	for len(c.stack) > 0 && c.stack[len(c.stack)-1].Kind != TokenLeftParen {
		c.output = append(c.output, c.pop())
	}
	if len(c.stack) == 0 {
		return newParseError(ParenthesisMismatch, c.expr, c.position, 1)
	}
	c.pop()
	c.openPos = c.openPos[:len(c.openPos)-1]
	return nil
}

func (c *converter) pop() Token {
	top := c.stack[len(c.stack)-1]
	c.stack = c.stack[:len(c.stack)-1]
	return top
}

// isPending reports whether the token still waits for a right operand.
func (t *Token) isPending() bool {
	if t.Kind != TokenOperator {
		return false
	}
	a := t.Op.Arity()
	return a == Binary || a == Prefix
}

func isOpenEnded(t *Token) bool {
	return t.isPending() || t.Kind == TokenLeftParen
}
