package simplify

import (
	"fmt"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// ============================================================
// Parsing
// ============================================================

// The grammar reads the engine's notation: ** for powers, log for the
// natural logarithm, E for Euler's number. Unary minus binds looser than
// ** so -x**2 is -(x**2).

var exprLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Number", Pattern: `(\d+\.?\d*|\.\d+)`},
	{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_]*`},
	{Name: "Pow", Pattern: `\*\*`},
	{Name: "Punct", Pattern: `[-+*/()]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

type sumAST struct {
	Head *termAST `parser:"@@"`
	Tail []*sumOp `parser:"@@*"`
}

type sumOp struct {
	Op   string   `parser:"@('+' | '-')"`
	Term *termAST `parser:"@@"`
}

type termAST struct {
	Head *unaryAST `parser:"@@"`
	Tail []*termOp `parser:"@@*"`
}

type termOp struct {
	Op     string    `parser:"@('*' | '/')"`
	Factor *unaryAST `parser:"@@"`
}

type unaryAST struct {
	Neg   *unaryAST `parser:"  '-' @@"`
	Power *powerAST `parser:"| @@"`
}

type powerAST struct {
	Base *primaryAST `parser:"@@"`
	Exp  *unaryAST   `parser:"( '**' @@ )?"`
}

type primaryAST struct {
	Number *string   `parser:"  @Number"`
	Ident  *identAST `parser:"| @@"`
	Group  *sumAST   `parser:"| '(' @@ ')'"`
}

type identAST struct {
	Name string  `parser:"@Ident"`
	Arg  *sumAST `parser:"( '(' @@ ')' )?"`
}

var exprParser = participle.MustBuild[sumAST](
	participle.Lexer(exprLexer),
	participle.Elide("Whitespace"),
)

// Parse reads expr into an unsimplified tree that mirrors the text:
// a-b is a+(-1)*b and a/b is a*b**(-1).
func Parse(expr string) (Expr, error) {
	ast, err := exprParser.ParseString("", expr)
	if err != nil {
		return nil, fmt.Errorf("simplify: parse %q: %w", expr, err)
	}
	return ast.expr()
}

func (s *sumAST) expr() (Expr, error) {
	head, err := s.Head.expr()
	if err != nil {
		return nil, err
	}
	if len(s.Tail) == 0 {
		return head, nil
	}
	terms := []Expr{head}
	for _, op := range s.Tail {
		t, err := op.Term.expr()
		if err != nil {
			return nil, err
		}
		if op.Op == "-" {
			t = &Mul{factors: []Expr{N(-1), t}}
		}
		terms = append(terms, t)
	}
	return &Add{terms: terms}, nil
}

func (t *termAST) expr() (Expr, error) {
	head, err := t.Head.expr()
	if err != nil {
		return nil, err
	}
	if len(t.Tail) == 0 {
		return head, nil
	}
	factors := []Expr{head}
	for _, op := range t.Tail {
		f, err := op.Factor.expr()
		if err != nil {
			return nil, err
		}
		if op.Op == "/" {
			f = &Pow{base: f, exp: N(-1)}
		}
		factors = append(factors, f)
	}
	return &Mul{factors: factors}, nil
}

func (u *unaryAST) expr() (Expr, error) {
	if u.Neg != nil {
		x, err := u.Neg.expr()
		if err != nil {
			return nil, err
		}
		return &Mul{factors: []Expr{N(-1), x}}, nil
	}
	return u.Power.expr()
}

func (p *powerAST) expr() (Expr, error) {
	base, err := p.Base.expr()
	if err != nil {
		return nil, err
	}
	if p.Exp == nil {
		return base, nil
	}
	exp, err := p.Exp.expr()
	if err != nil {
		return nil, err
	}
	return &Pow{base: base, exp: exp}, nil
}

func (p *primaryAST) expr() (Expr, error) {
	switch {
	case p.Number != nil:
		n, ok := ParseNum(*p.Number)
		if !ok {
			return nil, fmt.Errorf("simplify: bad number %q", *p.Number)
		}
		return n, nil
	case p.Ident != nil:
		return p.Ident.expr()
	default:
		return p.Group.expr()
	}
}

func (id *identAST) expr() (Expr, error) {
	if id.Arg == nil {
		return S(id.Name), nil
	}
	arg, err := id.Arg.expr()
	if err != nil {
		return nil, err
	}
	if id.Name == "sqrt" {
		return &Pow{base: arg, exp: F(1, 2)}, nil
	}
	return funcOf(id.Name, arg), nil
}
