package symdiff

import (
	"regexp"
	"strings"

	"go.uber.org/zap"
)

// ============================================================
// Normalizer seam
// ============================================================

// Normalizer rewrites an expression into a simpler equivalent one. It
// receives and returns text in its own notation; the Engine translates
// through a Notation on both sides of the call.
type Normalizer interface {
	Normalize(expr string) (string, error)
}

// NormalizerFunc adapts a function to the Normalizer interface.
type NormalizerFunc func(expr string) (string, error)

func (f NormalizerFunc) Normalize(expr string) (string, error) { return f(expr) }

// NopNormalizer returns every expression unchanged.
type NopNormalizer struct{}

func (NopNormalizer) Normalize(expr string) (string, error) { return expr, nil }

// Notation maps this package's spelling onto a normalizer's spelling.
// Identifiers are translated whole, so "exp" never turns into "Exp".
type Notation struct {
	// Names maps identifiers of this package to identifiers of the engine.
	Names map[string]string
	// Power is the engine's exponent operator.
	Power string

	reverse  map[string]string
	reserved map[string]bool
}

// SympyNotation is the sympy-style notation spoken by package simplify.
var SympyNotation = NewNotation(map[string]string{
	"tg": "tan",
	"ln": "log",
	"e":  "E",
}, "**")

// IdentityNotation performs no translation.
var IdentityNotation = NewNotation(nil, "^")

// NewNotation builds a translation table.
func NewNotation(names map[string]string, power string) Notation {
	n := Notation{
		Names:    names,
		Power:    power,
		reverse:  make(map[string]string, len(names)),
		reserved: make(map[string]bool, len(names)),
	}
	for ours, theirs := range names {
		n.reverse[theirs] = ours
		n.reserved[theirs] = true
	}
	return n
}

var identRe = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_]*`)

// escapeSuffix marks one of our symbols that collides with an engine name,
// e.g. a variable called "E".
const escapeSuffix = "_"

// ToEngine translates infix text produced by this package.
func (n Notation) ToEngine(expr string) string {
	out := identRe.ReplaceAllStringFunc(expr, func(id string) string {
		if theirs, ok := n.Names[id]; ok {
			return theirs
		}
		if n.reserved[id] {
			return id + escapeSuffix
		}
		return id
	})
	if n.Power != "" && n.Power != "^" {
		out = strings.ReplaceAll(out, "^", n.Power)
	}
	return out
}

// FromEngine translates normalizer output back into this package's notation.
func (n Notation) FromEngine(expr string) string {
	if n.Power != "" && n.Power != "^" {
		expr = strings.ReplaceAll(expr, n.Power, "^")
	}
	return identRe.ReplaceAllStringFunc(expr, func(id string) string {
		if ours, ok := n.reverse[id]; ok {
			return ours
		}
		if trimmed := strings.TrimSuffix(id, escapeSuffix); trimmed != id && n.reserved[trimmed] {
			return trimmed
		}
		return id
	})
}

// maxNormalizeInput bounds the text handed to the normalizer in one call.
const maxNormalizeInput = 1 << 16

// Simplify passes a tree through the configured normalizer. Trees that do
// not validate without bindings are returned as they are, and so are trees
// that print longer than maxNormalizeInput. A normalizer error or an answer
// that does not parse also leaves the input unchanged.
func (e *Engine) Simplify(n *Node) *Node {
	if n.IsLeaf() {
		return n
	}
	if _, nop := e.normalizer.(NopNormalizer); nop {
		return n
	}
	if ok, err := n.Validate(nil); err != nil || !ok {
		return n
	}

	text := n.String()
	if len(text) > maxNormalizeInput {
		e.logger.Debug("expression too long to normalize", zap.Int("length", len(text)))
		return n
	}
	out, err := e.normalizer.Normalize(e.notation.ToEngine(text))
	if err != nil {
		e.logger.Debug("normalizer failed", zap.String("expr", text), zap.Error(err))
		return n
	}
	back := e.notation.FromEngine(out)
	simplified, err := e.Parse(back)
	if err != nil {
		e.logger.Warn("normalizer returned unparsable text",
			zap.String("expr", text),
			zap.String("result", back),
			zap.Error(err),
		)
		return n
	}
	return simplified
}
