package symdiff

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind identifies which rule a malformed expression broke.
type ErrorKind uint8

const (
	InvalidCharacter ErrorKind = iota + 1
	InvalidNumber
	EntitiesPlacement
	ParenthesisMismatch
)

func (k ErrorKind) String() string {
	switch k {
	case InvalidCharacter:
		return "invalid character"
	case InvalidNumber:
		return "invalid number"
	case EntitiesPlacement:
		return "misplaced operand or operator"
	case ParenthesisMismatch:
		return "parenthesis mismatch"
	}
	return "parse error"
}

// Sentinels for errors.Is. A *ParseError matches the sentinel of its kind.
var (
	ErrInvalidCharacter    = &ParseError{Kind: InvalidCharacter}
	ErrInvalidNumber       = &ParseError{Kind: InvalidNumber}
	ErrEntitiesPlacement   = &ParseError{Kind: EntitiesPlacement}
	ErrParenthesisMismatch = &ParseError{Kind: ParenthesisMismatch}
)

// Evaluation errors.
var (
	ErrDivisionByZero = errors.New("division by zero")
	ErrDomain         = errors.New("argument is outside the function domain")
	ErrOverflow       = errors.New("numeric result is out of range")
	ErrTooDeep        = errors.New("expression is nested too deeply")
	ErrUnbound        = errors.New("expression has unbound symbols")

	ErrNoDerivative = fmt.Errorf("%w: derivative does not exist at this point", ErrDomain)
	ErrBadPoint     = fmt.Errorf("%w: point specified incorrectly", ErrDomain)
)

// ParseError points at the substring of Expression that could not be parsed.
// Position and Length count runes of the whitespace-stripped expression.
type ParseError struct {
	Kind       ErrorKind
	Expression string
	Position   int
	Length     int
}

func newParseError(kind ErrorKind, expr string, pos, length int) *ParseError {
	return &ParseError{Kind: kind, Expression: expr, Position: pos, Length: length}
}

// Error renders the expression with a caret line underneath the offending token.
func (e *ParseError) Error() string {
	return e.Expression + "\n" + e.Pointer()
}

// Pointer returns Position spaces followed by Length carets.
func (e *ParseError) Pointer() string {
	pos, length := e.Position, e.Length
	if pos < 0 {
		pos = 0
	}
	if length < 1 {
		length = 1
	}
	return strings.Repeat(" ", pos) + strings.Repeat("^", length)
}

// Is matches another *ParseError of the same kind, so the package sentinels
// work with errors.Is.
func (e *ParseError) Is(target error) bool {
	t, ok := target.(*ParseError)
	return ok && t.Kind == e.Kind
}

// IsParseError reports whether err came from tokenizing or converting.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}

// recoverable reports whether Validate may turn err into false.
func recoverable(err error) bool {
	return errors.Is(err, ErrDivisionByZero) || errors.Is(err, ErrDomain)
}
