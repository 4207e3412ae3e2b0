package symdiff

import (
	"strings"
	"unicode/utf8"
)

// ============================================================
// Tokens
// ============================================================

// TokenKind classifies a token.
type TokenKind uint8

const (
	TokenNumber TokenKind = iota + 1
	TokenSymbol
	TokenOperator
	TokenLeftParen
	TokenRightParen
)

func (k TokenKind) String() string {
	switch k {
	case TokenNumber:
		return "number"
	case TokenSymbol:
		return "symbol"
	case TokenOperator:
		return "operator"
	case TokenLeftParen:
		return "("
	case TokenRightParen:
		return ")"
	}
	return "token"
}

// Token is one lexical unit. Text is the source spelling (numbers already
// have ',' rewritten to '.'), Op is set for operator tokens.
type Token struct {
	Kind TokenKind
	Text string
	Op   Op
}

func numberToken(text string) Token { return Token{Kind: TokenNumber, Text: text} }
func symbolToken(name string) Token { return Token{Kind: TokenSymbol, Text: name} }
func opToken(op Op) Token           { return Token{Kind: TokenOperator, Text: op.String(), Op: op} }

var (
	leftParen  = Token{Kind: TokenLeftParen, Text: "("}
	rightParen = Token{Kind: TokenRightParen, Text: ")"}
)

// Width is the number of source runes the token occupied.
func (t Token) Width() int { return utf8.RuneCountInString(t.Text) }

// IsOperand reports whether the token is a number or a symbol.
func (t Token) IsOperand() bool { return t.Kind == TokenNumber || t.Kind == TokenSymbol }

func (t Token) String() string {
	if t.Kind == TokenOperator && t.Op == OpNeg {
		return operators[OpNeg].Symbol
	}
	return t.Text
}

// ============================================================
// Tokenizer
// ============================================================

// Tokenize splits a whitespace-free expression into tokens. Letter runs are
// split into single-letter symbols except where they end in a known
// function or constant name.
func Tokenize(expr string) ([]Token, error) {
	src := []rune(expr)
	tokens := make([]Token, 0, len(src))

	var num, letters []rune

	flushNumber := func() {
		if len(num) == 0 {
			return
		}
		tokens = append(tokens, numberToken(strings.ReplaceAll(string(num), ",", ".")))
		num = num[:0]
	}
	flushLetters := func() {
		for _, r := range letters {
			tokens = append(tokens, symbolToken(string(r)))
		}
		letters = letters[:0]
	}

	for i, r := range src {
		switch {
		case isOperatorChar(r):
			flushNumber()
			flushLetters()
			op, _ := LookupOperator(string(r))
			tokens = append(tokens, opToken(op))
		case r == '(':
			flushNumber()
			flushLetters()
			tokens = append(tokens, leftParen)
		case r == ')':
			flushNumber()
			flushLetters()
			tokens = append(tokens, rightParen)
		case isNumberRune(r):
			flushLetters()
			num = append(num, r)
		case isLetter(r):
			flushNumber()
			letters = append(letters, r)
			// "e" opening "exp" must not be read as the constant.
			if r == 'e' && hasPrefixAt(src, i, "exp") {
				continue
			}
			if name, ok := matchNameSuffix(letters); ok {
				letters = letters[:len(letters)-len(name)]
				flushLetters()
				tokens = append(tokens, nameToken(name))
			}
		default:
			return nil, newParseError(InvalidCharacter, expr, i, 1)
		}
	}
	flushNumber()
	flushLetters()
	return tokens, nil
}

func nameToken(name string) Token {
	if op, ok := LookupOperator(name); ok {
		return opToken(op)
	}
	return symbolToken(name)
}

func matchNameSuffix(letters []rune) (string, bool) {
	buf := string(letters)
	for _, name := range multiLetterNames {
		if strings.HasSuffix(buf, name) {
			return name, true
		}
	}
	return "", false
}

func hasPrefixAt(src []rune, i int, prefix string) bool {
	p := []rune(prefix)
	if i+len(p) > len(src) {
		return false
	}
	for j, r := range p {
		if src[i+j] != r {
			return false
		}
	}
	return true
}

func isNumberRune(r rune) bool { return ('0' <= r && r <= '9') || r == '.' || r == ',' }
func isLetter(r rune) bool     { return ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z') }
