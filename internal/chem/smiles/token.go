package smiles

import (
	"fmt"
	"strconv"
	"strings"

	apperrors "github.com/turtacn/smilescombine/pkg/errors"
)

// TokenKind classifies a lexical SMILES token.
type TokenKind int

const (
	TokenAtom TokenKind = iota
	TokenBond
	TokenRing
	TokenBranchOpen
	TokenBranchClose
	TokenDot
)

func (k TokenKind) String() string {
	switch k {
	case TokenAtom:
		return "atom"
	case TokenBond:
		return "bond"
	case TokenRing:
		return "ring"
	case TokenBranchOpen:
		return "branch-open"
	case TokenBranchClose:
		return "branch-close"
	case TokenDot:
		return "dot"
	default:
		return "unknown"
	}
}

// MaxRingLabel is the largest ring-closure label expressible with the %nn form.
const MaxRingLabel = 99

// Token is one lexical unit of a SMILES string.  For ring tokens Ring holds the
// integer label; Text always holds the source text.
type Token struct {
	Kind TokenKind
	Text string
	Ring int
	Pos  int
}

// String renders the token back to SMILES.  Ring tokens are rendered from
// their integer label so that relabelled tokens serialise correctly.
func (t Token) String() string {
	if t.Kind == TokenRing {
		s, err := FormatRingLabel(t.Ring)
		if err != nil {
			return t.Text
		}
		return s
	}
	return t.Text
}

// FormatRingLabel renders a ring-closure label: single digits as-is, larger
// labels in the %nn form.
func FormatRingLabel(n int) (string, error) {
	switch {
	case n < 0 || n > MaxRingLabel:
		return "", apperrors.Newf(apperrors.ErrCodeRingLabel, "ring label %d outside [0, %d]", n, MaxRingLabel)
	case n < 10:
		return strconv.Itoa(n), nil
	default:
		return "%" + strconv.Itoa(n), nil
	}
}

// Join serialises a token stream.
func Join(tokens []Token) string {
	var sb strings.Builder
	for _, t := range tokens {
		sb.WriteString(t.String())
	}
	return sb.String()
}

func lexError(pos int, format string, args ...interface{}) error {
	return apperrors.New(apperrors.ErrCodeSMILESParse, fmt.Sprintf(format, args...)).
		WithDetail(fmt.Sprintf("position %d", pos))
}

// Tokenize splits s into SMILES tokens.  It validates lexical structure only:
// organic-subset symbols, closed brackets, ring labels and bond symbols.
func Tokenize(s string) ([]Token, error) {
	var tokens []Token
	i := 0
	for i < len(s) {
		ch := s[i]
		switch {
		case ch == '(':
			tokens = append(tokens, Token{Kind: TokenBranchOpen, Text: "(", Pos: i})
			i++
		case ch == ')':
			tokens = append(tokens, Token{Kind: TokenBranchClose, Text: ")", Pos: i})
			i++
		case ch == '.':
			tokens = append(tokens, Token{Kind: TokenDot, Text: ".", Pos: i})
			i++
		case strings.IndexByte("-=#$:/\\", ch) >= 0:
			tokens = append(tokens, Token{Kind: TokenBond, Text: string(ch), Pos: i})
			i++
		case ch >= '0' && ch <= '9':
			tokens = append(tokens, Token{Kind: TokenRing, Text: string(ch), Ring: int(ch - '0'), Pos: i})
			i++
		case ch == '%':
			if i+2 >= len(s) || !isDigit(s[i+1]) || !isDigit(s[i+2]) {
				return nil, lexError(i, "'%%' must be followed by two digits")
			}
			n := int(s[i+1]-'0')*10 + int(s[i+2]-'0')
			tokens = append(tokens, Token{Kind: TokenRing, Text: s[i : i+3], Ring: n, Pos: i})
			i += 3
		case ch == '[':
			end := strings.IndexByte(s[i:], ']')
			if end < 0 {
				return nil, lexError(i, "unclosed bracket atom")
			}
			if strings.IndexByte(s[i+1:i+end], '[') >= 0 {
				return nil, lexError(i, "nested bracket atom")
			}
			tokens = append(tokens, Token{Kind: TokenAtom, Text: s[i : i+end+1], Pos: i})
			i += end + 1
		case ch == '*':
			tokens = append(tokens, Token{Kind: TokenAtom, Text: "*", Pos: i})
			i++
		default:
			sym, ok := organicSymbolAt(s, i)
			if !ok {
				return nil, lexError(i, "unexpected character %q", ch)
			}
			tokens = append(tokens, Token{Kind: TokenAtom, Text: sym, Pos: i})
			i += len(sym)
		}
	}
	return tokens, nil
}

// organicSymbolAt matches an organic-subset atom at position i.
func organicSymbolAt(s string, i int) (string, bool) {
	if i+1 < len(s) {
		switch s[i : i+2] {
		case "Cl", "Br":
			return s[i : i+2], true
		}
	}
	switch s[i] {
	case 'B', 'C', 'N', 'O', 'P', 'S', 'F', 'I', 'b', 'c', 'n', 'o', 'p', 's':
		return s[i : i+1], true
	}
	return "", false
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

//Personal.AI order the ending
