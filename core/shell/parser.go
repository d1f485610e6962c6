// Package shell turns input lines into command invocations.
//
// Two quoting modes are available. Literal splits on single spaces and
// strips one layer of matching quotes from each word; it never fails.
// POSIX follows sh word splitting and quote removal (via go-shlex) and
// fails on unterminated quotes.
package shell

import (
	"errors"
	"fmt"
	"strings"

	"github.com/anmitsu/go-shlex"
)

// ErrSyntax is returned when a line can't be split into words.
var ErrSyntax = errors.New("syntax error")

// Tokenizer splits a line into an invocation. A blank line yields no
// tokens and no error.
type Tokenizer func(line string) ([]string, error)

// Quoting modes.
const (
	QuotingLiteral = "literal"
	QuotingPOSIX   = "posix"
)

// ForQuoting returns the Tokenizer for the named quoting mode.
func ForQuoting(mode string) (Tokenizer, error) {
	switch mode {
	case "", QuotingLiteral:
		return Literal, nil
	case QuotingPOSIX:
		return POSIX, nil
	default:
		return nil, fmt.Errorf("unknown quoting mode %q", mode)
	}
}

// Literal splits line on single spaces. Consecutive spaces produce empty
// tokens. A quote with a matching partner later on the line groups the
// text between them into one token, spaces included; an unmatched quote is
// plain data. Each token then loses one matching pair of outer quotes.
func Literal(line string) ([]string, error) {
	line = trimNewline(line)
	if strings.TrimSpace(line) == "" {
		return nil, nil
	}

	var tokens []string
	var current strings.Builder
	for i := 0; i < len(line); i++ {
		ch := line[i]
		switch ch {
		case ' ':
			tokens = append(tokens, stripQuotes(current.String()))
			current.Reset()
		case '"', '\'':
			end := strings.IndexByte(line[i+1:], ch)
			if end < 0 {
				current.WriteByte(ch)
				continue
			}
			// Keep the quotes, stripQuotes decides whether they go.
			current.WriteString(line[i : i+end+2])
			i += end + 1
		default:
			current.WriteByte(ch)
		}
	}
	tokens = append(tokens, stripQuotes(current.String()))

	return tokens, nil
}

// stripQuotes removes a leading and trailing '"' if both are present, then
// does the same for '\''.
func stripQuotes(token string) string {
	for _, q := range []byte{'"', '\''} {
		if len(token) >= 2 && token[0] == q && token[len(token)-1] == q {
			token = token[1 : len(token)-1]
		}
	}
	return token
}

// POSIX splits line using sh quoting rules.
func POSIX(line string) ([]string, error) {
	line = trimNewline(line)
	if strings.TrimSpace(line) == "" {
		return nil, nil
	}

	tokens, err := shlex.Split(line, true)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSyntax, err)
	}
	if len(tokens) == 0 {
		return nil, nil
	}
	return tokens, nil
}

func trimNewline(line string) string {
	line = strings.TrimSuffix(line, "\n")
	return strings.TrimSuffix(line, "\r")
}
