package budget

import (
	"strings"

	shellquote "github.com/kballard/go-shellquote"

	"budgeter/internal/core"
)

const (
	msgBlank    = "Please enter a command."
	msgBadQuote = `Couldn't parse command. Try quotes around names, e.g., goal 3000 "New laptop".`
)

// Tokenize splits line honoring quotes and backslash escapes, and lowercases
// the verb token. "#" is an ordinary character.
// Blank input and unbalanced quoting are ParseErrors.
func Tokenize(line string) ([]string, error) {
	tokens, err := shellquote.Split(line)
	if err != nil {
		return nil, &core.ParseError{Line: line, Reason: msgBadQuote}
	}
	if len(tokens) == 0 {
		return nil, &core.ParseError{Line: line, Reason: msgBlank}
	}
	tokens[0] = lower(tokens[0])
	return tokens, nil
}

func lower(s string) string {
	return strings.ToLower(s)
}
