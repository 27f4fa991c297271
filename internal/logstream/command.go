package logstream

import (
	"errors"
	"strings"

	"github.com/smazurov/onair/internal/rules"
)

// LogBinary is the macOS unified logging tool.
const LogBinary = "/usr/bin/log"

// Command returns the log stream invocation for a rule.
func Command(rule rules.MatchRule) []string {
	args := []string{LogBinary, "stream"}
	if rule.StreamStyle != "" {
		args = append(args, "--style", rule.StreamStyle)
	}
	return append(args, "--predicate", rule.PredicateFilter)
}

// ParseCommand splits a command line into arguments. Single and double
// quotes group words and a backslash escapes the next character.
func ParseCommand(command string) ([]string, error) {
	var args []string
	var current strings.Builder
	var quote rune
	inArg := false

	runes := []rune(strings.TrimSpace(command))
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case quote != 0 && r == quote:
			quote = 0
		case quote == 0 && (r == '"' || r == '\''):
			quote = r
			inArg = true
		case r == '\\' && i+1 < len(runes) && quote != '\'':
			i++
			current.WriteRune(runes[i])
			inArg = true
		case quote == 0 && (r == ' ' || r == '\t'):
			if inArg {
				args = append(args, current.String())
				current.Reset()
				inArg = false
			}
		default:
			current.WriteRune(r)
			inArg = true
		}
	}

	if quote != 0 {
		return nil, errors.New("unclosed quote in command")
	}
	if inArg {
		args = append(args, current.String())
	}
	if len(args) == 0 {
		return nil, errors.New("empty command")
	}
	return args, nil
}
