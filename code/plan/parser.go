// Package plan parses and validates reorganization plan documents.
package plan

import (
	"bufio"
	"strings"

	"github.com/Voltaic314/DeskSweep/code/tree"
	typesplan "github.com/Voltaic314/DeskSweep/code/types/plan"
)

// Parse deserializes a plan document into an ordered sequence of typed
// operations. Parsing is purely syntactic: no disk access, no snapshot.
// Supported lines:
//
//	MOVE <src> -> <dst>
//	MKDIR <path>
//	RENAME <old> <new>
//	# comment
//
// Paths may be double-quoted (required when they contain spaces). RENAME
// is kept for compatibility with older plans and parses into the same
// move operation.
func Parse(document string) ([]typesplan.Op, error) {
	var ops []typesplan.Op

	scanner := bufio.NewScanner(strings.NewReader(document))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		tokens, err := splitTokens(line)
		if err != nil {
			return nil, &SyntaxError{Line: lineNo, Text: line, Reason: err.Error()}
		}
		if len(tokens) == 0 {
			continue
		}

		op, serr := parseTokens(tokens, lineNo, line)
		if serr != nil {
			return nil, serr
		}
		op.SequenceIndex = len(ops)
		ops = append(ops, op)
	}
	if err := scanner.Err(); err != nil {
		return nil, &SyntaxError{Line: lineNo, Text: "", Reason: err.Error()}
	}

	return ops, nil
}

func parseTokens(tokens []string, lineNo int, line string) (typesplan.Op, *SyntaxError) {
	var op typesplan.Op
	op.Line = lineNo

	cmd := strings.ToUpper(tokens[0])
	args := tokens[1:]

	switch cmd {
	case "MOVE":
		// Arrow form "MOVE a -> b" and bare form "MOVE a b" are both valid.
		if len(args) == 3 && args[1] == "->" {
			args = []string{args[0], args[2]}
		}
		if len(args) != 2 {
			return op, &SyntaxError{Line: lineNo, Text: line, Reason: `invalid MOVE syntax, usage: MOVE <src> -> <dst>`}
		}
		src, err := normalizeToken(args[0])
		if err != nil {
			return op, &SyntaxError{Line: lineNo, Text: line, Reason: err.Error()}
		}
		dst, err := normalizeToken(args[1])
		if err != nil {
			return op, &SyntaxError{Line: lineNo, Text: line, Reason: err.Error()}
		}
		op.Kind = typesplan.OpMove
		op.Source = src
		op.Destination = dst

	case "RENAME":
		if len(args) != 2 {
			return op, &SyntaxError{Line: lineNo, Text: line, Reason: `invalid RENAME syntax, usage: RENAME <old> <new>`}
		}
		src, err := normalizeToken(args[0])
		if err != nil {
			return op, &SyntaxError{Line: lineNo, Text: line, Reason: err.Error()}
		}
		dst, err := normalizeToken(args[1])
		if err != nil {
			return op, &SyntaxError{Line: lineNo, Text: line, Reason: err.Error()}
		}
		op.Kind = typesplan.OpMove
		op.Source = src
		op.Destination = dst

	case "MKDIR":
		if len(args) != 1 {
			return op, &SyntaxError{Line: lineNo, Text: line, Reason: `invalid MKDIR syntax, usage: MKDIR <dir>`}
		}
		dir, err := normalizeToken(args[0])
		if err != nil {
			return op, &SyntaxError{Line: lineNo, Text: line, Reason: err.Error()}
		}
		op.Kind = typesplan.OpMkdir
		op.Destination = dir

	default:
		return op, &SyntaxError{Line: lineNo, Text: line, Reason: "unknown command: " + cmd}
	}

	return op, nil
}

func normalizeToken(raw string) (string, error) {
	normalized, err := tree.Normalize(raw)
	if err != nil {
		return "", err
	}
	return normalized, nil
}

// splitTokens splits a plan line into fields, honoring double quotes so
// paths with spaces survive. A lone -> stays its own token.
func splitTokens(line string) ([]string, error) {
	var tokens []string
	var current strings.Builder
	inQuotes := false
	hasToken := false

	flush := func() {
		if hasToken {
			tokens = append(tokens, current.String())
			current.Reset()
			hasToken = false
		}
	}

	for _, r := range line {
		switch {
		case r == '"':
			inQuotes = !inQuotes
			hasToken = true
		case (r == ' ' || r == '\t') && !inQuotes:
			flush()
		default:
			current.WriteRune(r)
			hasToken = true
		}
	}
	if inQuotes {
		return nil, &unterminatedQuoteError{}
	}
	flush()

	return tokens, nil
}

type unterminatedQuoteError struct{}

func (e *unterminatedQuoteError) Error() string { return "unterminated quote" }
