// Package jsonrepair recovers a parseable JSON document from imperfect
// model output. Models wrap JSON in markdown fences, prepend prose, and
// stop mid-object when the output token budget runs out; this package
// handles all three without ever returning an error. The worst case is a
// document that still fails to unmarshal, which callers treat as an empty
// extraction.
package jsonrepair

import (
	"encoding/json"
	"strings"
)

// scanner states. Escape handling matters: a brace inside "a\"b{c" must
// not count.
const (
	stateNormal = iota
	stateInString
	stateEscaped
)

// Repair returns its best effort at a parseable JSON object extracted
// from raw model output.
func Repair(raw string) string {
	s := stripFences(raw)
	s = locateObject(s)
	if s == "" {
		return s
	}
	if json.Valid([]byte(s)) {
		return s
	}
	return closeDelimiters(s)
}

// stripFences removes markdown code fences around the payload.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx >= 0 {
			s = s[idx+1:]
		} else {
			s = strings.TrimPrefix(s, "```json")
			s = strings.TrimPrefix(s, "```")
		}
	}
	if idx := strings.LastIndex(s, "```"); idx >= 0 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}

// locateObject finds where the JSON object starts, skipping any prose
// the model emitted first. It prefers the object that actually holds the
// transactions array over an earlier decorative brace.
func locateObject(s string) string {
	keyIdx := strings.Index(s, `"transactions"`)
	if keyIdx >= 0 {
		if open := strings.LastIndex(s[:keyIdx], "{"); open >= 0 {
			return s[open:]
		}
	}
	if open := strings.Index(s, "{"); open >= 0 {
		return s[open:]
	}
	return ""
}

// closeDelimiters scans the document with a small state machine, drops a
// trailing partial element if the output was cut mid-object, and appends
// whatever closing delimiters are missing, innermost first.
func closeDelimiters(s string) string {
	state := stateNormal
	var open []byte
	// Index just past the last element object that closed directly inside
	// an array one level below the root. Truncating here discards only
	// the partial trailing element.
	lastElementEnd := -1

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch state {
		case stateInString:
			switch c {
			case '\\':
				state = stateEscaped
			case '"':
				state = stateNormal
			}
		case stateEscaped:
			state = stateInString
		default:
			switch c {
			case '"':
				state = stateInString
			case '{', '[':
				open = append(open, c)
			case '}', ']':
				if len(open) > 0 {
					open = open[:len(open)-1]
				}
				if c == '}' && len(open) == 2 && open[0] == '{' && open[1] == '[' {
					lastElementEnd = i + 1
				}
			}
		}
	}

	cutMidValue := state != stateNormal || len(open) > 2
	if cutMidValue && lastElementEnd > 0 {
		return closeDelimiters(s[:lastElementEnd])
	}

	if state == stateNormal {
		// A cut right after an element leaves a dangling comma.
		s = strings.TrimRight(s, " \t\r\n")
		s = strings.TrimSuffix(s, ",")
	}

	var b strings.Builder
	b.WriteString(s)
	if state != stateNormal {
		b.WriteByte('"')
	}
	for i := len(open) - 1; i >= 0; i-- {
		if open[i] == '{' {
			b.WriteByte('}')
		} else {
			b.WriteByte(']')
		}
	}
	return b.String()
}
