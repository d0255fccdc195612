package console

import (
	"regexp"
	"strings"
)

var (
	dottedCall = regexp.MustCompile(`^(\w+)\.(\w+)\((.*)\)$`)
	quotedID   = regexp.MustCompile(`^"([^"]*)"\s*(?:,\s*(.*))?$`)
)

// rewrite turns `<Kind>.<method>(<args>)` into `<method> <Kind> <args>`.
// Lines in any other shape are returned unchanged.
//
//	User.all()                              -> all User
//	User.show("42")                         -> show User 42
//	User.update("42", "first_name", "Bob")  -> update User 42 first_name "Bob"
//	User.update("42", {"age": 3})           -> update User 42 {"age": 3}
func rewrite(line string) string {
	m := dottedCall.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return line
	}
	kind, method, args := m[1], m[2], strings.TrimSpace(m[3])

	parts := []string{method, kind}
	if args == "" {
		return strings.Join(parts, " ")
	}

	am := quotedID.FindStringSubmatch(args)
	if am == nil {
		return strings.Join(append(parts, args), " ")
	}
	parts = append(parts, am[1])

	rest := strings.TrimSpace(am[2])
	switch {
	case rest == "":
	case strings.HasPrefix(rest, "{"):
		parts = append(parts, rest)
	default:
		attr, value, found := strings.Cut(rest, ",")
		parts = append(parts, strings.Trim(strings.TrimSpace(attr), `"'`))
		if found {
			parts = append(parts, strings.TrimSpace(value))
		}
	}
	return strings.Join(parts, " ")
}

// splitCommand separates the command word from its argument text.
func splitCommand(line string) (string, string) {
	line = strings.TrimSpace(line)
	cmd, rest, _ := strings.Cut(line, " ")
	return cmd, strings.TrimSpace(rest)
}

// nextToken returns the first whitespace-delimited token of s and the
// trimmed remainder.
func nextToken(s string) (string, string) {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, " \t"); i >= 0 {
		return s[:i], strings.TrimSpace(s[i:])
	}
	return s, ""
}

// valueToken extracts an attribute value: a double-quoted string (quotes
// kept, spaces allowed) or else the first token.
func valueToken(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, `"`) {
		if end := strings.Index(s[1:], `"`); end >= 0 {
			return s[:end+2]
		}
		return s
	}
	tok, _ := nextToken(s)
	return tok
}
