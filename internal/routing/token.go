package routing

import (
	"fmt"
	"net/url"
	"strings"

	"view-router/internal/common/errors"
)

// Dialect selects how parameters are written in a route token.
type Dialect int

const (
	// DialectSlash writes parameters as ordinary path segments: /shell/users/42
	DialectSlash Dialect = iota
	// DialectColon appends parameters to the last segment: /shell/users;42
	// or /shell/users:42. One token uses one delimiter.
	DialectColon
)

// String returns the configuration name of the dialect.
func (d Dialect) String() string {
	switch d {
	case DialectColon:
		return "colon"
	default:
		return "slash"
	}
}

// ParseDialect converts a configuration value into a Dialect.
func ParseDialect(s string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "slash":
		return DialectSlash, nil
	case "colon":
		return DialectColon, nil
	default:
		return DialectSlash, errors.ConfigError(fmt.Sprintf("unknown token dialect %q", s))
	}
}

const placeholder = "*"

// Parser splits raw route tokens into a shell id, a route path and positional
// parameter values. A Parser is immutable and safe for concurrent use.
type Parser struct {
	dialect Dialect
}

// NewParser creates a parser for the given dialect.
func NewParser(dialect Dialect) *Parser {
	return &Parser{dialect: dialect}
}

// Dialect returns the parser's dialect.
func (p *Parser) Dialect() Dialect {
	return p.dialect
}

// Parse decomposes a raw token. A leading "#", "#!" or "/" and a trailing "/"
// are ignored.
func (p *Parser) Parse(raw string) (NavigationToken, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "#!")
	s = strings.TrimPrefix(s, "#")
	s = strings.TrimPrefix(s, "/")
	s = strings.TrimSuffix(s, "/")

	if s == "" {
		return NavigationToken{}, errors.MalformedTokenError(raw, "missing shell")
	}

	parts := strings.Split(s, "/")
	for _, part := range parts {
		if part == "" {
			return NavigationToken{}, errors.MalformedTokenError(raw, "empty segment")
		}
	}

	if p.dialect == DialectColon {
		return parseColon(raw, parts)
	}
	return parseSlash(raw, parts)
}

func parseSlash(raw string, parts []string) (NavigationToken, error) {
	shell, err := unescape(raw, parts[0])
	if err != nil {
		return NavigationToken{}, err
	}

	tok := NavigationToken{Raw: raw, ShellID: shell}
	values := make([]string, 0, len(parts)-1)
	for _, part := range parts[1:] {
		v, err := unescape(raw, part)
		if err != nil {
			return NavigationToken{}, err
		}
		tok.segments = append(tok.segments, Segment{Value: v})
		values = append(values, v)
	}
	tok.RoutePath = joinPath(values)
	return tok, nil
}

func parseColon(raw string, parts []string) (NavigationToken, error) {
	last := len(parts) - 1
	for i, part := range parts {
		if i < last && strings.ContainsAny(part, ";:") {
			return NavigationToken{}, errors.MalformedTokenError(raw, "parameter delimiter before the last segment")
		}
	}

	base := parts[last]
	var params []string
	if idx := strings.IndexAny(base, ";:"); idx >= 0 {
		suffix := base[idx:]
		base = base[:idx]

		delim := suffix[0]
		other := byte(':')
		if delim == ':' {
			other = ';'
		}
		if strings.IndexByte(suffix, other) >= 0 {
			return NavigationToken{}, errors.MalformedTokenError(raw, "mixed parameter delimiters")
		}
		if suffix[len(suffix)-1] == delim {
			return NavigationToken{}, errors.MalformedTokenError(raw, "dangling parameter delimiter")
		}
		if base == "" || last == 0 {
			return NavigationToken{}, errors.MalformedTokenError(raw, "parameters without a route segment")
		}
		params = strings.Split(suffix[1:], string(delim))
	}

	shell, err := unescape(raw, parts[0])
	if err != nil {
		return NavigationToken{}, err
	}

	tok := NavigationToken{Raw: raw, ShellID: shell, explicit: true}
	path := make([]string, 0, last+len(params))
	var literals []string
	if last > 0 {
		literals = append(append(literals, parts[1:last]...), base)
	}
	for _, part := range literals {
		v, err := unescape(raw, part)
		if err != nil {
			return NavigationToken{}, err
		}
		tok.segments = append(tok.segments, Segment{Value: v})
		path = append(path, v)
	}
	for _, param := range params {
		v, err := unescape(raw, param)
		if err != nil {
			return NavigationToken{}, err
		}
		tok.segments = append(tok.segments, Segment{Value: v, Param: true})
		tok.ParameterValues = append(tok.ParameterValues, v)
		path = append(path, placeholder)
	}
	tok.RoutePath = joinPath(path)
	return tok, nil
}

// Format builds a token for shellID and a route pattern below it, filling the
// pattern's placeholders with params in order.
func (p *Parser) Format(shellID, pattern string, params ...string) (string, error) {
	segments, _, err := normalizePattern(pattern)
	if err != nil {
		return "", err
	}

	count := 0
	for _, seg := range segments {
		if seg == placeholder {
			count++
		}
	}
	if count != len(params) {
		return "", errors.ValidationError(fmt.Sprintf("route %q takes %d parameters, got %d", pattern, count, len(params)))
	}

	var b strings.Builder
	b.WriteString("/")
	b.WriteString(escape(shellID))

	if p.dialect == DialectSlash {
		next := 0
		for _, seg := range segments {
			b.WriteString("/")
			if seg == placeholder {
				b.WriteString(escape(params[next]))
				next++
				continue
			}
			b.WriteString(escape(seg))
		}
		return b.String(), nil
	}

	literals := len(segments) - count
	for i, seg := range segments {
		if seg == placeholder {
			if i < literals {
				return "", errors.ValidationError(fmt.Sprintf("route %q: colon tokens need trailing parameters", pattern))
			}
			continue
		}
		b.WriteString("/")
		b.WriteString(escape(seg))
	}
	if count > 0 {
		if literals == 0 {
			return "", errors.ValidationError(fmt.Sprintf("route %q: colon tokens need a literal segment before parameters", pattern))
		}
		for _, param := range params {
			b.WriteString(";")
			b.WriteString(escape(param))
		}
	}
	return b.String(), nil
}

// FormatToken re-serializes a matched token in the parser's dialect.
func (p *Parser) FormatToken(tok NavigationToken) (string, error) {
	return p.Format(tok.ShellID, tok.RoutePath, tok.ParameterValues...)
}

func unescape(raw, s string) (string, error) {
	v, err := url.PathUnescape(s)
	if err != nil {
		return "", errors.MalformedTokenError(raw, "invalid escape sequence")
	}
	return v, nil
}

func escape(s string) string {
	return strings.ReplaceAll(url.PathEscape(s), ":", "%3A")
}
