package uri

import (
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strings"

	errs "github.com/specialistvlad/wiregrid/internal/errors"
)

// LiteralScheme is the scheme used to represent literal parameter values.
const LiteralScheme = "s"

var schemeRegex = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_.-]*$`)

// CompoundURI is the parsed form of a compound URI string.
type CompoundURI struct {
	Scheme     string
	Name       string
	Fragment   string
	Parameters map[string]*CompoundURI
}

// NewLiteral returns a URI in the literal scheme wrapping value.
func NewLiteral(value string) *CompoundURI {
	return &CompoundURI{Scheme: LiteralScheme, Name: value}
}

// SchemeOf returns the scheme prefix of s if s is syntactically a compound URI.
func SchemeOf(s string) (string, bool) {
	i := strings.IndexByte(s, ':')
	if i <= 0 {
		return "", false
	}
	scheme := s[:i]
	if !schemeRegex.MatchString(scheme) {
		return "", false
	}
	return scheme, true
}

// Parse parses the string form of a compound URI.
func Parse(s string) (*CompoundURI, error) {
	scheme, ok := SchemeOf(s)
	if !ok {
		return nil, fmt.Errorf("%w: %q has no scheme", errs.ErrInvalidURI, s)
	}

	tokens, err := splitTopLevel(s[len(scheme)+1:], '+')
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", errs.ErrInvalidURI, s, err)
	}

	u := &CompoundURI{Scheme: scheme}
	head := tokens[0]
	if i := strings.IndexByte(head, '#'); i >= 0 {
		u.Fragment = unescape(head[i+1:])
		head = head[:i]
	}
	u.Name = unescape(head)

	for _, tok := range tokens[1:] {
		i := strings.IndexAny(tok, "=@")
		if i <= 0 {
			return nil, fmt.Errorf("%w: %q: malformed parameter %q", errs.ErrInvalidURI, s, tok)
		}
		name, value := tok[:i], tok[i+1:]
		if u.Parameters == nil {
			u.Parameters = make(map[string]*CompoundURI)
		}

		if tok[i] == '=' {
			u.Parameters[name] = NewLiteral(unescape(unbracket(value)))
			continue
		}

		nested, err := Parse(unbracket(value))
		if err != nil {
			return nil, fmt.Errorf("parameter %q of %q: %w", name, s, err)
		}
		u.Parameters[name] = nested
	}

	return u, nil
}

// MustParse is like Parse but panics on malformed input.
func MustParse(s string) *CompoundURI {
	u, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return u
}

// IsLiteral reports whether u represents a literal parameter value.
func (u *CompoundURI) IsLiteral() bool {
	return u.Scheme == LiteralScheme && u.Fragment == "" && len(u.Parameters) == 0
}

// ParameterNames returns the parameter names in resolution order.
func (u *CompoundURI) ParameterNames() []string {
	names := make([]string, 0, len(u.Parameters))
	for name := range u.Parameters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Copy returns a deep copy of u.
func (u *CompoundURI) Copy() *CompoundURI {
	if u == nil {
		return nil
	}
	c := &CompoundURI{Scheme: u.Scheme, Name: u.Name, Fragment: u.Fragment}
	if len(u.Parameters) > 0 {
		c.Parameters = make(map[string]*CompoundURI, len(u.Parameters))
		for k, v := range u.Parameters {
			c.Parameters[k] = v.Copy()
		}
	}
	return c
}

// WithName returns a copy of u with a different name.
func (u *CompoundURI) WithName(name string) *CompoundURI {
	c := u.Copy()
	c.Name = name
	return c
}

// String serializes u into its canonical string form. Parameters are
// written in sorted order.
func (u *CompoundURI) String() string {
	if u == nil {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(u.Scheme)
	sb.WriteByte(':')
	sb.WriteString(escape(u.Name, "%+#"))
	if u.Fragment != "" {
		sb.WriteByte('#')
		sb.WriteString(escape(u.Fragment, "%+"))
	}
	for _, name := range u.ParameterNames() {
		p := u.Parameters[name]
		sb.WriteByte('+')
		sb.WriteString(name)
		if p.IsLiteral() {
			sb.WriteByte('=')
			sb.WriteString(escape(p.Name, "%+[]"))
			continue
		}
		sb.WriteByte('@')
		nested := p.String()
		if strings.ContainsAny(nested, "+[") {
			sb.WriteString("[" + nested + "]")
		} else {
			sb.WriteString(nested)
		}
	}
	return sb.String()
}

// splitTopLevel splits s on sep, ignoring separators nested in brackets.
func splitTopLevel(s string, sep byte) ([]string, error) {
	var tokens []string
	depth, start := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '[':
			depth++
		case ']':
			depth--
			if depth < 0 {
				return nil, fmt.Errorf("unbalanced ']' at offset %d", i)
			}
		case sep:
			if depth == 0 {
				tokens = append(tokens, s[start:i])
				start = i + 1
			}
		}
	}
	if depth != 0 {
		return nil, fmt.Errorf("unbalanced '['")
	}
	return append(tokens, s[start:]), nil
}

func unbracket(s string) string {
	if len(s) >= 2 && s[0] == '[' && s[len(s)-1] == ']' {
		return s[1 : len(s)-1]
	}
	return s
}

func unescape(s string) string {
	if !strings.Contains(s, "%") {
		return s
	}
	out, err := url.PathUnescape(s)
	if err != nil {
		return s
	}
	return out
}

func escape(s, chars string) string {
	if !strings.ContainsAny(s, chars) {
		return s
	}
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		if strings.IndexByte(chars, s[i]) >= 0 {
			fmt.Fprintf(&sb, "%%%02X", s[i])
			continue
		}
		sb.WriteByte(s[i])
	}
	return sb.String()
}
