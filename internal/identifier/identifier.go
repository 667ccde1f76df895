// Package identifier parses generic "<scheme>:<curator>/<value>" persistent
// identifiers such as "doi:10.12345/some/stuff", "ark:/12345/some/stuff" or
// "doi://10.12345/some/stuff".
package identifier

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// SchemeDOI is the scheme name used for Digital Object Identifiers.
const SchemeDOI = "doi"

// ErrInvalidIdentifier is returned when an identifier cannot address a DOI:
// the scheme is not "doi" or the curator (DOI prefix) is missing.
var ErrInvalidIdentifier = errors.New("invalid identifier")

// pattern matches the whole trimmed input. (?s) lets the value span newlines
// so that every string matches. The scheme separator is ":", ":/" or "://".
// The scheme excludes ':' and '/' so a value containing a colon is never
// mistaken for a scheme.
var pattern = regexp.MustCompile(`(?s)\A(?:(?P<scheme>[^:/]*):/{0,2})?(?P<curator>[\w.]*)(?:/?(?P<value>.*))\z`)

var (
	schemeIdx  = pattern.SubexpIndex("scheme")
	curatorIdx = pattern.SubexpIndex("curator")
	valueIdx   = pattern.SubexpIndex("value")
)

// Identifier is a parsed identifier. An empty field means "unset".
type Identifier struct {
	Scheme  string `json:"scheme,omitempty" yaml:"scheme,omitempty"`
	Curator string `json:"curator,omitempty" yaml:"curator,omitempty"`
	Value   string `json:"value,omitempty" yaml:"value,omitempty"`
}

// Parse splits s into scheme, curator and value. Leading and trailing
// whitespace is removed first. When no scheme is present, defaultScheme is
// used (which may itself be empty). Parse never fails.
func Parse(s, defaultScheme string) Identifier {
	s = strings.TrimSpace(s)
	var id Identifier
	if m := pattern.FindStringSubmatch(s); m != nil {
		id = Identifier{
			Scheme:  m[schemeIdx],
			Curator: m[curatorIdx],
			Value:   m[valueIdx],
		}
	}
	if id.Scheme == "" {
		id.Scheme = defaultScheme
	}
	return id
}

func (id Identifier) HasScheme() bool  { return id.Scheme != "" }
func (id Identifier) HasCurator() bool { return id.Curator != "" }
func (id Identifier) HasValue() bool   { return id.Value != "" }

// IsDOI reports whether the identifier uses the doi scheme.
func (id Identifier) IsDOI() bool { return id.Scheme == SchemeDOI }

// Equal compares scheme, curator and value.
func (id Identifier) Equal(o Identifier) bool {
	return id.Scheme == o.Scheme && id.Curator == o.Curator && id.Value == o.Value
}

// String renders "<scheme>:<curator>/<value>", omitting unset parts.
// Without a curator only the "<scheme>:" part is rendered.
func (id Identifier) String() string {
	var b strings.Builder
	if id.HasScheme() {
		b.WriteString(id.Scheme)
		b.WriteByte(':')
	}
	if !id.HasCurator() {
		return b.String()
	}
	b.WriteString(id.Curator)
	if id.HasValue() {
		b.WriteByte('/')
		b.WriteString(id.Value)
	}
	return b.String()
}

// DOIString renders the identifier as "<curator>/<value>", the form DOI
// services expect in URLs. An unset value renders as the empty string.
func (id Identifier) DOIString() (string, error) {
	if !id.HasCurator() {
		return "", fmt.Errorf("%w: provided DOI has no DOI prefix: '%s'", ErrInvalidIdentifier, id)
	}
	return id.Curator + "/" + id.Value, nil
}

// RequireDOI parses raw with the doi default scheme and rejects anything
// that is not a DOI with a prefix.
func RequireDOI(raw string) (Identifier, error) {
	id := Parse(raw, SchemeDOI)
	if !id.IsDOI() {
		return Identifier{}, fmt.Errorf("%w: identifier is not a DOI string: '%s'", ErrInvalidIdentifier, raw)
	}
	if !id.HasCurator() {
		return Identifier{}, fmt.Errorf("%w: provided DOI has no DOI prefix: '%s'", ErrInvalidIdentifier, raw)
	}
	return id, nil
}
