// Package marker provides canonical parsing/scanning of loclink markers.
//
// Marker grammar:
//
//	(loc <uuid>)
//	(ref <uuid>)
//
// Notes:
//   - One or more whitespace characters separate the token from the UUID.
//     Whitespace is the ASCII set in spaceClass, spelled out so Go's regexp
//     and ripgrep agree on it. ripgrep matches line by line, so a marker
//     split across lines is only found in open documents.
//   - UUIDs are compared as literal, case-sensitive text and are never parsed.
//   - A location's partners are the references that share its UUID, and
//     vice versa.
package marker

import (
	"fmt"
	"regexp"
	"strings"
)

// uuidPattern matches a UUID of the exact shape XXXXXXXX-XXXX-XXXX-XXXX-XXXXXXXXXXXX.
const uuidPattern = `[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}`

// spaceClass is the whitespace allowed between the token and the UUID.
const spaceClass = `[\t\n\v\f\r ]`

var uuidRe = regexp.MustCompile(`^` + uuidPattern + `$`)

// Kind identifies a marker kind. The set of kinds is closed: Location and Reference.
type Kind uint8

const (
	Location Kind = iota
	Reference
)

type descriptor struct {
	name       string
	token      string
	scan       *regexp.Regexp // unanchored, for finding occurrences
	exact      *regexp.Regexp // anchored, for re-validating an interval
	complement Kind
}

var descriptors = [...]descriptor{
	Location:  newDescriptor("location", "loc", Reference),
	Reference: newDescriptor("reference", "ref", Location),
}

func newDescriptor(name, token string, complement Kind) descriptor {
	body := `\(` + token + spaceClass + `+(` + uuidPattern + `)\)`
	return descriptor{
		name:       name,
		token:      token,
		scan:       regexp.MustCompile(body),
		exact:      regexp.MustCompile(`^` + body + `$`),
		complement: complement,
	}
}

// Kinds returns every marker kind in a stable order.
func Kinds() []Kind {
	return []Kind{Location, Reference}
}

// ParseKind accepts "loc", "location", "ref" or "reference".
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "loc", "location":
		return Location, nil
	case "ref", "reference":
		return Reference, nil
	default:
		return 0, fmt.Errorf("unknown marker kind %q (want loc or ref)", s)
	}
}

func (k Kind) desc() descriptor {
	if int(k) >= len(descriptors) {
		panic(fmt.Sprintf("marker: invalid kind %d", k))
	}
	return descriptors[k]
}

// String returns the kind's long name ("location" or "reference").
func (k Kind) String() string {
	if int(k) >= len(descriptors) {
		return fmt.Sprintf("Kind(%d)", k)
	}
	return descriptors[k].name
}

// Token returns the literal opening token ("loc" or "ref").
func (k Kind) Token() string {
	return k.desc().token
}

// Complement returns the partner kind.
func (k Kind) Complement() Kind {
	return k.desc().complement
}

// Regexp returns the unanchored grammar for this kind. The first submatch is the UUID.
func (k Kind) Regexp() *regexp.Regexp {
	return k.desc().scan
}

// Literal formats a marker of this kind for the given UUID, e.g. "(ref 2f40...)".
func (k Kind) Literal(uuid string) string {
	return "(" + k.Token() + " " + uuid + ")"
}

// PatternFor returns a regular expression source matching markers of this
// kind carrying uuid. The source is valid for both Go's regexp package and
// ripgrep.
func (k Kind) PatternFor(uuid string) string {
	return `\(` + k.Token() + spaceClass + `+` + regexp.QuoteMeta(uuid) + `\)`
}

// IsUUID reports whether s is a well-formed UUID.
func IsUUID(s string) bool {
	return uuidRe.MatchString(s)
}

// matchExact matches text exactly against the kind's grammar and returns the UUID.
func (k Kind) matchExact(text string) (string, bool) {
	m := k.desc().exact.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return m[1], true
}
