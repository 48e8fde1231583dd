package classy

import (
	"regexp"
	"strings"
)

// shorthandPattern matches class:MODIFIER="value". The value excludes every
// quote character, which keeps the match linear and mirrors how the closing
// quote is found.
var shorthandPattern = regexp.MustCompile(
	`\bclass:(\w+(?::\w+)*)=(?:"([^"'` + "`" + `]*)"|'([^"'` + "`" + `]*)'|` + "`" + `([^"'` + "`" + `]*)` + "`" + `)`,
)

// Shorthand is a single class:MODIFIER="..." attribute found in the source.
type Shorthand struct {
	// Modifier is the full colon-joined path, e.g. "dark:hover".
	Modifier string
	// Quote is the delimiter used around the value.
	Quote byte
	// Value is the raw text between the quotes.
	Value string
	// Classes holds every token of Value prefixed with Modifier, in order.
	Classes []string
	// Offset is the byte offset of the attribute in the source.
	Offset int
	// Raw is the attribute text exactly as written.
	Raw string
	// Attached is set once the classes were merged into a tag. Shorthands
	// outside any tag stay detached and are written back unchanged.
	Attached bool
}

// Payload is the space-joined modifier classes carried by the placeholder.
func (s *Shorthand) Payload() string {
	return strings.Join(s.Classes, " ")
}

func newShorthand(src string, loc []int) *Shorthand {
	s := &Shorthand{
		Modifier: src[loc[2]:loc[3]],
		Offset:   loc[0],
		Raw:      src[loc[0]:loc[1]],
	}

	// groups 2..4 are the double, single and backtick alternatives
	for g := 2; g <= 4; g++ {
		if loc[2*g] >= 0 {
			s.Value = src[loc[2*g]:loc[2*g+1]]
			s.Quote = src[loc[2*g]-1]
			break
		}
	}

	for _, token := range strings.Fields(s.Value) {
		s.Classes = append(s.Classes, s.Modifier+":"+token)
	}

	return s
}

// extract replaces every shorthand attribute in src with a placeholder marker.
func extract(src string, p *placeholders) string {
	matches := shorthandPattern.FindAllStringSubmatchIndex(src, -1)
	if len(matches) == 0 {
		return src
	}

	var b strings.Builder
	b.Grow(len(src))

	last := 0
	for _, loc := range matches {
		b.WriteString(src[last:loc[0]])
		b.WriteString(p.add(newShorthand(src, loc)))
		last = loc[1]
	}
	b.WriteString(src[last:])

	return b.String()
}
