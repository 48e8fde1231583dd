package classy

import (
	"strconv"
	"strings"
)

const (
	markerOpen  = "__USECLASSY_MODIFIER__"
	markerClose = "__USECLASSY_END__"
)

// placeholders is the side table behind the in-string markers. A marker only
// carries an index; the payload lives in entries so class names containing
// underscores or digits can never be confused with the delimiters.
type placeholders struct {
	open    string
	close   string
	entries []*Shorthand
}

// newPlaceholders picks an opening sentinel that does not already occur in src,
// so a document that literally contains the default sentinel still round-trips.
func newPlaceholders(src string) *placeholders {
	open := markerOpen
	for i := 1; strings.Contains(src, open); i++ {
		open = "__USECLASSY_MODIFIER_" + strconv.Itoa(i) + "__"
	}
	return &placeholders{open: open, close: markerClose}
}

func (p *placeholders) add(s *Shorthand) string {
	p.entries = append(p.entries, s)
	return p.open + strconv.Itoa(len(p.entries)-1) + p.close
}

func (p *placeholders) contains(text string) bool {
	return len(p.entries) > 0 && strings.Contains(text, p.open)
}

// replace rewrites every well-formed marker in text with fn's result. Anything
// that looks like a marker but does not resolve to an entry is left alone.
func (p *placeholders) replace(text string, fn func(*Shorthand) string) string {
	if !p.contains(text) {
		return text
	}

	var b strings.Builder
	b.Grow(len(text))

	rest := text
	for {
		start := strings.Index(rest, p.open)
		if start < 0 {
			b.WriteString(rest)
			break
		}

		entry, width := p.lookup(rest[start:])
		if entry == nil {
			b.WriteString(rest[:start+len(p.open)])
			rest = rest[start+len(p.open):]
			continue
		}

		b.WriteString(rest[:start])
		b.WriteString(fn(entry))
		rest = rest[start+width:]
	}

	return b.String()
}

// lookup resolves the marker at the start of text, returning its entry and the
// marker's byte width.
func (p *placeholders) lookup(text string) (*Shorthand, int) {
	digits := text[len(p.open):]
	end := 0
	for end < len(digits) && digits[end] >= '0' && digits[end] <= '9' {
		end++
	}
	if end == 0 || !strings.HasPrefix(digits[end:], p.close) {
		return nil, 0
	}

	idx, err := strconv.Atoi(digits[:end])
	if err != nil || idx >= len(p.entries) {
		return nil, 0
	}

	return p.entries[idx], len(p.open) + end + len(p.close)
}
