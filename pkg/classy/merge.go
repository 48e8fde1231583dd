package classy

import (
	"regexp"
	"strings"
)

const spaceChars = " \t\n\v\f\r"

var (
	tagPattern = regexp.MustCompile(`<[^<>]*>`)

	classAttrPattern = regexp.MustCompile(
		`\bclass=(?:"([^"'` + "`" + `]*)"|'([^"'` + "`" + `]*)'|` + "`" + `([^"'` + "`" + `]*)` + "`" + `)`,
	)
)

// merge folds the placeholders of every tag span into that tag's class
// attribute. Markers left outside any tag are restored to their original text.
func merge(text string, p *placeholders, report *Report) string {
	if !p.contains(text) {
		return text
	}

	text = tagPattern.ReplaceAllStringFunc(text, func(span string) string {
		return mergeTag(span, p, report)
	})

	return p.replace(text, func(s *Shorthand) string {
		report.Unattached++
		return s.Raw
	})
}

func mergeTag(span string, p *placeholders, report *Report) string {
	if !p.contains(span) {
		return span
	}

	var payloads []string
	found := 0
	cleaned := p.replace(span, func(s *Shorthand) string {
		found++
		s.Attached = true
		payloads = append(payloads, s.Payload())
		return ""
	})
	if found == 0 {
		return span
	}

	report.TagsRewritten++
	combined := strings.Join(payloads, " ")

	if loc := classAttrPattern.FindStringSubmatchIndex(cleaned); loc != nil {
		report.ClassesMerged++
		existing := attrValue(cleaned, loc)
		merged := strings.TrimSpace(existing + " " + combined)
		return cleaned[:loc[0]] + `class="` + merged + `"` + cleaned[loc[1]:]
	}

	report.ClassesAdded++
	return insertClassAttr(cleaned, combined)
}

func attrValue(text string, loc []int) string {
	for g := 1; g <= 3; g++ {
		if loc[2*g] >= 0 {
			return text[loc[2*g]:loc[2*g+1]]
		}
	}
	return ""
}

// insertClassAttr adds class="classes" immediately before the closing > of
// span. The whitespace run in front of > collapses into the single separating
// space.
func insertClassAttr(span, classes string) string {
	body := strings.TrimRight(span[:len(span)-1], spaceChars)
	return body + ` class="` + classes + `">`
}
