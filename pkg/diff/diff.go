package diff

import (
	"fmt"
	"strings"

	"github.com/k0kubun/pp/v3"
	"github.com/kylelemons/godebug/diff"
)

// ContextLines is how many unchanged lines Text keeps around each change.
const ContextLines = 2

// Text renders a line diff turning before into after, labelled with name.
// It returns "" when the two are identical.
func Text(name, before, after string) string {
	if before == after {
		return ""
	}

	chunks := diff.DiffChunks(strings.Split(before, "\n"), strings.Split(after, "\n"))

	var b strings.Builder
	fmt.Fprintf(&b, "--- %s\n+++ %s\n", name, name)

	for i, c := range chunks {
		for _, line := range c.Deleted {
			b.WriteString("-" + line + "\n")
		}
		for _, line := range c.Added {
			b.WriteString("+" + line + "\n")
		}
		writeContext(&b, c.Equal, i == 0 && len(c.Added)+len(c.Deleted) == 0, i == len(chunks)-1)
	}

	return b.String()
}

// writeContext trims a run of equal lines down to the context that borders
// a change: the tail for the leading run, the head for the trailing one and
// both ends for anything in between.
func writeContext(b *strings.Builder, equal []string, leading, trailing bool) {
	n := len(equal)
	switch {
	case leading && trailing:
		return
	case leading:
		if n > ContextLines {
			b.WriteString("@@\n")
			equal = equal[n-ContextLines:]
		}
	case trailing:
		if n > ContextLines {
			equal = equal[:ContextLines]
		}
	case n > 2*ContextLines:
		for _, line := range equal[:ContextLines] {
			b.WriteString(" " + line + "\n")
		}
		b.WriteString("@@\n")
		equal = equal[n-ContextLines:]
	}

	for _, line := range equal {
		b.WriteString(" " + line + "\n")
	}
}

func DiffExportedOnly[T any](want T, got T) string {
	printer := pp.New()
	printer.SetExportedOnly(true)
	printer.SetColoringEnabled(false)

	gotStr, wantStr := printer.Sprint(got), printer.Sprint(want)
	if gotStr == wantStr {
		return ""
	}

	abc := diff.Diff(gotStr, wantStr)

	str := "\n\n"
	str += "to convert ACTUAL ⏩️ EXPECTED:\n\n"
	str += "add:    ➕\n"
	str += "remove: ➖\n"
	str += "\n"
	str += strings.ReplaceAll(strings.ReplaceAll(abc, "\n-", "\n➖"), "\n+", "\n➕")

	return str
}
