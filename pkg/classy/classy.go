// Package classy rewrites the class:MODIFIER="..." attribute shorthand into a
// plain class attribute.
//
//	<div class="p-4" class:hover="bg-blue-500 text-white">
//
// becomes
//
//	<div class="p-4 hover:bg-blue-500 hover:text-white" >
//
// The rewrite is a text transform, not an HTML parser. It runs in two passes:
// every shorthand is first swapped for a placeholder, then each <...> span
// holding placeholders has them folded into its class attribute (or a new one).
// Whitespace left behind by removed attributes is kept as-is.
package classy

// Report describes what a single Transform call did.
type Report struct {
	// Shorthands lists every shorthand attribute in source order.
	Shorthands []*Shorthand
	// TagsRewritten counts tag spans that received modifier classes.
	TagsRewritten int
	// ClassesMerged counts tags whose existing class attribute was extended.
	ClassesMerged int
	// ClassesAdded counts tags that got a new class attribute.
	ClassesAdded int
	// Unattached counts shorthands outside any tag span; those are left untouched.
	Unattached int
}

// Changed reports whether the transform altered the source.
func (r *Report) Changed() bool {
	return len(r.Shorthands) > r.Unattached
}

// Transform rewrites every shorthand attribute in src. It never fails: input
// it does not recognise is returned unchanged. Safe for concurrent use.
func Transform(src string) string {
	out, _ := TransformWithReport(src)
	return out
}

// TransformWithReport is Transform that also describes the rewrite.
func TransformWithReport(src string) (string, *Report) {
	report := &Report{}

	p := newPlaceholders(src)
	text := extract(src, p)
	report.Shorthands = p.entries

	return merge(text, p, report), report
}
