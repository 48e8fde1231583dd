// Package tmplhook runs the class shorthand rewrite on template source before
// html/template parses it, so templates can use class:MODIFIER="..." directly.
package tmplhook

import (
	"html/template"
	"io/fs"
	"path"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/useclassy/pkg/classy"
)

// Parse rewrites src and parses it as the body of t.
func Parse(t *template.Template, src string) (*template.Template, error) {
	return t.Parse(classy.Transform(src))
}

// ParseFS is template.ParseFS with doublestar patterns and the rewrite applied
// to every file. Each file becomes a template named by its base name; when t
// is nil the first file names the returned template.
func ParseFS(t *template.Template, fsys fs.FS, patterns ...string) (*template.Template, error) {
	seen := map[string]bool{}
	var files []string

	for _, pattern := range patterns {
		matches, err := doublestar.Glob(fsys, pattern)
		if err != nil {
			return nil, errors.Errorf("matching %q: %w", pattern, err)
		}
		sort.Strings(matches)
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				files = append(files, m)
			}
		}
	}

	if len(files) == 0 {
		return nil, errors.Errorf("no files matched %v", patterns)
	}

	for _, file := range files {
		data, err := fs.ReadFile(fsys, file)
		if err != nil {
			return nil, errors.Errorf("reading %s: %w", file, err)
		}

		name := path.Base(file)

		var tmpl *template.Template
		switch {
		case t == nil:
			t = template.New(name)
			tmpl = t
		case name == t.Name():
			tmpl = t
		default:
			tmpl = t.New(name)
		}

		if _, err := Parse(tmpl, string(data)); err != nil {
			return nil, errors.Errorf("parsing %s: %w", file, err)
		}
	}

	return t, nil
}

// Must panics when err is non-nil, like template.Must.
func Must(t *template.Template, err error) *template.Template {
	if err != nil {
		panic(err)
	}
	return t
}
