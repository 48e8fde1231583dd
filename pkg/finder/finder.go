package finder

import (
	"context"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"
)

// DefaultPatterns are the template files rewritten when nothing else is configured.
var DefaultPatterns = []string{"**/*.html", "**/*.tmpl", "**/*.gohtml"}

// TemplateFinder is responsible for finding template files in a directory
type TemplateFinder interface {
	// FindTemplates returns the slash-separated paths, relative to dir, of every
	// file matching one of patterns and none of excludes.
	FindTemplates(ctx context.Context, dir string, patterns, excludes []string) ([]string, error)
}

// DefaultFinder is the default implementation of TemplateFinder
type DefaultFinder struct {
	fs afero.Fs
}

// NewDefaultFinder creates a new DefaultFinder reading from fs
func NewDefaultFinder(fs afero.Fs) *DefaultFinder {
	return &DefaultFinder{fs: fs}
}

// ValidatePatterns reports the first malformed glob.
func ValidatePatterns(patterns ...string) error {
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return errors.Errorf("invalid glob pattern %q", p)
		}
	}
	return nil
}

// FindTemplates implements TemplateFinder
func (f *DefaultFinder) FindTemplates(ctx context.Context, dir string, patterns, excludes []string) ([]string, error) {
	if len(patterns) == 0 {
		patterns = DefaultPatterns
	}

	if err := ValidatePatterns(patterns...); err != nil {
		return nil, err
	}
	if err := ValidatePatterns(excludes...); err != nil {
		return nil, err
	}

	var found []string

	err := afero.Walk(f.fs, dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return errors.Errorf("relative path of %s: %w", path, err)
		}
		rel = filepath.ToSlash(rel)

		if info.IsDir() {
			if rel != "." && matchAny(excludes, rel) {
				return filepath.SkipDir
			}
			return nil
		}

		if matchAny(patterns, rel) && !matchAny(excludes, rel) {
			found = append(found, rel)
		}

		return nil
	})
	if err != nil {
		return nil, errors.Errorf("walking %s: %w", dir, err)
	}

	sort.Strings(found)

	return found, nil
}

func matchAny(patterns []string, name string) bool {
	for _, p := range patterns {
		if doublestar.MatchUnvalidated(p, name) {
			return true
		}
	}
	return false
}
