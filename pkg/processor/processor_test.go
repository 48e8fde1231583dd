package processor_test

import (
	"context"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/walteh/useclassy/pkg/classy"
	"github.com/walteh/useclassy/pkg/config"
	"github.com/walteh/useclassy/pkg/diff"
	"github.com/walteh/useclassy/pkg/position"
	"github.com/walteh/useclassy/pkg/processor"
)

const (
	indexSrc = "<main>\n  <div class=\"p-4\" class:hover=\"bg-blue-500\">Content</div>\n</main>"
	indexOut = "<main>\n  <div class=\"p-4 hover:bg-blue-500\" >Content</div>\n</main>"
	navSrc   = `<nav class:md="flex">x</nav>`
	navOut   = `<nav class="md:flex">x</nav>`
	plainSrc = `<p class="text-sm">plain</p>`
)

func setupFs(t *testing.T) afero.Fs {
	t.Helper()

	fs := afero.NewMemMapFs()
	files := map[string]string{
		"/site/index.html":          indexSrc,
		"/site/partials/nav.tmpl":   navSrc,
		"/site/partials/plain.html": plainSrc,
		"/site/readme.md":           `class:hover="ignored"`,
	}
	for name, content := range files {
		require.NoError(t, afero.WriteFile(fs, name, []byte(content), 0644))
	}
	return fs
}

func readFile(t *testing.T, fs afero.Fs, name string) string {
	t.Helper()

	data, err := afero.ReadFile(fs, name)
	require.NoError(t, err)
	return string(data)
}

func TestRunWriteInPlace(t *testing.T) {
	fs := setupFs(t)

	results, err := processor.New(fs).Run(context.Background(), processor.Options{
		Dir:  "/site",
		Mode: processor.ModeWrite,
	})
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "index.html", results[0].Path)
	assert.True(t, results[0].Changed)
	assert.Equal(t, "/site/index.html", results[0].Output)

	assert.Equal(t, "partials/plain.html", results[2].Path)
	assert.False(t, results[2].Changed)
	assert.Empty(t, results[2].Output)

	assert.Equal(t, indexOut, readFile(t, fs, "/site/index.html"))
	assert.Equal(t, navOut, readFile(t, fs, "/site/partials/nav.tmpl"))
	assert.Equal(t, plainSrc, readFile(t, fs, "/site/partials/plain.html"))
	assert.Equal(t, `class:hover="ignored"`, readFile(t, fs, "/site/readme.md"))
}

func TestRunWriteOutputDir(t *testing.T) {
	fs := setupFs(t)

	results, err := processor.New(fs).Run(context.Background(), processor.Options{
		Dir:       "/site",
		OutputDir: "dist",
		Suffix:    ".html",
		Mode:      processor.ModeWrite,
	})
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, indexOut, readFile(t, fs, "/site/dist/index.html"))
	assert.Equal(t, navOut, readFile(t, fs, "/site/dist/partials/nav.html"))
	assert.Equal(t, plainSrc, readFile(t, fs, "/site/dist/partials/plain.html"))
	assert.Equal(t, indexSrc, readFile(t, fs, "/site/index.html"), "sources are untouched")

	// a second run must not pick up its own output
	results, err = processor.New(fs).Run(context.Background(), processor.Options{
		Dir:       "/site",
		OutputDir: "dist",
		Mode:      processor.ModeCheck,
	})
	require.NoError(t, err)
	assert.Len(t, results, 3)
}

func TestRunCheck(t *testing.T) {
	fs := setupFs(t)

	results, err := processor.New(fs).Run(context.Background(), processor.Options{
		Dir:  "/site",
		Mode: processor.ModeCheck,
	})
	require.NoError(t, err)
	require.Len(t, results, 3)

	index := results[0]
	assert.True(t, index.Changed)
	assert.Empty(t, index.Output)
	require.Len(t, index.Diagnostics.Items, 1)
	assert.Equal(t, "index.html", index.Diagnostics.File)
	assert.Equal(t, position.Place{Line: 2, Character: 20}, index.Diagnostics.Items[0].Range.Start)
	assert.Equal(t, `class:hover="bg-blue-500" → hover:bg-blue-500`, index.Diagnostics.Items[0].Message)

	want := &classy.Report{
		Shorthands: []*classy.Shorthand{{
			Modifier: "hover",
			Quote:    '"',
			Value:    "bg-blue-500",
			Classes:  []string{"hover:bg-blue-500"},
			Offset:   26,
			Raw:      `class:hover="bg-blue-500"`,
			Attached: true,
		}},
		TagsRewritten: 1,
		ClassesMerged: 1,
	}
	if d := diff.DiffExportedOnly(want, index.Report); d != "" {
		t.Errorf("unexpected report: %s", d)
	}

	assert.Equal(t, indexSrc, readFile(t, fs, "/site/index.html"), "check never writes")
}

func TestRunDiff(t *testing.T) {
	fs := setupFs(t)

	results, err := processor.New(fs).Run(context.Background(), processor.Options{
		Dir:     "/site",
		Include: []string{"**/*.html"},
		Mode:    processor.ModeDiff,
	})
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, diff.Text("index.html", indexSrc, indexOut), results[0].Diff)
	assert.Empty(t, results[1].Diff)
	assert.Equal(t, indexSrc, readFile(t, fs, "/site/index.html"), "diff never writes")
}

func TestRunMinify(t *testing.T) {
	fs := afero.NewMemMapFs()
	src := "<ul>\n    <li class:hover=\"underline\">  {{ .Name }}  </li>\n</ul>\n"
	require.NoError(t, afero.WriteFile(fs, "/site/list.html", []byte(src), 0644))

	results, err := processor.New(fs).Run(context.Background(), processor.Options{
		Dir:    "/site",
		Minify: &config.MinifyBlock{},
		Mode:   processor.ModeWrite,
	})
	require.NoError(t, err)
	require.Len(t, results, 1)

	got := readFile(t, fs, "/site/list.html")
	assert.Contains(t, got, `class="hover:underline"`)
	assert.Contains(t, got, "{{ .Name }}")
	assert.Less(t, len(got), len(src))
	assert.NotContains(t, got, "\n    ")
}

func TestRunCheckMinifyIgnoresWhitespace(t *testing.T) {
	fs := afero.NewMemMapFs()
	files := map[string]string{
		"/site/plain.html": "<p   class=\"x\">  hi  </p>\n",
		"/site/hover.html": "<p   class:hover=\"x\">  hi  </p>\n",
	}
	for name, content := range files {
		require.NoError(t, afero.WriteFile(fs, name, []byte(content), 0644))
	}

	results, err := processor.New(fs).Run(context.Background(), processor.Options{
		Dir:    "/site",
		Minify: &config.MinifyBlock{},
		Mode:   processor.ModeCheck,
	})
	require.NoError(t, err)
	require.Len(t, results, 2)

	byPath := map[string]*processor.Result{}
	for _, res := range results {
		byPath[res.Path] = res
	}

	assert.False(t, byPath["plain.html"].Changed)
	assert.Empty(t, byPath["plain.html"].Diagnostics.Items)

	assert.True(t, byPath["hover.html"].Changed)
	assert.Len(t, byPath["hover.html"].Diagnostics.Items, 1)
}

type staticFinder []string

func (f staticFinder) FindTemplates(context.Context, string, []string, []string) ([]string, error) {
	return f, nil
}

func TestRunCollectsFileErrors(t *testing.T) {
	fs := setupFs(t)

	p := processor.New(fs).WithFinder(staticFinder{"index.html", "missing.html", "gone.tmpl"})
	results, err := p.Run(context.Background(), processor.Options{
		Dir:         "/site",
		Concurrency: 1,
		Mode:        processor.ModeCheck,
	})

	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 2)
	assert.True(t, strings.Contains(err.Error(), "missing.html") && strings.Contains(err.Error(), "gone.tmpl"), err.Error())

	require.Len(t, results, 1)
	assert.Equal(t, "index.html", results[0].Path)
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.OutputDir = "out"

	opts := processor.OptionsFromConfig("/site", cfg, processor.ModeDiff)

	assert.Equal(t, "/site", opts.Dir)
	assert.Equal(t, cfg.Include, opts.Include)
	assert.Equal(t, "out", opts.OutputDir)
	assert.Equal(t, config.DefaultConcurrency, opts.Concurrency)
	assert.Equal(t, processor.ModeDiff, opts.Mode)
}
