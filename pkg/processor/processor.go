// Package processor applies the shorthand rewrite to trees of template files.
package processor

import (
	"context"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/html"
	"gitlab.com/tozd/go/errors"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/walteh/useclassy/pkg/classy"
	"github.com/walteh/useclassy/pkg/config"
	"github.com/walteh/useclassy/pkg/diagnostic"
	"github.com/walteh/useclassy/pkg/diff"
	"github.com/walteh/useclassy/pkg/finder"
)

type Mode string

const (
	// ModeWrite writes the rewritten files.
	ModeWrite Mode = "write"
	// ModeCheck only reports which files would change.
	ModeCheck Mode = "check"
	// ModeDiff reports a diff per changed file.
	ModeDiff Mode = "diff"
)

type Options struct {
	Dir         string
	Include     []string
	Exclude     []string
	OutputDir   string
	Suffix      string
	Concurrency int
	Minify      *config.MinifyBlock
	Mode        Mode
}

// OptionsFromConfig builds Options for dir from a loaded config.
func OptionsFromConfig(dir string, cfg *config.Config, mode Mode) Options {
	return Options{
		Dir:         dir,
		Include:     cfg.Include,
		Exclude:     cfg.Exclude,
		OutputDir:   cfg.OutputDir,
		Suffix:      cfg.Suffix,
		Concurrency: cfg.Concurrency,
		Minify:      cfg.Minify,
		Mode:        mode,
	}
}

// Result describes one processed file.
type Result struct {
	// Path is relative to Options.Dir, slash separated.
	Path string
	// Output is the file written, empty when nothing was written.
	Output      string
	Changed     bool
	Report      *classy.Report
	Diagnostics *diagnostic.Diagnostics
	Diff        string
}

type Processor struct {
	fs     afero.Fs
	finder finder.TemplateFinder
}

func New(fs afero.Fs) *Processor {
	return &Processor{fs: fs, finder: finder.NewDefaultFinder(fs)}
}

// WithFinder replaces the finder used to select files.
func (p *Processor) WithFinder(f finder.TemplateFinder) *Processor {
	p.finder = f
	return p
}

// Run processes every selected file. A failing file does not stop the others;
// all failures are returned together alongside the results that succeeded.
func (p *Processor) Run(ctx context.Context, opts Options) ([]*Result, error) {
	logger := zerolog.Ctx(ctx)

	files, err := p.finder.FindTemplates(ctx, opts.Dir, opts.Include, excludes(opts))
	if err != nil {
		return nil, errors.Errorf("finding templates: %w", err)
	}

	logger.Debug().Str("dir", opts.Dir).Int("files", len(files)).Str("mode", string(opts.Mode)).Msg("found templates")

	limit := opts.Concurrency
	if limit <= 0 {
		limit = config.DefaultConcurrency
	}

	results := make([]*Result, len(files))

	var (
		mu   sync.Mutex
		errs error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, rel := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			res, err := p.ProcessFile(gctx, opts, rel)
			if err != nil {
				mu.Lock()
				errs = multierr.Append(errs, errors.Errorf("processing %s: %w", rel, err))
				mu.Unlock()
				return nil
			}

			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, errors.Errorf("processing templates: %w", err)
	}

	done := make([]*Result, 0, len(results))
	changed := 0
	for _, res := range results {
		if res == nil {
			continue
		}
		if res.Changed {
			changed++
		}
		done = append(done, res)
	}

	logger.Info().Int("files", len(done)).Int("changed", changed).Int("failed", len(multierr.Errors(errs))).Msg("processed templates")

	return done, errs
}

// ProcessFile rewrites the single file rel (relative to opts.Dir).
func (p *Processor) ProcessFile(ctx context.Context, opts Options, rel string) (*Result, error) {
	src := filepath.Join(opts.Dir, filepath.FromSlash(rel))

	data, err := afero.ReadFile(p.fs, src)
	if err != nil {
		return nil, errors.Errorf("reading: %w", err)
	}
	input := string(data)

	rewritten, report := classy.TransformWithReport(input)

	output := rewritten
	if opts.Minify != nil {
		output, err = minifyHTML(opts.Minify, rewritten)
		if err != nil {
			return nil, errors.Errorf("minifying: %w", err)
		}
	}

	// check asks whether the shorthand rewrite changes the file, so minify
	// whitespace alone never fails it
	changed := output != input
	if opts.Mode == ModeCheck {
		changed = rewritten != input
	}

	res := &Result{
		Path:        rel,
		Changed:     changed,
		Report:      report,
		Diagnostics: diagnostic.Generate(rel, input, report),
	}

	zerolog.Ctx(ctx).Debug().
		Str("file", rel).
		Int("shorthands", len(report.Shorthands)).
		Int("tags", report.TagsRewritten).
		Int("unattached", report.Unattached).
		Bool("changed", res.Changed).
		Msg("rewrote template")

	switch opts.Mode {
	case ModeCheck:
		return res, nil
	case ModeDiff:
		res.Diff = diff.Text(rel, input, output)
		return res, nil
	}

	dest := destination(opts, rel)
	if dest == src && !res.Changed {
		return res, nil
	}

	if err := p.fs.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return nil, errors.Errorf("creating output directory: %w", err)
	}
	if err := afero.WriteFile(p.fs, dest, []byte(output), 0644); err != nil {
		return nil, errors.Errorf("writing %s: %w", dest, err)
	}
	res.Output = dest

	return res, nil
}

// excludes adds an output directory nested under Dir to the exclusions so
// written files are not picked up again on the next run.
func excludes(opts Options) []string {
	out := opts.Exclude
	if opts.OutputDir == "" || filepath.IsAbs(opts.OutputDir) {
		return out
	}

	nested := filepath.ToSlash(filepath.Clean(opts.OutputDir))
	if nested == "." || nested == ".." || strings.HasPrefix(nested, "../") {
		return out
	}

	return append(append([]string(nil), out...), nested, nested+"/**")
}

func destination(opts Options, rel string) string {
	if opts.Suffix != "" {
		rel = strings.TrimSuffix(rel, path.Ext(rel)) + opts.Suffix
	}

	base := opts.Dir
	if opts.OutputDir != "" {
		base = opts.OutputDir
		if !filepath.IsAbs(base) {
			base = filepath.Join(opts.Dir, base)
		}
	}

	return filepath.Join(base, filepath.FromSlash(rel))
}

var (
	minifiersMu sync.Mutex
	minifiers   = map[config.MinifyBlock]*minify.M{}
)

// getMinifier returns the shared minifier for opts, building it on first use.
func getMinifier(opts config.MinifyBlock) *minify.M {
	minifiersMu.Lock()
	defer minifiersMu.Unlock()

	if m, ok := minifiers[opts]; ok {
		return m
	}

	m := minify.New()
	m.Add("text/html", &html.Minifier{
		KeepComments:        opts.KeepComments,
		KeepWhitespace:      opts.KeepWhitespace,
		KeepDefaultAttrVals: true,
		KeepDocumentTags:    true,
		KeepEndTags:         true,
		KeepQuotes:          true,
		TemplateDelims:      [2]string{"{{", "}}"},
	})
	minifiers[opts] = m
	return m
}

func minifyHTML(opts *config.MinifyBlock, src string) (string, error) {
	out, err := getMinifier(*opts).String("text/html", src)
	if err != nil {
		return "", errors.Errorf("minify html: %w", err)
	}
	return out, nil
}
