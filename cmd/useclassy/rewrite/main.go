package rewrite

// rewrite holds the transform, check and diff commands. All three find
// templates the same way and differ only in what they do with the results.

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/useclassy/pkg/config"
	"github.com/walteh/useclassy/pkg/diagnostic"
	"github.com/walteh/useclassy/pkg/processor"
)

// ErrWouldChange is returned by check when a template still uses the shorthand.
var ErrWouldChange = errors.Base("templates need rewriting")

type Handler struct {
	mode processor.Mode
	fs   afero.Fs

	dir         string
	configPath  string
	include     []string
	exclude     []string
	outputDir   string
	suffix      string
	minify      bool
	concurrency int
	format      string

	changed func(name string) bool
}

func NewTransformCommand() *cobra.Command {
	return newCommand(processor.ModeWrite, &cobra.Command{
		Use:   "transform [dir]",
		Short: "rewrite class:modifier shorthand in template files",
	})
}

func NewCheckCommand() *cobra.Command {
	return newCommand(processor.ModeCheck, &cobra.Command{
		Use:   "check [dir]",
		Short: "fail if any template still uses class:modifier shorthand",
	})
}

func NewDiffCommand() *cobra.Command {
	return newCommand(processor.ModeDiff, &cobra.Command{
		Use:   "diff [dir]",
		Short: "show the rewrite as a diff without writing",
	})
}

func newCommand(mode processor.Mode, cmd *cobra.Command) *cobra.Command {
	me := &Handler{mode: mode, fs: afero.NewOsFs()}

	cmd.Flags().StringVar(&me.configPath, "config", "", "config file (.hcl or .yaml), defaults to .useclassy.* in dir")
	cmd.Flags().StringSliceVar(&me.include, "include", nil, "globs selecting templates")
	cmd.Flags().StringSliceVar(&me.exclude, "exclude", nil, "globs excluded from the selection")
	cmd.Flags().IntVar(&me.concurrency, "concurrency", config.DefaultConcurrency, "files processed at once")
	cmd.Flags().BoolVar(&me.minify, "minify", false, "minify the rewritten html")
	if mode == processor.ModeWrite {
		cmd.Flags().StringVar(&me.outputDir, "out", "", "write results here instead of in place")
		cmd.Flags().StringVar(&me.suffix, "suffix", "", "replace the extension of written files")
	}
	if mode == processor.ModeCheck {
		cmd.Flags().StringVar(&me.format, "format", "text", "diagnostics format: text, json or vscode")
	}

	cmd.Args = cobra.MaximumNArgs(1)
	cmd.SilenceUsage = true

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		me.dir = "."
		if len(args) == 1 {
			me.dir = args[0]
		}
		me.changed = cmd.Flags().Changed
		return me.Run(cmd.Context(), cmd.OutOrStdout())
	}

	return cmd
}

// WithFs swaps the filesystem, for tests.
func (me *Handler) WithFs(fs afero.Fs) *Handler {
	me.fs = fs
	return me
}

func (me *Handler) loadConfig() (*config.Config, error) {
	loader := config.NewLoader(me.fs)

	path := me.configPath
	if path == "" {
		found, err := loader.Discover(me.dir)
		if err != nil {
			return nil, errors.Errorf("discovering config: %w", err)
		}
		path = found
	}

	cfg := config.Default()
	if path != "" {
		loaded, err := loader.Load(path)
		if err != nil {
			return nil, errors.Errorf("loading config: %w", err)
		}
		cfg = loaded
	}

	changed := me.changed
	if changed == nil {
		changed = func(string) bool { return false }
	}

	if changed("include") {
		cfg.Include = me.include
	}
	if changed("exclude") {
		cfg.Exclude = append(cfg.Exclude, me.exclude...)
	}
	if changed("concurrency") {
		cfg.Concurrency = me.concurrency
	}
	if changed("out") {
		cfg.OutputDir = me.outputDir
	}
	if changed("suffix") {
		cfg.Suffix = me.suffix
	}
	if me.minify && cfg.Minify == nil {
		cfg.Minify = &config.MinifyBlock{}
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("invalid options: %w", err)
	}

	return cfg, nil
}

func (me *Handler) Run(ctx context.Context, out io.Writer) error {
	cfg, err := me.loadConfig()
	if err != nil {
		return err
	}

	var formatter diagnostic.Formatter
	if me.mode == processor.ModeCheck {
		formatter, err = diagnostic.NewFormatter(me.format)
		if err != nil {
			return errors.Errorf("invalid options: %w", err)
		}
	}

	opts := processor.OptionsFromConfig(me.dir, cfg, me.mode)

	results, runErr := processor.New(me.fs).Run(ctx, opts)

	changed := 0
	var diags []*diagnostic.Diagnostics
	for _, res := range results {
		if res.Changed {
			changed++
			diags = append(diags, res.Diagnostics)
		}
		me.print(out, res)
	}

	if formatter != nil && (len(diags) > 0 || me.format != "text") {
		formatted, err := formatter.Format(diags)
		if err != nil {
			return errors.Errorf("formatting diagnostics: %w", err)
		}
		if _, err := out.Write(formatted); err != nil {
			return errors.Errorf("writing diagnostics: %w", err)
		}
	}

	switch me.mode {
	case processor.ModeWrite:
		fmt.Fprintf(out, "✅ %s\n", color.New(color.FgGreen).Sprintf("rewrote %d of %d templates", changed, len(results)))
	case processor.ModeCheck:
		if changed == 0 && runErr == nil && me.format == "text" {
			fmt.Fprintf(out, "✅ %s\n", color.New(color.FgGreen).Sprintf("%d templates up to date", len(results)))
		}
	}

	if runErr != nil {
		return errors.Errorf("processing %s: %w", me.dir, runErr)
	}

	if me.mode == processor.ModeCheck && changed > 0 {
		return errors.Errorf("%d of %d: %w", changed, len(results), ErrWouldChange)
	}

	return nil
}

func (me *Handler) print(out io.Writer, res *processor.Result) {
	if !res.Changed {
		return
	}

	switch me.mode {
	case processor.ModeWrite:
		fmt.Fprintf(out, "%s %s %s\n",
			color.New(color.FgBlue).Sprint("⟳"),
			res.Path,
			color.New(color.Faint).Sprintf("(%d shorthands)", len(res.Report.Shorthands)))
	case processor.ModeDiff:
		fmt.Fprint(out, res.Diff)
	}
}
