package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/spf13/afero"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"

	"github.com/walteh/useclassy/pkg/finder"
)

// FileNames are the config files Discover looks for, in order.
var FileNames = []string{".useclassy.hcl", ".useclassy.yaml", ".useclassy.yml"}

const DefaultConcurrency = 4

// 📝 Config file structure
type Config struct {
	// 🔍 Globs selecting the templates to rewrite
	Include []string `json:"include,omitempty" hcl:"include,optional" yaml:"include,omitempty"`
	// 🚫 Globs removed from the selection
	Exclude []string `json:"exclude,omitempty" hcl:"exclude,optional" yaml:"exclude,omitempty"`
	// 📦 Write results here instead of in place
	OutputDir string `json:"output_dir,omitempty" hcl:"output_dir,optional" yaml:"output_dir,omitempty"`
	// 🏷️ Replace the extension of written files, e.g. ".html"
	Suffix string `json:"suffix,omitempty" hcl:"suffix,optional" yaml:"suffix,omitempty"`
	// ⚡ Files processed at once
	Concurrency int `json:"concurrency,omitempty" hcl:"concurrency,optional" yaml:"concurrency,omitempty"`
	// 🗜️ Minify output when present
	Minify *MinifyBlock `json:"minify,omitempty" hcl:"minify,block" yaml:"minify,omitempty"`
}

// 🗜️ HTML minification options
type MinifyBlock struct {
	KeepComments   bool `json:"keep_comments,omitempty" hcl:"keep_comments,optional" yaml:"keep_comments,omitempty"`
	KeepWhitespace bool `json:"keep_whitespace,omitempty" hcl:"keep_whitespace,optional" yaml:"keep_whitespace,omitempty"`
}

// Default returns the configuration used when no file is found.
func Default() *Config {
	return &Config{
		Include:     append([]string(nil), finder.DefaultPatterns...),
		Concurrency: DefaultConcurrency,
	}
}

// Loader reads config files from an afero filesystem.
type Loader struct {
	Fs afero.Fs
	// Env is exposed to HCL files as the env object. Nil means the process environment.
	Env map[string]string
}

func NewLoader(fs afero.Fs) *Loader {
	return &Loader{Fs: fs}
}

// Discover returns the path of the first config file in dir, or "" when there is none.
func (l *Loader) Discover(dir string) (string, error) {
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		ok, err := afero.Exists(l.Fs, path)
		if err != nil {
			return "", errors.Errorf("checking %s: %w", path, err)
		}
		if ok {
			return path, nil
		}
	}
	return "", nil
}

// 📝 Load config from file (supports YAML and HCL)
func (l *Loader) Load(path string) (*Config, error) {
	data, err := afero.ReadFile(l.Fs, path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	var cfg Config

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, errors.Errorf("parsing YAML: %w", err)
		}
	} else {
		parser := hclparse.NewParser()
		hclFile, diags := parser.ParseHCL(data, path)
		if diags.HasErrors() {
			return nil, errors.Errorf("parsing HCL: %s", diags.Error())
		}

		ctx := &hcl.EvalContext{
			Variables: map[string]cty.Value{
				"env": l.envValue(),
			},
		}

		diags = gohcl.DecodeBody(hclFile.Body, ctx, &cfg)
		if diags.HasErrors() {
			return nil, errors.Errorf("decoding HCL: %s", diags.Error())
		}
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating %s: %w", path, err)
	}

	return &cfg, nil
}

func (l *Loader) envValue() cty.Value {
	env := l.Env
	if env == nil {
		env = map[string]string{}
		for _, kv := range os.Environ() {
			if k, v, ok := strings.Cut(kv, "="); ok {
				env[k] = v
			}
		}
	}

	vals := make(map[string]cty.Value, len(env))
	for k, v := range env {
		vals[k] = cty.StringVal(v)
	}
	return cty.ObjectVal(vals)
}

func (c *Config) applyDefaults() {
	if len(c.Include) == 0 {
		c.Include = append([]string(nil), finder.DefaultPatterns...)
	}
	if c.Concurrency == 0 {
		c.Concurrency = DefaultConcurrency
	}
}

// Validate reports every problem with c at once.
func (c *Config) Validate() error {
	var result *multierror.Error

	for _, p := range c.Include {
		if err := finder.ValidatePatterns(p); err != nil {
			result = multierror.Append(result, errors.Errorf("include: %w", err))
		}
	}
	for _, p := range c.Exclude {
		if err := finder.ValidatePatterns(p); err != nil {
			result = multierror.Append(result, errors.Errorf("exclude: %w", err))
		}
	}
	if c.Concurrency < 0 {
		result = multierror.Append(result, errors.Errorf("concurrency must not be negative, got %d", c.Concurrency))
	}
	if c.Suffix != "" && !strings.HasPrefix(c.Suffix, ".") {
		result = multierror.Append(result, errors.Errorf("suffix %q must start with a dot", c.Suffix))
	}

	return result.ErrorOrNil()
}
