package diagnostic

import (
	"encoding/json"
	"fmt"
	"strings"

	"gitlab.com/tozd/go/errors"

	"github.com/walteh/useclassy/pkg/classy"
	"github.com/walteh/useclassy/pkg/position"
)

// Severity follows the LSP numbering so VSCode output needs no mapping.
type Severity int

const (
	SeverityError       Severity = 1
	SeverityWarning     Severity = 2
	SeverityInformation Severity = 3
	SeverityHint        Severity = 4
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInformation:
		return "info"
	case SeverityHint:
		return "hint"
	}
	return fmt.Sprintf("severity(%d)", int(s))
}

// Diagnostic represents a single diagnostic message
type Diagnostic struct {
	Message  string
	Location position.RawPosition
	Range    position.Range
	Severity Severity
}

// Diagnostics holds every diagnostic for one file
type Diagnostics struct {
	File  string
	Items []Diagnostic
}

// Generate describes each shorthand in report. Shorthands that will be
// rewritten are warnings; those outside any tag are informational since the
// rewrite leaves them alone.
func Generate(file, text string, report *classy.Report) *Diagnostics {
	diags := &Diagnostics{File: file, Items: make([]Diagnostic, 0, len(report.Shorthands))}

	for _, s := range report.Shorthands {
		loc := position.NewBasicPosition(s.Raw, s.Offset)
		d := Diagnostic{
			Location: loc,
			Range:    loc.GetRange(text),
			Severity: SeverityWarning,
			Message:  s.Raw + " → " + expansion(s),
		}
		if !s.Attached {
			d.Severity = SeverityInformation
			d.Message = s.Raw + " is outside a tag and left as-is"
		}
		diags.Items = append(diags.Items, d)
	}

	return diags
}

func expansion(s *classy.Shorthand) string {
	if len(s.Classes) == 0 {
		return "(no classes)"
	}
	return s.Payload()
}

// Formatter formats diagnostics into different output formats
type Formatter interface {
	// Format formats diagnostics into a specific output format
	Format(diagnostics []*Diagnostics) ([]byte, error)
}

// NewFormatter returns the formatter for name: "text", "json" or "vscode".
func NewFormatter(name string) (Formatter, error) {
	switch name {
	case "", "text":
		return &TextFormatter{}, nil
	case "json", "vscode":
		return &VSCodeFormatter{}, nil
	}
	return nil, errors.Errorf("unknown diagnostics format %q", name)
}

// TextFormatter writes one file:line:col: message line per diagnostic
type TextFormatter struct{}

// Format implements Formatter
func (f *TextFormatter) Format(diagnostics []*Diagnostics) ([]byte, error) {
	var b strings.Builder
	for _, file := range diagnostics {
		if file == nil {
			continue
		}
		for _, d := range file.Items {
			fmt.Fprintf(&b, "%s:%s: %s\n", file.File, d.Range.Start, d.Message)
		}
	}
	return []byte(b.String()), nil
}

// VSCodeFormatter formats diagnostics into VSCode-compatible format
type VSCodeFormatter struct{}

type vscodePosition struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

type vscodeRange struct {
	Start vscodePosition `json:"start"`
	End   vscodePosition `json:"end"`
}

type vscodeDiagnostic struct {
	Severity Severity    `json:"severity"`
	Message  string      `json:"message"`
	Source   string      `json:"source"`
	Range    vscodeRange `json:"range"`
}

type vscodeFile struct {
	File        string             `json:"file"`
	Diagnostics []vscodeDiagnostic `json:"diagnostics"`
}

// VSCode positions are 0-based
func toVSCode(p position.Place) vscodePosition {
	return vscodePosition{Line: p.Line - 1, Character: p.Character - 1}
}

// Format implements Formatter
func (f *VSCodeFormatter) Format(diagnostics []*Diagnostics) ([]byte, error) {
	result := make([]vscodeFile, 0, len(diagnostics))

	for _, file := range diagnostics {
		if file == nil {
			return nil, errors.Errorf("diagnostics is nil")
		}

		vf := vscodeFile{File: file.File, Diagnostics: make([]vscodeDiagnostic, 0, len(file.Items))}
		for _, d := range file.Items {
			vf.Diagnostics = append(vf.Diagnostics, vscodeDiagnostic{
				Severity: d.Severity,
				Message:  d.Message,
				Source:   "useclassy",
				Range: vscodeRange{
					Start: toVSCode(d.Range.Start),
					End:   toVSCode(d.Range.End),
				},
			})
		}
		result = append(result, vf)
	}

	out, err := json.Marshal(result)
	if err != nil {
		return nil, errors.Errorf("marshalling diagnostics: %w", err)
	}
	return out, nil
}
