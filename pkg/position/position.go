package position

import (
	"fmt"
	"strings"

	"github.com/apparentlymart/go-textseg/v13/textseg"
)

// Place is a 1-based line and column. Columns count grapheme clusters, which is
// what an editor shows for text containing multi-byte characters.
type Place struct {
	Line      int
	Character int
}

func (p Place) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Character)
}

type Range struct {
	Start Place
	End   Place
}

// RawPosition represents a position in the source text
type RawPosition struct {
	// Offset is the byte offset in the source text
	Offset int
	// Text is the actual text at this position
	Text string
}

func NewBasicPosition(text string, offset int) RawPosition {
	return RawPosition{Text: text, Offset: offset}
}

// ID returns a unique identifier for this position based on offset and text
func (p RawPosition) ID() string {
	return fmt.Sprintf("%s@%d", p.Text, p.Offset)
}

func (p RawPosition) Length() int {
	return len(p.Text)
}

func (p RawPosition) GetEndPosition() RawPosition {
	return RawPosition{
		Text:   "",
		Offset: p.Offset + p.Length(),
	}
}

// GetLineAndColumn calculates the 1-based line and column of p in text.
// Offsets past the end of text are clamped.
func (p RawPosition) GetLineAndColumn(text string) Place {
	offset := p.Offset
	if offset > len(text) {
		offset = len(text)
	}
	if offset < 0 {
		offset = 0
	}

	before := text[:offset]
	line := strings.Count(before, "\n") + 1
	lineStart := strings.LastIndexByte(before, '\n') + 1

	return Place{Line: line, Character: graphemeCount(before[lineStart:]) + 1}
}

// GetRange calculates the line/column range covered by p
func (p RawPosition) GetRange(fileText string) Range {
	return Range{
		Start: p.GetLineAndColumn(fileText),
		End:   p.GetEndPosition().GetLineAndColumn(fileText),
	}
}

func (p RawPosition) String() string {
	return fmt.Sprintf("%s@%d", p.Text, p.Offset)
}

func graphemeCount(s string) int {
	if s == "" {
		return 0
	}
	n, err := textseg.TokenCount([]byte(s), textseg.ScanGraphemeClusters)
	if err != nil {
		// the segmenter only fails on invalid input, fall back to bytes
		return len(s)
	}
	return n
}
