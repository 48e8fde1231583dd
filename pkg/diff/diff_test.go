package diff_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/walteh/useclassy/pkg/diff"
)

func TestText(t *testing.T) {
	before := "<html>\n<body>\n<main>\n<div class:hover=\"x\">\n</div>\n</main>\n</body>\n</html>"
	after := "<html>\n<body>\n<main>\n<div class=\"hover:x\">\n</div>\n</main>\n</body>\n</html>"

	got := diff.Text("index.html", before, after)

	assert.True(t, strings.HasPrefix(got, "--- index.html\n+++ index.html\n"), got)
	assert.Contains(t, got, "-<div class:hover=\"x\">\n")
	assert.Contains(t, got, "+<div class=\"hover:x\">\n")
	assert.Contains(t, got, " <main>\n")
	assert.Contains(t, got, " </div>\n")
	assert.NotContains(t, got, " <html>\n")
	assert.NotContains(t, got, " </html>\n")
}

func TestTextIdentical(t *testing.T) {
	assert.Empty(t, diff.Text("a.html", "<p></p>", "<p></p>"))
}

func TestDiffExportedOnly(t *testing.T) {
	type item struct {
		Name  string
		Count int
	}

	assert.Empty(t, diff.DiffExportedOnly(item{Name: "a", Count: 1}, item{Name: "a", Count: 1}))

	got := diff.DiffExportedOnly(item{Name: "a", Count: 1}, item{Name: "a", Count: 2})
	assert.Contains(t, got, "to convert ACTUAL")
	assert.Contains(t, got, "➕")
	assert.Contains(t, got, "➖")
}
