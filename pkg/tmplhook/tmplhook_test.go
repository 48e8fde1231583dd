package tmplhook_test

import (
	"bytes"
	"html/template"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walteh/useclassy/pkg/tmplhook"
)

func TestParse(t *testing.T) {
	tmpl, err := tmplhook.Parse(template.New("card"), `<div class="p-4" class:hover="shadow-lg">{{ .Title }}</div>`)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, tmpl.Execute(&buf, map[string]string{"Title": "Hello"}))

	assert.Equal(t, `<div class="p-4 hover:shadow-lg" >Hello</div>`, buf.String())
}

func TestParseFS(t *testing.T) {
	fsys := fstest.MapFS{
		"views/layout.html":        {Data: []byte(`<body class:dark="bg-black">{{ template "nav.html" . }}</body>`)},
		"views/partials/nav.html":  {Data: []byte(`<nav class:md:hover="underline">{{ .User }}</nav>`)},
		"views/partials/notes.txt": {Data: []byte(`class:hover="x"`)},
	}

	tmpl, err := tmplhook.ParseFS(nil, fsys, "views/*.html", "views/**/*.html")
	require.NoError(t, err)
	assert.Equal(t, "layout.html", tmpl.Name())
	assert.NotNil(t, tmpl.Lookup("nav.html"))
	assert.Nil(t, tmpl.Lookup("notes.txt"))

	var buf bytes.Buffer
	require.NoError(t, tmpl.Execute(&buf, map[string]string{"User": "ann"}))

	assert.Equal(t, `<body class="dark:bg-black"><nav class="md:hover:underline">ann</nav></body>`, buf.String())
}

func TestParseFSErrors(t *testing.T) {
	fsys := fstest.MapFS{
		"bad.html": {Data: []byte(`<div class:hover="x">{{ .Broken </div>`)},
	}

	_, err := tmplhook.ParseFS(nil, fsys, "*.tmpl")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no files matched")

	_, err = tmplhook.ParseFS(nil, fsys, "[")
	require.Error(t, err)

	_, err = tmplhook.ParseFS(nil, fsys, "*.html")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing bad.html")
}

func TestMust(t *testing.T) {
	assert.Panics(t, func() {
		tmplhook.Must(tmplhook.Parse(template.New("x"), "{{ .Broken"))
	})
	assert.NotPanics(t, func() {
		tmplhook.Must(tmplhook.Parse(template.New("x"), `<p class:hover="a">ok</p>`))
	})
}
