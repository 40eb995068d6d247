
package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hackathon-judge/internal/models"
)

const galleryHTML = `<!doctype html><html><body>
<a href="/project/42">Foo</a>
<a href="/about">Team</a>
<a href="https://devpost.com/software/bar-app">
   Bar
   App
</a>
<a href="/project/42">Foo again</a>
<a href="/software/x">ok</a>
<a href="/SOFTWARE/Upper">Upper Case</a>
</body></html>`

func TestProjectLinks(t *testing.T) {
	p := New()
	got, err := p.ProjectLinks(strings.NewReader(galleryHTML), "text/html; charset=utf-8", "https://hack.example.com/gallery?page=1")
	require.NoError(t, err)
	assert.Equal(t, []models.Project{
		{Name: "Foo", URL: "https://hack.example.com/project/42"},
		{Name: "Bar App", URL: "https://devpost.com/software/bar-app"},
		{Name: "Upper Case", URL: "https://hack.example.com/SOFTWARE/Upper"},
	}, got)
}

func TestProjectLinksBadBaseKeepsRawHref(t *testing.T) {
	p := New()
	got, err := p.ProjectLinks(strings.NewReader(`<a href="/project/7">Seven</a>`), "", "::not a url")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "/project/7", got[0].URL)
}

func TestProjectLinksEmptyPage(t *testing.T) {
	got, err := New().ProjectLinks(strings.NewReader(`<html></html>`), "", "https://x.test/")
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NotNil(t, got)
}

const projectHTML = `<!doctype html><html><head>
<title>Judge Bot | Devpost</title>
<meta name="description" content="A tool for judges">
<script>var tracking = "nope";</script>
</head><body>
<h1>  Judge   Bot </h1>
<p class="large">Scores things    
  quickly</p>
<div id="app-details-left"><p>Built with Go.</p></div>
</body></html>`

func TestProjectPage(t *testing.T) {
	page, err := New().ProjectPage(strings.NewReader(projectHTML), "text/html; charset=utf-8", "fallback")
	require.NoError(t, err)
	assert.Equal(t, "Judge Bot", page.Title)
	assert.Equal(t, "Judge Bot | Devpost", page.DocumentTitle)
	assert.NotContains(t, page.Description, "Devpost")
	assert.True(t, strings.HasPrefix(page.Description, "A tool for judges\n"), page.Description)
	assert.Contains(t, page.Description, "Scores things\n")
	assert.Contains(t, page.Description, "Built with Go.")
	assert.NotContains(t, page.Description, "tracking")
	assert.Less(t, strings.Index(page.Description, "Scores things"), strings.Index(page.Description, "Built with Go."))
}

func TestProjectPageTitleFallbacks(t *testing.T) {
	page, err := New().ProjectPage(strings.NewReader(`<html><body><p>hi</p></body></html>`), "", "Harvested Name")
	require.NoError(t, err)
	assert.Equal(t, "Harvested Name", page.Title)

	page, err = New().ProjectPage(strings.NewReader(`<html><body><p>hi</p></body></html>`), "", "")
	require.NoError(t, err)
	assert.Equal(t, "Untitled", page.Title)
}
