
package parser

import (
	"bytes"
	"io"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"

	"hackathon-judge/internal/models"
)

type Parser struct{}

func New() *Parser { return &Parser{} }

var (
	whitespaceRe  = regexp.MustCompile(`\s+`)
	spaceBeforeNL = regexp.MustCompile(`\s+\n`)
	projectHrefRe = regexp.MustCompile(`(?i)/(project|software)/`)
)

// contentSelectors are the containers gallery hosts tend to put the write-up in.
const contentSelectors = "#app-details-left, #app-details, article, main"

// Document decodes r to UTF-8 using the Content-Type hint and parses it.
func (p *Parser) Document(r io.Reader, contentType string) (*goquery.Document, error) {
	buf := new(bytes.Buffer)
	if _, err := io.Copy(buf, r); err != nil {
		return nil, err
	}
	data := buf.Bytes()

	enc, _, _ := charset.DetermineEncoding(data, contentType)
	utf8data, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		// fallback: if already utf-8, continue
		if !utf8.Valid(data) {
			return nil, err
		}
		utf8data = data
	}
	return goquery.NewDocumentFromReader(bytes.NewReader(utf8data))
}

// ProjectLinks scans every anchor on a gallery page and returns the ones that
// look like project pages, resolved against pageURL and deduplicated by URL.
// First occurrence wins and page order is kept.
func (p *Parser) ProjectLinks(r io.Reader, contentType, pageURL string) ([]models.Project, error) {
	doc, err := p.Document(r, contentType)
	if err != nil {
		return nil, err
	}
	base, baseErr := url.Parse(pageURL)

	seen := map[string]struct{}{}
	projects := []models.Project{}
	doc.Find("a[href]").Each(func(i int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if !projectHrefRe.MatchString(href) {
			return
		}
		name := collapse(s.Text())
		if utf8.RuneCountInString(name) <= 2 {
			return
		}
		abs := href
		if baseErr == nil {
			if ref, err := url.Parse(href); err == nil {
				abs = base.ResolveReference(ref).String()
			}
		}
		if _, dup := seen[abs]; dup {
			return
		}
		seen[abs] = struct{}{}
		projects = append(projects, models.Project{Name: name, URL: abs})
	})
	return projects, nil
}

// ProjectPage pulls a title and a description out of a project page.
// fallbackTitle is used when the page has no <h1>; "Untitled" when both are empty.
func (p *Parser) ProjectPage(r io.Reader, contentType, fallbackTitle string) (models.ProjectPage, error) {
	doc, err := p.Document(r, contentType)
	if err != nil {
		return models.ProjectPage{}, err
	}

	doc.Find("script,noscript,style").Each(func(i int, s *goquery.Selection) {
		s.Remove()
	})

	docTitle := collapse(doc.Find("title").First().Text())
	title := collapse(doc.Find("h1").First().Text())
	if title == "" {
		title = strings.TrimSpace(fallbackTitle)
	}
	if title == "" {
		title = "Untitled"
	}

	var parts []string
	add := func(s string) {
		if strings.TrimSpace(s) != "" {
			parts = append(parts, s)
		}
	}
	add(doc.Find(`meta[name="description"]`).AttrOr("content", ""))
	add(doc.Find(".large").Text())
	add(doc.Find(contentSelectors).Text())
	add(doc.Find("body").Text())

	desc := spaceBeforeNL.ReplaceAllString(strings.Join(parts, "\n"), "\n")
	return models.ProjectPage{Title: title, Description: strings.TrimSpace(desc), DocumentTitle: docTitle}, nil
}

func collapse(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}
