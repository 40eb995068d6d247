
package classifier

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"hackathon-judge/internal/models"
)

const (
	LabelProject = "project"
	LabelBlocked = "blocked"
	LabelEmpty   = "empty"
)

// Classification says whether a fetched page is worth sending to the model.
type Classification struct {
	Label  string            `json:"label"`
	Reason map[string]string `json:"reason,omitempty"`
}

type Classifier struct{}

func New() *Classifier { return &Classifier{} }

// Interstitials are short. A long write-up that happens to mention captchas is
// still a project page.
const maxInterstitialChars = 1500

var challengeRe = regexp.MustCompile(`(?i)just\s+a\s+moment|verify\s+you\s+are\s+(a\s+)?human|are\s+you\s+a\s+robot|captcha|checking\s+your\s+browser|attention\s+required`)
var deniedRe = regexp.MustCompile(`(?i)access\s+denied|403\s+forbidden|too\s+many\s+requests|rate\s+limited`)
var loginRe = regexp.MustCompile(`(?i)(sign|log)\s+in\s+to\s+continue|please\s+(sign|log)\s+in`)
var noScriptRe = regexp.MustCompile(`(?i)enable\s+javascript|javascript\s+is\s+(required|disabled)`)

// Classify labels a fetched project page. Only the headings (<title> and the
// page title) decide "blocked": an interstitial replaces them, while a write-up
// about captchas or rate limits only mentions them in the body. A heading that
// is the gallery name belongs to the project itself. Body markers on a
// short page are reported in Reason with the label left as project.
func (c *Classifier) Classify(p models.ProjectPage, projectName string) Classification {
	text := strings.TrimSpace(p.Description)
	if text == "" {
		return Classification{Label: LabelEmpty, Reason: map[string]string{"text": "no description text"}}
	}
	if utf8.RuneCountInString(text) > maxInterstitialChars {
		return Classification{Label: LabelProject}
	}

	for _, h := range []string{p.DocumentTitle, p.Title} {
		if namesProject(h, projectName) {
			continue
		}
		if reason := markers(h); len(reason) > 0 {
			return Classification{Label: LabelBlocked, Reason: reason}
		}
	}
	if reason := markers(text); len(reason) > 0 {
		return Classification{Label: LabelProject, Reason: reason}
	}
	return Classification{Label: LabelProject}
}

var titleSeps = []string{" | ", " - ", " · ", " – "}

// namesProject reports whether heading is the project's gallery name, alone or
// ahead of a site suffix such as " | Devpost".
func namesProject(heading, name string) bool {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return false
	}
	h := strings.ToLower(strings.TrimSpace(heading))
	if h == name {
		return true
	}
	for _, sep := range titleSeps {
		if before, _, ok := strings.Cut(h, sep); ok && strings.TrimSpace(before) == name {
			return true
		}
	}
	return false
}

func markers(s string) map[string]string {
	reason := map[string]string{}
	if challengeRe.MatchString(s) {
		reason["challenge"] = "bot challenge markers"
	}
	if deniedRe.MatchString(s) {
		reason["denied"] = "access denied or rate limit message"
	}
	if loginRe.MatchString(s) {
		reason["login"] = "sign-in wall"
	}
	if noScriptRe.MatchString(s) {
		reason["javascript"] = "page needs javascript to render"
	}
	return reason
}

// Summary joins the reasons into one line, sorted by key for stable output.
func (c Classification) Summary() string {
	keys := make([]string, 0, len(c.Reason))
	for k := range c.Reason {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, c.Reason[k])
	}
	return strings.Join(parts, "; ")
}
