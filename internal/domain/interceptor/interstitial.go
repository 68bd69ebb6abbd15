package interceptor

import (
	"bytes"
	"fmt"
	"html/template"
)

// Page is the kind of interstitial shown for a denied top-level navigation
type Page string

const (
	PageNone            Page = ""
	PageBlocked         Page = "blocked-content"
	PageWrongMode       Page = "wrong-mode"
	PageResolutionError Page = "resolution-error"
)

// PageFor maps a deny reason to its interstitial
func PageFor(r Reason) Page {
	switch r {
	case ReasonBlocklistMatch:
		return PageBlocked
	case ReasonCrossModeViolation:
		return PageWrongMode
	case ReasonUnregisteredAddress:
		return PageResolutionError
	default:
		return PageNone
	}
}

type pageCopy struct {
	Title       string
	Heading     string
	Message     string
	Remediation string
}

var pageText = map[Page]pageCopy{
	PageBlocked: {
		Title:       "Site blocked",
		Heading:     "This site is blocked",
		Message:     "The address matches an entry on the block list.",
		Remediation: "If this is a mistake, ask an administrator to add the site to the allow list.",
	},
	PageWrongMode: {
		Title:       "Not available in this mode",
		Heading:     "This page belongs to the other mode",
		Message:     "Pages from one mode never load inside the other.",
		Remediation: "Switch modes to open this address.",
	},
	PageResolutionError: {
		Title:       "Address not found",
		Heading:     "This private address could not be opened",
		Message:     "No location is registered for this address, or it has no content.",
		Remediation: "Check the address for typos, or return to the home page.",
	},
}

const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="navguard-page" content="{{.Page}}">
<title>{{.Title}}</title>
<style>
body{font-family:system-ui,sans-serif;max-width:40rem;margin:4rem auto;padding:0 1rem;color:#222}
code{word-break:break-all;background:#f3f3f3;padding:.1rem .3rem}
.detail{color:#666;font-size:.9rem}
</style>
</head>
<body>
<h1>{{.Heading}}</h1>
<p>{{.Message}}</p>
<p><code>{{.URL}}</code></p>
{{- if .Pattern}}
<p class="detail">Matched rule: <code>{{.Pattern}}</code></p>
{{- end}}
{{- if .Detail}}
<p class="detail">{{.Detail}}</p>
{{- end}}
<p>{{.Remediation}}</p>
</body>
</html>
`

// Pages renders interstitials
type Pages struct {
	tmpl *template.Template
}

// NewPages parses the interstitial template
func NewPages() *Pages {
	return &Pages{tmpl: template.Must(template.New("interstitial").Parse(pageTemplate))}
}

// Render returns the interstitial HTML for d, or "" when d needs none
func (p *Pages) Render(d Decision) (string, error) {
	page := d.Page()
	if page == PageNone {
		return "", nil
	}
	text := pageText[page]

	data := struct {
		Page        Page
		Title       string
		Heading     string
		Message     string
		Remediation string
		URL         string
		Pattern     string
		Detail      string
	}{
		Page:        page,
		Title:       text.Title,
		Heading:     text.Heading,
		Message:     text.Message,
		Remediation: text.Remediation,
		URL:         d.URL,
		Detail:      d.Detail,
	}
	if d.MatchedRule != nil {
		data.Pattern = d.MatchedRule.Pattern
	}

	var buf bytes.Buffer
	if err := p.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render %s page: %w", page, err)
	}
	return buf.String(), nil
}
