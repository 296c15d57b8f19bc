package server

import (
	_ "embed"
	"html/template"

	"github.com/dgellow/webex-implicit/internal/implicit"
)

//go:embed templates/index.html
var indexPageTemplateHTML string

var indexPageTemplate = template.Must(template.New("index").Parse(indexPageTemplateHTML))

// IndexPageData represents the data for the login demo page
type IndexPageData struct {
	Title            string
	Link             implicit.Link
	RedirectURI      string // decoded, for display only
	FragmentEndpoint string
	ProfileEndpoint  string
}
