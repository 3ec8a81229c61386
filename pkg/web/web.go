package web

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"
	"time"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Templates parses the page templates.
func Templates() (*template.Template, error) {
	return template.New("").ParseFS(templateFS, "templates/*.html")
}

// Static serves the page's stylesheet and script.
func Static() http.FileSystem {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		// The directory is embedded at build time
		panic(err)
	}
	return http.FS(sub)
}

// Feature is one card in the "Why choose" grid.
type Feature struct {
	Icon  string
	Title string
	Desc  string
}

// Page is the data rendered into index.html.
type Page struct {
	FormAction     string
	UploadEndpoint string
	MaxUploadBytes int64
	SubmitFailed   bool
	Features       []Feature
	Year           int
}

// Features lists the platform pitch shown on the landing page.
var Features = []Feature{
	{Icon: "🎨", Title: "AI-Generated Visuals", Desc: "Create beautiful branded images tailored to your business in seconds."},
	{Icon: "💡", Title: "Fresh Campaign Ideas", Desc: "Never run out of creative concepts for ads, posts, and marketing."},
	{Icon: "✨", Title: "Brand Consistency", Desc: "Keep your brand identity strong and recognizable across all content."},
}

// NewPage builds the landing page data.
func NewPage(formAction, uploadEndpoint string, maxUploadBytes int64, now time.Time) Page {
	return Page{
		FormAction:     formAction,
		UploadEndpoint: uploadEndpoint,
		MaxUploadBytes: maxUploadBytes,
		Features:       Features,
		Year:           now.Year(),
	}
}
