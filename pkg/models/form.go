package models

import (
	"fmt"
	"io"
	"strings"
)

// Represents the lead form posted from the landing page
type LandingFormData struct {
	Name             string `form:"name" json:"name"`
	Email            string `form:"email" json:"email"`
	Link             string `form:"link" json:"link"`
	Logo             string `form:"logo" json:"logo,omitempty"` // Hidden field, set once the logo upload succeeds
	BrandAbout       string `form:"brand_about" json:"brand_about"`
	ImagePreferences string `form:"image_preferences" json:"image_preferences"`
}

// Contact is the pair of sibling form fields attached to a logo upload.
type Contact struct {
	Name  string
	Email string
}

// UploadContext renders the metadata string stored with the asset on the
// media host: "name=<name>|email=<email>".
func (c Contact) UploadContext() string {
	name := c.Name
	if strings.TrimSpace(name) == "" {
		name = "Anonymous"
	}
	return fmt.Sprintf("name=%s|email=%s", name, c.Email)
}

// SelectedFile is one file picked in the logo input.
type SelectedFile struct {
	Filename    string
	ContentType string
	Size        int64
	Content     io.Reader
}
