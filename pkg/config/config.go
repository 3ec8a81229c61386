package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration values
type Config struct {
	Port    string
	GinMode string

	LogLevel string

	CloudinaryBaseURL      string
	CloudinaryCloudName    string
	CloudinaryUploadPreset string

	FormspreeBaseURL string
	FormspreeFormID  string
	// FormRelay points the lead form at this service's /submit route instead of
	// posting straight to Formspree from the browser.
	FormRelay bool

	UploadTimeout time.Duration
	SessionTTL    time.Duration
}

// LoadConfig reads configuration from environment variables, falling back to
// the production defaults of the landing page.
func LoadConfig() (*Config, error) {
	v := viper.New()

	v.SetDefault("PORT", "8080")
	v.SetDefault("GIN_MODE", "release")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("CLOUDINARY_BASE_URL", "https://api.cloudinary.com")
	v.SetDefault("CLOUDINARY_CLOUD_NAME", "dxa6dotza")
	v.SetDefault("CLOUDINARY_UPLOAD_PRESET", "Ai_marketing_content")
	v.SetDefault("FORMSPREE_BASE_URL", "https://formspree.io")
	v.SetDefault("FORMSPREE_FORM_ID", "mgvljjkv")
	v.SetDefault("FORM_RELAY", false)
	v.SetDefault("UPLOAD_TIMEOUT", "30s")
	v.SetDefault("SESSION_TTL", "30m")

	v.AutomaticEnv()

	cfg := &Config{
		Port:                   v.GetString("PORT"),
		GinMode:                v.GetString("GIN_MODE"),
		LogLevel:               v.GetString("LOG_LEVEL"),
		CloudinaryBaseURL:      strings.TrimRight(v.GetString("CLOUDINARY_BASE_URL"), "/"),
		CloudinaryCloudName:    v.GetString("CLOUDINARY_CLOUD_NAME"),
		CloudinaryUploadPreset: v.GetString("CLOUDINARY_UPLOAD_PRESET"),
		FormspreeBaseURL:       strings.TrimRight(v.GetString("FORMSPREE_BASE_URL"), "/"),
		FormspreeFormID:        v.GetString("FORMSPREE_FORM_ID"),
		FormRelay:              v.GetBool("FORM_RELAY"),
		UploadTimeout:          v.GetDuration("UPLOAD_TIMEOUT"),
		SessionTTL:             v.GetDuration("SESSION_TTL"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.GinMode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("GIN_MODE must be debug, release or test, got %q", c.GinMode)
	}
	if c.CloudinaryCloudName == "" {
		return fmt.Errorf("CLOUDINARY_CLOUD_NAME must be set")
	}
	if c.CloudinaryUploadPreset == "" {
		return fmt.Errorf("CLOUDINARY_UPLOAD_PRESET must be set")
	}
	if c.FormspreeFormID == "" {
		return fmt.Errorf("FORMSPREE_FORM_ID must be set")
	}
	if c.UploadTimeout <= 0 {
		return fmt.Errorf("UPLOAD_TIMEOUT must be positive, got %s", c.UploadTimeout)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive, got %s", c.SessionTTL)
	}
	return nil
}

// FormspreeEndpoint is the public URL the lead form posts to.
func (c *Config) FormspreeEndpoint() string {
	return fmt.Sprintf("%s/f/%s", c.FormspreeBaseURL, c.FormspreeFormID)
}

// FormAction is the action attribute rendered on the lead form.
func (c *Config) FormAction() string {
	if c.FormRelay {
		return "/submit"
	}
	return c.FormspreeEndpoint()
}
