package models

// Phase is the step of the logo upload lifecycle.
type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhaseUploading Phase = "uploading"
	PhaseSuccess   Phase = "success"
	PhaseError     Phase = "error"
)

// UploadState is what the page renders below the logo input.
type UploadState struct {
	Phase     Phase  `json:"phase"`
	Uploading bool   `json:"uploading"`
	Error     string `json:"error,omitempty"`
	LogoURL   string `json:"logo_url,omitempty"`
	// ResetInput tells the page to clear the file input and force a new selection.
	ResetInput bool   `json:"reset_input,omitempty"`
	Generation uint64 `json:"generation"`
}
