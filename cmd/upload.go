package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/anaqatech/brand-landing/pkg/clients/cloudinary"
	"github.com/anaqatech/brand-landing/pkg/models"
	"github.com/anaqatech/brand-landing/pkg/services"
)

var (
	uploadName  string
	uploadEmail string
)

var uploadCmd = &cobra.Command{
	Use:   "upload <file>",
	Short: "Upload a logo the way the page does",
	Long: `Run one logo selection against the configured media host and print
the resulting upload state as JSON. Useful to check the Cloudinary preset.

Examples:
  landing upload logo.png --name Acme --email a@acme.com`,
	Args: cobra.ExactArgs(1),
	RunE: runUpload,
}

func init() {
	uploadCmd.Flags().StringVar(&uploadName, "name", "", "name sent in the upload context")
	uploadCmd.Flags().StringVar(&uploadEmail, "email", "", "email sent in the upload context")
}

func runUpload(cmd *cobra.Command, args []string) error {
	cfg, log := appConfig, appLog

	path := args[0]
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("error opening logo: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("error reading logo: %w", err)
	}

	client := cloudinary.NewClient(cfg.CloudinaryBaseURL, cfg.CloudinaryCloudName, nil)
	orchestrator := services.NewUploadOrchestrator(client, cfg.CloudinaryUploadPreset, cfg.UploadTimeout, nil, log)

	state, uploadErr := orchestrator.Select(cmd.Context(), models.SelectedFile{
		Filename: filepath.Base(path),
		Size:     info.Size(),
		Content:  f,
	}, models.Contact{Name: uploadName, Email: uploadEmail})

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(state); err != nil {
		return err
	}

	return uploadErr
}
