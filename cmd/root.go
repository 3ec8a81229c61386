package cmd

import (
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/anaqatech/brand-landing/pkg/config"
	"github.com/anaqatech/brand-landing/pkg/logger"
)

var (
	appConfig *config.Config
	appLog    *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "landing",
	Short: "Brand details landing page",
	Long: `Serves the AI marketing content landing page and its lead form.

The logo picked in the form is uploaded to Cloudinary by this service,
and the form itself is posted to Formspree.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(); err != nil {
			log.Println("No .env file loaded")
		}

		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("error loading config: %w", err)
		}

		l, err := logger.New(cfg.LogLevel)
		if err != nil {
			return err
		}

		appConfig = cfg
		appLog = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if appLog != nil {
			_ = appLog.Sync()
		}
	},
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(uploadCmd)
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}
