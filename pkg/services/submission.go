package services

import (
	"context"
	"fmt"
	"net/url"

	"go.uber.org/zap"

	"github.com/anaqatech/brand-landing/pkg/clients/formspree"
	"github.com/anaqatech/brand-landing/pkg/metrics"
	"github.com/anaqatech/brand-landing/pkg/models"
	"github.com/anaqatech/brand-landing/pkg/utils"
)

// LandingSubmissionService defines the interface for relaying lead form submissions
type LandingSubmissionService interface {
	ProcessLandingSubmission(ctx context.Context, data models.LandingFormData) error
}

type landingSubmissionServiceImpl struct {
	formspreeClient formspree.Client
	metrics         *metrics.Recorder
	log             *zap.Logger
}

// NewLandingSubmissionService creates a new submission service
func NewLandingSubmissionService(
	formspreeClient formspree.Client,
	recorder *metrics.Recorder,
	log *zap.Logger,
) LandingSubmissionService {
	return &landingSubmissionServiceImpl{
		formspreeClient: formspreeClient,
		metrics:         recorder,
		log:             log,
	}
}

// ProcessLandingSubmission forwards the lead form to Formspree as the browser
// would have posted it. The logo field is only sent when an upload succeeded.
func (s *landingSubmissionServiceImpl) ProcessLandingSubmission(ctx context.Context, data models.LandingFormData) error {
	emailHash := utils.HashEmail(data.Email)

	s.log.Info("Relaying landing submission",
		zap.String("email_hash", emailHash),
		zap.Bool("has_logo", data.Logo != ""))

	if err := s.formspreeClient.Submit(ctx, submissionFields(data)); err != nil {
		s.metrics.ObserveSubmission(metrics.OutcomeFailed)
		s.log.Error("Error relaying submission", zap.String("email_hash", emailHash), zap.Error(err))
		return fmt.Errorf("error relaying submission: %w", err)
	}

	s.metrics.ObserveSubmission(metrics.OutcomeSuccess)
	s.log.Info("Submission relayed", zap.String("email_hash", emailHash))
	return nil
}

func submissionFields(data models.LandingFormData) url.Values {
	fields := url.Values{}
	fields.Set("name", data.Name)
	fields.Set("email", data.Email)
	fields.Set("link", data.Link)
	if data.Logo != "" {
		fields.Set("logo", data.Logo)
	}
	fields.Set("brand_about", data.BrandAbout)
	fields.Set("image_preferences", data.ImagePreferences)
	return fields
}
