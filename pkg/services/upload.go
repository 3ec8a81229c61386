package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/anaqatech/brand-landing/pkg/clients/cloudinary"
	"github.com/anaqatech/brand-landing/pkg/metrics"
	"github.com/anaqatech/brand-landing/pkg/models"
	"github.com/anaqatech/brand-landing/pkg/utils"
)

// MaxLogoSize is the largest logo accepted, in bytes.
const MaxLogoSize int64 = 3 * 1024 * 1024

// Messages shown under the logo input.
const (
	MsgFileTooLarge = "File size must be less than 3MB"
	MsgUploadFailed = "Upload failed, please try again."
)

var (
	ErrFileTooLarge = errors.New("logo exceeds the 3MB limit")
	ErrUploadFailed = errors.New("logo upload failed")
	// ErrSuperseded is returned when a newer selection replaced this one while
	// its upload was in flight. The result was discarded.
	ErrSuperseded = errors.New("logo upload superseded by a newer selection")
)

// UploadOrchestrator validates a selected logo, uploads it to the media host
// and tracks the state the page renders. One orchestrator serves one browser
// session; only the most recent selection's outcome is ever observable.
type UploadOrchestrator struct {
	uploader cloudinary.Client
	preset   string
	timeout  time.Duration
	metrics  *metrics.Recorder
	log      *zap.Logger

	mu         sync.Mutex
	state      models.UploadState
	generation uint64
}

// NewUploadOrchestrator creates an orchestrator in the idle state.
func NewUploadOrchestrator(
	uploader cloudinary.Client,
	preset string,
	timeout time.Duration,
	recorder *metrics.Recorder,
	log *zap.Logger,
) *UploadOrchestrator {
	return &UploadOrchestrator{
		uploader: uploader,
		preset:   preset,
		timeout:  timeout,
		metrics:  recorder,
		log:      log,
		state:    models.UploadState{Phase: models.PhaseIdle},
	}
}

// State returns a snapshot of the current upload state.
func (o *UploadOrchestrator) State() models.UploadState {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Reset returns the orchestrator to idle. An upload still in flight is
// superseded and its result dropped.
func (o *UploadOrchestrator) Reset() models.UploadState {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.generation++
	o.state = models.UploadState{Phase: models.PhaseIdle, Generation: o.generation}
	return o.state
}

// Select handles one file selection. Files over MaxLogoSize are rejected
// without contacting the media host; anything else is uploaded exactly once
// under the orchestrator's deadline. The returned state is the one the page
// should render for this selection.
func (o *UploadOrchestrator) Select(ctx context.Context, file models.SelectedFile, contact models.Contact) (models.UploadState, error) {
	o.mu.Lock()
	o.generation++
	gen := o.generation

	if file.Size > MaxLogoSize {
		o.state = models.UploadState{
			Phase:      models.PhaseError,
			Error:      MsgFileTooLarge,
			LogoURL:    o.state.LogoURL,
			ResetInput: true,
			Generation: gen,
		}
		state := o.state
		o.mu.Unlock()

		o.metrics.ObserveUpload(metrics.OutcomeTooLarge)
		o.log.Info("Rejected oversized logo",
			zap.String("filename", file.Filename),
			zap.Int64("size", file.Size),
			zap.Uint64("generation", gen))
		return state, ErrFileTooLarge
	}

	o.state = models.UploadState{
		Phase:      models.PhaseUploading,
		Uploading:  true,
		Generation: gen,
	}
	o.mu.Unlock()

	// Clears the uploading flag if the upload panics before settling.
	defer o.abandon(gen)

	o.log.Info("Uploading logo",
		zap.String("filename", file.Filename),
		zap.Int64("size", file.Size),
		zap.String("email_hash", utils.HashEmail(contact.Email)),
		zap.Uint64("generation", gen))

	uploadCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	start := time.Now()
	resp, err := o.uploader.UploadImage(uploadCtx, cloudinary.UploadRequest{
		Filename: file.Filename,
		File:     file.Content,
		Preset:   o.preset,
		Context:  contact.UploadContext(),
	})
	o.metrics.ObserveUploadDuration(time.Since(start))

	return o.settle(gen, resp, err)
}

func (o *UploadOrchestrator) settle(gen uint64, resp *cloudinary.UploadResponse, err error) (models.UploadState, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if gen != o.generation {
		o.metrics.ObserveUpload(metrics.OutcomeStale)
		o.log.Info("Discarding superseded logo upload",
			zap.Uint64("generation", gen),
			zap.Uint64("current_generation", o.generation),
			zap.Error(err))
		return o.state, ErrSuperseded
	}

	if err != nil {
		o.state = models.UploadState{
			Phase:      models.PhaseError,
			Error:      MsgUploadFailed,
			Generation: gen,
		}
		o.metrics.ObserveUpload(metrics.OutcomeFailed)
		o.log.Error("Logo upload failed", zap.Uint64("generation", gen), zap.Error(err))
		return o.state, fmt.Errorf("%w: %w", ErrUploadFailed, err)
	}

	o.state = models.UploadState{
		Phase:      models.PhaseSuccess,
		LogoURL:    resp.SecureURL,
		Generation: gen,
	}
	o.metrics.ObserveUpload(metrics.OutcomeSuccess)
	o.log.Info("Logo uploaded",
		zap.String("public_id", resp.PublicID),
		zap.Uint64("generation", gen))
	return o.state, nil
}

func (o *UploadOrchestrator) abandon(gen uint64) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if gen == o.generation && o.state.Uploading {
		o.state = models.UploadState{
			Phase:      models.PhaseError,
			Error:      MsgUploadFailed,
			Generation: gen,
		}
		o.metrics.ObserveUpload(metrics.OutcomeFailed)
	}
}
