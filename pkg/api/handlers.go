package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/anaqatech/brand-landing/pkg/config"
	"github.com/anaqatech/brand-landing/pkg/models"
	"github.com/anaqatech/brand-landing/pkg/services"
	"github.com/anaqatech/brand-landing/pkg/web"
)

const (
	sessionCookie = "landing_session"
	logoEndpoint  = "/api/logo"

	// Room for the name/email fields and multipart framing around the file.
	maxFormOverhead int64 = 1 << 20
)

// Handlers contains all HTTP handlers for the landing page
type Handlers struct {
	sessions          *services.SessionRegistry
	submissionService services.LandingSubmissionService
	cfg               *config.Config
	log               *zap.Logger
	now               func() time.Time
}

// NewHandlers creates a new Handlers instance
func NewHandlers(
	sessions *services.SessionRegistry,
	submissionService services.LandingSubmissionService,
	cfg *config.Config,
	log *zap.Logger,
) *Handlers {
	return &Handlers{
		sessions:          sessions,
		submissionService: submissionService,
		cfg:               cfg,
		log:               log,
		now:               time.Now,
	}
}

// HealthCheck handler for monitoring
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// Index renders the landing page
func (h *Handlers) Index(c *gin.Context) {
	h.sessionID(c)

	page := web.NewPage(h.cfg.FormAction(), logoEndpoint, services.MaxLogoSize, h.now())
	page.SubmitFailed = c.Query("error") == "submit"

	c.HTML(http.StatusOK, "index.html", page)
}

// Thanks renders the page shown after a relayed submission
func (h *Handlers) Thanks(c *gin.Context) {
	c.HTML(http.StatusOK, "thanks.html", gin.H{"Year": h.now().Year()})
}

// UploadLogo runs the session's upload orchestrator for one file selection
func (h *Handlers) UploadLogo(c *gin.Context) {
	orchestrator := h.sessions.Get(h.sessionID(c))

	limit := services.MaxLogoSize + maxFormOverhead
	if c.Request.ContentLength > limit {
		h.rejectOversized(c, orchestrator, c.Request.ContentLength)
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		if isBodyTooLarge(err) {
			h.rejectOversized(c, orchestrator, limit+1)
			return
		}
		h.log.Warn("Logo upload without a file", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "No logo file provided"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.log.Error("Error opening uploaded logo", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error reading logo"})
		return
	}
	defer file.Close()

	// Name and email arrive with the file so the upload never reads page state
	contact := models.Contact{
		Name:  c.PostForm("name"),
		Email: c.PostForm("email"),
	}

	state, err := orchestrator.Select(c.Request.Context(), models.SelectedFile{
		Filename:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Size:        fileHeader.Size,
		Content:     file,
	}, contact)

	c.JSON(uploadStatus(err), state)
}

// LogoState reports the session's current upload state
func (h *Handlers) LogoState(c *gin.Context) {
	orchestrator, ok := h.sessions.Lookup(h.sessionID(c))
	if !ok {
		c.JSON(http.StatusOK, models.UploadState{Phase: models.PhaseIdle})
		return
	}
	c.JSON(http.StatusOK, orchestrator.State())
}

// ResetLogo discards the session's upload result
func (h *Handlers) ResetLogo(c *gin.Context) {
	orchestrator, ok := h.sessions.Lookup(h.sessionID(c))
	if !ok {
		c.JSON(http.StatusOK, models.UploadState{Phase: models.PhaseIdle})
		return
	}
	c.JSON(http.StatusOK, orchestrator.Reset())
}

// HandleLandingSubmission relays the lead form to the form processor
func (h *Handlers) HandleLandingSubmission(c *gin.Context) {
	var landingData models.LandingFormData
	if err := c.ShouldBind(&landingData); err != nil {
		h.log.Warn("Error parsing submission", zap.Error(err))
		c.Redirect(http.StatusSeeOther, "/?error=submit#contact")
		return
	}

	if err := h.submissionService.ProcessLandingSubmission(c.Request.Context(), landingData); err != nil {
		c.Redirect(http.StatusSeeOther, "/?error=submit#contact")
		return
	}

	c.Redirect(http.StatusSeeOther, "/thanks")
}

func (h *Handlers) rejectOversized(c *gin.Context, orchestrator *services.UploadOrchestrator, size int64) {
	state, err := orchestrator.Select(c.Request.Context(), models.SelectedFile{Size: size}, models.Contact{})
	// The body was left unread
	c.Header("Connection", "close")
	c.JSON(uploadStatus(err), state)
}

// sessionID returns the browser's session id, issuing a cookie on first visit.
func (h *Handlers) sessionID(c *gin.Context) string {
	if id, err := c.Cookie(sessionCookie); err == nil {
		if _, err := uuid.Parse(id); err == nil {
			return id
		}
	}

	id := uuid.NewString()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookie, id, int(h.cfg.SessionTTL.Seconds()), "/", "", c.Request.TLS != nil, true)
	// Visible to later reads within this request
	c.Request.AddCookie(&http.Cookie{Name: sessionCookie, Value: id})
	return id
}

func uploadStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, services.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, services.ErrSuperseded):
		return http.StatusConflict
	default:
		return http.StatusBadGateway
	}
}

func isBodyTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return true
	}
	return strings.Contains(err.Error(), "request body too large")
}
