package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/anaqatech/brand-landing/pkg/clients/cloudinary"
	"github.com/anaqatech/brand-landing/pkg/config"
	"github.com/anaqatech/brand-landing/pkg/metrics"
	"github.com/anaqatech/brand-landing/pkg/models"
	"github.com/anaqatech/brand-landing/pkg/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubUploader struct {
	mu       sync.Mutex
	requests []cloudinary.UploadRequest
	err      error
}

func (s *stubUploader) UploadImage(_ context.Context, req cloudinary.UploadRequest) (*cloudinary.UploadResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, req)
	if s.err != nil {
		return nil, s.err
	}
	return &cloudinary.UploadResponse{SecureURL: "https://x/y.png"}, nil
}

type stubSubmissions struct {
	received []models.LandingFormData
	err      error
}

func (s *stubSubmissions) ProcessLandingSubmission(_ context.Context, data models.LandingFormData) error {
	s.received = append(s.received, data)
	return s.err
}

type testServer struct {
	router      *gin.Engine
	uploader    *stubUploader
	submissions *stubSubmissions
	sessions    *services.SessionRegistry
}

func newTestServer(t *testing.T, relay bool) *testServer {
	t.Helper()

	cfg := &config.Config{
		CloudinaryUploadPreset: "Ai_marketing_content",
		FormspreeBaseURL:       "https://formspree.io",
		FormspreeFormID:        "mgvljjkv",
		FormRelay:              relay,
		UploadTimeout:          time.Second,
		SessionTTL:             30 * time.Minute,
	}

	registry := prometheus.NewRegistry()
	recorder := metrics.New(registry)
	uploader := &stubUploader{}
	submissions := &stubSubmissions{}
	sessions := services.NewSessionRegistry(cfg.SessionTTL, func() *services.UploadOrchestrator {
		return services.NewUploadOrchestrator(uploader, cfg.CloudinaryUploadPreset, cfg.UploadTimeout, recorder, zap.NewNop())
	})

	h := NewHandlers(sessions, submissions, cfg, zap.NewNop())
	h.now = func() time.Time { return time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC) }

	router, err := NewRouter(h, registry, zap.NewNop())
	require.NoError(t, err)

	return &testServer{router: router, uploader: uploader, submissions: submissions, sessions: sessions}
}

func (s *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func newLogoRequest(t *testing.T, size int, fields map[string]string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	part, err := writer.CreateFormFile("file", "logo.png")
	require.NoError(t, err)
	_, err = part.Write(bytes.Repeat([]byte{0x89}, size))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/logo", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func decodeState(t *testing.T, rec *httptest.ResponseRecorder) models.UploadState {
	t.Helper()
	var state models.UploadState
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	return state
}

func sessionCookieFrom(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == sessionCookie {
			return c
		}
	}
	require.FailNow(t, "no session cookie set")
	return nil
}

func TestIndexRendersFormspreeAction(t *testing.T) {
	s := newTestServer(t, false)

	rec := s.do(httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `action="https://formspree.io/f/mgvljjkv"`)
	assert.Contains(t, body, `accept=".jpg,.jpeg,.png"`)
	assert.Contains(t, body, `data-max-bytes="3145728"`)
	assert.Contains(t, body, "2026 Anaqa Tech")
	assert.Contains(t, body, "Brand Consistency")
	assert.NotEmpty(t, sessionCookieFrom(t, rec).Value)
}

func TestIndexRendersRelayAction(t *testing.T) {
	s := newTestServer(t, true)

	rec := s.do(httptest.NewRequest(http.MethodGet, "/?error=submit", nil))

	assert.Contains(t, rec.Body.String(), `action="/submit"`)
	assert.Contains(t, rec.Body.String(), "send your details, please try again")
}

func TestUploadLogoSuccess(t *testing.T) {
	s := newTestServer(t, false)

	rec := s.do(newLogoRequest(t, 1000*1000, map[string]string{"name": "Acme", "email": "a@acme.com"}))

	require.Equal(t, http.StatusOK, rec.Code)
	state := decodeState(t, rec)
	assert.Equal(t, models.PhaseSuccess, state.Phase)
	assert.Equal(t, "https://x/y.png", state.LogoURL)
	assert.False(t, state.Uploading)

	require.Len(t, s.uploader.requests, 1)
	assert.Equal(t, "name=Acme|email=a@acme.com", s.uploader.requests[0].Context)
	assert.Equal(t, "Ai_marketing_content", s.uploader.requests[0].Preset)

	// The same session sees the stored state
	stateReq := httptest.NewRequest(http.MethodGet, "/api/logo", nil)
	stateReq.AddCookie(sessionCookieFrom(t, rec))
	again := decodeState(t, s.do(stateReq))
	assert.Equal(t, state, again)
}

func TestUploadLogoDefaultsAnonymous(t *testing.T) {
	s := newTestServer(t, false)

	rec := s.do(newLogoRequest(t, 10, nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "name=Anonymous|email=", s.uploader.requests[0].Context)
}

func TestUploadLogoRejectsLargeBodyWithoutUpload(t *testing.T) {
	s := newTestServer(t, false)

	rec := s.do(newLogoRequest(t, 5*1000*1000, map[string]string{"name": "Acme"}))

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	state := decodeState(t, rec)
	assert.Equal(t, "File size must be less than 3MB", state.Error)
	assert.True(t, state.ResetInput)
	assert.Empty(t, s.uploader.requests)
}

func TestUploadLogoRejectsFileJustOverLimit(t *testing.T) {
	s := newTestServer(t, false)

	rec := s.do(newLogoRequest(t, int(services.MaxLogoSize)+1, nil))

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, services.MsgFileTooLarge, decodeState(t, rec).Error)
	assert.Empty(t, s.uploader.requests)
}

func TestUploadLogoChunkedOversizeBody(t *testing.T) {
	s := newTestServer(t, false)

	req := newLogoRequest(t, 5*1000*1000, nil)
	req.ContentLength = -1

	rec := s.do(req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, services.MsgFileTooLarge, decodeState(t, rec).Error)
	assert.Empty(t, s.uploader.requests)
}

func TestUploadLogoUpstreamFailure(t *testing.T) {
	s := newTestServer(t, false)
	s.uploader.err = errors.New("connection reset")

	rec := s.do(newLogoRequest(t, 10, nil))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	state := decodeState(t, rec)
	assert.Equal(t, "Upload failed, please try again.", state.Error)
	assert.False(t, state.Uploading)
	assert.Empty(t, state.LogoURL)
}

func TestUploadLogoWithoutFile(t *testing.T) {
	s := newTestServer(t, false)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	require.NoError(t, writer.WriteField("name", "Acme"))
	require.NoError(t, writer.Close())
	req := httptest.NewRequest(http.MethodPost, "/api/logo", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	rec := s.do(req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, s.uploader.requests)
}

func TestLogoStateForUnknownSessionIsIdle(t *testing.T) {
	s := newTestServer(t, false)

	rec := s.do(httptest.NewRequest(http.MethodGet, "/api/logo", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.PhaseIdle, decodeState(t, rec).Phase)
	assert.Equal(t, 0, s.sessions.Len())
}

func TestResetLogo(t *testing.T) {
	s := newTestServer(t, false)

	rec := s.do(newLogoRequest(t, 10, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	cookie := sessionCookieFrom(t, rec)

	req := httptest.NewRequest(http.MethodDelete, "/api/logo", nil)
	req.AddCookie(cookie)
	state := decodeState(t, s.do(req))

	assert.Equal(t, models.PhaseIdle, state.Phase)
	assert.Empty(t, state.LogoURL)
}

func newSubmitRequest(values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/submit", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestSubmitRelaysAndRedirects(t *testing.T) {
	s := newTestServer(t, true)

	rec := s.do(newSubmitRequest(url.Values{
		"name":              {"Acme"},
		"email":             {"a@acme.com"},
		"link":              {"https://instagram.com/acme"},
		"logo":              {"https://x/y.png"},
		"brand_about":       {"Coffee"},
		"image_preferences": {"Posts"},
	}))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/thanks", rec.Header().Get("Location"))
	require.Len(t, s.submissions.received, 1)
	assert.Equal(t, models.LandingFormData{
		Name:             "Acme",
		Email:            "a@acme.com",
		Link:             "https://instagram.com/acme",
		Logo:             "https://x/y.png",
		BrandAbout:       "Coffee",
		ImagePreferences: "Posts",
	}, s.submissions.received[0])
}

func TestSubmitFailureRedirectsBack(t *testing.T) {
	s := newTestServer(t, true)
	s.submissions.err = errors.New("formspree down")

	rec := s.do(newSubmitRequest(url.Values{"name": {"Acme"}}))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/?error=submit#contact", rec.Header().Get("Location"))
}

func TestSubmitNotRoutedWithoutRelay(t *testing.T) {
	s := newTestServer(t, false)

	rec := s.do(newSubmitRequest(url.Values{"name": {"Acme"}}))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, s.submissions.received)
}

func TestThanksHealthAndMetrics(t *testing.T) {
	s := newTestServer(t, false)

	thanks := s.do(httptest.NewRequest(http.MethodGet, "/thanks", nil))
	assert.Equal(t, http.StatusOK, thanks.Code)
	assert.Contains(t, thanks.Body.String(), "Thank you!")

	health := s.do(httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.JSONEq(t, `{"status":"ok"}`, health.Body.String())

	s.do(newLogoRequest(t, 10, nil))
	metricsRec := s.do(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, metricsRec.Code)
	assert.Contains(t, metricsRec.Body.String(), `landing_logo_uploads_total{outcome="success"} 1`)
}

func TestStaticAssetsServed(t *testing.T) {
	s := newTestServer(t, false)

	rec := s.do(httptest.NewRequest(http.MethodGet, "/static/upload.js", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "reset_input")
}
