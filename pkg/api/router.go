package api

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/anaqatech/brand-landing/pkg/middleware"
	"github.com/anaqatech/brand-landing/pkg/web"
)

// NewRouter wires the landing page routes onto a gin engine.
func NewRouter(h *Handlers, gatherer prometheus.Gatherer, log *zap.Logger) (*gin.Engine, error) {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(log))
	router.Use(middleware.CORS())

	tmpl, err := web.Templates()
	if err != nil {
		return nil, fmt.Errorf("error parsing templates: %w", err)
	}
	router.SetHTMLTemplate(tmpl)
	router.StaticFS("/static", web.Static())

	router.GET("/", h.Index)
	router.GET("/thanks", h.Thanks)
	router.GET("/health", h.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	api := router.Group("/api")
	{
		api.POST("/logo", h.UploadLogo)
		api.GET("/logo", h.LogoState)
		api.DELETE("/logo", h.ResetLogo)
	}

	if h.cfg.FormRelay {
		router.POST("/submit", h.HandleLandingSubmission)
	}

	return router, nil
}
