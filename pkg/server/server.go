// Package server serves the dashboard, the device panels and the
// mutation endpoints over HTTP.
package server

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/solarwallbox/solarwallbox/pkg/config"
	"github.com/solarwallbox/solarwallbox/pkg/dashboard"
	"github.com/solarwallbox/solarwallbox/pkg/events"
	"github.com/solarwallbox/solarwallbox/pkg/metrics"
	"github.com/solarwallbox/solarwallbox/pkg/render"
	"github.com/solarwallbox/solarwallbox/pkg/store"
)

// History returns persisted measurements, newest first.
type History interface {
	Latest(ctx context.Context, n int) ([]store.Measurement, error)
}

// Options configures a Server. The event hub and metrics are the ones the
// runtime publishes to.
type Options struct {
	Config  config.Config
	Runtime *dashboard.Runtime
	// History is nil when persistence is disabled.
	History History
}

type Server struct {
	conf    config.Config
	rt      *dashboard.Runtime
	hub     *events.EventHub
	metrics *metrics.Metrics
	history History
}

func New(o Options) *Server {
	return &Server{
		conf:    o.Config,
		rt:      o.Runtime,
		hub:     o.Runtime.Hub(),
		metrics: o.Runtime.Metrics(),
		history: o.History,
	}
}

func (s *Server) renderer() *render.Renderer {
	return render.New(s.conf.Locale())
}

// Router returns the gin engine with all routes.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestID())
	router.Use(ginLogger(logrus.StandardLogger()))

	router.GET("/", s.getPlugins)
	router.GET("/dashboard", s.dashboard)
	router.GET("/go-echarger", s.goECharger)
	router.GET("/senec", s.getSenec)
	router.GET("/excess", s.getExcess)
	router.GET("/history", s.getHistory)
	router.GET("/healthz", s.getHealth)
	router.GET("/config", s.getConfig)
	router.GET("/events", s.getEvents)
	router.GET("/version", getVersion)
	if s.metrics != nil {
		router.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}

	return router
}
