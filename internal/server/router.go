// Package server assembles the HTTP routes of the service.
package server

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/howdoihelp/howdoihelp/internal/geo"
	"github.com/howdoihelp/howdoihelp/internal/handler/admin"
	geohandler "github.com/howdoihelp/howdoihelp/internal/handler/geo"
	"github.com/howdoihelp/howdoihelp/internal/handler/health"
	policyhandler "github.com/howdoihelp/howdoihelp/internal/handler/policy"
	referralhandler "github.com/howdoihelp/howdoihelp/internal/handler/referral"
	"github.com/howdoihelp/howdoihelp/internal/middleware"
	"github.com/howdoihelp/howdoihelp/internal/policy"
	"github.com/howdoihelp/howdoihelp/internal/referral"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps are the collaborators the router wires into handlers.
type Deps struct {
	Logger         *slog.Logger
	TrustedProxies []string

	Resolver  geohandler.Resolver
	Countries geo.CountrySet
	Checker   *policy.Checker

	Recorder        referral.Recorder
	ReferralOptions referralhandler.Options
	Stats           admin.StatsSource

	AdminPassword     string
	AdminSessionToken string
	AdminDenied       prometheus.Counter

	ReadyChecks []health.Check
	// Metrics serves /metrics; nil uses the default Prometheus registry.
	Metrics gin.HandlerFunc
}

// NewRouter builds the Gin engine.
func NewRouter(d Deps) (*gin.Engine, error) {
	router := gin.New()
	if err := router.SetTrustedProxies(d.TrustedProxies); err != nil {
		return nil, err
	}

	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(d.Logger))
	router.Use(gin.Recovery())

	healthHandler := health.NewHandler(d.ReadyChecks...)
	router.GET("/health", healthHandler.Health)
	router.GET("/ready", healthHandler.Ready)

	metrics := d.Metrics
	if metrics == nil {
		metrics = gin.WrapH(promhttp.Handler())
	}
	router.GET("/metrics", metrics)

	geoHandler := geohandler.NewHandler(d.Resolver, d.Countries)
	policyHandler := policyhandler.NewHandler(d.Checker)
	api := router.Group("/api/v1")
	{
		api.GET("/geo", geoHandler.Locate)
		api.GET("/geo/denylist", geoHandler.Denylist)
		api.POST("/policy/check", policyHandler.Check)
	}

	adminHandler := admin.NewHandler(d.AdminPassword, d.AdminSessionToken, d.Stats)
	router.GET(admin.LoginPath, adminHandler.LoginPage)
	router.POST(admin.LoginPath, adminHandler.Login)
	router.POST("/admin/logout", adminHandler.Logout)
	gated := router.Group("/admin", admin.Gate(d.AdminSessionToken, d.AdminDenied))
	{
		gated.GET("/", adminHandler.Dashboard)
		gated.GET("/api/referrals", adminHandler.Referrals)
	}

	router.NoRoute(referralhandler.NewHandler(d.Recorder, d.ReferralOptions).CatchAll)

	return router, nil
}
