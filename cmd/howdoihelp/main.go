package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/howdoihelp/howdoihelp/internal/config"
	"github.com/howdoihelp/howdoihelp/internal/data"
	"github.com/howdoihelp/howdoihelp/internal/geo"
	grpchandler "github.com/howdoihelp/howdoihelp/internal/handler/grpc"
	"github.com/howdoihelp/howdoihelp/internal/handler/health"
	referralhandler "github.com/howdoihelp/howdoihelp/internal/handler/referral"
	"github.com/howdoihelp/howdoihelp/internal/observability"
	"github.com/howdoihelp/howdoihelp/internal/policy"
	"github.com/howdoihelp/howdoihelp/internal/referral"
	"github.com/howdoihelp/howdoihelp/internal/server"
	"google.golang.org/grpc"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(os.Stdout, cfg.LogLevel)
	slog.SetDefault(logger)

	slog.Info("service starting", "log_level", cfg.LogLevel)

	if observability.ParseLevel(cfg.LogLevel) == slog.LevelDebug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	metrics := observability.NewMetrics()

	resolver := geo.NewResolver(
		geo.WithPrimaryURL(cfg.GeoPrimaryURL),
		geo.WithSecondaryURL(cfg.GeoSecondaryURL),
		geo.WithTimeout(cfg.GeoTimeout),
		geo.WithObserver(metrics),
	)

	// The offline policy database is optional. Without it the policy
	// endpoints answer 503 and the rest of the service runs normally.
	var lookup data.CountryLookup
	var readyChecks []health.Check
	if cfg.MMDBPath != "" {
		reloading, err := data.NewReloadingLookup(cfg.MMDBPath, logger, data.WithReloadHook(metrics.ObserveReload))
		if err != nil {
			slog.Error("failed to open MMDB", "path", cfg.MMDBPath, "error", err)
			os.Exit(1)
		}
		defer reloading.Close()
		lookup = reloading
		readyChecks = append(readyChecks, health.Check{Name: "mmdb", Fn: reloading.Ready})
		slog.Info("MMDB loaded", "path", cfg.MMDBPath)
	}
	checker := policy.NewChecker(lookup, geo.AuthoritarianCountries)

	memory := referral.NewMemoryRecorder()
	var recorder referral.Recorder = memory
	if len(cfg.KafkaBrokers) > 0 {
		kafka := referral.NewKafkaRecorder(cfg.KafkaBrokers, cfg.KafkaReferralTopic)
		defer kafka.Close()
		recorder = referral.MultiRecorder{memory, kafka}
		slog.Info("referral clicks published to kafka", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaReferralTopic)
	}

	if !cfg.AdminEnabled() {
		slog.Warn("admin area disabled, ADMIN_SESSION_TOKEN not set")
	}

	router, err := server.NewRouter(server.Deps{
		Logger:         logger,
		TrustedProxies: cfg.TrustedProxies,
		Resolver:       resolver,
		Countries:      geo.AuthoritarianCountries,
		Checker:        checker,
		Recorder:       recorder,
		ReferralOptions: referralhandler.Options{
			CookieMaxAge: cfg.ReferralCookieMaxAge,
			Clicks:       metrics.ReferralClicks,
			RecordErrors: metrics.ReferralRecordErrors,
		},
		Stats:             memory,
		AdminPassword:     cfg.AdminPassword,
		AdminSessionToken: cfg.AdminSessionToken,
		AdminDenied:       metrics.AdminDenied,
		ReadyChecks:       readyChecks,
	})
	if err != nil {
		slog.Error("failed to build router", "error", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		slog.Info("service started", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	var grpcServer *grpc.Server
	if cfg.GRPCPort != "" {
		lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
		if err != nil {
			slog.Error("failed to listen for gRPC", "port", cfg.GRPCPort, "error", err)
			os.Exit(1)
		}
		grpcServer = grpc.NewServer(grpc.ChainUnaryInterceptor(grpchandler.LoggingInterceptor(logger)))
		grpchandler.RegisterPolicyServiceServer(grpcServer, grpchandler.NewHandler(checker))

		go func() {
			slog.Info("gRPC server started", "port", cfg.GRPCPort)
			if err := grpcServer.Serve(lis); err != nil {
				slog.Error("gRPC server failed", "error", err)
				os.Exit(1)
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("service shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if grpcServer != nil {
		grpcServer.GracefulStop()
	}
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		return
	}

	slog.Info("service stopped")
}
