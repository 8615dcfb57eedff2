package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	slogecho "github.com/samber/slog-echo"

	"github.com/bouncer-bot/bouncer/bouncer/engine"
	"github.com/bouncer-bot/bouncer/bouncer/keystore"
	"github.com/bouncer-bot/bouncer/bouncer/platform"
	"github.com/bouncer-bot/bouncer/bouncer/rules"
)

type Server struct {
	logger *slog.Logger
	engine *engine.Engine
	echo   *echo.Echo
	badger *keystore.BadgerKeyStore
}

type Config struct {
	CommandPrefix       string
	VerifyBaseURL       string
	QuarantineThreshold int
	RecordTTL           time.Duration
	RedisURL            string
	BadgerDir           string
	// Gateway binding; the chat connection itself lives outside this core.
	// nil leaves the daemon serving only the verification API and metrics.
	Platform platform.Client
	Logger   *slog.Logger
}

func NewServer(config Config) (*Server, error) {
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
	}

	var store keystore.KeyStore
	var bdb *keystore.BadgerKeyStore
	if config.RedisURL != "" {
		rks, err := keystore.NewRedisKeyStore(config.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("initializing redis keystore: %w", err)
		}
		store = rks
		logger.Info("using redis keystore")
	} else if config.BadgerDir != "" {
		var err error
		bdb, err = keystore.NewBadgerKeyStore(config.BadgerDir, logger)
		if err != nil {
			return nil, fmt.Errorf("initializing badger keystore: %w", err)
		}
		store = bdb
		logger.Info("using badger keystore", "dir", config.BadgerDir)
	} else {
		store = keystore.NewMemKeyStore()
		logger.Warn("no durable store configured, verification records will not survive restarts")
	}

	client := config.Platform
	if client == nil {
		logger.Warn("no gateway client bound, running verification API only")
		client = &platform.UnboundClient{Logger: logger}
	}

	eng := engine.NewEngine(logger, client, rules.DefaultRules(), store, engine.Config{
		CommandPrefix:       config.CommandPrefix,
		VerifyBaseURL:       config.VerifyBaseURL,
		QuarantineThreshold: config.QuarantineThreshold,
		RecordTTL:           config.RecordTTL,
	})

	e := echo.New()
	e.HideBanner = true
	e.Use(slogecho.New(logger))
	e.Use(middleware.Recover())

	s := &Server{
		logger: logger,
		engine: eng,
		echo:   e,
		badger: bdb,
	}
	e.GET("/_health", s.handleHealthCheck)
	e.GET("/verify/:token", s.handleVerifyLookup)
	e.POST("/verify/:token", s.handleVerifySubmit)

	return s, nil
}

func (s *Server) Engine() *engine.Engine {
	return s.engine
}

func (s *Server) handleHealthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// Consumed by the external verification web form to render who is verifying.
// The code itself is never echoed back.
func (s *Server) handleVerifyLookup(c echo.Context) error {
	rec, err := s.engine.Ledger.LookupByToken(c.Request().Context(), c.Param("token"))
	if errors.Is(err, keystore.ErrNotFound) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "no pending verification for this token"})
	} else if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{
		"tag":      rec.Tag,
		"guild_id": rec.GuildID,
	})
}

func (s *Server) handleVerifySubmit(c echo.Context) error {
	ctx := c.Request().Context()
	rec, err := s.engine.Ledger.LookupByToken(ctx, c.Param("token"))
	if errors.Is(err, keystore.ErrNotFound) {
		return c.JSON(http.StatusNotFound, map[string]string{"result": engine.RedeemNoPending.String()})
	} else if err != nil {
		return err
	}

	result, err := s.engine.Redeem(ctx, rec.UserID, c.FormValue("code"))
	if err != nil {
		return err
	}
	return c.JSON(redeemStatus(result), map[string]string{"result": result.String()})
}

func redeemStatus(result engine.RedeemResult) int {
	switch result {
	case engine.RedeemSuccess:
		return http.StatusOK
	case engine.RedeemNoPending:
		return http.StatusNotFound
	case engine.RedeemMissingCode, engine.RedeemWrongCode:
		return http.StatusBadRequest
	case engine.RedeemNotMember:
		return http.StatusForbidden
	case engine.RedeemGuildUnavailable:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func (s *Server) RunAPI(listen string) error {
	err := s.echo.Start(listen)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) RunMetrics(listen string) error {
	http.Handle("/metrics", promhttp.Handler())
	return http.ListenAndServe(listen, nil)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) Close() error {
	if s.badger != nil {
		return s.badger.Close()
	}
	return nil
}
