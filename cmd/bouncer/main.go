package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/carlmjohnson/versioninfo"
	_ "github.com/joho/godotenv/autoload"
	cli "github.com/urfave/cli/v2"

	"github.com/bouncer-bot/bouncer/bouncer/engine"
)

func main() {
	if err := run(os.Args); err != nil {
		slog.Error("exiting", "err", err)
		os.Exit(-1)
	}
}

func run(args []string) error {

	app := cli.App{
		Name:    "bouncer",
		Usage:   "moderation daemon (checks IDs at the door)",
		Version: versioninfo.Short(),
	}

	app.Commands = []*cli.Command{
		runCmd,
	}

	return app.Run(args)
}

var runCmd = &cli.Command{
	Name:  "run",
	Usage: "run the service",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "command-prefix",
			Usage:   "prefix expected on chat commands",
			Value:   engine.DefaultCommandPrefix,
			EnvVars: []string{"BOUNCER_COMMAND_PREFIX"},
		},
		&cli.StringFlag{
			Name:    "verify-base-url",
			Usage:   "public base URL of the verification web form, embedded in ban notices",
			Value:   "http://localhost:8100",
			EnvVars: []string{"BOUNCER_VERIFY_BASE_URL"},
		},
		&cli.IntFlag{
			Name:    "quarantine-threshold",
			Usage:   "minimum risk score at which a joining member is quarantined",
			Value:   engine.DefaultQuarantineThreshold,
			EnvVars: []string{"BOUNCER_QUARANTINE_THRESHOLD"},
		},
		&cli.DurationFlag{
			Name:    "record-ttl",
			Usage:   "expiry for pending verification records; 0 means pending forever",
			Value:   0,
			EnvVars: []string{"BOUNCER_RECORD_TTL"},
		},
		&cli.StringFlag{
			Name:    "redis-url",
			Usage:   "redis connection URL for the durable store (eg: redis://localhost:6379/0)",
			EnvVars: []string{"BOUNCER_REDIS_URL", "REDIS_URL"},
		},
		&cli.StringFlag{
			Name:    "badger-dir",
			Usage:   "directory for the embedded badger store, used when no redis URL is set",
			Value:   "data/bouncer",
			EnvVars: []string{"BOUNCER_BADGER_DIR"},
		},
		&cli.StringFlag{
			Name:    "bind",
			Usage:   "IP or address, and port, to listen on for the verification API",
			Value:   ":8100",
			EnvVars: []string{"BOUNCER_BIND"},
		},
		&cli.StringFlag{
			Name:    "metrics-listen",
			Usage:   "IP or address, and port, to listen on for metrics",
			Value:   ":8101",
			EnvVars: []string{"BOUNCER_METRICS_LISTEN"},
		},
	},
	Action: func(cctx *cli.Context) error {
		logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
		slog.SetDefault(logger)

		srv, err := NewServer(Config{
			CommandPrefix:       cctx.String("command-prefix"),
			VerifyBaseURL:       cctx.String("verify-base-url"),
			QuarantineThreshold: cctx.Int("quarantine-threshold"),
			RecordTTL:           cctx.Duration("record-ttl"),
			RedisURL:            cctx.String("redis-url"),
			BadgerDir:           cctx.String("badger-dir"),
			Logger:              logger,
		})
		if err != nil {
			return err
		}
		defer srv.Close()

		go func() {
			if err := srv.RunMetrics(cctx.String("metrics-listen")); err != nil {
				logger.Error("metrics listener failed", "err", err)
			}
		}()
		go func() {
			if err := srv.RunAPI(cctx.String("bind")); err != nil {
				logger.Error("verification API stopped", "err", err)
			}
		}()

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		logger.Info("shutting down")

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	},
}
