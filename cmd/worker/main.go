package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/clubcms/standings-engine/internal/app"
	"github.com/clubcms/standings-engine/internal/config"
	"github.com/clubcms/standings-engine/internal/observability"
	"github.com/clubcms/standings-engine/internal/platform/logging"
)

// The worker recalculates league tables for every league:season target on
// the command line, then drains the queue and exits. CMS deployments run it
// from cron or invoke it after bulk imports.
func main() {
	targets, err := parseTargets(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprintln(os.Stderr, "usage: worker <league-id>:<season> [...]")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := logging.NewJSON(cfg.LogLevel)
	logging.SetDefault(logger)

	shutdownUptrace, err := observability.InitUptrace(cfg, logger)
	if err != nil {
		logger.Error("init uptrace", "error", err)
		os.Exit(1)
	}
	stopPyroscope, err := observability.InitPyroscope(cfg, logger)
	if err != nil {
		logger.Error("init pyroscope", "error", err)
		os.Exit(1)
	}
	pprofSrv, err := observability.StartPprofServer(cfg, logger)
	if err != nil {
		logger.Error("start pprof", "error", err)
		os.Exit(1)
	}

	engine, err := app.New(cfg, logger)
	if err != nil {
		logger.Error("build app", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	failed := 0
	for _, t := range targets {
		if err := engine.Engine.ForceRecalculate(ctx, t.leagueID, t.season); err != nil {
			logger.ErrorContext(ctx, "recalculation rejected",
				"league_id", t.leagueID, "season", t.season, "error", err)
			failed++
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := engine.Close(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
		failed++
	}

	if err := observability.StopPprofServer(pprofSrv, logger, cfg.ShutdownTimeout); err != nil {
		logger.Error("stop pprof", "error", err)
	}
	if err := stopPyroscope(); err != nil {
		logger.Error("stop pyroscope", "error", err)
	}
	if err := shutdownUptrace(shutdownCtx); err != nil {
		logger.Error("shutdown uptrace", "error", err)
	}

	if failed > 0 {
		os.Exit(1)
	}
	logger.Info("worker finished", "targets", len(targets))
}

type target struct {
	leagueID string
	season   string
}

func parseTargets(args []string) ([]target, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("at least one league:season target is required")
	}

	out := make([]target, 0, len(args))
	for _, arg := range args {
		leagueID, season, ok := strings.Cut(strings.TrimSpace(arg), ":")
		leagueID = strings.TrimSpace(leagueID)
		season = strings.TrimSpace(season)
		if !ok || leagueID == "" || season == "" {
			return nil, fmt.Errorf("invalid target %q: expected <league-id>:<season>", arg)
		}
		out = append(out, target{leagueID: leagueID, season: season})
	}

	return out, nil
}
