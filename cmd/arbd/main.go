// arbd — cross-venue arbitrage daemon.
//
// Architecture:
//
//	main.go                    — entry point: config, wiring, periodic rescan, signals
//	scanner/scanner.go         — batch pipeline: catalog → fetch → match → classify → liquidity
//	catalog/catalog.go         — date-templated slug/ticker generation + NBA game parsing
//	match/…                    — intra-event pairing by category (sports, weather, finance, NBA)
//	arb/arb.go                 — guaranteed vs simple classification and ranking
//	liquidity/liquidity.go     — dual order-book walk for executable size
//	venue/polymarket, venue/kalshi — REST catalogs, order books, and WebSocket streams
//	realtime/engine.go         — debounced streaming opportunity detection
//	api/…                      — /health, /api/opportunities, /ws event push
//	matchcache/matchcache.go   — persisted human verdicts on pairings
//
// The daemon rescans on a timer, keeps the realtime engine watching the
// best pairs from the latest scan, and pushes both scan results and live
// opportunity events to API consumers.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"arb-scanner/internal/api"
	"arb-scanner/internal/config"
	"arb-scanner/internal/matchcache"
	"arb-scanner/internal/realtime"
	"arb-scanner/internal/scanner"
	"arb-scanner/internal/venue/kalshi"
	"arb-scanner/internal/venue/polymarket"
	"arb-scanner/pkg/types"
)

// maxWatchedPairs bounds how many pairs from each scan feed the realtime
// engine.
const maxWatchedPairs = 25

func main() {
	_ = godotenv.Load()

	cfgPath := "configs/config.yaml"
	if p := os.Getenv("ARB_CONFIG"); p != "" {
		cfgPath = p
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		slog.Error("failed to load config", "error", err, "path", cfgPath)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Logging)

	poly := polymarket.NewClient(cfg.Polymarket, cfg.Scanner.HTTPTimeout, logger)
	kal := kalshi.NewClient(cfg.Kalshi, cfg.Scanner.HTTPTimeout, cfg.Scanner.KalshiPageDelay, logger)

	s := scanner.New(cfg.Scanner, poly, kal, logger)
	if cfg.MatchCache.Path != "" {
		cache, err := matchcache.Open(cfg.MatchCache.Path)
		if err != nil {
			logger.Warn("match cache unavailable", "error", err, "path", cfg.MatchCache.Path)
		} else {
			s.UseMatchVerdicts(cache)
			logger.Info("match cache attached", "path", cfg.MatchCache.Path, "verdicts", cache.Len())
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Realtime engine runs only with streaming credentials; the daemon is
	// still useful without them as a periodic batch scanner.
	var engine *realtime.Engine
	if err := cfg.ValidateStreaming(); err != nil {
		logger.Warn("realtime engine disabled", "reason", err)
	} else {
		engine, err = startRealtime(ctx, *cfg, logger)
		if err != nil {
			logger.Error("failed to start realtime engine", "error", err)
			os.Exit(1)
		}
	}

	var apiServer *api.Server
	if cfg.API.Enabled {
		apiServer = api.NewServer(cfg.API, s, logger)
		go func() {
			if err := apiServer.Start(); err != nil {
				logger.Error("api server failed", "error", err)
			}
		}()
		if engine != nil {
			go apiServer.ConsumeRealtime(engine.Events())
		}
		logger.Info("api started", "url", fmt.Sprintf("http://localhost:%d", cfg.API.Port))
	}

	go rescanLoop(ctx, s, engine, cfg.Scanner.CacheTTL, logger)

	logger.Info("arbitrage daemon started",
		"rescan_interval", cfg.Scanner.CacheTTL,
		"realtime", engine != nil,
		"api", cfg.API.Enabled,
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("received shutdown signal", "signal", sig.String())

	cancel()
	if apiServer != nil {
		if err := apiServer.Stop(); err != nil {
			logger.Error("failed to stop api server", "error", err)
		}
	}
	if engine != nil {
		engine.Stop()
	}
}

// startRealtime dials both venue streams and starts the engine loop.
func startRealtime(ctx context.Context, cfg config.Config, logger *slog.Logger) (*realtime.Engine, error) {
	signer, err := kalshi.LoadSigner(cfg.Kalshi.APIKeyID, cfg.Kalshi.PrivateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("load kalshi signer: %w", err)
	}

	polyStream := polymarket.NewStream(cfg.Polymarket.WSURL, cfg.Realtime.ReconnectDelay, logger)
	kalshiStream := kalshi.NewStream(cfg.Kalshi.WSURL, signer, cfg.Realtime.ReconnectDelay, logger)

	go func() {
		if err := polyStream.Run(ctx); err != nil && ctx.Err() == nil {
			logger.Error("polymarket stream stopped", "error", err)
		}
	}()
	go func() {
		if err := kalshiStream.Run(ctx); err != nil && ctx.Err() == nil {
			logger.Error("kalshi stream stopped", "error", err)
		}
	}()

	engine := realtime.New(cfg.Realtime, polyStream, kalshiStream, logger)
	engine.Start()
	return engine, nil
}

// rescanLoop runs an initial scan, then refreshes on the cache interval.
// Each scan's best pairs are handed to the realtime engine.
func rescanLoop(ctx context.Context, s *scanner.Scanner, engine *realtime.Engine, interval time.Duration, logger *slog.Logger) {
	scan := func() {
		result, err := s.Scan(ctx, true)
		if err != nil {
			logger.Error("scheduled scan failed", "error", err)
			return
		}
		if engine != nil {
			watchTopPairs(engine, result, logger)
		}
	}

	scan()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			scan()
		}
	}
}

// watchTopPairs subscribes the engine to the highest-ranked pairs that
// carry both order-book identifiers.
func watchTopPairs(engine *realtime.Engine, result *types.ScanResult, logger *slog.Logger) {
	watched := 0
	for _, o := range result.Opportunities {
		if watched >= maxWatchedPairs {
			break
		}
		tokens := o.Pair.Poly.TokenIDs
		ticker := o.Pair.Kalshi.Ticker
		if len(tokens) < 2 || ticker == "" {
			continue
		}
		err := engine.Watch(realtime.Pair{
			ID:           ticker,
			PolyYesToken: tokens[0],
			PolyNoToken:  tokens[1],
			KalshiTicker: ticker,
		})
		if err != nil {
			logger.Warn("failed to watch pair", "ticker", ticker, "error", err)
			continue
		}
		watched++
	}
	logger.Info("realtime watch list updated", "pairs", watched)
}

func newLogger(cfg config.LoggingConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLogLevel(cfg.Level)}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	return slog.New(handler)
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
