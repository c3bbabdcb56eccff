// arb-scan — one-shot cross-venue arbitrage scan.
//
// Loads config, runs a single scan over the Polymarket and Kalshi
// catalogs, and prints the ranked opportunity table. Exits 0 when the scan
// completes, even with zero opportunities; non-zero only on startup
// failure.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/olekukonko/tablewriter"

	"arb-scanner/internal/config"
	"arb-scanner/internal/dto"
	"arb-scanner/internal/matchcache"
	"arb-scanner/internal/scanner"
	"arb-scanner/internal/venue/kalshi"
	"arb-scanner/internal/venue/polymarket"
)

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
		}
	}

	result, err := s.Scan(context.Background(), true)
	if err != nil {
		logger.Error("scan failed", "error", err)
		os.Exit(1)
	}

	opps := dto.ProjectAll(result.Opportunities, result.ScannedAt)
	printReport(opps)

	fmt.Printf("\n%d opportunities across %d catalog events (scanned %s)\n",
		len(opps), len(result.Events), result.ScannedAt.Format("15:04:05"))
}

func printReport(opps []dto.Opportunity) {
	if len(opps) == 0 {
		fmt.Println("no opportunities found")
		return
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("#", "Type", "Cat", "Event", "Entity", "Spread%", "Max$", "Profit$", "Liquidity")

	for i, o := range opps {
		liq := "-"
		if o.Liquidity != nil {
			liq = o.Liquidity.Status
		}
		table.Append(
			fmt.Sprintf("%d", i+1),
			o.Type,
			o.Category,
			truncate(o.EventName, 36),
			truncate(o.Entity, 24),
			fmt.Sprintf("%.2f", o.SpreadPct),
			fmt.Sprintf("$%.2f", o.MaxInvestment),
			fmt.Sprintf("$%.2f", o.PotentialProfit),
			liq,
		)
	}
	table.Render()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func newLogger(cfg config.LoggingConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLogLevel(cfg.Level)}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
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
