package main

import (
	"fmt"
	"log/slog"

	"github.com/UnknownOlympus/waypoint/internal/config"
	"github.com/UnknownOlympus/waypoint/internal/geocoding"
	"github.com/UnknownOlympus/waypoint/internal/metrics"
	"github.com/UnknownOlympus/waypoint/internal/resolver"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "waypoint",
		Short: "resolve shipment addresses to map coordinates",
		Long: `
waypoint turns the postal addresses of shipments into latitude and longitude
so the dispatch dashboard can draw their routes. It runs a cascade of
geocoding queries from the most to the least specific one and stops at the
first match.
`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newServeCmd(), newResolveCmd())

	return rootCmd
}

// newResolver creates the configured geocoding provider, optionally backed by cache,
// and the resolution cascade on top of it.
func newResolver(
	cfg *config.Config,
	logger *slog.Logger,
	appMetrics *metrics.Metrics,
	cache geocoding.Cache,
) (*resolver.Resolver, error) {
	geoProvider, err := geocoding.NewProvider(geocoding.ProviderConfig{
		Type:        geocoding.ProviderType(cfg.Provider.Type),
		APIKey:      cfg.Provider.APIKey,
		RateLimit:   cfg.Provider.RateLimit,
		UserAgent:   cfg.Provider.UserAgent,
		BaseURL:     cfg.Provider.BaseURL,
		CountryCode: cfg.Resolver.CountryCode,
		Language:    cfg.Resolver.Language,
		Logger:      logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create geocoding provider: %w", err)
	}

	if cache != nil {
		geoProvider = geocoding.NewCachedProvider(geoProvider, cache, cfg.Provider.Type, logger)
	}

	return resolver.New(logger, geoProvider, appMetrics, resolver.Config{
		ProviderName: cfg.Provider.Type,
		CountryName:  cfg.Resolver.CountryName,
		Delay:        cfg.Resolver.Delay,
	}), nil
}
