package acquire

import (
	"github.com/rs/zerolog"

	"github.com/helioscope/slr-analytics-service/internal/config"
	"github.com/helioscope/slr-analytics-service/internal/papersources"
	"github.com/helioscope/slr-analytics-service/internal/papersources/arxiv"
	"github.com/helioscope/slr-analytics-service/internal/papersources/core"
	"github.com/helioscope/slr-analytics-service/internal/papersources/openalex"
	"github.com/helioscope/slr-analytics-service/internal/papersources/semanticscholar"
	"github.com/helioscope/slr-analytics-service/internal/papersources/springer"
)

// BuildRegistry registers a client for every enabled paper source.
func BuildRegistry(cfg config.PaperSourcesConfig, logger zerolog.Logger) *papersources.Registry {
	registry := papersources.NewRegistry()

	if cfg.CORE.Enabled {
		registry.Register(core.New(core.Config{
			BaseURL:    cfg.CORE.BaseURL,
			APIKey:     cfg.CORE.APIKey,
			Timeout:    cfg.CORE.Timeout,
			RateLimit:  cfg.CORE.RateLimit,
			MaxResults: cfg.CORE.MaxResults,
			Enabled:    true,
		}))
		logger.Info().Msg("registered paper source: CORE")
	}

	if cfg.OpenAlex.Enabled {
		registry.Register(openalex.New(openalex.Config{
			BaseURL:    cfg.OpenAlex.BaseURL,
			Email:      cfg.OpenAlex.Email,
			Timeout:    cfg.OpenAlex.Timeout,
			RateLimit:  cfg.OpenAlex.RateLimit,
			MaxResults: cfg.OpenAlex.MaxResults,
			Enabled:    true,
		}))
		logger.Info().Msg("registered paper source: OpenAlex")
	}

	if cfg.ArXiv.Enabled {
		registry.Register(arxiv.New(arxiv.Config{
			BaseURL:    cfg.ArXiv.BaseURL,
			Timeout:    cfg.ArXiv.Timeout,
			RateLimit:  cfg.ArXiv.RateLimit,
			MaxResults: cfg.ArXiv.MaxResults,
			Enabled:    true,
		}))
		logger.Info().Msg("registered paper source: arXiv")
	}

	if cfg.SemanticScholar.Enabled {
		registry.Register(semanticscholar.NewClient(semanticscholar.Config{
			BaseURL:    cfg.SemanticScholar.BaseURL,
			APIKey:     cfg.SemanticScholar.APIKey,
			Timeout:    cfg.SemanticScholar.Timeout,
			RateLimit:  cfg.SemanticScholar.RateLimit,
			MaxResults: cfg.SemanticScholar.MaxResults,
			Enabled:    true,
		}, nil))
		logger.Info().Msg("registered paper source: Semantic Scholar")
	}

	if cfg.Springer.Enabled {
		registry.Register(springer.New(springer.Config{
			BaseURL:    cfg.Springer.BaseURL,
			APIKey:     cfg.Springer.APIKey,
			Timeout:    cfg.Springer.Timeout,
			RateLimit:  cfg.Springer.RateLimit,
			MaxResults: cfg.Springer.MaxResults,
			Enabled:    true,
		}))
		logger.Info().Msg("registered paper source: Springer Nature")
	}

	return registry
}
