package app

import (
	"net/http"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/consilio/internal/common"
	"github.com/ternarybob/consilio/internal/eodhd"
	"github.com/ternarybob/consilio/internal/handlers"
	"github.com/ternarybob/consilio/internal/services/analysis"
	"github.com/ternarybob/consilio/internal/services/currency"
	"github.com/ternarybob/consilio/internal/services/llm"
	"github.com/ternarybob/consilio/internal/services/market"
)

// App holds all application components and dependencies
type App struct {
	Config *common.Config
	Logger arbor.ILogger

	// Data services
	EODHDClient     *eodhd.Client
	MarketService   *market.Service
	CurrencyService *currency.Service

	// AI
	ProviderFactory *llm.ProviderFactory // nil when no AI key is configured

	// Analysis pipeline
	AnalysisService *analysis.Service

	// HTTP handlers
	APIHandler      *handlers.APIHandler
	AnalysisHandler *handlers.AnalysisHandler
}

// New creates the application, wiring services and handlers together.
// A missing market data API key is fatal; missing AI keys only disable
// the AI recommendation path.
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	if err := app.initServices(); err != nil {
		return nil, err
	}
	app.initHandlers()

	logger.Info().
		Bool("ai_enabled", app.ProviderFactory != nil).
		Str("default_exchange", cfg.Analysis.DefaultExchange).
		Str("base_currency", cfg.Analysis.BaseCurrency).
		Msg("Application initialization complete")

	return app, nil
}

func (a *App) initServices() error {
	marketKey, err := common.ResolveAPIKey("market_api_key", a.Config.Market.APIKey)
	if err != nil {
		return err
	}

	clientOpts := []eodhd.ClientOption{
		eodhd.WithLogger(a.Logger),
		eodhd.WithRateLimit(a.Config.Market.RateLimit),
		eodhd.WithHTTPClient(&http.Client{Timeout: a.Config.Market.RequestTimeoutDuration()}),
	}
	if a.Config.Market.BaseURL != "" {
		clientOpts = append(clientOpts, eodhd.WithBaseURL(a.Config.Market.BaseURL))
	}
	a.EODHDClient = eodhd.NewClient(marketKey, clientOpts...)

	a.MarketService = market.NewService(a.EODHDClient, a.Logger).
		WithCacheTTL(a.Config.Market.CacheTTLDuration())
	a.CurrencyService = currency.NewService(a.EODHDClient, a.Logger).
		WithCacheTTL(a.Config.Market.CacheTTLDuration())

	// AI is optional. With no resolvable key every recommendation
	// comes from the rule-based fallback.
	_, claudeErr := common.ResolveAPIKey("anthropic_api_key", a.Config.Claude.APIKey)
	_, geminiErr := common.ResolveAPIKey("gemini_api_key", a.Config.Gemini.APIKey)
	if claudeErr == nil || geminiErr == nil {
		a.ProviderFactory = llm.NewProviderFactory(
			&a.Config.Gemini,
			&a.Config.Claude,
			&a.Config.LLM,
			a.Logger,
		)
	} else {
		a.Logger.Warn().Msg("No AI API key configured, recommendations will use rule-based fallback")
	}

	var generator analysis.Generator
	if a.ProviderFactory != nil {
		generator = a.ProviderFactory
	}
	a.AnalysisService = analysis.NewService(
		a.MarketService,
		a.CurrencyService,
		generator,
		a.Config,
		a.Logger,
	)

	return nil
}

func (a *App) initHandlers() {
	a.APIHandler = handlers.NewAPIHandler(a.Config)
	a.AnalysisHandler = handlers.NewAnalysisHandler(a.AnalysisService, a.Logger)
}

// Close releases application resources
func (a *App) Close() error {
	if a.ProviderFactory != nil {
		if err := a.ProviderFactory.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close AI provider factory")
		}
	}

	a.MarketService.ClearCache()
	a.Logger.Info().Msg("Application shutdown complete")
	return nil
}
