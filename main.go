package main

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/PranavZagade/Lumora/pkg/config"
	"github.com/PranavZagade/Lumora/pkg/dataset"
	"github.com/PranavZagade/Lumora/pkg/engine"
	"github.com/PranavZagade/Lumora/pkg/handlers"
	"github.com/PranavZagade/Lumora/pkg/llm"
	"github.com/PranavZagade/Lumora/pkg/logging"
	"github.com/PranavZagade/Lumora/pkg/semantics"
	"github.com/PranavZagade/Lumora/pkg/services"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("configuration loaded",
		zap.String("environment", cfg.Env),
		zap.String("llm_provider", cfg.LLM.Provider),
		zap.String("llm_model", cfg.LLM.Model),
		zap.Int("execution_max_rows", cfg.Execution.MaxRows),
		zap.Duration("execution_timeout", cfg.Execution.Timeout()))

	storage, err := dataset.NewStorage(cfg.Storage.Dir, cfg.Storage.SessionTTL(), logger)
	if err != nil {
		logger.Fatal("failed to initialize storage", zap.Error(err))
	}
	if _, err := storage.CleanupExpired(); err != nil {
		logger.Warn("session cleanup failed", zap.Error(err))
	}

	modelClient, err := buildModelRouter(cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize LLM clients", zap.Error(err))
	}

	lexicon, err := semantics.LoadLexicon(cfg.Semantics.LexiconPath)
	if err != nil {
		logger.Fatal("failed to load lexicon", zap.Error(err))
	}

	askService := services.NewAskService(
		storage,
		semantics.NewClassifier(lexicon),
		services.NewGenerator(modelClient, logger),
		engine.NewExecutor(logger),
		services.NewAnswerFormatter(modelClient, logger),
		engine.Constraints{
			MaxRows: cfg.Execution.MaxRows,
			Timeout: cfg.Execution.Timeout(),
		},
		logger,
	)

	mux := http.NewServeMux()
	handlers.NewHealthHandler(cfg, logger).RegisterRoutes(mux)
	handlers.NewUploadHandler(storage, dataset.NewProfiler(logger), logger).RegisterRoutes(mux)
	handlers.NewMappingsHandler(storage, logger).RegisterRoutes(mux)
	handlers.NewChatHandler(askService, logger).RegisterRoutes(mux)

	addr := cfg.BindAddr + ":" + cfg.Port
	logger.Info("starting lumora",
		zap.String("addr", addr),
		zap.String("version", cfg.Version))
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}

// buildModelRouter creates one client per configured model and wires
// them behind the cooldown-aware router.
func buildModelRouter(cfg *config.Config, logger *zap.Logger) (llm.Client, error) {
	var clients []llm.Client
	for _, model := range cfg.LLM.ModelPriority() {
		client, err := buildClient(cfg, model, logger)
		if err != nil {
			return nil, fmt.Errorf("model %s: %w", model, err)
		}
		clients = append(clients, client)
	}

	cooldowns := llm.NewCooldownRegistry(time.Duration(cfg.LLM.CooldownSeconds) * time.Second)
	return llm.NewRouter(clients, cooldowns, logger)
}

func buildClient(cfg *config.Config, model string, logger *zap.Logger) (llm.Client, error) {
	switch cfg.LLM.Provider {
	case "anthropic":
		return llm.NewAnthropicClient(llm.AnthropicConfig{
			Model:  model,
			APIKey: cfg.LLM.APIKey,
		}, logger)
	default:
		return llm.NewOpenAIClient(llm.OpenAIConfig{
			Endpoint: cfg.LLM.Endpoint,
			Model:    model,
			APIKey:   cfg.LLM.APIKey,
		}, logger)
	}
}
