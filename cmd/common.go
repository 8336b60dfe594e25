package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"recletter/config"
	"recletter/detector"
	"recletter/generator"
	"recletter/orchestrator"
)

// llmBackend is what both the generator and the refinement sessions need.
type llmBackend interface {
	generator.LLMClient
	generator.ChatProvider
}

func buildLLM(cfg config.Config) (llmBackend, error) {
	switch cfg.LLM.Provider {
	case "mock":
		return generator.MockLLM{}, nil
	case "openai", "deepseek":
		return generator.NewOpenAILLMFromConfig(&generator.LLMSettings{
			Provider: cfg.LLM.Provider,
			Model:    cfg.LLM.Model,
			APIKey:   cfg.LLM.APIKey,
			BaseURL:  cfg.LLM.BaseURL,
		})
	default:
		return nil, fmt.Errorf("llm provider %s not supported", cfg.LLM.Provider)
	}
}

func buildOrchestrator(cfg config.Config) (*orchestrator.Orchestrator, error) {
	llm, err := buildLLM(cfg)
	if err != nil {
		return nil, err
	}
	logger := slog.Default()

	agent, err := generator.NewAgent(llm,
		generator.WithDetector(detector.New()),
		generator.WithTemperature(cfg.LLM.Temperature),
		generator.WithLogger(logger.With("component", "generator")),
	)
	if err != nil {
		return nil, err
	}
	refiner, err := generator.NewRefiner(llm, agent.Temperature(), logger.With("component", "refiner"))
	if err != nil {
		return nil, err
	}
	classifier, err := generator.ClassifierByName(cfg.Classifier)
	if err != nil {
		return nil, err
	}
	return orchestrator.New(agent, refiner, classifier, logger.With("component", "orchestrator"))
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}

// requestTimeout bounds a single upstream call issued from the CLI.
func requestTimeout() time.Duration {
	if cfg.RequestTimeout > 0 {
		return cfg.RequestTimeout
	}
	return 60 * time.Second
}
