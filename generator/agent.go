package generator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// LanguageDetector names the natural language of a text, e.g. "Chinese".
type LanguageDetector interface {
	LanguageName(text string) (string, bool)
}

// Agent 负责根据输入材料一次性生成三段式文档。
type Agent struct {
	llm         LLMClient
	detector    LanguageDetector
	temperature float64
	logger      *slog.Logger
}

// AgentOption configures an Agent.
type AgentOption func(*Agent)

// WithDetector makes the agent ask for the logic draft in the detected language.
func WithDetector(d LanguageDetector) AgentOption {
	return func(a *Agent) { a.detector = d }
}

// WithTemperature overrides DefaultTemperature. Non-positive values are ignored.
func WithTemperature(t float64) AgentOption {
	return func(a *Agent) {
		if t > 0 {
			a.temperature = t
		}
	}
}

func WithLogger(l *slog.Logger) AgentOption {
	return func(a *Agent) {
		if l != nil {
			a.logger = l
		}
	}
}

func NewAgent(llm LLMClient, opts ...AgentOption) (*Agent, error) {
	if llm == nil {
		return nil, errors.New("llm client is required")
	}
	a := &Agent{
		llm:         llm,
		temperature: DefaultTemperature,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Temperature reports the sampling temperature used for generation.
func (a *Agent) Temperature() float64 { return a.temperature }

// Generate validates the input, issues one schema-constrained request and
// decodes the reply into a Document.
func (a *Agent) Generate(ctx context.Context, in GenerationInput) (Document, error) {
	in, err := ValidateInput(in)
	if err != nil {
		return Document{}, err
	}

	language := ""
	if a.detector != nil {
		if name, ok := a.detector.LanguageName(in.SourceMaterial); ok {
			language = name
		}
	}
	prompt := BuildGenerationPrompt(in, language, a.temperature)

	a.logger.Debug("generating letter",
		"material_len", len(in.SourceMaterial),
		"logic_language", language,
		"temperature", a.temperature,
	)
	raw, err := a.llm.Complete(ctx, prompt)
	if err != nil {
		return Document{}, fmt.Errorf("%w: %w", ErrGenerationFailure, err)
	}
	doc, err := DecodeDocument(raw)
	if err != nil {
		a.logger.Warn("generation payload rejected", "error", err, "payload_len", len(raw))
		return Document{}, err
	}
	return doc, nil
}
