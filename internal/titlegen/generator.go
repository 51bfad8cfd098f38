// Package titlegen turns a batch of video titles into improved suggestions by
// prompting a generative model and parsing its strict JSON reply.
package titlegen

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/sevigo/goframe/llms"
	"github.com/sevigo/goframe/llms/gemini"
	"github.com/sevigo/goframe/llms/ollama"

	"github.com/sevigo/titleforge/internal/config"
)

// ErrMissingCredential is returned when the configured provider needs an API
// key that is absent. The check is deferred to the first call so a missing key
// fails the job, not the process.
var ErrMissingCredential = errors.New("generative model credential is not configured")

// Generator batches title-improvement requests against one generative model.
type Generator struct {
	cfg    *config.Config
	logger *slog.Logger

	mu    sync.Mutex
	model llms.Model
}

// NewGenerator creates a generator. The underlying model client is created
// lazily on first use.
func NewGenerator(cfg *config.Config, logger *slog.Logger) *Generator {
	return &Generator{
		cfg:    cfg,
		logger: logger,
	}
}

// ImproveTitles sends all titles in a single batched prompt and returns one
// suggestion per input title, in input order. The response is trusted to
// preserve order; only the count is verified.
func (g *Generator) ImproveTitles(ctx context.Context, channelName string, titles []string) ([]GeneratedTitle, error) {
	if len(titles) == 0 {
		return nil, fmt.Errorf("no titles to improve")
	}

	model, err := g.getModel(ctx)
	if err != nil {
		return nil, err
	}

	prompt := buildPrompt(channelName, titles)
	g.logger.Debug("requesting title improvements",
		"channel", channelName,
		"title_count", len(titles),
		"model", g.cfg.GeneratorModelName,
	)

	raw, err := model.Call(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("generate titles: %w", err)
	}

	generated, err := parseResponse(raw, len(titles))
	if err != nil {
		return nil, err
	}
	return generated, nil
}

func (g *Generator) getModel(ctx context.Context) (llms.Model, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.model != nil {
		return g.model, nil
	}

	model, err := g.createModel(ctx)
	if err != nil {
		return nil, err
	}
	g.model = model
	return model, nil
}

func (g *Generator) createModel(ctx context.Context) (llms.Model, error) {
	switch g.cfg.LLMProvider {
	case "gemini":
		if g.cfg.GeminiAPIKey == "" {
			return nil, ErrMissingCredential
		}
		return gemini.New(ctx,
			gemini.WithModel(g.cfg.GeneratorModelName),
			gemini.WithAPIKey(g.cfg.GeminiAPIKey),
		)

	case "ollama":
		return ollama.New(
			ollama.WithServerURL(g.cfg.OllamaHost),
			ollama.WithHTTPClient(newModelHTTPClient()),
			ollama.WithModel(g.cfg.GeneratorModelName),
			ollama.WithLogger(g.logger),
		)

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", g.cfg.LLMProvider)
	}
}

// newModelHTTPClient uses generous timeouts; local models can take a while.
func newModelHTTPClient() *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   30 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			MaxIdleConns:    100,
			MaxConnsPerHost: 10,
			IdleConnTimeout: 90 * time.Second,
		},
		Timeout: 5 * time.Minute,
	}
}
