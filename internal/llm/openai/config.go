package openai

import (
	"log/slog"
	"os"
	"time"

	oai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/joseph-ayodele/resume-parser/internal/llm"
)

// Config for the OpenAI client.
type Config struct {
	APIKey      string        // if empty, falls back to env OPENAI_API_KEY
	BaseURL     string        // default https://api.openai.com/v1
	Model       string        // e.g., "gpt-4o-mini"
	Temperature float32       // 0..2
	Timeout     time.Duration // per request; 0 = none
}

type Client struct {
	cfg    Config
	api    oai.Client
	shape  *llm.ShapeChecker
	logger *slog.Logger
}

// Option customises a Client.
type Option func(*Client)

// WithShapeChecker enables the warn-only answer shape check.
func WithShapeChecker(s *llm.ShapeChecker) Option {
	return func(c *Client) { c.shape = s }
}

func NewClient(cfg Config, logger *slog.Logger, opts ...Option) *Client {
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if logger == nil {
		logger = slog.Default()
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(cfg.BaseURL),
		option.WithMaxRetries(0),
	}
	if cfg.Timeout > 0 {
		reqOpts = append(reqOpts, option.WithRequestTimeout(cfg.Timeout))
	}

	c := &Client{
		cfg:    cfg,
		api:    oai.NewClient(reqOpts...),
		logger: logger,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}
