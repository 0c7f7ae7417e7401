// Package extract turns a URL into cleaned plain text. A local fetch with
// readability cleanup is tried first; the Jina reader is the fallback for
// pages the local pass cannot handle. Every failure degrades to an empty
// string.
package extract

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"
	"go.uber.org/zap"

	"github.com/sells-group/deep-research/pkg/jina"
)

const maxBodyBytes = 512 * 1024

// Chain implements research.Extractor by trying extractors in order and
// returning the first non-empty text.
type Chain struct {
	local  *localExtractor
	reader jina.Client // optional fallback
}

// Option configures the chain.
type Option func(*Chain)

// WithHTTPClient overrides the local fetcher's http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Chain) {
		c.local.client = hc
	}
}

// NewChain creates an extractor chain. reader may be nil to disable the
// Jina fallback.
func NewChain(reader jina.Client, opts ...Option) *Chain {
	c := &Chain{
		local:  newLocalExtractor(),
		reader: reader,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Extract returns cleaned plain text for the URL, or "" when every
// extractor fails.
func (c *Chain) Extract(ctx context.Context, target string) string {
	if text := c.local.extract(ctx, target); text != "" {
		return text
	}

	if c.reader == nil {
		return ""
	}

	resp, err := c.reader.Read(ctx, target)
	if err != nil {
		zap.L().Debug("extract: reader fallback failed",
			zap.String("url", target),
			zap.Error(err),
		)
		return ""
	}
	return strings.TrimSpace(resp.Data.Content)
}

// localExtractor fetches HTML via net/http and cleans it with readability.
// Free, no API calls.
type localExtractor struct {
	client *http.Client
}

func newLocalExtractor() *localExtractor {
	return &localExtractor{
		client: &http.Client{
			Timeout: 15 * time.Second,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 10 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
	}
}

func (l *localExtractor) extract(ctx context.Context, target string) string {
	parsed, err := url.Parse(target)
	if err != nil || parsed.Host == "" {
		return ""
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return ""
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; DeepResearchBot/1.0)")

	resp, err := l.client.Do(req)
	if err != nil {
		zap.L().Debug("extract: local fetch failed", zap.String("url", target), zap.Error(err))
		return ""
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return ""
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return ""
	}

	article, err := readability.FromReader(strings.NewReader(string(body)), parsed)
	if err != nil {
		zap.L().Debug("extract: readability parse failed", zap.String("url", target), zap.Error(err))
		return ""
	}
	return strings.TrimSpace(article.TextContent)
}
