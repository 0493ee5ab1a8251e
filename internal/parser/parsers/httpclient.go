package parsers

import (
	"fmt"
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"

	"github.com/Vodeneev/propline/internal/pkg/config"
)

// NewHTTPClient returns a resty client with browser-like headers; sportsbook
// edges reject obvious bot user agents.
func NewHTTPClient(cfg *config.ParserConfig) *resty.Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	c := resty.New().
		SetTimeout(timeout).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		SetHeader("User-Agent", cfg.UserAgent).
		SetHeader("Accept", "application/json, text/plain, */*").
		SetHeader("Accept-Language", "en-US,en;q=0.9")
	for k, v := range cfg.Headers {
		c.SetHeader(k, v)
	}
	if cfg.CloudflareBypass {
		c.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(c.GetClient().Transport)
	}
	return c
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: status %d", e.URL, e.Code)
}
