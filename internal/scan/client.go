package scan

import (
	"context"
	"time"

	"github.com/guonaihong/gout"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/croplink/agrimarket/config"
)

// ErrUpstream marks transient provider failures that were retried and still
// failed; callers may surface it as a retriable condition.
var ErrUpstream = errors.New("scan provider unavailable")

// Result is the structured reply of the plant classification provider.
type Result struct {
	Plant       string   `json:"plant" mapstructure:"plant"`
	Condition   string   `json:"condition" mapstructure:"disease_or_pest"`
	Description string   `json:"description" mapstructure:"description"`
	Keywords    []string `json:"keywords" mapstructure:"keywords"`
}

// Client calls the external plant-disease recognition API.
type Client struct {
	endpoint string
	apiKey   string
	timeout  time.Duration
}

func NewClient(cfg config.ScanConfig) *Client {
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{endpoint: cfg.Endpoint, apiKey: cfg.ApiKey, timeout: timeout}
}

const maxAttempts = 3

// Analyze submits a base64 image with the crop name and content language.
// Transient failures (429/503, timeouts, network errors) are retried up to
// three times with exponential backoff; anything else fails immediately.
func (c *Client) Analyze(ctx context.Context, imageBase64, cropName, lang string) (*Result, error) {
	if c.endpoint == "" {
		return nil, errors.Wrap(ErrUpstream, "scan endpoint not configured")
	}

	body := map[string]interface{}{
		"image":    imageBase64,
		"crop":     cropName,
		"language": lang,
	}

	backoff := time.Second
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		raw := map[string]interface{}{}
		var code int
		err := gout.POST(c.endpoint).
			WithContext(ctx).
			SetTimeout(c.timeout).
			SetHeader(gout.H{"Authorization": "Bearer " + c.apiKey}).
			SetJSON(body).
			BindJSON(&raw).
			Code(&code).
			Do()

		switch {
		case err == nil && code >= 200 && code < 300:
			var result Result
			if err := mapstructure.Decode(raw, &result); err != nil {
				return nil, errors.Wrap(err, "decode scan response")
			}
			return &result, nil
		case err == nil && code != 429 && code != 503:
			// non-retriable provider rejection
			return nil, errors.Errorf("scan provider rejected request: status %d", code)
		default:
			if err != nil {
				lastErr = err
			} else {
				lastErr = errors.Errorf("status %d", code)
			}
			zap.L().Warn("scan attempt failed",
				zap.Int("attempt", attempt),
				zap.Error(lastErr))
		}

		if attempt < maxAttempts {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}
	}
	return nil, errors.Wrapf(ErrUpstream, "after %d attempts: %v", maxAttempts, lastErr)
}
