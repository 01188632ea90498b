package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"warehouse-picking-backend/pkg/logger"
)

var (
	// ErrUnavailable covers transport failures and non-2xx responses.
	ErrUnavailable = errors.New("upstream unavailable")
	// ErrMalformed covers undecodable bodies and success=false envelopes.
	ErrMalformed = errors.New("upstream document malformed")
)

const fetchTimeout = 30 * time.Second

// Client fetches the catalog/orders document from the upstream API.
// URL and key are passed per call because they are runtime settings,
// editable without a restart.
type Client struct {
	httpClient *http.Client
}

func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: fetchTimeout,
		},
	}
}

// FetchDocument performs one GET against baseURL with bearer auth.
// No retries; the sync scheduler owns retry policy.
func (c *Client) FetchDocument(ctx context.Context, baseURL, apiKey string) (*Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrUnavailable, err)
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: status %d: %s", ErrUnavailable, resp.StatusCode, string(body))
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrMalformed, err)
	}
	if !env.Success {
		return nil, fmt.Errorf("%w: upstream reported failure: %s", ErrMalformed, env.Error)
	}
	if env.Data == nil {
		return nil, fmt.Errorf("%w: missing data", ErrMalformed)
	}

	logUnknownFields(env.Data)

	return env.Data, nil
}

// logUnknownFields reports feed fields we do not map, then drops them.
func logUnknownFields(doc *Document) {
	for _, cat := range doc.Categories {
		for _, sub := range cat.Subcategories {
			for _, item := range sub.Items {
				if len(item.Extra) == 0 {
					continue
				}
				keys := make([]string, 0, len(item.Extra))
				for k := range item.Extra {
					keys = append(keys, k)
				}
				logger.Warn("upstream item has unmapped fields", map[string]interface{}{
					"sku":    item.SKU,
					"fields": keys,
				})
			}
		}
	}
}
