// Package cricapi fetches match lists and scorecards from the CricAPI v1
// endpoints and hands them to the pipeline as opaque JSON trees.
package cricapi

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/sportsdesk/cricketwire/internal/domain/rawdata"
	"github.com/sportsdesk/cricketwire/internal/platform/logging"
	"github.com/sportsdesk/cricketwire/internal/platform/resilience"
	"github.com/sportsdesk/cricketwire/internal/usecase"
)

const (
	defaultBaseURL = "https://api.cricapi.com"
	sourceName     = "cricapi"
)

var apiKeyParamRegex = regexp.MustCompile(`apikey=[^&\s"']+`)
var errCricAPITransient = crerr.New("cricapi transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	APIKey         string
	Timeout        time.Duration
	MaxRetries     int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

type Client struct {
	httpClient     *http.Client
	baseURL        string
	apiKey         string
	maxRetries     int
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	flight         resilience.SingleFlight
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 20 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		apiKey:         strings.TrimSpace(cfg.APIKey),
		maxRetries:     cfg.MaxRetries,
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
	}
}

func (c *Client) Name() string { return sourceName }

type envelope struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
	Data   any    `json:"data"`
}

func (c *Client) ListMatches(ctx context.Context) ([]map[string]any, []rawdata.Payload, error) {
	path := "/v1/matches"
	raw, env, err := c.doJSON(ctx, path, map[string]string{"offset": "0"})
	if err != nil {
		return nil, nil, fmt.Errorf("fetch match list: %w", err)
	}

	list, ok := env.Data.([]any)
	if !ok {
		return nil, nil, fmt.Errorf("match list payload is %T, expected array", env.Data)
	}

	summaries := make([]map[string]any, 0, len(list))
	for _, item := range list {
		if summary, ok := item.(map[string]any); ok {
			summaries = append(summaries, summary)
		}
	}

	payload := buildPayload(path, "", raw)
	return summaries, []rawdata.Payload{payload}, nil
}

func (c *Client) FetchDetail(ctx context.Context, matchID string, _ map[string]any) (map[string]any, []rawdata.Payload, error) {
	if strings.TrimSpace(matchID) == "" {
		return nil, nil, fmt.Errorf("%w: match id is required", usecase.ErrInvalidInput)
	}

	path := "/v1/match_scorecard"
	raw, env, err := c.doJSON(ctx, path, map[string]string{"id": matchID})
	if err != nil {
		return nil, nil, fmt.Errorf("fetch scorecard match_id=%s: %w", matchID, err)
	}

	detail, ok := env.Data.(map[string]any)
	if !ok {
		return nil, nil, fmt.Errorf("scorecard payload is %T, expected object", env.Data)
	}

	payload := buildPayload(path, matchID, raw)
	return detail, []rawdata.Payload{payload}, nil
}

// doJSON runs one GET under the circuit breaker, deduplicating identical
// in-flight requests, and unwraps the CricAPI success envelope.
func (c *Client) doJSON(ctx context.Context, path string, query map[string]string) ([]byte, envelope, error) {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "cricapi circuit breaker rejected request", "state", c.breaker.State())
			return nil, envelope{}, fmt.Errorf("%w: match data provider is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	values := url.Values{}
	for key, value := range query {
		values.Set(key, value)
	}
	values.Set("apikey", c.apiKey)

	fullURL := c.baseURL + path + "?" + values.Encode()

	key := path + "?" + values.Encode()
	out, err, _ := c.flight.Do(key, func() (any, error) {
		raw, reqErr := c.executeRequest(ctx, fullURL)
		if c.circuitEnabled {
			if reqErr != nil && stderrors.Is(reqErr, errCricAPITransient) {
				c.breaker.RecordFailure()
			} else {
				c.breaker.RecordSuccess()
			}
		}
		return raw, reqErr
	})
	if err != nil {
		return nil, envelope{}, err
	}

	raw, ok := out.([]byte)
	if !ok {
		return nil, envelope{}, fmt.Errorf("unexpected response payload type %T", out)
	}

	var env envelope
	if err := sonic.Unmarshal(raw, &env); err != nil {
		return nil, envelope{}, fmt.Errorf("decode provider payload: %w", err)
	}
	if env.Status != "" && !strings.EqualFold(env.Status, "success") {
		return nil, envelope{}, fmt.Errorf("provider rejected request: status=%s reason=%s", env.Status, env.Reason)
	}

	return raw, env, nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: send request: %s", errCricAPITransient, sanitizeSensitiveText(err.Error(), c.apiKey))
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, 6<<20))
			_ = resp.Body.Close()
			if readErr != nil {
				lastErr = fmt.Errorf("%w: read response body: %v", errCricAPITransient, readErr)
			} else if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				return raw, nil
			} else if isRetryableStatus(resp.StatusCode) {
				lastErr = fmt.Errorf("%w: provider status=%d body=%s", errCricAPITransient, resp.StatusCode, abbreviateBody(raw))
			} else {
				return nil, fmt.Errorf("provider status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
			}
		}

		if attempt == c.maxRetries {
			break
		}
		backoff := time.Duration(attempt+1) * time.Second
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("provider request failed")
	}
	c.logger.WarnContext(ctx, "cricapi request failed", "url", redactAPIURL(fullURL), "error", lastErr)
	return nil, lastErr
}

func buildPayload(path, matchID string, raw []byte) rawdata.Payload {
	entityKey := path
	if matchID != "" {
		entityKey += "_" + matchID
	}
	return rawdata.Payload{
		Source:     sourceName,
		EntityType: "api_response",
		EntityKey:  entityKey,
		MatchID:    matchID,
		Body:       string(raw),
		FetchedAt:  time.Now().UTC(),
	}
}

func sanitizeSensitiveText(value, apiKey string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return value
	}
	if apiKey != "" {
		value = strings.ReplaceAll(value, apiKey, "REDACTED")
	}
	return apiKeyParamRegex.ReplaceAllString(value, "apikey=REDACTED")
}

func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func redactAPIURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	query := parsed.Query()
	if query.Has("apikey") {
		query.Set("apikey", "REDACTED")
		parsed.RawQuery = query.Encode()
	}
	return parsed.String()
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}
