// Package sportmonks fetches cricket fixtures from the SportMonks Cricket
// v2 API and flattens them into the opaque trees the pipeline consumes.
package sportmonks

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
	defaultBaseURL        = "https://cricket.sportmonks.com/api/v2.0"
	defaultFixtureInclude = "runs,batting,bowling,lineup,scoreboards,venue,league,stage,localteam,visitorteam"
	defaultListInclude    = "localteam,visitorteam,venue,league"
	sourceName            = "sportmonks"
)

var apiTokenParamRegex = regexp.MustCompile(`api_token=[^&\s"']+`)
var errSportMonksTransient = crerr.New("sportmonks transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	Token          string
	LeagueIDs      []string
	Timeout        time.Duration
	MaxRetries     int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

type Client struct {
	httpClient     *http.Client
	baseURL        string
	token          string
	leagueIDs      []string
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
		token:          strings.TrimSpace(cfg.Token),
		leagueIDs:      cfg.LeagueIDs,
		maxRetries:     maxInt(cfg.MaxRetries, 0),
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
	}
}

func (c *Client) Name() string { return sourceName }

type listEnvelope struct {
	Data []map[string]any `json:"data"`
}

type detailEnvelope struct {
	Data map[string]any `json:"data"`
}

func (c *Client) ListMatches(ctx context.Context) ([]map[string]any, []rawdata.Payload, error) {
	query := map[string]string{"include": defaultListInclude}
	if len(c.leagueIDs) > 0 {
		query["leagues"] = strings.Join(c.leagueIDs, ",")
	}

	path := "/fixtures"
	var envelope listEnvelope
	raw, err := c.doJSON(ctx, path, query, &envelope)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch fixtures: %w", err)
	}

	summaries := make([]map[string]any, 0, len(envelope.Data))
	for _, item := range envelope.Data {
		summaries = append(summaries, flattenRelations(item))
	}

	payload := buildAPIPayload(path, query, raw)
	return summaries, []rawdata.Payload{payload}, nil
}

func (c *Client) FetchDetail(ctx context.Context, matchID string, _ map[string]any) (map[string]any, []rawdata.Payload, error) {
	if strings.TrimSpace(matchID) == "" {
		return nil, nil, fmt.Errorf("%w: match id is required", usecase.ErrInvalidInput)
	}

	path := "/fixtures/" + url.PathEscape(matchID)
	query := map[string]string{"include": defaultFixtureInclude}

	var envelope detailEnvelope
	raw, err := c.doJSON(ctx, path, query, &envelope)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch fixture %s: %w", matchID, err)
	}
	if envelope.Data == nil {
		return nil, nil, fmt.Errorf("%w: fixture %s", usecase.ErrNotFound, matchID)
	}

	payload := buildAPIPayload(path, query, raw)
	payload.MatchID = matchID
	return flattenRelations(envelope.Data), []rawdata.Payload{payload}, nil
}

// doJSON runs one GET under the circuit breaker, deduplicating identical
// in-flight requests.
func (c *Client) doJSON(ctx context.Context, path string, query map[string]string, target any) ([]byte, error) {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "sportmonks circuit breaker rejected request", "state", c.breaker.State())
			return nil, fmt.Errorf("%w: match data provider is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	values := url.Values{}
	for key, value := range query {
		values.Set(key, value)
	}
	values.Set("api_token", c.token)

	fullURL := c.baseURL + path
	if encoded := values.Encode(); encoded != "" {
		fullURL += "?" + encoded
	}

	key := path + "?" + values.Encode()
	out, err, _ := c.flight.Do(key, func() (any, error) {
		raw, reqErr := c.executeRequest(ctx, fullURL)
		if c.circuitEnabled {
			if reqErr != nil && stderrors.Is(reqErr, errSportMonksTransient) {
				c.breaker.RecordFailure()
			} else {
				c.breaker.RecordSuccess()
			}
		}
		return raw, reqErr
	})
	if err != nil {
		return nil, err
	}

	raw, ok := out.([]byte)
	if !ok {
		return nil, fmt.Errorf("unexpected response payload type %T", out)
	}

	if err := sonic.Unmarshal(raw, target); err != nil {
		return nil, fmt.Errorf("decode provider payload: %w", err)
	}

	return raw, nil
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
			lastErr = fmt.Errorf("%w: send request: %s", errSportMonksTransient, sanitizeSensitiveText(err.Error(), c.token))
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, 6<<20))
			_ = resp.Body.Close()
			if readErr != nil {
				lastErr = fmt.Errorf("%w: read response body: %v", errSportMonksTransient, readErr)
			} else if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				return raw, nil
			} else if isRetryableStatus(resp.StatusCode) {
				lastErr = fmt.Errorf("%w: provider status=%d body=%s", errSportMonksTransient, resp.StatusCode, abbreviateBody(raw))
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
	c.logger.WarnContext(ctx, "sportmonks request failed", "url", redactAPIURL(fullURL), "error", lastErr)
	return nil, lastErr
}

// flattenRelations strips the v2 API's {"data": ...} relation wrappers so
// the rest of the pipeline sees plain objects and lists.
func flattenRelations(node map[string]any) map[string]any {
	out := make(map[string]any, len(node))
	for key, value := range node {
		out[key] = flattenValue(value)
	}
	return out
}

func flattenValue(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		if wrapped, ok := typed["data"]; ok && len(typed) == 1 {
			return flattenValue(wrapped)
		}
		return flattenRelations(typed)
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = flattenValue(item)
		}
		return out
	default:
		return value
	}
}

func buildAPIPayload(path string, query map[string]string, raw []byte) rawdata.Payload {
	values := url.Values{}
	for key, value := range query {
		if key == "api_token" {
			continue
		}
		values.Set(key, value)
	}

	entityKey := strings.TrimSpace(path)
	if encoded := values.Encode(); encoded != "" {
		entityKey += "?" + encoded
	}
	return rawdata.Payload{
		Source:     sourceName,
		EntityType: "api_response",
		EntityKey:  entityKey,
		Body:       string(raw),
		FetchedAt:  time.Now().UTC(),
	}
}

func sanitizeSensitiveText(value, token string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return value
	}
	if token != "" {
		value = strings.ReplaceAll(value, token, "REDACTED")
	}
	return apiTokenParamRegex.ReplaceAllString(value, "api_token=REDACTED")
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
	if query.Has("api_token") {
		query.Set("api_token", "REDACTED")
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

func maxInt(left, right int) int {
	if left > right {
		return left
	}
	return right
}
