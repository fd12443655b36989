// Package espn fetches series schedules and match detail pages from the
// ESPNcricinfo consumer JSON API.
package espn

import (
	"context"
	"fmt"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/sportsdesk/cricketwire/internal/domain/rawdata"
	"github.com/sportsdesk/cricketwire/internal/platform/cache"
	"github.com/sportsdesk/cricketwire/internal/platform/fieldpath"
	"github.com/sportsdesk/cricketwire/internal/platform/logging"
	"github.com/sportsdesk/cricketwire/internal/platform/resilience"
	"github.com/sportsdesk/cricketwire/internal/usecase"
	"github.com/valyala/fasthttp"
)

const (
	defaultBaseURL = "https://hs-consumer-api.espncricinfo.com"
	sourceName     = "espn"
)

var errESPNTransient = crerr.New("espn transient failure")

// summaryListPaths are the keys the schedule page can hold its match list
// under, depending on series type.
var summaryListPaths = []string{"content.matches", "matches", "data.matches"}

type ClientConfig struct {
	BaseURL        string
	SeriesIDs      []string
	Timeout        time.Duration
	MaxRetries     int
	ScheduleTTL    time.Duration
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

type Client struct {
	http           *fasthttp.Client
	baseURL        string
	seriesIDs      []string
	timeout        time.Duration
	maxRetries     int
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	schedules      *cache.Store
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	scheduleTTL := cfg.ScheduleTTL
	if scheduleTTL <= 0 {
		scheduleTTL = 5 * time.Minute
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		http:           &fasthttp.Client{ReadTimeout: timeout, WriteTimeout: timeout},
		baseURL:        baseURL,
		seriesIDs:      cfg.SeriesIDs,
		timeout:        timeout,
		maxRetries:     cfg.MaxRetries,
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
		schedules:      cache.NewStore(scheduleTTL),
	}
}

func (c *Client) Name() string { return sourceName }

// ListMatches walks every configured series schedule. Schedules are cached
// briefly so back-to-back runs against the same series stay cheap.
func (c *Client) ListMatches(ctx context.Context) ([]map[string]any, []rawdata.Payload, error) {
	var (
		summaries []map[string]any
		payloads  []rawdata.Payload
		errs      []string
	)
	for _, seriesID := range c.seriesIDs {
		seriesID = strings.TrimSpace(seriesID)
		if seriesID == "" {
			continue
		}

		tree, raw, err := c.fetchSchedule(ctx, seriesID)
		if err != nil {
			if ctx.Err() != nil {
				return nil, nil, ctx.Err()
			}
			errs = append(errs, fmt.Sprintf("series %s: %v", seriesID, err))
			continue
		}
		if raw != nil {
			payloads = append(payloads, buildPayload("series_schedule_"+seriesID, "", raw))
		}

		for _, item := range fieldpath.List(tree, summaryListPaths) {
			node, ok := item.(map[string]any)
			if !ok {
				continue
			}
			// detail fetches need the series id back; stamp a copy so the
			// cached schedule tree stays untouched
			summary := make(map[string]any, len(node)+1)
			for key, value := range node {
				summary[key] = value
			}
			summary["seriesId"] = seriesID
			summaries = append(summaries, summary)
		}
	}

	if len(summaries) == 0 && len(errs) > 0 {
		return nil, payloads, fmt.Errorf("every series schedule failed: %s", strings.Join(errs, "; "))
	}
	return summaries, payloads, nil
}

func (c *Client) FetchDetail(ctx context.Context, matchID string, summary map[string]any) (map[string]any, []rawdata.Payload, error) {
	if strings.TrimSpace(matchID) == "" {
		return nil, nil, fmt.Errorf("%w: match id is required", usecase.ErrInvalidInput)
	}
	seriesID := fieldpath.String(summary, []string{"seriesId", "series.objectId", "series.id"}, "")
	if seriesID == "" {
		return nil, nil, fmt.Errorf("%w: summary carries no series id", usecase.ErrInvalidInput)
	}

	path := fmt.Sprintf("/v1/pages/match/home?lang=en&seriesId=%s&matchId=%s", seriesID, matchID)
	raw, err := c.doRequest(ctx, path)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch match home match_id=%s: %w", matchID, err)
	}

	var detail map[string]any
	if err := sonic.Unmarshal(raw, &detail); err != nil {
		return nil, nil, fmt.Errorf("decode match home payload: %w", err)
	}

	return detail, []rawdata.Payload{buildPayload("match_home_"+matchID, matchID, raw)}, nil
}

func (c *Client) fetchSchedule(ctx context.Context, seriesID string) (map[string]any, []byte, error) {
	cacheKey := "schedule:" + seriesID
	if cached, ok := c.schedules.Get(ctx, cacheKey); ok {
		if tree, ok := cached.(map[string]any); ok {
			return tree, nil, nil
		}
	}

	path := fmt.Sprintf("/v1/pages/series/schedule?lang=en&seriesId=%s", seriesID)
	raw, err := c.doRequest(ctx, path)
	if err != nil {
		return nil, nil, err
	}

	var tree map[string]any
	if err := sonic.Unmarshal(raw, &tree); err != nil {
		return nil, nil, fmt.Errorf("decode schedule payload: %w", err)
	}
	c.schedules.Set(ctx, cacheKey, tree)
	return tree, raw, nil
}

func (c *Client) doRequest(ctx context.Context, path string) ([]byte, error) {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "espn circuit breaker rejected request", "state", c.breaker.State())
			return nil, fmt.Errorf("%w: match data provider is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	raw, err := c.executeRequest(ctx, c.baseURL+path)
	if c.circuitEnabled {
		if err != nil && crerr.Is(err, errESPNTransient) {
			c.breaker.RecordFailure()
		} else {
			c.breaker.RecordSuccess()
		}
	}
	return raw, err
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		req := fasthttp.AcquireRequest()
		resp := fasthttp.AcquireResponse()
		req.SetRequestURI(fullURL)
		req.Header.SetMethod(fasthttp.MethodGet)
		req.Header.Set("accept", "application/json")

		err := c.http.DoTimeout(req, resp, c.timeout)
		status := resp.StatusCode()
		var body []byte
		if err == nil {
			body = append([]byte(nil), resp.Body()...)
		}
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)

		if err != nil {
			lastErr = fmt.Errorf("%w: send request: %v", errESPNTransient, err)
		} else if status >= 200 && status < 300 {
			return body, nil
		} else if isRetryableStatus(status) {
			lastErr = fmt.Errorf("%w: provider status=%d body=%s", errESPNTransient, status, abbreviateBody(body))
		} else {
			return nil, fmt.Errorf("provider status=%d body=%s", status, abbreviateBody(body))
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
	c.logger.WarnContext(ctx, "espn request failed", "url", fullURL, "error", lastErr)
	return nil, lastErr
}

func buildPayload(entityKey, matchID string, raw []byte) rawdata.Payload {
	return rawdata.Payload{
		Source:     sourceName,
		EntityType: "api_response",
		EntityKey:  entityKey,
		MatchID:    matchID,
		Body:       string(raw),
		FetchedAt:  time.Now().UTC(),
	}
}

func isRetryableStatus(code int) bool {
	return code == fasthttp.StatusTooManyRequests || code >= fasthttp.StatusInternalServerError
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}
