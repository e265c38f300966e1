// Package dashboard is the HTTP client for the restaurant dashboard API: category
// and dashboard summaries, restaurant goals, provider config and the weekly save.
package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/de-tools/sales-atlas/pkg/adapters"
	"github.com/de-tools/sales-atlas/pkg/models/api"
	"github.com/de-tools/sales-atlas/pkg/models/domain"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"
)

const (
	categorySummaryPath  = "/api/v1/summary/categories"
	dashboardSummaryPath = "/api/v1/summary/dashboard"
	weeklyDataPath       = "/api/v1/weekly-data"
	goalsPath            = "/api/v1/goals"
	providersPath        = "/api/v1/providers"

	maxResponseBytes = 4 << 20
)

type Config struct {
	BaseURL  string
	Token    string
	Timeout  time.Duration
	RetryMax int
	Logger   *zerolog.Logger
}

type Client struct {
	baseURL string
	token   string
	http    *retryablehttp.Client
}

// StatusError is returned for non-2xx responses
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected %d response from %s %s: %s", e.StatusCode, e.Method, e.Path, e.Body)
}

type noRetryKey struct{}

func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("dashboard: base url is required")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("dashboard: invalid base url %q: %w", cfg.BaseURL, err)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.RetryMax < 0 {
		cfg.RetryMax = 0
	}

	httpClient := retryablehttp.NewClient()
	httpClient.HTTPClient.Timeout = cfg.Timeout
	httpClient.RetryMax = cfg.RetryMax
	httpClient.RetryWaitMin = 100 * time.Millisecond
	httpClient.RetryWaitMax = 2 * time.Second
	logger := zerolog.Nop()
	if cfg.Logger != nil {
		logger = cfg.Logger.With().Str("component", "dashboard_client").Logger()
	}
	httpClient.Logger = &leveledLogger{logger: logger}
	httpClient.CheckRetry = checkRetry
	httpClient.ErrorHandler = retryablehttp.PassthroughErrorHandler

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.Token,
		http:    httpClient,
	}, nil
}

// checkRetry applies the default policy, except for writes which must not be repeated
func checkRetry(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Value(noRetryKey{}) != nil {
		return false, nil
	}
	return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
}

func (c *Client) FetchCategorySummary(ctx context.Context, start, end time.Time) (domain.CategorySummary, error) {
	var response api.CategorySummaryResponse
	if err := c.doRequest(ctx, http.MethodGet, categorySummaryPath, rangeQuery(start, end), nil, &response); err != nil {
		return domain.CategorySummary{}, fmt.Errorf("dashboard: category summary failed: %w", err)
	}
	return adapters.MapCategorySummaryApiToDomain(response), nil
}

func (c *Client) FetchDashboardSummary(ctx context.Context, start, end time.Time, groupBy string) (domain.DashboardSummary, error) {
	query := rangeQuery(start, end)
	if groupBy != "" {
		query.Set("group_by", groupBy)
	}

	var response api.DashboardSummaryResponse
	if err := c.doRequest(ctx, http.MethodGet, dashboardSummaryPath, query, nil, &response); err != nil {
		return domain.DashboardSummary{}, fmt.Errorf("dashboard: dashboard summary failed: %w", err)
	}
	return adapters.MapDashboardSummaryApiToDomain(response), nil
}

func (c *Client) SaveWeeklyData(ctx context.Context, payload api.WeeklyPayload) error {
	ctx = context.WithValue(ctx, noRetryKey{}, true)
	if err := c.doRequest(ctx, http.MethodPost, weeklyDataPath, nil, payload, nil); err != nil {
		return fmt.Errorf("dashboard: save weekly data failed: %w", err)
	}
	return nil
}

func (c *Client) GetRestaurantGoals(ctx context.Context) (domain.RestaurantGoals, error) {
	var response api.RestaurantGoalsResponse
	if err := c.doRequest(ctx, http.MethodGet, goalsPath, nil, nil, &response); err != nil {
		return domain.RestaurantGoals{}, fmt.Errorf("dashboard: restaurant goals failed: %w", err)
	}
	return adapters.MapRestaurantGoalsApiToDomain(response), nil
}

func (c *Client) GetProviderConfig(ctx context.Context) (domain.ProviderConfig, error) {
	var response []api.ProviderResponse
	if err := c.doRequest(ctx, http.MethodGet, providersPath, nil, nil, &response); err != nil {
		return nil, fmt.Errorf("dashboard: provider config failed: %w", err)
	}
	return adapters.MapProvidersApiToDomain(response), nil
}

func rangeQuery(start, end time.Time) url.Values {
	query := url.Values{}
	query.Set("start", start.Format(domain.DateLayout))
	query.Set("end", end.Format(domain.DateLayout))
	return query
}

func (c *Client) doRequest(ctx context.Context, method, path string, query url.Values, requestBody, responseBody any) error {
	requestURL := c.baseURL + path
	if len(query) > 0 {
		requestURL += "?" + query.Encode()
	}

	var body any
	if requestBody != nil {
		encoded, err := json.Marshal(requestBody)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		body = encoded
	}

	request, err := retryablehttp.NewRequestWithContext(ctx, method, requestURL, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	request.Header.Set("Accept", "application/json")
	if requestBody != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		request.Header.Set("Authorization", "Bearer "+c.token)
	}

	response, err := c.http.Do(request)
	if err != nil {
		return fmt.Errorf("request to %s %s failed: %w", method, path, err)
	}
	defer response.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(response.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return &StatusError{
			Method:     method,
			Path:       path,
			StatusCode: response.StatusCode,
			Body:       strings.TrimSpace(string(raw)),
		}
	}

	if responseBody == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, responseBody); err != nil {
		return fmt.Errorf("failed to parse %s response: %w", path, err)
	}
	return nil
}
