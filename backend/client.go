// Package backend is a typed client for the studio REST backend that owns
// users, projects, billing and credits.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/notblessy/studio-core/model"
	"github.com/notblessy/studio-core/observability"
	"github.com/sirupsen/logrus"
)

const DefaultBaseURL = "http://localhost:3000"

const maxResponseBytes = 4 << 20

type Client struct {
	baseURL    string
	httpClient *http.Client
	metrics    *observability.Metrics
}

type Option func(*Client)

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

func WithMetrics(m *observability.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

func NewClient(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// envelope is the part every backend response shares.
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// do sends one request. endpoint is the route template used for metrics and logs;
// path is the concrete path. out, when non-nil, receives the decoded body.
func (c *Client) do(ctx context.Context, token, method, endpoint, path string, body, out interface{}) error {
	logger := logrus.WithFields(logrus.Fields{
		"method": method,
		"path":   endpoint,
	})

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.RecordBackendRequest(method, endpoint, 0, time.Since(start))
		logger.Errorf("Backend request failed: %v", err)
		return fmt.Errorf("%w: %v", ErrConnection, err)
	}
	defer resp.Body.Close()
	c.metrics.RecordBackendRequest(method, endpoint, resp.StatusCode, time.Since(start))

	logger = logger.WithField("status", resp.StatusCode)

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		logger.Errorf("Error reading backend response: %v", err)
		return fmt.Errorf("%w: read body: %v", ErrConnection, err)
	}

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode == http.StatusUnauthorized {
		logger.Warn("Backend rejected session token")
		if env.Message != "" {
			return fmt.Errorf("%w: %s", ErrUnauthorized, env.Message)
		}
		return ErrUnauthorized
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logger.Warnf("Backend request unsuccessful: %s", env.Message)
		return newAPIError(resp.StatusCode, env.Message)
	}

	if decodeErr != nil {
		logger.Errorf("Error decoding backend response: %v", decodeErr)
		return newAPIError(http.StatusBadGateway, "invalid response from server")
	}

	if !env.Success {
		logger.Warnf("Backend reported failure: %s", env.Message)
		return newAPIError(resp.StatusCode, env.Message)
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			logger.Errorf("Error decoding backend payload: %v", err)
			return newAPIError(http.StatusBadGateway, "invalid response from server")
		}
	}
	return nil
}

func projectPath(id model.ID) string {
	return "/api/user/projects/" + url.PathEscape(id.String())
}

func (c *Client) GetProfile(ctx context.Context, token string) (*model.User, error) {
	var out struct {
		User *model.User `json:"user"`
	}
	if err := c.do(ctx, token, http.MethodGet, "/api/user/profile", "/api/user/profile", nil, &out); err != nil {
		return nil, err
	}
	if out.User == nil {
		return nil, newAPIError(http.StatusBadGateway, "profile missing from response")
	}
	return out.User, nil
}

func (c *Client) UpdateProfile(ctx context.Context, token string, req model.UpdateProfileRequest) (*model.User, error) {
	var out struct {
		User *model.User `json:"user"`
	}
	if err := c.do(ctx, token, http.MethodPut, "/api/user/profile", "/api/user/profile", req, &out); err != nil {
		return nil, err
	}
	if out.User == nil {
		return nil, newAPIError(http.StatusBadGateway, "profile missing from response")
	}
	return out.User, nil
}

func (c *Client) DeleteProfile(ctx context.Context, token string) error {
	return c.do(ctx, token, http.MethodDelete, "/api/user/profile", "/api/user/profile", nil, nil)
}

func (c *Client) ListProjects(ctx context.Context, token string) ([]model.Project, error) {
	var out struct {
		Projects []model.Project `json:"projects"`
	}
	if err := c.do(ctx, token, http.MethodGet, "/api/user/projects", "/api/user/projects", nil, &out); err != nil {
		return nil, err
	}
	if out.Projects == nil {
		out.Projects = []model.Project{}
	}
	return out.Projects, nil
}

func (c *Client) GetProject(ctx context.Context, token string, id model.ID) (*model.Project, error) {
	var out struct {
		Project *model.Project `json:"project"`
	}
	if err := c.do(ctx, token, http.MethodGet, "/api/user/projects/:id", projectPath(id), nil, &out); err != nil {
		return nil, err
	}
	if out.Project == nil {
		return nil, newAPIError(http.StatusNotFound, "project not found")
	}
	return out.Project, nil
}

func (c *Client) UpdateProject(ctx context.Context, token string, id model.ID, req model.UpdateProjectRequest) (*model.Project, error) {
	var out struct {
		Project *model.Project `json:"project"`
	}
	if err := c.do(ctx, token, http.MethodPut, "/api/user/projects/:id", projectPath(id), req, &out); err != nil {
		return nil, err
	}
	if out.Project == nil {
		return nil, newAPIError(http.StatusBadGateway, "project missing from response")
	}
	return out.Project, nil
}

func (c *Client) DeleteProject(ctx context.Context, token string, id model.ID) (string, error) {
	var out envelope
	if err := c.do(ctx, token, http.MethodDelete, "/api/user/projects/:id", projectPath(id), nil, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

func (c *Client) PurchaseAddOn(ctx context.Context, token string, req model.PurchaseAddOnRequest) (string, error) {
	var out envelope
	if err := c.do(ctx, token, http.MethodPost, "/api/user/purchase-addon", "/api/user/purchase-addon", req, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

func (c *Client) CancelSubscription(ctx context.Context, token string) (*model.CancelSubscriptionResponse, error) {
	var out model.CancelSubscriptionResponse
	if err := c.do(ctx, token, http.MethodPut, "/api/user/cancel-subscription", "/api/user/cancel-subscription", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ChangePlan(ctx context.Context, token string, req model.UpstreamChangePlanRequest) (*model.Billing, error) {
	var out struct {
		Billing *model.Billing `json:"billing"`
	}
	if err := c.do(ctx, token, http.MethodPut, "/api/user/plan", "/api/user/plan", req, &out); err != nil {
		return nil, err
	}
	return out.Billing, nil
}

// OnboardingPath maps a flow to its backend endpoint.
func OnboardingPath(flow model.OnboardingFlow) (string, error) {
	switch flow {
	case model.OnboardingStandard:
		return "/api/user/complete-onboarding", nil
	case model.OnboardingPricing:
		return "/api/user/pricing-onboarding", nil
	}
	return "", fmt.Errorf("unknown onboarding flow %q", flow)
}

func (c *Client) CompleteOnboarding(ctx context.Context, token string, flow model.OnboardingFlow, req model.UpstreamOnboardingRequest) (*model.OnboardingResult, error) {
	path, err := OnboardingPath(flow)
	if err != nil {
		return nil, err
	}

	var out model.OnboardingResult
	if err := c.do(ctx, token, http.MethodPost, path, path, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
