package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/smartnotify/console/internal/model"
)

// RemoteStore talks to the SmartNotify REST backend over HTTP/JSON
type RemoteStore struct {
	logger     *zap.Logger
	baseURL    string
	token      string
	httpClient *http.Client
}

// RemoteConfig configures the REST backend client
type RemoteConfig struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

// NewRemoteStore creates a store backed by the SmartNotify REST backend
func NewRemoteStore(logger *zap.Logger, cfg RemoteConfig) *RemoteStore {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &RemoteStore{
		logger:  logger.Named("remote-store"),
		baseURL: cfg.BaseURL,
		token:   cfg.Token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// FetchAll implements RuleStore.FetchAll. Records that fail to decode are
// skipped with a warning so one malformed record never hides the rest.
func (s *RemoteStore) FetchAll(ctx context.Context, ownerID string) ([]model.AlertRule, error) {
	endpoint := fmt.Sprintf("%s/api/alerts/?user=%s", s.baseURL, url.QueryEscape(ownerID))

	body, err := s.do(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: invalid response body: %v", ErrFetchFailed, err)
	}

	rules := make([]model.AlertRule, 0, len(raw))
	for _, record := range raw {
		var rule model.AlertRule
		if err := json.Unmarshal(record, &rule); err != nil {
			s.logger.Warn("Skipping malformed alert rule record", zap.Error(err))
			continue
		}
		rules = append(rules, rule)
	}

	return rules, nil
}

// Create implements RuleStore.Create
func (s *RemoteStore) Create(ctx context.Context, rule *model.AlertRule) error {
	payload, err := json.Marshal(rule)
	if err != nil {
		return fmt.Errorf("failed to marshal alert rule: %w", err)
	}

	endpoint := fmt.Sprintf("%s/api/alerts/", s.baseURL)
	body, err := s.do(ctx, http.MethodPost, endpoint, payload)
	if err != nil {
		return err
	}

	var created model.AlertRule
	if err := json.Unmarshal(body, &created); err != nil {
		return fmt.Errorf("failed to decode created rule: %w", err)
	}
	*rule = created

	return nil
}

// ToggleActive implements RuleStore.ToggleActive
func (s *RemoteStore) ToggleActive(ctx context.Context, id string) (bool, error) {
	endpoint := fmt.Sprintf("%s/api/alerts/%s/toggle/", s.baseURL, url.PathEscape(id))

	body, err := s.do(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return false, err
	}

	var resp struct {
		IsActive bool `json:"is_active"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return false, fmt.Errorf("failed to decode toggle response: %w", err)
	}

	return resp.IsActive, nil
}

// Delete implements RuleStore.Delete
func (s *RemoteStore) Delete(ctx context.Context, id string) error {
	endpoint := fmt.Sprintf("%s/api/alerts/%s/", s.baseURL, url.PathEscape(id))

	_, err := s.do(ctx, http.MethodDelete, endpoint, nil)
	return err
}

// do executes one backend request and returns the response body
func (s *RemoteStore) do(ctx context.Context, method, endpoint string, payload []byte) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrRuleNotFound
	}
	if resp.StatusCode >= 400 {
		s.logger.Warn("Backend request rejected",
			zap.String("method", method),
			zap.String("endpoint", endpoint),
			zap.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("backend returned status %d", resp.StatusCode)
	}

	return body, nil
}
