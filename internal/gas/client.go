// Package gas talks to the Google Apps Script web app that fronts the
// management spreadsheet.
package gas

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Veraticus/etfsave/internal/common"
	"github.com/Veraticus/etfsave/internal/model"
	"github.com/Veraticus/etfsave/internal/watchlist"
)

// ActionGetItems asks the web app for the management tab.
const ActionGetItems = "getItems"

// actionUpdateManage asks the web app to patch standard codes and fund names.
const actionUpdateManage = "updateManage"

// DefaultTimeout bounds every request.
const DefaultTimeout = 15 * time.Second

// errorPrefix starts every failure reply; the web app always answers 200.
const errorPrefix = "Error"

// ErrNoURL is returned when the client has no web app URL.
var ErrNoURL = errors.New("web app URL not configured")

// Client calls the web app.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a client for baseURL.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimSpace(baseURL),
		httpClient: &http.Client{Timeout: timeout},
		logger:     common.OrDefault(logger),
	}
}

// Entries fetches the management tab as watch-list entries.
func (c *Client) Entries(ctx context.Context) ([]model.WatchlistEntry, error) {
	if c.baseURL == "" {
		return nil, fmt.Errorf("%w: %w", common.ErrMissingSource, ErrNoURL)
	}

	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid web app URL: %w", err)
	}
	q := u.Query()
	q.Set("action", ActionGetItems)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	body, err := c.do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrMissingSource, err)
	}

	var records []map[string]any
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, fmt.Errorf("%w: failed to decode watch-list: %w", common.ErrMissingSource, err)
	}

	entries := watchlist.FromRecords(records)
	c.logger.Info("Fetched watch-list from web app", "entries", len(entries))
	return entries, nil
}

// Forward replaces the result tab with records.
func (c *Client) Forward(ctx context.Context, records []model.OutputRecord) error {
	if len(records) == 0 {
		return nil
	}
	reply, err := c.post(ctx, records)
	if err != nil {
		return fmt.Errorf("%w: %w", common.ErrForwarding, err)
	}
	c.logger.Info("Forwarded snapshot to web app", "records", len(records), "reply", reply)
	return nil
}

// ManageUpdate patches one row of the management tab, keyed by ticker code.
type ManageUpdate struct {
	Code         string `json:"code"`
	StandardCode string `json:"std_code,omitempty"`
	FundName     string `json:"fund_name,omitempty"`
}

type manageRequest struct {
	Action string         `json:"action"`
	Data   []ManageUpdate `json:"data"`
}

// UpdateManage writes standard codes and fund names back to the management tab.
func (c *Client) UpdateManage(ctx context.Context, updates []ManageUpdate) (string, error) {
	if len(updates) == 0 {
		return "", nil
	}
	return c.post(ctx, manageRequest{Action: actionUpdateManage, Data: updates})
}

func (c *Client) post(ctx context.Context, payload any) (string, error) {
	if c.baseURL == "" {
		return "", ErrNoURL
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	body, err := c.do(req)
	if err != nil {
		return "", err
	}

	reply := strings.TrimSpace(string(body))
	if strings.HasPrefix(reply, errorPrefix) {
		return "", fmt.Errorf("web app rejected update: %s", reply)
	}
	return reply, nil
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			c.logger.Error("failed to close response body", "error", closeErr)
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("web app error: %d - %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return body, nil
}
