package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/gridkv/gridkv/remote"
	"golang.org/x/time/rate"
)

// defaultBaseURL is the endpoint of the spreadsheet values/batchUpdate API.
const defaultBaseURL = "https://sheets.googleapis.com/v4/spreadsheets"

// APIError is an error response of the remote API.
type APIError struct {
	StatusCode int    // HTTP status code
	Status     string // API status label, e.g. "RESOURCE_EXHAUSTED"
	Message    string // human-readable message
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("sheets: api error %d (%s): %s", e.StatusCode, e.Status, e.Message)
	}
	return fmt.Sprintf("sheets: api error %d: %s", e.StatusCode, e.Message)
}

// Client is a remote.ITableClient backed by one tab of a spreadsheet
// document. All calls go through the REST values API with the credentials
// carried by the injected HTTP client.
//
// Thread-safety: all methods are safe for concurrent use.
type Client struct {
	config  remote.TableConfig
	http    *http.Client
	logger  *slog.Logger
	limiter *rate.Limiter
	baseURL string

	// the numeric sheet id of the tab, resolved lazily for row deletions
	mu              sync.Mutex
	sheetID         int64
	sheetIDResolved bool

	mRequests *metrics.Counter
	mErrors   *metrics.Counter
	mDuration *metrics.Histogram
}

// New creates a client for one tab of the configured spreadsheet. The
// httpClient must already carry authorization (see the auth package); nil
// falls back to http.DefaultClient for public documents.
func New(config remote.TableConfig, httpClient *http.Client, logger *slog.Logger) (*Client, error) {
	if config.SpreadsheetID == "" {
		return nil, fmt.Errorf("sheets: spreadsheet id must be set")
	}
	if config.Sheet == "" {
		return nil, fmt.Errorf("sheets: sheet title must be set")
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = slog.Default()
	}
	if config.RetryCount < 1 {
		config.RetryCount = 1
	}

	var limiter *rate.Limiter
	if config.RatePerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(config.RatePerSecond), 1)
	}

	return &Client{
		config:    config,
		http:      httpClient,
		logger:    logger.With("sheet", config.Sheet),
		limiter:   limiter,
		baseURL:   defaultBaseURL,
		mRequests: metrics.GetOrCreateCounter(`gridkv_sheets_requests_total`),
		mErrors:   metrics.GetOrCreateCounter(`gridkv_sheets_request_errors_total`),
		mDuration: metrics.GetOrCreateHistogram(`gridkv_sheets_request_duration_seconds`),
	}, nil
}

// --------------------------------------------------------------------------
// Request plumbing
// --------------------------------------------------------------------------

// do sends one API request with rate limiting, per-attempt timeout and
// bounded retry with exponential backoff. A JSON response body is decoded
// into out when out is non-nil.
func (c *Client) do(ctx context.Context, method, rawURL string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("sheets: marshal request: %w", err)
		}
	}

	backoffMs := 50
	var lastErr error
	for attempt := 1; attempt <= c.config.RetryCount; attempt++ {
		if attempt > 1 {
			c.logger.Warn("retrying request",
				"method", method, "attempt", attempt, "error", lastErr)

			jitter := 0.9 + 0.2*rand.Float64()
			select {
			case <-time.After(time.Duration(float64(backoffMs)*jitter) * time.Millisecond):
			case <-ctx.Done():
				return ctx.Err()
			}
			backoffMs *= 2
		}

		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return err
			}
		}

		lastErr = c.doOnce(ctx, method, rawURL, payload, out)
		if lastErr == nil {
			return nil
		}
		c.mErrors.Inc()

		// a cancelled parent context also cancels the retry loop
		if ctx.Err() != nil || !retryable(lastErr) {
			return lastErr
		}
	}
	return lastErr
}

// doOnce sends a single attempt under the configured per-request timeout.
func (c *Client) doOnce(ctx context.Context, method, rawURL string, payload []byte, out any) error {
	if c.config.TimeoutSecond > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(c.config.TimeoutSecond)*time.Second)
		defer cancel()
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return fmt.Errorf("sheets: build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.mRequests.Inc()
	start := time.Now()
	resp, err := c.http.Do(req)
	c.mDuration.UpdateDuration(start)
	if err != nil {
		return fmt.Errorf("sheets: %s: %w", method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return parseAPIError(resp)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("sheets: decode response: %w", err)
		}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// retryable reports whether a failed attempt is worth repeating: rate limits,
// server-side failures and transport errors are, other API errors are not.
func retryable(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusTooManyRequests || apiErr.StatusCode >= 500
	}
	return true
}

// parseAPIError decodes the error envelope of a non-2xx response.
func parseAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	var envelope struct {
		Error struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
			Status  string `json:"status"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err == nil {
		apiErr.Status = envelope.Error.Status
		apiErr.Message = envelope.Error.Message
	}
	if apiErr.Message == "" {
		apiErr.Message = resp.Status
	}
	return apiErr
}

// --------------------------------------------------------------------------
// Addressing helpers
// --------------------------------------------------------------------------

// rangeRef builds an A1 range reference scoped to the configured tab. The
// tab title is quoted so titles with spaces or special characters work.
func (c *Client) rangeRef(cell string) string {
	title := "'" + strings.ReplaceAll(c.config.Sheet, "'", "''") + "'"
	if cell == "" {
		return title
	}
	return title + "!" + cell
}

// valuesURL builds the values endpoint URL for an A1 range reference.
func (c *Client) valuesURL(ref string) string {
	return fmt.Sprintf("%s/%s/values/%s", c.baseURL, c.config.SpreadsheetID, url.PathEscape(ref))
}

// a1Cell converts a 1-based row and 0-based column to A1 notation.
func a1Cell(row, col int) string {
	return colName(col) + strconv.Itoa(row)
}

// colName converts a 0-based column number to its letter form (0 -> A,
// 25 -> Z, 26 -> AA).
func colName(col int) string {
	name := ""
	for col >= 0 {
		name = string(rune('A'+col%26)) + name
		col = col/26 - 1
	}
	return name
}

// resolveSheetID looks up the numeric id of the configured tab, needed by
// the row deletion API. The id is cached after the first lookup.
func (c *Client) resolveSheetID(ctx context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sheetIDResolved {
		return c.sheetID, nil
	}

	var meta struct {
		Sheets []struct {
			Properties struct {
				SheetID int64  `json:"sheetId"`
				Title   string `json:"title"`
			} `json:"properties"`
		} `json:"sheets"`
	}
	metaURL := fmt.Sprintf("%s/%s?fields=sheets.properties", c.baseURL, c.config.SpreadsheetID)
	if err := c.do(ctx, http.MethodGet, metaURL, nil, &meta); err != nil {
		return 0, err
	}

	for _, sheet := range meta.Sheets {
		if sheet.Properties.Title == c.config.Sheet {
			c.sheetID = sheet.Properties.SheetID
			c.sheetIDResolved = true
			return c.sheetID, nil
		}
	}
	return 0, fmt.Errorf("sheets: no tab named %q in spreadsheet %s", c.config.Sheet, c.config.SpreadsheetID)
}

// --------------------------------------------------------------------------
// Interface Methods (docu see remote.ITableClient)
// --------------------------------------------------------------------------

func (c *Client) FetchAll(ctx context.Context) ([][]string, error) {
	var out struct {
		Values [][]any `json:"values"`
	}
	if err := c.do(ctx, http.MethodGet, c.valuesURL(c.rangeRef("")), nil, &out); err != nil {
		return nil, err
	}

	// formatted cell values arrive as strings, anything else is stringified
	rows := make([][]string, 0, len(out.Values))
	for _, raw := range out.Values {
		row := make([]string, 0, len(raw))
		for _, cell := range raw {
			switch v := cell.(type) {
			case string:
				row = append(row, v)
			case nil:
				row = append(row, "")
			default:
				row = append(row, fmt.Sprint(v))
			}
		}
		rows = append(rows, row)
	}

	c.logger.Debug("fetched table", "rows", len(rows))
	return rows, nil
}

func (c *Client) AppendRow(ctx context.Context, cells []string) error {
	appendURL := c.valuesURL(c.rangeRef("")) + ":append?valueInputOption=RAW&insertDataOption=INSERT_ROWS"
	body := map[string]any{"values": [][]string{cells}}
	if err := c.do(ctx, http.MethodPost, appendURL, body, nil); err != nil {
		return err
	}

	c.logger.Debug("appended row")
	return nil
}

func (c *Client) UpdateCell(ctx context.Context, row, col int, value string) error {
	if row < 1 || col < 0 {
		return fmt.Errorf("sheets: invalid cell position (%d,%d)", row, col)
	}

	cell := a1Cell(row, col)
	updateURL := c.valuesURL(c.rangeRef(cell)) + "?valueInputOption=RAW"
	body := map[string]any{"values": [][]string{{value}}}
	if err := c.do(ctx, http.MethodPut, updateURL, body, nil); err != nil {
		return err
	}

	c.logger.Debug("updated cell", "cell", cell)
	return nil
}

func (c *Client) DeleteRows(ctx context.Context, start, end int) error {
	if start < 1 || end < start {
		return fmt.Errorf("sheets: invalid row range [%d,%d)", start, end)
	}
	if start == end {
		return nil
	}

	sheetID, err := c.resolveSheetID(ctx)
	if err != nil {
		return err
	}

	// the dimension API addresses rows 0-based, half-open
	body := map[string]any{
		"requests": []map[string]any{{
			"deleteDimension": map[string]any{
				"range": map[string]any{
					"sheetId":    sheetID,
					"dimension":  "ROWS",
					"startIndex": start - 1,
					"endIndex":   end - 1,
				},
			},
		}},
	}
	batchURL := fmt.Sprintf("%s/%s:batchUpdate", c.baseURL, c.config.SpreadsheetID)
	if err := c.do(ctx, http.MethodPost, batchURL, body, nil); err != nil {
		return err
	}

	c.logger.Debug("deleted rows", "start", start, "end", end)
	return nil
}

func (c *Client) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

// ensure interface compliance
var _ remote.ITableClient = (*Client)(nil)
