// Package ledger is the HTTP client for the remote taxonomy and transaction API.
package ledger

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/Veraticus/tidy-ledger/internal/common"
	"github.com/Veraticus/tidy-ledger/internal/model"
	"golang.org/x/oauth2"
)

// DefaultTimeout bounds a single request when no timeout is configured.
const DefaultTimeout = 20 * time.Second

// maxErrorBody caps how much of an error response is kept for reporting.
const maxErrorBody = 4 << 10

// Client talks to the ledger API. Every request it sends is rendered to the
// audit writer as an equivalent curl command before it goes out.
type Client struct {
	httpClient *http.Client
	audit      io.Writer
	tlsConfig  *tls.Config
	baseURL    string
	token      string
	timeout    time.Duration
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithToken authenticates every request with a static bearer token.
func WithToken(token string) ClientOption {
	return func(c *Client) {
		c.token = token
	}
}

// WithTLSConfig sets the TLS client configuration used for https base URLs.
func WithTLSConfig(cfg *tls.Config) ClientOption {
	return func(c *Client) {
		c.tlsConfig = cfg
	}
}

// WithAudit writes the curl equivalent of every request to w. A nil writer disables it.
func WithAudit(w io.Writer) ClientOption {
	return func(c *Client) {
		c.audit = w
	}
}

// NewClient creates a client for the API rooted at baseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: baseURL,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: c.timeout}
	}
	if c.tlsConfig != nil {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.TLSClientConfig = c.tlsConfig
		withTLS := *c.httpClient
		withTLS.Transport = transport
		c.httpClient = &withTLS
	}
	if c.token != "" {
		base := c.httpClient.Transport
		if base == nil {
			base = http.DefaultTransport
		}
		authed := *c.httpClient
		authed.Transport = &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: c.token, TokenType: "Bearer"}),
			Base:   base,
		}
		c.httpClient = &authed
	}

	return c
}

// BaseURL returns the API root the client was created with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Describe renders req as the curl command the client would audit for it.
func (c *Client) Describe(req Request) string {
	return req.Curl(c.baseURL)
}

// GetTaxonomy fetches the ordered group/category tree.
func (c *Client) GetTaxonomy(ctx context.Context) ([]TaxonomyGroup, error) {
	req := TaxonomyRequest()

	var groups []TaxonomyGroup
	if err := c.do(ctx, req, &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

// ListTransactions fetches one page of transactions for a ledger and date range.
func (c *Client) ListTransactions(ctx context.Context, q ListQuery) ([]model.Transaction, error) {
	req := ListRequest(q)

	var rows []transactionRow
	if err := c.do(ctx, req, &rows); err != nil {
		return nil, err
	}

	txns := make([]model.Transaction, 0, len(rows))
	for _, row := range rows {
		txn, err := row.toModel(q.Account)
		if err != nil {
			return nil, &APIError{Method: req.Method, Path: req.Path, Err: common.ErrMalformedResponse, Cause: err}
		}
		txns = append(txns, txn)
	}
	return txns, nil
}

// AssignCategory sets a transaction's category. Repeating the call with the
// same category is a no-op on the remote side and reports Created=false.
func (c *Client) AssignCategory(ctx context.Context, txnID int64, categoryID int) (Assignment, error) {
	req := AssignCategoryRequest(txnID, categoryID)

	var resp assignResponse
	if err := c.do(ctx, req, &resp); err != nil {
		return Assignment{}, err
	}

	if resp.OK != nil && !*resp.OK {
		return Assignment{}, &APIError{Method: req.Method, Path: req.Path, Err: common.ErrRemoteRejected, Body: resp.Message}
	}
	if resp.Data.CategoryID != 0 && resp.Data.CategoryID != categoryID {
		return Assignment{}, &APIError{
			Method: req.Method,
			Path:   req.Path,
			Err:    common.ErrMalformedResponse,
			Cause:  fmt.Errorf("acknowledged category %d, requested %d", resp.Data.CategoryID, categoryID),
		}
	}

	return Assignment{
		TransactionID: txnID,
		CategoryID:    categoryID,
		Created:       resp.Created,
		Message:       resp.Message,
	}, nil
}

func (c *Client) do(ctx context.Context, r Request, out any) error {
	body, err := r.EncodedBody()
	if err != nil {
		return err
	}

	if c.audit != nil {
		if _, err := fmt.Fprintln(c.audit, r.Curl(c.baseURL)); err != nil {
			slog.Warn("Failed to write request audit line", "error", err)
		}
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, r.Method, r.URL(c.baseURL), reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	slog.Debug("Sending ledger request", "method", r.Method, "path", r.Path)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(ctxErr, context.Canceled) {
			return ctxErr
		}
		return &APIError{Method: r.Method, Path: r.Path, Err: common.ErrRemoteUnavailable, Cause: err}
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			slog.Debug("Failed to close response body", "error", closeErr)
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &APIError{
			Method:     r.Method,
			Path:       r.Path,
			StatusCode: resp.StatusCode,
			Body:       string(bytes.TrimSpace(errBody)),
			Err:        classifyStatus(resp.StatusCode),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &APIError{Method: r.Method, Path: r.Path, StatusCode: resp.StatusCode, Err: common.ErrMalformedResponse, Cause: err}
	}
	return nil
}

// classifyStatus maps a non-2xx status onto the retry semantics callers act on.
func classifyStatus(status int) error {
	switch {
	case status == http.StatusTooManyRequests, status == http.StatusRequestTimeout:
		return common.ErrRemoteUnavailable
	case status >= 500:
		return common.ErrRemoteUnavailable
	default:
		return common.ErrRemoteRejected
	}
}

func (row transactionRow) toModel(fallback model.Ledger) (model.Transaction, error) {
	date, err := time.Parse(model.DateLayout, row.Date)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("transaction %d: invalid date %q: %w", row.ID, row.Date, err)
	}

	ledger := fallback
	if row.Account != "" {
		ledger = model.Ledger(row.Account)
	}

	txn := model.Transaction{
		ID:          row.ID,
		Ledger:      ledger,
		Date:        date,
		Amount:      row.Amount,
		Description: row.Description,
	}
	if row.GroupID != nil {
		txn.GroupID = *row.GroupID
	}
	if row.CategoryID != nil {
		txn.CategoryID = *row.CategoryID
	}
	return txn, nil
}
