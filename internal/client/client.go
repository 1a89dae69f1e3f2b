// Package client is a typed client for the sales HTTP API, used by the CLI
// when it talks to a running server instead of opening the store itself.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"

	"github.com/JonMunkholm/ventes/internal/application"
	"github.com/JonMunkholm/ventes/internal/core"
	"github.com/JonMunkholm/ventes/internal/exporter"
	"github.com/JonMunkholm/ventes/internal/importer"
)

// Client calls the sales API. It never retries: a failed write is reported
// as is, and the caller decides.
type Client struct {
	http *resty.Client
}

// New creates a Client for the API at baseURL.
func New(baseURL string, timeout time.Duration) *Client {
	c := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "ventes-cli")

	c.OnBeforeRequest(func(_ *resty.Client, r *resty.Request) error {
		if r.Header.Get("X-Request-Id") == "" {
			r.SetHeader("X-Request-Id", uuid.NewString())
		}
		return nil
	})

	return &Client{http: c}
}

// APIError is a non-2xx answer from the API.
type APIError struct {
	Status  int
	Code    string                `json:"code"`
	Message string                `json:"message"`
	Action  string                `json:"action"`
	Fields  core.ValidationErrors `json:"fields"`
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("api: HTTP %d", e.Status)
	}
	return fmt.Sprintf("api: HTTP %d %s: %s", e.Status, e.Code, e.Message)
}

// codeErrors lets callers match API errors with errors.Is like local ones.
var codeErrors = map[string]error{
	"STO001":  core.ErrCapacityExceeded,
	"STO002":  core.ErrNotFound,
	"DUP001":  core.ErrDuplicate,
	"FILE001": importer.ErrFileTooLarge,
	"FILE003": core.ErrNothingToImport,
	"FILE005": core.ErrNothingToExport,
	"FILE006": exporter.ErrUnknownFormat,
	"REQ001":  core.ErrBusy,
}

// Unwrap returns the field errors of a validation failure, or the sentinel
// matching the error code.
func (e *APIError) Unwrap() error {
	if len(e.Fields) > 0 {
		return e.Fields
	}
	return codeErrors[e.Code]
}

func apiError(resp *resty.Response) error {
	e := &APIError{Status: resp.StatusCode()}
	// A body that is not an ErrorResponse still yields the status.
	_ = json.Unmarshal(resp.Body(), e)
	return e
}

// do executes req and turns transport failures and non-2xx answers into errors.
func (c *Client) do(req *resty.Request, method, path string) (*resty.Response, error) {
	resp, err := req.Execute(method, path)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	if resp.IsError() {
		return resp, apiError(resp)
	}
	return resp, nil
}

// =============================================================================
// Sales
// =============================================================================

// ListQuery selects a page of sales. Zero values are left to the server.
type ListQuery struct {
	Filters  core.Filters
	Sort     string
	Dir      core.Direction
	Page     int
	PageSize int
}

func filterValues(f core.Filters) url.Values {
	q := url.Values{}
	set := func(k, v string) {
		if v != "" {
			q.Set(k, v)
		}
	}
	set("search", f.Search)
	set("building", f.Building)
	set("dateFrom", f.DateFrom)
	set("dateTo", f.DateTo)
	set("prix", string(f.Prix))
	return q
}

func (lq ListQuery) values() url.Values {
	q := filterValues(lq.Filters)
	if lq.Sort != "" {
		q.Set("sort", lq.Sort)
		q.Set("dir", string(lq.Dir))
	}
	if lq.Page > 0 {
		q.Set("page", fmt.Sprint(lq.Page))
	}
	if lq.PageSize > 0 {
		q.Set("pageSize", fmt.Sprint(lq.PageSize))
	}
	return q
}

// List returns one page of sales.
func (c *Client) List(ctx context.Context, lq ListQuery) (application.ListResult, error) {
	var out application.ListResult
	_, err := c.do(c.http.R().SetContext(ctx).SetQueryParamsFromValues(lq.values()).SetResult(&out),
		http.MethodGet, "/api/sales")
	return out, err
}

// Get returns one sale.
func (c *Client) Get(ctx context.Context, id string) (core.Sale, error) {
	var out core.Sale
	_, err := c.do(c.http.R().SetContext(ctx).SetPathParam("id", id).SetResult(&out),
		http.MethodGet, "/api/sales/{id}")
	return out, err
}

// Create adds a sale and returns it with its id.
func (c *Client) Create(ctx context.Context, sale core.Sale) (core.Sale, error) {
	var out core.Sale
	_, err := c.do(c.http.R().SetContext(ctx).SetBody(sale).SetResult(&out),
		http.MethodPost, "/api/sales")
	return out, err
}

// Update replaces the sale with id.
func (c *Client) Update(ctx context.Context, id string, sale core.Sale) (core.Sale, error) {
	var out core.Sale
	_, err := c.do(c.http.R().SetContext(ctx).SetPathParam("id", id).SetBody(sale).SetResult(&out),
		http.MethodPut, "/api/sales/{id}")
	return out, err
}

// Delete removes the sale with id.
func (c *Client) Delete(ctx context.Context, id string) error {
	_, err := c.do(c.http.R().SetContext(ctx).SetPathParam("id", id),
		http.MethodDelete, "/api/sales/{id}")
	return err
}

// Clear removes every sale and returns how many there were.
func (c *Client) Clear(ctx context.Context) (int, error) {
	var out struct {
		Deleted int `json:"deleted"`
	}
	_, err := c.do(c.http.R().SetContext(ctx).SetResult(&out),
		http.MethodDelete, "/api/sales")
	return out.Deleted, err
}

// =============================================================================
// Files
// =============================================================================

// Import uploads a file. When nothing is accepted the outcome still carries
// the row errors and the error matches core.ErrNothingToImport.
func (c *Client) Import(ctx context.Context, filename string, r io.Reader) (application.ImportOutcome, error) {
	var out application.ImportOutcome
	resp, err := c.do(c.http.R().SetContext(ctx).SetFileReader("file", filename, r).SetResult(&out),
		http.MethodPost, "/api/import")
	if err != nil && resp != nil && resp.StatusCode() == http.StatusUnprocessableEntity {
		if derr := json.Unmarshal(resp.Body(), &out); derr != nil {
			return out, errors.Join(err, fmt.Errorf("decode import outcome: %w", derr))
		}
	}
	return out, err
}

// Export downloads the filtered view in format f to w and returns the
// filename suggested by the server.
func (c *Client) Export(ctx context.Context, w io.Writer, f exporter.Format, filters core.Filters) (string, error) {
	q := filterValues(filters)
	q.Set("format", string(f))

	resp, err := c.do(c.http.R().SetContext(ctx).SetQueryParamsFromValues(q),
		http.MethodGet, "/api/export")
	if err != nil {
		return "", err
	}

	filename := exporter.Filename(f, time.Now())
	if _, params, err := mime.ParseMediaType(resp.Header().Get("Content-Disposition")); err == nil && params["filename"] != "" {
		filename = params["filename"]
	}
	if _, err := w.Write(resp.Body()); err != nil {
		return "", fmt.Errorf("write export: %w", err)
	}
	return filename, nil
}

// =============================================================================
// Stats
// =============================================================================

// Stats returns the dashboard counters.
func (c *Client) Stats(ctx context.Context) (core.Stats, error) {
	var out core.Stats
	_, err := c.do(c.http.R().SetContext(ctx).SetResult(&out), http.MethodGet, "/api/stats")
	return out, err
}

// SalesByMonth returns sales per YYYY-MM.
func (c *Client) SalesByMonth(ctx context.Context) (map[string]int, error) {
	out := map[string]int{}
	_, err := c.do(c.http.R().SetContext(ctx).SetResult(&out), http.MethodGet, "/api/stats/monthly")
	return out, err
}

// Buildings returns the distinct building codes.
func (c *Client) Buildings(ctx context.Context) ([]string, error) {
	var out struct {
		Buildings []string `json:"buildings"`
	}
	_, err := c.do(c.http.R().SetContext(ctx).SetResult(&out), http.MethodGet, "/api/buildings")
	return out.Buildings, err
}
