package airtable

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/yungbote/ceustudio-backend/internal/pkg/httpx"
	"github.com/yungbote/ceustudio-backend/internal/platform/logger"
)

const DefaultBaseURL = "https://api.airtable.com/v0"

var ErrNotConfigured = errors.New("missing AIRTABLE_BASE_ID or AIRTABLE_TOKEN")

type Config struct {
	BaseURL string
	BaseID  string
	Token   string
	Table   string
	Timeout time.Duration
}

func (c Config) Configured() bool {
	return strings.TrimSpace(c.BaseID) != "" && strings.TrimSpace(c.Token) != ""
}

type Record struct {
	ID          string         `json:"id,omitempty"`
	CreatedTime string         `json:"createdTime,omitempty"`
	Fields      map[string]any `json:"fields"`
}

type RecordList struct {
	Records []Record `json:"records"`
	Offset  string   `json:"offset,omitempty"`
}

type ListOptions struct {
	FilterByFormula string
	PageSize        int
	SortField       string
	SortDesc        bool
}

// StatusError is a non-2xx answer from Airtable. Callers pass Status through.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("airtable status %d: %s", e.Status, e.Body)
	}
	return fmt.Sprintf("airtable status %d", e.Status)
}

func (e *StatusError) HTTPStatusCode() int { return e.Status }

type Client interface {
	ListRecords(ctx context.Context, opts ListOptions) (*RecordList, error)
	CreateRecord(ctx context.Context, fields map[string]any) (*Record, error)
}

type client struct {
	log    *logger.Logger
	cfg    Config
	hc     *http.Client
	policy httpx.RetryPolicy
}

func NewClient(cfg Config, baseLog *logger.Logger) (Client, error) {
	if !cfg.Configured() {
		return nil, ErrNotConfigured
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Table == "" {
		cfg.Table = "Waitlist"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &client{
		log:    baseLog.With("client", "AirtableClient", "table", cfg.Table),
		cfg:    cfg,
		hc:     &http.Client{Timeout: timeout},
		policy: httpx.RetryPolicy{MaxAttempts: 3, BaseDelay: 300 * time.Millisecond, MaxDelay: 5 * time.Second},
	}, nil
}

func (c *client) tableURL() string {
	return fmt.Sprintf("%s/%s/%s", strings.TrimRight(c.cfg.BaseURL, "/"), url.PathEscape(c.cfg.BaseID), url.PathEscape(c.cfg.Table))
}

func (c *client) ListRecords(ctx context.Context, opts ListOptions) (*RecordList, error) {
	q := url.Values{}
	if opts.FilterByFormula != "" {
		q.Set("filterByFormula", opts.FilterByFormula)
	}
	if opts.PageSize > 0 {
		q.Set("pageSize", strconv.Itoa(opts.PageSize))
	}
	if opts.SortField != "" {
		q.Set("sort[0][field]", opts.SortField)
		dir := "asc"
		if opts.SortDesc {
			dir = "desc"
		}
		q.Set("sort[0][direction]", dir)
	}
	target := c.tableURL()
	if len(q) > 0 {
		target += "?" + q.Encode()
	}

	var out RecordList
	if err := c.do(ctx, http.MethodGet, target, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *client) CreateRecord(ctx context.Context, fields map[string]any) (*Record, error) {
	body, err := json.Marshal(Record{Fields: fields})
	if err != nil {
		return nil, err
	}
	var out Record
	if err := c.do(ctx, http.MethodPost, c.tableURL(), body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *client) do(ctx context.Context, method, target string, body []byte, out any) error {
	start := time.Now()
	resp, err := httpx.Do(ctx, c.hc, c.policy, func(ctx context.Context) (*http.Request, error) {
		var rdr io.Reader
		if body != nil {
			rdr = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, target, rdr)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		return req, nil
	})
	if err != nil {
		return fmt.Errorf("airtable %s: %w", method, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("read airtable response: %w", err)
	}
	c.log.Debug("airtable call", "method", method, "status", resp.StatusCode, "duration_ms", time.Since(start).Milliseconds())
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Status: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode airtable response: %w", err)
	}
	return nil
}

// EmailFormula builds the case-insensitive duplicate check used by the waitlist.
func EmailFormula(email string) string {
	e := strings.ToLower(strings.TrimSpace(email))
	e = strings.ReplaceAll(e, `\`, `\\`)
	e = strings.ReplaceAll(e, `'`, `\'`)
	return fmt.Sprintf("LOWER({Email})='%s'", e)
}
