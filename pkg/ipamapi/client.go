package ipamapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/moimran/netdata/pkg/crud"
	"github.com/moimran/netdata/pkg/metrics"
)

// Client talks to the IPAM REST API. It satisfies crud.Persister,
// crud.ReferenceFetcher and crud.Lister so the form controller, reference
// cache and table builder all share one upstream connection.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *logrus.Logger
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func WithLogger(l *logrus.Logger) Option {
	return func(c *Client) { c.logger = l }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		logger:  logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// listEnvelope is the paged listing response {"items": [...], "total": N}.
type listEnvelope struct {
	Items []crud.Record `json:"items"`
	Total int64         `json:"total"`
}

// List fetches one page of records with optional search and field filter.
func (c *Client) List(ctx context.Context, t crud.EntityType, p crud.ListParams) ([]crud.Record, int64, error) {
	q := url.Values{}
	q.Set("skip", strconv.Itoa(p.Offset))
	if p.Limit > 0 {
		q.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.Search != "" {
		q.Set("search", p.Search)
	}
	if p.Filter != nil && p.Filter.Field != "" {
		q.Set(p.Filter.Field, p.Filter.Value)
	}

	body, err := c.do(ctx, http.MethodGet, string(t), q, nil)
	if err != nil {
		return nil, 0, err
	}
	items, total, err := decodeListing(body)
	if err != nil {
		return nil, 0, errors.Wrapf(err, "list %s", t)
	}
	return items, total, nil
}

// ListAll fetches every record of one entity type, for reference data.
func (c *Client) ListAll(ctx context.Context, t crud.EntityType) ([]crud.Record, error) {
	q := url.Values{}
	q.Set("skip", "0")
	q.Set("limit", "1000")
	body, err := c.do(ctx, http.MethodGet, string(t), q, nil)
	if err != nil {
		return nil, err
	}
	items, _, err := decodeListing(body)
	if err != nil {
		return nil, errors.Wrapf(err, "list all %s", t)
	}
	return items, nil
}

func (c *Client) Get(ctx context.Context, t crud.EntityType, id int64) (crud.Record, error) {
	body, err := c.do(ctx, http.MethodGet, fmt.Sprintf("%s/%d", t, id), nil, nil)
	if err != nil {
		return nil, err
	}
	var rec crud.Record
	if err := json.Unmarshal(body, &rec); err != nil {
		return nil, errors.Wrapf(err, "get %s/%d", t, id)
	}
	return rec, nil
}

func (c *Client) Create(ctx context.Context, t crud.EntityType, rec crud.Record) (crud.Record, error) {
	body, err := c.do(ctx, http.MethodPost, string(t), nil, rec)
	if err != nil {
		return nil, err
	}
	var saved crud.Record
	if err := json.Unmarshal(body, &saved); err != nil {
		return nil, errors.Wrapf(err, "create %s", t)
	}
	return saved, nil
}

func (c *Client) Update(ctx context.Context, t crud.EntityType, id int64, rec crud.Record) (crud.Record, error) {
	body, err := c.do(ctx, http.MethodPut, fmt.Sprintf("%s/%d", t, id), nil, rec)
	if err != nil {
		return nil, err
	}
	var saved crud.Record
	if err := json.Unmarshal(body, &saved); err != nil {
		return nil, errors.Wrapf(err, "update %s/%d", t, id)
	}
	return saved, nil
}

func (c *Client) Delete(ctx context.Context, t crud.EntityType, id int64) error {
	_, err := c.do(ctx, http.MethodDelete, fmt.Sprintf("%s/%d", t, id), nil, nil)
	if err != nil {
		return &crud.DeleteError{Type: t, ID: id, Err: err}
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, q url.Values, payload any) ([]byte, error) {
	entity := path
	if i := strings.IndexByte(entity, '/'); i >= 0 {
		entity = entity[:i]
	}

	u := c.baseURL + "/" + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	var reqBody io.Reader
	if payload != nil {
		buf, err := json.Marshal(payload)
		if err != nil {
			return nil, errors.Wrap(err, "marshal request")
		}
		reqBody = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues(entity, "error").Inc()
		return nil, errors.Wrapf(err, "%s %s", method, u)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues(entity, "error").Inc()
		return nil, errors.Wrapf(err, "read %s %s", method, u)
	}

	if resp.StatusCode >= 400 {
		metrics.UpstreamRequestsTotal.WithLabelValues(entity, strconv.Itoa(resp.StatusCode)).Inc()
		apiErr := parseAPIError(resp.StatusCode, body)
		c.logger.WithFields(logrus.Fields{
			"method": method,
			"url":    u,
			"status": resp.StatusCode,
		}).Warn(apiErr.Error())
		return nil, apiErr
	}

	metrics.UpstreamRequestsTotal.WithLabelValues(entity, "ok").Inc()
	return body, nil
}

// decodeListing tolerates the three listing shapes seen across API versions:
// a bare array, {"items": [...], "total": N} and {"data": [...]}.
func decodeListing(body []byte) ([]crud.Record, int64, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items []crud.Record
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, 0, err
		}
		return items, int64(len(items)), nil
	}

	var env listEnvelope
	if err := json.Unmarshal(trimmed, &env); err == nil && env.Items != nil {
		if env.Total == 0 {
			env.Total = int64(len(env.Items))
		}
		return env.Items, env.Total, nil
	}

	var alt struct {
		Data  []crud.Record `json:"data"`
		Total int64         `json:"total"`
	}
	if err := json.Unmarshal(trimmed, &alt); err != nil {
		return nil, 0, err
	}
	if alt.Total == 0 {
		alt.Total = int64(len(alt.Data))
	}
	return alt.Data, alt.Total, nil
}

var (
	_ crud.Persister        = (*Client)(nil)
	_ crud.ReferenceFetcher = (*Client)(nil)
	_ crud.Lister           = (*Client)(nil)
)
