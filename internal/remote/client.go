// Package remote implements the store.Backend contract over the REST/SQL
// collaborator. The core treats it as just another record backend: same
// operations, with network failures mapped into the shared error taxonomy.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"go-workdesk/internal/shared/apperror"
	"go-workdesk/internal/store"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	group   singleflight.Group
	logger  *zap.Logger
}

var _ store.Backend = (*Client)(nil)

// NewClient builds a REST record backend. rps caps outgoing request rate;
// concurrent GETs for the same row are coalesced into one request.
func NewClient(baseURL string, rps float64, httpClient *http.Client, logger ...*zap.Logger) *Client {
	l := zap.L().Named("remote")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("remote")
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if rps <= 0 {
		rps = 20
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		limiter: rate.NewLimiter(rate.Limit(rps), int(rps)),
		logger:  l,
	}
}

func (c *Client) Get(ctx context.Context, table, id string) ([]byte, error) {
	key := table + "/" + id
	v, err, _ := c.group.Do(key, func() (any, error) {
		return c.fetch(ctx, table, id)
	})
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, nil
	}
	return v.([]byte), nil
}

func (c *Client) fetch(ctx context.Context, table, id string) ([]byte, error) {
	body, status, err := c.do(ctx, http.MethodGet, c.rowURL(table, id), nil)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, nil
	}
	if status != http.StatusOK {
		return nil, c.statusError(table, status)
	}
	return body, nil
}

func (c *Client) Put(ctx context.Context, table, id string, data []byte) error {
	_, status, err := c.do(ctx, http.MethodPut, c.rowURL(table, id), data)
	if err != nil {
		return err
	}
	if status != http.StatusOK && status != http.StatusCreated && status != http.StatusNoContent {
		return c.statusError(table, status)
	}
	return nil
}

func (c *Client) BulkPut(ctx context.Context, table string, recs []store.RawRecord) error {
	docs := make([]json.RawMessage, len(recs))
	for i, r := range recs {
		docs[i] = json.RawMessage(r.Data)
	}
	payload, err := json.Marshal(docs)
	if err != nil {
		return apperror.Wrap(err, apperror.CodeInternalError, "encode bulk payload", http.StatusInternalServerError)
	}
	_, status, err := c.do(ctx, http.MethodPost, c.tableURL(table)+"/bulk", payload)
	if err != nil {
		return err
	}
	if status != http.StatusOK && status != http.StatusCreated && status != http.StatusNoContent {
		return c.statusError(table, status)
	}
	return nil
}

func (c *Client) Delete(ctx context.Context, table, id string) error {
	_, status, err := c.do(ctx, http.MethodDelete, c.rowURL(table, id), nil)
	if err != nil {
		return err
	}
	if status == http.StatusNotFound {
		return apperror.ErrNotFound
	}
	if status != http.StatusOK && status != http.StatusNoContent {
		return c.statusError(table, status)
	}
	return nil
}

// List fetches the collection and evaluates conditions, ordering and limit
// locally; the collaborator only promises conventional collection GETs.
func (c *Client) List(ctx context.Context, table string, q store.RawQuery) ([]store.RawRecord, error) {
	body, status, err := c.do(ctx, http.MethodGet, c.tableURL(table), nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, c.statusError(table, status)
	}

	var docs []json.RawMessage
	if err := json.Unmarshal(body, &docs); err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInternalError, "decode collection", http.StatusInternalServerError)
	}

	type row struct {
		rec store.RawRecord
		doc map[string]any
	}
	rows := make([]row, 0, len(docs))
	for _, raw := range docs {
		doc := make(map[string]any)
		if err := json.Unmarshal(raw, &doc); err != nil {
			continue
		}
		id, _ := doc["id"].(string)
		if !store.MatchDocument(doc, q.Where) {
			continue
		}
		rows = append(rows, row{rec: store.RawRecord{ID: id, Data: []byte(raw)}, doc: doc})
	}

	if q.OrderBy != "" {
		sort.SliceStable(rows, func(i, j int) bool {
			cmp, ok := store.CompareValues(rows[i].doc[q.OrderBy], rows[j].doc[q.OrderBy])
			if !ok {
				return false
			}
			if q.Desc {
				return cmp > 0
			}
			return cmp < 0
		})
	}
	if q.Limit > 0 && len(rows) > q.Limit {
		rows = rows[:q.Limit]
	}

	out := make([]store.RawRecord, len(rows))
	for i, r := range rows {
		out[i] = r.rec
	}
	return out, nil
}

func (c *Client) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

func (c *Client) tableURL(table string) string {
	return c.baseURL + "/" + url.PathEscape(table)
}

func (c *Client) rowURL(table, id string) string {
	return c.tableURL(table) + "/" + url.PathEscape(id)
}

func (c *Client) do(ctx context.Context, method, rawURL string, body []byte) ([]byte, int, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, 0, apperror.Wrap(err, apperror.CodeBackendUnavailable, "Backend is unreachable", http.StatusServiceUnavailable)
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return nil, 0, apperror.Wrap(err, apperror.CodeInternalError, "build backend request", http.StatusInternalServerError)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("backend request failed",
			zap.String("method", method),
			zap.String("url", rawURL),
			zap.Error(err),
		)
		return nil, 0, apperror.Wrap(err, apperror.CodeBackendUnavailable, "Backend is unreachable", http.StatusServiceUnavailable)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, apperror.Wrap(err, apperror.CodeBackendUnavailable, "Backend is unreachable", http.StatusServiceUnavailable)
	}
	return payload, resp.StatusCode, nil
}

func (c *Client) statusError(table string, status int) error {
	if status >= http.StatusInternalServerError {
		return apperror.New(
			apperror.CodeBackendUnavailable,
			fmt.Sprintf("backend returned %d for table %s", status, table),
			http.StatusServiceUnavailable,
		)
	}
	return apperror.New(
		apperror.CodeInternalError,
		fmt.Sprintf("backend returned %d for table %s", status, table),
		http.StatusInternalServerError,
	)
}
