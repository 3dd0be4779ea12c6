package store

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// PostgREST talks to a hosted PostgREST endpoint (Supabase REST API).
type PostgREST struct {
	client *resty.Client
}

func NewPostgREST(baseURL, key string) *PostgREST {
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")+"/rest/v1").
		SetTimeout(30*time.Second).
		SetHeader("apikey", key).
		SetHeader("Authorization", "Bearer "+key).
		SetHeader("Accept", "application/json")
	return &PostgREST{client: client}
}

func (p *PostgREST) Select(ctx context.Context, table string, q Query) ([]Row, error) {
	req := p.client.R().SetContext(ctx)

	cols := "*"
	if len(q.Columns) > 0 {
		cols = strings.Join(q.Columns, ",")
	}
	req.SetQueryParam("select", cols)
	for _, f := range q.Where {
		req.SetQueryParam(f.Column, "eq."+formatValue(f.Value))
	}
	if q.OrderBy != "" {
		req.SetQueryParam("order", q.OrderBy)
	}
	if q.Limit > 0 {
		req.SetQueryParam("offset", strconv.Itoa(q.Offset))
		req.SetQueryParam("limit", strconv.Itoa(q.Limit))
	}

	resp, err := req.Get("/" + table)
	if err := checkResponse("select", table, resp, err); err != nil {
		return nil, err
	}

	var rows []Row
	if err := json.Unmarshal(resp.Body(), &rows); err != nil {
		return nil, newError(KindDecode, "select", table, err)
	}
	return rows, nil
}

func (p *PostgREST) Insert(ctx context.Context, table string, rows []Row) error {
	if len(rows) == 0 {
		return nil
	}
	resp, err := p.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("Prefer", "return=minimal").
		SetBody(rows).
		Post("/" + table)
	return checkResponse("insert", table, resp, err)
}

func (p *PostgREST) Update(ctx context.Context, table string, where Eq, values Row) (int, error) {
	resp, err := p.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("Prefer", "return=representation").
		SetQueryParam(where.Column, "eq."+formatValue(where.Value)).
		SetQueryParam("select", "id").
		SetBody(values).
		Patch("/" + table)
	if err := checkResponse("update", table, resp, err); err != nil {
		return 0, err
	}
	return countRows("update", table, resp.Body())
}

func (p *PostgREST) Delete(ctx context.Context, table, column string, values []any) (int, error) {
	if len(values) == 0 {
		return 0, nil
	}
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = strconv.Quote(formatValue(v))
	}

	resp, err := p.client.R().
		SetContext(ctx).
		SetHeader("Prefer", "return=representation").
		SetQueryParam(column, "in.("+strings.Join(quoted, ",")+")").
		SetQueryParam("select", column).
		Delete("/" + table)
	if err := checkResponse("delete", table, resp, err); err != nil {
		return 0, err
	}
	return countRows("delete", table, resp.Body())
}

func checkResponse(op, table string, resp *resty.Response, err error) error {
	if err != nil {
		return newError(KindTransport, op, table, err)
	}
	code := resp.StatusCode()
	if code >= 200 && code < 300 {
		return nil
	}

	kind := KindStatus
	if code == http.StatusNotFound {
		kind = KindNotFound
	}
	return &Error{
		Kind:   kind,
		Op:     op,
		Table:  table,
		Status: code,
		Err:    fmt.Errorf("%s", strings.TrimSpace(string(resp.Body()))),
	}
}

func countRows(op, table string, body []byte) (int, error) {
	if len(body) == 0 {
		return 0, nil
	}
	var rows []json.RawMessage
	if err := json.Unmarshal(body, &rows); err != nil {
		return 0, newError(KindDecode, op, table, err)
	}
	return len(rows), nil
}

func formatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case string:
		return t
	case *string:
		if t == nil {
			return "null"
		}
		return *t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}
