// Package backend is the REST client for the clinic backend API.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"clinic-console/internal/core/domain"
	"clinic-console/internal/core/form"
	"clinic-console/internal/pkg/apierror"
	"clinic-console/internal/pkg/pagination"
)

// Config points the client at the backend
type Config struct {
	APIURL         string
	FileUploadsURL string
	Timeout        time.Duration
}

// envelope is the response body of every backend endpoint
type envelope struct {
	Status  *bool           `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Client talks to the backend API and its file storage. Requests are never
// retried.
type Client struct {
	api    *resty.Client
	files  *resty.Client
	logger *zap.Logger
}

// New creates a backend client
func New(cfg Config, logger *zap.Logger) *Client {
	api := resty.New().
		SetBaseURL(cfg.APIURL).
		SetTimeout(cfg.Timeout).
		SetRetryCount(0).
		SetHeader("Accept", "application/json")

	files := resty.New().
		SetBaseURL(cfg.FileUploadsURL).
		SetTimeout(cfg.Timeout).
		SetRetryCount(0)

	return &Client{api: api, files: files, logger: logger}
}

// Session is a Client bound to one user's bearer token
type Session struct {
	c     *Client
	token string
}

// WithToken binds the client to a user token
func (c *Client) WithToken(token string) *Session {
	return &Session{c: c, token: token}
}

// Login exchanges credentials for a token
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	req := c.api.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]string{"email": email, "password": password})

	data, err := c.execute(req, http.MethodPost, "/user/login")
	if err != nil {
		return "", err
	}

	var out struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(data, &out); err != nil || out.Token == "" {
		return "", fmt.Errorf("login response carries no token: %w", domain.ErrInternalServer)
	}
	return out.Token, nil
}

// CurrentUser returns the user the token belongs to
func (s *Session) CurrentUser(ctx context.Context) (*domain.User, error) {
	data, err := s.c.execute(s.request(ctx), http.MethodGet, "/user/current")
	if err != nil {
		return nil, err
	}
	var u domain.User
	if err := json.Unmarshal(data, &u); err != nil {
		return nil, fmt.Errorf("decode current user: %w", err)
	}
	return &u, nil
}

// List fetches one page of endpoint and decodes data.<listKey> into out
func (s *Session) List(ctx context.Context, endpoint, listKey string, values url.Values, out any) (pagination.Meta, error) {
	req := s.request(ctx).SetQueryParamsFromValues(values)

	data, err := s.c.execute(req, http.MethodGet, endpoint)
	if err != nil {
		return pagination.Meta{}, err
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return pagination.Meta{}, fmt.Errorf("decode %s list: %w", endpoint, err)
	}
	if raw, ok := fields[listKey]; ok && string(raw) != "null" {
		if err := json.Unmarshal(raw, out); err != nil {
			return pagination.Meta{}, fmt.Errorf("decode %s rows: %w", endpoint, err)
		}
	}

	meta := pagination.Default
	if raw, ok := fields["pagination"]; ok {
		if err := json.Unmarshal(raw, &meta); err != nil {
			return pagination.Meta{}, fmt.Errorf("decode %s pagination: %w", endpoint, err)
		}
	}
	return meta, nil
}

// Get fetches one record and decodes data.<itemKey> into out. An empty
// itemKey decodes data itself.
func (s *Session) Get(ctx context.Context, resource, itemKey string, out any) error {
	data, err := s.c.execute(s.request(ctx), http.MethodGet, resource)
	if err != nil {
		return err
	}
	return decodeItem(data, itemKey, out)
}

// Send issues a create or update with a form payload and returns data
func (s *Session) Send(ctx context.Context, method, resource string, p form.Payload) (json.RawMessage, error) {
	req := s.request(ctx)
	if p.Multipart {
		req.SetMultipartFormData(map[string]string{}).SetFormDataFromValues(p.Fields)
		for _, f := range p.Files {
			req.SetMultipartField(f.Field, f.Filename, f.ContentType, bytes.NewReader(f.Data))
		}
	} else {
		req.SetHeader("Content-Type", "application/json").SetBody(p.JSON)
	}
	return s.c.execute(req, method, resource)
}

// Delete removes one record
func (s *Session) Delete(ctx context.Context, resource string) error {
	_, err := s.c.execute(s.request(ctx), http.MethodDelete, resource)
	return err
}

// FetchAsset downloads a persisted file from FILE_UPLOADS_URL/<dir>/<filename>
func (c *Client) FetchAsset(ctx context.Context, dir, filename string) ([]byte, string, error) {
	p := "/" + path.Join(dir, url.PathEscape(filename))

	resp, err := c.files.R().SetContext(ctx).Get(p)
	if err != nil {
		return nil, "", &apierror.NetworkError{Method: http.MethodGet, URL: p, Err: err}
	}
	if resp.IsError() {
		return nil, "", apierror.FromResponse(resp.StatusCode(), resp.Body())
	}
	ctype := resp.Header().Get("Content-Type")
	if ctype == "" {
		ctype = http.DetectContentType(resp.Body())
	}
	return resp.Body(), ctype, nil
}

func (s *Session) request(ctx context.Context) *resty.Request {
	return s.c.api.R().SetContext(ctx).SetAuthToken(s.token)
}

func (c *Client) execute(req *resty.Request, method, resource string) (json.RawMessage, error) {
	start := time.Now()
	resp, err := req.Execute(method, resource)
	if err != nil {
		c.logger.Warn("backend request failed",
			zap.String("method", method),
			zap.String("path", resource),
			zap.Error(err),
		)
		return nil, &apierror.NetworkError{Method: method, URL: resource, Err: err}
	}

	c.logger.Debug("backend request",
		zap.String("method", method),
		zap.String("path", resource),
		zap.Int("status_code", resp.StatusCode()),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.IsError() {
		return nil, apierror.FromResponse(resp.StatusCode(), resp.Body())
	}

	var env envelope
	if len(resp.Body()) > 0 {
		if err := json.Unmarshal(resp.Body(), &env); err != nil {
			return nil, fmt.Errorf("decode %s %s: %w", method, resource, err)
		}
	}
	if env.Status != nil && !*env.Status {
		return nil, &apierror.ApplicationError{Message: env.Message}
	}
	return env.Data, nil
}

func decodeItem(data json.RawMessage, itemKey string, out any) error {
	if itemKey == "" {
		return json.Unmarshal(data, out)
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("decode %s: %w", itemKey, err)
	}
	raw, ok := fields[itemKey]
	if !ok || string(raw) == "null" {
		return domain.ErrNotFound
	}
	return json.Unmarshal(raw, out)
}
