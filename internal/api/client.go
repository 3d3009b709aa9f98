// Package api is the typed client for the retinopathy screening backend.
// Every response is decoded into an explicit type and validated here, so
// callers only see a value or a *Failure.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/tphakala/retinascan/internal/errors"
	"github.com/tphakala/retinascan/internal/httpclient"
	"github.com/tphakala/retinascan/internal/logger"
)

// Endpoint paths relative to the base URL.
const (
	PathCheckAuth = "/check-auth"
	PathLogin     = "/login"
	PathRegister  = "/register"
	PathLogout    = "/logout"
	PathPredict   = "/predict"
	PathHistory   = "/history"

	// ImageField is the multipart field carrying the image.
	ImageField = "image"

	maxResponseBytes = 4 << 20
)

// Operation names used in failures, logs and metrics.
const (
	OpCheckAuth = "check-auth"
	OpLogin     = "login"
	OpRegister  = "register"
	OpLogout    = "logout"
	OpPredict   = "predict"
	OpHistory   = "history"
)

// Image is what Predict uploads.
type Image interface {
	Filename() string
	ContentType() string
	Bytes() []byte
}

// Client talks to one backend. Safe for concurrent use.
type Client struct {
	http *httpclient.Client
	base *url.URL
}

// NewClient validates baseURL and binds it to hc.
func NewClient(baseURL string, hc *httpclient.Client) (*Client, error) {
	if hc == nil {
		return nil, errors.Newf("nil http client").
			Component("api").
			Category(errors.CategoryValidation).
			Build()
	}
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, errors.Newf("invalid backend URL %q", baseURL).
			Component("api").
			Category(errors.CategoryConfiguration).
			Build()
	}
	return &Client{http: hc, base: u}, nil
}

// BaseURL returns the backend root.
func (c *Client) BaseURL() *url.URL {
	u := *c.base
	return &u
}

func (c *Client) endpoint(path string) string {
	return c.base.JoinPath(path).String()
}

// CheckAuth asks whether the current session cookie is logged in.
func (c *Client) CheckAuth(ctx context.Context) (AuthStatus, error) {
	var status AuthStatus
	resp, err := c.http.Get(ctx, c.endpoint(PathCheckAuth))
	if err != nil {
		return status, transportFailure(OpCheckAuth, err)
	}
	if err := decodeResponse(OpCheckAuth, resp, &status); err != nil {
		return AuthStatus{}, err
	}
	if status.Authenticated && status.Username == "" {
		return AuthStatus{}, applicationFailure(OpCheckAuth, resp.StatusCode, "", fmt.Errorf("authenticated without username"))
	}
	return status, nil
}

// Login posts credentials and returns the logged-in user.
func (c *Client) Login(ctx context.Context, username, password string) (User, error) {
	body := map[string]string{"username": username, "password": password}
	return c.postUser(ctx, OpLogin, PathLogin, body)
}

// Register creates an account; the backend logs it in immediately.
func (c *Client) Register(ctx context.Context, username, email, password string) (User, error) {
	body := map[string]string{"username": username, "email": email, "password": password}
	return c.postUser(ctx, OpRegister, PathRegister, body)
}

func (c *Client) postUser(ctx context.Context, op, path string, body map[string]string) (User, error) {
	var user User
	resp, err := c.http.Post(ctx, c.endpoint(path), "application/json", mustJSON(body))
	if err != nil {
		return user, transportFailure(op, err)
	}
	if err := decodeResponse(op, resp, &user); err != nil {
		return User{}, err
	}
	if user.Username == "" {
		return User{}, applicationFailure(op, resp.StatusCode, "", fmt.Errorf("response without username"))
	}
	return user, nil
}

// Logout ends the backend session. Only the status matters.
func (c *Client) Logout(ctx context.Context) error {
	resp, err := c.http.Post(ctx, c.endpoint(PathLogout), "", nil)
	if err != nil {
		return transportFailure(OpLogout, err)
	}
	return decodeResponse(OpLogout, resp, nil)
}

// Predict uploads img as multipart field "image".
func (c *Client) Predict(ctx context.Context, img Image) (*Prediction, error) {
	if img == nil {
		return nil, errors.Newf("no image to submit").
			Component("api").
			Category(errors.CategoryValidation).
			Build()
	}

	payload, contentType, err := multipartImage(img)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := c.http.Post(ctx, c.endpoint(PathPredict), contentType, payload)
	if err != nil {
		return nil, transportFailure(OpPredict, err)
	}

	var raw predictResponse
	if err := decodeResponse(OpPredict, resp, &raw); err != nil {
		return nil, err
	}
	prediction, err := raw.prediction()
	if err != nil {
		return nil, applicationFailure(OpPredict, resp.StatusCode, "", err)
	}

	GetLogger().Debug("prediction received",
		logger.String("label", prediction.Label),
		logger.Float64("confidence", prediction.Confidence),
		logger.Int("severity", prediction.SeverityLevel),
		logger.Int("scores", len(prediction.Scores)),
		logger.Duration("elapsed", time.Since(start)))
	return prediction, nil
}

// History returns the past predictions in backend order.
func (c *Client) History(ctx context.Context) ([]HistoryEntry, error) {
	resp, err := c.http.Get(ctx, c.endpoint(PathHistory))
	if err != nil {
		return nil, transportFailure(OpHistory, err)
	}

	var raw historyResponse
	if err := decodeResponse(OpHistory, resp, &raw); err != nil {
		return nil, err
	}

	entries := make([]HistoryEntry, 0, len(raw.History))
	for i, h := range raw.History {
		// an unparsable date keeps the entry with a zero Timestamp
		ts, err := parseHistoryDate(h.Date)
		if err != nil {
			GetLogger().Warn("history entry has unrecognized date",
				logger.Int("index", i),
				logger.String("date", h.Date))
		}
		entries = append(entries, HistoryEntry{
			Label:      h.Prediction,
			Confidence: h.Confidence,
			Timestamp:  ts,
		})
	}
	return entries, nil
}

func multipartImage(img Image) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, ImageField, img.Filename()))
	ct := img.ContentType()
	if ct == "" {
		ct = "application/octet-stream"
	}
	header.Set("Content-Type", ct)

	part, err := w.CreatePart(header)
	if err != nil {
		return nil, "", errors.New(err).Component("api").Category(errors.CategoryFileIO).Build()
	}
	if _, err := part.Write(img.Bytes()); err != nil {
		return nil, "", errors.New(err).Component("api").Category(errors.CategoryFileIO).Build()
	}
	if err := w.Close(); err != nil {
		return nil, "", errors.New(err).Component("api").Category(errors.CategoryFileIO).Build()
	}
	return &buf, w.FormDataContentType(), nil
}

// decodeResponse closes resp.Body. 2xx bodies are decoded into out when out is
// non-nil; anything else becomes an ApplicationFailure carrying the "error" field.
func decodeResponse(op string, resp *http.Response, out any) error {
	defer func() {
		if err := resp.Body.Close(); err != nil {
			GetLogger().Debug("failed to close response body", logger.String("operation", op), logger.Error(err))
		}
	}()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return transportFailure(op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := extractErrorMessage(data)
		GetLogger().Debug("backend rejected request",
			logger.String("operation", op),
			logger.Int("status_code", resp.StatusCode),
			logger.String("message", msg))
		return applicationFailure(op, resp.StatusCode, msg, nil)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return applicationFailure(op, resp.StatusCode, "", fmt.Errorf("invalid response body: %w", err))
	}
	return nil
}

func extractErrorMessage(data []byte) string {
	var body errorBody
	if err := json.Unmarshal(data, &body); err != nil {
		return ""
	}
	if body.Error != "" {
		return body.Error
	}
	return body.Message
}

func mustJSON(v map[string]string) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err) // map[string]string always marshals
	}
	return data
}
