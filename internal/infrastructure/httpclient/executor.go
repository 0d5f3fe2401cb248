package httpclient

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"webshop/internal/infrastructure/metrics"
	"webshop/pkg/config"
	"webshop/pkg/errors"
	"webshop/pkg/logger"
)

const RequestIDHeader = "X-Request-ID"

// Request describes one bounded call against the backend.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	// Body is JSON encoded. Ignored when Form is set.
	Body interface{}
	Form *MultipartForm
	// Timeout bounds the whole call. Zero means the executor default.
	Timeout time.Duration
	// DegradedPath is tried first in constrained deployments.
	DegradedPath string
	// NoCache defeats intermediary caches with a query stamp and no-store.
	NoCache bool
	// ColdStartHint turns a timeout into the warming-up message.
	ColdStartHint bool
	// Endpoint labels metrics and logs. Defaults to "METHOD path".
	Endpoint string
}

type MultipartForm struct {
	Fields map[string]string
	Files  []FormFile
}

type FormFile struct {
	Field       string
	Filename    string
	ContentType string
	Data        []byte
}

type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// Text returns the trimmed body as a string.
func (r *Response) Text() string {
	if r == nil {
		return ""
	}
	return strings.TrimSpace(string(r.Body))
}

// Executor performs backend calls with per-call time budgets, degraded
// endpoint selection and a uniform error taxonomy. It holds no mutable state
// and is safe for concurrent use.
type Executor struct {
	baseURL        string
	httpClient     *http.Client
	constrained    bool
	defaultTimeout time.Duration
	metrics        *metrics.MetricsManager
}

type Option func(*Executor)

func WithHTTPClient(c *http.Client) Option {
	return func(e *Executor) { e.httpClient = c }
}

// WithDeploymentMode selects degraded endpoints for config.DeploymentConstrained.
func WithDeploymentMode(mode string) Option {
	return func(e *Executor) { e.constrained = mode == config.DeploymentConstrained }
}

func WithDefaultTimeout(d time.Duration) Option {
	return func(e *Executor) { e.defaultTimeout = d }
}

func WithMetrics(m *metrics.MetricsManager) Option {
	return func(e *Executor) { e.metrics = m }
}

func NewExecutor(baseURL string, opts ...Option) *Executor {
	baseURL = strings.TrimRight(baseURL, "/")
	e := &Executor{
		baseURL:        baseURL,
		httpClient:     &http.Client{},
		constrained:    config.DefaultDeploymentMode(baseURL) == config.DeploymentConstrained,
		defaultTimeout: 30 * time.Second,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

func (e *Executor) BaseURL() string {
	return e.baseURL
}

func (e *Executor) Constrained() bool {
	return e.constrained
}

// Do runs req. In constrained deployments a request with a DegradedPath hits
// that path first and falls back to Path once on a 400 or 404.
func (e *Executor) Do(ctx context.Context, req Request) (*Response, error) {
	if req.DegradedPath == "" || !e.constrained {
		return e.send(ctx, req)
	}

	degraded := req
	degraded.Path = req.DegradedPath
	if degraded.Endpoint == "" {
		degraded.Endpoint = req.Method + " " + req.DegradedPath
	}
	resp, err := e.send(ctx, degraded)
	if err == nil {
		return resp, nil
	}

	appErr, ok := errors.As(err)
	if ok && appErr.Code == errors.CodeServerRejected &&
		(appErr.RemoteStatus == http.StatusBadRequest || appErr.RemoteStatus == http.StatusNotFound) {
		logger.Debug("degraded endpoint %s rejected with %d, falling back to %s", req.DegradedPath, appErr.RemoteStatus, req.Path)
		return e.send(ctx, req)
	}
	return nil, err
}

// DoChain tries each request in order and returns the first success, or the
// last failure when every request fails.
func (e *Executor) DoChain(ctx context.Context, reqs []Request) (*Response, error) {
	var lastErr error
	for _, req := range reqs {
		resp, err := e.Do(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if errors.Is(err, errors.CodeCanceled) {
			break
		}
		logger.Debug("fallback chain: %s %s failed: %v", req.Method, req.Path, err)
	}
	if lastErr == nil {
		lastErr = errors.Internal("empty request chain", nil)
	}
	return nil, lastErr
}

func (e *Executor) send(ctx context.Context, req Request) (*Response, error) {
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = e.defaultTimeout
	}
	endpoint := req.Endpoint
	if endpoint == "" {
		endpoint = req.Method + " " + req.Path
	}

	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	body, contentType, err := encodeBody(req)
	if err != nil {
		return nil, errors.Internal("failed to encode request", err)
	}

	target := e.baseURL + req.Path
	query := url.Values{}
	for k, vs := range req.Query {
		query[k] = append([]string(nil), vs...)
	}
	if req.NoCache {
		query.Set("t", strconv.FormatInt(time.Now().UnixMilli(), 10))
	}
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	httpReq, err := http.NewRequestWithContext(callCtx, req.Method, target, body)
	if err != nil {
		return nil, errors.Internal("failed to build request", err)
	}
	requestID := uuid.NewString()
	httpReq.Header.Set(RequestIDHeader, requestID)
	httpReq.Header.Set("Accept", "application/json, text/plain, */*")
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	if req.NoCache {
		httpReq.Header.Set("Cache-Control", "no-store")
	}

	start := time.Now()
	resp, err := e.httpClient.Do(httpReq)
	if err != nil {
		appErr := classifyTransportError(ctx, callCtx, err, timeout, req.ColdStartHint)
		e.observe(endpoint, appErr.Code, start)
		logger.Warn("%s failed after %s (request_id=%s): %v", endpoint, time.Since(start).Round(time.Millisecond), requestID, err)
		return nil, appErr
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		appErr := classifyTransportError(ctx, callCtx, err, timeout, req.ColdStartHint)
		e.observe(endpoint, appErr.Code, start)
		return nil, appErr
	}

	switch {
	case resp.StatusCode == http.StatusRequestEntityTooLarge:
		e.observe(endpoint, errors.CodePayloadTooLarge, start)
		msg := ErrorMessage(data)
		if msg == "" {
			msg = "The upload is too large for the server"
		}
		return nil, errors.PayloadTooLarge(msg)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		e.observe(endpoint, errors.CodeServerRejected, start)
		logger.Debug("%s rejected with %d (request_id=%s)", endpoint, resp.StatusCode, requestID)
		return nil, errors.ServerRejected(resp.StatusCode, ErrorMessage(data))
	}

	e.observe(endpoint, "OK", start)
	logger.Debug("%s -> %d in %s (request_id=%s)", endpoint, resp.StatusCode, time.Since(start).Round(time.Millisecond), requestID)
	return &Response{Status: resp.StatusCode, Header: resp.Header, Body: data}, nil
}

func (e *Executor) observe(endpoint, outcome string, start time.Time) {
	e.metrics.ObserveRequest(endpoint, outcome, time.Since(start))
}

func encodeBody(req Request) (io.Reader, string, error) {
	if req.Form != nil {
		return encodeMultipart(req.Form)
	}
	if req.Body == nil {
		return nil, "", nil
	}
	data, err := marshalJSON(req.Body)
	if err != nil {
		return nil, "", err
	}
	return bytes.NewReader(data), "application/json; charset=UTF-8", nil
}

func encodeMultipart(form *MultipartForm) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, f := range form.Files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, escapeQuotes(f.Field), escapeQuotes(f.Filename)))
		ct := f.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		h.Set("Content-Type", ct)
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(f.Data); err != nil {
			return nil, "", err
		}
	}
	for k, v := range form.Fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

// classifyTransportError distinguishes caller cancellation, an elapsed budget
// and an unreachable server.
func classifyTransportError(parent, call context.Context, err error, timeout time.Duration, coldStart bool) *errors.AppError {
	if stderrors.Is(parent.Err(), context.Canceled) {
		return errors.Canceled(err)
	}

	timedOut := stderrors.Is(call.Err(), context.DeadlineExceeded) || stderrors.Is(err, context.DeadlineExceeded)
	var netErr net.Error
	if !timedOut && stderrors.As(err, &netErr) && netErr.Timeout() {
		timedOut = true
	}
	if timedOut {
		if coldStart {
			return errors.WarmingUp(err)
		}
		return errors.Timeout(fmt.Sprintf("No response within %s", timeout), err)
	}
	return errors.NetworkUnreachable(err)
}
