package odoo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tuanvumaihuynh/inventory-etl/internal/apperr"
	"github.com/tuanvumaihuynh/inventory-etl/internal/config"
)

var tracer = otel.Tracer("internal/odoo")

const (
	AuthenticatePath = "/web/session/authenticate"
	CallKWPath       = "/web/dataset/call_kw"

	maxResponseBytes = 256 << 20
)

// Client talks JSON-RPC to an Odoo server. The session cookie obtained by
// Authenticate is kept in the client's cookie jar and reused by later calls.
type Client struct {
	cfg        config.Odoo
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger

	reqID atomic.Int64
	uid   int64
}

// NewClient creates a client with its own cookie jar and a fixed per-call timeout.
func NewClient(cfg config.Odoo, logger *slog.Logger) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	return &Client{
		cfg:     cfg,
		baseURL: strings.TrimRight(cfg.URL, "/"),
		httpClient: &http.Client{
			Jar:     jar,
			Timeout: cfg.Timeout,
		},
		logger: logger.With(slog.String("component", "odoo")),
	}, nil
}

// UID returns the user id of the authenticated session, or 0 before Authenticate.
func (c *Client) UID() int64 {
	return c.uid
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  any    `json:"params"`
	ID      int64  `json:"id"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *RPCError       `json:"error"`
}

// RPCError is the error object of a JSON-RPC response.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    struct {
		Name    string `json:"name"`
		Message string `json:"message"`
	} `json:"data"`
}

func (e *RPCError) Error() string {
	if e.Data.Message != "" {
		return e.Data.Message
	}
	return e.Message
}

type authenticateParams struct {
	DB       string `json:"db"`
	Login    string `json:"login"`
	Password string `json:"password"`
}

type sessionInfo struct {
	UID json.RawMessage `json:"uid"`
}

// Authenticate opens a session. Any failure, including a rejected login, is
// reported as apperr.AuthenticationErr.
func (c *Client) Authenticate(ctx context.Context) error {
	var info *sessionInfo
	err := c.Call(ctx, AuthenticatePath, authenticateParams{
		DB:       c.cfg.DB,
		Login:    c.cfg.Login,
		Password: c.cfg.Password,
	}, &info)
	if err != nil {
		return apperr.AuthenticationErr.WrapParent(err)
	}

	if info == nil || isFalsy(info.UID) {
		return apperr.AuthenticationErr.WrapParent(fmt.Errorf("no session for login %q", c.cfg.Login))
	}

	var uid int64
	if err := json.Unmarshal(info.UID, &uid); err != nil {
		return apperr.AuthenticationErr.WrapParent(fmt.Errorf("decode uid: %w", err))
	}
	c.uid = uid

	c.logger.InfoContext(ctx, "authenticated", slog.Int64("uid", uid), slog.String("db", c.cfg.DB))
	return nil
}

type callKWParams struct {
	Model  string         `json:"model"`
	Method string         `json:"method"`
	Args   []any          `json:"args"`
	KWArgs map[string]any `json:"kwargs"`
}

// CallKW invokes method on model and decodes the result into result.
func (c *Client) CallKW(ctx context.Context, model, method string, args []any, kwargs map[string]any, result any) error {
	if args == nil {
		args = []any{}
	}
	if kwargs == nil {
		kwargs = map[string]any{}
	}

	ctx, span := tracer.Start(ctx, "Client.CallKW", trace.WithAttributes(
		attribute.String("odoo.model", model),
		attribute.String("odoo.method", method),
	))
	defer span.End()

	if err := c.Call(ctx, CallKWPath, callKWParams{
		Model:  model,
		Method: method,
		Args:   args,
		KWArgs: kwargs,
	}, result); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "odoo call failed")
		return fmt.Errorf("%s.%s: %w", model, method, err)
	}

	return nil
}

// Call posts a JSON-RPC envelope to path and decodes the result member into result.
//
// Transport failures and non-2xx statuses yield apperr.TransportErr; an error
// member in the response or an undecodable result yields apperr.RemoteApplicationErr.
// Every failure is logged here before it is returned.
func (c *Client) Call(ctx context.Context, path string, params, result any) error {
	err := c.call(ctx, path, params, result)
	if err != nil {
		c.logger.ErrorContext(ctx, "odoo call failed",
			slog.String("endpoint", path),
			slog.Any("error", err),
		)
	}
	return err
}

func (c *Client) call(ctx context.Context, path string, params, result any) error {
	body, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		Method:  "call",
		Params:  params,
		ID:      c.reqID.Add(1),
	})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return apperr.TransportErr.WrapParent(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperr.TransportErr.WrapParent(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return apperr.TransportErr.WrapParent(fmt.Errorf("read response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apperr.TransportErr.WrapParent(fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	var rpcResp rpcResponse
	if err := json.Unmarshal(raw, &rpcResp); err != nil {
		return apperr.RemoteApplicationErr.WrapParent(fmt.Errorf("decode response: %w", err))
	}

	if rpcResp.Error != nil {
		return apperr.RemoteApplicationErr.WrapParent(rpcResp.Error)
	}

	if result == nil || len(rpcResp.Result) == 0 {
		return nil
	}

	if err := json.Unmarshal(rpcResp.Result, result); err != nil {
		return apperr.RemoteApplicationErr.WrapParent(fmt.Errorf("decode result: %w", err))
	}

	return nil
}

// IsRemoteFailure reports whether err came from a failed remote call rather than
// from a local programming error.
func IsRemoteFailure(err error) bool {
	return errors.Is(err, apperr.TransportErr) || errors.Is(err, apperr.RemoteApplicationErr)
}
