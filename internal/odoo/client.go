// Package odoo implements the JSON-RPC transport used to reach the ERP backend.
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
	"strings"
	"time"

	"github.com/google/uuid"
)

// SessionCookie is the cookie carrying the backend session identifier.
const SessionCookie = "session_id"

// Call describes a single remote method invocation on a backend model.
type Call struct {
	Model  string
	Method string
	Args   []any
	Kwargs map[string]any
}

// String renders the call as model.method for logs and metrics.
func (c Call) String() string {
	return c.Model + "." + c.Method
}

// Session is the authenticated backend session returned by Authenticate.
type Session struct {
	ID       string
	UID      int64
	Name     string
	Login    string
	Company  int64
	Database string
}

// Client wraps interactions with the backend JSON-RPC endpoints.
type Client struct {
	baseURL    string
	database   string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient constructs a new client.
func NewClient(baseURL, database string, timeout time.Duration, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		database: database,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// BaseURL returns the backend address the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  any    `json:"params"`
	ID      string `json:"id"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      string          `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *rpcErrorBody   `json:"error"`
}

type rpcErrorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    struct {
		Name    string `json:"name"`
		Message string `json:"message"`
		Debug   string `json:"debug"`
	} `json:"data"`
}

type callParams struct {
	Model  string         `json:"model"`
	Method string         `json:"method"`
	Args   []any          `json:"args"`
	Kwargs map[string]any `json:"kwargs"`
}

type authenticateParams struct {
	DB       string `json:"db"`
	Login    string `json:"login"`
	Password string `json:"password"`
}

type authenticateResult struct {
	UID     Int64  `json:"uid"`
	Name    String `json:"name"`
	Login   String `json:"username"`
	Company Int64  `json:"company_id"`
	DB      String `json:"db"`
}

// Authenticate opens a backend session for the given credentials.
func (c *Client) Authenticate(ctx context.Context, login, password string) (Session, error) {
	params := authenticateParams{DB: c.database, Login: login, Password: password}
	raw, cookies, err := c.post(ctx, "/web/session/authenticate", "", params)
	if err != nil {
		if errors.Is(err, ErrAccessDenied) {
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, err
	}
	var result authenticateResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return Session{}, fmt.Errorf("odoo: decode authenticate: %w", err)
	}
	if result.UID == 0 {
		return Session{}, ErrInvalidCredentials
	}
	sess := Session{
		UID:      int64(result.UID),
		Name:     string(result.Name),
		Login:    string(result.Login),
		Company:  int64(result.Company),
		Database: string(result.DB),
	}
	for _, cookie := range cookies {
		if cookie.Name == SessionCookie {
			sess.ID = cookie.Value
		}
	}
	if sess.ID == "" {
		return Session{}, fmt.Errorf("odoo: authenticate: %w", ErrNoSessionCookie)
	}
	return sess, nil
}

// Logout destroys the backend session.
func (c *Client) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	_, _, err := c.post(ctx, "/web/session/destroy", sessionID, map[string]any{})
	return err
}

// Bind returns a Caller issuing requests on behalf of the given session.
func (c *Client) Bind(sessionID string) *Caller {
	return &Caller{client: c, sessionID: sessionID}
}

// Caller issues model method calls within a backend session.
type Caller struct {
	client    *Client
	sessionID string
}

// SessionID exposes the bound backend session identifier.
func (c *Caller) SessionID() string {
	if c == nil {
		return ""
	}
	return c.sessionID
}

// Invoke performs the call exactly once and returns the raw result.
func (c *Caller) Invoke(ctx context.Context, call Call) (json.RawMessage, error) {
	if c == nil || c.client == nil {
		return nil, ErrNotConfigured
	}
	if call.Model == "" || call.Method == "" {
		return nil, fmt.Errorf("odoo: call requires model and method")
	}
	args := call.Args
	if args == nil {
		args = []any{}
	}
	kwargs := call.Kwargs
	if kwargs == nil {
		kwargs = map[string]any{}
	}
	path := fmt.Sprintf("/web/dataset/call_kw/%s/%s", call.Model, call.Method)
	start := time.Now()
	raw, _, err := c.client.post(ctx, path, c.sessionID, callParams{
		Model:  call.Model,
		Method: call.Method,
		Args:   args,
		Kwargs: kwargs,
	})
	if c.client.logger != nil {
		c.client.logger.Debug("odoo call",
			slog.String("call", call.String()),
			slog.Duration("elapsed", time.Since(start)),
			slog.Bool("ok", err == nil))
	}
	if err != nil {
		return nil, err
	}
	return raw, nil
}

// Decode invokes the call and unmarshals the result into out.
func (c *Caller) Decode(ctx context.Context, call Call, out any) error {
	raw, err := c.Invoke(ctx, call)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("odoo: decode %s: %w", call, err)
	}
	return nil
}

func (c *Client) post(ctx context.Context, path, sessionID string, params any) (json.RawMessage, []*http.Cookie, error) {
	payload, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		Method:  "call",
		Params:  params,
		ID:      uuid.NewString(),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("odoo: encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if sessionID != "" {
		req.AddCookie(&http.Cookie{Name: SessionCookie, Value: sessionID})
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("odoo: %s: %w", path, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		return nil, nil, fmt.Errorf("odoo: read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return nil, nil, &HTTPError{StatusCode: resp.StatusCode, Path: path}
	}

	var envelope rpcResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, nil, fmt.Errorf("odoo: decode envelope: %w", err)
	}
	if envelope.Error != nil {
		return nil, nil, newRPCError(envelope.Error)
	}
	return envelope.Result, resp.Cookies(), nil
}
