// Package client is the HTTP client muhsinctl uses to talk to the API
// server. All methods return typed envelopes; auth failures map to
// ErrUnauthorized so callers can drop stale tokens.
package client

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cloudwego/hertz/pkg/app/client"
	"github.com/cloudwego/hertz/pkg/protocol"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"github.com/MADANW/MuhsinAI/internal/cli/types"
)

var (
	// ErrUnauthorized means the token is missing, invalid or expired.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden means the resource exists but belongs to someone else.
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound means the resource does not exist.
	ErrNotFound = errors.New("not found")
)

// APIClient wraps the Hertz client for HTTP communication with the API server.
type APIClient struct {
	client *client.Client
	server string
	token  string
}

// NewAPIClient creates a new API client.
func NewAPIClient(server, token string) (*APIClient, error) {
	normalizedServer, err := normalizeServerURL(server)
	if err != nil {
		return nil, fmt.Errorf("invalid server URL: %w", err)
	}

	c, err := client.NewClient(
		client.WithDialTimeout(10*time.Second),
		client.WithMaxIdleConnDuration(60*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}

	return &APIClient{
		client: c,
		server: normalizedServer,
		token:  token,
	}, nil
}

// normalizeServerURL ensures the server address has a scheme and no path.
func normalizeServerURL(server string) (string, error) {
	if !strings.Contains(server, "://") {
		server = "http://" + server
	}

	u, err := url.Parse(server)
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("invalid server URL")
	}

	return fmt.Sprintf("%s://%s", u.Scheme, u.Host), nil
}

// do sends one JSON request and decodes the envelope into out (when out is
// non-nil). Error replies become Go errors carrying the server's message.
func (c *APIClient) do(ctx context.Context, method, uri string, body, out any) error {
	req := protocol.AcquireRequest()
	resp := protocol.AcquireResponse()
	defer func() {
		protocol.ReleaseRequest(req)
		protocol.ReleaseResponse(resp)
	}()

	req.SetMethod(method)
	req.SetRequestURI(c.server + uri)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if body != nil {
		bodyBytes, err := sonic.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		req.Header.SetContentTypeBytes([]byte("application/json"))
		req.SetBody(bodyBytes)
	}

	if err := c.client.Do(ctx, req, resp); err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	statusCode := resp.StatusCode()
	if statusCode >= 200 && statusCode < 300 {
		if out == nil || len(resp.Body()) == 0 {
			return nil
		}
		if err := sonic.Unmarshal(resp.Body(), out); err != nil {
			return fmt.Errorf("failed to unmarshal response: %w", err)
		}
		return nil
	}

	// Pull the server's message out of the envelope when possible.
	var envelope types.APIResponse[any]
	serverMsg := ""
	if err := sonic.Unmarshal(resp.Body(), &envelope); err == nil {
		serverMsg = envelope.Message
	}

	switch statusCode {
	case consts.StatusUnauthorized:
		if serverMsg != "" {
			return fmt.Errorf("%w: %s", ErrUnauthorized, serverMsg)
		}
		return ErrUnauthorized
	case consts.StatusForbidden:
		if serverMsg != "" {
			return fmt.Errorf("%w: %s", ErrForbidden, serverMsg)
		}
		return ErrForbidden
	case consts.StatusNotFound:
		if serverMsg != "" {
			return fmt.Errorf("%w: %s", ErrNotFound, serverMsg)
		}
		return ErrNotFound
	default:
		if serverMsg != "" {
			return fmt.Errorf("server error (HTTP %d): %s", statusCode, serverMsg)
		}
		return fmt.Errorf("server error (HTTP %d)", statusCode)
	}
}

// Register creates a new account.
func (c *APIClient) Register(ctx context.Context, email, password string) (*types.User, error) {
	var resp types.APIResponse[*types.User]
	err := c.do(ctx, consts.MethodPost, endpointRegister, types.RegisterRequest{
		Email:    email,
		Password: password,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// Login performs user login and returns the issued token.
func (c *APIClient) Login(ctx context.Context, email, password string) (*types.LoginData, error) {
	var resp types.APIResponse[types.LoginData]
	err := c.do(ctx, consts.MethodPost, endpointLogin, types.LoginRequest{
		Email:    email,
		Password: password,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// Logout tells the server the session is over. Best effort: the token is
// stateless, dropping the local copy is what actually logs out.
func (c *APIClient) Logout(ctx context.Context) error {
	return c.do(ctx, consts.MethodPost, endpointLogout, nil, nil)
}

// Me returns the profile behind the current token. An ErrUnauthorized here
// means the token is stale and must be discarded.
func (c *APIClient) Me(ctx context.Context) (*types.User, error) {
	var resp types.APIResponse[*types.User]
	if err := c.do(ctx, consts.MethodGet, endpointMe, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// Send submits one prompt and returns the completed exchange.
func (c *APIClient) Send(ctx context.Context, prompt string) (*types.Exchange, error) {
	var resp types.APIResponse[*types.Exchange]
	err := c.do(ctx, consts.MethodPost, endpointChat, types.SendRequest{Prompt: prompt}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// History fetches one page of past exchanges, newest first.
func (c *APIClient) History(ctx context.Context, page, pageSize int) (*types.HistoryData, error) {
	uri := fmt.Sprintf("%s?page=%s&page_size=%s",
		endpointHistory, strconv.Itoa(page), strconv.Itoa(pageSize))

	var resp types.APIResponse[types.HistoryData]
	if err := c.do(ctx, consts.MethodGet, uri, nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// GetExchange fetches one exchange in full. Someone else's exchange maps to
// ErrForbidden, a missing one to ErrNotFound.
func (c *APIClient) GetExchange(ctx context.Context, id string) (*types.Exchange, error) {
	var resp types.APIResponse[*types.Exchange]
	err := c.do(ctx, consts.MethodGet, fmt.Sprintf(endpointHistoryByID, url.PathEscape(id)), nil, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// DeleteExchange removes one exchange. Someone else's exchange maps to
// ErrForbidden, a missing one to ErrNotFound.
func (c *APIClient) DeleteExchange(ctx context.Context, id string) error {
	return c.do(ctx, consts.MethodDelete, fmt.Sprintf(endpointHistoryByID, url.PathEscape(id)), nil, nil)
}

// Probe asks the server to verify model connectivity.
func (c *APIClient) Probe(ctx context.Context) (*types.ProbeData, error) {
	var resp types.APIResponse[types.ProbeData]
	if err := c.do(ctx, consts.MethodGet, endpointProbe, nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// UpdateProfile changes the account's email, password or both. Empty
// fields are left unchanged.
func (c *APIClient) UpdateProfile(ctx context.Context, email, password string) (*types.User, error) {
	var resp types.APIResponse[*types.User]
	err := c.do(ctx, consts.MethodPut, endpointProfile, types.UpdateProfileRequest{
		Email:    email,
		Password: password,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// DeleteAccount permanently deletes the account behind the current token,
// exchanges included.
func (c *APIClient) DeleteAccount(ctx context.Context) (*types.DeleteAccountData, error) {
	var resp types.APIResponse[types.DeleteAccountData]
	if err := c.do(ctx, consts.MethodDelete, endpointProfile, nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// Stats fetches the user's scheduling activity summary.
func (c *APIClient) Stats(ctx context.Context) (*types.StatsData, error) {
	var resp types.APIResponse[types.StatsData]
	if err := c.do(ctx, consts.MethodGet, endpointStats, nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}
