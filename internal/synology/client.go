package synology

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// API family names used by this client.
const (
	APIInfo = "SYNO.API.Info"
	APIAuth = "SYNO.API.Auth"
	APITask = "SYNO.DownloadStation.Task"
)

// sessionName is the session namespace Download Station logins use.
const sessionName = "DownloadStation"

// Client is the raw Download Station API transport. All calls are GET
// requests with query-string parameters returning a
// {success, data?, error?} JSON envelope; each endpoint method decodes
// its own typed payload so nothing downstream handles raw JSON.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

type apiResponse struct {
	Success bool             `json:"success"`
	Data    *json.RawMessage `json:"data,omitempty"`
	Error   *apiErrorData    `json:"error,omitempty"`
}

type apiErrorData struct {
	Code int `json:"code"`
}

type authData struct {
	SID string `json:"sid"`
}

type listData struct {
	Tasks []Task `json:"tasks"`
}

// New returns a client for the DSM webapi rooted at baseURL. Every
// request is bounded by timeout.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *Client) call(ctx context.Context, endpoint string, params url.Values, result interface{}) error {
	u := fmt.Sprintf("%s/webapi/%s?%s", c.baseURL, endpoint, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var apiResp apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return fmt.Errorf("decoding response from %s: %w", endpoint, err)
	}

	if !apiResp.Success {
		code := 0
		if apiResp.Error != nil {
			code = apiResp.Error.Code
		}
		return &APIError{Code: code}
	}

	if apiResp.Data != nil && result != nil {
		return json.Unmarshal(*apiResp.Data, result)
	}

	return nil
}

// QueryCapabilities fetches the version ranges for the auth and task
// API families.
func (c *Client) QueryCapabilities(ctx context.Context) (Capabilities, error) {
	params := url.Values{}
	params.Set("api", APIInfo)
	params.Set("version", "1")
	params.Set("method", "query")
	params.Set("query", APIAuth+","+APITask)

	var caps Capabilities
	if err := c.call(ctx, "query.cgi", params, &caps); err != nil {
		return nil, fmt.Errorf("querying API capabilities: %w", err)
	}
	return caps, nil
}

// Login authenticates and returns the session id.
func (c *Client) Login(ctx context.Context, version, account, password string) (string, error) {
	params := url.Values{}
	params.Set("api", APIAuth)
	params.Set("version", version)
	params.Set("method", "login")
	params.Set("account", account)
	params.Set("passwd", password)
	params.Set("session", sessionName)
	params.Set("format", "sid")

	var auth authData
	if err := c.call(ctx, "auth.cgi", params, &auth); err != nil {
		return "", err
	}
	if auth.SID == "" {
		return "", errors.New("no session id in auth response")
	}
	return auth.SID, nil
}

// Logout releases the session.
func (c *Client) Logout(ctx context.Context, version, sid string) error {
	params := url.Values{}
	params.Set("api", APIAuth)
	params.Set("version", version)
	params.Set("method", "logout")
	params.Set("session", sessionName)
	params.Set("_sid", sid)

	return c.call(ctx, "auth.cgi", params, nil)
}

// ListTasks returns all tasks with their detail and transfer blocks.
func (c *Client) ListTasks(ctx context.Context, version, sid string) ([]Task, error) {
	params := url.Values{}
	params.Set("api", APITask)
	params.Set("version", version)
	params.Set("method", "list")
	params.Set("additional", "detail,transfer")
	params.Set("_sid", sid)

	var data listData
	if err := c.call(ctx, "DownloadStation/task.cgi", params, &data); err != nil {
		return nil, err
	}
	return data.Tasks, nil
}

// DeleteTasks deletes the given task ids and returns the per-id
// outcomes. forceComplete makes in-progress tasks removable too.
func (c *Client) DeleteTasks(ctx context.Context, version, sid string, ids []string, forceComplete bool) ([]DeleteResult, error) {
	if len(ids) == 0 {
		return nil, errors.New("no task ids to delete")
	}

	params := url.Values{}
	params.Set("api", APITask)
	params.Set("version", version)
	params.Set("method", "delete")
	params.Set("id", strings.Join(ids, ","))
	params.Set("force_complete", strconv.FormatBool(forceComplete))
	params.Set("_sid", sid)

	var results []DeleteResult
	if err := c.call(ctx, "DownloadStation/task.cgi", params, &results); err != nil {
		return nil, err
	}
	return results, nil
}
