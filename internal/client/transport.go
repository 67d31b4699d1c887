package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/skilledge/skilledge-server/internal/model"
)

const maxErrorBody = 4 << 10

// HTTPTransport talks to the server's JSON API.
type HTTPTransport struct {
	baseURL string
	client  *http.Client
}

// NewHTTPTransport bounds every request by timeout.
func NewHTTPTransport(baseURL string, timeout time.Duration) *HTTPTransport {
	return &HTTPTransport{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// Sync delivers one batch. Any failure, including a non-2xx status, is a
// *model.NetworkError.
func (t *HTTPTransport) Sync(ctx context.Context, req model.SyncRequest) (model.User, error) {
	var resp model.SyncResponse
	if err := t.do(ctx, http.MethodPost, "/sync", req, &resp); err != nil {
		return model.User{}, err
	}
	resp.User.Normalize()
	return resp.User, nil
}

func (t *HTTPTransport) Leaderboard(ctx context.Context) ([]model.LeaderboardEntry, error) {
	var entries []model.LeaderboardEntry
	if err := t.do(ctx, http.MethodGet, "/leaderboard", nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (t *HTTPTransport) Courses(ctx context.Context) ([]model.Course, error) {
	var courses []model.Course
	if err := t.do(ctx, http.MethodGet, "/api/courses", nil, &courses); err != nil {
		return nil, err
	}
	return courses, nil
}

func (t *HTTPTransport) do(ctx context.Context, method, path string, body, dst any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, t.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return &model.NetworkError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &model.NetworkError{StatusCode: resp.StatusCode, Err: errors.New(errorMessage(resp.Body))}
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return &model.NetworkError{StatusCode: resp.StatusCode, Err: fmt.Errorf("malformed response: %w", err)}
	}
	return nil
}

func errorMessage(r io.Reader) string {
	raw, _ := io.ReadAll(io.LimitReader(r, maxErrorBody))
	var body struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(raw, &body) == nil && body.Error != "" {
		return body.Error
	}
	if s := strings.TrimSpace(string(raw)); s != "" {
		return s
	}
	return "empty response"
}
