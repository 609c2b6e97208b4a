package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const defaultSlackBaseURL = "https://slack.com/api"

// SlackClient talks to the Slack Web API with tenant-specific credentials.
// The zero value is not usable; fill BotToken from the tenant's SlackConfig.
type SlackClient struct {
	BotToken string
	BaseURL  string       // override for tests; defaults to the public API
	Client   *http.Client // optional; defaults to a 30s-timeout client
}

type SlackUser struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	IsBot   bool   `json:"is_bot"`
	Deleted bool   `json:"deleted"`
	Profile struct {
		DisplayName string `json:"display_name"`
	} `json:"profile"`
}

type SlackChannel struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	IsPrivate  bool   `json:"is_private"`
	IsArchived bool   `json:"is_archived"`
}

type slackResponse struct {
	OK       bool           `json:"ok"`
	Error    string         `json:"error"`
	TS       string         `json:"ts"`
	Users    []SlackUser    `json:"members"`
	Channels []SlackChannel `json:"channels"`
	Metadata struct {
		NextCursor string `json:"next_cursor"`
	} `json:"response_metadata"`
}

func (s SlackClient) baseURL() string {
	if s.BaseURL != "" {
		return s.BaseURL
	}
	return defaultSlackBaseURL
}

func (s SlackClient) httpClient() *http.Client {
	if s.Client != nil {
		return s.Client
	}
	return &http.Client{Timeout: 30 * time.Second}
}

// PostMessage sends a message to a channel and returns the message timestamp
// assigned by Slack.
func (s SlackClient) PostMessage(ctx context.Context, channel string, text string, blocks []Block) (string, error) {
	if s.BotToken == "" {
		return "", fmt.Errorf("slack bot token not configured")
	}

	reqBody := map[string]any{
		"channel": channel,
		"text":    text,
	}
	if len(blocks) > 0 {
		reqBody["blocks"] = blocks
	}

	b, _ := json.Marshal(reqBody)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL()+"/chat.postMessage", bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+s.BotToken)
	req.Header.Set("Content-Type", "application/json")

	out, err := s.do(req)
	if err != nil {
		return "", err
	}
	return out.TS, nil
}

// ListUsers pages through the workspace user directory.
func (s SlackClient) ListUsers(ctx context.Context) ([]SlackUser, error) {
	var users []SlackUser
	cursor := ""
	for {
		out, err := s.get(ctx, "/users.list", cursor)
		if err != nil {
			return nil, err
		}
		users = append(users, out.Users...)
		cursor = out.Metadata.NextCursor
		if cursor == "" {
			return users, nil
		}
	}
}

// ListChannels pages through the workspace channel directory.
func (s SlackClient) ListChannels(ctx context.Context) ([]SlackChannel, error) {
	var channels []SlackChannel
	cursor := ""
	for {
		out, err := s.get(ctx, "/conversations.list", cursor)
		if err != nil {
			return nil, err
		}
		channels = append(channels, out.Channels...)
		cursor = out.Metadata.NextCursor
		if cursor == "" {
			return channels, nil
		}
	}
}

func (s SlackClient) get(ctx context.Context, path string, cursor string) (*slackResponse, error) {
	if s.BotToken == "" {
		return nil, fmt.Errorf("slack bot token not configured")
	}

	u := s.baseURL() + path
	if cursor != "" {
		u += "?cursor=" + url.QueryEscape(cursor)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+s.BotToken)

	return s.do(req)
}

func (s SlackClient) do(req *http.Request) (*slackResponse, error) {
	resp, err := s.httpClient().Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("slack api error: status=%d body=%s", resp.StatusCode, string(body))
	}

	var out slackResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("slack api: decode response: %w", err)
	}
	if !out.OK {
		return nil, fmt.Errorf("slack api error: %s", out.Error)
	}
	return &out, nil
}
