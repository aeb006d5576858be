package poller

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"game_portal_backend/internal/model"
	"game_portal_backend/internal/service"
)

// Client 访问服务端轮询接口
type Client struct {
	BaseURL string
	Token   string
	HTTP    *http.Client
}

func NewClient(baseURL, token string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		HTTP:    &http.Client{Timeout: 10 * time.Second},
	}
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type ActivitySnapshot struct {
	Data      []model.Activity `json:"data"`
	Timestamp time.Time        `json:"timestamp"`
}

type ConversationSnapshot struct {
	Messages []model.Message `json:"messages"`
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: %d %s", path, resp.StatusCode, env.Message)
	}
	return json.Unmarshal(env.Data, out)
}

func (c *Client) Activity(ctx context.Context) (ActivitySnapshot, error) {
	var snap ActivitySnapshot
	err := c.get(ctx, "/api/activity/data", &snap)
	return snap, err
}

func (c *Client) Conversation(partnerID uint) FetchFunc[ConversationSnapshot] {
	return func(ctx context.Context) (ConversationSnapshot, error) {
		var snap ConversationSnapshot
		err := c.get(ctx, fmt.Sprintf("/api/messages/%d/poll", partnerID), &snap)
		return snap, err
	}
}

// Friends 好友概览，含在线状态和待处理的申请
func (c *Client) Friends() FetchFunc[service.FriendsOverview] {
	return func(ctx context.Context) (service.FriendsOverview, error) {
		var overview service.FriendsOverview
		err := c.get(ctx, "/api/friends", &overview)
		return overview, err
	}
}
