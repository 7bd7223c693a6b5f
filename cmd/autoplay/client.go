package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/wricardo/landlord/game/engine"
	"github.com/wricardo/landlord/game/service"
)

// APIError is a non-2xx answer from the server
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (%s, HTTP %d)", e.Message, e.Code, e.Status)
}

// Client drives one seat over the REST API
type Client struct {
	baseURL  string
	userID   string
	userName string
	client   *http.Client
}

func NewClient(baseURL, userID, userName string) *Client {
	return &Client{
		baseURL:  baseURL,
		userID:   userID,
		userName: userName,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *Client) do(ctx context.Context, method, path string, body, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", c.userID)
	req.Header.Set("X-User-Name", c.userName)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		apiErr := &APIError{Status: resp.StatusCode, Message: string(data)}
		var parsed struct {
			Error string `json:"error"`
			Code  string `json:"code"`
		}
		if json.Unmarshal(data, &parsed) == nil && parsed.Error != "" {
			apiErr.Message, apiErr.Code = parsed.Error, parsed.Code
		}
		return apiErr
	}

	if result != nil {
		if err := json.Unmarshal(data, result); err != nil {
			return fmt.Errorf("parse response: %w", err)
		}
	}
	return nil
}

func gamePath(gameID string) string {
	return "/api/games/" + url.PathEscape(gameID)
}

// CreateGame opens a table seating bots bots next to us
func (c *Client) CreateGame(ctx context.Context, rules string, bots int) (*engine.Game, error) {
	req := service.CreateGameRequest{
		Name:       c.userName + "'s autoplay",
		MaxPlayers: bots + 1,
		WithBots:   bots > 0,
		BotCount:   bots,
		Rules:      rules,
	}
	var g engine.Game
	if err := c.do(ctx, http.MethodPost, "/api/games", req, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

func (c *Client) GetGame(ctx context.Context, gameID string) (*engine.Game, error) {
	var g engine.Game
	if err := c.do(ctx, http.MethodGet, gamePath(gameID), nil, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

// Do performs a and returns the updated game
func (c *Client) Do(ctx context.Context, gameID string, a Action) (*engine.Game, error) {
	path := gamePath(gameID)
	switch a.Kind {
	case ActionMortgage, ActionBuild:
		path += fmt.Sprintf("/tiles/%d/%s", a.TileID, a.Kind)
	case ActionAcceptTrade, ActionRejectTrade:
		path += "/trades/" + url.PathEscape(a.TradeID) + "/" + string(a.Kind)
	default:
		path += "/" + string(a.Kind)
	}

	if a.Kind == ActionRoll {
		var result service.RollResult
		if err := c.do(ctx, http.MethodPost, path, nil, &result); err != nil {
			return nil, err
		}
		return result.Game, nil
	}

	var g engine.Game
	if err := c.do(ctx, http.MethodPost, path, nil, &g); err != nil {
		return nil, err
	}
	return &g, nil
}
