package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/wricardo/warpgame/game/engine"
	"github.com/wricardo/warpgame/game/service"
)

// Client drives one session through the REST API.
type Client struct {
	baseURL   string
	sessionID string
	client    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *Client) CreateSession(ctx context.Context, configID string) (*service.SessionInfo, error) {
	var info service.SessionInfo
	if err := c.do(ctx, http.MethodPost, "/api/sessions", map[string]string{"config_id": configID}, &info); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	c.sessionID = info.ID
	return &info, nil
}

// Resume attaches the client to an existing session.
func (c *Client) Resume(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
	var info service.SessionInfo
	if err := c.do(ctx, http.MethodGet, "/api/sessions/"+sessionID, nil, &info); err != nil {
		return nil, fmt.Errorf("resume session: %w", err)
	}
	c.sessionID = info.ID
	return &info, nil
}

func (c *Client) Move(ctx context.Context, id engine.UnitID, to engine.Position) (*service.ActionResult, error) {
	return c.action(ctx, "move", map[string]any{"unit_id": id, "x": to.X, "y": to.Y})
}

func (c *Client) Deploy(ctx context.Context, unitType string, at engine.Position) (*service.ActionResult, error) {
	return c.action(ctx, "deploy", map[string]any{"type": unitType, "x": at.X, "y": at.Y})
}

func (c *Client) NextPhase(ctx context.Context) (*service.ActionResult, error) {
	return c.action(ctx, "phase", nil)
}

func (c *Client) NextTurn(ctx context.Context) (*service.ActionResult, error) {
	return c.action(ctx, "turn", nil)
}

func (c *Client) Finish(ctx context.Context) (*service.ActionResult, error) {
	return c.action(ctx, "finish", nil)
}

func (c *Client) action(ctx context.Context, name string, body any) (*service.ActionResult, error) {
	var res service.ActionResult
	if err := c.do(ctx, http.MethodPost, "/api/sessions/"+c.sessionID+"/"+name, body, &res); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return &res, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%s: %s", resp.Status, apiErr.Error)
		}
		return fmt.Errorf("%s", resp.Status)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}
