package kiosk

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"
)

type ScreenStatus struct {
	ScreenID string `json:"screenId"`
	Name     string `json:"name"`
	Active   bool   `json:"active"`
	Paired   bool   `json:"paired"`
}

type DisplayToken struct {
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// API is the server surface a kiosk display talks to.
type API interface {
	Pair(ctx context.Context, screenID, accessCode, deviceID string) error
	Status(ctx context.Context, screenID, deviceID string) (*ScreenStatus, error)
	Token(ctx context.Context, screenID, deviceID string) (*DisplayToken, error)
}

type envelope[T any] struct {
	Data T `json:"data"`
}

type Client struct {
	Transport *Transport
}

func NewClient(baseURL string) *Client {
	return &Client{Transport: NewTransport(baseURL)}
}

func displayPath(screenID, suffix string) string {
	return fmt.Sprintf("/api/v1/qr-display/%s/%s", url.PathEscape(screenID), suffix)
}

func (c *Client) Pair(ctx context.Context, screenID, accessCode, deviceID string) error {
	payload := map[string]string{"accessCode": accessCode, "deviceId": deviceID}
	_, err := c.Transport.Post(ctx, displayPath(screenID, "pair"), payload, nil)
	return err
}

func (c *Client) Status(ctx context.Context, screenID, deviceID string) (*ScreenStatus, error) {
	resp, err := c.Transport.Get(ctx, displayPath(screenID, "status"), map[string]string{"deviceId": deviceID})
	if err != nil {
		return nil, err
	}
	var result envelope[ScreenStatus]
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return nil, err
	}
	return &result.Data, nil
}

func (c *Client) Token(ctx context.Context, screenID, deviceID string) (*DisplayToken, error) {
	resp, err := c.Transport.Get(ctx, displayPath(screenID, "token"), map[string]string{"deviceId": deviceID})
	if err != nil {
		return nil, err
	}
	var result envelope[DisplayToken]
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return nil, err
	}
	return &result.Data, nil
}
