// Package yggdrasil is a client for the Mojang web authentication API:
// profile lookup and hasJoined on the session server, login and join on the
// auth server, plus the session hash both sides exchange during the
// encryption handshake.
package yggdrasil

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

const (
	DefaultSessionServerURL = "https://sessionserver.mojang.com"
	DefaultAuthServerURL    = "https://authserver.mojang.com"

	defaultTimeout = 10 * time.Second
)

var (
	// ErrRequestFailed marks failures on the wire or non-2xx responses.
	ErrRequestFailed = errors.New("request failed")
	// ErrBadResponse marks responses that could not be decoded.
	ErrBadResponse = errors.New("bad response")
	// ErrSessionNotFound is returned by HasJoined when the session server
	// has no record of the client joining.
	ErrSessionNotFound = errors.New("session not found")
)

// StatusError is an error response from the Mojang API. It carries the
// error body if the server sent one and unwraps to ErrRequestFailed.
type StatusError struct {
	Code         int
	ErrorType    string `json:"error"`
	ErrorMessage string `json:"errorMessage"`
	Cause        string `json:"cause"`
}

func (e StatusError) Error() string {
	if e.ErrorMessage == "" {
		return fmt.Sprintf("status %d", e.Code)
	}
	return fmt.Sprintf("status %d: %s", e.Code, e.ErrorMessage)
}

func (e StatusError) Unwrap() error {
	return ErrRequestFailed
}

// HTTPClient represents an interface for the Client to send requests with.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client talks to the Mojang session and auth servers. The zero value is
// not usable; use NewClient or populate all fields. Endpoint URLs are
// explicit configuration so tests and third-party authentication services
// can point the client elsewhere.
type Client struct {
	HTTPClient       HTTPClient
	SessionServerURL string
	AuthServerURL    string
}

func NewClient() *Client {
	return &Client{
		HTTPClient:       &http.Client{Timeout: defaultTimeout},
		SessionServerURL: DefaultSessionServerURL,
		AuthServerURL:    DefaultAuthServerURL,
	}
}

func (c *Client) get(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	return c.do(req, http.StatusOK, out)
}

func (c *Client) post(ctx context.Context, url string, body any, wantStatus int, out any) error {
	bb, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bb))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, wantStatus, out)
}

func (c *Client) do(req *http.Request, wantStatus int, out any) error {
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		statusErr := StatusError{Code: resp.StatusCode}
		// the error body is best effort; the status code alone is enough
		_ = json.NewDecoder(resp.Body).Decode(&statusErr)
		return statusErr
	}

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", ErrBadResponse, err)
	}
	return nil
}
