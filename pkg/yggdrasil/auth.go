package yggdrasil

import (
	"context"
	"net/http"
)

// AuthProfile is a game profile attached to a Mojang account.
type AuthProfile struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// AuthResponse is the auth server's answer to a successful authenticate or
// refresh request.
type AuthResponse struct {
	AccessToken       string        `json:"accessToken"`
	ClientToken       string        `json:"clientToken"`
	SelectedProfile   AuthProfile   `json:"selectedProfile"`
	AvailableProfiles []AuthProfile `json:"availableProfiles"`
}

type agent struct {
	Name    string `json:"name"`
	Version int    `json:"version"`
}

var minecraftAgent = agent{
	Name:    "Minecraft",
	Version: 1,
}

// Authenticate logs in with account credentials and yields the access token
// used by Join. The clientToken is optional; when empty the auth server
// generates one.
func (c *Client) Authenticate(ctx context.Context, username, password, clientToken string) (*AuthResponse, error) {
	body := struct {
		Agent       agent  `json:"agent"`
		Username    string `json:"username"`
		Password    string `json:"password"`
		ClientToken string `json:"clientToken,omitempty"`
	}{
		Agent:       minecraftAgent,
		Username:    username,
		Password:    password,
		ClientToken: clientToken,
	}

	authResp := AuthResponse{}
	if err := c.post(ctx, c.AuthServerURL+"/authenticate", body, http.StatusOK, &authResp); err != nil {
		return nil, err
	}
	return &authResp, nil
}

// Refresh exchanges a stale access token for a fresh one. The clientToken
// must be the one the token was issued to.
func (c *Client) Refresh(ctx context.Context, accessToken, clientToken string) (*AuthResponse, error) {
	body := struct {
		AccessToken string `json:"accessToken"`
		ClientToken string `json:"clientToken"`
	}{
		AccessToken: accessToken,
		ClientToken: clientToken,
	}

	authResp := AuthResponse{}
	if err := c.post(ctx, c.AuthServerURL+"/refresh", body, http.StatusOK, &authResp); err != nil {
		return nil, err
	}
	return &authResp, nil
}

// Validate reports whether an access token is still usable. A nil error
// means the token is valid.
func (c *Client) Validate(ctx context.Context, accessToken, clientToken string) error {
	body := struct {
		AccessToken string `json:"accessToken"`
		ClientToken string `json:"clientToken,omitempty"`
	}{
		AccessToken: accessToken,
		ClientToken: clientToken,
	}

	return c.post(ctx, c.AuthServerURL+"/validate", body, http.StatusNoContent, nil)
}
