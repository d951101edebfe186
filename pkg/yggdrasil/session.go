package yggdrasil

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/gofrs/uuid"
)

// Property is a signed key-value pair attached to a profile. The session
// server currently only issues the "textures" property.
type Property struct {
	Name      string `json:"name"`
	Value     string `json:"value"`
	Signature string `json:"signature"`
}

// Profile is the session server's view of a player: skin, cape and the
// signed properties they are wrapped in.
type Profile struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Properties []Property `json:"properties"`
}

// Property returns the named profile property, or false if the profile
// does not carry it.
func (p Profile) Property(name string) (Property, bool) {
	for _, property := range p.Properties {
		if property.Name == name {
			return property, true
		}
	}
	return Property{}, false
}

type PlayerSkin struct {
	Value     string
	Signature string
}

// Session is a validated hasJoined response.
type Session struct {
	PlayerUUID uuid.UUID
	PlayerSkin PlayerSkin
}

// Profile fetches the profile of a player by UUID.
func (c *Client) Profile(ctx context.Context, playerUUID uuid.UUID) (*Profile, error) {
	requestURL := fmt.Sprintf("%s/session/minecraft/profile/%x",
		c.SessionServerURL,
		playerUUID.Bytes(),
	)

	profile := Profile{}
	if err := c.get(ctx, requestURL, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// HasJoined asks the session server whether the named player joined a
// server with the given session hash. ErrSessionNotFound is returned when
// the session server has no record of the join.
func (c *Client) HasJoined(ctx context.Context, username, sessionHash string) (*Session, error) {
	return c.HasJoinedWithIP(ctx, username, sessionHash, "")
}

// HasJoinedWithIP is HasJoined with the client IP pinned, so that the
// session server additionally rejects proxied connections.
func (c *Client) HasJoinedWithIP(ctx context.Context, username, sessionHash, ip string) (*Session, error) {
	query := url.Values{}
	query.Set("username", username)
	query.Set("serverId", sessionHash)
	if ip != "" {
		query.Set("ip", ip)
	}

	requestURL := fmt.Sprintf("%s/session/minecraft/hasJoined?%s",
		c.SessionServerURL,
		query.Encode(),
	)

	profile := Profile{}
	if err := c.get(ctx, requestURL, &profile); err != nil {
		var statusErr StatusError
		if errors.As(err, &statusErr) && statusErr.Code == http.StatusNoContent {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	playerUUID, err := uuid.FromString(profile.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadResponse, err)
	}

	skin := PlayerSkin{}
	if textures, ok := profile.Property("textures"); ok {
		skin.Value = textures.Value
		skin.Signature = textures.Signature
	}

	return &Session{
		PlayerUUID: playerUUID,
		PlayerSkin: skin,
	}, nil
}

// Join announces to the session server that the client is joining the
// server identified by the session hash. The server side verifies the
// announcement via HasJoined.
func (c *Client) Join(ctx context.Context, accessToken string, profileUUID uuid.UUID, sessionHash string) error {
	requestURL := c.SessionServerURL + "/session/minecraft/join"

	body := struct {
		AccessToken     string `json:"accessToken"`
		SelectedProfile string `json:"selectedProfile"`
		ServerID        string `json:"serverId"`
	}{
		AccessToken:     accessToken,
		SelectedProfile: fmt.Sprintf("%x", profileUUID.Bytes()),
		ServerID:        sessionHash,
	}

	return c.post(ctx, requestURL, body, http.StatusNoContent, nil)
}
