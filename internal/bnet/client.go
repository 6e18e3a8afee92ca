package bnet

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/vovakirdan/guildgate/internal/core"
)

// Config describes the Battle.net application credentials and region.
type Config struct {
	Region       string
	ClientID     string
	ClientSecret string
	RedirectURL  string

	// AuthBase and APIBase override the region-derived endpoints; used by
	// tests to point the client at a local server.
	AuthBase string
	APIBase  string
}

// Client talks to the Battle.net OAuth and game data APIs.
type Client struct {
	oauth       *oauth2.Config
	appToken    *clientcredentials.Config
	apiBase     string
	userInfoURL string
	http        *http.Client
	log         *zerolog.Logger
}

// New constructs a client for the configured region.
func New(cfg Config, logger *zerolog.Logger) *Client {
	authBase := cfg.AuthBase
	if authBase == "" {
		authBase = oauthBase(cfg.Region)
	}
	apiBase := cfg.APIBase
	if apiBase == "" {
		apiBase = fmt.Sprintf("https://%s.api.blizzard.com", cfg.Region)
	}

	return &Client{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint: oauth2.Endpoint{
				AuthURL:  authBase + "/authorize",
				TokenURL: authBase + "/token",
			},
			RedirectURL: cfg.RedirectURL,
			Scopes:      []string{"wow.profile", "openid"},
		},
		appToken: &clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     authBase + "/token",
		},
		apiBase:     apiBase,
		userInfoURL: authBase + "/userinfo",
		http:        &http.Client{Timeout: 15 * time.Second},
		log:         logger,
	}
}

func oauthBase(region string) string {
	if region == "cn" {
		return "https://oauth.battlenet.com.cn"
	}
	return "https://oauth.battle.net"
}

// AuthCodeURL builds the provider authorize URL carrying the opaque state.
func (c *Client) AuthCodeURL(state string) string {
	return c.oauth.AuthCodeURL(state)
}

// Exchange trades an authorization code for an access token.
func (c *Client) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := c.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}
	return token, nil
}

// UserInfo is the provider identity of an authorized account.
type UserInfo struct {
	ID        string `json:"sub"`
	Battletag string `json:"battletag"`
}

// UserInfo fetches the account identity for a token. When the userinfo
// endpoint is unavailable it falls back to the id_token claims issued with
// the token.
func (c *Client) UserInfo(ctx context.Context, token *oauth2.Token) (*UserInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.userInfoURL, nil)
	if err != nil {
		return nil, err
	}
	token.SetAuthHeader(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return c.userInfoFromIDToken(token, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return c.userInfoFromIDToken(token, fmt.Errorf("userinfo status %d: %s", resp.StatusCode, body))
	}

	var info UserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("decode userinfo: %w", err)
	}
	return &info, nil
}

func (c *Client) userInfoFromIDToken(token *oauth2.Token, cause error) (*UserInfo, error) {
	raw, ok := token.Extra("id_token").(string)
	if !ok || raw == "" {
		return nil, fmt.Errorf("fetch userinfo: %w", cause)
	}
	c.log.Debug().Err(cause).Msg("userinfo unavailable, using id_token claims")
	return claimsFromIDToken(raw)
}

type characterPayload struct {
	Error      string `json:"error"`
	Characters []struct {
		Name  string `json:"name"`
		Realm string `json:"realm"`
		Guild string `json:"guild"`
		Rank  int    `json:"rank"`
		Level int    `json:"level"`
	} `json:"characters"`
}

// Characters lists the account's characters in provider order. A non-nil
// error may accompany a partial list; callers decide whether to keep
// matching against it.
func (c *Client) Characters(ctx context.Context, accessToken string) ([]core.Character, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiBase+"/wow/user/characters", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch characters: %w", err)
	}
	defer resp.Body.Close()

	var payload characterPayload
	if decodeErr := json.NewDecoder(resp.Body).Decode(&payload); decodeErr != nil {
		return nil, fmt.Errorf("decode characters: %w", decodeErr)
	}

	characters := make([]core.Character, 0, len(payload.Characters))
	for _, ch := range payload.Characters {
		characters = append(characters, core.Character{
			Name:  ch.Name,
			Realm: ch.Realm,
			Guild: ch.Guild,
			Rank:  ch.Rank,
			Level: ch.Level,
		})
	}

	if payload.Error != "" {
		return characters, fmt.Errorf("provider error: %s", payload.Error)
	}
	if resp.StatusCode != http.StatusOK {
		return characters, fmt.Errorf("characters status %d", resp.StatusCode)
	}
	return characters, nil
}

// GuildMember is one roster entry of the configured guild.
type GuildMember struct {
	Name  string
	Realm string
	Rank  int
}

type rosterPayload struct {
	Members []struct {
		Character struct {
			Name  string `json:"name"`
			Realm string `json:"realm"`
		} `json:"character"`
		Rank int `json:"rank"`
	} `json:"members"`
}

// GuildRoster fetches the member list of a guild. The request runs under
// application (client credentials) authorization, not a user token.
func (c *Client) GuildRoster(ctx context.Context, realm, guild string) ([]GuildMember, error) {
	endpoint := fmt.Sprintf("%s/wow/guild/%s/%s?fields=members",
		c.apiBase, url.PathEscape(realm), url.PathEscape(guild))

	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.http)
	resp, err := c.appToken.Client(ctx).Get(endpoint)
	if err != nil {
		return nil, fmt.Errorf("fetch guild roster: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("guild roster status %d: %s", resp.StatusCode, body)
	}

	var payload rosterPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode guild roster: %w", err)
	}

	members := make([]GuildMember, 0, len(payload.Members))
	for _, m := range payload.Members {
		members = append(members, GuildMember{
			Name:  m.Character.Name,
			Realm: m.Character.Realm,
			Rank:  m.Rank,
		})
	}
	return members, nil
}

// GuildMember finds a roster entry by character name, or nil when the
// character is not in the guild.
func (c *Client) GuildMember(ctx context.Context, realm, guild, name string) (*GuildMember, error) {
	members, err := c.GuildRoster(ctx, realm, guild)
	if err != nil {
		return nil, err
	}
	for i := range members {
		if members[i].Name == name {
			return &members[i], nil
		}
	}
	return nil, nil
}
