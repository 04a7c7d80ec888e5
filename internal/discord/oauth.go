package discord

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/AwwCookies/Chatterbox-sub002/internal/config"
)

const defaultAuthorizeURL = "https://discord.com/oauth2/authorize"

// Scopes requested from linking users. identify resolves who the account is,
// guilds lists the servers they belong to. Webhook management is deliberately
// not requested: that runs under the bot credential.
const oauthScopes = "identify guilds"

type OAuthOptions struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	APIBase      string
	AuthorizeURL string
	HTTPClient   *http.Client
}

// OAuthClient performs the authorization-code and refresh-token exchanges
// against Discord's OAuth2 endpoints. All exchanges are form-encoded posts.
type OAuthClient struct {
	clientID     string
	clientSecret string
	redirectURI  string
	tokenURL     string
	revokeURL    string
	authorizeURL string
	httpClient   *http.Client
}

func NewOAuthClient(opts OAuthOptions) *OAuthClient {
	apiBase := strings.TrimRight(strings.TrimSpace(opts.APIBase), "/")
	if apiBase == "" {
		apiBase = "https://discord.com/api/v10"
	}
	authorizeURL := opts.AuthorizeURL
	if authorizeURL == "" {
		authorizeURL = defaultAuthorizeURL
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: config.DiscordRequestTimeout}
	}
	return &OAuthClient{
		clientID:     opts.ClientID,
		clientSecret: opts.ClientSecret,
		redirectURI:  opts.RedirectURI,
		tokenURL:     apiBase + "/oauth2/token",
		revokeURL:    apiBase + "/oauth2/token/revoke",
		authorizeURL: authorizeURL,
		httpClient:   httpClient,
	}
}

// TokenPair is the credential set returned by a successful exchange.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	Scope        string `json:"scope"`
}

// ExpiresAt converts the relative expiry into an absolute timestamp.
func (t *TokenPair) ExpiresAt(now time.Time) time.Time {
	return now.Add(time.Duration(t.ExpiresIn) * time.Second)
}

// AuthCodeURL builds the consent-screen URL for the given CSRF state.
func (c *OAuthClient) AuthCodeURL(state string) string {
	params := url.Values{
		"client_id":     {c.clientID},
		"redirect_uri":  {c.redirectURI},
		"response_type": {"code"},
		"scope":         {oauthScopes},
		"state":         {state},
		"prompt":        {"consent"},
	}
	return c.authorizeURL + "?" + params.Encode()
}

// Exchange trades an authorization code for a token pair.
func (c *OAuthClient) Exchange(ctx context.Context, code string) (*TokenPair, error) {
	data := url.Values{
		"grant_type":   {"authorization_code"},
		"code":         {code},
		"redirect_uri": {c.redirectURI},
	}
	return c.tokenRequest(ctx, data, false)
}

// Refresh trades a refresh token for a new token pair. A rejection from
// Discord (revoked grant, rotated-out token) returns ErrRefreshRejected so
// callers can prompt the user to relink rather than retrying.
func (c *OAuthClient) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	data := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {refreshToken},
	}
	return c.tokenRequest(ctx, data, true)
}

func (c *OAuthClient) tokenRequest(ctx context.Context, data url.Values, isRefresh bool) (*TokenPair, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(c.clientID, c.clientSecret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read token response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		if isRefresh && (resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnauthorized) {
			log.Warn().Int("status", resp.StatusCode).Msg("discord refresh token rejected")
			return nil, ErrRefreshRejected
		}
		return nil, parseAPIError(resp.StatusCode, body)
	}

	var pair TokenPair
	if err := json.Unmarshal(body, &pair); err != nil {
		return nil, fmt.Errorf("decode token response: %w", err)
	}
	if pair.AccessToken == "" {
		return nil, fmt.Errorf("token response missing access_token")
	}
	return &pair, nil
}

// Revoke invalidates an access token on Discord's side. Best effort: the
// caller's local disconnect must succeed regardless, so failures are logged
// here and reported but never treated as fatal by callers.
func (c *OAuthClient) Revoke(ctx context.Context, accessToken string) error {
	data := url.Values{
		"token":           {accessToken},
		"token_type_hint": {"access_token"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.revokeURL, strings.NewReader(data.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(c.clientID, c.clientSecret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return parseAPIError(resp.StatusCode, body)
	}
	return nil
}
