package discord

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// User-scoped calls (bearer token, identify + guilds scopes).

func (c *Client) CurrentUser(ctx context.Context, userToken string) (*User, error) {
	body, err := c.Do(ctx, Bearer(userToken), http.MethodGet, "GET:/users/@me", "/users/@me", nil)
	if err != nil {
		return nil, err
	}
	var user User
	if err := json.Unmarshal(body, &user); err != nil {
		return nil, fmt.Errorf("decode current user: %w", err)
	}
	return &user, nil
}

func (c *Client) UserGuilds(ctx context.Context, userToken string) ([]Guild, error) {
	body, err := c.Do(ctx, Bearer(userToken), http.MethodGet, "GET:/users/@me/guilds", "/users/@me/guilds", nil)
	if err != nil {
		return nil, err
	}
	var guilds []Guild
	if err := json.Unmarshal(body, &guilds); err != nil {
		return nil, fmt.Errorf("decode user guilds: %w", err)
	}
	return guilds, nil
}

// Bot-scoped calls. A user's OAuth grant does not include channel listing or
// webhook management, so these always run under the bot credential. Bucket
// routes fold in the major parameter, matching how Discord scopes limits.

func (c *Client) GuildChannels(ctx context.Context, guildID string) ([]Channel, error) {
	route := fmt.Sprintf("GET:/guilds/%s/channels", guildID)
	body, err := c.Do(ctx, c.BotCredential(), http.MethodGet, route, fmt.Sprintf("/guilds/%s/channels", guildID), nil)
	if err != nil {
		return nil, err
	}
	var channels []Channel
	if err := json.Unmarshal(body, &channels); err != nil {
		return nil, fmt.Errorf("decode guild channels: %w", err)
	}
	return channels, nil
}

type createWebhookRequest struct {
	Name   string  `json:"name"`
	Avatar *string `json:"avatar,omitempty"`
}

func (c *Client) CreateWebhook(ctx context.Context, channelID, name string) (*Webhook, error) {
	route := fmt.Sprintf("POST:/channels/%s/webhooks", channelID)
	body, err := c.Do(ctx, c.BotCredential(), http.MethodPost, route,
		fmt.Sprintf("/channels/%s/webhooks", channelID), createWebhookRequest{Name: name})
	if err != nil {
		return nil, err
	}
	var webhook Webhook
	if err := json.Unmarshal(body, &webhook); err != nil {
		return nil, fmt.Errorf("decode webhook: %w", err)
	}
	return &webhook, nil
}

// DeleteWebhook removes a webhook on the Discord side. A 404 means the
// webhook is already gone and is treated as success.
func (c *Client) DeleteWebhook(ctx context.Context, webhookID string) error {
	route := fmt.Sprintf("DELETE:/webhooks/%s", webhookID)
	_, err := c.Do(ctx, c.BotCredential(), http.MethodDelete, route, fmt.Sprintf("/webhooks/%s", webhookID), nil)
	if err != nil {
		if apiErr, ok := AsAPIError(err); ok && apiErr.NotFound() {
			return nil
		}
		return err
	}
	return nil
}
