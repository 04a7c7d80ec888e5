package model

import (
	"time"
)

// DiscordWebhook is the durable record of a webhook the provisioner created
// on Discord's side. The invocation URL embeds a one-time secret and is
// immutable once stored. Guild and channel names are denormalized so the UI
// never needs a live Discord call to render the row.
type DiscordWebhook struct {
	ID            string    `db:"id" json:"id"`
	AccountID     string    `db:"account_id" json:"accountId"`
	GuildID       string    `db:"guild_id" json:"guildId"`
	GuildName     string    `db:"guild_name" json:"guildName"`
	ChannelID     string    `db:"channel_id" json:"channelId"`
	ChannelName   string    `db:"channel_name" json:"channelName"`
	WebhookID     string    `db:"webhook_id" json:"-"`
	WebhookURL    string    `db:"webhook_url" json:"-"`
	DisplayName   string    `db:"display_name" json:"displayName"`
	AvatarURL     *string   `db:"avatar_url" json:"avatarUrl,omitempty"`
	Enabled       bool      `db:"enabled" json:"enabled"`
	Muted         bool      `db:"muted" json:"muted"`
	TriggerCount  int       `db:"trigger_count" json:"triggerCount"`
	LastTriggered *time.Time `db:"last_triggered_at" json:"lastTriggeredAt,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time `db:"updated_at" json:"updatedAt"`
}

type CreateWebhookParams struct {
	AccountID   string
	GuildID     string
	GuildName   string
	ChannelID   string
	ChannelName string
	WebhookID   string
	WebhookURL  string
	DisplayName string
	AvatarURL   *string
}

type UpdateWebhookParams struct {
	DisplayName *string
	AvatarURL   *string
	Enabled     *bool
	Muted       *bool
}

// WebhookSpec is the caller-supplied customization for a new webhook.
type WebhookSpec struct {
	DisplayName string  `json:"displayName"`
	AvatarURL   *string `json:"avatarUrl,omitempty"`
}
