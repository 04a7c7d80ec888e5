package model

import (
	"time"
)

// DiscordConnection is the OAuth linkage between an account and a Discord
// user, one row per account. A row with a non-null DiscordUserID always
// carries a valid-or-refreshable token pair; when a refresh is rejected the
// row is kept (so the UI can show "expired" distinctly from "never
// connected") until the owner explicitly disconnects, which nulls it out.
type DiscordConnection struct {
	ID             string     `db:"id" json:"id"`
	AccountID      string     `db:"account_id" json:"accountId"`
	DiscordUserID  *string    `db:"discord_user_id" json:"discordUserId,omitempty"`
	Username       *string    `db:"username" json:"username,omitempty"`
	AvatarURL      *string    `db:"avatar_url" json:"avatarUrl,omitempty"`
	AccessToken    *string    `db:"access_token" json:"-"`
	RefreshToken   *string    `db:"refresh_token" json:"-"`
	TokenExpiresAt *time.Time `db:"token_expires_at" json:"-"`
	LinkedAt       *time.Time `db:"linked_at" json:"linkedAt,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updatedAt"`
}

// Connected reports whether the row represents a live linkage.
func (c *DiscordConnection) Connected() bool {
	return c != nil && c.DiscordUserID != nil && *c.DiscordUserID != ""
}

type SaveConnectionParams struct {
	AccountID      string
	DiscordUserID  string
	Username       string
	AvatarURL      *string
	AccessToken    string
	RefreshToken   string
	TokenExpiresAt time.Time
}

// CachedGuild mirrors one Discord guild for one account. Only guilds whose
// permission bitmask satisfies the manage-webhooks predicate are stored;
// non-qualifying guilds are dropped at write time, not hidden at read time.
type CachedGuild struct {
	ID          string    `db:"id" json:"-"`
	AccountID   string    `db:"account_id" json:"-"`
	GuildID     string    `db:"guild_id" json:"guildId"`
	Name        string    `db:"name" json:"name"`
	Icon        *string   `db:"icon" json:"icon,omitempty"`
	Permissions int64     `db:"permissions" json:"-"`
	CachedAt    time.Time `db:"cached_at" json:"cachedAt"`
}

type CreateCachedGuildParams struct {
	GuildID     string
	Name        string
	Icon        *string
	Permissions int64
}

// CachedChannel mirrors one text-like channel of a guild for one account.
type CachedChannel struct {
	ID        string    `db:"id" json:"-"`
	AccountID string    `db:"account_id" json:"-"`
	GuildID   string    `db:"guild_id" json:"guildId"`
	ChannelID string    `db:"channel_id" json:"channelId"`
	Name      string    `db:"name" json:"name"`
	Kind      int       `db:"kind" json:"kind"`
	ParentID  *string   `db:"parent_id" json:"parentId,omitempty"`
	Position  int       `db:"position" json:"position"`
	CachedAt  time.Time `db:"cached_at" json:"cachedAt"`
}

type CreateCachedChannelParams struct {
	ChannelID string
	Name      string
	Kind      int
	ParentID  *string
	Position  int
}

// OAuthState is a pending authorization: one row per issued consent URL,
// consumed (and deleted) by the callback, expired rows swept by the cleanup
// job.
type OAuthState struct {
	ID        string    `db:"id"`
	State     string    `db:"state"`
	AccountID string    `db:"account_id"`
	ExpiresAt time.Time `db:"expires_at"`
	CreatedAt time.Time `db:"created_at"`
}

type CreateOAuthStateParams struct {
	State     string
	AccountID string
	ExpiresAt time.Time
}
