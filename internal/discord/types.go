package discord

import "fmt"

// Channel types the archiver can target. Discord defines many more (voice,
// forum, stage, ...); only the two text-like kinds accept webhooks we care
// about, everything else is excluded from the cache entirely.
const (
	ChannelTypeGuildText         = 0
	ChannelTypeGuildAnnouncement = 5
)

type User struct {
	ID            string  `json:"id"`
	Username      string  `json:"username"`
	GlobalName    *string `json:"global_name"`
	Discriminator string  `json:"discriminator"`
	Avatar        *string `json:"avatar"`
}

// DisplayName prefers the newer global name over the legacy username.
func (u *User) DisplayName() string {
	if u.GlobalName != nil && *u.GlobalName != "" {
		return *u.GlobalName
	}
	return u.Username
}

// AvatarURL builds the CDN URL for the user's avatar, or returns an empty
// string when no custom avatar is set.
func (u *User) AvatarURL() string {
	if u.Avatar == nil || *u.Avatar == "" {
		return ""
	}
	return fmt.Sprintf("https://cdn.discordapp.com/avatars/%s/%s.png", u.ID, *u.Avatar)
}

// Guild is a guild as returned by GET /users/@me/guilds. Permissions is the
// caller's permission bitmask serialized as a decimal string; Discord sends
// it as a string because the value exceeds what JSON numbers carry safely.
type Guild struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Icon        *string `json:"icon"`
	Owner       bool    `json:"owner"`
	Permissions string  `json:"permissions"`
}

type Channel struct {
	ID       string  `json:"id"`
	Type     int     `json:"type"`
	GuildID  string  `json:"guild_id"`
	Name     string  `json:"name"`
	ParentID *string `json:"parent_id"`
	Position int     `json:"position"`
}

// TextLike reports whether the channel is one of the kinds a webhook can
// post archived messages into.
func (c *Channel) TextLike() bool {
	return c.Type == ChannelTypeGuildText || c.Type == ChannelTypeGuildAnnouncement
}

type Webhook struct {
	ID        string  `json:"id"`
	Type      int     `json:"type"`
	GuildID   string  `json:"guild_id"`
	ChannelID string  `json:"channel_id"`
	Name      string  `json:"name"`
	Avatar    *string `json:"avatar"`
	Token     string  `json:"token"`
	URL       string  `json:"url"`
}

// InvocationURL returns the execute URL for the webhook. Discord includes it
// on creation responses; older API versions omit it, in which case it is
// reconstructed from the id/token pair.
func (w *Webhook) InvocationURL() string {
	if w.URL != "" {
		return w.URL
	}
	if w.Token == "" {
		return ""
	}
	return fmt.Sprintf("https://discord.com/api/webhooks/%s/%s", w.ID, w.Token)
}
