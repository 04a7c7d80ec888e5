package model

import (
	"time"
)

// Account is an application account that can link a Discord identity and own
// managed webhooks. Callers authenticate with an opaque relay token; only
// its hash is stored.
type Account struct {
	ID              string     `db:"id" json:"id"`
	TwitchUserID    *string    `db:"twitch_user_id" json:"twitchUserId,omitempty"`
	RelayTokenHash  *string    `db:"relay_token_hash" json:"-"`
	RateLimitPerMin int        `db:"rate_limit_per_minute" json:"rateLimitPerMinute"`
	CreatedAt       time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updatedAt"`
	DisabledAt      *time.Time `db:"disabled_at" json:"disabledAt,omitempty"`
}

type CreateAccountParams struct {
	TwitchUserID    *string
	RelayTokenHash  string
	RateLimitPerMin int
}
