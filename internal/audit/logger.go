package audit

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type EventType string

const (
	EventDiscordLink       EventType = "discord_link"
	EventDiscordRelink     EventType = "discord_relink"
	EventDiscordDisconnect EventType = "discord_disconnect"
	EventTokenRefresh      EventType = "discord_token_refresh"
	EventTokenRevoke       EventType = "discord_token_revoke"
	EventWebhookCreate     EventType = "webhook_create"
	EventWebhookDelete     EventType = "webhook_delete"
	EventAuthFailure       EventType = "auth_failure"
	EventRateLimitExceed   EventType = "rate_limit_exceeded"
)

type Event struct {
	Type      EventType
	AccountID string
	Details   map[string]interface{}
}

// Log emits a structured security/audit event. These are the events an
// operator greps for when a linked account misbehaves, so they always go out
// at info level regardless of the configured verbosity of the rest of the app.
func Log(ctx context.Context, event Event) {
	logger := log.With().
		Str("audit", "integration").
		Str("event_type", string(event.Type)).
		Time("timestamp", time.Now()).
		Logger()

	if event.AccountID != "" {
		logger = logger.With().Str("account_id", event.AccountID).Logger()
	}

	logEvent := logger.Info()
	for k, v := range event.Details {
		logEvent = addField(logEvent, k, v)
	}
	logEvent.Msg("audit event")
}

func addField(e *zerolog.Event, key string, value interface{}) *zerolog.Event {
	switch v := value.(type) {
	case string:
		return e.Str(key, v)
	case int:
		return e.Int(key, v)
	case int64:
		return e.Int64(key, v)
	case bool:
		return e.Bool(key, v)
	default:
		return e.Interface(key, v)
	}
}
