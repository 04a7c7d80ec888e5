package service

import (
	"errors"

	"github.com/AwwCookies/Chatterbox-sub002/internal/discord"
	apperrors "github.com/AwwCookies/Chatterbox-sub002/internal/errors"
)

// translateDiscordErr maps a failure from the Discord client onto the
// application error taxonomy. Refresh rejections and the handful of Discord
// error codes users can act on get specific codes; 5xx and transport-level
// failures (timeouts included) surface as transient; everything else passes
// through with status and code attached for diagnostics.
func translateDiscordErr(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := apperrors.AsAppError(err); ok {
		return err
	}
	if errors.Is(err, discord.ErrRefreshRejected) {
		return apperrors.DiscordReconnectRequired()
	}
	apiErr, ok := discord.AsAPIError(err)
	if !ok {
		return apperrors.DiscordUnavailable(err)
	}
	switch {
	case apiErr.QuotaExceeded():
		return apperrors.DiscordQuotaExceeded()
	case apiErr.MissingPermissions():
		return apperrors.DiscordForbidden()
	case apiErr.NotFound():
		return apperrors.NotFound("Discord resource").WithCause(err)
	case apiErr.Transient():
		return apperrors.DiscordUnavailable(err)
	default:
		return apperrors.DiscordError(apiErr.Status, apiErr.Code, err)
	}
}
