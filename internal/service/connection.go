package service

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/AwwCookies/Chatterbox-sub002/internal/audit"
	"github.com/AwwCookies/Chatterbox-sub002/internal/config"
	"github.com/AwwCookies/Chatterbox-sub002/internal/discord"
	apperrors "github.com/AwwCookies/Chatterbox-sub002/internal/errors"
	"github.com/AwwCookies/Chatterbox-sub002/internal/model"
	"github.com/AwwCookies/Chatterbox-sub002/internal/repository"
	"github.com/AwwCookies/Chatterbox-sub002/internal/util"
)

// ConnectionService owns the OAuth linkage between accounts and Discord:
// the consent flow, the stored token pair and its refresh lifecycle, and
// disconnection with optional remote cleanup.
type ConnectionService struct {
	cfg          *config.Config
	connRepo     repository.DiscordConnectionRepository
	stateRepo    repository.OAuthStateRepository
	guildCache   repository.GuildCacheRepository
	channelCache repository.ChannelCacheRepository
	webhookRepo  repository.WebhookRepository
	oauth        *discord.OAuthClient
	client       *discord.Client
	vault        tokenVault
	now          func() time.Time
}

func NewConnectionService(
	cfg *config.Config,
	connRepo repository.DiscordConnectionRepository,
	stateRepo repository.OAuthStateRepository,
	guildCache repository.GuildCacheRepository,
	channelCache repository.ChannelCacheRepository,
	webhookRepo repository.WebhookRepository,
	oauth *discord.OAuthClient,
	client *discord.Client,
) *ConnectionService {
	return &ConnectionService{
		cfg:          cfg,
		connRepo:     connRepo,
		stateRepo:    stateRepo,
		guildCache:   guildCache,
		channelCache: channelCache,
		webhookRepo:  webhookRepo,
		oauth:        oauth,
		client:       client,
		vault:        newTokenVault(cfg.EncryptionKey),
		now:          time.Now,
	}
}

// AuthURL issues a consent-screen URL bound to a fresh single-use state row.
func (s *ConnectionService) AuthURL(ctx context.Context, accountID string) (string, error) {
	if !s.cfg.DiscordConfigured() {
		return "", apperrors.DiscordNotConfigured()
	}

	state, err := util.GenerateToken()
	if err != nil {
		return "", err
	}

	_, err = s.stateRepo.Create(ctx, model.CreateOAuthStateParams{
		State:     state,
		AccountID: accountID,
		ExpiresAt: s.now().Add(config.OAuthStateTTL),
	})
	if err != nil {
		return "", apperrors.Database(err)
	}

	return s.oauth.AuthCodeURL(state), nil
}

// CompleteLink consumes the callback: validates state, exchanges the code,
// resolves the Discord identity, and upserts the connection row with the
// encrypted token pair.
func (s *ConnectionService) CompleteLink(ctx context.Context, code, state string) (*model.DiscordConnection, error) {
	stored, err := s.stateRepo.FindByState(ctx, state)
	if err != nil || stored == nil {
		return nil, apperrors.InvalidOAuthState()
	}
	defer s.stateRepo.Delete(ctx, stored.ID)

	existing, err := s.connRepo.FindByAccountID(ctx, stored.AccountID)
	if err != nil {
		return nil, apperrors.Database(err)
	}

	pair, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, translateDiscordErr(err)
	}

	user, err := s.client.CurrentUser(ctx, pair.AccessToken)
	if err != nil {
		return nil, translateDiscordErr(err)
	}

	conn, err := s.saveTokens(ctx, stored.AccountID, user, pair)
	if err != nil {
		return nil, err
	}

	eventType := audit.EventDiscordLink
	if existing.Connected() {
		eventType = audit.EventDiscordRelink
	}
	audit.Log(ctx, audit.Event{
		Type:      eventType,
		AccountID: stored.AccountID,
		Details:   map[string]interface{}{"discord_user_id": user.ID},
	})

	return conn, nil
}

func (s *ConnectionService) saveTokens(ctx context.Context, accountID string, user *discord.User, pair *discord.TokenPair) (*model.DiscordConnection, error) {
	access, err := s.vault.Seal(pair.AccessToken)
	if err != nil {
		return nil, err
	}
	refresh, err := s.vault.Seal(pair.RefreshToken)
	if err != nil {
		return nil, err
	}

	var avatar *string
	if url := user.AvatarURL(); url != "" {
		avatar = &url
	}

	conn, err := s.connRepo.Save(ctx, model.SaveConnectionParams{
		AccountID:      accountID,
		DiscordUserID:  user.ID,
		Username:       user.DisplayName(),
		AvatarURL:      avatar,
		AccessToken:    access,
		RefreshToken:   refresh,
		TokenExpiresAt: pair.ExpiresAt(s.now()),
	})
	if err != nil {
		return nil, apperrors.Database(err)
	}
	return conn, nil
}

// ValidAccessToken returns an access token guaranteed to outlive the refresh
// margin. A token comfortably inside its lifetime is returned without any
// network traffic; otherwise a refresh exchange runs and the rotated pair is
// persisted before the new token is handed out. A rejected refresh leaves
// the stored connection in place and reports ReconnectRequired so the UI can
// distinguish "expired" from "never connected".
func (s *ConnectionService) ValidAccessToken(ctx context.Context, accountID string) (string, error) {
	conn, err := s.connRepo.FindByAccountID(ctx, accountID)
	if err != nil {
		return "", apperrors.Database(err)
	}
	if !conn.Connected() || conn.AccessToken == nil || conn.RefreshToken == nil {
		return "", apperrors.DiscordNotConnected()
	}

	if conn.TokenExpiresAt != nil && conn.TokenExpiresAt.After(s.now().Add(config.TokenRefreshMargin)) {
		return s.vault.Open(*conn.AccessToken)
	}

	refreshToken, err := s.vault.Open(*conn.RefreshToken)
	if err != nil {
		return "", err
	}

	pair, err := s.oauth.Refresh(ctx, refreshToken)
	if err != nil {
		return "", translateDiscordErr(err)
	}

	sealedAccess, err := s.vault.Seal(pair.AccessToken)
	if err != nil {
		return "", err
	}
	sealedRefresh, err := s.vault.Seal(pair.RefreshToken)
	if err != nil {
		return "", err
	}
	if err := s.connRepo.UpdateTokens(ctx, accountID, sealedAccess, sealedRefresh, pair.ExpiresAt(s.now())); err != nil {
		return "", apperrors.Database(err)
	}

	audit.Log(ctx, audit.Event{Type: audit.EventTokenRefresh, AccountID: accountID})

	return pair.AccessToken, nil
}

// ConnectionStatus is the summary the dashboard renders without touching
// Discord.
type ConnectionStatus struct {
	Available     bool    `json:"available"`
	Connected     bool    `json:"connected"`
	Username      *string `json:"username,omitempty"`
	AvatarURL     *string `json:"avatarUrl,omitempty"`
	GuildsCount   int     `json:"guildsCount"`
	ChannelsCount int     `json:"channelsCount"`
}

func (s *ConnectionService) Status(ctx context.Context, accountID string) (*ConnectionStatus, error) {
	status := &ConnectionStatus{Available: s.cfg.DiscordConfigured()}
	if !status.Available {
		return status, nil
	}

	conn, err := s.connRepo.FindByAccountID(ctx, accountID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if !conn.Connected() {
		return status, nil
	}

	status.Connected = true
	status.Username = conn.Username
	status.AvatarURL = conn.AvatarURL

	if status.GuildsCount, err = s.guildCache.Count(ctx, accountID); err != nil {
		return nil, apperrors.Database(err)
	}
	if status.ChannelsCount, err = s.channelCache.Count(ctx, accountID); err != nil {
		return nil, apperrors.Database(err)
	}
	return status, nil
}

// Disconnect severs the linkage. Remote cleanup (webhook deletion when
// requested, token revocation) is best effort: failures are logged and the
// local disconnect proceeds regardless, because local state is authoritative
// for the application.
// DisconnectResult reports the outcome of a disconnect. A nil error means the
// local unlink succeeded; RemoteFailures counts best-effort remote cleanup
// calls (webhook deletions, token revocation) that did not.
type DisconnectResult struct {
	RemoteFailures int
}

func (s *ConnectionService) Disconnect(ctx context.Context, accountID string, deleteWebhooks bool) (*DisconnectResult, error) {
	conn, err := s.connRepo.FindByAccountID(ctx, accountID)
	if err != nil {
		return nil, apperrors.Database(err)
	}

	remoteFailures := 0

	if deleteWebhooks {
		webhooks, err := s.webhookRepo.FindByAccountID(ctx, accountID)
		if err != nil {
			return nil, apperrors.Database(err)
		}
		for _, wh := range webhooks {
			if err := s.client.DeleteWebhook(ctx, wh.WebhookID); err != nil {
				remoteFailures++
				log.Warn().Err(err).
					Str("accountId", accountID).
					Str("webhookId", wh.WebhookID).
					Msg("failed to delete remote webhook during disconnect")
			}
		}
		if err := s.webhookRepo.DeleteByAccountID(ctx, accountID); err != nil {
			return nil, apperrors.Database(err)
		}
	}

	if conn.Connected() && conn.AccessToken != nil {
		if access, err := s.vault.Open(*conn.AccessToken); err == nil && access != "" {
			if err := s.oauth.Revoke(ctx, access); err != nil {
				remoteFailures++
				log.Warn().Err(err).Str("accountId", accountID).Msg("discord token revocation failed")
			} else {
				audit.Log(ctx, audit.Event{Type: audit.EventTokenRevoke, AccountID: accountID})
			}
		}
	}

	if err := s.connRepo.Clear(ctx, accountID); err != nil {
		return nil, apperrors.Database(err)
	}
	if err := s.guildCache.DeleteByAccountID(ctx, accountID); err != nil {
		return nil, apperrors.Database(err)
	}
	if err := s.channelCache.DeleteByAccountID(ctx, accountID); err != nil {
		return nil, apperrors.Database(err)
	}

	audit.Log(ctx, audit.Event{
		Type:      audit.EventDiscordDisconnect,
		AccountID: accountID,
		Details: map[string]interface{}{
			"delete_webhooks": deleteWebhooks,
			"remote_failures": remoteFailures,
		},
	})

	return &DisconnectResult{RemoteFailures: remoteFailures}, nil
}
