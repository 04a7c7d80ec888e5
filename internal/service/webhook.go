package service

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/AwwCookies/Chatterbox-sub002/internal/audit"
	"github.com/AwwCookies/Chatterbox-sub002/internal/config"
	"github.com/AwwCookies/Chatterbox-sub002/internal/discord"
	apperrors "github.com/AwwCookies/Chatterbox-sub002/internal/errors"
	"github.com/AwwCookies/Chatterbox-sub002/internal/model"
	"github.com/AwwCookies/Chatterbox-sub002/internal/repository"
)

const defaultWebhookName = "Chatterbox Archive"

// WebhookService provisions Discord webhooks and owns their durable local
// records. Creation is a linear sequence of authorize, resolve, create
// remotely, then persist, where any failing step aborts with nothing persisted.
type WebhookService struct {
	cfg          *config.Config
	connRepo     repository.DiscordConnectionRepository
	guildCache   repository.GuildCacheRepository
	channelCache repository.ChannelCacheRepository
	webhookRepo  repository.WebhookRepository
	client       *discord.Client
}

func NewWebhookService(
	cfg *config.Config,
	connRepo repository.DiscordConnectionRepository,
	guildCache repository.GuildCacheRepository,
	channelCache repository.ChannelCacheRepository,
	webhookRepo repository.WebhookRepository,
	client *discord.Client,
) *WebhookService {
	return &WebhookService{
		cfg:          cfg,
		connRepo:     connRepo,
		guildCache:   guildCache,
		channelCache: channelCache,
		webhookRepo:  webhookRepo,
		client:       client,
	}
}

// Create provisions one webhook in the target channel. Two identical calls
// produce two independent webhooks: Discord permits multiple webhooks per
// channel and creation is intentionally not deduplicated.
//
// The remote creation runs under the bot credential, since a user's OAuth
// grant does not cover webhook management, but only after the account's cached
// permission snapshot authorizes the guild and the channel is known to the
// cache, which forces callers to have listed channels at least once.
func (s *WebhookService) Create(ctx context.Context, accountID, guildID, channelID string, spec model.WebhookSpec) (*model.DiscordWebhook, error) {
	if !s.cfg.DiscordConfigured() {
		return nil, apperrors.DiscordNotConfigured()
	}

	conn, err := s.connRepo.FindByAccountID(ctx, accountID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if !conn.Connected() {
		return nil, apperrors.DiscordNotConnected()
	}

	guild, err := s.guildCache.FindByAccountAndGuild(ctx, accountID, guildID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if guild == nil {
		return nil, apperrors.DiscordForbidden()
	}

	channel, err := s.channelCache.FindByAccountGuildChannel(ctx, accountID, guildID, channelID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if channel == nil {
		return nil, apperrors.NotFound("Channel")
	}

	name := spec.DisplayName
	if name == "" {
		name = defaultWebhookName
	}

	remote, err := s.client.CreateWebhook(ctx, channelID, name)
	if err != nil {
		return nil, translateDiscordErr(err)
	}

	webhook, err := s.webhookRepo.Create(ctx, model.CreateWebhookParams{
		AccountID:   accountID,
		GuildID:     guildID,
		GuildName:   guild.Name,
		ChannelID:   channelID,
		ChannelName: channel.Name,
		WebhookID:   remote.ID,
		WebhookURL:  remote.InvocationURL(),
		DisplayName: name,
		AvatarURL:   spec.AvatarURL,
	})
	if err != nil {
		// The remote webhook exists but the local record failed; clean up so
		// we never hold an untracked remote resource.
		if delErr := s.client.DeleteWebhook(ctx, remote.ID); delErr != nil {
			log.Error().Err(delErr).
				Str("webhookId", remote.ID).
				Msg("failed to roll back remote webhook after persist failure")
		}
		return nil, apperrors.Database(err)
	}

	audit.Log(ctx, audit.Event{
		Type:      audit.EventWebhookCreate,
		AccountID: accountID,
		Details: map[string]interface{}{
			"guild_id":   guildID,
			"channel_id": channelID,
			"webhook_id": remote.ID,
		},
	})

	return webhook, nil
}

func (s *WebhookService) List(ctx context.Context, accountID string) ([]model.DiscordWebhook, error) {
	webhooks, err := s.webhookRepo.FindByAccountID(ctx, accountID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	return webhooks, nil
}

// Update mutates display and toggle fields of a webhook the account owns.
// The invocation URL is immutable and not updatable through any path.
func (s *WebhookService) Update(ctx context.Context, accountID, webhookID string, params model.UpdateWebhookParams) (*model.DiscordWebhook, error) {
	existing, err := s.webhookRepo.FindByID(ctx, webhookID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if existing == nil || existing.AccountID != accountID {
		return nil, apperrors.NotFound("Webhook")
	}

	updated, err := s.webhookRepo.Update(ctx, webhookID, params)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	return updated, nil
}

// Delete removes the webhook remotely (best effort; an already-deleted
// remote counterpart counts as success) and then removes the local row
// unconditionally. Local state must never keep pointing at a remote
// resource believed deleted, even when the remote call fails.
func (s *WebhookService) Delete(ctx context.Context, accountID, webhookID string) error {
	existing, err := s.webhookRepo.FindByID(ctx, webhookID)
	if err != nil {
		return apperrors.Database(err)
	}
	if existing == nil || existing.AccountID != accountID {
		return apperrors.NotFound("Webhook")
	}

	if err := s.client.DeleteWebhook(ctx, existing.WebhookID); err != nil {
		log.Warn().Err(err).
			Str("accountId", accountID).
			Str("webhookId", existing.WebhookID).
			Msg("remote webhook deletion failed, removing local record anyway")
	}

	if err := s.webhookRepo.Delete(ctx, webhookID); err != nil {
		return apperrors.Database(err)
	}

	audit.Log(ctx, audit.Event{
		Type:      audit.EventWebhookDelete,
		AccountID: accountID,
		Details:   map[string]interface{}{"webhook_id": existing.WebhookID},
	})

	return nil
}
