package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/AwwCookies/Chatterbox-sub002/internal/model"
)

type WebhookRepository interface {
	FindByID(ctx context.Context, id string) (*model.DiscordWebhook, error)
	FindByAccountID(ctx context.Context, accountID string) ([]model.DiscordWebhook, error)
	Create(ctx context.Context, params model.CreateWebhookParams) (*model.DiscordWebhook, error)
	Update(ctx context.Context, id string, params model.UpdateWebhookParams) (*model.DiscordWebhook, error)
	Delete(ctx context.Context, id string) error
	DeleteByAccountID(ctx context.Context, accountID string) error
}

type webhookRepo struct {
	db sqlxDB
}

func NewWebhookRepository(db *sqlx.DB) WebhookRepository {
	return &webhookRepo{db: db}
}

func (r *webhookRepo) FindByID(ctx context.Context, id string) (*model.DiscordWebhook, error) {
	var webhook model.DiscordWebhook
	err := r.db.GetContext(ctx, &webhook, `
		SELECT * FROM discord_webhooks WHERE id = $1
	`, id)
	return HandleNotFound(&webhook, err)
}

func (r *webhookRepo) FindByAccountID(ctx context.Context, accountID string) ([]model.DiscordWebhook, error) {
	var webhooks []model.DiscordWebhook
	err := r.db.SelectContext(ctx, &webhooks, `
		SELECT * FROM discord_webhooks
		WHERE account_id = $1
		ORDER BY created_at DESC
	`, accountID)
	if err != nil {
		return nil, err
	}
	return webhooks, nil
}

func (r *webhookRepo) Create(ctx context.Context, params model.CreateWebhookParams) (*model.DiscordWebhook, error) {
	var webhook model.DiscordWebhook
	err := r.db.GetContext(ctx, &webhook, `
		INSERT INTO discord_webhooks
			(account_id, guild_id, guild_name, channel_id, channel_name,
			 webhook_id, webhook_url, display_name, avatar_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING *
	`, params.AccountID, params.GuildID, params.GuildName, params.ChannelID, params.ChannelName,
		params.WebhookID, params.WebhookURL, params.DisplayName, params.AvatarURL)
	if err != nil {
		return nil, err
	}
	return &webhook, nil
}

// Update mutates the customization and toggle fields only. The webhook URL
// never changes after creation.
func (r *webhookRepo) Update(ctx context.Context, id string, params model.UpdateWebhookParams) (*model.DiscordWebhook, error) {
	var webhook model.DiscordWebhook
	err := r.db.GetContext(ctx, &webhook, `
		UPDATE discord_webhooks SET
			display_name = COALESCE($2, display_name),
			avatar_url = COALESCE($3, avatar_url),
			enabled = COALESCE($4, enabled),
			muted = COALESCE($5, muted),
			updated_at = NOW()
		WHERE id = $1
		RETURNING *
	`, id, params.DisplayName, params.AvatarURL, params.Enabled, params.Muted)
	return HandleNotFound(&webhook, err)
}

func (r *webhookRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM discord_webhooks WHERE id = $1`, id)
	return err
}

func (r *webhookRepo) DeleteByAccountID(ctx context.Context, accountID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM discord_webhooks WHERE account_id = $1`, accountID)
	return err
}
