package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/AwwCookies/Chatterbox-sub002/internal/model"
)

type ChannelCacheRepository interface {
	FindByAccountAndGuild(ctx context.Context, accountID, guildID string) ([]model.CachedChannel, error)
	FindByAccountGuildChannel(ctx context.Context, accountID, guildID, channelID string) (*model.CachedChannel, error)
	Count(ctx context.Context, accountID string) (int, error)
	// Replace swaps the cached channel set for one (account, guild) scope.
	// Same transactional contract as GuildCacheRepository.Replace.
	Replace(ctx context.Context, accountID, guildID string, channels []model.CreateCachedChannelParams) error
	DeleteByAccountID(ctx context.Context, accountID string) error
	DeleteStale(ctx context.Context, cutoff time.Time) (int64, error)
	WithTx(tx *sqlx.Tx) ChannelCacheRepository
}

type channelCacheRepo struct {
	db sqlxDB
}

func NewChannelCacheRepository(db *sqlx.DB) ChannelCacheRepository {
	return &channelCacheRepo{db: db}
}

func (r *channelCacheRepo) WithTx(tx *sqlx.Tx) ChannelCacheRepository {
	return &channelCacheRepo{db: tx}
}

func (r *channelCacheRepo) FindByAccountAndGuild(ctx context.Context, accountID, guildID string) ([]model.CachedChannel, error) {
	var channels []model.CachedChannel
	err := r.db.SelectContext(ctx, &channels, `
		SELECT * FROM discord_channel_cache
		WHERE account_id = $1 AND guild_id = $2
		ORDER BY parent_id NULLS FIRST, position ASC, name ASC
	`, accountID, guildID)
	if err != nil {
		return nil, err
	}
	return channels, nil
}

func (r *channelCacheRepo) FindByAccountGuildChannel(ctx context.Context, accountID, guildID, channelID string) (*model.CachedChannel, error) {
	var channel model.CachedChannel
	err := r.db.GetContext(ctx, &channel, `
		SELECT * FROM discord_channel_cache
		WHERE account_id = $1 AND guild_id = $2 AND channel_id = $3
	`, accountID, guildID, channelID)
	return HandleNotFound(&channel, err)
}

func (r *channelCacheRepo) Count(ctx context.Context, accountID string) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `
		SELECT COUNT(*) FROM discord_channel_cache WHERE account_id = $1
	`, accountID)
	return count, err
}

func (r *channelCacheRepo) Replace(ctx context.Context, accountID, guildID string, channels []model.CreateCachedChannelParams) error {
	if _, err := r.db.ExecContext(ctx, `
		DELETE FROM discord_channel_cache WHERE account_id = $1 AND guild_id = $2
	`, accountID, guildID); err != nil {
		return err
	}
	for _, ch := range channels {
		if _, err := r.db.ExecContext(ctx, `
			INSERT INTO discord_channel_cache (account_id, guild_id, channel_id, name, kind, parent_id, position, cached_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		`, accountID, guildID, ch.ChannelID, ch.Name, ch.Kind, ch.ParentID, ch.Position); err != nil {
			return err
		}
	}
	return nil
}

func (r *channelCacheRepo) DeleteByAccountID(ctx context.Context, accountID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM discord_channel_cache WHERE account_id = $1`, accountID)
	return err
}

func (r *channelCacheRepo) DeleteStale(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM discord_channel_cache WHERE cached_at < $1
	`, cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
