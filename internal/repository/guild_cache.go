package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/AwwCookies/Chatterbox-sub002/internal/model"
)

type GuildCacheRepository interface {
	FindByAccountID(ctx context.Context, accountID string) ([]model.CachedGuild, error)
	FindByAccountAndGuild(ctx context.Context, accountID, guildID string) (*model.CachedGuild, error)
	Count(ctx context.Context, accountID string) (int, error)
	// Replace swaps the full cached guild set for an account: delete then
	// insert, stamped with the current time. Run it inside a transaction so
	// readers never observe a half-populated cache.
	Replace(ctx context.Context, accountID string, guilds []model.CreateCachedGuildParams) error
	DeleteByAccountID(ctx context.Context, accountID string) error
	// DeleteStale removes rows cached before the cutoff, across all accounts.
	DeleteStale(ctx context.Context, cutoff time.Time) (int64, error)
	// WithTx returns a repository bound to the given transaction.
	WithTx(tx *sqlx.Tx) GuildCacheRepository
}

type guildCacheRepo struct {
	db sqlxDB
}

func NewGuildCacheRepository(db *sqlx.DB) GuildCacheRepository {
	return &guildCacheRepo{db: db}
}

func (r *guildCacheRepo) WithTx(tx *sqlx.Tx) GuildCacheRepository {
	return &guildCacheRepo{db: tx}
}

func (r *guildCacheRepo) FindByAccountID(ctx context.Context, accountID string) ([]model.CachedGuild, error) {
	var guilds []model.CachedGuild
	err := r.db.SelectContext(ctx, &guilds, `
		SELECT * FROM discord_guild_cache
		WHERE account_id = $1
		ORDER BY name ASC
	`, accountID)
	if err != nil {
		return nil, err
	}
	return guilds, nil
}

func (r *guildCacheRepo) FindByAccountAndGuild(ctx context.Context, accountID, guildID string) (*model.CachedGuild, error) {
	var guild model.CachedGuild
	err := r.db.GetContext(ctx, &guild, `
		SELECT * FROM discord_guild_cache
		WHERE account_id = $1 AND guild_id = $2
	`, accountID, guildID)
	return HandleNotFound(&guild, err)
}

func (r *guildCacheRepo) Count(ctx context.Context, accountID string) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `
		SELECT COUNT(*) FROM discord_guild_cache WHERE account_id = $1
	`, accountID)
	return count, err
}

func (r *guildCacheRepo) Replace(ctx context.Context, accountID string, guilds []model.CreateCachedGuildParams) error {
	if _, err := r.db.ExecContext(ctx, `
		DELETE FROM discord_guild_cache WHERE account_id = $1
	`, accountID); err != nil {
		return err
	}
	for _, g := range guilds {
		if _, err := r.db.ExecContext(ctx, `
			INSERT INTO discord_guild_cache (account_id, guild_id, name, icon, permissions, cached_at)
			VALUES ($1, $2, $3, $4, $5, NOW())
		`, accountID, g.GuildID, g.Name, g.Icon, g.Permissions); err != nil {
			return err
		}
	}
	return nil
}

func (r *guildCacheRepo) DeleteByAccountID(ctx context.Context, accountID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM discord_guild_cache WHERE account_id = $1`, accountID)
	return err
}

func (r *guildCacheRepo) DeleteStale(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM discord_guild_cache WHERE cached_at < $1
	`, cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
