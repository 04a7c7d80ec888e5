package service

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/AwwCookies/Chatterbox-sub002/internal/database"
	"github.com/AwwCookies/Chatterbox-sub002/internal/discord"
	apperrors "github.com/AwwCookies/Chatterbox-sub002/internal/errors"
	"github.com/AwwCookies/Chatterbox-sub002/internal/model"
	"github.com/AwwCookies/Chatterbox-sub002/internal/repository"
)

// txRunner is the slice of database.DB the directory needs: running a
// function inside one transaction.
type txRunner interface {
	WithTx(ctx context.Context, fn database.TxFunc) error
}

// DirectoryService maintains the staleness-bounded mirror of the guilds and
// channels a linked account can act on. Reads serve from the cache when it
// is fresh; a refresh fetches from Discord, filters, and atomically replaces
// the scope's rows. There is no background eviction: staleness is only
// evaluated lazily when someone reads.
type DirectoryService struct {
	db           txRunner
	conns        *ConnectionService
	guildCache   repository.GuildCacheRepository
	channelCache repository.ChannelCacheRepository
	client       *discord.Client
	staleness    time.Duration
	now          func() time.Time
}

func NewDirectoryService(
	db txRunner,
	conns *ConnectionService,
	guildCache repository.GuildCacheRepository,
	channelCache repository.ChannelCacheRepository,
	client *discord.Client,
	staleness time.Duration,
) *DirectoryService {
	return &DirectoryService{
		db:           db,
		conns:        conns,
		guildCache:   guildCache,
		channelCache: channelCache,
		client:       client,
		staleness:    staleness,
		now:          time.Now,
	}
}

func (s *DirectoryService) fresh(cachedAt time.Time) bool {
	return s.now().Sub(cachedAt) < s.staleness
}

// Guilds lists the account's manageable guilds, refreshing from Discord when
// forced or stale. The permission predicate is applied at write time: guilds
// the user cannot manage webhooks in are dropped before they ever reach
// storage, as are guilds with a malformed bitmask.
func (s *DirectoryService) Guilds(ctx context.Context, accountID string, forceRefresh bool) ([]model.CachedGuild, error) {
	if !forceRefresh {
		cached, err := s.guildCache.FindByAccountID(ctx, accountID)
		if err != nil {
			return nil, apperrors.Database(err)
		}
		if len(cached) > 0 && s.fresh(cached[0].CachedAt) {
			return cached, nil
		}
	}

	token, err := s.conns.ValidAccessToken(ctx, accountID)
	if err != nil {
		return nil, err
	}

	remote, err := s.client.UserGuilds(ctx, token)
	if err != nil {
		return nil, translateDiscordErr(err)
	}

	rows := make([]model.CreateCachedGuildParams, 0, len(remote))
	for _, g := range remote {
		perms, ok := discord.ParsePermissions(g.Permissions)
		if !ok {
			log.Debug().Str("guildId", g.ID).Msg("dropping guild with malformed permission bitmask")
			continue
		}
		if !discord.CanManageWebhooks(perms) {
			continue
		}
		rows = append(rows, model.CreateCachedGuildParams{
			GuildID:     g.ID,
			Name:        g.Name,
			Icon:        g.Icon,
			Permissions: int64(perms),
		})
	}

	err = s.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		return s.guildCache.WithTx(tx).Replace(ctx, accountID, rows)
	})
	if err != nil {
		return nil, apperrors.Database(err)
	}

	log.Info().
		Str("accountId", accountID).
		Int("total", len(remote)).
		Int("manageable", len(rows)).
		Msg("guild cache refreshed")

	cached, err := s.guildCache.FindByAccountID(ctx, accountID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	return cached, nil
}

// Channels lists the text-like channels of one guild, from the cache or via
// a bot-credential fetch. Listing requires the account's cached permission
// snapshot to include the guild; callers needing current truth must refresh
// guilds first.
func (s *DirectoryService) Channels(ctx context.Context, accountID, guildID string, forceRefresh bool) ([]model.CachedChannel, error) {
	allowed, err := s.HasGuildAccess(ctx, accountID, guildID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, apperrors.DiscordForbidden()
	}

	if !forceRefresh {
		cached, err := s.channelCache.FindByAccountAndGuild(ctx, accountID, guildID)
		if err != nil {
			return nil, apperrors.Database(err)
		}
		if len(cached) > 0 && s.fresh(cached[0].CachedAt) {
			return cached, nil
		}
	}

	remote, err := s.client.GuildChannels(ctx, guildID)
	if err != nil {
		return nil, translateDiscordErr(err)
	}

	rows := make([]model.CreateCachedChannelParams, 0, len(remote))
	for _, ch := range remote {
		if !ch.TextLike() {
			continue
		}
		rows = append(rows, model.CreateCachedChannelParams{
			ChannelID: ch.ID,
			Name:      ch.Name,
			Kind:      ch.Type,
			ParentID:  ch.ParentID,
			Position:  ch.Position,
		})
	}

	err = s.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		return s.channelCache.WithTx(tx).Replace(ctx, accountID, guildID, rows)
	})
	if err != nil {
		return nil, apperrors.Database(err)
	}

	log.Info().
		Str("accountId", accountID).
		Str("guildId", guildID).
		Int("total", len(remote)).
		Int("textLike", len(rows)).
		Msg("channel cache refreshed")

	cached, err := s.channelCache.FindByAccountAndGuild(ctx, accountID, guildID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	return cached, nil
}

// HasGuildAccess is a pure cache lookup reflecting the permission state as
// of the last guild refresh, not a live Discord check.
func (s *DirectoryService) HasGuildAccess(ctx context.Context, accountID, guildID string) (bool, error) {
	guild, err := s.guildCache.FindByAccountAndGuild(ctx, accountID, guildID)
	if err != nil {
		return false, apperrors.Database(err)
	}
	return guild != nil, nil
}
