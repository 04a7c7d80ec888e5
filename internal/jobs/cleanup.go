package jobs

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/AwwCookies/Chatterbox-sub002/internal/repository"
)

// CleanupJob reclaims rows that expire on their own: pending OAuth states
// that never completed and directory cache rows nobody has re-read within
// the retention horizon.
type CleanupJob struct {
	oauthStateRepo repository.OAuthStateRepository
	guildCache     repository.GuildCacheRepository
	channelCache   repository.ChannelCacheRepository
	interval       time.Duration
	cacheRetention time.Duration
	done           chan struct{}
}

func NewCleanupJob(
	oauthStateRepo repository.OAuthStateRepository,
	guildCache repository.GuildCacheRepository,
	channelCache repository.ChannelCacheRepository,
	interval time.Duration,
	cacheRetention time.Duration,
) *CleanupJob {
	return &CleanupJob{
		oauthStateRepo: oauthStateRepo,
		guildCache:     guildCache,
		channelCache:   channelCache,
		interval:       interval,
		cacheRetention: cacheRetention,
		done:           make(chan struct{}),
	}
}

func (j *CleanupJob) Start() {
	go j.run()
	log.Info().Dur("interval", j.interval).Msg("cleanup job started")
}

func (j *CleanupJob) Stop() {
	close(j.done)
	log.Info().Msg("cleanup job stopped")
}

func (j *CleanupJob) run() {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.cleanup()

	for {
		select {
		case <-j.done:
			return
		case <-ticker.C:
			j.cleanup()
		}
	}
}

func (j *CleanupJob) cleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cutoff := time.Now().Add(-j.cacheRetention)

	j.runCleanup(ctx, "oauth states", j.oauthStateRepo.DeleteExpired)
	j.runCleanup(ctx, "stale guild cache rows", func(ctx context.Context) (int64, error) {
		return j.guildCache.DeleteStale(ctx, cutoff)
	})
	j.runCleanup(ctx, "stale channel cache rows", func(ctx context.Context) (int64, error) {
		return j.channelCache.DeleteStale(ctx, cutoff)
	})
}

func (j *CleanupJob) runCleanup(ctx context.Context, name string, fn func(context.Context) (int64, error)) {
	count, err := fn(ctx)
	if err != nil {
		log.Error().Err(err).Msgf("failed to cleanup %s", name)
	} else if count > 0 {
		log.Info().Int64("count", count).Msgf("cleaned up %s", name)
	}
}
