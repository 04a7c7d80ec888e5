package service

import (
	"context"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/AwwCookies/Chatterbox-sub002/internal/database"
	"github.com/AwwCookies/Chatterbox-sub002/internal/model"
	"github.com/AwwCookies/Chatterbox-sub002/internal/repository"
)

// fakeTxRunner runs the function directly; repository mocks ignore the tx.
type fakeTxRunner struct{}

func (fakeTxRunner) WithTx(ctx context.Context, fn database.TxFunc) error {
	return fn(nil)
}

type mockConnRepo struct {
	findByAccountIDFunc func(ctx context.Context, accountID string) (*model.DiscordConnection, error)
	saveFunc            func(ctx context.Context, params model.SaveConnectionParams) (*model.DiscordConnection, error)
	updateTokensCalls   int
	updatedAccess       string
	updatedRefresh      string
	updatedExpiresAt    time.Time
	clearCalls          int
}

func (m *mockConnRepo) FindByAccountID(ctx context.Context, accountID string) (*model.DiscordConnection, error) {
	if m.findByAccountIDFunc != nil {
		return m.findByAccountIDFunc(ctx, accountID)
	}
	return nil, nil
}

func (m *mockConnRepo) Save(ctx context.Context, params model.SaveConnectionParams) (*model.DiscordConnection, error) {
	if m.saveFunc != nil {
		return m.saveFunc(ctx, params)
	}
	return &model.DiscordConnection{AccountID: params.AccountID}, nil
}

func (m *mockConnRepo) UpdateTokens(ctx context.Context, accountID string, accessToken, refreshToken string, expiresAt time.Time) error {
	m.updateTokensCalls++
	m.updatedAccess = accessToken
	m.updatedRefresh = refreshToken
	m.updatedExpiresAt = expiresAt
	return nil
}

func (m *mockConnRepo) Clear(ctx context.Context, accountID string) error {
	m.clearCalls++
	return nil
}

type mockStateRepo struct {
	findByStateFunc func(ctx context.Context, state string) (*model.OAuthState, error)
	created         []model.CreateOAuthStateParams
	deletedIDs      []string
}

func (m *mockStateRepo) FindByState(ctx context.Context, state string) (*model.OAuthState, error) {
	if m.findByStateFunc != nil {
		return m.findByStateFunc(ctx, state)
	}
	return nil, nil
}

func (m *mockStateRepo) Create(ctx context.Context, params model.CreateOAuthStateParams) (*model.OAuthState, error) {
	m.created = append(m.created, params)
	return &model.OAuthState{ID: "st1", State: params.State, AccountID: params.AccountID, ExpiresAt: params.ExpiresAt}, nil
}

func (m *mockStateRepo) Delete(ctx context.Context, id string) error {
	m.deletedIDs = append(m.deletedIDs, id)
	return nil
}

func (m *mockStateRepo) DeleteExpired(ctx context.Context) (int64, error) {
	return 0, nil
}

// mockGuildCache keeps rows in memory so Replace is observable through the
// find methods, mirroring how the real repository behaves across a refresh.
// The mutex makes each Replace atomic, the same guarantee the real repository
// gets from running inside one transaction, and replaceViaTx counts only the
// replaces that arrived through the transaction-bound repository.
type mockGuildCache struct {
	mu           sync.Mutex
	rows         []model.CachedGuild
	replaceCalls int
	replaceViaTx int
	deletedFor   []string
	cachedAt     time.Time
}

func (m *mockGuildCache) FindByAccountID(ctx context.Context, accountID string) ([]model.CachedGuild, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.CachedGuild(nil), m.rows...), nil
}

func (m *mockGuildCache) FindByAccountAndGuild(ctx context.Context, accountID, guildID string) (*model.CachedGuild, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.rows {
		if m.rows[i].GuildID == guildID {
			g := m.rows[i]
			return &g, nil
		}
	}
	return nil, nil
}

func (m *mockGuildCache) Count(ctx context.Context, accountID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows), nil
}

func (m *mockGuildCache) Replace(ctx context.Context, accountID string, guilds []model.CreateCachedGuildParams) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replaceCalls++
	cachedAt := m.cachedAt
	if cachedAt.IsZero() {
		cachedAt = time.Now()
	}
	m.rows = nil
	for _, g := range guilds {
		m.rows = append(m.rows, model.CachedGuild{
			AccountID:   accountID,
			GuildID:     g.GuildID,
			Name:        g.Name,
			Icon:        g.Icon,
			Permissions: g.Permissions,
			CachedAt:    cachedAt,
		})
	}
	return nil
}

func (m *mockGuildCache) DeleteByAccountID(ctx context.Context, accountID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletedFor = append(m.deletedFor, accountID)
	m.rows = nil
	return nil
}

func (m *mockGuildCache) DeleteStale(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

func (m *mockGuildCache) WithTx(tx *sqlx.Tx) repository.GuildCacheRepository {
	return &txGuildCache{m}
}

type txGuildCache struct {
	*mockGuildCache
}

func (t *txGuildCache) Replace(ctx context.Context, accountID string, guilds []model.CreateCachedGuildParams) error {
	t.mu.Lock()
	t.replaceViaTx++
	t.mu.Unlock()
	return t.mockGuildCache.Replace(ctx, accountID, guilds)
}

type mockChannelCache struct {
	mu           sync.Mutex
	rows         []model.CachedChannel
	replaceCalls int
	replaceViaTx int
	deletedFor   []string
	cachedAt     time.Time
}

func (m *mockChannelCache) FindByAccountAndGuild(ctx context.Context, accountID, guildID string) ([]model.CachedChannel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.CachedChannel
	for _, ch := range m.rows {
		if ch.GuildID == guildID {
			out = append(out, ch)
		}
	}
	return out, nil
}

func (m *mockChannelCache) FindByAccountGuildChannel(ctx context.Context, accountID, guildID, channelID string) (*model.CachedChannel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.rows {
		if m.rows[i].GuildID == guildID && m.rows[i].ChannelID == channelID {
			ch := m.rows[i]
			return &ch, nil
		}
	}
	return nil, nil
}

func (m *mockChannelCache) Count(ctx context.Context, accountID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows), nil
}

func (m *mockChannelCache) Replace(ctx context.Context, accountID, guildID string, channels []model.CreateCachedChannelParams) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replaceCalls++
	cachedAt := m.cachedAt
	if cachedAt.IsZero() {
		cachedAt = time.Now()
	}
	kept := m.rows[:0]
	for _, ch := range m.rows {
		if ch.GuildID != guildID {
			kept = append(kept, ch)
		}
	}
	m.rows = kept
	for _, ch := range channels {
		m.rows = append(m.rows, model.CachedChannel{
			AccountID: accountID,
			GuildID:   guildID,
			ChannelID: ch.ChannelID,
			Name:      ch.Name,
			Kind:      ch.Kind,
			ParentID:  ch.ParentID,
			Position:  ch.Position,
			CachedAt:  cachedAt,
		})
	}
	return nil
}

func (m *mockChannelCache) DeleteByAccountID(ctx context.Context, accountID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletedFor = append(m.deletedFor, accountID)
	m.rows = nil
	return nil
}

func (m *mockChannelCache) DeleteStale(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

func (m *mockChannelCache) WithTx(tx *sqlx.Tx) repository.ChannelCacheRepository {
	return &txChannelCache{m}
}

type txChannelCache struct {
	*mockChannelCache
}

func (t *txChannelCache) Replace(ctx context.Context, accountID, guildID string, channels []model.CreateCachedChannelParams) error {
	t.mu.Lock()
	t.replaceViaTx++
	t.mu.Unlock()
	return t.mockChannelCache.Replace(ctx, accountID, guildID, channels)
}

type mockWebhookRepo struct {
	rows       []model.DiscordWebhook
	createFunc func(ctx context.Context, params model.CreateWebhookParams) (*model.DiscordWebhook, error)
	created    []model.CreateWebhookParams
	deletedIDs []string
	deletedFor []string
}

func (m *mockWebhookRepo) FindByID(ctx context.Context, id string) (*model.DiscordWebhook, error) {
	for i := range m.rows {
		if m.rows[i].ID == id {
			return &m.rows[i], nil
		}
	}
	return nil, nil
}

func (m *mockWebhookRepo) FindByAccountID(ctx context.Context, accountID string) ([]model.DiscordWebhook, error) {
	var out []model.DiscordWebhook
	for _, wh := range m.rows {
		if wh.AccountID == accountID {
			out = append(out, wh)
		}
	}
	return out, nil
}

func (m *mockWebhookRepo) Create(ctx context.Context, params model.CreateWebhookParams) (*model.DiscordWebhook, error) {
	m.created = append(m.created, params)
	if m.createFunc != nil {
		return m.createFunc(ctx, params)
	}
	wh := model.DiscordWebhook{
		ID:          "local-wh-1",
		AccountID:   params.AccountID,
		GuildID:     params.GuildID,
		GuildName:   params.GuildName,
		ChannelID:   params.ChannelID,
		ChannelName: params.ChannelName,
		WebhookID:   params.WebhookID,
		WebhookURL:  params.WebhookURL,
		DisplayName: params.DisplayName,
		AvatarURL:   params.AvatarURL,
		Enabled:     true,
	}
	m.rows = append(m.rows, wh)
	return &wh, nil
}

func (m *mockWebhookRepo) Update(ctx context.Context, id string, params model.UpdateWebhookParams) (*model.DiscordWebhook, error) {
	for i := range m.rows {
		if m.rows[i].ID != id {
			continue
		}
		if params.DisplayName != nil {
			m.rows[i].DisplayName = *params.DisplayName
		}
		if params.AvatarURL != nil {
			m.rows[i].AvatarURL = params.AvatarURL
		}
		if params.Enabled != nil {
			m.rows[i].Enabled = *params.Enabled
		}
		if params.Muted != nil {
			m.rows[i].Muted = *params.Muted
		}
		return &m.rows[i], nil
	}
	return nil, nil
}

func (m *mockWebhookRepo) Delete(ctx context.Context, id string) error {
	m.deletedIDs = append(m.deletedIDs, id)
	kept := m.rows[:0]
	for _, wh := range m.rows {
		if wh.ID != id {
			kept = append(kept, wh)
		}
	}
	m.rows = kept
	return nil
}

func (m *mockWebhookRepo) DeleteByAccountID(ctx context.Context, accountID string) error {
	m.deletedFor = append(m.deletedFor, accountID)
	return nil
}
