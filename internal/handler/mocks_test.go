package handler

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/AwwCookies/Chatterbox-sub002/internal/database"
	"github.com/AwwCookies/Chatterbox-sub002/internal/model"
	"github.com/AwwCookies/Chatterbox-sub002/internal/repository"
)

// In-memory repository fakes backing the handler tests. They keep enough
// state for a full link, list, provision and disconnect pass without a
// database.

type fakeTxRunner struct{}

func (fakeTxRunner) WithTx(ctx context.Context, fn database.TxFunc) error {
	return fn(nil)
}

type fakeConnRepo struct {
	conn *model.DiscordConnection
}

func (m *fakeConnRepo) FindByAccountID(ctx context.Context, accountID string) (*model.DiscordConnection, error) {
	if m.conn != nil && m.conn.AccountID == accountID {
		return m.conn, nil
	}
	return nil, nil
}

func (m *fakeConnRepo) Save(ctx context.Context, params model.SaveConnectionParams) (*model.DiscordConnection, error) {
	m.conn = &model.DiscordConnection{
		ID:             "conn1",
		AccountID:      params.AccountID,
		DiscordUserID:  &params.DiscordUserID,
		Username:       &params.Username,
		AvatarURL:      params.AvatarURL,
		AccessToken:    &params.AccessToken,
		RefreshToken:   &params.RefreshToken,
		TokenExpiresAt: &params.TokenExpiresAt,
	}
	return m.conn, nil
}

func (m *fakeConnRepo) UpdateTokens(ctx context.Context, accountID string, accessToken, refreshToken string, expiresAt time.Time) error {
	if m.conn != nil {
		m.conn.AccessToken = &accessToken
		m.conn.RefreshToken = &refreshToken
		m.conn.TokenExpiresAt = &expiresAt
	}
	return nil
}

func (m *fakeConnRepo) Clear(ctx context.Context, accountID string) error {
	m.conn = nil
	return nil
}

type fakeStateRepo struct {
	states map[string]*model.OAuthState
}

func newFakeStateRepo() *fakeStateRepo {
	return &fakeStateRepo{states: make(map[string]*model.OAuthState)}
}

func (m *fakeStateRepo) FindByState(ctx context.Context, state string) (*model.OAuthState, error) {
	return m.states[state], nil
}

func (m *fakeStateRepo) Create(ctx context.Context, params model.CreateOAuthStateParams) (*model.OAuthState, error) {
	st := &model.OAuthState{ID: params.State, State: params.State, AccountID: params.AccountID, ExpiresAt: params.ExpiresAt}
	m.states[params.State] = st
	return st, nil
}

func (m *fakeStateRepo) Delete(ctx context.Context, id string) error {
	delete(m.states, id)
	return nil
}

func (m *fakeStateRepo) DeleteExpired(ctx context.Context) (int64, error) {
	return 0, nil
}

type fakeGuildCache struct {
	rows []model.CachedGuild
}

func (m *fakeGuildCache) FindByAccountID(ctx context.Context, accountID string) ([]model.CachedGuild, error) {
	return m.rows, nil
}

func (m *fakeGuildCache) FindByAccountAndGuild(ctx context.Context, accountID, guildID string) (*model.CachedGuild, error) {
	for i := range m.rows {
		if m.rows[i].GuildID == guildID {
			return &m.rows[i], nil
		}
	}
	return nil, nil
}

func (m *fakeGuildCache) Count(ctx context.Context, accountID string) (int, error) {
	return len(m.rows), nil
}

func (m *fakeGuildCache) Replace(ctx context.Context, accountID string, guilds []model.CreateCachedGuildParams) error {
	m.rows = nil
	for _, g := range guilds {
		m.rows = append(m.rows, model.CachedGuild{
			AccountID:   accountID,
			GuildID:     g.GuildID,
			Name:        g.Name,
			Icon:        g.Icon,
			Permissions: g.Permissions,
			CachedAt:    time.Now(),
		})
	}
	return nil
}

func (m *fakeGuildCache) DeleteByAccountID(ctx context.Context, accountID string) error {
	m.rows = nil
	return nil
}

func (m *fakeGuildCache) DeleteStale(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

func (m *fakeGuildCache) WithTx(tx *sqlx.Tx) repository.GuildCacheRepository {
	return m
}

type fakeChannelCache struct {
	rows []model.CachedChannel
}

func (m *fakeChannelCache) FindByAccountAndGuild(ctx context.Context, accountID, guildID string) ([]model.CachedChannel, error) {
	var out []model.CachedChannel
	for _, ch := range m.rows {
		if ch.GuildID == guildID {
			out = append(out, ch)
		}
	}
	return out, nil
}

func (m *fakeChannelCache) FindByAccountGuildChannel(ctx context.Context, accountID, guildID, channelID string) (*model.CachedChannel, error) {
	for i := range m.rows {
		if m.rows[i].GuildID == guildID && m.rows[i].ChannelID == channelID {
			return &m.rows[i], nil
		}
	}
	return nil, nil
}

func (m *fakeChannelCache) Count(ctx context.Context, accountID string) (int, error) {
	return len(m.rows), nil
}

func (m *fakeChannelCache) Replace(ctx context.Context, accountID, guildID string, channels []model.CreateCachedChannelParams) error {
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
			CachedAt:  time.Now(),
		})
	}
	return nil
}

func (m *fakeChannelCache) DeleteByAccountID(ctx context.Context, accountID string) error {
	m.rows = nil
	return nil
}

func (m *fakeChannelCache) DeleteStale(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

func (m *fakeChannelCache) WithTx(tx *sqlx.Tx) repository.ChannelCacheRepository {
	return m
}

type fakeWebhookRepo struct {
	rows   []model.DiscordWebhook
	nextID int
}

func (m *fakeWebhookRepo) FindByID(ctx context.Context, id string) (*model.DiscordWebhook, error) {
	for i := range m.rows {
		if m.rows[i].ID == id {
			return &m.rows[i], nil
		}
	}
	return nil, nil
}

func (m *fakeWebhookRepo) FindByAccountID(ctx context.Context, accountID string) ([]model.DiscordWebhook, error) {
	var out []model.DiscordWebhook
	for _, wh := range m.rows {
		if wh.AccountID == accountID {
			out = append(out, wh)
		}
	}
	return out, nil
}

func (m *fakeWebhookRepo) Create(ctx context.Context, params model.CreateWebhookParams) (*model.DiscordWebhook, error) {
	m.nextID++
	wh := model.DiscordWebhook{
		ID:          fmt.Sprintf("local-%d", m.nextID),
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
		CreatedAt:   time.Now(),
	}
	m.rows = append(m.rows, wh)
	return &wh, nil
}

func (m *fakeWebhookRepo) Update(ctx context.Context, id string, params model.UpdateWebhookParams) (*model.DiscordWebhook, error) {
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

func (m *fakeWebhookRepo) Delete(ctx context.Context, id string) error {
	kept := m.rows[:0]
	for _, wh := range m.rows {
		if wh.ID != id {
			kept = append(kept, wh)
		}
	}
	m.rows = kept
	return nil
}

func (m *fakeWebhookRepo) DeleteByAccountID(ctx context.Context, accountID string) error {
	kept := m.rows[:0]
	for _, wh := range m.rows {
		if wh.AccountID != accountID {
			kept = append(kept, wh)
		}
	}
	m.rows = kept
	return nil
}
