package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/AwwCookies/Chatterbox-sub002/internal/model"
)

type DiscordConnectionRepository interface {
	FindByAccountID(ctx context.Context, accountID string) (*model.DiscordConnection, error)
	Save(ctx context.Context, params model.SaveConnectionParams) (*model.DiscordConnection, error)
	UpdateTokens(ctx context.Context, accountID string, accessToken, refreshToken string, expiresAt time.Time) error
	Clear(ctx context.Context, accountID string) error
}

type discordConnectionRepo struct {
	db sqlxDB
}

func NewDiscordConnectionRepository(db *sqlx.DB) DiscordConnectionRepository {
	return &discordConnectionRepo{db: db}
}

func (r *discordConnectionRepo) FindByAccountID(ctx context.Context, accountID string) (*model.DiscordConnection, error) {
	var conn model.DiscordConnection
	err := r.db.GetContext(ctx, &conn, `
		SELECT * FROM discord_connections WHERE account_id = $1
	`, accountID)
	return HandleNotFound(&conn, err)
}

// Save upserts the full credential set for an account. Relinking an already
// linked account simply replaces the identity and token triple.
func (r *discordConnectionRepo) Save(ctx context.Context, params model.SaveConnectionParams) (*model.DiscordConnection, error) {
	var conn model.DiscordConnection
	err := r.db.GetContext(ctx, &conn, `
		INSERT INTO discord_connections
			(account_id, discord_user_id, username, avatar_url, access_token, refresh_token, token_expires_at, linked_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		ON CONFLICT (account_id) DO UPDATE SET
			discord_user_id = EXCLUDED.discord_user_id,
			username = EXCLUDED.username,
			avatar_url = EXCLUDED.avatar_url,
			access_token = EXCLUDED.access_token,
			refresh_token = EXCLUDED.refresh_token,
			token_expires_at = EXCLUDED.token_expires_at,
			linked_at = EXCLUDED.linked_at,
			updated_at = NOW()
		RETURNING *
	`, params.AccountID, params.DiscordUserID, params.Username, params.AvatarURL,
		params.AccessToken, params.RefreshToken, params.TokenExpiresAt)
	if err != nil {
		return nil, err
	}
	return &conn, nil
}

func (r *discordConnectionRepo) UpdateTokens(ctx context.Context, accountID string, accessToken, refreshToken string, expiresAt time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE discord_connections
		SET access_token = $2, refresh_token = $3, token_expires_at = $4, updated_at = NOW()
		WHERE account_id = $1
	`, accountID, accessToken, refreshToken, expiresAt)
	return err
}

// Clear nulls the linkage without deleting the row, so repeated disconnects
// stay idempotent.
func (r *discordConnectionRepo) Clear(ctx context.Context, accountID string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE discord_connections
		SET discord_user_id = NULL, username = NULL, avatar_url = NULL,
			access_token = NULL, refresh_token = NULL, token_expires_at = NULL,
			linked_at = NULL, updated_at = NOW()
		WHERE account_id = $1
	`, accountID)
	return err
}

// OAuth State Repository

type OAuthStateRepository interface {
	FindByState(ctx context.Context, state string) (*model.OAuthState, error)
	Create(ctx context.Context, params model.CreateOAuthStateParams) (*model.OAuthState, error)
	Delete(ctx context.Context, id string) error
	DeleteExpired(ctx context.Context) (int64, error)
}

type oauthStateRepo struct {
	db sqlxDB
}

func NewOAuthStateRepository(db *sqlx.DB) OAuthStateRepository {
	return &oauthStateRepo{db: db}
}

func (r *oauthStateRepo) FindByState(ctx context.Context, state string) (*model.OAuthState, error) {
	var oauthState model.OAuthState
	err := r.db.GetContext(ctx, &oauthState, `
		SELECT * FROM oauth_states
		WHERE state = $1 AND expires_at > NOW()
	`, state)
	return HandleNotFound(&oauthState, err)
}

func (r *oauthStateRepo) Create(ctx context.Context, params model.CreateOAuthStateParams) (*model.OAuthState, error) {
	var oauthState model.OAuthState
	err := r.db.GetContext(ctx, &oauthState, `
		INSERT INTO oauth_states (state, account_id, expires_at)
		VALUES ($1, $2, $3)
		RETURNING *
	`, params.State, params.AccountID, params.ExpiresAt)
	if err != nil {
		return nil, err
	}
	return &oauthState, nil
}

func (r *oauthStateRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM oauth_states WHERE id = $1`, id)
	return err
}

func (r *oauthStateRepo) DeleteExpired(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM oauth_states WHERE expires_at < NOW()`)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
